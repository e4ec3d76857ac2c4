package core

import (
	"path/filepath"
	"testing"
)

func TestConfigStore_SaveLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "backend.yaml")

	store := NewConfigStore(path)

	// missing file reads back empty
	settings, err := store.Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if settings.URL != "" || settings.Key != "" {
		t.Errorf("Load() = %+v, want empty settings", settings)
	}

	if err = store.Save("postgres://app@db.example.com:5432/darasa", "s3cret"); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	// a fresh store reads the persisted values back
	settings, err = NewConfigStore(path).Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if settings.URL != "postgres://app@db.example.com:5432/darasa" {
		t.Errorf("Load().URL = %q", settings.URL)
	}
	if settings.Key != "s3cret" {
		t.Errorf("Load().Key = %q", settings.Key)
	}
}

func TestConfigStore_SaveValidation(t *testing.T) {
	store := NewConfigStore(filepath.Join(t.TempDir(), "backend.yaml"))

	tests := []struct {
		name string
		url  string
		key  string
	}{
		{name: "both empty"},
		{name: "empty url", key: "s3cret"},
		{name: "empty key", url: "postgres://db.example.com/darasa"},
		{name: "whitespace only", url: "   ", key: "\t"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := store.Save(tt.url, tt.key)
			if err == nil {
				t.Fatal("Save() expected error, got nil")
			}
			if _, ok := err.(*ValidationError); !ok {
				t.Errorf("Save() error = %T, want *ValidationError", err)
			}

			// nothing was persisted
			settings, err := store.Load()
			if err != nil {
				t.Fatalf("Load() error = %v", err)
			}
			if settings.URL != "" || settings.Key != "" {
				t.Errorf("Load() = %+v, want empty settings", settings)
			}
		})
	}
}

func TestConfigStore_OnSave(t *testing.T) {
	store := NewConfigStore(filepath.Join(t.TempDir(), "backend.yaml"))

	var got ConnSettings
	var calls int
	store.OnSave(func(s ConnSettings) {
		got = s
		calls++
	})

	// failed save does not fire the hook
	if err := store.Save("", ""); err == nil {
		t.Fatal("Save() expected error, got nil")
	}
	if calls != 0 {
		t.Errorf("OnSave fired %d times after failed Save", calls)
	}

	if err := store.Save("postgres://db.example.com/darasa", "s3cret"); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	if calls != 1 {
		t.Fatalf("OnSave fired %d times, want 1", calls)
	}
	if got.URL != "postgres://db.example.com/darasa" || got.Key != "s3cret" {
		t.Errorf("OnSave received %+v", got)
	}
}
