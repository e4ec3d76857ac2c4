package student_test

import (
	"context"
	"testing"

	"github.com/pkg/errors"

	"github.com/mikobi/darasa/core/student"
	dummydb "github.com/mikobi/darasa/storage/database/dummy"
	testutil "github.com/mikobi/darasa/tests"
)

func setup() (student.Service, student.Repository) {
	db := dummydb.Open()
	repo := dummydb.NewStudentRepository(db)
	return student.NewService(repo), repo
}

func TestService_Authenticate(t *testing.T) {
	svc, repo := setup()
	ctx := context.Background()

	std := testutil.CreateStudent(t, repo, "student123", "Zhang San", "", "123456", 0)

	tests := []struct {
		name      string
		studentID string
		pwd       string
		wantErr   error
	}{
		{name: "ok", studentID: "student123", pwd: "123456"},
		{name: "ID is case-insensitive", studentID: "STUDENT123", pwd: "123456"},
		{name: "wrong password", studentID: "student123", pwd: "654321", wantErr: student.ErrAuthFailed},
		// an unknown ID fails exactly like a bad password
		{name: "unknown ID", studentID: "ghost", pwd: "123456", wantErr: student.ErrAuthFailed},
		{name: "empty password", studentID: "student123", pwd: "", wantErr: student.ErrAuthFailed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := svc.Authenticate(ctx, tt.studentID, tt.pwd)
			if errors.Cause(err) != tt.wantErr {
				t.Fatalf("Authenticate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr == nil && got.ID != std.ID {
				t.Errorf("Authenticate() = %+v, want %s", got, std.ID)
			}
		})
	}
}

func TestService_Create_hashesPassword(t *testing.T) {
	svc, repo := setup()
	ctx := context.Background()

	std, err := svc.Create(ctx, student.NewStudent{
		StudentID: "student123",
		Name:      "Zhang San",
		Password:  "123456",
	})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if string(std.PasswordHash) == "123456" || len(std.PasswordHash) == 0 {
		t.Error("Create() stored the password without hashing it")
	}

	stored, err := repo.GetStudentByStudentID(ctx, "student123")
	if err != nil {
		t.Fatalf("GetStudentByStudentID() error = %v", err)
	}
	if err = stored.CheckPassword("123456"); err != nil {
		t.Errorf("CheckPassword() error = %v", err)
	}
}

func TestService_Leaderboard(t *testing.T) {
	svc, repo := setup()
	ctx := context.Background()

	testutil.CreateStudent(t, repo, "student123", "Zhang San", "", "123456", 0)
	testutil.CreateStudent(t, repo, "student456", "Li Si", "", "123456", 80)
	testutil.CreateStudent(t, repo, "student789", "Wang Wu", "", "123456", 150)
	// same score as student456: the lower ID ranks first
	testutil.CreateStudent(t, repo, "student001", "Zhao Liu", "", "123456", 80)

	entries, err := svc.Leaderboard(ctx, 10)
	if err != nil {
		t.Fatalf("Leaderboard() error = %v", err)
	}

	wantOrder := []string{"student789", "student001", "student456", "student123"}
	if len(entries) != len(wantOrder) {
		t.Fatalf("Leaderboard() returned %d entries, want %d", len(entries), len(wantOrder))
	}
	for i, id := range wantOrder {
		if entries[i].StudentID != id {
			t.Errorf("Leaderboard()[%d] = %q, want %q", i, entries[i].StudentID, id)
		}
	}

	// limit caps the result
	entries, err = svc.Leaderboard(ctx, 2)
	if err != nil {
		t.Fatalf("Leaderboard() error = %v", err)
	}
	if len(entries) != 2 || entries[0].StudentID != "student789" {
		t.Errorf("Leaderboard(2) = %+v", entries)
	}
}

func TestService_Leaderboard_empty(t *testing.T) {
	svc, _ := setup()

	entries, err := svc.Leaderboard(context.Background(), 10)
	if err != nil {
		t.Fatalf("Leaderboard() error = %v", err)
	}
	if entries == nil {
		t.Error("Leaderboard() = nil, want an empty slice")
	}
	if len(entries) != 0 {
		t.Errorf("Leaderboard() = %+v, want empty", entries)
	}
}

func TestService_SetPassword(t *testing.T) {
	svc, repo := setup()
	ctx := context.Background()

	testutil.CreateStudent(t, repo, "student123", "Zhang San", "", "123456", 0)

	if err := svc.SetPassword(ctx, "student123", "n3wpass"); err != nil {
		t.Fatalf("SetPassword() error = %v", err)
	}
	if _, err := svc.Authenticate(ctx, "student123", "n3wpass"); err != nil {
		t.Errorf("Authenticate() with new password error = %v", err)
	}
	if _, err := svc.Authenticate(ctx, "student123", "123456"); errors.Cause(err) != student.ErrAuthFailed {
		t.Errorf("Authenticate() with old password error = %v, want ErrAuthFailed", err)
	}

	if err := svc.SetPassword(ctx, "ghost", "n3wpass"); errors.Cause(err) != student.ErrNotFound {
		t.Errorf("SetPassword() error = %v, want ErrNotFound", err)
	}
}
