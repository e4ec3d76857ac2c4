package core

import (
	"os"

	"github.com/kat-co/vala"
	"github.com/pkg/errors"
	"github.com/spf13/viper"
)

const (
	connURLKey = "backend.url"
	connKeyKey = "backend.key"
)

// ConnSettings are the two credentials needed to reach the backend store.
type ConnSettings struct {
	URL string
	Key string
}

// ConfigStore persists the backend connection credentials in a local file,
// read once at startup and written on Save.
type ConfigStore struct {
	v      *viper.Viper
	path   string
	onSave func(ConnSettings)
}

func NewConfigStore(path string) *ConfigStore {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	return &ConfigStore{v: v, path: path}
}

// OnSave registers a hook invoked after every successful Save so the owning
// process can re-initialize its backend handle with the new credentials.
func (cs *ConfigStore) OnSave(fn func(ConnSettings)) {
	cs.onSave = fn
}

// Load reads the stored credentials. Missing file or keys yield empty
// strings; the values are not validated here.
func (cs *ConfigStore) Load() (ConnSettings, error) {
	if err := cs.v.ReadInConfig(); err != nil {
		if os.IsNotExist(errors.Cause(err)) {
			return ConnSettings{}, nil
		}
		if _, ok := errors.Cause(err).(viper.ConfigFileNotFoundError); ok {
			return ConnSettings{}, nil
		}
		return ConnSettings{}, errors.Wrap(err, "reading config store")
	}
	return ConnSettings{
		URL: cs.v.GetString(connURLKey),
		Key: cs.v.GetString(connKeyKey),
	}, nil
}

// Save validates and persists both credentials, then fires the OnSave hook.
// Empty or whitespace-only values fail with a *ValidationError.
func (cs *ConfigStore) Save(connURL, key string) error {
	connURL = CleanString(connURL)
	key = CleanString(key)

	if err := vala.BeginValidation().Validate(
		vala.StringNotEmpty(connURL, "url"),
		vala.StringNotEmpty(key, "key"),
	).Check(); err != nil {
		return NewValidationError(err)
	}

	cs.v.Set(connURLKey, connURL)
	cs.v.Set(connKeyKey, key)
	if err := cs.v.WriteConfigAs(cs.path); err != nil {
		return errors.Wrap(err, "writing config store")
	}

	if cs.onSave != nil {
		cs.onSave(ConnSettings{URL: connURL, Key: key})
	}
	return nil
}
