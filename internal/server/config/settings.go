package config

import (
	"bytes"
	"sync/atomic"
)

// Settings is the part of the configuration the auth core reads on every
// request. A Settings value is never mutated after it is stored.
type Settings struct {
	Secret               []byte
	TokenLifetimeMinutes int
}

// SettingsStore holds the current Settings. Readers always observe a
// complete snapshot; Store swaps it atomically.
type SettingsStore struct {
	current atomic.Pointer[Settings]
}

// NewSettingsStore returns a store holding s, or an error if s is invalid.
func NewSettingsStore(s Settings) (*SettingsStore, error) {
	store := &SettingsStore{}
	if err := store.Store(s); err != nil {
		return nil, err
	}
	return store, nil
}

// Load returns the current snapshot. The secret is a copy; writing to it
// does not affect the store.
func (s *SettingsStore) Load() Settings {
	cur := s.current.Load()
	return Settings{Secret: bytes.Clone(cur.Secret), TokenLifetimeMinutes: cur.TokenLifetimeMinutes}
}

// Store validates next and makes it current. The secret is copied so that
// later changes to the caller's slice are not observed.
func (s *SettingsStore) Store(next Settings) error {
	if err := ValidateAuthSettings(string(next.Secret), next.TokenLifetimeMinutes); err != nil {
		return err
	}
	snapshot := &Settings{
		Secret:               bytes.Clone(next.Secret),
		TokenLifetimeMinutes: next.TokenLifetimeMinutes,
	}
	s.current.Store(snapshot)
	return nil
}

// Equal reports whether a and b hold the same values.
func (a Settings) Equal(b Settings) bool {
	return a.TokenLifetimeMinutes == b.TokenLifetimeMinutes && bytes.Equal(a.Secret, b.Secret)
}
