package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/dukerupert/liste/internal/model"
)

// preferenceKeys lists the keys a user may store.
var preferenceKeys = []string{
	model.PrefDarkMode,
	model.PrefCollapsedStores,
}

// IsPreferenceKey reports whether key is a known preference.
func IsPreferenceKey(key string) bool {
	for _, k := range preferenceKeys {
		if k == key {
			return true
		}
	}
	return false
}

type PreferenceStore struct {
	db *sql.DB
}

func NewPreferenceStore(db *sql.DB) *PreferenceStore {
	return &PreferenceStore{db: db}
}

// Get returns the value for key, or "" when the user never set it.
func (s *PreferenceStore) Get(user, key string) (string, error) {
	var value string
	err := s.db.QueryRow(`SELECT value FROM preferences WHERE user = ? AND key = ?`, user, key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("get preference %q: %w", key, err)
	}
	return value, nil
}

func (s *PreferenceStore) GetAll(user string) (map[string]string, error) {
	rows, err := s.db.Query(`SELECT key, value FROM preferences WHERE user = ? ORDER BY key`, user)
	if err != nil {
		return nil, fmt.Errorf("get all preferences: %w", err)
	}
	defer rows.Close()

	prefs := make(map[string]string)
	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return nil, fmt.Errorf("scan preference: %w", err)
		}
		prefs[key] = value
	}
	return prefs, rows.Err()
}

func (s *PreferenceStore) Set(user, key, value string) error {
	_, err := s.db.Exec(
		`INSERT INTO preferences (user, key, value, updated_at) VALUES (?, ?, ?, ?)
		 ON CONFLICT(user, key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		user, key, value, time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("set preference %q: %w", key, err)
	}
	return nil
}
