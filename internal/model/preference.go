package model

import "time"

// Preference keys accepted by the preference store.
const (
	PrefDarkMode        = "dark_mode"
	PrefCollapsedStores = "collapsed_stores"
)

type Preference struct {
	User      string    `json:"user"`
	Key       string    `json:"key"`
	Value     string    `json:"value"`
	UpdatedAt time.Time `json:"updated_at"`
}
