package model

import "time"

// Playlist is a named, user-owned grouping of accelerator identifiers. The ID
// is generated at creation time and never changes afterwards.
type Playlist struct {
	ID             string    `json:"id"`
	Name           string    `json:"name"`
	AcceleratorIDs []int64   `json:"acceleratorIds"`
	CreatedAt      time.Time `json:"createdAt"`
}

// UserPreferences holds one user's personalization of the catalog.
type UserPreferences struct {
	Email              string     `json:"email"`
	Playlists          []Playlist `json:"playlists"`
	HiddenAccelerators []int64    `json:"hiddenAccelerators"`
	AcceleratorOrder   []int64    `json:"acceleratorOrder"`
	CreatedAt          time.Time  `json:"createdAt"`
	UpdatedAt          time.Time  `json:"updatedAt"`
}

// PreferencesDoc is the single persisted document mapping normalized user
// keys to preference records.
type PreferencesDoc struct {
	Users map[string]*UserPreferences `json:"users"`
}

// DefaultPreferences returns the record handed out for users that have never
// stored anything. Slices are non-nil so they serialize as [] rather than null.
func DefaultPreferences(email string) *UserPreferences {
	now := time.Now().UTC()
	return &UserPreferences{
		Email:              email,
		Playlists:          []Playlist{},
		HiddenAccelerators: []int64{},
		AcceleratorOrder:   []int64{},
		CreatedAt:          now,
		UpdatedAt:          now,
	}
}
