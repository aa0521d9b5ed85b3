package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"accel-catalog/internal/model"
	"accel-catalog/internal/pkg/sanitize"
)

// ErrValidation marks malformed or missing input (blank playlist name,
// un-mergeable payload).
var ErrValidation = errors.New("invalid input")

const preferencesDoc = "userPreferences"

// Preferences stores per-user personalization in a single keyed document.
// Reads never persist anything; only mutating calls lazily create a user's
// record.
type Preferences struct {
	docs *Documents
}

func NewPreferences(docs *Documents) *Preferences {
	return &Preferences{docs: docs}
}

// Get returns the stored preferences for the email, or a fresh default
// record (not persisted) if the user has never stored anything.
func (p *Preferences) Get(email string) (*model.UserPreferences, error) {
	l := p.docs.Lock(preferencesDoc)
	l.Lock()
	defer l.Unlock()

	doc, err := p.load()
	if err != nil {
		return nil, err
	}
	if prefs, ok := doc.Users[sanitize.UserKey(email)]; ok {
		return prefs, nil
	}
	return model.DefaultPreferences(email), nil
}

// Merge overlays the supplied fields onto the existing-or-default record and
// persists it. PUT and PATCH share these semantics.
func (p *Preferences) Merge(email string, fields map[string]any) (*model.UserPreferences, error) {
	return p.mutate(email, func(prefs *model.UserPreferences) (*model.UserPreferences, error) {
		merged, err := overlay(prefs, fields)
		if err != nil {
			return nil, err
		}
		merged.Email = email
		return merged, nil
	})
}

// CreatePlaylist appends a new empty playlist under the user, creating the
// user's record if needed.
func (p *Preferences) CreatePlaylist(email, name string) (*model.Playlist, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("playlist name is required: %w", ErrValidation)
	}

	var created model.Playlist
	_, err := p.mutate(email, func(prefs *model.UserPreferences) (*model.UserPreferences, error) {
		created = model.Playlist{
			ID:             uuid.NewString(),
			Name:           name,
			AcceleratorIDs: []int64{},
			CreatedAt:      time.Now().UTC(),
		}
		prefs.Playlists = append(prefs.Playlists, created)
		return prefs, nil
	})
	if err != nil {
		return nil, err
	}
	return &created, nil
}

// UpdatePlaylist merges fields over an existing playlist. The playlist id is
// immutable regardless of the body.
func (p *Preferences) UpdatePlaylist(email, playlistID string, fields map[string]any) (*model.Playlist, error) {
	var updated model.Playlist
	err := p.mutateExisting(email, func(prefs *model.UserPreferences) error {
		idx := playlistIndex(prefs, playlistID)
		if idx < 0 {
			return fmt.Errorf("playlist %s: %w", playlistID, ErrNotFound)
		}
		merged, err := overlay(&prefs.Playlists[idx], fields)
		if err != nil {
			return err
		}
		merged.ID = playlistID
		prefs.Playlists[idx] = *merged
		updated = *merged
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

func (p *Preferences) DeletePlaylist(email, playlistID string) error {
	return p.mutateExisting(email, func(prefs *model.UserPreferences) error {
		idx := playlistIndex(prefs, playlistID)
		if idx < 0 {
			return fmt.Errorf("playlist %s: %w", playlistID, ErrNotFound)
		}
		prefs.Playlists = append(prefs.Playlists[:idx], prefs.Playlists[idx+1:]...)
		return nil
	})
}

// ToggleAccelerator flips the accelerator's membership in the playlist:
// present removes it, absent appends it. Repeated calls alternate.
func (p *Preferences) ToggleAccelerator(email, playlistID string, acceleratorID int64) (*model.Playlist, error) {
	var toggled model.Playlist
	err := p.mutateExisting(email, func(prefs *model.UserPreferences) error {
		idx := playlistIndex(prefs, playlistID)
		if idx < 0 {
			return fmt.Errorf("playlist %s: %w", playlistID, ErrNotFound)
		}
		pl := &prefs.Playlists[idx]
		removed := false
		for i, id := range pl.AcceleratorIDs {
			if id == acceleratorID {
				pl.AcceleratorIDs = append(pl.AcceleratorIDs[:i], pl.AcceleratorIDs[i+1:]...)
				removed = true
				break
			}
		}
		if !removed {
			pl.AcceleratorIDs = append(pl.AcceleratorIDs, acceleratorID)
		}
		toggled = *pl
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &toggled, nil
}

// SetHidden replaces the hidden-accelerator list verbatim.
func (p *Preferences) SetHidden(email string, ids []int64) ([]int64, error) {
	if ids == nil {
		ids = []int64{}
	}
	prefs, err := p.mutate(email, func(prefs *model.UserPreferences) (*model.UserPreferences, error) {
		prefs.HiddenAccelerators = ids
		return prefs, nil
	})
	if err != nil {
		return nil, err
	}
	return prefs.HiddenAccelerators, nil
}

// SetOrder replaces the display-order list verbatim.
func (p *Preferences) SetOrder(email string, ids []int64) ([]int64, error) {
	if ids == nil {
		ids = []int64{}
	}
	prefs, err := p.mutate(email, func(prefs *model.UserPreferences) (*model.UserPreferences, error) {
		prefs.AcceleratorOrder = ids
		return prefs, nil
	})
	if err != nil {
		return nil, err
	}
	return prefs.AcceleratorOrder, nil
}

// mutate runs fn over the existing-or-default record for the email and
// persists the result with a fresh updatedAt stamp.
func (p *Preferences) mutate(email string, fn func(*model.UserPreferences) (*model.UserPreferences, error)) (*model.UserPreferences, error) {
	l := p.docs.Lock(preferencesDoc)
	l.Lock()
	defer l.Unlock()

	doc, err := p.load()
	if err != nil {
		return nil, err
	}
	key := sanitize.UserKey(email)
	prefs, ok := doc.Users[key]
	if !ok {
		prefs = model.DefaultPreferences(email)
	}

	next, err := fn(prefs)
	if err != nil {
		return nil, err
	}
	next.UpdatedAt = time.Now().UTC()
	doc.Users[key] = next
	if err := p.docs.Save(preferencesDoc, doc); err != nil {
		return nil, err
	}
	return next, nil
}

// mutateExisting is mutate for operations that require the user to already
// have a record (playlist update, delete, toggle).
func (p *Preferences) mutateExisting(email string, fn func(*model.UserPreferences) error) error {
	l := p.docs.Lock(preferencesDoc)
	l.Lock()
	defer l.Unlock()

	doc, err := p.load()
	if err != nil {
		return err
	}
	key := sanitize.UserKey(email)
	prefs, ok := doc.Users[key]
	if !ok {
		return fmt.Errorf("user %s: %w", email, ErrNotFound)
	}
	if err := fn(prefs); err != nil {
		return err
	}
	prefs.UpdatedAt = time.Now().UTC()
	return p.docs.Save(preferencesDoc, doc)
}

func (p *Preferences) load() (*model.PreferencesDoc, error) {
	doc := &model.PreferencesDoc{}
	def := &model.PreferencesDoc{Users: map[string]*model.UserPreferences{}}
	if err := p.docs.Load(preferencesDoc, def, doc); err != nil {
		return nil, err
	}
	if doc.Users == nil {
		doc.Users = map[string]*model.UserPreferences{}
	}
	return doc, nil
}

func playlistIndex(prefs *model.UserPreferences, id string) int {
	for i := range prefs.Playlists {
		if prefs.Playlists[i].ID == id {
			return i
		}
	}
	return -1
}

// overlay merges the supplied JSON fields over a typed value by round-tripping
// both through a generic map. Unknown keys are dropped; mismatched types fail
// as validation errors.
func overlay[T any](existing *T, fields map[string]any) (*T, error) {
	base, err := json.Marshal(existing)
	if err != nil {
		return nil, fmt.Errorf("marshal preferences failed: %w", err)
	}
	m := map[string]any{}
	if err := json.Unmarshal(base, &m); err != nil {
		return nil, fmt.Errorf("decode preferences failed: %w", err)
	}
	for k, v := range fields {
		m[k] = v
	}
	merged, err := json.Marshal(m)
	if err != nil {
		return nil, fmt.Errorf("marshal merged preferences failed: %w", err)
	}
	out := new(T)
	if err := json.Unmarshal(merged, out); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}
	return out, nil
}
