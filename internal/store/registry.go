// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/jeranaias/gemchat-tui/internal/model"
)

// registryKey is the fixed KV key holding the whole serialized registry.
const registryKey = "sessions/registry"

// ErrSessionNotFound is returned when a session ID is unknown. Stream
// results arriving for a deleted session hit this and are discarded.
var ErrSessionNotFound = &StoreError{Message: "session not found"}

// =============================================================================
// REGISTRY
// =============================================================================

// Registry owns every session and is the only writer to the KV. It
// maintains the invariant that at least one session exists and the active
// ID always names a live session. All mutations persist before returning.
type Registry struct {
	mu       sync.RWMutex
	kv       KV
	sessions map[string]*model.Session
	activeID string
}

// registryBlob is the persisted wire shape.
type registryBlob struct {
	ActiveID string           `json:"active_id"`
	Sessions []*model.Session `json:"sessions"`
}

// NewRegistry loads the registry from kv. A missing blob starts fresh; so
// does a corrupt one, because refusing to start over a damaged history file
// would lock the user out of the whole app.
func NewRegistry(kv KV) (*Registry, error) {
	r := &Registry{
		kv:       kv,
		sessions: make(map[string]*model.Session),
	}

	data, err := kv.Get(registryKey)
	switch {
	case err == nil:
		var blob registryBlob
		if jsonErr := json.Unmarshal(data, &blob); jsonErr == nil {
			for _, s := range blob.Sessions {
				if s.Conversation == nil {
					s.Conversation = model.NewConversation()
				}
				r.sessions[s.ID] = s
			}
			if _, ok := r.sessions[blob.ActiveID]; ok {
				r.activeID = blob.ActiveID
			}
		}
	case errors.Is(err, ErrKeyNotFound):
		// First run.
	default:
		return nil, fmt.Errorf("failed to load sessions: %w", err)
	}

	if len(r.sessions) == 0 {
		s := model.NewSession()
		r.sessions[s.ID] = s
		r.activeID = s.ID
	}
	if r.activeID == "" {
		r.activeID = r.mostRecentLocked().ID
	}

	if err := r.persistLocked(); err != nil {
		return nil, err
	}
	return r, nil
}

// =============================================================================
// SESSION LIFECYCLE
// =============================================================================

// Create adds an empty session, makes it active, and persists.
func (r *Registry) Create() (*model.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	s := model.NewSession()
	r.sessions[s.ID] = s
	r.activeID = s.ID
	if err := r.persistLocked(); err != nil {
		delete(r.sessions, s.ID)
		return nil, err
	}
	return s.Clone(), nil
}

// Select makes the given session active.
func (r *Registry) Select(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.sessions[id]; !ok {
		return ErrSessionNotFound
	}
	if r.activeID == id {
		return nil
	}
	prev := r.activeID
	r.activeID = id
	if err := r.persistLocked(); err != nil {
		r.activeID = prev
		return err
	}
	return nil
}

// Delete removes a session. If the active session is deleted the most
// recently updated survivor becomes active; deleting the last session
// replaces it with a fresh empty one so the registry is never empty.
func (r *Registry) Delete(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	victim, ok := r.sessions[id]
	if !ok {
		return ErrSessionNotFound
	}
	delete(r.sessions, id)

	if len(r.sessions) == 0 {
		s := model.NewSession()
		r.sessions[s.ID] = s
		r.activeID = s.ID
	} else if r.activeID == id {
		r.activeID = r.mostRecentLocked().ID
	}

	if err := r.persistLocked(); err != nil {
		r.sessions[id] = victim
		return err
	}
	return nil
}

// =============================================================================
// READS
// =============================================================================

// ActiveID returns the active session's ID.
func (r *Registry) ActiveID() string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.activeID
}

// Active returns a deep copy of the active session. Callers never see the
// registry's own instance, so reads cannot race writes.
func (r *Registry) Active() *model.Session {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.sessions[r.activeID].Clone()
}

// Get returns a deep copy of the session with the given ID.
func (r *Registry) Get(id string) (*model.Session, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return s.Clone(), nil
}

// SessionMeta is a listing row for the session sidebar.
type SessionMeta struct {
	ID           string
	Title        string
	MessageCount int
	UpdatedAt    time.Time
	Active       bool
}

// List returns session metadata, most recently updated first.
func (r *Registry) List() []SessionMeta {
	r.mu.RLock()
	defer r.mu.RUnlock()

	metas := make([]SessionMeta, 0, len(r.sessions))
	for _, s := range r.sessions {
		metas = append(metas, SessionMeta{
			ID:           s.ID,
			Title:        s.Title,
			MessageCount: s.Conversation.Len(),
			UpdatedAt:    s.UpdatedAt,
			Active:       s.ID == r.activeID,
		})
	}
	sort.Slice(metas, func(i, j int) bool {
		return metas[i].UpdatedAt.After(metas[j].UpdatedAt)
	})
	return metas
}

// Len returns the number of sessions.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}

// =============================================================================
// MUTATION
// =============================================================================

// Update is the single write path for session content. The mutator runs
// under the registry lock against the stored session; on success the
// session is touched, its title derived if still pending, and the whole
// registry persisted. A missing ID returns ErrSessionNotFound, which is how
// late stream results for a deleted session get dropped.
func (r *Registry) Update(id string, fn func(*model.Session) error) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.sessions[id]
	if !ok {
		return ErrSessionNotFound
	}
	if err := fn(s); err != nil {
		return err
	}
	s.Touch()
	s.DeriveTitle()
	return r.persistLocked()
}

// RecordTurn replaces a session's conversation with a snapshot and persists.
// The registry stores its own deep copy, so the caller's working copy stays
// independent after the call.
func (r *Registry) RecordTurn(id string, conv *model.Conversation) error {
	return r.Update(id, func(s *model.Session) error {
		s.Conversation = conv.Clone()
		return nil
	})
}

// =============================================================================
// INTERNALS
// =============================================================================

// persistLocked serializes and writes the registry. Caller holds the lock.
func (r *Registry) persistLocked() error {
	blob := registryBlob{
		ActiveID: r.activeID,
		Sessions: make([]*model.Session, 0, len(r.sessions)),
	}
	for _, s := range r.sessions {
		blob.Sessions = append(blob.Sessions, s)
	}
	sort.Slice(blob.Sessions, func(i, j int) bool {
		return blob.Sessions[i].CreatedAt.Before(blob.Sessions[j].CreatedAt)
	})

	data, err := json.Marshal(blob)
	if err != nil {
		return fmt.Errorf("failed to serialize sessions: %w", err)
	}
	if err := r.kv.Put(registryKey, data); err != nil {
		return fmt.Errorf("failed to persist sessions: %w", err)
	}
	return nil
}

// mostRecentLocked returns the most recently updated session. Caller holds
// the lock and guarantees the map is non-empty.
func (r *Registry) mostRecentLocked() *model.Session {
	var best *model.Session
	for _, s := range r.sessions {
		if best == nil || s.UpdatedAt.After(best.UpdatedAt) {
			best = s
		}
	}
	return best
}
