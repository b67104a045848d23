package store

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/ManadaHerath/realtime-grid-client/internal/grid"
)

var (
	ErrSnapshotNotFound = errors.New("snapshot not found")
	ErrMissingSession   = errors.New("session id required")
)

// Snapshot is the persisted state of one session's grid. Cells only needs to
// hold non-default cells.
type Snapshot struct {
	SessionID string          `json:"sessionId"`
	Height    int             `json:"height"`
	Width     int             `json:"width"`
	Turn      json.RawMessage `json:"turn,omitempty"`
	Players   json.RawMessage `json:"players,omitempty"`
	Cells     []grid.View     `json:"cells"`
	SavedAt   time.Time       `json:"savedAt"`
}

type Store interface {
	Save(ctx context.Context, snap Snapshot) error
	Load(ctx context.Context, sessionID string) (Snapshot, error)
	Delete(ctx context.Context, sessionID string) error
}

type MemStore struct {
	mu        sync.RWMutex
	snapshots map[string]Snapshot
}

func NewMemStore() Store {
	return &MemStore{
		snapshots: make(map[string]Snapshot),
	}
}

func (s *MemStore) Save(_ context.Context, snap Snapshot) error {
	if snap.SessionID == "" {
		return ErrMissingSession
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snapshots[snap.SessionID] = clone(snap)
	return nil
}

func (s *MemStore) Load(_ context.Context, sessionID string) (Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap, ok := s.snapshots[sessionID]
	if !ok {
		return Snapshot{}, ErrSnapshotNotFound
	}
	return clone(snap), nil
}

func (s *MemStore) Delete(_ context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.snapshots, sessionID)
	return nil
}

// clone copies everything a caller could mutate.
func clone(snap Snapshot) Snapshot {
	out := snap
	out.Turn = append(json.RawMessage(nil), snap.Turn...)
	out.Players = append(json.RawMessage(nil), snap.Players...)
	out.Cells = make([]grid.View, len(snap.Cells))
	for i, v := range snap.Cells {
		if v.Units != nil {
			n := *v.Units
			v.Units = &n
		}
		if v.Owner != nil {
			n := *v.Owner
			v.Owner = &n
		}
		out.Cells[i] = v
	}
	return out
}
