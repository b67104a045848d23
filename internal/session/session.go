package session

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/ManadaHerath/realtime-grid-client/internal/controller"
	"github.com/ManadaHerath/realtime-grid-client/internal/diagnostics"
	"github.com/ManadaHerath/realtime-grid-client/internal/grid"
	"github.com/ManadaHerath/realtime-grid-client/internal/protocol"
	"github.com/ManadaHerath/realtime-grid-client/internal/store"
	"github.com/ManadaHerath/realtime-grid-client/internal/update"
)

// Session is one client's game state: the grid, the synchronizer feeding it,
// the controller driving it, and the opaque turn/players passthrough.
// Every entry point runs to completion under one lock.
type Session struct {
	ID string

	mu       sync.Mutex
	grid     *grid.Grid
	updater  *update.Synchronizer
	ctrl     *controller.Controller
	store    store.Store
	reporter diagnostics.Reporter
	turn     json.RawMessage
	players  json.RawMessage
}

type Option func(*Session)

func WithID(id string) Option {
	return func(s *Session) {
		if id != "" {
			s.ID = id
		}
	}
}

// WithStore persists a snapshot after every applied message.
func WithStore(st store.Store) Option {
	return func(s *Session) { s.store = st }
}

func WithReporter(r diagnostics.Reporter) Option {
	return func(s *Session) { s.reporter = r }
}

func WithObserver(o grid.Observer) Option {
	return func(s *Session) { s.grid.Observe(o) }
}

// New builds a session whose commands go to out. Without WithID a fresh
// UUID is used; without WithReporter dropped messages are only logged.
func New(out controller.Sender, opts ...Option) *Session {
	g := grid.New()
	s := &Session{
		ID:       uuid.NewString(),
		grid:     g,
		updater:  update.New(),
		ctrl:     controller.New(g, out),
		reporter: diagnostics.LogReporter{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// HandleMessage decodes and applies one inbound message. A rejected message
// is reported and returned; the grid is left as it was.
func (s *Session) HandleMessage(ctx context.Context, raw []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	env, err := protocol.Decode(raw)
	if err != nil {
		return s.drop(ctx, raw, err)
	}
	if err := s.updater.Apply(s.grid, env); err != nil {
		return s.drop(ctx, raw, err)
	}
	s.turn = env.Turn
	s.players = env.Players

	if s.store != nil {
		if err := s.store.Save(ctx, s.snapshot()); err != nil {
			log.Error().Err(err).Str("session", s.ID).Msg("failed to save snapshot")
		}
	}
	return nil
}

func (s *Session) drop(ctx context.Context, raw []byte, err error) error {
	d := diagnostics.New(s.ID, raw, err)
	if rerr := s.reporter.Report(ctx, d); rerr != nil {
		log.Error().Err(rerr).Str("session", s.ID).Msg("failed to report diagnostic")
	}
	return err
}

func (s *Session) snapshot() store.Snapshot {
	snap := store.Snapshot{
		SessionID: s.ID,
		Height:    s.grid.Height(),
		Width:     s.grid.Width(),
		Turn:      s.turn,
		Players:   s.players,
		SavedAt:   time.Now().UTC(),
	}
	for _, v := range s.grid.Views() {
		if !v.IsDefault() {
			snap.Cells = append(snap.Cells, v)
		}
	}
	return snap
}

// Restore loads the last snapshot saved for this session's ID.
func (s *Session) Restore(ctx context.Context) error {
	if s.store == nil {
		return store.ErrSnapshotNotFound
	}
	snap, err := s.store.Load(ctx, s.ID)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.grid.Restore(snap.Height, snap.Width, snap.Cells); err != nil {
		return fmt.Errorf("restore session %s: %w", s.ID, err)
	}
	s.turn = snap.Turn
	s.players = snap.Players
	return nil
}

func (s *Session) Click(index int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ctrl.CellClicked(index)
}

// Key handles a key code, reporting whether a move was sent.
func (s *Session) Key(code string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ctrl.KeyPressed(code)
}

func (s *Session) Direction(d grid.Direction) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ctrl.DirectionKey(d)
}

func (s *Session) Resign() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ctrl.Resign()
}

func (s *Session) CancelMoves() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ctrl.CancelMoves()
}

type Summary struct {
	ID       string          `json:"id"`
	Turn     json.RawMessage `json:"turn,omitempty"`
	Players  json.RawMessage `json:"players,omitempty"`
	Height   int             `json:"height"`
	Width    int             `json:"width"`
	Length   int             `json:"length"`
	Selected *int            `json:"selected"`
}

func (s *Session) Summary() Summary {
	s.mu.Lock()
	defer s.mu.Unlock()

	sum := Summary{
		ID:      s.ID,
		Turn:    append(json.RawMessage(nil), s.turn...),
		Players: append(json.RawMessage(nil), s.players...),
		Height:  s.grid.Height(),
		Width:   s.grid.Width(),
		Length:  s.grid.Length(),
	}
	if i, ok := s.grid.Selected(); ok {
		sum.Selected = &i
	}
	return sum
}

func (s *Session) Cells() []grid.View {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.grid.Views()
}

func (s *Session) Cell(index int) (grid.View, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, err := s.grid.Cell(index)
	if err != nil {
		return grid.View{}, err
	}
	return c.View(), nil
}
