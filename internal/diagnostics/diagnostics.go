package diagnostics

import (
	"context"
	"encoding/json"
	"errors"
	"time"
	"unicode/utf8"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"github.com/ManadaHerath/realtime-grid-client/internal/grid"
	"github.com/ManadaHerath/realtime-grid-client/internal/protocol"
	"github.com/ManadaHerath/realtime-grid-client/internal/update"
)

type Kind string

const (
	KindSchema     Kind = "schema"
	KindValidation Kind = "validation"
	KindRange      Kind = "range"
	KindDecode     Kind = "decode"
	KindDimension  Kind = "dimension"
	KindOther      Kind = "other"
)

// maxRaw caps how much of a dropped message is carried in a Diagnostic.
const maxRaw = 512

const publishTimeout = 5 * time.Second

// Diagnostic describes one dropped inbound message.
type Diagnostic struct {
	SessionID string    `json:"sessionId"`
	Kind      Kind      `json:"kind"`
	Error     string    `json:"error"`
	Raw       string    `json:"raw,omitempty"`
	At        time.Time `json:"at"`
}

type Reporter interface {
	Report(ctx context.Context, d Diagnostic) error
}

// Classify maps an error from the update path to its Kind.
func Classify(err error) Kind {
	switch {
	case errors.Is(err, protocol.ErrInvalidUpdate):
		return KindSchema
	case errors.Is(err, update.ErrDimensionMismatch):
		return KindDimension
	case errors.Is(err, grid.ErrOutOfRange):
		return KindRange
	case errors.Is(err, grid.ErrValidation):
		return KindValidation
	case errors.Is(err, grid.ErrDecode):
		return KindDecode
	default:
		return KindOther
	}
}

func New(sessionID string, raw []byte, err error) Diagnostic {
	return Diagnostic{
		SessionID: sessionID,
		Kind:      Classify(err),
		Error:     err.Error(),
		Raw:       truncate(string(raw), maxRaw),
		At:        time.Now().UTC(),
	}
}

// truncate cuts s to at most n bytes without splitting a UTF-8 sequence.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}

// LogReporter writes each diagnostic to the global logger at warn level.
type LogReporter struct{}

func (LogReporter) Report(_ context.Context, d Diagnostic) error {
	log.Warn().
		Str("session", d.SessionID).
		Str("kind", string(d.Kind)).
		Str("error", d.Error).
		Msg("dropped inbound message")
	return nil
}

// Channel is the pub/sub channel diagnostics for a session are published on.
func Channel(sessionID string) string {
	return "session:" + sessionID + ":diagnostics"
}

type RedisReporter struct {
	client *redis.Client
}

func NewRedisReporter(client *redis.Client) *RedisReporter {
	return &RedisReporter{client: client}
}

func (r *RedisReporter) Report(ctx context.Context, d Diagnostic) error {
	b, err := json.Marshal(d)
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()
	return r.client.Publish(ctx, Channel(d.SessionID), b).Err()
}

// Multi fans a diagnostic out to every reporter and joins their errors.
type Multi []Reporter

func (m Multi) Report(ctx context.Context, d Diagnostic) error {
	var errs []error
	for _, r := range m {
		if err := r.Report(ctx, d); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
