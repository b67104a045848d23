package protocol

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
)

var (
	ErrInvalidUpdate  = errors.New("invalid update")
	ErrInvalidCommand = errors.New("invalid command")
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	// report wire names rather than Go field names
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Envelope is one inbound server message. Players and Turn are opaque and
// passed through untouched. Height and Width are capped at 4096.
type Envelope struct {
	Height  *int            `json:"height" validate:"required,gte=0,lte=4096"`
	Width   *int            `json:"width" validate:"required,gte=0,lte=4096"`
	Players json.RawMessage `json:"players" validate:"required"`
	Turn    json.RawMessage `json:"turn" validate:"required"`
	Tiles   []TileUpdate    `json:"tiles" validate:"required"`
}

// TileUpdate is one [index, patch] pair. A nil Patch means the tile is out
// of vision and must be reset to the impassable default.
type TileUpdate struct {
	Index int
	Patch *Patch
}

// Patch is a partial cell update. Absent fields reset to the default. Units
// and Owner are kept raw so their integer-ness can be checked strictly.
type Patch struct {
	Kind  json.RawMessage `json:"kind,omitempty"`
	Units json.RawMessage `json:"units,omitempty"`
	Owner json.RawMessage `json:"owner,omitempty"`
}

var jsonNull = []byte("null")

func (t *TileUpdate) UnmarshalJSON(b []byte) error {
	var pair []json.RawMessage
	if err := json.Unmarshal(b, &pair); err != nil {
		return fmt.Errorf("tile must be an [index, patch] pair: %w", err)
	}
	if len(pair) != 2 {
		return fmt.Errorf("tile must have 2 elements, got %d", len(pair))
	}
	index, err := strconv.Atoi(string(bytes.TrimSpace(pair[0])))
	if err != nil {
		return fmt.Errorf("tile index %s is not an integer", pair[0])
	}

	raw := bytes.TrimSpace(pair[1])
	if bytes.Equal(raw, jsonNull) {
		*t = TileUpdate{Index: index}
		return nil
	}
	if len(raw) == 0 || raw[0] != '{' {
		return fmt.Errorf("tile %d patch must be an object or null", index)
	}
	var p Patch
	if err := json.Unmarshal(raw, &p); err != nil {
		return fmt.Errorf("tile %d patch: %w", index, err)
	}
	*t = TileUpdate{Index: index, Patch: &p}
	return nil
}

func (t TileUpdate) MarshalJSON() ([]byte, error) {
	if t.Patch == nil {
		return json.Marshal([]any{t.Index, nil})
	}
	return json.Marshal([]any{t.Index, t.Patch})
}

// Validate checks the required top-level fields.
func (e *Envelope) Validate() error {
	if err := validate.Struct(e); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			fields := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				fields = append(fields, fe.Field()+" ("+fe.Tag()+")")
			}
			return fmt.Errorf("%w: %s", ErrInvalidUpdate, strings.Join(fields, ", "))
		}
		return fmt.Errorf("%w: %w", ErrInvalidUpdate, err)
	}
	return nil
}

// Decode parses and validates an inbound message. Every failure wraps
// ErrInvalidUpdate.
func Decode(raw []byte) (Envelope, error) {
	var env Envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return Envelope{}, fmt.Errorf("%w: %w", ErrInvalidUpdate, err)
	}
	if err := env.Validate(); err != nil {
		return Envelope{}, err
	}
	return env, nil
}
