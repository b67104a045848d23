package protocol

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
)

// Outbound command types.
const (
	TypeMove        = "move"
	TypeResign      = "resign"
	TypeCancelMoves = "cancel_moves"
)

// Command is an outbound message. From and Direction are only set for moves.
type Command struct {
	Type      string `json:"type" validate:"required,oneof=move resign cancel_moves"`
	From      *int   `json:"from,omitempty" validate:"omitempty,gte=0"`
	Direction string `json:"direction,omitempty" validate:"omitempty,oneof=up down left right"`
}

func Move(from int, direction string) Command {
	return Command{Type: TypeMove, From: &from, Direction: direction}
}

func Resign() Command {
	return Command{Type: TypeResign}
}

func CancelMoves() Command {
	return Command{Type: TypeCancelMoves}
}

func (c Command) Validate() error {
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			fe := verrs[0]
			return fmt.Errorf("%w: %s failed %s", ErrInvalidCommand, fe.Field(), fe.Tag())
		}
		return fmt.Errorf("%w: %w", ErrInvalidCommand, err)
	}

	isMove := c.Type == TypeMove
	switch {
	case isMove && (c.From == nil || c.Direction == ""):
		return fmt.Errorf("%w: move needs from and direction", ErrInvalidCommand)
	case !isMove && (c.From != nil || c.Direction != ""):
		return fmt.Errorf("%w: %s takes no from or direction", ErrInvalidCommand, c.Type)
	}
	return nil
}
