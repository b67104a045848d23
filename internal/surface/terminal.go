package surface

import (
	"context"
	"fmt"
	"time"

	"github.com/nsf/termbox-go"
	"github.com/rs/zerolog/log"

	"github.com/ManadaHerath/realtime-grid-client/internal/grid"
)

const (
	cellWidth      = 4
	redrawInterval = 200 * time.Millisecond
	helpLine       = "click select  w/a/s/d move  esc cancel  ctrl+r resign  q quit"
)

var ownerColors = []termbox.Attribute{
	termbox.ColorRed,
	termbox.ColorBlue,
	termbox.ColorGreen,
	termbox.ColorYellow,
	termbox.ColorMagenta,
	termbox.ColorCyan,
}

// InputSink receives decoded player input.
type InputSink interface {
	Click(index int)
	Key(code string) (bool, error)
	CancelMoves() error
	Resign() error
}

// Terminal draws a Memory surface with termbox and turns keyboard and mouse
// events into InputSink calls.
type Terminal struct {
	mem    *Memory
	mirror *Mirror
}

func NewTerminal(mem *Memory, mirror *Mirror) *Terminal {
	return &Terminal{mem: mem, mirror: mirror}
}

type actionKind int

const (
	actNone actionKind = iota
	actKey
	actClick
	actCancel
	actResign
	actQuit
	actRedraw
	actError
)

type action struct {
	kind actionKind
	code string
	x, y int
	err  error
}

func translate(ev termbox.Event) action {
	switch ev.Type {
	case termbox.EventKey:
		switch {
		case ev.Ch == 'q':
			return action{kind: actQuit}
		case ev.Ch != 0:
			return action{kind: actKey, code: string(ev.Ch)}
		case ev.Key == termbox.KeyCtrlC:
			return action{kind: actQuit}
		case ev.Key == termbox.KeyEsc:
			return action{kind: actCancel}
		case ev.Key == termbox.KeyCtrlR:
			return action{kind: actResign}
		}
	case termbox.EventMouse:
		if ev.Key == termbox.MouseLeft {
			return action{kind: actClick, x: ev.MouseX, y: ev.MouseY}
		}
	case termbox.EventResize:
		return action{kind: actRedraw}
	case termbox.EventError:
		return action{kind: actError, err: ev.Err}
	}
	return action{kind: actNone}
}

// indexAt maps a screen position to the cell drawn there.
func (t *Terminal) indexAt(x, y int) (int, bool) {
	rows := t.mem.Rows()
	if x < 0 || y < 0 || y >= len(rows) {
		return 0, false
	}
	col := x / cellWidth
	if col >= len(rows[y]) {
		return 0, false
	}
	return t.mirror.IndexOf(rows[y][col])
}

// Run takes over the terminal until ctx is done or the player quits.
func (t *Terminal) Run(ctx context.Context, sink InputSink) error {
	if err := termbox.Init(); err != nil {
		return fmt.Errorf("init terminal: %w", err)
	}
	defer termbox.Close()
	termbox.SetInputMode(termbox.InputEsc | termbox.InputMouse)

	events := make(chan termbox.Event)
	done := make(chan struct{})
	go func() {
		for {
			ev := termbox.PollEvent()
			if ev.Type == termbox.EventInterrupt {
				return
			}
			select {
			case events <- ev:
			case <-done:
				return
			}
		}
	}()
	defer func() {
		close(done)
		termbox.Interrupt()
	}()

	ticker := time.NewTicker(redrawInterval)
	defer ticker.Stop()

	t.Draw()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			t.Draw()
		case ev := <-events:
			quit, err := t.handle(translate(ev), sink)
			if err != nil {
				return err
			}
			if quit {
				return nil
			}
			t.Draw()
		}
	}
}

func (t *Terminal) handle(a action, sink InputSink) (bool, error) {
	switch a.kind {
	case actQuit:
		return true, nil
	case actError:
		return false, a.err
	case actKey:
		if _, err := sink.Key(a.code); err != nil {
			log.Warn().Err(err).Str("key", a.code).Msg("move not sent")
		}
	case actClick:
		if i, ok := t.indexAt(a.x, a.y); ok {
			sink.Click(i)
		}
	case actCancel:
		if err := sink.CancelMoves(); err != nil {
			log.Warn().Err(err).Msg("cancel not sent")
		}
	case actResign:
		if err := sink.Resign(); err != nil {
			log.Warn().Err(err).Msg("resign not sent")
		}
	}
	return false, nil
}

// Draw renders every node plus a help line below the grid.
func (t *Terminal) Draw() {
	_ = termbox.Clear(termbox.ColorDefault, termbox.ColorDefault)
	rows := t.mem.Rows()
	for y, row := range rows {
		for c, n := range row {
			label, fg, bg := glyph(t.mem, n)
			x := c * cellWidth
			for i, r := range fmt.Sprintf("%-*s", cellWidth, label) {
				termbox.SetCell(x+i, y, r, fg, bg)
			}
		}
	}
	for i, r := range helpLine {
		termbox.SetCell(i, len(rows)+1, r, termbox.ColorDefault, termbox.ColorDefault)
	}
	_ = termbox.Flush()
}

// glyph picks the label and colors for one node. Units win over terrain.
func glyph(s Surface, n Node) (string, termbox.Attribute, termbox.Attribute) {
	v, err := Decode(s, n)
	if err != nil {
		return "?", termbox.ColorWhite, termbox.ColorRed
	}

	label := "."
	switch v.Kind {
	case "mountain":
		label = "##"
	case "city":
		label = "C"
	case "general":
		label = "G"
	}
	if v.Units != nil {
		label = fmt.Sprint(*v.Units)
		if len(label) > cellWidth-1 {
			label = "999"
		}
	}

	fg, bg := termbox.ColorDefault, termbox.ColorDefault
	if v.Owner != nil {
		fg = ownerColors[*v.Owner%len(ownerColors)]
	}
	if !v.Visible && v.Kind != "mountain" {
		fg |= termbox.AttrDim
	}
	if v.Selected {
		fg |= termbox.AttrReverse | termbox.AttrBold
	}
	return label, fg, bg
}

var _ Surface = (*Memory)(nil)
var _ grid.Observer = (*Mirror)(nil)
