package macro

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/rivo/uniseg"

	"github.com/dshills/folio/internal/input/key"
)

// Target receives replayed gestures. *editor.Editor implements it.
type Target interface {
	HandleKey(ev key.Event) bool
	HandleTextInput(text string) error
	PasteHTML(src string) error
	Exec(name string) (bool, error)
	Undo() bool
	Redo() bool
}

// Report summarizes a playback.
type Report struct {
	// Played counts gestures delivered.
	Played int
	// Ignored lists gestures the target did not act on: unhandled keys,
	// inactive commands and undo or redo with empty stacks.
	Ignored []Gesture
}

// Player replays macros.
type Player struct {
	mac    *bool
	strict bool

	mu      sync.Mutex
	playing atomic.Bool
	cancel  context.CancelFunc
}

// PlayerOption configures a Player.
type PlayerOption func(*Player)

// WithPlatform parses key gestures for a Mac (Mod is Meta) or not.
func WithPlatform(mac bool) PlayerOption {
	return func(p *Player) {
		p.mac = &mac
	}
}

// Strict makes ignored gestures fail the playback.
func Strict() PlayerOption {
	return func(p *Player) {
		p.strict = true
	}
}

// NewPlayer creates a player.
func NewPlayer(opts ...PlayerOption) *Player {
	p := &Player{}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Play delivers m to t count times (at least once). It stops at the
// first error, at cancellation of ctx or at Cancel.
func (p *Player) Play(ctx context.Context, m *Macro, count int, t Target) (Report, error) {
	var rep Report
	if m == nil || len(m.Gestures) == 0 {
		return rep, ErrEmptyMacro
	}
	if count < 1 {
		count = 1
	}

	ctx, cancel := context.WithCancel(ctx)
	p.mu.Lock()
	if p.playing.Load() {
		p.mu.Unlock()
		cancel()
		return rep, ErrAlreadyPlaying
	}
	p.cancel = cancel
	p.playing.Store(true)
	p.mu.Unlock()

	defer func() {
		cancel()
		p.playing.Store(false)
		p.mu.Lock()
		p.cancel = nil
		p.mu.Unlock()
	}()

	for i := 0; i < count; i++ {
		for idx, g := range m.Gestures {
			if err := ctx.Err(); err != nil {
				return rep, err
			}
			acted, err := p.deliver(g, t)
			if err != nil {
				return rep, &PlaybackError{Index: idx, Gesture: g, Err: err}
			}
			rep.Played++
			if !acted {
				if p.strict {
					return rep, &PlaybackError{Index: idx, Gesture: g, Err: fmt.Errorf("gesture had no effect")}
				}
				rep.Ignored = append(rep.Ignored, g)
			}
		}
	}
	return rep, nil
}

func (p *Player) deliver(g Gesture, t Target) (bool, error) {
	switch g.Kind {
	case KindKey:
		ev, err := p.parse(g.Value)
		if err != nil {
			return false, err
		}
		return t.HandleKey(ev), nil
	case KindText:
		return true, typeText(t, g.Value)
	case KindPaste:
		return true, t.PasteHTML(g.Value)
	case KindExec:
		return t.Exec(g.Value)
	case KindUndo:
		return t.Undo(), nil
	case KindRedo:
		return t.Redo(), nil
	}
	return false, fmt.Errorf("%w: unknown kind %q", ErrInvalidGesture, g.Kind)
}

// typeText delivers s one grapheme cluster at a time, the way a keyboard
// does, so input rules see every keystroke.
func typeText(t Target, s string) error {
	g := uniseg.NewGraphemes(s)
	for g.Next() {
		if err := t.HandleTextInput(g.Str()); err != nil {
			return err
		}
	}
	return nil
}

func (p *Player) parse(spec string) (key.Event, error) {
	if p.mac != nil {
		return key.ParseFor(spec, *p.mac)
	}
	return key.Parse(spec)
}

// IsPlaying reports whether a playback is running.
func (p *Player) IsPlaying() bool {
	return p.playing.Load()
}

// Cancel stops a running playback.
func (p *Player) Cancel() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.cancel != nil {
		p.cancel()
	}
}
