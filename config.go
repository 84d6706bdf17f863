package throttle

import (
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"
)

var (
	ErrNilFunc      = errors.New("function must not be nil")
	ErrNegativeWait = errors.New("must not be negative")
	ErrNoEdges      = errors.New("at least one edge must be enabled")
	ErrUnknownEdge  = errors.New("unknown edge")
)

// Edge selects when, relative to a throttling window, the wrapped
// function is invoked.
type Edge int

const (
	// Leading invokes on the first call of a window.
	Leading Edge = iota + 1
	// Trailing invokes once at the end of a window with the latest
	// arguments received during it.
	Trailing
)

func (e Edge) String() string {
	switch e {
	case Leading:
		return "leading"
	case Trailing:
		return "trailing"
	}
	return fmt.Sprintf("Edge(%d)", int(e))
}

// ParseEdge parses "leading" or "trailing", case-insensitively.
func ParseEdge(s string) (Edge, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "leading":
		return Leading, nil
	case "trailing":
		return Trailing, nil
	}
	return 0, fmt.Errorf("%q: %w", s, ErrUnknownEdge)
}

func (e Edge) MarshalText() ([]byte, error) {
	if e != Leading && e != Trailing {
		return nil, fmt.Errorf("%d: %w", int(e), ErrUnknownEdge)
	}
	return []byte(e.String()), nil
}

func (e *Edge) UnmarshalText(text []byte) error {
	v, err := ParseEdge(string(text))
	if err != nil {
		return err
	}
	*e = v
	return nil
}

// Config tunes a Throttle. A nil *Config is equivalent to the zero value.
type Config struct {
	// Edges enabled for the throttle. Nil means Leading only; an empty,
	// non-nil slice is rejected.
	Edges []Edge
	// Signal, when cancelled, permanently stops the throttle. A signal
	// that is already cancelled at construction makes it inert.
	Signal Signal
	// Logger receives debug events. Defaults to a no-op logger.
	Logger *zap.Logger
	// OnPanic receives the value of a panic raised by a trailing call.
	// When nil such panics are not recovered.
	OnPanic func(any)
}

type edgeSet struct {
	leading  bool
	trailing bool
}

func (c *Config) edges() (edgeSet, error) {
	if c == nil || c.Edges == nil {
		return edgeSet{leading: true}, nil
	}
	if len(c.Edges) == 0 {
		return edgeSet{}, ErrNoEdges
	}

	var set edgeSet
	for _, e := range c.Edges {
		switch e {
		case Leading:
			set.leading = true
		case Trailing:
			set.trailing = true
		default:
			return edgeSet{}, fmt.Errorf("%s: %w", e, ErrUnknownEdge)
		}
	}
	return set, nil
}

func (c *Config) logger() *zap.Logger {
	if c == nil || c.Logger == nil {
		return zap.NewNop()
	}
	return c.Logger
}

func (c *Config) signal() Signal {
	if c == nil {
		return nil
	}
	return c.Signal
}

func (c *Config) onPanic() func(any) {
	if c == nil {
		return nil
	}
	return c.OnPanic
}
