package session

import (
	"fmt"

	"github.com/golang/geo/r2"
)

type EventKind int

const (
	PointerDown EventKind = iota
	PointerMove
	PointerUp
	Resize
	SetTarget
)

var kindNames = map[EventKind]string{
	PointerDown: "down",
	PointerMove: "move",
	PointerUp:   "up",
	Resize:      "resize",
	SetTarget:   "target",
}

func (k EventKind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return fmt.Sprintf("EventKind(%d)", int(k))
}

// ParseEventKind maps the names used in scenario files back to kinds.
func ParseEventKind(s string) (EventKind, error) {
	for k, name := range kindNames {
		if name == s {
			return k, nil
		}
	}
	return 0, fmt.Errorf("unknown event type: %q", s)
}

// Event is one input occurrence, already translated into chain
// coordinates. Width and Height are used by Resize only.
type Event struct {
	Kind   EventKind
	Point  r2.Point
	Width  float64
	Height float64
}
