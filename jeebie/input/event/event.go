package event

// Type is the edge of an input event.
type Type int

const (
	Press   Type = iota // key went down
	Release             // key went up
	Hold                // key still down, repeated by frontends without release events
)

func (t Type) String() string {
	switch t {
	case Press:
		return "press"
	case Release:
		return "release"
	}
	return "hold"
}
