package trace

import "time"

// Kind represents the type of trace event.
type Kind uint8

const (
	KindSpanBegin Kind = iota + 1
	KindSpanEnd
	KindPoint
)

func (k Kind) String() string {
	switch k {
	case KindSpanBegin:
		return "begin"
	case KindSpanEnd:
		return "end"
	case KindPoint:
		return "point"
	default:
		return "unknown"
	}
}

// Scope is the granularity of an event. Lower values are coarser.
type Scope uint8

const (
	// ScopeDriver covers CLI commands and whole multi-unit runs.
	ScopeDriver Scope = iota + 1
	// ScopeUnit covers one symbol table.
	ScopeUnit
	// ScopeSymbol covers a single symbol.
	ScopeSymbol
)

func (s Scope) String() string {
	switch s {
	case ScopeDriver:
		return "driver"
	case ScopeUnit:
		return "unit"
	case ScopeSymbol:
		return "symbol"
	default:
		return "unknown"
	}
}

// Attr is a key-value pair attached to the end of a span.
type Attr struct {
	Key   string
	Value string
}

// Event is a single trace record. Unit names the symbol table the event
// belongs to, so that events from parallel workers can be told apart.
type Event struct {
	Time     time.Time
	Seq      uint64
	Kind     Kind
	Scope    Scope
	SpanID   uint64
	ParentID uint64
	Unit     string
	Name     string
	Detail   string
	Attrs    []Attr
}
