package trace

import (
	"sync/atomic"
	"time"
)

var (
	seqCounter  atomic.Uint64
	spanCounter atomic.Uint64

	// now is replaced in tests.
	now = time.Now
)

func nextSeq() uint64 { return seqCounter.Add(1) }

// Span is an open interval of work. A disabled span has ID 0 and ignores
// every call.
type Span struct {
	tracer  Tracer
	id      uint64
	parent  uint64
	scope   Scope
	unit    string
	name    string
	started time.Time
	attrs   []Attr
}

func begin(t Tracer, scope Scope, name string, parent uint64, unit string) *Span {
	if t == nil || !t.Enabled() {
		return &Span{}
	}
	// Driver and unit spans are kept below their level for ring dumps.
	if scope > ScopeUnit && !t.Level().ShouldEmit(scope) {
		return &Span{}
	}
	s := &Span{
		tracer:  t,
		id:      spanCounter.Add(1),
		parent:  parent,
		scope:   scope,
		unit:    unit,
		name:    name,
		started: now(),
	}
	t.Emit(s.event(KindSpanBegin, s.started, ""))
	return s
}

func (s *Span) event(kind Kind, at time.Time, detail string) *Event {
	return &Event{
		Time:     at,
		Seq:      nextSeq(),
		Kind:     kind,
		Scope:    s.scope,
		SpanID:   s.id,
		ParentID: s.parent,
		Unit:     s.unit,
		Name:     s.name,
		Detail:   detail,
		Attrs:    s.attrs,
	}
}

// End closes the span and returns its duration.
func (s *Span) End(detail string) time.Duration {
	if s == nil || s.id == 0 {
		return 0
	}
	end := now()
	s.tracer.Emit(s.event(KindSpanEnd, end, detail))
	return end.Sub(s.started)
}

// WithExtra records an attribute reported when the span ends. Setting a key
// again replaces its value.
func (s *Span) WithExtra(key, value string) *Span {
	if s == nil || s.id == 0 {
		return s
	}
	for i := range s.attrs {
		if s.attrs[i].Key == key {
			s.attrs[i].Value = value
			return s
		}
	}
	s.attrs = append(s.attrs, Attr{Key: key, Value: value})
	return s
}

func (s *Span) ID() uint64 {
	if s == nil {
		return 0
	}
	return s.id
}
