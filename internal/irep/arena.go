package irep

const slabSize = 4096

// slab hands out sub-slices of large backing chunks. Chunks are kept across
// resets and reused.
type slab[T any] struct {
	chunks [][]T
	chunk  int
	used   int
	total  int
}

func (s *slab[T]) alloc(n int) []T {
	if n == 0 {
		return nil
	}
	if len(s.chunks) == 0 || s.used+n > len(s.chunks[s.chunk]) {
		s.advance(n)
	}
	out := s.chunks[s.chunk][s.used : s.used+n : s.used+n]
	s.used += n
	s.total += n
	return out
}

func (s *slab[T]) advance(n int) {
	size := max(slabSize, n)
	next := s.chunk + 1
	if len(s.chunks) == 0 {
		next = 0
	}
	switch {
	case next == len(s.chunks):
		s.chunks = append(s.chunks, make([]T, size))
	case len(s.chunks[next]) < n:
		s.chunks[next] = make([]T, size)
	}
	s.chunk = next
	s.used = 0
}

func (s *slab[T]) reset() {
	for _, c := range s.chunks {
		clear(c)
	}
	s.chunk = 0
	s.used = 0
}

// Arena owns every node built during one serialization pass. Nodes and
// their child lists are carved out of shared slabs and released together
// by Reset. An Arena must not be used from several goroutines.
type Arena struct {
	nodes  slab[Irep]
	subs   slab[*Irep]
	named  slab[NamedSub]
	resets int
}

// ArenaStats reports allocation counters since the arena was created.
type ArenaStats struct {
	Nodes         int
	Children      int
	NamedChildren int
	Slabs         int
	Resets        int
}

func NewArena() *Arena { return &Arena{} }

// Reset releases every node at once. Nodes handed out before the reset
// must no longer be used.
func (a *Arena) Reset() {
	a.nodes.reset()
	a.subs.reset()
	a.named.reset()
	a.resets++
}

func (a *Arena) Stats() ArenaStats {
	return ArenaStats{
		Nodes:         a.nodes.total,
		Children:      a.subs.total,
		NamedChildren: a.named.total,
		Slabs:         len(a.nodes.chunks) + len(a.subs.chunks) + len(a.named.chunks),
		Resets:        a.resets,
	}
}

// New builds a node. sub and named are copied into the arena; named
// entries whose value is nil are dropped.
func (a *Arena) New(id ID, sub []*Irep, named ...NamedSub) *Irep {
	n := &a.nodes.alloc(1)[0]
	n.ID = id
	if len(sub) > 0 {
		n.Sub = a.subs.alloc(len(sub))
		copy(n.Sub, sub)
	}
	kept := 0
	for _, ns := range named {
		if !ns.Value.IsNil() {
			kept++
		}
	}
	if kept > 0 {
		n.Named = a.named.alloc(kept)
		i := 0
		for _, ns := range named {
			if !ns.Value.IsNil() {
				n.Named[i] = ns
				i++
			}
		}
	}
	return n
}

// Children returns an arena slice of n child slots to be filled by the
// caller and passed to New or NewWithChildren.
func (a *Arena) Children(n int) []*Irep { return a.subs.alloc(n) }

// NewWithChildren builds a node adopting sub, which must come from
// Children.
func (a *Arena) NewWithChildren(id ID, sub []*Irep, named ...NamedSub) *Irep {
	n := a.New(id, nil, named...)
	n.Sub = sub
	return n
}

func (a *Arena) Just(id ID) *Irep { return a.New(id, nil) }
func (a *Arena) Nil() *Irep       { return a.Just(Nil) }
func (a *Arena) One() *Irep       { return a.Just(One) }
func (a *Arena) Zero() *Irep      { return a.Just(Zero) }

func (a *Arena) JustString(s string) *Irep { return a.Just(IDFromString(s)) }
func (a *Arena) JustUint(u uint64) *Irep   { return a.Just(IDFromUint(u)) }

// JustNamed is an anonymous node holding only named children.
func (a *Arena) JustNamed(named ...NamedSub) *Irep { return a.New(EmptyString, nil, named...) }

// JustSub is an anonymous node holding only positional children.
func (a *Arena) JustSub(sub []*Irep) *Irep { return a.New(EmptyString, sub) }
