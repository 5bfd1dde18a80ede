// Package irep converts goto-program symbol tables into the verifier's
// generic tree format and writes it as JSON or msgpack.
//
// Every node of one serialization pass is allocated from a single Arena;
// the writers reset it after each symbol so memory stays bounded by the
// largest symbol.
package irep

// Irep is a node of the exchange tree: an id, positional children and
// named children in insertion order. Nodes are never mutated after
// construction; builders return new nodes.
type Irep struct {
	ID    ID
	Sub   []*Irep
	Named []NamedSub
}

// NamedSub is one named child.
type NamedSub struct {
	Key   ID
	Value *Irep
}

// N pairs a key with a named child.
func N(key ID, v *Irep) NamedSub { return NamedSub{Key: key, Value: v} }

// IsNil reports the nil node. A nil pointer counts as nil too.
func (n *Irep) IsNil() bool { return n == nil || n.ID == Nil && len(n.Sub) == 0 && len(n.Named) == 0 }

// Lookup returns the named child stored under key.
func (n *Irep) Lookup(key ID) (*Irep, bool) {
	for _, ns := range n.Named {
		if ns.Key == key {
			return ns.Value, true
		}
	}
	return nil, false
}

// WithNamedSub returns a copy of n with v stored under key. A nil v leaves
// n unchanged; an existing key is replaced in place.
func (n *Irep) WithNamedSub(a *Arena, key ID, v *Irep) *Irep {
	if v.IsNil() {
		return n
	}
	named := a.named.alloc(len(n.Named) + 1)
	copy(named, n.Named)
	size := len(n.Named)
	replaced := false
	for i := range size {
		if named[i].Key == key {
			named[i].Value = v
			replaced = true
			break
		}
	}
	if !replaced {
		named[size] = NamedSub{Key: key, Value: v}
		size++
	}
	out := &a.nodes.alloc(1)[0]
	out.ID = n.ID
	out.Sub = n.Sub
	out.Named = named[:size:size]
	return out
}

// WithNamedSubOpt is WithNamedSub when ok holds.
func (n *Irep) WithNamedSubOpt(a *Arena, key ID, v *Irep, ok bool) *Irep {
	if !ok {
		return n
	}
	return n.WithNamedSub(a, key, v)
}

// WithComment attaches a #comment annotation.
func (n *Irep) WithComment(a *Arena, c string) *Irep {
	return n.WithNamedSub(a, CComment, a.JustString(c))
}
