// Package layout is the layout oracle: it reports sizes, alignments and
// field offsets of goto-program types for one target, and builds padded
// aggregate definitions from them.
package layout

import (
	"gotoc/internal/machine"
	"gotoc/internal/types"
)

// TypeLayout is the ABI layout of a type for a specific Target. Sizes and
// offsets are in bytes.
type TypeLayout struct {
	Size  uint64
	Align uint64

	// Struct-only:
	FieldOffsets []uint64
	FieldAligns  []uint64

	// Enum-like aggregates report how the active variant is encoded.
	Variants *VariantsLayout
}

// Oracle answers layout queries for types.
type Oracle interface {
	LayoutOf(t types.Type) (TypeLayout, error)
}

// Engine is the reference Oracle implementing C layout rules over
// package types. Aggregate tags are resolved through the Resolver it was
// created with. An Engine may be queried concurrently.
type Engine struct {
	Target   Target
	Machine  *machine.Model
	Resolver types.Resolver

	cache *cache
}

var _ Oracle = (*Engine)(nil)

// New creates a new Engine for mm, resolving tags through r.
func New(mm *machine.Model, r types.Resolver) *Engine {
	return &Engine{
		Target:   TargetOf(mm),
		Machine:  mm,
		Resolver: r,
		cache:    newCache(),
	}
}

type layoutState struct {
	stack []string
	index map[string]int
}

func newLayoutState() *layoutState {
	return &layoutState{
		stack: nil,
		index: make(map[string]int, 32),
	}
}

// LayoutOf computes and caches the layout of a type.
func (e *Engine) LayoutOf(t types.Type) (TypeLayout, error) {
	if e.cache == nil {
		e.cache = newCache()
	}
	layout, err := e.layoutOf(t, newLayoutState())
	if err != nil {
		return layout, err
	}
	return layout, nil
}

func (e *Engine) layoutOf(t types.Type, state *layoutState) (TypeLayout, *LayoutError) {
	key := types.Identifier(t)
	if cached, ok := e.cache.get(key); ok {
		return cached.Layout, cached.Err
	}

	if idx, ok := state.index[key]; ok {
		cycle := append([]string(nil), state.stack[idx:]...)
		cycle = append(cycle, key)
		err := &LayoutError{
			Kind:  LayoutErrRecursiveUnsized,
			Type:  key,
			Cycle: cycle,
		}
		e.cache.put(key, &cacheEntry{Layout: TypeLayout{Size: 0, Align: 1}, Err: err})
		return TypeLayout{Size: 0, Align: 1}, err
	}

	state.index[key] = len(state.stack)
	state.stack = append(state.stack, key)
	layout, err := e.computeLayout(t, state)
	state.stack = state.stack[:len(state.stack)-1]
	delete(state.index, key)

	e.cache.put(key, &cacheEntry{Layout: layout, Err: err})
	return layout, err
}

// SizeOf returns the size of a type in bytes.
func (e *Engine) SizeOf(t types.Type) (uint64, error) {
	l, err := e.LayoutOf(t)
	return l.Size, err
}

// AlignOf returns the alignment requirement of a type in bytes.
func (e *Engine) AlignOf(t types.Type) (uint64, error) {
	l, err := e.LayoutOf(t)
	return l.Align, err
}

// FieldOffset returns the byte offset of the fieldIdx-th component of a
// struct, padding included.
func (e *Engine) FieldOffset(structT types.Type, fieldIdx int) (uint64, error) {
	l, err := e.LayoutOf(structT)
	if err != nil {
		return 0, err
	}
	if fieldIdx < 0 || fieldIdx >= len(l.FieldOffsets) {
		return 0, nil
	}
	return l.FieldOffsets[fieldIdx], nil
}

// Cached reports how many layouts the engine has memoized.
func (e *Engine) Cached() int { return e.cache.len() }
