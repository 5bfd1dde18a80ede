package ir

import (
	"fmt"
	"maps"
	"slices"

	"gotoc/internal/types"
)

// UnsupportedPropertyClass tags assertions emitted in place of constructs
// the code generator cannot translate.
const UnsupportedPropertyClass = "unsupported_construct"

// UnsupportedConstruct is one kind of construct that was replaced by a
// failing marker.
type UnsupportedConstruct struct {
	What  string
	First Location
	Count int
}

// Unsupported builds the marker for what: a failing assertion followed by
// assume(false), so no path continues past it. The occurrence is recorded
// in st.
func Unsupported(what string, loc Location, st *SymbolTable) Stmt {
	st.NoteUnsupported(what, loc)
	return unsupportedMarker(what, loc)
}

func unsupportedMarker(what string, loc Location) Stmt {
	msg := fmt.Sprintf("%s is not currently supported", what)
	return Block([]Stmt{
		AssertFalse(UnsupportedPropertyClass, msg, loc),
		AssumeFalse(loc),
	}, loc)
}

// UnsupportedExpr is the expression form of Unsupported: the marker
// followed by a nondet value of t. The occurrence is recorded in st.
func UnsupportedExpr(what string, t types.Type, loc Location, st *SymbolTable) Expr {
	body := []Stmt{
		Unsupported(what, loc, st),
		Expression(Nondet(t), loc),
	}
	return StatementExpression(body, t).WithLocation(loc)
}

// NoteUnsupported records an occurrence of what at loc.
func (st *SymbolTable) NoteUnsupported(what string, loc Location) {
	if c, ok := st.unsupported[what]; ok {
		c.Count++
		return
	}
	st.unsupported[what] = &UnsupportedConstruct{What: what, First: orNone(loc), Count: 1}
}

// Unsupported returns the recorded constructs ordered by name.
func (st *SymbolTable) Unsupported() []UnsupportedConstruct {
	out := make([]UnsupportedConstruct, 0, len(st.unsupported))
	for _, k := range slices.Sorted(maps.Keys(st.unsupported)) {
		out = append(out, *st.unsupported[k])
	}
	return out
}
