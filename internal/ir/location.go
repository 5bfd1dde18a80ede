package ir

import (
	"fmt"
	"strings"
)

// Location is where an IR node came from. It is a closed sum over
// NoLocation, BuiltinLocation, SourceLocation, PropertyLocation and
// PropertyUnknownLocation.
type Location interface {
	implLocation()
	String() string
}

// NoLocation marks synthesized nodes without a source position.
type NoLocation struct{}

// BuiltinLocation marks code belonging to a verifier builtin.
type BuiltinLocation struct {
	Function string
	Line     uint64
	HasLine  bool
}

// SourceLocation is a span in a user source file. Function may be empty.
type SourceLocation struct {
	File        string
	Function    string
	StartLine   uint64
	StartCol    uint64
	HasStartCol bool
	EndLine     uint64
	EndCol      uint64
	Pragmas     []string
}

// PropertyLocation is the location of a verification condition.
type PropertyLocation struct {
	File          string
	Function      string
	Line          uint64
	Col           uint64
	HasCol        bool
	Comment       string
	PropertyClass string
	Pragmas       []string
}

// PropertyUnknownLocation is a verification condition without a position.
type PropertyUnknownLocation struct {
	Comment       string
	PropertyClass string
}

func (NoLocation) implLocation()              {}
func (BuiltinLocation) implLocation()         {}
func (SourceLocation) implLocation()          {}
func (PropertyLocation) implLocation()        {}
func (PropertyUnknownLocation) implLocation() {}

func (NoLocation) String() string { return "<none>" }

func (l BuiltinLocation) String() string {
	if l.HasLine {
		return fmt.Sprintf("<builtin-library-%s>:%d", l.Function, l.Line)
	}
	return fmt.Sprintf("<builtin-library-%s>", l.Function)
}

func (l SourceLocation) String() string {
	if l.HasStartCol {
		return fmt.Sprintf("%s:%d:%d", l.File, l.StartLine, l.StartCol)
	}
	return fmt.Sprintf("%s:%d", l.File, l.StartLine)
}

func (l PropertyLocation) String() string {
	var b strings.Builder
	b.WriteString(l.File)
	fmt.Fprintf(&b, ":%d", l.Line)
	if l.HasCol {
		fmt.Fprintf(&b, ":%d", l.Col)
	}
	fmt.Fprintf(&b, " [%s] %s", l.PropertyClass, l.Comment)
	return b.String()
}

func (l PropertyUnknownLocation) String() string {
	return fmt.Sprintf("<unknown> [%s] %s", l.PropertyClass, l.Comment)
}

// None returns the empty location.
func None() Location { return NoLocation{} }

// Loc is a source position with a column.
func Loc(file, function string, line, col uint64) Location {
	return SourceLocation{
		File:        file,
		Function:    function,
		StartLine:   line,
		StartCol:    col,
		HasStartCol: true,
		EndLine:     line,
		EndCol:      col,
	}
}

// IsNone reports a missing location.
func IsNone(l Location) bool {
	if l == nil {
		return true
	}
	_, ok := l.(NoLocation)
	return ok
}

func orNone(l Location) Location {
	if l == nil {
		return NoLocation{}
	}
	return l
}

// Filename returns the file of a located position, if any.
func Filename(l Location) (string, bool) {
	switch v := l.(type) {
	case SourceLocation:
		return v.File, true
	case PropertyLocation:
		return v.File, true
	default:
		return "", false
	}
}

// Line returns the (start) line of a located position, if any.
func Line(l Location) (uint64, bool) {
	switch v := l.(type) {
	case SourceLocation:
		return v.StartLine, true
	case PropertyLocation:
		return v.Line, true
	case BuiltinLocation:
		return v.Line, v.HasLine
	default:
		return 0, false
	}
}

// ToPropertyLocation attaches a property class and message to l. Positions
// are kept; locations without one become PropertyUnknownLocation.
func ToPropertyLocation(l Location, propertyClass, comment string) Location {
	switch v := l.(type) {
	case SourceLocation:
		return PropertyLocation{
			File:          v.File,
			Function:      v.Function,
			Line:          v.StartLine,
			Col:           v.StartCol,
			HasCol:        v.HasStartCol,
			Comment:       comment,
			PropertyClass: propertyClass,
			Pragmas:       v.Pragmas,
		}
	case PropertyLocation:
		v.Comment = comment
		v.PropertyClass = propertyClass
		return v
	default:
		return PropertyUnknownLocation{Comment: comment, PropertyClass: propertyClass}
	}
}
