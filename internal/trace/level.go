package trace

import (
	"fmt"
	"strings"
)

// Level controls tracing verbosity.
type Level uint8

const (
	LevelOff    Level = iota
	LevelError        // ring dumps only
	LevelPhase        // driver spans
	LevelDetail       // plus one span per unit
	LevelDebug        // plus one point per symbol
)

var levelNames = [...]string{"off", "error", "phase", "detail", "debug"}

func (l Level) String() string {
	if int(l) < len(levelNames) {
		return levelNames[l]
	}
	return "unknown"
}

// ParseLevel converts a flag value to a Level.
func ParseLevel(s string) (Level, error) {
	for i, name := range levelNames {
		if strings.EqualFold(s, name) {
			return Level(i), nil
		}
	}
	return LevelOff, fmt.Errorf("invalid trace level: %q (expected: %s)", s, strings.Join(levelNames[:], "|"))
}

// ShouldEmit reports whether events of scope are written at this level.
// LevelError writes nothing; its events only surface through ring dumps.
func (l Level) ShouldEmit(scope Scope) bool {
	switch {
	case l >= LevelDebug:
		return true
	case l == LevelDetail:
		return scope <= ScopeUnit
	case l == LevelPhase:
		return scope <= ScopeDriver
	default:
		return false
	}
}
