package trace

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Format represents the output format for trace events.
type Format uint8

const (
	FormatAuto   Format = iota // pick from the output path
	FormatText                 // human-readable text
	FormatNDJSON               // newline-delimited JSON
)

// ParseFormat converts a flag value to a Format.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(s) {
	case "", "auto":
		return FormatAuto, nil
	case "text":
		return FormatText, nil
	case "ndjson", "json":
		return FormatNDJSON, nil
	default:
		return FormatAuto, fmt.Errorf("invalid trace format: %q (expected: auto|text|ndjson)", s)
	}
}

// formatFor picks the format of a trace file from its extension.
func formatFor(path string, f Format) Format {
	if f != FormatAuto {
		return f
	}
	if strings.HasSuffix(path, ".ndjson") || strings.HasSuffix(path, ".jsonl") {
		return FormatNDJSON
	}
	return FormatText
}

// AppendEvent appends the encoding of ev to dst.
func AppendEvent(dst []byte, ev *Event, format Format) []byte {
	if format == FormatNDJSON {
		return appendNDJSON(dst, ev)
	}
	return appendText(dst, ev)
}

type jsonEvent struct {
	Time     string            `json:"time"`
	Seq      uint64            `json:"seq"`
	Kind     string            `json:"kind"`
	Scope    string            `json:"scope"`
	SpanID   uint64            `json:"span_id,omitempty"`
	ParentID uint64            `json:"parent_id,omitempty"`
	Unit     string            `json:"unit,omitempty"`
	Name     string            `json:"name"`
	Detail   string            `json:"detail,omitempty"`
	Attrs    map[string]string `json:"attrs,omitempty"`
}

func appendNDJSON(dst []byte, ev *Event) []byte {
	j := jsonEvent{
		Time:     ev.Time.UTC().Format("2006-01-02T15:04:05.000000Z07:00"),
		Seq:      ev.Seq,
		Kind:     ev.Kind.String(),
		Scope:    ev.Scope.String(),
		SpanID:   ev.SpanID,
		ParentID: ev.ParentID,
		Unit:     ev.Unit,
		Name:     ev.Name,
		Detail:   ev.Detail,
	}
	if len(ev.Attrs) > 0 {
		j.Attrs = make(map[string]string, len(ev.Attrs))
		for _, a := range ev.Attrs {
			j.Attrs[a.Key] = a.Value
		}
	}
	data, err := json.Marshal(j)
	if err != nil {
		return dst
	}
	return append(append(dst, data...), '\n')
}

// appendText writes one line:
//
//	[seq] <indent><marker> scope:name @unit (detail) {k=v, ...}
func appendText(dst []byte, ev *Event) []byte {
	dst = append(dst, '[')
	seq := strconv.FormatUint(ev.Seq, 10)
	for i := len(seq); i < 6; i++ {
		dst = append(dst, ' ')
	}
	dst = append(dst, seq...)
	dst = append(dst, "] "...)
	for i := Scope(1); i < ev.Scope; i++ {
		dst = append(dst, "  "...)
	}
	switch ev.Kind {
	case KindSpanBegin:
		dst = append(dst, "→ "...)
	case KindSpanEnd:
		dst = append(dst, "← "...)
	case KindPoint:
		dst = append(dst, "• "...)
	}
	dst = append(dst, ev.Scope.String()...)
	dst = append(dst, ':')
	dst = append(dst, ev.Name...)
	if ev.Unit != "" && ev.Unit != ev.Name {
		dst = append(dst, " @"...)
		dst = append(dst, ev.Unit...)
	}
	if ev.Detail != "" {
		dst = append(dst, " ("...)
		dst = append(dst, ev.Detail...)
		dst = append(dst, ')')
	}
	if len(ev.Attrs) > 0 {
		dst = append(dst, " {"...)
		for i, a := range ev.Attrs {
			if i > 0 {
				dst = append(dst, ", "...)
			}
			dst = append(dst, a.Key...)
			dst = append(dst, '=')
			dst = append(dst, a.Value...)
		}
		dst = append(dst, '}')
	}
	return append(dst, '\n')
}
