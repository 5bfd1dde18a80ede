package irep

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strconv"
	"unicode/utf8"

	"gotoc/internal/ir"
	"gotoc/internal/trace"
)

// WriteJSON streams st as {"symbolTable":{...}} with symbols ordered by
// name. The output is compact and has no trailing newline. Nodes are
// released after each symbol.
func WriteJSON(ctx context.Context, w io.Writer, st *ir.SymbolTable) error {
	span, ctx := trace.Start(ctx, trace.ScopeUnit, "irep.json")
	defer span.End("")

	conv := NewConverter(NewArena(), st.MachineModel())
	bw := bufio.NewWriterSize(w, 64<<10)
	buf := make([]byte, 0, 4096)

	if _, err := bw.WriteString(`{"symbolTable":{`); err != nil {
		return err
	}
	first := true
	for name, sym := range st.All() {
		if err := ctx.Err(); err != nil {
			return err
		}
		trace.Point(ctx, trace.ScopeSymbol, name, "")
		rec := conv.Symbol(sym)
		buf = buf[:0]
		if !first {
			buf = append(buf, ',')
		}
		first = false
		buf = appendJSONString(buf, name)
		buf = append(buf, ':')
		buf = rec.AppendJSON(buf)
		conv.Arena().Reset()
		if _, err := bw.Write(buf); err != nil {
			return fmt.Errorf("write symbol %s: %w", name, err)
		}
	}
	if _, err := bw.WriteString(`}}`); err != nil {
		return err
	}
	span.WithExtra("symbols", strconv.Itoa(st.Len()))
	return bw.Flush()
}

// AppendJSON appends the JSON encoding of n to dst. Empty child lists are
// omitted.
func (n *Irep) AppendJSON(dst []byte) []byte {
	dst = append(dst, `{"id":`...)
	dst = appendJSONString(dst, string(n.ID))
	if len(n.Sub) > 0 {
		dst = append(dst, `,"sub":[`...)
		for i, s := range n.Sub {
			if i > 0 {
				dst = append(dst, ',')
			}
			dst = s.AppendJSON(dst)
		}
		dst = append(dst, ']')
	}
	if len(n.Named) > 0 {
		dst = append(dst, `,"namedSub":{`...)
		for i, ns := range n.Named {
			if i > 0 {
				dst = append(dst, ',')
			}
			dst = appendJSONString(dst, string(ns.Key))
			dst = append(dst, ':')
			dst = ns.Value.AppendJSON(dst)
		}
		dst = append(dst, '}')
	}
	return append(dst, '}')
}

func (n *Irep) MarshalJSON() ([]byte, error) { return n.AppendJSON(nil), nil }

// AppendJSON appends the symbol object: type, value and location nodes,
// then the names and flags.
func (r *SymbolRecord) AppendJSON(dst []byte) []byte {
	dst = append(dst, `{"type":`...)
	dst = r.Type.AppendJSON(dst)
	dst = append(dst, `,"value":`...)
	dst = r.Value.AppendJSON(dst)
	dst = append(dst, `,"location":`...)
	dst = r.Location.AppendJSON(dst)
	for _, f := range r.texts() {
		dst = append(dst, ',')
		dst = appendJSONString(dst, f.key)
		dst = append(dst, ':')
		dst = appendJSONString(dst, f.value)
	}
	for _, f := range r.flags() {
		dst = append(dst, ',')
		dst = appendJSONString(dst, f.key)
		dst = append(dst, ':')
		dst = strconv.AppendBool(dst, f.set)
	}
	return append(dst, '}')
}

func (r *SymbolRecord) MarshalJSON() ([]byte, error) { return r.AppendJSON(nil), nil }

const hexDigits = "0123456789abcdef"

// appendJSONString quotes s. Unlike encoding/json it leaves <, > and &
// alone; invalid UTF-8 becomes U+FFFD.
func appendJSONString(dst []byte, s string) []byte {
	dst = append(dst, '"')
	start := 0
	for i := 0; i < len(s); {
		b := s[i]
		if b < utf8.RuneSelf {
			if b >= 0x20 && b != '"' && b != '\\' {
				i++
				continue
			}
			dst = append(dst, s[start:i]...)
			switch b {
			case '"', '\\':
				dst = append(dst, '\\', b)
			case '\n':
				dst = append(dst, '\\', 'n')
			case '\r':
				dst = append(dst, '\\', 'r')
			case '\t':
				dst = append(dst, '\\', 't')
			default:
				dst = append(dst, '\\', 'u', '0', '0', hexDigits[b>>4], hexDigits[b&0xF])
			}
			i++
			start = i
			continue
		}
		r, size := utf8.DecodeRuneInString(s[i:])
		if r == utf8.RuneError && size == 1 {
			dst = append(dst, s[start:i]...)
			dst = append(dst, "\uFFFD"...)
			i += size
			start = i
			continue
		}
		i += size
	}
	dst = append(dst, s[start:]...)
	return append(dst, '"')
}

// AppendJSON appends the table in the same form WriteJSON streams.
func (t *SymbolTable) AppendJSON(dst []byte) []byte {
	dst = append(dst, `{"symbolTable":{`...)
	for i := range t.Symbols {
		if i > 0 {
			dst = append(dst, ',')
		}
		dst = appendJSONString(dst, t.Symbols[i].Name)
		dst = append(dst, ':')
		dst = t.Symbols[i].AppendJSON(dst)
	}
	return append(dst, `}}`...)
}

func (t *SymbolTable) MarshalJSON() ([]byte, error) { return t.AppendJSON(nil), nil }
