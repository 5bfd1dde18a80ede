package irep

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strconv"

	"github.com/vmihailenco/msgpack/v5"

	"gotoc/internal/ir"
	"gotoc/internal/trace"
)

var (
	_ msgpack.CustomEncoder = (*Irep)(nil)
	_ msgpack.CustomEncoder = (*SymbolRecord)(nil)
)

// WriteMsgpack streams st in the same shape as WriteJSON, encoded as
// msgpack maps and arrays.
func WriteMsgpack(ctx context.Context, w io.Writer, st *ir.SymbolTable) error {
	span, ctx := trace.Start(ctx, trace.ScopeUnit, "irep.msgpack")
	defer span.End("")

	conv := NewConverter(NewArena(), st.MachineModel())
	bw := bufio.NewWriterSize(w, 64<<10)
	enc := msgpack.NewEncoder(bw)

	if err := enc.EncodeMapLen(1); err != nil {
		return err
	}
	if err := enc.EncodeString("symbolTable"); err != nil {
		return err
	}
	if err := enc.EncodeMapLen(st.Len()); err != nil {
		return err
	}
	for name, sym := range st.All() {
		if err := ctx.Err(); err != nil {
			return err
		}
		trace.Point(ctx, trace.ScopeSymbol, name, "")
		rec := conv.Symbol(sym)
		if err := enc.EncodeString(name); err != nil {
			return err
		}
		if err := rec.EncodeMsgpack(enc); err != nil {
			return fmt.Errorf("encode symbol %s: %w", name, err)
		}
		conv.Arena().Reset()
	}
	span.WithExtra("symbols", strconv.Itoa(st.Len()))
	return bw.Flush()
}

func (n *Irep) EncodeMsgpack(enc *msgpack.Encoder) error {
	fields := 1
	if len(n.Sub) > 0 {
		fields++
	}
	if len(n.Named) > 0 {
		fields++
	}
	if err := enc.EncodeMapLen(fields); err != nil {
		return err
	}
	if err := enc.EncodeString("id"); err != nil {
		return err
	}
	if err := enc.EncodeString(string(n.ID)); err != nil {
		return err
	}
	if len(n.Sub) > 0 {
		if err := enc.EncodeString("sub"); err != nil {
			return err
		}
		if err := enc.EncodeArrayLen(len(n.Sub)); err != nil {
			return err
		}
		for _, s := range n.Sub {
			if err := s.EncodeMsgpack(enc); err != nil {
				return err
			}
		}
	}
	if len(n.Named) > 0 {
		if err := enc.EncodeString("namedSub"); err != nil {
			return err
		}
		if err := enc.EncodeMapLen(len(n.Named)); err != nil {
			return err
		}
		for _, ns := range n.Named {
			if err := enc.EncodeString(string(ns.Key)); err != nil {
				return err
			}
			if err := ns.Value.EncodeMsgpack(enc); err != nil {
				return err
			}
		}
	}
	return nil
}

func (r *SymbolRecord) EncodeMsgpack(enc *msgpack.Encoder) error {
	texts, flags := r.texts(), r.flags()
	if err := enc.EncodeMapLen(3 + len(texts) + len(flags)); err != nil {
		return err
	}
	nodes := [3]struct {
		key  string
		node *Irep
	}{{"type", r.Type}, {"value", r.Value}, {"location", r.Location}}
	for _, n := range nodes {
		if err := enc.EncodeString(n.key); err != nil {
			return err
		}
		if err := n.node.EncodeMsgpack(enc); err != nil {
			return err
		}
	}
	for _, f := range texts {
		if err := enc.EncodeString(f.key); err != nil {
			return err
		}
		if err := enc.EncodeString(f.value); err != nil {
			return err
		}
	}
	for _, f := range flags {
		if err := enc.EncodeString(f.key); err != nil {
			return err
		}
		if err := enc.EncodeBool(f.set); err != nil {
			return err
		}
	}
	return nil
}
