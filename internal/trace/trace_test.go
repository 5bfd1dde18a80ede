package trace

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func fixedClock(t *testing.T) {
	t.Helper()
	prev := now
	at := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	now = func() time.Time { return at }
	t.Cleanup(func() { now = prev })
}

func TestStreamFiltersByLevel(t *testing.T) {
	var buf bytes.Buffer
	tr := NewStreamTracer(&buf, LevelDetail, FormatText)
	ctx := WithTracer(context.Background(), tr)

	unit, uctx := Start(ctx, ScopeUnit, "serialize")
	Point(uctx, ScopeSymbol, "main", "")
	unit.End("3 symbols")
	require.NoError(t, tr.Flush())

	out := buf.String()
	require.Contains(t, out, "unit:serialize")
	require.Contains(t, out, "(3 symbols)")
	require.NotContains(t, out, "symbol:main")
	require.Equal(t, 2, strings.Count(out, "\n"))
}

func TestTextFormatShowsUnitAndAttrs(t *testing.T) {
	fixedClock(t)
	var buf bytes.Buffer
	tr := NewStreamTracer(&buf, LevelDebug, FormatText)
	ctx := WithUnit(WithTracer(context.Background(), tr), "shapes")

	span, sctx := Start(ctx, ScopeUnit, "irep.json")
	span.WithExtra("symbols", "2").WithExtra("symbols", "3")
	Point(sctx, ScopeSymbol, "main", "")
	span.End("")
	require.NoError(t, tr.Close())

	lines := strings.Split(strings.TrimSuffix(buf.String(), "\n"), "\n")
	require.Len(t, lines, 3)
	require.Contains(t, lines[0], "]   → unit:irep.json @shapes")
	require.Contains(t, lines[1], "]     • symbol:main @shapes")
	require.True(t, strings.HasSuffix(lines[2], "← unit:irep.json @shapes {symbols=3}"), lines[2])
}

func TestRingKeepsCoarseEventsAtErrorLevel(t *testing.T) {
	ring := NewRingTracer(2, LevelError)
	ctx := WithTracer(context.Background(), ring)

	span, sctx := Start(ctx, ScopeDriver, "layout")
	sym, _ := Start(sctx, ScopeSymbol, "x")
	require.Zero(t, sym.ID())
	sym.End("")
	span.End("")

	events := ring.Snapshot()
	require.Len(t, events, 2)
	require.Equal(t, KindSpanBegin, events[0].Kind)
	require.Equal(t, KindSpanEnd, events[1].Kind)

	Start(ctx, ScopeUnit, "a")
	events = ring.Snapshot()
	require.Len(t, events, 2)
	require.Equal(t, "a", events[1].Name)
	require.Equal(t, uint64(1), ring.Dropped())
}

func TestStartNestsSpansAndCarriesUnit(t *testing.T) {
	ring := NewRingTracer(16, LevelDebug)
	ctx := WithTracer(context.Background(), ring)

	outer, ctx := Start(ctx, ScopeDriver, "layout")
	ctx = WithUnit(ctx, "a")
	require.Equal(t, "a", UnitFromContext(ctx))
	inner, ictx := Start(ctx, ScopeUnit, "irep.json")
	Point(ictx, ScopeSymbol, "main", "")
	inner.End("")
	outer.End("")

	events := ring.Snapshot()
	require.Len(t, events, 5)
	require.Zero(t, events[0].ParentID)
	require.Empty(t, events[0].Unit)
	require.Equal(t, outer.ID(), events[1].ParentID)
	require.Equal(t, "a", events[1].Unit)
	require.Equal(t, inner.ID(), events[2].ParentID)
	require.Equal(t, KindPoint, events[2].Kind)
}

func TestNDJSONFormat(t *testing.T) {
	fixedClock(t)
	var buf bytes.Buffer
	tr := NewStreamTracer(&buf, LevelDebug, FormatNDJSON)
	ctx := WithUnit(WithTracer(context.Background(), tr), "shapes")
	Point(ctx, ScopeSymbol, "main", "converted")
	require.NoError(t, tr.Flush())
	require.True(t, strings.HasSuffix(buf.String(), "\n"))

	var got map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	require.Equal(t, "symbol", got["scope"])
	require.Equal(t, "point", got["kind"])
	require.Equal(t, "shapes", got["unit"])
	require.Equal(t, "converted", got["detail"])
	require.Equal(t, "2024-03-01T12:00:00.000000Z", got["time"])
	require.NotContains(t, got, "span_id")
}

func TestDisabledTracingIsFree(t *testing.T) {
	span, ctx := Start(context.Background(), ScopeDriver, "x")
	require.Zero(t, span.ID())
	require.Zero(t, span.End(""))
	Point(ctx, ScopeSymbol, "y", "")
	require.Equal(t, Nop, FromContext(nil)) //nolint:staticcheck
}

func TestNewHonorsConfig(t *testing.T) {
	tr, err := New(Config{Level: LevelOff})
	require.NoError(t, err)
	require.False(t, tr.Enabled())

	tr, err = New(Config{Level: LevelDetail, Mode: ModeBoth, Output: &bytes.Buffer{}})
	require.NoError(t, err)
	_, ok := RingOf(tr)
	require.True(t, ok)

	tr, err = New(Config{Level: LevelDetail, Mode: ModeStream, Output: &bytes.Buffer{}})
	require.NoError(t, err)
	_, ok = RingOf(tr)
	require.False(t, ok)

	_, err = New(Config{Level: LevelDetail})
	require.ErrorContains(t, err, "unknown storage mode")
}

func TestParsers(t *testing.T) {
	l, err := ParseLevel("DETAIL")
	require.NoError(t, err)
	require.Equal(t, LevelDetail, l)
	require.Equal(t, "detail", l.String())
	_, err = ParseLevel("loud")
	require.ErrorContains(t, err, "off|error|phase|detail|debug")

	m, err := ParseMode("both")
	require.NoError(t, err)
	require.Equal(t, ModeBoth, m)

	f, err := ParseFormat("ndjson")
	require.NoError(t, err)
	require.Equal(t, FormatNDJSON, f)
	require.Equal(t, FormatNDJSON, formatFor("trace.jsonl", FormatAuto))
	require.Equal(t, FormatText, formatFor("trace.log", FormatAuto))
}
