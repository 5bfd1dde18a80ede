package ui

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"gotoc/internal/irep"
)

func TestApplyEventTracksUnits(t *testing.T) {
	m := NewProgressModel("serialize", []string{"a", "b"}, nil).(*progressModel)
	require.Zero(t, m.percent())

	m.applyEvent(irep.Event{Unit: "a", Status: irep.StatusWorking, Symbols: 7})
	require.InDelta(t, 0.25, m.percent(), 1e-9)

	m.applyEvent(irep.Event{Unit: "a", Status: irep.StatusDone, Symbols: 7, Elapsed: 3 * time.Millisecond})
	m.applyEvent(irep.Event{Unit: "b", Status: irep.StatusError, Err: errors.New("boom")})
	m.applyEvent(irep.Event{Unit: "unknown", Status: irep.StatusDone})
	require.Equal(t, 2, m.finished())
	require.InDelta(t, 1.0, m.percent(), 1e-9)

	view := m.View()
	require.Contains(t, view, "(2/2)")
	require.Contains(t, view, "7 symbols, 3ms")
	require.Contains(t, view, "boom")
}

func TestUpdateQuitsWhenEventsClose(t *testing.T) {
	events := make(chan irep.Event)
	close(events)
	m := NewProgressModel("serialize", []string{"a"}, events).(*progressModel)
	msg := m.listenForEvent()()
	_, cmd := m.Update(msg)
	require.True(t, m.done)
	require.NotNil(t, cmd)
}

func TestTruncateUsesDisplayWidth(t *testing.T) {
	require.Equal(t, "short", truncate("short", 10))
	got := truncate("very-long-unit-name", 10)
	require.True(t, strings.HasSuffix(got, "..."))
	require.Equal(t, "very-lo...", got)
	require.Equal(t, "単位...", truncate("単位名前長い", 7))
	require.Equal(t, "abc", truncate("abcdef", 3))
	require.Equal(t, "ab   ", padRight("ab", 5))
}
