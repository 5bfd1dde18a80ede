package observ

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// fakeClock advances by step on every reading.
func fakeClock(step time.Duration) func() time.Time {
	var mu sync.Mutex
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	return func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		now = now.Add(step)
		return now
	}
}

func TestReportSpansOverlappingPhases(t *testing.T) {
	tm := NewTimer()
	tm.now = fakeClock(time.Millisecond)

	endOuter := tm.Track("emit")   // t=1
	endInner := tm.Track("unit a") // t=2
	endInner("3 symbols")          // t=3
	endOuter("")                   // t=4

	r := tm.Report()
	require.Len(t, r.Phases, 2)
	require.Equal(t, PhaseReport{Name: "emit", DurationMS: 3}, r.Phases[0])
	require.Equal(t, PhaseReport{Name: "unit a", DurationMS: 1, Note: "3 symbols"}, r.Phases[1])
	require.InDelta(t, 3.0, r.TotalMS, 1e-9)
}

func TestSummaryAlignsNames(t *testing.T) {
	tm := NewTimer()
	tm.now = fakeClock(2 * time.Millisecond)
	tm.Track("decls")("")
	tm.Track("layout")("4 aggregates")

	require.Equal(t, "timings:\n"+
		"  decls      2.00 ms\n"+
		"  layout     2.00 ms  // 4 aggregates\n"+
		"  total      6.00 ms\n", tm.Summary())
}

func TestTrackIsSafeForConcurrentUse(t *testing.T) {
	tm := NewTimer()
	var wg sync.WaitGroup
	for range 16 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			tm.Track("unit")("")
		}()
	}
	wg.Wait()
	require.Len(t, tm.Phases(), 16)

	var nilTimer *Timer
	nilTimer.Track("ignored")("")
}
