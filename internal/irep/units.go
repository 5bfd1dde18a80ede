package irep

import (
	"context"
	"fmt"
	"io"
	"runtime"
	"time"

	"golang.org/x/sync/errgroup"

	"gotoc/internal/ice"
	"gotoc/internal/ir"
	"gotoc/internal/trace"
)

// Format selects the serialization.
type Format string

const (
	FormatJSON    Format = "json"
	FormatMsgpack Format = "msgpack"
)

// ParseFormat accepts "json" and "msgpack".
func ParseFormat(s string) (Format, error) {
	switch Format(s) {
	case FormatJSON, FormatMsgpack:
		return Format(s), nil
	default:
		return "", fmt.Errorf("unknown irep format %q (want json or msgpack)", s)
	}
}

// Ext is the conventional file extension for f.
func (f Format) Ext() string {
	if f == FormatMsgpack {
		return ".symtab.msgpack"
	}
	return ".symtab.json"
}

// Write serializes st to w in format f.
func (f Format) Write(ctx context.Context, w io.Writer, st *ir.SymbolTable) error {
	if f == FormatMsgpack {
		return WriteMsgpack(ctx, w, st)
	}
	return WriteJSON(ctx, w, st)
}

// Unit is one symbol table to serialize. Each unit owns its writer.
type Unit struct {
	Name  string
	Table *ir.SymbolTable
	Out   io.Writer
}

// Status captures the progress state of a unit.
type Status string

const (
	StatusQueued  Status = "queued"
	StatusWorking Status = "working"
	StatusDone    Status = "done"
	StatusError   Status = "error"
)

// Event reports progress for one unit.
type Event struct {
	Unit    string
	Status  Status
	Symbols int
	Err     error
	Elapsed time.Duration
}

// ProgressSink consumes progress events. It may be called from several
// goroutines.
type ProgressSink interface {
	OnEvent(Event)
}

// ChannelSink forwards events into a channel.
type ChannelSink struct {
	Ch chan<- Event
}

func (s ChannelSink) OnEvent(evt Event) {
	if s.Ch == nil {
		return
	}
	s.Ch <- evt
}

func emit(sink ProgressSink, evt Event) {
	if sink != nil {
		sink.OnEvent(evt)
	}
}

// SerializeUnits writes every unit in parallel with at most jobs workers
// (GOMAXPROCS when jobs <= 0). Each worker has its own arena. The first
// failure cancels the remaining units; an internal error raised while
// converting a unit is returned as that unit's error.
func SerializeUnits(ctx context.Context, units []Unit, jobs int, format Format, sink ProgressSink) error {
	if len(units) == 0 {
		return nil
	}
	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}
	span, ctx := trace.Start(ctx, trace.ScopeDriver, "irep.units")
	defer span.End("")

	for _, u := range units {
		emit(sink, Event{Unit: u.Name, Status: StatusQueued, Symbols: u.Table.Len()})
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(min(jobs, len(units)))
	for _, u := range units {
		g.Go(func() error {
			select {
			case <-gctx.Done():
				return gctx.Err()
			default:
			}
			start := time.Now()
			emit(sink, Event{Unit: u.Name, Status: StatusWorking, Symbols: u.Table.Len()})
			err := serializeUnit(gctx, u, format)
			if err != nil {
				emit(sink, Event{Unit: u.Name, Status: StatusError, Err: err, Elapsed: time.Since(start)})
				return fmt.Errorf("unit %s: %w", u.Name, err)
			}
			emit(sink, Event{Unit: u.Name, Status: StatusDone, Symbols: u.Table.Len(), Elapsed: time.Since(start)})
			return nil
		})
	}
	return g.Wait()
}

func serializeUnit(ctx context.Context, u Unit, format Format) (err error) {
	span, ctx := trace.Start(trace.WithUnit(ctx, u.Name), trace.ScopeUnit, "serialize")
	defer span.End(string(format))
	if e := ice.Catch(func() { err = format.Write(ctx, u.Out, u.Table) }); e != nil {
		return e
	}
	return err
}
