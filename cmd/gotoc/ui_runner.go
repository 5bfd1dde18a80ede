package main

import (
	"context"
	"errors"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"gotoc/internal/irep"
	"gotoc/internal/ui"
)

var errInterrupted = errors.New("serialization interrupted")

// runSerializeWithUI serializes units in the background while a progress
// view consumes their events.
func runSerializeWithUI(ctx context.Context, title string, units []irep.Unit, jobs int, format irep.Format) error {
	names := make([]string, len(units))
	for i, u := range units {
		names[i] = u.Name
	}
	serialize := func(ctx context.Context, sink irep.ProgressSink) error {
		return irep.SerializeUnits(ctx, units, jobs, format, sink)
	}
	view := func(events <-chan irep.Event) error {
		program := tea.NewProgram(ui.NewProgressModel(title, names, events), tea.WithOutput(os.Stdout))
		_, err := program.Run()
		return err
	}
	return withProgressView(ctx, serialize, view)
}

// withProgressView runs work while view consumes its events. When view
// returns first, work is cancelled and its remaining events are discarded
// so that it never blocks on a full channel.
func withProgressView(
	ctx context.Context,
	work func(context.Context, irep.ProgressSink) error,
	view func(<-chan irep.Event) error,
) error {
	workCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	events := make(chan irep.Event, 256)
	outcomeCh := make(chan error, 1)
	go func() {
		err := work(workCtx, irep.ChannelSink{Ch: events})
		close(events)
		outcomeCh <- err
	}()

	viewErr := view(events)
	cancel()
	for range events {
	}
	err := <-outcomeCh
	if viewErr != nil {
		return viewErr
	}
	if errors.Is(err, context.Canceled) && ctx.Err() == nil {
		return errInterrupted
	}
	return err
}
