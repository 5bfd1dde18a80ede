package irep

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"gotoc/internal/ir"
	"gotoc/internal/machine"
)

func TestSerializeUnitsMatchesSingleWriter(t *testing.T) {
	var want bytes.Buffer
	require.NoError(t, WriteJSON(context.Background(), &want, goldenTable()))

	outs := make([]bytes.Buffer, 4)
	units := make([]Unit, len(outs))
	for i := range units {
		units[i] = Unit{Name: string(rune('a' + i)), Table: goldenTable(), Out: &outs[i]}
	}
	events := make(chan Event, 3*len(units))
	require.NoError(t, SerializeUnits(context.Background(), units, 2, FormatJSON, ChannelSink{Ch: events}))
	close(events)

	for i := range outs {
		require.Equal(t, want.String(), outs[i].String())
	}
	counts := map[Status]int{}
	for evt := range events {
		counts[evt.Status]++
		if evt.Status == StatusDone {
			require.Equal(t, 2, evt.Symbols)
		}
	}
	require.Equal(t, map[Status]int{StatusQueued: 4, StatusWorking: 4, StatusDone: 4}, counts)
}

func TestSerializeUnitsReportsInternalErrors(t *testing.T) {
	st := ir.NewEmptySymbolTable(machine.MustPreset("x86_64-linux"))
	st.Insert(&ir.Symbol{Name: "broken"})

	var out bytes.Buffer
	events := make(chan Event, 8)
	err := SerializeUnits(context.Background(), []Unit{{Name: "bad", Table: st, Out: &out}}, 0, FormatMsgpack, ChannelSink{Ch: events})
	require.Error(t, err)
	require.Contains(t, err.Error(), "unit bad")
	require.Contains(t, err.Error(), "internal compiler error")
	close(events)

	var last Event
	for evt := range events {
		last = evt
	}
	require.Equal(t, StatusError, last.Status)
}

func TestParseFormat(t *testing.T) {
	f, err := ParseFormat("msgpack")
	require.NoError(t, err)
	require.Equal(t, ".symtab.msgpack", f.Ext())
	_, err = ParseFormat("xml")
	require.Error(t, err)
}
