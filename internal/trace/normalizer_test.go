package trace

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func mustRead(t *testing.T, jsonl string) []RawEvent {
	t.Helper()
	events, err := ReadRawEvents(strings.NewReader(jsonl))
	require.NoError(t, err)
	return events
}

func TestNormalizer_SemCtorAssignsCompactID(t *testing.T) {
	events := mustRead(t, `{"type":"sem_ctor","sem":4096,"count":2,"timestamp":100}`)
	n := New()
	out, warnings, err := n.Normalize(MergeAndSort([][]RawEvent{events}))
	require.NoError(t, err)
	require.Empty(t, warnings)
	require.Len(t, out, 1)
	require.Equal(t, NormalizedEvent{Type: KindSemCtor, Sem: 0, OriginalSem: 4096, Count: 2, Timestamp: 0}, out[0])
}

func TestNormalizer_ShiftsTimestampToZero(t *testing.T) {
	events := mustRead(t, strings.Join([]string{
		`{"type":"sem_ctor","sem":1,"count":1,"timestamp":500}`,
		`{"type":"sem_dtor","sem":1,"timestamp":600}`,
	}, "\n"))
	n := New()
	out, _, err := n.Normalize(MergeAndSort([][]RawEvent{events}))
	require.NoError(t, err)
	require.Equal(t, int64(0), out[0].Timestamp)
	require.Equal(t, int64(100), out[1].Timestamp)
}

func TestNormalizer_AddressObjectForm(t *testing.T) {
	events := mustRead(t, `{"type":"sem_ctor","sem":{"address":7},"count":3,"timestamp":0}`)
	n := New()
	out, _, err := n.Normalize(events)
	require.NoError(t, err)
	require.Equal(t, 3, out[0].Count)
}

func TestNormalizer_SemWaitSplitReassembly(t *testing.T) {
	events := mustRead(t, strings.Join([]string{
		`{"type":"sem_ctor","sem":1,"count":1,"timestamp":0}`,
		`{"type":"sem_wait","sem":1,"pre":2,"post":3,"count":1,"timestamp":10}`,
		`{"type":"sem_wait_completed","sem":1,"post":3,"timestamp":20}`,
	}, "\n"))
	n := New()
	out, warnings, err := n.Normalize(events)
	require.NoError(t, err)
	require.Empty(t, warnings)
	require.Len(t, out, 2)
	require.Equal(t, KindSemWait, out[1].Type)
	require.Equal(t, int64(10), out[1].Timestamp, "finalized wait keeps the start timestamp")
	require.Equal(t, 1, out[1].Count)
}

func TestNormalizer_WaitCompletedWithoutPendingWarns(t *testing.T) {
	events := mustRead(t, `{"type":"sem_wait_completed","sem":1,"post":3,"timestamp":20}`)
	n := New()
	out, warnings, err := n.Normalize(events)
	require.NoError(t, err)
	require.Empty(t, out)
	require.Len(t, warnings, 1)
	require.ErrorIs(t, warnings[0].Err, ErrNoPendingWait)
}

func TestNormalizer_WaitCompletedWithoutPendingAbortsInStrictMode(t *testing.T) {
	events := mustRead(t, `{"type":"sem_wait_completed","sem":1,"post":3,"timestamp":20}`)
	n := New(WithStrict())
	_, _, err := n.Normalize(events)
	require.Error(t, err)
}

func TestNormalizer_SemMoveSuppressesDtorAndKeepsID(t *testing.T) {
	events := mustRead(t, strings.Join([]string{
		`{"type":"sem_ctor","sem":10,"count":1,"timestamp":0}`,
		`{"type":"sem_move","from":10,"to":20,"timestamp":5}`,
		`{"type":"sem_dtor","sem":10,"timestamp":10}`,
		`{"type":"sem_dtor","sem":20,"timestamp":20}`,
	}, "\n"))
	n := New()
	out, _, err := n.Normalize(events)
	require.NoError(t, err)
	// Only the ctor and the final dtor (on the moved-to identity) survive;
	// the dtor of the moved-from address is suppressed.
	require.Len(t, out, 2)
	require.Equal(t, KindSemCtor, out[0].Type)
	require.Equal(t, KindSemDtor, out[1].Type)
	require.Equal(t, out[0].Sem, out[1].Sem, "move rebinds the compact id across the rename")
}

func TestNormalizer_DestroyUnknownWarnsByDefault(t *testing.T) {
	events := mustRead(t, `{"type":"sem_dtor","sem":99,"timestamp":0}`)
	n := New()
	out, warnings, err := n.Normalize(events)
	require.NoError(t, err)
	require.Empty(t, out)
	require.Len(t, warnings, 1)
	require.ErrorIs(t, warnings[0].Err, ErrDestroyUnknown)
}

func TestNormalizer_DoubleConstructWarnsByDefault(t *testing.T) {
	events := mustRead(t, strings.Join([]string{
		`{"type":"sem_ctor","sem":1,"count":1,"timestamp":0}`,
		`{"type":"sem_ctor","sem":1,"count":1,"timestamp":1}`,
	}, "\n"))
	n := New()
	out, warnings, err := n.Normalize(events)
	require.NoError(t, err)
	require.Len(t, out, 1)
	require.Len(t, warnings, 1)
	require.ErrorIs(t, warnings[0].Err, ErrConstructLive)
}

func TestNormalizer_UnknownEventTypeWarnsAndSkips(t *testing.T) {
	events := mustRead(t, `{"type":"semaphore_signal_schedule","timestamp":0}`)
	n := New()
	out, warnings, err := n.Normalize(events)
	require.NoError(t, err)
	require.Empty(t, out)
	require.Len(t, warnings, 1)
}

func TestNormalizer_IsIdempotentOnItsOwnOutput(t *testing.T) {
	events := mustRead(t, strings.Join([]string{
		`{"type":"sem_ctor","sem":1,"count":1,"timestamp":50}`,
		`{"type":"edge","pre":2,"post":3,"timestamp":60}`,
	}, "\n"))
	first := New()
	out1, _, err := first.Normalize(MergeAndSort([][]RawEvent{events}))
	require.NoError(t, err)

	reEncoded := make([]RawEvent, len(out1))
	for i, ev := range out1 {
		reEncoded[i] = RawEvent{Type: ev.Type, Timestamp: ev.Timestamp}
		sem, pre, post, vertex := Address(ev.Sem), Address(ev.Pre), Address(ev.Post), Address(ev.Vertex)
		count := ev.Count
		switch ev.Type {
		case KindSemCtor:
			reEncoded[i].Sem = &sem
			reEncoded[i].Count = &count
		case KindEdge:
			reEncoded[i].Pre = &pre
			reEncoded[i].Post = &post
		case KindSemWait:
			reEncoded[i].Sem, reEncoded[i].Pre, reEncoded[i].Post = &sem, &pre, &post
			reEncoded[i].Count = &count
		case KindSemSignal:
			reEncoded[i].Sem, reEncoded[i].Vertex = &sem, &vertex
			reEncoded[i].Count = &count
		}
	}

	second := New()
	out2, _, err := second.Normalize(MergeAndSort([][]RawEvent{reEncoded}))
	require.NoError(t, err)
	require.Equal(t, out1, out2)
}
