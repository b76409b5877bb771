package trace

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMergeAndSort_StableAcrossEqualTimestampsAndFiles(t *testing.T) {
	fileA := mustRead(t, strings.Join([]string{
		`{"type":"sem_ctor","sem":1,"timestamp":100}`,
		`{"type":"edge","pre":1,"post":2,"timestamp":100}`,
	}, "\n"))
	fileB := mustRead(t, `{"type":"sem_ctor","sem":2,"timestamp":50}`)

	merged := MergeAndSort([][]RawEvent{fileA, fileB})
	require.Len(t, merged, 3)
	require.Equal(t, int64(0), merged[0].Timestamp, "earliest event across all files becomes the origin")
	require.Equal(t, "sem_ctor", merged[0].Type)
	require.Equal(t, int64(50), merged[1].Timestamp)
	require.Equal(t, int64(50), merged[2].Timestamp, "equal timestamps keep their relative file/line order")
}

func TestMergeAndSort_EmptyInput(t *testing.T) {
	require.Empty(t, MergeAndSort(nil))
	require.Empty(t, MergeAndSort([][]RawEvent{{}, {}}))
}

func TestReadRawEvents_SkipsBlankLines(t *testing.T) {
	events, err := ReadRawEvents(strings.NewReader("\n{\"type\":\"sem_ctor\",\"sem\":1,\"timestamp\":0}\n\n"))
	require.NoError(t, err)
	require.Len(t, events, 1)
}

func TestReadRawEvents_MalformedJSONErrors(t *testing.T) {
	_, err := ReadRawEvents(strings.NewReader(`{"type": "sem_ctor"`))
	require.Error(t, err)
}

func TestWriteNormalizedEvents_EmitsOneJSONLinePerEvent(t *testing.T) {
	var buf bytes.Buffer
	events := []NormalizedEvent{
		{Type: KindSemCtor, Sem: 0, Count: 2, Timestamp: 0},
		{Type: KindEdge, Pre: 0, Post: 1, Timestamp: 1},
	}
	require.NoError(t, WriteNormalizedEvents(&buf, events))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	require.Contains(t, lines[0], `"sem_ctor"`)
	require.Contains(t, lines[1], `"edge"`)
}
