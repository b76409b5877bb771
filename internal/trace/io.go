package trace

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"sort"
)

// ReadRawEvents decodes one JSON-Lines file into RawEvent records.
// Unknown fields are ignored by encoding/json by default; unknown event
// types are left to the caller (Normalizer) to warn on, per spec.md §6.
func ReadRawEvents(r io.Reader) ([]RawEvent, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	var events []RawEvent
	line := 0
	for scanner.Scan() {
		line++
		text := scanner.Bytes()
		if len(bytes.TrimSpace(text)) == 0 {
			continue
		}
		var ev RawEvent
		if err := json.Unmarshal(text, &ev); err != nil {
			return nil, fmt.Errorf("trace: malformed JSON on line %d: %w", line, err)
		}
		events = append(events, ev)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("trace: reading input: %w", err)
	}
	return events, nil
}

// MergeAndSort merges raw events from one or more log files, stable-sorts
// them by timestamp, and shifts timestamps so the first event is zero —
// the Event Normalizer's input contract from spec.md §4.1.
func MergeAndSort(files [][]RawEvent) []RawEvent {
	var merged []RawEvent
	for _, f := range files {
		merged = append(merged, f...)
	}
	sort.SliceStable(merged, func(i, j int) bool {
		return merged[i].Timestamp < merged[j].Timestamp
	})
	if len(merged) == 0 {
		return merged
	}
	origin := merged[0].Timestamp
	for i := range merged {
		merged[i].Timestamp -= origin
	}
	return merged
}

// WriteNormalizedEvents emits the normalized stream as JSON Lines, the
// standalone artifact format spec.md §6 describes.
func WriteNormalizedEvents(w io.Writer, events []NormalizedEvent) error {
	enc := json.NewEncoder(w)
	for _, ev := range events {
		if err := enc.Encode(ev); err != nil {
			return fmt.Errorf("trace: writing normalized event: %w", err)
		}
	}
	return nil
}
