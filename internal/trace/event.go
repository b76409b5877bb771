package trace

import "encoding/json"

// Address decodes either a bare integer address or an object carrying an
// "address" integer field — both forms are accepted on raw trace input.
type Address int64

// UnmarshalJSON implements the dual integer-or-object decoding spec.md §6 requires.
func (a *Address) UnmarshalJSON(data []byte) error {
	var direct int64
	if err := json.Unmarshal(data, &direct); err == nil {
		*a = Address(direct)
		return nil
	}
	var wrapped struct {
		Address int64 `json:"address"`
	}
	if err := json.Unmarshal(data, &wrapped); err != nil {
		return ErrMalformedAddress
	}
	*a = Address(wrapped.Address)
	return nil
}

// RawEvent is one decoded line of raw trace input, a superset of the
// fields any single event "type" may carry (spec.md §4.1's table).
type RawEvent struct {
	Type        string   `json:"type"`
	Timestamp   int64    `json:"timestamp"`
	Sem         *Address `json:"sem,omitempty"`
	Pre         *Address `json:"pre,omitempty"`
	Post        *Address `json:"post,omitempty"`
	Vertex      *Address `json:"vertex,omitempty"`
	From        *Address `json:"from,omitempty"`
	To          *Address `json:"to,omitempty"`
	Count       *int     `json:"count,omitempty"`
	Speculative *bool    `json:"speculative,omitempty"`
}

// Normalized event type tags, matching spec.md §6's wire format exactly.
const (
	KindSemCtor   = "sem_ctor"
	KindSemDtor   = "sem_dtor"
	KindEdge      = "edge"
	KindSemWait   = "sem_wait"
	KindSemSignal = "sem_signal"
)

// NormalizedEvent is one canonicalized, compact-id event as emitted by
// the Normalizer and consumed by package dag's Build.
type NormalizedEvent struct {
	Type        string `json:"type"`
	Sem         int    `json:"sem,omitempty"`
	OriginalSem int64  `json:"original_sem,omitempty"`
	Count       int    `json:"count,omitempty"`
	Pre         int    `json:"pre,omitempty"`
	Post        int    `json:"post,omitempty"`
	Vertex      int    `json:"vertex,omitempty"`
	Speculative bool   `json:"speculative,omitempty"`
	Timestamp   int64  `json:"timestamp"`
}
