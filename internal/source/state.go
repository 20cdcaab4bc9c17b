package source

import (
	"slices"
	"time"
)

// Record is one item of a backend's list. IDs are unique within a response only.
type Record struct {
	ID          int    `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// Phase is the lifecycle position of a Loader.
type Phase string

const (
	PhaseIdle    Phase = "idle"
	PhaseLoading Phase = "loading"
	PhaseSuccess Phase = "success"
	PhaseFailed  Phase = "failed"
)

// LoadState is the observable state of one source.
// IsLoading and a non-empty Error never hold together.
type LoadState struct {
	Phase     Phase
	IsLoading bool
	Error     string
	Records   []Record
	// LastUpdatedAt is the completion time of the last successful cycle.
	// The zero value means no cycle has succeeded yet.
	LastUpdatedAt time.Time
	Endpoint      string
	Generation    uint64
}

// Updated reports whether a cycle has ever succeeded.
func (s LoadState) Updated() bool {
	return !s.LastUpdatedAt.IsZero()
}

func (s LoadState) clone() LoadState {
	s.Records = slices.Clone(s.Records)
	if s.Records == nil {
		s.Records = []Record{}
	}
	return s
}

func initialState() LoadState {
	return LoadState{
		Phase:     PhaseIdle,
		IsLoading: true,
		Records:   []Record{},
	}
}
