package model

import "time"

// RunKind identifies which scorer produced a snapshot.
type RunKind string

const (
	RunKindRaw     RunKind = "raw"
	RunKindProfile RunKind = "profile"
)

// Run is a persisted snapshot of one scoring pass over the dataset.
type Run struct {
	ID        string            `json:"id"`
	Kind      RunKind           `json:"kind"`
	Profile   *ArbitrageProfile `json:"profile,omitempty"`
	Entries   []RunEntry        `json:"entries"`
	CreatedAt time.Time         `json:"created_at"`
}

// RunEntry is one opportunity's outcome within a run.
type RunEntry struct {
	OpportunityID string   `json:"opportunity_id"`
	City          string   `json:"city"`
	Score         float64  `json:"score"`
	Drivers       []string `json:"drivers,omitempty"`
	StrScore      *float64 `json:"str_score,omitempty"`
}

// TopEntry returns the highest-scoring entry, if any.
func (r Run) TopEntry() (RunEntry, bool) {
	if len(r.Entries) == 0 {
		return RunEntry{}, false
	}
	best := r.Entries[0]
	for _, e := range r.Entries[1:] {
		if e.Score > best.Score {
			best = e
		}
	}
	return best, true
}
