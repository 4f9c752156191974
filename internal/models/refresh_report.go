package models

import "time"

// ConcurrencyMode decides how entity lookups share browser sessions.
type ConcurrencyMode string

const (
	// ConcurrencyShared uses one authenticated session with serialized entity turns.
	ConcurrencyShared ConcurrencyMode = "shared"
	// ConcurrencyParallel opens one session (and one login) per entity.
	ConcurrencyParallel ConcurrencyMode = "parallel"
)

// RefreshReport summarizes one refresh cycle.
type RefreshReport struct {
	CycleID    string          `json:"cycle_id"`
	Mode       ConcurrencyMode `json:"mode"`
	StartedAt  time.Time       `json:"started_at"`
	FinishedAt time.Time       `json:"finished_at"`
	Results    []LookupResult  `json:"results"`
	// Fatal is set when the cycle aborted on a launch or authentication failure.
	Fatal string `json:"fatal,omitempty"`
}

// Duration returns the wall-clock time the cycle took.
func (r RefreshReport) Duration() time.Duration {
	if r.FinishedAt.IsZero() {
		return 0
	}
	return r.FinishedAt.Sub(r.StartedAt)
}

// FoundCount returns how many entities resolved to an address.
func (r RefreshReport) FoundCount() int {
	n := 0
	for _, res := range r.Results {
		if res.IsFound() {
			n++
		}
	}
	return n
}
