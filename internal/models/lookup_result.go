package models

import "time"

// Outcome is the terminal state of one lookup attempt.
type Outcome int

const (
	OutcomeFound Outcome = iota
	OutcomeNotFound
	OutcomeTimeout
	OutcomeError
)

// String returns string representation of Outcome
func (o Outcome) String() string {
	switch o {
	case OutcomeFound:
		return "found"
	case OutcomeNotFound:
		return "not_found"
	case OutcomeTimeout:
		return "timeout"
	case OutcomeError:
		return "error"
	default:
		return "unknown"
	}
}

// MarshalText lets outcomes render as their names in JSON.
func (o Outcome) MarshalText() ([]byte, error) {
	return []byte(o.String()), nil
}

// LookupResult is produced whole by one of the constructors below and never
// mutated afterwards.
type LookupResult struct {
	EntityID  string    `json:"entity_id"`
	Outcome   Outcome   `json:"outcome"`
	Text      string    `json:"text,omitempty"`
	Source    string    `json:"source,omitempty"`
	Reason    string    `json:"reason,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// Found builds a successful result carrying the normalized address.
func Found(entityID, source, text string) LookupResult {
	return LookupResult{
		EntityID:  entityID,
		Outcome:   OutcomeFound,
		Text:      text,
		Source:    source,
		Timestamp: time.Now(),
	}
}

// Failed builds a negative result with an explicit outcome and reason.
func Failed(entityID, source string, outcome Outcome, reason string) LookupResult {
	return LookupResult{
		EntityID:  entityID,
		Outcome:   outcome,
		Source:    source,
		Reason:    reason,
		Timestamp: time.Now(),
	}
}

// IsFound reports whether the result carries an address.
func (r LookupResult) IsFound() bool {
	return r.Outcome == OutcomeFound
}
