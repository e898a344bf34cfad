// Package pipeline drives one aggregation pass end to end.
//
// Valid state graph:
//
//	IDLE ──► AGGREGATING ──► ENRICHING ──► PERSISTING ──► DONE
//	  │            │              │             │
//	  └────────────┴──────────────┴─────────────┴──► FAILED
//
// DONE and FAILED end a pass; the next pass starts over from either.
// Deduplication happens at the top of ENRICHING, against whatever the
// sink already holds.
package pipeline

import "fmt"

type Status string

const (
	StatusIdle        Status = "IDLE"
	StatusAggregating Status = "AGGREGATING"
	StatusEnriching   Status = "ENRICHING"
	StatusPersisting  Status = "PERSISTING"
	StatusDone        Status = "DONE"
	StatusFailed      Status = "FAILED"
)

// validTransitions lists every allowed (from → to) pair.
var validTransitions = map[Status][]Status{
	StatusIdle:        {StatusAggregating, StatusFailed},
	StatusAggregating: {StatusEnriching, StatusFailed},
	StatusEnriching:   {StatusPersisting, StatusFailed},
	StatusPersisting:  {StatusDone, StatusFailed},
	// a finished pass can only be followed by a fresh one
	StatusDone:   {StatusAggregating, StatusFailed},
	StatusFailed: {StatusAggregating},
}

// IsTransitionAllowed reports whether moving from → to is permitted by
// the state machine.
func IsTransitionAllowed(from, to Status) bool {
	allowed, ok := validTransitions[from]
	if !ok {
		return false
	}
	for _, s := range allowed {
		if s == to {
			return true
		}
	}
	return false
}

// running reports whether a pass is mid-flight.
func (s Status) running() bool {
	switch s {
	case StatusAggregating, StatusEnriching, StatusPersisting:
		return true
	}
	return false
}

func invalidTransition(from, to Status) error {
	return fmt.Errorf("invalid runner transition %s -> %s", from, to)
}
