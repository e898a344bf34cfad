package pipeline_test

import (
	"testing"

	"jobfeed-engine/internal/pipeline"
)

// ── IsTransitionAllowed — valid (forward) transitions ─────────────────────

func TestIsTransitionAllowed_ValidForward(t *testing.T) {
	cases := []struct {
		from pipeline.Status
		to   pipeline.Status
	}{
		{pipeline.StatusIdle, pipeline.StatusAggregating},
		{pipeline.StatusAggregating, pipeline.StatusEnriching},
		{pipeline.StatusEnriching, pipeline.StatusPersisting},
		{pipeline.StatusPersisting, pipeline.StatusDone},
	}
	for _, c := range cases {
		if !pipeline.IsTransitionAllowed(c.from, c.to) {
			t.Errorf("IsTransitionAllowed(%s → %s) should be true", c.from, c.to)
		}
	}
}

// ── IsTransitionAllowed — failure is reachable mid-pass ───────────────────

func TestIsTransitionAllowed_ToFailed(t *testing.T) {
	froms := []pipeline.Status{
		pipeline.StatusIdle,
		pipeline.StatusAggregating,
		pipeline.StatusEnriching,
		pipeline.StatusPersisting,
		pipeline.StatusDone,
	}
	for _, from := range froms {
		if !pipeline.IsTransitionAllowed(from, pipeline.StatusFailed) {
			t.Errorf("IsTransitionAllowed(%s → FAILED) should be true", from)
		}
	}
}

// ── IsTransitionAllowed — finished passes restart from the top ────────────

func TestIsTransitionAllowed_NewPassAfterTerminal(t *testing.T) {
	for _, from := range []pipeline.Status{pipeline.StatusDone, pipeline.StatusFailed} {
		if !pipeline.IsTransitionAllowed(from, pipeline.StatusAggregating) {
			t.Errorf("IsTransitionAllowed(%s → AGGREGATING) should be true", from)
		}
	}
	// but never resume mid-pass
	for _, to := range []pipeline.Status{
		pipeline.StatusEnriching,
		pipeline.StatusPersisting,
		pipeline.StatusDone,
	} {
		if pipeline.IsTransitionAllowed(pipeline.StatusDone, to) {
			t.Errorf("IsTransitionAllowed(DONE → %s) should be false", to)
		}
		if pipeline.IsTransitionAllowed(pipeline.StatusFailed, to) {
			t.Errorf("IsTransitionAllowed(FAILED → %s) should be false", to)
		}
	}
}

// ── IsTransitionAllowed — skip-level transitions are forbidden ─────────────

func TestIsTransitionAllowed_SkipLevel(t *testing.T) {
	cases := []struct {
		from pipeline.Status
		to   pipeline.Status
	}{
		{pipeline.StatusIdle, pipeline.StatusEnriching},    // skip AGGREGATING
		{pipeline.StatusIdle, pipeline.StatusPersisting},   // skip two
		{pipeline.StatusIdle, pipeline.StatusDone},         // skip all
		{pipeline.StatusAggregating, pipeline.StatusPersisting},
		{pipeline.StatusAggregating, pipeline.StatusDone},
		{pipeline.StatusEnriching, pipeline.StatusDone},
	}
	for _, c := range cases {
		if pipeline.IsTransitionAllowed(c.from, c.to) {
			t.Errorf("IsTransitionAllowed(%s → %s) should be false (skip-level)", c.from, c.to)
		}
	}
}

// ── IsTransitionAllowed — backwards movements are forbidden ───────────────

func TestIsTransitionAllowed_Backwards(t *testing.T) {
	cases := []struct {
		from pipeline.Status
		to   pipeline.Status
	}{
		{pipeline.StatusAggregating, pipeline.StatusIdle},
		{pipeline.StatusEnriching, pipeline.StatusAggregating},
		{pipeline.StatusPersisting, pipeline.StatusEnriching},
	}
	for _, c := range cases {
		if pipeline.IsTransitionAllowed(c.from, c.to) {
			t.Errorf("IsTransitionAllowed(%s → %s) should be false (backwards)", c.from, c.to)
		}
	}
}

// ── IsTransitionAllowed — self-transitions are forbidden ──────────────────

func TestIsTransitionAllowed_Self(t *testing.T) {
	all := []pipeline.Status{
		pipeline.StatusIdle, pipeline.StatusAggregating, pipeline.StatusEnriching,
		pipeline.StatusPersisting, pipeline.StatusDone, pipeline.StatusFailed,
	}
	for _, s := range all {
		if pipeline.IsTransitionAllowed(s, s) {
			t.Errorf("IsTransitionAllowed(%s → %s) should be false (self)", s, s)
		}
	}
}
