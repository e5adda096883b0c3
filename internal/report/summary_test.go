package report

import (
	"testing"
	"time"
)

func TestRunReportFinish(t *testing.T) {
	started := time.Now().Add(-2 * time.Second)

	clean := &RunReport{Mode: "incremental", Created: 3}
	clean.Finish(started)
	if clean.Outcome != OutcomeCompleted {
		t.Errorf("expected completed, got %s", clean.Outcome)
	}
	if clean.Duration < 2*time.Second {
		t.Errorf("duration not stamped: %v", clean.Duration)
	}

	withErrors := &RunReport{Mode: "incremental", Errors: 2}
	withErrors.Finish(started)
	if withErrors.Outcome != OutcomeCompletedWithErrors {
		t.Errorf("expected completed-with-errors, got %s", withErrors.Outcome)
	}

	// An explicit abort is terminal; errors do not rewrite it
	aborted := &RunReport{Mode: "rebuild", Errors: 5, Outcome: OutcomeAborted}
	aborted.Finish(started)
	if aborted.Outcome != OutcomeAborted {
		t.Errorf("expected aborted to stick, got %s", aborted.Outcome)
	}
}
