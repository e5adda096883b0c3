package report

import "time"

// Outcome is the terminal state of a reconciliation run
type Outcome string

const (
	OutcomeCompleted           Outcome = "completed"
	OutcomeCompletedWithErrors Outcome = "completed-with-errors"
	OutcomeAborted             Outcome = "aborted"
)

// RunReport summarizes one reconciliation run. Counts are independent of
// worker scheduling order.
type RunReport struct {
	Mode      string // "incremental" or "rebuild"
	Created   int
	Updated   int
	Unchanged int
	Missing   int
	Hashed    int
	Tokenized int
	Errors    int
	Warnings  int
	Duration  time.Duration
	Outcome   Outcome
}

// Finish stamps the terminal outcome from the error count. Aborted runs set
// their outcome explicitly before reporting.
func (r *RunReport) Finish(started time.Time) {
	r.Duration = time.Since(started)
	if r.Outcome == OutcomeAborted {
		return
	}
	if r.Errors > 0 {
		r.Outcome = OutcomeCompletedWithErrors
	} else {
		r.Outcome = OutcomeCompleted
	}
}
