package domain

import "time"

// WorkItem is one unit of improvement work: a mode identifier plus the
// fully-resolved instructions for the improvement agent. Immutable once
// enqueued.
type WorkItem struct {
	Mode         string // mode key, e.g. "fix_bugs", "northstar", "custom"
	Name         string // display name for PR titles and notifications
	Instructions string
}

// RunIdentity names a single run. Branch doubles as the git branch name
// and is unique across runs (second-resolution timestamp plus random
// suffix).
type RunIdentity struct {
	Mode      string
	Branch    string
	StartedAt time.Time
}

// RunResult is the terminal record of one run. Produced once per
// WorkItem, never mutated afterwards.
type RunResult struct {
	Identity    RunIdentity
	Outcome     Outcome
	Iterations  int // fix attempts used by the review loop
	LastVerdict Verdict
	PRURL       string
	Error       string // set when Outcome is OutcomeFailed
	FinishedAt  time.Time
}

// CycleReport aggregates the results of one scheduling cycle.
type CycleReport struct {
	StartedAt  time.Time
	FinishedAt time.Time
	Results    []RunResult
}

// Merged counts results that ended in OutcomeMerged.
func (r CycleReport) Merged() int {
	n := 0
	for _, res := range r.Results {
		if res.Outcome == OutcomeMerged {
			n++
		}
	}
	return n
}

// Failed counts results that ended in OutcomeFailed.
func (r CycleReport) Failed() int {
	n := 0
	for _, res := range r.Results {
		if res.Outcome == OutcomeFailed {
			n++
		}
	}
	return n
}
