package domain

// Outcome represents the terminal result of a run
type Outcome string

const (
	OutcomeMerged              Outcome = "merged"
	OutcomeAwaitingManualMerge Outcome = "awaiting_manual_merge"
	OutcomeExhausted           Outcome = "exhausted"
	OutcomeNoChanges           Outcome = "no_changes"
	OutcomeFailed              Outcome = "failed"
)

// Decision represents a reviewer's judgment on a change request
type Decision string

const (
	DecisionApproved         Decision = "approved"
	DecisionChangesRequested Decision = "changes_requested"
	DecisionError            Decision = "error"
)

// Verdict is the parsed review judgment. Feedback is set only for
// DecisionChangesRequested.
type Verdict struct {
	Decision Decision
	Feedback string
}
