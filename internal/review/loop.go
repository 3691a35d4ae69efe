package review

import (
	"context"
	"fmt"
	"time"

	"github.com/hochfrequenz/auto-reviewer/internal/agent"
	"github.com/hochfrequenz/auto-reviewer/internal/domain"
)

// State is the terminal state of a review loop.
type State int

const (
	StateUnknown State = iota
	StateApproved
	StateExhausted // iteration bound hit without approval
	StateError     // review or fix invocation failed, or verdict unparseable
)

// String returns a human-readable description of the state.
func (s State) String() string {
	switch s {
	case StateApproved:
		return "approved"
	case StateExhausted:
		return "exhausted"
	case StateError:
		return "error"
	default:
		return "unknown"
	}
}

// Result is the outcome of a loop execution. Iterations counts fix
// attempts actually issued.
type Result struct {
	State       State
	Iterations  int
	LastVerdict domain.Verdict
}

// DefaultMaxIterations bounds fix attempts when the caller sets none.
// Review/fix agents are not guaranteed to converge and every round costs
// real money and time.
const DefaultMaxIterations = 3

// Loop drives repeated review-fix cycles against a published change
// request until a terminal state is reached. It never merges; that
// decision belongs to the caller.
type Loop struct {
	Runner        agent.Runner
	Dir           string
	MaxIterations int
	ReviewTimeout time.Duration
	FixTimeout    time.Duration

	// ReviewInstructions builds the reviewer prompt; FixInstructions
	// builds the fixer prompt from the reviewer's feedback.
	ReviewInstructions func() string
	FixInstructions    func(feedback string, iteration int) string

	Logf func(format string, args ...any)
}

// Run executes the state machine:
//
//	AwaitingReview -> Approved
//	AwaitingReview -> AwaitingFix -> AwaitingReview   (bounded)
//	AwaitingReview -> Exhausted
//	(any)          -> Error
//
// Cancellation is honored at iteration boundaries only; an in-flight
// agent invocation is atomic from the loop's point of view.
func (l *Loop) Run(ctx context.Context) (Result, error) {
	logf := l.Logf
	if logf == nil {
		logf = func(string, ...any) {}
	}
	maxIter := l.MaxIterations
	if maxIter <= 0 {
		maxIter = DefaultMaxIterations
	}

	iterations := 0
	var verdict domain.Verdict

	for {
		if err := ctx.Err(); err != nil {
			return Result{State: StateError, Iterations: iterations, LastVerdict: verdict}, err
		}

		v, err := l.review(ctx)
		verdict = v
		if err != nil {
			return Result{State: StateError, Iterations: iterations, LastVerdict: verdict}, err
		}

		switch verdict.Decision {
		case domain.DecisionApproved:
			logf("change approved after %d fix attempt(s)", iterations)
			return Result{State: StateApproved, Iterations: iterations, LastVerdict: verdict}, nil
		case domain.DecisionError:
			// Already re-asked once inside review().
			return Result{State: StateError, Iterations: iterations, LastVerdict: verdict}, nil
		}

		if iterations >= maxIter {
			logf("max iterations (%d) reached without approval", maxIter)
			return Result{State: StateExhausted, Iterations: iterations, LastVerdict: verdict}, nil
		}

		iterations++
		logf("reviewer requested changes, fix attempt %d/%d", iterations, maxIter)

		inv, err := l.Runner.Invoke(ctx, agent.RoleFix, l.FixInstructions(verdict.Feedback, iterations), l.Dir, l.FixTimeout)
		if err != nil {
			return Result{State: StateError, Iterations: iterations, LastVerdict: verdict}, err
		}
		if !inv.Succeeded {
			return Result{State: StateError, Iterations: iterations, LastVerdict: verdict},
				fmt.Errorf("fix agent failed on attempt %d", iterations)
		}
		// Re-enter review even when the fix produced no further change:
		// the agent may have judged no change necessary, and only the
		// reviewer can confirm that.
	}
}

// review invokes the review role and parses its verdict, re-asking once
// when the output is unparseable. A second unparseable output is
// returned as a DecisionError verdict, not an error: malformed free text
// is expected from a best-effort reviewer.
func (l *Loop) review(ctx context.Context) (domain.Verdict, error) {
	for attempt := 0; attempt < 2; attempt++ {
		inv, err := l.Runner.Invoke(ctx, agent.RoleReview, l.ReviewInstructions(), l.Dir, l.ReviewTimeout)
		if err != nil {
			return domain.Verdict{Decision: domain.DecisionError}, err
		}
		if !inv.Succeeded {
			continue
		}
		if v := ParseVerdict(inv.Output); v.Decision != domain.DecisionError {
			return v, nil
		}
	}
	return domain.Verdict{Decision: domain.DecisionError}, nil
}
