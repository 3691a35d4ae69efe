// Package orchestrator composes one run per work item: branch, improve,
// publish, review loop, finalize, report.
package orchestrator

import (
	"context"
	"crypto/rand"
	"fmt"
	"io"
	"time"

	"github.com/hochfrequenz/auto-reviewer/internal/agent"
	"github.com/hochfrequenz/auto-reviewer/internal/domain"
	"github.com/hochfrequenz/auto-reviewer/internal/modes"
	"github.com/hochfrequenz/auto-reviewer/internal/northstar"
	"github.com/hochfrequenz/auto-reviewer/internal/notify"
	"github.com/hochfrequenz/auto-reviewer/internal/prbot"
	"github.com/hochfrequenz/auto-reviewer/internal/review"
	"github.com/hochfrequenz/auto-reviewer/internal/runid"
)

// Store persists run history. Best-effort: errors are logged, never
// propagated.
type Store interface {
	SaveResult(res domain.RunResult) error
	SaveCycle(report domain.CycleReport) error
}

// Workspace is the branch-level git surface the orchestrator needs.
// Satisfied by *gitops.Repo.
type Workspace interface {
	Dir() string
	CheckoutBase() error
	CreateBranch(name string) error
	DeleteBranch(name string)
}

// Orchestrator processes work items sequentially, each as one full run.
// The active run's identity is threaded through as a value; there is no
// process-wide current-run state.
type Orchestrator struct {
	Repo     Workspace
	Agent    agent.Runner
	Host     prbot.Host
	Notifier notify.Notifier
	Store    Store // optional

	MaxIterations  int
	AutoMerge      bool
	ImproveTimeout time.Duration
	ReviewTimeout  time.Duration
	FixTimeout     time.Duration

	// NorthstarPath enables best-effort goal check-off after a merged
	// northstar run.
	NorthstarPath string

	Now  func() time.Time // defaults to time.Now
	Rand io.Reader        // defaults to crypto/rand.Reader
	Logf func(format string, args ...any)
}

func (o *Orchestrator) now() time.Time {
	if o.Now != nil {
		return o.Now()
	}
	return time.Now()
}

func (o *Orchestrator) rand() io.Reader {
	if o.Rand != nil {
		return o.Rand
	}
	return rand.Reader
}

func (o *Orchestrator) logf(format string, args ...any) {
	if o.Logf != nil {
		o.Logf(format, args...)
	}
}

// RunCycle processes the work item queue. Failures are isolated per
// item: one item's failure never aborts the remaining items.
// Cancellation is checked between items only.
func (o *Orchestrator) RunCycle(ctx context.Context, items []domain.WorkItem) domain.CycleReport {
	report := domain.CycleReport{StartedAt: o.now()}

	for _, item := range items {
		if ctx.Err() != nil {
			o.logf("cycle cancelled, %d item(s) skipped", len(items)-len(report.Results))
			break
		}

		res := o.runItem(ctx, item)
		report.Results = append(report.Results, res)
		o.notifyResult(item, res)

		if o.Store != nil {
			if err := o.Store.SaveResult(res); err != nil {
				o.logf("warning: saving run result: %v", err)
			}
		}
	}

	report.FinishedAt = o.now()
	if o.Store != nil {
		if err := o.Store.SaveCycle(report); err != nil {
			o.logf("warning: saving cycle report: %v", err)
		}
	}
	return report
}

// runItem executes one full run. The published change request is never
// deleted or force-closed on failure, so a human can still inspect it.
func (o *Orchestrator) runItem(ctx context.Context, item domain.WorkItem) domain.RunResult {
	id, err := runid.New(item.Mode, o.now(), o.rand())
	if err != nil {
		return o.failed(domain.RunIdentity{Mode: item.Mode, StartedAt: o.now()}, err)
	}

	o.logf("starting run %s", id.Branch)

	if err := o.Repo.CheckoutBase(); err != nil {
		return o.failed(id, fmt.Errorf("checking out base branch: %w", err))
	}
	if err := o.Repo.CreateBranch(id.Branch); err != nil {
		return o.failed(id, fmt.Errorf("creating branch: %w", err))
	}
	// Leave the checkout on the base branch whatever happens below.
	defer o.Repo.CheckoutBase()

	inv, err := o.Agent.Invoke(ctx, agent.RoleImprove, item.Instructions, o.Repo.Dir(), o.ImproveTimeout)
	if err != nil {
		o.discardBranch(id.Branch)
		return o.failed(id, err)
	}
	if !inv.Succeeded {
		o.discardBranch(id.Branch)
		return o.failed(id, fmt.Errorf("improvement agent failed"))
	}
	if !inv.Changed {
		// Reviewing nothing is wasted cost: no publish, no review.
		o.logf("no changes produced for mode %s", item.Mode)
		o.discardBranch(id.Branch)
		return domain.RunResult{
			Identity:   id,
			Outcome:    domain.OutcomeNoChanges,
			FinishedAt: o.now(),
		}
	}

	title := fmt.Sprintf("Auto-improvement: %s (%s)", item.Name, id.StartedAt.Format("2006-01-02"))
	body := prbot.BuildBody(item.Name, inv.Output)
	prURL, err := o.Host.Create(id.Branch, title, body)
	if err != nil {
		return o.failed(id, err)
	}
	o.logf("created change request %s", prURL)

	loop := &review.Loop{
		Runner:             o.Agent,
		Dir:                o.Repo.Dir(),
		MaxIterations:      o.MaxIterations,
		ReviewTimeout:      o.ReviewTimeout,
		FixTimeout:         o.FixTimeout,
		ReviewInstructions: func() string { return reviewInstructions(prURL) },
		FixInstructions:    func(fb string, it int) string { return fixInstructions(prURL, fb, it) },
		Logf:               o.Logf,
	}
	loopRes, loopErr := loop.Run(ctx)

	result := domain.RunResult{
		Identity:    id,
		Iterations:  loopRes.Iterations,
		LastVerdict: loopRes.LastVerdict,
		PRURL:       prURL,
		FinishedAt:  o.now(),
	}

	switch loopRes.State {
	case review.StateApproved:
		if !o.AutoMerge {
			o.logf("auto-merge disabled, change request awaits manual merge: %s", prURL)
			result.Outcome = domain.OutcomeAwaitingManualMerge
			break
		}
		if err := o.Host.Merge(prURL); err != nil {
			result.Outcome = domain.OutcomeFailed
			result.Error = err.Error()
			break
		}
		o.logf("merged %s", prURL)
		result.Outcome = domain.OutcomeMerged
		o.checkOffGoal(item)
	case review.StateExhausted:
		result.Outcome = domain.OutcomeExhausted
	default:
		result.Outcome = domain.OutcomeFailed
		if loopErr != nil {
			result.Error = loopErr.Error()
		} else {
			result.Error = "review verdict could not be parsed"
		}
	}
	return result
}

func (o *Orchestrator) failed(id domain.RunIdentity, err error) domain.RunResult {
	o.logf("run %s failed: %v", id.Branch, err)
	return domain.RunResult{
		Identity:   id,
		Outcome:    domain.OutcomeFailed,
		Error:      err.Error(),
		FinishedAt: o.now(),
	}
}

// discardBranch removes a branch whose run published nothing.
func (o *Orchestrator) discardBranch(branch string) {
	o.Repo.CheckoutBase()
	o.Repo.DeleteBranch(branch)
}

// checkOffGoal flips the first outstanding goal after a merged northstar
// run. Best-effort write-back; not required for correctness.
func (o *Orchestrator) checkOffGoal(item domain.WorkItem) {
	if item.Mode != modes.ModeNorthstar || o.NorthstarPath == "" {
		return
	}
	doc, err := northstar.Load(o.NorthstarPath)
	if err != nil {
		o.logf("warning: reloading goals document: %v", err)
		return
	}
	_, goal, ok := doc.FirstOutstanding()
	if !ok {
		return
	}
	if err := northstar.CheckOff(o.NorthstarPath, goal); err != nil {
		o.logf("warning: checking off goal: %v", err)
	}
}
