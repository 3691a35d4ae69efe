package orchestrator

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/hochfrequenz/auto-reviewer/internal/agent"
	"github.com/hochfrequenz/auto-reviewer/internal/domain"
	"github.com/hochfrequenz/auto-reviewer/internal/notify"
)

type fakeWorkspace struct {
	checkouts int
	created   []string
	deleted   []string

	createErr error
}

func (w *fakeWorkspace) Dir() string { return "/tmp/project" }

func (w *fakeWorkspace) CheckoutBase() error {
	w.checkouts++
	return nil
}

func (w *fakeWorkspace) CreateBranch(name string) error {
	if w.createErr != nil {
		return w.createErr
	}
	w.created = append(w.created, name)
	return nil
}

func (w *fakeWorkspace) DeleteBranch(name string) {
	w.deleted = append(w.deleted, name)
}

// fakeRunner answers per role: one improve response per call, scripted
// review outputs, always-succeeding fixes.
type fakeRunner struct {
	improves []agent.Invocation
	reviews  []string

	improveCalls int
	reviewCalls  int
	fixCalls     int

	improveErr error
}

func (r *fakeRunner) Invoke(ctx context.Context, role agent.Role, instructions, dir string, timeout time.Duration) (agent.Invocation, error) {
	switch role {
	case agent.RoleImprove:
		if r.improveErr != nil {
			return agent.Invocation{}, r.improveErr
		}
		if r.improveCalls >= len(r.improves) {
			return agent.Invocation{}, errors.New("unexpected improve call")
		}
		inv := r.improves[r.improveCalls]
		r.improveCalls++
		return inv, nil
	case agent.RoleReview:
		if r.reviewCalls >= len(r.reviews) {
			return agent.Invocation{}, errors.New("unexpected review call")
		}
		out := r.reviews[r.reviewCalls]
		r.reviewCalls++
		return agent.Invocation{Succeeded: true, Output: out}, nil
	case agent.RoleFix:
		r.fixCalls++
		return agent.Invocation{Succeeded: true, Changed: true, Output: "fixed"}, nil
	}
	return agent.Invocation{}, errors.New("unexpected role")
}

type fakeHost struct {
	created   int
	merged    []string
	createErr error
	mergeErr  error
}

func (h *fakeHost) Create(branch, title, body string) (string, error) {
	if h.createErr != nil {
		return "", h.createErr
	}
	h.created++
	return fmt.Sprintf("https://github.com/acme/widgets/pull/%d", h.created), nil
}

func (h *fakeHost) Merge(url string) error {
	if h.mergeErr != nil {
		return h.mergeErr
	}
	h.merged = append(h.merged, url)
	return nil
}

type recordingNotifier struct {
	sent []notify.Notification
}

func (r *recordingNotifier) Send(n notify.Notification) error {
	r.sent = append(r.sent, n)
	return nil
}

type recordingStore struct {
	results []domain.RunResult
	cycles  []domain.CycleReport
}

func (s *recordingStore) SaveResult(res domain.RunResult) error {
	s.results = append(s.results, res)
	return nil
}

func (s *recordingStore) SaveCycle(report domain.CycleReport) error {
	s.cycles = append(s.cycles, report)
	return nil
}

func changed(output string) agent.Invocation {
	return agent.Invocation{Succeeded: true, Changed: true, Output: output}
}

func newOrchestrator(ws *fakeWorkspace, r *fakeRunner, h *fakeHost) *Orchestrator {
	return &Orchestrator{
		Repo:          ws,
		Agent:         r,
		Host:          h,
		AutoMerge:     true,
		MaxIterations: 3,
		Now:           func() time.Time { return time.Date(2026, 8, 23, 12, 0, 0, 0, time.UTC) },
		Rand:          bytes.NewReader(bytes.Repeat([]byte{1, 2, 3, 4}, 64)),
	}
}

func item(mode, name string) domain.WorkItem {
	return domain.WorkItem{Mode: mode, Name: name, Instructions: "improve " + mode}
}

func TestRunCycleMergesApprovedChange(t *testing.T) {
	ws := &fakeWorkspace{}
	r := &fakeRunner{
		improves: []agent.Invocation{changed("fixed a bug")},
		reviews:  []string{"APPROVED"},
	}
	h := &fakeHost{}
	o := newOrchestrator(ws, r, h)

	report := o.RunCycle(context.Background(), []domain.WorkItem{item("fix_bugs", "Fix Bugs")})

	if len(report.Results) != 1 {
		t.Fatalf("got %d results", len(report.Results))
	}
	res := report.Results[0]
	if res.Outcome != domain.OutcomeMerged {
		t.Errorf("outcome = %v, want merged", res.Outcome)
	}
	if res.PRURL == "" {
		t.Error("result has no PR URL")
	}
	if len(h.merged) != 1 {
		t.Errorf("merged %d PRs, want 1", len(h.merged))
	}
	if len(ws.created) != 1 {
		t.Errorf("created branches = %v", ws.created)
	}
}

func TestRunCycleNoChangesSkipsPublishAndReview(t *testing.T) {
	ws := &fakeWorkspace{}
	r := &fakeRunner{
		improves: []agent.Invocation{{Succeeded: true, Changed: false, Output: "No bugs found"}},
	}
	h := &fakeHost{}
	o := newOrchestrator(ws, r, h)

	report := o.RunCycle(context.Background(), []domain.WorkItem{item("fix_bugs", "Fix Bugs")})

	res := report.Results[0]
	if res.Outcome != domain.OutcomeNoChanges {
		t.Errorf("outcome = %v, want no-changes", res.Outcome)
	}
	if h.created != 0 {
		t.Error("a PR was created for a no-op run")
	}
	if r.reviewCalls != 0 {
		t.Error("review was invoked for a no-op run")
	}
	if len(ws.deleted) != 1 {
		t.Errorf("deleted branches = %v, want the run branch discarded", ws.deleted)
	}
}

func TestRunCycleApprovedWithoutAutoMerge(t *testing.T) {
	ws := &fakeWorkspace{}
	r := &fakeRunner{
		improves: []agent.Invocation{changed("refactored")},
		reviews:  []string{"APPROVED"},
	}
	h := &fakeHost{}
	o := newOrchestrator(ws, r, h)
	o.AutoMerge = false

	report := o.RunCycle(context.Background(), []domain.WorkItem{item("improve_code", "Improve Code Quality")})

	res := report.Results[0]
	if res.Outcome != domain.OutcomeAwaitingManualMerge {
		t.Errorf("outcome = %v, want awaiting-manual-merge", res.Outcome)
	}
	if len(h.merged) != 0 {
		t.Error("PR was merged despite auto-merge being disabled")
	}
}

func TestRunCycleExhaustedLeavesPROpen(t *testing.T) {
	ws := &fakeWorkspace{}
	r := &fakeRunner{
		improves: []agent.Invocation{changed("attempt")},
		reviews: []string{
			"CHANGES_REQUESTED: a",
			"CHANGES_REQUESTED: b",
		},
	}
	h := &fakeHost{}
	o := newOrchestrator(ws, r, h)
	o.MaxIterations = 1

	report := o.RunCycle(context.Background(), []domain.WorkItem{item("security", "Security Review")})

	res := report.Results[0]
	if res.Outcome != domain.OutcomeExhausted {
		t.Errorf("outcome = %v, want exhausted", res.Outcome)
	}
	if res.Iterations != 1 {
		t.Errorf("iterations = %d, want 1", res.Iterations)
	}
	if len(h.merged) != 0 {
		t.Error("unapproved PR was merged")
	}
	// The branch backs an open PR and must survive.
	if len(ws.deleted) != 0 {
		t.Errorf("deleted branches = %v, want none", ws.deleted)
	}
	if res.PRURL == "" {
		t.Error("exhausted result lost its PR URL")
	}
}

func TestRunCycleIsolatesItemFailures(t *testing.T) {
	ws := &fakeWorkspace{}
	r := &fakeRunner{
		improves: []agent.Invocation{
			{Succeeded: false, Output: "agent crashed"},
			changed("second item worked"),
		},
		reviews: []string{"APPROVED"},
	}
	h := &fakeHost{}
	o := newOrchestrator(ws, r, h)

	report := o.RunCycle(context.Background(), []domain.WorkItem{
		item("fix_bugs", "Fix Bugs"),
		item("cleanup", "Code Cleanup"),
	})

	if len(report.Results) != 2 {
		t.Fatalf("got %d results, want 2", len(report.Results))
	}
	if report.Results[0].Outcome != domain.OutcomeFailed {
		t.Errorf("first outcome = %v, want failed", report.Results[0].Outcome)
	}
	if report.Results[1].Outcome != domain.OutcomeMerged {
		t.Errorf("second outcome = %v, want merged", report.Results[1].Outcome)
	}
}

func TestRunCycleMergeFailure(t *testing.T) {
	ws := &fakeWorkspace{}
	r := &fakeRunner{
		improves: []agent.Invocation{changed("ok")},
		reviews:  []string{"APPROVED"},
	}
	h := &fakeHost{mergeErr: fmt.Errorf("merge conflict: %w", domain.ErrHostOperation)}
	o := newOrchestrator(ws, r, h)

	report := o.RunCycle(context.Background(), []domain.WorkItem{item("fix_bugs", "Fix Bugs")})

	res := report.Results[0]
	if res.Outcome != domain.OutcomeFailed {
		t.Errorf("outcome = %v, want failed", res.Outcome)
	}
	if res.Error == "" {
		t.Error("merge failure left no error message")
	}
}

func TestRunCyclePublishFailureKeepsBranch(t *testing.T) {
	ws := &fakeWorkspace{}
	r := &fakeRunner{improves: []agent.Invocation{changed("ok")}}
	h := &fakeHost{createErr: fmt.Errorf("gh pr create: rate limited: %w", domain.ErrHostOperation)}
	o := newOrchestrator(ws, r, h)

	report := o.RunCycle(context.Background(), []domain.WorkItem{item("fix_bugs", "Fix Bugs")})

	if report.Results[0].Outcome != domain.OutcomeFailed {
		t.Errorf("outcome = %v, want failed", report.Results[0].Outcome)
	}
	if r.reviewCalls != 0 {
		t.Error("review ran without a published PR")
	}
}

func TestRunCycleNotifiesPerRun(t *testing.T) {
	ws := &fakeWorkspace{}
	r := &fakeRunner{
		improves: []agent.Invocation{
			changed("ok"),
			{Succeeded: true, Changed: false},
		},
		reviews: []string{"APPROVED"},
	}
	h := &fakeHost{}
	n := &recordingNotifier{}
	o := newOrchestrator(ws, r, h)
	o.Notifier = n

	o.RunCycle(context.Background(), []domain.WorkItem{
		item("fix_bugs", "Fix Bugs"),
		item("cleanup", "Code Cleanup"),
	})

	if len(n.sent) != 2 {
		t.Fatalf("sent %d notifications, want 2", len(n.sent))
	}
	if n.sent[0].Type != notify.NotifySuccess {
		t.Errorf("first notification type = %v", n.sent[0].Type)
	}
	if n.sent[1].Type != notify.NotifyInfo {
		t.Errorf("second notification type = %v", n.sent[1].Type)
	}
}

func TestRunCyclePersistsResults(t *testing.T) {
	ws := &fakeWorkspace{}
	r := &fakeRunner{
		improves: []agent.Invocation{changed("ok")},
		reviews:  []string{"APPROVED"},
	}
	h := &fakeHost{}
	s := &recordingStore{}
	o := newOrchestrator(ws, r, h)
	o.Store = s

	o.RunCycle(context.Background(), []domain.WorkItem{item("fix_bugs", "Fix Bugs")})

	if len(s.results) != 1 {
		t.Errorf("saved %d results, want 1", len(s.results))
	}
	if len(s.cycles) != 1 {
		t.Errorf("saved %d cycle reports, want 1", len(s.cycles))
	}
}

func TestRunCycleCancelledBetweenItems(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	ws := &fakeWorkspace{}
	r := &fakeRunner{}
	o := newOrchestrator(ws, r, &fakeHost{})

	report := o.RunCycle(ctx, []domain.WorkItem{item("fix_bugs", "Fix Bugs")})
	if len(report.Results) != 0 {
		t.Errorf("got %d results under cancelled context, want 0", len(report.Results))
	}
}

func TestBranchNameCarriesMode(t *testing.T) {
	ws := &fakeWorkspace{}
	r := &fakeRunner{
		improves: []agent.Invocation{changed("ok")},
		reviews:  []string{"APPROVED"},
	}
	o := newOrchestrator(ws, r, &fakeHost{})

	o.RunCycle(context.Background(), []domain.WorkItem{item("fix_bugs", "Fix Bugs")})

	if len(ws.created) != 1 {
		t.Fatalf("created = %v", ws.created)
	}
	branch := ws.created[0]
	if want := "auto-fix-bugs/"; len(branch) < len(want) || branch[:len(want)] != want {
		t.Errorf("branch = %q, want %q prefix", branch, want)
	}
}
