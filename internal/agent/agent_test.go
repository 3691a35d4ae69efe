package agent

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/hochfrequenz/auto-reviewer/internal/domain"
	"github.com/hochfrequenz/auto-reviewer/internal/gitops"
)

// fakeSnapshotter returns a scripted sequence of snapshots.
type fakeSnapshotter struct {
	snapshots []gitops.Snapshot
	calls     int
	err       error
}

func (f *fakeSnapshotter) TakeSnapshot() (gitops.Snapshot, error) {
	if f.err != nil {
		return gitops.Snapshot{}, f.err
	}
	s := f.snapshots[f.calls%len(f.snapshots)]
	f.calls++
	return s, nil
}

func TestInvokeSuccess(t *testing.T) {
	// echo exits zero and reproduces the instructions on stdout.
	r := &ClaudeRunner{
		repo:    &fakeSnapshotter{snapshots: []gitops.Snapshot{{Head: "abc"}}},
		command: "echo",
	}

	inv, err := r.Invoke(context.Background(), RoleReview, "review this", t.TempDir(), time.Minute)
	if err != nil {
		t.Fatalf("Invoke() error = %v", err)
	}
	if !inv.Succeeded {
		t.Error("Succeeded = false")
	}
	if inv.Changed {
		t.Error("Changed = true for identical snapshots")
	}
	if !strings.Contains(inv.Output, "review this") {
		t.Errorf("output = %q", inv.Output)
	}
}

func TestInvokeDetectsChange(t *testing.T) {
	r := &ClaudeRunner{
		repo: &fakeSnapshotter{snapshots: []gitops.Snapshot{
			{Head: "abc", Status: ""},
			{Head: "abc", Status: "M main.go"},
		}},
		command: "echo",
	}

	inv, err := r.Invoke(context.Background(), RoleImprove, "improve", t.TempDir(), time.Minute)
	if err != nil {
		t.Fatalf("Invoke() error = %v", err)
	}
	if !inv.Changed {
		t.Error("Changed = false despite differing snapshots")
	}
}

func TestInvokeNonZeroExit(t *testing.T) {
	// false exits non-zero: an agent failure, not an invocation error.
	r := &ClaudeRunner{
		repo:    &fakeSnapshotter{snapshots: []gitops.Snapshot{{Head: "abc"}}},
		command: "false",
	}

	inv, err := r.Invoke(context.Background(), RoleFix, "fix", t.TempDir(), time.Minute)
	if err != nil {
		t.Fatalf("Invoke() error = %v", err)
	}
	if inv.Succeeded {
		t.Error("Succeeded = true for non-zero exit")
	}
}

func TestInvokeMissingBinary(t *testing.T) {
	r := &ClaudeRunner{
		repo:    &fakeSnapshotter{snapshots: []gitops.Snapshot{{Head: "abc"}}},
		command: "/nonexistent/claude-binary",
	}

	_, err := r.Invoke(context.Background(), RoleImprove, "improve", t.TempDir(), time.Minute)
	if !errors.Is(err, domain.ErrAgentInvocation) {
		t.Errorf("Invoke() error = %v, want ErrAgentInvocation", err)
	}
}

func TestInvokeTimeout(t *testing.T) {
	dir := t.TempDir()
	script := filepath.Join(dir, "slow-agent.sh")
	if err := os.WriteFile(script, []byte("#!/bin/sh\nsleep 5\n"), 0755); err != nil {
		t.Fatal(err)
	}

	r := &ClaudeRunner{
		repo:    &fakeSnapshotter{snapshots: []gitops.Snapshot{{Head: "abc"}}},
		command: script,
	}

	_, err := r.Invoke(context.Background(), RoleReview, "review", dir, 50*time.Millisecond)
	if !errors.Is(err, domain.ErrAgentInvocation) {
		t.Errorf("Invoke() error = %v, want ErrAgentInvocation", err)
	}
}

func TestInvokeSnapshotError(t *testing.T) {
	snapErr := errors.New("not a git repository")
	r := &ClaudeRunner{
		repo:    &fakeSnapshotter{err: snapErr},
		command: "echo",
	}

	_, err := r.Invoke(context.Background(), RoleImprove, "improve", t.TempDir(), time.Minute)
	if !errors.Is(err, snapErr) {
		t.Errorf("Invoke() error = %v, want snapshot error", err)
	}
}
