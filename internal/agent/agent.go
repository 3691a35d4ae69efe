// Package agent invokes the coding agent subprocess for the improve, fix
// and review roles and observes whether it changed the checkout.
package agent

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"time"

	"github.com/hochfrequenz/auto-reviewer/internal/domain"
	"github.com/hochfrequenz/auto-reviewer/internal/gitops"
)

// Role identifies what the agent is asked to do.
type Role string

const (
	RoleImprove Role = "improve"
	RoleFix     Role = "fix"
	RoleReview  Role = "review"
)

// Invocation is the observed outcome of one agent run. Changed reflects
// working-tree state before vs after and is independent of Succeeded: an
// agent can run cleanly and change nothing.
type Invocation struct {
	Succeeded bool
	Changed   bool
	Output    string
}

// Runner is the gateway interface; tests substitute fakes.
type Runner interface {
	Invoke(ctx context.Context, role Role, instructions, dir string, timeout time.Duration) (Invocation, error)
}

// snapshotter is the slice of gitops.Repo the runner needs.
type snapshotter interface {
	TakeSnapshot() (gitops.Snapshot, error)
}

// ClaudeRunner runs the claude CLI in print mode, the same invocation
// the orchestrated agents use everywhere else.
type ClaudeRunner struct {
	repo    snapshotter
	command string
}

// NewClaudeRunner creates a runner that detects changes via the given
// repo.
func NewClaudeRunner(repo *gitops.Repo) *ClaudeRunner {
	return &ClaudeRunner{repo: repo, command: "claude"}
}

// Invoke runs the agent with the instructions in dir, bounded by timeout.
// A process that cannot start or exceeds the timeout returns an error
// wrapping domain.ErrAgentInvocation; it is never retried here. A
// non-zero exit is reported as Succeeded=false, not as an error.
func (c *ClaudeRunner) Invoke(ctx context.Context, role Role, instructions, dir string, timeout time.Duration) (Invocation, error) {
	before, err := c.repo.TakeSnapshot()
	if err != nil {
		return Invocation{}, fmt.Errorf("snapshot before %s: %w", role, err)
	}

	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	cmd := exec.CommandContext(ctx, c.command, "--print", "-p", instructions)
	cmd.Dir = dir
	out, runErr := cmd.CombinedOutput()

	if ctx.Err() == context.DeadlineExceeded {
		return Invocation{}, fmt.Errorf("%s agent timed out after %s: %w", role, timeout, domain.ErrAgentInvocation)
	}
	if runErr != nil {
		var exitErr *exec.ExitError
		if !errors.As(runErr, &exitErr) {
			// Process never started (binary missing, exec failure).
			return Invocation{}, fmt.Errorf("starting %s agent: %v: %w", role, runErr, domain.ErrAgentInvocation)
		}
	}

	after, err := c.repo.TakeSnapshot()
	if err != nil {
		return Invocation{}, fmt.Errorf("snapshot after %s: %w", role, err)
	}

	return Invocation{
		Succeeded: runErr == nil,
		Changed:   before != after,
		Output:    string(out),
	}, nil
}
