// Package gitops wraps the git operations the run orchestrator needs on
// the project checkout.
package gitops

import (
	"fmt"
	"os/exec"
	"strconv"
	"strings"
)

// Repo is a git checkout with a configured base branch.
type Repo struct {
	dir  string
	base string
}

// New creates a Repo for the checkout at dir with the given base branch.
func New(dir, base string) *Repo {
	return &Repo{dir: dir, base: base}
}

// Dir returns the checkout directory.
func (r *Repo) Dir() string { return r.dir }

// Base returns the base branch name.
func (r *Repo) Base() string { return r.base }

func (r *Repo) git(args ...string) (string, error) {
	cmd := exec.Command("git", args...)
	cmd.Dir = r.dir
	out, err := cmd.CombinedOutput()
	if err != nil {
		return string(out), fmt.Errorf("git %s: %s: %w", args[0], strings.TrimSpace(string(out)), err)
	}
	return string(out), nil
}

// CheckoutBase switches to the base branch and rebases onto the latest
// remote state. A failed pull is tolerated (remote may be absent).
func (r *Repo) CheckoutBase() error {
	if _, err := r.git("checkout", r.base); err != nil {
		return err
	}
	r.git("pull", "--rebase") // ignore error, remote might not exist
	return nil
}

// CreateBranch creates and checks out a new branch from the current HEAD.
func (r *Repo) CreateBranch(name string) error {
	_, err := r.git("checkout", "-b", name)
	return err
}

// DeleteBranch force-deletes a local branch, ignoring errors. Used to
// clean up branches whose runs produced nothing.
func (r *Repo) DeleteBranch(name string) {
	r.git("branch", "-D", name)
}

// HasChanges reports whether the working tree has uncommitted changes.
func (r *Repo) HasChanges() (bool, error) {
	out, err := r.git("status", "--porcelain")
	if err != nil {
		return false, err
	}
	return strings.TrimSpace(out) != "", nil
}

// CommitsAhead returns the number of commits on HEAD not on the base
// branch.
func (r *Repo) CommitsAhead() (int, error) {
	out, err := r.git("rev-list", "--count", r.base+"..HEAD")
	if err != nil {
		return 0, err
	}
	n, err := strconv.Atoi(strings.TrimSpace(out))
	if err != nil {
		return 0, fmt.Errorf("parsing rev-list output %q: %w", strings.TrimSpace(out), err)
	}
	return n, nil
}

// Snapshot captures the working-tree state: the HEAD revision plus the
// porcelain status output. Two equal snapshots mean no change happened
// in between.
type Snapshot struct {
	Head   string
	Status string
}

// TakeSnapshot records the current working-tree state.
func (r *Repo) TakeSnapshot() (Snapshot, error) {
	head, err := r.git("rev-parse", "HEAD")
	if err != nil {
		return Snapshot{}, err
	}
	status, err := r.git("status", "--porcelain")
	if err != nil {
		return Snapshot{}, err
	}
	return Snapshot{
		Head:   strings.TrimSpace(head),
		Status: status,
	}, nil
}
