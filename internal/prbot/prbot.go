// Package prbot publishes and merges change requests through the gh CLI.
package prbot

import (
	"fmt"
	"os/exec"
	"strconv"
	"strings"

	"github.com/hochfrequenz/auto-reviewer/internal/domain"
)

const prBodyTemplate = `## Automated Code Improvement

This PR was created automatically by the auto-reviewer daemon.

### Improvement Mode
%s

### Summary of Changes
%s

---
*This PR requires review by a separate reviewer instance before merging.*
`

const maxSummaryLen = 3000

// Host is the change-request host interface the orchestrator consumes.
// All operations are remote calls that may fail.
type Host interface {
	Create(branch, title, body string) (url string, err error)
	Merge(url string) error
}

// PRBot implements Host using git push and the gh CLI.
type PRBot struct {
	repoDir    string
	baseBranch string
}

// New creates a PRBot operating on the given checkout.
func New(repoDir, baseBranch string) *PRBot {
	return &PRBot{repoDir: repoDir, baseBranch: baseBranch}
}

// BuildBody constructs the PR body from the mode name and the
// improvement agent's summary output.
func BuildBody(modeName, summary string) string {
	if len(summary) > maxSummaryLen {
		summary = summary[:maxSummaryLen] + "..."
	}
	return fmt.Sprintf(prBodyTemplate, modeName, summary)
}

// Create pushes the branch and opens a PR against the base branch,
// returning the PR URL.
func (p *PRBot) Create(branch, title, body string) (string, error) {
	pushCmd := exec.Command("git", "push", "-u", "origin", branch)
	pushCmd.Dir = p.repoDir
	if out, err := pushCmd.CombinedOutput(); err != nil {
		return "", fmt.Errorf("git push: %s: %w", strings.TrimSpace(string(out)), domain.ErrHostOperation)
	}

	cmd := exec.Command("gh", "pr", "create",
		"--title", title,
		"--body", body,
		"--base", p.baseBranch,
		"--head", branch,
	)
	cmd.Dir = p.repoDir
	out, err := cmd.CombinedOutput()
	if err != nil {
		return "", fmt.Errorf("gh pr create: %s: %w", strings.TrimSpace(string(out)), domain.ErrHostOperation)
	}

	url := extractPRURL(string(out))
	if url == "" {
		return "", fmt.Errorf("no PR URL in gh output: %q: %w", strings.TrimSpace(string(out)), domain.ErrHostOperation)
	}
	return url, nil
}

// Merge squash-merges the PR and deletes its branch.
func (p *PRBot) Merge(url string) error {
	num := Number(url)
	if num == 0 {
		return fmt.Errorf("cannot extract PR number from %q: %w", url, domain.ErrHostOperation)
	}

	cmd := exec.Command("gh", "pr", "merge", strconv.Itoa(num),
		"--squash",
		"--delete-branch",
	)
	cmd.Dir = p.repoDir
	if out, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("gh pr merge: %s: %w", strings.TrimSpace(string(out)), domain.ErrHostOperation)
	}
	return nil
}

// extractPRURL finds the PR URL in gh output.
func extractPRURL(out string) string {
	for _, line := range strings.Split(out, "\n") {
		line = strings.TrimSpace(line)
		if strings.Contains(line, "github.com") && strings.Contains(line, "/pull/") {
			return line
		}
	}
	return ""
}

// Number extracts the PR number from a PR URL like
// https://github.com/owner/repo/pull/123.
func Number(url string) int {
	parts := strings.Split(strings.TrimRight(url, "/"), "/")
	if len(parts) == 0 {
		return 0
	}
	n, err := strconv.Atoi(parts[len(parts)-1])
	if err != nil {
		return 0
	}
	return n
}
