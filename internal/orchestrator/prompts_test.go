package orchestrator

import (
	"strings"
	"testing"
)

func TestReviewInstructionsReferencePRNumber(t *testing.T) {
	got := reviewInstructions("https://github.com/acme/widgets/pull/42")
	if !strings.Contains(got, "PR #42") {
		t.Errorf("review instructions missing PR number:\n%s", got)
	}
	if !strings.Contains(got, "gh pr diff 42") {
		t.Error("review instructions missing diff command")
	}
	if !strings.Contains(got, "APPROVED") || !strings.Contains(got, "CHANGES_REQUESTED") {
		t.Error("review instructions missing decision markers")
	}
}

func TestFixInstructionsCarryFeedback(t *testing.T) {
	got := fixInstructions("https://github.com/acme/widgets/pull/7", "the handler leaks a file descriptor", 2)
	if !strings.Contains(got, "PR #7") {
		t.Errorf("fix instructions missing PR number:\n%s", got)
	}
	if !strings.Contains(got, "the handler leaks a file descriptor") {
		t.Error("fix instructions missing reviewer feedback")
	}
	if !strings.Contains(got, "gh pr checkout 7") {
		t.Error("fix instructions missing checkout command")
	}
}
