// Package review parses reviewer verdicts and drives the review-fix loop.
package review

import (
	"regexp"
	"strings"

	"github.com/hochfrequenz/auto-reviewer/internal/domain"
)

// feedbackRe captures the reviewer's reasoning after the rejection marker.
var feedbackRe = regexp.MustCompile(`(?is)CHANGES_REQUESTED[:\s]*(.+)`)

const (
	maxFeedbackLen   = 1000
	fallbackTailSize = 20
)

// approvalPhrases are accepted in addition to the APPROVED marker, since
// the reviewer produces free text and does not always use the exact
// marker it was asked for.
var approvalPhrases = []string{
	"approved",
	"lgtm",
	"ready to merge",
	"recommend merging",
}

// ParseVerdict interprets the reviewer's free-text output. All format
// assumptions live here. An output matching neither decision yields
// DecisionError; that is an expected outcome of a best-effort
// text-producing agent, not a program error.
func ParseVerdict(output string) domain.Verdict {
	lower := strings.ToLower(output)

	if strings.Contains(lower, "changes_requested") {
		return domain.Verdict{
			Decision: domain.DecisionChangesRequested,
			Feedback: extractFeedback(output),
		}
	}

	for _, phrase := range approvalPhrases {
		if strings.Contains(lower, phrase) {
			return domain.Verdict{Decision: domain.DecisionApproved}
		}
	}

	return domain.Verdict{Decision: domain.DecisionError}
}

// extractFeedback pulls the actionable part out of a rejection. Falls
// back to the output's tail when the marker carries no trailing text.
func extractFeedback(output string) string {
	if m := feedbackRe.FindStringSubmatch(output); m != nil {
		fb := strings.TrimSpace(m[1])
		if len(fb) > maxFeedbackLen {
			fb = fb[:maxFeedbackLen]
		}
		if fb != "" {
			return fb
		}
	}

	lines := strings.Split(strings.TrimSpace(output), "\n")
	if len(lines) > fallbackTailSize {
		lines = lines[len(lines)-fallbackTailSize:]
	}
	return strings.Join(lines, "\n")
}
