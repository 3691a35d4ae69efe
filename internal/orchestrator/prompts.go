package orchestrator

import (
	"fmt"

	"github.com/hochfrequenz/auto-reviewer/internal/prbot"
)

const reviewTemplate = `You are a code reviewer. Please review PR #%d.

1. First, get the PR details:
   - Run: gh pr view %d
   - Run: gh pr diff %d

2. Review the changes critically:
   - Are the changes correct and well-implemented?
   - Do they introduce any new bugs or issues?
   - Are the commit messages clear?
   - Is the code style consistent?

3. Make your decision and state it clearly:
   - If the changes look good, say "APPROVED" and explain why it's ready to merge
   - If changes are needed, say "CHANGES_REQUESTED" and list the specific issues

Do NOT use gh pr review command (it won't work for self-review).
Just output your decision clearly: either "APPROVED" or "CHANGES_REQUESTED" followed by your reasoning.

Be thorough but fair. Approve if the changes are net positive, even if not perfect.
When requesting changes, be SPECIFIC about what needs to be fixed.`

const fixTemplate = `A code reviewer has requested changes on PR #%d. Please address their feedback.

**Reviewer Feedback:**
%s

**Your task:**
1. First, check out the PR branch and view the current code:
   - Run: gh pr checkout %d
   - Review the files mentioned in the feedback

2. Address EACH issue the reviewer mentioned:
   - Make the necessary code changes
   - Ensure you don't break existing functionality

3. Commit and push your fixes:
   - Commit with a clear message like "fix: address review feedback - [what you fixed]"
   - Push the changes: git push

4. Provide a summary of what you fixed.

IMPORTANT: Actually make the fixes, don't just describe them.`

// reviewInstructions builds the prompt for a fresh reviewer instance.
// The reviewer only gets the PR reference, never the improver's context.
func reviewInstructions(prURL string) string {
	num := prbot.Number(prURL)
	return fmt.Sprintf(reviewTemplate, num, num, num)
}

// fixInstructions builds the prompt for the fixer instance addressing
// reviewer feedback.
func fixInstructions(prURL, feedback string, _ int) string {
	num := prbot.Number(prURL)
	return fmt.Sprintf(fixTemplate, num, feedback, num)
}
