package northstar

import (
	"fmt"
	"strings"

	"github.com/hochfrequenz/auto-reviewer/internal/domain"
)

// DefaultTemplate is the goals document written by Init.
const DefaultTemplate = `# Project North Star

> This file defines the vision and goals for this project. The
> auto-reviewer daemon iterates towards these goals, making incremental
> progress with each run. Customize it to match your project's priorities.

## Vision

A high-quality, well-maintained codebase that is secure, performant, and easy to work with.

---

## Goals

### Code Quality
- [ ] Clean, readable code with consistent style
- [ ] No code duplication (DRY principle)
- [ ] Functions have single responsibilities
- [ ] Meaningful variable and function names

### Bug-Free
- [ ] No runtime errors or crashes
- [ ] All edge cases handled properly
- [ ] No race conditions or concurrency issues

### Security
- [ ] No injection vulnerabilities (SQL, command, XSS)
- [ ] No hardcoded secrets or credentials
- [ ] Proper input validation on all user inputs

### Performance
- [ ] No obvious performance bottlenecks
- [ ] Efficient algorithms
- [ ] No memory leaks

### Testing
- [ ] Unit tests for critical business logic
- [ ] Integration tests for key workflows
- [ ] Edge cases covered in tests

### Documentation
- [ ] Public APIs and functions are documented
- [ ] Complex logic has explanatory comments
- [ ] README is up to date

---

## Priority Order

1. **Security** - Fix any security vulnerabilities first
2. **Bugs** - Fix any bugs that affect functionality
3. **Testing** - Add tests to prevent regressions
4. **Code Quality** - Improve maintainability
5. **Performance** - Optimize where it matters
6. **Documentation** - Help future developers

---

## Notes

- Focus on incremental improvements
- Don't over-engineer; keep it simple
- Mark items as [x] when complete
`

// BuildPrompt reads the goals document and produces improvement-agent
// instructions summarizing outstanding goals in priority order.
func BuildPrompt(path string) (string, error) {
	doc, err := Load(path)
	if err != nil {
		return "", err
	}

	var goals strings.Builder
	outstanding := 0
	for _, c := range doc.OrderedCategories() {
		var open []Item
		for _, it := range c.Items {
			if !it.Done {
				open = append(open, it)
			}
		}
		if len(open) == 0 {
			continue
		}
		fmt.Fprintf(&goals, "### %s\n", c.Name)
		for _, it := range open {
			fmt.Fprintf(&goals, "- %s\n", it.Text)
			outstanding++
		}
		goals.WriteByte('\n')
	}

	if outstanding == 0 {
		return "", fmt.Errorf("all goals in %s are complete: %w", path, domain.ErrConfiguration)
	}

	prompt := fmt.Sprintf(`You are working towards the project's North Star vision. The outstanding
goals below are listed in priority order; earlier sections matter more.

## Outstanding Goals

%s---

## Your Task

1. Analyze the current state: review the codebase relative to the goals above.
2. Identify the most impactful improvements you can make RIGHT NOW.
3. Make concrete progress: implement changes that move the project forward.
4. Commit each improvement with a descriptive message
   (feat:/fix:/refactor:/docs: prefixes).

## Guidelines

- Be incremental: meaningful but atomic changes, not everything at once.
- Prioritize impact: focus on the highest-priority outstanding goals.
- Don't break things: existing functionality must keep working.
- If you complete a goal, you may mark it as [x] in %s.

## Limits

- Focus on at most 3-5 related improvements per run.
- If a goal is too large, break it down and complete one step.

If the goals are already fully achieved, say "North Star achieved!" and do
not make any changes.`, goals.String(), FileName)

	return prompt, nil
}
