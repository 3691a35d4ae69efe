// Package modes defines the predefined improvement modes and resolves
// requested mode sets into work items.
package modes

import "strings"

// Mode is a named category of improvement intent with its instruction
// prompt for the improvement agent.
type Mode struct {
	Key         string // stable identifier, used in branch names and flags
	Name        string // display name
	Description string // short description for listings
	Prompt      string
}

// Catalog contains the built-in improvement modes in their fixed,
// documented order. The "all" sentinel expands to exactly this order.
var Catalog = []Mode{
	{
		Key:         "fix_bugs",
		Name:        "Fix Bugs",
		Description: "Find and fix actual bugs in the code",
		Prompt: `Review the code in this repository for bugs.

Focus on finding ACTUAL BUGS only:
- Wrong method names (e.g., calling .load_node() when method is .get_node())
- Type mismatches that would cause runtime errors
- Undefined variables or attributes
- Logic errors that produce wrong results
- Race conditions and concurrency issues
- Memory leaks or resource handling issues

For each bug found:
1. Read the file to confirm the bug
2. Fix it with minimal changes
3. Commit with message: "fix: [description]"

If no bugs found, say "No bugs found" and do not make any changes.

Limit: Check at most 10 files, prioritize recently modified ones.`,
	},
	{
		Key:         "improve_code",
		Name:        "Improve Code Quality",
		Description: "Refactor and improve code readability, structure, and maintainability",
		Prompt: `Review the code in this repository for code quality improvements.

Focus on:
- Simplifying complex or convoluted logic
- Reducing code duplication (DRY principle)
- Improving variable and function naming
- Breaking down large functions into smaller, focused ones
- Applying appropriate design patterns
- Improving error handling and edge case coverage
- Making code more idiomatic for the language

DO NOT:
- Change working functionality
- Add features that don't exist
- Over-engineer simple solutions

For each improvement:
1. Read the file and understand the context
2. Make the improvement with clear, focused changes
3. Commit with message: "refactor: [description]"

Limit: Focus on the most impactful improvements. Check at most 5 files.`,
	},
	{
		Key:         "enhance_ux",
		Name:        "Enhance User Experience",
		Description: "Improve UI/UX, error messages, user feedback, and usability",
		Prompt: `Review the code in this repository for UX/UI improvements.

Focus on:
- Improving error messages to be more helpful and actionable
- Adding better user feedback (loading states, confirmations, progress)
- Improving CLI help text and documentation
- Making interfaces more intuitive
- Adding input validation with clear feedback
- Adding better logging for debugging
- Improving output formatting and readability

For each improvement:
1. Read the file and understand the user-facing context
2. Make the improvement
3. Commit with message: "ux: [description]"

Limit: Focus on the most impactful UX improvements. Check at most 5 files.`,
	},
	{
		Key:         "add_tests",
		Name:        "Add Tests",
		Description: "Add missing unit tests, integration tests, and improve test coverage",
		Prompt: `Review the code in this repository and add tests.

Focus on:
- Functions and classes that lack test coverage
- Critical business logic that should be tested
- Edge cases that aren't covered
- Error handling paths
- Integration between components

For each test added:
1. Identify untested or under-tested code
2. Write comprehensive tests following the project's testing patterns
3. Ensure tests are meaningful (not just for coverage)
4. Commit with message: "test: add tests for [component/function]"

Guidelines:
- Follow existing test patterns and frameworks in the project
- Use descriptive test names
- Include both positive and negative test cases
- Mock external dependencies appropriately

Limit: Add tests for at most 3 components/modules.`,
	},
	{
		Key:         "add_docs",
		Name:        "Add Documentation",
		Description: "Add or improve code documentation, comments, and docstrings",
		Prompt: `Review the code in this repository and improve documentation.

Focus on:
- Adding docstrings to public functions and classes
- Adding inline comments for complex logic
- Documenting function parameters and return values
- Documenting edge cases and gotchas
- Adding module-level documentation

DO NOT:
- Add obvious comments
- Over-document simple code
- Change any functionality

For each improvement:
1. Read the file and understand the code
2. Add clear, helpful documentation
3. Commit with message: "docs: add documentation for [component]"

Limit: Focus on the most important undocumented code. Check at most 5 files.`,
	},
	{
		Key:         "security",
		Name:        "Security Review",
		Description: "Find and fix security vulnerabilities",
		Prompt: `Review the code in this repository for security vulnerabilities.

Focus on OWASP Top 10 and common security issues:
- SQL injection vulnerabilities
- Cross-site scripting (XSS)
- Command injection
- Path traversal
- Insecure deserialization
- Hardcoded secrets or credentials
- Weak cryptographic practices
- Improper input validation
- Sensitive data exposure
- Missing authentication/authorization checks

For each vulnerability found:
1. Confirm the vulnerability exists
2. Fix it with minimal changes
3. Commit with message: "security: fix [vulnerability type]"

IMPORTANT: Do not introduce new dependencies unless absolutely necessary.

Limit: Check at most 10 files, prioritize user input handling and authentication.`,
	},
	{
		Key:         "performance",
		Name:        "Optimize Performance",
		Description: "Find and fix performance issues and bottlenecks",
		Prompt: `Review the code in this repository for performance improvements.

Focus on:
- Inefficient algorithms (O(n^2) where O(n) is possible)
- Unnecessary database queries or API calls
- Missing caching opportunities
- Memory inefficiencies
- Blocking operations that could be async
- Unnecessary object creation in loops

DO NOT:
- Premature optimization of non-critical paths
- Micro-optimizations that hurt readability
- Changes without clear performance benefit

For each improvement:
1. Identify the performance issue
2. Fix it with clear, measurable improvement
3. Commit with message: "perf: [description]"

Limit: Focus on the most impactful optimizations. Check at most 5 files.`,
	},
	{
		Key:         "cleanup",
		Name:        "Code Cleanup",
		Description: "Remove dead code, unused imports, and clean up the codebase",
		Prompt: `Review the code in this repository for cleanup opportunities.

Focus on:
- Removing dead/unreachable code
- Removing unused imports and variables
- Removing commented-out code
- Fixing inconsistent formatting
- Removing duplicate code
- Cleaning up TODO/FIXME comments (fix or remove)
- Removing deprecated code paths

DO NOT:
- Change working functionality
- Remove code that might be used dynamically
- Remove comments that provide valuable context

For each cleanup:
1. Confirm the code is truly unused/dead
2. Remove or clean it up
3. Commit with message: "cleanup: [description]"

Limit: Focus on obvious cleanup opportunities. Check at most 10 files.`,
	},
	{
		Key:         "modernize",
		Name:        "Modernize Code",
		Description: "Update to modern language features and best practices",
		Prompt: `Review the code in this repository and modernize it.

Focus on:
- Using modern language features
- Replacing deprecated APIs with modern alternatives
- Using modern standard library functions
- Applying current best practices
- Updating to recommended patterns

DO NOT:
- Change working functionality
- Add new dependencies
- Make changes that require runtime/language version upgrades

For each modernization:
1. Identify outdated patterns
2. Update to modern equivalent
3. Commit with message: "modernize: [description]"

Limit: Focus on the most impactful modernizations. Check at most 5 files.`,
	},
	{
		Key:         "accessibility",
		Name:        "Improve Accessibility",
		Description: "Improve accessibility (a11y) for web/UI components",
		Prompt: `Review the code in this repository for accessibility improvements.

Focus on:
- Adding ARIA labels and roles
- Ensuring keyboard navigation
- Adding alt text for images
- Ensuring sufficient color contrast
- Adding screen reader support
- Semantic HTML usage
- Focus management
- Form accessibility

For each improvement:
1. Identify accessibility issues
2. Fix them following WCAG guidelines
3. Commit with message: "a11y: [description]"

Limit: Focus on the most impactful accessibility issues. Check at most 5 files.`,
	},
}

// Lookup returns the mode for a key, if it exists.
func Lookup(key string) (Mode, bool) {
	for _, m := range Catalog {
		if m.Key == key {
			return m, true
		}
	}
	return Mode{}, false
}

// Keys returns the catalog keys in fixed order.
func Keys() []string {
	keys := make([]string, len(Catalog))
	for i, m := range Catalog {
		keys[i] = m.Key
	}
	return keys
}

// FormatList renders the catalog for CLI help output.
func FormatList() string {
	var b strings.Builder
	b.WriteString("Available improvement modes:\n\n")
	for _, m := range Catalog {
		b.WriteString("  ")
		b.WriteString(m.Key)
		for i := len(m.Key); i < 20; i++ {
			b.WriteByte(' ')
		}
		b.WriteString(" - ")
		b.WriteString(m.Description)
		b.WriteByte('\n')
	}
	b.WriteString("\n  all                  - Run all improvement modes sequentially")
	b.WriteString("\n  northstar            - Iterate towards goals defined in NORTHSTAR.md\n")
	return b.String()
}
