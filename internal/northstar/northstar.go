// Package northstar reads and maintains the NORTHSTAR.md goals document:
// a checklist of goal categories plus a declared priority ordering.
package northstar

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"

	"github.com/hochfrequenz/auto-reviewer/internal/domain"
)

// FileName is the goals document name looked up in the project root.
const FileName = "NORTHSTAR.md"

// Item is a single goal checklist entry.
type Item struct {
	Text string
	Done bool
}

// Category is a named group of goal items.
type Category struct {
	Name  string
	Items []Item
}

// Document is a parsed goals document.
type Document struct {
	Path       string
	Categories []Category
	Priority   []string // category names in declared priority order
}

// Load reads and parses the goals document at path. A missing or empty
// document is a configuration error, since northstar runs are explicitly
// requested.
func Load(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%s not found at %s: %w", FileName, path, domain.ErrConfiguration)
		}
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	if len(strings.TrimSpace(string(data))) == 0 {
		return nil, fmt.Errorf("%s is empty: %w", path, domain.ErrConfiguration)
	}

	doc := Parse(data)
	doc.Path = path
	return doc, nil
}

// Parse extracts goal categories and the priority ordering from markdown.
// Goal categories are level-3 headings under the "Goals" section; their
// checklist items are list entries prefixed with "[ ]" or "[x]". The
// "Priority Order" section is an ordered list of category names.
func Parse(src []byte) *Document {
	md := goldmark.New()
	root := md.Parser().Parse(text.NewReader(src))

	doc := &Document{}
	section := ""  // current level-2 heading
	category := -1 // index into doc.Categories

	ast.Walk(root, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}

		switch node := n.(type) {
		case *ast.Heading:
			title := nodeText(node, src)
			switch node.Level {
			case 2:
				section = title
				category = -1
			case 3:
				if strings.EqualFold(section, "Goals") {
					doc.Categories = append(doc.Categories, Category{Name: title})
					category = len(doc.Categories) - 1
				}
			}
		case *ast.ListItem:
			itemText := listItemText(node, src)
			if strings.EqualFold(section, "Priority Order") {
				if name := priorityName(node, itemText, src); name != "" {
					doc.Priority = append(doc.Priority, name)
				}
				return ast.WalkSkipChildren, nil
			}
			if category < 0 {
				return ast.WalkContinue, nil
			}
			if item, ok := checklistItem(itemText); ok {
				doc.Categories[category].Items = append(doc.Categories[category].Items, item)
				return ast.WalkSkipChildren, nil
			}
		}
		return ast.WalkContinue, nil
	})

	return doc
}

// checklistItem parses a "[ ] text" or "[x] text" list entry.
func checklistItem(s string) (Item, bool) {
	switch {
	case strings.HasPrefix(s, "[ ]"):
		return Item{Text: strings.TrimSpace(s[3:])}, true
	case strings.HasPrefix(s, "[x]"), strings.HasPrefix(s, "[X]"):
		return Item{Text: strings.TrimSpace(s[3:]), Done: true}, true
	}
	return Item{}, false
}

// priorityName extracts the category name from a priority list entry like
// "**Security** - Fix any security vulnerabilities first". The bold span
// is the name; without one, everything before the first " - " is.
func priorityName(item *ast.ListItem, plain string, src []byte) string {
	var bold string
	ast.Walk(item, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering || bold != "" {
			return ast.WalkContinue, nil
		}
		if em, ok := n.(*ast.Emphasis); ok && em.Level == 2 {
			bold = nodeText(em, src)
			return ast.WalkStop, nil
		}
		return ast.WalkContinue, nil
	})
	if bold != "" {
		return bold
	}
	if i := strings.Index(plain, " - "); i > 0 {
		return strings.TrimSpace(plain[:i])
	}
	return strings.TrimSpace(plain)
}

// listItemText returns the text of the item's first block, excluding any
// nested lists.
func listItemText(item *ast.ListItem, src []byte) string {
	for child := item.FirstChild(); child != nil; child = child.NextSibling() {
		if _, ok := child.(*ast.List); ok {
			continue
		}
		return nodeText(child, src)
	}
	return ""
}

// nodeText concatenates all text segments beneath a node.
func nodeText(n ast.Node, src []byte) string {
	var b strings.Builder
	ast.Walk(n, func(c ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		if t, ok := c.(*ast.Text); ok {
			b.Write(t.Segment.Value(src))
			if t.SoftLineBreak() {
				b.WriteByte(' ')
			}
		}
		return ast.WalkContinue, nil
	})
	return strings.TrimSpace(b.String())
}

// OrderedCategories returns categories sorted by the declared priority
// order. Priority entries match categories by loose name containment;
// unmatched categories follow in document order.
func (d *Document) OrderedCategories() []Category {
	used := make([]bool, len(d.Categories))
	var out []Category

	for _, p := range d.Priority {
		for i, c := range d.Categories {
			if used[i] {
				continue
			}
			if looseMatch(p, c.Name) {
				out = append(out, c)
				used[i] = true
				break
			}
		}
	}
	for i, c := range d.Categories {
		if !used[i] {
			out = append(out, c)
		}
	}
	return out
}

func looseMatch(a, b string) bool {
	la, lb := strings.ToLower(a), strings.ToLower(b)
	return strings.Contains(la, lb) || strings.Contains(lb, la)
}

// FirstOutstanding returns the first incomplete item of the
// highest-priority category that has one.
func (d *Document) FirstOutstanding() (category, item string, ok bool) {
	for _, c := range d.OrderedCategories() {
		for _, it := range c.Items {
			if !it.Done {
				return c.Name, it.Text, true
			}
		}
	}
	return "", "", false
}

// CheckOff flips the first unchecked occurrence of item to checked.
// Best-effort write-back: the caller may ignore the error.
func CheckOff(path, item string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	lines := strings.Split(string(data), "\n")
	for i, line := range lines {
		if strings.Contains(line, "- [ ]") && strings.Contains(line, item) {
			lines[i] = strings.Replace(line, "- [ ]", "- [x]", 1)
			return os.WriteFile(path, []byte(strings.Join(lines, "\n")), 0644)
		}
	}
	return fmt.Errorf("item not found in %s: %q", path, item)
}

// Init writes the default goals document into projectDir. Fails if one
// already exists.
func Init(projectDir string) (string, error) {
	path := filepath.Join(projectDir, FileName)
	if _, err := os.Stat(path); err == nil {
		return "", fmt.Errorf("%s already exists at %s", FileName, path)
	}
	if err := os.WriteFile(path, []byte(DefaultTemplate), 0644); err != nil {
		return "", fmt.Errorf("writing %s: %w", path, err)
	}
	return path, nil
}
