package modes

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/hochfrequenz/auto-reviewer/internal/domain"
	"github.com/hochfrequenz/auto-reviewer/internal/northstar"
	"github.com/hochfrequenz/auto-reviewer/internal/prompts"
)

// Sentinel mode tokens accepted in a request.
const (
	TokenAll      = "all"
	ModeNorthstar = "northstar"
	ModeCustom    = "custom"
)

// Request describes what the caller wants resolved into work items.
// PromptFile overrides everything; Northstar overrides mode selection.
type Request struct {
	Modes      []string // requested mode keys, may contain "all"
	Northstar  bool
	PromptFile string
	ProjectDir string
}

// Resolver turns a Request into an ordered, deduplicated work item queue.
type Resolver struct {
	loader *prompts.Loader
}

// NewResolver creates a resolver using the given prompt loader.
func NewResolver(loader *prompts.Loader) *Resolver {
	return &Resolver{loader: loader}
}

// Resolve produces the work item queue for a request. The queue contains
// at most one item per mode, in request order; "all" expands to the full
// catalog in its fixed order.
func (r *Resolver) Resolve(req Request) ([]domain.WorkItem, error) {
	if req.PromptFile != "" {
		return r.resolveCustom(req.PromptFile)
	}
	if req.Northstar {
		return r.resolveNorthstar(req.ProjectDir)
	}

	keys, err := expand(req.Modes)
	if err != nil {
		return nil, err
	}
	if len(keys) == 0 {
		return nil, fmt.Errorf("no improvement modes requested: %w", domain.ErrConfiguration)
	}

	items := make([]domain.WorkItem, 0, len(keys))
	for _, key := range keys {
		m, _ := Lookup(key)
		items = append(items, domain.WorkItem{
			Mode:         m.Key,
			Name:         m.Name,
			Instructions: r.loader.ModePrompt(m.Key, m.Prompt),
		})
	}
	return items, nil
}

func (r *Resolver) resolveCustom(path string) ([]domain.WorkItem, error) {
	meta, body, err := prompts.LoadInstructionFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("prompt file not found: %s: %w", path, domain.ErrConfiguration)
		}
		return nil, err
	}
	if body == "" {
		return nil, fmt.Errorf("prompt file is empty: %s: %w", path, domain.ErrConfiguration)
	}

	name := meta.Name
	if name == "" {
		name = "Custom Instructions"
	}
	return []domain.WorkItem{{Mode: ModeCustom, Name: name, Instructions: body}}, nil
}

func (r *Resolver) resolveNorthstar(projectDir string) ([]domain.WorkItem, error) {
	prompt, err := northstar.BuildPrompt(filepath.Join(projectDir, northstar.FileName))
	if err != nil {
		return nil, err
	}
	return []domain.WorkItem{{Mode: ModeNorthstar, Name: "North Star", Instructions: prompt}}, nil
}

// expand resolves mode tokens to catalog keys, expanding "all" and
// dropping duplicates while preserving first-occurrence order.
func expand(tokens []string) ([]string, error) {
	var keys []string
	seen := make(map[string]bool)

	add := func(key string) {
		if !seen[key] {
			seen[key] = true
			keys = append(keys, key)
		}
	}

	for _, tok := range tokens {
		if tok == TokenAll {
			for _, key := range Keys() {
				add(key)
			}
			continue
		}
		if _, ok := Lookup(tok); !ok {
			return nil, fmt.Errorf("unknown mode %q: %w", tok, domain.ErrConfiguration)
		}
		add(tok)
	}
	return keys, nil
}
