// Package prompts loads mode prompts and custom instruction files, with
// support for per-project and per-user overrides.
package prompts

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Meta holds optional frontmatter metadata on a prompt file.
type Meta struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
}

// Loader resolves mode prompts against override directories.
type Loader struct {
	overrideDirs []string // checked in order; first match wins
}

// NewLoader creates a loader with the given override directories.
func NewLoader(overrideDirs ...string) *Loader {
	return &Loader{overrideDirs: overrideDirs}
}

// DefaultLoader creates a loader with standard override paths:
// 1. Project-local: .auto-reviewer/prompts/
// 2. User config: ~/.config/auto-reviewer/prompts/
func DefaultLoader(projectDir string) *Loader {
	home, _ := os.UserHomeDir()
	dirs := []string{}

	if projectDir != "" {
		dirs = append(dirs, filepath.Join(projectDir, ".auto-reviewer", "prompts"))
	}
	dirs = append(dirs, filepath.Join(home, ".config", "auto-reviewer", "prompts"))

	return NewLoader(dirs...)
}

// ModePrompt returns the prompt for a mode key, preferring an override
// file <key>.md from the override directories over the built-in fallback.
func (l *Loader) ModePrompt(key, fallback string) string {
	for _, dir := range l.overrideDirs {
		data, err := os.ReadFile(filepath.Join(dir, key+".md"))
		if err != nil {
			continue
		}
		_, body, err := parseFrontmatter(data)
		if err != nil {
			continue
		}
		return strings.TrimSpace(body)
	}
	return fallback
}

// LoadInstructionFile reads a custom instruction file with optional YAML
// frontmatter (name, description).
func LoadInstructionFile(path string) (*Meta, string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, "", err
	}

	meta, body, err := parseFrontmatter(data)
	if err != nil {
		return nil, "", fmt.Errorf("parse %s: %w", path, err)
	}
	if meta == nil {
		meta = &Meta{}
	}

	return meta, strings.TrimSpace(body), nil
}

// parseFrontmatter splits content into frontmatter and body.
func parseFrontmatter(content []byte) (*Meta, string, error) {
	str := string(content)

	if !strings.HasPrefix(str, "---\n") {
		return nil, str, nil // No frontmatter
	}

	end := strings.Index(str[4:], "\n---\n")
	if end == -1 {
		return nil, str, nil // Malformed, treat as no frontmatter
	}

	frontmatter := str[4 : 4+end]
	body := str[4+end+5:]

	var meta Meta
	if err := yaml.Unmarshal([]byte(frontmatter), &meta); err != nil {
		return nil, "", fmt.Errorf("parse frontmatter: %w", err)
	}

	return &meta, body, nil
}
