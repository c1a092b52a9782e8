package domain

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
)

var placeholderPattern = regexp.MustCompile(`\{\{\s*([a-zA-Z_][a-zA-Z0-9_]*)\s*\}\}`)

// PromptTemplate is a prompt with named {{placeholder}} slots.
type PromptTemplate struct {
	// Name identifies the template in the prompt store.
	Name string

	// Text is the raw template body.
	Text string
}

// NewPromptTemplate creates a template value.
func NewPromptTemplate(name, text string) PromptTemplate {
	return PromptTemplate{Name: name, Text: text}
}

// Placeholders returns the distinct placeholder names in order of first use.
func (t PromptTemplate) Placeholders() []string {
	seen := make(map[string]bool)
	var names []string
	for _, m := range placeholderPattern.FindAllStringSubmatch(t.Text, -1) {
		if !seen[m[1]] {
			seen[m[1]] = true
			names = append(names, m[1])
		}
	}
	return names
}

// Render substitutes every placeholder with its value.
// It fails when a placeholder has no value or a value has no placeholder.
// Values are inserted verbatim and never re-scanned for placeholders.
func (t PromptTemplate) Render(values map[string]string) (string, error) {
	expected := t.Placeholders()
	if len(expected) == 0 && len(values) == 0 {
		return t.Text, nil
	}

	var missing []string
	known := make(map[string]bool, len(expected))
	for _, name := range expected {
		known[name] = true
		if _, ok := values[name]; !ok {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return "", fmt.Errorf("%w: template %q missing %s",
			ErrTemplatePlaceholder, t.Name, strings.Join(missing, ", "))
	}

	var unknown []string
	for name := range values {
		if !known[name] {
			unknown = append(unknown, name)
		}
	}
	if len(unknown) > 0 {
		sort.Strings(unknown)
		return "", fmt.Errorf("%w: template %q has no placeholder for %s",
			ErrTemplatePlaceholder, t.Name, strings.Join(unknown, ", "))
	}

	return placeholderPattern.ReplaceAllStringFunc(t.Text, func(match string) string {
		name := placeholderPattern.FindStringSubmatch(match)[1]
		return values[name]
	}), nil
}
