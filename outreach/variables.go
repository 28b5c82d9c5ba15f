// ABOUTME: Template placeholder handling for {{variable}} style templates
// ABOUTME: Extracts, renders and reports unfilled variables
package outreach

import (
	"regexp"
	"strings"
)

var variablePattern = regexp.MustCompile(`\{\{([^}]+)\}\}`)

// ExtractVariables returns the distinct variable names in text, in order of
// first appearance.
func ExtractVariables(text string) []string {
	seen := map[string]bool{}
	vars := []string{}
	for _, m := range variablePattern.FindAllStringSubmatch(text, -1) {
		name := strings.TrimSpace(m[1])
		if name == "" || seen[name] {
			continue
		}
		seen[name] = true
		vars = append(vars, name)
	}
	return vars
}

// Render substitutes values into text. Variables without a value are kept
// verbatim as {{name}}.
func Render(text string, values map[string]string) string {
	return variablePattern.ReplaceAllStringFunc(text, func(match string) string {
		name := strings.TrimSpace(match[2 : len(match)-2])
		if v, ok := values[name]; ok {
			return v
		}
		return "{{" + name + "}}"
	})
}

// UnfilledVariables lists variables in text with no value or a blank one.
func UnfilledVariables(text string, values map[string]string) []string {
	missing := []string{}
	for _, name := range ExtractVariables(text) {
		if strings.TrimSpace(values[name]) == "" {
			missing = append(missing, name)
		}
	}
	return missing
}
