// ABOUTME: Splits generated text into a subject and a body
// ABOUTME: Tolerates replies that ignore the requested format
package outreach

import (
	"regexp"
	"strings"
)

var (
	subjectPattern = regexp.MustCompile(`(?s)SUBJECT:\s*(.+?)(?:\n|BODY:|$)`)
	bodyPattern    = regexp.MustCompile(`(?s)BODY:\s*(.+)`)
)

// parseGenerated extracts SUBJECT: and BODY: sections. A reply without a
// BODY: marker is used whole as the body.
func parseGenerated(text string) (subject, body string) {
	if m := subjectPattern.FindStringSubmatch(text); m != nil {
		subject = strings.TrimSpace(m[1])
	}
	if m := bodyPattern.FindStringSubmatch(text); m != nil {
		body = strings.TrimSpace(m[1])
	} else {
		body = text
	}
	return subject, body
}
