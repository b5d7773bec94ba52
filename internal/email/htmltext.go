package email

import (
	"regexp"
	"strings"
)

var (
	tagPattern       = regexp.MustCompile(`<[^>]*>`)
	blankRunPattern  = regexp.MustCompile(`\n{3,}`)
	entityReplacer   = strings.NewReplacer("&nbsp;", " ", "&amp;", "&", "&lt;", "<", "&gt;", ">", "&quot;", `"`, "&#39;", "'")
	lineBreakPattern = regexp.MustCompile(`(?i)<br\s*/?>`)
)

// HTMLToText derives a plain-text body from HTML by stripping tags and
// decoding the handful of entities our templates use.
func HTMLToText(html string) string {
	s := lineBreakPattern.ReplaceAllString(html, "\n")
	s = tagPattern.ReplaceAllString(s, "")
	s = entityReplacer.Replace(s)

	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSpace(line)
	}
	s = strings.Join(lines, "\n")
	s = blankRunPattern.ReplaceAllString(s, "\n\n")

	return strings.TrimSpace(s)
}
