package campaign

import (
	"regexp"
	"sort"
	"strings"

	"github.com/aaplamahesh/outreach/internal/email"
	"github.com/aaplamahesh/outreach/internal/model"
)

var placeholderPattern = regexp.MustCompile(`\{\{([A-Za-z0-9_.-]+)\}\}`)

// Render replaces every {{key}} in s with vars[key].
// Values are inserted as-is and are not scanned again. Placeholders with no
// value are left in the output untouched.
func Render(s string, vars map[string]string) string {
	if len(vars) == 0 || !strings.Contains(s, "{{") {
		return s
	}

	keys := make([]string, 0, len(vars))
	for k := range vars {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	pairs := make([]string, 0, len(keys)*2)
	for _, k := range keys {
		pairs = append(pairs, "{{"+k+"}}", vars[k])
	}
	return strings.NewReplacer(pairs...).Replace(s)
}

// Unresolved lists the distinct placeholder names still present in s, in order of appearance.
func Unresolved(s string) []string {
	matches := placeholderPattern.FindAllStringSubmatch(s, -1)
	if len(matches) == 0 {
		return nil
	}

	seen := make(map[string]bool, len(matches))
	var names []string
	for _, m := range matches {
		if !seen[m[1]] {
			seen[m[1]] = true
			names = append(names, m[1])
		}
	}
	return names
}

// Rendered is a template with its variables applied.
type Rendered struct {
	Subject    string   `json:"subject"`
	HTML       string   `json:"html"`
	Text       string   `json:"text"`
	Unresolved []string `json:"unresolved,omitempty"`
}

// Apply renders the subject, HTML and text of t. When the template has no
// text body one is derived from the HTML before substitution.
func Apply(t model.CampaignTemplate, vars map[string]string) Rendered {
	text := t.TextContent
	if strings.TrimSpace(text) == "" {
		text = email.HTMLToText(t.HTMLContent)
	}

	r := Rendered{
		Subject: Render(t.Subject, vars),
		HTML:    Render(t.HTMLContent, vars),
		Text:    Render(text, vars),
	}
	r.Unresolved = Unresolved(r.Subject + "\n" + r.HTML)
	return r
}
