package model

// KeyIssue is one of the campaign themes students can report against
type KeyIssue struct {
	ID    int    `json:"id"`
	Slug  string `json:"issueId"`
	Title string `json:"title"`
}

// KeyIssues is the fixed catalogue shown on the site
var KeyIssues = []KeyIssue{
	{ID: 1, Slug: "academic-pressure-and-mental-health", Title: "Academic Pressure and Mental Health"},
	{ID: 2, Slug: "financial-barriers", Title: "Financial Barriers"},
	{ID: 3, Slug: "inadequate-educational-infrastructure", Title: "Inadequate Educational Infrastructure"},
	{ID: 4, Slug: "exam-related-issues", Title: "Exam-related Issues"},
	{ID: 5, Slug: "college-related-issues", Title: "College-related Issues"},
	{ID: 6, Slug: "library-issues", Title: "Library Issues"},
	{ID: 7, Slug: "university-related-issues", Title: "University-related Issues"},
}

// FindKeyIssue looks an issue up by slug
func FindKeyIssue(slug string) (KeyIssue, bool) {
	for _, issue := range KeyIssues {
		if issue.Slug == slug {
			return issue, true
		}
	}
	return KeyIssue{}, false
}
