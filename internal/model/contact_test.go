package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestContactFilterMatches(t *testing.T) {
	c := Contact{
		Email:      "asha@example.org",
		University: "Savitribai Phule Pune University",
		Course:     "Computer Engineering",
		Year:       "3",
		Interests:  []string{"Exams", "Hostels"},
	}

	tests := []struct {
		name   string
		filter ContactFilter
		want   bool
	}{
		{"empty filter", ContactFilter{}, true},
		{"university substring", ContactFilter{University: "pune"}, true},
		{"university mismatch", ContactFilter{University: "Mumbai"}, false},
		{"course", ContactFilter{Course: "engineering"}, true},
		{"year exact", ContactFilter{Year: "3"}, true},
		{"year mismatch", ContactFilter{Year: "2"}, false},
		{"any interest", ContactFilter{Interests: []string{"fees", "exams"}}, true},
		{"no interest overlap", ContactFilter{Interests: []string{"fees"}}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.filter.Matches(c))
		})
	}
}

func TestEmailDataField(t *testing.T) {
	d := EmailData{AdditionalData: map[string]any{
		"location": "Nagpur",
		"skills":   []any{"design", "writing"},
		"year":     2,
	}}

	assert.Equal(t, "Nagpur", d.Field("location"))
	assert.Equal(t, "design, writing", d.Field("skills"))
	assert.Equal(t, "2", d.Field("year"))
	assert.Equal(t, "", d.Field("missing"))
}

func TestFindKeyIssue(t *testing.T) {
	issue, ok := FindKeyIssue("library-issues")
	assert.True(t, ok)
	assert.Equal(t, "Library Issues", issue.Title)

	_, ok = FindKeyIssue("nope")
	assert.False(t, ok)
}
