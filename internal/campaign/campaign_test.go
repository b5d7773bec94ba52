package campaign

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/aaplamahesh/outreach/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRender(t *testing.T) {
	assert.Equal(t, "Hi Asha", Render("Hi {{name}}", map[string]string{"name": "Asha"}))
	assert.Equal(t, "Hi {{name}}", Render("Hi {{name}}", nil))
	assert.Equal(t, "Hi {{name}}", Render("Hi {{name}}", map[string]string{"other": "x"}))
}

func TestRenderReplacesEveryOccurrence(t *testing.T) {
	out := Render("{{a}}-{{b}}-{{a}}", map[string]string{"a": "1", "b": "2"})
	assert.Equal(t, "1-2-1", out)
}

func TestRenderDoesNotEscapeOrNest(t *testing.T) {
	out := Render("<p>{{body}}</p>", map[string]string{
		"body":  "<b>{{other}}</b>",
		"other": "never",
	})
	assert.Equal(t, "<p><b>{{other}}</b></p>", out)
}

func TestUnresolved(t *testing.T) {
	assert.Equal(t, []string{"b", "c"}, Unresolved("x {{b}} {{c}} {{b}}"))
	assert.Nil(t, Unresolved("nothing here"))
}

func TestSpacedPlaceholdersAreLiteral(t *testing.T) {
	vars := map[string]string{"name": "Asha"}
	s := "Hi {{ name }}, {{name}}"

	assert.Equal(t, "Hi {{ name }}, Asha", Render(s, vars))
	assert.Nil(t, Unresolved(Render(s, vars)))

	r := Apply(model.CampaignTemplate{Subject: "{{ name }}", HTMLContent: "<p>{{name}}</p>"}, vars)
	assert.Empty(t, r.Unresolved)
	assert.Equal(t, "<p>Asha</p>", r.HTML)
}

func TestApplyDerivesText(t *testing.T) {
	tmpl := model.CampaignTemplate{
		ID:          "t",
		Subject:     "Hello {{name}}",
		HTMLContent: "<p>Dear {{name}},</p><p>See {{url}}</p>",
	}

	r := Apply(tmpl, map[string]string{"name": "Asha"})
	assert.Equal(t, "Hello Asha", r.Subject)
	assert.Contains(t, r.HTML, "Dear Asha,")
	assert.Contains(t, r.Text, "Dear Asha,")
	assert.NotContains(t, r.Text, "<p>")
	assert.Equal(t, []string{"url"}, r.Unresolved)
}

func TestDefaultRegistry(t *testing.T) {
	r, err := DefaultRegistry()
	require.NoError(t, err)

	ids := make([]string, 0)
	for _, tmpl := range r.List() {
		ids = append(ids, tmpl.ID)
	}
	assert.Equal(t, []string{"event_invitation", "issue_alert", "monthly_update", "welcome_newsletter"}, ids)

	alert, err := r.Get("issue_alert")
	require.NoError(t, err)
	assert.Equal(t, model.CategoryAnnouncement, alert.Category)
	assert.Contains(t, alert.Variables, "petition_url")

	rendered := Apply(alert, map[string]string{"issue_title": "Hostel Fees"})
	assert.Equal(t, "🚨 URGENT: Hostel Fees - Your Voice Needed!", rendered.Subject)

	assert.Len(t, r.ByCategory(model.CategoryEvent), 1)
	assert.Empty(t, r.ByCategory(model.CategoryFundraising))

	_, err = r.Get("missing")
	assert.ErrorIs(t, err, ErrTemplateNotFound)
}

func TestRegistryLoadDir(t *testing.T) {
	dir := t.TempDir()
	content := "id: fundraiser\nname: Fundraiser\ncategory: fundraising\nsubject: Help {{cause}}\nhtml: <p>{{cause}}</p>\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "fundraiser.yaml"), []byte(content), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "README.md"), []byte("ignored"), 0o600))

	r := NewRegistry()
	require.NoError(t, r.LoadDir(dir))

	tmpl, err := r.Get("fundraiser")
	require.NoError(t, err)
	assert.Equal(t, "Help {{cause}}", tmpl.Subject)
}

func TestRegistryRejectsInvalid(t *testing.T) {
	r := NewRegistry()
	err := r.Add(model.CampaignTemplate{ID: "x", Subject: "s", HTMLContent: "h", Category: "gossip"})
	assert.ErrorIs(t, err, ErrInvalidTemplate)
}
