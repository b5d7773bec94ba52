package i18n

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/language"
)

func TestLoadEmbedded(t *testing.T) {
	b, err := Load()
	require.NoError(t, err)

	supported := b.Supported()
	require.Len(t, supported, 3)
	assert.Equal(t, language.English, supported[0])
}

func TestCatalogsDefineSameKeys(t *testing.T) {
	b := MustLoad()
	for key := range b.keys[DefaultTag] {
		for _, tag := range b.Supported() {
			assert.Truef(t, b.Has(tag, key), "%s is missing %q", tag, key)
		}
	}
}

func TestPrinterFormatsTranslations(t *testing.T) {
	b := MustLoad()

	en := b.Printer(language.English)
	assert.Equal(t, "Thank you for contacting Aapla Mahesh - We've received your issue",
		en.Sprintf("autoreply.subject", "Aapla Mahesh", en.Sprintf("formtype.issue")))
	assert.Equal(t, "Please enter a valid email address.", en.Sprintf("validation.email"))

	mr := b.Printer(language.Marathi)
	assert.Equal(t, "प्रिय Asha,", mr.Sprintf("autoreply.greeting", "Asha"))
}

func TestMatch(t *testing.T) {
	b := MustLoad()

	assert.Equal(t, language.Hindi, b.Match("hi"))
	assert.Equal(t, language.Marathi, b.Match("", "mr-IN,en;q=0.5"))
	assert.Equal(t, language.English, b.Match("fr"))
	assert.Equal(t, language.English, b.Match())
}

func TestResolveRequest(t *testing.T) {
	b := MustLoad()

	r := httptest.NewRequest(http.MethodPost, "/api/v1/forms/contact?lang=mr", nil)
	r.Header.Set("Accept-Language", "hi")
	assert.Equal(t, language.Marathi, b.ResolveRequest(r))

	r = httptest.NewRequest(http.MethodPost, "/api/v1/forms/contact", nil)
	r.AddCookie(&http.Cookie{Name: LangCookieName, Value: "hi"})
	assert.Equal(t, language.Hindi, b.ResolveRequest(r))

	r = httptest.NewRequest(http.MethodPost, "/api/v1/forms/contact", nil)
	r.Header.Set("Accept-Language", "de-DE,de;q=0.9")
	assert.Equal(t, language.English, b.ResolveRequest(r))
}
