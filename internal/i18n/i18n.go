// Package i18n loads the message catalogs used for submitter-facing text
// (auto-replies and validation messages) and resolves a request's language.
package i18n

import (
	"embed"
	"fmt"
	"io/fs"
	"net/http"
	"sort"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/message/catalog"
	"gopkg.in/yaml.v3"
)

const (
	// LangParam is the query parameter used to select a language.
	LangParam = "lang"
	// LangCookieName stores the visitor's language preference, shared with the site.
	LangCookieName = "i18nextLng"
)

// DefaultTag is used when nothing in the request matches a catalog.
var DefaultTag = language.English

//go:embed locales/*.yaml
var embeddedLocales embed.FS

type localeFile struct {
	Locale   string            `yaml:"locale"`
	Messages map[string]string `yaml:"messages"`
}

// Bundle holds the compiled catalogs and a matcher over their languages.
type Bundle struct {
	builder   *catalog.Builder
	supported []language.Tag
	matcher   language.Matcher
	keys      map[language.Tag]map[string]struct{}
}

// Load returns a Bundle built from the embedded catalogs.
func Load() (*Bundle, error) {
	return LoadFS(embeddedLocales)
}

// MustLoad is Load for program start-up and tests.
func MustLoad() *Bundle {
	b, err := Load()
	if err != nil {
		panic(err)
	}
	return b
}

// LoadFS reads locales/*.yaml from fsys. The English catalog is required and
// serves as the fallback for keys a translation leaves out.
func LoadFS(fsys fs.FS) (*Bundle, error) {
	paths, err := fs.Glob(fsys, "locales/*.yaml")
	if err != nil {
		return nil, fmt.Errorf("glob locale catalogs: %w", err)
	}
	sort.Strings(paths)

	b := &Bundle{
		builder: catalog.NewBuilder(catalog.Fallback(DefaultTag)),
		keys:    map[language.Tag]map[string]struct{}{},
	}

	for _, path := range paths {
		data, err := fs.ReadFile(fsys, path)
		if err != nil {
			return nil, fmt.Errorf("read catalog %s: %w", path, err)
		}
		var file localeFile
		if err := yaml.Unmarshal(data, &file); err != nil {
			return nil, fmt.Errorf("parse catalog %s: %w", path, err)
		}
		tag, err := language.Parse(strings.TrimSpace(file.Locale))
		if err != nil {
			return nil, fmt.Errorf("catalog %s: invalid locale %q: %w", path, file.Locale, err)
		}

		keys := make(map[string]struct{}, len(file.Messages))
		for key, value := range file.Messages {
			if err := b.builder.SetString(tag, key, value); err != nil {
				return nil, fmt.Errorf("catalog %s: key %q: %w", path, key, err)
			}
			keys[key] = struct{}{}
		}
		b.keys[tag] = keys
		b.supported = append(b.supported, tag)
	}

	if _, ok := b.keys[DefaultTag]; !ok {
		return nil, fmt.Errorf("no catalog for base locale %s", DefaultTag)
	}

	// The matcher prefers its first tag when nothing matches.
	sort.SliceStable(b.supported, func(i, j int) bool {
		return b.supported[i] == DefaultTag && b.supported[j] != DefaultTag
	})
	b.matcher = language.NewMatcher(b.supported)

	return b, nil
}

// Supported returns the catalog languages, default first.
func (b *Bundle) Supported() []language.Tag {
	return append([]language.Tag(nil), b.supported...)
}

// Printer returns a message printer bound to the bundle's catalogs.
func (b *Bundle) Printer(tag language.Tag) *message.Printer {
	return message.NewPrinter(tag, message.Catalog(b.builder))
}

// Has reports whether tag's own catalog defines key.
func (b *Bundle) Has(tag language.Tag, key string) bool {
	_, ok := b.keys[tag][key]
	return ok
}

// Match picks the best supported language for the given preferences. Each
// value may be a single tag ("mr") or an Accept-Language header.
func (b *Bundle) Match(preferences ...string) language.Tag {
	for _, pref := range preferences {
		pref = strings.TrimSpace(pref)
		if pref == "" {
			continue
		}
		tags, _, err := language.ParseAcceptLanguage(pref)
		if err != nil || len(tags) == 0 {
			continue
		}
		if _, index, confidence := b.matcher.Match(tags...); confidence != language.No {
			return b.supported[index]
		}
	}
	return DefaultTag
}

// ResolveRequest determines the language from ?lang=, the language cookie,
// then Accept-Language.
func (b *Bundle) ResolveRequest(r *http.Request) language.Tag {
	if r == nil {
		return DefaultTag
	}
	prefs := []string{r.URL.Query().Get(LangParam)}
	if cookie, err := r.Cookie(LangCookieName); err == nil {
		prefs = append(prefs, cookie.Value)
	}
	prefs = append(prefs, r.Header.Get("Accept-Language"))
	return b.Match(prefs...)
}
