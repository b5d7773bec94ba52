package campaign

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/aaplamahesh/outreach/internal/model"
	"gopkg.in/yaml.v3"
)

//go:embed templates/*.yaml
var defaultTemplates embed.FS

var (
	ErrTemplateNotFound = errors.New("template not found")
	ErrInvalidTemplate  = errors.New("invalid template")
)

// Registry holds campaign templates keyed by ID. It is safe for concurrent use.
type Registry struct {
	mu        sync.RWMutex
	templates map[string]model.CampaignTemplate
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{templates: make(map[string]model.CampaignTemplate)}
}

// DefaultRegistry returns a registry loaded with the built-in templates.
func DefaultRegistry() (*Registry, error) {
	r := NewRegistry()
	if err := r.LoadFS(defaultTemplates, "templates"); err != nil {
		return nil, fmt.Errorf("failed to load default templates: %w", err)
	}
	return r, nil
}

// Add registers t, replacing any template with the same ID.
func (r *Registry) Add(t model.CampaignTemplate) error {
	if err := validate(t); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.templates[t.ID] = t
	return nil
}

// Get returns the template with the given ID.
func (r *Registry) Get(id string) (model.CampaignTemplate, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	t, ok := r.templates[id]
	if !ok {
		return model.CampaignTemplate{}, fmt.Errorf("%w: %s", ErrTemplateNotFound, id)
	}
	return t, nil
}

// List returns all templates ordered by ID.
func (r *Registry) List() []model.CampaignTemplate {
	return r.filter(func(model.CampaignTemplate) bool { return true })
}

// ByCategory returns the templates in one category ordered by ID.
func (r *Registry) ByCategory(c model.TemplateCategory) []model.CampaignTemplate {
	return r.filter(func(t model.CampaignTemplate) bool { return t.Category == c })
}

func (r *Registry) filter(keep func(model.CampaignTemplate) bool) []model.CampaignTemplate {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]model.CampaignTemplate, 0, len(r.templates))
	for _, t := range r.templates {
		if keep(t) {
			out = append(out, t)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// LoadDir adds every *.yaml / *.yml template found in dir.
func (r *Registry) LoadDir(dir string) error {
	return r.LoadFS(os.DirFS(dir), ".")
}

// LoadFS adds every *.yaml / *.yml template found in root of fsys.
func (r *Registry) LoadFS(fsys fs.FS, root string) error {
	entries, err := fs.ReadDir(fsys, root)
	if err != nil {
		return fmt.Errorf("failed to read template dir: %w", err)
	}

	for _, entry := range entries {
		ext := strings.ToLower(filepath.Ext(entry.Name()))
		if entry.IsDir() || (ext != ".yaml" && ext != ".yml") {
			continue
		}

		name := entry.Name()
		if root != "." {
			name = root + "/" + name
		}
		data, err := fs.ReadFile(fsys, name)
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", name, err)
		}

		var t model.CampaignTemplate
		if err := yaml.Unmarshal(data, &t); err != nil {
			return fmt.Errorf("failed to parse %s: %w", name, err)
		}
		if err := r.Add(t); err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
	}
	return nil
}

func validate(t model.CampaignTemplate) error {
	switch {
	case strings.TrimSpace(t.ID) == "":
		return fmt.Errorf("%w: id is required", ErrInvalidTemplate)
	case strings.TrimSpace(t.Subject) == "":
		return fmt.Errorf("%w: subject is required", ErrInvalidTemplate)
	case strings.TrimSpace(t.HTMLContent) == "":
		return fmt.Errorf("%w: html is required", ErrInvalidTemplate)
	case !t.Category.Valid():
		return fmt.Errorf("%w: unknown category %q", ErrInvalidTemplate, t.Category)
	}
	return nil
}
