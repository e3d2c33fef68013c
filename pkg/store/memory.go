package store

import (
	"context"
	"sync"

	"github.com/nathanaelcunningham/typst-pdftemplater/pkg/template"
	"github.com/nathanaelcunningham/typst-pdftemplater/pkg/variables"
)

// MemoryStore keeps templates in a map.
type MemoryStore struct {
	mu        sync.RWMutex
	templates map[string]template.Template
	stamps
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		templates: make(map[string]template.Template),
		stamps:    defaultStamps(),
	}
}

func (s *MemoryStore) List(ctx context.Context) ([]template.Template, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]template.Template, 0, len(s.templates))
	for _, t := range s.templates {
		if !t.Archived {
			out = append(out, copyTemplate(t))
		}
	}
	newestFirst(out)
	return out, nil
}

func (s *MemoryStore) Get(ctx context.Context, id string) (template.Template, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	t, ok := s.templates[id]
	if !ok {
		return template.Template{}, notFound(id)
	}
	return copyTemplate(t), nil
}

func (s *MemoryStore) Create(ctx context.Context, d template.Draft) (template.Template, error) {
	t, err := s.prepare(d)
	if err != nil {
		return template.Template{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.templates[t.ID] = copyTemplate(t)
	return t, nil
}

func (s *MemoryStore) Update(ctx context.Context, id string, p template.Patch) (template.Template, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.templates[id]
	if !ok {
		return template.Template{}, notFound(id)
	}
	t, err := s.revise(t, p)
	if err != nil {
		return template.Template{}, err
	}
	s.templates[id] = copyTemplate(t)
	return copyTemplate(t), nil
}

func (s *MemoryStore) Archive(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.templates[id]
	if !ok {
		return notFound(id)
	}
	t.Archived = true
	t.UpdatedAt = s.now()
	s.templates[id] = t
	return nil
}

func (s *MemoryStore) Close(ctx context.Context) error { return nil }

// copyTemplate isolates the stored component tree from callers.
func copyTemplate(t template.Template) template.Template {
	t.Content = template.FromDocument(t.Content.Document(), append([]variables.Variable(nil), t.Content.Variables...))
	return t
}

var _ Repository = (*MemoryStore)(nil)
