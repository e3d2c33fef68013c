// Package store persists templates for the storage service.
//
// A [Repository] creates, reads, updates and archives [template.Template]
// values. Archiving keeps the record but hides it from [Repository.List];
// [Repository.Get] still returns archived templates with Archived set.
//
// Two backends are provided: [MemoryStore] for tests and single-process
// use, and [MongoStore] for a shared MongoDB collection.
package store

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/nathanaelcunningham/typst-pdftemplater/pkg/errors"
	"github.com/nathanaelcunningham/typst-pdftemplater/pkg/layout"
	"github.com/nathanaelcunningham/typst-pdftemplater/pkg/template"
)

// Repository is the template persistence contract.
type Repository interface {
	// List returns non-archived templates, newest first.
	List(ctx context.Context) ([]template.Template, error)
	Get(ctx context.Context, id string) (template.Template, error)
	Create(ctx context.Context, d template.Draft) (template.Template, error)
	Update(ctx context.Context, id string, p template.Patch) (template.Template, error)
	Archive(ctx context.Context, id string) error
	Close(ctx context.Context) error
}

// clock and id generation shared by the backends.
type stamps struct {
	now   func() time.Time
	newID func() string
}

func defaultStamps() stamps {
	return stamps{
		now:   func() time.Time { return time.Now().UTC().Truncate(time.Millisecond) },
		newID: uuid.NewString,
	}
}

// prepare validates a draft and turns it into a new template.
func (s stamps) prepare(d template.Draft) (template.Template, error) {
	name := strings.TrimSpace(d.Name)
	if err := errors.ValidateTemplateName(name); err != nil {
		return template.Template{}, err
	}
	content := d.Content
	if content.Grid.Columns == 0 && len(content.Components) == 0 && content.Variables == nil {
		content = template.DefaultContent()
	}
	content = withPageGrid(content)
	if err := content.Validate(); err != nil {
		return template.Template{}, errors.Wrap(errors.ErrCodeInvalidFormat, err, "template content")
	}
	now := s.now()
	return template.Template{
		ID:          s.newID(),
		Name:        name,
		Description: d.Description,
		Content:     content,
		CreatedAt:   now,
		UpdatedAt:   now,
	}, nil
}

// revise applies a patch and bumps UpdatedAt.
func (s stamps) revise(t template.Template, p template.Patch) (template.Template, error) {
	if p.Name != nil {
		name := strings.TrimSpace(*p.Name)
		if err := errors.ValidateTemplateName(name); err != nil {
			return template.Template{}, err
		}
		p.Name = &name
	}
	if p.Content != nil {
		c := withPageGrid(*p.Content)
		p.Content = &c
		if err := p.Content.Validate(); err != nil {
			return template.Template{}, errors.Wrap(errors.ErrCodeInvalidFormat, err, "template content")
		}
	}
	t = p.Apply(t)
	t.UpdatedAt = s.now()
	return t, nil
}

// withPageGrid fills in the default page grid when content carries none.
func withPageGrid(c template.Content) template.Content {
	if c.Grid.Columns == 0 {
		c.Grid = layout.DefaultGridConfig()
	}
	return c
}

func notFound(id string) error {
	return errors.New(errors.ErrCodeTemplateNotFound, "template %s not found", id)
}

// newestFirst orders templates by creation time descending, id breaking ties.
func newestFirst(ts []template.Template) {
	sort.SliceStable(ts, func(i, j int) bool {
		if !ts[i].CreatedAt.Equal(ts[j].CreatedAt) {
			return ts[i].CreatedAt.After(ts[j].CreatedAt)
		}
		return ts[i].ID < ts[j].ID
	})
}
