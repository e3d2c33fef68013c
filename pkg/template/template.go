// Package template defines stored templates and the persisted editor
// content they carry.
package template

import (
	"encoding/json"
	"errors"
	"time"

	perrors "github.com/nathanaelcunningham/typst-pdftemplater/pkg/errors"
	"github.com/nathanaelcunningham/typst-pdftemplater/pkg/layout"
	"github.com/nathanaelcunningham/typst-pdftemplater/pkg/variables"
)

// Content is the persisted editor state: the page grid, the component tree
// and the variable definitions.
type Content struct {
	Grid       layout.GridConfig    `json:"grid"`
	Components layout.Components    `json:"components"`
	Variables  []variables.Variable `json:"variables"`
}

// DefaultContent returns the state of a new, empty template.
func DefaultContent() Content {
	return Content{
		Grid:       layout.DefaultGridConfig(),
		Components: layout.Components{},
		Variables:  variables.Defaults(),
	}
}

// FromDocument builds content from a document and variables. The document
// is deep-copied.
func FromDocument(doc *layout.Document, vars []variables.Variable) Content {
	d := doc.Clone()
	if d.Items == nil {
		d.Items = layout.Components{}
	}
	if vars == nil {
		vars = []variables.Variable{}
	}
	return Content{Grid: d.Grid, Components: d.Items, Variables: vars}
}

// ParseContent decodes persisted content. A missing grid falls back to the
// default page grid.
func ParseContent(data []byte) (Content, error) {
	c := Content{Grid: layout.DefaultGridConfig()}
	if err := json.Unmarshal(data, &c); err != nil {
		if perrors.GetCode(err) != "" {
			return Content{}, err
		}
		return Content{}, perrors.Wrap(perrors.ErrCodeInvalidFormat, err, "decode template content")
	}
	if c.Components == nil {
		c.Components = layout.Components{}
	}
	return c, nil
}

// Document returns a deep copy of the content's component tree.
func (c Content) Document() *layout.Document {
	d := &layout.Document{Grid: c.Grid, Items: c.Components}
	return d.Clone()
}

// Validate checks the component tree and every variable.
func (c Content) Validate() error {
	errs := []error{c.Document().Validate()}
	for _, v := range c.Variables {
		errs = append(errs, v.Validate())
	}
	return errors.Join(errs...)
}

// Template is a stored template.
type Template struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Content     Content   `json:"content"`
	Archived    bool      `json:"archived"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// Draft is the payload for creating a template.
type Draft struct {
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Content     Content `json:"content"`
}

// Patch is a partial update. Nil fields are left unchanged.
type Patch struct {
	Name        *string  `json:"name,omitempty"`
	Description *string  `json:"description,omitempty"`
	Content     *Content `json:"content,omitempty"`
}

// Empty reports whether p changes nothing.
func (p Patch) Empty() bool {
	return p.Name == nil && p.Description == nil && p.Content == nil
}

// Apply returns t with p applied. UpdatedAt is not touched.
func (p Patch) Apply(t Template) Template {
	if p.Name != nil {
		t.Name = *p.Name
	}
	if p.Description != nil {
		t.Description = *p.Description
	}
	if p.Content != nil {
		t.Content = *p.Content
	}
	return t
}
