package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"

	"github.com/nathanaelcunningham/typst-pdftemplater/pkg/errors"
	"github.com/nathanaelcunningham/typst-pdftemplater/pkg/template"
)

const templatesPath = "api/templates"

// Templates is the storage service API.
type Templates struct {
	c *Client
}

type templateEnvelope struct {
	Template template.Template `json:"template"`
}

type templateList struct {
	Templates []template.Template `json:"templates"`
}

// List returns every stored template.
func (t *Templates) List(ctx context.Context) ([]template.Template, error) {
	var out templateList
	if err := t.call(ctx, http.MethodGet, templatesPath, nil, &out); err != nil {
		return nil, err
	}
	return out.Templates, nil
}

// Get returns the template with id.
func (t *Templates) Get(ctx context.Context, id string) (template.Template, error) {
	var out templateEnvelope
	if err := t.call(ctx, http.MethodGet, itemPath(id), nil, &out); err != nil {
		return template.Template{}, err
	}
	return out.Template, nil
}

// Create stores a new template. The service assigns id and timestamps.
func (t *Templates) Create(ctx context.Context, d template.Draft) (template.Template, error) {
	if err := errors.ValidateTemplateName(d.Name); err != nil {
		return template.Template{}, err
	}
	var out templateEnvelope
	if err := t.call(ctx, http.MethodPost, templatesPath, d, &out); err != nil {
		return template.Template{}, err
	}
	return out.Template, nil
}

// Update applies a partial update and returns the stored result.
func (t *Templates) Update(ctx context.Context, id string, p template.Patch) (template.Template, error) {
	if p.Name != nil {
		if err := errors.ValidateTemplateName(*p.Name); err != nil {
			return template.Template{}, err
		}
	}
	var out templateEnvelope
	if err := t.call(ctx, http.MethodPut, itemPath(id), p, &out); err != nil {
		return template.Template{}, err
	}
	return out.Template, nil
}

// Archive hides a template from listings.
func (t *Templates) Archive(ctx context.Context, id string) error {
	return t.call(ctx, http.MethodDelete, itemPath(id), nil, nil)
}

func (t *Templates) call(ctx context.Context, method, path string, in, out any) error {
	data, err := t.c.do(ctx, method, path, in, requestFailed, "error", "message")
	if err != nil {
		return err
	}
	if out == nil || len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode %s response", path)
	}
	return nil
}

func itemPath(id string) string {
	return templatesPath + "/" + url.PathEscape(id)
}
