// Package snapshot persists the editor state between runs.
//
// A snapshot is the [template.Content] under a single key. A missing or
// unreadable snapshot loads as [template.DefaultContent] without error, so
// a corrupt file never blocks the editor from starting.
package snapshot

import (
	"context"
	"encoding/json"

	"github.com/nathanaelcunningham/typst-pdftemplater/pkg/template"
)

// Key is the storage key of the editor snapshot.
const Key = "pdftemplater:template"

// Store loads and saves the editor snapshot.
type Store interface {
	Load(ctx context.Context) (template.Content, error)
	Save(ctx context.Context, c template.Content) error
	Clear(ctx context.Context) error
	Close() error
}

// decode parses a snapshot, falling back to the default content.
func decode(data []byte) template.Content {
	if len(data) == 0 {
		return template.DefaultContent()
	}
	c, err := template.ParseContent(data)
	if err != nil || c.Validate() != nil {
		return template.DefaultContent()
	}
	return c
}

func encode(c template.Content) ([]byte, error) {
	return json.Marshal(c)
}
