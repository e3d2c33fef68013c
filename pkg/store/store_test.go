package store

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/nathanaelcunningham/typst-pdftemplater/pkg/errors"
	"github.com/nathanaelcunningham/typst-pdftemplater/pkg/layout"
	"github.com/nathanaelcunningham/typst-pdftemplater/pkg/template"
)

// tickingStamps returns stamps whose clock advances a second per call and
// whose ids count up.
func tickingStamps() stamps {
	t0 := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	var ticks, ids int
	return stamps{
		now: func() time.Time {
			ticks++
			return t0.Add(time.Duration(ticks) * time.Second)
		},
		newID: func() string {
			ids++
			return fmt.Sprintf("t%d", ids)
		},
	}
}

func newTestMemoryStore() *MemoryStore {
	s := NewMemoryStore()
	s.stamps = tickingStamps()
	return s
}

func strPtr(s string) *string { return &s }

func contentWithHeading() template.Content {
	c := template.DefaultContent()
	c.Components = append(c.Components, layout.Placed{
		At:   layout.FullWidth(0),
		Node: &layout.Node{ID: "h", Element: layout.DefaultHeading()},
	})
	return c
}

// exerciseRepository checks the behavior every backend shares.
func exerciseRepository(t *testing.T, repo Repository) {
	t.Helper()
	ctx := context.Background()

	first, err := repo.Create(ctx, template.Draft{Name: "  Invoice ", Description: "monthly", Content: contentWithHeading()})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if first.Name != "Invoice" {
		t.Errorf("Name = %q, want trimmed", first.Name)
	}
	if first.ID == "" || first.CreatedAt.IsZero() || !first.CreatedAt.Equal(first.UpdatedAt) {
		t.Errorf("Create stamps = %+v", first)
	}

	second, err := repo.Create(ctx, template.Draft{Name: "Receipt"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if len(second.Content.Variables) == 0 {
		t.Error("empty draft should start from default content")
	}

	got, err := repo.Get(ctx, first.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if diff := cmp.Diff(first.Content, got.Content, cmpopts.EquateEmpty()); diff != "" {
		t.Errorf("content mismatch (-want +got):\n%s", diff)
	}

	list, err := repo.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(list) != 2 || list[0].ID != second.ID || list[1].ID != first.ID {
		t.Errorf("List order = %v, want newest first", ids(list))
	}

	updated, err := repo.Update(ctx, first.ID, template.Patch{Description: strPtr("quarterly")})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if updated.Name != "Invoice" || updated.Description != "quarterly" {
		t.Errorf("Update = %q/%q", updated.Name, updated.Description)
	}
	if !updated.UpdatedAt.After(first.UpdatedAt) {
		t.Error("Update did not advance UpdatedAt")
	}

	if _, err := repo.Update(ctx, first.ID, template.Patch{Name: strPtr("  ")}); !errors.Is(err, errors.ErrCodeInvalidName) {
		t.Errorf("blank rename err = %v", err)
	}

	if err := repo.Archive(ctx, first.ID); err != nil {
		t.Fatalf("Archive: %v", err)
	}
	list, _ = repo.List(ctx)
	if len(list) != 1 || list[0].ID != second.ID {
		t.Errorf("List after archive = %v", ids(list))
	}
	archived, err := repo.Get(ctx, first.ID)
	if err != nil || !archived.Archived {
		t.Errorf("Get archived = %+v, %v", archived.Archived, err)
	}

	for name, err := range map[string]error{
		"get":     errOf(repo.Get(ctx, "missing")),
		"update":  errOf(repo.Update(ctx, "missing", template.Patch{})),
		"archive": repo.Archive(ctx, "missing"),
	} {
		if !errors.Is(err, errors.ErrCodeTemplateNotFound) {
			t.Errorf("%s missing: err = %v", name, err)
		}
	}
}

func errOf(_ template.Template, err error) error { return err }

func ids(ts []template.Template) []string {
	out := make([]string, len(ts))
	for i, t := range ts {
		out[i] = t.ID
	}
	return out
}

func TestMemoryStore(t *testing.T) {
	exerciseRepository(t, newTestMemoryStore())
}

func TestMemoryStoreCreateValidation(t *testing.T) {
	s := newTestMemoryStore()
	ctx := context.Background()

	if _, err := s.Create(ctx, template.Draft{Name: ""}); !errors.Is(err, errors.ErrCodeInvalidName) {
		t.Errorf("empty name err = %v", err)
	}

	bad := template.DefaultContent()
	bad.Components = layout.Components{{At: layout.Absolute{Row: 0, Column: 10, Span: 4}, Node: &layout.Node{ID: "x", Element: layout.DefaultText()}}}
	if _, err := s.Create(ctx, template.Draft{Name: "Bad", Content: bad}); !errors.Is(err, errors.ErrCodeInvalidFormat) {
		t.Errorf("invalid content err = %v", err)
	}
}

func TestMissingPageGridGetsDefault(t *testing.T) {
	s := newTestMemoryStore()
	ctx := context.Background()

	noGrid := contentWithHeading()
	noGrid.Grid = layout.GridConfig{}
	created, err := s.Create(ctx, template.Draft{Name: "Invoice", Content: noGrid})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if created.Content.Grid != layout.DefaultGridConfig() {
		t.Errorf("created grid = %+v, want %+v", created.Content.Grid, layout.DefaultGridConfig())
	}

	updated, err := s.Update(ctx, created.ID, template.Patch{Content: &noGrid})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if updated.Content.Grid != layout.DefaultGridConfig() {
		t.Errorf("updated grid = %+v", updated.Content.Grid)
	}
	if noGrid.Grid.Columns != 0 {
		t.Error("Update modified the caller's content")
	}
}

func TestMemoryStoreIsolation(t *testing.T) {
	s := newTestMemoryStore()
	ctx := context.Background()

	created, err := s.Create(ctx, template.Draft{Name: "Invoice", Content: contentWithHeading()})
	if err != nil {
		t.Fatal(err)
	}
	created.Content.Components[0].Node.Element.(*layout.Heading).Content = "mutated"

	got, _ := s.Get(ctx, created.ID)
	if h := got.Content.Components[0].Node.Element.(*layout.Heading); h.Content == "mutated" {
		t.Error("caller mutation leaked into the store")
	}
}

func TestMongoStore(t *testing.T) {
	uri := os.Getenv("PDFTEMPLATER_TEST_MONGO")
	if uri == "" {
		t.Skip("PDFTEMPLATER_TEST_MONGO not set")
	}
	ctx := context.Background()
	s, err := NewMongoStore(ctx, MongoConfig{URI: uri, Database: "pdftemplater_test", Collection: fmt.Sprintf("templates_%d", time.Now().UnixNano())})
	if err != nil {
		t.Fatal(err)
	}
	defer func() {
		_ = s.coll.Drop(ctx)
		_ = s.Close(ctx)
	}()
	s.stamps = tickingStamps()
	exerciseRepository(t, s)
}
