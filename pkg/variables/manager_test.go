package variables

import (
	"testing"

	"github.com/nathanaelcunningham/typst-pdftemplater/pkg/errors"
)

func TestManagerAdd(t *testing.T) {
	m := NewManager(Defaults())
	m.newID = func() string { return "var-new" }

	v, err := m.Add(Variable{Name: "Total", Path: ".Total", Type: TypeNumber})
	if err != nil {
		t.Fatalf("Add: %v", err)
	}
	if v.ID != "var-new" || v.Path != "Total" {
		t.Errorf("Add stored %+v, want id var-new and path Total", v)
	}
	if m.Len() != 4 {
		t.Errorf("Len = %d, want 4", m.Len())
	}

	if _, err := m.Add(Variable{Name: "Again", Path: "Total", Type: TypeString}); !errors.Is(err, errors.ErrCodeInvalidPath) {
		t.Errorf("duplicate path: err = %v, want INVALID_PATH", err)
	}
	if _, err := m.Add(Variable{ID: "var-1", Name: "X", Path: "X", Type: TypeString}); !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("duplicate id: err = %v, want INVALID_INPUT", err)
	}
}

func TestManagerUpdate(t *testing.T) {
	m := NewManager(Defaults())

	v, _ := m.Get("var-1")
	v.Name = "Client"
	v.Path = "ClientName"
	if err := m.Update(v); err != nil {
		t.Fatalf("Update: %v", err)
	}
	if got, ok := m.ByPath("ClientName"); !ok || got.ID != "var-1" {
		t.Errorf("ByPath(ClientName) = %+v, %v", got, ok)
	}

	v.Path = "OrderNumber"
	if err := m.Update(v); !errors.Is(err, errors.ErrCodeInvalidPath) {
		t.Errorf("path collision: err = %v, want INVALID_PATH", err)
	}
	if err := m.Update(Variable{ID: "missing", Name: "X", Path: "X", Type: TypeString}); !errors.Is(err, errors.ErrCodeNotFound) {
		t.Errorf("missing: err = %v, want NOT_FOUND", err)
	}
}

func TestManagerRemove(t *testing.T) {
	m := NewManager(Defaults())
	if err := m.Remove("var-2"); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	if _, ok := m.Get("var-2"); ok {
		t.Error("var-2 still present")
	}
	if err := m.Remove("var-2"); !errors.Is(err, errors.ErrCodeNotFound) {
		t.Errorf("second Remove: err = %v, want NOT_FOUND", err)
	}
}

func TestManagerListIsCopy(t *testing.T) {
	m := NewManager(Defaults())
	list := m.List()
	list[0].Name = "changed"
	if v, _ := m.Get(list[0].ID); v.Name == "changed" {
		t.Error("List exposed internal storage")
	}
}
