package variables

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/nathanaelcunningham/typst-pdftemplater/pkg/errors"
)

func TestPlaceholder(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{"CustomerName", "{{.CustomerName}}"},
		{".CustomerName", "{{.CustomerName}}"},
		{" Order.Total ", "{{.Order.Total}}"},
	}
	for _, tt := range tests {
		if got := Placeholder(tt.path); got != tt.want {
			t.Errorf("Placeholder(%q) = %q, want %q", tt.path, got, tt.want)
		}
	}
}

func TestBuildMap(t *testing.T) {
	vars := Defaults()
	values := []Value{
		{VariableID: "var-1", Value: "Ada"},
		{VariableID: "var-3", Value: "2026-01-02"},
		{VariableID: "gone", Value: "ignored"},
	}

	got := BuildMap(vars, values)
	want := map[string]string{"CustomerName": "Ada", "Date": "2026-01-02"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("BuildMap mismatch (-want +got):\n%s", diff)
	}
}

func TestBuildMapTrimsLegacyDot(t *testing.T) {
	vars := []Variable{{ID: "v", Name: "Total", Path: ".Total", Type: TypeNumber}}
	got := BuildMap(vars, []Value{{VariableID: "v", Value: "9.50"}})
	if got["Total"] != "9.50" {
		t.Errorf("BuildMap = %v, want Total=9.50", got)
	}
}

func TestBuildMapEmpty(t *testing.T) {
	if got := BuildMap(nil, nil); len(got) != 0 {
		t.Errorf("BuildMap(nil, nil) = %v", got)
	}
	if got := BuildMap(Defaults(), nil); len(got) != 0 {
		t.Errorf("BuildMap without values = %v", got)
	}
}

func TestExampleValues(t *testing.T) {
	got := BuildMap(Defaults(), ExampleValues(Defaults()))
	want := map[string]string{"CustomerName": "John Doe", "OrderNumber": "ORD-12345", "Date": "2025-12-12"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("example map mismatch (-want +got):\n%s", diff)
	}
}

func TestVariableValidate(t *testing.T) {
	tests := []struct {
		name string
		v    Variable
		code errors.Code
	}{
		{"valid", Variable{Name: "Total", Path: "Order.Total", Type: TypeNumber}, ""},
		{"empty name", Variable{Name: " ", Path: "Total", Type: TypeNumber}, errors.ErrCodeInvalidName},
		{"dotted path", Variable{Name: "Total", Path: ".Total", Type: TypeNumber}, errors.ErrCodeInvalidPath},
		{"bad path", Variable{Name: "Total", Path: "1Total", Type: TypeNumber}, errors.ErrCodeInvalidPath},
		{"bad type", Variable{Name: "Total", Path: "Total", Type: "money"}, errors.ErrCodeInvalidInput},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.v.Validate()
			if tt.code == "" {
				if err != nil {
					t.Fatalf("Validate() = %v, want nil", err)
				}
				return
			}
			if !errors.Is(err, tt.code) {
				t.Errorf("Validate() = %v, want code %s", err, tt.code)
			}
		})
	}
}

func TestPaths(t *testing.T) {
	vars := []Variable{{Path: "b"}, {Path: ".a"}, {Path: "b"}}
	if diff := cmp.Diff([]string{"a", "b"}, Paths(vars)); diff != "" {
		t.Errorf("Paths mismatch (-want +got):\n%s", diff)
	}
}
