// Package variables manages template variables and the placeholders that
// reference them.
//
// A [Variable] names a dot-free field path such as "CustomerName".
// Component props reference it with the placeholder {{.CustomerName}},
// which the compile service fills from the map built by [BuildMap].
// Deleting a variable never rewrites props: a placeholder without a
// matching variable is a dangling reference, reported by [Dangling].
package variables

import (
	"slices"
	"strings"

	"github.com/nathanaelcunningham/typst-pdftemplater/pkg/errors"
)

// Type is the declared type of a variable's values.
type Type string

const (
	TypeString Type = "string"
	TypeNumber Type = "number"
	TypeDate   Type = "date"
	TypeArray  Type = "array"
)

// Valid reports whether t is a known variable type.
func (t Type) Valid() bool {
	switch t {
	case TypeString, TypeNumber, TypeDate, TypeArray:
		return true
	}
	return false
}

// Variable is a named field that placeholders can reference.
type Variable struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Path        string `json:"path"`
	Type        Type   `json:"type"`
	Description string `json:"description,omitempty"`
	Example     string `json:"example,omitempty"`
}

// Placeholder returns the token that references v in component props.
func (v Variable) Placeholder() string { return Placeholder(v.Path) }

// Validate checks the name, path and type.
func (v Variable) Validate() error {
	if strings.TrimSpace(v.Name) == "" {
		return errors.New(errors.ErrCodeInvalidName, "variable name cannot be empty")
	}
	if err := errors.ValidateVariablePath(v.Path); err != nil {
		return err
	}
	if !v.Type.Valid() {
		return errors.New(errors.ErrCodeInvalidInput, "unknown variable type %q", v.Type)
	}
	return nil
}

// Value is a user-supplied value for the variable with VariableID.
type Value struct {
	VariableID string `json:"variableId"`
	Value      string `json:"value"`
}

// NormalizePath trims whitespace and a leading dot.
func NormalizePath(path string) string {
	return strings.TrimPrefix(strings.TrimSpace(path), ".")
}

// Placeholder returns {{.path}} for a dot-free path.
func Placeholder(path string) string {
	return "{{." + NormalizePath(path) + "}}"
}

// Defaults returns the variables every new template starts with.
func Defaults() []Variable {
	return []Variable{
		{ID: "var-1", Name: "Customer Name", Path: "CustomerName", Type: TypeString, Description: "Name of the customer", Example: "John Doe"},
		{ID: "var-2", Name: "Order Number", Path: "OrderNumber", Type: TypeString, Description: "Order identification number", Example: "ORD-12345"},
		{ID: "var-3", Name: "Date", Path: "Date", Type: TypeDate, Description: "Current date", Example: "2025-12-12"},
	}
}

// BuildMap joins values against vars by variable id and returns a map from
// path to value. Values for unknown variables are skipped and variables
// without a value are omitted.
func BuildMap(vars []Variable, values []Value) map[string]string {
	byID := make(map[string]string, len(vars))
	for _, v := range vars {
		byID[v.ID] = NormalizePath(v.Path)
	}
	out := make(map[string]string, len(values))
	for _, val := range values {
		path, ok := byID[val.VariableID]
		if !ok || path == "" {
			continue
		}
		out[path] = val.Value
	}
	return out
}

// ExampleValues returns a value for every variable that declares an
// example.
func ExampleValues(vars []Variable) []Value {
	var out []Value
	for _, v := range vars {
		if v.Example != "" {
			out = append(out, Value{VariableID: v.ID, Value: v.Example})
		}
	}
	return out
}

// Paths returns the sorted, normalized paths of vars.
func Paths(vars []Variable) []string {
	out := make([]string, 0, len(vars))
	for _, v := range vars {
		out = append(out, NormalizePath(v.Path))
	}
	slices.Sort(out)
	return slices.Compact(out)
}
