package variables

import (
	"slices"

	"github.com/google/uuid"

	"github.com/nathanaelcunningham/typst-pdftemplater/pkg/errors"
)

// Manager is an ordered list of variables with unique ids and paths.
// It is not safe for concurrent use; the editing session serializes access.
type Manager struct {
	vars  []Variable
	newID func() string
}

// NewManager returns a manager holding a copy of vars.
func NewManager(vars []Variable) *Manager {
	return &Manager{vars: slices.Clone(vars), newID: uuid.NewString}
}

// List returns a copy of the variables in insertion order.
func (m *Manager) List() []Variable { return slices.Clone(m.vars) }

// Len returns the number of variables.
func (m *Manager) Len() int { return len(m.vars) }

// Get returns the variable with id.
func (m *Manager) Get(id string) (Variable, bool) {
	i := m.index(id)
	if i < 0 {
		return Variable{}, false
	}
	return m.vars[i], true
}

// ByPath returns the variable declaring path.
func (m *Manager) ByPath(path string) (Variable, bool) {
	path = NormalizePath(path)
	for _, v := range m.vars {
		if v.Path == path {
			return v, true
		}
	}
	return Variable{}, false
}

// Add validates and appends v, assigning an id if it has none. The path is
// normalized before validation. It returns the stored variable.
func (m *Manager) Add(v Variable) (Variable, error) {
	v.Path = NormalizePath(v.Path)
	if err := v.Validate(); err != nil {
		return Variable{}, err
	}
	if v.ID == "" {
		v.ID = m.newID()
	}
	if m.index(v.ID) >= 0 {
		return Variable{}, errors.New(errors.ErrCodeInvalidInput, "variable id %s is already in use", v.ID)
	}
	if err := m.checkPath(v.ID, v.Path); err != nil {
		return Variable{}, err
	}
	m.vars = append(m.vars, v)
	return v, nil
}

// Update replaces the variable with v.ID. Placeholders referencing the old
// path are left as they are.
func (m *Manager) Update(v Variable) error {
	i := m.index(v.ID)
	if i < 0 {
		return errors.New(errors.ErrCodeNotFound, "variable %s not found", v.ID)
	}
	v.Path = NormalizePath(v.Path)
	if err := v.Validate(); err != nil {
		return err
	}
	if err := m.checkPath(v.ID, v.Path); err != nil {
		return err
	}
	m.vars[i] = v
	return nil
}

// Remove deletes the variable with id. References in props become dangling.
func (m *Manager) Remove(id string) error {
	i := m.index(id)
	if i < 0 {
		return errors.New(errors.ErrCodeNotFound, "variable %s not found", id)
	}
	m.vars = slices.Delete(m.vars, i, i+1)
	return nil
}

func (m *Manager) index(id string) int {
	return slices.IndexFunc(m.vars, func(v Variable) bool { return v.ID == id })
}

func (m *Manager) checkPath(id, path string) error {
	for _, v := range m.vars {
		if v.ID != id && v.Path == path {
			return errors.New(errors.ErrCodeInvalidPath, "path %s is already used by variable %s", path, v.ID)
		}
	}
	return nil
}
