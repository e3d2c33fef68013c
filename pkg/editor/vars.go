package editor

import (
	"time"

	"github.com/nathanaelcunningham/typst-pdftemplater/pkg/variables"
)

// Variables returns the session's variables in order.
func (s *Session) Variables() []variables.Variable {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.vars.List()
}

// AddVariable declares a variable and returns it with its assigned id.
func (s *Session) AddVariable(v variables.Variable) (variables.Variable, error) {
	var out variables.Variable
	err := s.mutateVars("add-variable", v.ID, func(m *variables.Manager) error {
		var err error
		out, err = m.Add(v)
		return err
	})
	return out, err
}

// UpdateVariable replaces a variable. Placeholders using its old path are
// not rewritten.
func (s *Session) UpdateVariable(v variables.Variable) error {
	return s.mutateVars("update-variable", v.ID, func(m *variables.Manager) error {
		return m.Update(v)
	})
}

// RemoveVariable deletes a variable. References in props become dangling.
func (s *Session) RemoveVariable(id string) error {
	return s.mutateVars("remove-variable", id, func(m *variables.Manager) error {
		return m.Remove(id)
	})
}

// VariableMap builds the compile-time variable map from values.
func (s *Session) VariableMap(values []variables.Value) map[string]string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return variables.BuildMap(s.vars.List(), values)
}

// Dangling returns placeholder paths that no variable declares.
func (s *Session) Dangling() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return variables.Dangling(s.doc, s.vars.List())
}

func (s *Session) mutateVars(op, target string, fn func(m *variables.Manager) error) error {
	start := time.Now()

	s.mu.Lock()
	next := variables.NewManager(s.vars.List())
	err := fn(next)
	if err == nil {
		s.vars = next
		s.version++
	}
	s.mu.Unlock()

	s.record(op, target, start, err)
	return err
}
