package layout

import (
	"slices"

	"github.com/nathanaelcunningham/typst-pdftemplater/pkg/errors"
)

// Stack is a container that flows its children in order. A child's index is
// its position in Children, so indexes are always 0..n-1.
type Stack struct {
	Direction Direction `json:"direction"`
	Spacing   float64   `json:"spacing"`
	Alignment Alignment `json:"alignment"`
	Children  []*Node   `json:"-"`
}

func (*Stack) Type() ComponentType { return TypeStack }

func (s *Stack) clone() Element {
	c := *s
	c.Children = make([]*Node, len(s.Children))
	for i, n := range s.Children {
		c.Children[i] = n.Clone()
	}
	return &c
}

// Nodes returns the children in stack order.
func (s *Stack) Nodes() []*Node { return s.Children }

// Len returns the number of children.
func (s *Stack) Len() int { return len(s.Children) }

// IndexOf returns the index of the child with id, or -1.
func (s *Stack) IndexOf(id string) int {
	return slices.IndexFunc(s.Children, func(n *Node) bool { return n.ID == id })
}

// Add appends n and returns its index.
func (s *Stack) Add(n *Node) int {
	s.Children = append(s.Children, n)
	return len(s.Children) - 1
}

// Insert places n at index, shifting later children back.
func (s *Stack) Insert(index int, n *Node) error {
	if index < 0 || index > len(s.Children) {
		return errors.New(errors.ErrCodeInvalidPosition, "index %d is outside the stack (0-%d)", index, len(s.Children))
	}
	s.Children = slices.Insert(s.Children, index, n)
	return nil
}

// Remove detaches the child with id; later children move up one index.
func (s *Stack) Remove(id string) bool {
	i := s.IndexOf(id)
	if i < 0 {
		return false
	}
	s.Children = slices.Delete(s.Children, i, i+1)
	return true
}

// Reorder moves the child with id to index.
func (s *Stack) Reorder(id string, index int) error {
	i := s.IndexOf(id)
	if i < 0 {
		return errors.New(errors.ErrCodeNotFound, "component %s is not in this stack", id)
	}
	if index < 0 || index >= len(s.Children) {
		return errors.New(errors.ErrCodeInvalidPosition, "index %d is outside the stack (0-%d)", index, len(s.Children)-1)
	}
	n := s.Children[i]
	s.Children = slices.Insert(slices.Delete(s.Children, i, i+1), index, n)
	return nil
}
