package editor

import (
	"github.com/nathanaelcunningham/typst-pdftemplater/pkg/drop"
	"github.com/nathanaelcunningham/typst-pdftemplater/pkg/layout"
)

// Drop creates a component of type t and places it as intent describes.
func (s *Session) Drop(t layout.ComponentType, intent drop.Intent) (drop.Result, error) {
	var res drop.Result
	err := s.mutate("drop", string(t), func(d *layout.Document) error {
		var err error
		res, err = s.resolver.Apply(d, t, intent)
		return err
	})
	return res, err
}

// DropTag parses a drop-zone tag and applies it.
func (s *Session) DropTag(t layout.ComponentType, tag string, c drop.Context) (drop.Result, error) {
	intent, err := drop.ParseIntent(tag, c)
	if err != nil {
		return drop.Result{}, err
	}
	return s.Drop(t, intent)
}

// Update replaces the settings of a component.
func (s *Session) Update(id string, e layout.Element) error {
	return s.mutate("update", id, func(d *layout.Document) error {
		return d.Update(id, e)
	})
}

// Move repositions a top-level component on the page grid.
func (s *Session) Move(id string, at layout.Absolute) error {
	return s.mutate("move", id, func(d *layout.Document) error {
		return d.Move(id, at)
	})
}

// Remove deletes a component and its descendants.
func (s *Session) Remove(id string) error {
	return s.mutate("remove", id, func(d *layout.Document) error {
		return d.Remove(id)
	})
}

// Wrap moves the top-level components ids into a new container of type t.
// It returns the container's id.
func (s *Session) Wrap(ids []string, t layout.ComponentType) (string, error) {
	var id string
	target := ""
	if len(ids) > 0 {
		target = ids[0]
	}
	err := s.mutate("wrap", target, func(d *layout.Document) error {
		n, err := d.Wrap(ids, t, s.resolver.NewID())
		if err != nil {
			return err
		}
		id = n.ID
		return nil
	})
	return id, err
}

// Unwrap replaces a top-level container by its children.
func (s *Session) Unwrap(containerID string) error {
	return s.mutate("unwrap", containerID, func(d *layout.Document) error {
		return d.Unwrap(containerID)
	})
}

// SetGrid changes the page grid.
func (s *Session) SetGrid(cfg layout.GridConfig) error {
	return s.mutate("set-grid", "", func(d *layout.Document) error {
		return d.SetGrid(cfg)
	})
}

// AddColumn appends a column of the given weight to a grid container.
func (s *Session) AddColumn(containerID string, weight float64) error {
	return s.mutate("add-column", containerID, func(d *layout.Document) error {
		g, err := d.GridByID(containerID)
		if err != nil {
			return err
		}
		g.AddColumn(weight)
		return nil
	})
}

// CanRemoveColumn reports whether a grid column may be removed, and why not.
func (s *Session) CanRemoveColumn(containerID string, index int) (layout.ColumnRemoval, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	g, err := s.doc.GridByID(containerID)
	if err != nil {
		return layout.ColumnRemoval{}, err
	}
	return g.CanRemoveColumn(index), nil
}

// RemoveColumn removes an empty grid column.
func (s *Session) RemoveColumn(containerID string, index int) error {
	return s.mutate("remove-column", containerID, func(d *layout.Document) error {
		g, err := d.GridByID(containerID)
		if err != nil {
			return err
		}
		return g.RemoveColumn(index)
	})
}

// SetColumnWidth changes the weight of a grid column.
func (s *Session) SetColumnWidth(containerID string, index int, weight float64) error {
	return s.mutate("set-column-width", containerID, func(d *layout.Document) error {
		g, err := d.GridByID(containerID)
		if err != nil {
			return err
		}
		return g.SetColumnWidth(index, weight)
	})
}

// SetChildCell moves a grid child to another cell.
func (s *Session) SetChildCell(containerID, childID string, c layout.Cell) error {
	return s.mutate("set-child-cell", childID, func(d *layout.Document) error {
		g, err := d.GridByID(containerID)
		if err != nil {
			return err
		}
		return g.SetChildCell(childID, c)
	})
}

// ReorderStack moves a stack child to index.
func (s *Session) ReorderStack(containerID, childID string, index int) error {
	return s.mutate("reorder", childID, func(d *layout.Document) error {
		st, err := d.StackByID(containerID)
		if err != nil {
			return err
		}
		return st.Reorder(childID, index)
	})
}
