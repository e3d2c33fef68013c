package layout

import (
	"errors"
	"fmt"
)

// Validate checks the structural rules of the whole tree: unique ids, page
// positions inside the page grid, grid children inside their container and
// not overlapping, and containers with at least one column. All problems are
// reported together.
func (d *Document) Validate() error {
	var errs []error
	seen := make(map[string]bool)

	for _, it := range d.Items {
		if it.Node == nil {
			errs = append(errs, fmt.Errorf("nil top-level component"))
			continue
		}
		if err := it.At.Validate(d.Grid.Columns); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", it.Node, err))
		}
		it.Node.Walk(func(n *Node) bool {
			if seen[n.ID] {
				errs = append(errs, fmt.Errorf("duplicate component id %s", n.ID))
			}
			seen[n.ID] = true
			if g, ok := n.Element.(*Grid); ok {
				errs = append(errs, g.validate(n)...)
			}
			return true
		})
	}
	return errors.Join(errs...)
}

func (g *Grid) validate(n *Node) []error {
	var errs []error
	if len(g.Columns) == 0 {
		errs = append(errs, fmt.Errorf("%s: grid has no columns", n))
	}
	for i, w := range g.Columns {
		if w <= 0 {
			errs = append(errs, fmt.Errorf("%s: column %d has non-positive width %g", n, i, w))
		}
	}
	for i, ch := range g.Children {
		others := &Grid{Columns: g.Columns, Children: g.Children[:i]}
		if err := others.ValidateCell(ch.Node.ID, ch.Cell); err != nil {
			errs = append(errs, fmt.Errorf("%s in %s: %w", ch.Node, n, err))
		}
	}
	return errs
}
