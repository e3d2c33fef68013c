package layout

import (
	"slices"

	"github.com/nathanaelcunningham/typst-pdftemplater/pkg/errors"
)

// GridChild is a component seated in a grid container cell.
type GridChild struct {
	Cell Cell
	Node *Node
}

// Grid is a container with fractional columns. Children occupy single-row
// cells whose column ranges never overlap.
type Grid struct {
	Columns   []float64     `json:"columns"`          // fractional weights, len >= 1
	Gap       float64       `json:"gap"`              // column gutter in points
	RowGap    *float64      `json:"rowGap,omitempty"` // row gutter in points; nil means Gap
	Alignment GridAlignment `json:"alignment"`        // vertical alignment of children; "" renders as start
	Children  []GridChild   `json:"-"`
}

// ColumnRemoval is the answer to [Grid.CanRemoveColumn].
type ColumnRemoval struct {
	CanRemove bool
	Reason    string
	// Affected lists the children occupying the column.
	Affected []string
}

func (*Grid) Type() ComponentType { return TypeGrid }

func (g *Grid) clone() Element {
	c := *g
	c.Columns = slices.Clone(g.Columns)
	if g.RowGap != nil {
		rg := *g.RowGap
		c.RowGap = &rg
	}
	c.Children = make([]GridChild, len(g.Children))
	for i, ch := range g.Children {
		c.Children[i] = GridChild{Cell: ch.Cell, Node: ch.Node.Clone()}
	}
	return &c
}

// ColumnCount returns the number of columns.
func (g *Grid) ColumnCount() int { return len(g.Columns) }

// Len returns the number of children.
func (g *Grid) Len() int { return len(g.Children) }

// RowGutter returns the effective row gap.
func (g *Grid) RowGutter() float64 {
	if g.RowGap != nil {
		return *g.RowGap
	}
	return g.Gap
}

// Ordered returns the children sorted by column index. Children in the same
// column keep insertion order.
func (g *Grid) Ordered() []GridChild {
	out := slices.Clone(g.Children)
	slices.SortStableFunc(out, func(a, b GridChild) int {
		return a.Cell.ColumnIndex - b.Cell.ColumnIndex
	})
	return out
}

// Nodes returns the children in column order.
func (g *Grid) Nodes() []*Node {
	ordered := g.Ordered()
	nodes := make([]*Node, len(ordered))
	for i, ch := range ordered {
		nodes[i] = ch.Node
	}
	return nodes
}

func (g *Grid) indexOf(id string) int {
	return slices.IndexFunc(g.Children, func(ch GridChild) bool { return ch.Node.ID == id })
}

// Child returns the child with id.
func (g *Grid) Child(id string) (GridChild, bool) {
	if i := g.indexOf(id); i >= 0 {
		return g.Children[i], true
	}
	return GridChild{}, false
}

// AddColumn appends a column. Non-positive weights become 1.
func (g *Grid) AddColumn(weight float64) {
	if weight <= 0 {
		weight = 1
	}
	g.Columns = append(g.Columns, weight)
}

// CanRemoveColumn reports whether column index can be removed. A column can
// be removed when it is not the last remaining column and no child's range
// includes it.
func (g *Grid) CanRemoveColumn(index int) ColumnRemoval {
	if index < 0 || index >= len(g.Columns) {
		return ColumnRemoval{Reason: "column does not exist"}
	}
	if len(g.Columns) == 1 {
		return ColumnRemoval{Reason: "cannot remove the last column"}
	}
	var affected []string
	for _, ch := range g.Children {
		if ch.Cell.Contains(index) {
			affected = append(affected, ch.Node.ID)
		}
	}
	if len(affected) > 0 {
		return ColumnRemoval{Reason: "column contains components", Affected: affected}
	}
	return ColumnRemoval{CanRemove: true}
}

// RemoveColumn deletes column index and renumbers the grid: every child
// whose ColumnIndex is greater than index moves one column left, keeping its
// span. Children left of index are untouched.
//
// The removal is all-or-nothing. When [Grid.CanRemoveColumn] refuses, the
// grid is left unchanged and the error code says why:
//
//   - LAST_COLUMN when index is the only column
//   - COLUMN_OCCUPIED when a child's range covers index
//   - INVALID_POSITION when index is out of range
//
// Example: removing column 1 of a [1 2 1] grid with a child at column 2
// leaves columns [1 1] with that child at column 1.
func (g *Grid) RemoveColumn(index int) error {
	check := g.CanRemoveColumn(index)
	if !check.CanRemove {
		code := errors.ErrCodeInvalidPosition
		switch {
		case len(check.Affected) > 0:
			code = errors.ErrCodeColumnOccupied
		case len(g.Columns) == 1 && index == 0:
			code = errors.ErrCodeLastColumn
		}
		return errors.New(code, "%s", check.Reason)
	}
	g.Columns = slices.Delete(g.Columns, index, index+1)
	for i := range g.Children {
		if g.Children[i].Cell.ColumnIndex > index {
			g.Children[i].Cell.ColumnIndex--
		}
	}
	return nil
}

// SetColumnWidth replaces the weight of column index. Weights must be positive.
func (g *Grid) SetColumnWidth(index int, weight float64) error {
	if index < 0 || index >= len(g.Columns) {
		return errors.New(errors.ErrCodeInvalidPosition, "column %d does not exist", index)
	}
	if weight <= 0 {
		return errors.New(errors.ErrCodeInvalidInput, "column width must be greater than zero")
	}
	g.Columns[index] = weight
	return nil
}

// Occupied returns, per column, whether any child covers it.
func (g *Grid) Occupied() []bool {
	occ := make([]bool, len(g.Columns))
	for _, ch := range g.Children {
		for i := ch.Cell.ColumnIndex; i < ch.Cell.End() && i < len(occ); i++ {
			if i >= 0 {
				occ[i] = true
			}
		}
	}
	return occ
}

// NextCell returns the first unoccupied column as a unit cell. It returns
// false when every column is taken.
func (g *Grid) NextCell() (Cell, bool) {
	if i := slices.Index(g.Occupied(), false); i >= 0 {
		return Unit(i), true
	}
	return Cell{}, false
}

// ValidateCell checks that c fits the grid and does not overlap a sibling.
// The child with excludeID is ignored so it can be repositioned in place.
func (g *Grid) ValidateCell(excludeID string, c Cell) error {
	n := len(g.Columns)
	switch {
	case c.ColumnIndex < 0 || c.ColumnIndex >= n:
		return errors.New(errors.ErrCodeInvalidPosition, "column %d is outside the grid (0-%d)", c.ColumnIndex, n-1)
	case c.Span < 1:
		return errors.New(errors.ErrCodeInvalidPosition, "span must be at least 1")
	case c.End() > n:
		return errors.New(errors.ErrCodeInvalidPosition, "column %d with span %d exceeds %d columns", c.ColumnIndex, c.Span, n)
	}
	for _, ch := range g.Children {
		if ch.Node.ID == excludeID {
			continue
		}
		if ch.Cell.Overlaps(c) {
			return errors.New(errors.ErrCodeColumnOccupied, "overlaps %s in columns %d-%d",
				ch.Node.ID, ch.Cell.ColumnIndex, ch.Cell.End()-1)
		}
	}
	return nil
}

// Add seats n in the next free cell. A full grid grows by one unit column.
func (g *Grid) Add(n *Node) Cell {
	c, ok := g.NextCell()
	if !ok {
		g.AddColumn(1)
		c = Unit(len(g.Columns) - 1)
	}
	g.Children = append(g.Children, GridChild{Cell: c, Node: n})
	return c
}

// Place seats n in an explicit cell after validating it.
func (g *Grid) Place(n *Node, c Cell) error {
	if err := g.ValidateCell(n.ID, c); err != nil {
		return err
	}
	g.Children = append(g.Children, GridChild{Cell: c, Node: n})
	return nil
}

// Remove detaches the child with id. Vacated cells stay empty.
func (g *Grid) Remove(id string) bool {
	i := g.indexOf(id)
	if i < 0 {
		return false
	}
	g.Children = slices.Delete(g.Children, i, i+1)
	return true
}

// SetChildCell moves the child with id to c after validating it.
func (g *Grid) SetChildCell(id string, c Cell) error {
	i := g.indexOf(id)
	if i < 0 {
		return errors.New(errors.ErrCodeNotFound, "component %s is not in this grid", id)
	}
	if err := g.ValidateCell(id, c); err != nil {
		return err
	}
	g.Children[i].Cell = c
	return nil
}

// InsertBeside seats n immediately left of the child targetID, or right of
// it when after is set. The grid is then rebuilt as one equal-width column
// per child: children keep their left-to-right order, every span collapses
// to one, and custom column weights are discarded.
//
// It returns NOT_FOUND, with the grid unchanged, when targetID is not a
// direct child. The caller must ensure n's id is not already in the
// document.
//
// Example: inserting x after a in a grid holding a and b yields three
// columns of weight 1 holding a, x and b.
func (g *Grid) InsertBeside(targetID string, n *Node, after bool) error {
	ordered := g.Ordered()
	at := slices.IndexFunc(ordered, func(ch GridChild) bool { return ch.Node.ID == targetID })
	if at < 0 {
		return errors.New(errors.ErrCodeNotFound, "component %s is not in this grid", targetID)
	}
	if after {
		at++
	}
	ordered = slices.Insert(ordered, at, GridChild{Node: n})
	g.Columns = make([]float64, len(ordered))
	for i := range ordered {
		g.Columns[i] = 1
		ordered[i].Cell = Unit(i)
	}
	g.Children = ordered
	return nil
}

// newGridOf returns a grid with one equal column per node.
func newGridOf(nodes []*Node) *Grid {
	g := DefaultGrid()
	g.Columns = make([]float64, len(nodes))
	for i, n := range nodes {
		g.Columns[i] = 1
		g.Children = append(g.Children, GridChild{Cell: Unit(i), Node: n})
	}
	return g
}
