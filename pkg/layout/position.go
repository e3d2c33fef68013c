package layout

import (
	"github.com/nathanaelcunningham/typst-pdftemplater/pkg/errors"
)

// PageColumns is the column count of the page grid used by [Absolute] positions.
const PageColumns = 12

// Position is one of [Absolute], [Relative] or [Cell].
type Position interface {
	isPosition()
}

// Absolute places a top-level component on the page grid.
type Absolute struct {
	Row    int
	Column int // 0..11
	Span   int // 1..12
}

// Relative orders a component inside a [Stack].
type Relative struct {
	Index int
}

// Cell places a component inside a [Grid] container. Grid children occupy a
// single row; only the column range is tracked.
type Cell struct {
	ColumnIndex int
	Span        int
}

func (Absolute) isPosition() {}
func (Relative) isPosition() {}
func (Cell) isPosition()     {}

// IsAbsolute reports whether p is a page grid position.
func IsAbsolute(p Position) bool {
	_, ok := p.(Absolute)
	return ok
}

// IsRelative reports whether p is a stack order position.
func IsRelative(p Position) bool {
	_, ok := p.(Relative)
	return ok
}

// IsGrid reports whether p is a grid container cell.
func IsGrid(p Position) bool {
	_, ok := p.(Cell)
	return ok
}

// FullWidth returns a span-12 position at row.
func FullWidth(row int) Absolute {
	return Absolute{Row: row, Column: 0, Span: PageColumns}
}

// Validate checks a against a page grid with the given column count.
// A non-positive count means [PageColumns].
func (a Absolute) Validate(columns int) error {
	if columns <= 0 {
		columns = PageColumns
	}
	switch {
	case a.Row < 0:
		return errors.New(errors.ErrCodeInvalidPosition, "row %d is negative", a.Row)
	case a.Column < 0 || a.Column >= columns:
		return errors.New(errors.ErrCodeInvalidPosition, "column %d is outside the page grid (0-%d)", a.Column, columns-1)
	case a.Span < 1 || a.Span > columns:
		return errors.New(errors.ErrCodeInvalidPosition, "span %d is outside 1-%d", a.Span, columns)
	case a.Column+a.Span > columns:
		return errors.New(errors.ErrCodeInvalidPosition, "column %d with span %d exceeds %d columns", a.Column, a.Span, columns)
	}
	return nil
}

// Unit returns a span-1 cell in column i.
func Unit(i int) Cell {
	return Cell{ColumnIndex: i, Span: 1}
}

// End returns the first column after c.
func (c Cell) End() int {
	return c.ColumnIndex + c.Span
}

// Contains reports whether column i lies inside c.
func (c Cell) Contains(i int) bool {
	return i >= c.ColumnIndex && i < c.End()
}

// Overlaps reports whether the column ranges of c and o intersect.
func (c Cell) Overlaps(o Cell) bool {
	return !(c.End()-1 < o.ColumnIndex || o.End()-1 < c.ColumnIndex)
}
