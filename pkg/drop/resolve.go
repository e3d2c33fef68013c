package drop

import (
	"github.com/google/uuid"

	"github.com/nathanaelcunningham/typst-pdftemplater/pkg/errors"
	"github.com/nathanaelcunningham/typst-pdftemplater/pkg/layout"
)

// Op names the layout mutation a drop performed.
type Op string

const (
	OpInsert         Op = "insert"
	OpInsertRow      Op = "insert-row"
	OpInsertInStack  Op = "insert-in-stack"
	OpInsertBeside   Op = "insert-beside"
	OpWrapBeside     Op = "wrap-beside"
	OpAddToContainer Op = "add-to-container"
	OpPlaceInCell    Op = "place-in-cell"
	OpAddColumn      Op = "add-column"
)

// Result describes an applied drop.
type Result struct {
	Op Op
	// ID is the id of the new component.
	ID string
	// Container is the id of a grid created to hold the drop, if any.
	Container string
}

// Resolver applies drops to a document.
type Resolver struct {
	// NewID generates component ids. Defaults to random UUIDs.
	NewID func() string
}

// NewResolver creates a Resolver. A nil newID uses random UUIDs.
func NewResolver(newID func() string) *Resolver {
	if newID == nil {
		newID = uuid.NewString
	}
	return &Resolver{NewID: newID}
}

func (r *Resolver) id() string {
	if r.NewID == nil {
		return uuid.NewString()
	}
	return r.NewID()
}

// Apply creates a component of type t with palette defaults and a fresh id,
// then places it in doc according to in:
//
//   - [Canvas] inserts at an explicit page position.
//   - [Edge] opens a new full-width row above or below a top-level target,
//     shifting later rows down, or inserts before or after a stack child.
//   - [Beside] joins the target's grid as a new equal-width column, or
//     replaces a non-grid target with a two-column grid holding both.
//   - [Interior] appends to a container, growing a full grid by one column.
//   - [GridCell] seats the component in an empty grid column.
//   - [Overflow] adds a column to a grid and seats the component there.
//
// The returned Result names the operation performed and the new id.
// Failures carry the layout error codes. INVALID_POSITION and
// COLUMN_OCCUPIED describe refused gestures, NOT_FOUND an unknown target,
// and UNSUPPORTED an unknown intent. Every check runs before doc is
// modified, so a refused drop leaves doc unchanged.
func (r *Resolver) Apply(doc *layout.Document, t layout.ComponentType, in Intent) (Result, error) {
	n, err := layout.NewNode(r.id(), t)
	if err != nil {
		return Result{}, err
	}
	res := Result{ID: n.ID}

	switch in := in.(type) {
	case Canvas:
		res.Op = OpInsert
		return res, doc.Insert(n, in.At)
	case Edge:
		return r.edge(doc, n, in)
	case Beside:
		return r.beside(doc, n, in)
	case Interior:
		res.Op = OpAddToContainer
		return res, doc.AddToContainer(in.Container, n)
	case GridCell:
		res.Op = OpPlaceInCell
		return res, doc.PlaceInCell(in.Container, n, layout.Unit(in.Column))
	case Overflow:
		g, err := doc.GridByID(in.Container)
		if err != nil {
			return Result{}, err
		}
		if _, dup := doc.Find(n.ID); dup {
			return Result{}, errors.New(errors.ErrCodeInvalidInput, "component id %s is already in use", n.ID)
		}
		g.AddColumn(1)
		res.Op = OpAddColumn
		return res, g.Place(n, layout.Unit(g.ColumnCount()-1))
	case nil:
		return Result{}, errors.New(errors.ErrCodeInvalidInput, "no drop target")
	}
	return Result{}, errors.New(errors.ErrCodeUnsupported, "unsupported drop %T", in)
}

// edge inserts above or below a target. On the page grid the new component
// gets its own full-width row and every row at or below it moves down.
// Inside a stack it is inserted before or after the target.
func (r *Resolver) edge(doc *layout.Document, n *layout.Node, in Edge) (Result, error) {
	if in.Side != Above && in.Side != Below {
		return Result{}, errors.New(errors.ErrCodeInvalidInput, "edge drops go above or below, not %s", in.Side)
	}
	loc, ok := doc.Locate(in.Target)
	if !ok {
		return Result{}, errors.New(errors.ErrCodeNotFound, "component %s not found", in.Target)
	}
	if _, dup := doc.Find(n.ID); dup {
		return Result{}, errors.New(errors.ErrCodeInvalidInput, "component id %s is already in use", n.ID)
	}

	if loc.TopLevel() {
		row := doc.Items[loc.Index].At.Row
		if in.Side == Below {
			row++
		}
		at := layout.Absolute{Row: row, Column: 0, Span: pageSpan(doc)}
		if err := at.Validate(doc.Grid.Columns); err != nil {
			return Result{}, err
		}
		doc.ShiftRows(row)
		return Result{Op: OpInsertRow, ID: n.ID}, doc.Insert(n, at)
	}

	s, ok := loc.Parent.Element.(*layout.Stack)
	if !ok {
		return Result{}, errors.New(errors.ErrCodeInvalidPosition, "cannot insert above or below a grid cell; drop into an empty cell instead")
	}
	index := loc.Index
	if in.Side == Below {
		index++
	}
	return Result{Op: OpInsertInStack, ID: n.ID}, s.Insert(index, n)
}

// beside inserts left or right of a target. A target already in a grid gets
// a new neighbour column and every column becomes equal width. Any other
// target is replaced in its slot by a new two-column grid holding both.
func (r *Resolver) beside(doc *layout.Document, n *layout.Node, in Beside) (Result, error) {
	if in.Side != Left && in.Side != Right {
		return Result{}, errors.New(errors.ErrCodeInvalidInput, "side drops go left or right, not %s", in.Side)
	}
	loc, ok := doc.Locate(in.Target)
	if !ok {
		return Result{}, errors.New(errors.ErrCodeNotFound, "component %s not found", in.Target)
	}
	if _, dup := doc.Find(n.ID); dup {
		return Result{}, errors.New(errors.ErrCodeInvalidInput, "component id %s is already in use", n.ID)
	}

	if !loc.TopLevel() {
		if g, ok := loc.Parent.Element.(*layout.Grid); ok {
			return Result{Op: OpInsertBeside, ID: n.ID}, g.InsertBeside(in.Target, n, in.Side == Right)
		}
	}

	target, _ := doc.Find(in.Target)
	pair := []*layout.Node{n, target}
	if in.Side == Right {
		pair = []*layout.Node{target, n}
	}
	g := layout.DefaultGrid()
	g.Columns = []float64{1, 1}
	for i, child := range pair {
		g.Children = append(g.Children, layout.GridChild{Cell: layout.Unit(i), Node: child})
	}
	container := &layout.Node{ID: r.id(), Element: g}
	if _, dup := doc.Find(container.ID); dup || container.ID == n.ID {
		return Result{}, errors.New(errors.ErrCodeInvalidInput, "component id %s is already in use", container.ID)
	}
	if err := doc.Replace(in.Target, container); err != nil {
		return Result{}, err
	}
	return Result{Op: OpWrapBeside, ID: n.ID, Container: container.ID}, nil
}

func pageSpan(doc *layout.Document) int {
	if doc.Grid.Columns > 0 {
		return doc.Grid.Columns
	}
	return layout.PageColumns
}
