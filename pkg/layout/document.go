package layout

import (
	"cmp"
	"slices"

	"github.com/nathanaelcunningham/typst-pdftemplater/pkg/errors"
)

// GridConfig configures the page grid that top-level components sit on.
// It is distinct from the columns of any nested [Grid] container.
type GridConfig struct {
	Columns int     `json:"columns"`
	Gap     float64 `json:"gap"`
}

// DefaultGridConfig returns a 12-column page grid with a 16pt gap.
func DefaultGridConfig() GridConfig {
	return GridConfig{Columns: PageColumns, Gap: 16}
}

// Placed is a top-level component and its page grid position.
type Placed struct {
	At   Absolute
	Node *Node
}

// Components is the ordered list of top-level components. It marshals to
// the persisted component format.
type Components []Placed

// Document is the page: top-level components on the page grid.
type Document struct {
	Grid  GridConfig
	Items Components
}

// New returns an empty document on the default page grid.
func New() *Document {
	return &Document{Grid: DefaultGridConfig()}
}

// Location identifies the slot holding a node. Parent is nil for top-level
// nodes. Index addresses Document.Items, Grid.Children or Stack.Children.
type Location struct {
	Parent *Node
	Index  int
}

// TopLevel reports whether the location is on the page grid.
func (l Location) TopLevel() bool { return l.Parent == nil }

// Clone returns a deep copy of d.
func (d *Document) Clone() *Document {
	c := &Document{Grid: d.Grid, Items: make(Components, len(d.Items))}
	for i, it := range d.Items {
		c.Items[i] = Placed{At: it.At, Node: it.Node.Clone()}
	}
	return c
}

// Len returns the number of top-level components.
func (d *Document) Len() int { return len(d.Items) }

// Walk calls fn for every node in document order until fn returns false.
func (d *Document) Walk(fn func(*Node) bool) {
	for _, it := range d.Items {
		if !it.Node.Walk(fn) {
			return
		}
	}
}

// Find returns the node with id at any depth.
func (d *Document) Find(id string) (*Node, bool) {
	var found *Node
	d.Walk(func(n *Node) bool {
		if n.ID == id {
			found = n
			return false
		}
		return true
	})
	return found, found != nil
}

// Locate returns the slot holding the node with id.
func (d *Document) Locate(id string) (Location, bool) {
	for i, it := range d.Items {
		if it.Node.ID == id {
			return Location{Index: i}, true
		}
	}
	var (
		loc   Location
		found bool
	)
	d.Walk(func(n *Node) bool {
		switch e := n.Element.(type) {
		case *Grid:
			if i := e.indexOf(id); i >= 0 {
				loc, found = Location{Parent: n, Index: i}, true
			}
		case *Stack:
			if i := e.IndexOf(id); i >= 0 {
				loc, found = Location{Parent: n, Index: i}, true
			}
		}
		return !found
	})
	return loc, found
}

// PositionOf returns the position implied by the slot holding id.
func (d *Document) PositionOf(id string) (Position, bool) {
	loc, ok := d.Locate(id)
	if !ok {
		return nil, false
	}
	if loc.TopLevel() {
		return d.Items[loc.Index].At, true
	}
	switch e := loc.Parent.Element.(type) {
	case *Grid:
		return e.Children[loc.Index].Cell, true
	default:
		return Relative{Index: loc.Index}, true
	}
}

// Parent returns the container holding id, or nil if id is top-level.
func (d *Document) Parent(id string) (*Node, bool) {
	loc, ok := d.Locate(id)
	if !ok {
		return nil, false
	}
	return loc.Parent, true
}

// GridByID returns the grid container with id.
func (d *Document) GridByID(id string) (*Grid, error) {
	n, ok := d.Find(id)
	if !ok {
		return nil, errors.New(errors.ErrCodeNotFound, "container %s not found", id)
	}
	g, ok := n.Element.(*Grid)
	if !ok {
		return nil, errors.New(errors.ErrCodeInvalidInput, "%s is not a grid container", n)
	}
	return g, nil
}

// StackByID returns the stack container with id.
func (d *Document) StackByID(id string) (*Stack, error) {
	n, ok := d.Find(id)
	if !ok {
		return nil, errors.New(errors.ErrCodeNotFound, "container %s not found", id)
	}
	s, ok := n.Element.(*Stack)
	if !ok {
		return nil, errors.New(errors.ErrCodeInvalidInput, "%s is not a stack container", n)
	}
	return s, nil
}

// Sorted returns the top-level items ordered by row then column.
func (d *Document) Sorted() []Placed {
	out := slices.Clone(d.Items)
	slices.SortStableFunc(out, func(a, b Placed) int {
		return cmp.Or(cmp.Compare(a.At.Row, b.At.Row), cmp.Compare(a.At.Column, b.At.Column))
	})
	return out
}

// SetGrid replaces the page grid configuration. Every top-level position
// must still fit.
func (d *Document) SetGrid(cfg GridConfig) error {
	if cfg.Columns < 1 {
		return errors.New(errors.ErrCodeInvalidInput, "page grid needs at least one column")
	}
	if cfg.Gap < 0 {
		return errors.New(errors.ErrCodeInvalidInput, "page grid gap cannot be negative")
	}
	for _, it := range d.Items {
		if err := it.At.Validate(cfg.Columns); err != nil {
			return errors.Wrap(errors.ErrCodeInvalidPosition, err, "%s no longer fits the page grid", it.Node)
		}
	}
	d.Grid = cfg
	return nil
}

// checkNew rejects n if any id in its subtree is already in d.
func (d *Document) checkNew(n *Node) error {
	var dup string
	n.Walk(func(c *Node) bool {
		if _, ok := d.Find(c.ID); ok {
			dup = c.ID
			return false
		}
		return true
	})
	if dup != "" {
		return errors.New(errors.ErrCodeInvalidInput, "component id %s is already in use", dup)
	}
	return nil
}

// Insert adds n to the page grid at position at.
func (d *Document) Insert(n *Node, at Absolute) error {
	if err := at.Validate(d.Grid.Columns); err != nil {
		return err
	}
	if err := d.checkNew(n); err != nil {
		return err
	}
	d.Items = append(d.Items, Placed{At: at, Node: n})
	return nil
}

// Move repositions a top-level component.
func (d *Document) Move(id string, at Absolute) error {
	loc, ok := d.Locate(id)
	if !ok {
		return errors.New(errors.ErrCodeNotFound, "component %s not found", id)
	}
	if !loc.TopLevel() {
		return errors.New(errors.ErrCodeInvalidPosition, "component %s is inside a container", id)
	}
	if err := at.Validate(d.Grid.Columns); err != nil {
		return err
	}
	d.Items[loc.Index].At = at
	return nil
}

// ShiftRows moves every top-level component at or below row down one row.
// The threshold is fixed before any component moves.
func (d *Document) ShiftRows(row int) {
	for i := range d.Items {
		if d.Items[i].At.Row >= row {
			d.Items[i].At.Row++
		}
	}
}

// Update replaces the settings of the component with id. The element type
// must not change. Containers keep their children. The document stores a
// copy of e, so later edits to e do not reach it.
func (d *Document) Update(id string, e Element) error {
	n, ok := d.Find(id)
	if !ok {
		return errors.New(errors.ErrCodeNotFound, "component %s not found", id)
	}
	if e == nil || e.Type() != n.Type() {
		return errors.New(errors.ErrCodeInvalidInput, "cannot change %s into a different component type", n)
	}
	switch old := n.Element.(type) {
	case *Grid:
		next := e.(*Grid)
		if len(next.Columns) == 0 {
			return errors.New(errors.ErrCodeLastColumn, "a grid needs at least one column")
		}
		if slices.ContainsFunc(next.Columns, func(w float64) bool { return w <= 0 }) {
			return errors.New(errors.ErrCodeInvalidInput, "column width must be greater than zero")
		}
		for _, ch := range old.Children {
			if ch.Cell.End() > len(next.Columns) {
				return errors.New(errors.ErrCodeColumnOccupied, "%s occupies column %d", ch.Node, ch.Cell.End()-1)
			}
		}
		settings := next.clone().(*Grid)
		settings.Children = old.Children
		n.Element = settings
	case *Stack:
		settings := e.clone().(*Stack)
		settings.Children = old.Children
		n.Element = settings
	default:
		n.Element = e.clone()
	}
	return nil
}

// Remove detaches the component with id from wherever it sits.
func (d *Document) Remove(id string) error {
	loc, ok := d.Locate(id)
	if !ok {
		return errors.New(errors.ErrCodeNotFound, "component %s not found", id)
	}
	if loc.TopLevel() {
		d.Items = slices.Delete(d.Items, loc.Index, loc.Index+1)
		return nil
	}
	c, _ := loc.Parent.Container()
	c.Remove(id)
	return nil
}

// AddToContainer adds n at the next free slot of the container with id.
// A full grid container grows by one column.
func (d *Document) AddToContainer(containerID string, n *Node) error {
	parent, ok := d.Find(containerID)
	if !ok {
		return errors.New(errors.ErrCodeNotFound, "container %s not found", containerID)
	}
	if err := d.checkNew(n); err != nil {
		return err
	}
	switch e := parent.Element.(type) {
	case *Grid:
		e.Add(n)
	case *Stack:
		e.Add(n)
	default:
		return errors.New(errors.ErrCodeInvalidInput, "%s is not a container", parent)
	}
	return nil
}

// PlaceInCell seats n in an explicit cell of the grid container with id.
func (d *Document) PlaceInCell(containerID string, n *Node, c Cell) error {
	g, err := d.GridByID(containerID)
	if err != nil {
		return err
	}
	if err := d.checkNew(n); err != nil {
		return err
	}
	return g.Place(n, c)
}

// InsertInStack inserts n at index of the stack container with id.
func (d *Document) InsertInStack(containerID string, index int, n *Node) error {
	s, err := d.StackByID(containerID)
	if err != nil {
		return err
	}
	if err := d.checkNew(n); err != nil {
		return err
	}
	return s.Insert(index, n)
}

// Replace puts n into the slot of the component with id. The replaced
// component is detached.
func (d *Document) Replace(id string, n *Node) error {
	loc, ok := d.Locate(id)
	if !ok {
		return errors.New(errors.ErrCodeNotFound, "component %s not found", id)
	}
	switch {
	case loc.TopLevel():
		d.Items[loc.Index].Node = n
	default:
		switch e := loc.Parent.Element.(type) {
		case *Grid:
			e.Children[loc.Index].Node = n
		case *Stack:
			e.Children[loc.Index] = n
		}
	}
	return nil
}

// Wrap moves the top-level components ids into a new container of type t
// with id newID and returns the container node.
//
// The container takes the page position and item slot of ids[0]; the other
// wrapped components leave the page. Child order follows ids, not page
// order. A grid container gets one equal-width column per child and a stack
// container uses the palette defaults.
//
// Wrap checks everything before touching the document, so a refusal leaves
// it unchanged. It returns:
//
//   - INVALID_INPUT when t is not a container type, ids is empty or lists
//     an id twice, or newID is already in use
//   - NOT_FOUND when an id does not exist
//   - INVALID_POSITION when an id is nested inside a container
func (d *Document) Wrap(ids []string, t ComponentType, newID string) (*Node, error) {
	if !t.IsContainer() {
		return nil, errors.New(errors.ErrCodeInvalidInput, "%s is not a container type", t)
	}
	if len(ids) == 0 {
		return nil, errors.New(errors.ErrCodeInvalidInput, "nothing to wrap")
	}
	if _, ok := d.Find(newID); ok {
		return nil, errors.New(errors.ErrCodeInvalidInput, "component id %s is already in use", newID)
	}

	slots := make([]int, len(ids))
	nodes := make([]*Node, len(ids))
	for i, id := range ids {
		if slices.Contains(ids[:i], id) {
			return nil, errors.New(errors.ErrCodeInvalidInput, "component %s listed twice", id)
		}
		loc, ok := d.Locate(id)
		if !ok {
			return nil, errors.New(errors.ErrCodeNotFound, "component %s not found", id)
		}
		if !loc.TopLevel() {
			return nil, errors.New(errors.ErrCodeInvalidPosition, "component %s is inside a container", id)
		}
		slots[i] = loc.Index
		nodes[i] = d.Items[loc.Index].Node
	}

	var container *Node
	if t == TypeGrid {
		container = &Node{ID: newID, Element: newGridOf(nodes)}
	} else {
		s := DefaultStack()
		s.Children = nodes
		container = &Node{ID: newID, Element: s}
	}

	first := slots[0]
	at := d.Items[first].At
	items := make(Components, 0, len(d.Items)-len(ids)+1)
	for i, it := range d.Items {
		switch {
		case i == first:
			items = append(items, Placed{At: at, Node: container})
		case slices.Contains(slots, i):
		default:
			items = append(items, it)
		}
	}
	d.Items = items
	return container, nil
}

// Unwrap replaces a top-level container with its children, which become
// top-level components in the container's item slot, in container order
// (column order for grids).
//
// Every promoted child takes the container's former page position, so they
// overlap until they are moved. An empty container simply disappears. Only
// the container node is removed; nested containers among the children keep
// their own children.
//
// It returns NOT_FOUND for an unknown id, INVALID_POSITION for a nested
// container and INVALID_INPUT when the component is not a container. In
// each case the document is unchanged.
func (d *Document) Unwrap(containerID string) error {
	loc, ok := d.Locate(containerID)
	if !ok {
		return errors.New(errors.ErrCodeNotFound, "container %s not found", containerID)
	}
	if !loc.TopLevel() {
		return errors.New(errors.ErrCodeInvalidPosition, "container %s is nested in another container", containerID)
	}
	placed := d.Items[loc.Index]
	c, ok := placed.Node.Container()
	if !ok {
		return errors.New(errors.ErrCodeInvalidInput, "%s is not a container", placed.Node)
	}
	promoted := make([]Placed, 0, c.Len())
	for _, n := range c.Nodes() {
		promoted = append(promoted, Placed{At: placed.At, Node: n})
	}
	d.Items = slices.Replace(d.Items, loc.Index, loc.Index+1, promoted...)
	return nil
}
