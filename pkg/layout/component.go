package layout

import (
	"fmt"
	"slices"

	"github.com/nathanaelcunningham/typst-pdftemplater/pkg/errors"
)

// ComponentType tags the kind of a component.
type ComponentType string

// Component types.
const (
	TypeText      ComponentType = "text"
	TypeImage     ComponentType = "image"
	TypeTable     ComponentType = "table"
	TypeHeading   ComponentType = "heading"
	TypeSpacer    ComponentType = "spacer"
	TypePageBreak ComponentType = "page-break"
	TypeGrid      ComponentType = "grid-container"
	TypeStack     ComponentType = "stack-container"
)

// ComponentTypes lists every component type in palette order.
var ComponentTypes = []ComponentType{
	TypeText, TypeHeading, TypeImage, TypeTable, TypeSpacer, TypePageBreak, TypeGrid, TypeStack,
}

// Valid reports whether t is a known component type.
func (t ComponentType) Valid() bool {
	return slices.Contains(ComponentTypes, t)
}

// IsContainer reports whether components of type t hold children.
func (t ComponentType) IsContainer() bool {
	return t == TypeGrid || t == TypeStack
}

// ParseComponentType converts a wire tag into a ComponentType.
func ParseComponentType(s string) (ComponentType, error) {
	t := ComponentType(s)
	if !t.Valid() {
		return "", errors.New(errors.ErrCodeInvalidInput, "unknown component type %q", s)
	}
	return t, nil
}

// Alignment is the horizontal alignment of text, headings, images and stack children.
type Alignment string

const (
	AlignLeft   Alignment = "left"
	AlignCenter Alignment = "center"
	AlignRight  Alignment = "right"
)

// GridAlignment is the vertical alignment of grid container children.
type GridAlignment string

const (
	GridAlignStart   GridAlignment = "start"
	GridAlignCenter  GridAlignment = "center"
	GridAlignEnd     GridAlignment = "end"
	GridAlignStretch GridAlignment = "stretch"
)

// Direction is the flow of a stack or spacer.
type Direction string

const (
	Vertical   Direction = "vertical"
	Horizontal Direction = "horizontal"
)

// FontWeight of text content.
type FontWeight string

const (
	WeightNormal FontWeight = "normal"
	WeightBold   FontWeight = "bold"
)

// PageParity selects the page a page break continues on.
type PageParity string

const (
	ParityNone PageParity = "none"
	ParityOdd  PageParity = "odd"
	ParityEven PageParity = "even"
)

// Length is a size in points. The zero value means auto.
type Length float64

// Auto leaves sizing to the typesetter.
const Auto Length = 0

// IsAuto reports whether l defers sizing to the typesetter.
func (l Length) IsAuto() bool { return l <= 0 }

// Element is the type-specific payload of a component. It is implemented by
// [*Text], [*Image], [*Table], [*Heading], [*Spacer], [*PageBreak], [*Grid]
// and [*Stack].
type Element interface {
	Type() ComponentType
	clone() Element
}

// Text is a run of styled text. Content may contain variable placeholders.
type Text struct {
	Content    string     `json:"content"`
	FontSize   float64    `json:"fontSize"`
	FontWeight FontWeight `json:"fontWeight"`
	Alignment  Alignment  `json:"alignment"`
	Color      string     `json:"color"`
}

// Image is an image reference. Source may be a variable placeholder.
type Image struct {
	Source    string    `json:"source"`
	Width     Length    `json:"width"`
	Height    Length    `json:"height"`
	Alignment Alignment `json:"alignment"`
	Alt       string    `json:"alt"`
}

// Table is a header row followed by data rows.
type Table struct {
	Columns int        `json:"columns"`
	Headers []string   `json:"headers"`
	Rows    [][]string `json:"rows"`
	Borders bool       `json:"borders"`
}

// Heading is text sized by level 1-6.
type Heading struct {
	Content   string    `json:"content"`
	Level     int       `json:"level"`
	Alignment Alignment `json:"alignment"`
}

// Spacer is blank space of Amount points.
type Spacer struct {
	Direction Direction `json:"direction"`
	Amount    float64   `json:"amount"`
}

// PageBreak ends the current page.
type PageBreak struct {
	Weak bool       `json:"weak"`
	To   PageParity `json:"to"`
}

func (*Text) Type() ComponentType      { return TypeText }
func (*Image) Type() ComponentType     { return TypeImage }
func (*Table) Type() ComponentType     { return TypeTable }
func (*Heading) Type() ComponentType   { return TypeHeading }
func (*Spacer) Type() ComponentType    { return TypeSpacer }
func (*PageBreak) Type() ComponentType { return TypePageBreak }

func (e *Text) clone() Element      { c := *e; return &c }
func (e *Image) clone() Element     { c := *e; return &c }
func (e *Heading) clone() Element   { c := *e; return &c }
func (e *Spacer) clone() Element    { c := *e; return &c }
func (e *PageBreak) clone() Element { c := *e; return &c }

func (e *Table) clone() Element {
	c := *e
	c.Headers = slices.Clone(e.Headers)
	c.Rows = make([][]string, len(e.Rows))
	for i, r := range e.Rows {
		c.Rows[i] = slices.Clone(r)
	}
	return &c
}

// DefaultText returns the palette defaults for a text component.
func DefaultText() *Text {
	return &Text{Content: "Text", FontSize: 12, FontWeight: WeightNormal, Alignment: AlignLeft, Color: "#000000"}
}

// DefaultImage returns the palette defaults for an image component.
func DefaultImage() *Image {
	return &Image{Source: "", Width: Auto, Height: Auto, Alignment: AlignCenter, Alt: "Image"}
}

// DefaultTable returns the palette defaults for a table component.
func DefaultTable() *Table {
	return &Table{
		Columns: 3,
		Headers: []string{"Column 1", "Column 2", "Column 3"},
		Rows:    [][]string{{"Row 1, Col 1", "Row 1, Col 2", "Row 1, Col 3"}},
		Borders: true,
	}
}

// DefaultHeading returns the palette defaults for a heading component.
func DefaultHeading() *Heading {
	return &Heading{Content: "Heading", Level: 1, Alignment: AlignLeft}
}

// DefaultSpacer returns the palette defaults for a spacer component.
func DefaultSpacer() *Spacer {
	return &Spacer{Direction: Vertical, Amount: 12}
}

// DefaultPageBreak returns the palette defaults for a page break.
func DefaultPageBreak() *PageBreak {
	return &PageBreak{Weak: false, To: ParityNone}
}

// DefaultGrid returns an empty single-column grid container.
func DefaultGrid() *Grid {
	return &Grid{Columns: []float64{1}, Gap: 16, Alignment: GridAlignStart}
}

// DefaultStack returns an empty vertical stack container.
func DefaultStack() *Stack {
	return &Stack{Direction: Vertical, Spacing: 8, Alignment: AlignLeft}
}

// NewElement returns the palette defaults for t. Containers start empty.
func NewElement(t ComponentType) (Element, error) {
	switch t {
	case TypeText:
		return DefaultText(), nil
	case TypeImage:
		return DefaultImage(), nil
	case TypeTable:
		return DefaultTable(), nil
	case TypeHeading:
		return DefaultHeading(), nil
	case TypeSpacer:
		return DefaultSpacer(), nil
	case TypePageBreak:
		return DefaultPageBreak(), nil
	case TypeGrid:
		return DefaultGrid(), nil
	case TypeStack:
		return DefaultStack(), nil
	}
	return nil, errors.New(errors.ErrCodeInvalidInput, "unknown component type %q", t)
}

// Node is a component in the tree: an id plus its typed element.
type Node struct {
	ID      string
	Element Element
}

// NewNode creates a node of type t with palette defaults.
func NewNode(id string, t ComponentType) (*Node, error) {
	e, err := NewElement(t)
	if err != nil {
		return nil, err
	}
	return &Node{ID: id, Element: e}, nil
}

// Type returns the component type of n.
func (n *Node) Type() ComponentType { return n.Element.Type() }

// Container returns the node's container and true if n is a grid or stack.
func (n *Node) Container() (Container, bool) {
	c, ok := n.Element.(Container)
	return c, ok
}

// Clone returns a deep copy of n including all descendants.
func (n *Node) Clone() *Node {
	return &Node{ID: n.ID, Element: n.Element.clone()}
}

// String returns a short description used in logs.
func (n *Node) String() string {
	return fmt.Sprintf("%s(%s)", n.Type(), n.ID)
}

// Walk calls fn for n and every descendant in document order. Walking stops
// early if fn returns false.
func (n *Node) Walk(fn func(*Node) bool) bool {
	if !fn(n) {
		return false
	}
	if c, ok := n.Container(); ok {
		for _, child := range c.Nodes() {
			if !child.Walk(fn) {
				return false
			}
		}
	}
	return true
}

// Container is implemented by [*Grid] and [*Stack].
type Container interface {
	Element
	// Nodes returns the children in generation order.
	Nodes() []*Node
	// Remove detaches the child with id and reports whether it was present.
	Remove(id string) bool
	// Len returns the number of children.
	Len() int
}
