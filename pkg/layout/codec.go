package layout

import (
	"bytes"
	"encoding/json"
	"fmt"
	"slices"
	"strconv"

	"github.com/nathanaelcunningham/typst-pdftemplater/pkg/errors"
)

// Position tags in the persisted format.
const (
	tagAbsolute = "absolute"
	tagRelative = "relative"
	tagGrid     = "grid"
)

// wireComponent is the persisted form of a node. Children is present, and
// possibly empty, only for containers.
type wireComponent struct {
	ID       string           `json:"id"`
	Type     ComponentType    `json:"type"`
	Position json.RawMessage  `json:"position"`
	Props    json.RawMessage  `json:"props"`
	Children *[]wireComponent `json:"children,omitempty"`
}

type wireAbsolute struct {
	Type   string `json:"type"`
	Row    int    `json:"row"`
	Column int    `json:"column"`
	Span   int    `json:"span"`
}

type wireRelative struct {
	Type  string `json:"type"`
	Index int    `json:"index"`
}

type wireCell struct {
	Type        string `json:"type"`
	ColumnIndex int    `json:"columnIndex"`
	Span        int    `json:"span"`
}

// wirePosition accepts any of the three tagged shapes.
type wirePosition struct {
	Type        string `json:"type"`
	Row         int    `json:"row"`
	Column      int    `json:"column"`
	Span        int    `json:"span"`
	Index       int    `json:"index"`
	ColumnIndex int    `json:"columnIndex"`
}

// MarshalJSON writes the components in the persisted format.
func (c Components) MarshalJSON() ([]byte, error) {
	out := make([]wireComponent, 0, len(c))
	for _, it := range c {
		w, err := encodeNode(it.Node, wireAbsolute{Type: tagAbsolute, Row: it.At.Row, Column: it.At.Column, Span: it.At.Span})
		if err != nil {
			return nil, err
		}
		out = append(out, w)
	}
	return json.Marshal(out)
}

// UnmarshalJSON reads components in the persisted format. Every position
// variant must match the slot it appears in.
func (c *Components) UnmarshalJSON(data []byte) error {
	var in []wireComponent
	if err := json.Unmarshal(data, &in); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode components")
	}
	items := make(Components, 0, len(in))
	for _, w := range in {
		pos, err := decodePosition(w)
		if err != nil {
			return err
		}
		at, ok := pos.(Absolute)
		if !ok {
			return errors.New(errors.ErrCodeInvalidFormat, "top-level component %s must have an absolute position", w.ID)
		}
		n, err := decodeNode(w)
		if err != nil {
			return err
		}
		items = append(items, Placed{At: at, Node: n})
	}
	*c = items
	return nil
}

func encodeNode(n *Node, pos any) (wireComponent, error) {
	posData, err := json.Marshal(pos)
	if err != nil {
		return wireComponent{}, err
	}
	props, err := json.Marshal(n.Element)
	if err != nil {
		return wireComponent{}, fmt.Errorf("encode props of %s: %w", n, err)
	}
	w := wireComponent{ID: n.ID, Type: n.Type(), Position: posData, Props: props}

	var children []wireComponent
	switch e := n.Element.(type) {
	case *Grid:
		children = make([]wireComponent, 0, len(e.Children))
		for _, ch := range e.Children {
			cw, err := encodeNode(ch.Node, wireCell{Type: tagGrid, ColumnIndex: ch.Cell.ColumnIndex, Span: ch.Cell.Span})
			if err != nil {
				return wireComponent{}, err
			}
			children = append(children, cw)
		}
		w.Children = &children
	case *Stack:
		children = make([]wireComponent, 0, len(e.Children))
		for i, ch := range e.Children {
			cw, err := encodeNode(ch, wireRelative{Type: tagRelative, Index: i})
			if err != nil {
				return wireComponent{}, err
			}
			children = append(children, cw)
		}
		w.Children = &children
	}
	return w, nil
}

func decodePosition(w wireComponent) (Position, error) {
	var p wirePosition
	if len(w.Position) == 0 {
		return nil, errors.New(errors.ErrCodeInvalidFormat, "component %s has no position", w.ID)
	}
	if err := json.Unmarshal(w.Position, &p); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode position of %s", w.ID)
	}
	switch p.Type {
	case tagAbsolute:
		return Absolute{Row: p.Row, Column: p.Column, Span: p.Span}, nil
	case tagRelative:
		return Relative{Index: p.Index}, nil
	case tagGrid:
		return Cell{ColumnIndex: p.ColumnIndex, Span: p.Span}, nil
	}
	return nil, errors.New(errors.ErrCodeInvalidFormat, "component %s has unknown position type %q", w.ID, p.Type)
}

func decodeNode(w wireComponent) (*Node, error) {
	if w.ID == "" {
		return nil, errors.New(errors.ErrCodeInvalidFormat, "component of type %q has no id", w.Type)
	}
	e, err := NewElement(w.Type)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "component %s", w.ID)
	}
	if len(w.Props) > 0 && !bytes.Equal(w.Props, []byte("null")) {
		if err := json.Unmarshal(w.Props, e); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode props of %s", w.ID)
		}
	}
	n := &Node{ID: w.ID, Element: e}

	if !w.Type.IsContainer() {
		if w.Children != nil && len(*w.Children) > 0 {
			return nil, errors.New(errors.ErrCodeInvalidFormat, "%s cannot have children", n)
		}
		return n, nil
	}
	if w.Children == nil {
		return n, nil
	}

	switch e := e.(type) {
	case *Grid:
		for _, cw := range *w.Children {
			pos, err := decodePosition(cw)
			if err != nil {
				return nil, err
			}
			cell, ok := pos.(Cell)
			if !ok {
				return nil, errors.New(errors.ErrCodeInvalidFormat, "child %s of %s must have a grid position", cw.ID, n)
			}
			child, err := decodeNode(cw)
			if err != nil {
				return nil, err
			}
			e.Children = append(e.Children, GridChild{Cell: cell, Node: child})
		}
	case *Stack:
		type indexed struct {
			index int
			node  *Node
		}
		var kids []indexed
		for _, cw := range *w.Children {
			pos, err := decodePosition(cw)
			if err != nil {
				return nil, err
			}
			rel, ok := pos.(Relative)
			if !ok {
				return nil, errors.New(errors.ErrCodeInvalidFormat, "child %s of %s must have a relative position", cw.ID, n)
			}
			child, err := decodeNode(cw)
			if err != nil {
				return nil, err
			}
			kids = append(kids, indexed{rel.Index, child})
		}
		slices.SortStableFunc(kids, func(a, b indexed) int { return a.index - b.index })
		for _, k := range kids {
			e.Children = append(e.Children, k.node)
		}
	}
	return n, nil
}

// MarshalJSON writes "auto" for automatic lengths and a number otherwise.
func (l Length) MarshalJSON() ([]byte, error) {
	if l.IsAuto() {
		return []byte(`"auto"`), nil
	}
	return json.Marshal(float64(l))
}

// UnmarshalJSON accepts "auto", a number or a numeric string.
func (l *Length) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		if s == "auto" || s == "" {
			*l = Auto
			return nil
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return fmt.Errorf("invalid length %q", s)
		}
		*l = Length(f)
		return nil
	}
	var f float64
	if err := json.Unmarshal(data, &f); err != nil {
		return fmt.Errorf("invalid length %s", data)
	}
	*l = Length(f)
	return nil
}

// MarshalDocument writes the page grid and components of d.
func MarshalDocument(d *Document) ([]byte, error) {
	return json.Marshal(struct {
		Grid       GridConfig `json:"grid"`
		Components Components `json:"components"`
	}{d.Grid, d.Items})
}

// UnmarshalDocument reads a document written by [MarshalDocument]. Missing
// grid settings fall back to the defaults.
func UnmarshalDocument(data []byte) (*Document, error) {
	doc := struct {
		Grid       GridConfig `json:"grid"`
		Components Components `json:"components"`
	}{Grid: DefaultGridConfig()}
	if err := json.Unmarshal(data, &doc); err != nil {
		if errors.GetCode(err) != "" {
			return nil, err
		}
		return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode document")
	}
	return &Document{Grid: doc.Grid, Items: doc.Components}, nil
}
