// Package drop routes a palette drop onto the layout tree.
//
// A drop is described by an [Intent]: where the dragged component landed,
// carrying exactly the data that placement needs. [ParseIntent] builds an
// intent from the drop-zone tags the editor canvas emits, and
// [Resolver.Apply] creates the new component and performs the matching
// layout mutation.
package drop

import (
	"github.com/nathanaelcunningham/typst-pdftemplater/pkg/errors"
	"github.com/nathanaelcunningham/typst-pdftemplater/pkg/layout"
)

// Intent is one of [Canvas], [Edge], [Beside], [Interior], [GridCell] or
// [Overflow].
type Intent interface {
	isIntent()
}

// Side names the edge of a target component a drop landed on.
type Side string

const (
	Above Side = "above"
	Below Side = "below"
	Left  Side = "left"
	Right Side = "right"
)

// Canvas drops a component on the page grid at an explicit position.
type Canvas struct {
	At layout.Absolute
}

// Edge drops a component above or below Target.
type Edge struct {
	Target string
	Side   Side
}

// Beside drops a component to the left or right of Target.
type Beside struct {
	Target string
	Side   Side
}

// Interior drops a component into the next free slot of Container.
type Interior struct {
	Container string
}

// GridCell drops a component into an explicit column of a grid container.
type GridCell struct {
	Container string
	Column    int
}

// Overflow drops a component past the last column of a full grid container.
type Overflow struct {
	Container string
}

func (Canvas) isIntent()   {}
func (Edge) isIntent()     {}
func (Beside) isIntent()   {}
func (Interior) isIntent() {}
func (GridCell) isIntent() {}
func (Overflow) isIntent() {}

// Drop-zone tags emitted by the editor canvas.
const (
	TagCanvasEmpty       = "canvas-empty"
	TagCanvasNewRow      = "canvas-new-row"
	TagComponentAbove    = "component-above"
	TagComponentBelow    = "component-below"
	TagComponentLeft     = "component-left"
	TagComponentRight    = "component-right"
	TagContainerInterior = "container-interior"
	TagGridCell          = "grid-cell"
	TagGridOverflow      = "grid-overflow"
)

// Context is the data attached to a drop zone. Which fields are required
// depends on the tag.
type Context struct {
	Position    *layout.Absolute
	TargetID    string
	ContainerID string
	Cell        *int
}

// ParseIntent converts a drop-zone tag and its context into an Intent.
func ParseIntent(tag string, ctx Context) (Intent, error) {
	switch tag {
	case TagCanvasEmpty, TagCanvasNewRow:
		if ctx.Position == nil {
			return nil, missing(tag, "position")
		}
		return Canvas{At: *ctx.Position}, nil
	case TagComponentAbove, TagComponentBelow:
		if ctx.TargetID == "" {
			return nil, missing(tag, "target id")
		}
		side := Above
		if tag == TagComponentBelow {
			side = Below
		}
		return Edge{Target: ctx.TargetID, Side: side}, nil
	case TagComponentLeft, TagComponentRight:
		if ctx.TargetID == "" {
			return nil, missing(tag, "target id")
		}
		side := Left
		if tag == TagComponentRight {
			side = Right
		}
		return Beside{Target: ctx.TargetID, Side: side}, nil
	case TagContainerInterior:
		if ctx.ContainerID == "" {
			return nil, missing(tag, "container id")
		}
		return Interior{Container: ctx.ContainerID}, nil
	case TagGridCell:
		if ctx.ContainerID == "" {
			return nil, missing(tag, "container id")
		}
		if ctx.Cell == nil {
			return nil, missing(tag, "cell index")
		}
		return GridCell{Container: ctx.ContainerID, Column: *ctx.Cell}, nil
	case TagGridOverflow:
		if ctx.ContainerID == "" {
			return nil, missing(tag, "container id")
		}
		return Overflow{Container: ctx.ContainerID}, nil
	}
	return nil, errors.New(errors.ErrCodeInvalidInput, "unknown drop zone %q", tag)
}

func missing(tag, what string) error {
	return errors.New(errors.ErrCodeInvalidInput, "drop zone %s needs a %s", tag, what)
}
