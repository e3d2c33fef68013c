// Package layout models a page layout as a tree of typed components.
//
// # Overview
//
// A [Document] is the page: an ordered list of top-level components, each
// placed on a 12-column page grid with an [Absolute] position. Two container
// types nest further content:
//
//   - [Grid] lays its children out in fractional columns. Every child sits in
//     a single-row [Cell] (column index and span); siblings never overlap.
//   - [Stack] lays its children out one after another, vertically or
//     horizontally. A child's [Relative] index is its order in the stack.
//
// # Positions Follow Slots
//
// A node does not carry its own position. The position is a property of the
// slot that holds it: [Placed] for top-level items, [GridChild] for grid
// children and plain slice order for stack children. A stack child with an
// [Absolute] position, or a grid child without a [Cell], cannot be expressed.
// [Document.PositionOf] reports the derived position for callers that need
// the tagged form.
//
// # Mutations
//
// Container operations ([Grid.RemoveColumn], [Grid.SetChildCell],
// [Document.Wrap], ...) are all-or-nothing. A refused operation returns an
// error from package errors whose message is suitable for display and leaves
// the tree untouched.
//
// # Serialization
//
// [Components] marshals to the persisted component format, where every
// component carries an explicit position object tagged "absolute",
// "relative" or "grid". Decoding rejects a position whose tag does not match
// the slot it appears in. [MarshalDocument] and [UnmarshalDocument] add the
// page grid settings.
package layout
