// Package outline draws a template's component tree as a Graphviz diagram.
//
// [ToDOT] produces DOT text with one box per component: the page at the
// root, top-level components ordered by row and column, and container
// children beneath their container. Edges are labelled with the child's
// position (page cell, grid cell or stack index). [RenderSVG] renders DOT
// in-process with [github.com/goccy/go-graphviz].
//
//	dot := outline.ToDOT(doc, outline.Options{Detailed: true})
//	svg, err := outline.RenderSVG(ctx, dot)
package outline
