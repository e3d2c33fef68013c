// Package typst generates Typst markup from a layout document.
//
// Generation is a pure function of the layout tree and page grid: the same
// document always yields byte-identical markup. Variable placeholders such
// as {{.CustomerName}} pass through unchanged; the compile service fills
// them in.
//
// # Per-component Forms
//
//	text        #text(size: 12pt, weight: "bold", fill: rgb("#333333"))[Hello]
//	heading     #text(size: 24pt, weight: "bold")[Title]
//	image       #image("logo.png", width: 120pt)
//	table       #table(columns: 3, stroke: none, [h1], ...)
//	spacer      #v(12pt) or #h(12pt)
//	page-break  #pagebreak(weak: true, to: "odd")
//	grid        #grid(columns: (1fr, 2fr), column-gutter: 16pt, [child], ...)
//	stack       #stack(dir: ttb, spacing: 8pt, [child], ...)
//
// Text, heading and image output is wrapped in #align(...)[...] unless the
// alignment is left.
//
// # Page Layout
//
// [Generate] emits top-level components row by row. A row holding a single
// full-width component is emitted as is. Any other row becomes a page-wide
// grid with one column per page grid column, and each component is placed
// with grid.cell(x: column, colspan: span).
package typst
