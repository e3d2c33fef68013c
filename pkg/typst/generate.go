package typst

import (
	"fmt"
	"strings"

	"github.com/nathanaelcunningham/typst-pdftemplater/pkg/layout"
)

// Generate returns the Typst markup for doc. Blocks are separated by a
// blank line and the result ends with a newline. An empty document yields
// the empty string.
func Generate(doc *layout.Document) string {
	var blocks []string
	for _, row := range rows(doc.Sorted()) {
		blocks = append(blocks, rowBlocks(doc.Grid, row)...)
	}
	if len(blocks) == 0 {
		return ""
	}
	return strings.Join(blocks, "\n\n") + "\n"
}

// Pages splits the top-level components, in reading order, at each page
// break. Page breaks themselves are not included. A document always has at
// least one page.
func Pages(doc *layout.Document) [][]layout.Placed {
	pages := [][]layout.Placed{nil}
	for _, it := range doc.Sorted() {
		if it.Node.Type() == layout.TypePageBreak {
			pages = append(pages, nil)
			continue
		}
		pages[len(pages)-1] = append(pages[len(pages)-1], it)
	}
	return pages
}

// rows groups sorted components by row.
func rows(items []layout.Placed) [][]layout.Placed {
	var out [][]layout.Placed
	for i, it := range items {
		if i == 0 || it.At.Row != items[i-1].At.Row {
			out = append(out, nil)
		}
		out[len(out)-1] = append(out[len(out)-1], it)
	}
	return out
}

// rowBlocks emits one row. Page breaks stand alone, and components that
// overlap an earlier component in the same row start a new page grid so no
// two cells collide.
func rowBlocks(cfg layout.GridConfig, row []layout.Placed) []string {
	var (
		blocks []string
		group  []layout.Placed
	)
	flush := func() {
		if len(group) > 0 {
			blocks = append(blocks, rowBlock(cfg, group))
			group = nil
		}
	}
	for _, it := range row {
		if it.Node.Type() == layout.TypePageBreak {
			flush()
			blocks = append(blocks, GenerateNode(it.Node))
			continue
		}
		if overlapsAny(group, it.At) {
			flush()
		}
		group = append(group, it)
	}
	flush()
	return blocks
}

func rowBlock(cfg layout.GridConfig, group []layout.Placed) string {
	if len(group) == 1 && group[0].At.Column == 0 && group[0].At.Span >= cfg.Columns {
		return GenerateNode(group[0].Node)
	}
	args := []string{
		fmt.Sprintf("columns: (1fr,) * %d", cfg.Columns),
		"column-gutter: " + pt(cfg.Gap),
	}
	for _, it := range group {
		args = append(args, pageCell(it.At, block(GenerateNode(it.Node))))
	}
	return call("grid", args)
}

func pageCell(at layout.Absolute, body string) string {
	return fmt.Sprintf("grid.cell(x: %d, colspan: %d)%s", at.Column, at.Span, body)
}

func overlapsAny(group []layout.Placed, at layout.Absolute) bool {
	for _, g := range group {
		if at.Column < g.At.Column+g.At.Span && g.At.Column < at.Column+at.Span {
			return true
		}
	}
	return false
}
