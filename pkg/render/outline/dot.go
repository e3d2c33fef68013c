package outline

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/nathanaelcunningham/typst-pdftemplater/pkg/layout"
)

const pageID = "__page__"

// Options configures outline rendering.
type Options struct {
	// Detailed adds a short summary of each component's properties.
	Detailed bool
}

// ToDOT converts a document to Graphviz DOT.
func ToDOT(doc *layout.Document, opts Options) string {
	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	buf.WriteString("  rankdir=TB;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fontsize=14, margin=\"0.2,0.1\"];\n")
	buf.WriteString("  edge [fontsize=11, fontcolor=gray40];\n")
	buf.WriteString("  ranksep=0.5;\n")
	buf.WriteString("  nodesep=0.3;\n")
	buf.WriteString("\n")

	fmt.Fprintf(&buf, "  %q [label=%q, shape=folder, fillcolor=lightyellow];\n", pageID,
		fmt.Sprintf("page\n%d columns, %spt gap", doc.Grid.Columns, num(doc.Grid.Gap)))

	var edges []string
	for _, it := range doc.Sorted() {
		edges = append(edges, edge(pageID, it.Node.ID, fmt.Sprintf("row %d, col %d+%d", it.At.Row, it.At.Column, it.At.Span)))
		writeNode(&buf, it.Node, opts, &edges)
	}

	buf.WriteString("\n")
	for _, e := range edges {
		buf.WriteString(e)
	}
	buf.WriteString("}\n")
	return buf.String()
}

func writeNode(buf *bytes.Buffer, n *layout.Node, opts Options, edges *[]string) {
	fmt.Fprintf(buf, "  %q [%s];\n", n.ID, strings.Join(fmtAttrs(n, fmtLabel(n, opts.Detailed)), ", "))

	switch e := n.Element.(type) {
	case *layout.Grid:
		for _, ch := range e.Ordered() {
			*edges = append(*edges, edge(n.ID, ch.Node.ID, fmt.Sprintf("cell %d+%d", ch.Cell.ColumnIndex, ch.Cell.Span)))
			writeNode(buf, ch.Node, opts, edges)
		}
	case *layout.Stack:
		for i, ch := range e.Children {
			*edges = append(*edges, edge(n.ID, ch.ID, "#"+strconv.Itoa(i)))
			writeNode(buf, ch, opts, edges)
		}
	}
}

func edge(from, to, label string) string {
	return fmt.Sprintf("  %q -> %q [label=%q];\n", from, to, label)
}

func fmtLabel(n *layout.Node, detailed bool) string {
	label := string(n.Type()) + "\n" + n.ID
	if !detailed {
		return label
	}
	if s := summary(n.Element); s != "" {
		label += "\n" + s
	}
	return label
}

// summary is a one-line description of the element's main properties.
func summary(e layout.Element) string {
	switch e := e.(type) {
	case *layout.Text:
		return fmt.Sprintf("%spt %q", num(e.FontSize), truncate(e.Content, 24))
	case *layout.Heading:
		return fmt.Sprintf("h%d %q", e.Level, truncate(e.Content, 24))
	case *layout.Image:
		return truncate(e.Source, 32)
	case *layout.Table:
		return fmt.Sprintf("%d cols, %d rows", e.Columns, len(e.Rows))
	case *layout.Spacer:
		return fmt.Sprintf("%s %spt", e.Direction, num(e.Amount))
	case *layout.PageBreak:
		if e.Weak {
			return "weak"
		}
	case *layout.Grid:
		parts := make([]string, len(e.Columns))
		for i, w := range e.Columns {
			parts[i] = num(w) + "fr"
		}
		return strings.Join(parts, " ")
	case *layout.Stack:
		return fmt.Sprintf("%s, %spt", e.Direction, num(e.Spacing))
	}
	return ""
}

func fmtAttrs(n *layout.Node, label string) []string {
	attrs := []string{fmt.Sprintf("label=%q", label)}
	switch n.Type() {
	case layout.TypeGrid, layout.TypeStack:
		attrs = append(attrs, "fillcolor=lightblue")
	case layout.TypePageBreak:
		attrs = append(attrs, "style=\"rounded,filled,dashed\"", "fillcolor=lightgrey")
	}
	return attrs
}

func truncate(s string, n int) string {
	r := []rune(strings.ReplaceAll(s, "\n", " "))
	if len(r) <= n {
		return string(r)
	}
	return string(r[:n-1]) + "…"
}

func num(v float64) string { return strconv.FormatFloat(v, 'f', -1, 64) }

// RenderSVG renders DOT to SVG using Graphviz.
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return normalizeViewBox(buf.Bytes()), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

// normalizeViewBox replaces the root svg tag with one whose viewBox starts at
// the origin and whose size matches it.
func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}

	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}

	tag := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`, w, h, w, h)
	return svgTagRe.ReplaceAll(svg, []byte(tag))
}
