package typst

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/nathanaelcunningham/typst-pdftemplater/pkg/layout"
)

// Heading sizes in points by level, derived from the editor's pixel sizes.
var headingSizes = [...]float64{24, 18, 15, 13.5, 12, 10.5}

// GenerateNode returns the markup for n and its descendants.
func GenerateNode(n *layout.Node) string {
	switch e := n.Element.(type) {
	case *layout.Text:
		return Text(e)
	case *layout.Image:
		return Image(e)
	case *layout.Table:
		return Table(e)
	case *layout.Heading:
		return Heading(e)
	case *layout.Spacer:
		return Spacer(e)
	case *layout.PageBreak:
		return PageBreak(e)
	case *layout.Grid:
		return GridContainer(e)
	case *layout.Stack:
		return StackContainer(e)
	}
	return ""
}

// Text returns a #text directive. Only non-default weight and color are set.
func Text(e *layout.Text) string {
	params := []string{"size: " + pt(e.FontSize)}
	if e.FontWeight == layout.WeightBold {
		params = append(params, `weight: "bold"`)
	}
	if e.Color != "" && !strings.EqualFold(e.Color, "#000000") {
		params = append(params, fmt.Sprintf("fill: rgb(%s)", quote(e.Color)))
	}
	code := fmt.Sprintf("#text(%s)[%s]", strings.Join(params, ", "), lineBreaks(e.Content))
	return align(e.Alignment, code)
}

// Heading returns sized, weighted text for levels 1-6.
func Heading(e *layout.Heading) string {
	level := min(max(e.Level, 1), len(headingSizes))
	weight := "bold"
	if level > 2 {
		weight = "semibold"
	}
	code := fmt.Sprintf("#text(size: %s, weight: %q)[%s]", pt(headingSizes[level-1]), weight, lineBreaks(e.Content))
	return align(e.Alignment, code)
}

// Image returns an #image directive. Auto dimensions are omitted.
func Image(e *layout.Image) string {
	var params []string
	if !e.Width.IsAuto() {
		params = append(params, "width: "+pt(float64(e.Width)))
	}
	if !e.Height.IsAuto() {
		params = append(params, "height: "+pt(float64(e.Height)))
	}
	extra := ""
	if len(params) > 0 {
		extra = ", " + strings.Join(params, ", ")
	}
	return align(e.Alignment, fmt.Sprintf("#image(%s%s)", quote(e.Source), extra))
}

// Table returns a #table directive with headers then rows. Cell values are
// inserted verbatim.
func Table(e *layout.Table) string {
	params := []string{fmt.Sprintf("columns: %d", e.Columns)}
	if !e.Borders {
		params = append(params, "stroke: none")
	}

	var b strings.Builder
	b.WriteString("#table(\n  ")
	b.WriteString(strings.Join(params, ", "))
	b.WriteString(",\n")
	if len(e.Headers) > 0 {
		b.WriteString("  " + cells(e.Headers) + ",\n")
	}
	for _, row := range e.Rows {
		if len(row) == 0 {
			continue
		}
		b.WriteString("  " + cells(row) + ",\n")
	}
	b.WriteString(")")
	return b.String()
}

// Spacer returns vertical or horizontal blank space.
func Spacer(e *layout.Spacer) string {
	if e.Direction == layout.Horizontal {
		return fmt.Sprintf("#h(%s)", pt(e.Amount))
	}
	return fmt.Sprintf("#v(%s)", pt(e.Amount))
}

// PageBreak returns a #pagebreak directive.
func PageBreak(e *layout.PageBreak) string {
	var params []string
	if e.Weak {
		params = append(params, "weak: true")
	}
	if e.To == layout.ParityOdd || e.To == layout.ParityEven {
		params = append(params, fmt.Sprintf("to: %q", string(e.To)))
	}
	return fmt.Sprintf("#pagebreak(%s)", strings.Join(params, ", "))
}

// GridContainer returns a #grid directive with one fractional column per
// weight and the children in column order.
func GridContainer(g *layout.Grid) string {
	weights := make([]string, len(g.Columns))
	for i, w := range g.Columns {
		weights[i] = num(w) + "fr"
	}

	args := []string{
		"columns: " + tuple(weights),
		"column-gutter: " + pt(g.Gap),
	}
	if g.RowGap != nil {
		args = append(args, "row-gutter: "+pt(*g.RowGap))
	}
	if a := gridAlign(g.Alignment); a != "" {
		args = append(args, "align: "+a)
	}

	ordered := g.Ordered()
	sequential := true
	for i, ch := range ordered {
		if ch.Cell.ColumnIndex != i || ch.Cell.Span != 1 {
			sequential = false
			break
		}
	}
	for _, ch := range ordered {
		body := block(GenerateNode(ch.Node))
		if sequential {
			args = append(args, body)
			continue
		}
		args = append(args, cell(ch.Cell.ColumnIndex, ch.Cell.Span, body))
	}
	return call("grid", args)
}

// StackContainer returns a #stack directive. Children are wrapped in
// align(...) when the stack is not left aligned.
func StackContainer(s *layout.Stack) string {
	dir := "ttb"
	if s.Direction == layout.Horizontal {
		dir = "ltr"
	}
	args := []string{"dir: " + dir, "spacing: " + pt(s.Spacing)}
	for _, n := range s.Children {
		body := block(GenerateNode(n))
		if s.Alignment == layout.AlignCenter || s.Alignment == layout.AlignRight {
			body = fmt.Sprintf("align(%s)%s", s.Alignment, body)
		}
		args = append(args, body)
	}
	return call("stack", args)
}

// call formats a multi-line function call with one argument per line.
func call(name string, args []string) string {
	var b strings.Builder
	b.WriteString("#" + name + "(\n")
	for _, a := range args {
		b.WriteString(indent(a) + ",\n")
	}
	b.WriteString(")")
	return b.String()
}

// cell places body in an explicit cell of the first grid row.
func cell(x, span int, body string) string {
	if span > 1 {
		return fmt.Sprintf("grid.cell(x: %d, y: 0, colspan: %d)%s", x, span, body)
	}
	return fmt.Sprintf("grid.cell(x: %d, y: 0)%s", x, body)
}

func block(code string) string {
	return "[" + code + "]"
}

func align(a layout.Alignment, code string) string {
	if a == "" || a == layout.AlignLeft {
		return code
	}
	return fmt.Sprintf("#align(%s)[\n%s\n]", a, indent(code))
}

func gridAlign(a layout.GridAlignment) string {
	switch a {
	case layout.GridAlignCenter:
		return "horizon"
	case layout.GridAlignEnd:
		return "bottom"
	}
	return ""
}

func cells(values []string) string {
	out := make([]string, len(values))
	for i, v := range values {
		out[i] = "[" + v + "]"
	}
	return strings.Join(out, ", ")
}

// tuple renders an array literal. A single element keeps its trailing comma.
func tuple(items []string) string {
	if len(items) == 1 {
		return "(" + items[0] + ",)"
	}
	return "(" + strings.Join(items, ", ") + ")"
}

func indent(s string) string {
	return "  " + strings.ReplaceAll(s, "\n", "\n  ")
}

// lineBreaks turns newlines in content into Typst forced line breaks.
func lineBreaks(s string) string {
	return strings.ReplaceAll(s, "\n", "\\\n")
}

func num(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

func pt(f float64) string {
	return num(f) + "pt"
}

func quote(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `"`, `\"`)
	return `"` + r.Replace(s) + `"`
}
