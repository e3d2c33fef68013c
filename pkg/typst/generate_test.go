package typst

import (
	"testing"

	"github.com/nathanaelcunningham/typst-pdftemplater/pkg/layout"
)

func docOf(t *testing.T, items ...layout.Placed) *layout.Document {
	t.Helper()
	d := layout.New()
	for _, it := range items {
		if err := d.Insert(it.Node, it.At); err != nil {
			t.Fatalf("Insert(%s): %v", it.Node, err)
		}
	}
	return d
}

func at(row, col, span int) layout.Absolute {
	return layout.Absolute{Row: row, Column: col, Span: span}
}

func TestGenerateEmpty(t *testing.T) {
	if got := Generate(layout.New()); got != "" {
		t.Errorf("Generate(empty) = %q, want empty", got)
	}
}

func TestGenerateRows(t *testing.T) {
	tests := []struct {
		name  string
		items []layout.Placed
		want  string
	}{
		{
			name:  "full width row emitted directly",
			items: []layout.Placed{{At: at(0, 0, 12), Node: textNode("a", "A")}},
			want:  "#text(size: 12pt)[A]\n",
		},
		{
			name: "partial rows use the page grid",
			items: []layout.Placed{
				{At: at(1, 0, 12), Node: textNode("c", "C")},
				{At: at(0, 6, 6), Node: textNode("b", "B")},
				{At: at(0, 0, 6), Node: textNode("a", "A")},
			},
			want: "#grid(\n" +
				"  columns: (1fr,) * 12,\n" +
				"  column-gutter: 16pt,\n" +
				"  grid.cell(x: 0, colspan: 6)[#text(size: 12pt)[A]],\n" +
				"  grid.cell(x: 6, colspan: 6)[#text(size: 12pt)[B]],\n" +
				")\n" +
				"\n" +
				"#text(size: 12pt)[C]\n",
		},
		{
			name:  "narrow single item",
			items: []layout.Placed{{At: at(0, 3, 4), Node: textNode("a", "A")}},
			want: "#grid(\n" +
				"  columns: (1fr,) * 12,\n" +
				"  column-gutter: 16pt,\n" +
				"  grid.cell(x: 3, colspan: 4)[#text(size: 12pt)[A]],\n" +
				")\n",
		},
		{
			name: "overlapping items become separate blocks",
			items: []layout.Placed{
				{At: at(0, 0, 12), Node: textNode("a", "A")},
				{At: at(0, 0, 12), Node: textNode("b", "B")},
			},
			want: "#text(size: 12pt)[A]\n\n#text(size: 12pt)[B]\n",
		},
		{
			name: "page break stands alone",
			items: []layout.Placed{
				{At: at(0, 0, 12), Node: textNode("a", "A")},
				{At: at(1, 0, 12), Node: node("pb", layout.DefaultPageBreak())},
				{At: at(2, 0, 12), Node: textNode("b", "B")},
			},
			want: "#text(size: 12pt)[A]\n\n#pagebreak()\n\n#text(size: 12pt)[B]\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Generate(docOf(t, tt.items...))
			if got != tt.want {
				t.Errorf("got:\n%s\nwant:\n%s", got, tt.want)
			}
		})
	}
}

func TestGenerateIsDeterministic(t *testing.T) {
	d := docOf(t,
		layout.Placed{At: at(0, 0, 4), Node: textNode("a", "A")},
		layout.Placed{At: at(0, 4, 8), Node: textNode("b", "B")},
		layout.Placed{At: at(2, 0, 12), Node: node("s", layout.DefaultSpacer())},
	)
	first := Generate(d)
	for range 5 {
		if got := Generate(d.Clone()); got != first {
			t.Fatalf("output changed between runs:\n%s\nvs\n%s", got, first)
		}
	}
}

func TestGenerateUsesPageGap(t *testing.T) {
	d := docOf(t, layout.Placed{At: at(0, 0, 6), Node: textNode("a", "A")})
	if err := d.SetGrid(layout.GridConfig{Columns: 12, Gap: 24}); err != nil {
		t.Fatal(err)
	}
	want := "#grid(\n" +
		"  columns: (1fr,) * 12,\n" +
		"  column-gutter: 24pt,\n" +
		"  grid.cell(x: 0, colspan: 6)[#text(size: 12pt)[A]],\n" +
		")\n"
	if got := Generate(d); got != want {
		t.Errorf("got:\n%s\nwant:\n%s", got, want)
	}
}

func TestPages(t *testing.T) {
	d := docOf(t,
		layout.Placed{At: at(0, 0, 12), Node: textNode("a", "A")},
		layout.Placed{At: at(1, 0, 12), Node: node("pb", layout.DefaultPageBreak())},
		layout.Placed{At: at(2, 0, 6), Node: textNode("b", "B")},
		layout.Placed{At: at(2, 6, 6), Node: textNode("c", "C")},
	)
	pages := Pages(d)
	if len(pages) != 2 {
		t.Fatalf("got %d pages, want 2", len(pages))
	}
	if len(pages[0]) != 1 || pages[0][0].Node.ID != "a" {
		t.Errorf("page 1 = %v", pages[0])
	}
	if len(pages[1]) != 2 || pages[1][0].Node.ID != "b" || pages[1][1].Node.ID != "c" {
		t.Errorf("page 2 = %v", pages[1])
	}

	if got := Pages(layout.New()); len(got) != 1 || len(got[0]) != 0 {
		t.Errorf("Pages(empty) = %v, want one empty page", got)
	}
}
