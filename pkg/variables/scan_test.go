package variables

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/nathanaelcunningham/typst-pdftemplater/pkg/layout"
)

func TestScan(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []Segment
	}{
		{name: "empty", text: "", want: nil},
		{name: "literal", text: "Hello", want: []Segment{{Text: "Hello"}}},
		{
			name: "placeholder in text",
			text: "Dear {{.CustomerName}},",
			want: []Segment{
				{Text: "Dear "},
				{Text: "{{.CustomerName}}", Path: "CustomerName"},
				{Text: ","},
			},
		},
		{
			name: "spaces and nested path",
			text: "{{ .Order.Total }}",
			want: []Segment{{Text: "{{ .Order.Total }}", Path: "Order.Total"}},
		},
		{
			name: "adjacent placeholders",
			text: "{{.A}}{{.B}}",
			want: []Segment{{Text: "{{.A}}", Path: "A"}, {Text: "{{.B}}", Path: "B"}},
		},
		{
			name: "stray braces stay literal",
			text: "a { b {{ c }} {{.X",
			want: []Segment{{Text: "a { b {{ c }} {{.X"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Scan(tt.text)
			if err != nil {
				t.Fatalf("Scan: %v", err)
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("Scan(%q) mismatch (-want +got):\n%s", tt.text, diff)
			}
		})
	}
}

func referenceDoc(t *testing.T) *layout.Document {
	t.Helper()
	doc := layout.New()

	text := layout.DefaultText()
	text.Content = "Dear {{.CustomerName}}, order {{.OrderNumber}}"
	img := layout.DefaultImage()
	img.Source = "{{.Logo}}"
	table := layout.DefaultTable()
	table.Rows = [][]string{{"{{.Item}}", "1", "{{.CustomerName}}"}}

	stack := layout.DefaultStack()
	stack.Children = []*layout.Node{{ID: "img", Element: img}}

	for i, n := range []*layout.Node{
		{ID: "t", Element: text},
		{ID: "s", Element: stack},
		{ID: "tbl", Element: table},
	} {
		if err := doc.Insert(n, layout.FullWidth(i)); err != nil {
			t.Fatal(err)
		}
	}
	return doc
}

func TestReferences(t *testing.T) {
	got := References(referenceDoc(t))
	want := []string{"CustomerName", "Item", "Logo", "OrderNumber"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("References mismatch (-want +got):\n%s", diff)
	}
}

func TestDangling(t *testing.T) {
	got := Dangling(referenceDoc(t), Defaults())
	want := []string{"Item", "Logo"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Dangling mismatch (-want +got):\n%s", diff)
	}
}
