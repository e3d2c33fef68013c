package layout

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/nathanaelcunningham/typst-pdftemplater/pkg/errors"
)

func sampleDocument() *Document {
	rowGap := 4.0
	img := DefaultImage()
	img.Source = "{{.Logo}}"
	img.Width = 120

	inner := DefaultStack()
	inner.Direction = Horizontal
	inner.Alignment = AlignCenter
	inner.Children = []*Node{leaf("s-a"), {ID: "s-b", Element: DefaultSpacer()}}

	g := DefaultGrid()
	g.Columns = []float64{1, 2.5}
	g.RowGap = &rowGap
	g.Children = []GridChild{
		{Cell: Unit(1), Node: &Node{ID: "img", Element: img}},
		{Cell: Unit(0), Node: &Node{ID: "inner", Element: inner}},
	}

	return &Document{
		Grid: GridConfig{Columns: 12, Gap: 8},
		Items: Components{
			{At: FullWidth(0), Node: &Node{ID: "h", Element: DefaultHeading()}},
			{At: Absolute{Row: 1, Column: 2, Span: 8}, Node: &Node{ID: "g", Element: g}},
			{At: FullWidth(2), Node: &Node{ID: "tbl", Element: DefaultTable()}},
			{At: FullWidth(3), Node: &Node{ID: "pb", Element: &PageBreak{Weak: true, To: ParityOdd}}},
			{At: FullWidth(4), Node: &Node{ID: "empty", Element: DefaultStack()}},
		},
	}
}

func TestDocumentRoundTrip(t *testing.T) {
	want := sampleDocument()
	data, err := MarshalDocument(want)
	if err != nil {
		t.Fatalf("MarshalDocument: %v", err)
	}
	got, err := UnmarshalDocument(data)
	if err != nil {
		t.Fatalf("UnmarshalDocument: %v", err)
	}
	if diff := cmp.Diff(want, got, cmpopts.EquateEmpty()); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestZeroContainerSettingsRoundTrip(t *testing.T) {
	want := &Document{
		Grid: GridConfig{Columns: 12, Gap: 8},
		Items: Components{
			{At: FullWidth(0), Node: &Node{ID: "g", Element: &Grid{Columns: []float64{1}, Gap: 4}}},
			{At: FullWidth(1), Node: &Node{ID: "s", Element: &Stack{Direction: Vertical, Spacing: 2}}},
		},
	}
	if err := want.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
	data, err := MarshalDocument(want)
	if err != nil {
		t.Fatalf("MarshalDocument: %v", err)
	}
	got, err := UnmarshalDocument(data)
	if err != nil {
		t.Fatalf("UnmarshalDocument: %v", err)
	}
	if diff := cmp.Diff(want, got, cmpopts.EquateEmpty()); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestComponentsWireFormat(t *testing.T) {
	data, err := json.Marshal(sampleDocument().Items)
	if err != nil {
		t.Fatal(err)
	}
	var raw []map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		t.Fatal(err)
	}

	heading := raw[0]
	if heading["type"] != "heading" {
		t.Errorf("type = %v", heading["type"])
	}
	if _, ok := heading["children"]; ok {
		t.Error("leaf component has a children key")
	}
	pos := heading["position"].(map[string]any)
	if pos["type"] != "absolute" || pos["span"] != float64(12) {
		t.Errorf("position = %v", pos)
	}

	grid := raw[1]
	children := grid["children"].([]any)
	imgPos := children[0].(map[string]any)["position"].(map[string]any)
	if imgPos["type"] != "grid" || imgPos["columnIndex"] != float64(1) {
		t.Errorf("grid child position = %v", imgPos)
	}
	props := children[0].(map[string]any)["props"].(map[string]any)
	if props["width"] != float64(120) || props["height"] != "auto" {
		t.Errorf("image props = %v", props)
	}

	empty := raw[4]
	if kids, ok := empty["children"].([]any); !ok || len(kids) != 0 {
		t.Errorf("empty container children = %#v, want []", empty["children"])
	}
}

func TestUnmarshalOrdersStackByIndex(t *testing.T) {
	data := `[{"id":"s","type":"stack-container","position":{"type":"absolute","row":0,"column":0,"span":12},
		"props":{"direction":"vertical","spacing":8},
		"children":[
			{"id":"b","type":"text","position":{"type":"relative","index":1},"props":{"content":"B"}},
			{"id":"a","type":"text","position":{"type":"relative","index":0},"props":{"content":"A"}}
		]}]`

	var items Components
	if err := json.Unmarshal([]byte(data), &items); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	s := items[0].Node.Element.(*Stack)
	if got := stackIDs(s); got[0] != "a" || got[1] != "b" {
		t.Errorf("order = %v, want [a b]", got)
	}
	text := s.Children[0].Element.(*Text)
	if text.Content != "A" || text.FontSize != 12 || text.Color != "#000000" {
		t.Errorf("missing props should keep defaults, got %+v", text)
	}
}

func TestUnmarshalRejectsMismatchedPositions(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{
			name: "relative at top level",
			data: `[{"id":"a","type":"text","position":{"type":"relative","index":0},"props":{}}]`,
		},
		{
			name: "absolute in grid",
			data: `[{"id":"g","type":"grid-container","position":{"type":"absolute","row":0,"column":0,"span":12},"props":{"columns":[1]},
				"children":[{"id":"a","type":"text","position":{"type":"absolute","row":0,"column":0,"span":12},"props":{}}]}]`,
		},
		{
			name: "grid cell in stack",
			data: `[{"id":"s","type":"stack-container","position":{"type":"absolute","row":0,"column":0,"span":12},"props":{},
				"children":[{"id":"a","type":"text","position":{"type":"grid","columnIndex":0,"span":1},"props":{}}]}]`,
		},
		{
			name: "leaf with children",
			data: `[{"id":"a","type":"text","position":{"type":"absolute","row":0,"column":0,"span":12},"props":{},
				"children":[{"id":"b","type":"text","position":{"type":"relative","index":0},"props":{}}]}]`,
		},
		{
			name: "unknown type",
			data: `[{"id":"a","type":"chart","position":{"type":"absolute","row":0,"column":0,"span":12},"props":{}}]`,
		},
		{
			name: "unknown position",
			data: `[{"id":"a","type":"text","position":{"type":"floating"},"props":{}}]`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var items Components
			err := json.Unmarshal([]byte(tt.data), &items)
			if !errors.Is(err, errors.ErrCodeInvalidFormat) {
				t.Errorf("Unmarshal = %v, want %s", err, errors.ErrCodeInvalidFormat)
			}
		})
	}
}

func TestLengthJSON(t *testing.T) {
	tests := []struct {
		in   string
		want Length
	}{
		{`"auto"`, Auto},
		{`150`, 150},
		{`"72.5"`, 72.5},
	}
	for _, tt := range tests {
		var l Length
		if err := json.Unmarshal([]byte(tt.in), &l); err != nil {
			t.Errorf("Unmarshal(%s): %v", tt.in, err)
			continue
		}
		if l != tt.want {
			t.Errorf("Unmarshal(%s) = %v, want %v", tt.in, l, tt.want)
		}
	}
	var l Length
	if err := json.Unmarshal([]byte(`"wide"`), &l); err == nil || !strings.Contains(err.Error(), "wide") {
		t.Errorf("Unmarshal(wide) = %v", err)
	}
}
