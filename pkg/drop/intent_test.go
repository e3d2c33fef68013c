package drop

import (
	"testing"

	"github.com/nathanaelcunningham/typst-pdftemplater/pkg/layout"
)

func TestParseIntent(t *testing.T) {
	at := layout.FullWidth(4)
	cell := 2

	tests := []struct {
		tag  string
		ctx  Context
		want Intent
	}{
		{TagCanvasEmpty, Context{Position: &at}, Canvas{At: at}},
		{TagCanvasNewRow, Context{Position: &at}, Canvas{At: at}},
		{TagComponentAbove, Context{TargetID: "x"}, Edge{Target: "x", Side: Above}},
		{TagComponentBelow, Context{TargetID: "x"}, Edge{Target: "x", Side: Below}},
		{TagComponentLeft, Context{TargetID: "x"}, Beside{Target: "x", Side: Left}},
		{TagComponentRight, Context{TargetID: "x"}, Beside{Target: "x", Side: Right}},
		{TagContainerInterior, Context{ContainerID: "c"}, Interior{Container: "c"}},
		{TagGridCell, Context{ContainerID: "c", Cell: &cell}, GridCell{Container: "c", Column: 2}},
		{TagGridOverflow, Context{ContainerID: "c"}, Overflow{Container: "c"}},
	}

	for _, tt := range tests {
		t.Run(tt.tag, func(t *testing.T) {
			got, err := ParseIntent(tt.tag, tt.ctx)
			if err != nil {
				t.Fatalf("ParseIntent: %v", err)
			}
			if got != tt.want {
				t.Errorf("ParseIntent = %#v, want %#v", got, tt.want)
			}
		})
	}
}

func TestParseIntentRejectsIncompleteContext(t *testing.T) {
	tests := []struct {
		tag string
		ctx Context
	}{
		{TagCanvasEmpty, Context{}},
		{TagComponentAbove, Context{ContainerID: "c"}},
		{TagComponentRight, Context{}},
		{TagContainerInterior, Context{TargetID: "x"}},
		{TagGridCell, Context{ContainerID: "c"}},
		{TagGridOverflow, Context{}},
		{"sidebar", Context{TargetID: "x"}},
	}
	for _, tt := range tests {
		if _, err := ParseIntent(tt.tag, tt.ctx); err == nil {
			t.Errorf("ParseIntent(%q, %+v) succeeded", tt.tag, tt.ctx)
		}
	}
}
