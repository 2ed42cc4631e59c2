package cli

import (
	"image"
	"strings"
	"testing"

	"github.com/matzehuels/stakr/pkg/pipeline"
	"github.com/matzehuels/stakr/pkg/raster"
	"github.com/matzehuels/stakr/pkg/stack"
)

func TestFrameTable(t *testing.T) {
	obj := stack.Canvas{Image: raster.New(12, 20), Anchor: image.Pt(6, 17), Anchored: true}
	shd := stack.Canvas{Image: raster.New(15, 14)}
	out := frameTable([]pipeline.Frame{{Angle: 36, Object: obj, Shadow: shd}}).Render()

	for _, want := range []string{"Angle", "36°", "12x20", "(6, 17)", "15x14", "—"} {
		if !strings.Contains(out, want) {
			t.Errorf("table missing %q:\n%s", want, out)
		}
	}
}

func TestAnchorCell(t *testing.T) {
	if got := anchorCell(stack.Canvas{}); got != "—" {
		t.Errorf("unanchored = %q", got)
	}
	c := stack.Canvas{Anchor: image.Pt(3, 4), Anchored: true}
	if got := anchorCell(c); got != "(3, 4)" {
		t.Errorf("anchored = %q", got)
	}
}
