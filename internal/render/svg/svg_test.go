package svg

import (
	"bytes"
	"encoding/xml"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"brainmap/internal/layout"
	"brainmap/internal/model"
	"brainmap/internal/scene"
	"brainmap/internal/viewport"
)

func render(t *testing.T, in scene.Input) string {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, Renderer{}.Render(scene.Build(in), &buf))
	return buf.String()
}

func wellFormed(t *testing.T, doc string) {
	t.Helper()
	dec := xml.NewDecoder(strings.NewReader(doc))
	for {
		_, err := dec.Token()
		if err == io.EOF {
			return
		}
		require.NoError(t, err)
	}
}

func input() scene.Input {
	vp := viewport.New()
	vp.SetRect(viewport.Rect{Width: 640, Height: 480})
	vp.CenterOn(0, 0)
	nodes := []model.Node{
		{ID: "root", Label: "Tom & Jerry <3", Size: model.SizeXL},
		{ID: "kid", X: 150, ParentNodeID: "root", Layer: 1, Shape: model.ShapeDiamond, Label: "kid", LinkedFolderID: "f"},
		{ID: "pill", X: -150, Layer: 1, Shape: model.ShapePill, Label: "pill"},
	}
	conns := []model.Connection{
		{ID: "k1", SourceNodeID: "kid", TargetNodeID: "pill", Style: model.StyleDotted, Label: "a->b"},
	}
	return scene.Input{
		Viewport:     *vp,
		Graph:        layout.Build(nodes, conns, layout.Options{}),
		CenterNodeID: "root",
		HoverEdgeID:  "k1",
		ShowMinimap:  true,
		Field:        scene.NewField(3),
	}
}

func TestRender(t *testing.T) {
	doc := render(t, input())
	wellFormed(t, doc)

	assert.True(t, strings.HasPrefix(doc, "<svg width=\"640\" height=\"480\""))
	assert.Equal(t, 3, strings.Count(doc, "data-node="))
	assert.Equal(t, 2, strings.Count(doc, "data-edge="))
	assert.Contains(t, doc, "feGaussianBlur")
	assert.Contains(t, doc, "Tom &amp; Jerry &lt;3")
	assert.Contains(t, doc, `stroke-dasharray="2 4"`)
	assert.Contains(t, doc, "translate(320.00 240.00) scale(1.0000)")
	assert.Contains(t, doc, "class=\"minimap\"")
	assert.Contains(t, doc, ">100%</text>")
	assert.Contains(t, doc, "fill=\"#ef4444\"", "hovered connection shows its delete handle")
	assert.Contains(t, doc, "<polygon", "diamond")
	assert.Contains(t, doc, "rx=\"24.00\"", "pill corner is half its height")
}

func TestRenderEditing(t *testing.T) {
	in := input()
	in.EditingID = "kid"
	in.Editing = &scene.EditOverlay{Value: "new <name>", Selected: true}
	doc := render(t, in)
	wellFormed(t, doc)
	assert.Contains(t, doc, "new &lt;name&gt;")
	assert.Contains(t, doc, `data-selected="true"`)
}

func TestRenderEmpty(t *testing.T) {
	err := Renderer{}.Render(scene.Build(scene.Input{}), io.Discard)
	assert.Error(t, err)
}

type failWriter struct{}

func (failWriter) Write([]byte) (int, error) { return 0, io.ErrClosedPipe }

func TestRenderWriteError(t *testing.T) {
	err := Renderer{}.Render(scene.Build(input()), failWriter{})
	assert.ErrorIs(t, err, io.ErrClosedPipe)
}
