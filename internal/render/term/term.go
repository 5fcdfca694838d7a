// Package term draws scenes as terminal cells.
package term

import (
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"brainmap/internal/scene"
)

const (
	// CellWidth and CellHeight are the screen pixels one terminal cell
	// stands for.
	CellWidth  = 8.0
	CellHeight = 16.0
)

// Renderer draws scenes on a cell grid. With Plain set no colour escapes are
// written.
type Renderer struct {
	Plain bool
}

var _ scene.Renderer = Renderer{}

// Size returns the pixel size of a cols x rows terminal area.
func Size(cols, rows int) (float64, float64) {
	return float64(cols) * CellWidth, float64(rows) * CellHeight
}

// Cell returns the screen pixel at the centre of the cell (col, row).
func Cell(col, row int) (float64, float64) {
	return (float64(col) + 0.5) * CellWidth, (float64(row) + 0.5) * CellHeight
}

// Render writes the lines of s into w.
func (r Renderer) Render(s *scene.Scene, w io.Writer) error {
	for _, line := range r.Lines(s) {
		if _, err := io.WriteString(w, line+"\n"); err != nil {
			return fmt.Errorf("write cells: %w", err)
		}
	}
	return nil
}

type style struct {
	fg, bg string
	bold   bool
}

type grid struct {
	cells  [][]rune
	styles [][]style
	width  int
	height int
}

func newGrid(width, height int) *grid {
	g := &grid{width: width, height: height}
	g.cells = make([][]rune, height)
	g.styles = make([][]style, height)
	for i := range g.cells {
		g.cells[i] = make([]rune, width)
		g.styles[i] = make([]style, width)
		for j := range g.cells[i] {
			g.cells[i][j] = ' '
		}
	}
	return g
}

func (g *grid) set(x, y int, r rune, st style) {
	if y < 0 || y >= g.height || x < 0 || x >= g.width {
		return
	}
	if st.bg == "" {
		st.bg = g.styles[y][x].bg
	}
	g.cells[y][x] = r
	g.styles[y][x] = st
}

func (g *grid) text(x, y int, s string, st style) {
	for i, r := range []rune(s) {
		g.set(x+i, y, r, st)
	}
}

// Lines draws s and returns one string per terminal row.
func (r Renderer) Lines(s *scene.Scene) []string {
	width := int(math.Ceil(s.Width / CellWidth))
	height := int(math.Ceil(s.Height / CellHeight))
	if width < 1 {
		width = 1
	}
	if height < 1 {
		height = 1
	}
	d := &drawer{g: newGrid(width, height), s: s}

	for _, dot := range s.Dots {
		if dot.Opacity > 0.12 {
			d.g.set(int(dot.X/CellWidth), int(dot.Y/CellHeight), '·', style{fg: "#334155"})
		}
	}

	// Connections first so nodes cover their ends
	for i := range s.Edges {
		d.edge(&s.Edges[i])
	}
	for i := range s.Nodes {
		d.node(&s.Nodes[i])
	}
	if s.Minimap != nil {
		d.minimap(s.Minimap)
	}
	d.controls()

	return d.g.lines(r.Plain)
}

// lines applies styles, starting a new styled run only where the style
// changes.
func (g *grid) lines(plain bool) []string {
	result := make([]string, g.height)
	for i, row := range g.cells {
		if plain {
			result[i] = string(row)
			continue
		}
		var line strings.Builder
		start := 0
		for j := 1; j <= len(row); j++ {
			if j < len(row) && g.styles[i][j] == g.styles[i][start] {
				continue
			}
			line.WriteString(render(g.styles[i][start], string(row[start:j])))
			start = j
		}
		result[i] = line.String()
	}
	return result
}

func render(st style, s string) string {
	if st == (style{}) {
		return s
	}
	ls := lipgloss.NewStyle()
	if st.fg != "" {
		ls = ls.Foreground(lipgloss.Color(st.fg))
	}
	if st.bg != "" {
		ls = ls.Background(lipgloss.Color(st.bg))
	}
	if st.bold {
		ls = ls.Bold(true)
	}
	return ls.Render(s)
}

type drawer struct {
	g *grid
	s *scene.Scene
}

// cell maps a canvas point to a grid cell.
func (d *drawer) cell(x, y float64) (int, int) {
	vp := d.s.Viewport
	z := vp.Zoom
	if z <= 0 {
		z = 1
	}
	sx, sy := x*z+vp.PanX, y*z+vp.PanY
	return int(math.Floor(sx / CellWidth)), int(math.Floor(sy / CellHeight))
}

// canvasAt maps the centre of a grid cell back to canvas space.
func (d *drawer) canvasAt(col, row int) (float64, float64) {
	vp := d.s.Viewport
	z := vp.Zoom
	if z <= 0 {
		z = 1
	}
	sx, sy := Cell(col, row)
	return (sx - vp.PanX) / z, (sy - vp.PanY) / z
}

func (d *drawer) edge(e *scene.EdgeShape) {
	glyph := '·'
	if e.Hovered {
		glyph = '•'
	}
	st := style{fg: e.Color}

	// Enough samples to touch every cell along the curve
	x0, y0 := d.cell(e.Curve.Start.X, e.Curve.Start.Y)
	x1, y1 := d.cell(e.Curve.End.X, e.Curve.End.Y)
	steps := 2 * (abs(x1-x0) + abs(y1-y0) + 1)
	period := dashPeriod(e.Dash)
	for i, p := range e.Curve.Samples(steps) {
		if period > 0 && (i/period)%2 == 1 {
			continue
		}
		x, y := d.cell(p.X, p.Y)
		d.g.set(x, y, glyph, st)
	}

	if e.Particle != nil {
		x, y := d.cell(e.Particle.X, e.Particle.Y)
		d.g.set(x, y, '●', style{fg: scene.Lighten(e.Color, 0.4)})
	}
	if e.Label != "" {
		mid := e.Curve.At(0.5)
		x, y := d.cell(mid.X, mid.Y)
		d.g.text(x-len([]rune(e.Label))/2, y-1, e.Label, style{fg: scene.LabelColor})
	}
	if h := e.DeleteHandle; h != nil {
		x, y := d.cell(h.X, h.Y)
		d.g.set(x, y, '×', style{fg: scene.LabelColor, bg: "#ef4444", bold: true})
	}
}

func dashPeriod(dash []float64) int {
	if len(dash) == 0 {
		return 0
	}
	if dash[0] < 4 {
		return 1
	}
	return 2
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

// fill paints every cell whose centre lies inside p.
func (d *drawer) fill(p scene.Path, r rune, st style, skip func(x, y float64) bool) int {
	hw, hh := p.Extent()
	minX, minY := d.cell(p.CX-hw, p.CY-hh)
	maxX, maxY := d.cell(p.CX+hw, p.CY+hh)
	painted := 0
	for row := minY; row <= maxY; row++ {
		for col := minX; col <= maxX; col++ {
			x, y := d.canvasAt(col, row)
			if !p.Contains(x, y) || (skip != nil && skip(x, y)) {
				continue
			}
			d.g.set(col, row, r, st)
			painted++
		}
	}
	return painted
}

func (d *drawer) node(n *scene.NodeShape) {
	if a := n.Aura; a != nil {
		aura := scene.ShapePath("", a.X, a.Y, a.Radii[0])
		d.fill(aura, '░', style{fg: a.Color}, n.Path.Contains)
	}
	for _, ring := range []*scene.Ring{n.Source, n.Select} {
		if ring != nil {
			d.fill(ring.Path, '┄', style{fg: ring.Color}, n.Path.Contains)
		}
	}

	bg := n.Accent
	if n.Hovered || n.Dragging {
		bg = n.FillInner
	}
	cx, cy := d.cell(n.X, n.Y)
	if d.fill(n.Path, ' ', style{bg: bg}, nil) == 0 {
		d.g.set(cx, cy, '●', style{fg: n.Accent})
	}

	label := style{fg: scene.LabelColor, bg: bg, bold: true}
	if e := n.Editing; e != nil {
		value := e.Value + "▌"
		st := style{fg: scene.LabelColor, bg: scene.BadgeColor}
		if e.Selected {
			st = style{fg: scene.BadgeColor, bg: scene.LabelColor}
		}
		d.g.text(cx-len([]rune(value))/2, cy, value, st)
	} else if n.Label != "" {
		d.g.text(cx-len([]rune(n.Label))/2, cy, n.Label, label)
	}

	if b := n.LinkBadge; b != nil {
		x, y := d.cell(b.X, b.Y)
		d.g.set(x, y, '∞', style{fg: n.Accent, bg: scene.BadgeColor})
	}
	if b := n.ChildBadge; b != nil {
		x, y := d.cell(b.X, b.Y)
		d.g.text(x, y, b.Text, style{fg: scene.LabelColor, bg: scene.BadgeColor})
	}
}

func (d *drawer) minimap(m *scene.Minimap) {
	left := int(m.Left / CellWidth)
	top := int(m.Top / CellHeight)
	cols := int(math.Ceil(m.Width / CellWidth))
	rows := int(math.Ceil(m.Height / CellHeight))
	box := style{fg: "#475569", bg: scene.MinimapColor}
	for y := 0; y < rows; y++ {
		for x := 0; x < cols; x++ {
			d.g.set(left+x, top+y, ' ', box)
		}
	}

	v := m.View
	vx0, vy0 := int(v.MinX/CellWidth), int(v.MinY/CellHeight)
	vx1, vy1 := int(v.MaxX/CellWidth), int(v.MaxY/CellHeight)
	for x := vx0; x <= vx1 && x < cols; x++ {
		d.g.set(left+x, top+vy0, '─', box)
		d.g.set(left+x, top+min(vy1, rows-1), '─', box)
	}
	for y := vy0; y <= vy1 && y < rows; y++ {
		d.g.set(left+vx0, top+y, '│', box)
		d.g.set(left+min(vx1, cols-1), top+y, '│', box)
	}

	for _, dot := range m.Dots {
		glyph := '·'
		if dot.Opacity >= 1 {
			glyph = '●'
		}
		d.g.set(left+int(dot.X/CellWidth), top+int(dot.Y/CellHeight), glyph, style{fg: dot.Color, bg: scene.MinimapColor})
	}
}

func (d *drawer) controls() {
	st := style{fg: scene.LabelColor, bg: scene.MinimapColor}
	for _, c := range d.s.Controls {
		x, y := int(c.Rect.Left/CellWidth), int((c.Rect.Top+c.Rect.Height/2)/CellHeight)
		d.g.text(x, y, "["+c.Label+"]", st)
	}
	ro := d.s.Readout
	pct := strconv.Itoa(d.s.ZoomPercent) + "%"
	d.g.text(int(ro.Left/CellWidth), int((ro.Top+ro.Height/2)/CellHeight), pct, st)
}
