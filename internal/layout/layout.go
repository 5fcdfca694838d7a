// Package layout derives the renderable edge set and per-node facts from the
// nodes and explicit connections of a map.
package layout

import (
	"math"
	"sort"

	"brainmap/internal/model"
)

// ParentEdgePrefix prefixes the id of every implicit parent edge.
const ParentEdgePrefix = "parent-"

// Edge is one renderable edge.
type Edge struct {
	ID       string
	Source   string
	Target   string
	Implicit bool
	Label    string
	Color    string
	Style    model.ConnectionStyle
	Animated bool
}

// Aux holds the derived facts about a node.
type Aux struct {
	ChildCount int
	HasLink    bool
	Depth      int
}

// Options tune Build.
type Options struct {
	// HideCollapsed drops descendants of collapsed nodes.
	HideCollapsed bool
}

// Graph is the layout model of a map.
type Graph struct {
	Nodes []model.Node // visible nodes, in render order
	Edges []Edge
	Aux   map[string]Aux
	index map[string]int
}

// Build derives the layout model. Edges whose endpoints are missing are
// dropped without error.
func Build(nodes []model.Node, connections []model.Connection, opts Options) *Graph {
	visible := nodes
	if opts.HideCollapsed {
		visible = visibleNodes(nodes)
	}

	present := make(map[string]struct{}, len(visible))
	for i := range visible {
		present[visible[i].ID] = struct{}{}
	}

	g := &Graph{Aux: make(map[string]Aux, len(visible))}

	parents := make(map[string]string, len(nodes))
	children := make(map[string]int)
	for i := range nodes {
		if p := nodes[i].ParentNodeID; p != "" {
			parents[nodes[i].ID] = p
			children[p]++
		}
	}

	for i := range visible {
		n := &visible[i]
		g.Aux[n.ID] = Aux{
			ChildCount: children[n.ID],
			HasLink:    n.HasLink(),
			Depth:      depth(n.ID, parents),
		}
		if n.ParentNodeID == "" {
			continue
		}
		if _, ok := present[n.ParentNodeID]; !ok {
			continue
		}
		g.Edges = append(g.Edges, Edge{
			ID:       ParentEdgePrefix + n.ID,
			Source:   n.ParentNodeID,
			Target:   n.ID,
			Implicit: true,
			Style:    model.StyleSolid,
		})
	}

	for i := range connections {
		c := &connections[i]
		if _, ok := present[c.SourceNodeID]; !ok {
			continue
		}
		if _, ok := present[c.TargetNodeID]; !ok {
			continue
		}
		g.Edges = append(g.Edges, Edge{
			ID:       c.ID,
			Source:   c.SourceNodeID,
			Target:   c.TargetNodeID,
			Label:    c.Label,
			Color:    c.StrokeColor(),
			Style:    c.Style,
			Animated: c.Animated,
		})
	}

	g.Nodes = RenderOrder(visible)
	g.index = model.NodeIndex(g.Nodes)
	return g
}

// depth counts parent hops until a root, a dangling parent or a cycle.
func depth(id string, parents map[string]string) int {
	seen := map[string]struct{}{id: {}}
	d := 0
	for {
		p, ok := parents[id]
		if !ok {
			return d
		}
		if _, loop := seen[p]; loop {
			return d
		}
		seen[p] = struct{}{}
		d++
		id = p
	}
}

// visibleNodes removes every descendant of a collapsed node.
func visibleNodes(nodes []model.Node) []model.Node {
	parents := make(map[string]string, len(nodes))
	collapsed := make(map[string]bool)
	for i := range nodes {
		parents[nodes[i].ID] = nodes[i].ParentNodeID
		if nodes[i].IsCollapsed {
			collapsed[nodes[i].ID] = true
		}
	}

	out := make([]model.Node, 0, len(nodes))
	for i := range nodes {
		hidden := false
		seen := map[string]struct{}{nodes[i].ID: {}}
		for p := parents[nodes[i].ID]; p != ""; p = parents[p] {
			if _, loop := seen[p]; loop {
				break
			}
			seen[p] = struct{}{}
			if collapsed[p] {
				hidden = true
				break
			}
		}
		if !hidden {
			out = append(out, nodes[i])
		}
	}
	return out
}

// RenderOrder returns a copy of nodes sorted ascending by layer. Ties keep
// their input order.
func RenderOrder(nodes []model.Node) []model.Node {
	out := make([]model.Node, len(nodes))
	copy(out, nodes)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Layer < out[j].Layer
	})
	return out
}

// Node looks up a visible node by id.
func (g *Graph) Node(id string) (*model.Node, bool) {
	i, ok := g.index[id]
	if !ok {
		return nil, false
	}
	return &g.Nodes[i], true
}

// ChildCount returns the number of nodes whose parent is id.
func (g *Graph) ChildCount(id string) int {
	return g.Aux[id].ChildCount
}

// Point is a position in canvas space.
type Point struct {
	X, Y float64
}

// Rect is a bounding box in canvas space.
type Rect struct {
	MinX, MinY, MaxX, MaxY float64
}

// Width of the box.
func (r Rect) Width() float64 { return r.MaxX - r.MinX }

// Height of the box.
func (r Rect) Height() float64 { return r.MaxY - r.MinY }

// Bounds returns the bounding box of points; ok is false for no points.
func Bounds(points []Point) (Rect, bool) {
	if len(points) == 0 {
		return Rect{}, false
	}
	r := Rect{
		MinX: math.Inf(1), MinY: math.Inf(1),
		MaxX: math.Inf(-1), MaxY: math.Inf(-1),
	}
	for _, p := range points {
		r.MinX = math.Min(r.MinX, p.X)
		r.MinY = math.Min(r.MinY, p.Y)
		r.MaxX = math.Max(r.MaxX, p.X)
		r.MaxY = math.Max(r.MaxY, p.Y)
	}
	return r, true
}

// Centroid returns the mean of points, or the origin for none.
func Centroid(points []Point) Point {
	if len(points) == 0 {
		return Point{}
	}
	var c Point
	for _, p := range points {
		c.X += p.X
		c.Y += p.Y
	}
	n := float64(len(points))
	return Point{X: c.X / n, Y: c.Y / n}
}

const (
	// ChildOffsetX places a new child to the right of its parent.
	ChildOffsetX = 180.0
	// ChildSpacingY stacks siblings below each other.
	ChildSpacingY = 90.0
)

// ChildPosition places a new child of parent right of it, below the lowest
// existing child.
func ChildPosition(parent model.Node, nodes []model.Node) (float64, float64) {
	x, y := parent.X+ChildOffsetX, parent.Y
	found := false
	lowest := 0.0
	for _, n := range nodes {
		if n.ParentNodeID != parent.ID {
			continue
		}
		if !found || n.Y > lowest {
			lowest = n.Y
			found = true
		}
	}
	if found {
		y = lowest + ChildSpacingY
	}
	return x, y
}
