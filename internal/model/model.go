// Package model defines the brain map data model shared by the canvas, the
// renderers and the persistence layer.
package model

import (
	"time"

	"github.com/google/uuid"
)

// Shape is the outline a node is drawn with.
type Shape string

const (
	ShapeCircle    Shape = "circle"
	ShapeRectangle Shape = "rectangle"
	ShapeDiamond   Shape = "diamond"
	ShapeHexagon   Shape = "hexagon"
	ShapePill      Shape = "pill"
)

// Shapes lists every supported shape in display order.
var Shapes = []Shape{ShapeCircle, ShapeRectangle, ShapeDiamond, ShapeHexagon, ShapePill}

// Valid reports whether s is a known shape.
func (s Shape) Valid() bool {
	for _, known := range Shapes {
		if s == known {
			return true
		}
	}
	return false
}

// Size is the size class of a node.
type Size string

const (
	SizeSmall  Size = "small"
	SizeMedium Size = "medium"
	SizeLarge  Size = "large"
	SizeXL     Size = "xl"
)

// SizeSpec is the fixed geometry tuple a size class maps to.
type SizeSpec struct {
	Radius      float64
	FontSize    float64
	StrokeWidth float64
}

var sizeSpecs = map[Size]SizeSpec{
	SizeSmall:  {Radius: 24, FontSize: 11, StrokeWidth: 1.5},
	SizeMedium: {Radius: 32, FontSize: 13, StrokeWidth: 2},
	SizeLarge:  {Radius: 42, FontSize: 15, StrokeWidth: 2.5},
	SizeXL:     {Radius: 54, FontSize: 17, StrokeWidth: 3},
}

// Spec returns the geometry of the size class. Unknown sizes fall back to medium.
func (s Size) Spec() SizeSpec {
	if spec, ok := sizeSpecs[s]; ok {
		return spec
	}
	return sizeSpecs[SizeMedium]
}

// ConnectionStyle controls how an explicit connection is stroked.
type ConnectionStyle string

const (
	StyleSolid  ConnectionStyle = "solid"
	StyleDashed ConnectionStyle = "dashed"
	StyleDotted ConnectionStyle = "dotted"
	StyleCurved ConnectionStyle = "curved"
)

// Node is a positioned, styled vertex of a brain map. Empty strings stand for
// absent optional references.
type Node struct {
	ID             string    `json:"id" yaml:"id"`
	BrainMapID     string    `json:"brain_map_id,omitempty" yaml:"brain_map_id,omitempty"`
	X              float64   `json:"x" yaml:"x"`
	Y              float64   `json:"y" yaml:"y"`
	ParentNodeID   string    `json:"parent_node_id,omitempty" yaml:"parent_node_id,omitempty"`
	Layer          int       `json:"layer" yaml:"layer"`
	Shape          Shape     `json:"shape" yaml:"shape"`
	Size           Size      `json:"size" yaml:"size"`
	Color          string    `json:"color,omitempty" yaml:"color,omitempty"`
	Label          string    `json:"label" yaml:"label"`
	Description    string    `json:"description,omitempty" yaml:"description,omitempty"`
	Icon           string    `json:"icon,omitempty" yaml:"icon,omitempty"`
	LinkedNoteID   string    `json:"linked_note_id,omitempty" yaml:"linked_note_id,omitempty"`
	LinkedFolderID string    `json:"linked_folder_id,omitempty" yaml:"linked_folder_id,omitempty"`
	LinkedEventID  string    `json:"linked_event_id,omitempty" yaml:"linked_event_id,omitempty"`
	IsCollapsed    bool      `json:"is_collapsed" yaml:"is_collapsed"`
	CreatedAt      time.Time `json:"created_at" yaml:"created_at"`
	UpdatedAt      time.Time `json:"updated_at" yaml:"updated_at"`
}

// HasLink reports whether any cross-link is set.
func (n *Node) HasLink() bool {
	return n.LinkedNoteID != "" || n.LinkedFolderID != "" || n.LinkedEventID != ""
}

// AccentColor returns the node colour or its deterministic palette fallback.
func (n *Node) AccentColor() string {
	if n.Color != "" {
		return n.Color
	}
	return PaletteColor(n.ID)
}

// Connection is an explicit, user created edge between two nodes.
type Connection struct {
	ID           string          `json:"id" yaml:"id"`
	BrainMapID   string          `json:"brain_map_id,omitempty" yaml:"brain_map_id,omitempty"`
	SourceNodeID string          `json:"source_node_id" yaml:"source_node_id"`
	TargetNodeID string          `json:"target_node_id" yaml:"target_node_id"`
	Label        string          `json:"label,omitempty" yaml:"label,omitempty"`
	Color        string          `json:"color,omitempty" yaml:"color,omitempty"`
	Style        ConnectionStyle `json:"style" yaml:"style"`
	Animated     bool            `json:"animated" yaml:"animated"`
	CreatedAt    time.Time       `json:"created_at" yaml:"created_at"`
}

// DefaultConnectionColor is used when a connection has no colour.
const DefaultConnectionColor = "#94a3b8"

// StrokeColor returns the connection colour or the neutral default.
func (c *Connection) StrokeColor() string {
	if c.Color != "" {
		return c.Color
	}
	return DefaultConnectionColor
}

// BrainMap is the container of nodes and connections.
type BrainMap struct {
	ID           string    `json:"id" yaml:"id"`
	Title        string    `json:"title" yaml:"title"`
	Description  string    `json:"description,omitempty" yaml:"description,omitempty"`
	CenterNodeID string    `json:"center_node_id,omitempty" yaml:"center_node_id,omitempty"`
	ViewportX    float64   `json:"viewport_x" yaml:"viewport_x"`
	ViewportY    float64   `json:"viewport_y" yaml:"viewport_y"`
	ViewportZoom float64   `json:"viewport_zoom" yaml:"viewport_zoom"`
	CreatedAt    time.Time `json:"created_at" yaml:"created_at"`
	UpdatedAt    time.Time `json:"updated_at" yaml:"updated_at"`
}

// NewID returns a fresh opaque identifier.
func NewID() string {
	return uuid.NewString()
}

// NodeIndex maps node ids to their position in nodes.
func NodeIndex(nodes []Node) map[string]int {
	index := make(map[string]int, len(nodes))
	for i := range nodes {
		index[nodes[i].ID] = i
	}
	return index
}
