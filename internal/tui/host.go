package tui

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"brainmap/internal/canvas"
	"brainmap/internal/config"
	"brainmap/internal/layout"
	"brainmap/internal/model"
	"brainmap/internal/store"
)

const newNodeLabel = "New node"

// Host owns the selection and mode state around a canvas and turns canvas
// callbacks into store mutations. Every mutation reloads the props.
type Host struct {
	ctx    context.Context
	store  *store.Store
	mapID  string
	canvas *canvas.Canvas
	log    *slog.Logger

	brainMap *model.BrainMap
	nodes    []model.Node
	conns    []model.Connection

	selected    string
	editing     string
	adding      bool
	connecting  bool
	connectFrom string
	showMinimap bool

	frameWanted bool
	status      string
	err         error
}

// CanvasOptions maps the canvas section of the configuration.
func CanvasOptions(cfg config.CanvasConfig) canvas.Options {
	return canvas.Options{
		MinZoom:       cfg.ZoomMin,
		MaxZoom:       cfg.ZoomMax,
		WheelFactor:   cfg.WheelFactor,
		ButtonFactor:  cfg.ButtonFactor,
		Stiffness:     cfg.Stiffness,
		Damping:       cfg.Damping,
		HideCollapsed: cfg.HideCollapsed,
		DoubleClick:   time.Duration(cfg.DoubleClickMS) * time.Millisecond,
		Seed:          uint64(time.Now().UnixNano()),
	}
}

// NewHost loads mapID from st and binds a canvas to it.
func NewHost(ctx context.Context, st *store.Store, mapID string, cfg *config.Config, logger *slog.Logger) (*Host, error) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	h := &Host{
		ctx:         ctx,
		store:       st,
		mapID:       mapID,
		log:         logger,
		showMinimap: cfg.Canvas.ShowMinimap,
	}
	opts := CanvasOptions(cfg.Canvas)
	opts.RequestFrame = func() { h.frameWanted = true }
	h.canvas = canvas.New(opts, canvas.Callbacks{
		OnNodeClick:         h.onNodeClick,
		OnNodeDoubleClick:   h.onNodeDoubleClick,
		OnNodeDrag:          h.onNodeDrag,
		OnCanvasClick:       h.onCanvasClick,
		OnNodeLabelChange:   h.onNodeLabelChange,
		OnConnectionDelete:  h.onConnectionDelete,
		OnConnectionRequest: h.onConnectionRequest,
		OnDeselect:          h.onDeselect,
	})
	if err := h.Reload(); err != nil {
		return nil, err
	}
	return h, nil
}

// Canvas returns the hosted canvas.
func (h *Host) Canvas() *canvas.Canvas { return h.canvas }

// Map returns the loaded brain map.
func (h *Host) Map() *model.BrainMap { return h.brainMap }

// Selected returns the selected node id.
func (h *Host) Selected() string { return h.selected }

// Status returns the last status message.
func (h *Host) Status() string { return h.status }

// Err returns the last mutation error, if any.
func (h *Host) Err() error { return h.err }

// takeFrame reports and clears a pending frame request.
func (h *Host) takeFrame() bool {
	wanted := h.frameWanted
	h.frameWanted = false
	return wanted
}

// Reload reads the map from the store and pushes fresh props.
func (h *Host) Reload() error {
	m, nodes, conns, err := h.store.Load(h.ctx, h.mapID)
	if err != nil {
		return fmt.Errorf("load brain map: %w", err)
	}
	h.brainMap, h.nodes, h.conns = m, nodes, conns

	index := model.NodeIndex(nodes)
	if _, ok := index[h.selected]; !ok {
		h.selected = ""
	}
	if _, ok := index[h.editing]; !ok {
		h.editing = ""
	}
	if _, ok := index[h.connectFrom]; !ok {
		h.connecting, h.connectFrom = false, ""
	}
	h.apply()
	return nil
}

func (h *Host) props() canvas.Props {
	return canvas.Props{
		Nodes:             h.nodes,
		Connections:       h.conns,
		CenterNodeID:      h.brainMap.CenterNodeID,
		SelectedNodeID:    h.selected,
		EditingNodeID:     h.editing,
		IsAddingNode:      h.adding,
		IsConnecting:      h.connecting,
		ConnectFromNodeID: h.connectFrom,
		ShowMinimap:       h.showMinimap,
	}
}

func (h *Host) apply() {
	h.canvas.SetProps(h.props())
}

// fail records a mutation error; the canvas keeps its last good props.
func (h *Host) fail(op string, err error) {
	h.err = err
	h.status = fmt.Sprintf("%s: %v", op, err)
	h.log.Error(op, "map", h.mapID, "error", err)
}

func (h *Host) ok(status string) {
	h.err = nil
	h.status = status
}

func (h *Host) reload(op string) {
	if err := h.Reload(); err != nil {
		h.fail(op, err)
	}
}

func (h *Host) onNodeClick(id string) {
	if h.connecting && h.connectFrom == "" {
		h.connectFrom = id
		h.ok("connect: pick a target")
	} else {
		h.selected = id
		h.ok("")
	}
	h.apply()
}

func (h *Host) onNodeDoubleClick(id string) {
	h.selected = id
	h.editing = id
	h.ok("editing label")
	h.apply()
}

func (h *Host) onNodeDrag(id string, x, y float64) {
	if err := h.store.MoveNode(h.ctx, id, x, y); err != nil {
		h.fail("move node", err)
		return
	}
	h.reload("move node")
}

func (h *Host) onCanvasClick(x, y float64) {
	h.adding = false
	n, err := h.store.AddNode(h.ctx, model.Node{
		BrainMapID:   h.mapID,
		ParentNodeID: h.selected,
		X:            x,
		Y:            y,
		Label:        newNodeLabel,
	})
	if err != nil {
		h.fail("add node", err)
		h.apply()
		return
	}
	h.selected, h.editing = n.ID, n.ID
	h.ok("node added")
	h.reload("add node")
}

func (h *Host) onNodeLabelChange(id, label string) {
	h.editing = ""
	if err := h.store.UpdateLabel(h.ctx, id, label); err != nil {
		h.fail("rename node", err)
		h.apply()
		return
	}
	h.ok("label saved")
	h.reload("rename node")
}

func (h *Host) onConnectionDelete(id string) {
	if err := h.store.DeleteConnection(h.ctx, id); err != nil {
		h.fail("delete connection", err)
		return
	}
	h.ok("connection deleted")
	h.reload("delete connection")
}

func (h *Host) onConnectionRequest(source, target string) {
	h.connecting, h.connectFrom = false, ""
	if _, err := h.store.AddConnection(h.ctx, model.Connection{SourceNodeID: source, TargetNodeID: target}); err != nil {
		h.fail("connect", err)
		h.apply()
		return
	}
	h.ok("connected")
	h.reload("connect")
}

func (h *Host) onDeselect() {
	h.selected = ""
	h.connecting, h.connectFrom = false, ""
	h.ok("")
	h.apply()
}

// ToggleAdding switches node placement mode: the next background click adds
// a node there, a child of the selection if any.
func (h *Host) ToggleAdding() {
	h.adding = !h.adding
	h.connecting, h.connectFrom = false, ""
	if h.adding {
		h.ok("click the canvas to place a node")
	} else {
		h.ok("")
	}
	h.apply()
}

// ToggleConnecting switches connection mode with the selection as source.
// Without a selection the next clicked node becomes the source.
func (h *Host) ToggleConnecting() {
	h.connecting = !h.connecting
	h.adding = false
	h.connectFrom = ""
	if h.connecting {
		h.connectFrom = h.selected
		if h.connectFrom == "" {
			h.ok("connect: pick a source")
		} else {
			h.ok("connect: pick a target")
		}
	} else {
		h.ok("")
	}
	h.apply()
}

// EditSelected opens the label editor on the selection.
func (h *Host) EditSelected() {
	if h.selected == "" {
		h.ok("select a node first")
		return
	}
	h.editing = h.selected
	h.ok("editing label")
	h.apply()
}

// CancelEdit closes the label editor without saving.
func (h *Host) CancelEdit() {
	h.canvas.CancelLabel()
	h.editing = ""
	h.ok("")
	h.apply()
}

// ToggleMinimap shows or hides the minimap.
func (h *Host) ToggleMinimap() {
	h.showMinimap = !h.showMinimap
	h.apply()
}

// AddChild adds a child of the selection, or of the centre node when
// nothing is selected, and opens its label editor.
func (h *Host) AddChild() {
	parentID := h.selected
	if parentID == "" {
		parentID = h.brainMap.CenterNodeID
	}
	var parent *model.Node
	for i := range h.nodes {
		if h.nodes[i].ID == parentID {
			parent = &h.nodes[i]
			break
		}
	}
	if parent == nil {
		h.ok("select a node first")
		return
	}

	x, y := layout.ChildPosition(*parent, h.nodes)
	n, err := h.store.AddNode(h.ctx, model.Node{
		BrainMapID:   h.mapID,
		ParentNodeID: parent.ID,
		X:            x,
		Y:            y,
		Shape:        parent.Shape,
		Label:        newNodeLabel,
	})
	if err != nil {
		h.fail("add node", err)
		return
	}
	h.selected, h.editing = n.ID, n.ID
	h.ok("node added")
	h.reload("add node")
}

// DeleteSelected removes the selected node.
func (h *Host) DeleteSelected() {
	if h.selected == "" {
		return
	}
	if err := h.store.DeleteNode(h.ctx, h.selected); err != nil {
		h.fail("delete node", err)
		return
	}
	h.selected = ""
	h.ok("node deleted")
	h.reload("delete node")
}

// DeleteHoveredConnection removes the explicit connection under the
// pointer.
func (h *Host) DeleteHoveredConnection() {
	_, edge := h.canvas.Hover()
	for _, c := range h.conns {
		if c.ID == edge {
			h.onConnectionDelete(edge)
			return
		}
	}
	h.ok("hover a connection first")
}

// ToggleCollapsed flips the collapsed flag of the selection.
func (h *Host) ToggleCollapsed() {
	for _, n := range h.nodes {
		if n.ID != h.selected {
			continue
		}
		if err := h.store.SetCollapsed(h.ctx, n.ID, !n.IsCollapsed); err != nil {
			h.fail("collapse node", err)
			return
		}
		h.reload("collapse node")
		return
	}
}

// MakeCentre turns the selection into the centre node.
func (h *Host) MakeCentre() {
	if h.selected == "" {
		return
	}
	if err := h.store.SetCenter(h.ctx, h.mapID, h.selected); err != nil {
		h.fail("set centre", err)
		return
	}
	h.ok("centre changed")
	h.reload("set centre")
}

// SelectedLabel returns the full label of the selection.
func (h *Host) SelectedLabel() (string, bool) {
	for _, n := range h.nodes {
		if n.ID == h.selected {
			return n.Label, true
		}
	}
	return "", false
}

// SaveViewport stores the current camera.
func (h *Host) SaveViewport() error {
	vp := h.canvas.Viewport()
	if err := h.store.SaveViewport(h.ctx, h.mapID, vp.PanX, vp.PanY, vp.Zoom); err != nil {
		if errors.Is(err, store.ErrMapNotFound) {
			return nil
		}
		return fmt.Errorf("save viewport: %w", err)
	}
	return nil
}

// Mode names the current interaction mode for the status bar.
func (h *Host) Mode() string {
	switch {
	case h.canvas.Editor().Active():
		return "EDIT"
	case h.adding:
		return "ADD"
	case h.connecting:
		return "CONNECT"
	default:
		return "NORMAL"
	}
}

// singleLine flattens pasted text for a label.
func singleLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
