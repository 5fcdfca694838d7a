package tui

import (
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"brainmap/internal/config"
	"brainmap/internal/render/term"
)

// newModel returns a 100x31 screen: 30 canvas rows and the status bar.
func newModel(t *testing.T) (Model, *hostFixture) {
	t.Helper()
	f := setupHost(t)
	m := New(f.host, config.Default())
	m = send(m, tea.WindowSizeMsg{Width: 100, Height: 31})
	return m, f
}

func send(m Model, msgs ...tea.Msg) Model {
	for _, msg := range msgs {
		next, _ := m.Update(msg)
		m = next.(Model)
	}
	return m
}

func key(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "backspace":
		return tea.KeyMsg{Type: tea.KeyBackspace}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

// cellOf returns the terminal cell showing canvas point (x, y).
func cellOf(m Model, x, y float64) (int, int) {
	vp := m.host.Canvas().Viewport()
	sx, sy := vp.CanvasToScreen(x, y)
	return int(sx / term.CellWidth), int(sy / term.CellHeight)
}

func clickAt(m Model, x, y float64) Model {
	col, row := cellOf(m, x, y)
	return send(m,
		tea.MouseMsg{X: col, Y: row, Action: tea.MouseActionPress, Button: tea.MouseButtonLeft},
		tea.MouseMsg{X: col, Y: row, Action: tea.MouseActionRelease},
	)
}

func TestWindowSize(t *testing.T) {
	m, _ := newModel(t)
	vp := m.host.Canvas().Viewport()
	assert.Equal(t, 800.0, vp.Rect.Width)
	assert.Equal(t, 480.0, vp.Rect.Height)

	view := m.View()
	lines := strings.Split(view, "\n")
	assert.Len(t, lines, 31)
	status := lines[30]
	assert.Contains(t, status, "NORMAL")
	assert.Contains(t, status, "Trip")
	assert.Contains(t, status, "100%")
}

func TestViewBeforeSize(t *testing.T) {
	f := setupHost(t)
	assert.Empty(t, New(f.host, config.Default()).View())
}

func TestModeKeys(t *testing.T) {
	m, f := newModel(t)
	m = send(m, key("a"))
	assert.Equal(t, "ADD", f.host.Mode())
	m = send(m, key("esc"))
	assert.Equal(t, "NORMAL", f.host.Mode())
	m = send(m, key("c"))
	assert.Equal(t, "CONNECT", f.host.Mode())
	assert.Contains(t, m.View(), "CONNECT")
	send(m, key("esc"))
	assert.Equal(t, "NORMAL", f.host.Mode())
}

func TestMouseClickSelects(t *testing.T) {
	m, f := newModel(t)
	clickAt(m, 0, 0)
	assert.Equal(t, f.m.CenterNodeID, f.host.Selected())
}

func TestEditLabelWithKeys(t *testing.T) {
	m, f := newModel(t)
	m = clickAt(m, 0, 0)
	m = send(m, key("e"))
	ed := f.host.Canvas().Editor()
	require.True(t, ed.Active())
	assert.Equal(t, "Trip", m.input.Value())
	assert.Contains(t, m.View(), "EDIT")

	m = send(m, key("R"), key("o"), key("m"), key("e"))
	assert.Equal(t, "Rome", ed.Value(), "typing replaces the selected label")
	m = send(m, key("backspace"))
	assert.Equal(t, "Rom", ed.Value())

	send(m, key("enter"))
	assert.False(t, ed.Active())
	assert.Equal(t, "Rom", f.nodes(t)[0].Label)
}

func TestEscCancelsEdit(t *testing.T) {
	m, f := newModel(t)
	m = clickAt(m, 0, 0)
	m = send(m, key("e"), key("X"), key("esc"))
	assert.False(t, f.host.Canvas().Editor().Active())
	assert.Empty(t, m.input.Value())
	assert.Equal(t, "Trip", f.nodes(t)[0].Label)
}

func TestBackspaceClearsSelectedLabel(t *testing.T) {
	m, f := newModel(t)
	m = clickAt(m, 0, 0)
	m = send(m, key("e"), key("backspace"))
	assert.Empty(t, f.host.Canvas().Editor().Value())
	assert.Empty(t, m.input.Value())
}

func TestAddChildKey(t *testing.T) {
	m, f := newModel(t)
	send(m, key("n"))
	nodes := f.nodes(t)
	require.Len(t, nodes, 2)
	assert.Equal(t, f.m.CenterNodeID, nodes[1].ParentNodeID)
	assert.True(t, f.host.Canvas().Editor().Active())
}

func TestDeleteAsksForConfirmation(t *testing.T) {
	m, f := newModel(t)
	f.addChild(t, "Hotels")
	m = clickAt(m, 200, 0)

	m = send(m, key("d"))
	assert.True(t, m.confirm)
	assert.Contains(t, f.host.Status(), `delete "Hotels"?`)
	m = send(m, key("n"))
	assert.False(t, m.confirm)
	assert.Len(t, f.nodes(t), 2)

	send(m, key("d"), key("y"))
	assert.Len(t, f.nodes(t), 1)
}

func TestDeleteWithoutConfirmation(t *testing.T) {
	m, f := newModel(t)
	m.cfg.UI.Confirmations = false
	f.addChild(t, "Hotels")
	m = clickAt(m, 200, 0)
	send(m, key("d"))
	assert.Len(t, f.nodes(t), 1)
}

func TestZoomKeys(t *testing.T) {
	m, f := newModel(t)
	m = send(m, key("+"))
	vp := f.host.Canvas().Viewport()
	assert.Equal(t, 120, vp.Percent())

	m = send(m, key("-"), key("-"))
	vp = f.host.Canvas().Viewport()
	assert.Less(t, vp.Zoom, 1.0)

	send(m, key("0"))
	assert.Equal(t, 1.0, f.host.Canvas().Viewport().Zoom)
}

func TestPanKeys(t *testing.T) {
	m, f := newModel(t)
	start := f.host.Canvas().Viewport()

	m = send(m, key("h"))
	assert.Equal(t, start.PanX+panStep, f.host.Canvas().Viewport().PanX)

	m = send(m, key("L"))
	assert.Equal(t, start.PanX-panStep, f.host.Canvas().Viewport().PanX, "shifted keys move twice as far")

	send(m, key("j"), tea.KeyMsg{Type: tea.KeyUp})
	assert.Equal(t, start.PanY, f.host.Canvas().Viewport().PanY)
}

func TestWheelZoomsAtPointer(t *testing.T) {
	m, f := newModel(t)
	col, row := cellOf(m, 0, 0)
	send(m, tea.MouseMsg{X: col, Y: row, Action: tea.MouseActionPress, Button: tea.MouseButtonWheelUp})
	vp := f.host.Canvas().Viewport()
	assert.InDelta(t, 1.08, vp.Zoom, 1e-9)
}

func TestMinimapKey(t *testing.T) {
	m, f := newModel(t)
	assert.True(t, f.host.Canvas().Props().ShowMinimap)
	send(m, key("m"))
	assert.False(t, f.host.Canvas().Props().ShowMinimap)
}

func TestExternalChangeAnimates(t *testing.T) {
	m, f := newModel(t)
	require.NoError(t, f.store.MoveNode(f.ctx, f.m.CenterNodeID, 160, 0))

	next, cmd := m.Update(externalChangeMsg{})
	m = next.(Model)
	assert.NotNil(t, cmd, "a frame is scheduled while nodes move")

	for i := 0; i < 200; i++ {
		next, cmd = m.Update(frameMsg(time.Now()))
		m = next.(Model)
		if cmd == nil {
			break
		}
	}
	assert.Nil(t, cmd, "frames stop once settled")
	x, _, ok := f.host.Canvas().Position(f.m.CenterNodeID)
	require.True(t, ok)
	assert.InDelta(t, 160, x, 0.5)
}

func TestQuitSavesViewport(t *testing.T) {
	m, f := newModel(t)
	m = send(m, key("l"))
	_, cmd := m.Update(key("q"))
	require.NotNil(t, cmd)
	_, ok := cmd().(tea.QuitMsg)
	assert.True(t, ok)

	bm, err := f.store.GetMap(f.ctx, f.m.ID)
	require.NoError(t, err)
	assert.Equal(t, f.host.Canvas().Viewport().PanX, bm.ViewportX)
}

func TestHelpView(t *testing.T) {
	m, _ := newModel(t)
	m = send(m, key("?"))
	assert.Contains(t, m.View(), "Keys:")
	m = send(m, key("a"))
	assert.Equal(t, "NORMAL", m.host.Mode(), "keys are ignored while help is open")
	m = send(m, key("esc"))
	assert.NotContains(t, m.View(), "Keys:")
}

func TestCleanClipboardText(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain", "  buy\n  milk\t", "buy milk"},
		{"control characters", "a\x07b", "ab"},
		{"html", "<div>Hello <b>World</b> &amp; more</div>", "Hello World & more"},
		{"rtf", `{\rtf1\ansi{\fonttbl\f0\fswiss Helvetica;}\f0\pard Hello \b World\b0\par}`, "Hello World"},
		{"rtf escapes", `{\rtf1 a\{b\}\\c}`, `a{b}\c`},
		{"empty", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, cleanClipboardText(tt.in))
		})
	}
}
