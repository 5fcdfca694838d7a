// Package tui hosts a brain map canvas in the terminal.
package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"brainmap/internal/codec"
	"brainmap/internal/config"
	"brainmap/internal/export"
	"brainmap/internal/render/term"
)

const (
	frameInterval = time.Second / 60
	panStep       = 40.0
)

type frameMsg time.Time

// externalChangeMsg reports that another process wrote the database.
type externalChangeMsg struct{}

// Model is the bubbletea model of the canvas screen.
type Model struct {
	host   *Host
	cfg    *config.Config
	width  int
	height int

	input     textinput.Model
	editingID string

	confirm bool
	help    bool
}

// New returns the screen model for host.
func New(host *Host, cfg *config.Config) Model {
	ti := textinput.New()
	ti.Prompt = "label: "
	ti.CharLimit = 200
	return Model{host: host, cfg: cfg, input: ti}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return nil
}

func tick() tea.Cmd {
	return tea.Tick(frameInterval, func(t time.Time) tea.Msg { return frameMsg(t) })
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd
	c := m.host.Canvas()

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		w, h := term.Size(msg.Width, m.canvasRows())
		c.SetSize(0, 0, w, h)

	case frameMsg:
		c.Tick()

	case externalChangeMsg:
		m.host.reload("reload")

	case tea.MouseMsg:
		m.handleMouse(msg)

	case tea.KeyMsg:
		var cmd tea.Cmd
		m, cmd = m.handleKey(msg)
		cmds = append(cmds, cmd)
	}

	m.syncEditor()
	if m.host.takeFrame() {
		cmds = append(cmds, tick())
	}
	return m, tea.Batch(cmds...)
}

func (m Model) canvasRows() int {
	return max(m.height-1, 1)
}

func (m *Model) handleMouse(msg tea.MouseMsg) {
	c := m.host.Canvas()
	sx, sy := term.Cell(msg.X, msg.Y)
	if msg.Y >= m.canvasRows() {
		if msg.Action == tea.MouseActionRelease {
			c.PointerLeave()
		}
		return
	}

	switch msg.Button {
	case tea.MouseButtonWheelUp:
		c.Wheel(sx, sy, -1)
		return
	case tea.MouseButtonWheelDown:
		c.Wheel(sx, sy, 1)
		return
	}

	switch msg.Action {
	case tea.MouseActionPress:
		if msg.Button == tea.MouseButtonLeft {
			m.confirm = false
			c.PointerDown(sx, sy)
		}
	case tea.MouseActionMotion:
		c.PointerMove(sx, sy)
	case tea.MouseActionRelease:
		c.PointerUp(sx, sy, time.Now())
	}
}

func (m Model) handleKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	key := msg.String()
	if key == "ctrl+c" {
		return m, m.quit()
	}

	if m.help {
		switch key {
		case "esc", "q", "?":
			m.help = false
		}
		return m, nil
	}

	if m.host.Canvas().Editor().Active() {
		return m.handleEditKey(msg)
	}

	if m.confirm {
		m.confirm = false
		if key == "y" || key == "Y" {
			m.host.DeleteSelected()
		} else {
			m.host.ok("")
		}
		return m, nil
	}

	c := m.host.Canvas()
	switch key {
	case "q":
		return m, m.quit()
	case "?":
		m.help = true
	case "esc":
		if m.host.adding {
			m.host.ToggleAdding()
		} else if m.host.connecting {
			m.host.ToggleConnecting()
		} else {
			m.host.onDeselect()
		}
	case "a":
		m.host.ToggleAdding()
	case "c":
		m.host.ToggleConnecting()
	case "e", "enter":
		m.host.EditSelected()
	case "n":
		m.host.AddChild()
	case "d":
		if m.host.Selected() == "" {
			break
		}
		if m.cfg.UI.Confirmations {
			label, _ := m.host.SelectedLabel()
			m.confirm = true
			m.host.ok(fmt.Sprintf("delete %q? (y/n)", label))
		} else {
			m.host.DeleteSelected()
		}
	case "x":
		m.host.DeleteHoveredConnection()
	case "z":
		m.host.ToggleCollapsed()
	case "g":
		m.host.MakeCentre()
	case "y":
		if label, ok := m.host.SelectedLabel(); ok {
			if err := writeClipboard(label); err != nil {
				m.host.fail("copy label", err)
			} else {
				m.host.ok("label copied")
			}
		}
	case "p":
		m.exportPNG()
	case "+", "=":
		c.ZoomIn()
	case "-", "_":
		c.ZoomOut()
	case "0":
		c.Recenter()
	case "f":
		c.Fit()
	case "m":
		m.host.ToggleMinimap()
	default:
		m.handlePan(key)
	}
	return m, nil
}

func (m Model) handleEditKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	c := m.host.Canvas()
	ed := c.Editor()

	switch msg.String() {
	case "enter":
		c.CommitLabel()
		return m, nil
	case "esc":
		m.host.CancelEdit()
		return m, nil
	case "ctrl+v":
		text, err := readClipboard()
		if err != nil {
			m.host.fail("paste", err)
			return m, nil
		}
		ed.Insert(cleanClipboardText(text))
		m.input.SetValue(ed.Value())
		m.input.CursorEnd()
		return m, nil
	case "backspace":
		if ed.Selected() {
			ed.Backspace()
			m.input.SetValue("")
			return m, nil
		}
	}

	// The first typed character replaces the selected label.
	if ed.Selected() && (msg.Type == tea.KeyRunes || msg.Type == tea.KeySpace) {
		m.input.SetValue("")
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	if v := m.input.Value(); v != ed.Value() {
		ed.SetValue(v)
	}
	return m, cmd
}

// handlePan moves the camera with h/j/k/l or the arrows; shifted keys move
// twice as far.
func (m Model) handlePan(key string) {
	step := panStep
	switch key {
	case "H", "L", "K", "J", "shift+left", "shift+right", "shift+up", "shift+down":
		step *= 2
	}
	c := m.host.Canvas()
	switch key {
	case "h", "left", "H", "shift+left":
		c.PanBy(step, 0)
	case "l", "right", "L", "shift+right":
		c.PanBy(-step, 0)
	case "k", "up", "K", "shift+up":
		c.PanBy(0, step)
	case "j", "down", "J", "shift+down":
		c.PanBy(0, -step)
	}
}

// syncEditor seeds the text input whenever the canvas opens a new edit
// session and releases it when the session ends.
func (m *Model) syncEditor() {
	ed := m.host.Canvas().Editor()
	switch {
	case ed.Active() && ed.NodeID() != m.editingID:
		m.editingID = ed.NodeID()
		m.input.SetValue(ed.Value())
		m.input.CursorEnd()
		m.input.Focus()
	case !ed.Active() && m.editingID != "":
		m.editingID = ""
		m.input.Blur()
		m.input.SetValue("")
	}
}

func (m Model) exportPNG() {
	bm := m.host.Map()
	path, err := m.cfg.GetSavePath(export.FileName(bm.Title, ".png"))
	if err != nil {
		m.host.fail("export", err)
		return
	}
	doc := codec.NewDocument(*bm, m.host.nodes, m.host.conns)
	opts := export.Options{
		Width:  m.cfg.Export.Width,
		Height: m.cfg.Export.Height,
		Canvas: CanvasOptions(m.cfg.Canvas),
	}
	if err := export.File(path, doc, opts); err != nil {
		m.host.fail("export", err)
		return
	}
	m.host.ok("exported " + path)
}

func (m Model) quit() tea.Cmd {
	if ed := m.host.Canvas().Editor(); ed.Active() {
		m.host.Canvas().CommitLabel()
	}
	if err := m.host.SaveViewport(); err != nil {
		m.host.fail("quit", err)
	}
	return tea.Quit
}

var (
	barStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#cbd5e1")).Background(lipgloss.Color("#1e293b"))
	errStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#fca5a5")).Background(lipgloss.Color("#1e293b"))
	modeStyle = map[string]lipgloss.Style{
		"NORMAL":  lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#0b0f19")).Background(lipgloss.Color("#60a5fa")),
		"ADD":     lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#0b0f19")).Background(lipgloss.Color("#34d399")),
		"CONNECT": lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#0b0f19")).Background(lipgloss.Color("#22d3ee")),
		"EDIT":    lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#0b0f19")).Background(lipgloss.Color("#fbbf24")),
	}
)

// View implements tea.Model.
func (m Model) View() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}
	if m.help {
		return m.helpView()
	}

	lines := term.Renderer{}.Lines(m.host.Canvas().Scene())
	var b strings.Builder
	for i, line := range lines {
		if i >= m.canvasRows() {
			break
		}
		b.WriteString(line)
		b.WriteString("\n")
	}
	b.WriteString(m.statusBar())
	return b.String()
}

func (m Model) statusBar() string {
	mode := m.host.Mode()
	left := modeStyle[mode].Render(" " + mode + " ")

	var info string
	if m.host.Canvas().Editor().Active() {
		info = " " + m.input.View()
	} else {
		vp := m.host.Canvas().Viewport()
		info = fmt.Sprintf(" %s  %d%%", m.host.Map().Title, vp.Percent())
		if node, _ := m.host.Canvas().Hover(); node != "" {
			if n, ok := m.host.Canvas().Graph().Node(node); ok {
				info += "  " + n.Label
			}
		}
		if s := m.host.Status(); s != "" {
			info += "  | " + s
		}
	}

	style := barStyle
	if m.host.Err() != nil {
		style = errStyle
	}
	room := max(m.width-lipgloss.Width(left), 0)
	return left + style.Width(room).MaxWidth(room).Render(info)
}

func (m Model) helpView() string {
	help := []string{
		"brainmap",
		"========",
		"",
		"Mouse:",
		"  drag background     pan",
		"  drag node           move node",
		"  click node          select",
		"  double click node   edit label",
		"  wheel               zoom at pointer",
		"  click ×             delete hovered connection",
		"",
		"Keys:",
		"  h/j/k/l, arrows     pan (shift: faster)",
		"  + / -               zoom in / out",
		"  0                   recenter, f fit all nodes",
		"  a                   place a node with the next click",
		"  n                   add child of the selection",
		"  c                   connect selection to the next clicked node",
		"  e, Enter            edit label (Enter saves, Esc cancels)",
		"  d                   delete selected node",
		"  x                   delete hovered connection",
		"  z                   collapse / expand selection",
		"  g                   make selection the centre",
		"  y                   copy label, ctrl+v pastes while editing",
		"  m                   toggle minimap",
		"  p                   export PNG",
		"  q                   quit",
		"",
		"Press ? or Esc to close.",
	}
	if len(help) > m.height {
		help = help[:m.height]
	}
	return strings.Join(help, "\n")
}
