package tui

import (
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"github.com/jmylchreest/anchorpop/internal/model"
	"github.com/jmylchreest/anchorpop/internal/placement"
	"github.com/jmylchreest/anchorpop/internal/popover"
)

// LayoutFunc places the anchor regions for a screen of width x height cells.
type LayoutFunc func(width, height int) []Region

// overlay is a popover being drawn.
type overlay struct {
	id        string
	text      string
	placement placement.Result
	options   model.Options
	onDismiss popover.ExternalDismissFunc
}

type showMsg struct{ overlay overlay }

type hideMsg struct {
	id   string
	done func()
}

type statusMsg struct{ text string }

type clearStatusMsg struct{}

// Model is the bubbletea model behind the terminal presenter.
type Model struct {
	presenter  *Presenter
	layout     LayoutFunc
	onActivate func(Region)

	keys KeyMap
	help help.Model

	regions  []Region
	focus    int
	overlay  *overlay
	status   string
	showHelp bool

	width  int
	height int
	ready  bool
}

// NewModel creates the model. onActivate runs off the event loop when a
// region is clicked or activated from the keyboard.
func NewModel(p *Presenter, layout LayoutFunc, onActivate func(Region)) Model {
	if layout == nil {
		layout = DemoLayout
	}
	return Model{
		presenter:  p,
		layout:     layout,
		onActivate: onActivate,
		keys:       DefaultKeyMap(),
		help:       help.New(),
	}
}

// Init initializes the model.
func (m Model) Init() tea.Cmd {
	return nil
}

// Update handles messages and updates the model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ready = true

		// The last row is the status line
		screenH := max(0, msg.Height-1)
		m.regions = m.layout(msg.Width, screenH)
		if m.focus >= len(m.regions) {
			m.focus = 0
		}
		if m.presenter != nil {
			m.presenter.setScreen(msg.Width, screenH, m.regions)
		}
		return m, nil

	case showMsg:
		ov := msg.overlay
		m.overlay = &ov
		return m, nil

	case hideMsg:
		if m.overlay != nil && m.overlay.id == msg.id {
			m.overlay = nil
		}
		if msg.done == nil {
			return m, nil
		}
		done := msg.done
		return m, func() tea.Msg {
			done()
			return nil
		}

	case statusMsg:
		m.status = msg.text
		return m, tea.Tick(3*time.Second, func(time.Time) tea.Msg {
			return clearStatusMsg{}
		})

	case clearStatusMsg:
		m.status = ""
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.MouseMsg:
		return m.handleMouse(msg)
	}

	return m, nil
}

// handleKey handles key presses.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Back):
		if m.overlay != nil {
			return m.dismissOverlay(popover.ReasonBackAction)
		}
		m.showHelp = false
		return m, nil
	}

	// A modal popover only lets the keys above through
	if m.overlay != nil && m.overlay.options.IsModal {
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keys.Help):
		m.showHelp = !m.showHelp
	case key.Matches(msg, m.keys.Next):
		if len(m.regions) > 0 {
			m.focus = (m.focus + 1) % len(m.regions)
		}
	case key.Matches(msg, m.keys.Prev):
		if len(m.regions) > 0 {
			m.focus = (m.focus + len(m.regions) - 1) % len(m.regions)
		}
	case key.Matches(msg, m.keys.Activate):
		if m.focus < len(m.regions) {
			return m, m.activate(m.regions[m.focus])
		}
	}
	return m, nil
}

// handleMouse handles left clicks.
func (m Model) handleMouse(msg tea.MouseMsg) (tea.Model, tea.Cmd) {
	if msg.Action != tea.MouseActionPress || msg.Button != tea.MouseButtonLeft {
		return m, nil
	}
	if ov := m.overlay; ov != nil {
		if cellContains(ov.placement.Rect(), msg.X, msg.Y) {
			return m, nil
		}
		switch {
		case ov.options.DismissOnTapOutside:
			return m.dismissOverlay(popover.ReasonOutsideTap)
		case ov.options.IsModal:
			return m, nil
		}
	}

	for i, r := range m.regions {
		if cellContains(r.Rect, msg.X, msg.Y) {
			m.focus = i
			return m, m.activate(r)
		}
	}
	return m, nil
}

// dismissOverlay removes the popover and reports it to the controller.
func (m Model) dismissOverlay(reason popover.DismissReason) (tea.Model, tea.Cmd) {
	ov := m.overlay
	m.overlay = nil
	if ov.onDismiss == nil {
		return m, nil
	}
	return m, func() tea.Msg {
		ov.onDismiss(reason)
		return nil
	}
}

func (m Model) activate(r Region) tea.Cmd {
	if m.onActivate == nil {
		return nil
	}
	return func() tea.Msg {
		m.onActivate(r)
		return nil
	}
}

// View renders the screen.
func (m Model) View() string {
	if !m.ready {
		return "Initializing..."
	}
	if m.showHelp {
		return m.help.FullHelpView(m.keys.FullHelp())
	}

	screen := canvas(m.width, max(0, m.height-1))
	for i, r := range m.regions {
		x, y, w, h := cellRect(r.Rect)
		screen = composite(screen, renderRegion(r.Label, w, h, i == m.focus), x, y)
	}

	if ov := m.overlay; ov != nil {
		x, y, _, _ := cellRect(ov.placement.Rect())
		screen = composite(screen, renderBox(ov.text, ov.placement.Size, ov.options.BackgroundColor), x, y)
		ax, ay := arrowCell(ov.placement)
		screen = composite(screen, arrowStyle(ov.options.BackgroundColor).Render(ov.placement.ArrowGlyph()), ax, ay)
	}

	return screen + "\n" + m.statusLine()
}

func (m Model) statusLine() string {
	if m.status != "" {
		return lipgloss.NewStyle().Foreground(lipgloss.Color("7")).Render(m.status)
	}
	return m.buildKeybindBar(m.width)
}

func renderRegion(label string, w, h int, focused bool) string {
	if w < 2 || h < 2 {
		return ""
	}
	style := lipgloss.NewStyle().
		Border(lipgloss.NormalBorder()).
		Width(w - 2).
		Height(h - 2).
		MaxWidth(w).
		MaxHeight(h).
		Align(lipgloss.Center, lipgloss.Center)
	if focused {
		style = style.Bold(true).BorderForeground(lipgloss.Color("12"))
	}
	return style.Render(ansi.Truncate(label, w-2, "…"))
}

func arrowStyle(bg *model.Color) lipgloss.Style {
	if bg == nil {
		return lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#a0a0a0", Dark: "#606060"})
	}
	return lipgloss.NewStyle().Foreground(lipgloss.Color(bg.Color.Hex()))
}

// keybind represents a single keybind with priority for the status bar.
type keybind struct {
	key  string
	desc string
}

// buildKeybindBar builds a keybind bar that fits within the given width.
func (m Model) buildKeybindBar(width int) string {
	style := lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	keyStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("10"))

	// Most important first
	binds := []keybind{
		{"q", "quit"},
		{"enter", "show"},
		{"tab", "next"},
		{"esc", "dismiss"},
		{"?", "help"},
	}

	const separator = "  "
	result := ""
	for _, b := range binds {
		plain := b.key + " " + b.desc
		needed := ansi.StringWidth(plain)
		if result != "" {
			needed += ansi.StringWidth(result) + len(separator)
		}
		if width > 0 && needed > width {
			break
		}
		if result != "" {
			result += separator
		}
		result += keyStyle.Render(b.key) + " " + b.desc
	}

	return style.Render(result)
}

// DemoLayout puts five buttons in the corners and the middle.
func DemoLayout(width, height int) []Region {
	const bw, bh = 14, 3
	if width < bw || height < bh {
		return nil
	}
	right := float64(width - bw)
	bottom := float64(height - bh)
	midX := float64((width - bw) / 2)
	midY := float64((height - bh) / 2)

	region := func(name, label string, x, y float64) Region {
		return Region{Name: name, Label: label, Rect: model.Rect{X: x, Y: y, Width: bw, Height: bh}}
	}
	return []Region{
		region("top-left", "Top left", 0, 0),
		region("top-right", "Top right", right, 0),
		region("center", "Center", midX, midY),
		region("bottom-left", "Bottom left", 0, bottom),
		region("bottom-right", "Bottom right", right, bottom),
	}
}
