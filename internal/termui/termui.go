// Package termui is the reference terminal GlkOte client: a bubbletea
// program that renders the runtime's window tree with lipgloss and feeds
// keyboard input back through internal/host's channel transport. It
// stands in for a real browser/Electron display (§6 "Reference terminal
// client"; SPEC_FULL.md §2b), grounded on glow's ui package for the
// overall bubbletea Model/Update/View shape.
package termui

import (
	"sort"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
	te "github.com/muesli/termenv"
	"github.com/muesli/reflow/wordwrap"
	"golang.org/x/term"

	"github.com/glkgo/remglk/internal/glkapi"
)

// Transport is the client-side half of internal/host's in-process channel
// pair: the subset of *host.Host termui actually drives.
type Transport interface {
	NextUpdate() (*glkapi.Update, bool)
	PushEvent(ev *glkapi.InboundEvent)
}

// pane is the client's local copy of one leaf window's rendered state,
// rebuilt from each ContentUpdate the runtime sends (§4.5: updates are
// diffs, the display owns the cumulative picture).
type pane struct {
	id       uint32
	wintype  string
	left     float64
	top      float64
	width    float64
	height   float64
	lines    []string
	gridRows [][]glkapi.TextRun
	input    glkapi.InputUpdate
	hasInput bool
}

// Model is the bubbletea program state. One Model exists per run, bound
// to one Transport.
type Model struct {
	transport Transport

	panes map[uint32]*pane
	order []uint32
	gen   uint32

	pendingLine *pane
	lineBuf     strings.Builder

	viewport viewport.Model
	width    int
	height   int

	done    bool
	message string

	picker      *filePicker
	workingDir  string

	style     lipgloss.Style
	inputLine lipgloss.Style
}

// nextUpdateMsg wraps an update pulled off the transport so bubbletea's
// event loop can dispatch it like any other message.
type nextUpdateMsg struct {
	update *glkapi.Update
	ok     bool
}

// New builds the initial Model. termWidth/termHeight seed the first Arrange
// event's metrics; 0 means "ask the terminal" via golang.org/x/term.
func New(transport Transport, termWidth, termHeight int) Model {
	if termWidth <= 0 || termHeight <= 0 {
		if w, h, err := term.GetSize(0); err == nil {
			termWidth, termHeight = w, h
		} else {
			termWidth, termHeight = 80, 24
		}
	}
	border := lipgloss.Color("252")
	if te.HasDarkBackground() {
		border = lipgloss.Color("240")
	}
	return Model{
		transport:  transport,
		panes:      make(map[uint32]*pane),
		width:      termWidth,
		height:     termHeight,
		workingDir: ".",
		style:      lipgloss.NewStyle().Padding(0, 1).BorderForeground(border).Border(lipgloss.NormalBorder(), false, false, true, false),
		inputLine:  lipgloss.NewStyle().Bold(true),
	}
}

func (m Model) Init() tea.Cmd {
	return waitForUpdate(m.transport)
}

func waitForUpdate(t Transport) tea.Cmd {
	return func() tea.Msg {
		u, ok := t.NextUpdate()
		return nextUpdateMsg{update: u, ok: ok}
	}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.transport.PushEvent(&glkapi.InboundEvent{
			Gen:  m.gen,
			Type: "arrange",
			Metrics: &glkapi.Metrics{
				Width:  float64(msg.Width),
				Height: float64(msg.Height),
			},
		})
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case nextUpdateMsg:
		if !msg.ok {
			m.done = true
			return m, tea.Quit
		}
		m.applyUpdate(msg.update)
		if msg.update.Disable {
			m.done = true
			return m, tea.Quit
		}
		return m, waitForUpdate(m.transport)
	}
	return m, nil
}

// handleKey routes a keypress to whichever pane currently owns char or
// line input, per §6's event shapes. Only one window may hold line input
// at a time in this reference client (no multi-focus). A pending fileref
// prompt (§4.6) takes priority over any window's input.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.picker != nil {
		path, done := m.picker.handleKey(msg)
		if done {
			m.transport.PushEvent(specialResponseEvent(m.gen, path))
			m.picker = nil
		}
		return m, nil
	}

	target := m.focusedPane()
	if target == nil {
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		return m, nil
	}

	if target.input.Type == "char" {
		val := keyToGlkValue(msg)
		m.transport.PushEvent(&glkapi.InboundEvent{
			Gen: m.gen, Type: "char", Window: target.id, Value: val,
		})
		return m, nil
	}

	switch msg.Type {
	case tea.KeyEnter:
		line := m.lineBuf.String()
		m.lineBuf.Reset()
		m.transport.PushEvent(&glkapi.InboundEvent{
			Gen: m.gen, Type: "line", Window: target.id, Value: line, Terminator: "",
		})
		return m, nil
	case tea.KeyBackspace:
		s := m.lineBuf.String()
		if len(s) > 0 {
			r := []rune(s)
			m.lineBuf.Reset()
			m.lineBuf.WriteString(string(r[:len(r)-1]))
		}
		return m, nil
	case tea.KeyCtrlC:
		return m, tea.Quit
	case tea.KeyRunes, tea.KeySpace:
		m.lineBuf.WriteString(msg.String())
		return m, nil
	}
	return m, nil
}

func (m Model) focusedPane() *pane {
	for _, id := range m.order {
		p := m.panes[id]
		if p != nil && p.hasInput && (p.input.Type == "char" || p.input.Type == "line") {
			return p
		}
	}
	return nil
}

// keyToGlkValue maps a bubbletea key to the single-character string
// RequestCharEvent expects, falling back to Glk's special key names for
// non-printable keys (mirrors remglk-rs's keycode table, internal/glkapi's
// keycodes.go).
func keyToGlkValue(msg tea.KeyMsg) string {
	switch msg.Type {
	case tea.KeyEnter:
		return "return"
	case tea.KeyUp:
		return "up"
	case tea.KeyDown:
		return "down"
	case tea.KeyLeft:
		return "left"
	case tea.KeyRight:
		return "right"
	case tea.KeyTab:
		return "tab"
	case tea.KeyBackspace:
		return "delete"
	case tea.KeyEsc:
		return "escape"
	default:
		return msg.String()
	}
}

// applyUpdate folds one state update into the client's local pane map,
// mirroring §4.5's content/windows/input fields.
func (m *Model) applyUpdate(u *glkapi.Update) {
	m.gen = u.Gen
	m.message = u.Message

	if u.SpecialInput != nil && u.SpecialInput.Type == "fileref_prompt" {
		fp := newFilePicker(m.workingDir)
		m.picker = &fp
	}

	for _, wu := range u.Windows {
		p, ok := m.panes[wu.ID]
		if !ok {
			p = &pane{id: wu.ID}
			m.panes[wu.ID] = p
			m.order = append(m.order, wu.ID)
			sort.Slice(m.order, func(i, j int) bool { return m.order[i] < m.order[j] })
		}
		p.wintype = wu.Type
		p.left, p.top, p.width, p.height = wu.Left, wu.Top, wu.Width, wu.Height
	}

	for _, cu := range u.Content {
		p, ok := m.panes[cu.ID]
		if !ok {
			continue
		}
		if cu.Clear {
			p.lines = nil
			p.gridRows = nil
		}
		if cu.Text != nil {
			for _, para := range cu.Text {
				var sb strings.Builder
				for _, ld := range para.Content {
					if ld.Text != nil {
						sb.WriteString(ld.Text.Text)
					}
				}
				p.lines = append(p.lines, sb.String())
			}
		}
		if cu.Lines != nil {
			need := 0
			for _, gl := range cu.Lines {
				if int(gl.Line)+1 > need {
					need = int(gl.Line) + 1
				}
			}
			for len(p.gridRows) < need {
				p.gridRows = append(p.gridRows, nil)
			}
			for _, gl := range cu.Lines {
				p.gridRows[gl.Line] = gl.Content
			}
		}
	}

	for _, p := range m.panes {
		p.hasInput = false
	}
	for _, iu := range u.Input {
		if p, ok := m.panes[iu.ID]; ok {
			p.input = iu
			p.hasInput = true
		}
	}
}

// View renders every pane stacked top-to-bottom, in window-id order, using
// lipgloss borders and muesli/reflow word-wrapping for buffer text, and a
// monospace grid for grid windows sized via go-runewidth.
func (m Model) View() string {
	if m.done {
		if m.message != "" {
			return m.message + "\n"
		}
		return "disconnected.\n"
	}

	var b strings.Builder
	for _, id := range m.order {
		p := m.panes[id]
		if p == nil || p.wintype == "pair" {
			continue
		}
		b.WriteString(m.renderPane(p))
		b.WriteString("\n")
	}
	if m.picker != nil {
		b.WriteString(m.picker.view(m.width))
	} else if m.lineBuf.Len() > 0 {
		b.WriteString(m.inputLine.Render("> " + m.lineBuf.String()))
	}
	return b.String()
}

func (m Model) renderPane(p *pane) string {
	width := int(p.width)
	if width <= 0 || width > m.width {
		width = m.width
	}
	switch p.wintype {
	case "grid":
		var rows []string
		for _, row := range p.gridRows {
			var sb strings.Builder
			for _, run := range row {
				sb.WriteString(run.Text)
			}
			line := sb.String()
			if runewidth.StringWidth(line) < width {
				line += strings.Repeat(" ", width-runewidth.StringWidth(line))
			}
			rows = append(rows, line)
		}
		return m.style.Render(strings.Join(rows, "\n"))
	case "graphics":
		return m.style.Render("[graphics window]")
	default:
		wrapped := wordwrap.String(strings.Join(p.lines, "\n"), width)
		return m.style.Render(wrapped)
	}
}

// Run starts the bubbletea program against the given transport and blocks
// until the session ends (the host stops sending updates, or the user
// quits). size is an optional terminal-size override; pass (0, 0) to
// auto-detect via golang.org/x/term.
func Run(transport Transport, size ...int) error {
	w, h := 0, 0
	if len(size) == 2 {
		w, h = size[0], size[1]
	}
	p := tea.NewProgram(New(transport, w, h), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
