// Package tui hosts the toolbar over a scrollable notification list.
package tui

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/jmylchreest/overbar/internal/input"
	"github.com/jmylchreest/overbar/internal/model"
	"github.com/jmylchreest/overbar/internal/notify"
	"github.com/jmylchreest/overbar/internal/skin"
	"github.com/jmylchreest/overbar/internal/store"
	"github.com/jmylchreest/overbar/internal/toolbar"
)

// statusTimeout is how long a status message stays on screen.
const statusTimeout = 3 * time.Second

// Options configures the host model.
type Options struct {
	Store   *store.Store
	Source  *notify.StoreSource
	Toolbar *toolbar.Toolbar
	// Skins defaults to the embedded default skin.
	Skins skin.Provider
	// Clipboard defaults to the system clipboard tools.
	Clipboard clipboardFunc
}

// Model is the bubbletea root: a toolbar layered over a viewport listing
// notifications.
type Model struct {
	store     *store.Store
	source    *notify.StoreSource
	toolbar   *toolbar.Toolbar
	skins     skin.Provider
	styles    skin.Styles
	clipboard clipboardFunc

	viewport viewport.Model
	help     help.Model
	keys     KeyMap
	showHelp bool

	notifications []model.Notification
	width         int
	height        int
	ready         bool

	statusMsg string
	statusErr bool
}

// New creates the host model.
func New(opts Options) (Model, error) {
	if opts.Store == nil || opts.Source == nil || opts.Toolbar == nil {
		return Model{}, errors.New("tui: store, source and toolbar are required")
	}

	skins := opts.Skins
	if skins == nil {
		skins = skin.NewStatic(skin.Default())
	}
	clip := opts.Clipboard
	if clip == nil {
		clip = copyText
	}

	h := help.New()
	h.ShowAll = true

	m := Model{
		store:     opts.Store,
		source:    opts.Source,
		toolbar:   opts.Toolbar,
		skins:     skins,
		clipboard: clip,
		help:      h,
		keys:      DefaultKeyMap(),
	}
	m.applySkin()
	return m, nil
}

// Toolbar returns the hosted toolbar.
func (m Model) Toolbar() *toolbar.Toolbar { return m.toolbar }

// Viewport returns the content scroll container.
func (m Model) Viewport() viewport.Model { return m.viewport }

// Status returns the current status line message.
func (m Model) Status() string { return m.statusMsg }

// Init initializes the TUI.
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		loadNotifications,
		m.source.WaitForChange,
	)
}

type loadNotificationsMsg struct{}

func loadNotifications() tea.Msg {
	return loadNotificationsMsg{}
}

type skinChangedMsg struct {
	skin *skin.Skin
}

type statusMsg struct {
	text  string
	isErr bool
}

type clearStatusMsg struct{}

type copyResultMsg struct {
	count int
	err   error
}

func status(text string, isErr bool) tea.Cmd {
	return func() tea.Msg {
		return statusMsg{text: text, isErr: isErr}
	}
}

// Update handles messages and updates the model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case input.Chord:
		return m.updateToolbar(msg)

	case tea.MouseMsg:
		// The toolbar sits above the content and sees wheel events first.
		if m.toolbar.HandleMouse(msg) {
			return m, nil
		}
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return m, cmd

	case loadNotificationsMsg:
		m.source.Sync()
		m.refresh()
		return m, nil

	case notify.ChangedMsg:
		m.source.Sync()
		m.refresh()
		return m, m.source.WaitForChange

	case skinChangedMsg:
		m.applySkin()
		m.toolbar.Reload()
		m.refresh()
		return m, status("Skin: "+msg.skin.Name, false)

	case statusMsg:
		m.statusMsg = msg.text
		m.statusErr = msg.isErr
		return m, tea.Tick(statusTimeout, func(time.Time) tea.Msg {
			return clearStatusMsg{}
		})

	case clearStatusMsg:
		m.statusMsg = ""
		m.statusErr = false
		return m, nil

	case copyResultMsg:
		if msg.err != nil {
			return m, status("Copy failed: "+msg.err.Error(), true)
		}
		return m, status(fmt.Sprintf("Copied %d notifications", msg.count), false)
	}

	return m.updateToolbar(msg)
}

// updateToolbar forwards msg to the toolbar and reports a ruleset change on
// the status line.
func (m Model) updateToolbar(msg tea.Msg) (tea.Model, tea.Cmd) {
	before := m.toolbar.Selector().Current.Get()
	_, cmd := m.toolbar.Update(msg)
	if after := m.toolbar.Selector().Current.Get(); after != before {
		return m, tea.Batch(cmd, status("Ruleset: "+after.String(), false))
	}
	return m, cmd
}

// handleKey handles key presses. Ruleset shortcuts win over content keys.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if _, cmd := m.toolbar.Update(msg); cmd != nil {
		return m, cmd
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.Help):
		m.showHelp = !m.showHelp
		return m, nil

	case key.Matches(msg, m.keys.Toggle):
		m.toolbar.Update(toolbar.ToggleMsg{})
		return m, nil

	case key.Matches(msg, m.keys.MarkRead):
		if err := m.source.MarkAllRead(); err != nil {
			return m, status("Mark read failed: "+err.Error(), true)
		}
		m.source.Sync()
		m.refresh()
		return m, status("All notifications marked read", false)

	case key.Matches(msg, m.keys.CopyYAML):
		return m, m.copyUnread()

	case key.Matches(msg, m.keys.Home):
		m.viewport.GotoTop()
		return m, nil

	case key.Matches(msg, m.keys.End):
		m.viewport.GotoBottom()
		return m, nil
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

func (m *Model) resize(width, height int) {
	m.width = width
	m.height = height
	m.toolbar.SetWidth(width)

	// The bottom row is the status line.
	contentHeight := max(height-1, 1)
	if !m.ready {
		m.viewport = viewport.New(width, contentHeight)
		m.ready = true
	} else {
		m.viewport.Width = width
		m.viewport.Height = contentHeight
	}
	m.viewport.SetContent(m.renderContent())
}

func (m *Model) applySkin() {
	s := m.skins.Current()
	if s == nil {
		s = skin.Default()
	}
	m.styles = s.Styles()
}

// refresh reloads notifications from the store into the viewport.
func (m *Model) refresh() {
	all := m.store.All()
	visible := make([]model.Notification, 0, len(all))
	for _, n := range all {
		if !n.IsDismissed() {
			visible = append(visible, n)
		}
	}
	m.notifications = visible
	if m.ready {
		m.viewport.SetContent(m.renderContent())
	}
}

func (m Model) copyUnread() tea.Cmd {
	var unread []model.Notification
	for _, n := range m.notifications {
		if n.IsUnread() && !m.source.Muted(n.AppName) {
			unread = append(unread, n)
		}
	}
	text, err := marshalYAML(unread)
	if err != nil {
		return status(err.Error(), true)
	}
	clip := m.clipboard
	return func() tea.Msg {
		return copyResultMsg{count: len(unread), err: clip(text)}
	}
}

// renderContent renders one line per notification, newest first.
func (m Model) renderContent() string {
	if len(m.notifications) == 0 {
		return m.styles.Muted.Render("No notifications")
	}

	lines := make([]string, 0, len(m.notifications))
	for _, n := range m.notifications {
		marker := "  "
		if n.IsUnread() {
			marker = m.styles.Badge.Render("●") + " "
		}
		app := m.styles.Muted.Render("[" + n.AppName + "]")
		age := m.styles.Muted.Render(n.RelativeTime())
		line := fmt.Sprintf("%s%s %s  %s", marker, app, n.Summary, age)
		if body := n.BodyTruncated(m.width / 2); body != "" {
			line += "  " + body
		}
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n")
}

// View renders the TUI.
func (m Model) View() string {
	if !m.ready {
		return "Initializing..."
	}

	var body string
	if m.showHelp {
		body = lipgloss.NewStyle().Height(m.viewport.Height).Render(m.help.View(m.helpKeys()))
	} else {
		body = m.viewport.View()
	}
	body = overlayTop(body, m.toolbar.View())

	return body + "\n" + m.statusLine()
}

func (m Model) helpKeys() help.KeyMap {
	return helpKeys{KeyMap: m.keys, rulesets: m.toolbar.Selector().Bindings()}
}

func (m Model) statusLine() string {
	if m.statusMsg != "" {
		if m.statusErr {
			return m.styles.Error.Render(m.statusMsg)
		}
		return m.styles.Status.Render(m.statusMsg)
	}
	return m.buildKeybindBar(m.width)
}

// overlayTop draws overlay over the first lines of base. An empty overlay
// leaves base untouched.
func overlayTop(base, overlay string) string {
	if overlay == "" {
		return base
	}
	baseLines := strings.Split(base, "\n")
	overLines := strings.Split(strings.TrimRight(overlay, "\n"), "\n")
	for i, line := range overLines {
		if i >= len(baseLines) {
			baseLines = append(baseLines, line)
			continue
		}
		baseLines[i] = line
	}
	return strings.Join(baseLines, "\n")
}

// keybind represents a single keybind with priority for the status bar.
type keybind struct {
	key      string
	desc     string
	priority int // lower = more important (shown first)
}

// buildKeybindBar builds a keybind bar that fits within the given width.
func (m Model) buildKeybindBar(width int) string {
	binds := []keybind{
		{"q", "quit", 1},
		{"t", "toolbar", 2},
		{"alt+1-9", "ruleset", 3},
		{"m", "mark read", 4},
		{"?", "help", 5},
		{"j/k", "scroll", 6},
		{"y", "copy", 7},
	}

	const separator = "  "
	result := ""
	for _, b := range binds {
		item := m.styles.ActiveRuleset.Render(b.key) + " " + b.desc
		testLen := lipgloss.Width(result) + lipgloss.Width(b.key+" "+b.desc)
		if result != "" {
			testLen += len(separator)
		}
		if width > 0 && testLen > width {
			break
		}
		if result != "" {
			result += separator
		}
		result += item
	}

	return m.styles.Muted.Render(result)
}
