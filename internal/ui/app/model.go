package app

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	archivedto "prax/internal/modules/archive/dto"
	coachdto "prax/internal/modules/coach/dto"
	"prax/internal/modules/practice/dto"
	"prax/internal/ui/components"
	"prax/internal/ui/theme"
	coachview "prax/internal/ui/views/coach"
	journalview "prax/internal/ui/views/journal"
)

// ─── ports ───────────────────────────────────────────────────────────────────
// Each port is the minimal interface that this orchestration layer requires.
// Sub-view ports are defined in their own packages and narrowed further.

type journalPort interface {
	ListAreas(ctx context.Context) ([]dto.AreaOutput, error)
	ListSessions(ctx context.Context, areaID string) ([]dto.SessionOutput, error)
}

type coachPort interface {
	Status(ctx context.Context) (coachdto.CoachInfo, bool, error)
	Doctor(ctx context.Context) ([]coachdto.DoctorResult, error)
}

type archivePort interface {
	Export(ctx context.Context, path string) (archivedto.ExportOutput, error)
}

// ─── tab index ───────────────────────────────────────────────────────────────

type tabID int

const (
	tabJournal tabID = iota
	tabCoach
	tabCount
)

var tabLabels = [tabCount]string{"Journal", "Coach"}

// ─── async messages ───────────────────────────────────────────────────────────

type exportDoneMsg struct {
	out archivedto.ExportOutput
	err error
}

// ─── key bindings ─────────────────────────────────────────────────────────────

type keyMap struct {
	Tab     key.Binding
	Help    key.Binding
	Palette key.Binding
	Quit    key.Binding
	Refresh key.Binding
	Doctor  key.Binding
}

func defaultKeys() keyMap {
	return keyMap{
		Tab:     key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "next tab")),
		Help:    key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
		Palette: key.NewBinding(key.WithKeys(":"), key.WithHelp(":", "palette")),
		Quit:    key.NewBinding(key.WithKeys("ctrl+c", "q"), key.WithHelp("q", "quit")),
		Refresh: key.NewBinding(key.WithKeys("R"), key.WithHelp("R", "refresh journal")),
		Doctor:  key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "coach doctor")),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Tab, k.Help, k.Palette, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Tab, k.Refresh, k.Doctor},
		{k.Help, k.Palette, k.Quit},
	}
}

// ─── model ───────────────────────────────────────────────────────────────────

// Model is the root Bubble Tea model. It owns tab routing, the global help
// overlay, and the command palette. All business logic is delegated to port
// interfaces; all rendering is delegated to sub-views.
type Model struct {
	archive archivePort

	journalView journalview.Model
	coachView   coachview.Model

	activeTab tabID
	keys      keyMap
	help      help.Model
	showHelp  bool
	palette   components.Palette
	status    string
	width     int
	height    int
}

// ─── constructor ─────────────────────────────────────────────────────────────

func NewModel(journal journalPort, coach coachPort, archive archivePort) Model {
	var coachV coachview.Model
	if coach != nil {
		coachV = coachview.New(coachPortBridge{p: coach})
	} else {
		coachV = coachview.New(nil)
	}

	return Model{
		archive:     archive,
		journalView: journalview.New(journalPortBridge{p: journal}),
		coachView:   coachV,
		activeTab:   tabJournal,
		keys:        defaultKeys(),
		help:        help.New(),
		palette:     components.NewPalette(),
		status:      "ready",
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(
		m.journalView.Init(),
		m.coachView.Init(),
	)
}

// ─── update ───────────────────────────────────────────────────────────────────

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	// The palette intercepts all input while open.
	if m.palette.Visible() {
		var cmd tea.Cmd
		m.palette, cmd = m.palette.Update(msg)
		return m, cmd
	}

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.palette.SetWidth(min(m.width-4, 80))
		m.help.Width = m.width
		m.propagateSize()

	case exportDoneMsg:
		if msg.err != nil {
			m.status = "export failed: " + msg.err.Error()
		} else {
			m.status = fmt.Sprintf("exported %d areas, %d sessions, %d reflections to %s",
				msg.out.PracticeAreas, msg.out.Sessions, msg.out.Reflections, msg.out.Path)
		}

	case components.PaletteSubmitMsg:
		return m.executePalette(msg.Input)

	case components.PaletteCancelMsg:
		m.status = "ready"

	case tea.KeyMsg:
		if m.showHelp {
			if msg.String() == "?" || msg.String() == "esc" {
				m.showHelp = false
			}
			return m, nil
		}

		// Yield to sub-view when its search filter is active.
		if m.subViewFiltering() {
			break
		}

		switch msg.String() {
		case "ctrl+c", "q":
			return m, tea.Quit
		case "tab":
			m.activeTab = (m.activeTab + 1) % tabCount
		case "shift+tab":
			m.activeTab = (m.activeTab + tabCount - 1) % tabCount
		case "?":
			m.showHelp = !m.showHelp
		case ":":
			cmds = append(cmds, m.palette.Open())
			return m, tea.Batch(cmds...)
		case "R":
			if m.activeTab == tabJournal {
				m.status = "journal refreshed"
				cmds = append(cmds, m.journalView.Refresh())
			}
		}
	}

	// Propagate the message to the active tab's sub-view.
	var tabCmd tea.Cmd
	switch m.activeTab {
	case tabJournal:
		m.journalView, tabCmd = m.journalView.Update(msg)
	case tabCoach:
		m.coachView, tabCmd = m.coachView.Update(msg)
	}
	cmds = append(cmds, tabCmd)

	return m, tea.Batch(cmds...)
}

// ─── view ────────────────────────────────────────────────────────────────────

func (m Model) View() string {
	tabBar := m.renderTabBar()
	statusBar := m.renderStatusBar()
	tabBarH := lipgloss.Height(tabBar)
	statusBarH := lipgloss.Height(statusBar)

	contentH := m.height - tabBarH - statusBarH
	if contentH < 1 {
		contentH = 1
	}

	var content string
	switch {
	case m.showHelp:
		content = lipgloss.NewStyle().Width(m.width).Height(contentH).
			Render(m.help.View(m.keys))
	case m.palette.Visible():
		content = lipgloss.Place(m.width, contentH,
			lipgloss.Center, lipgloss.Center, m.palette.View())
	default:
		content = m.activeView()
	}

	return lipgloss.JoinVertical(lipgloss.Left, tabBar, content, statusBar)
}

func (m Model) activeView() string {
	switch m.activeTab {
	case tabJournal:
		return m.journalView.View()
	case tabCoach:
		return m.coachView.View()
	}
	return ""
}

func (m Model) renderTabBar() string {
	parts := make([]string, tabCount)
	for i := tabID(0); i < tabCount; i++ {
		label := tabLabels[i]
		if i == m.activeTab {
			parts[i] = theme.Hot.Render(" " + label + " ")
		} else {
			parts[i] = theme.Muted.Render(" " + label + " ")
		}
	}
	sep := theme.Muted.Render(" │ ")
	bar := "prax  " + strings.Join(parts, sep)
	return lipgloss.NewStyle().Background(theme.Mantle).Width(m.width).Render(bar) + "\n"
}

func (m Model) renderStatusBar() string {
	left := m.status
	right := theme.Muted.Render("?:help  tab:switch  :::palette  q:quit")
	gap := m.width - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 1 {
		gap = 1
	}
	bar := left + strings.Repeat(" ", gap) + right
	return "\n" + lipgloss.NewStyle().Background(theme.Mantle).Width(m.width).Render(bar)
}

// ─── palette execution ────────────────────────────────────────────────────────

func (m Model) executePalette(input string) (tea.Model, tea.Cmd) {
	if strings.TrimSpace(input) == "" {
		return m, nil
	}
	parts := strings.Fields(input)

	switch parts[0] {
	case "journal:refresh":
		m.activeTab = tabJournal
		m.status = "journal refreshed"
		return m, m.journalView.Refresh()

	case "archive:export":
		if len(parts) < 2 {
			m.status = "usage: archive:export <path>"
			return m, nil
		}
		m.status = "exporting…"
		return m, m.exportCmd(parts[1])

	case "coach:doctor":
		m.activeTab = tabCoach
		return m, m.coachView.RunDoctor()

	default:
		m.status = "unknown command: " + parts[0]
	}
	return m, nil
}

// ─── helpers ─────────────────────────────────────────────────────────────────

// subViewFiltering reports whether the active tab's list filter is open,
// in which case global key bindings must yield to allow free typing.
func (m Model) subViewFiltering() bool {
	if m.activeTab == tabJournal {
		return m.journalView.Filtering()
	}
	return false
}

func (m *Model) propagateSize() {
	sz := tea.WindowSizeMsg{Width: m.width, Height: m.height - 3}
	m.journalView, _ = m.journalView.Update(sz)
	m.coachView, _ = m.coachView.Update(sz)
}

// ─── async commands ───────────────────────────────────────────────────────────

func (m Model) exportCmd(path string) tea.Cmd {
	return func() tea.Msg {
		if m.archive == nil {
			return exportDoneMsg{err: fmt.Errorf("archive adapter not configured")}
		}
		out, err := m.archive.Export(context.Background(), path)
		return exportDoneMsg{out: out, err: err}
	}
}

// ─── port bridges ─────────────────────────────────────────────────────────────
// Each bridge narrows a broad port interface to the minimal interface needed by
// a specific sub-view, keeping view packages free of knowledge about the wider
// port surface.

type journalPortBridge struct{ p journalPort }

func (b journalPortBridge) ListAreas(ctx context.Context) ([]dto.AreaOutput, error) {
	return b.p.ListAreas(ctx)
}
func (b journalPortBridge) ListSessions(ctx context.Context, areaID string) ([]dto.SessionOutput, error) {
	return b.p.ListSessions(ctx, areaID)
}

type coachPortBridge struct{ p coachPort }

func (b coachPortBridge) Status(ctx context.Context) (coachdto.CoachInfo, bool, error) {
	return b.p.Status(ctx)
}
func (b coachPortBridge) Doctor(ctx context.Context) ([]coachdto.DoctorResult, error) {
	return b.p.Doctor(ctx)
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}
