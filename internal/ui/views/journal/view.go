package journal

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"prax/internal/modules/practice/dto"
	"prax/internal/ui/theme"
)

// ─── port ────────────────────────────────────────────────────────────────────

type JournalPort interface {
	ListAreas(ctx context.Context) ([]dto.AreaOutput, error)
	ListSessions(ctx context.Context, areaID string) ([]dto.SessionOutput, error)
}

// ─── messages ────────────────────────────────────────────────────────────────

type AreasLoadedMsg struct {
	Areas []dto.AreaOutput
	Err   error
}

type SessionsLoadedMsg struct {
	AreaID   string
	Sessions []dto.SessionOutput
	Err      error
}

// ─── list item ───────────────────────────────────────────────────────────────

type areaItem struct {
	area dto.AreaOutput
}

func (i areaItem) Title() string       { return i.area.Name }
func (i areaItem) Description() string { return i.area.TypeLabel }
func (i areaItem) FilterValue() string { return i.area.Name }

// ─── model ───────────────────────────────────────────────────────────────────

type Model struct {
	port     JournalPort
	list     list.Model
	sessions []dto.SessionOutput
	detail   viewport.Model
	spinner  spinner.Model
	loading  bool
	width    int
	height   int
}

func New(port JournalPort) Model {
	delegate := list.NewDefaultDelegate()
	delegate.Styles.SelectedTitle = delegate.Styles.SelectedTitle.Foreground(theme.Lavender).BorderForeground(theme.Lavender)
	delegate.Styles.SelectedDesc = delegate.Styles.SelectedDesc.Foreground(theme.Sapphire).BorderForeground(theme.Lavender)

	l := list.New(nil, delegate, 0, 0)
	l.Title = "Practice Areas"
	l.Styles.Title = theme.Title
	l.SetShowStatusBar(true)
	l.SetFilteringEnabled(true)
	l.SetShowHelp(false)

	vp := viewport.New(0, 0)
	vp.Style = lipgloss.NewStyle().
		Background(theme.Mantle).
		Foreground(theme.Text).
		Padding(1)

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(theme.Lavender)

	return Model{
		port:    port,
		list:    l,
		detail:  vp,
		spinner: sp,
		loading: true,
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(m.loadAreasCmd(), m.spinner.Tick)
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resize()

	case AreasLoadedMsg:
		m.loading = false
		if msg.Err != nil {
			m.list.Title = "Practice Areas — " + msg.Err.Error()
			return m, nil
		}
		items := make([]list.Item, len(msg.Areas))
		for i, a := range msg.Areas {
			items[i] = areaItem{area: a}
		}
		cmds = append(cmds, m.list.SetItems(items))
		if len(msg.Areas) > 0 {
			cmds = append(cmds, m.loadSessionsCmd(msg.Areas[0].ID))
		}

	case SessionsLoadedMsg:
		if msg.Err == nil {
			m.sessions = msg.Sessions
			m.detail.SetContent(m.renderSessions())
		}

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		cmds = append(cmds, cmd)
	}

	if !m.loading {
		var lCmd tea.Cmd
		prevIdx := m.list.Index()
		m.list, lCmd = m.list.Update(msg)
		cmds = append(cmds, lCmd)
		if m.list.Index() != prevIdx {
			if item, ok := m.list.SelectedItem().(areaItem); ok {
				cmds = append(cmds, m.loadSessionsCmd(item.area.ID))
			}
		}

		var vCmd tea.Cmd
		m.detail, vCmd = m.detail.Update(msg)
		cmds = append(cmds, vCmd)
	}

	return m, tea.Batch(cmds...)
}

func (m Model) View() string {
	if m.loading {
		return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center,
			m.spinner.View()+" Loading journal…")
	}

	listW := m.width * 4 / 10
	detailW := m.width - listW

	listPane := lipgloss.NewStyle().
		Width(listW).
		Height(m.height).
		Render(m.list.View())

	detailPane := lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(theme.Surface1).
		Background(theme.Mantle).
		Width(detailW - 2).
		Height(m.height - 2).
		Render(m.detail.View())

	return lipgloss.JoinHorizontal(lipgloss.Top, listPane, detailPane)
}

// SelectedAreaID returns the current selection's area ID, if any.
func (m Model) SelectedAreaID() (string, bool) {
	if item, ok := m.list.SelectedItem().(areaItem); ok {
		return item.area.ID, true
	}
	return "", false
}

// SelectedAreaName returns the current selection's name.
func (m Model) SelectedAreaName() string {
	if item, ok := m.list.SelectedItem().(areaItem); ok {
		return item.area.Name
	}
	return ""
}

// Filtering reports whether the list's search filter is currently active.
// The app model checks this to avoid consuming global keys during a search.
func (m Model) Filtering() bool {
	return m.list.FilterState() == list.Filtering
}

// Refresh reloads the area list and the selected area's sessions.
func (m Model) Refresh() tea.Cmd {
	cmds := []tea.Cmd{m.loadAreasCmd()}
	if id, ok := m.SelectedAreaID(); ok {
		cmds = append(cmds, m.loadSessionsCmd(id))
	}
	return tea.Batch(cmds...)
}

// ─── private ─────────────────────────────────────────────────────────────────

func (m *Model) resize() {
	listW := m.width * 4 / 10
	detailW := m.width - listW
	m.list.SetSize(listW, m.height)
	m.detail.Width = detailW - 4
	m.detail.Height = m.height - 4
}

func (m Model) renderSessions() string {
	if len(m.sessions) == 0 {
		return theme.Muted.Render("No sessions in this area yet")
	}
	var sb strings.Builder
	sb.WriteString(theme.Title.Render("Sessions") + "\n\n")
	for _, s := range m.sessions {
		sb.WriteString(stateBadge(s) + "  " + s.Intent + "\n")
		sb.WriteString(theme.Muted.Render("      started ") + s.StartedAt.Format("2006-01-02 15:04"))
		if s.Ended {
			sb.WriteString(theme.Muted.Render("  duration ") + formatDuration(s.ActualSeconds))
			if s.TargetSeconds > 0 {
				sb.WriteString(theme.Muted.Render(" / target ") + formatDuration(s.TargetSeconds))
			}
		}
		sb.WriteString("\n")
		if s.Ended && s.State.Status == "pending" {
			sb.WriteString(theme.Muted.Render(fmt.Sprintf("      reflect within %dh\n", s.State.HoursRemaining)))
		}
		sb.WriteString("\n")
	}
	sb.WriteString(theme.Muted.Render("s: start session  e: end session  r: reflect"))
	return sb.String()
}

func stateBadge(s dto.SessionOutput) string {
	if !s.Ended {
		return theme.BadgeActive.Render("[active]")
	}
	switch s.State.Status {
	case "completed":
		badge := "[completed]"
		if s.State.IsEdited {
			badge = "[completed*]"
		}
		return theme.BadgeCompleted.Render(badge)
	case "pending":
		return theme.BadgePending.Render("[pending]")
	case "overdue":
		return theme.BadgeOverdue.Render("[overdue]")
	case "expired":
		return theme.BadgeExpired.Render("[expired]")
	}
	return theme.Muted.Render("[" + s.State.Status + "]")
}

func formatDuration(seconds int) string {
	d := time.Duration(seconds) * time.Second
	if d >= time.Hour {
		return fmt.Sprintf("%dh%02dm", int(d.Hours()), int(d.Minutes())%60)
	}
	return fmt.Sprintf("%dm%02ds", int(d.Minutes()), int(d.Seconds())%60)
}

func (m Model) loadAreasCmd() tea.Cmd {
	return func() tea.Msg {
		areas, err := m.port.ListAreas(context.Background())
		return AreasLoadedMsg{Areas: areas, Err: err}
	}
}

func (m Model) loadSessionsCmd(areaID string) tea.Cmd {
	return func() tea.Msg {
		sessions, err := m.port.ListSessions(context.Background(), areaID)
		return SessionsLoadedMsg{AreaID: areaID, Sessions: sessions, Err: err}
	}
}
