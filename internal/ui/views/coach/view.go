package coach

import (
	"context"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"prax/internal/modules/coach/dto"
	"prax/internal/ui/theme"
)

// ─── port ────────────────────────────────────────────────────────────────────

// Port is the minimal interface this view needs from the coach use-case.
type Port interface {
	Status(ctx context.Context) (dto.CoachInfo, bool, error)
	Doctor(ctx context.Context) ([]dto.DoctorResult, error)
}

// ─── messages ────────────────────────────────────────────────────────────────

type StatusLoadedMsg struct {
	Info       dto.CoachInfo
	Configured bool
	Err        error
}

type DoctorDoneMsg struct {
	Results []dto.DoctorResult
	Err     error
}

// ─── model ───────────────────────────────────────────────────────────────────

// Model is the self-contained Bubble Tea model for the Coach tab. It shows
// the configured coach plugin and on demand runs health checks against it.
type Model struct {
	port       Port
	output     viewport.Model
	spinner    spinner.Model
	info       dto.CoachInfo
	configured bool
	results    []dto.DoctorResult
	loading    bool
	width      int
	height     int
}

func New(port Port) Model {
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
		output:  vp,
		spinner: sp,
		loading: true,
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(m.loadStatusCmd(), m.spinner.Tick)
}

// RunDoctor triggers the plugin health checks — used by the command palette
// and the d key binding.
func (m *Model) RunDoctor() tea.Cmd {
	if m.port == nil {
		return nil
	}
	m.loading = true
	return tea.Batch(m.doctorCmd(), m.spinner.Tick)
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.output.Width = m.width - 4
		m.output.Height = m.height - 4

	case StatusLoadedMsg:
		m.loading = false
		if msg.Err != nil {
			m.output.SetContent(theme.Hot.Render("coach status: " + msg.Err.Error()))
			return m, nil
		}
		m.info = msg.Info
		m.configured = msg.Configured
		m.output.SetContent(m.render())

	case DoctorDoneMsg:
		m.loading = false
		if msg.Err != nil {
			m.output.SetContent(theme.Hot.Render("coach doctor: " + msg.Err.Error()))
			return m, nil
		}
		m.results = msg.Results
		m.output.SetContent(m.render())

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		cmds = append(cmds, cmd)

	case tea.KeyMsg:
		if msg.String() == "d" && !m.loading {
			cmds = append(cmds, m.RunDoctor())
			return m, tea.Batch(cmds...)
		}
	}

	var vCmd tea.Cmd
	m.output, vCmd = m.output.Update(msg)
	cmds = append(cmds, vCmd)

	return m, tea.Batch(cmds...)
}

func (m Model) View() string {
	if m.loading {
		return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center,
			m.spinner.View()+" Checking coach…")
	}
	return lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(theme.Surface1).
		Background(theme.Mantle).
		Width(m.width - 2).
		Height(m.height - 2).
		Render(m.output.View())
}

// ─── private ─────────────────────────────────────────────────────────────────

func (m Model) render() string {
	var sb strings.Builder
	sb.WriteString(theme.Title.Render("AI Coach") + "\n\n")

	if !m.configured {
		sb.WriteString(theme.Muted.Render("No coach plugin configured.\n"))
		sb.WriteString(theme.Muted.Render("Reflection prompts fall back to built-in text.\n"))
		return sb.String()
	}

	sb.WriteString(theme.Muted.Render("name:    ") + m.info.Name + "\n")
	sb.WriteString(theme.Muted.Render("version: ") + m.info.Version + "\n")
	sb.WriteString(theme.Muted.Render("binary:  ") + m.info.Binary + "\n")
	if m.info.Enabled {
		sb.WriteString(theme.Muted.Render("state:   ") + theme.BadgeCompleted.Render("enabled") + "\n")
	} else {
		sb.WriteString(theme.Muted.Render("state:   ") + theme.BadgeExpired.Render("disabled") + "\n")
	}

	if len(m.results) > 0 {
		sb.WriteString("\n" + theme.Title.Render("Doctor") + "\n\n")
		for _, r := range m.results {
			sb.WriteString(r.Name + "\n")
			sb.WriteString("  binary    " + checkMark(r.BinaryReachable) + "\n")
			sb.WriteString("  checksum  " + checkMark(r.ChecksumValid) + "\n")
			sb.WriteString("  lifecycle " + checkMark(r.LifecycleOK) + "\n")
			if r.Error != "" {
				sb.WriteString("  " + theme.Hot.Render(r.Error) + "\n")
			}
		}
	}

	sb.WriteString("\n" + theme.Muted.Render("d: run doctor"))
	return sb.String()
}

func checkMark(ok bool) string {
	if ok {
		return theme.BadgeCompleted.Render("ok")
	}
	return theme.BadgeExpired.Render("fail")
}

func (m Model) loadStatusCmd() tea.Cmd {
	return func() tea.Msg {
		if m.port == nil {
			return StatusLoadedMsg{}
		}
		info, configured, err := m.port.Status(context.Background())
		return StatusLoadedMsg{Info: info, Configured: configured, Err: err}
	}
}

func (m Model) doctorCmd() tea.Cmd {
	return func() tea.Msg {
		results, err := m.port.Doctor(context.Background())
		return DoctorDoneMsg{Results: results, Err: err}
	}
}
