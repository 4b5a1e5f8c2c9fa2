package cli

import (
	"context"
	"fmt"
	"strings"

	"charm.land/bubbles/v2/spinner"
	"charm.land/bubbles/v2/textarea"
	tea "charm.land/bubbletea/v2"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/abysslabs/abyss/internal/agent"
	"github.com/abysslabs/abyss/internal/models"
	"github.com/abysslabs/abyss/internal/session"
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Open the interactive conversation (default)",
	Args:  cobra.NoArgs,
	RunE:  runChat,
}

// Theme holds the color scheme for the chat display.
type Theme struct {
	Title     lipgloss.Color
	UserText  lipgloss.Color
	AgentText lipgloss.Color
	Meta      lipgloss.Color
	Chip      lipgloss.Color
	Crisis    lipgloss.Color
	Hint      lipgloss.Color
}

var darkTheme = Theme{
	Title:     lipgloss.Color("#5FAFD7"), // light blue
	UserText:  lipgloss.Color("#87AFFF"), // soft blue
	AgentText: lipgloss.Color("#D0D0D0"), // light gray
	Meta:      lipgloss.Color("#6C6C6C"), // dim gray
	Chip:      lipgloss.Color("#8787AF"), // muted violet
	Crisis:    lipgloss.Color("#FF005F"), // red
	Hint:      lipgloss.Color("#6C6C6C"),
}

var lightTheme = Theme{
	Title:     lipgloss.Color("#005F87"),
	UserText:  lipgloss.Color("#0000AF"),
	AgentText: lipgloss.Color("#303030"),
	Meta:      lipgloss.Color("#808080"),
	Chip:      lipgloss.Color("#5F5F87"),
	Crisis:    lipgloss.Color("#D70000"),
	Hint:      lipgloss.Color("#808080"),
}

func themeFor(settings models.Settings) Theme {
	if settings.Theme == models.ThemeLight {
		return lightTheme
	}
	return darkTheme
}

func (t Theme) titleStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(t.Title).Bold(true)
}

func (t Theme) roleStyle(role string) lipgloss.Style {
	if role == models.RoleUser {
		return lipgloss.NewStyle().Foreground(t.UserText).Bold(true)
	}
	return lipgloss.NewStyle().Foreground(t.AgentText).Bold(true)
}

func (t Theme) contentStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(t.AgentText)
}

func (t Theme) metaStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(t.Meta)
}

func (t Theme) chipStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(t.Chip)
}

func (t Theme) crisisStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(t.Crisis).Bold(true)
}

func (t Theme) hintStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(t.Hint).Italic(true)
}

// replyMsg carries the normalized agent reply for one exchange.
type replyMsg struct {
	reply models.Message
}

// appendErrMsg reports a failed transcript append.
type appendErrMsg struct {
	err error
}

// chatModel is the bubbletea model for the conversation surface.
type chatModel struct {
	mgr    *session.Manager
	client *agent.Client
	theme  Theme

	input   textarea.Model
	spinner spinner.Model

	width   int
	height  int
	loading bool
	err     error
}

func newChatModel(mgr *session.Manager, client *agent.Client) chatModel {
	input := textarea.New()
	input.Placeholder = "Share what's on your mind..."
	input.ShowLineNumbers = false
	input.CharLimit = 0
	input.SetHeight(2)

	return chatModel{
		mgr:     mgr,
		client:  client,
		theme:   themeFor(mgr.Settings()),
		input:   input,
		spinner: spinner.New(spinner.WithSpinner(spinner.Dot)),
	}
}

// Init focuses the input.
func (m chatModel) Init() tea.Cmd {
	return m.input.Focus()
}

// Update handles messages and returns the updated model.
func (m chatModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.input.SetWidth(msg.Width - 2)
		return m, nil

	case tea.KeyPressMsg:
		switch msg.String() {
		case "ctrl+c", "esc":
			return m, tea.Quit
		case "enter":
			return m.submit()
		}

	case replyMsg:
		m.loading = false
		if err := m.mgr.AppendMessage(msg.reply); err != nil {
			m.err = err
		}
		return m, nil

	case appendErrMsg:
		m.loading = false
		m.err = msg.err
		return m, nil

	case spinner.TickMsg:
		if !m.loading {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// submit starts one exchange. Empty input is silently ignored; a second send
// is refused while one is in flight.
func (m chatModel) submit() (tea.Model, tea.Cmd) {
	if m.loading {
		return m, nil
	}

	text := m.input.Value()
	if strings.TrimSpace(text) == "" {
		return m, nil
	}

	if err := m.mgr.AppendMessage(models.NewUserMessage(text)); err != nil {
		m.err = err
		return m, nil
	}
	m.input.Reset()
	m.loading = true
	m.err = nil

	sessionID := m.mgr.SessionID()
	userID := m.mgr.UserID()
	send := func() tea.Msg {
		// The HTTP client carries the request timeout; an in-flight send
		// always runs to completion and its result is always applied.
		reply, ok := m.client.Send(context.Background(), text, sessionID, userID)
		if !ok {
			return appendErrMsg{err: fmt.Errorf("empty message not sent")}
		}
		return replyMsg{reply: reply}
	}

	return m, tea.Batch(send, m.spinner.Tick)
}

// View renders the transcript, input, and footer.
func (m chatModel) View() tea.View {
	var b strings.Builder

	b.WriteString(m.theme.titleStyle().Render("Abyss"))
	b.WriteString("\n\n")

	for _, msg := range visibleMessages(m.mgr.Messages(), m.height) {
		b.WriteString(m.renderMessage(msg))
		b.WriteString("\n")
	}

	if m.loading {
		b.WriteString(m.spinner.View())
		b.WriteString(m.theme.hintStyle().Render(" thinking..."))
		b.WriteString("\n")
	}
	if m.err != nil {
		b.WriteString(m.theme.crisisStyle().Render(fmt.Sprintf("error: %v", m.err)))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(m.input.View())
	b.WriteString("\n")
	b.WriteString(m.theme.hintStyle().Render("enter to send · esc to quit · in crisis? call 988 or text HOME to 741741"))

	return tea.NewView(b.String())
}

func (m chatModel) renderMessage(msg models.Message) string {
	role := "abyss"
	if msg.Role == models.RoleUser {
		role = "you"
	}

	var b strings.Builder
	b.WriteString(m.theme.roleStyle(msg.Role).Render(role))
	b.WriteString(" ")
	b.WriteString(m.theme.metaStyle().Render(msg.Timestamp.Format("15:04")))
	b.WriteString("\n")

	content := m.theme.contentStyle().Render(msg.Content)
	if m.width > 4 {
		content = lipgloss.NewStyle().Width(m.width - 2).Foreground(m.theme.AgentText).Render(msg.Content)
	}
	b.WriteString(content)
	b.WriteString("\n")

	if len(msg.EmotionalThemes) > 0 {
		b.WriteString(m.theme.chipStyle().Render("themes: " + strings.Join(msg.EmotionalThemes, ", ")))
		b.WriteString("\n")
	}
	if msg.CrisisDetected {
		b.WriteString(m.theme.crisisStyle().Render("Crisis resources available - please reach out for support"))
		b.WriteString("\n")
	}

	return b.String()
}

// visibleMessages trims the transcript to roughly what fits on screen. The
// full transcript stays in the session manager; this only affects rendering.
func visibleMessages(msgs []models.Message, height int) []models.Message {
	if height <= 0 {
		return msgs
	}
	// Rough budget: four lines per message plus header/input chrome.
	maxMsgs := (height - 8) / 4
	if maxMsgs < 1 {
		maxMsgs = 1
	}
	if len(msgs) > maxMsgs {
		return msgs[len(msgs)-maxMsgs:]
	}
	return msgs
}

func runChat(cmd *cobra.Command, args []string) error {
	mgr := session.NewManager(st, logger)
	if err := mgr.Hydrate(); err != nil {
		return err
	}

	client := agent.New(cfg, logger)

	p := tea.NewProgram(newChatModel(mgr, client))
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("chat UI error: %w", err)
	}
	return nil
}
