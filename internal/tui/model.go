package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/rs/zerolog"

	"github.com/lnmiit/askwidget/internal/api"
	apierrors "github.com/lnmiit/askwidget/internal/errors"
	"github.com/lnmiit/askwidget/internal/config"
	"github.com/lnmiit/askwidget/internal/models"
	"github.com/lnmiit/askwidget/internal/render"
	"github.com/lnmiit/askwidget/internal/widget"
)

// Animation tick message
type animationTickMsg time.Time

// Message types for the TUI
type (
	// askResultMsg carries the outcome of one query back to the event loop.
	askResultMsg struct {
		reply string
		err   error
	}
	clearStatusMsg struct{}
)

// Model is the landing view with the chat widget mounted on it.
type Model struct {
	client     api.AssistantClient
	widget     *widget.Widget
	branding   config.Branding
	renderOpts render.Options
	logger     zerolog.Logger
	copyFn     func(string) error

	// UI components
	viewport viewport.Model
	textarea textarea.Model
	spinner  spinner.Model

	// State
	ready          bool
	animationFrame int
	status         string

	// Dimensions
	width  int
	height int
}

// NewChatModel creates the landing view with a closed widget.
func NewChatModel(client api.AssistantClient, cfg config.Config, logger zerolog.Logger) Model {
	ta := textarea.New()
	ta.Placeholder = "Type your question..."
	ta.CharLimit = 2000
	ta.ShowLineNumbers = false
	ta.SetHeight(2)

	ta.FocusedStyle.CursorLine = lipgloss.NewStyle()
	ta.FocusedStyle.Base = lipgloss.NewStyle().Foreground(colorText)
	ta.FocusedStyle.Placeholder = lipgloss.NewStyle().Foreground(colorTextDim)
	ta.BlurredStyle = ta.FocusedStyle

	s := spinner.New()
	s.Spinner = spinner.Points
	s.Style = loadingStyle

	return Model{
		client:     client,
		widget:     widget.New(),
		branding:   cfg.Branding,
		renderOpts: render.OptionsFromConfig(cfg),
		logger:     logger,
		copyFn:     clipboard.WriteAll,
		textarea:   ta,
		spinner:    s,
	}
}

// Opened returns m with the widget already open.
func (m Model) Opened() Model {
	if !m.widget.IsOpen() {
		m.widget.Open()
	}
	m.textarea.Focus()
	return m
}

// Widget exposes the widget state.
func (m Model) Widget() *widget.Widget {
	return m.widget
}

// Init initializes the model
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		textarea.Blink,
		m.spinner.Tick,
	)
}

// animationTick returns a command that sends animation tick messages
func animationTick() tea.Cmd {
	return tea.Tick(time.Millisecond*120, func(t time.Time) tea.Msg {
		return animationTickMsg(t)
	})
}

func clearStatus(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(time.Time) tea.Msg {
		return clearStatusMsg{}
	})
}

// transcriptKeyMap scrolls the transcript without stealing printable keys
// from the input.
func transcriptKeyMap() viewport.KeyMap {
	return viewport.KeyMap{
		PageDown:     key.NewBinding(key.WithKeys("pgdown")),
		PageUp:       key.NewBinding(key.WithKeys("pgup")),
		HalfPageUp:   key.NewBinding(key.WithKeys("ctrl+u")),
		HalfPageDown: key.NewBinding(key.WithKeys("ctrl+d")),
	}
}

// Update handles messages and updates the model
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

		headerHeight := 4 // Widget header with border
		inputHeight := 6  // Input panel with border
		statusHeight := 1 // Status bar
		padding := 2

		vpHeight := m.height - headerHeight - inputHeight - statusHeight - padding
		if vpHeight < 5 {
			vpHeight = 5
		}
		contentWidth := m.width - 4

		if !m.ready {
			m.viewport = viewport.New(contentWidth, vpHeight)
			m.viewport.KeyMap = transcriptKeyMap()
			m.ready = true
		} else {
			m.viewport.Width = contentWidth
			m.viewport.Height = vpHeight
		}
		m.textarea.SetWidth(contentWidth - 4)
		m.updateViewport()
		m.viewport.GotoBottom()
		return m, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		if !m.widget.IsOpen() {
			return m.updateClosed(msg)
		}
		return m.updateOpen(msg)

	case askResultMsg:
		if m.widget.Complete(msg.reply, msg.err) {
			m.updateViewport()
			m.viewport.GotoBottom()
		}
		return m, nil

	case clearStatusMsg:
		m.status = ""
		return m, nil

	case spinner.TickMsg:
		if m.widget.InFlight() {
			m.spinner, cmd = m.spinner.Update(msg)
			cmds = append(cmds, cmd)
		}

	case animationTickMsg:
		if m.widget.InFlight() {
			m.animationFrame++
			m.updateViewport()
			cmds = append(cmds, animationTick())
		}
	}

	if m.widget.IsOpen() {
		m.viewport, cmd = m.viewport.Update(msg)
		cmds = append(cmds, cmd)
	}

	return m, tea.Batch(cmds...)
}

// updateClosed handles keys while only the landing view is visible.
func (m Model) updateClosed(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "esc":
		return m, tea.Quit
	case "enter", "tab", "o":
		m.widget.Toggle()
		m.updateViewport()
		m.viewport.GotoBottom()
		cmd := m.textarea.Focus()
		return m, cmd
	}
	return m, nil
}

// updateOpen handles keys while the widget is open.
func (m Model) updateOpen(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg.String() {
	case "esc", "tab":
		m.widget.Toggle()
		m.textarea.Blur()
		return m, nil

	case "enter":
		m.widget.SetInput(m.textarea.Value())
		query, ok := m.widget.Submit()
		if !ok {
			return m, nil
		}
		m.textarea.Reset()
		m.animationFrame = 0
		m.updateViewport()
		m.viewport.GotoBottom()

		return m, tea.Batch(
			m.askCmd(query),
			m.spinner.Tick,
			animationTick(),
		)

	case "ctrl+y":
		return m.copyLastReply()

	case "pgup", "pgdown", "ctrl+u", "ctrl+d":
		m.viewport, cmd = m.viewport.Update(msg)
		return m, cmd
	}

	m.textarea, cmd = m.textarea.Update(msg)
	m.widget.SetInput(m.textarea.Value())
	return m, cmd
}

func (m Model) copyLastReply() (tea.Model, tea.Cmd) {
	reply, ok := m.widget.LastBotReply()
	switch {
	case !ok:
		m.status = "Nothing to copy yet"
	case m.copyFn == nil:
		m.status = "Clipboard unavailable"
	default:
		if err := m.copyFn(reply); err != nil {
			m.logger.Warn().Err(err).Msg("clipboard copy failed")
			m.status = "Could not copy to clipboard"
		} else {
			m.status = "Copied last reply"
		}
	}
	return m, clearStatus(2 * time.Second)
}

// askCmd creates a command that sends one query to the assistant service.
func (m Model) askCmd(query string) tea.Cmd {
	client := m.client
	logger := m.logger
	return func() tea.Msg {
		start := time.Now()
		reply, err := client.Ask(context.Background(), query)
		if err != nil {
			logger.Warn().
				Err(err).
				Int("status", apierrors.GetHTTPStatus(err)).
				Dur("elapsed", time.Since(start)).
				Msg("query failed")
		}
		return askResultMsg{reply: reply, err: err}
	}
}

// View renders the TUI
func (m Model) View() string {
	if !m.ready {
		return loadingStyle.Render("  Initializing...")
	}
	if !m.widget.IsOpen() {
		return m.renderLanding()
	}

	var sections []string
	contentWidth := m.width - 4

	// Header
	headerContent := lipgloss.JoinHorizontal(
		lipgloss.Center,
		titleStyle.Render("● "+m.branding.AssistantName),
		hintStyle.Render("  •  "),
		subtitleStyle.Render(m.client.Endpoint()),
	)
	sections = append(sections, headerStyle.Width(contentWidth).Render(headerContent))

	// Transcript
	var messagesContent string
	if m.widget.Len() == 0 {
		messagesContent = m.renderWelcome()
	} else {
		messagesContent = m.viewport.View()
	}
	sections = append(sections, messagesAreaStyle.
		Width(contentWidth).
		Height(m.viewport.Height).
		Render(messagesContent))

	// Input
	inputContent := lipgloss.JoinVertical(
		lipgloss.Left,
		inputLabelStyle.Render("You"),
		m.textarea.View(),
	)
	sections = append(sections, inputPanelStyle.Width(contentWidth).Render(inputContent))

	sections = append(sections, m.renderStatusBar(contentWidth))

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

// renderLanding renders the host page with the launcher in the corner.
func (m Model) renderLanding() string {
	width := m.width
	if width < 20 {
		width = 20
	}

	body := lipgloss.JoinVertical(
		lipgloss.Center,
		landingTitleStyle.Width(width).Render(m.branding.Title),
		landingTaglineStyle.Width(width).Render(m.branding.Tagline),
	)

	launcher := launcherStyle.Render("💬 " + m.branding.LauncherLabel)
	launcherLine := lipgloss.PlaceHorizontal(width, lipgloss.Right, launcher)
	hint := statusBarStyle.Width(width).Align(lipgloss.Center).Render(
		statusKeyStyle.Render("Enter") + statusDescStyle.Render(" Open chat") +
			"  │  " +
			statusKeyStyle.Render("q") + statusDescStyle.Render(" Quit"),
	)

	// Vertically center the landing text, launcher stays at the bottom
	bodyHeight := m.height - lipgloss.Height(launcherLine) - lipgloss.Height(hint)
	if bodyHeight < lipgloss.Height(body) {
		bodyHeight = lipgloss.Height(body)
	}
	centered := lipgloss.PlaceVertical(bodyHeight, lipgloss.Center, body)

	return lipgloss.JoinVertical(lipgloss.Left, centered, launcherLine, hint)
}

// renderWelcome renders the greeting shown before the first message
func (m Model) renderWelcome() string {
	width := m.viewport.Width - 4
	height := m.viewport.Height

	content := lipgloss.JoinVertical(
		lipgloss.Center,
		welcomeIconStyle.Width(width).Render("✦"),
		"",
		welcomeTitleStyle.Width(width).Render(m.branding.Greeting),
		welcomeStyle.Width(width).Render(m.branding.Prompt),
	)

	topPadding := (height - lipgloss.Height(content)) / 2
	if topPadding < 0 {
		topPadding = 0
	}
	return strings.Repeat("\n", topPadding) + content
}

// renderThinking renders the transient placeholder that follows the last
// entry while a query is outstanding.
func (m Model) renderThinking() string {
	frame := m.animationFrame
	dots := ""
	numDots := frame%3 + 1
	for i := 0; i < 3; i++ {
		color := colorTextMute
		if i < numDots {
			color = gradientColors[(frame+i)%len(gradientColors)]
		}
		dots += lipgloss.NewStyle().Foreground(color).Render("●")
	}
	return thinkingBubbleStyle.Render(fmt.Sprintf("%s %s thinking", m.spinner.View(), dots))
}

// renderStatusBar renders the bottom status bar with shortcuts
func (m Model) renderStatusBar(width int) string {
	if m.status != "" {
		return statusBarStyle.Width(width).Align(lipgloss.Center).Render(feedbackStyle.Render(m.status))
	}

	shortcuts := []struct {
		key  string
		desc string
	}{
		{"Enter", "Send"},
		{"Esc", "Close"},
		{"Ctrl+Y", "Copy reply"},
		{"PgUp/PgDn", "Scroll"},
	}

	var items []string
	for _, s := range shortcuts {
		items = append(items, statusKeyStyle.Render(s.key)+statusDescStyle.Render(" "+s.desc))
	}
	return statusBarStyle.Width(width).Align(lipgloss.Center).Render(strings.Join(items, "  │  "))
}

// updateViewport refreshes the viewport content with styled messages
func (m *Model) updateViewport() {
	var content strings.Builder
	bubbleWidth := m.viewport.Width - 6
	if bubbleWidth < 10 {
		bubbleWidth = 10
	}

	for i, msg := range m.widget.Transcript() {
		if i > 0 {
			content.WriteString("\n")
		}
		content.WriteString(m.renderEntry(msg, bubbleWidth))
		content.WriteString("\n")
	}

	if m.widget.InFlight() {
		content.WriteString("\n")
		content.WriteString(botLabelStyle.Render("● " + m.branding.AssistantName))
		content.WriteString("\n")
		content.WriteString(m.renderThinking())
		content.WriteString("\n")
	}

	m.viewport.SetContent(content.String())
}

func (m *Model) renderEntry(msg models.Message, bubbleWidth int) string {
	if msg.IsUser() {
		label := userLabelStyle.Render("You")
		bubble := userBubbleStyle.Width(bubbleWidth).Render(msg.Content)
		return label + "\n" + bubble
	}

	label := botLabelStyle.Render("● " + m.branding.AssistantName)
	rendered, err := render.Markdown(msg.Content, m.renderOpts.WithWidth(bubbleWidth-4))
	if err != nil {
		rendered = msg.Content
	}
	rendered = strings.TrimRight(rendered, "\n")
	return label + "\n" + botBubbleStyle.Width(bubbleWidth).Render(rendered)
}

// RunChat starts the landing view. With startOpen the widget is shown
// immediately.
func RunChat(client api.AssistantClient, cfg config.Config, logger zerolog.Logger, startOpen bool) error {
	render.SetTUITheme(cfg.TUITheme)
	UpdateTheme()

	m := NewChatModel(client, cfg, logger)
	if startOpen {
		m = m.Opened()
	}

	p := tea.NewProgram(
		m,
		tea.WithAltScreen(),
	)

	_, err := p.Run()
	return err
}
