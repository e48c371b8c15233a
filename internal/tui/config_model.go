package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/lnmiit/askwidget/internal/config"
	"github.com/lnmiit/askwidget/internal/render"
)

// configView represents the current view in the config menu
type configView int

const (
	viewMain configView = iota
	viewEndpointEdit
	viewTimeoutSelect
	viewThemeSelect    // Markdown theme
	viewTUIThemeSelect // TUI color theme
)

// Menu item indices for main view
const (
	menuEndpoint = iota
	menuTimeout
	menuVerbose
	menuCopyToClipboard
	menuTheme    // Markdown theme
	menuTUITheme // TUI color theme
	menuExit
	menuItemCount
)

// feedbackClearMsg is sent to clear feedback messages
type feedbackClearMsg struct{}

// ConfigModel represents the config TUI state
type ConfigModel struct {
	config     config.Config
	configPath string
	save       func(config.Config) error

	// Navigation
	view           configView
	cursor         int
	timeoutCursor  int
	themeCursor    int // Markdown theme cursor
	tuiThemeCursor int // TUI theme cursor

	endpointInput textinput.Model

	// Feedback
	feedback        string
	feedbackIsError bool
	feedbackTimeout time.Duration

	// Dimensions
	width  int
	height int
	ready  bool
}

// NewConfigModel creates a config menu over the on-disk configuration.
func NewConfigModel() ConfigModel {
	cfg, err := config.LoadConfig()
	if err != nil {
		cfg = config.DefaultConfig()
	}
	configPath, _ := config.GetConfigPath()

	m := newConfigModel(cfg, config.SaveConfig)
	m.configPath = configPath
	return m
}

// newConfigModel builds the menu for cfg, persisting changes through save.
func newConfigModel(cfg config.Config, save func(config.Config) error) ConfigModel {
	ti := textinput.New()
	ti.Placeholder = config.DefaultEndpointURL
	ti.CharLimit = 512
	ti.Width = 60
	ti.SetValue(cfg.EndpointURL)

	currentTheme := cfg.Markdown.Style
	if currentTheme == "" {
		currentTheme = render.StyleDark
	}

	if cfg.TUITheme != "" {
		render.SetTUITheme(cfg.TUITheme)
		UpdateTheme()
	}

	return ConfigModel{
		config:          cfg,
		save:            save,
		view:            viewMain,
		timeoutCursor:   indexOf(config.TimeoutChoices(), cfg.RequestTimeout),
		themeCursor:     indexOf(render.ThemeNames(), currentTheme),
		tuiThemeCursor:  indexOf(render.TUIThemeNames(), cfg.TUITheme),
		endpointInput:   ti,
		feedbackTimeout: 2 * time.Second,
	}
}

func indexOf[T comparable](items []T, v T) int {
	for i, item := range items {
		if item == v {
			return i
		}
	}
	return 0
}

// Init initializes the model
func (m ConfigModel) Init() tea.Cmd {
	return nil
}

// clearFeedback returns a command that clears the feedback message after a delay
func clearFeedback(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(t time.Time) tea.Msg {
		return feedbackClearMsg{}
	})
}

// Update handles messages and updates the model
func (m ConfigModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ready = true

	case feedbackClearMsg:
		m.feedback = ""
		m.feedbackIsError = false

	case tea.KeyMsg:
		if m.view == viewEndpointEdit {
			return m.updateEndpointEdit(msg)
		}

		switch msg.String() {
		case "ctrl+c":
			return m, tea.Quit

		case "esc":
			if m.view != viewMain {
				m.view = viewMain
			} else {
				return m, tea.Quit
			}

		case "up", "k":
			m.moveCursor(-1)

		case "down", "j":
			m.moveCursor(1)

		case "enter", " ":
			return m.handleSelect()
		}
	}

	return m, nil
}

// moveCursor moves the cursor of the active list, wrapping around.
func (m *ConfigModel) moveCursor(delta int) {
	wrap := func(cursor, n int) int {
		if n == 0 {
			return 0
		}
		return ((cursor+delta)%n + n) % n
	}

	switch m.view {
	case viewMain:
		m.cursor = wrap(m.cursor, menuItemCount)
	case viewTimeoutSelect:
		m.timeoutCursor = wrap(m.timeoutCursor, len(config.TimeoutChoices()))
	case viewThemeSelect:
		m.themeCursor = wrap(m.themeCursor, len(render.ThemeNames()))
	case viewTUIThemeSelect:
		m.tuiThemeCursor = wrap(m.tuiThemeCursor, len(render.TUIThemeNames()))
	}
}

func (m ConfigModel) updateEndpointEdit(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		return m, tea.Quit

	case "esc":
		m.endpointInput.SetValue(m.config.EndpointURL)
		m.endpointInput.Blur()
		m.view = viewMain
		return m, nil

	case "enter":
		value := strings.TrimSpace(m.endpointInput.Value())
		if err := config.ValidateEndpoint(value); err != nil {
			m.setFeedback(err.Error(), true)
			return m, clearFeedback(m.feedbackTimeout)
		}
		m.config.EndpointURL = value
		m.persist(fmt.Sprintf("Endpoint set to %s", value))
		m.endpointInput.Blur()
		m.view = viewMain
		return m, clearFeedback(m.feedbackTimeout)
	}

	var cmd tea.Cmd
	m.endpointInput, cmd = m.endpointInput.Update(msg)
	return m, cmd
}

// persist saves the configuration and reports the outcome.
func (m *ConfigModel) persist(success string) {
	if m.save == nil {
		m.setFeedback(success, false)
		return
	}
	if err := m.save(m.config); err != nil {
		m.setFeedback(fmt.Sprintf("Error: %v", err), true)
		return
	}
	m.setFeedback(success, false)
}

func (m *ConfigModel) setFeedback(text string, isError bool) {
	m.feedback = text
	m.feedbackIsError = isError
}

func enabledWord(v bool) string {
	if v {
		return "enabled"
	}
	return "disabled"
}

func timeoutLabel(secs int) string {
	if secs <= 0 {
		return "off"
	}
	return fmt.Sprintf("%ds", secs)
}

// handleSelect handles menu item selection
func (m ConfigModel) handleSelect() (tea.Model, tea.Cmd) {
	switch m.view {
	case viewMain:
		switch m.cursor {
		case menuEndpoint:
			m.view = viewEndpointEdit
			m.endpointInput.SetValue(m.config.EndpointURL)
			m.endpointInput.CursorEnd()
			cmd := m.endpointInput.Focus()
			return m, cmd

		case menuTimeout:
			m.view = viewTimeoutSelect
			return m, nil

		case menuVerbose:
			m.config.Verbose = !m.config.Verbose
			m.persist("Verbose output " + enabledWord(m.config.Verbose))
			return m, clearFeedback(m.feedbackTimeout)

		case menuCopyToClipboard:
			m.config.CopyToClipboard = !m.config.CopyToClipboard
			m.persist("Copy to clipboard " + enabledWord(m.config.CopyToClipboard))
			return m, clearFeedback(m.feedbackTimeout)

		case menuTheme:
			m.view = viewThemeSelect
			return m, nil

		case menuTUITheme:
			m.view = viewTUIThemeSelect
			return m, nil

		case menuExit:
			return m, tea.Quit
		}

	case viewTimeoutSelect:
		m.config.RequestTimeout = config.TimeoutChoices()[m.timeoutCursor]
		m.persist("Request timeout set to " + timeoutLabel(m.config.RequestTimeout))
		m.view = viewMain
		return m, clearFeedback(m.feedbackTimeout)

	case viewThemeSelect:
		m.config.Markdown.Style = render.ThemeNames()[m.themeCursor]
		m.persist(fmt.Sprintf("Markdown theme set to %s", m.config.Markdown.Style))
		m.view = viewMain
		return m, clearFeedback(m.feedbackTimeout)

	case viewTUIThemeSelect:
		selected := render.TUIThemeNames()[m.tuiThemeCursor]
		m.config.TUITheme = selected

		// Apply the new TUI theme immediately
		render.SetTUITheme(selected)
		UpdateTheme()

		m.persist(fmt.Sprintf("TUI theme set to %s", selected))
		m.view = viewMain
		return m, clearFeedback(m.feedbackTimeout)
	}

	return m, nil
}

// View renders the TUI
func (m ConfigModel) View() string {
	if !m.ready {
		return loadingStyle.Render("  Initializing...")
	}

	var sections []string
	contentWidth := m.width - 4
	if contentWidth < 40 {
		contentWidth = 40
	}

	header := configHeaderStyle.Width(contentWidth).Render(configTitleStyle.Render("✦ askwidget configuration"))
	sections = append(sections, header)

	if m.configPath != "" {
		pathsContent := lipgloss.JoinVertical(lipgloss.Left,
			configSectionTitleStyle.Render("Paths"),
			fmt.Sprintf("   Config: %s", configPathStyle.Render(m.configPath)),
		)
		sections = append(sections, configPanelStyle.Width(contentWidth).Render(pathsContent))
	}

	var settingsContent string
	switch m.view {
	case viewMain:
		settingsContent = m.renderMainMenu()
	case viewEndpointEdit:
		settingsContent = m.renderEndpointEdit()
	case viewTimeoutSelect:
		settingsContent = m.renderTimeoutSelect()
	case viewThemeSelect:
		settingsContent = m.renderThemeSelect()
	case viewTUIThemeSelect:
		settingsContent = m.renderTUIThemeSelect()
	}
	sections = append(sections, configPanelStyle.Width(contentWidth).Render(settingsContent))

	if m.feedback != "" {
		if m.feedbackIsError {
			sections = append(sections, configErrorStyle.Render("✗ "+m.feedback))
		} else {
			sections = append(sections, configFeedbackStyle.Render("✓ "+m.feedback))
		}
	}

	sections = append(sections, m.renderStatusBar(contentWidth))

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

// menuRow renders one selectable row with its current value.
func menuRow(selected bool, label, value string) string {
	cursor := "  "
	style := configMenuItemStyle
	if selected {
		cursor = configCursorStyle.Render("▸ ")
		style = configMenuSelectedStyle
	}
	if value == "" {
		return cursor + style.Render(label)
	}
	pad := 20 - len(label)
	if pad < 1 {
		pad = 1
	}
	return cursor + style.Render(label) + strings.Repeat(" ", pad) + value
}

// renderMainMenu renders the main settings menu
func (m ConfigModel) renderMainMenu() string {
	currentTheme := m.config.Markdown.Style
	if currentTheme == "" {
		currentTheme = render.StyleDark
	}

	items := []string{
		menuRow(m.cursor == menuEndpoint, "Endpoint URL", configValueStyle.Render(m.config.EndpointURL)),
		menuRow(m.cursor == menuTimeout, "Request Timeout", configValueStyle.Render(timeoutLabel(m.config.RequestTimeout))),
		menuRow(m.cursor == menuVerbose, "Verbose Output", m.renderBoolValue(m.config.Verbose)),
		menuRow(m.cursor == menuCopyToClipboard, "Copy to Clipboard", m.renderBoolValue(m.config.CopyToClipboard)),
		menuRow(m.cursor == menuTheme, "Markdown Theme", configValueStyle.Render(currentTheme)),
		menuRow(m.cursor == menuTUITheme, "TUI Theme", configValueStyle.Render(m.config.TUITheme)),
		"",
		menuRow(m.cursor == menuExit, "Exit", ""),
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		append([]string{configSectionTitleStyle.Render("⚙ Settings"), ""}, items...)...,
	)
}

func (m ConfigModel) renderEndpointEdit() string {
	return lipgloss.JoinVertical(lipgloss.Left,
		configSectionTitleStyle.Render("Assistant Endpoint"),
		"",
		hintStyle.Render("Every question is POSTed here as {\"query\": ...}"),
		"",
		m.endpointInput.View(),
	)
}

func (m ConfigModel) renderTimeoutSelect() string {
	var items []string
	for i, secs := range config.TimeoutChoices() {
		current := ""
		if secs == m.config.RequestTimeout {
			current = configEnabledStyle.Render(" (current)")
		}
		items = append(items, menuRow(m.timeoutCursor == i, timeoutLabel(secs), "")+current)
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		append([]string{configSectionTitleStyle.Render("Select Request Timeout"), ""}, items...)...,
	)
}

// renderThemeSelect renders the markdown theme selection sub-menu
func (m ConfigModel) renderThemeSelect() string {
	currentTheme := m.config.Markdown.Style
	if currentTheme == "" {
		currentTheme = render.StyleDark
	}

	var items []string
	for i, name := range render.ThemeNames() {
		current := ""
		if name == currentTheme {
			current = configEnabledStyle.Render(" (current)")
		}
		items = append(items, menuRow(m.themeCursor == i, name, "")+current)
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		append([]string{configSectionTitleStyle.Render("🎨 Select Markdown Theme"), ""}, items...)...,
	)
}

// renderTUIThemeSelect renders the TUI color theme selection sub-menu
func (m ConfigModel) renderTUIThemeSelect() string {
	var items []string
	for i, theme := range render.AvailableTUIThemes() {
		current := ""
		if theme.Name == m.config.TUITheme {
			current = configEnabledStyle.Render(" (current)")
		}
		text := fmt.Sprintf("%s - %s", theme.Name, theme.Description)
		items = append(items, menuRow(m.tuiThemeCursor == i, text, "")+current)
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		append([]string{configSectionTitleStyle.Render("🎨 Select TUI Theme"), ""}, items...)...,
	)
}

// renderBoolValue renders a boolean value with appropriate styling
func (m ConfigModel) renderBoolValue(value bool) string {
	if value {
		return configEnabledStyle.Render("enabled")
	}
	return configDisabledStyle.Render("disabled")
}

// renderStatusBar renders the bottom status bar
func (m ConfigModel) renderStatusBar(width int) string {
	type shortcut struct {
		key  string
		desc string
	}

	var shortcuts []shortcut
	switch m.view {
	case viewMain:
		shortcuts = []shortcut{{"↑↓", "Navigate"}, {"Enter", "Select"}, {"Esc", "Exit"}}
	case viewEndpointEdit:
		shortcuts = []shortcut{{"Enter", "Save"}, {"Esc", "Cancel"}}
	default:
		shortcuts = []shortcut{{"↑↓", "Navigate"}, {"Enter", "Select"}, {"Esc", "Back"}}
	}

	var items []string
	for _, s := range shortcuts {
		items = append(items, statusKeyStyle.Render(s.key)+statusDescStyle.Render(" "+s.desc))
	}
	return configStatusBarStyle.Width(width).Align(lipgloss.Center).Render(strings.Join(items, "  │  "))
}

// RunConfig starts the config TUI
func RunConfig() error {
	m := NewConfigModel()

	p := tea.NewProgram(
		m,
		tea.WithAltScreen(),
	)

	_, err := p.Run()
	return err
}
