package render

import (
	"github.com/charmbracelet/lipgloss"
)

// TUITheme defines the color scheme for the TUI interface
type TUITheme struct {
	Name        string
	Description string

	Background lipgloss.Color
	Surface    lipgloss.Color
	Border     lipgloss.Color

	Primary   lipgloss.Color
	Secondary lipgloss.Color
	Accent    lipgloss.Color
	Warning   lipgloss.Color
	Error     lipgloss.Color

	Text     lipgloss.Color
	TextDim  lipgloss.Color
	TextMute lipgloss.Color
}

// Built-in TUI themes
var (
	// CampusTheme is the default: the widget's blue launcher on a slate page
	CampusTheme = TUITheme{
		Name:        "campus",
		Description: "Campus - Slate background with the launcher blue",

		Background: lipgloss.Color("#0f172a"),
		Surface:    lipgloss.Color("#1e293b"),
		Border:     lipgloss.Color("#334155"),

		Primary:   lipgloss.Color("#2563eb"),
		Secondary: lipgloss.Color("#60a5fa"),
		Accent:    lipgloss.Color("#38bdf8"),
		Warning:   lipgloss.Color("#fbbf24"),
		Error:     lipgloss.Color("#f87171"),

		Text:     lipgloss.Color("#f1f5f9"),
		TextDim:  lipgloss.Color("#94a3b8"),
		TextMute: lipgloss.Color("#475569"),
	}

	// TokyoNightTheme is a dark theme based on Tokyo Night
	TokyoNightTheme = TUITheme{
		Name:        "tokyonight",
		Description: "Tokyo Night - Dark theme with blue accents",

		Background: lipgloss.Color("#1a1b26"),
		Surface:    lipgloss.Color("#24283b"),
		Border:     lipgloss.Color("#414868"),

		Primary:   lipgloss.Color("#7aa2f7"),
		Secondary: lipgloss.Color("#9ece6a"),
		Accent:    lipgloss.Color("#bb9af7"),
		Warning:   lipgloss.Color("#e0af68"),
		Error:     lipgloss.Color("#f7768e"),

		Text:     lipgloss.Color("#c0caf5"),
		TextDim:  lipgloss.Color("#565f89"),
		TextMute: lipgloss.Color("#3b4261"),
	}

	// NordTheme is based on the Nord color palette
	NordTheme = TUITheme{
		Name:        "nord",
		Description: "Nord - Arctic-inspired theme with cool tones",

		Background: lipgloss.Color("#2e3440"),
		Surface:    lipgloss.Color("#3b4252"),
		Border:     lipgloss.Color("#4c566a"),

		Primary:   lipgloss.Color("#88c0d0"),
		Secondary: lipgloss.Color("#a3be8c"),
		Accent:    lipgloss.Color("#b48ead"),
		Warning:   lipgloss.Color("#ebcb8b"),
		Error:     lipgloss.Color("#bf616a"),

		Text:     lipgloss.Color("#eceff4"),
		TextDim:  lipgloss.Color("#7b88a1"),
		TextMute: lipgloss.Color("#4c566a"),
	}

	// LightTheme suits light terminal backgrounds
	LightTheme = TUITheme{
		Name:        "light",
		Description: "Light - Dark text for light terminals",

		Background: lipgloss.Color("#ffffff"),
		Surface:    lipgloss.Color("#f1f5f9"),
		Border:     lipgloss.Color("#cbd5e1"),

		Primary:   lipgloss.Color("#1d4ed8"),
		Secondary: lipgloss.Color("#15803d"),
		Accent:    lipgloss.Color("#7c3aed"),
		Warning:   lipgloss.Color("#b45309"),
		Error:     lipgloss.Color("#b91c1c"),

		Text:     lipgloss.Color("#1f2937"),
		TextDim:  lipgloss.Color("#6b7280"),
		TextMute: lipgloss.Color("#9ca3af"),
	}
)

// currentTUITheme holds the currently active TUI theme
var currentTUITheme = CampusTheme

// GetTUITheme returns the currently active TUI theme
func GetTUITheme() TUITheme {
	return currentTUITheme
}

// SetTUITheme sets the active TUI theme by name
func SetTUITheme(name string) bool {
	theme, ok := tuiThemeByName(name)
	if ok {
		currentTUITheme = theme
		return true
	}
	return false
}

// tuiThemeByName looks a theme up by name.
func tuiThemeByName(name string) (TUITheme, bool) {
	for _, theme := range AvailableTUIThemes() {
		if theme.Name == name {
			return theme, true
		}
	}
	return TUITheme{}, false
}

// AvailableTUIThemes returns a list of all available TUI themes
func AvailableTUIThemes() []TUITheme {
	return []TUITheme{
		CampusTheme,
		TokyoNightTheme,
		NordTheme,
		LightTheme,
	}
}

// TUIThemeNames returns just the theme names for selection
func TUIThemeNames() []string {
	themes := AvailableTUIThemes()
	names := make([]string, len(themes))
	for i, t := range themes {
		names[i] = t.Name
	}
	return names
}
