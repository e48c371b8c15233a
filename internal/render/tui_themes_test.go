package render

import "testing"

func TestTUIThemes_HaveAllColors(t *testing.T) {
	for _, theme := range AvailableTUIThemes() {
		colors := map[string]string{
			"background": string(theme.Background),
			"surface":    string(theme.Surface),
			"border":     string(theme.Border),
			"primary":    string(theme.Primary),
			"secondary":  string(theme.Secondary),
			"accent":     string(theme.Accent),
			"warning":    string(theme.Warning),
			"error":      string(theme.Error),
			"text":       string(theme.Text),
			"textDim":    string(theme.TextDim),
			"textMute":   string(theme.TextMute),
		}
		if theme.Name == "" || theme.Description == "" {
			t.Errorf("theme %q missing name or description", theme.Name)
		}
		for field, value := range colors {
			if value == "" {
				t.Errorf("theme %s has empty %s color", theme.Name, field)
			}
		}
	}
}

func TestSetTUITheme(t *testing.T) {
	defer SetTUITheme("campus")

	if GetTUITheme().Name != "campus" {
		t.Errorf("default theme = %s, want campus", GetTUITheme().Name)
	}
	if !SetTUITheme("nord") {
		t.Fatal("SetTUITheme(nord) failed")
	}
	if GetTUITheme().Name != "nord" {
		t.Errorf("current theme = %s", GetTUITheme().Name)
	}
	if SetTUITheme("nonexistent") {
		t.Error("unknown theme accepted")
	}
	if GetTUITheme().Name != "nord" {
		t.Error("failed set changed the theme")
	}
}

func TestTUIThemeNames(t *testing.T) {
	names := TUIThemeNames()
	if len(names) != len(AvailableTUIThemes()) {
		t.Fatalf("got %d names", len(names))
	}
	for _, name := range names {
		if _, ok := tuiThemeByName(name); !ok {
			t.Errorf("name %s not resolvable", name)
		}
	}
}
