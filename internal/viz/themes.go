package viz

import "github.com/charmbracelet/lipgloss"

// Theme colors the live view.
type Theme struct {
	Name   string
	Arm    lipgloss.Color
	Target lipgloss.Color
	Header lipgloss.Color
	Text   lipgloss.Color
	Muted  lipgloss.Color
	Good   lipgloss.Color
	Bad    lipgloss.Color
}

var (
	ThemeNight = Theme{
		Name:   "night",
		Arm:    lipgloss.Color("#66a7ff"),
		Target: lipgloss.Color("#ff6b81"),
		Header: lipgloss.Color("#8b9bff"),
		Text:   lipgloss.Color("#f0f4ff"),
		Muted:  lipgloss.Color("#5f73f3"),
		Good:   lipgloss.Color("#00ff88"),
		Bad:    lipgloss.Color("#ff4444"),
	}

	ThemeRetro = Theme{
		Name:   "retro",
		Arm:    lipgloss.Color("#00ff00"), // Green phosphor
		Target: lipgloss.Color("#88ff88"),
		Header: lipgloss.Color("#00cc00"),
		Text:   lipgloss.Color("#00ff00"),
		Muted:  lipgloss.Color("#005500"),
		Good:   lipgloss.Color("#88ff88"),
		Bad:    lipgloss.Color("#ffff00"),
	}

	ThemeMinimal = Theme{
		Name:   "minimal",
		Arm:    lipgloss.Color("#ffffff"),
		Target: lipgloss.Color("#0088ff"),
		Header: lipgloss.Color("#cccccc"),
		Text:   lipgloss.Color("#ffffff"),
		Muted:  lipgloss.Color("#888888"),
		Good:   lipgloss.Color("#00ff00"),
		Bad:    lipgloss.Color("#ff0000"),
	}

	Themes = []Theme{ThemeNight, ThemeRetro, ThemeMinimal}
)

// GetTheme returns a theme by name, falling back to night.
func GetTheme(name string) Theme {
	for _, t := range Themes {
		if t.Name == name {
			return t
		}
	}
	return ThemeNight
}

// NextTheme returns the theme after t in Themes, wrapping around.
func NextTheme(t Theme) Theme {
	for i, th := range Themes {
		if th.Name == t.Name {
			return Themes[(i+1)%len(Themes)]
		}
	}
	return Themes[0]
}

func ThemeNames() []string {
	names := make([]string, len(Themes))
	for i, t := range Themes {
		names[i] = t.Name
	}
	return names
}
