package ui

import (
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// Semantic colors for status indication
const (
	ColorSuccess lipgloss.Color = "2" // Green
	ColorError   lipgloss.Color = "1" // Red
	ColorWarning lipgloss.Color = "3" // Yellow
	ColorInfo    lipgloss.Color = "6" // Cyan
)

// Text colors for content hierarchy
const (
	ColorPrimary   lipgloss.Color = "7" // White/default
	ColorSecondary lipgloss.Color = "4" // Blue
	ColorMuted     lipgloss.Color = "8" // Gray (bright black)
)

// Color modes accepted by SetColorMode, matching output.color.
const (
	ColorAuto   = "auto"
	ColorAlways = "always"
	ColorNever  = "never"
)

// SetColorMode selects the color profile for all styles. In auto mode
// colors are used only when tty is true and NO_COLOR is unset.
func SetColorMode(mode string, tty bool) {
	switch mode {
	case ColorNever:
		DisableColors()
	case ColorAlways:
		lipgloss.SetColorProfile(termenv.ANSI)
	default:
		if !tty || os.Getenv("NO_COLOR") != "" {
			DisableColors()
			return
		}
		lipgloss.SetColorProfile(termenv.EnvColorProfile())
	}
}

// DisableColors switches every style to plain text.
func DisableColors() {
	lipgloss.SetColorProfile(termenv.Ascii)
}

// ColorsEnabled reports whether styles currently emit escape codes.
func ColorsEnabled() bool {
	return lipgloss.ColorProfile() != termenv.Ascii
}

func fg(c lipgloss.Color) lipgloss.Style {
	return lipgloss.NewStyle().Foreground(c)
}

// SuccessStyle renders green text.
func SuccessStyle() lipgloss.Style { return fg(ColorSuccess) }

// ErrorStyle renders red text.
func ErrorStyle() lipgloss.Style { return fg(ColorError) }

// WarningStyle renders yellow text.
func WarningStyle() lipgloss.Style { return fg(ColorWarning) }

// InfoStyle renders cyan text.
func InfoStyle() lipgloss.Style { return fg(ColorInfo) }

// MutedStyle renders gray text.
func MutedStyle() lipgloss.Style { return fg(ColorMuted) }
