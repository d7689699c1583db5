package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// HeaderInfo contains information to display in the header.
type HeaderInfo struct {
	Version string // Version string (e.g., "v0.4.0")
	Tagline string // Optional tagline
	Details []string
}

// HeaderWidth is the default width of the header divider
const HeaderWidth = 50

// RenderHeader renders the title block used by 'cq version'.
func RenderHeader(info HeaderInfo) string {
	titleStyle := lipgloss.NewStyle().Foreground(ColorInfo).Bold(true)

	var output strings.Builder
	output.WriteString(titleStyle.Render("cq"))
	output.WriteString(" ")
	output.WriteString(info.Version)
	output.WriteString("\n")

	if info.Tagline != "" {
		output.WriteString(fg(ColorSecondary).Render(info.Tagline))
		output.WriteString("\n")
	}
	for _, d := range info.Details {
		output.WriteString(MutedStyle().Render(d))
		output.WriteString("\n")
	}

	output.WriteString(MutedStyle().Render(strings.Repeat("━", HeaderWidth)))
	output.WriteString("\n")
	return output.String()
}
