package ui

import "github.com/charmbracelet/lipgloss"

var (
	ColorSuccess   = lipgloss.Color("#00D26A")
	ColorWarning   = lipgloss.Color("#FFB800")
	ColorError     = lipgloss.Color("#FF4444")
	ColorAddress   = lipgloss.Color("#00B4D8") // addresses and tx hashes
	ColorValue     = lipgloss.Color("#FFFFFF")
	ColorMeta      = lipgloss.Color("#6C6C6C")
	ColorBorder    = lipgloss.Color("#1E3A5F")
	ColorAccent    = lipgloss.Color("#9B5DE5") // titles, spinner
	ColorHighlight = lipgloss.Color("#F15BB5") // table headers, picker cursor
)

var (
	StyleSuccess = lipgloss.NewStyle().Foreground(ColorSuccess).Bold(true)
	StyleWarning = lipgloss.NewStyle().Foreground(ColorWarning).Bold(true)
	StyleError   = lipgloss.NewStyle().Foreground(ColorError).Bold(true)
	StyleAddress = lipgloss.NewStyle().Foreground(ColorAddress)
	StyleValue   = lipgloss.NewStyle().Foreground(ColorValue).Bold(true)
	StyleMeta    = lipgloss.NewStyle().Foreground(ColorMeta)
	StyleAccent  = lipgloss.NewStyle().Foreground(ColorAccent).Bold(true)

	// StyleBorder frames receipts and state summaries.
	StyleBorder = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(ColorBorder).
			Padding(0, 1)

	StyleSelected = lipgloss.NewStyle().
			Foreground(ColorHighlight).
			Bold(true)

	StyleTitle = StyleAccent.MarginBottom(1)
)

// Success marks a completed step or a passed balance check.
func Success(msg string) string { return StyleSuccess.Render("✓ " + msg) }

func Warn(msg string) string { return StyleWarning.Render("! " + msg) }

// Err marks a failed transaction or balance mismatch.
func Err(msg string) string { return StyleError.Render("✗ " + msg) }

func Addr(a string) string { return StyleAddress.Render(a) }

func Meta(m string) string { return StyleMeta.Render(m) }
