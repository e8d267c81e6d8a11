package ui

import "github.com/charmbracelet/lipgloss"

var (
	// TitleStyle uses ANSI 6 (cyan), readable on both dark and light terminals.
	TitleStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("6")).Bold(true).MarginBottom(1)

	// UsageStyle uses ANSI 2 (green) for arguments and usage lines.
	UsageStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))

	// DescStyle uses ANSI 8 (gray) so descriptions stay in the background.
	DescStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))

	// FlagStyle uses ANSI 3 (yellow) for flags.
	FlagStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("3"))

	// PromptStyle marks the user's side of the chat REPL.
	PromptStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("4")).Bold(true)

	// ReplyStyle marks the assistant's side of the chat REPL.
	ReplyStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))

	// MomentStyle highlights a freshly captured moment.
	MomentStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("5")).Italic(true)
)
