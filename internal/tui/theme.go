package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	// Core palette
	Green     = lipgloss.Color("#00FF41")
	DarkGreen = lipgloss.Color("#008F11")
	DimGreen  = lipgloss.Color("#3B6B3B")
	Cyan      = lipgloss.Color("#00D4AA")
	Gold      = lipgloss.Color("#FFD700")
	Red       = lipgloss.Color("#FF4136")
	MidGray   = lipgloss.Color("#6a6a7e")
	White     = lipgloss.Color("#e0e0e0")

	PromptStyle = lipgloss.NewStyle().
			Foreground(Green).
			Bold(true)

	PromptDirStyle = lipgloss.NewStyle().
			Foreground(Cyan)

	AssistantLabelStyle = lipgloss.NewStyle().
				Foreground(Cyan).
				Bold(true)

	ToolResultStyle = lipgloss.NewStyle().
			Foreground(White)

	ErrorStyle = lipgloss.NewStyle().
			Foreground(Red).
			Bold(true)

	WarnStyle = lipgloss.NewStyle().
			Foreground(Gold)

	HelpStyle = lipgloss.NewStyle().
			Foreground(DimGreen)

	BannerStyle = lipgloss.NewStyle().
			Border(lipgloss.DoubleBorder()).
			BorderForeground(DarkGreen).
			Foreground(Green).
			Padding(0, 2)

	SeparatorStyle = lipgloss.NewStyle().
			Foreground(MidGray)
)

const bannerBody = `💬 Chat: type a message
🛠️  Tools: !command args
⚙️  Builtins: /command args
📚 Help: /help
👋 Quit: /exit or Ctrl+D`

// Banner returns the boxed welcome text shown when the shell starts.
func Banner(version string) string {
	title := "🤖 Polo AI Assistant"
	if version != "" {
		title += " " + version
	}
	return BannerStyle.Render(title + "\n" + bannerBody)
}

// Styled colours a result by its leading status marker.
func Styled(s string) string {
	switch {
	case strings.HasPrefix(s, "❌"):
		return ErrorStyle.Render(s)
	case strings.HasPrefix(s, "⚠️"):
		return WarnStyle.Render(s)
	}
	return s
}
