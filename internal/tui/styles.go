package tui

import "github.com/charmbracelet/lipgloss"

var (
	colorInk     = lipgloss.AdaptiveColor{Light: "#0F172A", Dark: "#E2E8F0"}
	colorMuted   = lipgloss.AdaptiveColor{Light: "#64748B", Dark: "#94A3B8"}
	colorAccent  = lipgloss.Color("#06B6D4")
	colorSuccess = lipgloss.Color("#10B981")
	colorDanger  = lipgloss.Color("#F43F5E")
	colorBorder  = lipgloss.AdaptiveColor{Light: "#CBD5E1", Dark: "#334155"}
	colorSelect  = lipgloss.AdaptiveColor{Light: "#DBEAFE", Dark: "#1E3A8A"}

	headerStyle = lipgloss.NewStyle().Foreground(colorInk).Padding(0, 1).Border(lipgloss.Border{Bottom: "─"}, false, false, true, false).BorderForeground(colorBorder)
	footerStyle = lipgloss.NewStyle().Foreground(colorMuted).Padding(0, 1).Border(lipgloss.Border{Top: "─"}, true, false, false, false).BorderForeground(colorBorder)
	panelStyle  = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(colorBorder).Padding(0, 1)
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(colorInk)
	accentStyle = lipgloss.NewStyle().Bold(true).Foreground(colorAccent)
	mutedStyle  = lipgloss.NewStyle().Foreground(colorMuted)
	rowStyle    = lipgloss.NewStyle().Background(colorSelect).Foreground(colorInk)
	errorStyle  = lipgloss.NewStyle().Bold(true).Foreground(colorDanger)
	okStyle     = lipgloss.NewStyle().Bold(true).Foreground(colorSuccess)
	negStyle    = lipgloss.NewStyle().Foreground(colorDanger)
	posStyle    = lipgloss.NewStyle().Foreground(colorSuccess)
	keyStyle    = lipgloss.NewStyle().Bold(true).Foreground(colorAccent)
)
