package tui

import "github.com/charmbracelet/lipgloss"

var (
	titleStyle   = lipgloss.NewStyle().Bold(true)
	panelStyle   = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	focusedPanel = panelStyle.Copy().BorderForeground(lipgloss.Color("12"))
	buttonStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	disabledBtn  = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	loadingStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true)
	noticeStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	answerStyle  = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
)
