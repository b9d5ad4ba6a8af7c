// Package ui provides the color themes shared by the console presenter and
// the TUI dashboard. Console output uses ANSI escape codes; the dashboard
// uses the matching lipgloss palette.
package ui
