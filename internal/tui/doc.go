// Package tui implements the interactive dashboard shown with --tui.
//
// The dashboard is a bubbletea program. A simulation job runs in a command
// goroutine and talks to the program through TUIProgressReporter and
// TUIResultPresenter, which turn progress updates and the final report into
// messages. Panels (lanes, results, metrics, chart) are plain value models
// composed by Model.
package tui
