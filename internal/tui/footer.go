package tui

import "strings"

// FooterModel renders the key hints and the run status.
type FooterModel struct {
	paused bool
	done   bool
	err    bool
	width  int
}

func (f *FooterModel) SetPaused(p bool) { f.paused = p }
func (f *FooterModel) SetDone(d bool)   { f.done = d }
func (f *FooterModel) SetError(e bool)  { f.err = e }
func (f *FooterModel) SetWidth(w int)   { f.width = w }

// View renders the footer.
func (f FooterModel) View() string {
	hints := []string{
		footerKeyStyle.Render("q") + " " + footerDescStyle.Render("quit"),
		footerKeyStyle.Render("space") + " " + footerDescStyle.Render("pause"),
		footerKeyStyle.Render("↑↓") + " " + footerDescStyle.Render("scroll"),
	}
	var status string
	switch {
	case f.err:
		status = statusErrorStyle.Render("ERROR")
	case f.done:
		status = statusDoneStyle.Render("DONE")
	case f.paused:
		status = statusPausedStyle.Render("PAUSED")
	default:
		status = statusRunningStyle.Render("RUNNING")
	}
	return " " + strings.Join(hints, "  ") + "   " + status
}
