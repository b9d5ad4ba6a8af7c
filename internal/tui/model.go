package tui

import (
	"context"
	"runtime"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/agbru/coinsim/internal/config"
	"github.com/agbru/coinsim/internal/orchestration"
	"github.com/agbru/coinsim/internal/sysmon"
)

// Job runs a simulation and its analysis, reporting progress to reporter.
type Job func(ctx context.Context, reporter orchestration.ProgressReporter) (orchestration.Report, error)

// Layout constants for the dashboard.
const (
	headerHeight          = 1
	footerHeight          = 1
	minBodyHeight         = 6
	leftPanelWidthPercent = 55
	metricsPanelHeight    = 5
	statsSampleInterval   = 500 * time.Millisecond
)

// LayoutManager holds terminal dimensions and derives the panel sizes.
type LayoutManager struct {
	width  int
	height int
}

func (l LayoutManager) bodyHeight() int {
	return max(l.height-headerHeight-footerHeight, minBodyHeight)
}

func (l LayoutManager) leftWidth() int  { return l.width * leftPanelWidthPercent / 100 }
func (l LayoutManager) rightWidth() int { return l.width - l.leftWidth() }

func (l LayoutManager) metricsHeight() int {
	return min(metricsPanelHeight, l.bodyHeight()/2)
}

func (l LayoutManager) chartHeight() int { return l.bodyHeight() - l.metricsHeight() }

// Model is the root bubbletea model of the dashboard.
type Model struct {
	header  HeaderModel
	lanes   LanesModel
	results ResultsModel
	metrics MetricsModel
	chart   ChartModel
	footer  FooterModel
	keymap  KeyMap

	LayoutManager

	ctx    context.Context
	cancel context.CancelFunc
	job    Job
	ref    *programRef

	paused bool
	done   bool
	report orchestration.Report
	err    error
}

// NewModel creates the dashboard for plan.
func NewModel(parent context.Context, plan orchestration.Plan, version string, job Job) Model {
	ctx, cancel := context.WithCancel(parent)
	return Model{
		header:  NewHeaderModel(version, string(plan.Mode), plan.BaseSeed),
		lanes:   NewLanesModel(parameterLabel(plan.Mode), plan.Parameters),
		metrics: NewMetricsModel(int64(plan.TotalRecords())),
		chart:   NewChartModel(),
		keymap:  DefaultKeyMap(),
		ctx:     ctx,
		cancel:  cancel,
		job:     job,
		ref:     &programRef{},
	}
}

func parameterLabel(mode config.Mode) string {
	if mode == config.ModeConvergence {
		return "flips"
	}
	return "n"
}

// Init starts the simulation, the stats ticker and the context watcher.
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		tickCmd(),
		runJobCmd(m.ctx, m.ref, m.job),
		watchContextCmd(m.ctx),
	)
}

// Update handles all incoming messages.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.layoutPanels()
		return m, nil

	case ProgressMsg:
		m.lanes.Update(msg.Lane, msg.Value)
		m.metrics.UpdateRecords(msg.Records)
		if !m.paused {
			m.chart.AddDataPoint(msg.AverageProgress, msg.ETA, m.metrics.Rate())
		}
		return m, nil

	case ProgressDoneMsg:
		return m, nil

	case ReportMsg:
		m.report = msg.Report
		m.results.SetReport(msg.Report)
		return m, nil

	case SimulationCompleteMsg:
		m.done = true
		m.err = msg.Err
		m.header.SetDone()
		m.chart.SetDone(m.header.Elapsed())
		m.footer.SetDone(true)
		if msg.Err != nil {
			m.results.SetError(msg.Err)
			m.footer.SetError(true)
		}
		return m, nil

	case TickMsg:
		if m.done {
			return m, nil
		}
		if m.paused {
			return m, tickCmd()
		}
		return m, tea.Batch(sampleMemStatsCmd(), sampleSysStatsCmd(m.ctx), tickCmd())

	case MemStatsMsg:
		m.metrics.UpdateMemStats(msg)
		return m, nil

	case SysStatsMsg:
		m.chart.UpdateSysStats(msg.CPUPercent, msg.MemPercent)
		return m, nil

	case ContextCancelledMsg:
		if !m.done {
			m.err = msg.Err
			m.header.SetDone()
			m.footer.SetDone(true)
		}
		return m, tea.Quit
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keymap.Quit):
		m.cancel()
		return m, tea.Quit
	case key.Matches(msg, m.keymap.Pause):
		m.paused = !m.paused
		m.footer.SetPaused(m.paused)
	case key.Matches(msg, m.keymap.Up):
		m.scroll(-1)
	case key.Matches(msg, m.keymap.Down):
		m.scroll(1)
	case key.Matches(msg, m.keymap.PageUp):
		m.scroll(-m.bodyHeight())
	case key.Matches(msg, m.keymap.PageDown):
		m.scroll(m.bodyHeight())
	}
	return m, nil
}

func (m *Model) scroll(delta int) {
	if m.results.HasContent() {
		m.results.Scroll(delta)
		return
	}
	m.lanes.Scroll(delta)
}

func (m *Model) layoutPanels() {
	m.header.SetWidth(m.width)
	m.footer.SetWidth(m.width)
	m.lanes.SetSize(m.leftWidth(), m.bodyHeight())
	m.results.SetSize(m.leftWidth(), m.bodyHeight())
	m.metrics.SetSize(m.rightWidth(), m.metricsHeight())
	m.chart.SetSize(m.rightWidth(), m.chartHeight())
}

// View renders the dashboard. The results panel replaces the lanes once
// the report or an error arrives.
func (m Model) View() string {
	if m.width == 0 || m.height == 0 {
		return "Initializing..."
	}
	left := m.lanes.View()
	if m.results.HasContent() {
		left = m.results.View()
	}
	right := lipgloss.JoinVertical(lipgloss.Left, m.metrics.View(), m.chart.View())
	body := lipgloss.JoinHorizontal(lipgloss.Top, left, right)
	return lipgloss.JoinVertical(lipgloss.Left, m.header.View(), body, m.footer.View())
}

// Run shows the dashboard while job executes and returns the job's report
// once the user quits. Quitting before the job finishes cancels it.
func Run(ctx context.Context, plan orchestration.Plan, version string, job Job) (orchestration.Report, error) {
	initTUIStyles()

	model := NewModel(ctx, plan, version, job)
	defer model.cancel()

	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))
	model.ref.SetProgram(p)

	final, err := p.Run()
	if err != nil && ctx.Err() == nil {
		return orchestration.Report{}, err
	}
	fm, ok := final.(Model)
	if !ok {
		return orchestration.Report{}, ctx.Err()
	}
	if !fm.done {
		if ctx.Err() != nil {
			return orchestration.Report{}, ctx.Err()
		}
		return orchestration.Report{}, context.Canceled
	}
	return fm.report, fm.err
}

// runJobCmd runs the job with reporters bound to the program.
func runJobCmd(ctx context.Context, ref *programRef, job Job) tea.Cmd {
	return func() tea.Msg {
		report, err := job(ctx, &TUIProgressReporter{ref: ref})
		if err == nil {
			(&TUIResultPresenter{ref: ref}).PresentReport(report, nil)
		}
		return SimulationCompleteMsg{Err: err}
	}
}

// watchContextCmd reports the end of ctx.
func watchContextCmd(ctx context.Context) tea.Cmd {
	return func() tea.Msg {
		<-ctx.Done()
		return ContextCancelledMsg{Err: ctx.Err()}
	}
}

func tickCmd() tea.Cmd {
	return tea.Tick(statsSampleInterval, func(t time.Time) tea.Msg { return TickMsg(t) })
}

func sampleMemStatsCmd() tea.Cmd {
	return func() tea.Msg {
		var ms runtime.MemStats
		runtime.ReadMemStats(&ms)
		return MemStatsMsg{
			Alloc:        ms.Alloc,
			HeapInuse:    ms.HeapInuse,
			NumGC:        ms.NumGC,
			PauseTotalNs: ms.PauseTotalNs,
			NumGoroutine: runtime.NumGoroutine(),
		}
	}
}

func sampleSysStatsCmd(ctx context.Context) tea.Cmd {
	return func() tea.Msg {
		s := sysmon.SampleContext(ctx)
		return SysStatsMsg{CPUPercent: s.CPUPercent, MemPercent: s.MemPercent}
	}
}
