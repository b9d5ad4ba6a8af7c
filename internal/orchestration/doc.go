// Package orchestration drives the simulations on a bounded worker pool and
// turns their records into reports. It decouples sampling from presentation
// via the ProgressReporter and ResultPresenter interfaces.
package orchestration
