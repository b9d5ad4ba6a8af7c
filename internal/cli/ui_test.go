package cli

import (
	"bytes"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/briandowns/spinner"
	"github.com/golang/mock/gomock"

	"github.com/agbru/coinsim/internal/cli/mocks"
	"github.com/agbru/coinsim/internal/progress"
)

func withSpinner(t *testing.T, s Spinner) {
	t.Helper()
	original := newSpinner
	newSpinner = func(...spinner.Option) Spinner { return s }
	t.Cleanup(func() { newSpinner = original })
}

func TestRealSpinner(t *testing.T) {
	t.Parallel()
	s := spinner.New(spinner.CharSets[11], 100*time.Millisecond, spinner.WithWriter(io.Discard))
	rs := &realSpinner{s}

	rs.Start()
	rs.UpdateSuffix(" test")
	rs.Stop()
	if s.Suffix != " test" {
		t.Errorf("suffix = %q", s.Suffix)
	}
}

func TestDisplayProgress(t *testing.T) {
	ctrl := gomock.NewController(t)
	mockS := mocks.NewMockSpinner(ctrl)
	gomock.InOrder(
		mockS.EXPECT().UpdateSuffix(gomock.Any()),
		mockS.EXPECT().Start(),
		mockS.EXPECT().Stop(),
	)
	mockS.EXPECT().UpdateSuffix(gomock.Any()).AnyTimes()
	withSpinner(t, mockS)

	var wg sync.WaitGroup
	wg.Add(1)
	progressChan := make(chan progress.ProgressUpdate)
	go func() {
		progressChan <- progress.ProgressUpdate{Lane: 0, Value: 0.5, Records: 5}
		progressChan <- progress.ProgressUpdate{Lane: 1, Value: 1, Records: 10}
		progressChan <- progress.ProgressUpdate{Lane: 0, Value: 1, Records: 10}
		close(progressChan)
	}()

	var out bytes.Buffer
	DisplayProgress(&wg, progressChan, 2, &out)
	wg.Wait()

	got := out.String()
	if !strings.Contains(got, "100.0%") {
		t.Errorf("final line should show completion, got %q", got)
	}
	if !strings.Contains(got, "20 records") {
		t.Errorf("final line should count records, got %q", got)
	}
}

func TestDisplayProgressZeroLanes(t *testing.T) {
	ctrl := gomock.NewController(t)
	withSpinner(t, mocks.NewMockSpinner(ctrl)) // no calls expected

	var wg sync.WaitGroup
	wg.Add(1)
	progressChan := make(chan progress.ProgressUpdate, 1)
	progressChan <- progress.ProgressUpdate{Lane: 0, Value: 1}
	close(progressChan)

	DisplayProgress(&wg, progressChan, 0, io.Discard)
	wg.Wait()
}

func TestCLIProgressReporter(t *testing.T) {
	ctrl := gomock.NewController(t)
	mockS := mocks.NewMockSpinner(ctrl)
	mockS.EXPECT().Start()
	mockS.EXPECT().Stop()
	mockS.EXPECT().UpdateSuffix(gomock.Any()).MinTimes(1)
	withSpinner(t, mockS)

	var wg sync.WaitGroup
	wg.Add(1)
	progressChan := make(chan progress.ProgressUpdate)
	close(progressChan)

	CLIProgressReporter{}.DisplayProgress(&wg, progressChan, 3, io.Discard)
	wg.Wait()
}

func TestProgressLine(t *testing.T) {
	t.Parallel()
	got := progressLine(0.25, 90*time.Second, 12345)
	for _, want := range []string{"25.0%", "1m30s", "12,345 records"} {
		if !strings.Contains(got, want) {
			t.Errorf("progressLine = %q, missing %q", got, want)
		}
	}
}
