package scheduler

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"StockPulse/internal/model"
	"StockPulse/internal/pipeline"
	"StockPulse/internal/runner"
)

type fakeJobs struct {
	seasonal, screen int
	err              error
}

func (f *fakeJobs) Seasonal(context.Context) (*pipeline.SeasonalResult, error) {
	f.seasonal++
	if f.err != nil {
		return nil, f.err
	}
	return &pipeline.SeasonalResult{Report: &runner.Report{
		End: time.Date(2025, 12, 1, 0, 0, 0, 0, time.UTC),
		Outcomes: []runner.Outcome{
			{Symbol: "SBIN.NS", Summary: &model.SymbolSummary{Symbol: "SBIN.NS"}},
			{Symbol: "BAD.NS", Err: errors.New("boom")},
		},
		Ranked: []model.SymbolSummary{{Symbol: "SBIN.NS", Category: "PSU", WinRate: 75}},
	}}, nil
}

func (f *fakeJobs) Screen(context.Context) (*pipeline.ScreenResult, error) {
	f.screen++
	if f.err != nil {
		return nil, f.err
	}
	return &pipeline.ScreenResult{TradeDate: time.Date(2025, 12, 1, 0, 0, 0, 0, time.UTC)}, nil
}

type captureNotifier struct{ sent []string }

func (c *captureNotifier) SendWithRetry(_ context.Context, text string, _ int) error {
	c.sent = append(c.sent, text)
	return nil
}

func newTestScheduler(jobs *fakeJobs) (*Scheduler, *captureNotifier) {
	n := &captureNotifier{}
	return NewScheduler(context.Background(), jobs, n, 5, zap.NewNop()), n
}

func TestRegisterAll(t *testing.T) {
	s, _ := newTestScheduler(&fakeJobs{})
	require.NoError(t, s.RegisterAll("0 0 18 1 * *", "0 30 18 * * 1-5"))
	assert.Len(t, s.Cron.Entries(), 2)

	s, _ = newTestScheduler(&fakeJobs{})
	assert.Error(t, s.RegisterAll("not a cron", "0 30 18 * * 1-5"))
}

func TestHandleCommand(t *testing.T) {
	jobs := &fakeJobs{}
	s, n := newTestScheduler(jobs)
	ctx := context.Background()

	assert.Empty(t, s.HandleCommand(ctx, "/seasonal"))
	assert.Equal(t, 1, jobs.seasonal)
	require.Len(t, n.sent, 1)
	assert.Contains(t, n.sent[0], "SBIN.NS")
	assert.Contains(t, n.sent[0], "1 symbols skipped")

	assert.Empty(t, s.HandleCommand(ctx, "/screen@StockPulseBot now"))
	assert.Equal(t, 1, jobs.screen)
	require.Len(t, n.sent, 2)
	assert.Contains(t, n.sent[1], "Bhavcopy Screener")

	assert.Contains(t, s.HandleCommand(ctx, "hello"), "/seasonal")
	assert.Contains(t, s.HandleCommand(ctx, ""), "/screen")
}

func TestTaskFailureIsReported(t *testing.T) {
	s, n := newTestScheduler(&fakeJobs{err: errors.New("archive down")})
	s.RunSeasonalNow()
	s.HandleCommand(context.Background(), "/screen")
	require.Len(t, n.sent, 2)
	assert.Contains(t, n.sent[0], "Seasonal scan failed: archive down")
	assert.Contains(t, n.sent[1], "Screener failed: archive down")
}

type blockingJobs struct {
	calls   atomic.Int32
	once    sync.Once
	started chan struct{}
	release chan struct{}
}

func (b *blockingJobs) Seasonal(context.Context) (*pipeline.SeasonalResult, error) {
	b.calls.Add(1)
	b.once.Do(func() { close(b.started) })
	<-b.release
	return &pipeline.SeasonalResult{Report: &runner.Report{}}, nil
}

func (b *blockingJobs) Screen(context.Context) (*pipeline.ScreenResult, error) {
	b.calls.Add(1)
	return &pipeline.ScreenResult{}, nil
}

func TestStopWaitsForManualRun(t *testing.T) {
	jobs := &blockingJobs{started: make(chan struct{}), release: make(chan struct{})}
	s := NewScheduler(context.Background(), jobs, nil, 5, zap.NewNop())
	s.Start()

	go s.RunSeasonalNow()
	<-jobs.started

	stopped := make(chan struct{})
	go func() {
		s.Stop()
		close(stopped)
	}()

	select {
	case <-stopped:
		t.Fatal("Stop returned while the seasonal run was still in flight")
	case <-time.After(50 * time.Millisecond):
	}

	close(jobs.release)
	select {
	case <-stopped:
	case <-time.After(2 * time.Second):
		t.Fatal("Stop did not return after the run finished")
	}

	s.RunSeasonalNow()
	assert.Contains(t, s.HandleCommand(context.Background(), "/screen"), "shutting down")
	assert.Equal(t, int32(1), jobs.calls.Load())
}
