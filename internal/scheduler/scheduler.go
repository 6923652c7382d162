package scheduler

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"StockPulse/internal/notifier"
	"StockPulse/internal/pipeline"
)

// Jobs is the work the scheduler triggers.
type Jobs interface {
	Seasonal(ctx context.Context) (*pipeline.SeasonalResult, error)
	Screen(ctx context.Context) (*pipeline.ScreenResult, error)
}

// Scheduler manages all cron tasks.
type Scheduler struct {
	Cron     *cron.Cron
	Jobs     Jobs
	Notifier notifier.Notifier
	TopN     int
	Logger   *zap.Logger
	Ctx      context.Context

	running sync.Mutex

	mu      sync.Mutex
	stopped bool
	tasks   sync.WaitGroup
}

// NewScheduler creates a new Scheduler.
func NewScheduler(ctx context.Context, jobs Jobs, n notifier.Notifier, topN int, logger *zap.Logger) *Scheduler {
	return &Scheduler{
		Cron:     cron.New(cron.WithSeconds()),
		Jobs:     jobs,
		Notifier: n,
		TopN:     topN,
		Logger:   logger.Named("scheduler"),
		Ctx:      ctx,
	}
}

// RegisterAll registers the seasonal scan and the daily screener.
func (s *Scheduler) RegisterAll(seasonalCron, screenCron string) error {
	if _, err := s.Cron.AddFunc(seasonalCron, func() { s.track(s.seasonalTask) }); err != nil {
		return fmt.Errorf("register seasonal task: %w", err)
	}
	if _, err := s.Cron.AddFunc(screenCron, func() { s.track(s.screenTask) }); err != nil {
		return fmt.Errorf("register screen task: %w", err)
	}
	return nil
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.Cron.Start()
	s.Logger.Info("scheduler started", zap.Int("jobs", len(s.Cron.Entries())))
}

// Stop stops the cron scheduler and waits for every running task, including
// manual and command-triggered ones. Tasks requested after Stop are dropped.
func (s *Scheduler) Stop() {
	<-s.Cron.Stop().Done()
	s.mu.Lock()
	s.stopped = true
	s.mu.Unlock()
	s.tasks.Wait()
	s.Logger.Info("scheduler stopped")
}

// RunSeasonalNow executes the seasonal task immediately (for manual trigger / RUN_ON_START).
func (s *Scheduler) RunSeasonalNow() {
	s.track(s.seasonalTask)
}

// track runs task unless the scheduler is stopped, so Stop can wait for it.
func (s *Scheduler) track(task func()) bool {
	s.mu.Lock()
	if s.stopped {
		s.mu.Unlock()
		s.Logger.Warn("scheduler stopped, task dropped")
		return false
	}
	s.tasks.Add(1)
	s.mu.Unlock()

	defer s.tasks.Done()
	task()
	return true
}

// seasonalTask and screenTask never overlap; a long seasonal scan delays the screener.
func (s *Scheduler) seasonalTask() {
	s.running.Lock()
	defer s.running.Unlock()

	s.Logger.Info("running seasonal task")
	res, err := s.Jobs.Seasonal(s.Ctx)
	if err != nil {
		s.Logger.Error("seasonal task", zap.Error(err))
		s.trySend(fmt.Sprintf("❌ Seasonal scan failed: %v", err))
		return
	}
	msg := notifier.FormatSeasonalReport(res.Report.Ranked, s.TopN, res.Report.End)
	if failed := len(res.Report.Failed()); failed > 0 {
		msg += fmt.Sprintf("\n\n⚠️ %d symbols skipped (no data or fetch error)", failed)
	}
	s.trySend(msg)
}

func (s *Scheduler) screenTask() {
	s.running.Lock()
	defer s.running.Unlock()

	s.Logger.Info("running screen task")
	res, err := s.Jobs.Screen(s.Ctx)
	if err != nil {
		s.Logger.Error("screen task", zap.Error(err))
		s.trySend(fmt.Sprintf("❌ Screener failed: %v", err))
		return
	}
	msg := notifier.FormatScreenerPicks(res.Picks, res.TradeDate) + "\n" + notifier.FormatPredictions(res.Predictions)
	s.trySend(msg)
}

// HandleCommand processes a user command and returns a reply. Task commands
// send their own report, so they reply with nothing.
func (s *Scheduler) HandleCommand(_ context.Context, command string) string {
	fields := strings.Fields(command)
	if len(fields) == 0 {
		return notifier.FormatHelp()
	}
	cmd := strings.ToLower(fields[0])
	if i := strings.Index(cmd, "@"); i > 0 {
		cmd = cmd[:i]
	}
	switch cmd {
	case "/seasonal":
		return s.runCommand(s.seasonalTask)
	case "/screen":
		return s.runCommand(s.screenTask)
	default:
		return notifier.FormatHelp()
	}
}

func (s *Scheduler) runCommand(task func()) string {
	if !s.track(task) {
		return "⏹ Scheduler is shutting down."
	}
	return ""
}

func (s *Scheduler) trySend(text string) {
	if s.Notifier == nil {
		return
	}
	if err := s.Notifier.SendWithRetry(s.Ctx, text, 3); err != nil {
		s.Logger.Error("send notification", zap.Error(err))
	}
}
