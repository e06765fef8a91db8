package digest

import (
	"context"
	"fmt"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

const DefaultSchedule = "@every 12h"

// Runner performs one agent pass.
type Runner interface {
	RunOnce(ctx context.Context) (Report, error)
}

// Scheduler triggers the agent on a cron schedule.
type Scheduler struct {
	cron     *cron.Cron
	runner   Runner
	schedule string
	logger   *zap.Logger
}

func NewScheduler(runner Runner, schedule string, logger *zap.Logger) *Scheduler {
	if logger == nil {
		logger = zap.NewNop()
	}
	if schedule == "" {
		schedule = DefaultSchedule
	}
	return &Scheduler{
		cron:     cron.New(cron.WithLogger(cronLogger{logger}), cron.WithChain(cron.SkipIfStillRunning(cronLogger{logger}))),
		runner:   runner,
		schedule: schedule,
		logger:   logger,
	}
}

// Start registers the job, starts the scheduler and runs one pass right away
// so users do not wait for the first tick.
func (s *Scheduler) Start(ctx context.Context) error {
	id, err := s.cron.AddFunc(s.schedule, func() { s.run(ctx) })
	if err != nil {
		return fmt.Errorf("cron.AddFunc(%q): %w", s.schedule, err)
	}

	s.cron.Start()
	s.logger.Info("job agent scheduled", zap.String("schedule", s.schedule))

	go s.cron.Entry(id).WrappedJob.Run()
	return nil
}

// Stop halts the scheduler and waits for a running pass to finish.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
	s.logger.Info("job agent scheduler stopped")
}

func (s *Scheduler) run(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}
	if _, err := s.runner.RunOnce(ctx); err != nil {
		s.logger.Error("job agent run failed", zap.Error(err))
	}
}

// cronLogger routes cron's own messages through zap.
type cronLogger struct {
	logger *zap.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...any) {
	l.logger.Sugar().Debugw(msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...any) {
	l.logger.Sugar().Errorw(msg, append(keysAndValues, "error", err)...)
}
