package scheduler

import (
	"context"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

const (
	defaultInterval     = 600 * time.Second
	defaultCycleTimeout = 2 * time.Minute
)

// Ticker runs one polling cycle. Implementations handle their own errors.
type Ticker interface {
	Tick(ctx context.Context)
}

// PollScheduler drives a Ticker at a fixed interval, one cycle at a time.
type PollScheduler struct {
	cronEngine   *cron.Cron
	cronLogger   cron.Logger
	poller       Ticker
	logger       *logrus.Entry
	interval     time.Duration
	cycleTimeout time.Duration

	baseCtx context.Context
	cancel  context.CancelFunc

	startOnce sync.Once
	stopOnce  sync.Once
	initialWG sync.WaitGroup
}

func NewPollScheduler(poller Ticker, logger *logrus.Entry, interval, cycleTimeout time.Duration) *PollScheduler {
	if interval <= 0 {
		interval = defaultInterval
	}
	if cycleTimeout <= 0 {
		cycleTimeout = defaultCycleTimeout
	}
	cronLogger := cron.PrintfLogger(logger)
	ctx, cancel := context.WithCancel(context.Background())
	return &PollScheduler{
		cronEngine:   cron.New(cron.WithLogger(cronLogger)),
		cronLogger:   cronLogger,
		poller:       poller,
		logger:       logger,
		interval:     interval,
		cycleTimeout: cycleTimeout,
		baseCtx:      ctx,
		cancel:       cancel,
	}
}

// Start runs the first cycle right away and then one cycle per interval.
// Overlapping runs are skipped, not queued.
func (s *PollScheduler) Start() {
	s.startOnce.Do(func() {
		s.logger.WithField("interval", s.interval.String()).Info("Starting poll scheduler...")

		job := cron.NewChain(
			cron.Recover(s.cronLogger),
			cron.SkipIfStillRunning(s.cronLogger),
		).Then(cron.FuncJob(s.executeCycle))

		s.cronEngine.Schedule(cron.Every(s.interval), job)
		s.cronEngine.Start()

		s.initialWG.Add(1)
		go func() {
			defer s.initialWG.Done()
			job.Run()
		}()

		s.logger.Info("Poll scheduler started.")
	})
}

func (s *PollScheduler) executeCycle() {
	if s.baseCtx.Err() != nil {
		return
	}
	ctx, cancel := context.WithTimeout(s.baseCtx, s.cycleTimeout)
	defer cancel()

	start := time.Now()
	s.poller.Tick(ctx)
	s.logger.WithField("duration_ms", time.Since(start).Milliseconds()).Debug("Polling cycle finished")
}

// Stop cancels the running cycle, if any, and waits for it to return.
func (s *PollScheduler) Stop() {
	s.stopOnce.Do(func() {
		s.logger.Info("Stopping poll scheduler...")
		s.cancel()
		ctx := s.cronEngine.Stop() // Stops the scheduler from adding new jobs, waits for running jobs.
		<-ctx.Done()
		s.initialWG.Wait()
		s.logger.Info("Poll scheduler gracefully stopped.")
	})
}
