package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/panjf2000/ants/v2"
	"github.com/robfig/cron/v3"

	"match_importer/internal/domain"
	"match_importer/internal/logging"
)

// Importer defines the import operations a tick triggers.
type Importer interface {
	ImportFixtures(ctx context.Context) (*domain.ImportStats, error)
	ImportResults(ctx context.Context, req domain.ResultFeedRequest) (*domain.ImportStats, error)
}

type Alerter interface {
	Alert(ctx context.Context, text string) error
}

type Config struct {
	// Cron is a six-field spec, seconds first.
	Cron       string
	RunTimeout time.Duration
	Workers    int
	Results    []domain.ResultFeedRequest
}

type Scheduler struct {
	importer Importer
	alerter  Alerter
	cfg      Config
	logger   *logging.Logger
}

// NewScheduler builds a scheduler. alerter may be nil.
func NewScheduler(importer Importer, alerter Alerter, cfg Config, logger *logging.Logger) *Scheduler {
	if cfg.Workers < 1 {
		cfg.Workers = 1
	}
	if cfg.RunTimeout <= 0 {
		cfg.RunTimeout = 5 * time.Minute
	}
	return &Scheduler{
		importer: importer,
		alerter:  alerter,
		cfg:      cfg,
		logger:   logger,
	}
}

type task struct {
	name string
	run  func(ctx context.Context) (*domain.ImportStats, error)
}

func (s *Scheduler) tasks() []task {
	tasks := []task{{
		name: "fixtures",
		run:  s.importer.ImportFixtures,
	}}
	for _, req := range s.cfg.Results {
		req := req
		tasks = append(tasks, task{
			name: fmt.Sprintf("results %s%d %s", req.CountryCode, req.Division, seasonLabel(req.Season)),
			run: func(ctx context.Context) (*domain.ImportStats, error) {
				return s.importer.ImportResults(ctx, req)
			},
		})
	}
	return tasks
}

func seasonLabel(season string) string {
	if season == "" {
		return "current"
	}
	return season
}

// Start runs one pass immediately, then one per cron tick until ctx is done.
func (s *Scheduler) Start(ctx context.Context) error {
	c := cron.New(cron.WithSeconds(), cron.WithChain(
		cron.Recover(cronLogger{s.logger}),
		cron.SkipIfStillRunning(cronLogger{s.logger}),
	))

	if _, err := c.AddFunc(s.cfg.Cron, func() {
		_ = s.RunOnce(ctx)
	}); err != nil {
		return errors.Wrapf(err, "parse cron spec %q", s.cfg.Cron)
	}

	s.logger.Info("scheduler started", "cron", s.cfg.Cron, "feeds", len(s.cfg.Results)+1, "workers", s.cfg.Workers)

	_ = s.RunOnce(ctx)

	c.Start()
	<-ctx.Done()
	<-c.Stop().Done()

	s.logger.Info("scheduler stopped")
	return ctx.Err()
}

// RunOnce imports every configured feed on a bounded pool and returns the
// combined failures. Each feed is isolated from the others.
func (s *Scheduler) RunOnce(ctx context.Context) error {
	tasks := s.tasks()

	pool, err := ants.NewPool(s.cfg.Workers)
	if err != nil {
		return errors.Wrap(err, "create worker pool")
	}
	defer pool.Release()

	var (
		mu       sync.Mutex
		combined error
		workers  sync.WaitGroup
	)

	for _, t := range tasks {
		t := t
		workers.Add(1)
		if err := pool.Submit(func() {
			defer workers.Done()
			if err := s.runTask(ctx, t); err != nil {
				mu.Lock()
				combined = errors.CombineErrors(combined, err)
				mu.Unlock()
			}
		}); err != nil {
			workers.Done()
			mu.Lock()
			combined = errors.CombineErrors(combined, errors.Wrapf(err, "submit %s", t.name))
			mu.Unlock()
		}
	}

	workers.Wait()
	return combined
}

func (s *Scheduler) runTask(ctx context.Context, t task) error {
	runCtx, cancel := context.WithTimeout(ctx, s.cfg.RunTimeout)
	defer cancel()

	stats, err := t.run(runCtx)
	if err != nil {
		err = errors.Wrapf(err, "import %s", t.name)
		s.logger.Error("import failed", "task", t.name, "error", err)
		s.alert(ctx, fmt.Sprintf("match importer: %s failed: %v", t.name, err))
		return err
	}

	if stats != nil {
		s.logger.Info("import finished",
			"task", t.name,
			"unchanged", stats.Unchanged,
			"rows", stats.Rows,
			"inserted", stats.Inserted,
			"upgraded", stats.Upgraded,
			"skipped", stats.Skipped,
			"failed", stats.Failed,
			"duration", stats.Duration,
		)
	}
	return nil
}

func (s *Scheduler) alert(ctx context.Context, text string) {
	if s.alerter == nil || ctx.Err() != nil {
		return
	}
	if err := s.alerter.Alert(ctx, text); err != nil {
		s.logger.Warn("failed to send alert", "error", err)
	}
}

// cronLogger satisfies cron.Logger.
type cronLogger struct {
	logger *logging.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...any) {
	l.logger.Debug(msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...any) {
	l.logger.Error(msg, append(keysAndValues, "error", err)...)
}
