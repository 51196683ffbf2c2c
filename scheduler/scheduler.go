package scheduler

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"
)

// Job - периодическая фоновая задача. Run вызывается сразу при старте
// планировщика и затем каждый Interval.
type Job struct {
	Name     string
	Interval time.Duration
	Run      func(ctx context.Context) error
}

type Scheduler struct {
	jobs   []Job
	logger *slog.Logger
}

func New(logger *slog.Logger) *Scheduler {
	return &Scheduler{logger: logger}
}

func (s *Scheduler) Add(job Job) {
	s.jobs = append(s.jobs, job)
}

// Run запускает все задачи и блокируется до отмены контекста. Ошибка задачи
// логируется и не останавливает ни задачу, ни остальных.
func (s *Scheduler) Run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)

	for _, job := range s.jobs {
		job := job
		g.Go(func() error {
			s.runJob(ctx, job)

			ticker := time.NewTicker(job.Interval)
			defer ticker.Stop()
			for {
				select {
				case <-ctx.Done():
					return ctx.Err()
				case <-ticker.C:
					s.runJob(ctx, job)
				}
			}
		})
	}

	return g.Wait()
}

func (s *Scheduler) runJob(ctx context.Context, job Job) {
	started := time.Now()
	if err := job.Run(ctx); err != nil {
		s.logger.Error("scheduled job failed",
			slog.String("job", job.Name),
			slog.String("error", err.Error()),
		)
		return
	}
	s.logger.Info("scheduled job finished",
		slog.String("job", job.Name),
		slog.Duration("took", time.Since(started)),
	)
}
