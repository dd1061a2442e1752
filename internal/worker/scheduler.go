// Package worker runs the summarize queue on a cron schedule.
package worker

import (
	"context"
	"fmt"

	"github.com/robfig/cron/v3"

	"github.com/robbertpopa/itec-web-2025/pkg/logger"
)

const maxTasksPerTick = 10

type Processor interface {
	ProcessNext(ctx context.Context) (bool, error)
}

// Scheduler drains the queue on every tick of a six-field cron spec
// (seconds first). A tick still running when the next one fires is skipped.
type Scheduler struct {
	log       logger.Log
	cron      *cron.Cron
	processor Processor
	ctx       context.Context
	cancel    context.CancelFunc
}

func NewScheduler(l logger.Log, spec string, p Processor) (*Scheduler, error) {
	ctx, cancel := context.WithCancel(context.Background())
	s := &Scheduler{
		log:       l.With("component", "worker"),
		processor: p,
		ctx:       ctx,
		cancel:    cancel,
	}
	s.cron = cron.New(
		cron.WithSeconds(),
		cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)),
	)
	if _, err := s.cron.AddFunc(spec, func() { s.Drain(s.ctx) }); err != nil {
		cancel()
		return nil, fmt.Errorf("worker schedule %q: %w", spec, err)
	}
	return s, nil
}

func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop cancels the running tick and waits for it to return or ctx to end.
func (s *Scheduler) Stop(ctx context.Context) {
	s.cancel()
	done := s.cron.Stop()
	select {
	case <-done.Done():
	case <-ctx.Done():
		s.log.Warn("Stop: gave up waiting for the running tick")
	}
}

// Drain processes waiting tasks until the queue is empty, a task is lost to
// another worker, or maxTasksPerTick tasks were handled. It returns the
// number of processed tasks.
func (s *Scheduler) Drain(ctx context.Context) int {
	n := 0
	for n < maxTasksPerTick {
		if ctx.Err() != nil {
			return n
		}
		processed, err := s.processor.ProcessNext(ctx)
		if err != nil {
			s.log.ErrorErr("Drain: error processing queue", err)
			return n
		}
		if !processed {
			return n
		}
		n++
	}
	return n
}
