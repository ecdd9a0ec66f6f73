package queue

import (
	"context"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	"go.uber.org/zap"
)

// Task is one unit of background work. A returned error triggers a retry
// unless it is wrapped with Permanent.
type Task func(ctx context.Context) error

// Submitter is the narrow interface services depend on, so business code
// never touches the dispatcher internals.
type Submitter interface {
	Submit(name string, task Task)
}

// Permanent marks an error as non-retryable: the task fails immediately
// without consuming the remaining attempts.
func Permanent(err error) error {
	return backoff.Permanent(err)
}

type job struct {
	name string
	task Task
}

// Dispatcher runs submitted tasks on a fixed worker pool. Each task is
// executed at least once and retried with exponential backoff up to the
// configured ceiling. Delivery order between tasks is not guaranteed.
type Dispatcher struct {
	log        *zap.Logger
	jobs       chan job
	maxRetries uint64
	interval   time.Duration

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func NewDispatcher(log *zap.Logger, workers int, maxRetries int) *Dispatcher {
	if workers <= 0 {
		workers = 1
	}
	ctx, cancel := context.WithCancel(context.Background())
	d := &Dispatcher{
		log:        log,
		jobs:       make(chan job, 256),
		maxRetries: uint64(maxRetries),
		interval:   500 * time.Millisecond,
		ctx:        ctx,
		cancel:     cancel,
	}
	for i := 0; i < workers; i++ {
		d.wg.Add(1)
		go d.worker()
	}
	return d
}

// Submit enqueues a task. It blocks when the queue is full rather than
// dropping work.
func (d *Dispatcher) Submit(name string, task Task) {
	select {
	case d.jobs <- job{name: name, task: task}:
	case <-d.ctx.Done():
		d.log.Warn("task rejected, dispatcher stopped", zap.String("task", name))
	}
}

// Stop waits for in-flight tasks to finish. Queued-but-unstarted tasks
// are abandoned once the context is cancelled.
func (d *Dispatcher) Stop() {
	d.cancel()
	d.wg.Wait()
}

func (d *Dispatcher) worker() {
	defer d.wg.Done()
	for {
		select {
		case <-d.ctx.Done():
			return
		case j := <-d.jobs:
			d.run(j)
		}
	}
}

func (d *Dispatcher) run(j job) {
	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = d.interval
	bo.MaxElapsedTime = 0

	attempt := 0
	op := func() error {
		attempt++
		err := j.task(d.ctx)
		if err != nil {
			d.log.Warn("task attempt failed",
				zap.String("task", j.name),
				zap.Int("attempt", attempt),
				zap.Error(err))
		}
		return err
	}

	err := backoff.Retry(op, backoff.WithContext(backoff.WithMaxRetries(bo, d.maxRetries), d.ctx))
	if err != nil {
		d.log.Error("task failed permanently",
			zap.String("task", j.name),
			zap.Int("attempts", attempt),
			zap.Error(err))
		return
	}
	d.log.Debug("task completed", zap.String("task", j.name), zap.Int("attempts", attempt))
}
