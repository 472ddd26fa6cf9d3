// Package worker executes staged jobs hop by hop.
package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"gorm.io/gorm"

	"github.com/ah-its-andy/anclora-nexus/internal/converter"
	"github.com/ah-its-andy/anclora-nexus/internal/db"
	"github.com/ah-its-andy/anclora-nexus/internal/livelog"
)

// Refunder gives credits back when a job fails.
type Refunder interface {
	Refund(account string, n int) (int, error)
}

// Categorizer maps a format to its category.
type Categorizer interface {
	Category(format string) (string, bool)
}

type Pool struct {
	workers    int
	db         *gorm.DB
	queue      *Queue
	registry   *converter.Registry
	categories Categorizer
	ledger     Refunder
	live       *livelog.Manager
	logger     *slog.Logger
	wg         sync.WaitGroup
}

type Options struct {
	Workers    int
	DB         *gorm.DB
	Queue      *Queue
	Registry   *converter.Registry
	Categories Categorizer
	Ledger     Refunder
	Live       *livelog.Manager
	Logger     *slog.Logger
}

func NewPool(opts Options) *Pool {
	if opts.Workers <= 0 {
		opts.Workers = 1
	}
	if opts.Logger == nil {
		opts.Logger = slog.New(slog.DiscardHandler)
	}
	if opts.Live == nil {
		opts.Live = livelog.NewManager()
	}
	return &Pool{
		workers:    opts.Workers,
		db:         opts.DB,
		queue:      opts.Queue,
		registry:   opts.Registry,
		categories: opts.Categories,
		ledger:     opts.Ledger,
		live:       opts.Live,
		logger:     opts.Logger,
	}
}

// Run starts the workers. They stop when the queue is closed and empty, or
// when ctx is done; ctx also cancels the hop in progress.
func (p *Pool) Run(ctx context.Context) {
	for i := 0; i < p.workers; i++ {
		p.wg.Add(1)
		go p.worker(ctx, i)
	}
	p.logger.Info("started conversion workers", "count", p.workers)
}

func (p *Pool) worker(ctx context.Context, idx int) {
	defer p.wg.Done()
	for {
		select {
		case <-ctx.Done():
			return
		case id, ok := <-p.queue.Chan():
			if !ok {
				return
			}
			p.handle(ctx, id)
		}
	}
}

// Drain waits for the workers to exit, or for ctx to be done.
func (p *Pool) Drain(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Recover queues jobs left pending or running by a previous process.
func (p *Pool) Recover() (int, error) {
	var jobs []db.Job
	err := p.db.Where("status IN ?", []db.Status{db.StatusPending, db.StatusRunning}).
		Order("created_at asc").Find(&jobs).Error
	if err != nil {
		return 0, err
	}
	queued := 0
	for _, job := range jobs {
		if err := p.queue.Enqueue(job.ID); err != nil {
			p.logger.Warn("could not requeue job", "job", job.ID, "error", err)
			continue
		}
		queued++
	}
	return queued, nil
}

func (p *Pool) handle(ctx context.Context, id string) {
	defer p.queue.Dequeued(id)
	logger := p.logger.With("job", id)

	job, err := db.GetJob(p.db, id)
	if err != nil {
		logger.Error("load job", "error", err)
		return
	}
	if job.Status == db.StatusSuccess || job.Status == db.StatusFailed {
		return
	}
	if err := db.SetStatus(p.db, id, db.StatusRunning, nil); err != nil {
		logger.Error("set running", "error", err)
		return
	}

	p.live.Start(id)
	defer p.live.End(id)

	if err := p.runHops(ctx, job, logger); err != nil {
		if interrupted(ctx, err) {
			p.release(id, logger)
			return
		}
		p.fail(job, err, logger)
		return
	}
	if err := db.SetStatus(p.db, id, db.StatusSuccess, nil); err != nil {
		logger.Error("set success", "error", err)
		return
	}
	logger.Info("job finished", "path", job.Path, "steps", job.Steps)
}

func (p *Pool) runHops(ctx context.Context, job *db.Job, logger *slog.Logger) error {
	formats := job.Formats()
	name := job.FileName
	if job.CurrentHop > 0 && name != "" {
		name = converter.OutputName(name, formats[job.CurrentHop])
	}

	for i := job.CurrentHop; i < len(formats)-1; i++ {
		from, to := formats[i], formats[i+1]
		fromCategory, _ := p.categories.Category(from)
		toCategory, _ := p.categories.Category(to)
		req := converter.HopRequest{
			Kind:         converter.KindFor(fromCategory, toCategory),
			JobID:        job.ID,
			Index:        i,
			From:         from,
			To:           to,
			FromCategory: fromCategory,
			ToCategory:   toCategory,
			Quality:      job.QualityTier,
			InputName:    name,
			SizeBytes:    job.SizeBytes,
		}

		start := time.Now()
		hop := &db.HopHistory{
			JobID:     job.ID,
			HopIndex:  i,
			From:      from,
			To:        to,
			StartTime: start,
		}

		conv, err := p.registry.Find(from, to)
		var res converter.HopResult
		if err == nil {
			hop.Converter = conv.Name()
			res, err = conv.Convert(ctx, req)
		}
		if err != nil && interrupted(ctx, err) {
			return err
		}
		hop.EndTime = time.Now()
		hop.DurationMs = hop.EndTime.Sub(start).Milliseconds()
		hop.Status = db.StatusSuccess
		hop.Log = res.Log
		if err != nil {
			hop.Status = db.StatusFailed
			hop.Log = err.Error()
		}
		p.live.Append(job.ID, i, hop.Log)
		if herr := db.InsertHopHistory(p.db, hop); herr != nil {
			logger.Error("insert hop history", "hop", i, "error", herr)
		}
		if err != nil {
			return fmt.Errorf("hop %d %s -> %s: %w", i, from, to, err)
		}

		if err := db.AdvanceHop(p.db, job.ID, i+1); err != nil {
			return fmt.Errorf("advance hop: %w", err)
		}
		logger.Debug("hop done", "hop", i, "from", from, "to", to, "converter", hop.Converter)
		name = res.OutputName
	}
	return nil
}

// interrupted reports whether err comes from the pool shutting down rather
// than from the hop itself.
func interrupted(ctx context.Context, err error) bool {
	return ctx.Err() != nil && errors.Is(err, ctx.Err())
}

// release puts an interrupted job back to pending at its current hop, so the
// next Recover resumes it. Credits stay charged.
func (p *Pool) release(id string, logger *slog.Logger) {
	if err := db.SetStatus(p.db, id, db.StatusPending, nil); err != nil {
		logger.Error("release interrupted job", "error", err)
		return
	}
	logger.Info("job interrupted, left pending for recovery")
}

func (p *Pool) fail(job *db.Job, cause error, logger *slog.Logger) {
	msg := cause.Error()
	logger.Warn("job failed", "error", msg)
	if err := db.SetStatus(p.db, job.ID, db.StatusFailed, &msg); err != nil {
		logger.Error("set failed", "error", err)
	}
	if job.Credits > 0 && p.ledger != nil {
		if _, err := p.ledger.Refund(job.AccountID, job.Credits); err != nil {
			logger.Error("refund credits", "account", job.AccountID, "credits", job.Credits, "error", err)
		}
	}
}
