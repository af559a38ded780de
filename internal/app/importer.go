package app

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/semaphore"
	"golang.org/x/time/rate"

	"reviewable/internal/adapters/observability"
	"reviewable/internal/reviewable"
)

// Importer loads seed documents through the reviewable capabilities, so
// roles and target references are stamped exactly as Add would for a caller.
type Importer struct {
	reg     *reviewable.Registry
	workers int64
	rl      *rate.Limiter
}

// NewImporter bounds concurrency to workers targets at a time and writes to
// rps reviews per second (rps <= 0 disables throttling).
func NewImporter(reg *reviewable.Registry, workers, rps int) *Importer {
	if workers <= 0 {
		workers = 1
	}
	rl := rate.NewLimiter(rate.Inf, 0)
	if rps > 0 {
		rl = rate.NewLimiter(rate.Limit(rps), rps)
	}
	return &Importer{reg: reg, workers: int64(workers), rl: rl}
}

type ImportReport struct {
	Batch   string
	Added   int
	Skipped int
	Failed  int
	Removed int64
}

func (r *ImportReport) merge(o ImportReport) {
	r.Added += o.Added
	r.Skipped += o.Skipped
	r.Failed += o.Failed
	r.Removed += o.Removed
}

// Import processes every target of s. Targets of undeclared types and reviews
// with undeclared roles are skipped; write failures are counted and logged.
// The returned error is non-nil only when ctx ends the run early.
func (im *Importer) Import(ctx context.Context, s Seed) (ImportReport, error) {
	report := ImportReport{Batch: uuid.NewString()}
	logger := log.With().Str("batch", report.Batch).Logger()
	logger.Info().Int("targets", len(s.Reviewables)).Int64("workers", im.workers).Msg("import starting")

	sem := semaphore.NewWeighted(im.workers)
	var (
		wg  sync.WaitGroup
		mu  sync.Mutex
		err error
	)
	for _, t := range s.Reviewables {
		// acquire before launching the goroutine; release inside it
		if err = sem.Acquire(ctx, 1); err != nil {
			break
		}
		wg.Add(1)
		go func(t SeedTarget) {
			defer wg.Done()
			defer sem.Release(1)

			r := im.importTarget(ctx, t)
			mu.Lock()
			report.merge(r)
			mu.Unlock()
		}(t)
	}
	wg.Wait()

	ev := logger.Info()
	if err != nil {
		ev = logger.Warn().Err(err)
	}
	ev.Int("added", report.Added).
		Int("skipped", report.Skipped).
		Int("failed", report.Failed).
		Int64("removed", report.Removed).
		Msg("import finished")
	return report, err
}

func (im *Importer) importTarget(ctx context.Context, t SeedTarget) ImportReport {
	var out ImportReport
	ref := t.ref()

	c, ok := im.reg.Capability(t.Type)
	if !ok {
		log.Warn().Str("target", ref.String()).Msg("type is not reviewable, skipping")
		out.Skipped = len(t.Reviews)
		return out
	}

	if t.Replace {
		n, err := c.Destroy(ctx, ref)
		if err != nil {
			log.Warn().Err(err).Str("target", ref.String()).Msg("replace failed, skipping target")
			out.Failed = len(t.Reviews)
			return out
		}
		out.Removed = n
	}

	for _, sr := range t.Reviews {
		acc, ok := c.Role(roleOf(sr))
		if !ok {
			log.Warn().Str("target", ref.String()).Str("role", roleOf(sr)).Msg("role not declared, skipping review")
			out.Skipped++
			continue
		}
		if err := im.rl.Wait(ctx); err != nil {
			out.Failed++
			continue
		}

		rv := mapSeedReview(sr)
		if err := acc.Add(ctx, ref, &rv); err != nil {
			observability.ObserveImport(t.Type, err)
			log.Warn().Err(err).Str("target", ref.String()).Str("role", acc.Role).Msg("add review failed")
			out.Failed++
			continue
		}
		observability.ObserveImport(t.Type, nil)
		out.Added++
	}
	return out
}
