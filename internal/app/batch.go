package app

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/chessguard/chessguard/internal/adapters/mq/queue"
	"github.com/chessguard/chessguard/internal/domain/model"
)

// GameResult pairs one submitted game with its outcome. Exactly one of
// Report and Err is set, except for duplicates which carry the stored report.
type GameResult struct {
	ID     string
	Report *model.DetectionReport
	Err    error
}

// Submit analyzes one game synchronously through the queue. Re-submitting a
// game ID returns its stored report without re-analysis.
func (s *Service) Submit(ctx context.Context, job queue.Job) (*model.DetectionReport, error) {
	if !s.Started() {
		return nil, ErrNotStarted
	}
	normalizeJob(&job)

	if s.deduper.SeenAndRecord(ctx, job.ID) {
		if r, err := s.store.Get(ctx, job.ID); err == nil {
			return r, nil
		}
		return nil, fmt.Errorf("%w: %s", ErrDuplicateGame, job.ID)
	}

	type outcome struct {
		report *model.DetectionReport
		err    error
	}
	done := make(chan outcome, 1)
	job.Complete = func(r *model.DetectionReport, err error) {
		if r == nil {
			// A failed game may be corrected and re-submitted.
			s.deduper.Unrecord(ctx, job.ID)
		}
		done <- outcome{r, err}
	}

	if !s.jobs.Enqueue(ctx, job) {
		s.deduper.Unrecord(ctx, job.ID)
		return nil, fmt.Errorf("%w: game %s", ErrQueueFull, job.ID)
	}

	select {
	case out := <-done:
		return out.report, out.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// AnalyzeBatch submits every game and blocks until each one completes or
// fails; results come back in submission order. Canceling ctx stops
// launching new games but lets in-flight analyses finish, keeping the
// evaluation cache consistent. One game's failure never aborts the batch.
func (s *Service) AnalyzeBatch(ctx context.Context, jobs []queue.Job) []GameResult {
	results := make([]GameResult, len(jobs))
	var wg sync.WaitGroup

	for i := range jobs {
		job := jobs[i]
		normalizeJob(&job)
		results[i].ID = job.ID

		if err := ctx.Err(); err != nil {
			results[i].Err = fmt.Errorf("%w: %v", ErrBatchCanceled, err)
			continue
		}
		if s.deduper.SeenAndRecord(ctx, job.ID) {
			if r, getErr := s.store.Get(ctx, job.ID); getErr == nil {
				results[i].Report = r
			} else {
				results[i].Err = fmt.Errorf("%w: %s", ErrDuplicateGame, job.ID)
			}
			continue
		}

		wg.Add(1)
		slot := &results[i]
		job.Complete = func(r *model.DetectionReport, err error) {
			if r == nil {
				s.deduper.Unrecord(ctx, job.ID)
			}
			slot.Report, slot.Err = r, err
			wg.Done()
		}
		if !s.jobs.Enqueue(ctx, job) {
			wg.Done()
			s.deduper.Unrecord(ctx, job.ID)
			slot.Err = fmt.Errorf("%w: game %s", ErrQueueFull, job.ID)
		}
	}

	wg.Wait()
	return results
}

// normalizeJob guarantees a usable job ID: the game's own identity when it
// has one, otherwise a fresh UUID.
func normalizeJob(job *queue.Job) {
	if job.ID == "" && job.Game != nil {
		job.ID = job.Game.ID()
	}
	if job.ID == "" {
		job.ID = uuid.NewString()
	}
}
