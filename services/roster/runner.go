package roster

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"rosterwatch/lib/retry"
	"rosterwatch/lib/scrapers/chichi"
	"rosterwatch/lib/telemetry"
	"rosterwatch/lib/timezone"

	"go.opentelemetry.io/otel/codes"
)

var tracer = telemetry.Tracer("rosterwatch.services.roster")

// ProfileSource retrieves the raw profile document for one player.
// *chichi.Client implements it; tests substitute fakes.
type ProfileSource interface {
	FetchProfile(ctx context.Context, nickname string) (string, error)
}

// RosterSource produces listing pages in ascending offset order.
// *chichi.RosterCursor implements it.
type RosterSource interface {
	Next(ctx context.Context) ([]chichi.ListingEntry, error)
	Done() bool
}

// CapOffset bounds a roster cursor at a maximum offset so a run can be
// stopped partway through a very large roster.
func CapOffset(cursor *chichi.RosterCursor, maxOffset int) RosterSource {
	return &cappedSource{cursor: cursor, max: maxOffset}
}

type cappedSource struct {
	cursor *chichi.RosterCursor
	max    int
}

func (c *cappedSource) Done() bool {
	return c.cursor.Done() || c.cursor.Offset() > c.max
}

func (c *cappedSource) Next(ctx context.Context) ([]chichi.ListingEntry, error) {
	if c.Done() {
		return nil, nil
	}
	return c.cursor.Next(ctx)
}

// Observer is notified as players finish, decoupling progress display
// from the fetch loop. Called from worker goroutines.
type Observer func(nickname string, status Status)

type RunnerOptions struct {
	Source ProfileSource
	Cache  *Cache
	Stats  *Statistics
	// Retry governs re-attempts of transient fetch failures.
	Retry retry.Policy
	// MaxConcurrent caps simultaneous profile fetches.
	MaxConcurrent int
	// ForceRefresh re-fetches entries previously recorded as
	// failed-permanently or already complete.
	ForceRefresh bool
	Observer     Observer
}

// Runner fans listing entries out to a bounded pool of fetch workers
// and routes every outcome into the cache. Admission follows listing
// order; completion order is unordered. Each player is handled by
// exactly one worker, so no cache key is ever written concurrently.
type Runner struct {
	opts RunnerOptions
}

func NewRunner(opts RunnerOptions) *Runner {
	if opts.MaxConcurrent <= 0 {
		opts.MaxConcurrent = 5
	}
	if opts.Retry.MaxAttempts == 0 {
		opts.Retry = retry.DefaultPolicy()
	}
	if opts.Retry.Retryable == nil {
		opts.Retry.Retryable = chichi.IsTransient
	}
	if opts.Stats == nil {
		opts.Stats = NewStatistics()
	}
	if opts.Observer == nil {
		opts.Observer = func(string, Status) {}
	}
	return &Runner{opts: opts}
}

// Run drives pagination to exhaustion, dispatching entries to the
// worker pool. A pagination failure stops admission but lets in-flight
// fetches finish; everything cached up to that point is preserved and
// the error is returned so the caller can decide whether any progress
// was made. Cancelling ctx stops new admissions.
func (r *Runner) Run(ctx context.Context, source RosterSource) error {
	ctx, span := tracer.Start(ctx, "runner:Run")
	defer span.End()

	queue := make(chan chichi.ListingEntry)
	var wg sync.WaitGroup
	for i := 0; i < r.opts.MaxConcurrent; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for entry := range queue {
				r.process(ctx, entry)
			}
		}()
	}

	var pageErr error
admission:
	for !source.Done() {
		entries, err := source.Next(ctx)
		if err != nil {
			// already-yielded entries stay valid, the caller may
			// resume from the failing offset on the next run
			pageErr = err
			span.RecordError(err)
			span.SetStatus(codes.Error, "pagination aborted")
			break
		}
		for _, entry := range entries {
			select {
			case queue <- entry:
			case <-ctx.Done():
				pageErr = ctx.Err()
				break admission
			}
		}
	}
	close(queue)
	wg.Wait()

	if pageErr != nil && !errors.Is(pageErr, context.Canceled) {
		slog.ErrorContext(ctx, "pagination stopped early", "err", pageErr)
	}
	return pageErr
}

// process owns the full fetch -> extract -> upsert sequence for one
// player; for a single identifier these steps are strictly sequential.
func (r *Runner) process(ctx context.Context, entry chichi.ListingEntry) {
	// entries admitted in the same instant the run was cancelled are
	// dropped, not processed
	if ctx.Err() != nil {
		return
	}
	ctx, span := tracer.Start(ctx, "runner:process")
	defer span.End()

	nickname := entry.Nickname
	r.opts.Stats.LogPlayer()

	if existing, ok := r.opts.Cache.Get(nickname); ok && !r.opts.ForceRefresh {
		if existing.Status == StatusSuccess && existing.Complete {
			slog.DebugContext(ctx, "using cached profile", "nickname", nickname)
			r.opts.Observer(nickname, existing.Status)
			return
		}
		if existing.Status == StatusFailed {
			// permanently failed entries are only retried under an
			// explicit force refresh
			slog.DebugContext(ctx, "skipping permanently failed profile", "nickname", nickname)
			r.opts.Observer(nickname, existing.Status)
			return
		}
	}

	doc, attempts, err := r.fetchWithRetry(ctx, nickname)
	if err != nil {
		if ctx.Err() != nil || errors.Is(err, context.Canceled) {
			// aborted by shutdown, not a verdict on the player; the
			// prior entry stays as-is so the next run refetches
			slog.DebugContext(ctx, "fetch aborted by shutdown", "nickname", nickname)
			return
		}
		class := failureClass(err)
		r.opts.Stats.LogFailure(class)
		slog.WarnContext(
			ctx, "profile fetch failed",
			"nickname", nickname,
			"attempts", attempts,
			"class", class,
			"err", err,
		)
		r.recordFailure(nickname, attempts)
		r.opts.Observer(nickname, StatusFailed)
		return
	}

	record, err := chichi.ParseProfile(doc)
	if err != nil {
		// retrying an unparseable document gains nothing
		r.opts.Stats.LogFailure("unparseable")
		slog.WarnContext(ctx, "profile extraction failed", "nickname", nickname, "err", err)
		r.recordFailure(nickname, attempts)
		r.opts.Observer(nickname, StatusFailed)
		return
	}

	status := StatusSuccess
	if !record.Complete() {
		status = StatusPartial
		slog.WarnContext(
			ctx, "profile is missing required fields",
			"nickname", nickname,
			"missing", record.MissingFields(),
		)
	}

	r.opts.Cache.Upsert(nickname, CacheEntry{
		Record:    record,
		Complete:  record.Complete(),
		Status:    status,
		Attempts:  attempts,
		FetchedAt: timezone.Now(),
	})
	r.opts.Stats.LogSuccess()
	r.opts.Observer(nickname, status)
}

// FetchError reports a fetch that exhausted its retry budget or hit a
// permanent failure.
type FetchError struct {
	Nickname string
	Attempts int
	LastErr  error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf(
		"failed to fetch profile of %s after %d attempts: %s",
		e.Nickname, e.Attempts, e.LastErr,
	)
}

func (e *FetchError) Unwrap() error {
	return e.LastErr
}

func (r *Runner) fetchWithRetry(ctx context.Context, nickname string) (string, int, error) {
	policy := r.opts.Retry
	policy.OnRetry = func(attempt int, delay time.Duration, err error) {
		r.opts.Stats.LogRetry()
	}

	var doc string
	attempts, err := policy.Do(ctx, func() error {
		r.opts.Stats.LogRequest()
		var ferr error
		doc, ferr = r.opts.Source.FetchProfile(ctx, nickname)
		return ferr
	})
	if err != nil {
		return "", attempts, &FetchError{Nickname: nickname, Attempts: attempts, LastErr: err}
	}
	return doc, attempts, nil
}

// recordFailure degrades the entry's status while keeping whatever
// fields a previous run managed to collect.
func (r *Runner) recordFailure(nickname string, attempts int) {
	entry, _ := r.opts.Cache.Get(nickname)
	entry.Status = StatusFailed
	entry.Attempts = attempts
	entry.FetchedAt = timezone.Now()
	r.opts.Cache.Upsert(nickname, entry)
}

func failureClass(err error) string {
	switch {
	case errors.Is(err, chichi.ErrPlayerNotFound):
		return "not_found"
	default:
		var statusErr *chichi.StatusError
		if errors.As(err, &statusErr) {
			return "http_status"
		}
		return "transport"
	}
}
