// Package paging drains paginated listing endpoints. It concatenates
// pages until a short page signals end-of-data, sleeps briefly between
// pages to stay under external rate limits, and wraps every page fetch in
// a bounded retry with linearly increasing backoff.
package paging

import (
	"context"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/teamboard/teamboard/internal/logging"
)

// Retry defaults. Three attempts per page with delays of baseDelay,
// 2*baseDelay between them.
const (
	DefaultMaxAttempts = 3
	DefaultBaseDelay   = 500 * time.Millisecond
	DefaultPageDelay   = 100 * time.Millisecond
)

// PageFunc fetches one page, numbered from 1, and returns its items.
type PageFunc[T any] func(page int) ([]T, error)

// Fetcher drains a paginated source. The zero value is not usable; use
// NewFetcher for sensible defaults.
type Fetcher[T any] struct {
	// PageSize is the expected full-page length; a shorter page ends
	// the fetch.
	PageSize int

	// PageDelay is the courtesy delay between successful page fetches.
	// Not adaptive: a fixed sleep, tunable but not tied to rate-limit
	// response headers.
	PageDelay time.Duration

	// BaseDelay scales the linear retry backoff (attempt * BaseDelay).
	BaseDelay time.Duration

	// MaxAttempts bounds tries per page, including the first.
	MaxAttempts int

	// Permanent, when set, marks errors that must not be retried
	// (permission/not-found class). Retry stops immediately for them.
	Permanent func(error) bool
}

// NewFetcher returns a Fetcher with default retry timing.
func NewFetcher[T any](pageSize int) *Fetcher[T] {
	return &Fetcher[T]{
		PageSize:    pageSize,
		PageDelay:   DefaultPageDelay,
		BaseDelay:   DefaultBaseDelay,
		MaxAttempts: DefaultMaxAttempts,
	}
}

// FetchAll calls fetch for page 1, 2, ... until a page comes back shorter
// than PageSize (including empty), concatenating results. When a page
// fails past its retry budget, FetchAll returns everything collected so
// far alongside the error: one unreachable source should degrade the
// run, not abort it, so callers can keep the partial result.
func (f *Fetcher[T]) FetchAll(ctx context.Context, fetch PageFunc[T]) ([]T, error) {
	var all []T

	for page := 1; ; page++ {
		items, err := f.fetchPage(ctx, fetch, page)
		if err != nil {
			return all, fmt.Errorf("page %d: %w", page, err)
		}

		all = append(all, items...)

		if len(items) < f.PageSize {
			return all, nil
		}

		if err := f.courtesyDelay(ctx); err != nil {
			return all, err
		}
	}
}

// fetchPage runs one page fetch under the retry policy. BackOff
// instances are stateful, so a fresh one is built per page.
func (f *Fetcher[T]) fetchPage(ctx context.Context, fetch PageFunc[T], page int) ([]T, error) {
	var bo backoff.BackOff = &linearBackOff{base: f.BaseDelay}
	if f.MaxAttempts > 0 {
		bo = backoff.WithMaxRetries(bo, uint64(f.MaxAttempts-1))
	}
	bo = backoff.WithContext(bo, ctx)

	var items []T
	attempt := 0
	err := backoff.Retry(func() error {
		attempt++
		got, ferr := fetch(page)
		if ferr != nil {
			if f.Permanent != nil && f.Permanent(ferr) {
				return backoff.Permanent(ferr) // Non-retryable - stop immediately
			}
			logging.Warn("page fetch failed, will retry",
				"page", page, "attempt", attempt, "error", ferr)
			return ferr
		}
		items = got
		return nil
	}, bo)
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (f *Fetcher[T]) courtesyDelay(ctx context.Context) error {
	if f.PageDelay <= 0 {
		return nil
	}
	timer := time.NewTimer(f.PageDelay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// linearBackOff waits attempt*base, per retry attempt.
type linearBackOff struct {
	base    time.Duration
	attempt int
}

func (b *linearBackOff) NextBackOff() time.Duration {
	b.attempt++
	return time.Duration(b.attempt) * b.base
}

func (b *linearBackOff) Reset() {
	b.attempt = 0
}
