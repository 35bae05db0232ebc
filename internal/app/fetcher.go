package app

import (
	"context"
	"errors"
	"time"

	"github.com/charmbracelet/log"

	"github.com/five82/folio/internal/debounce"
	"github.com/five82/folio/internal/gutendex"
	"github.com/five82/folio/internal/logging"
	"github.com/five82/folio/internal/state"
)

const (
	defaultDebounce   = 500 * time.Millisecond
	defaultRetryDelay = 2 * time.Second
	maxBackoff        = 30 * time.Second
)

// Fetcher runs listing requests against the catalog in the background and
// publishes the results through a state.Store.
type Fetcher struct {
	catalog gutendex.Catalog
	store   *state.Store
	logger  *log.Logger

	requests chan state.Request
	done     chan outcome
	updates  chan struct{}
	search   *debounce.Debouncer[state.Request]

	retryBase time.Duration
}

// FetcherOptions tune a Fetcher.
type FetcherOptions struct {
	Debounce   time.Duration // zero uses 500ms; negative disables
	RetryDelay time.Duration // base delay before retrying a failed listing
	Logger     *log.Logger
}

type outcome struct {
	seq uint64
	err error
}

// NewFetcher builds a Fetcher. Call Start before submitting requests.
func NewFetcher(catalog gutendex.Catalog, store *state.Store, opts FetcherOptions) *Fetcher {
	delay := opts.Debounce
	if delay == 0 {
		delay = defaultDebounce
	}
	retry := opts.RetryDelay
	if retry <= 0 {
		retry = defaultRetryDelay
	}
	logger := opts.Logger
	if logger == nil {
		logger = logging.Discard()
	}

	f := &Fetcher{
		catalog:   catalog,
		store:     store,
		logger:    logger,
		requests:  make(chan state.Request, 1),
		done:      make(chan outcome, 1),
		updates:   make(chan struct{}, 1),
		retryBase: retry,
	}
	f.search = debounce.New(delay, f.enqueue)
	return f
}

// Submit schedules req immediately, superseding any pending debounced search.
func (f *Fetcher) Submit(req state.Request) {
	f.search.Cancel()
	f.enqueue(req)
}

// SubmitDebounced schedules req once input has been quiet for the debounce
// delay. Only the last request of a burst is sent.
func (f *Fetcher) SubmitDebounced(req state.Request) {
	f.search.Call(req)
}

// Updates signals whenever the store changed. Signals coalesce.
func (f *Fetcher) Updates() <-chan struct{} {
	return f.updates
}

// enqueue hands req to the loop, replacing a request that has not been
// picked up yet.
func (f *Fetcher) enqueue(req state.Request) {
	for {
		select {
		case f.requests <- req:
			return
		default:
		}
		select {
		case <-f.requests:
		default:
		}
	}
}

// Start launches the fetch loop. It returns immediately; the loop exits when
// ctx is cancelled.
func (f *Fetcher) Start(ctx context.Context) {
	go f.run(ctx)
}

func (f *Fetcher) run(ctx context.Context) {
	var (
		cancelInflight context.CancelFunc = func() {}
		current        uint64
		last           state.Request
		retry          *time.Timer
		retryC         <-chan time.Time
	)
	stopRetry := func() {
		if retry != nil {
			retry.Stop()
			retry, retryC = nil, nil
		}
	}
	defer func() {
		f.search.Cancel()
		stopRetry()
		cancelInflight()
	}()

	launch := func(req state.Request) {
		cancelInflight()
		var reqCtx context.Context
		reqCtx, cancelInflight = context.WithCancel(ctx)
		last = req
		current = f.store.Begin(req)
		f.notify()
		go f.execute(reqCtx, current, req)
	}

	for {
		select {
		case <-ctx.Done():
			return
		case req := <-f.requests:
			stopRetry()
			launch(req)
		case res := <-f.done:
			if res.seq != current || !retryable(res.err) {
				continue
			}
			failures := f.store.Snapshot().ConsecutiveFailures
			delay := calculateBackoff(failures, f.retryBase)
			f.logger.Warn("listing failed, retrying", "source", last.Source, "page", last.PageNumber(), "in", delay, "err", res.err)
			stopRetry()
			retry = time.NewTimer(delay)
			retryC = retry.C
		case <-retryC:
			retry, retryC = nil, nil
			launch(last)
		}
	}
}

func (f *Fetcher) execute(ctx context.Context, seq uint64, req state.Request) {
	started := time.Now()
	list, err := f.fetch(ctx, req)
	if errors.Is(err, context.Canceled) {
		return
	}
	if f.store.Complete(seq, list, err) {
		if err != nil {
			f.logger.Debug("listing failed", "source", req.Source, "page", req.PageNumber(), "err", err)
		} else {
			f.logger.Info("listing loaded", "source", req.Source, "page", req.PageNumber(), "count", list.Count, "elapsed", time.Since(started).Round(time.Millisecond))
		}
		f.notify()
	}
	select {
	case f.done <- outcome{seq: seq, err: err}:
	case <-ctx.Done():
	}
}

func (f *Fetcher) fetch(ctx context.Context, req state.Request) (*gutendex.BookList, error) {
	if req.Cursor != "" {
		return f.catalog.FetchPage(ctx, req.Cursor)
	}
	if req.Source == state.SourceWishlist && len(req.Query.IDs) == 0 {
		return &gutendex.BookList{}, nil
	}
	return f.catalog.ListBooks(ctx, req.Query)
}

func (f *Fetcher) notify() {
	select {
	case f.updates <- struct{}{}:
	default:
	}
}

func retryable(err error) bool {
	return err != nil &&
		!errors.Is(err, context.Canceled) &&
		!errors.Is(err, gutendex.ErrNotFound) &&
		!errors.Is(err, gutendex.ErrForeignCursor)
}

// calculateBackoff doubles the base interval per consecutive failure,
// capped at maxBackoff.
func calculateBackoff(failures int, base time.Duration) time.Duration {
	if failures <= 0 {
		return base
	}
	delay := base
	for i := 0; i < failures; i++ {
		delay *= 2
		if delay >= maxBackoff {
			return maxBackoff
		}
	}
	return delay
}
