package likes

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

// FetchState is the state of the authoritative count read
type FetchState int

const (
	FetchPending   FetchState = iota // Read issued, not settled
	FetchFailed                      // Read failed; display the -1 sentinel
	FetchSucceeded                   // Read returned a count
)

func (s FetchState) String() string {
	switch s {
	case FetchPending:
		return "pending"
	case FetchFailed:
		return "failed"
	case FetchSucceeded:
		return "succeeded"
	default:
		return fmt.Sprintf("FetchState(%d)", int(s))
	}
}

// CountFetcher reads the authoritative like count of one post.
// Failures never reach the caller; they are kept as FetchFailed for display.
type CountFetcher struct {
	mu       sync.Locker
	wg       *sync.WaitGroup
	remote   Remote
	identity Identity
	observer Observer
	logger   *slog.Logger
	onSettle func(count int) // Called with mu held, on success only
	postID   string
	timeout  time.Duration
	err      error
	fetchID  uint64 // Completions of superseded reads are dropped
	count    int
	state    FetchState
}

type fetcherConfig struct {
	mu       sync.Locker
	wg       *sync.WaitGroup
	remote   Remote
	identity Identity
	observer Observer
	logger   *slog.Logger
	onSettle func(count int)
	postID   string
	timeout  time.Duration
}

func newCountFetcher(cfg fetcherConfig) *CountFetcher {
	if cfg.mu == nil {
		cfg.mu = &sync.Mutex{}
	}
	if cfg.wg == nil {
		cfg.wg = &sync.WaitGroup{}
	}
	if cfg.observer == nil {
		cfg.observer = noopObserver{}
	}
	if cfg.logger == nil {
		cfg.logger = slog.Default()
	}
	return &CountFetcher{
		mu:       cfg.mu,
		wg:       cfg.wg,
		remote:   cfg.remote,
		identity: cfg.identity,
		observer: cfg.observer,
		logger:   cfg.logger,
		onSettle: cfg.onSettle,
		postID:   cfg.postID,
		timeout:  cfg.timeout,
		state:    FetchPending,
	}
}

// Start issues a read in the background. The caller's cancellation does not abort it.
func (f *CountFetcher) Start(ctx context.Context) {
	f.mu.Lock()
	f.fetchID++
	id := f.fetchID
	f.state = FetchPending
	f.err = nil
	f.mu.Unlock()

	ctx = context.WithoutCancel(ctx)

	f.wg.Add(1)
	go func() {
		defer f.wg.Done()
		count, err := f.read(ctx)
		f.settle(id, count, err)
	}()
}

// Invalidate discards the current result and reads again
func (f *CountFetcher) Invalidate(ctx context.Context) {
	f.Start(ctx)
}

// State returns the current state, the fetched count and the failure, if any
func (f *CountFetcher) State() (FetchState, int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state, f.count, f.err
}

// stateLocked is State for callers already holding mu
func (f *CountFetcher) stateLocked() FetchState {
	return f.state
}

func (f *CountFetcher) read(ctx context.Context) (int, error) {
	if f.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, f.timeout)
		defer cancel()
	}

	token, err := f.identity.Token(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to get auth token: %w", err)
	}

	count, err := f.remote.GetLikeCount(ctx, f.postID, token)
	if err != nil {
		return 0, err
	}
	if count < 0 {
		return 0, fmt.Errorf("remote returned negative like count %d", count)
	}
	return count, nil
}

func (f *CountFetcher) settle(id uint64, count int, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if id != f.fetchID {
		f.logger.Debug("dropping superseded like count read", "fetch_id", id)
		return
	}

	if err != nil {
		f.state = FetchFailed
		f.err = fmt.Errorf("%w: post %s: %w", ErrFetch, f.postID, err)
		f.logger.Warn("failed to fetch like count", "error", err)
		f.observer.FetchSettled(f.err)
		return
	}

	f.state = FetchSucceeded
	f.count = count
	f.observer.FetchSettled(nil)
	if f.onSettle != nil {
		f.onSettle(count)
	}
}
