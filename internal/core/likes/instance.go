package likes

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"sync"
	"time"

	"Morsel/internal/core/posts"
)

// DefaultRequestTimeout bounds each remote call of an instance
const DefaultRequestTimeout = 10 * time.Second

// LoadingText is the displayed count while the authoritative read is pending
const LoadingText = "Loading"

// FailedCount is the displayed count when the authoritative read failed
const FailedCount = -1

// MountParams describes the post being rendered and the collaborators of its instance
type MountParams struct {
	Identity       Identity
	Remote         Remote
	Observer       Observer     // Optional
	Logger         *slog.Logger // Optional
	PostKey        string       // Composite "<collection>/<id>" key
	InitialCount   int          // Count embedded in the post at render time
	RequestTimeout time.Duration
}

// Instance is the like state of one rendered post.
// All fields are guarded by mu, which plays the part of the UI event loop: user presses and
// request completions are applied one at a time, in whatever order they arrive.
type Instance struct {
	mu       sync.Mutex
	wg       sync.WaitGroup
	ctx      context.Context
	identity Identity
	remote   Remote
	observer Observer
	logger   *slog.Logger
	fetcher  *CountFetcher
	postKey  string
	postID   string
	timeout  time.Duration
	guard    FirstInvocationGuard
	state    OptimisticState
	lastSent <-chan struct{} // sent signal of the most recently issued request
	inFlight int
	mounted  bool
}

// Mount creates the instance for a rendered post.
// The seeded flag is committed through the toggle reaction, which the armed guard swallows, so
// mounting never sends a like request. The authoritative count read starts in the background.
func Mount(ctx context.Context, p MountParams) (*Instance, error) {
	if p.Identity == nil || p.Remote == nil {
		return nil, ErrMissingCollaborator
	}

	_, postID, err := posts.SplitKey(p.PostKey)
	if err != nil {
		return nil, fmt.Errorf("failed to mount %q: %w", p.PostKey, err)
	}

	if p.Observer == nil {
		p.Observer = noopObserver{}
	}
	if p.Logger == nil {
		p.Logger = slog.Default()
	}
	if p.RequestTimeout <= 0 {
		p.RequestTimeout = DefaultRequestTimeout
	}

	i := &Instance{
		ctx:      context.WithoutCancel(ctx),
		identity: p.Identity,
		remote:   p.Remote,
		observer: p.Observer,
		logger:   p.Logger.With("post_id", postID),
		postKey:  p.PostKey,
		postID:   postID,
		timeout:  p.RequestTimeout,
		guard:    NewFirstInvocationGuard(),
		state:    newOptimisticState(p.Identity.HasLiked(p.PostKey), p.InitialCount),
		mounted:  true,
	}

	i.fetcher = newCountFetcher(fetcherConfig{
		mu:       &i.mu,
		wg:       &i.wg,
		remote:   p.Remote,
		identity: p.Identity,
		observer: p.Observer,
		logger:   i.logger,
		onSettle: i.state.supersede,
		postID:   postID,
		timeout:  p.RequestTimeout,
	})

	i.mu.Lock()
	i.react(i.state.Liked())
	i.mu.Unlock()

	i.fetcher.Start(ctx)

	i.logger.Debug("post like state mounted",
		"liked", i.state.Liked(),
		"initial_count", p.InitialCount)

	return i, nil
}

// Toggle flips the flag and runs the toggle reaction right after the flip commits.
// It returns the new flag value. After Unmount it does nothing and returns the current value.
func (i *Instance) Toggle() bool {
	i.mu.Lock()
	defer i.mu.Unlock()

	if !i.mounted {
		i.logger.Warn("toggle on unmounted post ignored")
		return i.state.Liked()
	}

	liked := i.state.Toggle()
	i.react(liked)
	return liked
}

// react is the toggle reaction. Caller holds mu.
func (i *Instance) react(liked bool) {
	if !i.guard.Pass() {
		i.logger.Debug("first toggle reaction suppressed", "liked", liked)
		return
	}

	action := ActionFor(liked)
	req := ChangeLikeRequest{
		UserID: i.identity.UserID(),
		PostID: i.postID,
		Action: action,
	}

	// Requests start in press order; only their completions are unordered
	ticket := &sendTicket{prev: i.lastSent, sent: make(chan struct{})}
	i.lastSent = ticket.sent

	i.inFlight++
	i.observer.RequestIssued(action)
	i.logger.Debug("sending like toggle", "action", action)

	i.wg.Add(1)
	go func() {
		defer i.wg.Done()
		ticket.waitTurn()
		err := i.send(ticket, req)
		ticket.markSent()
		i.settle(action, err)
	}()
}

func (i *Instance) send(ticket *sendTicket, req ChangeLikeRequest) error {
	ctx, cancel := context.WithTimeout(ticket.context(i.ctx), i.timeout)
	defer cancel()

	token, err := i.identity.Token(ctx)
	if err != nil {
		return fmt.Errorf("failed to get auth token: %w", err)
	}

	return i.remote.ChangeLike(ctx, req, token)
}

func (i *Instance) settle(action Action, err error) {
	i.mu.Lock()
	defer i.mu.Unlock()

	i.inFlight--

	if err != nil {
		err = fmt.Errorf("%w: %s post %s: %w", ErrMutation, action, i.postID, err)
		i.logger.Error("like toggle request failed",
			"action", action,
			"error", err)
		i.observer.RequestSettled(action, err)
		return
	}

	i.state.adjust(action)
	i.observer.RequestSettled(action, nil)
	i.logger.Debug("like toggle confirmed",
		"action", action,
		"local_count", i.state.LocalCount())
}

// Invalidate re-reads the authoritative count
func (i *Instance) Invalidate(ctx context.Context) {
	i.fetcher.Invalidate(ctx)
}

// Unmount ends the instance's lifetime. In-flight requests are not aborted.
func (i *Instance) Unmount() {
	i.mu.Lock()
	defer i.mu.Unlock()

	if !i.mounted {
		return
	}
	i.mounted = false
	i.logger.Debug("post like state unmounted", "in_flight", i.inFlight)
}

// Wait blocks until every request and read issued so far has settled
func (i *Instance) Wait() {
	i.wg.Wait()
}

// Liked reports the current flag
func (i *Instance) Liked() bool {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.state.Liked()
}

// LocalCount reports the locally maintained count, ignoring the fetch state
func (i *Instance) LocalCount() int {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.state.LocalCount()
}

// InFlight reports the number of unsettled like requests
func (i *Instance) InFlight() int {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.inFlight
}

// GuardArmed reports whether the next toggle reaction would be swallowed
func (i *Instance) GuardArmed() bool {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.guard.Armed()
}

// PostKey returns the composite key the instance was mounted with
func (i *Instance) PostKey() string {
	return i.postKey
}

// PostID returns the canonical id used in remote calls
func (i *Instance) PostID() string {
	return i.postID
}

// Snapshot is a consistent view of an instance for rendering
type Snapshot struct {
	FetchState FetchState
	Liked      bool
	Count      int // FailedCount when FetchState is FetchFailed
	InFlight   int // unsettled like requests
}

// Snapshot reads flag, count and fetch state under one lock
func (i *Instance) Snapshot() Snapshot {
	i.mu.Lock()
	defer i.mu.Unlock()

	s := Snapshot{
		FetchState: i.fetcher.stateLocked(),
		Liked:      i.state.Liked(),
		Count:      i.state.LocalCount(),
		InFlight:   i.inFlight,
	}
	if s.FetchState == FetchFailed {
		s.Count = FailedCount
	}
	return s
}

// CountText is what the count label shows: "Loading", "-1" or the count
func (s Snapshot) CountText() string {
	if s.FetchState == FetchPending {
		return LoadingText
	}
	return strconv.Itoa(s.Count)
}
