package likes

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// sequencedRemote returns a different count per read and holds each read until released
type sequencedRemote struct {
	mu      sync.Mutex
	gates   []chan int
	started chan struct{}
}

func (s *sequencedRemote) GetLikeCount(ctx context.Context, postID string, token string) (int, error) {
	gate := make(chan int, 1)
	s.mu.Lock()
	s.gates = append(s.gates, gate)
	s.mu.Unlock()
	s.started <- struct{}{}
	return <-gate, nil
}

func (s *sequencedRemote) ChangeLike(ctx context.Context, req ChangeLikeRequest, token string) error {
	return nil
}

func TestCountFetcher_DropsSupersededRead(t *testing.T) {
	remote := &sequencedRemote{started: make(chan struct{}, 2)}
	var settled []int
	f := newCountFetcher(fetcherConfig{
		remote:   remote,
		identity: newIdentity(),
		postID:   "42",
		onSettle: func(count int) { settled = append(settled, count) },
	})

	f.Start(context.Background())
	<-remote.started
	f.Invalidate(context.Background())
	<-remote.started

	// The newer read settles first, then the stale one
	remote.gates[1] <- 20
	remote.gates[0] <- 10
	f.wg.Wait()

	state, count, err := f.State()
	require.NoError(t, err)
	assert.Equal(t, FetchSucceeded, state)
	assert.Equal(t, 20, count)
	assert.Equal(t, []int{20}, settled)
}

func TestCountFetcher_RejectsNegativeCount(t *testing.T) {
	remote := &gatedRemote{count: -3}
	f := newCountFetcher(fetcherConfig{
		remote:   remote,
		identity: newIdentity(),
		postID:   "42",
	})

	f.Start(context.Background())
	f.wg.Wait()

	state, _, err := f.State()
	assert.Equal(t, FetchFailed, state)
	assert.ErrorIs(t, err, ErrFetch)
}
