package likes

import (
	"context"
	"sync"
)

type sentKey struct{}

// MarkSent reports that the like request carried by ctx has been handed to the transport.
// Remotes call it from ChangeLike once the request is on its way. The next request of the same
// instance starts only after that, so requests reach the posts API in press order while their
// responses may still come back in any order. A remote that never calls MarkSent releases the
// next request when ChangeLike returns.
func MarkSent(ctx context.Context) {
	if mark, ok := ctx.Value(sentKey{}).(func()); ok {
		mark()
	}
}

// sendTicket orders the start of one request after its predecessor's
type sendTicket struct {
	prev <-chan struct{}
	sent chan struct{}
	once sync.Once
}

// markSent releases the next request. Safe to call more than once.
func (t *sendTicket) markSent() {
	t.once.Do(func() { close(t.sent) })
}

// waitTurn blocks until the previous request has been sent
func (t *sendTicket) waitTurn() {
	if t.prev != nil {
		<-t.prev
	}
}

func (t *sendTicket) context(ctx context.Context) context.Context {
	return context.WithValue(ctx, sentKey{}, t.markSent)
}
