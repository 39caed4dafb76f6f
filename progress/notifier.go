package progress

import (
	"context"
	"time"
)

// Award is published whenever message progress converts into a point
type Award struct {
	UserID      int64     `json:"userId"`
	ChannelID   string    `json:"channelId"`
	TotalPoints int       `json:"totalPoints"`
	Threshold   int       `json:"threshold"`
	Timestamp   time.Time `json:"timestamp"`
}

// Notifier is a minimal pub/sub for award events. The front door listens on
// it to post the congratulation message; the ledger mutation has already
// committed by the time an Award is published.
type Notifier struct {
	ch chan Award
}

// NewNotifier creates a notifier with a buffered channel
func NewNotifier(buffer int) *Notifier {
	return &Notifier{
		ch: make(chan Award, buffer),
	}
}

// Send publishes an award (non-blocking with drop on full buffer).
// Dropping only loses the congratulation message, never the point.
func (n *Notifier) Send(award Award) {
	select {
	case n.ch <- award:
	default:
	}
}

// Listen returns a channel plus a cancel function to stop listening
func (n *Notifier) Listen(ctx context.Context) (<-chan Award, context.CancelFunc) {
	listenerCtx, cancel := context.WithCancel(ctx)
	out := make(chan Award, cap(n.ch))

	go func() {
		defer close(out)
		for {
			select {
			case <-listenerCtx.Done():
				return
			case award, ok := <-n.ch:
				if !ok {
					return
				}
				select {
				case out <- award:
				case <-listenerCtx.Done():
					return
				}
			}
		}
	}()

	return out, cancel
}
