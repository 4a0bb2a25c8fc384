package engine

import (
	"context"
	"time"

	"github.com/bamsammich/noteworm/internal/event"
)

// emitEvent delivers a progress event if the channel has room. Progress
// events may be dropped; counters in stats carry the same information.
func emitEvent(ch chan<- event.Event, e event.Event) {
	if ch == nil {
		return
	}
	e.Timestamp = time.Now()
	select {
	case ch <- e:
	default:
	}
}

// sendEvent delivers a per-file decision event, waiting for the consumer.
// Once ctx is done it falls back to a best-effort send so an interrupted
// run never hangs on a stalled presenter.
func sendEvent(ctx context.Context, ch chan<- event.Event, e event.Event) {
	if ch == nil {
		return
	}
	e.Timestamp = time.Now()
	if ctx.Err() != nil {
		select {
		case ch <- e:
		default:
		}
		return
	}
	select {
	case ch <- e:
	case <-ctx.Done():
	}
}
