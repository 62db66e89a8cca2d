package queue

import (
	"context"
	"time"

	"transcode-worker/internal/logging"
)

// receiveErrorBackoff is how long a poller sleeps after a failed receive
// before trying again, so a broken queue does not spin the loop hot.
const receiveErrorBackoff = 5 * time.Second

// Handler processes the bodies of one received delivery. A nil return
// acknowledges the messages; an error leaves them on the queue for
// redelivery after the visibility timeout.
type Handler func(ctx context.Context, bodies []string) error

// Run polls the queue until ctx is canceled, passing each delivery to the
// handler. It is safe to run multiple Run loops on the same Consumer.
func (c *Consumer) Run(ctx context.Context, handler Handler) {
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		messages, err := c.Receive(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			logging.Error("Queue: receive failed: %v", err)
			select {
			case <-ctx.Done():
				return
			case <-time.After(receiveErrorBackoff):
			}
			continue
		}
		if len(messages) == 0 {
			continue
		}

		bodies := make([]string, len(messages))
		for i, m := range messages {
			bodies[i] = m.Body
		}

		if err := handler(ctx, bodies); err != nil {
			logging.Warn("Queue: leaving %d message(s) for redelivery: %v", len(messages), err)
			continue
		}

		if err := c.Delete(ctx, messages); err != nil {
			logging.Warn("Queue: acknowledge failed, duplicates possible: %v", err)
		}
	}
}
