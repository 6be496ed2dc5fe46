package client

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// DefaultPollInterval is how often the admin layout refreshes the unread badge
const DefaultPollInterval = 30 * time.Second

// PollUnreadCount calls fn with the unread count right away and then on
// every tick until ctx ends. Failed polls are logged and skipped; there is no
// retry between ticks.
func (c *Client) PollUnreadCount(ctx context.Context, interval time.Duration, fn func(count int64)) {
	if interval <= 0 {
		interval = DefaultPollInterval
	}

	poll := func() {
		count, err := c.GetUnreadCount(ctx)
		if err != nil {
			if ctx.Err() == nil {
				c.log.Warn("Unread count poll failed", zap.Error(err))
			}
			return
		}
		fn(count)
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	poll()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			poll()
		}
	}
}
