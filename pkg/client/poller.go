package client

import (
	"context"
	"time"

	"go.uber.org/zap"

	"attribution-console/prometheus"
)

// AlertPoller refreshes a NotificationCenter from the platform at a fixed
// interval. Poll failures are logged and counted, never fatal; cancelling the
// context stops the poller cleanly so nothing updates state after teardown.
type AlertPoller struct {
	client   *Client
	center   *NotificationCenter
	interval time.Duration
	log      *zap.Logger
}

// NewAlertPoller creates a poller feeding the given center
func NewAlertPoller(c *Client, center *NotificationCenter, interval time.Duration, log *zap.Logger) *AlertPoller {
	if log == nil {
		log = zap.NewNop()
	}
	if interval <= 0 {
		interval = 30 * time.Second
	}
	return &AlertPoller{
		client:   c,
		center:   center,
		interval: interval,
		log:      log,
	}
}

// Run polls until the context is cancelled. The first poll happens
// immediately so the center is populated without waiting a full interval.
func (p *AlertPoller) Run(ctx context.Context) {
	p.pollOnce(ctx)

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			p.log.Debug("alert poller stopped")
			return
		case <-ticker.C:
			p.pollOnce(ctx)
		}
	}
}

func (p *AlertPoller) pollOnce(ctx context.Context) {
	alerts, err := p.client.FetchAlerts(ctx)
	if err != nil {
		prometheus.RecordPollCycle("error")
		p.log.Warn("alert poll failed", zap.Error(err))
		return
	}

	p.center.Load(alerts)
	prometheus.RecordPollCycle("ok")
	p.log.Debug("alerts refreshed",
		zap.Int("count", len(alerts)),
		zap.Int("unread", p.center.UnreadCount()))
}
