package service

import (
	"context"
	"time"

	"github.com/Skotchmaster/food_api/internal/events"
	"github.com/Skotchmaster/food_api/internal/logging"
	"github.com/Skotchmaster/food_api/internal/metrics"
)

const publishTimeout = 5 * time.Second

// publish hands ev to p. Delivery failures are logged and counted only,
// the caller's write has already been committed.
func publish(ctx context.Context, p events.Publisher, topic, key string, ev events.Event) {
	if p == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
	defer cancel()

	err := p.Publish(ctx, topic, key, ev)
	metrics.IncEvent(topic, err)
	if err != nil {
		logging.FromContext(ctx).Error("publish_failed", "topic", topic, "event", ev.Type, "error", err)
	}
}
