// Package notify carries lifecycle events out of the process. The Redis
// publisher is fire-and-forget: notification channels subscribe to the
// configured topic and the lifecycle never waits on them.
package notify

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/redis/go-redis/v9"

	"lendpeer/internal/domain/event"
)

var _ event.Dispatcher = (*RedisPublisher)(nil)

type RedisPublisher struct {
	rdb     *redis.Client
	channel string
}

func NewRedisPublisher(rdb *redis.Client, channel string) *RedisPublisher {
	return &RedisPublisher{rdb: rdb, channel: channel}
}

// Dispatch publishes the event as JSON. Failures are logged and swallowed:
// a dropped notification must never roll back a state transition.
func (p *RedisPublisher) Dispatch(ctx context.Context, ev event.Event) {
	payload, err := json.Marshal(ev)
	if err != nil {
		log.Printf("notify: marshal %s for %s: %v", ev.Name, ev.AgreementID, err)
		return
	}
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := p.rdb.Publish(ctx, p.channel, payload).Err(); err != nil {
		log.Printf("notify: publish %s for %s: %v", ev.Name, ev.AgreementID, err)
	}
}

// NopDispatcher drops every event. Used when no Redis is configured.
type NopDispatcher struct{}

func (NopDispatcher) Dispatch(context.Context, event.Event) {}
