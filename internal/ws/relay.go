package ws

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync/atomic"

	"github.com/taivu9x/bowling-score/internal/domain"
	"github.com/taivu9x/bowling-score/internal/logger"

	redis "github.com/redis/go-redis/v9"
)

const DefaultRelayChannel = "bowling:game_updates"

// RedisRelay fans game updates out to the hubs of every instance through a
// redis pub/sub channel. Each instance publishes on Notify and delivers what
// it receives to its local hub, its own publications included. While Run
// holds no subscription, updates go to the local hub directly.
type RedisRelay struct {
	client     *redis.Client
	hub        *Hub
	channel    string
	log        *slog.Logger
	subscribed atomic.Bool
}

func NewRedisRelay(client *redis.Client, hub *Hub, channel string) *RedisRelay {
	if channel == "" {
		channel = DefaultRelayChannel
	}
	return &RedisRelay{
		client:  client,
		hub:     hub,
		channel: channel,
		log:     logger.Component("ws_relay"),
	}
}

// Subscribed reports whether Run is currently receiving from the channel.
func (r *RedisRelay) Subscribed() bool {
	return r.subscribed.Load()
}

// Notify publishes the update. Observers on this instance are told directly
// when the relay is not subscribed or the publish fails.
func (r *RedisRelay) Notify(ctx context.Context, g domain.Game) {
	local := !r.subscribed.Load()
	if local {
		r.hub.Notify(ctx, g)
	}

	payload, err := json.Marshal(updateFor(g))
	if err != nil {
		r.log.Error("encode update", "error", err)
		return
	}
	if err := r.client.Publish(ctx, r.channel, payload).Err(); err != nil {
		if !local {
			r.log.Warn("publish failed, delivering locally", "game_id", g.GameID, "error", err)
			r.hub.Notify(ctx, g)
		}
		return
	}
	RelayMessages.WithLabelValues("out").Inc()
}

// Run subscribes and forwards updates to the hub until ctx is done.
func (r *RedisRelay) Run(ctx context.Context) error {
	sub := r.client.Subscribe(ctx, r.channel)
	defer sub.Close()

	if _, err := sub.Receive(ctx); err != nil {
		return err
	}
	r.subscribed.Store(true)
	defer r.subscribed.Store(false)
	r.log.Info("relay subscribed", "channel", r.channel)

	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case m, ok := <-ch:
			if !ok {
				return nil
			}
			var u GameUpdatePayload
			if err := json.Unmarshal([]byte(m.Payload), &u); err != nil || u.GameID == "" {
				r.log.Warn("bad relay payload", "payload", m.Payload)
				continue
			}
			RelayMessages.WithLabelValues("in").Inc()
			r.hub.PublishUpdate(u)
		}
	}
}
