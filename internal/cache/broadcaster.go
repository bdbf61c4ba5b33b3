// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package cache

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// InvalidateChannel is the Valkey pub/sub channel carrying invalidations.
const InvalidateChannel = "categories:invalidate"

// Applier applies an invalidation received from another instance.
type Applier interface {
	Apply(op Operation, id string)
}

type invalidation struct {
	Origin string    `json:"origin"`
	Op     Operation `json:"op"`
	ID     string    `json:"id,omitempty"`
}

// Broadcaster publishes invalidations to Valkey and applies the ones
// published by other instances. Each Broadcaster has a random origin id so
// it can skip its own messages.
type Broadcaster struct {
	client  *redis.Client
	origin  string
	channel string
}

// NewBroadcaster creates a Broadcaster on the default channel.
func NewBroadcaster(client *redis.Client) *Broadcaster {
	return &Broadcaster{
		client:  client,
		origin:  uuid.NewString(),
		channel: InvalidateChannel,
	}
}

// Origin returns the id this instance stamps on its messages.
func (b *Broadcaster) Origin() string { return b.origin }

// Publish sends an invalidation to every subscribed instance.
func (b *Broadcaster) Publish(ctx context.Context, op Operation, id string) error {
	payload, err := json.Marshal(invalidation{Origin: b.origin, Op: op, ID: id})
	if err != nil {
		return fmt.Errorf("encode invalidation: %w", err)
	}
	if err := b.client.Publish(ctx, b.channel, payload).Err(); err != nil {
		return fmt.Errorf("publish invalidation: %w", err)
	}
	return nil
}

// Listen subscribes to the channel and applies foreign invalidations until
// ctx is cancelled. It returns nil on cancellation.
func (b *Broadcaster) Listen(ctx context.Context, a Applier) error {
	sub := b.client.Subscribe(ctx, b.channel)
	defer sub.Close()

	if _, err := sub.Receive(ctx); err != nil {
		if ctx.Err() != nil {
			return nil
		}
		return fmt.Errorf("subscribe %s: %w", b.channel, err)
	}
	slog.Info("listening for cache invalidations", "channel", b.channel, "origin", b.origin)

	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-ch:
			if !ok {
				return nil
			}
			var ev invalidation
			if err := json.Unmarshal([]byte(msg.Payload), &ev); err != nil {
				slog.Warn("invalid cache invalidation message", "error", err)
				continue
			}
			if ev.Origin == b.origin {
				continue
			}
			slog.Debug("applying remote cache invalidation", "op", ev.Op, "id", ev.ID, "origin", ev.Origin)
			a.Apply(ev.Op, ev.ID)
		}
	}
}
