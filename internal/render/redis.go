package render

import (
	"context"
	"time"

	"github.com/go-redis/redis/v8"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// PeersChannel is the pub/sub channel render commands are published on.
const PeersChannel = "channel:peers"

var tracer = otel.Tracer("render")

// Publisher is the subset of *redis.Client used by RedisSink.
type Publisher interface {
	Publish(ctx context.Context, channel string, message interface{}) *redis.IntCmd
}

// RedisSink publishes commands on a Redis channel.
type RedisSink struct {
	pub     Publisher
	channel string
}

// NewRedis returns a renderer publishing to PeersChannel through pub.
func NewRedis(pub Publisher, timeout time.Duration) *Remote {
	return NewRemote(&RedisSink{pub: pub, channel: PeersChannel}, timeout)
}

func (s *RedisSink) Send(ctx context.Context, cmd Command) error {
	ctx, span := tracer.Start(ctx, "render.redis.publish", trace.WithAttributes(
		attribute.String("redis.channel", s.channel),
		attribute.String("render.op", string(cmd.Op)),
		attribute.String("player.id", cmd.ID),
	))
	defer span.End()

	payload, err := encode(cmd)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to encode render command")
		return err
	}
	if err := s.pub.Publish(ctx, s.channel, payload).Err(); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to publish render command")
		return err
	}
	return nil
}
