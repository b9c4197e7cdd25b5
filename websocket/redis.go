package websocket

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

// RelayChannel is the pub/sub channel shared by every process.
const RelayChannel = "broadcast:rooms"

// RedisRelay fans envelopes out across processes over Redis pub/sub.
type RedisRelay struct {
	client  *redis.Client
	channel string
	log     *logrus.Logger
}

func NewRedisRelay(url string, log *logrus.Logger) (*RedisRelay, error) {
	opt, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	client := redis.NewClient(opt)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return &RedisRelay{client: client, channel: RelayChannel, log: log}, nil
}

func (r *RedisRelay) Publish(ctx context.Context, env Envelope) error {
	data, err := json.Marshal(env)
	if err != nil {
		return err
	}
	return r.client.Publish(ctx, r.channel, data).Err()
}

// Run subscribes and hands every envelope to deliver until ctx is done.
func (r *RedisRelay) Run(ctx context.Context, deliver func(Envelope)) error {
	sub := r.client.Subscribe(ctx, r.channel)
	defer sub.Close()

	if _, err := sub.Receive(ctx); err != nil {
		return fmt.Errorf("subscribe %s: %w", r.channel, err)
	}
	r.log.WithField("channel", r.channel).Info("[ws] relay subscribed")

	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-ch:
			if !ok {
				return nil
			}
			var env Envelope
			if err := json.Unmarshal([]byte(msg.Payload), &env); err != nil {
				r.log.WithError(err).Warn("[ws] dropping malformed relay frame")
				continue
			}
			deliver(env)
		}
	}
}

func (r *RedisRelay) Close() error {
	return r.client.Close()
}
