package services

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

// BookingUpdatesChannel carries every booking event as JSON.
const BookingUpdatesChannel = "booking:updates"

// NewRedisClient parses redisURL and checks the connection.
func NewRedisClient(ctx context.Context, redisURL string) (*redis.Client, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}

	client := redis.NewClient(opt)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	return client, nil
}

// RedisPublisher publishes booking events for other instances and workers.
type RedisPublisher struct {
	client  *redis.Client
	channel string
}

func NewRedisPublisher(client *redis.Client) *RedisPublisher {
	return &RedisPublisher{client: client, channel: BookingUpdatesChannel}
}

func (p *RedisPublisher) NotifyBooking(ctx context.Context, event BookingEvent) error {
	data, err := json.Marshal(event)
	if err != nil {
		return err
	}
	if err := p.client.Publish(ctx, p.channel, data).Err(); err != nil {
		return fmt.Errorf("publish %s: %w", p.channel, err)
	}
	return nil
}

// RelayBookingEvents feeds events published by any instance into the local
// notifier, normally the websocket hub. It returns when ctx is done.
func RelayBookingEvents(ctx context.Context, client *redis.Client, local BookingNotifier, log logrus.FieldLogger) {
	sub := client.Subscribe(ctx, BookingUpdatesChannel)
	defer sub.Close()

	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			var event BookingEvent
			if err := json.Unmarshal([]byte(msg.Payload), &event); err != nil {
				log.WithError(err).Warn("dropping malformed booking event")
				continue
			}
			if err := local.NotifyBooking(ctx, event); err != nil {
				log.WithError(err).WithField("bookingId", event.BookingID).Warn("booking event relay failed")
			}
		}
	}
}
