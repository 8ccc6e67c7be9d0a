package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const rideUpdatesChannel = "ride:updates"

// NewRedisClient parses a redis:// URL and checks the connection.
func NewRedisClient(ctx context.Context, redisURL string) (*redis.Client, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}

	client := redis.NewClient(opt)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	return client, nil
}

// RideUpdatePublisher publishes committed ride changes on the
// ride:updates channel for other instances and consumers.
type RideUpdatePublisher struct {
	client *redis.Client
}

func NewRideUpdatePublisher(client *redis.Client) *RideUpdatePublisher {
	return &RideUpdatePublisher{client: client}
}

type rideUpdate struct {
	RideID     uint   `json:"rideId"`
	Kind       string `json:"kind"`
	Status     string `json:"status"`
	Seats      int    `json:"seatsAvailable"`
	Recipients []uint `json:"recipients,omitempty"`
	Timestamp  int64  `json:"timestamp"`
}

func rideUpdatePayload(notice RideNotice, at time.Time) ([]byte, error) {
	recipients := make([]uint, 0, len(notice.Recipients))
	for _, r := range notice.Recipients {
		recipients = append(recipients, r.UserID)
	}
	return json.Marshal(rideUpdate{
		RideID:     notice.Ride.ID,
		Kind:       string(notice.Kind),
		Status:     string(notice.Ride.Status),
		Seats:      notice.Ride.SeatsAvailable,
		Recipients: recipients,
		Timestamp:  at.Unix(),
	})
}

func (p *RideUpdatePublisher) PublishRideUpdate(ctx context.Context, notice RideNotice) error {
	data, err := rideUpdatePayload(notice, time.Now())
	if err != nil {
		return err
	}
	return p.client.Publish(ctx, rideUpdatesChannel, data).Err()
}

// RedisCache stores JSON values with an expiry.
type RedisCache struct {
	client *redis.Client
}

func NewRedisCache(client *redis.Client) *RedisCache {
	return &RedisCache{client: client}
}

// Get decodes the cached value into dest; found is false on a miss.
func (c *RedisCache) Get(ctx context.Context, key string, dest interface{}) (bool, error) {
	data, err := c.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := json.Unmarshal(data, dest); err != nil {
		return false, err
	}
	return true, nil
}

func (c *RedisCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, key, data, ttl).Err()
}
