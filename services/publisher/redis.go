package publisher

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"avasile/pricetracker/config"
	"avasile/pricetracker/internal/scraper"
	"avasile/pricetracker/logger"
)

// RedisPublisher publishes price events to a capped Redis stream
type RedisPublisher struct {
	client *redis.Client
	stream string
	maxLen int64
	log    *logger.Logger
}

// NewRedisPublisher connects to Redis and verifies the connection
func NewRedisPublisher(ctx context.Context, cfg *config.Config) (*RedisPublisher, error) {
	client := redis.NewClient(&redis.Options{
		Addr: cfg.RedisAddr,
		DB:   cfg.RedisDB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return &RedisPublisher{
		client: client,
		stream: cfg.RedisStream,
		maxLen: int64(cfg.RedisStreamMaxLen),
		log:    logger.ForComponent("publisher"),
	}, nil
}

// PublishPrices appends one scrape run to the stream. The stream is trimmed
// approximately to the configured maximum length.
func (p *RedisPublisher) PublishPrices(ctx context.Context, productID string, records []scraper.PriceRecord) error {
	if len(records) == 0 {
		return nil
	}

	event := PriceEvent{
		ID:        uuid.NewString(),
		ProductID: productID,
		Count:     len(records),
		Records:   records,
		ScrapedAt: time.Now().UTC(),
	}

	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal price event: %w", err)
	}

	id, err := p.client.XAdd(ctx, &redis.XAddArgs{
		Stream: p.stream,
		MaxLen: p.maxLen,
		Approx: true,
		Values: map[string]interface{}{"event": payload},
	}).Result()
	if err != nil {
		return fmt.Errorf("failed to publish to stream %s: %w", p.stream, err)
	}

	p.log.Debug().
		Str("stream", p.stream).
		Str("entry_id", id).
		Str("product_id", productID).
		Int("records", len(records)).
		Msg("Published price event")

	return nil
}

// Close closes the Redis connection
func (p *RedisPublisher) Close() error {
	return p.client.Close()
}
