package cart

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"

	"techshop_back_end/internal/models"

	"github.com/redis/go-redis/v9"
)

const (
	EventUpdated = "updated"
	EventCleared = "cleared"
)

// RedisKey is the namespace under which a cart is stored and announced.
func RedisKey(key string) string {
	return "cart:" + key
}

// RedisPersister stores carts as a JSON list under cart:<key> without
// expiry and announces every save on the channel of the same name.
type RedisPersister struct {
	client *redis.Client
}

func NewRedisPersister(client *redis.Client) *RedisPersister {
	return &RedisPersister{client: client}
}

func (p *RedisPersister) Load(ctx context.Context, key string) ([]models.CartLineItem, error) {
	data, err := p.client.Get(ctx, RedisKey(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var items []models.CartLineItem
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, fmt.Errorf("decode cart: %w", err)
	}
	return items, nil
}

func (p *RedisPersister) Save(ctx context.Context, key string, items []models.CartLineItem) error {
	k := RedisKey(key)
	pipe := p.client.TxPipeline()

	event := EventUpdated
	if len(items) == 0 {
		pipe.Del(ctx, k)
		event = EventCleared
	} else {
		data, err := json.Marshal(items)
		if err != nil {
			return fmt.Errorf("encode cart: %w", err)
		}
		pipe.Set(ctx, k, data, 0)
	}
	pipe.Publish(ctx, k, event)

	if _, err := pipe.Exec(ctx); err != nil {
		log.Printf("❌ Cart save failed for %s: %v", k, err)
		return err
	}
	return nil
}

// Subscribe listens for save events of one cart.
func (p *RedisPersister) Subscribe(ctx context.Context, key string) *redis.PubSub {
	return p.client.Subscribe(ctx, RedisKey(key))
}
