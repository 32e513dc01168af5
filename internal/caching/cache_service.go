package caching

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"storefront/internal/models"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/sony/gobreaker/v2"
)

const keyPrefix = "storefront"

type CacheService interface {
	// Product caching
	GetProduct(ctx context.Context, productID uuid.UUID) (*models.Product, error)
	SetProduct(ctx context.Context, product *models.Product, ttl time.Duration) error
	DeleteProduct(ctx context.Context, productID uuid.UUID) error

	// Rate limiting
	IsRateLimited(ctx context.Context, key string, limit int, window time.Duration) (bool, error)

	Ping(ctx context.Context) error
}

type redisCacheService struct {
	client  *redis.Client
	breaker *gobreaker.CircuitBreaker[any]
}

func NewRedisCacheService(addr, password string, db int) CacheService {
	// Parse Redis URL to extract host:port if protocol is included
	parsedAddr := strings.TrimPrefix(strings.TrimPrefix(addr, "redis://"), "rediss://")

	log.Printf("DEBUG: Creating Redis client with address: %s (original: %s)", parsedAddr, addr)

	client := redis.NewClient(&redis.Options{
		Addr:     parsedAddr,
		Password: password,
		DB:       db,
	})

	if pingErr := client.Ping(context.Background()).Err(); pingErr != nil {
		log.Printf("WARN: Redis ping failed on initialization: %v (address: %s)", pingErr, parsedAddr)
	} else {
		log.Printf("DEBUG: Redis connection established successfully")
	}

	return newRedisCacheService(client)
}

func newRedisCacheService(client *redis.Client) *redisCacheService {
	settings := gobreaker.Settings{
		Name:        "redis",
		MaxRequests: 1,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		// a cache miss is a healthy answer
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, redis.Nil)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Printf("WARN: circuit breaker %s changed from %s to %s", name, from, to)
		},
	}
	return &redisCacheService{
		client:  client,
		breaker: gobreaker.NewCircuitBreaker[any](settings),
	}
}

func productKey(productID uuid.UUID) string {
	return fmt.Sprintf("%s:product:%s", keyPrefix, productID.String())
}

func (r *redisCacheService) GetProduct(ctx context.Context, productID uuid.UUID) (*models.Product, error) {
	res, err := r.breaker.Execute(func() (any, error) {
		return r.client.Get(ctx, productKey(productID)).Bytes()
	})
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil // cache miss
		}
		return nil, err
	}

	var product models.Product
	if err := json.Unmarshal(res.([]byte), &product); err != nil {
		return nil, err
	}
	return &product, nil
}

func (r *redisCacheService) SetProduct(ctx context.Context, product *models.Product, ttl time.Duration) error {
	data, err := json.Marshal(product)
	if err != nil {
		return err
	}
	_, err = r.breaker.Execute(func() (any, error) {
		return nil, r.client.Set(ctx, productKey(product.ID), data, ttl).Err()
	})
	return err
}

func (r *redisCacheService) DeleteProduct(ctx context.Context, productID uuid.UUID) error {
	_, err := r.breaker.Execute(func() (any, error) {
		return nil, r.client.Del(ctx, productKey(productID)).Err()
	})
	return err
}

// IsRateLimited counts a hit against key. The window is set in the same
// MULTI as the increment, so a counter can never outlive its window.
func (r *redisCacheService) IsRateLimited(ctx context.Context, key string, limit int, window time.Duration) (bool, error) {
	cacheKey := fmt.Sprintf("%s:ratelimit:%s", keyPrefix, key)
	res, err := r.breaker.Execute(func() (any, error) {
		var count *redis.IntCmd
		_, err := r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.SetNX(ctx, cacheKey, 0, window)
			count = pipe.Incr(ctx, cacheKey)
			return nil
		})
		if err != nil {
			return nil, err
		}
		return count.Val(), nil
	})
	if err != nil {
		return false, err
	}
	return res.(int64) > int64(limit), nil
}

func (r *redisCacheService) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}
