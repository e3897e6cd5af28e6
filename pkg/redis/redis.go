package redis

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/ikkim/bookcity-backend/config"
	"github.com/ikkim/bookcity-backend/pkg/logger"
	"github.com/redis/go-redis/v9"
)

const keyPrefix = "bookcity:lock:"

// releaseScript deletes the key only while it still holds our token.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0`)

// Connect opens a client and checks it with PING.
func Connect(cfg *config.RedisConfig) (*redis.Client, error) {
	logger.Info("Initializing Redis connection", map[string]interface{}{
		"host": cfg.Host,
		"port": cfg.Port,
		"db":   cfg.DB,
	})

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr(),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		logger.Error("Failed to connect to Redis", err, map[string]interface{}{
			"host": cfg.Host,
			"port": cfg.Port,
		})
		client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	logger.Info("Redis connection established successfully")
	return client, nil
}

// Locker hands out short-lived SET NX locks. Each lock carries a random
// token so an expired holder cannot release a lock someone else now owns.
type Locker struct {
	client *redis.Client

	mu     sync.Mutex
	tokens map[string]string
}

func NewLocker(client *redis.Client) *Locker {
	return &Locker{
		client: client,
		tokens: make(map[string]string),
	}
}

// Acquire reports false when the key is already held.
func (l *Locker) Acquire(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	token := uuid.New().String()

	ok, err := l.client.SetNX(ctx, keyPrefix+key, token, ttl).Result()
	if err != nil {
		logger.Error("Failed to acquire Redis lock", err, map[string]interface{}{
			"key": key,
		})
		return false, err
	}
	if !ok {
		logger.Debug("Redis lock already held", map[string]interface{}{
			"key": key,
		})
		return false, nil
	}

	l.mu.Lock()
	l.tokens[key] = token
	l.mu.Unlock()
	return true, nil
}

func (l *Locker) Release(ctx context.Context, key string) error {
	l.mu.Lock()
	token, ok := l.tokens[key]
	delete(l.tokens, key)
	l.mu.Unlock()
	if !ok {
		return nil
	}

	if err := releaseScript.Run(ctx, l.client, []string{keyPrefix + key}, token).Err(); err != nil {
		logger.Error("Failed to release Redis lock", err, map[string]interface{}{
			"key": key,
		})
		return err
	}
	return nil
}
