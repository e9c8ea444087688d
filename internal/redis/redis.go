package redis

import (
	"context"
	"sync"

	"github.com/fakhrymubarak/character-challenge-api/internal/config"
	redisv9 "github.com/redis/go-redis/v9"
)

var (
	client *redisv9.Client
	once   sync.Once
)

// GetClient returns the shared Redis client used by the page cache.
// The connection is lazy; nothing is dialed until the first command.
func GetClient() *redisv9.Client {
	once.Do(func() {
		client = redisv9.NewClient(&redisv9.Options{
			Addr: config.GetRedisAddr(),
		})
	})
	return client
}

func GetContext() context.Context {
	return context.Background()
}

// Ping checks that the configured Redis server answers.
func Ping(ctx context.Context) error {
	return GetClient().Ping(ctx).Err()
}

// ResetClientForTest closes and drops the Redis client singleton. Use only in tests.
func ResetClientForTest() {
	if client != nil {
		_ = client.Close()
	}
	once = sync.Once{}
	client = nil
}
