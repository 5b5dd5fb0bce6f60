package rdx

import (
	"log"
	"os"
	"time"

	"github.com/redis/go-redis/v9"

	"medirent/globals"
)

var Conn *redis.Client

func init() {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		addr = "localhost:6379"
	}
	Conn = redis.NewClient(&redis.Options{Addr: addr})
	if err := Conn.Ping(globals.Ctx).Err(); err != nil {
		log.Println("Redis not reachable at startup:", err)
	}
}

// RdxSet stores a key with a TTL; ttl of 0 means no expiry.
func RdxSet(key, value string, ttl time.Duration) error {
	return Conn.Set(globals.Ctx, key, value, ttl).Err()
}

func RdxGet(key string) (string, error) {
	return Conn.Get(globals.Ctx, key).Result()
}

func RdxDel(key string) error {
	return Conn.Del(globals.Ctx, key).Err()
}

// RdxSetNX acquires key only if absent, used for short-lived locks.
func RdxSetNX(key, value string, ttl time.Duration) (bool, error) {
	return Conn.SetNX(globals.Ctx, key, value, ttl).Result()
}
