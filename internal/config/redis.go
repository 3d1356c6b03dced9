package config

import (
	"context"
	"crypto/tls"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// NewRedisClient connects to the Redis instance backing the slot
// board response cache.  The address comes from REDIS_ADDR, or from
// REDIS_HOST and REDIS_PORT when both are set; REDIS_PASSWORD,
// REDIS_DB and REDIS_TLS are optional.  The cache is optional too:
// when Redis cannot be reached within two seconds the function
// returns nil and the board is served straight from MySQL.
func NewRedisClient() *redis.Client {
	addr := getenv("REDIS_ADDR", "localhost:6379")
	if host, port := getenv("REDIS_HOST", ""), getenv("REDIS_PORT", ""); host != "" && port != "" {
		addr = host + ":" + port
	}
	db, _ := strconv.Atoi(getenv("REDIS_DB", "0"))

	opts := &redis.Options{
		Addr:     addr,
		Password: getenv("REDIS_PASSWORD", ""),
		DB:       db,
	}
	if v := getenv("REDIS_TLS", ""); v == "true" || v == "1" {
		opts.TLSConfig = &tls.Config{InsecureSkipVerify: true}
	}

	client := redis.NewClient(opts)
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil
	}
	return client
}
