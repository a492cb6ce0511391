package httputil_test

import (
	"context"
	"fmt"
	"time"

	"github.com/wonny/lsequity/pkg/config"
	"github.com/wonny/lsequity/pkg/httputil"
	"github.com/wonny/lsequity/pkg/logger"
	"github.com/wonny/lsequity/pkg/redis"
)

// Example_postJSON demonstrates calling a remote collaborator
func Example_postJSON() {
	log := logger.NewNop()

	client := httputil.New(config.EndpointConfig{
		BaseURL:    "http://localhost:7001",
		Timeout:    10 * time.Second,
		RatePerSec: 2,
	}, log).WithRetry(5, 500*time.Millisecond)

	var resp struct {
		Status string `json:"status"`
	}
	err := client.PostJSON(context.Background(), "http://localhost:7001/optimize", map[string]float64{"AAPL": 1.2}, &resp)
	if err != nil {
		fmt.Printf("Request failed: %v\n", err)
		return
	}

	fmt.Println(resp.Status)
}

// Example_sharedRateLimit demonstrates a Redis-backed request budget
func Example_sharedRateLimit() {
	cfg := &config.Config{Env: "development", LogLevel: "info"}
	log := logger.New(cfg)

	cfg.Redis = config.RedisConfig{Host: "localhost", Port: "6379", Enabled: true}
	rdb, err := redis.New(cfg)
	if err != nil {
		fmt.Printf("Redis unavailable: %v\n", err)
		return
	}
	defer rdb.Close()

	client := httputil.New(config.EndpointConfig{Timeout: 30 * time.Second}, log).
		WithRateLimiter(redis.NewRateLimiter(rdb, "lsequity"), redis.RateLimitFor("router", 5))

	_ = client
}
