package httputil

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"golang.org/x/time/rate"

	"github.com/wonny/lsequity/pkg/config"
	"github.com/wonny/lsequity/pkg/logger"
	"github.com/wonny/lsequity/pkg/redis"
)

// Client is an HTTP client wrapper with rate limiting, retry logic and logging
// ⭐ SSOT: 외부 협력자(optimizer, router) 호출은 이 클라이언트를 통해서만 수행
type Client struct {
	httpClient   *http.Client
	logger       *logger.Logger
	retryConfig  RetryConfig
	apiKey       string
	localLimiter *rate.Limiter
	rateLimiter  *redis.RateLimiter
	rateLimitCfg *redis.RateLimitConfig
}

// RetryConfig holds retry configuration
type RetryConfig struct {
	MaxRetries   int
	InitialDelay time.Duration
	MaxDelay     time.Duration
	Enabled      bool
}

// StatusError is returned by the JSON helpers for non-2xx responses
type StatusError struct {
	Method     string
	URL        string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s %s: status %d: %s", e.Method, e.URL, e.StatusCode, e.Body)
}

// New creates a new HTTP client for one remote endpoint
// ⭐ SSOT: http.Client 인스턴스는 여기서만 생성
func New(endpoint config.EndpointConfig, log *logger.Logger) *Client {
	timeout := endpoint.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	perSec := endpoint.RatePerSec
	if perSec <= 0 {
		perSec = 1
	}

	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		logger:     log,
		apiKey:     endpoint.APIKey,
		// 프로세스 내 토큰 버킷 (Redis 미사용 환경의 기본값)
		localLimiter: rate.NewLimiter(rate.Limit(perSec), perSec),
		retryConfig: RetryConfig{
			MaxRetries:   3,
			InitialDelay: 1 * time.Second,
			MaxDelay:     10 * time.Second,
			Enabled:      true,
		},
	}
}

// WithRetry configures retry behavior
func (c *Client) WithRetry(maxRetries int, initialDelay time.Duration) *Client {
	c.retryConfig.MaxRetries = maxRetries
	c.retryConfig.InitialDelay = initialDelay
	c.retryConfig.Enabled = true
	return c
}

// DisableRetry disables automatic retry
func (c *Client) DisableRetry() *Client {
	c.retryConfig.Enabled = false
	return c
}

// WithRateLimiter shares the request budget across processes through Redis
func (c *Client) WithRateLimiter(limiter *redis.RateLimiter, cfg redis.RateLimitConfig) *Client {
	c.rateLimiter = limiter
	c.rateLimitCfg = &cfg
	return c
}

// GetJSON performs a GET request and decodes a JSON response into dest
func (c *Client) GetJSON(ctx context.Context, url string, dest interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("failed to create GET request: %w", err)
	}

	return c.doJSON(req, nil, dest)
}

// PostJSON performs a POST request with a JSON body and decodes the JSON response
func (c *Client) PostJSON(ctx context.Context, url string, body, dest interface{}) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, nil)
	if err != nil {
		return fmt.Errorf("failed to create POST request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	return c.doJSON(req, payload, dest)
}

func (c *Client) doJSON(req *http.Request, payload []byte, dest interface{}) error {
	req.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.do(req, payload)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &StatusError{
			Method:     req.Method,
			URL:        req.URL.String(),
			StatusCode: resp.StatusCode,
			Body:       truncate(string(data), 256),
		}
	}

	if dest == nil || len(data) == 0 {
		return nil
	}

	if err := json.Unmarshal(data, dest); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}

	return nil
}

// do executes the request with rate limiting, retry and logging
func (c *Client) do(req *http.Request, payload []byte) (*http.Response, error) {
	ctx := req.Context()

	if c.rateLimiter != nil && c.rateLimitCfg != nil {
		if err := c.rateLimiter.Wait(ctx, *c.rateLimitCfg); err != nil {
			return nil, fmt.Errorf("rate limit wait failed: %w", err)
		}
	} else if err := c.localLimiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait failed: %w", err)
	}

	start := time.Now()
	log := c.logger.WithFields(map[string]interface{}{
		"method": req.Method,
		"url":    req.URL.String(),
	})
	log.Debug("HTTP request started")

	maxAttempts := 1
	if c.retryConfig.Enabled {
		maxAttempts += c.retryConfig.MaxRetries
	}

	var resp *http.Response
	var err error
	delay := c.retryConfig.InitialDelay

	for attempt := 1; attempt <= maxAttempts; attempt++ {
		// Body must be rewound on every attempt
		if payload != nil {
			req.Body = io.NopCloser(bytes.NewReader(payload))
			req.ContentLength = int64(len(payload))
		}

		resp, err = c.httpClient.Do(req)
		if err == nil && !IsRetryableError(resp.StatusCode) {
			break
		}
		if attempt == maxAttempts {
			break
		}

		if resp != nil {
			resp.Body.Close()
		}

		log.WithFields(map[string]interface{}{
			"attempt": attempt,
			"delay":   delay,
		}).Warn("Retrying HTTP request")

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(delay):
		}

		delay *= 2
		if delay > c.retryConfig.MaxDelay {
			delay = c.retryConfig.MaxDelay
		}
	}

	if err != nil {
		log.WithFields(map[string]interface{}{
			"duration": time.Since(start),
			"error":    err.Error(),
		}).Error("HTTP request failed")
		return nil, err
	}

	log.WithFields(map[string]interface{}{
		"status_code": resp.StatusCode,
		"duration":    time.Since(start),
	}).Debug("HTTP request completed")

	return resp, nil
}

// IsRetryableError checks if a status code should be retried
func IsRetryableError(statusCode int) bool {
	// Retry on 5xx server errors and 429 Too Many Requests
	return statusCode >= 500 || statusCode == http.StatusTooManyRequests
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
