package external

import (
	"context"
	"errors"
	"time"

	"github.com/sony/gobreaker"

	"github.com/wonny/lsequity/pkg/config"
	"github.com/wonny/lsequity/pkg/httputil"
	"github.com/wonny/lsequity/pkg/logger"
)

// Breaker guards calls to one remote collaborator
// ⭐ SSOT: 외부 협력자 circuit breaker 설정은 여기서만
type Breaker struct {
	cb *gobreaker.CircuitBreaker
}

// NewBreaker creates a breaker that opens after MaxFailures consecutive failures
func NewBreaker(name string, endpoint config.EndpointConfig, log *logger.Logger) *Breaker {
	maxFailures := endpoint.MaxFailures
	if maxFailures <= 0 {
		maxFailures = 3
	}
	openFor := endpoint.OpenDuration
	if openFor <= 0 {
		openFor = 30 * time.Second
	}

	settings := gobreaker.Settings{
		Name:        name,
		MaxRequests: 1,
		Interval:    60 * time.Second,
		Timeout:     openFor,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= uint32(maxFailures)
		},
		IsSuccessful: isSuccessful,
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.WithFields(map[string]interface{}{
				"breaker": name,
				"from":    from.String(),
				"to":      to.String(),
			}).Warn("Circuit breaker state changed")
		},
	}

	return &Breaker{cb: gobreaker.NewCircuitBreaker(settings)}
}

// Execute runs fn through the breaker
func (b *Breaker) Execute(fn func() (interface{}, error)) (interface{}, error) {
	return b.cb.Execute(fn)
}

// State returns the current breaker state name
func (b *Breaker) State() string {
	return b.cb.State().String()
}

// isSuccessful decides which errors count against the breaker
// 4xx 응답과 호출자 취소는 원격 장애가 아님
func isSuccessful(err error) bool {
	if err == nil {
		return true
	}
	if errors.Is(err, context.Canceled) {
		return true
	}

	var statusErr *httputil.StatusError
	if errors.As(err, &statusErr) {
		return statusErr.StatusCode < 500 && statusErr.StatusCode != 429
	}

	return false
}

// IsOpen reports whether err was returned without calling the collaborator
func IsOpen(err error) bool {
	return errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests)
}
