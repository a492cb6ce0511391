package router

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/wonny/lsequity/internal/contracts"
	"github.com/wonny/lsequity/internal/external"
	"github.com/wonny/lsequity/pkg/config"
	"github.com/wonny/lsequity/pkg/httputil"
	"github.com/wonny/lsequity/pkg/logger"
)

const collaboratorName = "order_router"

// Client forwards target weights to the remote order router
// ⭐ SSOT: S4 주문 라우팅 / S5 보유 종목 조회는 여기서만 (체결은 라우터 책임)
type Client struct {
	httpClient *httputil.Client
	breaker    *external.Breaker
	baseURL    string
	logger     *logger.Logger
}

// positionsResponse is the router's position summary
type positionsResponse struct {
	Count int `json:"count"`
}

// NewClient creates a new order router client
func NewClient(endpoint config.EndpointConfig, httpClient *httputil.Client, log *logger.Logger) *Client {
	return &Client{
		httpClient: httpClient,
		breaker:    external.NewBreaker(collaboratorName, endpoint, log),
		baseURL:    strings.TrimRight(endpoint.BaseURL, "/"),
		logger:     log,
	}
}

// Route submits target weights and returns the router's report
func (c *Client) Route(ctx context.Context, weights *contracts.TargetWeights) (*contracts.RoutingReport, error) {
	if weights == nil {
		return nil, fmt.Errorf("route: nil target weights")
	}

	url := c.baseURL + "/v1/targets"

	result, err := c.breaker.Execute(func() (interface{}, error) {
		var report contracts.RoutingReport
		if err := c.httpClient.PostJSON(ctx, url, weights, &report); err != nil {
			return nil, err
		}
		return &report, nil
	})
	if err != nil {
		return nil, contracts.NewCollaboratorError(contracts.StageRoute, collaboratorName, err)
	}

	report := result.(*contracts.RoutingReport)
	if report.RunID == "" {
		report.RunID = weights.RunID
	}
	if report.RoutedAt.IsZero() {
		report.RoutedAt = time.Now()
	}

	if report.HasRejections() {
		c.logger.WithFields(map[string]interface{}{
			"run_id":   weights.RunID,
			"rejected": report.Rejected,
			"messages": report.Messages,
		}).Warn("Order router rejected targets")
	}

	return report, nil
}

// PositionCount returns the number of positions currently held
func (c *Client) PositionCount(ctx context.Context) (int, error) {
	url := c.baseURL + "/v1/positions"

	result, err := c.breaker.Execute(func() (interface{}, error) {
		var resp positionsResponse
		if err := c.httpClient.GetJSON(ctx, url, &resp); err != nil {
			return nil, err
		}
		return resp.Count, nil
	})
	if err != nil {
		return 0, contracts.NewCollaboratorError(contracts.StageRecord, collaboratorName, err)
	}

	count := result.(int)
	if count < 0 {
		return 0, contracts.NewCollaboratorError(contracts.StageRecord, collaboratorName,
			fmt.Errorf("negative position count %d", count))
	}

	return count, nil
}
