package optimizer

import (
	"context"
	"fmt"
	"strings"

	"github.com/wonny/lsequity/internal/contracts"
	"github.com/wonny/lsequity/internal/external"
	"github.com/wonny/lsequity/pkg/config"
	"github.com/wonny/lsequity/pkg/httputil"
	"github.com/wonny/lsequity/pkg/logger"
)

const collaboratorName = "optimizer"

// Client calls the remote portfolio optimizer
// ⭐ SSOT: S3 옵티마이저 원격 호출은 여기서만 (최적화 자체는 원격 서비스 책임)
type Client struct {
	httpClient *httputil.Client
	breaker    *external.Breaker
	baseURL    string
	logger     *logger.Logger
}

// NewClient creates a new optimizer client
func NewClient(endpoint config.EndpointConfig, httpClient *httputil.Client, log *logger.Logger) *Client {
	return &Client{
		httpClient: httpClient,
		breaker:    external.NewBreaker(collaboratorName, endpoint, log),
		baseURL:    strings.TrimRight(endpoint.BaseURL, "/"),
		logger:     log,
	}
}

// Optimize posts the request and returns the optimizer's target weights
func (c *Client) Optimize(ctx context.Context, req *contracts.OptimizerRequest) (*contracts.TargetWeights, error) {
	if req == nil || len(req.Alpha) == 0 {
		return nil, contracts.ErrEmptySelection
	}

	url := c.baseURL + "/v1/optimize"

	result, err := c.breaker.Execute(func() (interface{}, error) {
		var weights contracts.TargetWeights
		if err := c.httpClient.PostJSON(ctx, url, req, &weights); err != nil {
			return nil, err
		}
		return &weights, nil
	})
	if err != nil {
		return nil, contracts.NewCollaboratorError(contracts.StageOptimize, collaboratorName, err)
	}

	weights := result.(*contracts.TargetWeights)
	if weights.Weights == nil {
		return nil, contracts.NewCollaboratorError(contracts.StageOptimize, collaboratorName,
			fmt.Errorf("response has no weights"))
	}
	if weights.RunID == "" {
		weights.RunID = req.RunID
	}
	if weights.Date.IsZero() {
		weights.Date = req.Date
	}

	c.logger.WithFields(map[string]interface{}{
		"run_id":  req.RunID,
		"alpha":   len(req.Alpha),
		"weights": weights.Count(),
		"gross":   weights.GrossExposure(),
	}).Debug("Optimizer returned target weights")

	return weights, nil
}
