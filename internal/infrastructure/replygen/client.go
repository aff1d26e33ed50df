// Package replygen is the HTTP client for the reply generator service.
package replygen

import (
	"context"
	"time"

	"github.com/go-resty/resty/v2"

	"zooworld/assistant-api/internal/domain/reply"
	"zooworld/assistant-api/internal/infrastructure/metrics"
	"zooworld/assistant-api/internal/utils/platformerrors"
)

// Client implements the reply.Generator interface.
type Client struct {
	httpClient *resty.Client
}

// NewClient creates a Resty-backed client. No client-level timeout is set;
// callers bound each call through the context.
func NewClient(baseURL string) *Client {
	return &Client{
		httpClient: resty.New().
			SetBaseURL(baseURL).
			SetHeader("Content-Type", "application/json"),
	}
}

type generateResponse struct {
	Reply            string `json:"reply"`
	Model            string `json:"model"`
	TokensUsed       int    `json:"tokens_used"`
	ProcessingTimeMs int64  `json:"processing_time_ms"`
}

// Generate calls the generator /v1/generate endpoint.
func (c *Client) Generate(ctx context.Context, req reply.Request) (*reply.Result, error) {
	started := time.Now()

	var out generateResponse
	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetBody(req).
		SetResult(&out).
		Post("/v1/generate")

	metrics.ReplyDuration.Observe(time.Since(started).Seconds())

	if err != nil {
		if ctx.Err() != nil {
			return nil, platformerrors.NewError(
				ctx,
				platformerrors.LayerInfrastructure,
				platformerrors.ErrorTypeTimeout,
				"reply generator did not answer in time",
				err,
				platformerrors.CodeReplyGeneratorTimeout,
			)
		}
		return nil, platformerrors.NewError(
			ctx,
			platformerrors.LayerInfrastructure,
			platformerrors.ErrorTypeExternal,
			"reply generator unreachable",
			err,
			platformerrors.CodeReplyGeneratorError,
		)
	}

	if resp.IsError() {
		return nil, platformerrors.NewError(
			ctx,
			platformerrors.LayerInfrastructure,
			platformerrors.ErrorTypeExternal,
			"reply generator returned an error: "+resp.Status(),
			nil,
			platformerrors.CodeReplyGeneratorError,
		)
	}

	processing := time.Duration(out.ProcessingTimeMs) * time.Millisecond
	if processing == 0 {
		processing = time.Since(started)
	}

	return &reply.Result{
		Reply:          out.Reply,
		Model:          out.Model,
		TokensUsed:     out.TokensUsed,
		ProcessingTime: processing,
	}, nil
}

// Ensure interface compliance.
var _ reply.Generator = (*Client)(nil)
