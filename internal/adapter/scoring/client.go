// Package scoring adapts the scoring port to a remote model server.
package scoring

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"path"
	"strconv"
	"time"

	"github.com/polkiloo/returnearn/internal/domain/model"
	"github.com/polkiloo/returnearn/internal/scoring"
)

// Response bodies are read at most up to these sizes.
const (
	maxResponseBytes  = 64 << 10
	maxErrorBodyBytes = 4 << 10
)

// TooManyRequestsError represents rate limiting signal from the model server.
type TooManyRequestsError struct {
	RetryAfter time.Duration
}

func (e TooManyRequestsError) Error() string {
	return fmt.Sprintf("too many requests, retry after %s", e.RetryAfter)
}

// HTTPClient implements scoring.Scorer via HTTP API.
type HTTPClient struct {
	baseURL    *url.URL
	httpClient *http.Client
	logger     *slog.Logger
}

type request struct {
	Condition string `json:"condition"`
	DaysUsed  int    `json:"days_used"`
}

// response mirrors JSON payload from the model server.
type response struct {
	Score        *float64 `json:"score"`
	ModelVersion string   `json:"model_version"`
}

// NewHTTPClient creates HTTP scoring client with default timeout.
func NewHTTPClient(baseURL string, logger *slog.Logger) (*HTTPClient, error) {
	parsed, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parse scoring url: %w", err)
	}
	if !parsed.IsAbs() {
		return nil, fmt.Errorf("scoring url must be absolute")
	}
	return &HTTPClient{
		baseURL: parsed,
		logger:  logger,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}, nil
}

// Score asks the model server to score a single return.
func (c *HTTPClient) Score(ctx context.Context, condition model.Condition, daysUsed int) (model.Score, error) {
	endpoint := *c.baseURL
	endpoint.Path = path.Join(endpoint.Path, "/api/score")

	payload, err := json.Marshal(request{Condition: string(condition), DaysUsed: daysUsed})
	if err != nil {
		return model.Score{}, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint.String(), bytes.NewReader(payload))
	if err != nil {
		return model.Score{}, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return model.Score{}, err
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes+1))
		if err != nil {
			return model.Score{}, err
		}
		if len(body) > maxResponseBytes {
			return model.Score{}, fmt.Errorf("decode score: response exceeds %d bytes", maxResponseBytes)
		}
		var data response
		if err := json.Unmarshal(body, &data); err != nil {
			return model.Score{}, fmt.Errorf("decode score: %w", err)
		}
		if data.Score == nil {
			return model.Score{}, fmt.Errorf("decode score: missing score")
		}
		return model.Score{Value: scoring.Clamp(*data.Score), ModelVersion: data.ModelVersion}, nil
	case http.StatusUnprocessableEntity:
		return model.Score{}, fmt.Errorf("%w: %q", scoring.ErrUnknownCondition, condition)
	case http.StatusTooManyRequests:
		retryAfter := parseRetryAfter(resp.Header.Get("Retry-After"))
		return model.Score{}, TooManyRequestsError{RetryAfter: retryAfter}
	default:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodyBytes))
		c.logger.Error("scoring request failed", slog.Int("status", resp.StatusCode), slog.String("body", string(body)))
		return model.Score{}, fmt.Errorf("scoring service error: %s", resp.Status)
	}
}

func parseRetryAfter(header string) time.Duration {
	if header == "" {
		return 5 * time.Second
	}
	if seconds, err := strconv.Atoi(header); err == nil {
		return time.Duration(seconds) * time.Second
	}
	if t, err := http.ParseTime(header); err == nil {
		return time.Until(t)
	}
	return 5 * time.Second
}
