package optimizer

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/mbenhaddou/optimisation-service/internal/domain"
	"github.com/mbenhaddou/optimisation-service/internal/platform/metrics"
	"github.com/mbenhaddou/optimisation-service/internal/platform/obs"
	"github.com/mbenhaddou/optimisation-service/internal/ports"
)

// Client submits compiled optimization requests to the solver API.
// The client is safe for concurrent use.
type Client struct {
	session *http.Client
	baseURL string
	apiKey  string
}

func NewClient(baseURL, apiKey string) (*Client, error) {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		return nil, errors.New("optimizer base URL is empty")
	}

	return &Client{
		session: &http.Client{Timeout: 60 * time.Second},
		baseURL: baseURL,
		apiKey:  strings.TrimSpace(apiKey),
	}, nil
}

// serverError mirrors the solver's error envelope. Both shapes occur in
// the wild: {"error": {"message": ...}} and {"detail": ...}.
type serverError struct {
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
	Detail string `json:"detail"`
}

// Optimize posts the request and returns the raw response body together
// with its best-effort parse. A body that fails to decode is not an error
// on a 2xx response; the caller still gets the verbatim payload.
func (c *Client) Optimize(ctx context.Context, req domain.OptimizeRequest) (_ ports.OptimizeOutcome, err error) {
	defer obs.Time(ctx, "optimizer.Optimize")(&err)

	payload, err := json.Marshal(req)
	if err != nil {
		return ports.OptimizeOutcome{}, fmt.Errorf("encode optimize request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(
		ctx, http.MethodPost, c.baseURL+"/v1/optimize", bytes.NewReader(payload),
	)
	if err != nil {
		return ports.OptimizeOutcome{}, fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.session.Do(httpReq)
	if err != nil {
		metrics.OptimizeSubmissions.WithLabelValues("transport_error").Inc()
		return ports.OptimizeOutcome{}, &ports.Failure{
			Kind:    ports.FailureTransport,
			Message: "Request failed.",
			Err:     err,
		}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		metrics.OptimizeSubmissions.WithLabelValues("transport_error").Inc()
		return ports.OptimizeOutcome{}, &ports.Failure{
			Kind:    ports.FailureTransport,
			Message: "Request failed.",
			Err:     err,
		}
	}
	raw := string(body)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		metrics.OptimizeSubmissions.WithLabelValues("server_error").Inc()
		return ports.OptimizeOutcome{Raw: raw}, &ports.Failure{
			Kind:    ports.FailureServer,
			Message: extractErrorMessage(body),
			Err:     fmt.Errorf("optimizer returned status %d", resp.StatusCode),
		}
	}

	outcome := ports.OptimizeOutcome{Raw: raw}
	var solution domain.Solution
	if err := json.Unmarshal(body, &solution); err == nil {
		outcome.Solution = &solution
	}

	metrics.OptimizeSubmissions.WithLabelValues("ok").Inc()
	return outcome, nil
}

// extractErrorMessage pulls a human-readable message out of an error body,
// falling back to a generic one when neither known shape matches.
func extractErrorMessage(body []byte) string {
	var decoded serverError
	if err := json.Unmarshal(body, &decoded); err == nil {
		if decoded.Error != nil && decoded.Error.Message != "" {
			return decoded.Error.Message
		}
		if decoded.Detail != "" {
			return decoded.Detail
		}
	}
	return "Optimization failed."
}
