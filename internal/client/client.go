package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"
	"traffic-signal-sim/internal/api/dto"
	"traffic-signal-sim/internal/domain"
	"traffic-signal-sim/internal/platform/obs"
)

// Client submits experiment batches to a running simulation server.
type Client struct {
	baseURL string
	session *http.Client

	maxAttempts int
	backoff     time.Duration
}

func New(baseURL string, timeout time.Duration) (*Client, error) {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		return nil, errors.New("new client: base URL must be non-empty")
	}

	return &Client{
		baseURL:     baseURL,
		session:     &http.Client{Timeout: timeout},
		maxAttempts: 4,
		backoff:     200 * time.Millisecond,
	}, nil
}

type httpStatusError struct {
	Code int
	Body string
}

func (e *httpStatusError) Error() string {
	return fmt.Sprintf("Code %d: %s", e.Code, e.Body)
}

// StatusCode extracts the HTTP status of a failed call, or 0.
func StatusCode(err error) int {
	var he *httpStatusError
	if errors.As(err, &he) {
		return he.Code
	}
	return 0
}

// RunExperiments posts configs to /experiments and returns the stored batch.
func (c *Client) RunExperiments(ctx context.Context, cfgs []domain.SimulationConfig) (_ string, _ []domain.ExperimentResult, err error) {
	defer obs.Time(ctx, "client.RunExperiments")(&err)

	req := dto.RunExperimentsRequest{Experiments: make([]dto.ExperimentRequest, 0, len(cfgs))}
	for _, cfg := range cfgs {
		req.Experiments = append(req.Experiments, dto.ExperimentRequest{
			ArrivalMean: cfg.ArrivalMean,
			ServiceMean: cfg.ServiceMean,
			Capacity:    cfg.Capacity,
			Strategy:    string(cfg.Strategy),
			Seed:        cfg.Seed,
		})
	}

	body, err := json.Marshal(req)
	if err != nil {
		return "", nil, fmt.Errorf("run experiments: encode request: %w", err)
	}

	resp, err := c.doWithRetry(ctx, func() (*http.Request, error) {
		return c.newRequest(ctx, http.MethodPost, c.baseURL+"/experiments", bytes.NewReader(body))
	})
	if err != nil {
		return "", nil, fmt.Errorf("run experiments: %w", err)
	}
	defer resp.Body.Close()

	var out dto.RunExperimentsResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", nil, fmt.Errorf("run experiments: decode response: %w", err)
	}

	results := make([]domain.ExperimentResult, 0, len(out.Results))
	for _, r := range out.Results {
		results = append(results, r.ToResult())
	}
	return out.BatchID, results, nil
}

func (c *Client) newRequest(
	ctx context.Context,
	method string,
	url string,
	body io.Reader,
) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if id := obs.RequestID(ctx); id != "" {
		req.Header.Set("X-Request-ID", id)
	}

	return req, nil
}

func (c *Client) do(req *http.Request) (*http.Response, error) {
	resp, err := c.session.Do(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode >= 400 {
		b, _ := io.ReadAll(resp.Body)
		resp.Body.Close()
		return nil, &httpStatusError{
			Code: resp.StatusCode,
			Body: strings.TrimSpace(string(b)),
		}
	}
	return resp, nil
}

// doWithRetry retries transient failures (network errors, 429 and 5xx responses)
// using exponential backoff while respecting context cancellation.
func (c *Client) doWithRetry(
	ctx context.Context,
	makeReq func() (*http.Request, error),
) (*http.Response, error) {
	backoff := c.backoff

	var lastErr error

	for attempt := 1; attempt <= c.maxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		req, err := makeReq()
		if err != nil {
			return nil, fmt.Errorf("make request: %w", err)
		}

		resp, err := c.do(req)
		if err == nil {
			return resp, nil
		}
		lastErr = err

		retry := false
		var he *httpStatusError
		if errors.As(err, &he) {
			switch he.Code {
			case 429, 500, 502, 503, 504:
				retry = true
			}
		}

		var netErr net.Error
		if !retry && errors.As(err, &netErr) {
			retry = true
		}

		if !retry || attempt == c.maxAttempts {
			return nil, lastErr
		}

		timer := time.NewTimer(backoff)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
		}

		backoff *= 2
	}

	return nil, lastErr
}
