package embed

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"
)

const (
	defaultTimeout  = 2 * time.Second
	defaultRetryMax = 2
	minBackoff      = 100 * time.Millisecond
	maxBackoff      = 2 * time.Second
	embeddingsPath  = "/v1/embeddings"
)

// HTTPClient is the minimal client surface the embedder needs.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// Client calls an OpenAI-compatible embeddings endpoint with retry, backoff,
// and client-side rate limiting.
type Client struct {
	baseURL  string
	model    string
	apiKey   string
	client   HTTPClient
	retryMax int
	limiter  *rate.Limiter
}

type embedRequest struct {
	Model      string   `json:"model"`
	Input      []string `json:"input"`
	Dimensions int      `json:"dimensions,omitempty"`
}

type embedResponse struct {
	Data []struct {
		Embedding []float32 `json:"embedding"`
		Index     int       `json:"index"`
	} `json:"data"`
}

// NewClient builds an embedding client. When client is nil a default
// http.Client with a short timeout is used; retryMax < 0 falls back to the
// default. rps bounds outbound calls per second; 0 disables limiting.
func NewClient(baseURL, model, apiKey string, client HTTPClient, retryMax int, rps float64) (*Client, error) {
	if baseURL == "" {
		return nil, fmt.Errorf("embed baseURL required")
	}
	if model == "" {
		return nil, fmt.Errorf("embed model required")
	}
	if client == nil {
		client = &http.Client{Timeout: defaultTimeout}
	}
	if retryMax < 0 {
		retryMax = defaultRetryMax
	}

	var limiter *rate.Limiter
	if rps > 0 {
		limiter = rate.NewLimiter(rate.Limit(rps), 1)
	}

	return &Client{
		baseURL:  strings.TrimRight(baseURL, "/"),
		model:    model,
		apiKey:   apiKey,
		client:   client,
		retryMax: retryMax,
		limiter:  limiter,
	}, nil
}

// Embed requests a vector for the given text. Server errors are retried with
// exponential backoff up to the configured maximum; 4xx responses fail
// immediately.
func (c *Client) Embed(ctx context.Context, text string) ([]float32, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, err
		}
	}

	payload, err := json.Marshal(embedRequest{Model: c.model, Input: []string{text}})
	if err != nil {
		return nil, fmt.Errorf("marshal payload: %w", err)
	}

	var (
		attempt   int
		lastError error
		backoff   = minBackoff
	)

	for {
		attempt++
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+embeddingsPath, bytes.NewReader(payload))
		if err != nil {
			return nil, fmt.Errorf("create request: %w", err)
		}
		req.Header.Set("Content-Type", "application/json")
		if c.apiKey != "" {
			req.Header.Set("Authorization", "Bearer "+c.apiKey)
		}

		resp, err := c.client.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			lastError = err
		} else {
			body, readErr := io.ReadAll(resp.Body)
			resp.Body.Close()

			switch {
			case readErr != nil:
				lastError = fmt.Errorf("read response: %w", readErr)
			case resp.StatusCode >= 500 && attempt <= c.retryMax:
				lastError = fmt.Errorf("server error: %s", strings.TrimSpace(string(body)))
			case resp.StatusCode >= 400:
				return nil, fmt.Errorf("embed error (%d): %s", resp.StatusCode, strings.TrimSpace(string(body)))
			default:
				return decodeVector(body)
			}
		}

		if attempt > c.retryMax {
			if lastError == nil {
				lastError = fmt.Errorf("request failed after %d attempts", attempt-1)
			}
			return nil, lastError
		}

		if !sleepWithContext(ctx, backoff) {
			return nil, ctx.Err()
		}
		backoff = nextBackoff(backoff)
	}
}

func (c *Client) String() string {
	return fmt.Sprintf("embed_client{base=%s,model=%s,retry_max=%d}", c.baseURL, c.model, c.retryMax)
}

func decodeVector(body []byte) ([]float32, error) {
	var decoded embedResponse
	if err := json.Unmarshal(body, &decoded); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	if len(decoded.Data) == 0 {
		return nil, fmt.Errorf("no embedding returned")
	}
	return decoded.Data[0].Embedding, nil
}

func sleepWithContext(ctx context.Context, d time.Duration) bool {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return true
	case <-ctx.Done():
		return false
	}
}

func nextBackoff(current time.Duration) time.Duration {
	next := current * 2
	if next > maxBackoff {
		return maxBackoff
	}
	return next
}
