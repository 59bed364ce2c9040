package backend

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/bytedance/sonic"
	"github.com/go-resty/resty/v2"
	"github.com/hashicorp/go-retryablehttp"
	"golang.org/x/time/rate"
)

// Config defines client behavior.
type Config struct {
	BaseURL        string
	Timeout        time.Duration
	HistoryRetries int
	RateLimit      float64 // requests/sec, 0 = unlimited
}

// Client talks to the remote chat session service.
type Client struct {
	resty   *resty.Client
	history *retryablehttp.Client
	limiter *rate.Limiter
	baseURL string
}

// NewClient creates a client for the service at cfg.BaseURL.
func NewClient(cfg Config) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}

	// Chat and create_session must not retry. The retryable client here
	// only donates its tuned transport.
	transportClient := retryablehttp.NewClient()
	transportClient.RetryMax = 0
	transportClient.Logger = nil

	restyClient := resty.New()
	restyClient.
		SetBaseURL(strings.TrimRight(cfg.BaseURL, "/")).
		SetTimeout(cfg.Timeout).
		SetRetryCount(0).
		SetHeader("User-Agent", "chatctl/1.0").
		SetHeader("Content-Type", "application/json")
	restyClient.SetTransport(transportClient.HTTPClient.Transport)

	// History is idempotent and best-effort, so it gets real retries.
	historyClient := retryablehttp.NewClient()
	historyClient.RetryMax = cfg.HistoryRetries
	historyClient.RetryWaitMin = 200 * time.Millisecond
	historyClient.RetryWaitMax = 2 * time.Second
	historyClient.HTTPClient.Timeout = cfg.Timeout
	historyClient.Logger = nil

	limiter := rate.NewLimiter(rate.Inf, 0)
	if cfg.RateLimit > 0 {
		limiter = rate.NewLimiter(rate.Limit(cfg.RateLimit), int(cfg.RateLimit)+1)
	}

	return &Client{
		resty:   restyClient,
		history: historyClient,
		limiter: limiter,
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
	}
}

// CreateSession asks the service for a fresh session identifier.
func (c *Client) CreateSession(ctx context.Context) (string, error) {
	req, err := c.request(ctx)
	if err != nil {
		return "", err
	}

	var result CreateSessionResponse
	resp, err := req.
		SetBody(struct{}{}).
		SetResult(&result).
		Post("/create_session")
	if err != nil {
		return "", fmt.Errorf("create_session request failed: %w", err)
	}
	if resp.IsError() {
		return "", c.serverError(resp)
	}
	if result.SessionID == "" {
		return "", &ServerError{StatusCode: resp.StatusCode(), Detail: "empty session_id"}
	}
	return result.SessionID, nil
}

// Chat sends one user message within a session and returns the reply.
func (c *Client) Chat(ctx context.Context, sessionID, message string) (*ChatReply, error) {
	req, err := c.request(ctx)
	if err != nil {
		return nil, err
	}

	var result ChatReply
	resp, err := req.
		SetBody(ChatRequest{SessionID: sessionID, Message: message}).
		SetResult(&result).
		Post("/chat")
	if err != nil {
		return nil, fmt.Errorf("chat request failed: %w", err)
	}
	if resp.IsError() {
		return nil, c.serverError(resp)
	}
	return &result, nil
}

// History fetches the stored transcript for a session. Any failure is
// returned as-is; callers decide whether it matters.
func (c *Client) History(ctx context.Context, sessionID string) ([]HistoryEntry, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit error: %w", err)
	}

	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/history/"+sessionID, nil)
	if err != nil {
		return nil, fmt.Errorf("history request failed: %w", err)
	}

	resp, err := c.history.Do(req)
	if err != nil {
		return nil, fmt.Errorf("history request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("history read failed: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, parseServerError(resp.StatusCode, body)
	}

	var entries []HistoryEntry
	if err := sonic.Unmarshal(body, &entries); err != nil {
		return nil, fmt.Errorf("history decode failed: %w", err)
	}
	return entries, nil
}

// request creates a new resty request with rate limiting.
func (c *Client) request(ctx context.Context) (*resty.Request, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit error: %w", err)
	}
	return c.resty.R().SetContext(ctx), nil
}

// serverError maps a non-success resty response to a ServerError.
func (c *Client) serverError(resp *resty.Response) error {
	return parseServerError(resp.StatusCode(), resp.Body())
}

func parseServerError(status int, body []byte) error {
	var detail errorDetail
	if len(body) > 0 {
		// Detail is optional; a body that fails to parse is the same as
		// no detail at all.
		_ = sonic.Unmarshal(body, &detail)
	}
	return &ServerError{StatusCode: status, Detail: detail.Detail}
}
