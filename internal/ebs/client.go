// Package ebs is the HTTP client for the extension backend service. The
// backend owns all persistent state; every request here is a single shot
// carrying the current extension bearer credential.
package ebs

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	jsoniter "github.com/json-iterator/go"
	"go.uber.org/zap"

	"github.com/jaedolph/verified-first/internal/session"
)

var json = jsoniter.ConfigFastest

const requestTimeout = 10 * time.Second

// Reward describes a channel points reward as listed by the backend.
type Reward struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

// TimeWindow selects the range of firsts to count. A nil bound means
// unbounded on that side.
type TimeWindow struct {
	Start *time.Time
	End   *time.Time
}

// Client talks to the extension backend service. The credential is read from
// the session on every request so re-authorization events take effect
// immediately.
type Client struct {
	baseURL string
	session *session.Session
	http    *http.Client
	log     *zap.Logger
}

// NewClient creates a backend client for the given base URL.
func NewClient(baseURL string, sess *session.Session, log *zap.Logger) *Client {
	if log == nil {
		log = zap.NewNop()
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		session: sess,
		http:    &http.Client{Timeout: requestTimeout},
		log:     log,
	}
}

// Rewards fetches the channel's reward list. The backend's ordering is
// preserved. Non-2xx responses are returned as a FetchError carrying the
// response body.
func (c *Client) Rewards(ctx context.Context) ([]Reward, error) {
	status, body, err := c.do(ctx, http.MethodGet, "/rewards", nil)
	if err != nil {
		return nil, err
	}
	if status < 200 || status > 299 {
		return nil, &FetchError{Status: status, Body: body}
	}

	var rewards []Reward
	if err := json.UnmarshalFromString(body, &rewards); err != nil {
		return nil, fmt.Errorf("failed to decode rewards response: %w", err)
	}
	return rewards, nil
}

// CheckAuth probes whether the broadcaster has a valid backend-side
// authorization. It is deliberately a boolean: any failure, including
// transport errors, reads as "not authorized" because the caller branches
// the same way for all of them.
func (c *Client) CheckAuth(ctx context.Context) bool {
	status, _, err := c.do(ctx, http.MethodGet, "/auth/check", nil)
	if err != nil {
		c.log.Debug("auth check failed", zap.Error(err))
		return false
	}
	return status >= 200 && status <= 299
}

// CreateEventSub asks the backend to bind the given reward to first
// tracking. Returns the created eventsub id.
func (c *Client) CreateEventSub(ctx context.Context, rewardID string) (string, error) {
	query := url.Values{"reward_id": {rewardID}}
	status, body, err := c.do(ctx, http.MethodPost, "/eventsub/create?"+query.Encode(), nil)
	if err != nil {
		return "", err
	}
	if status < 200 || status > 299 {
		return "", &SubscriptionError{Status: status, Body: body}
	}

	var resp struct {
		EventsubID string `json:"eventsub_id"`
	}
	if err := json.UnmarshalFromString(body, &resp); err != nil {
		return "", fmt.Errorf("failed to decode eventsub response: %w", err)
	}
	return resp.EventsubID, nil
}

// Firsts fetches the raw first counts for the given window and returns the
// response body. Bounds are sent as RFC 3339 start_time/end_time params and
// omitted entirely when nil. A 404 maps to ErrNoFirsts; other non-2xx
// responses map to a FetchError.
func (c *Client) Firsts(ctx context.Context, window TimeWindow) (string, error) {
	query := url.Values{}
	if window.Start != nil {
		query.Set("start_time", window.Start.Format(time.RFC3339))
	}
	if window.End != nil {
		query.Set("end_time", window.End.Format(time.RFC3339))
	}
	path := "/firsts"
	if len(query) > 0 {
		path += "?" + query.Encode()
	}

	status, body, err := c.do(ctx, http.MethodGet, path, nil)
	if err != nil {
		return "", err
	}
	if status == http.StatusNotFound {
		return "", ErrNoFirsts
	}
	if status < 200 || status > 299 {
		return "", &FetchError{Status: status, Body: body}
	}
	return body, nil
}

// do issues a request with the current credential and returns the status and
// body. Transport failures and a missing credential are returned as errors;
// HTTP-level failures are left to the caller.
func (c *Client) do(ctx context.Context, method, path string, reqBody io.Reader) (int, string, error) {
	cred, err := c.session.Current()
	if err != nil {
		return 0, "", err
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return 0, "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+cred.BearerToken)

	resp, err := c.http.Do(req)
	if err != nil {
		return 0, "", fmt.Errorf("request to %s failed: %w", path, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, "", fmt.Errorf("failed to read response from %s: %w", path, err)
	}
	return resp.StatusCode, string(body), nil
}
