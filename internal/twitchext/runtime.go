// Package twitchext provides a host.Runtime backed by the Twitch extension
// configuration API, for running the extension frames outside the hosted
// iframe sandbox.
package twitchext

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sync"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"

	"github.com/jaedolph/verified-first/internal/host"
)

var json = jsoniter.ConfigFastest

// DefaultAPIBaseURL is the production Twitch Helix API endpoint.
const DefaultAPIBaseURL = "https://api.twitch.tv/helix"

const (
	configPath      = "/extensions/configurations"
	defaultTokenTTL = 5 * time.Minute
)

// Options configures a Runtime.
type Options struct {
	// ClientID is the extension client id from the developer console.
	ClientID string
	// Secret is the base64-encoded extension secret used to sign tokens.
	Secret string
	// BroadcasterID is the numeric id of the channel the frames act on.
	BroadcasterID string
	// APIBaseURL overrides the Helix endpoint, used by tests.
	APIBaseURL string
	// Theme is reported through the context callback on Start.
	Theme host.Theme
	// TokenTTL bounds the lifetime of self-issued tokens.
	TokenTTL time.Duration
}

// Runtime implements host.Runtime against the real extension configuration
// service. Tokens are self-issued with the extension secret, which limits it
// to broadcaster use.
type Runtime struct {
	opts  Options
	key   []byte
	http  *http.Client
	clock clockwork.Clock
	log   *zap.Logger

	mu        sync.Mutex
	authFns   []func(host.Authorization)
	configFns []func(string)
	themeFns  []func(host.Theme)
}

// NewRuntime creates a Runtime for the given extension and channel.
func NewRuntime(opts Options, clock clockwork.Clock, log *zap.Logger) (*Runtime, error) {
	key, err := decodeSecret(opts.Secret)
	if err != nil {
		return nil, err
	}
	if opts.APIBaseURL == "" {
		opts.APIBaseURL = DefaultAPIBaseURL
	}
	if opts.Theme == "" {
		opts.Theme = host.ThemeLight
	}
	if opts.TokenTTL <= 0 {
		opts.TokenTTL = defaultTokenTTL
	}
	return &Runtime{
		opts:  opts,
		key:   key,
		http:  &http.Client{Timeout: 10 * time.Second},
		clock: clock,
		log:   log.With(zap.String("module", "twitchext")),
	}, nil
}

// OnAuthorized registers fn to be called when credentials become available.
func (r *Runtime) OnAuthorized(fn func(host.Authorization)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.authFns = append(r.authFns, fn)
}

// OnConfigChanged registers fn to be called with broadcaster config content.
func (r *Runtime) OnConfigChanged(fn func(string)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.configFns = append(r.configFns, fn)
}

// OnContext registers fn to be called with theme updates.
func (r *Runtime) OnContext(fn func(host.Theme)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.themeFns = append(r.themeFns, fn)
}

// Start issues the initial authorization, context, and config events, in the
// order the hosted runtime delivers them when a frame loads.
func (r *Runtime) Start(ctx context.Context) error {
	token, err := signToken(r.key, r.opts.BroadcasterID, r.opts.TokenTTL, r.clock)
	if err != nil {
		return err
	}

	auth := host.Authorization{
		Token:     token,
		ClientID:  r.opts.ClientID,
		UserID:    r.opts.BroadcasterID,
		ChannelID: r.opts.BroadcasterID,
	}

	r.mu.Lock()
	authFns := append([]func(host.Authorization){}, r.authFns...)
	configFns := append([]func(string){}, r.configFns...)
	themeFns := append([]func(host.Theme){}, r.themeFns...)
	r.mu.Unlock()

	for _, fn := range authFns {
		fn(auth)
	}
	for _, fn := range themeFns {
		fn(r.opts.Theme)
	}

	content, err := r.fetchConfig(ctx, token)
	if err != nil {
		return err
	}
	for _, fn := range configFns {
		fn(content)
	}
	return nil
}

// SetConfig writes content to the extension configuration segment.
func (r *Runtime) SetConfig(ctx context.Context, segment, version, content string) error {
	token, err := signToken(r.key, r.opts.BroadcasterID, r.opts.TokenTTL, r.clock)
	if err != nil {
		return err
	}

	body, err := json.Marshal(map[string]string{
		"extension_id":   r.opts.ClientID,
		"broadcaster_id": r.opts.BroadcasterID,
		"segment":        segment,
		"version":        version,
		"content":        content,
	})
	if err != nil {
		return fmt.Errorf("failed to encode config body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPut, r.opts.APIBaseURL+configPath, bytes.NewReader(body))
	if err != nil {
		return err
	}
	r.setHeaders(req, token)

	resp, err := r.http.Do(req)
	if err != nil {
		return fmt.Errorf("failed to update config: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		raw, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("config update returned status %d: %s", resp.StatusCode, string(raw))
	}
	r.log.Debug("updated extension config",
		zap.String("segment", segment),
		zap.String("broadcaster_id", r.opts.BroadcasterID))
	return nil
}

type configSegment struct {
	Content string `json:"content"`
}

type configResponse struct {
	Data []configSegment `json:"data"`
}

// fetchConfig reads the broadcaster configuration segment. A channel that has
// never been configured yields empty content rather than an error.
func (r *Runtime) fetchConfig(ctx context.Context, token string) (string, error) {
	query := url.Values{}
	query.Set("extension_id", r.opts.ClientID)
	query.Set("broadcaster_id", r.opts.BroadcasterID)
	query.Set("segment", host.ConfigSegmentBroadcaster)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, r.opts.APIBaseURL+configPath+"?"+query.Encode(), nil)
	if err != nil {
		return "", err
	}
	r.setHeaders(req, token)

	resp, err := r.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to get config: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", fmt.Errorf("config fetch returned status %d: %s", resp.StatusCode, string(raw))
	}

	var parsed configResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return "", fmt.Errorf("failed to parse config response: %w", err)
	}
	if len(parsed.Data) == 0 {
		return "", nil
	}
	return parsed.Data[0].Content, nil
}

func (r *Runtime) setHeaders(req *http.Request, token string) {
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Client-Id", r.opts.ClientID)
	req.Header.Set("Content-Type", "application/json")
}
