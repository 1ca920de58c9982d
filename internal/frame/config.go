package frame

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/jaedolph/verified-first/internal/admin"
	"github.com/jaedolph/verified-first/internal/config"
	"github.com/jaedolph/verified-first/internal/ebs"
	"github.com/jaedolph/verified-first/internal/host"
	"github.com/jaedolph/verified-first/internal/oauth"
	"github.com/jaedolph/verified-first/internal/session"
)

// ConfigRenderer is the display surface of the broadcaster config page.
type ConfigRenderer interface {
	admin.Indicator
	// AuthPending shows the "auth in progress" state.
	AuthPending()
	// AuthSucceeded shows the auth success state.
	AuthSucceeded()
	// AuthFailed shows the "auth failed, please try again" state.
	AuthFailed()
	// ShowConnectPrompt asks the broadcaster to connect their account.
	ShowConnectPrompt()
	// ShowRewards presents the reward selection menu, in backend order.
	ShowRewards(rewards []ebs.Reward)
	// ClearRewards empties the reward menu after a listing failure.
	ClearRewards()
}

// Config is the broadcaster-facing surface: connecting the Twitch account,
// picking the tracked reward and adjusting title/time range.
type Config struct {
	session  *session.Session
	store    *config.Store
	admin    *admin.Admin
	flow     *oauth.Flow
	renderer ConfigRenderer
	log      *zap.Logger
}

// NewConfig builds the config frame. redirectURL is the backend's OAuth
// redirect target; opener supplies the authorization window.
func NewConfig(rt host.Runtime, ebsURL, redirectURL string, opener oauth.Opener, renderer ConfigRenderer, log *zap.Logger) *Config {
	if log == nil {
		log = zap.NewNop()
	}

	sess := session.New()
	store := config.NewStore(rt, log)
	client := ebs.NewClient(ebsURL, sess, log)

	c := &Config{
		session:  sess,
		store:    store,
		admin:    admin.New(client, store, renderer, log),
		flow:     oauth.NewFlow(redirectURL, opener, log),
		renderer: renderer,
		log:      log,
	}

	sess.OnCredential(func(session.Credential) {
		c.Bootstrap(context.Background())
	})
	rt.OnAuthorized(sess.Authorize)
	rt.OnConfigChanged(func(content string) {
		if content != "" {
			_ = store.Hydrate(content)
		}
	})
	return c
}

// Bootstrap decides which surface to show: the reward menu when the
// broadcaster is connected to the backend, the connect prompt otherwise.
func (c *Config) Bootstrap(ctx context.Context) {
	if !c.admin.CheckAuthorized(ctx) {
		c.renderer.ShowConnectPrompt()
		return
	}
	c.loadRewards(ctx)
}

// Connect runs the popup authorization grant. On success the reward listing
// step runs again with the fresh backend-side authorization.
func (c *Config) Connect(ctx context.Context) {
	cred, err := c.session.Current()
	if err != nil {
		c.log.Warn("cannot start authorization before the host authorizes the frame")
		c.renderer.AuthFailed()
		return
	}

	c.renderer.AuthPending()
	err = c.flow.Start(cred.ClientID, func(success bool) {
		if success {
			c.renderer.AuthSucceeded()
			c.loadRewards(context.Background())
			return
		}
		c.renderer.AuthFailed()
	})
	if err != nil {
		if errors.Is(err, oauth.ErrFlowInProgress) {
			// The earlier grant is still pending; leave its indicator alone.
			c.log.Warn("authorization already in progress")
			return
		}
		// A blocked window must not leave the pending state showing forever.
		c.log.Error("failed to open authorization window", zap.Error(err))
		c.renderer.AuthFailed()
	}
}

// loadRewards fetches the reward listing and fills the menu, or clears it
// when the backend refuses the listing.
func (c *Config) loadRewards(ctx context.Context) {
	rewards, err := c.admin.ListRewards(ctx)
	if err != nil {
		c.renderer.ClearRewards()
		return
	}
	c.renderer.ShowRewards(rewards)
}

// SubmitReward binds the selected reward to first tracking.
func (c *Config) SubmitReward(ctx context.Context, rewardID string) error {
	return c.admin.CreateEventSubscription(ctx, rewardID)
}

// SubmitSettings merges the title/time-range form into the broadcaster
// config. Empty fields are left unchanged so the form cannot clobber a
// previously chosen reward or title.
func (c *Config) SubmitSettings(ctx context.Context, title, timeRange string) {
	var p config.Partial
	if title != "" {
		p.Title = &title
	}
	if timeRange != "" {
		p.TimeRange = &timeRange
	}
	c.store.Merge(ctx, p)
}

// Store exposes the underlying config values for display.
func (c *Config) Store() *config.Store {
	return c.store
}
