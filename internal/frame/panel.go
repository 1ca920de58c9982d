// Package frame wires the extension surfaces together: the host runtime
// feeds identity, config and theme events into the session, config store and
// views that make up each frame.
package frame

import (
	"context"

	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"

	"github.com/jaedolph/verified-first/internal/config"
	"github.com/jaedolph/verified-first/internal/ebs"
	"github.com/jaedolph/verified-first/internal/host"
	"github.com/jaedolph/verified-first/internal/leaderboard"
	"github.com/jaedolph/verified-first/internal/session"
)

// PanelRenderer is the display surface of the viewer panel.
type PanelRenderer interface {
	leaderboard.Renderer
	// SetTitle updates the panel heading.
	SetTitle(title string)
	// SetTheme applies the host's light/dark signal.
	SetTheme(theme host.Theme)
}

// Panel is the viewer-facing surface: it shows the firsts leaderboard under
// the broadcaster's configured title.
type Panel struct {
	session  *session.Session
	store    *config.Store
	view     *leaderboard.View
	renderer PanelRenderer
	clock    clockwork.Clock
	log      *zap.Logger
}

// NewPanel builds the panel frame on top of the given host runtime and
// backend URL. The first authorization event triggers the initial fetch.
func NewPanel(rt host.Runtime, ebsURL string, renderer PanelRenderer, clock clockwork.Clock, log *zap.Logger) *Panel {
	if log == nil {
		log = zap.NewNop()
	}

	sess := session.New()
	store := config.NewStore(rt, log)
	client := ebs.NewClient(ebsURL, sess, log)
	view := leaderboard.NewView(client, renderer, clock, log)

	p := &Panel{
		session:  sess,
		store:    store,
		view:     view,
		renderer: renderer,
		clock:    clock,
		log:      log,
	}

	renderer.SetTitle(store.Title())
	sess.OnCredential(func(session.Credential) {
		p.Refresh(context.Background())
	})
	rt.OnAuthorized(sess.Authorize)
	rt.OnConfigChanged(p.handleConfig)
	rt.OnContext(renderer.SetTheme)
	return p
}

// Refresh re-fetches the leaderboard for the configured time range.
func (p *Panel) Refresh(ctx context.Context) {
	window := leaderboard.WindowForRange(p.store.TimeRange(), p.clock)
	p.view.Refresh(ctx, window)
}

// ShowRange fetches the leaderboard for an explicitly chosen preset,
// independent of the configured default. Overlapping calls are resolved by
// the view: the newest request wins the display.
func (p *Panel) ShowRange(ctx context.Context, timeRange string) {
	p.view.Refresh(ctx, leaderboard.WindowForRange(timeRange, p.clock))
}

// ShowWindow fetches the leaderboard for an arbitrary custom window.
func (p *Panel) ShowWindow(ctx context.Context, window ebs.TimeWindow) {
	p.view.Refresh(ctx, window)
}

// handleConfig applies a config broadcast. An empty broadcast means no
// config has ever been written and is skipped; an unparseable one keeps the
// previous title.
func (p *Panel) handleConfig(content string) {
	if content == "" {
		return
	}
	if err := p.store.Hydrate(content); err != nil {
		return
	}
	p.renderer.SetTitle(p.store.Title())
}
