package frame

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/jaedolph/verified-first/internal/ebs"
	"github.com/jaedolph/verified-first/internal/host"
	"github.com/jaedolph/verified-first/internal/leaderboard"
)

// scriptedRuntime is an in-memory host runtime for frame tests.
type scriptedRuntime struct {
	mu        sync.Mutex
	authFns   []func(host.Authorization)
	configFns []func(string)
	themeFns  []func(host.Theme)
	stored    string
}

func (rt *scriptedRuntime) OnAuthorized(fn func(host.Authorization)) {
	rt.authFns = append(rt.authFns, fn)
}

func (rt *scriptedRuntime) OnConfigChanged(fn func(string)) {
	rt.configFns = append(rt.configFns, fn)
}

func (rt *scriptedRuntime) OnContext(fn func(host.Theme)) {
	rt.themeFns = append(rt.themeFns, fn)
}

func (rt *scriptedRuntime) SetConfig(ctx context.Context, segment, version, content string) error {
	rt.mu.Lock()
	defer rt.mu.Unlock()
	rt.stored = content
	return nil
}

func (rt *scriptedRuntime) authorize(auth host.Authorization) {
	for _, fn := range rt.authFns {
		fn(auth)
	}
}

func (rt *scriptedRuntime) broadcastConfig(content string) {
	for _, fn := range rt.configFns {
		fn(content)
	}
}

func (rt *scriptedRuntime) switchTheme(theme host.Theme) {
	for _, fn := range rt.themeFns {
		fn(theme)
	}
}

func (rt *scriptedRuntime) storedConfig() string {
	rt.mu.Lock()
	defer rt.mu.Unlock()
	return rt.stored
}

// panelDisplay implements PanelRenderer for tests.
type panelDisplay struct {
	mu    sync.Mutex
	title string
	theme host.Theme
	state string
	rows  []leaderboard.Row
}

func (d *panelDisplay) set(state string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.state = state
}

func (d *panelDisplay) ShowRows(rows []leaderboard.Row, updatedAt time.Time) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.state = "rows"
	d.rows = rows
}

func (d *panelDisplay) ShowEmpty(updatedAt time.Time) { d.set("empty") }
func (d *panelDisplay) ShowNoData()                   { d.set("nodata") }
func (d *panelDisplay) ShowNotConfigured()            { d.set("notconfigured") }
func (d *panelDisplay) ShowError()                    { d.set("error") }

func (d *panelDisplay) SetTitle(title string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.title = title
}

func (d *panelDisplay) SetTheme(theme host.Theme) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.theme = theme
}

// configDisplay implements ConfigRenderer for tests.
type configDisplay struct {
	mu      sync.Mutex
	events  []string
	rewards []ebs.Reward
}

func (d *configDisplay) add(event string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.events = append(d.events, event)
}

func (d *configDisplay) SubscriptionPending()   { d.add("sub-pending") }
func (d *configDisplay) SubscriptionSucceeded() { d.add("sub-succeeded") }
func (d *configDisplay) SubscriptionFailed()    { d.add("sub-failed") }
func (d *configDisplay) AuthPending()           { d.add("auth-pending") }
func (d *configDisplay) AuthSucceeded()         { d.add("auth-succeeded") }
func (d *configDisplay) AuthFailed()            { d.add("auth-failed") }
func (d *configDisplay) ShowConnectPrompt()     { d.add("connect-prompt") }
func (d *configDisplay) ClearRewards()          { d.add("clear-rewards") }

func (d *configDisplay) ShowRewards(rewards []ebs.Reward) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.events = append(d.events, "rewards")
	d.rewards = rewards
}

func (d *configDisplay) snapshot() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]string, len(d.events))
	copy(out, d.events)
	return out
}

func newEBSServer(t *testing.T, handler http.HandlerFunc) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return srv
}
