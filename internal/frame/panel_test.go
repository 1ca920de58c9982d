package frame

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jaedolph/verified-first/internal/config"
	"github.com/jaedolph/verified-first/internal/host"
	"github.com/jaedolph/verified-first/internal/leaderboard"
)

func TestPanelFetchesOnAuthorization(t *testing.T) {
	srv := newEBSServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/firsts", r.URL.Path)
		assert.Equal(t, "Bearer frametoken", r.Header.Get("Authorization"))
		w.Write([]byte(`{"user1":5,"user2":2}`))
	})

	rt := &scriptedRuntime{}
	display := &panelDisplay{}
	NewPanel(rt, srv.URL, display, clockwork.NewFakeClock(), nil)

	// Nothing happens before the host authorizes the frame.
	assert.Empty(t, display.state)

	rt.authorize(host.Authorization{Token: "frametoken", ChannelID: "1234"})

	assert.Equal(t, "rows", display.state)
	require.Len(t, display.rows, 2)
	assert.Equal(t, leaderboard.Row{Count: 5, Users: []string{"user1"}}, display.rows[0])
}

func TestPanelTitleFollowsConfigBroadcast(t *testing.T) {
	srv := newEBSServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{}`))
	})

	rt := &scriptedRuntime{}
	display := &panelDisplay{}
	NewPanel(rt, srv.URL, display, clockwork.NewFakeClock(), nil)

	assert.Equal(t, config.DefaultTitle, display.title)

	rt.broadcastConfig(`{"title":"Speedy Chatters"}`)
	assert.Equal(t, "Speedy Chatters", display.title)

	// A bad broadcast keeps the previous title rather than resetting it.
	rt.broadcastConfig("not json")
	assert.Equal(t, "Speedy Chatters", display.title)

	// An empty broadcast means no config exists and is ignored.
	rt.broadcastConfig("")
	assert.Equal(t, "Speedy Chatters", display.title)
}

func TestPanelUsesConfiguredTimeRange(t *testing.T) {
	var gotStart []string
	srv := newEBSServer(t, func(w http.ResponseWriter, r *http.Request) {
		gotStart = append(gotStart, r.URL.Query().Get("start_time"))
		w.Write([]byte(`{}`))
	})

	rt := &scriptedRuntime{}
	display := &panelDisplay{}
	clock := clockwork.NewFakeClockAt(time.Date(2023, 7, 15, 0, 0, 0, 0, time.UTC))
	panel := NewPanel(rt, srv.URL, display, clock, nil)

	rt.broadcastConfig(`{"timeRange":"month"}`)
	rt.authorize(host.Authorization{Token: "token", ChannelID: "1234"})

	require.Len(t, gotStart, 1)
	assert.Equal(t, "2023-07-01T00:00:00Z", gotStart[0])

	// Viewer switches to all-time: no bounds are sent.
	panel.ShowRange(context.Background(), config.TimeRangeAllTime)
	require.Len(t, gotStart, 2)
	assert.Empty(t, gotStart[1])
}

func TestPanelThemeSignal(t *testing.T) {
	srv := newEBSServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{}`))
	})

	rt := &scriptedRuntime{}
	display := &panelDisplay{}
	NewPanel(rt, srv.URL, display, clockwork.NewFakeClock(), nil)

	rt.switchTheme(host.ThemeDark)
	assert.Equal(t, host.ThemeDark, display.theme)

	rt.switchTheme(host.ThemeLight)
	assert.Equal(t, host.ThemeLight, display.theme)
}
