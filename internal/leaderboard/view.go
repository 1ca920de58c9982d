package leaderboard

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"

	"github.com/jaedolph/verified-first/internal/ebs"
)

// Renderer is the display surface the view draws on. Implementations range
// from a terminal to an HTML page; the view only decides which of these
// states to show.
type Renderer interface {
	// ShowRows displays the grouped leaderboard with a last-updated stamp.
	ShowRows(rows []Row, updatedAt time.Time)
	// ShowEmpty displays the "nobody yet" state: the backend answered but
	// listed no firsts.
	ShowEmpty(updatedAt time.Time)
	// ShowNoData displays the "no data yet" state (backend returned 404).
	ShowNoData()
	// ShowNotConfigured displays the "not configured / unknown error" state.
	ShowNotConfigured()
	// ShowError displays the generic failure state.
	ShowError()
}

// View fetches first counts for a time window and renders the aggregated
// result. Every failure is absorbed here: the view renders a message and
// logs, it never propagates errors to its caller.
type View struct {
	client   *ebs.Client
	renderer Renderer
	clock    clockwork.Clock
	log      *zap.Logger

	// gen orders overlapping refreshes: a fetch that finishes after a newer
	// one has started is discarded instead of clobbering the display.
	gen      atomic.Uint64
	renderMu sync.Mutex
}

// NewView creates a view over the given backend client and renderer.
func NewView(client *ebs.Client, renderer Renderer, clock clockwork.Clock, log *zap.Logger) *View {
	if log == nil {
		log = zap.NewNop()
	}
	return &View{
		client:   client,
		renderer: renderer,
		clock:    clock,
		log:      log,
	}
}

// Refresh fetches the firsts for window and renders the outcome. Overlapping
// calls are safe: only the refresh holding the newest generation token gets
// to touch the renderer.
func (v *View) Refresh(ctx context.Context, window ebs.TimeWindow) {
	gen := v.gen.Add(1)

	body, err := v.client.Firsts(ctx, window)

	v.renderMu.Lock()
	defer v.renderMu.Unlock()
	if v.gen.Load() != gen {
		v.log.Debug("discarding stale firsts response")
		return
	}

	if err != nil {
		v.renderFailure(err)
		return
	}

	entries, err := ParseFirsts(body)
	if err != nil {
		v.log.Error("failed to parse firsts response", zap.Error(err))
		v.renderer.ShowError()
		return
	}

	rows := Group(entries)
	if len(rows) == 0 {
		v.renderer.ShowEmpty(v.clock.Now())
		return
	}
	v.renderer.ShowRows(rows, v.clock.Now())
}

// renderFailure maps a fetch error to the matching display state.
func (v *View) renderFailure(err error) {
	if errors.Is(err, ebs.ErrNoFirsts) {
		v.renderer.ShowNoData()
		return
	}

	var fetchErr *ebs.FetchError
	if errors.As(err, &fetchErr) {
		v.log.Error("backend rejected firsts request",
			zap.Int("status", fetchErr.Status),
			zap.String("body", fetchErr.Body))
		v.renderer.ShowNotConfigured()
		return
	}

	v.log.Error("failed to get firsts", zap.Error(err))
	v.renderer.ShowError()
}
