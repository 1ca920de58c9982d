package leaderboard

import (
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/jaedolph/verified-first/internal/config"
	"github.com/jaedolph/verified-first/internal/ebs"
)

// WindowForRange maps a configured time range name to the window the backend
// is queried with. The month and year presets start at the beginning of the
// current month/year in UTC and are open-ended; everything else, including
// all_time, is fully unbounded.
func WindowForRange(timeRange string, clock clockwork.Clock) ebs.TimeWindow {
	now := clock.Now().UTC()

	switch timeRange {
	case config.TimeRangeMonth:
		start := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
		return ebs.TimeWindow{Start: &start}
	case config.TimeRangeYear:
		start := time.Date(now.Year(), time.January, 1, 0, 0, 0, 0, time.UTC)
		return ebs.TimeWindow{Start: &start}
	default:
		return ebs.TimeWindow{}
	}
}
