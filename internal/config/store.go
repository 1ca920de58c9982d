package config

import (
	"context"
	"errors"
	"sync"

	jsoniter "github.com/json-iterator/go"
	"go.uber.org/zap"

	"github.com/jaedolph/verified-first/internal/host"
)

var json = jsoniter.ConfigFastest

// ErrInvalidConfig indicates a broadcast config blob that could not be
// parsed. The store keeps its previous value when this happens.
var ErrInvalidConfig = errors.New("invalid broadcaster config")

// Defaults applied when the broadcaster has not set a value.
const (
	DefaultTitle     = "Verified First Chatters"
	DefaultTimeRange = "all_time"
)

// Recognized timeRange values.
const (
	TimeRangeMonth   = "month"
	TimeRangeYear    = "year"
	TimeRangeAllTime = "all_time"
)

// ValidTimeRange reports whether s is a recognized timeRange value. Anything
// else would be stored but read back as the all-time default, so writers
// should reject it up front.
func ValidTimeRange(s string) bool {
	switch s {
	case TimeRangeMonth, TimeRangeYear, TimeRangeAllTime:
		return true
	}
	return false
}

// Values is the broadcaster config as stored in the host config blob. Empty
// strings mean "unset"; defaults are applied by the accessors, not here.
type Values struct {
	Title     string `json:"title,omitempty"`
	RewardID  string `json:"rewardId,omitempty"`
	TimeRange string `json:"timeRange,omitempty"`
}

// partial mirrors Values with pointer fields so an absent key can be told
// apart from an empty one during hydration.
type partial struct {
	Title     *string `json:"title"`
	RewardID  *string `json:"rewardId"`
	TimeRange *string `json:"timeRange"`
}

// Store is a reconciled view over the broadcaster config blob broadcast by
// the host runtime. It holds the last good parsed value and writes merged
// updates back through the host's config write call.
type Store struct {
	mu      sync.Mutex
	values  Values
	runtime host.Runtime
	log     *zap.Logger
}

// NewStore creates an empty store that persists through rt.
func NewStore(rt host.Runtime, log *zap.Logger) *Store {
	if log == nil {
		log = zap.NewNop()
	}
	return &Store{runtime: rt, log: log}
}

// Hydrate parses raw as a JSON config blob and applies it additively: fields
// absent from the blob keep their currently held values. A parse failure or
// a non-object payload returns ErrInvalidConfig and leaves the previous
// value untouched.
func (s *Store) Hydrate(raw string) error {
	var p partial
	if err := json.UnmarshalFromString(raw, &p); err != nil {
		s.log.Warn("ignoring unparseable config broadcast", zap.Error(err))
		return ErrInvalidConfig
	}
	if p == (partial{}) && !looksLikeObject(raw) {
		s.log.Warn("ignoring non-object config broadcast", zap.String("content", raw))
		return ErrInvalidConfig
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.apply(p)
	return nil
}

// Merge shallow-merges the set fields of p into the latest local snapshot,
// then persists the serialized result through the host runtime. The external
// store is the durability point: persist failures are logged, the local
// value is kept either way.
func (s *Store) Merge(ctx context.Context, p Partial) {
	s.mu.Lock()
	s.apply(partial(p))
	merged := s.values
	s.mu.Unlock()

	content, err := json.MarshalToString(merged)
	if err != nil {
		s.log.Error("failed to serialize config", zap.Error(err))
		return
	}
	if err := s.runtime.SetConfig(ctx, host.ConfigSegmentBroadcaster, host.ConfigVersion, content); err != nil {
		s.log.Error("failed to persist config", zap.Error(err))
	}
}

// Partial is a set of config fields for Merge. Nil fields are left alone.
type Partial struct {
	Title     *string `json:"title"`
	RewardID  *string `json:"rewardId"`
	TimeRange *string `json:"timeRange"`
}

// Title returns the configured panel title, or the default display name when
// unset.
func (s *Store) Title() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.values.Title == "" {
		return DefaultTitle
	}
	return s.values.Title
}

// TimeRange returns the configured time range, falling back to all_time when
// unset or unrecognized.
func (s *Store) TimeRange() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	switch s.values.TimeRange {
	case TimeRangeMonth, TimeRangeYear, TimeRangeAllTime:
		return s.values.TimeRange
	default:
		return DefaultTimeRange
	}
}

// RewardID returns the configured reward id, empty if none has been chosen.
func (s *Store) RewardID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.values.RewardID
}

// Values returns a snapshot of the raw stored values without defaults.
func (s *Store) Values() Values {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.values
}

// apply copies the set fields of p onto the stored values. Callers hold mu.
func (s *Store) apply(p partial) {
	if p.Title != nil {
		s.values.Title = *p.Title
	}
	if p.RewardID != nil {
		s.values.RewardID = *p.RewardID
	}
	if p.TimeRange != nil {
		s.values.TimeRange = *p.TimeRange
	}
}

// looksLikeObject reports whether raw starts with a JSON object opener. An
// all-nil partial can mean either {} (valid, keeps everything) or a scalar
// like "5" or null (invalid).
func looksLikeObject(raw string) bool {
	for _, r := range raw {
		switch r {
		case ' ', '\t', '\n', '\r':
			continue
		case '{':
			return true
		default:
			return false
		}
	}
	return false
}
