package config

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jaedolph/verified-first/internal/host"
)

// fakeRuntime records config writes and can replay them as broadcasts.
type fakeRuntime struct {
	configFns []func(string)
	writes    []string
	setErr    error
}

func (f *fakeRuntime) OnAuthorized(fn func(host.Authorization)) {}

func (f *fakeRuntime) OnConfigChanged(fn func(string)) {
	f.configFns = append(f.configFns, fn)
}

func (f *fakeRuntime) SetConfig(ctx context.Context, segment, version, content string) error {
	f.writes = append(f.writes, content)
	return f.setErr
}

func (f *fakeRuntime) OnContext(fn func(host.Theme)) {}

func TestHydrateReplacesValues(t *testing.T) {
	s := NewStore(&fakeRuntime{}, nil)

	err := s.Hydrate(`{"title":"My Firsts","rewardId":"reward1","timeRange":"month"}`)
	require.NoError(t, err)

	assert.Equal(t, "My Firsts", s.Title())
	assert.Equal(t, "reward1", s.RewardID())
	assert.Equal(t, "month", s.TimeRange())
}

func TestHydrateInvalidJSONKeepsPreviousValue(t *testing.T) {
	s := NewStore(&fakeRuntime{}, nil)
	require.NoError(t, s.Hydrate(`{"title":"Keep Me"}`))

	err := s.Hydrate("not json")
	assert.ErrorIs(t, err, ErrInvalidConfig)
	assert.Equal(t, "Keep Me", s.Title())
}

func TestHydrateNonObjectKeepsPreviousValue(t *testing.T) {
	s := NewStore(&fakeRuntime{}, nil)
	require.NoError(t, s.Hydrate(`{"rewardId":"reward1"}`))

	for _, raw := range []string{"null", "5", `"string"`, ""} {
		err := s.Hydrate(raw)
		assert.ErrorIs(t, err, ErrInvalidConfig, "raw=%q", raw)
		assert.Equal(t, "reward1", s.RewardID(), "raw=%q", raw)
	}
}

func TestHydratePartialBlobIsAdditive(t *testing.T) {
	s := NewStore(&fakeRuntime{}, nil)
	require.NoError(t, s.Hydrate(`{"title":"My Firsts","rewardId":"reward1"}`))

	// A partial broadcast must not clear fields it does not mention.
	require.NoError(t, s.Hydrate(`{"timeRange":"year"}`))

	assert.Equal(t, "My Firsts", s.Title())
	assert.Equal(t, "reward1", s.RewardID())
	assert.Equal(t, "year", s.TimeRange())
}

func TestMergeIsAdditive(t *testing.T) {
	rt := &fakeRuntime{}
	s := NewStore(rt, nil)

	rewardID := "R1"
	s.Merge(context.Background(), Partial{RewardID: &rewardID})
	title := "X"
	s.Merge(context.Background(), Partial{Title: &title})

	assert.Equal(t, "R1", s.RewardID())
	assert.Equal(t, "X", s.Title())

	require.Len(t, rt.writes, 2)
	assert.JSONEq(t, `{"rewardId":"R1"}`, rt.writes[0])
	assert.JSONEq(t, `{"rewardId":"R1","title":"X"}`, rt.writes[1])
}

func TestMergeKeepsLocalValueWhenPersistFails(t *testing.T) {
	rt := &fakeRuntime{setErr: errors.New("write failed")}
	s := NewStore(rt, nil)

	title := "Still Here"
	s.Merge(context.Background(), Partial{Title: &title})

	assert.Equal(t, "Still Here", s.Title())
}

func TestDefaults(t *testing.T) {
	s := NewStore(&fakeRuntime{}, nil)

	assert.Equal(t, DefaultTitle, s.Title())
	assert.Equal(t, TimeRangeAllTime, s.TimeRange())
	assert.Empty(t, s.RewardID())

	// Unrecognized time ranges fall back to all_time.
	require.NoError(t, s.Hydrate(`{"timeRange":"fortnight"}`))
	assert.Equal(t, TimeRangeAllTime, s.TimeRange())
}

func TestValidTimeRange(t *testing.T) {
	assert.True(t, ValidTimeRange(TimeRangeMonth))
	assert.True(t, ValidTimeRange(TimeRangeYear))
	assert.True(t, ValidTimeRange(TimeRangeAllTime))

	assert.False(t, ValidTimeRange(""))
	assert.False(t, ValidTimeRange("monthly"))
	assert.False(t, ValidTimeRange("yearly"))
}
