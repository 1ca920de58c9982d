package ebs

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jaedolph/verified-first/internal/host"
	"github.com/jaedolph/verified-first/internal/session"
)

func authedSession() *session.Session {
	s := session.New()
	s.Authorize(host.Authorization{Token: "testtoken", ClientID: "client", ChannelID: "1234"})
	return s
}

func TestRewardsSendsAuthHeaders(t *testing.T) {
	var gotAuth, gotContentType string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotContentType = r.Header.Get("Content-Type")
		assert.Equal(t, "/rewards", r.URL.Path)
		w.Write([]byte(`[{"id":"r1","title":"First"},{"id":"r2","title":"Second"}]`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, authedSession(), nil)
	rewards, err := client.Rewards(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "Bearer testtoken", gotAuth)
	assert.Equal(t, "application/json", gotContentType)
	// Backend ordering is preserved, not re-sorted.
	require.Len(t, rewards, 2)
	assert.Equal(t, Reward{ID: "r1", Title: "First"}, rewards[0])
	assert.Equal(t, Reward{ID: "r2", Title: "Second"}, rewards[1])
}

func TestRewardsFetchError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "broadcaster is not authed yet", http.StatusForbidden)
	}))
	defer srv.Close()

	client := NewClient(srv.URL, authedSession(), nil)
	_, err := client.Rewards(context.Background())

	var fetchErr *FetchError
	require.ErrorAs(t, err, &fetchErr)
	assert.Equal(t, http.StatusForbidden, fetchErr.Status)
	assert.Contains(t, fetchErr.Body, "broadcaster is not authed yet")
}

func TestRewardsWithoutCredential(t *testing.T) {
	client := NewClient("http://localhost:0", session.New(), nil)
	_, err := client.Rewards(context.Background())
	assert.ErrorIs(t, err, session.ErrNotAuthorized)
}

func TestCheckAuth(t *testing.T) {
	status := http.StatusOK
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/auth/check", r.URL.Path)
		w.WriteHeader(status)
	}))
	defer srv.Close()

	client := NewClient(srv.URL, authedSession(), nil)
	assert.True(t, client.CheckAuth(context.Background()))

	status = http.StatusForbidden
	assert.False(t, client.CheckAuth(context.Background()))

	// Transport failures collapse to false as well.
	srv.Close()
	assert.False(t, client.CheckAuth(context.Background()))
}

func TestCreateEventSub(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/eventsub/create", r.URL.Path)
		assert.Equal(t, "reward1", r.URL.Query().Get("reward_id"))
		w.Write([]byte(`{"eventsub_id":"sub42"}`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, authedSession(), nil)
	id, err := client.CreateEventSub(context.Background(), "reward1")
	require.NoError(t, err)
	assert.Equal(t, "sub42", id)
}

func TestCreateEventSubError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "reward id is undefined", http.StatusBadRequest)
	}))
	defer srv.Close()

	client := NewClient(srv.URL, authedSession(), nil)
	_, err := client.CreateEventSub(context.Background(), "undefined")

	var subErr *SubscriptionError
	require.ErrorAs(t, err, &subErr)
	assert.Equal(t, http.StatusBadRequest, subErr.Status)
}

func TestFirstsWindowParams(t *testing.T) {
	var gotQuery map[string][]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query()
		w.Write([]byte(`{"user1":5}`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, authedSession(), nil)

	// Unbounded window sends no time params at all, not empty strings.
	_, err := client.Firsts(context.Background(), TimeWindow{})
	require.NoError(t, err)
	assert.NotContains(t, gotQuery, "start_time")
	assert.NotContains(t, gotQuery, "end_time")

	start := time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC)
	_, err = client.Firsts(context.Background(), TimeWindow{Start: &start})
	require.NoError(t, err)
	assert.Equal(t, []string{"2023-01-01T00:00:00Z"}, gotQuery["start_time"])
	assert.NotContains(t, gotQuery, "end_time")
}

func TestFirstsNotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "could not get firsts", http.StatusNotFound)
	}))
	defer srv.Close()

	client := NewClient(srv.URL, authedSession(), nil)
	_, err := client.Firsts(context.Background(), TimeWindow{})
	assert.ErrorIs(t, err, ErrNoFirsts)
}
