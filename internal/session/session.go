package session

import (
	"errors"
	"sync"

	"github.com/jaedolph/verified-first/internal/host"
)

// ErrNotAuthorized is returned before the first authorization event arrives.
var ErrNotAuthorized = errors.New("not authorized yet")

// Credential is the bearer identity issued by the host runtime. It is
// replaced wholesale on every authorization event, never merged.
type Credential struct {
	BearerToken   string
	ClientID      string
	BroadcasterID string
}

// Session holds the current credential for a frame and fans authorization
// events out to registered listeners.
type Session struct {
	mu        sync.Mutex
	cred      Credential
	haveCred  bool
	listeners []func(Credential)
}

// New creates an empty session. Current fails until Authorize is called.
func New() *Session {
	return &Session{}
}

// Current returns the most recent credential, or ErrNotAuthorized if no
// authorization event has occurred yet.
func (s *Session) Current() (Credential, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.haveCred {
		return Credential{}, ErrNotAuthorized
	}
	return s.cred, nil
}

// OnCredential registers a listener that is invoked once per authorization
// event with the freshly issued credential.
func (s *Session) OnCredential(fn func(Credential)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners = append(s.listeners, fn)
}

// Authorize replaces the current credential and notifies every registered
// listener exactly once with the new value. It is the single entry point for
// host authorization events and may be called any number of times.
func (s *Session) Authorize(auth host.Authorization) {
	cred := Credential{
		BearerToken:   auth.Token,
		ClientID:      auth.ClientID,
		BroadcasterID: auth.ChannelID,
	}

	s.mu.Lock()
	s.cred = cred
	s.haveCred = true
	listeners := make([]func(Credential), len(s.listeners))
	copy(listeners, s.listeners)
	s.mu.Unlock()

	for _, fn := range listeners {
		fn(cred)
	}
}
