// Package oauth implements the popup-based authorization grant that connects
// a broadcaster's Twitch account to the backend.
package oauth

import (
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/oauth2"
)

// SentinelAuthSuccess is the payload the backend's redirect page posts back
// to the opener on a successful grant. Any other payload means failure.
const SentinelAuthSuccess = "AUTH_SUCCESSFUL"

// ScopeReadRedemptions is the single scope the extension requests.
const ScopeReadRedemptions = "channel:read:redemptions"

var twitchEndpoint = oauth2.Endpoint{
	AuthURL:  "https://id.twitch.tv/oauth2/authorize",
	TokenURL: "https://id.twitch.tv/oauth2/token",
}

var (
	// ErrPopupBlocked indicates the authorization window could not be
	// opened. The caller must clear any in-progress indicator.
	ErrPopupBlocked = errors.New("could not open authorization window")

	// ErrFlowInProgress indicates Start was called while a previous grant
	// is still awaiting the user.
	ErrFlowInProgress = errors.New("authorization already in progress")
)

// State of the authorization flow.
type State int

const (
	StateIdle State = iota
	StateAwaitingUser
	StateSucceeded
	StateFailed
)

// Window is an open authorization popup. Messages yields payloads posted
// back by the redirect page; the channel closes when the window is closed
// without posting anything.
type Window interface {
	Messages() <-chan string
	Close()
}

// Opener opens authorization windows. The production implementation is the
// loopback Relay; tests substitute fakes.
type Opener interface {
	Open(authURL string) (Window, error)
}

// Flow drives one popup authorization grant at a time:
// Idle -> AwaitingUser -> Succeeded or Failed.
type Flow struct {
	redirectURL string
	opener      Opener
	log         *zap.Logger

	mu    sync.Mutex
	state State
}

// NewFlow creates a flow that sends users through the fixed redirect target.
func NewFlow(redirectURL string, opener Opener, log *zap.Logger) *Flow {
	if log == nil {
		log = zap.NewNop()
	}
	return &Flow{
		redirectURL: redirectURL,
		opener:      opener,
		state:       StateIdle,
		log:         log,
	}
}

// State returns the current flow state.
func (f *Flow) State() State {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

// Start opens the authorization window and waits for the redirect page to
// post its one completion message. onDone is invoked exactly once per
// successful Start, with the grant outcome. The first message decides: the
// success sentinel means Succeeded, anything else, including the window
// closing silently, means Failed. A second Start while a grant is awaiting
// the user is rejected with ErrFlowInProgress; a blocked window is reported
// immediately with ErrPopupBlocked and leaves the flow idle.
func (f *Flow) Start(clientID string, onDone func(success bool)) error {
	f.mu.Lock()
	if f.state == StateAwaitingUser {
		f.mu.Unlock()
		return ErrFlowInProgress
	}
	f.state = StateAwaitingUser
	f.mu.Unlock()

	cfg := oauth2.Config{
		ClientID:    clientID,
		RedirectURL: f.redirectURL,
		Scopes:      []string{ScopeReadRedemptions},
		Endpoint:    twitchEndpoint,
	}

	window, err := f.opener.Open(cfg.AuthCodeURL(""))
	if err != nil {
		f.mu.Lock()
		f.state = StateIdle
		f.mu.Unlock()
		return fmt.Errorf("%w: %v", ErrPopupBlocked, err)
	}

	go f.await(window, onDone)
	return nil
}

// await consumes the first (and only) message from the window. Reading the
// channel exactly once is what makes completion idempotent: a second message
// is never received.
func (f *Flow) await(window Window, onDone func(success bool)) {
	msg, posted := <-window.Messages()
	window.Close()

	success := posted && msg == SentinelAuthSuccess
	f.mu.Lock()
	if success {
		f.state = StateSucceeded
	} else {
		f.state = StateFailed
	}
	f.mu.Unlock()

	if success {
		f.log.Info("authorization succeeded")
	} else {
		f.log.Info("authorization failed", zap.String("message", msg))
	}
	onDone(success)
}
