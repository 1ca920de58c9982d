package ebs

import (
	"errors"
	"fmt"
)

// ErrNoFirsts indicates the backend has no recorded firsts for the channel
// yet (HTTP 404 on the firsts endpoint). This is a non-error outcome for the
// panel, surfaced as a distinct "no data yet" state.
var ErrNoFirsts = errors.New("no firsts recorded yet")

// FetchError is returned when the backend rejects a read request. Body holds
// the error text returned by the backend.
type FetchError struct {
	Status int
	Body   string
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch failed: status=%d body=%q", e.Status, e.Body)
}

// SubscriptionError is returned when the backend rejects an eventsub
// creation request.
type SubscriptionError struct {
	Status int
	Body   string
}

func (e *SubscriptionError) Error() string {
	return fmt.Sprintf("eventsub creation failed: status=%d body=%q", e.Status, e.Body)
}
