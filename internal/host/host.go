package host

import "context"

// Authorization is the identity payload the host runtime delivers to a frame
// whenever the extension is (re-)authorized.
type Authorization struct {
	Token     string `json:"token"`
	ClientID  string `json:"clientId"`
	UserID    string `json:"userId"`
	ChannelID string `json:"channelId"`
}

// Theme is the binary light/dark signal from the host's context updates.
type Theme string

const (
	ThemeLight Theme = "light"
	ThemeDark  Theme = "dark"
)

// Config segment identifiers used when writing the broadcaster config blob.
const (
	ConfigSegmentBroadcaster = "broadcaster"
	ConfigVersion            = "1"
)

// Runtime is the extension host runtime as seen by a frame. Implementations
// deliver authorization, configuration and theme events and accept
// configuration writes. Callbacks may fire any number of times over the
// lifetime of a frame.
type Runtime interface {
	// OnAuthorized registers a callback for authorization events.
	OnAuthorized(fn func(Authorization))

	// OnConfigChanged registers a callback for broadcaster config updates.
	// The content string is the opaque JSON blob, possibly empty if no
	// config has ever been written for the channel.
	OnConfigChanged(fn func(content string))

	// SetConfig persists the broadcaster config blob for the given segment
	// and version. The write is broadcast back to all frames by the host.
	SetConfig(ctx context.Context, segment, version, content string) error

	// OnContext registers a callback for theme context updates.
	OnContext(fn func(Theme))
}
