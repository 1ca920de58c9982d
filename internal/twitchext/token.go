package twitchext

import (
	"encoding/base64"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/jonboulle/clockwork"
)

// RoleBroadcaster is the role claim carried by self-issued extension tokens.
const RoleBroadcaster = "broadcaster"

// Claims are the extension JWT claims the backend and the Twitch extension
// API verify: the channel the token is scoped to and the role of its bearer.
type Claims struct {
	UserID    string `json:"user_id"`
	ChannelID string `json:"channel_id"`
	Role      string `json:"role"`
	jwt.RegisteredClaims
}

// decodeSecret decodes the base64-encoded extension secret issued by the
// Twitch developer console.
func decodeSecret(secret string) ([]byte, error) {
	key, err := base64.StdEncoding.DecodeString(secret)
	if err != nil {
		return nil, fmt.Errorf("extension secret is not valid base64: %w", err)
	}
	return key, nil
}

// signToken issues an extension JWT for the given channel, signed with the
// extension secret.
func signToken(key []byte, channelID string, ttl time.Duration, clock clockwork.Clock) (string, error) {
	now := clock.Now()
	claims := &Claims{
		UserID:    channelID,
		ChannelID: channelID,
		Role:      RoleBroadcaster,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(key)
	if err != nil {
		return "", fmt.Errorf("failed to sign extension token: %w", err)
	}
	return signed, nil
}
