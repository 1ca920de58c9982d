package twitchext

import (
	"fmt"

	"github.com/nicklaw5/helix/v2"
)

// NewHelixClient creates a Helix client authenticated with an app access
// token, for API calls that extension tokens cannot make.
func NewHelixClient(clientID, clientSecret string) (*helix.Client, error) {
	client, err := helix.NewClient(&helix.Options{
		ClientID:     clientID,
		ClientSecret: clientSecret,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create helix client: %w", err)
	}

	resp, err := client.RequestAppAccessToken([]string{})
	if err != nil {
		return nil, fmt.Errorf("failed to get app access token: %w", err)
	}
	if resp.Error != "" {
		return nil, fmt.Errorf("failed to get app access token: %s: %s", resp.Error, resp.ErrorMessage)
	}
	client.SetAppAccessToken(resp.Data.AccessToken)
	return client, nil
}

// ResolveChannelID looks up the numeric id of a channel from its login name.
func ResolveChannelID(client *helix.Client, login string) (string, error) {
	resp, err := client.GetUsers(&helix.UsersParams{Logins: []string{login}})
	if err != nil {
		return "", fmt.Errorf("failed to look up channel %q: %w", login, err)
	}
	if resp.Error != "" {
		return "", fmt.Errorf("failed to look up channel %q: %s: %s", login, resp.Error, resp.ErrorMessage)
	}
	if len(resp.Data.Users) == 0 {
		return "", fmt.Errorf("no channel found for login %q", login)
	}
	return resp.Data.Users[0].ID, nil
}
