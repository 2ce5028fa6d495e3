package api

import (
	"context"
	"fmt"

	"github.com/nhle/boardsync/internal/model"
)

// FetchSnapshot downloads the full dataset visible to the session.
func (c *Client) FetchSnapshot(ctx context.Context) (model.Snapshot, error) {
	var snap model.Snapshot
	if err := c.get(ctx, "/data/", &snap); err != nil {
		return model.Snapshot{}, err
	}
	return snap, nil
}

// Login exchanges credentials for an access token.
func (c *Client) Login(ctx context.Context, email, password string) (string, error) {
	var resp struct {
		Access string `json:"access"`
	}
	body := map[string]string{"email": email, "password": password}
	if err := c.post(ctx, "/token/", body, &resp); err != nil {
		return "", err
	}
	if resp.Access == "" {
		return "", fmt.Errorf("login response carried no access token")
	}
	return resp.Access, nil
}

// Me returns the user the session belongs to.
func (c *Client) Me(ctx context.Context) (model.User, error) {
	var u model.User
	err := c.get(ctx, "/users/me/", &u)
	return u, err
}

// RegisterPushToken records a device push token for the session's user.
func (c *Client) RegisterPushToken(ctx context.Context, token, platform string) error {
	return c.post(ctx, "/push-tokens/", map[string]string{"token": token, "platform": platform}, nil)
}

// UnregisterPushToken removes a device push token.
func (c *Client) UnregisterPushToken(ctx context.Context, token string) error {
	return c.post(ctx, "/push-tokens/unregister/", map[string]string{"token": token}, nil)
}
