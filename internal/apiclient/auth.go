package apiclient

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/newsroomkit/newsroomkit/internal/core"
)

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginData struct {
	Token string    `json:"token"`
	User  core.User `json:"user"`
}

// Login authenticates against the CMS and bootstraps the session store with
// the credential and the user profile.
func (c *Client) Login(ctx context.Context, email, password string) (*core.User, error) {
	env, err := c.Post(ctx, PathLogin, loginRequest{Email: email, Password: password})
	if err != nil {
		return nil, err
	}

	var data loginData
	if err := env.Decode(&data); err != nil {
		return nil, fmt.Errorf("decode login response: %w", err)
	}
	if data.Token == "" {
		return nil, fmt.Errorf("login response carries no token")
	}

	if err := c.tokens.SetCredential(data.Token); err != nil {
		return nil, fmt.Errorf("store credential: %w", err)
	}
	rawUser, err := json.Marshal(data.User)
	if err == nil {
		_ = c.tokens.store.Set(KeyUserData, string(rawUser))
	}
	return &data.User, nil
}

// Logout drops the local session. The backend holds no server-side session
// for bearer tokens, so this is purely local.
func (c *Client) Logout() {
	c.tokens.ClearSession()
}

// CurrentUser returns the profile cached at login time, if any.
func (c *Client) CurrentUser() (*core.User, bool) {
	raw, ok := c.tokens.store.Get(KeyUserData)
	if !ok || raw == "" {
		return nil, false
	}
	var user core.User
	if err := json.Unmarshal([]byte(raw), &user); err != nil {
		return nil, false
	}
	return &user, true
}
