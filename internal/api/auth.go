package api

import "context"

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type registerRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Username string `json:"username,omitempty"`
}

// Login exchanges credentials for a token bundle.
func (c *Client) Login(ctx context.Context, email, password string) (TokenResponse, error) {
	var out TokenResponse
	err := c.postJSON(ctx, "/api/v1/auth/login", loginRequest{Email: email, Password: password}, &out)
	return out, err
}

// Register creates an account and returns its first token bundle.
func (c *Client) Register(ctx context.Context, email, password, username string) (TokenResponse, error) {
	var out TokenResponse
	err := c.postJSON(ctx, "/api/v1/auth/register", registerRequest{
		Email:    email,
		Password: password,
		Username: username,
	}, &out)
	return out, err
}

// Refresh trades a refresh token for a fresh token bundle. The backend
// reads the refresh token from the Authorization header, so the client's
// own access token is not used for this call.
func (c *Client) Refresh(ctx context.Context, refreshToken string) (TokenResponse, error) {
	var out TokenResponse
	err := c.WithToken(refreshToken).postJSON(ctx, "/api/v1/auth/refresh", nil, &out)
	return out, err
}

// Me returns the account behind the client's token.
func (c *Client) Me(ctx context.Context) (User, error) {
	var out User
	err := c.getJSON(ctx, "/api/v1/auth/me", &out)
	return out, err
}
