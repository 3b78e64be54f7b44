package api

import (
	"context"
	"net/http"

	"github.com/otcheredev/hospital-dashboard/internal/models"
)

// LoginResponse is the first-step login reply. The backend always requires a
// second factor, so a reply without mfa_required is treated as unexpected.
type LoginResponse struct {
	MFARequired bool   `json:"mfa_required"`
	TempToken   string `json:"temp_token"`
}

// MFAVerifyResponse is the session-establishing reply to a code verification.
type MFAVerifyResponse struct {
	AccessToken string      `json:"access_token"`
	Role        models.Role `json:"role"`
	UserID      int         `json:"user_id"`
	Username    string      `json:"username"`
}

// Login performs the credential step of the two-step login.
func (c *Client) Login(ctx context.Context, usernameOrEmail, password string) (*LoginResponse, error) {
	body := map[string]string{
		"username_or_email": usernameOrEmail,
		"password":          password,
	}
	var resp LoginResponse
	if err := c.Do(ctx, http.MethodPost, "/api/auth/login", nil, body, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Register creates a new account.
func (c *Client) Register(ctx context.Context, username, email, password string) error {
	body := map[string]string{
		"username": username,
		"email":    email,
		"password": password,
	}
	return c.Do(ctx, http.MethodPost, "/api/auth/register", nil, body, nil)
}

// VerifyMFA exchanges the temp token and code for an access token.
func (c *Client) VerifyMFA(ctx context.Context, tempToken, code string) (*MFAVerifyResponse, error) {
	body := map[string]string{
		"temp_token": tempToken,
		"code":       code,
	}
	var resp MFAVerifyResponse
	if err := c.Do(ctx, http.MethodPost, "/api/auth/mfa-verify", nil, body, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Logout tells the backend to drop the token. Callers treat failures as
// non-fatal; the local session is cleared either way.
func (c *Client) Logout(ctx context.Context) error {
	return c.Do(ctx, http.MethodPost, "/api/auth/logout", nil, nil, nil)
}

// Me revalidates the current token and returns the account profile.
func (c *Client) Me(ctx context.Context) (*models.Profile, error) {
	var profile models.Profile
	if err := c.Do(ctx, http.MethodGet, "/api/auth/me", nil, nil, &profile); err != nil {
		return nil, err
	}
	return &profile, nil
}
