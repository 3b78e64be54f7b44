package gateways

import (
	"context"
	"fmt"
	"net/http"

	"github.com/otcheredev/hospital-dashboard/internal/api"
	"github.com/otcheredev/hospital-dashboard/internal/authz"
	"github.com/otcheredev/hospital-dashboard/internal/models"
)

// UserGateway drives the user management endpoints. Every operation is gated
// on the manage-users capability.
type UserGateway struct {
	client *api.Client
}

// NewUserGateway creates a user gateway.
func NewUserGateway(client *api.Client) *UserGateway {
	return &UserGateway{client: client}
}

// List fetches all accounts.
func (g *UserGateway) List(ctx context.Context, role models.Role) ([]models.User, error) {
	if !authz.ForRole(role).ManageUsers {
		return nil, fmt.Errorf("role %q may not manage users: %w", role, api.ErrAuthorizationDenied)
	}

	var users []models.User
	if err := g.client.Do(ctx, http.MethodGet, "/api/users", nil, nil, &users); err != nil {
		return nil, fmt.Errorf("failed to fetch users: %w", err)
	}
	return users, nil
}

// UpdateRole changes an account's role.
func (g *UserGateway) UpdateRole(ctx context.Context, role models.Role, userID int, newRole models.Role) error {
	if !authz.ForRole(role).ManageUsers {
		return fmt.Errorf("role %q may not manage users: %w", role, api.ErrAuthorizationDenied)
	}

	path := fmt.Sprintf("/api/users/%d/role", userID)
	body := map[string]models.Role{"role": newRole}
	if err := g.client.Do(ctx, http.MethodPut, path, nil, body, nil); err != nil {
		return fmt.Errorf("failed to update role: %w", err)
	}
	return nil
}

// Activate re-enables a deactivated account.
func (g *UserGateway) Activate(ctx context.Context, role models.Role, userID int) error {
	if !authz.ForRole(role).ManageUsers {
		return fmt.Errorf("role %q may not manage users: %w", role, api.ErrAuthorizationDenied)
	}

	path := fmt.Sprintf("/api/users/%d/activate", userID)
	if err := g.client.Do(ctx, http.MethodPut, path, nil, nil, nil); err != nil {
		return fmt.Errorf("failed to activate user: %w", err)
	}
	return nil
}
