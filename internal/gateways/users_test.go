package gateways

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"

	"github.com/otcheredev/hospital-dashboard/internal/api"
	"github.com/otcheredev/hospital-dashboard/internal/models"
)

func TestUserManagementGatedOnAdmin(t *testing.T) {
	calls := 0
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		json.NewEncoder(w).Encode([]models.User{})
	})
	g := NewUserGateway(client)
	ctx := context.Background()

	for _, role := range []models.Role{models.RoleDoctor, models.RoleReceptionist, models.RoleUser, "unknown"} {
		if _, err := g.List(ctx, role); !errors.Is(err, api.ErrAuthorizationDenied) {
			t.Errorf("List as %q: err = %v, want ErrAuthorizationDenied", role, err)
		}
		if err := g.UpdateRole(ctx, role, 1, models.RoleDoctor); !errors.Is(err, api.ErrAuthorizationDenied) {
			t.Errorf("UpdateRole as %q: err = %v, want ErrAuthorizationDenied", role, err)
		}
		if err := g.Activate(ctx, role, 1); !errors.Is(err, api.ErrAuthorizationDenied) {
			t.Errorf("Activate as %q: err = %v, want ErrAuthorizationDenied", role, err)
		}
	}
	if calls != 0 {
		t.Fatalf("denied operations reached the network %d times", calls)
	}
}

func TestUserManagementPaths(t *testing.T) {
	var gotMethod, gotPath string
	var gotBody map[string]string
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotMethod, gotPath = r.Method, r.URL.Path
		gotBody = nil
		json.NewDecoder(r.Body).Decode(&gotBody)
		json.NewEncoder(w).Encode(map[string]string{})
	})
	g := NewUserGateway(client)
	ctx := context.Background()

	if err := g.UpdateRole(ctx, models.RoleAdmin, 5, models.RoleDoctor); err != nil {
		t.Fatalf("UpdateRole: %v", err)
	}
	if gotMethod != http.MethodPut || gotPath != "/api/users/5/role" || gotBody["role"] != "doctor" {
		t.Fatalf("UpdateRole sent %s %s %v", gotMethod, gotPath, gotBody)
	}

	if err := g.Activate(ctx, models.RoleAdmin, 9); err != nil {
		t.Fatalf("Activate: %v", err)
	}
	if gotMethod != http.MethodPut || gotPath != "/api/users/9/activate" {
		t.Fatalf("Activate sent %s %s", gotMethod, gotPath)
	}
}
