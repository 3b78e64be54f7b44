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

var authedSession = models.Session{Token: "tok1", Role: models.RoleAdmin, UserID: 1, Username: "root"}

func TestConsentBannerShowsWhenNotConsented(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(models.ConsentStatus{HasConsented: false})
	})
	g := NewComplianceGateway(client)

	if !g.ShouldShowConsentBanner(context.Background(), authedSession) {
		t.Fatalf("banner must show for authenticated user without consent")
	}
}

func TestConsentBannerHiddenWhenConsented(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(models.ConsentStatus{HasConsented: true})
	})
	g := NewComplianceGateway(client)

	if g.ShouldShowConsentBanner(context.Background(), authedSession) {
		t.Fatalf("banner must not show after a consent decision")
	}
}

func TestConsentBannerFailsClosed(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})
	g := NewComplianceGateway(client)

	if g.ShouldShowConsentBanner(context.Background(), authedSession) {
		t.Fatalf("banner must fail closed on fetch errors")
	}
}

func TestConsentBannerNeverForAnonymous(t *testing.T) {
	calls := 0
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
	})
	g := NewComplianceGateway(client)

	if g.ShouldShowConsentBanner(context.Background(), models.Anonymous) {
		t.Fatalf("banner must not show for anonymous sessions")
	}
	if calls != 0 {
		t.Fatalf("anonymous banner check must not hit the network")
	}
}

func TestRetentionDaysValidatedLocally(t *testing.T) {
	calls := 0
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		json.NewEncoder(w).Encode(models.RetentionPolicy{})
	})
	g := NewComplianceGateway(client)
	ctx := context.Background()

	for _, days := range []int{0, -1, 366, 1000} {
		if _, err := g.UpdateRetentionPolicy(ctx, days, true); !errors.Is(err, api.ErrInvalidInput) {
			t.Errorf("days %d: err = %v, want ErrInvalidInput", days, err)
		}
	}
	if calls != 0 {
		t.Fatalf("invalid retention days reached the network %d times", calls)
	}
}

func TestUpdateRetentionReturnsAuthoritativePolicy(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			RetentionDays int  `json:"retention_days"`
			Enabled       bool `json:"enabled"`
		}
		json.NewDecoder(r.Body).Decode(&body)
		// The server may adjust the draft, e.g. computing the purge date.
		json.NewEncoder(w).Encode(models.RetentionPolicy{
			RetentionDays: body.RetentionDays,
			Enabled:       body.Enabled,
			NextPurgeDate: "2026-09-30",
			LogsToDelete:  12,
		})
	})
	g := NewComplianceGateway(client)

	policy, err := g.UpdateRetentionPolicy(context.Background(), 90, true)
	if err != nil {
		t.Fatalf("UpdateRetentionPolicy: %v", err)
	}
	if policy.RetentionDays != 90 || !policy.Enabled || policy.NextPurgeDate != "2026-09-30" || policy.LogsToDelete != 12 {
		t.Fatalf("authoritative policy mismatch: %+v", policy)
	}
}

func TestActivityStatsQuery(t *testing.T) {
	var days string
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		days = r.URL.Query().Get("days")
		json.NewEncoder(w).Encode(models.ActivityStats{Days: 30})
	})
	g := NewComplianceGateway(client)

	stats, err := g.GetActivityStats(context.Background(), 30)
	if err != nil {
		t.Fatalf("GetActivityStats: %v", err)
	}
	if days != "30" || stats.Days != 30 {
		t.Fatalf("days param %q, stats %+v", days, stats)
	}
}
