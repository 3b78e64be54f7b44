package services

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/otcheredev/hospital-dashboard/internal/api"
	"github.com/otcheredev/hospital-dashboard/internal/cache"
	"github.com/otcheredev/hospital-dashboard/internal/gateways"
	"github.com/otcheredev/hospital-dashboard/internal/models"
	"github.com/otcheredev/hospital-dashboard/internal/session"
)

type recordingBackend struct {
	mu    sync.Mutex
	paths map[string]int
}

func (rb *recordingBackend) handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rb.mu.Lock()
		rb.paths[r.URL.Path]++
		rb.mu.Unlock()

		switch r.URL.Path {
		case "/api/auth/me":
			json.NewEncoder(w).Encode(models.Profile{Username: "u", Role: models.RoleDoctor, IsActive: true})
		case "/api/patients":
			json.NewEncoder(w).Encode([]models.PatientRecord{{ID: 1, Name: "ANON-1"}})
		case "/api/users":
			json.NewEncoder(w).Encode([]models.User{{ID: 1}})
		case "/api/logs":
			json.NewEncoder(w).Encode(models.AuditPage{Total: 3})
		case "/api/stats/activity":
			json.NewEncoder(w).Encode(models.ActivityStats{Days: 7})
		case "/api/admin/consent-stats":
			json.NewEncoder(w).Encode(models.ConsentStats{TotalUsers: 9})
		case "/api/admin/retention":
			json.NewEncoder(w).Encode(models.RetentionPolicy{RetentionDays: 30, Enabled: true})
		case "/api/consent/status":
			json.NewEncoder(w).Encode(models.ConsentStatus{HasConsented: true})
		case "/api/meta":
			json.NewEncoder(w).Encode(models.Meta{UptimeSeconds: 10})
		default:
			http.NotFound(w, r)
		}
	})
}

func (rb *recordingBackend) count(path string) int {
	rb.mu.Lock()
	defer rb.mu.Unlock()
	return rb.paths[path]
}

func newDashboardFixture(t *testing.T, sess models.Session) (*DashboardService, *recordingBackend, *session.Store, *session.Controller) {
	t.Helper()

	rb := &recordingBackend{paths: make(map[string]int)}
	srv := httptest.NewServer(rb.handler())
	t.Cleanup(srv.Close)

	backend := cache.NewMemoryStore()
	t.Cleanup(func() { backend.Close() })

	store := session.NewStore(backend)
	client := api.NewClient(srv.URL, store, 5*time.Second)
	sessions := session.NewController(store, client)

	ctx := context.Background()
	if sess.Authenticated() {
		if err := store.Save(ctx, sess); err != nil {
			t.Fatalf("Save: %v", err)
		}
	}
	sessions.Bootstrap(ctx)

	svc := NewDashboardService(
		sessions,
		gateways.NewPatientGateway(client),
		gateways.NewUserGateway(client),
		gateways.NewAuditBrowser(client),
		gateways.NewComplianceGateway(client),
		gateways.NewExportService(client, t.TempDir()),
		7,
	)
	return svc, rb, store, sessions
}

func TestRefreshFetchesOnlyPermittedResources(t *testing.T) {
	doctor := models.Session{Token: "tok", Role: models.RoleDoctor, UserID: 7, Username: "dr"}
	svc, rb, _, _ := newDashboardFixture(t, doctor)

	snap := svc.Refresh(context.Background())

	if len(snap.Patients) != 1 {
		t.Fatalf("doctor must see the patient list, got %+v", snap.Patients)
	}
	if snap.Users != nil || snap.ActivityStats != nil || snap.RetentionPolicy != nil {
		t.Fatalf("doctor snapshot contains privileged data: %+v", snap)
	}

	for _, path := range []string{"/api/users", "/api/logs", "/api/stats/activity", "/api/admin/retention", "/api/admin/consent-stats"} {
		if rb.count(path) != 0 {
			t.Errorf("doctor refresh called %s", path)
		}
	}
	if rb.count("/api/patients") != 1 {
		t.Errorf("patients endpoint called %d times", rb.count("/api/patients"))
	}
}

func TestRefreshAdminFetchesEverything(t *testing.T) {
	admin := models.Session{Token: "tok", Role: models.RoleAdmin, UserID: 1, Username: "root"}
	svc, rb, _, _ := newDashboardFixture(t, admin)

	snap := svc.Refresh(context.Background())

	if len(snap.Patients) != 1 || len(snap.Users) != 1 || snap.AuditPage.Total != 3 {
		t.Fatalf("admin snapshot incomplete: %+v", snap)
	}
	if snap.ActivityStats == nil || snap.ConsentStats == nil || snap.RetentionPolicy == nil || snap.Meta == nil {
		t.Fatalf("admin analytics missing: %+v", snap)
	}
	if snap.ShowConsentBanner {
		t.Fatalf("banner must not show when consent was given")
	}

	for _, path := range []string{"/api/patients", "/api/users", "/api/logs", "/api/stats/activity", "/api/admin/retention"} {
		if rb.count(path) != 1 {
			t.Errorf("%s called %d times", path, rb.count(path))
		}
	}
}

func TestRefreshAnonymousFetchesNothing(t *testing.T) {
	svc, rb, _, _ := newDashboardFixture(t, models.Anonymous)

	snap := svc.Refresh(context.Background())

	if snap.Patients != nil || snap.Users != nil || snap.ShowConsentBanner {
		t.Fatalf("anonymous snapshot must be empty: %+v", snap)
	}
	rb.mu.Lock()
	defer rb.mu.Unlock()
	for path, n := range rb.paths {
		if n > 0 {
			t.Errorf("anonymous refresh called %s", path)
		}
	}
}

func TestRefreshAfterRoleChangeDropsPrivilegedData(t *testing.T) {
	admin := models.Session{Token: "tok-a", Role: models.RoleAdmin, UserID: 1, Username: "root"}
	svc, _, store, sessions := newDashboardFixture(t, admin)
	ctx := context.Background()

	snap := svc.Refresh(ctx)
	if len(snap.Users) != 1 || snap.RetentionPolicy == nil || snap.AuditPage.Total != 3 {
		t.Fatalf("admin refresh incomplete: %+v", snap)
	}

	// The kiosk case: a doctor logs in on the same client after the admin.
	doctor := models.Session{Token: "tok-b", Role: models.RoleDoctor, UserID: 7, Username: "dr"}
	if err := store.Save(ctx, doctor); err != nil {
		t.Fatalf("Save: %v", err)
	}
	sessions.Bootstrap(ctx)

	snap = svc.Refresh(ctx)
	if snap.Session != doctor {
		t.Fatalf("session = %+v, want the doctor", snap.Session)
	}
	if len(snap.Patients) != 1 {
		t.Fatalf("doctor must still see the patient list, got %+v", snap.Patients)
	}
	if snap.Users != nil || snap.RetentionPolicy != nil || snap.ActivityStats != nil ||
		snap.ConsentStats != nil || snap.AuditPage.Total != 0 {
		t.Fatalf("doctor snapshot retains the admin's data: %+v", snap)
	}
	if got := svc.Snapshot(); got.Users != nil || got.RetentionPolicy != nil {
		t.Fatalf("applied snapshot retains the admin's data: %+v", got)
	}
}

func TestStatsPollAfterRoleChangeDropsPrivilegedData(t *testing.T) {
	admin := models.Session{Token: "tok-a", Role: models.RoleAdmin, UserID: 1, Username: "root"}
	svc, _, store, sessions := newDashboardFixture(t, admin)
	ctx := context.Background()

	svc.Refresh(ctx)

	doctor := models.Session{Token: "tok-b", Role: models.RoleDoctor, UserID: 7, Username: "dr"}
	if err := store.Save(ctx, doctor); err != nil {
		t.Fatalf("Save: %v", err)
	}
	sessions.Bootstrap(ctx)

	// The stats poller may fire before the next full refresh.
	svc.RefreshStats(ctx)

	snap := svc.Snapshot()
	if snap.Session != doctor {
		t.Fatalf("session = %+v, want the doctor", snap.Session)
	}
	if snap.Users != nil || snap.RetentionPolicy != nil || snap.ActivityStats != nil ||
		snap.ConsentStats != nil || snap.AuditPage.Total != 0 {
		t.Fatalf("polled snapshot retains the admin's data: %+v", snap)
	}
}

func TestStaleRefreshDiscarded(t *testing.T) {
	svc, _, _, _ := newDashboardFixture(t, models.Anonymous)

	newer := DashboardSnapshot{RefreshedAt: time.Now(), AuditPage: models.AuditPage{Total: 99}}
	svc.apply(5, newer)

	stale := DashboardSnapshot{RefreshedAt: time.Now().Add(-time.Minute)}
	svc.apply(4, stale)

	if svc.Snapshot().AuditPage.Total != 99 {
		t.Fatalf("stale refresh overwrote a newer snapshot")
	}
}

func TestRawModeObserver(t *testing.T) {
	svc, _, _, _ := newDashboardFixture(t, models.Anonymous)

	var got []bool
	svc.OnRawModeChange(func(raw bool) { got = append(got, raw) })

	svc.SetRawMode(true)
	svc.SetRawMode(true) // no change, no notification
	svc.SetRawMode(false)

	if len(got) != 2 || got[0] != true || got[1] != false {
		t.Fatalf("observer calls = %v, want [true false]", got)
	}
	if svc.RawMode() {
		t.Fatalf("raw mode should be off")
	}
}
