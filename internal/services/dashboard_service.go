package services

import (
	"context"
	"sync"
	"time"

	"github.com/otcheredev/hospital-dashboard/internal/authz"
	"github.com/otcheredev/hospital-dashboard/internal/gateways"
	"github.com/otcheredev/hospital-dashboard/internal/models"
	"github.com/otcheredev/hospital-dashboard/internal/session"
	"github.com/rs/zerolog/log"
)

// DashboardSnapshot is the composed, role-filtered view of everything the
// active session may see. Fields outside the session's capabilities stay
// zero-valued.
type DashboardSnapshot struct {
	Session           models.Session          `json:"session"`
	Capabilities      authz.Capabilities      `json:"capabilities"`
	Patients          []models.PatientRecord  `json:"patients,omitempty"`
	Users             []models.User           `json:"users,omitempty"`
	AuditPage         models.AuditPage        `json:"audit_page,omitempty"`
	ActivityStats     *models.ActivityStats   `json:"activity_stats,omitempty"`
	ConsentStats      *models.ConsentStats    `json:"consent_stats,omitempty"`
	RetentionPolicy   *models.RetentionPolicy `json:"retention_policy,omitempty"`
	ShowConsentBanner bool                    `json:"show_consent_banner"`
	Meta              *models.Meta            `json:"meta,omitempty"`
	RefreshedAt       time.Time               `json:"refreshed_at"`
}

// DashboardService coordinates the gateways according to the capability set
// of the active session. It is the only component that decides which fetches
// run for which role.
type DashboardService struct {
	sessions   *session.Controller
	patients   *gateways.PatientGateway
	users      *gateways.UserGateway
	audit      *gateways.AuditBrowser
	compliance *gateways.ComplianceGateway
	exports    *gateways.ExportService
	statsDays  int

	mu          sync.Mutex
	rawMode     bool
	rawModeSubs []func(bool)
	snapshot    DashboardSnapshot
	nextSeq     uint64
	appliedSeq  uint64
}

// NewDashboardService wires the orchestrator.
func NewDashboardService(
	sessions *session.Controller,
	patients *gateways.PatientGateway,
	users *gateways.UserGateway,
	audit *gateways.AuditBrowser,
	compliance *gateways.ComplianceGateway,
	exports *gateways.ExportService,
	statsDays int,
) *DashboardService {
	if statsDays <= 0 {
		statsDays = 7
	}
	return &DashboardService{
		sessions:   sessions,
		patients:   patients,
		users:      users,
		audit:      audit,
		compliance: compliance,
		exports:    exports,
		statsDays:  statsDays,
	}
}

// RawMode reports the current raw-data toggle.
func (s *DashboardService) RawMode() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rawMode
}

// SetRawMode flips the raw-data toggle and notifies observers. The toggle is
// only a request: the capability mask in the gateways still decides what is
// actually sent to the backend.
func (s *DashboardService) SetRawMode(raw bool) {
	s.mu.Lock()
	if s.rawMode == raw {
		s.mu.Unlock()
		return
	}
	s.rawMode = raw
	subs := make([]func(bool), len(s.rawModeSubs))
	copy(subs, s.rawModeSubs)
	s.mu.Unlock()

	for _, fn := range subs {
		fn(raw)
	}
}

// OnRawModeChange registers an observer for raw-mode toggles.
func (s *DashboardService) OnRawModeChange(fn func(bool)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rawModeSubs = append(s.rawModeSubs, fn)
}

// Snapshot returns the most recently applied snapshot.
func (s *DashboardService) Snapshot() DashboardSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshot
}

// Refresh re-fetches everything the active role may see and applies the
// result. Each refresh carries a monotonic sequence number; a slower, earlier
// refresh that resolves after a newer one is discarded instead of overwriting
// fresher data. Individual fetch failures keep the previous value of that
// resource on screen. The previous snapshot is carried over only while the
// session is unchanged; a different identity starts from an empty snapshot so
// nothing fetched under the old capabilities survives the switch.
func (s *DashboardService) Refresh(ctx context.Context) DashboardSnapshot {
	s.mu.Lock()
	s.nextSeq++
	seq := s.nextSeq
	next := s.snapshot
	rawMode := s.rawMode
	s.mu.Unlock()

	sess := s.sessions.Current()
	caps := authz.ForRole(sess.Role)
	if next.Session != sess {
		next = DashboardSnapshot{}
	}
	next.Session = sess
	next.Capabilities = caps
	next.RefreshedAt = time.Now()

	if !sess.Authenticated() {
		next = DashboardSnapshot{Session: sess, Capabilities: caps, RefreshedAt: time.Now()}
		s.apply(seq, next)
		return next
	}

	if caps.ViewPatients {
		if patients, err := s.patients.List(ctx, sess.Role, rawMode); err != nil {
			log.Warn().Err(err).Msg("Failed to fetch patients")
		} else {
			next.Patients = patients
		}
	}

	if caps.ManageUsers {
		if users, err := s.users.List(ctx, sess.Role); err != nil {
			log.Warn().Err(err).Msg("Failed to fetch users")
		} else {
			next.Users = users
		}
	}

	if caps.ViewAuditLog {
		if page, err := s.audit.Fetch(ctx); err != nil {
			log.Warn().Err(err).Msg("Failed to fetch audit logs")
		} else {
			next.AuditPage = page
		}
	}

	if caps.ViewAnalytics {
		if stats, err := s.compliance.GetActivityStats(ctx, s.statsDays); err != nil {
			log.Warn().Err(err).Msg("Failed to fetch activity stats")
		} else {
			next.ActivityStats = stats
		}
		if stats, err := s.compliance.GetConsentStats(ctx); err != nil {
			log.Warn().Err(err).Msg("Failed to fetch consent stats")
		} else {
			next.ConsentStats = stats
		}
		if policy, err := s.compliance.GetRetentionPolicy(ctx); err != nil {
			log.Warn().Err(err).Msg("Failed to fetch retention policy")
		} else {
			next.RetentionPolicy = policy
		}
	}

	next.ShowConsentBanner = s.compliance.ShouldShowConsentBanner(ctx, sess)

	if meta, err := s.compliance.GetMeta(ctx); err != nil {
		log.Debug().Err(err).Msg("Failed to fetch meta")
	} else {
		next.Meta = meta
	}

	s.apply(seq, next)
	return next
}

// RefreshStats re-fetches only the polled aggregates (activity stats, consent
// stats, meta) without touching the rest of the snapshot.
func (s *DashboardService) RefreshStats(ctx context.Context) {
	sess := s.sessions.Current()
	if !sess.Authenticated() {
		return
	}
	caps := authz.ForRole(sess.Role)

	s.mu.Lock()
	s.nextSeq++
	seq := s.nextSeq
	next := s.snapshot
	s.mu.Unlock()

	if next.Session != sess {
		next = DashboardSnapshot{Session: sess, Capabilities: caps}
	}

	if caps.ViewAnalytics {
		if stats, err := s.compliance.GetActivityStats(ctx, s.statsDays); err == nil {
			next.ActivityStats = stats
		}
		if stats, err := s.compliance.GetConsentStats(ctx); err == nil {
			next.ConsentStats = stats
		}
	}
	if meta, err := s.compliance.GetMeta(ctx); err == nil {
		next.Meta = meta
	}
	next.RefreshedAt = time.Now()

	s.apply(seq, next)
}

// apply installs a snapshot unless a newer one already landed.
func (s *DashboardService) apply(seq uint64, snap DashboardSnapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if seq < s.appliedSeq {
		log.Debug().Uint64("seq", seq).Uint64("applied", s.appliedSeq).Msg("Discarding stale refresh")
		return
	}
	s.appliedSeq = seq
	s.snapshot = snap
}

// ExportCSV runs an export for the active session using the current raw-mode
// toggle.
func (s *DashboardService) ExportCSV(ctx context.Context, exportType string) (string, error) {
	sess := s.sessions.Current()
	return s.exports.ExportCSV(ctx, exportType, s.RawMode(), sess.Role)
}

// Anonymize redacts one patient (or all with nil) as the active session.
func (s *DashboardService) Anonymize(ctx context.Context, patientID *int) (string, error) {
	sess := s.sessions.Current()
	return s.patients.Anonymize(ctx, sess.Role, patientID)
}
