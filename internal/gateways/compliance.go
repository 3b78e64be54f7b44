package gateways

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/otcheredev/hospital-dashboard/internal/api"
	"github.com/otcheredev/hospital-dashboard/internal/models"
	"github.com/rs/zerolog/log"
)

// ComplianceGateway covers retention policy, GDPR consent and the aggregated
// statistics endpoints.
type ComplianceGateway struct {
	client *api.Client
}

// NewComplianceGateway creates a compliance gateway.
func NewComplianceGateway(client *api.Client) *ComplianceGateway {
	return &ComplianceGateway{client: client}
}

// GetRetentionPolicy fetches the authoritative retention policy.
func (g *ComplianceGateway) GetRetentionPolicy(ctx context.Context) (*models.RetentionPolicy, error) {
	var policy models.RetentionPolicy
	if err := g.client.Do(ctx, http.MethodGet, "/api/admin/retention", nil, nil, &policy); err != nil {
		return nil, fmt.Errorf("failed to fetch retention policy: %w", err)
	}
	return &policy, nil
}

// UpdateRetentionPolicy submits a draft policy. Days outside 1-365 fail
// locally; the server response is the new authoritative policy and should
// replace any local draft.
func (g *ComplianceGateway) UpdateRetentionPolicy(ctx context.Context, days int, enabled bool) (*models.RetentionPolicy, error) {
	if days < 1 || days > 365 {
		return nil, fmt.Errorf("retention days must be within 1-365: %w", api.ErrInvalidInput)
	}

	body := map[string]any{
		"retention_days": days,
		"enabled":        enabled,
	}
	var policy models.RetentionPolicy
	if err := g.client.Do(ctx, http.MethodPost, "/api/admin/retention", nil, body, &policy); err != nil {
		return nil, fmt.Errorf("failed to update retention policy: %w", err)
	}
	return &policy, nil
}

// GetConsentStatus fetches the caller's consent decision.
func (g *ComplianceGateway) GetConsentStatus(ctx context.Context) (*models.ConsentStatus, error) {
	var status models.ConsentStatus
	if err := g.client.Do(ctx, http.MethodGet, "/api/consent/status", nil, nil, &status); err != nil {
		return nil, fmt.Errorf("failed to fetch consent status: %w", err)
	}
	return &status, nil
}

// SetConsent records an accept or decline decision.
func (g *ComplianceGateway) SetConsent(ctx context.Context, accepted bool) error {
	body := map[string]bool{"accepted": accepted}
	if err := g.client.Do(ctx, http.MethodPost, "/api/consent/accept", nil, body, nil); err != nil {
		return fmt.Errorf("failed to save consent preference: %w", err)
	}
	return nil
}

// ShouldShowConsentBanner decides whether to prompt for consent: only for an
// authenticated session whose authoritative status says no decision was made.
// When the status cannot be fetched the banner fails closed rather than
// harassing the user on unknown state.
func (g *ComplianceGateway) ShouldShowConsentBanner(ctx context.Context, sess models.Session) bool {
	if !sess.Authenticated() {
		return false
	}

	status, err := g.GetConsentStatus(ctx)
	if err != nil {
		log.Debug().Err(err).Msg("Consent status unavailable, hiding banner")
		return false
	}
	return !status.HasConsented
}

// GetConsentStats fetches aggregated consent figures for the analytics panel.
func (g *ComplianceGateway) GetConsentStats(ctx context.Context) (*models.ConsentStats, error) {
	var stats models.ConsentStats
	if err := g.client.Do(ctx, http.MethodGet, "/api/admin/consent-stats", nil, nil, &stats); err != nil {
		return nil, fmt.Errorf("failed to fetch consent stats: %w", err)
	}
	return &stats, nil
}

// GetActivityStats fetches action aggregates over the given day window.
func (g *ComplianceGateway) GetActivityStats(ctx context.Context, days int) (*models.ActivityStats, error) {
	query := url.Values{}
	query.Set("days", strconv.Itoa(days))

	var stats models.ActivityStats
	if err := g.client.Do(ctx, http.MethodGet, "/api/stats/activity", query, nil, &stats); err != nil {
		return nil, fmt.Errorf("failed to fetch activity stats: %w", err)
	}
	return &stats, nil
}

// GetMeta fetches backend uptime and last-sync metadata.
func (g *ComplianceGateway) GetMeta(ctx context.Context) (*models.Meta, error) {
	var meta models.Meta
	if err := g.client.Do(ctx, http.MethodGet, "/api/meta", nil, nil, &meta); err != nil {
		return nil, fmt.Errorf("failed to fetch meta: %w", err)
	}
	return &meta, nil
}
