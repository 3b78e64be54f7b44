package gateways

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/otcheredev/hospital-dashboard/internal/api"
	"github.com/otcheredev/hospital-dashboard/internal/authz"
	"github.com/otcheredev/hospital-dashboard/internal/models"
)

// PatientGateway fetches and mutates patient records.
type PatientGateway struct {
	client *api.Client
}

// NewPatientGateway creates a patient gateway.
func NewPatientGateway(client *api.Client) *PatientGateway {
	return &PatientGateway{client: client}
}

// List fetches patient records. The raw flag actually sent is the requested
// flag masked by the role's raw-view capability: a role without it never
// forwards raw=true, whatever the caller asked for.
func (g *PatientGateway) List(ctx context.Context, role models.Role, rawRequested bool) ([]models.PatientRecord, error) {
	raw := rawRequested && authz.ForRole(role).ViewPatientsRaw

	query := url.Values{}
	query.Set("raw", strconv.FormatBool(raw))

	var patients []models.PatientRecord
	if err := g.client.Do(ctx, http.MethodGet, "/api/patients", query, nil, &patients); err != nil {
		return nil, fmt.Errorf("failed to fetch patients: %w", err)
	}
	return patients, nil
}

// Create registers a new patient. Gated on the add-patient capability.
func (g *PatientGateway) Create(ctx context.Context, role models.Role, input models.PatientInput) (*models.PatientRecord, error) {
	if !authz.ForRole(role).AddPatient {
		return nil, fmt.Errorf("role %q may not add patients: %w", role, api.ErrAuthorizationDenied)
	}

	var created models.PatientRecord
	if err := g.client.Do(ctx, http.MethodPost, "/api/patients", nil, input, &created); err != nil {
		return nil, fmt.Errorf("failed to create patient: %w", err)
	}
	return &created, nil
}

// Update edits an existing patient. Gated on the edit-patient capability.
func (g *PatientGateway) Update(ctx context.Context, role models.Role, id int, input models.PatientInput) error {
	if !authz.ForRole(role).EditPatient {
		return fmt.Errorf("role %q may not edit patients: %w", role, api.ErrAuthorizationDenied)
	}

	path := fmt.Sprintf("/api/patients/%d", id)
	if err := g.client.Do(ctx, http.MethodPut, path, nil, input, nil); err != nil {
		return fmt.Errorf("failed to update patient: %w", err)
	}
	return nil
}

// Anonymize redacts one patient, or every patient when patientID is nil.
// Gated on the anonymize capability.
func (g *PatientGateway) Anonymize(ctx context.Context, role models.Role, patientID *int) (string, error) {
	if !authz.ForRole(role).Anonymize {
		return "", fmt.Errorf("role %q may not anonymize patients: %w", role, api.ErrAuthorizationDenied)
	}

	body := map[string]*int{"patient_id": patientID}
	var resp struct {
		Message string `json:"message"`
	}
	if err := g.client.Do(ctx, http.MethodPost, "/api/patients/anonymize", nil, body, &resp); err != nil {
		return "", fmt.Errorf("failed to anonymize: %w", err)
	}
	return resp.Message, nil
}
