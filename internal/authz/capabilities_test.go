package authz

import (
	"testing"

	"github.com/otcheredev/hospital-dashboard/internal/models"
)

func TestAdminHasFullSet(t *testing.T) {
	caps := ForRole(models.RoleAdmin)
	if !caps.ViewPatients || !caps.ViewPatientsRaw || !caps.ManageUsers ||
		!caps.ViewAuditLog || !caps.ViewAnalytics || !caps.AddPatient ||
		!caps.EditPatient || !caps.Anonymize {
		t.Fatalf("admin capability set incomplete: %+v", caps)
	}
}

func TestDoctorIsReadOnlyAnonymized(t *testing.T) {
	caps := ForRole(models.RoleDoctor)
	if !caps.ViewPatients {
		t.Fatalf("doctor must view patients")
	}
	if caps.ViewPatientsRaw || caps.AddPatient || caps.EditPatient ||
		caps.Anonymize || caps.ManageUsers || caps.ViewAuditLog || caps.ViewAnalytics {
		t.Fatalf("doctor has capabilities beyond anonymized viewing: %+v", caps)
	}
}

func TestReceptionistManagesPatientsOnly(t *testing.T) {
	caps := ForRole(models.RoleReceptionist)
	if !caps.ViewPatients || !caps.AddPatient || !caps.EditPatient {
		t.Fatalf("receptionist missing patient management: %+v", caps)
	}
	if caps.ViewPatientsRaw || caps.Anonymize || caps.ManageUsers || caps.ViewAuditLog || caps.ViewAnalytics {
		t.Fatalf("receptionist has admin capabilities: %+v", caps)
	}
}

func TestUnknownRoleFailsSafe(t *testing.T) {
	for _, role := range []models.Role{"", "superadmin", "ADMIN", "nurse"} {
		caps := ForRole(role)
		if caps != ForRole(models.RoleUser) {
			t.Errorf("role %q: got %+v, want the minimal user set", role, caps)
		}
		if caps.ViewPatientsRaw || caps.ManageUsers || caps.Anonymize {
			t.Errorf("role %q resolved to privileged capabilities", role)
		}
	}
}

func TestEveryRoleHasNonEmptySet(t *testing.T) {
	for _, role := range []models.Role{models.RoleAdmin, models.RoleDoctor, models.RoleReceptionist, models.RoleUser} {
		if !ForRole(role).ViewProfile {
			t.Errorf("role %q maps to an empty capability set", role)
		}
	}
}
