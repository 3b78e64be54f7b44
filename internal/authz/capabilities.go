package authz

import "github.com/otcheredev/hospital-dashboard/internal/models"

// Capabilities is the fixed set of permitted views and actions for a role.
// Replaces scattered role string comparisons with one typed value.
type Capabilities struct {
	ViewProfile     bool
	ViewPatients    bool
	ViewPatientsRaw bool
	ManageUsers     bool
	ViewAuditLog    bool
	ViewAnalytics   bool
	AddPatient      bool
	EditPatient     bool
	Anonymize       bool
}

var capabilityTable = map[models.Role]Capabilities{
	models.RoleAdmin: {
		ViewProfile:     true,
		ViewPatients:    true,
		ViewPatientsRaw: true,
		ManageUsers:     true,
		ViewAuditLog:    true,
		ViewAnalytics:   true,
		AddPatient:      true,
		EditPatient:     true,
		Anonymize:       true,
	},
	models.RoleDoctor: {
		ViewProfile:  true,
		ViewPatients: true,
	},
	models.RoleReceptionist: {
		ViewProfile:  true,
		ViewPatients: true,
		AddPatient:   true,
		EditPatient:  true,
	},
	models.RoleUser: {
		ViewProfile: true,
	},
}

// ForRole resolves the capability set for a role. Unknown roles get the
// profile-only user set: the resolver fails safe, never open.
func ForRole(role models.Role) Capabilities {
	caps, ok := capabilityTable[role]
	if !ok {
		return capabilityTable[models.RoleUser]
	}
	return caps
}
