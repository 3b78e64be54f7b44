package models

// PatientRecord is a patient row as served by the backend. The backend decides
// how much is redacted based on the raw flag and the caller's role; the client
// never anonymizes locally.
type PatientRecord struct {
	ID        int    `json:"id"`
	Name      string `json:"name"`
	Contact   string `json:"contact"`
	Diagnosis string `json:"diagnosis"`
	CreatedAt string `json:"created_at,omitempty"`
}

// PatientInput is the payload for creating or updating a patient.
type PatientInput struct {
	Name      string `json:"name"`
	Contact   string `json:"contact"`
	Diagnosis string `json:"diagnosis"`
}

// User is an account row from the user management endpoints.
type User struct {
	ID       int    `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Role     Role   `json:"role"`
	IsActive bool   `json:"is_active"`
}

// Profile is the payload of the token revalidation endpoint.
type Profile struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Role     Role   `json:"role"`
	IsActive bool   `json:"is_active"`
}
