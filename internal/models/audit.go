package models

// AuditEntry is a single audit log row.
type AuditEntry struct {
	ID        int    `json:"id"`
	UserID    int    `json:"user_id"`
	Username  string `json:"username,omitempty"`
	Role      Role   `json:"role,omitempty"`
	Action    string `json:"action"`
	Detail    string `json:"detail,omitempty"`
	Timestamp string `json:"timestamp"`
}

// AuditPage is one page of audit log results together with the total match
// count used to derive the last valid page.
type AuditPage struct {
	Logs  []AuditEntry `json:"logs"`
	Total int          `json:"total"`
}
