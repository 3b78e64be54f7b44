package models

// RetentionPolicy controls automatic purging of audit log records. Edits are
// held in a draft copy until submitted; the server response replaces the
// draft with the authoritative policy.
type RetentionPolicy struct {
	RetentionDays int    `json:"retention_days"`
	Enabled       bool   `json:"enabled"`
	NextPurgeDate string `json:"next_purge_date,omitempty"`
	LogsToDelete  int    `json:"logs_to_delete,omitempty"`
}

// ConsentStatus is the per-user GDPR consent decision.
type ConsentStatus struct {
	HasConsented bool `json:"has_consented"`
}

// ConsentStats is the aggregated consent view for the analytics panel.
type ConsentStats struct {
	ConsentPercentage float64 `json:"consent_percentage"`
	TotalUsers        int     `json:"total_users"`
	ConsentedUsers    int     `json:"consented_users"`
	LastUpdated       string  `json:"last_updated"`
}

// ActivityStats is the aggregated action counts for the analytics panel.
type ActivityStats struct {
	Days          int            `json:"days"`
	ActionsPerDay map[string]int `json:"actions_per_day"`
	ActionsByRole map[string]int `json:"actions_by_role"`
	ActionsByType map[string]int `json:"actions_by_type"`
}

// Meta is the backend uptime / last-sync payload polled for the footer.
type Meta struct {
	UptimeSeconds int64  `json:"uptime_seconds"`
	LastSyncTime  string `json:"last_sync_time"`
}
