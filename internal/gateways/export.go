package gateways

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"time"

	"github.com/otcheredev/hospital-dashboard/internal/api"
	"github.com/otcheredev/hospital-dashboard/internal/authz"
	"github.com/otcheredev/hospital-dashboard/internal/metrics"
	"github.com/otcheredev/hospital-dashboard/internal/models"
	"github.com/rs/zerolog/log"
)

// ExportService requests CSV exports from the backend and writes them into
// the local download directory.
type ExportService struct {
	client *api.Client
	dir    string

	mu       sync.Mutex
	lastSync time.Time
}

// NewExportService creates an export service writing into dir.
func NewExportService(client *api.Client, dir string) *ExportService {
	return &ExportService{client: client, dir: dir}
}

// ExportCSV downloads one export and returns the written file path. The raw
// flag is masked by the role's raw-view capability exactly like the patient
// list. The file is written via temp file and rename, so a failed download
// never clobbers a previous export.
func (s *ExportService) ExportCSV(ctx context.Context, exportType string, rawRequested bool, role models.Role) (string, error) {
	raw := rawRequested && authz.ForRole(role).ViewPatientsRaw

	query := url.Values{}
	query.Set("type", exportType)
	query.Set("raw", strconv.FormatBool(raw))

	blob, _, err := s.client.DoBlob(ctx, http.MethodGet, "/api/export", query)
	if err != nil {
		metrics.ExportResult(exportType, "error")
		return "", fmt.Errorf("csv export failed: %w", err)
	}

	if err := os.MkdirAll(s.dir, 0755); err != nil {
		metrics.ExportResult(exportType, "error")
		return "", fmt.Errorf("failed to create export dir: %w", err)
	}

	name := fmt.Sprintf("%s_export_%s.csv", exportType, time.Now().UTC().Format("2006-01-02"))
	path := filepath.Join(s.dir, name)
	tmp := path + ".tmp"

	if err := os.WriteFile(tmp, blob, 0644); err != nil {
		metrics.ExportResult(exportType, "error")
		return "", fmt.Errorf("failed to write export file: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		metrics.ExportResult(exportType, "error")
		return "", fmt.Errorf("failed to finalize export file: %w", err)
	}

	s.mu.Lock()
	s.lastSync = time.Now()
	s.mu.Unlock()

	metrics.ExportResult(exportType, "ok")
	log.Info().Str("type", exportType).Str("path", path).Bool("raw", raw).Msg("CSV export downloaded")
	return path, nil
}

// LastSync returns when the most recent export completed.
func (s *ExportService) LastSync() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastSync
}
