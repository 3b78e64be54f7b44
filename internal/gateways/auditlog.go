package gateways

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"sync"

	"github.com/otcheredev/hospital-dashboard/internal/api"
	"github.com/otcheredev/hospital-dashboard/internal/models"
)

// DefaultPageSize is the fixed audit log page size.
const DefaultPageSize = 50

// AuditFilters narrows an audit log query. Empty fields are omitted from the
// request.
type AuditFilters struct {
	Role     string
	UserID   string
	Action   string
	DateFrom string
	DateTo   string
}

// AuditBrowser is a stateful, paginated view over the audit log. Changing any
// filter resets the page to 1; navigation is clamped between 1 and the last
// page derived from the most recent total.
type AuditBrowser struct {
	client *api.Client

	mu       sync.Mutex
	filters  AuditFilters
	page     int
	pageSize int
	total    int
}

// NewAuditBrowser creates a browser positioned on page 1.
func NewAuditBrowser(client *api.Client) *AuditBrowser {
	return &AuditBrowser{client: client, page: 1, pageSize: DefaultPageSize}
}

// SetFilters replaces the filter set. Any change resets to page 1 so a
// narrower result set can never leave the browser on a now-invalid page.
func (b *AuditBrowser) SetFilters(f AuditFilters) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if f == b.filters {
		return
	}
	b.filters = f
	b.page = 1
	b.total = 0
}

// SetPage moves to a page, clamped to [1, last page].
func (b *AuditBrowser) SetPage(page int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.page = b.clamp(page)
}

// NextPage advances one page, clamped to the last page.
func (b *AuditBrowser) NextPage() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.page = b.clamp(b.page + 1)
}

// PrevPage goes back one page, never below 1.
func (b *AuditBrowser) PrevPage() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.page = b.clamp(b.page - 1)
}

// Page returns the current page number.
func (b *AuditBrowser) Page() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.page
}

// TotalPages returns the last valid page for the most recent total, at
// least 1.
func (b *AuditBrowser) TotalPages() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.maxPage()
}

// clamp requires b.mu held.
func (b *AuditBrowser) clamp(page int) int {
	if page < 1 {
		return 1
	}
	if max := b.maxPage(); page > max {
		return max
	}
	return page
}

// maxPage requires b.mu held. Before the first fetch the total is unknown and
// the last page defaults to 1, so navigation waits for a fetch to move
// forward.
func (b *AuditBrowser) maxPage() int {
	if b.total <= 0 {
		return 1
	}
	max := (b.total + b.pageSize - 1) / b.pageSize
	if max < 1 {
		max = 1
	}
	return max
}

// Fetch retrieves the current page and records the new total. If the total
// shrank underneath the current page, the page is clamped for the next call.
func (b *AuditBrowser) Fetch(ctx context.Context) (models.AuditPage, error) {
	b.mu.Lock()
	query := url.Values{}
	query.Set("page", strconv.Itoa(b.page))
	query.Set("page_size", strconv.Itoa(b.pageSize))
	setIfPresent(query, "role", b.filters.Role)
	setIfPresent(query, "user_id", b.filters.UserID)
	setIfPresent(query, "action", b.filters.Action)
	setIfPresent(query, "date_from", b.filters.DateFrom)
	setIfPresent(query, "date_to", b.filters.DateTo)
	b.mu.Unlock()

	var page models.AuditPage
	if err := b.client.Do(ctx, http.MethodGet, "/api/logs", query, nil, &page); err != nil {
		return models.AuditPage{}, fmt.Errorf("failed to fetch audit logs: %w", err)
	}

	b.mu.Lock()
	b.total = page.Total
	b.page = b.clamp(b.page)
	b.mu.Unlock()

	return page, nil
}

func setIfPresent(query url.Values, key, value string) {
	if value != "" {
		query.Set(key, value)
	}
}
