// Package index defines the optional database-backed record of completed
// analyses, keyed per case for later review.
package index

import (
	"context"
	"time"
)

// Analysis is one completed composite analysis, stored as raw JSON alongside
// the case and report it belongs to.
type Analysis struct {
	ID         string    `json:"id"`
	CaseName   string    `json:"case_name"`
	Target     string    `json:"target"`
	Result     string    `json:"result_json"`
	ReportFile string    `json:"report_file,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

// Repository port (interface for persistence).
type Repository interface {
	Save(ctx context.Context, a *Analysis) error
	Paginate(ctx context.Context, caseName string, page, pageSize int) ([]*Analysis, error)
}
