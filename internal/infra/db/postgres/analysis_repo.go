package postgres

import (
	"context"
	"database/sql"
	"strings"
	"time"

	domain "github.com/rizaldyaw/socmint/internal/domain/index"
)

type AnalysisRepository struct {
	db *sql.DB
}

func NewAnalysisRepository(db *sql.DB) *AnalysisRepository {
	return &AnalysisRepository{db: db}
}

// Save inserts or updates an analysis record
func (r *AnalysisRepository) Save(ctx context.Context, a *domain.Analysis) error {
	const q = `
INSERT INTO recon_analysis
  (id, case_name, target, result_json, report_file, created_at)
VALUES ($1,$2,$3,$4,$5,$6)
ON CONFLICT (id) DO UPDATE SET
  case_name=EXCLUDED.case_name,
  target=EXCLUDED.target,
  result_json=EXCLUDED.result_json,
  report_file=EXCLUDED.report_file;
`
	caseName := stringOrDash(a.CaseName)
	target := stringOrDash(a.Target)
	result := a.Result
	if strings.TrimSpace(result) == "" {
		result = "{}"
	}
	createdAt := a.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}
	_, err := r.db.ExecContext(ctx, q, a.ID, caseName, target, result, a.ReportFile, createdAt)
	return err
}

// Paginate returns a page of analysis records ordered by created_at desc
func (r *AnalysisRepository) Paginate(ctx context.Context, caseName string, page, pageSize int) ([]*domain.Analysis, error) {
	if page <= 0 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = 20
	}
	offset := (page - 1) * pageSize

	const q = `
SELECT id, case_name, target, result_json, report_file, created_at
FROM recon_analysis
WHERE case_name=$1
ORDER BY created_at DESC, id DESC
LIMIT $2 OFFSET $3;
`
	rows, err := r.db.QueryContext(ctx, q, caseName, pageSize, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*domain.Analysis
	for rows.Next() {
		var a domain.Analysis
		var created time.Time
		if err := rows.Scan(&a.ID, &a.CaseName, &a.Target, &a.Result, &a.ReportFile, &created); err != nil {
			return nil, err
		}
		a.CreatedAt = created
		out = append(out, &a)
	}
	return out, rows.Err()
}

// Latest returns the most recent analysis for a case, or nil when none exist.
func (r *AnalysisRepository) Latest(ctx context.Context, caseName string) (*domain.Analysis, error) {
	const q = `
SELECT id, case_name, target, result_json, report_file, created_at
FROM recon_analysis
WHERE case_name=$1
ORDER BY created_at DESC, id DESC
LIMIT 1;`
	row := r.db.QueryRowContext(ctx, q, caseName)
	var a domain.Analysis
	var created time.Time
	if err := row.Scan(&a.ID, &a.CaseName, &a.Target, &a.Result, &a.ReportFile, &created); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	a.CreatedAt = created
	return &a, nil
}

// stringOrDash returns "-" when the input is empty/whitespace
func stringOrDash(s string) string {
	if strings.TrimSpace(s) == "" {
		return "-"
	}
	return s
}
