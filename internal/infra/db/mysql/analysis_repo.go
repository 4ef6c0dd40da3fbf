package mysql

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

// Save inserts an analysis record
func (r *AnalysisRepository) Save(ctx context.Context, a *domain.Analysis) error {
	const q = `
INSERT INTO recon_analysis
  (id, case_name, target, result_json, report_file, created_at)
VALUES (?,?,?,?,?,?)
ON DUPLICATE KEY UPDATE
  case_name=VALUES(case_name), target=VALUES(target), result_json=VALUES(result_json), report_file=VALUES(report_file);
`
	// Ensure non-nullable fields have safe defaults
	caseName := stringOrDash(a.CaseName)
	target := stringOrDash(a.Target)
	result := a.Result
	if strings.TrimSpace(result) == "" {
		// result_json column requires valid JSON; use empty object
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
WHERE case_name=?
ORDER BY created_at DESC, id DESC
LIMIT ? OFFSET ?;
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
