package postgres

import (
	"context"
	"errors"

	"fsqa-audit-service/internal/domain"
	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"
)

// CatalogLoader reads a facility's applicable modules and questions from Postgres.
type CatalogLoader struct {
	pool *pgxpool.Pool
}

func NewCatalogLoader(pool *pgxpool.Pool) *CatalogLoader {
	return &CatalogLoader{pool: pool}
}

const catalogQuery = `
SELECT m.id, m.code, m.name, m.sort_order,
       q.id, q.text, q.points, q.is_auto_fail, q.sort_order
FROM facility_modules fm
JOIN audit_modules m ON m.id = fm.module_id
LEFT JOIN audit_questions q ON q.module_id = m.id
WHERE fm.facility_id = $1 AND fm.is_applicable
ORDER BY m.sort_order, m.id, q.sort_order, q.id`

func (l *CatalogLoader) LoadCatalog(ctx context.Context, facilityID int64) (domain.Catalog, error) {
	catalog := domain.Catalog{}
	err := l.pool.QueryRow(ctx, `SELECT id, name FROM facilities WHERE id=$1`, facilityID).
		Scan(&catalog.Facility.ID, &catalog.Facility.Name)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Catalog{}, domain.NotFound("facility", facilityID)
	}
	if err != nil {
		return domain.Catalog{}, domain.Persistence("load facility", err)
	}

	rows, err := l.pool.Query(ctx, catalogQuery, facilityID)
	if err != nil {
		return domain.Catalog{}, domain.Persistence("load catalog", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			m          domain.Module
			qID        *int64
			qText      *string
			qPoints    *int
			qAutoFail  *bool
			qSortOrder *int
		)
		if err := rows.Scan(&m.ID, &m.Code, &m.Name, &m.SortOrder, &qID, &qText, &qPoints, &qAutoFail, &qSortOrder); err != nil {
			return domain.Catalog{}, domain.Persistence("scan catalog", err)
		}

		// rows arrive grouped by module
		n := len(catalog.Modules)
		if n == 0 || catalog.Modules[n-1].ID != m.ID {
			catalog.Modules = append(catalog.Modules, m)
			n++
		}
		if qID == nil {
			continue
		}
		catalog.Modules[n-1].Questions = append(catalog.Modules[n-1].Questions, domain.Question{
			ID:         *qID,
			ModuleID:   m.ID,
			Text:       deref(qText),
			Points:     deref(qPoints),
			IsAutoFail: deref(qAutoFail),
			SortOrder:  deref(qSortOrder),
		})
	}
	if err := rows.Err(); err != nil {
		return domain.Catalog{}, domain.Persistence("load catalog", err)
	}
	return catalog, nil
}

func deref[T any](p *T) T {
	var zero T
	if p == nil {
		return zero
	}
	return *p
}
