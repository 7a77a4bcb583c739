package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"portfolio/api/database"
	"portfolio/api/models"
)

type SQLVisitorRegistry struct {
	db      *sql.DB
	dialect database.Dialect
	now     func() time.Time
}

func NewSQLVisitorRegistry(client *database.DBClient) *SQLVisitorRegistry {
	return &SQLVisitorRegistry{db: client.DB, dialect: client.Dialect, now: time.Now}
}

const visitorColumns = `id, visitor_id, ip_address, user_agent, first_visit, last_visit, visit_count, pages_visited, is_active`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanVisitor(row rowScanner) (*models.Visitor, error) {
	var (
		v                    models.Visitor
		ipAddress, userAgent sql.NullString
		pages                string
	)
	if err := row.Scan(&v.ID, &v.VisitorID, &ipAddress, &userAgent, &v.FirstVisit, &v.LastVisit, &v.VisitCount, &pages, &v.IsActive); err != nil {
		return nil, err
	}
	v.IPAddress = fromNullString(ipAddress)
	v.UserAgent = fromNullString(userAgent)
	v.FirstVisit = v.FirstVisit.UTC()
	v.LastVisit = v.LastVisit.UTC()
	list, err := decodeList(pages)
	if err != nil {
		return nil, err
	}
	v.PagesVisited = list
	return &v, nil
}

// selectForUpdate locks the visitor row on Postgres; SQLite serializes writers already.
func (r *SQLVisitorRegistry) selectForUpdate() string {
	q := `SELECT ` + visitorColumns + ` FROM visitors WHERE visitor_id = ?`
	if r.dialect == database.Postgres {
		q += ` FOR UPDATE`
	}
	return r.dialect.Rebind(q)
}

func (r *SQLVisitorRegistry) save(ctx context.Context, tx *sql.Tx, v *models.Visitor) error {
	pages, err := encodeList(v.PagesVisited)
	if err != nil {
		return err
	}
	_, err = tx.ExecContext(ctx, r.dialect.Rebind(`
		UPDATE visitors
		SET ip_address = ?, user_agent = ?, last_visit = ?, visit_count = ?, pages_visited = ?, is_active = ?
		WHERE id = ?
	`), nullString(v.IPAddress), nullString(v.UserAgent), v.LastVisit, v.VisitCount, pages, v.IsActive, v.ID)
	if err != nil {
		return unavailable("update visitor", err)
	}
	return nil
}

func (r *SQLVisitorRegistry) Track(ctx context.Context, req models.VisitRequest) (_ *models.Visitor, err error) {
	now := r.now().UTC()

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, unavailable("begin track", err)
	}
	defer func() {
		if err != nil {
			tx.Rollback()
		}
	}()

	// visit_count starts at 0 so the shared update path below counts the first visit too.
	_, err = tx.ExecContext(ctx, r.dialect.Rebind(`
		INSERT INTO visitors (visitor_id, ip_address, user_agent, first_visit, last_visit, visit_count, pages_visited, is_active)
		VALUES (?, ?, ?, ?, ?, 0, '[]', 'true')
		ON CONFLICT (visitor_id) DO NOTHING
	`), req.VisitorID, nullString(models.StringPtr(req.IPAddress)), nullString(models.StringPtr(req.UserAgent)), now, now)
	if err != nil {
		return nil, unavailable("insert visitor", err)
	}

	v, err := scanVisitor(tx.QueryRowContext(ctx, r.selectForUpdate(), req.VisitorID))
	if err != nil {
		return nil, unavailable("select visitor", err)
	}

	touch(v, now, req.Page)
	v.VisitCount++
	v.IsActive = "true"
	if req.IPAddress != "" {
		v.IPAddress = models.StringPtr(req.IPAddress)
	}
	if req.UserAgent != "" {
		v.UserAgent = models.StringPtr(req.UserAgent)
	}
	if err = r.save(ctx, tx, v); err != nil {
		return nil, err
	}
	if err = tx.Commit(); err != nil {
		return nil, unavailable("commit track", err)
	}
	return v, nil
}

func (r *SQLVisitorRegistry) Touch(ctx context.Context, visitorID, page string) (_ *models.Visitor, err error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, unavailable("begin touch", err)
	}
	defer func() {
		if err != nil {
			tx.Rollback()
		}
	}()

	v, err := scanVisitor(tx.QueryRowContext(ctx, r.selectForUpdate(), visitorID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("visitor %s: %w", visitorID, ErrNotFound)
		}
		return nil, unavailable("select visitor", err)
	}

	touch(v, r.now().UTC(), page)
	if err = r.save(ctx, tx, v); err != nil {
		return nil, err
	}
	if err = tx.Commit(); err != nil {
		return nil, unavailable("commit touch", err)
	}
	return v, nil
}

func (r *SQLVisitorRegistry) End(ctx context.Context, visitorID string) (*models.Visitor, error) {
	v, err := scanVisitor(r.db.QueryRowContext(ctx, r.dialect.Rebind(`
		UPDATE visitors SET is_active = 'false' WHERE visitor_id = ?
		RETURNING `+visitorColumns), visitorID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("visitor %s: %w", visitorID, ErrNotFound)
		}
		return nil, unavailable("end visitor session", err)
	}
	return v, nil
}

func (r *SQLVisitorRegistry) Get(ctx context.Context, visitorID string) (*models.Visitor, error) {
	v, err := scanVisitor(r.db.QueryRowContext(ctx, r.dialect.Rebind(`SELECT `+visitorColumns+` FROM visitors WHERE visitor_id = ?`), visitorID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("visitor %s: %w", visitorID, ErrNotFound)
		}
		return nil, unavailable("get visitor", err)
	}
	return v, nil
}

func (r *SQLVisitorRegistry) Active(ctx context.Context) ([]models.Visitor, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+visitorColumns+` FROM visitors WHERE is_active = 'true' ORDER BY id`)
	if err != nil {
		return nil, unavailable("query active visitors", err)
	}
	defer rows.Close()

	results := []models.Visitor{}
	for rows.Next() {
		v, err := scanVisitor(rows)
		if err != nil {
			return nil, unavailable("scan visitor", err)
		}
		results = append(results, *v)
	}
	if err := rows.Err(); err != nil {
		return nil, unavailable("iterate visitors", err)
	}
	return results, nil
}

func (r *SQLVisitorRegistry) Counts(ctx context.Context) (int64, int64, error) {
	var total, active int64
	err := r.db.QueryRowContext(ctx, `
		SELECT COUNT(*), COALESCE(SUM(CASE WHEN is_active = 'true' THEN 1 ELSE 0 END), 0)
		FROM visitors
	`).Scan(&total, &active)
	if err != nil {
		return 0, 0, unavailable("count visitors", err)
	}
	return total, active, nil
}
