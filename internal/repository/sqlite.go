package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	_ "modernc.org/sqlite"

	"github.com/rescuelink/disaster-response/internal/models"
)

type SQLiteDB struct {
	db *sql.DB
}

func NewSQLiteDB(path string) (*SQLiteDB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("error opening database: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("error while pinging database: %w", err)
	}

	s := &SQLiteDB{
		db: db,
	}
	if err := s.migrate(); err != nil {
		return nil, fmt.Errorf("error while migrating to database: %w", err)
	}

	return s, nil
}

func (s *SQLiteDB) migrate() error {
	schema := `
		CREATE TABLE IF NOT EXISTS reports (
			id TEXT PRIMARY KEY,
			source TEXT NOT NULL,
			title TEXT NOT NULL,
			text TEXT,
			summary TEXT,
			link TEXT,
			location TEXT,
			disaster_type TEXT NOT NULL,
			status TEXT NOT NULL,
			image_path TEXT,
			image_url TEXT,
			timestamp DATETIME NOT NULL
		);

		CREATE TABLE IF NOT EXISTS ngos (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			location TEXT,
			specialization TEXT,
			contact TEXT
		);

		CREATE INDEX IF NOT EXISTS idx_reports_status ON reports(status);
		CREATE INDEX IF NOT EXISTS idx_reports_timestamp ON reports(timestamp);
		CREATE INDEX IF NOT EXISTS idx_reports_link ON reports(link);
  	`

	_, err := s.db.Exec(schema)
	return err
}

func (s *SQLiteDB) Close() error {
	return s.db.Close()
}

const reportColumns = `id, source, title, text, summary, link, location, disaster_type, status, image_path, image_url, timestamp`

func (s *SQLiteDB) Insert(ctx context.Context, r *models.Report) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO reports (`+reportColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.ID, r.Source, r.Title, r.Text, r.Summary, r.Link, r.Location,
		r.DisasterType, r.Status, r.ImagePath, r.ImageURL, r.Timestamp,
	)
	if err != nil {
		return fmt.Errorf("error inserting report: %w", err)
	}
	return nil
}

func (s *SQLiteDB) GetByID(ctx context.Context, id string) (*models.Report, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+reportColumns+` FROM reports WHERE id = ?`, id)

	r, err := scanReport(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("error fetching report: %w", err)
	}
	return r, nil
}

func (s *SQLiteDB) ExistsByLink(ctx context.Context, link string) (bool, error) {
	var n int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(1) FROM reports WHERE link = ?`, link).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("error checking link existence: %w", err)
	}
	return n > 0, nil
}

func buildWhere(opts Filter) (string, []any) {
	var (
		clauses []string
		args    []any
	)
	if opts.Status != nil {
		clauses = append(clauses, "status = ?")
		args = append(args, *opts.Status)
	}
	if opts.Source != nil {
		clauses = append(clauses, "source = ?")
		args = append(args, *opts.Source)
	}
	if opts.Type != nil {
		clauses = append(clauses, "disaster_type = ?")
		args = append(args, *opts.Type)
	}
	if opts.NotType != nil {
		clauses = append(clauses, "disaster_type != ?")
		args = append(args, *opts.NotType)
	}
	if opts.Since != nil {
		clauses = append(clauses, "timestamp >= ?")
		args = append(args, *opts.Since)
	}
	if len(clauses) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(clauses, " AND "), args
}

func (s *SQLiteDB) List(ctx context.Context, opts Filter) ([]models.Report, error) {
	where, args := buildWhere(opts)
	query := `SELECT ` + reportColumns + ` FROM reports` + where + ` ORDER BY timestamp DESC`
	if opts.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, opts.Limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("error listing reports: %w", err)
	}
	defer rows.Close()

	var reports []models.Report
	for rows.Next() {
		r, err := scanReport(rows)
		if err != nil {
			return nil, fmt.Errorf("error scanning report: %w", err)
		}
		reports = append(reports, *r)
	}
	return reports, rows.Err()
}

func (s *SQLiteDB) UpdateStatus(ctx context.Context, id string, status models.Status) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE reports SET status = ? WHERE id = ?`, status, id)
	if err != nil {
		return fmt.Errorf("error updating status: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *SQLiteDB) UpdateFields(ctx context.Context, id string, status models.Status, disasterType string) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE reports SET status = ?, disaster_type = ? WHERE id = ?`,
		status, disasterType, id)
	if err != nil {
		return fmt.Errorf("error updating report fields: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *SQLiteDB) UpdateManyStatus(ctx context.Context, opts Filter, status models.Status) (int64, error) {
	where, args := buildWhere(opts)
	res, err := s.db.ExecContext(ctx,
		`UPDATE reports SET status = ?`+where,
		append([]any{status}, args...)...)
	if err != nil {
		return 0, fmt.Errorf("error bulk-updating status: %w", err)
	}
	return res.RowsAffected()
}

func (s *SQLiteDB) Count(ctx context.Context, opts Filter) (int64, error) {
	where, args := buildWhere(opts)
	var n int64
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(1) FROM reports`+where, args...).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("error counting reports: %w", err)
	}
	return n, nil
}

func (s *SQLiteDB) AddNGO(ctx context.Context, n *models.NGO) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO ngos (id, name, location, specialization, contact) VALUES (?, ?, ?, ?, ?)`,
		n.ID, n.Name, n.Location, n.Specialization, n.Contact)
	if err != nil {
		return fmt.Errorf("error inserting ngo: %w", err)
	}
	return nil
}

func (s *SQLiteDB) ListNGOs(ctx context.Context) ([]models.NGO, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, location, specialization, contact FROM ngos ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("error listing ngos: %w", err)
	}
	defer rows.Close()

	var ngos []models.NGO
	for rows.Next() {
		var n models.NGO
		if err := rows.Scan(&n.ID, &n.Name, &n.Location, &n.Specialization, &n.Contact); err != nil {
			return nil, fmt.Errorf("error scanning ngo: %w", err)
		}
		ngos = append(ngos, n)
	}
	return ngos, rows.Err()
}

func (s *SQLiteDB) CountNGOs(ctx context.Context) (int64, error) {
	var n int64
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(1) FROM ngos`).Scan(&n); err != nil {
		return 0, fmt.Errorf("error counting ngos: %w", err)
	}
	return n, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanReport(row scanner) (*models.Report, error) {
	var r models.Report
	err := row.Scan(&r.ID, &r.Source, &r.Title, &r.Text, &r.Summary, &r.Link,
		&r.Location, &r.DisasterType, &r.Status, &r.ImagePath, &r.ImageURL, &r.Timestamp)
	if err != nil {
		return nil, err
	}
	return &r, nil
}
