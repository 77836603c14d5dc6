package repository

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"time"

	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/kujo/pkg/domain/interfaces"
	"github.com/secmon-lab/kujo/pkg/domain/model"
	"github.com/secmon-lab/kujo/pkg/domain/types"

	_ "modernc.org/sqlite"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS complaints (
    seq INTEGER PRIMARY KEY AUTOINCREMENT,
    id TEXT NOT NULL,
    created_at INTEGER NOT NULL,
    name TEXT,
    email TEXT,
    category TEXT,
    municipality TEXT,
    severity TEXT,
    severity_score REAL,
    description TEXT,
    status TEXT
);`

// SQLite implements Repository interface on a local SQLite database
type SQLite struct {
	db *sql.DB
}

// NewSQLite opens (or creates) the SQLite database at path and ensures the schema exists
func NewSQLite(ctx context.Context, path string) (interfaces.Repository, error) {
	if path == "" {
		return nil, goerr.New("SQLite database path is required")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, goerr.Wrap(err, "failed to create database directory", goerr.V("path", path))
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to open SQLite database", goerr.V("path", path))
	}
	// single writer keeps appends ordered
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if _, err := db.ExecContext(ctx, sqliteSchema); err != nil {
		_ = db.Close()
		return nil, goerr.Wrap(err, "failed to initialize SQLite schema", goerr.V("path", path))
	}

	ctxlog.From(ctx).Info("SQLite repository initialized", "path", path)
	return &SQLite{db: db}, nil
}

// AppendComplaint inserts a complaint
func (s *SQLite) AppendComplaint(ctx context.Context, complaint *model.Complaint) error {
	if complaint == nil {
		return goerr.New("complaint is nil")
	}

	var score sql.NullFloat64
	if complaint.SeverityScore.IsDefined() {
		score = sql.NullFloat64{Float64: complaint.SeverityScore.Float64(), Valid: true}
	}

	_, err := s.db.ExecContext(ctx, `
INSERT INTO complaints (
    id, created_at, name, email, category, municipality, severity, severity_score, description, status
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		complaint.ID.String(),
		complaint.Timestamp.UnixNano(),
		complaint.Name,
		complaint.Email,
		complaint.Category,
		complaint.Municipality,
		complaint.Severity,
		score,
		complaint.Description,
		complaint.Status.String(),
	)
	if err != nil {
		return goerr.Wrap(err, "failed to insert complaint", goerr.V("id", complaint.ID))
	}
	return nil
}

// ListComplaints returns every complaint in insertion order
func (s *SQLite) ListComplaints(ctx context.Context) ([]*model.Complaint, error) {
	rows, err := s.db.QueryContext(ctx, `
SELECT id, created_at, name, email, category, municipality, severity, severity_score, description, status
FROM complaints ORDER BY seq`)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to query complaints")
	}
	defer rows.Close()

	complaints := []*model.Complaint{}
	for rows.Next() {
		var (
			id, status string
			createdAt  int64
			score      sql.NullFloat64
			c          model.Complaint
		)
		if err := rows.Scan(&id, &createdAt, &c.Name, &c.Email, &c.Category, &c.Municipality,
			&c.Severity, &score, &c.Description, &status); err != nil {
			return nil, goerr.Wrap(err, "failed to scan complaint")
		}

		c.ID = types.ComplaintID(id)
		c.Timestamp = time.Unix(0, createdAt).UTC()
		c.Status = types.ComplaintStatus(status)
		c.SeverityScore = model.NoScore()
		if score.Valid {
			c.SeverityScore = model.Score(score.Float64)
		}
		complaints = append(complaints, &c)
	}
	if err := rows.Err(); err != nil {
		return nil, goerr.Wrap(err, "failed to iterate complaints")
	}

	return complaints, nil
}

// Close closes the underlying database
func (s *SQLite) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}
