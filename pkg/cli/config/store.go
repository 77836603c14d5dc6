package config

import (
	"context"
	"log/slog"

	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/kujo/pkg/domain/interfaces"
	"github.com/secmon-lab/kujo/pkg/repository"
	"github.com/urfave/cli/v3"
)

// Store kinds
const (
	StoreCSV       = "csv"
	StoreSQLite    = "sqlite"
	StoreFirestore = "firestore"
	StoreMemory    = "memory"
)

// Store holds complaint store configuration
type Store struct {
	Kind       string
	DataFile   string
	SQLitePath string
	ProjectID  string
	DatabaseID string
}

// Flags returns CLI flags for Store configuration
func (s *Store) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "store",
			Usage:       "Complaint store (csv, sqlite, firestore, memory), chosen from the other store flags when empty",
			Category:    "Store",
			Sources:     cli.EnvVars("KUJO_STORE"),
			Destination: &s.Kind,
		},
		&cli.StringFlag{
			Name:        "data-file",
			Usage:       "Path of the complaints CSV file",
			Category:    "Store",
			Value:       "complaints.csv",
			Sources:     cli.EnvVars("KUJO_DATA_FILE"),
			Destination: &s.DataFile,
		},
		&cli.StringFlag{
			Name:        "sqlite-path",
			Usage:       "Path of the SQLite database file",
			Category:    "Store",
			Sources:     cli.EnvVars("KUJO_SQLITE_PATH"),
			Destination: &s.SQLitePath,
		},
		&cli.StringFlag{
			Name:        "firestore-project",
			Usage:       "GCP project ID for Firestore",
			Category:    "Store",
			Sources:     cli.EnvVars("KUJO_FIRESTORE_PROJECT"),
			Destination: &s.ProjectID,
		},
		&cli.StringFlag{
			Name:        "firestore-database",
			Usage:       "Firestore database ID",
			Category:    "Store",
			Value:       "(default)",
			Sources:     cli.EnvVars("KUJO_FIRESTORE_DATABASE"),
			Destination: &s.DatabaseID,
		},
	}
}

// Configure creates the repository selected by Kind
func (s *Store) Configure(ctx context.Context) (interfaces.Repository, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}

	switch s.ResolvedKind() {
	case StoreMemory:
		ctxlog.From(ctx).Warn("Using memory store. Complaints will be removed when shutting down")
		return repository.NewMemory(), nil

	case StoreSQLite:
		repo, err := repository.NewSQLite(ctx, s.SQLitePath)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to init sqlite", goerr.V("path", s.SQLitePath))
		}
		return repo, nil

	case StoreFirestore:
		repo, err := repository.NewFirestore(ctx, s.ProjectID, s.DatabaseID)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to init firestore",
				goerr.V("project", s.ProjectID),
				goerr.V("database", s.DatabaseID),
			)
		}
		return repo, nil

	default:
		repo, err := repository.NewCSV(s.DataFile)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to init csv store", goerr.V("path", s.DataFile))
		}
		return repo, nil
	}
}

// ResolvedKind returns Kind, or infers it when empty: firestore when a project is given,
// then sqlite when a database path is given, csv otherwise
func (s *Store) ResolvedKind() string {
	switch {
	case s.Kind != "":
		return s.Kind
	case s.ProjectID != "":
		return StoreFirestore
	case s.SQLitePath != "":
		return StoreSQLite
	default:
		return StoreCSV
	}
}

// Validate checks that the selected store has what it needs
func (s *Store) Validate() error {
	switch s.ResolvedKind() {
	case StoreCSV:
		if s.DataFile == "" {
			return goerr.New("data file is required for csv store")
		}
	case StoreSQLite:
		if s.SQLitePath == "" {
			return goerr.New("sqlite path is required for sqlite store")
		}
	case StoreFirestore:
		if s.ProjectID == "" {
			return goerr.New("firestore project is required for firestore store")
		}
	case StoreMemory:
	default:
		return goerr.New("unknown store", goerr.V("store", s.Kind))
	}
	return nil
}

// IsConfigured reports whether the store settings are usable
func (s *Store) IsConfigured() bool {
	return s.Validate() == nil
}

// LogValue returns structured log value
func (s Store) LogValue() slog.Value {
	kind := s.ResolvedKind()
	attrs := []slog.Attr{slog.String("kind", kind)}
	switch kind {
	case StoreSQLite:
		attrs = append(attrs, slog.String("path", s.SQLitePath))
	case StoreFirestore:
		attrs = append(attrs,
			slog.String("project", s.ProjectID),
			slog.String("database", s.DatabaseID),
		)
	case StoreMemory:
	default:
		attrs = append(attrs, slog.String("path", s.DataFile))
	}
	return slog.GroupValue(attrs...)
}
