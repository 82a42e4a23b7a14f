package database

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"notesapi/errs"
	"notesapi/logger"

	"github.com/golang-migrate/migrate/v4"
	migratesqlite "github.com/golang-migrate/migrate/v4/database/sqlite3"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "github.com/mattn/go-sqlite3"
)

//go:embed migrations/*.sql
var embeddedMigrations embed.FS

// Migrations returns the schema definition shipped with the binary, rooted
// at the directory holding the numbered migration files.
func Migrations() fs.FS {
	sub, err := fs.Sub(embeddedMigrations, "migrations")
	if err != nil {
		panic(fmt.Sprintf("embedded migrations missing: %v", err))
	}
	return sub
}

const connParams = "_foreign_keys=on&_busy_timeout=5000"

// Store owns the connection pool for one SQLite database.
type Store struct {
	db   *sql.DB
	path string
}

// InitDB opens the database at path and applies every pending migration
// from schema.
func InitDB(path string, schema fs.FS) (*Store, error) {
	s, err := Open(path)
	if err != nil {
		return nil, err
	}
	logger.Info("Applying database migrations...")
	if err := s.MigrateUp(schema); err != nil {
		s.Close()
		return nil, err
	}
	logger.Info("Database migrations applied successfully (or no changes).")
	return s, nil
}

// Open connects to path without touching the schema. path is either a file
// path or a "file:" URI (tests use "file:name?mode=memory&cache=shared").
func Open(path string) (*Store, error) {
	if !strings.HasPrefix(path, "file:") && path != ":memory:" {
		dbDir := filepath.Dir(path)
		if dbDir != "." && dbDir != "" {
			if err := os.MkdirAll(dbDir, 0750); err != nil {
				logger.Error("Failed to create database directory %s: %v", dbDir, err)
				return nil, fmt.Errorf("failed to create database directory %s: %w", dbDir, err)
			}
		}
	}

	db, err := sql.Open("sqlite3", dataSourceName(path))
	if err != nil {
		logger.Error("Failed to open database: %v", err)
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// One connection: writers queue on the pool instead of failing with
	// SQLITE_BUSY, and in-memory databases stay a single database.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err = db.Ping(); err != nil {
		db.Close()
		logger.Error("Failed to connect to database: %v", err)
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	return &Store{db: db, path: path}, nil
}

func dataSourceName(path string) string {
	if strings.Contains(path, "?") {
		return path + "&" + connParams
	}
	return path + "?" + connParams
}

// Close releases the pool.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the location the store was opened with.
func (s *Store) Path() string {
	return s.path
}

func (s *Store) newMigrate(schema fs.FS) (*migrate.Migrate, error) {
	src, err := iofs.New(schema, ".")
	if err != nil {
		return nil, fmt.Errorf("failed to read migrations: %w", err)
	}
	drv, err := migratesqlite.WithInstance(s.db, &migratesqlite.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize migration driver: %w", err)
	}
	m, err := migrate.NewWithInstance("iofs", src, "sqlite3", drv)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize migrations: %w", err)
	}
	// m.Close is never called: the sqlite3 driver would close s.db with it.
	return m, nil
}

// MigrateUp applies all pending migrations.
func (s *Store) MigrateUp(schema fs.FS) error {
	m, err := s.newMigrate(schema)
	if err != nil {
		return err
	}
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		logger.Error("Failed to apply migrations: %v", err)
		return fmt.Errorf("failed to apply migrations: %w", err)
	}
	return nil
}

// MigrateDown rolls back steps migrations, or all of them when steps <= 0.
func (s *Store) MigrateDown(schema fs.FS, steps int) error {
	m, err := s.newMigrate(schema)
	if err != nil {
		return err
	}
	if steps > 0 {
		err = m.Steps(-steps)
	} else {
		err = m.Down()
	}
	if err != nil && !errors.Is(err, migrate.ErrNoChange) {
		logger.Error("Failed to roll back migrations: %v", err)
		return fmt.Errorf("failed to roll back migrations: %w", err)
	}
	return nil
}

// MigrationVersion reports the applied schema version. ok is false when no
// migration has run yet.
func (s *Store) MigrationVersion(schema fs.FS) (version uint, dirty bool, ok bool, err error) {
	m, err := s.newMigrate(schema)
	if err != nil {
		return 0, false, false, err
	}
	version, dirty, err = m.Version()
	if errors.Is(err, migrate.ErrNilVersion) {
		return 0, false, false, nil
	}
	if err != nil {
		return 0, false, false, fmt.Errorf("reading migration version: %w", err)
	}
	return version, dirty, true, nil
}

// Session is the unit of work for one request: every repository it hands out
// runs inside the same transaction, and nothing is durable until Commit.
type Session struct {
	tx   *sql.Tx
	done bool

	Notes        *NoteRepository
	Tags         *TagRepository
	Associations *AssociationRepository
}

// Begin starts a session.
func (s *Store) Begin(ctx context.Context) (*Session, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, errs.Wrap(errs.Internal, "begin transaction", err)
	}
	assoc := NewAssociationRepository(tx)
	return &Session{
		tx:           tx,
		Notes:        NewNoteRepository(tx, assoc),
		Tags:         NewTagRepository(tx),
		Associations: assoc,
	}, nil
}

// Commit makes staged changes durable. A failed commit leaves nothing applied.
func (s *Session) Commit() error {
	if s.done {
		return errs.New(errs.Internal, "session already finished")
	}
	s.done = true
	if err := s.tx.Commit(); err != nil {
		return errs.Wrap(errs.Internal, "commit transaction", err)
	}
	return nil
}

// Rollback discards staged changes. It is a no-op after Commit or Rollback.
func (s *Session) Rollback() error {
	if s.done {
		return nil
	}
	s.done = true
	if err := s.tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
		return fmt.Errorf("rollback transaction: %w", err)
	}
	return nil
}

// InSession runs fn in a fresh session, committing when fn succeeds and
// rolling back otherwise.
func (s *Store) InSession(ctx context.Context, fn func(*Session) error) error {
	sess, err := s.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() {
		if rbErr := sess.Rollback(); rbErr != nil {
			logger.Error("InSession: %v", rbErr)
		}
	}()

	if err := fn(sess); err != nil {
		return err
	}
	return sess.Commit()
}
