package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"notesapi/errs"

	"github.com/google/uuid"
	sqlite3 "github.com/mattn/go-sqlite3"
)

// DBTX is satisfied by *sql.DB and *sql.Tx.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type rowScanner interface {
	Scan(dest ...any) error
}

// Table describes how records of type T map onto one table. Columns[0] is
// the identity column; Values must return arguments in Columns order.
type Table[T any] struct {
	Name     string
	Entity   string
	Columns  []string
	Scan     func(rowScanner) (T, error)
	Values   func(T) []any
	Identity func(*T) *uuid.UUID
}

func (t Table[T]) selectList() string {
	return strings.Join(t.Columns, ", ")
}

func (t Table[T]) idColumn() string {
	return t.Columns[0]
}

// Repository implements get/list/add/update/delete for any Table.
type Repository[T any] struct {
	db    DBTX
	table Table[T]
}

func NewRepository[T any](db DBTX, table Table[T]) *Repository[T] {
	return &Repository[T]{db: db, table: table}
}

// Get returns the record with the given identity.
func (r *Repository[T]) Get(ctx context.Context, id uuid.UUID) (T, error) {
	query := fmt.Sprintf("SELECT %s FROM %s WHERE %s = ?", r.table.selectList(), r.table.Name, r.table.idColumn())
	rec, err := r.table.Scan(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return rec, r.notFound(id)
		}
		return rec, fmt.Errorf("querying %s %s: %w", r.table.Entity, id, err)
	}
	return rec, nil
}

// Exists reports whether a record with the identity is stored.
func (r *Repository[T]) Exists(ctx context.Context, id uuid.UUID) (bool, error) {
	var exists bool
	query := fmt.Sprintf("SELECT EXISTS(SELECT 1 FROM %s WHERE %s = ?)", r.table.Name, r.table.idColumn())
	if err := r.db.QueryRowContext(ctx, query, id).Scan(&exists); err != nil {
		return false, fmt.Errorf("checking %s %s: %w", r.table.Entity, id, err)
	}
	return exists, nil
}

// ListAndCount returns one page in insertion order together with the total
// number of records, which does not depend on the window.
func (r *Repository[T]) ListAndCount(ctx context.Context, limit, offset int) ([]T, int64, error) {
	if limit < 0 || offset < 0 {
		return nil, 0, errs.Newf(errs.Validation, "limit and offset must be non-negative, got limit=%d offset=%d", limit, offset)
	}

	var total int64
	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM %s", r.table.Name)
	if err := r.db.QueryRowContext(ctx, countQuery).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("counting %ss: %w", r.table.Entity, err)
	}

	items := make([]T, 0)
	if total == 0 || limit == 0 {
		return items, total, nil
	}

	query := fmt.Sprintf("SELECT %s FROM %s ORDER BY rowid ASC LIMIT ? OFFSET ?", r.table.selectList(), r.table.Name)
	rows, err := r.db.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, total, fmt.Errorf("querying %ss: %w", r.table.Entity, err)
	}
	defer rows.Close()

	for rows.Next() {
		rec, err := r.table.Scan(rows)
		if err != nil {
			return nil, total, fmt.Errorf("scanning %s row: %w", r.table.Entity, err)
		}
		items = append(items, rec)
	}
	return items, total, rows.Err()
}

// Add inserts rec, generating an identity when it has none.
func (r *Repository[T]) Add(ctx context.Context, rec T) (T, error) {
	if id := r.table.Identity(&rec); *id == uuid.Nil {
		*id = uuid.New()
	}
	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(r.table.Columns)), ", ")
	query := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)", r.table.Name, r.table.selectList(), placeholders)
	if _, err := r.db.ExecContext(ctx, query, r.table.Values(rec)...); err != nil {
		return rec, translateErr(err, "inserting "+r.table.Entity)
	}
	return rec, nil
}

// Update overwrites every non-identity column of the stored record.
func (r *Repository[T]) Update(ctx context.Context, rec T) (T, error) {
	id := *r.table.Identity(&rec)
	if id == uuid.Nil {
		return rec, errs.Newf(errs.Validation, "%s identity is required for update", r.table.Entity)
	}

	sets := make([]string, 0, len(r.table.Columns)-1)
	for _, col := range r.table.Columns[1:] {
		sets = append(sets, col+" = ?")
	}
	values := r.table.Values(rec)
	args := append(values[1:], id)

	query := fmt.Sprintf("UPDATE %s SET %s WHERE %s = ?", r.table.Name, strings.Join(sets, ", "), r.table.idColumn())
	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return rec, translateErr(err, "updating "+r.table.Entity)
	}
	if n, err := result.RowsAffected(); err != nil {
		return rec, fmt.Errorf("rows affected updating %s %s: %w", r.table.Entity, id, err)
	} else if n == 0 {
		return rec, r.notFound(id)
	}
	return rec, nil
}

// Delete removes the record; association rows go with it through ON DELETE CASCADE.
func (r *Repository[T]) Delete(ctx context.Context, id uuid.UUID) error {
	query := fmt.Sprintf("DELETE FROM %s WHERE %s = ?", r.table.Name, r.table.idColumn())
	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return translateErr(err, "deleting "+r.table.Entity)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected deleting %s %s: %w", r.table.Entity, id, err)
	}
	if n == 0 {
		return r.notFound(id)
	}
	return nil
}

func (r *Repository[T]) notFound(id uuid.UUID) error {
	return errs.Newf(errs.NotFound, "%s %s not found", r.table.Entity, id)
}

// translateErr turns SQLite constraint failures into Constraint errors and
// wraps everything else.
func translateErr(err error, op string) error {
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) && sqliteErr.Code == sqlite3.ErrConstraint {
		return errs.Wrap(errs.Constraint, fmt.Sprintf("%s: %s", op, constraintReason(sqliteErr.ExtendedCode)), err)
	}
	return fmt.Errorf("%s: %w", op, err)
}

func constraintReason(code sqlite3.ErrNoExtended) string {
	switch code {
	case sqlite3.ErrConstraintNotNull:
		return "required field is missing"
	case sqlite3.ErrConstraintPrimaryKey, sqlite3.ErrConstraintUnique:
		return "record already exists"
	case sqlite3.ErrConstraintForeignKey:
		return "referenced record does not exist"
	default:
		return "constraint violated"
	}
}
