package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/alimurrofid/petualangan-cuan/internal/core"

	_ "modernc.org/sqlite"
)

// ErrNoSession is returned by LoadSession when nothing has been saved.
var ErrNoSession = errors.New("no saved session")

// SessionRecord is the persisted form of a logged-in session.
type SessionRecord struct {
	Token   string
	User    core.User
	SavedAt time.Time
}

type SQLiteRepository struct {
	db            *sql.DB
	schemaVersion uint
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	version, err := RunMigrations(dbPath)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db, schemaVersion: version}, nil
}

// SchemaVersion is the migration version the database was opened at.
func (r *SQLiteRepository) SchemaVersion() uint {
	return r.schemaVersion
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// SaveSession replaces the stored session.
func (r *SQLiteRepository) SaveSession(ctx context.Context, rec SessionRecord) error {
	if rec.SavedAt.IsZero() {
		rec.SavedAt = time.Now().UTC()
	}
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO session (id, token, user_id, user_name, user_email, saved_at)
		VALUES (1, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			token = excluded.token,
			user_id = excluded.user_id,
			user_name = excluded.user_name,
			user_email = excluded.user_email,
			saved_at = excluded.saved_at`,
		rec.Token, rec.User.ID, rec.User.Name, rec.User.Email, rec.SavedAt.UTC().Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) LoadSession(ctx context.Context) (SessionRecord, error) {
	var (
		rec     SessionRecord
		savedAt string
	)
	err := r.db.QueryRowContext(ctx,
		`SELECT token, user_id, user_name, user_email, saved_at FROM session WHERE id = 1`).
		Scan(&rec.Token, &rec.User.ID, &rec.User.Name, &rec.User.Email, &savedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return SessionRecord{}, ErrNoSession
	}
	if err != nil {
		return SessionRecord{}, fmt.Errorf("load session: %w", err)
	}
	if t, err := time.Parse(time.RFC3339Nano, savedAt); err == nil {
		rec.SavedAt = t
	}
	return rec, nil
}

func (r *SQLiteRepository) ClearSession(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM session`); err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	return nil
}

// MarkExported records that a transaction reached the spreadsheet. Marking
// twice keeps the first reference.
func (r *SQLiteRepository) MarkExported(ctx context.Context, transactionID int64, ref string) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO exported_transactions (transaction_id, sheet_ref, exported_at)
		VALUES (?, ?, ?)
		ON CONFLICT(transaction_id) DO NOTHING`,
		transactionID, ref, time.Now().UTC().Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("mark transaction %d exported: %w", transactionID, err)
	}
	return nil
}

func (r *SQLiteRepository) IsExported(ctx context.Context, transactionID int64) (bool, error) {
	var n int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(1) FROM exported_transactions WHERE transaction_id = ?`, transactionID).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("check transaction %d exported: %w", transactionID, err)
	}
	return n > 0, nil
}
