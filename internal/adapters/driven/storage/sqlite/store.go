package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/custodia-labs/folio/internal/adapters/driven/storage/sqlite/migrations"
	"github.com/custodia-labs/folio/internal/core/domain"
	"github.com/custodia-labs/folio/internal/core/ports/driven"
)

// DatabaseFileName is the database file inside the data directory.
const DatabaseFileName = "folio.db"

// dsnPragmas enable WAL so readers proceed while an ingestion writes.
const dsnPragmas = "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)"

// Store persists assistant records in SQLite.
type Store struct {
	db   *sql.DB
	path string
}

var _ driven.AssistantStore = (*Store)(nil)

// NewStore opens dataDir/folio.db, creating and migrating it as needed.
// An empty dataDir means ~/.folio/data.
func NewStore(dataDir string) (*Store, error) {
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("resolve data directory: %w", err)
		}
		dataDir = filepath.Join(home, ".folio", "data")
	}
	if err := os.MkdirAll(dataDir, 0o700); err != nil {
		return nil, fmt.Errorf("create data directory: %w", err)
	}

	path := filepath.Join(dataDir, DatabaseFileName)
	db, err := sql.Open("sqlite", path+dsnPragmas)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	if err := migrate(context.Background(), db, migrations.FS); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &Store{db: db, path: path}, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file.
func (s *Store) Path() string {
	return s.path
}

// migration is one NNN_name.up.sql file.
type migration struct {
	version int
	file    string
}

// pendingMigrations lists the up files newer than applied, oldest first.
func pendingMigrations(fsys fs.FS, applied int) ([]migration, error) {
	files, err := fs.Glob(fsys, "*.up.sql")
	if err != nil {
		return nil, err
	}
	var out []migration
	for _, f := range files {
		v, err := strconv.Atoi(strings.SplitN(f, "_", 2)[0])
		if err != nil {
			return nil, fmt.Errorf("migration %s: bad version prefix", f)
		}
		if v > applied {
			out = append(out, migration{version: v, file: f})
		}
	}
	slices.SortFunc(out, func(a, b migration) int { return a.version - b.version })
	return out, nil
}

// migrate applies each pending migration in its own transaction together
// with its schema_migrations row.
func migrate(ctx context.Context, db *sql.DB, fsys fs.FS) error {
	const ledger = `CREATE TABLE IF NOT EXISTS schema_migrations (
		version    INTEGER PRIMARY KEY,
		applied_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`
	if _, err := db.ExecContext(ctx, ledger); err != nil {
		return fmt.Errorf("migrate: create ledger: %w", err)
	}

	var applied int
	if err := db.QueryRowContext(ctx, `SELECT COALESCE(MAX(version), 0) FROM schema_migrations`).Scan(&applied); err != nil {
		return fmt.Errorf("migrate: read version: %w", err)
	}

	pending, err := pendingMigrations(fsys, applied)
	if err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	for _, m := range pending {
		if err := applyMigration(ctx, db, fsys, m); err != nil {
			return fmt.Errorf("migrate %s: %w", m.file, err)
		}
	}
	return nil
}

func applyMigration(ctx context.Context, db *sql.DB, fsys fs.FS, m migration) error {
	body, err := fs.ReadFile(fsys, m.file)
	if err != nil {
		return err
	}
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, string(body)); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `INSERT INTO schema_migrations (version) VALUES (?)`, m.version); err != nil {
		return err
	}
	return tx.Commit()
}

// ==================== Assistant Store ====================

const assistantColumns = `id, name, file_name, owner_id, temperature, top_k,
	chunk_size, chunk_overlap, query_count, created_at`

// Create inserts a new assistant and sets its ID and CreatedAt.
func (s *Store) Create(ctx context.Context, a *domain.Assistant) error {
	if a.CreatedAt.IsZero() {
		a.CreatedAt = time.Now().UTC()
	}

	res, err := s.db.ExecContext(ctx, `
		INSERT INTO assistants (name, file_name, owner_id, temperature, top_k,
			chunk_size, chunk_overlap, query_count, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, a.Name, a.FileName, a.OwnerID, a.Temperature, a.TopK,
		a.ChunkSize, a.ChunkOverlap, a.QueryCount, a.CreatedAt)
	if err != nil {
		return fmt.Errorf("inserting assistant: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("reading assistant id: %w", err)
	}
	a.ID = id
	return nil
}

// Get returns the assistant with id.
func (s *Store) Get(ctx context.Context, id int64) (*domain.Assistant, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+assistantColumns+` FROM assistants WHERE id = ?`, id)
	return scanAssistant(row)
}

// GetOwned returns the assistant with id if ownerID owns it.
func (s *Store) GetOwned(ctx context.Context, id, ownerID int64) (*domain.Assistant, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+assistantColumns+` FROM assistants WHERE id = ? AND owner_id = ?`, id, ownerID)
	return scanAssistant(row)
}

// ListByOwner returns the owner's assistants, oldest first.
func (s *Store) ListByOwner(ctx context.Context, ownerID int64) ([]domain.Assistant, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+assistantColumns+` FROM assistants WHERE owner_id = ? ORDER BY id`, ownerID)
	if err != nil {
		return nil, fmt.Errorf("querying assistants: %w", err)
	}
	defer rows.Close()

	assistants := []domain.Assistant{}
	for rows.Next() {
		a, err := scanAssistant(rows)
		if err != nil {
			return nil, err
		}
		assistants = append(assistants, *a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating assistants: %w", err)
	}
	return assistants, nil
}

// CountByOwner returns how many assistants the owner has.
func (s *Store) CountByOwner(ctx context.Context, ownerID int64) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM assistants WHERE owner_id = ?`, ownerID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("counting assistants: %w", err)
	}
	return n, nil
}

// IncrementQueryCount records one answered query.
func (s *Store) IncrementQueryCount(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, `UPDATE assistants SET query_count = query_count + 1 WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("updating query count: %w", err)
	}
	return requireAffected(res)
}

// Delete removes the assistant with id.
func (s *Store) Delete(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM assistants WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting assistant: %w", err)
	}
	return requireAffected(res)
}

// scanner is implemented by *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanAssistant(row scanner) (*domain.Assistant, error) {
	var a domain.Assistant
	var createdAt sql.NullTime
	if err := row.Scan(&a.ID, &a.Name, &a.FileName, &a.OwnerID, &a.Temperature, &a.TopK,
		&a.ChunkSize, &a.ChunkOverlap, &a.QueryCount, &createdAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("scanning assistant: %w", err)
	}
	if createdAt.Valid {
		a.CreatedAt = createdAt.Time
	}
	return &a, nil
}

func requireAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("reading affected rows: %w", err)
	}
	if n == 0 {
		return domain.ErrNotFound
	}
	return nil
}
