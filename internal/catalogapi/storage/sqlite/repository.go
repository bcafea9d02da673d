// Package sqlite provides the SQLite-backed implementation of
// storage.Repository.
//
// WAL mode is enabled on Open so read traffic (catalog listings) never blocks
// the occasional write (a seller editing inventory).
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/jcmexdev/partsmarket/internal/catalogapi/domain"
	"github.com/jcmexdev/partsmarket/internal/catalogapi/storage"

	// Register the pure-Go SQLite driver.
	// We use modernc.org/sqlite instead of mattn/go-sqlite3 to avoid CGO
	// requirements, making it easier to build and run in Docker (Alpine).
	_ "modernc.org/sqlite"
)

// schema is the DDL executed once on startup. Timestamps are RFC3339 TEXT,
// the SQLite idiom.
const schema = `
CREATE TABLE IF NOT EXISTS users (
    id            TEXT PRIMARY KEY,
    username      TEXT NOT NULL UNIQUE,
    password_hash TEXT NOT NULL,
    email         TEXT NOT NULL DEFAULT '',
    is_admin      INTEGER NOT NULL DEFAULT 0,
    created_at    TEXT NOT NULL,
    updated_at    TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS stores (
    id          TEXT PRIMARY KEY,
    name        TEXT NOT NULL,
    address     TEXT NOT NULL DEFAULT '',
    phone       TEXT NOT NULL DEFAULT '',
    description TEXT NOT NULL DEFAULT '',
    user_id     TEXT NOT NULL UNIQUE REFERENCES users(id),
    created_at  TEXT NOT NULL,
    updated_at  TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS parts (
    id             TEXT PRIMARY KEY,
    name           TEXT NOT NULL,
    description    TEXT NOT NULL DEFAULT '',
    price          REAL NOT NULL DEFAULT 0,
    discount_price REAL NOT NULL DEFAULT 0,
    image_url      TEXT NOT NULL DEFAULT '',
    is_available   INTEGER NOT NULL DEFAULT 1,
    category       TEXT NOT NULL DEFAULT '',
    brand          TEXT NOT NULL DEFAULT '',
    model          TEXT NOT NULL DEFAULT '',
    year           TEXT NOT NULL DEFAULT '',
    store_id       TEXT NOT NULL REFERENCES stores(id),
    created_at     TEXT NOT NULL,
    updated_at     TEXT NOT NULL
);

-- The public listing filters on availability and sorts newest first.
CREATE INDEX IF NOT EXISTS idx_parts_available_created ON parts(is_available, created_at DESC);

-- The seller dashboard lists one store's inventory.
CREATE INDEX IF NOT EXISTS idx_parts_store ON parts(store_id, created_at DESC);
`

// Repository is the SQLite implementation of storage.Repository.
type Repository struct {
	db *sql.DB
}

var _ storage.Repository = (*Repository)(nil)

// Open opens (or creates) the SQLite database at the given path and applies
// the schema. busy_timeout waits for locks instead of failing immediately.
func Open(path string) (*Repository, error) {
	dsn := fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)&_pragma=foreign_keys(on)&_pragma=busy_timeout(5000)", path)

	// Use "sqlite", not "sqlite3" for the modernc driver.
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("sqlite: open %q: %w", path, err)
	}

	// SQLite performs best with a single writer connection.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("sqlite: apply schema: %w", err)
	}

	return &Repository{db: db}, nil
}

// Close releases the database connection. Call it with defer in main().
func (r *Repository) Close() error {
	return r.db.Close()
}

// ---- users / stores ----

func (r *Repository) CreateUser(ctx context.Context, user *domain.User) error {
	const q = `
		INSERT INTO users (id, username, password_hash, email, is_admin, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`

	_, err := r.db.ExecContext(ctx, q,
		user.ID,
		user.Username,
		user.PasswordHash,
		user.Email,
		boolToInt(user.IsAdmin),
		formatTime(user.CreatedAt),
		formatTime(user.UpdatedAt),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("sqlite: create user %q: %w", user.Username, storage.ErrDuplicate)
		}
		return fmt.Errorf("sqlite: create user %q: %w", user.Username, err)
	}
	return nil
}

const userColumns = `u.id, u.username, u.password_hash, u.email, u.is_admin, u.created_at, u.updated_at,
       s.id, s.name, s.address, s.phone, s.description, s.user_id, s.created_at, s.updated_at`

func (r *Repository) UserByUsername(ctx context.Context, username string) (*domain.User, error) {
	q := fmt.Sprintf(`
		SELECT %s
		FROM   users u
		LEFT JOIN stores s ON s.user_id = u.id
		WHERE  u.username = ?`, userColumns)

	return r.scanUser(r.db.QueryRowContext(ctx, q, username), username)
}

func (r *Repository) UserByID(ctx context.Context, id string) (*domain.User, error) {
	q := fmt.Sprintf(`
		SELECT %s
		FROM   users u
		LEFT JOIN stores s ON s.user_id = u.id
		WHERE  u.id = ?`, userColumns)

	return r.scanUser(r.db.QueryRowContext(ctx, q, id), id)
}

func (r *Repository) scanUser(row *sql.Row, key string) (*domain.User, error) {
	var (
		user                 domain.User
		isAdmin              int
		createdAt, updatedAt string
		// Store columns come from a LEFT JOIN, so all nullable.
		storeID, storeName, storeAddr, storePhone, storeDesc, storeUser sql.NullString
		storeCreated, storeUpdated                                     sql.NullString
	)

	err := row.Scan(
		&user.ID, &user.Username, &user.PasswordHash, &user.Email, &isAdmin, &createdAt, &updatedAt,
		&storeID, &storeName, &storeAddr, &storePhone, &storeDesc, &storeUser, &storeCreated, &storeUpdated,
	)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("sqlite: user %q: %w", key, storage.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("sqlite: load user %q: %w", key, err)
	}

	user.IsAdmin = isAdmin != 0
	user.CreatedAt = parseTime(createdAt)
	user.UpdatedAt = parseTime(updatedAt)

	if storeID.Valid {
		user.Store = &domain.Store{
			ID:          storeID.String,
			Name:        storeName.String,
			Address:     storeAddr.String,
			Phone:       storePhone.String,
			Description: storeDesc.String,
			UserID:      storeUser.String,
			CreatedAt:   parseTime(storeCreated.String),
			UpdatedAt:   parseTime(storeUpdated.String),
		}
	}
	return &user, nil
}

func (r *Repository) CreateStore(ctx context.Context, store *domain.Store) error {
	const q = `
		INSERT INTO stores (id, name, address, phone, description, user_id, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`

	_, err := r.db.ExecContext(ctx, q,
		store.ID,
		store.Name,
		store.Address,
		store.Phone,
		store.Description,
		store.UserID,
		formatTime(store.CreatedAt),
		formatTime(store.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("sqlite: create store %q: %w", store.Name, err)
	}
	return nil
}

// ---- parts ----

const partColumns = `id, name, description, price, discount_price, image_url, is_available,
       category, brand, model, year, store_id, created_at, updated_at`

func (r *Repository) CreatePart(ctx context.Context, part *domain.Part) error {
	const q = `
		INSERT INTO parts (id, name, description, price, discount_price, image_url, is_available,
		                   category, brand, model, year, store_id, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	_, err := r.db.ExecContext(ctx, q,
		part.ID, part.Name, part.Description, part.Price, part.DiscountPrice, part.ImageURL,
		boolToInt(part.IsAvailable), part.Category, part.Brand, part.Model, part.Year,
		part.StoreID, formatTime(part.CreatedAt), formatTime(part.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("sqlite: create part %q: %w", part.Name, err)
	}
	return nil
}

func (r *Repository) PartByID(ctx context.Context, id, storeID string) (*domain.Part, error) {
	q := fmt.Sprintf(`SELECT %s FROM parts WHERE id = ? AND store_id = ?`, partColumns)

	part, err := scanPart(r.db.QueryRowContext(ctx, q, id, storeID))
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("sqlite: part %q: %w", id, storage.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("sqlite: load part %q: %w", id, err)
	}
	return part, nil
}

func (r *Repository) PublicParts(ctx context.Context, filter domain.PartFilter) ([]domain.Part, error) {
	query := fmt.Sprintf(`SELECT %s FROM parts WHERE is_available = 1`, partColumns)
	var args []any

	addEq := func(column, value string) {
		if value != "" {
			query += fmt.Sprintf(" AND %s = ?", column)
			args = append(args, value)
		}
	}
	addEq("category", filter.Category)
	addEq("brand", filter.Brand)
	addEq("model", filter.Model)
	addEq("year", filter.Year)

	if filter.Search != "" {
		query += " AND (name LIKE ? OR description LIKE ?)"
		pattern := "%" + filter.Search + "%"
		args = append(args, pattern, pattern)
	}

	query += " ORDER BY created_at DESC, id DESC"

	return r.queryParts(ctx, query, args...)
}

func (r *Repository) StoreParts(ctx context.Context, storeID string) ([]domain.Part, error) {
	q := fmt.Sprintf(`
		SELECT %s FROM parts
		WHERE  store_id = ?
		ORDER  BY created_at DESC, id DESC`, partColumns)

	return r.queryParts(ctx, q, storeID)
}

func (r *Repository) UpdatePart(ctx context.Context, part *domain.Part) error {
	const q = `
		UPDATE parts
		SET    name = ?, description = ?, price = ?, discount_price = ?, image_url = ?,
		       is_available = ?, category = ?, brand = ?, model = ?, year = ?, updated_at = ?
		WHERE  id = ? AND store_id = ?`

	res, err := r.db.ExecContext(ctx, q,
		part.Name, part.Description, part.Price, part.DiscountPrice, part.ImageURL,
		boolToInt(part.IsAvailable), part.Category, part.Brand, part.Model, part.Year,
		formatTime(part.UpdatedAt), part.ID, part.StoreID,
	)
	if err != nil {
		return fmt.Errorf("sqlite: update part %q: %w", part.ID, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("sqlite: part %q: %w", part.ID, storage.ErrNotFound)
	}
	return nil
}

func (r *Repository) DeletePart(ctx context.Context, id, storeID string) error {
	const q = `DELETE FROM parts WHERE id = ? AND store_id = ?`

	res, err := r.db.ExecContext(ctx, q, id, storeID)
	if err != nil {
		return fmt.Errorf("sqlite: delete part %q: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("sqlite: part %q: %w", id, storage.ErrNotFound)
	}
	return nil
}

func (r *Repository) queryParts(ctx context.Context, query string, args ...any) ([]domain.Part, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("sqlite: list parts: %w", err)
	}
	defer rows.Close()

	parts := []domain.Part{}
	for rows.Next() {
		part, err := scanPart(rows)
		if err != nil {
			return nil, fmt.Errorf("sqlite: scan part: %w", err)
		}
		parts = append(parts, *part)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: list parts: %w", err)
	}
	return parts, nil
}

// scanner covers both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanPart(row scanner) (*domain.Part, error) {
	var (
		part                 domain.Part
		isAvailable          int
		createdAt, updatedAt string
	)
	err := row.Scan(
		&part.ID, &part.Name, &part.Description, &part.Price, &part.DiscountPrice,
		&part.ImageURL, &isAvailable, &part.Category, &part.Brand, &part.Model,
		&part.Year, &part.StoreID, &createdAt, &updatedAt,
	)
	if err != nil {
		return nil, err
	}
	part.IsAvailable = isAvailable != 0
	part.CreatedAt = parseTime(createdAt)
	part.UpdatedAt = parseTime(updatedAt)
	return &part, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

// parseTime parses the RFC3339 TEXT timestamps stored in SQLite. A malformed
// value yields the zero time rather than failing the whole row.
func parseTime(s string) time.Time {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}
	}
	return t
}

// isUniqueViolation detects the modernc driver's UNIQUE constraint error.
// The driver exposes no typed error for it, so string matching it is.
func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}
