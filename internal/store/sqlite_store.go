package store

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	_ "github.com/mattn/go-sqlite3"

	"github.com/vaultn8n/vaultn8n/internal/events"
	"github.com/vaultn8n/vaultn8n/internal/models"
)

// SQLiteStore implements Store on a single SQLite database file.
//
// Layout: a secrets table keyed by a unique, binary-collated key column, and
// an external-content FTS5 table over key used as the pattern-match index.
// The index is synchronized by the store inside the same transaction as every
// row mutation, not by database triggers, so a concurrent reader never
// observes a row without its index entry or vice versa.
//
// Requires building with -tags sqlite_fts5.
type SQLiteStore struct {
	db     *sql.DB
	logger *events.Logger
}

// NewSQLiteStore opens (creating if needed) the secrets database.
func NewSQLiteStore(dbPath string, logger *events.Logger) (*SQLiteStore, error) {
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return nil, storageErr("create directory", err)
		}
	}

	// _txlock=immediate makes transactions take the write lock at BEGIN.
	// With the default deferred mode a transaction that reads first and
	// writes later can hit SQLITE_BUSY_SNAPSHOT under WAL, which the busy
	// timeout does not retry; immediate mode serializes writers up front.
	db, err := sql.Open("sqlite3", dbPath+"?_journal=WAL&_timeout=5000&_txlock=immediate&_case_sensitive_like=true")
	if err != nil {
		return nil, storageErr("open database", err)
	}

	s := &SQLiteStore{
		db:     db,
		logger: logger.WithField("component", "sqlite_store"),
	}

	if err := s.initialize(); err != nil {
		db.Close()
		return nil, err
	}

	return s, nil
}

// initialize creates the schema.
func (s *SQLiteStore) initialize() error {
	schema := `
    CREATE TABLE IF NOT EXISTS secrets (
        id INTEGER PRIMARY KEY AUTOINCREMENT,
        key TEXT UNIQUE NOT NULL COLLATE BINARY,
        value TEXT NOT NULL,
        created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
        updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
    );

    CREATE UNIQUE INDEX IF NOT EXISTS idx_secrets_key ON secrets(key);

    CREATE VIRTUAL TABLE IF NOT EXISTS secrets_fts USING fts5(
        key,
        content='secrets',
        content_rowid='id'
    );
    `

	if _, err := s.db.Exec(schema); err != nil {
		return storageErr("create schema", err)
	}

	return nil
}

// Upsert inserts a new secret or updates the value of an existing one.
// On update only value and updated_at change; created_at and the row
// identity are untouched. Last committed write wins.
func (s *SQLiteStore) Upsert(key, encryptedValue string) error {
	tx, err := s.db.Begin()
	if err != nil {
		return storageErr("begin transaction", err)
	}
	defer func() { _ = tx.Rollback() }()

	var id int64
	err = tx.QueryRow("SELECT id FROM secrets WHERE key = ?", key).Scan(&id)

	switch {
	case err == sql.ErrNoRows:
		res, err := tx.Exec("INSERT INTO secrets (key, value) VALUES (?, ?)", key, encryptedValue)
		if err != nil {
			return storageErr("insert secret", err)
		}

		id, err = res.LastInsertId()
		if err != nil {
			return storageErr("insert secret", err)
		}

		if _, err := tx.Exec("INSERT INTO secrets_fts(rowid, key) VALUES (?, ?)", id, key); err != nil {
			return storageErr("insert index entry", err)
		}

	case err != nil:
		return storageErr("query secret", err)

	default:
		_, err = tx.Exec(`
            UPDATE secrets SET value = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?
        `, encryptedValue, id)
		if err != nil {
			return storageErr("update secret", err)
		}

		// External-content FTS updates are delete-then-insert.
		if _, err := tx.Exec(
			"INSERT INTO secrets_fts(secrets_fts, rowid, key) VALUES ('delete', ?, ?)", id, key,
		); err != nil {
			return storageErr("remove index entry", err)
		}
		if _, err := tx.Exec("INSERT INTO secrets_fts(rowid, key) VALUES (?, ?)", id, key); err != nil {
			return storageErr("insert index entry", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return storageErr("commit", err)
	}

	s.logger.WithField("key", key).Debug("Secret upserted")
	return nil
}

// GetExact returns secrets whose keys exactly match one of the inputs.
func (s *SQLiteStore) GetExact(keys []string) ([]models.Secret, error) {
	if len(keys) == 0 {
		return nil, nil
	}

	query := fmt.Sprintf(
		"SELECT key, value FROM secrets WHERE key IN (%s)", placeholders(len(keys)))

	rows, err := s.db.Query(query, toArgs(keys)...)
	if err != nil {
		return nil, storageErr("query secrets", err)
	}
	defer rows.Close()

	return scanSecrets(rows)
}

// FindByPattern returns secrets whose keys match the glob pattern. The '*'
// wildcard maps to the SQL LIKE '%' operator; literal '%', '_', and '\' in
// the pattern are escaped so '*' is the only wildcard. A pattern without '*'
// behaves as an exact match through the same path.
func (s *SQLiteStore) FindByPattern(pattern string) ([]models.Secret, error) {
	rows, err := s.db.Query(
		`SELECT key, value FROM secrets WHERE key LIKE ? ESCAPE '\'`, globToLike(pattern))
	if err != nil {
		return nil, storageErr("query secrets by pattern", err)
	}
	defer rows.Close()

	return scanSecrets(rows)
}

// Resolve handles a mixed list of literal keys and glob patterns: literals
// through GetExact, each pattern through FindByPattern, the union
// deduplicated by key. A key matched by several inputs appears once.
func (s *SQLiteStore) Resolve(items []string) ([]models.Secret, error) {
	var literals, patterns []string
	for _, item := range items {
		if strings.Contains(item, "*") {
			patterns = append(patterns, item)
		} else {
			literals = append(literals, item)
		}
	}

	var resolved []models.Secret
	seen := make(map[string]bool)

	add := func(secrets []models.Secret) {
		for _, secret := range secrets {
			if seen[secret.Key] {
				continue
			}
			seen[secret.Key] = true
			resolved = append(resolved, secret)
		}
	}

	exact, err := s.GetExact(literals)
	if err != nil {
		return nil, err
	}
	add(exact)

	for _, pattern := range patterns {
		matched, err := s.FindByPattern(pattern)
		if err != nil {
			return nil, err
		}
		add(matched)
	}

	return resolved, nil
}

// Delete removes secrets by exact key, together with their index entries,
// and returns the number of rows removed.
func (s *SQLiteStore) Delete(keys []string) (int, error) {
	if len(keys) == 0 {
		return 0, nil
	}

	tx, err := s.db.Begin()
	if err != nil {
		return 0, storageErr("begin transaction", err)
	}
	defer func() { _ = tx.Rollback() }()

	query := fmt.Sprintf(
		"SELECT id, key FROM secrets WHERE key IN (%s)", placeholders(len(keys)))

	rows, err := tx.Query(query, toArgs(keys)...)
	if err != nil {
		return 0, storageErr("query secrets", err)
	}

	type rowRef struct {
		id  int64
		key string
	}
	var refs []rowRef
	for rows.Next() {
		var r rowRef
		if err := rows.Scan(&r.id, &r.key); err != nil {
			rows.Close()
			return 0, storageErr("scan secret row", err)
		}
		refs = append(refs, r)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return 0, storageErr("iterate secrets", err)
	}
	rows.Close()

	for _, r := range refs {
		if _, err := tx.Exec(
			"INSERT INTO secrets_fts(secrets_fts, rowid, key) VALUES ('delete', ?, ?)", r.id, r.key,
		); err != nil {
			return 0, storageErr("remove index entry", err)
		}
	}

	res, err := tx.Exec(fmt.Sprintf(
		"DELETE FROM secrets WHERE key IN (%s)", placeholders(len(keys))), toArgs(keys)...)
	if err != nil {
		return 0, storageErr("delete secrets", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return 0, storageErr("delete secrets", err)
	}

	if err := tx.Commit(); err != nil {
		return 0, storageErr("commit", err)
	}

	s.logger.WithField("count", affected).Debug("Secrets deleted")
	return int(affected), nil
}

// GetRecord returns the full stored record for one key.
func (s *SQLiteStore) GetRecord(key string) (*models.SecretRecord, error) {
	var record models.SecretRecord
	err := s.db.QueryRow(`
        SELECT key, value, created_at, updated_at FROM secrets WHERE key = ?
    `, key).Scan(&record.Key, &record.Value, &record.CreatedAt, &record.UpdatedAt)

	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, storageErr("query secret", err)
	}

	return &record, nil
}

// FirstValue returns an arbitrary stored encrypted value. No ordering is
// guaranteed or required; any row serves the startup key check.
func (s *SQLiteStore) FirstValue() (string, bool, error) {
	var value string
	err := s.db.QueryRow("SELECT value FROM secrets LIMIT 1").Scan(&value)

	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, storageErr("query first secret", err)
	}

	return value, true, nil
}

// Close closes the database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// globToLike translates a '*' glob into a LIKE pattern, escaping the LIKE
// metacharacters so only '*' acts as a wildcard.
func globToLike(pattern string) string {
	var sb strings.Builder
	for _, r := range pattern {
		switch r {
		case '*':
			sb.WriteByte('%')
		case '%', '_', '\\':
			sb.WriteByte('\\')
			sb.WriteRune(r)
		default:
			sb.WriteRune(r)
		}
	}
	return sb.String()
}

func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?,", n), ",")
}

func toArgs(keys []string) []interface{} {
	args := make([]interface{}, len(keys))
	for i, k := range keys {
		args[i] = k
	}
	return args
}

func scanSecrets(rows *sql.Rows) ([]models.Secret, error) {
	var secrets []models.Secret
	for rows.Next() {
		var secret models.Secret
		if err := rows.Scan(&secret.Key, &secret.Value); err != nil {
			return nil, storageErr("scan secret row", err)
		}
		secrets = append(secrets, secret)
	}
	if err := rows.Err(); err != nil {
		return nil, storageErr("iterate secrets", err)
	}
	return secrets, nil
}

var _ Store = (*SQLiteStore)(nil)
