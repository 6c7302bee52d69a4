package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	sqlite3 "github.com/mattn/go-sqlite3"

	"github.com/teamdocs/teamdocs-server/internal/store"
)

// SQLiteStore implements store.Store for SQLite.
type SQLiteStore struct {
	db *sql.DB
}

// New creates a new SQLite store and applies the schema.
// dbPath is the path to the SQLite database file.
func New(dbPath string) (*SQLiteStore, error) {
	return NewWithSetup(dbPath, ApplySchema)
}

// NewWithSetup creates a new SQLite store and runs a setup function.
// Useful for tests to apply a reduced schema or seed data.
func NewWithSetup(dbPath string, setup func(*sql.DB) error) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// SQLite works best with a single connection.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if setup != nil {
		if err := setup(db); err != nil {
			db.Close()
			return nil, fmt.Errorf("setup: %w", err)
		}
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// isUniqueViolation reports whether err is a SQLite uniqueness constraint failure.
func isUniqueViolation(err error) bool {
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique ||
			sqliteErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey
	}
	return false
}

// ==== UserStore implementation ====

// CreateUser inserts a new user.
func (s *SQLiteStore) CreateUser(ctx context.Context, user *store.User) error {
	query := `
		INSERT INTO users (id, full_name, email, password_hash, team_code)
		VALUES (?, ?, ?, ?, ?)
	`
	_, err := s.db.ExecContext(ctx, query, user.ID, user.FullName, user.Email, user.PasswordHash, user.TeamCode)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("insert user: %w", store.ErrConflict)
		}
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

func (s *SQLiteStore) scanUser(row *sql.Row) (*store.User, error) {
	var user store.User
	err := row.Scan(
		&user.ID,
		&user.FullName,
		&user.Email,
		&user.PasswordHash,
		&user.TeamCode,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("user: %w", store.ErrNotFound)
		}
		return nil, fmt.Errorf("query user: %w", err)
	}
	return &user, nil
}

// GetUserByID retrieves a user by ID.
func (s *SQLiteStore) GetUserByID(ctx context.Context, id string) (*store.User, error) {
	query := `
		SELECT id, full_name, email, password_hash, team_code, created_at, updated_at
		FROM users
		WHERE id = ?
	`
	return s.scanUser(s.db.QueryRowContext(ctx, query, id))
}

// GetUserByEmail retrieves a user by email.
func (s *SQLiteStore) GetUserByEmail(ctx context.Context, email string) (*store.User, error) {
	query := `
		SELECT id, full_name, email, password_hash, team_code, created_at, updated_at
		FROM users
		WHERE email = ?
	`
	return s.scanUser(s.db.QueryRowContext(ctx, query, email))
}

// ListUsersByTeam lists all members sharing a team code.
func (s *SQLiteStore) ListUsersByTeam(ctx context.Context, teamCode string) ([]*store.User, error) {
	query := `
		SELECT id, full_name, email, password_hash, team_code, created_at, updated_at
		FROM users
		WHERE team_code = ?
		ORDER BY full_name ASC
	`
	rows, err := s.db.QueryContext(ctx, query, teamCode)
	if err != nil {
		return nil, fmt.Errorf("query team users: %w", err)
	}
	defer rows.Close()

	var users []*store.User
	for rows.Next() {
		var user store.User
		if err := rows.Scan(
			&user.ID,
			&user.FullName,
			&user.Email,
			&user.PasswordHash,
			&user.TeamCode,
			&user.CreatedAt,
			&user.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		users = append(users, &user)
	}

	return users, rows.Err()
}

// ==== DocumentStore implementation ====

// CreateDocument inserts a new document.
func (s *SQLiteStore) CreateDocument(ctx context.Context, doc *store.Document) error {
	tags, err := json.Marshal(doc.Tags)
	if err != nil {
		return fmt.Errorf("marshal tags: %w", err)
	}

	query := `
		INSERT INTO documents (id, title, content, summary, tags, created_by, team_id, author_name, starred)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err = s.db.ExecContext(ctx, query,
		doc.ID, doc.Title, doc.Content, doc.Summary, string(tags),
		doc.CreatedBy, doc.TeamID, doc.AuthorName, doc.Starred,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("insert document: %w", store.ErrConflict)
		}
		return fmt.Errorf("insert document: %w", err)
	}
	return nil
}

func scanDocument(scan func(dest ...any) error) (*store.Document, error) {
	var doc store.Document
	var tags string
	err := scan(
		&doc.ID,
		&doc.Title,
		&doc.Content,
		&doc.Summary,
		&tags,
		&doc.CreatedBy,
		&doc.TeamID,
		&doc.AuthorName,
		&doc.Starred,
		&doc.CreatedAt,
		&doc.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(tags), &doc.Tags); err != nil {
		return nil, fmt.Errorf("unmarshal tags: %w", err)
	}
	return &doc, nil
}

const documentColumns = `id, title, content, summary, tags, created_by, team_id, author_name, starred, created_at, updated_at`

// GetDocument retrieves a document by ID.
func (s *SQLiteStore) GetDocument(ctx context.Context, id string) (*store.Document, error) {
	query := `SELECT ` + documentColumns + ` FROM documents WHERE id = ?`
	doc, err := scanDocument(s.db.QueryRowContext(ctx, query, id).Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("document: %w", store.ErrNotFound)
		}
		return nil, fmt.Errorf("query document: %w", err)
	}
	return doc, nil
}

func (s *SQLiteStore) listDocuments(ctx context.Context, query string, args ...any) ([]*store.Document, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query documents: %w", err)
	}
	defer rows.Close()

	var docs []*store.Document
	for rows.Next() {
		doc, err := scanDocument(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("scan document: %w", err)
		}
		docs = append(docs, doc)
	}

	return docs, rows.Err()
}

// ListDocumentsByCreator lists documents created by a user.
func (s *SQLiteStore) ListDocumentsByCreator(ctx context.Context, userID string) ([]*store.Document, error) {
	query := `SELECT ` + documentColumns + ` FROM documents WHERE created_by = ? ORDER BY updated_at DESC`
	return s.listDocuments(ctx, query, userID)
}

// ListDocumentsByTeam lists all documents belonging to a team.
func (s *SQLiteStore) ListDocumentsByTeam(ctx context.Context, teamID string) ([]*store.Document, error) {
	query := `SELECT ` + documentColumns + ` FROM documents WHERE team_id = ? ORDER BY updated_at DESC`
	return s.listDocuments(ctx, query, teamID)
}

// UpdateDocument overwrites a document's mutable fields and snapshots the
// previous content into document_versions within a single transaction.
func (s *SQLiteStore) UpdateDocument(ctx context.Context, doc *store.Document) error {
	tags, err := json.Marshal(doc.Tags)
	if err != nil {
		return fmt.Errorf("marshal tags: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	snapshot := `
		INSERT INTO document_versions (document_id, content, updated_at)
		SELECT id, content, updated_at FROM documents WHERE id = ?
	`
	if _, err := tx.ExecContext(ctx, snapshot, doc.ID); err != nil {
		return fmt.Errorf("snapshot version: %w", err)
	}

	update := `
		UPDATE documents
		SET title = ?, content = ?, summary = ?, tags = ?, starred = ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ?
	`
	result, err := tx.ExecContext(ctx, update, doc.Title, doc.Content, doc.Summary, string(tags), doc.Starred, doc.ID)
	if err != nil {
		return fmt.Errorf("update document: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("get rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("document: %w", store.ErrNotFound)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// SetDocumentStarred sets the starred flag and returns the updated document.
func (s *SQLiteStore) SetDocumentStarred(ctx context.Context, id string, starred bool) (*store.Document, error) {
	query := `
		UPDATE documents
		SET starred = ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ?
	`
	result, err := s.db.ExecContext(ctx, query, starred, id)
	if err != nil {
		return nil, fmt.Errorf("update starred: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("get rows affected: %w", err)
	}
	if affected == 0 {
		return nil, fmt.Errorf("document: %w", store.ErrNotFound)
	}

	return s.GetDocument(ctx, id)
}

// ListVersions returns a document's version snapshots, oldest first.
func (s *SQLiteStore) ListVersions(ctx context.Context, documentID string) ([]*store.DocumentVersion, error) {
	query := `
		SELECT id, document_id, content, updated_at
		FROM document_versions
		WHERE document_id = ?
		ORDER BY id ASC
	`
	rows, err := s.db.QueryContext(ctx, query, documentID)
	if err != nil {
		return nil, fmt.Errorf("query versions: %w", err)
	}
	defer rows.Close()

	var versions []*store.DocumentVersion
	for rows.Next() {
		var v store.DocumentVersion
		if err := rows.Scan(&v.ID, &v.DocumentID, &v.Content, &v.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan version: %w", err)
		}
		versions = append(versions, &v)
	}

	return versions, rows.Err()
}

// ==== ChatStore implementation ====

// CreateSession inserts a new chat session. The UNIQUE index on pair_key
// enforces the one-session-per-pair invariant under concurrent first
// contact; the losing writer gets ErrConflict and re-queries.
func (s *SQLiteStore) CreateSession(ctx context.Context, session *store.ChatSession) error {
	query := `
		INSERT INTO chat_sessions (id, pair_key, user_a, user_b)
		VALUES (?, ?, ?, ?)
	`
	_, err := s.db.ExecContext(ctx, query, session.ID, session.PairKey, session.UserA, session.UserB)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("insert chat session: %w", store.ErrConflict)
		}
		return fmt.Errorf("insert chat session: %w", err)
	}
	return nil
}

func (s *SQLiteStore) scanSession(row *sql.Row) (*store.ChatSession, error) {
	var session store.ChatSession
	err := row.Scan(
		&session.ID,
		&session.PairKey,
		&session.UserA,
		&session.UserB,
		&session.CreatedAt,
		&session.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("chat session: %w", store.ErrNotFound)
		}
		return nil, fmt.Errorf("query chat session: %w", err)
	}
	return &session, nil
}

// GetSession retrieves a session by ID.
func (s *SQLiteStore) GetSession(ctx context.Context, id string) (*store.ChatSession, error) {
	query := `
		SELECT id, pair_key, user_a, user_b, created_at, updated_at
		FROM chat_sessions
		WHERE id = ?
	`
	return s.scanSession(s.db.QueryRowContext(ctx, query, id))
}

// GetSessionByPairKey retrieves a session by its canonical pair key.
func (s *SQLiteStore) GetSessionByPairKey(ctx context.Context, pairKey string) (*store.ChatSession, error) {
	query := `
		SELECT id, pair_key, user_a, user_b, created_at, updated_at
		FROM chat_sessions
		WHERE pair_key = ?
	`
	return s.scanSession(s.db.QueryRowContext(ctx, query, pairKey))
}

// AppendMessage atomically appends a message to a session's log. The
// session row is touched first so a missing session fails the whole
// transaction and nothing is persisted.
func (s *SQLiteStore) AppendMessage(ctx context.Context, sessionID string, msg *store.ChatMessage) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	touch := `UPDATE chat_sessions SET updated_at = CURRENT_TIMESTAMP WHERE id = ?`
	result, err := tx.ExecContext(ctx, touch, sessionID)
	if err != nil {
		return fmt.Errorf("touch chat session: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("get rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("chat session: %w", store.ErrNotFound)
	}

	insert := `
		INSERT INTO chat_messages (session_id, sender_id, sender_name, text, created_at)
		VALUES (?, ?, ?, ?, ?)
	`
	res, err := tx.ExecContext(ctx, insert, sessionID, msg.SenderID, msg.SenderName, msg.Text, msg.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert message: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("get last insert id: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}

	msg.ID = id
	msg.SessionID = sessionID
	return nil
}

// ListMessages returns a session's messages in append order.
func (s *SQLiteStore) ListMessages(ctx context.Context, sessionID string) ([]*store.ChatMessage, error) {
	query := `
		SELECT id, session_id, sender_id, sender_name, text, created_at
		FROM chat_messages
		WHERE session_id = ?
		ORDER BY id ASC
	`
	rows, err := s.db.QueryContext(ctx, query, sessionID)
	if err != nil {
		return nil, fmt.Errorf("query messages: %w", err)
	}
	defer rows.Close()

	messages := make([]*store.ChatMessage, 0)
	for rows.Next() {
		var msg store.ChatMessage
		if err := rows.Scan(&msg.ID, &msg.SessionID, &msg.SenderID, &msg.SenderName, &msg.Text, &msg.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan message: %w", err)
		}
		messages = append(messages, &msg)
	}

	return messages, rows.Err()
}

// Ensure SQLiteStore implements store.Store
var _ store.Store = (*SQLiteStore)(nil)
