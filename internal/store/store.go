package store

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrNotFound is returned when a referenced record does not exist.
	ErrNotFound = errors.New("not found")
	// ErrConflict is returned when an insert violates a uniqueness constraint.
	ErrConflict = errors.New("conflict")
)

// User represents a registered team member.
type User struct {
	ID           string
	FullName     string
	Email        string
	PasswordHash string
	TeamCode     string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Document is a team document with an author snapshot taken at creation.
type Document struct {
	ID         string
	Title      string
	Content    string
	Summary    string
	Tags       []string
	CreatedBy  string
	TeamID     string
	AuthorName string
	Starred    bool
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// DocumentVersion is a snapshot of a document's content prior to an edit.
type DocumentVersion struct {
	ID         int64
	DocumentID string
	Content    string
	UpdatedAt  time.Time
}

// ChatSession is the durable record of a two-party conversation.
// PairKey is the canonical order-independent encoding of the two
// participant IDs and is unique system-wide.
type ChatSession struct {
	ID        string
	PairKey   string
	UserA     string
	UserB     string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Participants returns the session's participant pair.
func (s *ChatSession) Participants() [2]string {
	return [2]string{s.UserA, s.UserB}
}

// ChatMessage is one immutable entry in a session's message log.
// SenderName is a denormalized copy captured at send time.
type ChatMessage struct {
	ID         int64
	SessionID  string
	SenderID   string
	SenderName string
	Text       string
	CreatedAt  time.Time
}

// UserStore handles user persistence.
type UserStore interface {
	// CreateUser inserts a new user. Returns ErrConflict if the email is taken.
	CreateUser(ctx context.Context, user *User) error

	// GetUserByID retrieves a user by ID.
	GetUserByID(ctx context.Context, id string) (*User, error)

	// GetUserByEmail retrieves a user by email.
	GetUserByEmail(ctx context.Context, email string) (*User, error)

	// ListUsersByTeam lists all members sharing a team code.
	ListUsersByTeam(ctx context.Context, teamCode string) ([]*User, error)
}

// DocumentStore handles document persistence.
type DocumentStore interface {
	// CreateDocument inserts a new document.
	CreateDocument(ctx context.Context, doc *Document) error

	// GetDocument retrieves a document by ID.
	GetDocument(ctx context.Context, id string) (*Document, error)

	// ListDocumentsByCreator lists documents created by a user.
	ListDocumentsByCreator(ctx context.Context, userID string) ([]*Document, error)

	// ListDocumentsByTeam lists all documents belonging to a team.
	ListDocumentsByTeam(ctx context.Context, teamID string) ([]*Document, error)

	// UpdateDocument overwrites a document's mutable fields and snapshots
	// the previous content into the version history.
	UpdateDocument(ctx context.Context, doc *Document) error

	// SetDocumentStarred sets the starred flag and returns the updated document.
	SetDocumentStarred(ctx context.Context, id string, starred bool) (*Document, error)

	// ListVersions returns a document's version snapshots, oldest first.
	ListVersions(ctx context.Context, documentID string) ([]*DocumentVersion, error)
}

// ChatStore handles chat session and message persistence.
type ChatStore interface {
	// CreateSession inserts a new session. Returns ErrConflict if a session
	// with the same pair key already exists.
	CreateSession(ctx context.Context, session *ChatSession) error

	// GetSession retrieves a session by ID.
	GetSession(ctx context.Context, id string) (*ChatSession, error)

	// GetSessionByPairKey retrieves a session by its canonical pair key.
	GetSessionByPairKey(ctx context.Context, pairKey string) (*ChatSession, error)

	// AppendMessage atomically appends a message to the tail of a session's
	// log, assigning msg.ID. Returns ErrNotFound if the session is absent.
	AppendMessage(ctx context.Context, sessionID string, msg *ChatMessage) error

	// ListMessages returns a session's messages in append order. A session
	// with no messages yields an empty slice, not an error.
	ListMessages(ctx context.Context, sessionID string) ([]*ChatMessage, error)
}

// Store aggregates all storage interfaces.
type Store interface {
	UserStore
	DocumentStore
	ChatStore

	// Close closes the underlying database connection.
	Close() error
}
