package docmeta

import (
	"context"
	"database/sql"
	"fmt"
	"sync"

	_ "modernc.org/sqlite"

	"github.com/docuchat/searchcore/internal/filter"
	"github.com/docuchat/searchcore/internal/model"
)

// schema creates the metadata tables. Versions start at 1 and bump on every
// content update; shares carry a status so pending shares stay invisible.
const schema = `
CREATE TABLE IF NOT EXISTS documents (
	id         TEXT PRIMARY KEY,
	version    INTEGER NOT NULL DEFAULT 1,
	file_name  TEXT NOT NULL DEFAULT '',
	owner_kind TEXT NOT NULL,
	owner_id   TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_documents_owner ON documents(owner_kind, owner_id);

CREATE TABLE IF NOT EXISTS shares (
	document_id  TEXT NOT NULL,
	principal_id TEXT NOT NULL,
	status       TEXT NOT NULL,
	PRIMARY KEY (document_id, principal_id),
	FOREIGN KEY (document_id) REFERENCES documents(id) ON DELETE CASCADE
);
CREATE INDEX IF NOT EXISTS idx_shares_principal ON shares(principal_id, status);

CREATE TABLE IF NOT EXISTS visible_workspaces (
	user_id      TEXT NOT NULL,
	workspace_id TEXT NOT NULL,
	PRIMARY KEY (user_id, workspace_id)
);
`

// SQLiteStore implements DocumentStore and VisibilityStore on a local
// SQLite database (pure Go driver, no CGO).
type SQLiteStore struct {
	mu sync.RWMutex
	db *sql.DB
}

var (
	_ DocumentStore   = (*SQLiteStore)(nil)
	_ VisibilityStore = (*SQLiteStore)(nil)
)

// NewSQLiteStore opens (or creates) the metadata database at path.
// Use ":memory:" for an ephemeral store in tests.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open metadata db: %w", err)
	}

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enable foreign keys: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create metadata schema: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// ListDocuments returns the (id, version) pairs visible under one scope.
func (s *SQLiteStore) ListDocuments(ctx context.Context, kind model.ScopeKind, scopeID string) ([]model.DocumentRef, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var query string
	switch kind {
	case model.ScopeKindPersonal, model.ScopeKindGroup:
		// Owned by the principal, or shared with it at approved status.
		query = `
			SELECT id, version FROM documents WHERE owner_kind = ? AND owner_id = ?
			UNION
			SELECT d.id, d.version FROM documents d
			JOIN shares sh ON sh.document_id = d.id
			WHERE sh.principal_id = ? AND sh.status = ?`
	case model.ScopeKindPublic:
		query = `SELECT id, version FROM documents WHERE owner_kind = ? AND owner_id = ?`
	default:
		return nil, fmt.Errorf("unknown scope kind %q", kind)
	}

	var rows *sql.Rows
	var err error
	if kind == model.ScopeKindPublic {
		rows, err = s.db.QueryContext(ctx, query, string(kind), scopeID)
	} else {
		rows, err = s.db.QueryContext(ctx, query, string(kind), scopeID, scopeID, filter.StatusApproved)
	}
	if err != nil {
		return nil, fmt.Errorf("list documents for %s/%s: %w", kind, scopeID, err)
	}
	defer rows.Close()

	var refs []model.DocumentRef
	for rows.Next() {
		var ref model.DocumentRef
		if err := rows.Scan(&ref.ID, &ref.Version); err != nil {
			return nil, fmt.Errorf("scan document ref: %w", err)
		}
		refs = append(refs, ref)
	}
	return refs, rows.Err()
}

// VisiblePublicWorkspaceIDs returns the workspace IDs a user has opted into.
func (s *SQLiteStore) VisiblePublicWorkspaceIDs(ctx context.Context, requesterID string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		`SELECT workspace_id FROM visible_workspaces WHERE user_id = ? ORDER BY workspace_id`,
		requesterID)
	if err != nil {
		return nil, fmt.Errorf("list visible workspaces for %s: %w", requesterID, err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan workspace id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// SaveDocument inserts a document or, if it already exists, bumps its version.
func (s *SQLiteStore) SaveDocument(ctx context.Context, doc Document) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if doc.Version <= 0 {
		doc.Version = 1
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO documents (id, version, file_name, owner_kind, owner_id)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			version = documents.version + 1,
			file_name = excluded.file_name`,
		doc.ID, doc.Version, doc.FileName, string(doc.OwnerKind), doc.OwnerID)
	if err != nil {
		return fmt.Errorf("save document %s: %w", doc.ID, err)
	}
	return nil
}

// DeleteDocument removes a document and cascades its shares.
func (s *SQLiteStore) DeleteDocument(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.db.ExecContext(ctx, `DELETE FROM documents WHERE id = ?`, id); err != nil {
		return fmt.Errorf("delete document %s: %w", id, err)
	}
	return nil
}

// SetShare records or updates a sharing relationship.
func (s *SQLiteStore) SetShare(ctx context.Context, share Share) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO shares (document_id, principal_id, status) VALUES (?, ?, ?)
		ON CONFLICT(document_id, principal_id) DO UPDATE SET status = excluded.status`,
		share.DocumentID, share.PrincipalID, share.Status)
	if err != nil {
		return fmt.Errorf("set share %s->%s: %w", share.DocumentID, share.PrincipalID, err)
	}
	return nil
}

// SetVisibleWorkspaces replaces a user's visible public workspace set.
func (s *SQLiteStore) SetVisibleWorkspaces(ctx context.Context, userID string, workspaceIDs []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin visibility update: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM visible_workspaces WHERE user_id = ?`, userID); err != nil {
		return fmt.Errorf("clear visibility for %s: %w", userID, err)
	}
	for _, wid := range workspaceIDs {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO visible_workspaces (user_id, workspace_id) VALUES (?, ?)`, userID, wid); err != nil {
			return fmt.Errorf("add visible workspace %s: %w", wid, err)
		}
	}
	return tx.Commit()
}

// Close releases the database handle.
func (s *SQLiteStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.db.Close()
}
