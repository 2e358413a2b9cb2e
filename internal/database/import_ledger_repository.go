package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"github.com/popmap/popmap/internal/models"
)

// ErrDuplicateImport is returned by Record when a post has already been
// imported for the same business. Callers use errors.Is to detect it.
var ErrDuplicateImport = errors.New("post already imported")

// uniqueViolation is the PostgreSQL error code for unique constraint
// violations.
const uniqueViolation = "23505"

// PostgresImportLedger implements the import ledger using PostgreSQL. The
// instagram_import_log table carries a UNIQUE (business_id, instagram_post_id)
// constraint, so Record is atomic: concurrent inserts for the same post
// resolve to exactly one winner and the rest get ErrDuplicateImport.
type PostgresImportLedger struct {
	db *sql.DB
}

// NewPostgresImportLedger creates a new PostgreSQL import ledger.
func NewPostgresImportLedger(db *sql.DB) *PostgresImportLedger {
	return &PostgresImportLedger{db: db}
}

// AlreadyImported reports which of the given post IDs have already been
// recorded for the business.
func (r *PostgresImportLedger) AlreadyImported(ctx context.Context, businessID string, postIDs []string) (map[string]bool, error) {
	imported := make(map[string]bool, len(postIDs))
	if len(postIDs) == 0 {
		return imported, nil
	}

	query := `
		SELECT instagram_post_id
		FROM instagram_import_log
		WHERE business_id = $1 AND instagram_post_id = ANY($2)
	`

	rows, err := r.db.QueryContext(ctx, query, businessID, pq.Array(postIDs))
	if err != nil {
		return nil, fmt.Errorf("failed to query import log: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var postID string
		if err := rows.Scan(&postID); err != nil {
			return nil, fmt.Errorf("failed to scan import log entry: %w", err)
		}
		imported[postID] = true
	}

	return imported, rows.Err()
}

// Record inserts a ledger entry for an imported post. It returns
// ErrDuplicateImport when the post was already recorded for this business.
func (r *PostgresImportLedger) Record(ctx context.Context, entry models.ImportLogEntry) error {
	query := `
		INSERT INTO instagram_import_log (
			id, business_id, instagram_post_id, event_id, permalink, caption, imported_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err := r.db.ExecContext(ctx, query,
		entry.ID,
		entry.BusinessID,
		entry.InstagramPostID,
		entry.EventID,
		entry.Permalink,
		entry.Caption,
		entry.ImportedAt,
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return fmt.Errorf("%w: post %s", ErrDuplicateImport, entry.InstagramPostID)
		}
		return fmt.Errorf("failed to record import: %w", err)
	}

	return nil
}

// History returns the most recent ledger entries for a business, newest
// first, joined with the imported event's title when the event still exists.
func (r *PostgresImportLedger) History(ctx context.Context, businessID string, limit int) ([]models.ImportHistoryEntry, error) {
	query := `
		SELECT l.instagram_post_id, l.event_id, COALESCE(e.title, ''), l.permalink, l.imported_at
		FROM instagram_import_log l
		LEFT JOIN events e ON e.id = l.event_id
		WHERE l.business_id = $1
		ORDER BY l.imported_at DESC
		LIMIT $2
	`

	rows, err := r.db.QueryContext(ctx, query, businessID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query import history: %w", err)
	}
	defer rows.Close()

	var entries []models.ImportHistoryEntry
	for rows.Next() {
		var entry models.ImportHistoryEntry
		if err := rows.Scan(
			&entry.InstagramPostID,
			&entry.EventID,
			&entry.EventTitle,
			&entry.Permalink,
			&entry.ImportedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan history entry: %w", err)
		}
		entries = append(entries, entry)
	}

	return entries, rows.Err()
}
