package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/popmap/popmap/internal/models"
)

// PostgresEventRepository implements event persistence using PostgreSQL.
type PostgresEventRepository struct {
	db *sql.DB
}

// NewPostgresEventRepository creates a new PostgreSQL event repository.
func NewPostgresEventRepository(db *sql.DB) *PostgresEventRepository {
	return &PostgresEventRepository{db: db}
}

const eventColumns = `
	id, business_id, title, description, address, latitude, longitude,
	start_at, end_at, image_url, category, status, created_by,
	created_at, updated_at
`

// Create inserts a new event into the database.
func (r *PostgresEventRepository) Create(ctx context.Context, event models.Event) error {
	query := `
		INSERT INTO events (
			id, business_id, title, description, address, latitude, longitude,
			start_at, end_at, image_url, category, status, created_by,
			created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
	`

	_, err := r.db.ExecContext(ctx, query,
		event.ID,
		event.BusinessID,
		event.Title,
		event.Description,
		event.Address,
		event.Latitude,
		event.Longitude,
		event.StartAt,
		event.EndAt,
		event.ImageURL,
		event.Category,
		event.Status,
		event.CreatedBy,
		event.CreatedAt,
		event.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert event: %w", err)
	}

	return nil
}

// GetByID retrieves an event by its ID, or nil if it does not exist.
func (r *PostgresEventRepository) GetByID(ctx context.Context, id string) (*models.Event, error) {
	query := fmt.Sprintf("SELECT %s FROM events WHERE id = $1", eventColumns)

	event, err := r.scanEvent(r.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query event: %w", err)
	}
	return event, nil
}

// ListByBusiness returns events for a business, optionally filtered by
// status. An empty status returns all events.
func (r *PostgresEventRepository) ListByBusiness(ctx context.Context, businessID string, status models.EventStatus) ([]models.Event, error) {
	query := fmt.Sprintf("SELECT %s FROM events WHERE business_id = $1", eventColumns)
	args := []interface{}{businessID}

	if status != "" {
		query += " AND status = $2"
		args = append(args, status)
	}
	query += " ORDER BY start_at"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query events: %w", err)
	}
	defer rows.Close()

	var events []models.Event
	for rows.Next() {
		event, err := r.scanEvent(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan event: %w", err)
		}
		events = append(events, *event)
	}

	return events, rows.Err()
}

// UpdateStatus transitions an event to a new status. It returns false when no
// event with the given ID exists.
func (r *PostgresEventRepository) UpdateStatus(ctx context.Context, id string, status models.EventStatus) (bool, error) {
	if !models.ValidEventStatus(status) {
		return false, fmt.Errorf("invalid event status: %s", status)
	}

	result, err := r.db.ExecContext(ctx,
		"UPDATE events SET status = $1, updated_at = $2 WHERE id = $3",
		status, time.Now().UTC(), id,
	)
	if err != nil {
		return false, fmt.Errorf("failed to update event status: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read rows affected: %w", err)
	}

	return affected > 0, nil
}

func (r *PostgresEventRepository) scanEvent(row rowScanner) (*models.Event, error) {
	var event models.Event

	err := row.Scan(
		&event.ID,
		&event.BusinessID,
		&event.Title,
		&event.Description,
		&event.Address,
		&event.Latitude,
		&event.Longitude,
		&event.StartAt,
		&event.EndAt,
		&event.ImageURL,
		&event.Category,
		&event.Status,
		&event.CreatedBy,
		&event.CreatedAt,
		&event.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	return &event, nil
}
