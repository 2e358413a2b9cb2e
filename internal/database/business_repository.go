package database

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/lib/pq"

	"github.com/popmap/popmap/internal/models"
)

// PostgresBusinessRepository implements business lookups using PostgreSQL.
type PostgresBusinessRepository struct {
	db *sql.DB
}

// NewPostgresBusinessRepository creates a new PostgreSQL business repository.
func NewPostgresBusinessRepository(db *sql.DB) *PostgresBusinessRepository {
	return &PostgresBusinessRepository{db: db}
}

const businessColumns = `
	id, name, description, contact_email, website, owner_id,
	instagram_handle, default_category, features, is_verified,
	created_at, updated_at
`

// GetByOwner retrieves the business owned by the given user, or nil if the
// user owns none.
func (r *PostgresBusinessRepository) GetByOwner(ctx context.Context, ownerID string) (*models.Business, error) {
	query := fmt.Sprintf("SELECT %s FROM businesses WHERE owner_id = $1", businessColumns)

	business, err := r.scanBusiness(r.db.QueryRowContext(ctx, query, ownerID))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query business by owner: %w", err)
	}
	return business, nil
}

// GetByID retrieves a business by its ID, or nil if it does not exist.
func (r *PostgresBusinessRepository) GetByID(ctx context.Context, id string) (*models.Business, error) {
	query := fmt.Sprintf("SELECT %s FROM businesses WHERE id = $1", businessColumns)

	business, err := r.scanBusiness(r.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query business by id: %w", err)
	}
	return business, nil
}

// ListImportable returns verified businesses that have both an Instagram
// handle and the premium customization feature. The periodic import sweep
// uses this to decide which accounts to scan.
func (r *PostgresBusinessRepository) ListImportable(ctx context.Context) ([]models.Business, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM businesses
		WHERE instagram_handle <> ''
		  AND is_verified = TRUE
		  AND $1 = ANY(features)
		ORDER BY created_at
	`, businessColumns)

	rows, err := r.db.QueryContext(ctx, query, models.FeaturePremiumCustomization)
	if err != nil {
		return nil, fmt.Errorf("failed to query importable businesses: %w", err)
	}
	defer rows.Close()

	var businesses []models.Business
	for rows.Next() {
		business, err := r.scanBusiness(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan business: %w", err)
		}
		businesses = append(businesses, *business)
	}

	return businesses, rows.Err()
}

// LatestVenue returns the most recently created venue for a business, or nil
// if the business has no venues.
func (r *PostgresBusinessRepository) LatestVenue(ctx context.Context, businessID string) (*models.Venue, error) {
	query := `
		SELECT id, business_id, name, address, created_at
		FROM venues
		WHERE business_id = $1
		ORDER BY created_at DESC
		LIMIT 1
	`

	var venue models.Venue
	err := r.db.QueryRowContext(ctx, query, businessID).Scan(
		&venue.ID,
		&venue.BusinessID,
		&venue.Name,
		&venue.Address,
		&venue.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query latest venue: %w", err)
	}

	return &venue, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func (r *PostgresBusinessRepository) scanBusiness(row rowScanner) (*models.Business, error) {
	var business models.Business
	var features pq.StringArray

	err := row.Scan(
		&business.ID,
		&business.Name,
		&business.Description,
		&business.ContactEmail,
		&business.Website,
		&business.OwnerID,
		&business.InstagramHandle,
		&business.DefaultCategory,
		&features,
		&business.IsVerified,
		&business.CreatedAt,
		&business.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	business.Features = []string(features)
	return &business, nil
}
