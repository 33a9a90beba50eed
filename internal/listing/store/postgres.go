package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	_ "github.com/lib/pq"

	"marketdesk/internal/listing/models"
	"marketdesk/pkg/domain"
)

// PostgresStore persists listings in PostgreSQL. Detail blocks are stored as
// JSONB; the hot query dimensions (type, status, created_at) are columns.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgres constructs a PostgreSQL-backed listing store.
func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// Open connects to PostgreSQL and verifies the connection.
func Open(ctx context.Context, dsn string) (*sql.DB, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return db, nil
}

// Schema creates the listings table. Idempotent; called on startup and by
// integration tests.
func (s *PostgresStore) Schema(ctx context.Context) error {
	const ddl = `
		CREATE TABLE IF NOT EXISTS listings (
			id               UUID PRIMARY KEY,
			title            TEXT NOT NULL,
			type             TEXT NOT NULL,
			status           TEXT NOT NULL,
			asking_price     DOUBLE PRECISION NOT NULL,
			location         TEXT NOT NULL DEFAULT '',
			description      TEXT NOT NULL DEFAULT '',
			contact_email    TEXT NOT NULL,
			details          JSONB,
			rejection_reason TEXT NOT NULL DEFAULT '',
			created_at       TIMESTAMPTZ NOT NULL,
			updated_at       TIMESTAMPTZ NOT NULL
		);
		CREATE INDEX IF NOT EXISTS listings_status_idx ON listings (status);
		CREATE INDEX IF NOT EXISTS listings_type_idx ON listings (type);
		CREATE INDEX IF NOT EXISTS listings_created_at_idx ON listings (created_at DESC);
	`
	if _, err := s.db.ExecContext(ctx, ddl); err != nil {
		return fmt.Errorf("create listings schema: %w", err)
	}
	return nil
}

// details is the JSONB envelope holding whichever block the listing type uses.
type details struct {
	Business     *models.BusinessDetails     `json:"business,omitempty"`
	Startup      *models.StartupDetails      `json:"startup,omitempty"`
	DigitalAsset *models.DigitalAssetDetails `json:"digital_asset,omitempty"`
}

func (s *PostgresStore) Create(ctx context.Context, l *models.Listing) error {
	detailsJSON, err := marshalDetails(l)
	if err != nil {
		return err
	}
	const query = `
		INSERT INTO listings (id, title, type, status, asking_price, location, description,
			contact_email, details, rejection_reason, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		ON CONFLICT (id) DO NOTHING
	`
	res, err := s.db.ExecContext(ctx, query,
		uuid.UUID(l.ID), l.Title, l.Type.String(), l.Status.String(), l.AskingPrice,
		l.Location, l.Description, l.ContactEmail, detailsJSON, l.RejectionReason,
		l.CreatedAt, l.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("create listing: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("create listing: %w", err)
	}
	if affected == 0 {
		return ErrConflict
	}
	return nil
}

func (s *PostgresStore) Update(ctx context.Context, l *models.Listing) error {
	detailsJSON, err := marshalDetails(l)
	if err != nil {
		return err
	}
	const query = `
		UPDATE listings
		SET title = $2, status = $3, asking_price = $4, location = $5, description = $6,
			contact_email = $7, details = $8, rejection_reason = $9, updated_at = $10
		WHERE id = $1
	`
	res, err := s.db.ExecContext(ctx, query,
		uuid.UUID(l.ID), l.Title, l.Status.String(), l.AskingPrice, l.Location,
		l.Description, l.ContactEmail, detailsJSON, l.RejectionReason, l.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update listing: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update listing: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

const selectColumns = `id, title, type, status, asking_price, location, description,
	contact_email, details, rejection_reason, created_at, updated_at`

func (s *PostgresStore) FindByID(ctx context.Context, id domain.ListingID) (*models.Listing, error) {
	query := `SELECT ` + selectColumns + ` FROM listings WHERE id = $1`
	row := s.db.QueryRowContext(ctx, query, uuid.UUID(id))
	l, err := scanListing(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find listing: %w", err)
	}
	return l, nil
}

func (s *PostgresStore) List(ctx context.Context, filter models.ListFilter) ([]*models.Listing, error) {
	query := `SELECT ` + selectColumns + ` FROM listings
		WHERE ($1 = '' OR type = $1) AND ($2 = '' OR status = $2)
		ORDER BY created_at DESC`
	rows, err := s.db.QueryContext(ctx, query, filter.Type.String(), filter.Status.String())
	if err != nil {
		return nil, fmt.Errorf("list listings: %w", err)
	}
	defer rows.Close()

	var out []*models.Listing
	for rows.Next() {
		l, err := scanListing(rows)
		if err != nil {
			return nil, fmt.Errorf("list listings: %w", err)
		}
		out = append(out, l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list listings: %w", err)
	}
	return out, nil
}

func (s *PostgresStore) Delete(ctx context.Context, id domain.ListingID) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM listings WHERE id = $1`, uuid.UUID(id))
	if err != nil {
		return fmt.Errorf("delete listing: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete listing: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// Execute loads the listing, runs validate, applies mutate, and writes the
// result back. Concurrency note: unlike the in-memory store this is
// read-modify-write without row locking; the admin panel's single-writer
// usage makes that acceptable here.
func (s *PostgresStore) Execute(ctx context.Context, id domain.ListingID,
	validate func(l *models.Listing) error,
	mutate func(l *models.Listing),
) (*models.Listing, error) {
	l, err := s.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := validate(l); err != nil {
		return nil, err
	}
	mutate(l)
	if err := s.Update(ctx, l); err != nil {
		return nil, err
	}
	return l, nil
}

func (s *PostgresStore) CountByStatus(ctx context.Context) (map[domain.ListingStatus]int, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT status, COUNT(*) FROM listings GROUP BY status`)
	if err != nil {
		return nil, fmt.Errorf("count by status: %w", err)
	}
	defer rows.Close()

	counts := make(map[domain.ListingStatus]int)
	for rows.Next() {
		var status string
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return nil, fmt.Errorf("count by status: %w", err)
		}
		counts[domain.ListingStatus(status)] = count
	}
	return counts, rows.Err()
}

func (s *PostgresStore) CountByType(ctx context.Context) (map[domain.ListingType]int, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT type, COUNT(*) FROM listings GROUP BY type`)
	if err != nil {
		return nil, fmt.Errorf("count by type: %w", err)
	}
	defer rows.Close()

	counts := make(map[domain.ListingType]int)
	for rows.Next() {
		var listingType string
		var count int
		if err := rows.Scan(&listingType, &count); err != nil {
			return nil, fmt.Errorf("count by type: %w", err)
		}
		counts[domain.ListingType(listingType)] = count
	}
	return counts, rows.Err()
}

func (s *PostgresStore) Recent(ctx context.Context, n int) ([]*models.Listing, error) {
	query := `SELECT ` + selectColumns + ` FROM listings ORDER BY created_at DESC LIMIT $1`
	rows, err := s.db.QueryContext(ctx, query, n)
	if err != nil {
		return nil, fmt.Errorf("recent listings: %w", err)
	}
	defer rows.Close()

	var out []*models.Listing
	for rows.Next() {
		l, err := scanListing(rows)
		if err != nil {
			return nil, fmt.Errorf("recent listings: %w", err)
		}
		out = append(out, l)
	}
	return out, rows.Err()
}

func marshalDetails(l *models.Listing) ([]byte, error) {
	d := details{
		Business:     l.Business,
		Startup:      l.Startup,
		DigitalAsset: l.DigitalAsset,
	}
	b, err := json.Marshal(d)
	if err != nil {
		return nil, fmt.Errorf("marshal listing details: %w", err)
	}
	return b, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanListing(row scanner) (*models.Listing, error) {
	var (
		l           models.Listing
		id          uuid.UUID
		typ, status string
		detailsRaw  []byte
	)
	err := row.Scan(&id, &l.Title, &typ, &status, &l.AskingPrice, &l.Location,
		&l.Description, &l.ContactEmail, &detailsRaw, &l.RejectionReason,
		&l.CreatedAt, &l.UpdatedAt)
	if err != nil {
		return nil, err
	}
	l.ID = domain.ListingID(id)
	l.Type = domain.ListingType(typ)
	l.Status = domain.ListingStatus(status)
	if len(detailsRaw) > 0 {
		var d details
		if err := json.Unmarshal(detailsRaw, &d); err != nil {
			return nil, fmt.Errorf("unmarshal listing details: %w", err)
		}
		l.Business = d.Business
		l.Startup = d.Startup
		l.DigitalAsset = d.DigitalAsset
	}
	return &l, nil
}
