package account

import (
	"context"
	"database/sql"

	"github.com/google/uuid"

	"github.com/agrilinkng/agrilink-backend/internal/domain"
)

type postgresRepository struct {
	db *sql.DB
}

// NewPostgresRepository creates a portal account repository backed by Postgres.
func NewPostgresRepository(db *sql.DB) Repository {
	return &postgresRepository{db: db}
}

const userSelect = `
	SELECT id, username, password_hash, role, vendor_id, center_id, created_at, updated_at
	FROM portal_users`

func (r *postgresRepository) Create(ctx context.Context, u *PortalUser) error {
	query := `
		INSERT INTO portal_users (id, username, password_hash, role, vendor_id, center_id)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at, updated_at`
	return r.db.QueryRowContext(ctx, query,
		u.ID, u.Username, u.PasswordHash, u.Role, u.VendorID, u.CenterID,
	).Scan(&u.CreatedAt, &u.UpdatedAt)
}

func (r *postgresRepository) GetByID(ctx context.Context, id uuid.UUID) (*PortalUser, error) {
	return scanUser(r.db.QueryRowContext(ctx, userSelect+` WHERE id = $1`, id))
}

func (r *postgresRepository) GetByUsername(ctx context.Context, username string) (*PortalUser, error) {
	return scanUser(r.db.QueryRowContext(ctx, userSelect+` WHERE username = $1`, username))
}

func (r *postgresRepository) GetByVendorID(ctx context.Context, vendorID int64) (*PortalUser, error) {
	return scanUser(r.db.QueryRowContext(ctx, userSelect+` WHERE vendor_id = $1`, vendorID))
}

func (r *postgresRepository) GetByCenterID(ctx context.Context, centerID int64) (*PortalUser, error) {
	return scanUser(r.db.QueryRowContext(ctx, userSelect+` WHERE center_id = $1`, centerID))
}

func (r *postgresRepository) UpdateCredentials(ctx context.Context, id uuid.UUID, username, passwordHash string) error {
	result, err := r.db.ExecContext(ctx, `
		UPDATE portal_users
		SET username = $1, password_hash = $2, updated_at = now()
		WHERE id = $3`, username, passwordHash, id)
	if err != nil {
		return err
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

func (r *postgresRepository) UsernameTaken(ctx context.Context, username string, exclude uuid.UUID) (bool, error) {
	var taken bool
	err := r.db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM portal_users WHERE username = $1 AND id <> $2)`,
		username, exclude).Scan(&taken)
	return taken, err
}

func (r *postgresRepository) AdminExists(ctx context.Context) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM portal_users WHERE role = 'admin')`).Scan(&exists)
	return exists, err
}

func (r *postgresRepository) VendorName(ctx context.Context, vendorID int64) (string, string, error) {
	var first, surname string
	err := r.db.QueryRowContext(ctx,
		`SELECT firstname, surname FROM vendors WHERE id = $1`, vendorID).Scan(&first, &surname)
	return first, surname, err
}

func (r *postgresRepository) CenterName(ctx context.Context, centerID int64) (string, error) {
	var name string
	err := r.db.QueryRowContext(ctx,
		`SELECT name FROM redemption_centers WHERE id = $1`, centerID).Scan(&name)
	return name, err
}

func (r *postgresRepository) VendorStatus(ctx context.Context, vendorID int64) (domain.Status, error) {
	var status domain.Status
	err := r.db.QueryRowContext(ctx,
		`SELECT status FROM vendors WHERE id = $1`, vendorID).Scan(&status)
	return status, err
}

func (r *postgresRepository) CenterStatus(ctx context.Context, centerID int64) (domain.Status, error) {
	var status domain.Status
	err := r.db.QueryRowContext(ctx,
		`SELECT status FROM redemption_centers WHERE id = $1`, centerID).Scan(&status)
	return status, err
}

func scanUser(row *sql.Row) (*PortalUser, error) {
	var (
		u                  PortalUser
		vendorID, centerID sql.NullInt64
	)
	err := row.Scan(&u.ID, &u.Username, &u.PasswordHash, &u.Role,
		&vendorID, &centerID, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if vendorID.Valid {
		u.VendorID = &vendorID.Int64
	}
	if centerID.Valid {
		u.CenterID = &centerID.Int64
	}
	return &u, nil
}
