package center

import (
	"context"
	"database/sql"
	"fmt"
)

type postgresRepository struct {
	db *sql.DB
}

// NewPostgresRepository creates a center repository backed by Postgres.
func NewPostgresRepository(db *sql.DB) Repository {
	return &postgresRepository{db: db}
}

const centerSelect = `
	SELECT id, name, address, phone, email, description, status, created_at, updated_at
	FROM redemption_centers`

func (r *postgresRepository) Create(ctx context.Context, c *Center) error {
	query := `
		INSERT INTO redemption_centers (name, address, phone, email, description, status)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at, updated_at`
	return r.db.QueryRowContext(ctx, query,
		c.Name, c.Address, c.Phone, c.Email, c.Description, c.Status,
	).Scan(&c.ID, &c.CreatedAt, &c.UpdatedAt)
}

func (r *postgresRepository) GetByID(ctx context.Context, id int64) (*Center, error) {
	var c Center
	err := r.db.QueryRowContext(ctx, centerSelect+` WHERE id = $1`, id).Scan(
		&c.ID, &c.Name, &c.Address, &c.Phone, &c.Email, &c.Description,
		&c.Status, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *postgresRepository) Update(ctx context.Context, c *Center) error {
	query := `
		UPDATE redemption_centers
		SET name = $1, address = $2, phone = $3, email = $4, description = $5,
		    status = $6, updated_at = now()
		WHERE id = $7
		RETURNING updated_at`
	return r.db.QueryRowContext(ctx, query,
		c.Name, c.Address, c.Phone, c.Email, c.Description, c.Status, c.ID,
	).Scan(&c.UpdatedAt)
}

func (r *postgresRepository) Delete(ctx context.Context, id int64) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM redemption_centers WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

func (r *postgresRepository) List(ctx context.Context, filter ListFilter) ([]*Center, error) {
	query := centerSelect + ` WHERE 1=1`
	args := []interface{}{}

	if filter.Status != "" {
		args = append(args, filter.Status)
		query += fmt.Sprintf(` AND status = $%d`, len(args))
	}
	if filter.Search != "" {
		args = append(args, "%"+filter.Search+"%")
		query += fmt.Sprintf(
			` AND (name ILIKE $%[1]d OR email ILIKE $%[1]d OR address ILIKE $%[1]d)`, len(args))
	}
	query += ` ORDER BY name`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var centers []*Center
	for rows.Next() {
		var c Center
		err := rows.Scan(
			&c.ID, &c.Name, &c.Address, &c.Phone, &c.Email, &c.Description,
			&c.Status, &c.CreatedAt, &c.UpdatedAt,
		)
		if err != nil {
			return nil, err
		}
		centers = append(centers, &c)
	}
	return centers, rows.Err()
}

func (r *postgresRepository) HasIncentives(ctx context.Context, centerID int64) (bool, error) {
	var has bool
	err := r.db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM incentives WHERE center_id = $1)`, centerID).Scan(&has)
	return has, err
}
