package incentive

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/agrilinkng/agrilink-backend/internal/domain"
)

type postgresRepository struct {
	db *sql.DB
}

// NewPostgresRepository creates an incentive repository backed by Postgres.
func NewPostgresRepository(db *sql.DB) Repository {
	return &postgresRepository{db: db}
}

const incentiveSelect = `
	SELECT i.id, i.name, i.quantity, i.center_id, c.name, i.date_sent,
	       i.description, i.created_at, i.updated_at
	FROM incentives i
	JOIN redemption_centers c ON c.id = i.center_id`

func (r *postgresRepository) Create(ctx context.Context, i *Incentive) error {
	query := `
		INSERT INTO incentives (name, quantity, center_id, date_sent, description)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at, updated_at`
	return r.db.QueryRowContext(ctx, query,
		i.Name, i.Quantity, i.CenterID, i.DateSent, i.Description,
	).Scan(&i.ID, &i.CreatedAt, &i.UpdatedAt)
}

func (r *postgresRepository) GetByID(ctx context.Context, id int64) (*Incentive, error) {
	var i Incentive
	err := r.db.QueryRowContext(ctx, incentiveSelect+` WHERE i.id = $1`, id).Scan(
		&i.ID, &i.Name, &i.Quantity, &i.CenterID, &i.CenterName,
		&i.DateSent, &i.Description, &i.CreatedAt, &i.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &i, nil
}

func (r *postgresRepository) Update(ctx context.Context, i *Incentive) error {
	query := `
		UPDATE incentives
		SET name = $1, quantity = $2, center_id = $3, date_sent = $4,
		    description = $5, updated_at = now()
		WHERE id = $6
		RETURNING updated_at`
	return r.db.QueryRowContext(ctx, query,
		i.Name, i.Quantity, i.CenterID, i.DateSent, i.Description, i.ID,
	).Scan(&i.UpdatedAt)
}

func (r *postgresRepository) Delete(ctx context.Context, id int64) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM incentives WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

func (r *postgresRepository) List(ctx context.Context, filter ListFilter) ([]*Incentive, error) {
	query := incentiveSelect + ` WHERE 1=1`
	args := []interface{}{}

	if filter.CenterID != 0 {
		args = append(args, filter.CenterID)
		query += fmt.Sprintf(` AND i.center_id = $%d`, len(args))
	}
	if filter.Search != "" {
		args = append(args, "%"+filter.Search+"%")
		query += fmt.Sprintf(
			` AND (i.name ILIKE $%[1]d OR i.description ILIKE $%[1]d OR c.name ILIKE $%[1]d)`, len(args))
	}
	if filter.DateFrom != nil {
		args = append(args, *filter.DateFrom)
		query += fmt.Sprintf(` AND i.date_sent >= $%d`, len(args))
	}
	if filter.DateTo != nil {
		args = append(args, *filter.DateTo)
		query += fmt.Sprintf(` AND i.date_sent <= $%d`, len(args))
	}
	query += ` ORDER BY i.date_sent DESC, i.id DESC`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var incentives []*Incentive
	for rows.Next() {
		var i Incentive
		err := rows.Scan(
			&i.ID, &i.Name, &i.Quantity, &i.CenterID, &i.CenterName,
			&i.DateSent, &i.Description, &i.CreatedAt, &i.UpdatedAt,
		)
		if err != nil {
			return nil, err
		}
		incentives = append(incentives, &i)
	}
	return incentives, rows.Err()
}

func (r *postgresRepository) DisbursedQuantity(ctx context.Context, incentiveID int64) (int, error) {
	var total int
	err := r.db.QueryRowContext(ctx,
		`SELECT COALESCE(SUM(quantity), 0) FROM disbursements WHERE incentive_id = $1`,
		incentiveID).Scan(&total)
	return total, err
}

func (r *postgresRepository) DisbursedQuantities(ctx context.Context, centerID int64) (map[int64]int, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT incentive_id, SUM(quantity)
		FROM disbursements
		WHERE center_id = $1
		GROUP BY incentive_id`, centerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	totals := make(map[int64]int)
	for rows.Next() {
		var (
			id  int64
			sum int
		)
		if err := rows.Scan(&id, &sum); err != nil {
			return nil, err
		}
		totals[id] = sum
	}
	return totals, rows.Err()
}

func (r *postgresRepository) HasDisbursements(ctx context.Context, incentiveID int64) (bool, error) {
	var has bool
	err := r.db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM disbursements WHERE incentive_id = $1)`,
		incentiveID).Scan(&has)
	return has, err
}

func (r *postgresRepository) CenterStatus(ctx context.Context, centerID int64) (domain.Status, error) {
	var status domain.Status
	err := r.db.QueryRowContext(ctx,
		`SELECT status FROM redemption_centers WHERE id = $1`, centerID).Scan(&status)
	return status, err
}
