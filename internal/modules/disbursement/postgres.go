package disbursement

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/agrilinkng/agrilink-backend/internal/database"
	"github.com/agrilinkng/agrilink-backend/internal/domain"
)

type postgresRepository struct {
	db *sql.DB
}

// NewPostgresRepository creates a disbursement repository backed by Postgres.
func NewPostgresRepository(db *sql.DB) Repository {
	return &postgresRepository{db: db}
}

// Commit inserts the disbursement inside a single transaction. The incentive
// row is locked first, so the remaining-quantity check and the insert are
// serialised per incentive; the unique (incentive, farmer) index catches
// duplicate attempts that raced past the service precheck.
func (r *postgresRepository) Commit(ctx context.Context, d *Disbursement) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var total int
	err = tx.QueryRowContext(ctx,
		`SELECT quantity FROM incentives WHERE id = $1 FOR UPDATE`,
		d.IncentiveID).Scan(&total)
	if err != nil {
		if err == sql.ErrNoRows {
			return domain.NotFound("incentive", d.IncentiveID)
		}
		return fmt.Errorf("lock incentive: %w", err)
	}

	var disbursed int
	err = tx.QueryRowContext(ctx,
		`SELECT COALESCE(SUM(quantity), 0) FROM disbursements WHERE incentive_id = $1`,
		d.IncentiveID).Scan(&disbursed)
	if err != nil {
		return fmt.Errorf("sum disbursed: %w", err)
	}

	remaining := total - disbursed
	if remaining < 0 {
		return domain.Invariant("incentive %d has remaining quantity %d (quantity %d, disbursed %d)",
			d.IncentiveID, remaining, total, disbursed)
	}
	if d.Quantity > remaining {
		return &domain.InsufficientQuantityError{Requested: d.Quantity, Remaining: remaining}
	}

	err = tx.QueryRowContext(ctx, `
		INSERT INTO disbursements
		  (reference, incentive_id, farmer_id, center_id, quantity, disbursed_by, notes)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, disbursed_at`,
		d.Reference, d.IncentiveID, d.FarmerID, d.CenterID, d.Quantity, d.DisbursedBy, d.Notes,
	).Scan(&d.ID, &d.DisbursedAt)
	if err != nil {
		if database.IsUniqueViolation(err, "disbursements_incentive_id_farmer_id_key") {
			return &domain.DuplicateDisbursementError{IncentiveID: d.IncentiveID, FarmerID: d.FarmerID}
		}
		return fmt.Errorf("insert disbursement: %w", err)
	}

	return tx.Commit()
}

const disbursementSelect = `
	SELECT d.id, d.reference, d.incentive_id, d.farmer_id, d.center_id,
	       d.quantity, d.disbursed_by, d.notes, d.disbursed_at,
	       i.name,
	       TRIM(f.firstname || ' ' || CASE WHEN f.middlename = '' THEN '' ELSE f.middlename || ' ' END || f.surname),
	       f.nin, c.name
	FROM disbursements d
	JOIN incentives i ON i.id = d.incentive_id
	JOIN farmers f ON f.id = d.farmer_id
	JOIN redemption_centers c ON c.id = d.center_id`

func (r *postgresRepository) GetByID(ctx context.Context, id int64) (*Disbursement, error) {
	return scanDisbursement(r.db.QueryRowContext(ctx, disbursementSelect+` WHERE d.id = $1`, id))
}

func (r *postgresRepository) GetByReference(ctx context.Context, reference string) (*Disbursement, error) {
	return scanDisbursement(r.db.QueryRowContext(ctx, disbursementSelect+` WHERE d.reference = $1`, reference))
}

func (r *postgresRepository) List(ctx context.Context, filter ListFilter) ([]*Disbursement, error) {
	query, args := applyFilter(disbursementSelect+` WHERE 1=1`, filter)
	query += ` ORDER BY d.disbursed_at DESC, d.id DESC`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var disbursements []*Disbursement
	for rows.Next() {
		d, err := scanDisbursement(rows)
		if err != nil {
			return nil, err
		}
		disbursements = append(disbursements, d)
	}
	return disbursements, rows.Err()
}

func (r *postgresRepository) Stats(ctx context.Context, filter ListFilter) (*Stats, error) {
	base := `
		SELECT COUNT(*), COALESCE(SUM(d.quantity), 0), COUNT(DISTINCT d.farmer_id)
		FROM disbursements d
		JOIN incentives i ON i.id = d.incentive_id
		JOIN farmers f ON f.id = d.farmer_id
		JOIN redemption_centers c ON c.id = d.center_id
		WHERE 1=1`
	query, args := applyFilter(base, filter)

	var st Stats
	err := r.db.QueryRowContext(ctx, query, args...).
		Scan(&st.TotalDisbursements, &st.TotalQuantity, &st.UniqueFarmers)
	if err != nil {
		return nil, err
	}
	return &st, nil
}

func (r *postgresRepository) IncentiveForCenter(ctx context.Context, incentiveID, centerID int64) (*incentiveRow, error) {
	var row incentiveRow
	err := r.db.QueryRowContext(ctx,
		`SELECT id, name, quantity FROM incentives WHERE id = $1 AND center_id = $2`,
		incentiveID, centerID).Scan(&row.ID, &row.Name, &row.Quantity)
	if err != nil {
		return nil, err
	}
	return &row, nil
}

func (r *postgresRepository) DisbursedQuantity(ctx context.Context, incentiveID int64) (int, error) {
	var total int
	err := r.db.QueryRowContext(ctx,
		`SELECT COALESCE(SUM(quantity), 0) FROM disbursements WHERE incentive_id = $1`,
		incentiveID).Scan(&total)
	return total, err
}

func (r *postgresRepository) FarmerByID(ctx context.Context, farmerID int64) (*farmerRow, error) {
	var row farmerRow
	err := r.db.QueryRowContext(ctx, `
		SELECT id,
		       TRIM(firstname || ' ' || CASE WHEN middlename = '' THEN '' ELSE middlename || ' ' END || surname),
		       status
		FROM farmers WHERE id = $1`, farmerID).Scan(&row.ID, &row.FullName, &row.Status)
	if err != nil {
		return nil, err
	}
	return &row, nil
}

func (r *postgresRepository) Exists(ctx context.Context, incentiveID, farmerID int64) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM disbursements WHERE incentive_id = $1 AND farmer_id = $2)`,
		incentiveID, farmerID).Scan(&exists)
	return exists, err
}

// ── helpers ─────────────────────────────────────────────────────────────────

func applyFilter(query string, filter ListFilter) (string, []interface{}) {
	args := []interface{}{}

	if filter.CenterID != 0 {
		args = append(args, filter.CenterID)
		query += fmt.Sprintf(` AND d.center_id = $%d`, len(args))
	}
	if filter.IncentiveID != 0 {
		args = append(args, filter.IncentiveID)
		query += fmt.Sprintf(` AND d.incentive_id = $%d`, len(args))
	}
	if filter.FarmerID != 0 {
		args = append(args, filter.FarmerID)
		query += fmt.Sprintf(` AND d.farmer_id = $%d`, len(args))
	}
	if filter.Search != "" {
		args = append(args, "%"+filter.Search+"%")
		query += fmt.Sprintf(
			` AND (d.reference ILIKE $%[1]d OR f.firstname ILIKE $%[1]d OR f.surname ILIKE $%[1]d
			   OR f.nin ILIKE $%[1]d OR i.name ILIKE $%[1]d)`, len(args))
	}
	if filter.DateFrom != nil {
		args = append(args, *filter.DateFrom)
		query += fmt.Sprintf(` AND d.disbursed_at >= $%d`, len(args))
	}
	if filter.DateTo != nil {
		args = append(args, *filter.DateTo)
		query += fmt.Sprintf(` AND d.disbursed_at <= $%d`, len(args))
	}
	return query, args
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanDisbursement(row rowScanner) (*Disbursement, error) {
	var (
		d  Disbursement
		by sql.NullString
	)
	err := row.Scan(
		&d.ID, &d.Reference, &d.IncentiveID, &d.FarmerID, &d.CenterID,
		&d.Quantity, &by, &d.Notes, &d.DisbursedAt,
		&d.IncentiveName, &d.FarmerName, &d.FarmerNIN, &d.CenterName,
	)
	if err != nil {
		return nil, err
	}
	if by.Valid {
		if id, err := uuid.Parse(by.String); err == nil {
			d.DisbursedBy = &id
		}
	}
	return &d, nil
}
