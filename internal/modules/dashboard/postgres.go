package dashboard

import (
	"context"
	"database/sql"
	"fmt"
)

type postgresRepository struct {
	db *sql.DB
}

// NewPostgresRepository creates a new PostgreSQL dashboard repository.
func NewPostgresRepository(db *sql.DB) Repository {
	return &postgresRepository{db: db}
}

const farmerName = `TRIM(f.firstname || ' ' || CASE WHEN f.middlename = '' THEN '' ELSE f.middlename || ' ' END || f.surname)`

func (r *postgresRepository) AdminCounts(ctx context.Context) (*adminCounts, error) {
	query := `
		SELECT
			(SELECT COUNT(*) FROM farmers),
			(SELECT COUNT(*) FROM farmers WHERE status = 'active'),
			(SELECT COUNT(*) FROM farmer_groups),
			(SELECT COUNT(*) FROM group_types),
			(SELECT COUNT(*) FROM vendors),
			(SELECT COUNT(*) FROM redemption_centers)`

	c := &adminCounts{}
	err := r.db.QueryRowContext(ctx, query).Scan(
		&c.TotalFarmers, &c.ActiveFarmers, &c.TotalGroups,
		&c.TotalGroupTypes, &c.TotalVendors, &c.TotalCenters,
	)
	if err != nil {
		return nil, err
	}
	return c, nil
}

func (r *postgresRepository) RecentFarmers(ctx context.Context, vendorID int64, limit int) ([]*FarmerDigest, error) {
	query := `
		SELECT f.id, ` + farmerName + `, f.nin, f.phone, COALESCE(s.name, ''), f.status, f.date_registered
		FROM farmers f
		LEFT JOIN states s ON s.id = f.state_id`

	args := []interface{}{}
	if vendorID != 0 {
		args = append(args, vendorID)
		query += fmt.Sprintf(" WHERE f.vendor_id = $%d", len(args))
	}
	args = append(args, limit)
	query += fmt.Sprintf(" ORDER BY f.date_registered DESC LIMIT $%d", len(args))

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var farmers []*FarmerDigest
	for rows.Next() {
		f := &FarmerDigest{}
		if err := rows.Scan(&f.ID, &f.FullName, &f.NIN, &f.Phone, &f.State, &f.Status, &f.RegisteredAt); err != nil {
			return nil, err
		}
		farmers = append(farmers, f)
	}
	return farmers, rows.Err()
}

func (r *postgresRepository) FarmerCounts(ctx context.Context, vendorID int64) (*farmerCounts, error) {
	query := `
		SELECT COUNT(*),
		       COUNT(*) FILTER (WHERE status = 'active'),
		       COUNT(*) FILTER (WHERE status = 'inactive')
		FROM farmers
		WHERE vendor_id = $1`

	c := &farmerCounts{}
	if err := r.db.QueryRowContext(ctx, query, vendorID).Scan(&c.Total, &c.Active, &c.Inactive); err != nil {
		return nil, err
	}
	return c, nil
}

func (r *postgresRepository) FarmersByState(ctx context.Context, vendorID int64, limit int) ([]*StateCount, error) {
	query := `
		SELECT COALESCE(s.name, 'Unknown'), COUNT(*)
		FROM farmers f
		LEFT JOIN states s ON s.id = f.state_id
		WHERE f.vendor_id = $1
		GROUP BY COALESCE(s.name, 'Unknown')
		ORDER BY COUNT(*) DESC, COALESCE(s.name, 'Unknown') ASC
		LIMIT $2`

	rows, err := r.db.QueryContext(ctx, query, vendorID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var counts []*StateCount
	for rows.Next() {
		c := &StateCount{}
		if err := rows.Scan(&c.State, &c.Count); err != nil {
			return nil, err
		}
		counts = append(counts, c)
	}
	return counts, rows.Err()
}

func (r *postgresRepository) VendorProfile(ctx context.Context, vendorID int64) (*VendorProfile, error) {
	query := `
		SELECT v.id, v.company,
		       TRIM(v.firstname || ' ' || CASE WHEN v.middlename = '' THEN '' ELSE v.middlename || ' ' END || v.surname),
		       v.email, v.phone, v.address, v.registration_no, v.status, v.date_registered,
		       (SELECT COUNT(*) FROM farmers f WHERE f.vendor_id = v.id),
		       (SELECT COUNT(*) FROM farmers f WHERE f.vendor_id = v.id AND f.status = 'active')
		FROM vendors v
		WHERE v.id = $1`

	p := &VendorProfile{}
	err := r.db.QueryRowContext(ctx, query, vendorID).Scan(
		&p.ID, &p.Company, &p.ContactName, &p.Email, &p.Phone, &p.Address,
		&p.RegistrationNo, &p.Status, &p.DateRegistered, &p.TotalFarmers, &p.ActiveFarmers,
	)
	if err != nil {
		return nil, err
	}
	return p, nil
}

func (r *postgresRepository) RecentAllocations(ctx context.Context, centerID int64, limit int) ([]*AllocationDigest, error) {
	query := `
		SELECT id, name, quantity, date_sent
		FROM incentives
		WHERE center_id = $1
		ORDER BY date_sent DESC, id DESC
		LIMIT $2`

	rows, err := r.db.QueryContext(ctx, query, centerID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var allocations []*AllocationDigest
	for rows.Next() {
		a := &AllocationDigest{}
		if err := rows.Scan(&a.ID, &a.Name, &a.Quantity, &a.DateSent); err != nil {
			return nil, err
		}
		allocations = append(allocations, a)
	}
	return allocations, rows.Err()
}

func (r *postgresRepository) RecentDisbursements(ctx context.Context, centerID int64, limit int) ([]*DisbursementDigest, error) {
	query := `
		SELECT d.id, d.reference, i.name, ` + farmerName + `, d.quantity, d.disbursed_at
		FROM disbursements d
		JOIN incentives i ON i.id = d.incentive_id
		JOIN farmers f ON f.id = d.farmer_id
		WHERE d.center_id = $1
		ORDER BY d.disbursed_at DESC
		LIMIT $2`

	rows, err := r.db.QueryContext(ctx, query, centerID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var disbursements []*DisbursementDigest
	for rows.Next() {
		d := &DisbursementDigest{}
		if err := rows.Scan(&d.ID, &d.Reference, &d.IncentiveName, &d.FarmerName, &d.Quantity, &d.DisbursedAt); err != nil {
			return nil, err
		}
		disbursements = append(disbursements, d)
	}
	return disbursements, rows.Err()
}

func (r *postgresRepository) TopIncentives(ctx context.Context, centerID int64, limit int) ([]*IncentiveTally, error) {
	query := `
		SELECT i.id, i.name, COUNT(d.id), COALESCE(SUM(d.quantity), 0)
		FROM disbursements d
		JOIN incentives i ON i.id = d.incentive_id
		WHERE d.center_id = $1
		GROUP BY i.id, i.name
		ORDER BY COALESCE(SUM(d.quantity), 0) DESC
		LIMIT $2`

	rows, err := r.db.QueryContext(ctx, query, centerID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tallies []*IncentiveTally
	for rows.Next() {
		t := &IncentiveTally{}
		if err := rows.Scan(&t.IncentiveID, &t.Name, &t.Disbursements, &t.Quantity); err != nil {
			return nil, err
		}
		tallies = append(tallies, t)
	}
	return tallies, rows.Err()
}

func (r *postgresRepository) CenterTotals(ctx context.Context, centerID int64) (*CenterTotals, error) {
	query := `
		SELECT
			(SELECT COUNT(*) FROM incentives WHERE center_id = $1),
			(SELECT COALESCE(SUM(quantity), 0) FROM incentives WHERE center_id = $1),
			(SELECT COALESCE(SUM(quantity), 0) FROM disbursements WHERE center_id = $1)`

	t := &CenterTotals{}
	if err := r.db.QueryRowContext(ctx, query, centerID).Scan(&t.Allocations, &t.ItemsAllocated, &t.ItemsDisbursed); err != nil {
		return nil, err
	}
	t.ItemsRemaining = t.ItemsAllocated - t.ItemsDisbursed
	return t, nil
}

func (r *postgresRepository) CenterStats(ctx context.Context, centerID int64) (*CenterStats, error) {
	query := `
		SELECT
			(SELECT COUNT(*) FROM incentives WHERE center_id = $1),
			(SELECT COUNT(*) FROM disbursements WHERE center_id = $1),
			(SELECT COALESCE(SUM(quantity), 0) FROM disbursements WHERE center_id = $1),
			(SELECT COUNT(DISTINCT farmer_id) FROM disbursements WHERE center_id = $1)`

	s := &CenterStats{}
	err := r.db.QueryRowContext(ctx, query, centerID).Scan(
		&s.Allocations, &s.Disbursements, &s.ItemsDisbursed, &s.UniqueFarmers,
	)
	if err != nil {
		return nil, err
	}
	return s, nil
}

func (r *postgresRepository) CenterProfile(ctx context.Context, centerID int64) (*CenterProfile, error) {
	query := `
		SELECT id, name, address, email, phone, description, status, created_at
		FROM redemption_centers
		WHERE id = $1`

	p := &CenterProfile{}
	err := r.db.QueryRowContext(ctx, query, centerID).Scan(
		&p.ID, &p.Name, &p.Address, &p.Email, &p.Phone, &p.Description, &p.Status, &p.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return p, nil
}
