package farmer

import (
	"context"
	"database/sql"
	"fmt"
)

type postgresRepository struct {
	db *sql.DB
}

// NewPostgresRepository creates a farmer repository backed by Postgres.
func NewPostgresRepository(db *sql.DB) Repository {
	return &postgresRepository{db: db}
}

const farmerColumns = `
	id, firstname, middlename, surname, date_of_birth, gender, nin, COALESCE(bvn, ''),
	phone, address, state_id, lga_id, ward, farm_location, group_type_id, group_id,
	group_leader_name, group_leader_phone, crop, picture_url, vendor_id, status,
	date_registered, updated_at`

func (r *postgresRepository) Create(ctx context.Context, f *Farmer) error {
	query := `
		INSERT INTO farmers (
			firstname, middlename, surname, date_of_birth, gender, nin, bvn,
			phone, address, state_id, lga_id, ward, farm_location, group_type_id,
			group_id, group_leader_name, group_leader_phone, crop, picture_url,
			vendor_id, status
		)
		VALUES ($1, $2, $3, $4, $5, $6, NULLIF($7, ''), $8, $9, $10, $11, $12,
		        $13, $14, $15, $16, $17, $18, $19, $20, $21)
		RETURNING id, date_registered, updated_at`
	return r.db.QueryRowContext(ctx, query,
		f.FirstName, f.MiddleName, f.Surname, f.DateOfBirth, f.Gender, f.NIN, f.BVN,
		f.Phone, f.Address, f.StateID, f.LGAID, f.Ward, f.FarmLocation, f.GroupTypeID,
		f.GroupID, f.GroupLeaderName, f.GroupLeaderPhone, f.Crop, f.PictureURL,
		f.VendorID, f.Status,
	).Scan(&f.ID, &f.DateRegistered, &f.UpdatedAt)
}

func (r *postgresRepository) GetByID(ctx context.Context, id int64) (*Farmer, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+farmerColumns+` FROM farmers WHERE id = $1`, id)
	return scanFarmer(row)
}

func (r *postgresRepository) Update(ctx context.Context, f *Farmer) error {
	query := `
		UPDATE farmers
		SET firstname = $1, middlename = $2, surname = $3, date_of_birth = $4,
		    gender = $5, nin = $6, bvn = NULLIF($7, ''), phone = $8, address = $9,
		    state_id = $10, lga_id = $11, ward = $12, farm_location = $13,
		    group_type_id = $14, group_id = $15, group_leader_name = $16,
		    group_leader_phone = $17, crop = $18, picture_url = $19,
		    vendor_id = $20, status = $21, updated_at = now()
		WHERE id = $22
		RETURNING updated_at`
	return r.db.QueryRowContext(ctx, query,
		f.FirstName, f.MiddleName, f.Surname, f.DateOfBirth, f.Gender, f.NIN, f.BVN,
		f.Phone, f.Address, f.StateID, f.LGAID, f.Ward, f.FarmLocation, f.GroupTypeID,
		f.GroupID, f.GroupLeaderName, f.GroupLeaderPhone, f.Crop, f.PictureURL,
		f.VendorID, f.Status, f.ID,
	).Scan(&f.UpdatedAt)
}

func (r *postgresRepository) Delete(ctx context.Context, id int64) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM farmers WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

func (r *postgresRepository) List(ctx context.Context, filter ListFilter) ([]*Farmer, error) {
	query := `SELECT ` + farmerColumns + ` FROM farmers WHERE 1=1`
	args := []interface{}{}

	if filter.Status != "" {
		args = append(args, filter.Status)
		query += fmt.Sprintf(` AND status = $%d`, len(args))
	}
	if filter.StateID != 0 {
		args = append(args, filter.StateID)
		query += fmt.Sprintf(` AND state_id = $%d`, len(args))
	}
	if filter.LGAID != 0 {
		args = append(args, filter.LGAID)
		query += fmt.Sprintf(` AND lga_id = $%d`, len(args))
	}
	if filter.GroupTypeID != 0 {
		args = append(args, filter.GroupTypeID)
		query += fmt.Sprintf(` AND group_type_id = $%d`, len(args))
	}
	if filter.GroupID != 0 {
		args = append(args, filter.GroupID)
		query += fmt.Sprintf(` AND group_id = $%d`, len(args))
	}
	if filter.VendorID != 0 {
		args = append(args, filter.VendorID)
		query += fmt.Sprintf(` AND vendor_id = $%d`, len(args))
	}
	if filter.Search != "" {
		args = append(args, "%"+filter.Search+"%")
		query += fmt.Sprintf(
			` AND (firstname ILIKE $%[1]d OR surname ILIKE $%[1]d OR nin ILIKE $%[1]d
			   OR bvn ILIKE $%[1]d OR phone ILIKE $%[1]d)`, len(args))
	}
	query += ` ORDER BY date_registered DESC`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var farmers []*Farmer
	for rows.Next() {
		f, err := scanFarmer(rows)
		if err != nil {
			return nil, err
		}
		farmers = append(farmers, f)
	}
	return farmers, rows.Err()
}

func (r *postgresRepository) LookupByNIN(ctx context.Context, nin string) (*Summary, error) {
	query := `
		SELECT f.id, TRIM(f.firstname || ' ' || CASE WHEN f.middlename = '' THEN '' ELSE f.middlename || ' ' END || f.surname),
		       f.nin, f.phone, f.address,
		       COALESCE(s.name, ''), COALESCE(l.name, ''),
		       f.picture_url, f.status
		FROM farmers f
		LEFT JOIN states s ON s.id = f.state_id
		LEFT JOIN lgas l ON l.id = f.lga_id
		WHERE f.nin = $1`

	var sum Summary
	err := r.db.QueryRowContext(ctx, query, nin).Scan(
		&sum.FarmerID, &sum.FullName, &sum.NIN, &sum.Phone, &sum.Address,
		&sum.State, &sum.LGA, &sum.PictureURL, &sum.Status,
	)
	if err != nil {
		return nil, err
	}
	return &sum, nil
}

func (r *postgresRepository) LGABelongsToState(ctx context.Context, lgaID, stateID int64) (bool, error) {
	var ok bool
	err := r.db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM lgas WHERE id = $1 AND state_id = $2)`,
		lgaID, stateID).Scan(&ok)
	return ok, err
}

func (r *postgresRepository) HasDisbursements(ctx context.Context, farmerID int64) (bool, error) {
	var has bool
	err := r.db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM disbursements WHERE farmer_id = $1)`, farmerID).Scan(&has)
	return has, err
}

func (r *postgresRepository) VendorExists(ctx context.Context, vendorID int64) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM vendors WHERE id = $1)`, vendorID).Scan(&exists)
	return exists, err
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanFarmer(row rowScanner) (*Farmer, error) {
	var (
		f   Farmer
		dob sql.NullTime

		stateID, lgaID, groupTypeID, groupID, vendorID sql.NullInt64
	)
	err := row.Scan(
		&f.ID, &f.FirstName, &f.MiddleName, &f.Surname, &dob, &f.Gender,
		&f.NIN, &f.BVN, &f.Phone, &f.Address, &stateID, &lgaID, &f.Ward,
		&f.FarmLocation, &groupTypeID, &groupID, &f.GroupLeaderName,
		&f.GroupLeaderPhone, &f.Crop, &f.PictureURL, &vendorID, &f.Status,
		&f.DateRegistered, &f.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if dob.Valid {
		f.DateOfBirth = &dob.Time
	}
	f.StateID = nullableID(stateID)
	f.LGAID = nullableID(lgaID)
	f.GroupTypeID = nullableID(groupTypeID)
	f.GroupID = nullableID(groupID)
	f.VendorID = nullableID(vendorID)
	return &f, nil
}

func nullableID(n sql.NullInt64) *int64 {
	if !n.Valid {
		return nil
	}
	return &n.Int64
}
