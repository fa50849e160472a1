package group

import (
	"context"
	"database/sql"
	"fmt"
)

type postgresRepository struct {
	db *sql.DB
}

// NewPostgresRepository creates a group repository backed by Postgres.
func NewPostgresRepository(db *sql.DB) Repository {
	return &postgresRepository{db: db}
}

// ── Group types ─────────────────────────────────────────────────────────────

func (r *postgresRepository) CreateGroupType(ctx context.Context, gt *GroupType) error {
	query := `
		INSERT INTO group_types (name, description)
		VALUES ($1, $2)
		RETURNING id, created_at, updated_at`
	return r.db.QueryRowContext(ctx, query, gt.Name, gt.Description).
		Scan(&gt.ID, &gt.CreatedAt, &gt.UpdatedAt)
}

func (r *postgresRepository) GetGroupTypeByID(ctx context.Context, id int64) (*GroupType, error) {
	query := `
		SELECT id, name, description, created_at, updated_at
		FROM group_types WHERE id = $1`

	var gt GroupType
	err := r.db.QueryRowContext(ctx, query, id).
		Scan(&gt.ID, &gt.Name, &gt.Description, &gt.CreatedAt, &gt.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &gt, nil
}

func (r *postgresRepository) UpdateGroupType(ctx context.Context, gt *GroupType) error {
	query := `
		UPDATE group_types
		SET name = $1, description = $2, updated_at = now()
		WHERE id = $3
		RETURNING updated_at`
	return r.db.QueryRowContext(ctx, query, gt.Name, gt.Description, gt.ID).Scan(&gt.UpdatedAt)
}

func (r *postgresRepository) DeleteGroupType(ctx context.Context, id int64) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM group_types WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

func (r *postgresRepository) ListGroupTypes(ctx context.Context) ([]*GroupType, error) {
	query := `
		SELECT id, name, description, created_at, updated_at
		FROM group_types ORDER BY name`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var types []*GroupType
	for rows.Next() {
		var gt GroupType
		if err := rows.Scan(&gt.ID, &gt.Name, &gt.Description, &gt.CreatedAt, &gt.UpdatedAt); err != nil {
			return nil, err
		}
		types = append(types, &gt)
	}
	return types, rows.Err()
}

func (r *postgresRepository) GroupTypeInUse(ctx context.Context, id int64) (bool, error) {
	query := `
		SELECT EXISTS (SELECT 1 FROM farmer_groups WHERE group_type_id = $1)
		    OR EXISTS (SELECT 1 FROM farmers WHERE group_type_id = $1)`

	var used bool
	if err := r.db.QueryRowContext(ctx, query, id).Scan(&used); err != nil {
		return false, err
	}
	return used, nil
}

// ── Groups ──────────────────────────────────────────────────────────────────

const groupSelect = `
	SELECT g.id, g.name, g.group_type_id, gt.name,
	       g.group_leader_id,
	       COALESCE(TRIM(f.firstname || ' ' || f.surname), ''),
	       g.description, g.is_active,
	       (SELECT COUNT(*) FROM farmers m WHERE m.group_id = g.id),
	       g.created_at, g.updated_at
	FROM farmer_groups g
	JOIN group_types gt ON gt.id = g.group_type_id
	LEFT JOIN farmers f ON f.id = g.group_leader_id`

func (r *postgresRepository) CreateGroup(ctx context.Context, g *Group) error {
	query := `
		INSERT INTO farmer_groups (name, group_type_id, group_leader_id, description, is_active)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at, updated_at`
	return r.db.QueryRowContext(ctx, query, g.Name, g.GroupTypeID, g.LeaderID, g.Description, g.IsActive).
		Scan(&g.ID, &g.CreatedAt, &g.UpdatedAt)
}

func (r *postgresRepository) GetGroupByID(ctx context.Context, id int64) (*Group, error) {
	rows, err := r.db.QueryContext(ctx, groupSelect+` WHERE g.id = $1`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	groups, err := scanGroups(rows)
	if err != nil {
		return nil, err
	}
	if len(groups) == 0 {
		return nil, sql.ErrNoRows
	}
	return groups[0], nil
}

func (r *postgresRepository) UpdateGroup(ctx context.Context, g *Group) error {
	query := `
		UPDATE farmer_groups
		SET name = $1, group_type_id = $2, group_leader_id = $3, description = $4,
		    is_active = $5, updated_at = now()
		WHERE id = $6
		RETURNING updated_at`
	return r.db.QueryRowContext(ctx, query, g.Name, g.GroupTypeID, g.LeaderID, g.Description,
		g.IsActive, g.ID).Scan(&g.UpdatedAt)
}

func (r *postgresRepository) DeleteGroup(ctx context.Context, id int64) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM farmer_groups WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

func (r *postgresRepository) ListGroups(ctx context.Context, filter ListFilter) ([]*Group, error) {
	query := groupSelect + ` WHERE 1=1`
	args := []interface{}{}

	if filter.Active != nil {
		args = append(args, *filter.Active)
		query += fmt.Sprintf(` AND g.is_active = $%d`, len(args))
	}
	if filter.TypeID != 0 {
		args = append(args, filter.TypeID)
		query += fmt.Sprintf(` AND g.group_type_id = $%d`, len(args))
	}
	if filter.Search != "" {
		args = append(args, "%"+filter.Search+"%")
		query += fmt.Sprintf(
			` AND (g.name ILIKE $%[1]d OR gt.name ILIKE $%[1]d OR g.description ILIKE $%[1]d)`,
			len(args))
	}
	query += ` ORDER BY g.created_at DESC`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanGroups(rows)
}

func (r *postgresRepository) FarmerExists(ctx context.Context, farmerID int64) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM farmers WHERE id = $1)`, farmerID).Scan(&exists)
	return exists, err
}

func scanGroups(rows *sql.Rows) ([]*Group, error) {
	var groups []*Group
	for rows.Next() {
		var (
			g      Group
			leader sql.NullInt64
		)
		err := rows.Scan(&g.ID, &g.Name, &g.GroupTypeID, &g.GroupTypeName,
			&leader, &g.LeaderName, &g.Description, &g.IsActive, &g.MemberCount,
			&g.CreatedAt, &g.UpdatedAt)
		if err != nil {
			return nil, err
		}
		if leader.Valid {
			g.LeaderID = &leader.Int64
		}
		groups = append(groups, &g)
	}
	return groups, rows.Err()
}
