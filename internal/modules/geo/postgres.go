package geo

import (
	"context"
	"database/sql"
)

type postgresRepository struct {
	db *sql.DB
}

// NewPostgresRepository creates a geo repository backed by Postgres.
func NewPostgresRepository(db *sql.DB) Repository {
	return &postgresRepository{db: db}
}

func (r *postgresRepository) CreateState(ctx context.Context, s *State) error {
	query := `
		INSERT INTO states (name, code)
		VALUES ($1, NULLIF($2, ''))
		RETURNING id`
	return r.db.QueryRowContext(ctx, query, s.Name, s.Code).Scan(&s.ID)
}

func (r *postgresRepository) GetStateByID(ctx context.Context, id int64) (*State, error) {
	query := `SELECT id, name, COALESCE(code, '') FROM states WHERE id = $1`

	var s State
	err := r.db.QueryRowContext(ctx, query, id).Scan(&s.ID, &s.Name, &s.Code)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *postgresRepository) ListStates(ctx context.Context) ([]*State, error) {
	query := `SELECT id, name, COALESCE(code, '') FROM states ORDER BY name`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var states []*State
	for rows.Next() {
		var s State
		if err := rows.Scan(&s.ID, &s.Name, &s.Code); err != nil {
			return nil, err
		}
		states = append(states, &s)
	}
	return states, rows.Err()
}

func (r *postgresRepository) CreateLGA(ctx context.Context, l *LGA) error {
	query := `
		INSERT INTO lgas (name, state_id)
		VALUES ($1, $2)
		RETURNING id`
	return r.db.QueryRowContext(ctx, query, l.Name, l.StateID).Scan(&l.ID)
}

func (r *postgresRepository) GetLGAByID(ctx context.Context, id int64) (*LGA, error) {
	query := `SELECT id, name, state_id FROM lgas WHERE id = $1`

	var l LGA
	err := r.db.QueryRowContext(ctx, query, id).Scan(&l.ID, &l.Name, &l.StateID)
	if err != nil {
		return nil, err
	}
	return &l, nil
}

func (r *postgresRepository) ListLGAsByState(ctx context.Context, stateID int64) ([]*LGA, error) {
	query := `SELECT id, name, state_id FROM lgas WHERE state_id = $1 ORDER BY name`

	rows, err := r.db.QueryContext(ctx, query, stateID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var lgas []*LGA
	for rows.Next() {
		var l LGA
		if err := rows.Scan(&l.ID, &l.Name, &l.StateID); err != nil {
			return nil, err
		}
		lgas = append(lgas, &l)
	}
	return lgas, rows.Err()
}
