package geo

import "context"

// Repository defines storage for state and LGA reference data.
type Repository interface {
	CreateState(ctx context.Context, s *State) error
	GetStateByID(ctx context.Context, id int64) (*State, error)
	ListStates(ctx context.Context) ([]*State, error)

	CreateLGA(ctx context.Context, l *LGA) error
	GetLGAByID(ctx context.Context, id int64) (*LGA, error)
	ListLGAsByState(ctx context.Context, stateID int64) ([]*LGA, error)
}
