package center

import "context"

// Repository defines redemption center storage.
type Repository interface {
	Create(ctx context.Context, c *Center) error
	GetByID(ctx context.Context, id int64) (*Center, error)
	Update(ctx context.Context, c *Center) error
	Delete(ctx context.Context, id int64) error
	List(ctx context.Context, filter ListFilter) ([]*Center, error)
	HasIncentives(ctx context.Context, centerID int64) (bool, error)
}
