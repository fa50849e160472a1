package incentive

import (
	"context"

	"github.com/agrilinkng/agrilink-backend/internal/domain"
)

// Repository defines incentive storage and the disbursement sums the
// allocation arithmetic is derived from.
type Repository interface {
	Create(ctx context.Context, i *Incentive) error
	GetByID(ctx context.Context, id int64) (*Incentive, error)
	Update(ctx context.Context, i *Incentive) error
	Delete(ctx context.Context, id int64) error
	List(ctx context.Context, filter ListFilter) ([]*Incentive, error)

	// DisbursedQuantity sums committed disbursements for one incentive.
	DisbursedQuantity(ctx context.Context, incentiveID int64) (int, error)
	// DisbursedQuantities sums committed disbursements for every incentive
	// of a center in one pass.
	DisbursedQuantities(ctx context.Context, centerID int64) (map[int64]int, error)
	HasDisbursements(ctx context.Context, incentiveID int64) (bool, error)
	CenterStatus(ctx context.Context, centerID int64) (domain.Status, error)
}
