package disbursement

import "context"

// Repository defines data access for disbursements.
type Repository interface {
	// Commit atomically inserts the disbursement. It takes a row lock on the
	// incentive, re-checks the remaining quantity under the lock and relies
	// on the unique (incentive, farmer) constraint, so concurrent commits
	// against the same incentive serialise and never oversubscribe it.
	Commit(ctx context.Context, d *Disbursement) error

	// GetByID retrieves a disbursement with display names joined in.
	GetByID(ctx context.Context, id int64) (*Disbursement, error)

	// GetByReference retrieves a disbursement by its receipt reference.
	GetByReference(ctx context.Context, reference string) (*Disbursement, error)

	// List returns disbursements matching the filter, newest first.
	List(ctx context.Context, filter ListFilter) ([]*Disbursement, error)

	// Stats summarises the disbursements matching the filter.
	Stats(ctx context.Context, filter ListFilter) (*Stats, error)

	// IncentiveForCenter fetches an incentive only when it belongs to the
	// acting center. An incentive of another center resolves as not found.
	IncentiveForCenter(ctx context.Context, incentiveID, centerID int64) (*incentiveRow, error)

	// DisbursedQuantity sums committed disbursements for one incentive.
	DisbursedQuantity(ctx context.Context, incentiveID int64) (int, error)

	// FarmerByID fetches the farmer slice the engine validates.
	FarmerByID(ctx context.Context, farmerID int64) (*farmerRow, error)

	// Exists reports whether the farmer already drew from the incentive.
	Exists(ctx context.Context, incentiveID, farmerID int64) (bool, error)
}
