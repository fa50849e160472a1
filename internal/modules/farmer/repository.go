package farmer

import "context"

// Repository defines farmer storage.
type Repository interface {
	Create(ctx context.Context, f *Farmer) error
	GetByID(ctx context.Context, id int64) (*Farmer, error)
	Update(ctx context.Context, f *Farmer) error
	Delete(ctx context.Context, id int64) error
	List(ctx context.Context, filter ListFilter) ([]*Farmer, error)

	// LookupByNIN resolves a farmer by NIN with display names joined in.
	LookupByNIN(ctx context.Context, nin string) (*Summary, error)

	// LGABelongsToState guards the state/LGA pairing on save.
	LGABelongsToState(ctx context.Context, lgaID, stateID int64) (bool, error)
	HasDisbursements(ctx context.Context, farmerID int64) (bool, error)
	VendorExists(ctx context.Context, vendorID int64) (bool, error)
}
