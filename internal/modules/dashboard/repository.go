package dashboard

import "context"

// Repository defines the aggregate queries behind the dashboards. The
// figures are always computed from the live tables, never cached.
type Repository interface {
	AdminCounts(ctx context.Context) (*adminCounts, error)

	// RecentFarmers returns the newest registrations, scoped to a vendor
	// when vendorID is non-zero.
	RecentFarmers(ctx context.Context, vendorID int64, limit int) ([]*FarmerDigest, error)
	FarmerCounts(ctx context.Context, vendorID int64) (*farmerCounts, error)
	FarmersByState(ctx context.Context, vendorID int64, limit int) ([]*StateCount, error)
	VendorProfile(ctx context.Context, vendorID int64) (*VendorProfile, error)

	RecentAllocations(ctx context.Context, centerID int64, limit int) ([]*AllocationDigest, error)
	RecentDisbursements(ctx context.Context, centerID int64, limit int) ([]*DisbursementDigest, error)
	TopIncentives(ctx context.Context, centerID int64, limit int) ([]*IncentiveTally, error)
	CenterTotals(ctx context.Context, centerID int64) (*CenterTotals, error)
	CenterStats(ctx context.Context, centerID int64) (*CenterStats, error)
	CenterProfile(ctx context.Context, centerID int64) (*CenterProfile, error)
}
