package dashboard

import (
	"time"

	"github.com/agrilinkng/agrilink-backend/internal/domain"
	"github.com/agrilinkng/agrilink-backend/internal/modules/incentive"
)

// AdminOverview is the landing page aggregate for administrators.
type AdminOverview struct {
	TotalFarmers    int64           `json:"total_farmers"`
	ActiveFarmers   int64           `json:"active_farmers"`
	TotalGroups     int64           `json:"total_groups"`
	TotalGroupTypes int64           `json:"total_group_types"`
	TotalVendors    int64           `json:"total_vendors"`
	TotalCenters    int64           `json:"total_centers"`
	RecentFarmers   []*FarmerDigest `json:"recent_farmers"`
}

// FarmerDigest is the abbreviated farmer row shown on dashboards.
type FarmerDigest struct {
	ID           int64         `json:"id"`
	FullName     string        `json:"full_name"`
	NIN          string        `json:"nin"`
	Phone        string        `json:"phone"`
	State        string        `json:"state,omitempty"`
	Status       domain.Status `json:"status"`
	RegisteredAt time.Time     `json:"registered_at"`
}

// StateCount is one bar of the farmers-by-state breakdown.
type StateCount struct {
	State string `json:"state"`
	Count int64  `json:"count"`
}

// VendorOverview is the vendor portal landing page aggregate, scoped to the
// acting vendor's own farmers.
type VendorOverview struct {
	TotalFarmers    int64           `json:"total_farmers"`
	ActiveFarmers   int64           `json:"active_farmers"`
	InactiveFarmers int64           `json:"inactive_farmers"`
	FarmersByState  []*StateCount   `json:"farmers_by_state"`
	RecentFarmers   []*FarmerDigest `json:"recent_farmers"`
}

// VendorProfile is the vendor's own record with registry counts.
type VendorProfile struct {
	ID             int64         `json:"id"`
	Company        string        `json:"company"`
	ContactName    string        `json:"contact_name"`
	Email          string        `json:"email"`
	Phone          string        `json:"phone"`
	Address        string        `json:"address,omitempty"`
	RegistrationNo string        `json:"registration_no"`
	Status         domain.Status `json:"status"`
	DateRegistered time.Time     `json:"date_registered"`
	TotalFarmers   int64         `json:"total_farmers"`
	ActiveFarmers  int64         `json:"active_farmers"`
}

// AllocationDigest is the abbreviated incentive row shown on the center
// dashboard.
type AllocationDigest struct {
	ID       int64     `json:"id"`
	Name     string    `json:"name"`
	Quantity int       `json:"quantity"`
	DateSent time.Time `json:"date_sent"`
}

// DisbursementDigest is the abbreviated disbursement row shown on the center
// dashboard.
type DisbursementDigest struct {
	ID            int64     `json:"id"`
	Reference     string    `json:"reference"`
	IncentiveName string    `json:"incentive_name"`
	FarmerName    string    `json:"farmer_name"`
	Quantity      int       `json:"quantity"`
	DisbursedAt   time.Time `json:"disbursed_at"`
}

// IncentiveTally groups a center's disbursements by incentive.
type IncentiveTally struct {
	IncentiveID   int64  `json:"incentive_id"`
	Name          string `json:"name"`
	Disbursements int64  `json:"disbursements"`
	Quantity      int64  `json:"quantity"`
}

// CenterTotals sums a center's allocation books.
type CenterTotals struct {
	Allocations    int64 `json:"allocations"`
	ItemsAllocated int64 `json:"items_allocated"`
	ItemsDisbursed int64 `json:"items_disbursed"`
	ItemsRemaining int64 `json:"items_remaining"`
}

// CenterOverview is the center portal landing page aggregate.
type CenterOverview struct {
	RecentAllocations   []*AllocationDigest        `json:"recent_allocations"`
	AvailableInventory  []*incentive.InventoryLine `json:"available_inventory"`
	Totals              *CenterTotals              `json:"totals"`
	RecentDisbursements []*DisbursementDigest      `json:"recent_disbursements"`
	TopIncentives       []*IncentiveTally          `json:"top_incentives"`
}

// CenterStats summarises a center's disbursement activity. It backs both the
// center's own profile page and the admin's center detail view.
type CenterStats struct {
	Allocations    int64 `json:"allocations"`
	Disbursements  int64 `json:"disbursements"`
	ItemsDisbursed int64 `json:"items_disbursed"`
	UniqueFarmers  int64 `json:"unique_farmers"`
}

// CenterProfile is the center's own record with activity stats.
type CenterProfile struct {
	ID          int64         `json:"id"`
	Name        string        `json:"name"`
	Address     string        `json:"address,omitempty"`
	Email       string        `json:"email"`
	Phone       string        `json:"phone"`
	Description string        `json:"description,omitempty"`
	Status      domain.Status `json:"status"`
	CreatedAt   time.Time     `json:"created_at"`
	Stats       *CenterStats  `json:"stats"`
}

// adminCounts carries the one-row count query for the admin overview.
type adminCounts struct {
	TotalFarmers    int64
	ActiveFarmers   int64
	TotalGroups     int64
	TotalGroupTypes int64
	TotalVendors    int64
	TotalCenters    int64
}

// farmerCounts carries the per-vendor status breakdown.
type farmerCounts struct {
	Total    int64
	Active   int64
	Inactive int64
}
