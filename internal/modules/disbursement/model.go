package disbursement

import (
	"time"

	"github.com/google/uuid"

	"github.com/agrilinkng/agrilink-backend/internal/domain"
)

// Disbursement records one hand-out of an incentive to a farmer. Records are
// immutable once committed: there is no update or delete, corrections happen
// through compensating entries on the incentive side.
type Disbursement struct {
	ID          int64      `json:"id"`
	Reference   string     `json:"reference"`
	IncentiveID int64      `json:"incentive_id"`
	FarmerID    int64      `json:"farmer_id"`
	CenterID    int64      `json:"center_id"`
	Quantity    int        `json:"quantity"`
	DisbursedBy *uuid.UUID `json:"disbursed_by,omitempty"`
	Notes       string     `json:"notes,omitempty"`
	DisbursedAt time.Time  `json:"disbursed_at"`

	// Display names joined in for listings.
	IncentiveName string `json:"incentive_name,omitempty"`
	FarmerName    string `json:"farmer_name,omitempty"`
	FarmerNIN     string `json:"farmer_nin,omitempty"`
	CenterName    string `json:"center_name,omitempty"`
}

// DisburseRequest is the payload for handing an incentive to a farmer.
type DisburseRequest struct {
	IncentiveID int64  `json:"incentive_id"`
	FarmerID    int64  `json:"farmer_id"`
	Quantity    int    `json:"quantity"`
	Notes       string `json:"notes,omitempty"`
}

// Receipt is returned on a successful disbursement: the committed record
// plus the incentive's freshly recomputed remaining quantity.
type Receipt struct {
	Disbursement      *Disbursement `json:"disbursement"`
	RemainingQuantity int           `json:"remaining_quantity"`
	Message           string        `json:"message"`
}

// incentiveRow is the slice of an incentive the engine validates against.
type incentiveRow struct {
	ID       int64
	Name     string
	Quantity int
}

// farmerRow is the slice of a farmer the engine validates against.
type farmerRow struct {
	ID       int64
	FullName string
	Status   domain.Status
}

// ListFilter narrows disbursement listings.
type ListFilter struct {
	CenterID    int64
	IncentiveID int64
	FarmerID    int64
	Search      string
	DateFrom    *time.Time
	DateTo      *time.Time
}

// Stats summarises a set of disbursements.
type Stats struct {
	TotalDisbursements int `json:"total_disbursements"`
	TotalQuantity      int `json:"total_quantity"`
	UniqueFarmers      int `json:"unique_farmers"`
}
