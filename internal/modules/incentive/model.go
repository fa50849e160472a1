package incentive

import "time"

// Incentive is an allocation of goods sent to a redemption center. The
// quantity is the total allocated; what remains is always derived from the
// disbursement history, never stored.
type Incentive struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Quantity    int       `json:"quantity"`
	CenterID    int64     `json:"center_id"`
	CenterName  string    `json:"center_name,omitempty"`
	DateSent    time.Time `json:"date_sent"`
	Description string    `json:"description,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// InventoryLine is one incentive with its derived allocation arithmetic.
type InventoryLine struct {
	Incentive         *Incentive `json:"incentive"`
	DisbursedQuantity int        `json:"disbursed_quantity"`
	RemainingQuantity int        `json:"remaining_quantity"`
	PercentRemaining  float64    `json:"percentage_remaining"`
}

// SaveIncentiveRequest is the payload for creating or updating an incentive.
// DateSent is YYYY-MM-DD and defaults to today.
type SaveIncentiveRequest struct {
	Name        string `json:"name"`
	Quantity    int    `json:"quantity"`
	CenterID    int64  `json:"center_id"`
	DateSent    string `json:"date_sent,omitempty"`
	Description string `json:"description,omitempty"`
}

// ListFilter narrows incentive listings.
type ListFilter struct {
	CenterID int64
	Search   string
	DateFrom *time.Time
	DateTo   *time.Time
}
