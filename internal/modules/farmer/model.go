package farmer

import (
	"strings"
	"time"

	"github.com/agrilinkng/agrilink-backend/internal/domain"
)

// Farmer is a registered beneficiary. Identity rests on the NIN; everything
// else is descriptive and can change.
type Farmer struct {
	ID               int64         `json:"id"`
	FirstName        string        `json:"firstname"`
	MiddleName       string        `json:"middlename,omitempty"`
	Surname          string        `json:"surname"`
	DateOfBirth      *time.Time    `json:"date_of_birth,omitempty"`
	Gender           string        `json:"gender,omitempty"`
	NIN              string        `json:"nin"`
	BVN              string        `json:"bvn,omitempty"`
	Phone            string        `json:"phone"`
	Address          string        `json:"address,omitempty"`
	StateID          *int64        `json:"state_id,omitempty"`
	LGAID            *int64        `json:"lga_id,omitempty"`
	Ward             string        `json:"ward,omitempty"`
	FarmLocation     string        `json:"farm_location,omitempty"`
	GroupTypeID      *int64        `json:"group_type_id,omitempty"`
	GroupID          *int64        `json:"group_id,omitempty"`
	GroupLeaderName  string        `json:"group_leader_name,omitempty"`
	GroupLeaderPhone string        `json:"group_leader_phone,omitempty"`
	Crop             string        `json:"crop,omitempty"`
	PictureURL       string        `json:"picture_url,omitempty"`
	VendorID         *int64        `json:"vendor_id,omitempty"`
	Status           domain.Status `json:"status"`
	DateRegistered   time.Time     `json:"date_registered"`
	UpdatedAt        time.Time     `json:"updated_at"`
}

// FullName joins the farmer's name parts, skipping an absent middle name.
func (f *Farmer) FullName() string {
	parts := []string{f.FirstName}
	if f.MiddleName != "" {
		parts = append(parts, f.MiddleName)
	}
	parts = append(parts, f.Surname)
	return strings.Join(parts, " ")
}

// Summary is the shape returned by the NIN lookup at the counter. It is
// advisory: an inactive farmer is reported as such rather than hidden, and
// the caller decides what to do.
type Summary struct {
	FarmerID   int64         `json:"farmer_id"`
	FullName   string        `json:"full_name"`
	NIN        string        `json:"nin"`
	Phone      string        `json:"phone"`
	Address    string        `json:"address,omitempty"`
	State      string        `json:"state,omitempty"`
	LGA        string        `json:"lga,omitempty"`
	PictureURL string        `json:"picture_url,omitempty"`
	Status     domain.Status `json:"status"`
}

// SaveFarmerRequest is the payload for registering or updating a farmer.
type SaveFarmerRequest struct {
	FirstName        string        `json:"firstname"`
	MiddleName       string        `json:"middlename,omitempty"`
	Surname          string        `json:"surname"`
	DateOfBirth      string        `json:"date_of_birth,omitempty"`
	Gender           string        `json:"gender,omitempty"`
	NIN              string        `json:"nin"`
	BVN              string        `json:"bvn,omitempty"`
	Phone            string        `json:"phone"`
	Address          string        `json:"address,omitempty"`
	StateID          *int64        `json:"state_id,omitempty"`
	LGAID            *int64        `json:"lga_id,omitempty"`
	Ward             string        `json:"ward,omitempty"`
	FarmLocation     string        `json:"farm_location,omitempty"`
	GroupTypeID      *int64        `json:"group_type_id,omitempty"`
	GroupID          *int64        `json:"group_id,omitempty"`
	GroupLeaderName  string        `json:"group_leader_name,omitempty"`
	GroupLeaderPhone string        `json:"group_leader_phone,omitempty"`
	Crop             string        `json:"crop,omitempty"`
	PictureURL       string        `json:"picture_url,omitempty"`
	VendorID         *int64        `json:"vendor_id,omitempty"`
	Status           domain.Status `json:"status,omitempty"`
}

// ListFilter narrows farmer listings. VendorID scopes the vendor portal to
// its own registrations.
type ListFilter struct {
	Search      string
	Status      domain.Status
	StateID     int64
	LGAID       int64
	GroupTypeID int64
	GroupID     int64
	VendorID    int64
}
