package account

import (
	"time"

	"github.com/google/uuid"
)

// Role determines which portal a credential account can enter.
type Role string

const (
	RoleAdmin  Role = "admin"
	RoleVendor Role = "vendor"
	RoleCenter Role = "center"
)

// PortalUser is a login account. Vendor and center accounts are bound to
// exactly one vendor or redemption center; admin accounts stand alone.
type PortalUser struct {
	ID           uuid.UUID `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	Role         Role      `json:"role"`
	VendorID     *int64    `json:"vendor_id,omitempty"`
	CenterID     *int64    `json:"center_id,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// CredentialsRequest is the payload for setting or replacing a portal login.
type CredentialsRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// CredentialsInfo describes the login state of a vendor or center for the
// admin credentials screen.
type CredentialsInfo struct {
	HasCredentials    bool   `json:"has_credentials"`
	Username          string `json:"username,omitempty"`
	SuggestedUsername string `json:"suggested_username,omitempty"`
}
