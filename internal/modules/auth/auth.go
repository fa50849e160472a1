package auth

import (
	"context"
	"errors"

	"github.com/dgrijalva/jwt-go"
	"github.com/google/uuid"

	"github.com/agrilinkng/agrilink-backend/internal/modules/account"
)

// ErrInvalidCredentials is returned when a login attempt cannot be matched
// to an account of the targeted portal. It deliberately does not distinguish
// a wrong password from a missing account.
var ErrInvalidCredentials = errors.New("invalid username or password")

// Service defines authentication for the three portals.
type Service interface {
	// Login checks the credentials against accounts of the given portal and
	// returns a signed token with the resolved principal. A deactivated
	// vendor or center cannot log in.
	Login(ctx context.Context, portal account.Role, username, password string) (string, *Principal, error)

	// Resolve validates a token and re-reads the account behind it. The
	// linked vendor or center status is checked on every call, so a
	// deactivation takes effect on the holder's next request.
	Resolve(ctx context.Context, token string) (*Principal, error)
}

// Principal is the authenticated identity attached to a request. VendorID
// and CenterID are zero unless the role binds them.
type Principal struct {
	UserID   uuid.UUID    `json:"user_id"`
	Username string       `json:"username"`
	Role     account.Role `json:"role"`
	VendorID int64        `json:"vendor_id,omitempty"`
	CenterID int64        `json:"center_id,omitempty"`
}

// Claims is the token payload. Only identity and role ride in the token;
// entity links are re-read from the store on every request.
type Claims struct {
	jwt.StandardClaims
	Role string `json:"role"`
}
