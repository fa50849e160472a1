package account

import (
	"context"

	"github.com/google/uuid"

	"github.com/agrilinkng/agrilink-backend/internal/domain"
)

// Repository defines portal account storage plus the entity reads the
// credential flows need.
type Repository interface {
	Create(ctx context.Context, u *PortalUser) error
	GetByID(ctx context.Context, id uuid.UUID) (*PortalUser, error)
	GetByUsername(ctx context.Context, username string) (*PortalUser, error)
	GetByVendorID(ctx context.Context, vendorID int64) (*PortalUser, error)
	GetByCenterID(ctx context.Context, centerID int64) (*PortalUser, error)
	UpdateCredentials(ctx context.Context, id uuid.UUID, username, passwordHash string) error
	UsernameTaken(ctx context.Context, username string, exclude uuid.UUID) (bool, error)
	AdminExists(ctx context.Context) (bool, error)

	// VendorName returns first name and surname for username suggestions.
	VendorName(ctx context.Context, vendorID int64) (first, surname string, err error)
	CenterName(ctx context.Context, centerID int64) (string, error)
	VendorStatus(ctx context.Context, vendorID int64) (domain.Status, error)
	CenterStatus(ctx context.Context, centerID int64) (domain.Status, error)
}
