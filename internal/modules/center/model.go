package center

import (
	"time"

	"github.com/agrilinkng/agrilink-backend/internal/domain"
)

// Center is a redemption center that holds incentive allocations and hands
// them out to farmers.
type Center struct {
	ID          int64         `json:"id"`
	Name        string        `json:"name"`
	Address     string        `json:"address,omitempty"`
	Phone       string        `json:"phone"`
	Email       string        `json:"email"`
	Description string        `json:"description,omitempty"`
	Status      domain.Status `json:"status"`
	CreatedAt   time.Time     `json:"created_at"`
	UpdatedAt   time.Time     `json:"updated_at"`
}

// CreateCenterRequest is the payload for registering or updating a center.
type CreateCenterRequest struct {
	Name        string        `json:"name"`
	Address     string        `json:"address,omitempty"`
	Phone       string        `json:"phone"`
	Email       string        `json:"email"`
	Description string        `json:"description,omitempty"`
	Status      domain.Status `json:"status,omitempty"`
}

// ListFilter narrows center listings.
type ListFilter struct {
	Search string
	Status domain.Status
}
