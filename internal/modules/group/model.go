package group

import "time"

// GroupType categorises farmer groups, e.g. cooperative or association.
type GroupType struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Group is a named collection of farmers of one group type. The leader is an
// optional reference to a member farmer.
type Group struct {
	ID            int64     `json:"id"`
	Name          string    `json:"name"`
	GroupTypeID   int64     `json:"group_type_id"`
	GroupTypeName string    `json:"group_type_name,omitempty"`
	LeaderID      *int64    `json:"leader_id,omitempty"`
	LeaderName    string    `json:"leader_name,omitempty"`
	Description   string    `json:"description,omitempty"`
	IsActive      bool      `json:"is_active"`
	MemberCount   int       `json:"member_count"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// CreateGroupTypeRequest is the payload for creating or updating a group type.
type CreateGroupTypeRequest struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

// CreateGroupRequest is the payload for creating or updating a group. A nil
// IsActive means active on create and unchanged on update.
type CreateGroupRequest struct {
	Name        string `json:"name"`
	GroupTypeID int64  `json:"group_type_id"`
	LeaderID    *int64 `json:"leader_id,omitempty"`
	Description string `json:"description,omitempty"`
	IsActive    *bool  `json:"is_active,omitempty"`
}

// ListFilter narrows group listings.
type ListFilter struct {
	Search string
	TypeID int64
	Active *bool
}
