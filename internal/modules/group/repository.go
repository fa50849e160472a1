package group

import "context"

// Repository defines storage for group types and groups.
type Repository interface {
	CreateGroupType(ctx context.Context, gt *GroupType) error
	GetGroupTypeByID(ctx context.Context, id int64) (*GroupType, error)
	UpdateGroupType(ctx context.Context, gt *GroupType) error
	DeleteGroupType(ctx context.Context, id int64) error
	ListGroupTypes(ctx context.Context) ([]*GroupType, error)
	GroupTypeInUse(ctx context.Context, id int64) (bool, error)

	CreateGroup(ctx context.Context, g *Group) error
	GetGroupByID(ctx context.Context, id int64) (*Group, error)
	UpdateGroup(ctx context.Context, g *Group) error
	DeleteGroup(ctx context.Context, id int64) error
	ListGroups(ctx context.Context, filter ListFilter) ([]*Group, error)
	FarmerExists(ctx context.Context, farmerID int64) (bool, error)
}
