package group

import (
	"context"
	"database/sql"
	"strings"

	"github.com/agrilinkng/agrilink-backend/internal/database"
	"github.com/agrilinkng/agrilink-backend/internal/domain"
)

// Service exposes group type and group management.
type Service interface {
	CreateGroupType(ctx context.Context, req CreateGroupTypeRequest) (*GroupType, error)
	GetGroupType(ctx context.Context, id int64) (*GroupType, error)
	UpdateGroupType(ctx context.Context, id int64, req CreateGroupTypeRequest) (*GroupType, error)
	DeleteGroupType(ctx context.Context, id int64) error
	ListGroupTypes(ctx context.Context) ([]*GroupType, error)

	CreateGroup(ctx context.Context, req CreateGroupRequest) (*Group, error)
	GetGroup(ctx context.Context, id int64) (*Group, error)
	UpdateGroup(ctx context.Context, id int64, req CreateGroupRequest) (*Group, error)
	DeleteGroup(ctx context.Context, id int64) error
	ListGroups(ctx context.Context, filter ListFilter) ([]*Group, error)
}

type service struct {
	repo Repository
}

// NewService creates a group service.
func NewService(repo Repository) Service {
	return &service{repo: repo}
}

// ── Group types ─────────────────────────────────────────────────────────────

func (s *service) CreateGroupType(ctx context.Context, req CreateGroupTypeRequest) (*GroupType, error) {
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		return nil, domain.Invalid("name", "name is required")
	}

	gt := &GroupType{Name: req.Name, Description: strings.TrimSpace(req.Description)}
	if err := s.repo.CreateGroupType(ctx, gt); err != nil {
		if database.IsUniqueViolation(err) {
			return nil, domain.Invalid("name", "group type %q already exists", req.Name)
		}
		return nil, err
	}
	return gt, nil
}

func (s *service) GetGroupType(ctx context.Context, id int64) (*GroupType, error) {
	gt, err := s.repo.GetGroupTypeByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, domain.NotFound("group type", id)
		}
		return nil, err
	}
	return gt, nil
}

func (s *service) UpdateGroupType(ctx context.Context, id int64, req CreateGroupTypeRequest) (*GroupType, error) {
	gt, err := s.GetGroupType(ctx, id)
	if err != nil {
		return nil, err
	}

	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		return nil, domain.Invalid("name", "name is required")
	}

	gt.Name = req.Name
	gt.Description = strings.TrimSpace(req.Description)
	if err := s.repo.UpdateGroupType(ctx, gt); err != nil {
		if database.IsUniqueViolation(err) {
			return nil, domain.Invalid("name", "group type %q already exists", req.Name)
		}
		return nil, err
	}
	return gt, nil
}

// DeleteGroupType refuses to delete a type still used by groups or farmers,
// so existing categorisation is never silently lost.
func (s *service) DeleteGroupType(ctx context.Context, id int64) error {
	if _, err := s.GetGroupType(ctx, id); err != nil {
		return err
	}

	used, err := s.repo.GroupTypeInUse(ctx, id)
	if err != nil {
		return err
	}
	if used {
		return domain.Invalid("group_type", "group type is in use and cannot be deleted")
	}

	err = s.repo.DeleteGroupType(ctx, id)
	if err == sql.ErrNoRows {
		return domain.NotFound("group type", id)
	}
	if database.IsForeignKeyViolation(err) {
		return domain.Invalid("group_type", "group type is in use and cannot be deleted")
	}
	return err
}

func (s *service) ListGroupTypes(ctx context.Context) ([]*GroupType, error) {
	return s.repo.ListGroupTypes(ctx)
}

// ── Groups ──────────────────────────────────────────────────────────────────

func (s *service) CreateGroup(ctx context.Context, req CreateGroupRequest) (*Group, error) {
	if err := s.validateGroup(ctx, &req); err != nil {
		return nil, err
	}

	g := &Group{
		Name:        req.Name,
		GroupTypeID: req.GroupTypeID,
		LeaderID:    req.LeaderID,
		Description: strings.TrimSpace(req.Description),
		IsActive:    true,
	}
	if req.IsActive != nil {
		g.IsActive = *req.IsActive
	}
	if err := s.repo.CreateGroup(ctx, g); err != nil {
		return nil, err
	}
	return s.GetGroup(ctx, g.ID)
}

func (s *service) GetGroup(ctx context.Context, id int64) (*Group, error) {
	g, err := s.repo.GetGroupByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, domain.NotFound("group", id)
		}
		return nil, err
	}
	return g, nil
}

func (s *service) UpdateGroup(ctx context.Context, id int64, req CreateGroupRequest) (*Group, error) {
	g, err := s.GetGroup(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.validateGroup(ctx, &req); err != nil {
		return nil, err
	}

	g.Name = req.Name
	g.GroupTypeID = req.GroupTypeID
	g.LeaderID = req.LeaderID
	g.Description = strings.TrimSpace(req.Description)
	if req.IsActive != nil {
		g.IsActive = *req.IsActive
	}
	if err := s.repo.UpdateGroup(ctx, g); err != nil {
		return nil, err
	}
	return s.GetGroup(ctx, id)
}

// DeleteGroup removes the group. Member farmers are kept and unlinked by the
// schema, not deleted.
func (s *service) DeleteGroup(ctx context.Context, id int64) error {
	err := s.repo.DeleteGroup(ctx, id)
	if err == sql.ErrNoRows {
		return domain.NotFound("group", id)
	}
	return err
}

func (s *service) ListGroups(ctx context.Context, filter ListFilter) ([]*Group, error) {
	return s.repo.ListGroups(ctx, filter)
}

func (s *service) validateGroup(ctx context.Context, req *CreateGroupRequest) error {
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		return domain.Invalid("name", "name is required")
	}
	if req.GroupTypeID == 0 {
		return domain.Invalid("group_type_id", "group type is required")
	}

	if _, err := s.repo.GetGroupTypeByID(ctx, req.GroupTypeID); err != nil {
		if err == sql.ErrNoRows {
			return domain.NotFound("group type", req.GroupTypeID)
		}
		return err
	}

	if req.LeaderID != nil {
		exists, err := s.repo.FarmerExists(ctx, *req.LeaderID)
		if err != nil {
			return err
		}
		if !exists {
			return domain.NotFound("farmer", *req.LeaderID)
		}
	}
	return nil
}
