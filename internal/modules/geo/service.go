package geo

import (
	"context"
	"database/sql"
	"strings"

	"github.com/agrilinkng/agrilink-backend/internal/database"
	"github.com/agrilinkng/agrilink-backend/internal/domain"
)

// Service exposes state and LGA reference data operations.
type Service interface {
	CreateState(ctx context.Context, req CreateStateRequest) (*State, error)
	ListStates(ctx context.Context) ([]*State, error)
	CreateLGA(ctx context.Context, req CreateLGARequest) (*LGA, error)
	ListLGAsByState(ctx context.Context, stateID int64) ([]*LGA, error)
}

type service struct {
	repo Repository
}

// NewService creates a geo service.
func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func (s *service) CreateState(ctx context.Context, req CreateStateRequest) (*State, error) {
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		return nil, domain.Invalid("name", "name is required")
	}

	st := &State{Name: req.Name, Code: strings.TrimSpace(req.Code)}
	if err := s.repo.CreateState(ctx, st); err != nil {
		if database.IsUniqueViolation(err) {
			return nil, domain.Invalid("name", "state %q already exists", req.Name)
		}
		return nil, err
	}
	return st, nil
}

func (s *service) ListStates(ctx context.Context) ([]*State, error) {
	return s.repo.ListStates(ctx)
}

func (s *service) CreateLGA(ctx context.Context, req CreateLGARequest) (*LGA, error) {
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		return nil, domain.Invalid("name", "name is required")
	}
	if req.StateID == 0 {
		return nil, domain.Invalid("state_id", "state is required")
	}

	if _, err := s.repo.GetStateByID(ctx, req.StateID); err != nil {
		if err == sql.ErrNoRows {
			return nil, domain.NotFound("state", req.StateID)
		}
		return nil, err
	}

	l := &LGA{Name: req.Name, StateID: req.StateID}
	if err := s.repo.CreateLGA(ctx, l); err != nil {
		if database.IsUniqueViolation(err) {
			return nil, domain.Invalid("name", "LGA %q already exists in this state", req.Name)
		}
		return nil, err
	}
	return l, nil
}

func (s *service) ListLGAsByState(ctx context.Context, stateID int64) ([]*LGA, error) {
	if _, err := s.repo.GetStateByID(ctx, stateID); err != nil {
		if err == sql.ErrNoRows {
			return nil, domain.NotFound("state", stateID)
		}
		return nil, err
	}
	return s.repo.ListLGAsByState(ctx, stateID)
}
