package center

import (
	"context"
	"database/sql"
	"regexp"
	"strings"

	"github.com/agrilinkng/agrilink-backend/internal/database"
	"github.com/agrilinkng/agrilink-backend/internal/domain"
)

var phonePattern = regexp.MustCompile(`^[\d\s\-\+\(\)]{7,20}$`)

// Service exposes redemption center administration.
type Service interface {
	Register(ctx context.Context, req CreateCenterRequest) (*Center, error)
	Get(ctx context.Context, id int64) (*Center, error)
	Update(ctx context.Context, id int64, req CreateCenterRequest) (*Center, error)
	Delete(ctx context.Context, id int64) error
	ToggleStatus(ctx context.Context, id int64) (*Center, error)
	List(ctx context.Context, filter ListFilter) ([]*Center, error)
}

type service struct {
	repo Repository
}

// NewService creates a center service.
func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func (s *service) Register(ctx context.Context, req CreateCenterRequest) (*Center, error) {
	if err := validate(&req); err != nil {
		return nil, err
	}
	if req.Status == "" {
		req.Status = domain.StatusActive
	}

	c := &Center{
		Name:        req.Name,
		Address:     req.Address,
		Phone:       req.Phone,
		Email:       req.Email,
		Description: strings.TrimSpace(req.Description),
		Status:      req.Status,
	}
	if err := s.repo.Create(ctx, c); err != nil {
		if database.IsUniqueViolation(err, "redemption_centers_email_key") {
			return nil, domain.Invalid("email", "a center with this email already exists")
		}
		return nil, err
	}
	return c, nil
}

func (s *service) Get(ctx context.Context, id int64) (*Center, error) {
	c, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, domain.NotFound("redemption center", id)
		}
		return nil, err
	}
	return c, nil
}

func (s *service) Update(ctx context.Context, id int64, req CreateCenterRequest) (*Center, error) {
	c, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := validate(&req); err != nil {
		return nil, err
	}

	c.Name = req.Name
	c.Address = req.Address
	c.Phone = req.Phone
	c.Email = req.Email
	c.Description = strings.TrimSpace(req.Description)
	if req.Status != "" {
		c.Status = req.Status
	}

	if err := s.repo.Update(ctx, c); err != nil {
		if database.IsUniqueViolation(err, "redemption_centers_email_key") {
			return nil, domain.Invalid("email", "a center with this email already exists")
		}
		return nil, err
	}
	return c, nil
}

// Delete refuses to remove a center that still holds allocations, so the
// disbursement trail behind them stays intact.
func (s *service) Delete(ctx context.Context, id int64) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}

	has, err := s.repo.HasIncentives(ctx, id)
	if err != nil {
		return err
	}
	if has {
		return domain.Invalid("center", "center has incentive allocations and cannot be deleted; deactivate it instead")
	}

	err = s.repo.Delete(ctx, id)
	if err == sql.ErrNoRows {
		return domain.NotFound("redemption center", id)
	}
	if database.IsForeignKeyViolation(err) {
		return domain.Invalid("center", "center has incentive allocations and cannot be deleted; deactivate it instead")
	}
	return err
}

// ToggleStatus flips the center between active and inactive. Deactivation
// locks the center's portal account on its next request and blocks new
// allocations to it.
func (s *service) ToggleStatus(ctx context.Context, id int64) (*Center, error) {
	c, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	c.Status = c.Status.Toggle()
	if err := s.repo.Update(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *service) List(ctx context.Context, filter ListFilter) ([]*Center, error) {
	return s.repo.List(ctx, filter)
}

func validate(req *CreateCenterRequest) error {
	req.Name = strings.TrimSpace(req.Name)
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	req.Phone = strings.TrimSpace(req.Phone)

	if req.Name == "" {
		return domain.Invalid("name", "name is required")
	}
	if req.Email == "" || !strings.Contains(req.Email, "@") {
		return domain.Invalid("email", "a valid email is required")
	}
	if !phonePattern.MatchString(req.Phone) {
		return domain.Invalid("phone", "a valid phone number is required")
	}
	if req.Status != "" && !req.Status.Valid() {
		return domain.Invalid("status", "status must be active or inactive")
	}
	return nil
}
