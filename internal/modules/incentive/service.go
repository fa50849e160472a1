package incentive

import (
	"context"
	"database/sql"
	"log"
	"strings"
	"time"

	"github.com/agrilinkng/agrilink-backend/internal/domain"
)

// Service exposes incentive allocation management and the derived
// allocation arithmetic.
type Service interface {
	Create(ctx context.Context, req SaveIncentiveRequest) (*Incentive, error)
	Get(ctx context.Context, id int64) (*Incentive, error)
	Update(ctx context.Context, id int64, req SaveIncentiveRequest) (*Incentive, error)
	Delete(ctx context.Context, id int64) error
	List(ctx context.Context, filter ListFilter) ([]*Incentive, error)

	DisbursedQuantity(ctx context.Context, id int64) (int, error)
	RemainingQuantity(ctx context.Context, id int64) (int, error)
	// Inventory reports every incentive of a center with its derived
	// disbursed/remaining arithmetic.
	Inventory(ctx context.Context, centerID int64, filter ListFilter) ([]*InventoryLine, error)
	// Available is the inventory restricted to lines with stock left.
	Available(ctx context.Context, centerID int64) ([]*InventoryLine, error)
}

type service struct {
	repo Repository
}

// NewService creates an incentive service.
func NewService(repo Repository) Service {
	return &service{repo: repo}
}

// Create allocates an incentive to a center. The target center must be
// active: goods are never routed to a center that cannot hand them out.
func (s *service) Create(ctx context.Context, req SaveIncentiveRequest) (*Incentive, error) {
	i, err := buildIncentive(&req)
	if err != nil {
		return nil, err
	}
	if err := s.requireActiveCenter(ctx, req.CenterID); err != nil {
		return nil, err
	}

	if err := s.repo.Create(ctx, i); err != nil {
		return nil, err
	}
	return s.Get(ctx, i.ID)
}

func (s *service) Get(ctx context.Context, id int64) (*Incentive, error) {
	i, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, domain.NotFound("incentive", id)
		}
		return nil, err
	}
	return i, nil
}

// Update edits an incentive. Moving it to a different center requires that
// center to be active; keeping the stored center unchanged is allowed even
// when that center has since been deactivated, so unrelated edits are never
// blocked.
func (s *service) Update(ctx context.Context, id int64, req SaveIncentiveRequest) (*Incentive, error) {
	existing, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	i, err := buildIncentive(&req)
	if err != nil {
		return nil, err
	}
	i.ID = existing.ID

	if req.CenterID != existing.CenterID {
		if err := s.requireActiveCenter(ctx, req.CenterID); err != nil {
			return nil, err
		}
	}

	disbursed, err := s.repo.DisbursedQuantity(ctx, id)
	if err != nil {
		return nil, err
	}
	if req.Quantity < disbursed {
		return nil, domain.Invalid("quantity", "quantity cannot be reduced below the %d already disbursed", disbursed)
	}

	if err := s.repo.Update(ctx, i); err != nil {
		return nil, err
	}
	return s.Get(ctx, id)
}

// Delete removes an incentive that has never been drawn from. Once
// disbursements exist the incentive is part of the audit trail and stays.
func (s *service) Delete(ctx context.Context, id int64) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}

	has, err := s.repo.HasDisbursements(ctx, id)
	if err != nil {
		return err
	}
	if has {
		return domain.Invalid("incentive", "incentive has disbursement history and cannot be deleted")
	}

	err = s.repo.Delete(ctx, id)
	if err == sql.ErrNoRows {
		return domain.NotFound("incentive", id)
	}
	return err
}

func (s *service) List(ctx context.Context, filter ListFilter) ([]*Incentive, error) {
	return s.repo.List(ctx, filter)
}

func (s *service) DisbursedQuantity(ctx context.Context, id int64) (int, error) {
	if _, err := s.Get(ctx, id); err != nil {
		return 0, err
	}
	return s.repo.DisbursedQuantity(ctx, id)
}

// RemainingQuantity recomputes quantity minus disbursed on every call. A
// negative result means the books are corrupt and is reported, never
// clamped.
func (s *service) RemainingQuantity(ctx context.Context, id int64) (int, error) {
	i, err := s.Get(ctx, id)
	if err != nil {
		return 0, err
	}

	disbursed, err := s.repo.DisbursedQuantity(ctx, id)
	if err != nil {
		return 0, err
	}

	remaining := i.Quantity - disbursed
	if remaining < 0 {
		log.Printf("incentive %d over-disbursed: quantity %d, disbursed %d", i.ID, i.Quantity, disbursed)
		return 0, domain.Invariant("incentive %d has remaining quantity %d (quantity %d, disbursed %d)",
			i.ID, remaining, i.Quantity, disbursed)
	}
	return remaining, nil
}

func (s *service) Inventory(ctx context.Context, centerID int64, filter ListFilter) ([]*InventoryLine, error) {
	if _, err := s.repo.CenterStatus(ctx, centerID); err != nil {
		if err == sql.ErrNoRows {
			return nil, domain.NotFound("redemption center", centerID)
		}
		return nil, err
	}

	filter.CenterID = centerID
	incentives, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	totals, err := s.repo.DisbursedQuantities(ctx, centerID)
	if err != nil {
		return nil, err
	}

	lines := make([]*InventoryLine, 0, len(incentives))
	for _, i := range incentives {
		disbursed := totals[i.ID]
		remaining := i.Quantity - disbursed
		if remaining < 0 {
			// Report the corrupt line as-is; hiding it would mask the problem.
			log.Printf("incentive %d over-disbursed: quantity %d, disbursed %d", i.ID, i.Quantity, disbursed)
		}
		lines = append(lines, &InventoryLine{
			Incentive:         i,
			DisbursedQuantity: disbursed,
			RemainingQuantity: remaining,
			PercentRemaining:  float64(remaining) / float64(i.Quantity) * 100,
		})
	}
	return lines, nil
}

func (s *service) Available(ctx context.Context, centerID int64) ([]*InventoryLine, error) {
	lines, err := s.Inventory(ctx, centerID, ListFilter{})
	if err != nil {
		return nil, err
	}

	available := lines[:0]
	for _, l := range lines {
		if l.RemainingQuantity > 0 {
			available = append(available, l)
		}
	}
	return available, nil
}

func (s *service) requireActiveCenter(ctx context.Context, centerID int64) error {
	status, err := s.repo.CenterStatus(ctx, centerID)
	if err != nil {
		if err == sql.ErrNoRows {
			return domain.NotFound("redemption center", centerID)
		}
		return err
	}
	if status != domain.StatusActive {
		return domain.Inactive("redemption center", centerID)
	}
	return nil
}

func buildIncentive(req *SaveIncentiveRequest) (*Incentive, error) {
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		return nil, domain.Invalid("name", "name is required")
	}
	if req.Quantity <= 0 {
		return nil, domain.Invalid("quantity", "quantity must be a positive number")
	}
	if req.CenterID == 0 {
		return nil, domain.Invalid("center_id", "redemption center is required")
	}

	dateSent := time.Now().UTC().Truncate(24 * time.Hour)
	if req.DateSent != "" {
		parsed, err := time.Parse("2006-01-02", req.DateSent)
		if err != nil {
			return nil, domain.Invalid("date_sent", "date sent must be YYYY-MM-DD")
		}
		dateSent = parsed
	}

	return &Incentive{
		Name:        req.Name,
		Quantity:    req.Quantity,
		CenterID:    req.CenterID,
		DateSent:    dateSent,
		Description: strings.TrimSpace(req.Description),
	}, nil
}
