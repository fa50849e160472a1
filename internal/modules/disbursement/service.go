package disbursement

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/agrilinkng/agrilink-backend/internal/database"
	"github.com/agrilinkng/agrilink-backend/internal/domain"
)

// Service defines the disbursement engine and its read side.
type Service interface {
	// Disburse validates and atomically commits one hand-out for the acting
	// center. Checks run in a fixed order so the caller always learns the
	// first failure: incentive, remaining quantity, farmer existence, farmer
	// status, duplication.
	Disburse(ctx context.Context, centerID int64, req DisburseRequest, actor *uuid.UUID) (*Receipt, error)

	// Get retrieves a single disbursement record.
	Get(ctx context.Context, id int64) (*Disbursement, error)

	// GetByReference retrieves a disbursement by its receipt reference.
	GetByReference(ctx context.Context, reference string) (*Disbursement, error)

	// List returns disbursement history matching the filter, newest first.
	List(ctx context.Context, filter ListFilter) ([]*Disbursement, error)

	// Stats summarises the disbursements matching the filter.
	Stats(ctx context.Context, filter ListFilter) (*Stats, error)
}

type service struct {
	repo Repository
}

// NewService creates a disbursement service.
func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func (s *service) Disburse(ctx context.Context, centerID int64, req DisburseRequest, actor *uuid.UUID) (*Receipt, error) {
	if req.IncentiveID == 0 {
		return nil, domain.Invalid("incentive_id", "incentive is required")
	}
	if req.FarmerID == 0 {
		return nil, domain.Invalid("farmer_id", "farmer is required")
	}
	if req.Quantity <= 0 {
		return nil, domain.Invalid("quantity", "quantity must be a positive number")
	}

	// 1. The incentive must exist and belong to the acting center. An
	//    incentive of another center is reported as not found, which keeps
	//    cross-center probing indistinguishable from a bad id.
	inc, err := s.repo.IncentiveForCenter(ctx, req.IncentiveID, centerID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, domain.NotFound("incentive", req.IncentiveID)
		}
		return nil, err
	}

	// 2. Enough must remain, and the caller learns the exact shortfall.
	disbursed, err := s.repo.DisbursedQuantity(ctx, req.IncentiveID)
	if err != nil {
		return nil, err
	}
	remaining := inc.Quantity - disbursed
	if remaining < 0 {
		log.Printf("incentive %d over-disbursed: quantity %d, disbursed %d", inc.ID, inc.Quantity, disbursed)
		return nil, domain.Invariant("incentive %d has remaining quantity %d (quantity %d, disbursed %d)",
			inc.ID, remaining, inc.Quantity, disbursed)
	}
	if req.Quantity > remaining {
		return nil, &domain.InsufficientQuantityError{Requested: req.Quantity, Remaining: remaining}
	}

	// 3. The farmer must exist.
	farmer, err := s.repo.FarmerByID(ctx, req.FarmerID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, domain.NotFound("farmer", req.FarmerID)
		}
		return nil, err
	}

	// 4. Only active farmers receive incentives.
	if farmer.Status != domain.StatusActive {
		return nil, domain.Inactive("farmer", farmer.ID)
	}

	// 5. Each farmer draws from each incentive at most once.
	exists, err := s.repo.Exists(ctx, req.IncentiveID, req.FarmerID)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, &domain.DuplicateDisbursementError{IncentiveID: req.IncentiveID, FarmerID: req.FarmerID}
	}

	d := &Disbursement{
		IncentiveID: req.IncentiveID,
		FarmerID:    req.FarmerID,
		CenterID:    centerID,
		Quantity:    req.Quantity,
		DisbursedBy: actor,
		Notes:       strings.TrimSpace(req.Notes),
	}

	// The commit re-checks everything that matters under a row lock; the
	// prechecks above only exist to report failures in a stable order.
	for attempt := 0; ; attempt++ {
		d.Reference = generateReference()
		err = s.repo.Commit(ctx, d)
		if err == nil {
			break
		}
		if database.IsUniqueViolation(err, "disbursements_reference_key") && attempt < 2 {
			continue
		}
		return nil, err
	}

	disbursed, err = s.repo.DisbursedQuantity(ctx, req.IncentiveID)
	if err != nil {
		return nil, err
	}

	return &Receipt{
		Disbursement:      d,
		RemainingQuantity: inc.Quantity - disbursed,
		Message: fmt.Sprintf("Successfully disbursed %d unit(s) of %s to %s.",
			req.Quantity, inc.Name, farmer.FullName),
	}, nil
}

func (s *service) Get(ctx context.Context, id int64) (*Disbursement, error) {
	d, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, domain.NotFound("disbursement", id)
		}
		return nil, err
	}
	return d, nil
}

func (s *service) GetByReference(ctx context.Context, reference string) (*Disbursement, error) {
	d, err := s.repo.GetByReference(ctx, reference)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, domain.NotFound("disbursement", reference)
		}
		return nil, err
	}
	return d, nil
}

func (s *service) List(ctx context.Context, filter ListFilter) ([]*Disbursement, error) {
	return s.repo.List(ctx, filter)
}

func (s *service) Stats(ctx context.Context, filter ListFilter) (*Stats, error) {
	return s.repo.Stats(ctx, filter)
}

// generateReference creates a human-readable receipt reference:
// DSB-YYYYMMDD-XXXX
func generateReference() string {
	date := time.Now().UTC().Format("20060102")
	suffix := strings.ToUpper(uuid.New().String()[:4])
	return fmt.Sprintf("DSB-%s-%s", date, suffix)
}
