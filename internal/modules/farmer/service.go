package farmer

import (
	"context"
	"database/sql"
	"regexp"
	"strings"
	"time"

	"github.com/agrilinkng/agrilink-backend/internal/database"
	"github.com/agrilinkng/agrilink-backend/internal/domain"
)

var (
	ninPattern   = regexp.MustCompile(`^\d{11}$`)
	bvnPattern   = regexp.MustCompile(`^\d{11}$`)
	phonePattern = regexp.MustCompile(`^[\d\s\-\+\(\)]{7,20}$`)
)

// Service exposes farmer registry operations.
type Service interface {
	Register(ctx context.Context, req SaveFarmerRequest) (*Farmer, error)
	Get(ctx context.Context, id int64) (*Farmer, error)
	Update(ctx context.Context, id int64, req SaveFarmerRequest) (*Farmer, error)
	Delete(ctx context.Context, id int64) error
	ToggleStatus(ctx context.Context, id int64) (*Farmer, error)
	List(ctx context.Context, filter ListFilter) ([]*Farmer, error)
	LookupByNIN(ctx context.Context, nin string) (*Summary, error)
}

type service struct {
	repo Repository
}

// NewService creates a farmer service.
func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func (s *service) Register(ctx context.Context, req SaveFarmerRequest) (*Farmer, error) {
	f, err := s.buildFarmer(ctx, &req)
	if err != nil {
		return nil, err
	}

	if err := s.repo.Create(ctx, f); err != nil {
		return nil, mapSaveError(err)
	}
	return f, nil
}

func (s *service) Get(ctx context.Context, id int64) (*Farmer, error) {
	f, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, domain.NotFound("farmer", id)
		}
		return nil, err
	}
	return f, nil
}

func (s *service) Update(ctx context.Context, id int64, req SaveFarmerRequest) (*Farmer, error) {
	existing, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	f, err := s.buildFarmer(ctx, &req)
	if err != nil {
		return nil, err
	}
	f.ID = existing.ID
	f.DateRegistered = existing.DateRegistered

	if err := s.repo.Update(ctx, f); err != nil {
		return nil, mapSaveError(err)
	}
	return f, nil
}

// Delete removes a farmer. A farmer who has ever received a disbursement is
// part of the audit trail and cannot be deleted, only deactivated.
func (s *service) Delete(ctx context.Context, id int64) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}

	has, err := s.repo.HasDisbursements(ctx, id)
	if err != nil {
		return err
	}
	if has {
		return domain.Invalid("farmer", "farmer has disbursement history and cannot be deleted; deactivate instead")
	}

	err = s.repo.Delete(ctx, id)
	if err == sql.ErrNoRows {
		return domain.NotFound("farmer", id)
	}
	if database.IsForeignKeyViolation(err) {
		return domain.Invalid("farmer", "farmer has disbursement history and cannot be deleted; deactivate instead")
	}
	return err
}

func (s *service) ToggleStatus(ctx context.Context, id int64) (*Farmer, error) {
	f, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	f.Status = f.Status.Toggle()
	if err := s.repo.Update(ctx, f); err != nil {
		return nil, err
	}
	return f, nil
}

func (s *service) List(ctx context.Context, filter ListFilter) ([]*Farmer, error) {
	return s.repo.List(ctx, filter)
}

// LookupByNIN resolves a farmer for the disbursement counter. The result is
// advisory: it always includes the status, and an inactive farmer is returned
// rather than rejected here. The disbursement engine enforces activity.
func (s *service) LookupByNIN(ctx context.Context, nin string) (*Summary, error) {
	nin = strings.TrimSpace(nin)
	if !ninPattern.MatchString(nin) {
		return nil, domain.Invalid("nin", "NIN must be exactly 11 digits")
	}

	sum, err := s.repo.LookupByNIN(ctx, nin)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, domain.NotFound("farmer", nin)
		}
		return nil, err
	}
	return sum, nil
}

func (s *service) buildFarmer(ctx context.Context, req *SaveFarmerRequest) (*Farmer, error) {
	if err := validate(req); err != nil {
		return nil, err
	}

	var dob *time.Time
	if req.DateOfBirth != "" {
		parsed, err := time.Parse("2006-01-02", req.DateOfBirth)
		if err != nil {
			return nil, domain.Invalid("date_of_birth", "date of birth must be YYYY-MM-DD")
		}
		dob = &parsed
	}

	if req.LGAID != nil {
		if req.StateID == nil {
			return nil, domain.Invalid("lga_id", "an LGA requires its state")
		}
		ok, err := s.repo.LGABelongsToState(ctx, *req.LGAID, *req.StateID)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, domain.Invalid("lga_id", "LGA does not belong to the selected state")
		}
	}

	if req.VendorID != nil {
		exists, err := s.repo.VendorExists(ctx, *req.VendorID)
		if err != nil {
			return nil, err
		}
		if !exists {
			return nil, domain.NotFound("vendor", *req.VendorID)
		}
	}

	status := req.Status
	if status == "" {
		status = domain.StatusActive
	}

	return &Farmer{
		FirstName:        req.FirstName,
		MiddleName:       strings.TrimSpace(req.MiddleName),
		Surname:          req.Surname,
		DateOfBirth:      dob,
		Gender:           req.Gender,
		NIN:              req.NIN,
		BVN:              req.BVN,
		Phone:            req.Phone,
		Address:          strings.TrimSpace(req.Address),
		StateID:          req.StateID,
		LGAID:            req.LGAID,
		Ward:             strings.TrimSpace(req.Ward),
		FarmLocation:     strings.TrimSpace(req.FarmLocation),
		GroupTypeID:      req.GroupTypeID,
		GroupID:          req.GroupID,
		GroupLeaderName:  strings.TrimSpace(req.GroupLeaderName),
		GroupLeaderPhone: strings.TrimSpace(req.GroupLeaderPhone),
		Crop:             strings.TrimSpace(req.Crop),
		PictureURL:       strings.TrimSpace(req.PictureURL),
		VendorID:         req.VendorID,
		Status:           status,
	}, nil
}

func validate(req *SaveFarmerRequest) error {
	req.FirstName = strings.TrimSpace(req.FirstName)
	req.Surname = strings.TrimSpace(req.Surname)
	req.NIN = strings.TrimSpace(req.NIN)
	req.BVN = strings.TrimSpace(req.BVN)
	req.Phone = strings.TrimSpace(req.Phone)
	req.Gender = strings.ToLower(strings.TrimSpace(req.Gender))

	if req.FirstName == "" {
		return domain.Invalid("firstname", "first name is required")
	}
	if req.Surname == "" {
		return domain.Invalid("surname", "surname is required")
	}
	if !ninPattern.MatchString(req.NIN) {
		return domain.Invalid("nin", "NIN must be exactly 11 digits")
	}
	if req.BVN != "" && !bvnPattern.MatchString(req.BVN) {
		return domain.Invalid("bvn", "BVN must be exactly 11 digits")
	}
	if !phonePattern.MatchString(req.Phone) {
		return domain.Invalid("phone", "a valid phone number is required")
	}
	if req.Gender != "" && req.Gender != "male" && req.Gender != "female" {
		return domain.Invalid("gender", "gender must be male or female")
	}
	if req.GroupLeaderPhone != "" && !phonePattern.MatchString(req.GroupLeaderPhone) {
		return domain.Invalid("group_leader_phone", "a valid phone number is required")
	}
	if req.Status != "" && !req.Status.Valid() {
		return domain.Invalid("status", "status must be active or inactive")
	}
	return nil
}

func mapSaveError(err error) error {
	switch {
	case database.IsUniqueViolation(err, "farmers_nin_key"):
		return domain.Invalid("nin", "a farmer with this NIN is already registered")
	case database.IsUniqueViolation(err, "farmers_bvn_key"):
		return domain.Invalid("bvn", "a farmer with this BVN is already registered")
	case database.IsForeignKeyViolation(err):
		return domain.Invalid("reference", "a referenced record does not exist")
	default:
		return err
	}
}
