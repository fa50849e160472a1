package dashboard

import (
	"context"
	"database/sql"
	"errors"

	"github.com/agrilinkng/agrilink-backend/internal/domain"
	"github.com/agrilinkng/agrilink-backend/internal/modules/incentive"
)

// Dashboards show the five newest rows of each feed and the five largest
// entries of each breakdown.
const (
	recentLimit = 5
	topLimit    = 5
)

// Service assembles the per-portal dashboard aggregates.
type Service interface {
	AdminOverview(ctx context.Context) (*AdminOverview, error)
	VendorOverview(ctx context.Context, vendorID int64) (*VendorOverview, error)
	VendorProfile(ctx context.Context, vendorID int64) (*VendorProfile, error)
	CenterOverview(ctx context.Context, centerID int64) (*CenterOverview, error)
	// CenterProfile serves the center's own profile page and the admin's
	// center detail view.
	CenterProfile(ctx context.Context, centerID int64) (*CenterProfile, error)
}

type service struct {
	repo      Repository
	inventory incentive.Service
}

// NewService creates a dashboard service. The inventory service supplies the
// derived allocation arithmetic so the numbers match the center's inventory
// pages exactly.
func NewService(repo Repository, inventory incentive.Service) Service {
	return &service{repo: repo, inventory: inventory}
}

func (s *service) AdminOverview(ctx context.Context) (*AdminOverview, error) {
	counts, err := s.repo.AdminCounts(ctx)
	if err != nil {
		return nil, err
	}
	recent, err := s.repo.RecentFarmers(ctx, 0, recentLimit)
	if err != nil {
		return nil, err
	}

	return &AdminOverview{
		TotalFarmers:    counts.TotalFarmers,
		ActiveFarmers:   counts.ActiveFarmers,
		TotalGroups:     counts.TotalGroups,
		TotalGroupTypes: counts.TotalGroupTypes,
		TotalVendors:    counts.TotalVendors,
		TotalCenters:    counts.TotalCenters,
		RecentFarmers:   recent,
	}, nil
}

func (s *service) VendorOverview(ctx context.Context, vendorID int64) (*VendorOverview, error) {
	counts, err := s.repo.FarmerCounts(ctx, vendorID)
	if err != nil {
		return nil, err
	}
	byState, err := s.repo.FarmersByState(ctx, vendorID, topLimit)
	if err != nil {
		return nil, err
	}
	recent, err := s.repo.RecentFarmers(ctx, vendorID, recentLimit)
	if err != nil {
		return nil, err
	}

	return &VendorOverview{
		TotalFarmers:    counts.Total,
		ActiveFarmers:   counts.Active,
		InactiveFarmers: counts.Inactive,
		FarmersByState:  byState,
		RecentFarmers:   recent,
	}, nil
}

func (s *service) VendorProfile(ctx context.Context, vendorID int64) (*VendorProfile, error) {
	profile, err := s.repo.VendorProfile(ctx, vendorID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.NotFound("vendor", vendorID)
		}
		return nil, err
	}
	return profile, nil
}

func (s *service) CenterOverview(ctx context.Context, centerID int64) (*CenterOverview, error) {
	allocations, err := s.repo.RecentAllocations(ctx, centerID, recentLimit)
	if err != nil {
		return nil, err
	}
	available, err := s.inventory.Available(ctx, centerID)
	if err != nil {
		return nil, err
	}
	totals, err := s.repo.CenterTotals(ctx, centerID)
	if err != nil {
		return nil, err
	}
	disbursements, err := s.repo.RecentDisbursements(ctx, centerID, recentLimit)
	if err != nil {
		return nil, err
	}
	top, err := s.repo.TopIncentives(ctx, centerID, topLimit)
	if err != nil {
		return nil, err
	}

	return &CenterOverview{
		RecentAllocations:   allocations,
		AvailableInventory:  available,
		Totals:              totals,
		RecentDisbursements: disbursements,
		TopIncentives:       top,
	}, nil
}

func (s *service) CenterProfile(ctx context.Context, centerID int64) (*CenterProfile, error) {
	profile, err := s.repo.CenterProfile(ctx, centerID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.NotFound("redemption center", centerID)
		}
		return nil, err
	}

	stats, err := s.repo.CenterStats(ctx, centerID)
	if err != nil {
		return nil, err
	}
	profile.Stats = stats
	return profile, nil
}
