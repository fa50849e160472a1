package disbursement

import (
	"context"
	"database/sql"
	"regexp"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agrilinkng/agrilink-backend/internal/domain"
)

// fakeRepository keeps the books in memory. Commit takes the same lock the
// real implementation takes on the incentive row, so the concurrency
// behaviour matches: re-check remaining under the lock, refuse duplicates.
type fakeRepository struct {
	mu         sync.Mutex
	incentives map[int64]*incentiveRow
	owners     map[int64]int64 // incentive id -> center id
	farmers    map[int64]*farmerRow
	records    []*Disbursement
	nextID     int64

	commitErrs []error // popped one per Commit call before committing
	commits    int
}

func newFakeRepository() *fakeRepository {
	return &fakeRepository{
		incentives: map[int64]*incentiveRow{},
		owners:     map[int64]int64{},
		farmers:    map[int64]*farmerRow{},
	}
}

func (f *fakeRepository) addIncentive(id int64, name string, quantity int, centerID int64) {
	f.incentives[id] = &incentiveRow{ID: id, Name: name, Quantity: quantity}
	f.owners[id] = centerID
}

func (f *fakeRepository) addFarmer(id int64, name string, status domain.Status) {
	f.farmers[id] = &farmerRow{ID: id, FullName: name, Status: status}
}

func (f *fakeRepository) Commit(ctx context.Context, d *Disbursement) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.commits++
	if len(f.commitErrs) > 0 {
		err := f.commitErrs[0]
		f.commitErrs = f.commitErrs[1:]
		return err
	}

	inc, ok := f.incentives[d.IncentiveID]
	if !ok {
		return domain.NotFound("incentive", d.IncentiveID)
	}
	disbursed := 0
	for _, r := range f.records {
		if r.IncentiveID == d.IncentiveID {
			disbursed += r.Quantity
		}
		if r.IncentiveID == d.IncentiveID && r.FarmerID == d.FarmerID {
			return &domain.DuplicateDisbursementError{IncentiveID: d.IncentiveID, FarmerID: d.FarmerID}
		}
	}
	if d.Quantity > inc.Quantity-disbursed {
		return &domain.InsufficientQuantityError{Requested: d.Quantity, Remaining: inc.Quantity - disbursed}
	}

	f.nextID++
	d.ID = f.nextID
	d.DisbursedAt = time.Now()
	stored := *d
	f.records = append(f.records, &stored)
	return nil
}

func (f *fakeRepository) GetByID(ctx context.Context, id int64) (*Disbursement, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, r := range f.records {
		if r.ID == id {
			return r, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (f *fakeRepository) GetByReference(ctx context.Context, reference string) (*Disbursement, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, r := range f.records {
		if r.Reference == reference {
			return r, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (f *fakeRepository) List(ctx context.Context, filter ListFilter) ([]*Disbursement, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]*Disbursement, len(f.records))
	copy(out, f.records)
	return out, nil
}

func (f *fakeRepository) Stats(ctx context.Context, filter ListFilter) (*Stats, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	stats := &Stats{}
	farmers := map[int64]bool{}
	for _, r := range f.records {
		stats.TotalDisbursements++
		stats.TotalQuantity += r.Quantity
		farmers[r.FarmerID] = true
	}
	stats.UniqueFarmers = len(farmers)
	return stats, nil
}

func (f *fakeRepository) IncentiveForCenter(ctx context.Context, incentiveID, centerID int64) (*incentiveRow, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	inc, ok := f.incentives[incentiveID]
	if !ok || f.owners[incentiveID] != centerID {
		return nil, sql.ErrNoRows
	}
	return inc, nil
}

func (f *fakeRepository) DisbursedQuantity(ctx context.Context, incentiveID int64) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	total := 0
	for _, r := range f.records {
		if r.IncentiveID == incentiveID {
			total += r.Quantity
		}
	}
	return total, nil
}

func (f *fakeRepository) FarmerByID(ctx context.Context, farmerID int64) (*farmerRow, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	farmer, ok := f.farmers[farmerID]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return farmer, nil
}

func (f *fakeRepository) Exists(ctx context.Context, incentiveID, farmerID int64) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, r := range f.records {
		if r.IncentiveID == incentiveID && r.FarmerID == farmerID {
			return true, nil
		}
	}
	return false, nil
}

const centerID = int64(100)

func TestDisburseHappyPath(t *testing.T) {
	repo := newFakeRepository()
	repo.addIncentive(1, "Fertilizer Bags", 100, centerID)
	repo.addFarmer(5, "Amina Yusuf", domain.StatusActive)
	svc := NewService(repo)

	actor := uuid.New()
	receipt, err := svc.Disburse(context.Background(), centerID, DisburseRequest{
		IncentiveID: 1, FarmerID: 5, Quantity: 30, Notes: "  first batch  ",
	}, &actor)
	require.NoError(t, err)

	assert.Equal(t, 70, receipt.RemainingQuantity)
	assert.Equal(t, "Successfully disbursed 30 unit(s) of Fertilizer Bags to Amina Yusuf.", receipt.Message)

	d := receipt.Disbursement
	assert.Equal(t, int64(1), d.IncentiveID)
	assert.Equal(t, int64(5), d.FarmerID)
	assert.Equal(t, centerID, d.CenterID)
	assert.Equal(t, 30, d.Quantity)
	assert.Equal(t, "first batch", d.Notes)
	require.NotNil(t, d.DisbursedBy)
	assert.Equal(t, actor, *d.DisbursedBy)
	assert.Regexp(t, regexp.MustCompile(`^DSB-\d{8}-[0-9A-F]{4}$`), d.Reference)
}

func TestDisburseRejectsMalformedRequests(t *testing.T) {
	svc := NewService(newFakeRepository())

	cases := []struct {
		name string
		req  DisburseRequest
	}{
		{"missing incentive", DisburseRequest{FarmerID: 1, Quantity: 1}},
		{"missing farmer", DisburseRequest{IncentiveID: 1, Quantity: 1}},
		{"zero quantity", DisburseRequest{IncentiveID: 1, FarmerID: 1}},
		{"negative quantity", DisburseRequest{IncentiveID: 1, FarmerID: 1, Quantity: -4}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Disburse(context.Background(), centerID, tc.req, nil)
			var invalid *domain.ValidationError
			require.ErrorAs(t, err, &invalid)
		})
	}
}

// The checks run in a fixed order, so when several would fail at once the
// caller always sees the earliest one.
func TestDisburseCheckOrder(t *testing.T) {
	t.Run("foreign incentive reads as not found", func(t *testing.T) {
		repo := newFakeRepository()
		repo.addIncentive(1, "Seedlings", 10, 999) // another center's
		repo.addFarmer(5, "Musa Bello", domain.StatusInactive)
		svc := NewService(repo)

		_, err := svc.Disburse(context.Background(), centerID, DisburseRequest{IncentiveID: 1, FarmerID: 5, Quantity: 50}, nil)
		var notFound *domain.NotFoundError
		require.ErrorAs(t, err, &notFound)
		assert.Equal(t, "incentive", notFound.Entity)
	})

	t.Run("shortfall reported before missing farmer", func(t *testing.T) {
		repo := newFakeRepository()
		repo.addIncentive(1, "Seedlings", 10, centerID)
		svc := NewService(repo)

		_, err := svc.Disburse(context.Background(), centerID, DisburseRequest{IncentiveID: 1, FarmerID: 404, Quantity: 50}, nil)
		var insufficient *domain.InsufficientQuantityError
		require.ErrorAs(t, err, &insufficient)
		assert.Equal(t, 50, insufficient.Requested)
		assert.Equal(t, 10, insufficient.Remaining)
	})

	t.Run("missing farmer", func(t *testing.T) {
		repo := newFakeRepository()
		repo.addIncentive(1, "Seedlings", 10, centerID)
		svc := NewService(repo)

		_, err := svc.Disburse(context.Background(), centerID, DisburseRequest{IncentiveID: 1, FarmerID: 404, Quantity: 5}, nil)
		var notFound *domain.NotFoundError
		require.ErrorAs(t, err, &notFound)
		assert.Equal(t, "farmer", notFound.Entity)
	})

	t.Run("inactive farmer reported before duplication", func(t *testing.T) {
		repo := newFakeRepository()
		repo.addIncentive(1, "Seedlings", 10, centerID)
		repo.addFarmer(5, "Musa Bello", domain.StatusActive)
		svc := NewService(repo)

		_, err := svc.Disburse(context.Background(), centerID, DisburseRequest{IncentiveID: 1, FarmerID: 5, Quantity: 2}, nil)
		require.NoError(t, err)

		// Deactivate and try the same pair again.
		repo.farmers[5].Status = domain.StatusInactive
		_, err = svc.Disburse(context.Background(), centerID, DisburseRequest{IncentiveID: 1, FarmerID: 5, Quantity: 2}, nil)
		var inactive *domain.InactiveEntityError
		require.ErrorAs(t, err, &inactive)
		assert.Equal(t, "farmer", inactive.Entity)
	})

	t.Run("duplicate pair", func(t *testing.T) {
		repo := newFakeRepository()
		repo.addIncentive(1, "Seedlings", 10, centerID)
		repo.addFarmer(5, "Musa Bello", domain.StatusActive)
		svc := NewService(repo)

		_, err := svc.Disburse(context.Background(), centerID, DisburseRequest{IncentiveID: 1, FarmerID: 5, Quantity: 2}, nil)
		require.NoError(t, err)

		_, err = svc.Disburse(context.Background(), centerID, DisburseRequest{IncentiveID: 1, FarmerID: 5, Quantity: 2}, nil)
		var duplicate *domain.DuplicateDisbursementError
		require.ErrorAs(t, err, &duplicate)
		assert.Equal(t, int64(1), duplicate.IncentiveID)
		assert.Equal(t, int64(5), duplicate.FarmerID)
	})
}

func TestDisburseDrainsAllocationToZero(t *testing.T) {
	repo := newFakeRepository()
	repo.addIncentive(1, "Maize Seed", 100, centerID)
	repo.addFarmer(5, "Amina Yusuf", domain.StatusActive)
	repo.addFarmer(6, "Musa Bello", domain.StatusActive)
	svc := NewService(repo)

	// The full allocation in one hand-out is allowed.
	receipt, err := svc.Disburse(context.Background(), centerID, DisburseRequest{IncentiveID: 1, FarmerID: 5, Quantity: 100}, nil)
	require.NoError(t, err)
	assert.Equal(t, 0, receipt.RemainingQuantity)

	// Nothing left for the next farmer, and the error says so exactly.
	_, err = svc.Disburse(context.Background(), centerID, DisburseRequest{IncentiveID: 1, FarmerID: 6, Quantity: 1}, nil)
	var insufficient *domain.InsufficientQuantityError
	require.ErrorAs(t, err, &insufficient)
	assert.Equal(t, 1, insufficient.Requested)
	assert.Equal(t, 0, insufficient.Remaining)
}

func TestDisburseOverDisbursedBooksSurfaceAsInvariant(t *testing.T) {
	repo := newFakeRepository()
	repo.addIncentive(1, "Maize Seed", 10, centerID)
	repo.addFarmer(5, "Amina Yusuf", domain.StatusActive)
	// Corrupt books: more handed out than allocated.
	repo.records = append(repo.records, &Disbursement{ID: 1, IncentiveID: 1, FarmerID: 99, Quantity: 12})
	svc := NewService(repo)

	_, err := svc.Disburse(context.Background(), centerID, DisburseRequest{IncentiveID: 1, FarmerID: 5, Quantity: 1}, nil)
	var invariant *domain.InvariantViolationError
	require.ErrorAs(t, err, &invariant)
}

func TestDisburseRetriesOnReferenceCollision(t *testing.T) {
	repo := newFakeRepository()
	repo.addIncentive(1, "Maize Seed", 10, centerID)
	repo.addFarmer(5, "Amina Yusuf", domain.StatusActive)
	repo.commitErrs = []error{
		&pq.Error{Code: "23505", Constraint: "disbursements_reference_key"},
	}
	svc := NewService(repo)

	receipt, err := svc.Disburse(context.Background(), centerID, DisburseRequest{IncentiveID: 1, FarmerID: 5, Quantity: 3}, nil)
	require.NoError(t, err)
	assert.Equal(t, 2, repo.commits)
	assert.Equal(t, 7, receipt.RemainingQuantity)
}

func TestDisburseGivesUpAfterRepeatedReferenceCollisions(t *testing.T) {
	repo := newFakeRepository()
	repo.addIncentive(1, "Maize Seed", 10, centerID)
	repo.addFarmer(5, "Amina Yusuf", domain.StatusActive)
	collision := &pq.Error{Code: "23505", Constraint: "disbursements_reference_key"}
	repo.commitErrs = []error{collision, collision, collision}
	svc := NewService(repo)

	_, err := svc.Disburse(context.Background(), centerID, DisburseRequest{IncentiveID: 1, FarmerID: 5, Quantity: 3}, nil)
	require.Error(t, err)
	assert.Equal(t, 3, repo.commits)
}

// Concurrent hand-outs against one incentive must never oversubscribe it:
// with 10 units and 3 per request, exactly 3 of the contenders can win.
func TestConcurrentDisbursementsNeverOversubscribe(t *testing.T) {
	repo := newFakeRepository()
	repo.addIncentive(1, "Fertilizer Bags", 10, centerID)
	for id := int64(1); id <= 8; id++ {
		repo.addFarmer(id, "Farmer", domain.StatusActive)
	}
	svc := NewService(repo)

	var wg sync.WaitGroup
	errs := make([]error, 8)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = svc.Disburse(context.Background(), centerID, DisburseRequest{
				IncentiveID: 1, FarmerID: int64(i + 1), Quantity: 3,
			}, nil)
		}(i)
	}
	wg.Wait()

	successes := 0
	for _, err := range errs {
		if err == nil {
			successes++
			continue
		}
		var insufficient *domain.InsufficientQuantityError
		require.ErrorAs(t, err, &insufficient, "losers must see the shortfall, got %v", err)
	}
	assert.Equal(t, 3, successes)

	total, err := repo.DisbursedQuantity(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, 9, total)
}

func TestGetMapsMissingRecordToNotFound(t *testing.T) {
	svc := NewService(newFakeRepository())

	_, err := svc.Get(context.Background(), 12345)
	var notFound *domain.NotFoundError
	require.ErrorAs(t, err, &notFound)

	_, err = svc.GetByReference(context.Background(), "DSB-20250101-XXXX")
	require.ErrorAs(t, err, &notFound)
}

func TestStatsCountsUniqueFarmers(t *testing.T) {
	repo := newFakeRepository()
	repo.addIncentive(1, "Maize Seed", 50, centerID)
	repo.addIncentive(2, "Cassava Stems", 50, centerID)
	repo.addFarmer(5, "Amina Yusuf", domain.StatusActive)
	repo.addFarmer(6, "Musa Bello", domain.StatusActive)
	svc := NewService(repo)

	for _, req := range []DisburseRequest{
		{IncentiveID: 1, FarmerID: 5, Quantity: 10},
		{IncentiveID: 2, FarmerID: 5, Quantity: 10},
		{IncentiveID: 1, FarmerID: 6, Quantity: 10},
	} {
		_, err := svc.Disburse(context.Background(), centerID, req, nil)
		require.NoError(t, err)
	}

	stats, err := svc.Stats(context.Background(), ListFilter{})
	require.NoError(t, err)
	assert.Equal(t, 3, stats.TotalDisbursements)
	assert.Equal(t, 30, stats.TotalQuantity)
	assert.Equal(t, 2, stats.UniqueFarmers)
}
