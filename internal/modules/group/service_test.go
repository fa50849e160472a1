package group

import (
	"context"
	"database/sql"
	"strings"
	"testing"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agrilinkng/agrilink-backend/internal/domain"
)

type fakeRepository struct {
	groupTypes map[int64]*GroupType
	groups     map[int64]*Group
	farmers    map[int64]string // id -> full name
	members    map[int64]int    // group id -> member count
	typeLinked map[int64]bool   // group types referenced directly by farmers
	nextTypeID int64
	nextID     int64
	createErrs []error // popped one per CreateGroupType call before storing
}

func newFakeRepository() *fakeRepository {
	return &fakeRepository{
		groupTypes: map[int64]*GroupType{},
		groups:     map[int64]*Group{},
		farmers:    map[int64]string{},
		members:    map[int64]int{},
		typeLinked: map[int64]bool{},
	}
}

func (f *fakeRepository) CreateGroupType(ctx context.Context, gt *GroupType) error {
	if len(f.createErrs) > 0 {
		err := f.createErrs[0]
		f.createErrs = f.createErrs[1:]
		if err != nil {
			return err
		}
	}
	f.nextTypeID++
	gt.ID = f.nextTypeID
	stored := *gt
	f.groupTypes[gt.ID] = &stored
	return nil
}

func (f *fakeRepository) GetGroupTypeByID(ctx context.Context, id int64) (*GroupType, error) {
	gt, ok := f.groupTypes[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	copied := *gt
	return &copied, nil
}

func (f *fakeRepository) UpdateGroupType(ctx context.Context, gt *GroupType) error {
	if _, ok := f.groupTypes[gt.ID]; !ok {
		return sql.ErrNoRows
	}
	for _, other := range f.groupTypes {
		if other.ID != gt.ID && other.Name == gt.Name {
			return &pq.Error{Code: "23505", Constraint: "group_types_name_key"}
		}
	}
	stored := *gt
	f.groupTypes[gt.ID] = &stored
	return nil
}

func (f *fakeRepository) DeleteGroupType(ctx context.Context, id int64) error {
	if _, ok := f.groupTypes[id]; !ok {
		return sql.ErrNoRows
	}
	delete(f.groupTypes, id)
	return nil
}

func (f *fakeRepository) ListGroupTypes(ctx context.Context) ([]*GroupType, error) {
	var out []*GroupType
	for _, gt := range f.groupTypes {
		copied := *gt
		out = append(out, &copied)
	}
	return out, nil
}

func (f *fakeRepository) GroupTypeInUse(ctx context.Context, id int64) (bool, error) {
	if f.typeLinked[id] {
		return true, nil
	}
	for _, g := range f.groups {
		if g.GroupTypeID == id {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeRepository) CreateGroup(ctx context.Context, g *Group) error {
	f.nextID++
	g.ID = f.nextID
	stored := *g
	f.groups[g.ID] = &stored
	return nil
}

// GetGroupByID decorates the row the way the SQL joins do, so round trips
// through the service exercise the derived fields.
func (f *fakeRepository) GetGroupByID(ctx context.Context, id int64) (*Group, error) {
	g, ok := f.groups[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	copied := *g
	if gt, ok := f.groupTypes[copied.GroupTypeID]; ok {
		copied.GroupTypeName = gt.Name
	}
	copied.LeaderName = ""
	if copied.LeaderID != nil {
		copied.LeaderName = f.farmers[*copied.LeaderID]
	}
	copied.MemberCount = f.members[id]
	return &copied, nil
}

func (f *fakeRepository) UpdateGroup(ctx context.Context, g *Group) error {
	if _, ok := f.groups[g.ID]; !ok {
		return sql.ErrNoRows
	}
	stored := *g
	f.groups[g.ID] = &stored
	return nil
}

func (f *fakeRepository) DeleteGroup(ctx context.Context, id int64) error {
	if _, ok := f.groups[id]; !ok {
		return sql.ErrNoRows
	}
	delete(f.groups, id)
	return nil
}

func (f *fakeRepository) ListGroups(ctx context.Context, filter ListFilter) ([]*Group, error) {
	var out []*Group
	for id := range f.groups {
		g, _ := f.GetGroupByID(ctx, id)
		if filter.Active != nil && g.IsActive != *filter.Active {
			continue
		}
		if filter.TypeID != 0 && g.GroupTypeID != filter.TypeID {
			continue
		}
		if filter.Search != "" && !strings.Contains(g.Name, filter.Search) {
			continue
		}
		out = append(out, g)
	}
	return out, nil
}

func (f *fakeRepository) FarmerExists(ctx context.Context, farmerID int64) (bool, error) {
	_, ok := f.farmers[farmerID]
	return ok, nil
}

func (f *fakeRepository) addGroupType(name string) *GroupType {
	f.nextTypeID++
	gt := &GroupType{ID: f.nextTypeID, Name: name}
	f.groupTypes[gt.ID] = gt
	return gt
}

func ptr(v int64) *int64 { return &v }

// ── Group types ─────────────────────────────────────────────────────────────

func TestCreateGroupTypeTrimsAndStores(t *testing.T) {
	repo := newFakeRepository()
	svc := NewService(repo)

	gt, err := svc.CreateGroupType(context.Background(), CreateGroupTypeRequest{
		Name:        "  Cooperative  ",
		Description: " Registered farming cooperatives ",
	})
	require.NoError(t, err)
	assert.Equal(t, "Cooperative", gt.Name)
	assert.Equal(t, "Registered farming cooperatives", gt.Description)
	assert.NotZero(t, gt.ID)
}

func TestCreateGroupTypeRequiresName(t *testing.T) {
	svc := NewService(newFakeRepository())

	_, err := svc.CreateGroupType(context.Background(), CreateGroupTypeRequest{Name: "   "})
	var verr *domain.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "name", verr.Field)
}

func TestCreateGroupTypeDuplicateNameIsFriendly(t *testing.T) {
	repo := newFakeRepository()
	repo.createErrs = []error{&pq.Error{Code: "23505", Constraint: "group_types_name_key"}}
	svc := NewService(repo)

	_, err := svc.CreateGroupType(context.Background(), CreateGroupTypeRequest{Name: "Cooperative"})
	var verr *domain.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Error(), `group type "Cooperative" already exists`)
}

func TestUpdateGroupType(t *testing.T) {
	repo := newFakeRepository()
	coop := repo.addGroupType("Cooperative")
	repo.addGroupType("Association")
	svc := NewService(repo)

	t.Run("renames in place", func(t *testing.T) {
		gt, err := svc.UpdateGroupType(context.Background(), coop.ID, CreateGroupTypeRequest{
			Name:        "Farming Cooperative",
			Description: "Primary cooperatives",
		})
		require.NoError(t, err)
		assert.Equal(t, coop.ID, gt.ID)
		assert.Equal(t, "Farming Cooperative", gt.Name)
	})

	t.Run("rejects a name already taken", func(t *testing.T) {
		_, err := svc.UpdateGroupType(context.Background(), coop.ID, CreateGroupTypeRequest{Name: "Association"})
		var verr *domain.ValidationError
		require.ErrorAs(t, err, &verr)
		assert.Contains(t, verr.Error(), "already exists")
	})

	t.Run("unknown type", func(t *testing.T) {
		_, err := svc.UpdateGroupType(context.Background(), 999, CreateGroupTypeRequest{Name: "Union"})
		var nf *domain.NotFoundError
		require.ErrorAs(t, err, &nf)
		assert.Equal(t, "group type", nf.Entity)
	})
}

func TestDeleteGroupTypeRefusedWhileInUse(t *testing.T) {
	repo := newFakeRepository()
	coop := repo.addGroupType("Cooperative")
	union := repo.addGroupType("Union")
	repo.groups[1] = &Group{ID: 1, Name: "Kano Rice Growers", GroupTypeID: coop.ID}
	svc := NewService(repo)

	t.Run("referenced by a group", func(t *testing.T) {
		err := svc.DeleteGroupType(context.Background(), coop.ID)
		var verr *domain.ValidationError
		require.ErrorAs(t, err, &verr)
		assert.Contains(t, verr.Error(), "group type is in use and cannot be deleted")
		_, stillThere := repo.groupTypes[coop.ID]
		assert.True(t, stillThere)
	})

	t.Run("referenced by farmers directly", func(t *testing.T) {
		repo.typeLinked[union.ID] = true
		err := svc.DeleteGroupType(context.Background(), union.ID)
		var verr *domain.ValidationError
		require.ErrorAs(t, err, &verr)
		assert.Contains(t, verr.Error(), "in use")
	})

	t.Run("unused type deletes cleanly", func(t *testing.T) {
		idle := repo.addGroupType("Dormant")
		require.NoError(t, svc.DeleteGroupType(context.Background(), idle.ID))
		_, gone := repo.groupTypes[idle.ID]
		assert.False(t, gone)
	})

	t.Run("unknown type", func(t *testing.T) {
		err := svc.DeleteGroupType(context.Background(), 999)
		var nf *domain.NotFoundError
		require.ErrorAs(t, err, &nf)
		assert.Equal(t, "group type", nf.Entity)
	})
}

// ── Groups ──────────────────────────────────────────────────────────────────

func TestCreateGroupRoundTripsDerivedFields(t *testing.T) {
	repo := newFakeRepository()
	coop := repo.addGroupType("Cooperative")
	repo.farmers[7] = "Amina Yusuf"
	svc := NewService(repo)

	g, err := svc.CreateGroup(context.Background(), CreateGroupRequest{
		Name:        "  Kano Rice Growers  ",
		GroupTypeID: coop.ID,
		LeaderID:    ptr(7),
		Description: " Irrigated rice farmers around Kano ",
	})
	require.NoError(t, err)
	assert.Equal(t, "Kano Rice Growers", g.Name)
	assert.Equal(t, "Cooperative", g.GroupTypeName)
	assert.Equal(t, "Amina Yusuf", g.LeaderName)
	assert.Equal(t, "Irrigated rice farmers around Kano", g.Description)
	assert.True(t, g.IsActive, "new groups default to active")
	assert.Equal(t, 0, g.MemberCount)
}

func TestCreateGroupValidation(t *testing.T) {
	repo := newFakeRepository()
	coop := repo.addGroupType("Cooperative")
	svc := NewService(repo)

	cases := []struct {
		name   string
		req    CreateGroupRequest
		entity string // empty means ValidationError
	}{
		{"blank name", CreateGroupRequest{GroupTypeID: coop.ID}, ""},
		{"missing group type", CreateGroupRequest{Name: "Growers"}, ""},
		{"unknown group type", CreateGroupRequest{Name: "Growers", GroupTypeID: 999}, "group type"},
		{"unknown leader", CreateGroupRequest{Name: "Growers", GroupTypeID: coop.ID, LeaderID: ptr(42)}, "farmer"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.CreateGroup(context.Background(), tc.req)
			require.Error(t, err)
			if tc.entity == "" {
				var verr *domain.ValidationError
				assert.ErrorAs(t, err, &verr)
			} else {
				var nf *domain.NotFoundError
				require.ErrorAs(t, err, &nf)
				assert.Equal(t, tc.entity, nf.Entity)
			}
		})
	}
}

func TestUpdateGroupReassignsLeaderAndType(t *testing.T) {
	repo := newFakeRepository()
	coop := repo.addGroupType("Cooperative")
	union := repo.addGroupType("Union")
	repo.farmers[7] = "Amina Yusuf"
	repo.farmers[9] = "Chinedu Obi"
	svc := NewService(repo)

	g, err := svc.CreateGroup(context.Background(), CreateGroupRequest{
		Name:        "Kano Rice Growers",
		GroupTypeID: coop.ID,
		LeaderID:    ptr(7),
	})
	require.NoError(t, err)

	updated, err := svc.UpdateGroup(context.Background(), g.ID, CreateGroupRequest{
		Name:        "Kano Rice Union",
		GroupTypeID: union.ID,
		LeaderID:    ptr(9),
	})
	require.NoError(t, err)
	assert.Equal(t, g.ID, updated.ID)
	assert.Equal(t, "Union", updated.GroupTypeName)
	assert.Equal(t, "Chinedu Obi", updated.LeaderName)

	t.Run("leader can be cleared", func(t *testing.T) {
		cleared, err := svc.UpdateGroup(context.Background(), g.ID, CreateGroupRequest{
			Name:        "Kano Rice Union",
			GroupTypeID: union.ID,
		})
		require.NoError(t, err)
		assert.Nil(t, cleared.LeaderID)
		assert.Empty(t, cleared.LeaderName)
	})
}

func TestDeleteGroup(t *testing.T) {
	repo := newFakeRepository()
	coop := repo.addGroupType("Cooperative")
	svc := NewService(repo)

	g, err := svc.CreateGroup(context.Background(), CreateGroupRequest{Name: "Growers", GroupTypeID: coop.ID})
	require.NoError(t, err)

	require.NoError(t, svc.DeleteGroup(context.Background(), g.ID))

	err = svc.DeleteGroup(context.Background(), g.ID)
	var nf *domain.NotFoundError
	require.ErrorAs(t, err, &nf)
	assert.Equal(t, "group", nf.Entity)
}

func TestListGroupsFilters(t *testing.T) {
	repo := newFakeRepository()
	coop := repo.addGroupType("Cooperative")
	union := repo.addGroupType("Union")
	svc := NewService(repo)

	inactive := false
	_, err := svc.CreateGroup(context.Background(), CreateGroupRequest{Name: "Kano Rice Growers", GroupTypeID: coop.ID})
	require.NoError(t, err)
	_, err = svc.CreateGroup(context.Background(), CreateGroupRequest{Name: "Zaria Maize Union", GroupTypeID: union.ID})
	require.NoError(t, err)
	_, err = svc.CreateGroup(context.Background(), CreateGroupRequest{Name: "Dormant Collective", GroupTypeID: coop.ID, IsActive: &inactive})
	require.NoError(t, err)

	t.Run("active only", func(t *testing.T) {
		active := true
		groups, err := svc.ListGroups(context.Background(), ListFilter{Active: &active})
		require.NoError(t, err)
		assert.Len(t, groups, 2)
	})

	t.Run("inactive only", func(t *testing.T) {
		groups, err := svc.ListGroups(context.Background(), ListFilter{Active: &inactive})
		require.NoError(t, err)
		require.Len(t, groups, 1)
		assert.Equal(t, "Dormant Collective", groups[0].Name)
	})

	t.Run("by type", func(t *testing.T) {
		groups, err := svc.ListGroups(context.Background(), ListFilter{TypeID: union.ID})
		require.NoError(t, err)
		require.Len(t, groups, 1)
		assert.Equal(t, "Zaria Maize Union", groups[0].Name)
	})

	t.Run("unfiltered", func(t *testing.T) {
		groups, err := svc.ListGroups(context.Background(), ListFilter{})
		require.NoError(t, err)
		assert.Len(t, groups, 3)
	})
}

func TestGetGroupReportsMemberCount(t *testing.T) {
	repo := newFakeRepository()
	coop := repo.addGroupType("Cooperative")
	svc := NewService(repo)

	g, err := svc.CreateGroup(context.Background(), CreateGroupRequest{Name: "Growers", GroupTypeID: coop.ID})
	require.NoError(t, err)
	repo.members[g.ID] = 12

	got, err := svc.GetGroup(context.Background(), g.ID)
	require.NoError(t, err)
	assert.Equal(t, 12, got.MemberCount)
}
