package services

import (
	"context"
	"fmt"
	"testing"

	"evapod/internal/core/domain"
	"evapod/internal/pkg/optional"
	"evapod/internal/pkg/pagination"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserService_ZionIDAssignment(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	first := f.createUser(t, "Anu", "anu@example.org", domain.RoleUser)
	assert.Equal(t, FirstZionID, first.ZionID)

	second := f.createUser(t, "Biju", "biju@example.org", domain.RoleUser)
	assert.Equal(t, FirstZionID+1, second.ZionID)

	explicit, err := f.users.Create(ctx, &UserInput{
		Name:     optional.Of("Chitra"),
		Email:    optional.Of("chitra@example.org"),
		Password: optional.Of("password123"),
		ZionID:   optional.ZionOf(5000),
	})
	require.NoError(t, err)
	assert.Equal(t, int64(5000), explicit.ZionID)

	next := f.createUser(t, "Deepa", "deepa@example.org", domain.RoleUser)
	assert.Equal(t, int64(5001), next.ZionID)
}

func TestUserService_Uniqueness(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	anu := f.createUser(t, "Anu", "anu@example.org", domain.RoleUser)

	_, err := f.users.Create(ctx, &UserInput{
		Name:     optional.Of("Anu Again"),
		Email:    optional.Of("ANU@example.org"),
		Password: optional.Of("password123"),
	})
	assert.ErrorIs(t, err, domain.ErrDuplicateEntry)

	_, err = f.users.Create(ctx, &UserInput{
		Name:     optional.Of("Biju"),
		Email:    optional.Of("biju@example.org"),
		Password: optional.Of("password123"),
		ZionID:   optional.ZionOf(anu.ZionID),
	})
	assert.ErrorIs(t, err, domain.ErrDuplicateEntry)

	_, err = f.users.Create(ctx, &UserInput{
		Name:     optional.Of("Chitra"),
		Email:    optional.Of("not-an-email"),
		Password: optional.Of("password123"),
	})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = f.users.Create(ctx, &UserInput{
		Name:     optional.Of("Chitra"),
		Email:    optional.Of("chitra@example.org"),
		Password: optional.Of("short"),
	})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestUserService_PositionFollowsFellowship(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	coordinator := f.createUser(t, "Anu", "anu@example.org", domain.RoleCoordinator)
	h := f.createHierarchy(t, "A", coordinator)

	member := f.createUser(t, "Biju", "biju@example.org", domain.RoleUser)
	f.place(t, member.ID, h.fellowship.ID, domain.RoleUser)

	user, err := f.users.Profile(ctx, member.ID)
	require.NoError(t, err)
	require.NotNil(t, user.Fellowship)
	require.NotNil(t, user.Subzone)
	require.NotNil(t, user.Zone)
	require.NotNil(t, user.Region)
	assert.Equal(t, h.fellowship.ID, user.Fellowship.ID)
	assert.Equal(t, h.subzone.ID, user.Subzone.ID)
	assert.Equal(t, h.zone.ID, user.Zone.ID)
	assert.Equal(t, h.region.ID, user.Region.ID)

	_, err = f.users.Update(ctx, f.identity(t, member.ID), member.ID, &UserInput{Fellowship: optional.RefOf("Missing")})
	assert.ErrorIs(t, err, domain.ErrReferenceNotFound)
}

func TestUserService_ListScopedToZone(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	admin := f.createUser(t, "Admin", "admin@example.org", domain.RoleAdmin)
	a := f.createHierarchy(t, "A", admin)
	b := f.createHierarchy(t, "B", admin)

	zonal := f.createUser(t, "Zonal A", "zonal@example.org", domain.RoleUser)
	f.place(t, zonal.ID, a.fellowship.ID, domain.RoleZonal)
	inA := f.createUser(t, "Member A", "a@example.org", domain.RoleUser)
	f.place(t, inA.ID, a.fellowship.ID, domain.RoleUser)
	inB := f.createUser(t, "Member B", "b@example.org", domain.RoleUser)
	f.place(t, inB.ID, b.fellowship.ID, domain.RoleUser)

	all, err := f.users.List(ctx, f.identity(t, admin.ID))
	require.NoError(t, err)
	assert.Len(t, all, 4)

	scoped, err := f.users.Paginate(ctx, f.identity(t, zonal.ID), pagination.New(1, 10, "", ""))
	require.NoError(t, err)
	assert.Equal(t, int64(2), scoped.Total)
	for _, u := range scoped.Items {
		assert.NotEqual(t, inB.ID, u.ID)
	}
}

func TestUserService_Delete(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	admin := f.createUser(t, "Admin", "admin@example.org", domain.RoleAdmin)
	member := f.createUser(t, "Biju", "biju@example.org", domain.RoleUser)
	actor := f.identity(t, admin.ID)

	assert.ErrorIs(t, f.users.Delete(ctx, actor, admin.ID), domain.ErrCannotDeleteSelf)

	require.NoError(t, f.users.Delete(ctx, actor, member.ID))
	_, err := f.users.Profile(ctx, member.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.ErrorIs(t, f.users.Delete(ctx, actor, member.ID), domain.ErrNotFound)
}

func TestUserService_ChangePassword(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	user := f.createUser(t, "Anu", "anu@example.org", domain.RoleUser)
	identity := f.identity(t, user.ID)

	err := f.users.ChangePassword(ctx, identity, &ChangePasswordInput{OldPassword: "wrong-password", NewPassword: "newpassword1"})
	assert.ErrorIs(t, err, domain.ErrOldPasswordWrong)

	require.NoError(t, f.users.ChangePassword(ctx, identity, &ChangePasswordInput{OldPassword: "password123", NewPassword: "newpassword1"}))
}

func TestUserService_DeleteRefusedWhileInUse(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	admin := f.createUser(t, "Admin", "admin@example.org", domain.RoleAdmin)
	actor := f.identity(t, admin.ID)

	coordinator := f.createUser(t, "Coord", "coord@example.org", domain.RoleCoordinator)
	h := f.createHierarchy(t, "A", coordinator)

	err := f.users.Delete(ctx, actor, coordinator.ID)
	assert.ErrorIs(t, err, domain.ErrInUse)
	subzone, err := f.subzones.Get(ctx, h.subzone.ID)
	require.NoError(t, err)
	require.NotNil(t, subzone.ZonalCoordinator)
	assert.Equal(t, coordinator.ID, subzone.ZonalCoordinator.ID)

	reporter := f.createUser(t, "Ravi", "ravi@example.org", domain.RoleUser)
	f.place(t, reporter.ID, h.fellowship.ID, domain.RoleUser)
	_, err = f.reports.Create(ctx, f.identity(t, reporter.ID), newReport("Hearer", "Positive"))
	require.NoError(t, err)

	err = f.users.Delete(ctx, actor, reporter.ID)
	assert.ErrorIs(t, err, domain.ErrInUse)
	_, err = f.users.Profile(ctx, reporter.ID)
	assert.NoError(t, err)
}

func TestUserService_DeleteClearsOptionalCoordinators(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	admin := f.createUser(t, "Admin", "admin@example.org", domain.RoleAdmin)
	coordinator := f.createUser(t, "Coord", "coord@example.org", domain.RoleCoordinator)
	zonal := f.createUser(t, "Zonal", "zonal@example.org", domain.RoleZonal)
	h := f.createHierarchy(t, "A", coordinator)

	_, err := f.regions.Update(ctx, h.region.ID, &RegionInput{RegionalCoordinator: optional.ZionOf(zonal.ZionID)})
	require.NoError(t, err)
	_, err = f.zones.Update(ctx, h.zone.ID, &ZoneInput{ZonalCoordinator: optional.ZionOf(zonal.ZionID)})
	require.NoError(t, err)
	_, err = f.fellowships.Update(ctx, h.fellowship.ID, &FellowshipInput{ZonalCoordinator: optional.ZionOf(zonal.ZionID)})
	require.NoError(t, err)

	require.NoError(t, f.users.Delete(ctx, f.identity(t, admin.ID), zonal.ID))

	region, err := f.regions.Get(ctx, h.region.ID)
	require.NoError(t, err)
	assert.Nil(t, region.RegionalCoordinator)

	zone, err := f.zones.Get(ctx, h.zone.ID)
	require.NoError(t, err)
	assert.Nil(t, zone.ZonalCoordinator)

	fellowship, err := f.fellowships.Get(ctx, h.fellowship.ID)
	require.NoError(t, err)
	assert.Nil(t, fellowship.ZonalCoordinator)

	var dangling int64
	require.NoError(t, f.db.Table("zones").Where("zonal_coordinator_id = ?", zonal.ID).Count(&dangling).Error)
	assert.Zero(t, dangling)
}

func TestUserService_GetScoped(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	admin := f.createUser(t, "Admin", "admin@example.org", domain.RoleAdmin)
	coordA := f.createUser(t, "Anu", "anu@example.org", domain.RoleCoordinator)
	coordB := f.createUser(t, "Biju", "biju@example.org", domain.RoleCoordinator)
	hA := f.createHierarchy(t, "A", coordA)
	hB := f.createHierarchy(t, "B", coordB)
	f.place(t, coordA.ID, hA.fellowship.ID, domain.RoleCoordinator)

	insider := f.createUser(t, "Mini", "mini@example.org", domain.RoleUser)
	f.place(t, insider.ID, hA.fellowship.ID, domain.RoleUser)
	outsider := f.createUser(t, "Out", "out@example.org", domain.RoleUser)
	f.place(t, outsider.ID, hB.fellowship.ID, domain.RoleUser)

	caller := f.identity(t, coordA.ID)

	user, err := f.users.Get(ctx, caller, insider.ID)
	require.NoError(t, err)
	assert.Equal(t, "mini@example.org", user.Email)

	_, err = f.users.Get(ctx, caller, outsider.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = f.users.Get(ctx, caller, coordA.ID)
	assert.NoError(t, err)

	_, err = f.users.Get(ctx, f.identity(t, admin.ID), outsider.ID)
	assert.NoError(t, err)
}

func TestUserService_MoveToFellowshipWithoutSubzone(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	coordinator := f.createUser(t, "Coord", "coord@example.org", domain.RoleCoordinator)
	h := f.createHierarchy(t, "A", coordinator)

	loose, err := f.fellowships.Create(ctx, &FellowshipInput{
		Name:        optional.Of("Loose"),
		Coordinator: optional.ZionOf(coordinator.ZionID),
	})
	require.NoError(t, err)

	member := f.createUser(t, "Biju", "biju@example.org", domain.RoleUser)
	f.place(t, member.ID, h.fellowship.ID, domain.RoleUser)
	f.place(t, member.ID, loose.ID, domain.RoleUser)

	user, err := f.users.Profile(ctx, member.ID)
	require.NoError(t, err)
	require.NotNil(t, user.Fellowship)
	assert.Equal(t, loose.ID, user.Fellowship.ID)
	assert.Nil(t, user.Subzone)
	assert.Nil(t, user.Zone)
}

func TestUserService_PaginateSearch(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	admin := f.createUser(t, "Admin", "admin@example.org", domain.RoleAdmin)
	caller := f.identity(t, admin.ID)

	_, err := f.users.Create(ctx, &UserInput{
		Name:     optional.Of("Anitha Joseph"),
		Email:    optional.Of("anitha@example.org"),
		Password: optional.Of("password123"),
		Phone:    optional.Of("9847012345"),
		ZionID:   optional.ZionOf(7777),
	})
	require.NoError(t, err)
	f.createUser(t, "Biju", "biju@example.org", domain.RoleUser)

	cases := []struct {
		search string
		want   string
	}{
		{"ANITHA", "anitha@example.org"},
		{"biju@", "biju@example.org"},
		{"847012", "anitha@example.org"},
		{"7777", "anitha@example.org"},
	}
	for _, tc := range cases {
		page, err := f.users.Paginate(ctx, caller, pagination.New(1, 10, tc.search, ""))
		require.NoError(t, err, tc.search)
		require.Len(t, page.Items, 1, tc.search)
		assert.Equal(t, tc.want, page.Items[0].Email, tc.search)
		assert.Equal(t, int64(1), page.Total)
	}
}

func TestUserService_PaginateFellowshipFilter(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	admin := f.createUser(t, "Admin", "admin@example.org", domain.RoleAdmin)
	coordinator := f.createUser(t, "Coord", "coord@example.org", domain.RoleCoordinator)
	hA := f.createHierarchy(t, "A", coordinator)
	hB := f.createHierarchy(t, "B", coordinator)

	for i, fellowship := range []uint{hA.fellowship.ID, hA.fellowship.ID, hB.fellowship.ID} {
		u := f.createUser(t, "Member", "member"+string(rune('a'+i))+"@example.org", domain.RoleUser)
		f.place(t, u.ID, fellowship, domain.RoleUser)
	}
	caller := f.identity(t, admin.ID)

	byName, err := f.users.Paginate(ctx, caller, pagination.New(1, 10, "", "Fellowship A"))
	require.NoError(t, err)
	assert.Equal(t, int64(2), byName.Total)
	for _, u := range byName.Items {
		require.NotNil(t, u.Fellowship)
		assert.Equal(t, hA.fellowship.ID, u.Fellowship.ID)
	}

	byID, err := f.users.Paginate(ctx, caller, pagination.New(1, 10, "", fmt.Sprint(hB.fellowship.ID)))
	require.NoError(t, err)
	assert.Equal(t, int64(1), byID.Total)
}
