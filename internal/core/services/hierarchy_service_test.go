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

func TestRegionService_NameIsUnique(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.regions.Create(ctx, &RegionInput{Name: optional.Of("Kerala")})
	require.NoError(t, err)

	_, err = f.regions.Create(ctx, &RegionInput{Name: optional.Of(" Kerala ")})
	assert.ErrorIs(t, err, domain.ErrDuplicateEntry)

	_, err = f.regions.Create(ctx, &RegionInput{})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestRegionService_CoordinatorSets(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a := f.createUser(t, "Anu", "anu@example.org", domain.RoleZonal)
	b := f.createUser(t, "Biju", "biju@example.org", domain.RoleEvngCoordinator)

	region, err := f.regions.Create(ctx, &RegionInput{
		Name:                optional.Of("Kerala"),
		RegionalCoordinator: optional.ZionOf(a.ZionID),
		ZonalCoordinators:   optional.ZionsOf(a.ZionID, b.ZionID),
		EvngCoordinators:    optional.ZionsOf(b.ZionID),
	})
	require.NoError(t, err)
	require.NotNil(t, region.RegionalCoordinator)
	assert.Equal(t, "Anu", region.RegionalCoordinator.Name)
	assert.Len(t, region.ZonalCoordinators, 2)
	assert.Len(t, region.EvngCoordinators, 1)

	// Clearing one set leaves the other untouched
	updated, err := f.regions.Update(ctx, region.ID, &RegionInput{ZonalCoordinators: optional.ZionsOf()})
	require.NoError(t, err)
	assert.Empty(t, updated.ZonalCoordinators)
	assert.Len(t, updated.EvngCoordinators, 1)
	require.NotNil(t, updated.RegionalCoordinator)
}

func TestRegionService_UnknownZionID(t *testing.T) {
	f := newFixture(t)

	_, err := f.regions.Create(context.Background(), &RegionInput{
		Name:                optional.Of("Kerala"),
		RegionalCoordinator: optional.ZionOf(9999),
	})
	assert.ErrorIs(t, err, domain.ErrZionIDNotFound)
}

func TestRegionService_DeleteRefusedWhileZonesExist(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	region, err := f.regions.Create(ctx, &RegionInput{Name: optional.Of("Kerala")})
	require.NoError(t, err)
	zone, err := f.zones.Create(ctx, &ZoneInput{Name: optional.Of("Kochi"), Region: optional.RefOf("Kerala")})
	require.NoError(t, err)
	require.NotNil(t, zone.Region)
	assert.Equal(t, region.ID, zone.Region.ID)

	err = f.regions.Delete(ctx, region.ID)
	assert.ErrorIs(t, err, domain.ErrInUse)

	require.NoError(t, f.zones.Delete(ctx, zone.ID))
	require.NoError(t, f.regions.Delete(ctx, region.ID))

	_, err = f.regions.Get(ctx, region.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.ErrorIs(t, f.regions.Delete(ctx, region.ID), domain.ErrNotFound)
}

func TestRegionService_TotalMembersDerived(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	coordinator := f.createUser(t, "Anu", "anu@example.org", domain.RoleUser)
	h := f.createHierarchy(t, "A", coordinator)

	member := f.createUser(t, "Biju", "biju@example.org", domain.RoleUser)
	f.place(t, member.ID, h.fellowship.ID, domain.RoleUser)

	region, err := f.regions.Get(ctx, h.region.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), region.TotalMembers)
}

func TestZoneService_UnknownRegion(t *testing.T) {
	f := newFixture(t)

	_, err := f.zones.Create(context.Background(), &ZoneInput{Name: optional.Of("Kochi"), Region: optional.RefOf("Nowhere")})
	assert.ErrorIs(t, err, domain.ErrReferenceNotFound)

	_, err = f.zones.Create(context.Background(), &ZoneInput{Name: optional.Of("Kochi")})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestSubzoneService_CreateResolvesCoordinators(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	zonal := f.createUser(t, "Anu", "anu@example.org", domain.RoleZonal)
	evng := f.createUser(t, "Biju", "biju@example.org", domain.RoleEvngCoordinator)

	subzone, err := f.subzones.Create(ctx, &SubzoneInput{
		Name:             optional.Of("Thevara"),
		ZonalCoordinator: optional.ZionOf(zonal.ZionID),
		EvngCoordinator:  optional.ZionOf(evng.ZionID),
		AllMembers:       optional.ZionsOf(zonal.ZionID, evng.ZionID),
	})
	require.NoError(t, err)
	require.NotNil(t, subzone.ZonalCoordinator)
	assert.Equal(t, "Anu", subzone.ZonalCoordinator.Name)
	require.NotNil(t, subzone.EvngCoordinator)
	assert.Equal(t, evng.ZionID, subzone.EvngCoordinator.ZionID)
	assert.Len(t, subzone.AllMembers, 2)
	assert.Equal(t, DefaultSubzoneMembers, subzone.TotalMembers)

	_, err = f.subzones.Create(ctx, &SubzoneInput{
		Name:             optional.Of("Thevara"),
		ZonalCoordinator: optional.ZionOf(zonal.ZionID),
		EvngCoordinator:  optional.ZionOf(evng.ZionID),
	})
	assert.ErrorIs(t, err, domain.ErrDuplicateEntry)

	_, err = f.subzones.Create(ctx, &SubzoneInput{
		Name:            optional.Of("Edappally"),
		EvngCoordinator: optional.ZionOf(evng.ZionID),
	})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestSubzoneService_PagesAreDisjoint(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	coordinator := f.createUser(t, "Anu", "anu@example.org", domain.RoleZonal)

	for i := 1; i <= 12; i++ {
		_, err := f.subzones.Create(ctx, &SubzoneInput{
			Name:             optional.Of(fmt.Sprintf("Subzone %02d", i)),
			ZonalCoordinator: optional.ZionOf(coordinator.ZionID),
			EvngCoordinator:  optional.ZionOf(coordinator.ZionID),
		})
		require.NoError(t, err)
	}

	seen := map[uint]bool{}
	for page := 1; page <= 3; page++ {
		result, err := f.subzones.Paginate(ctx, pagination.New(page, 5, "", ""))
		require.NoError(t, err)
		assert.Equal(t, int64(12), result.Total)
		assert.Equal(t, 3, result.PageCount)
		for _, item := range result.Items {
			assert.False(t, seen[item.ID], "subzone %d returned twice", item.ID)
			seen[item.ID] = true
		}
	}
	assert.Len(t, seen, 12)

	result, err := f.subzones.Paginate(ctx, pagination.New(1, 10, "subzone 1", ""))
	require.NoError(t, err)
	assert.Equal(t, int64(3), result.Total) // 10, 11, 12
}

func TestFellowshipService_InheritsZoneFromSubzone(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	coordinator := f.createUser(t, "Anu", "anu@example.org", domain.RoleCoordinator)
	h := f.createHierarchy(t, "A", coordinator)

	require.NotNil(t, h.fellowship.Subzone)
	assert.Equal(t, h.subzone.ID, h.fellowship.Subzone.ID)
	require.NotNil(t, h.fellowship.Zone)
	assert.Equal(t, h.zone.ID, h.fellowship.Zone.ID)
	require.NotNil(t, h.fellowship.Coordinator)
	assert.Equal(t, coordinator.ZionID, h.fellowship.Coordinator.ZionID)

	_, err := f.fellowships.Create(ctx, &FellowshipInput{Name: optional.Of("No coordinator")})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = f.fellowships.Update(ctx, h.fellowship.ID, &FellowshipInput{TotalMembers: optional.Of(-1)})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestFellowshipService_DeleteDetachesUsers(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	coordinator := f.createUser(t, "Anu", "anu@example.org", domain.RoleCoordinator)
	h := f.createHierarchy(t, "A", coordinator)
	f.place(t, coordinator.ID, h.fellowship.ID, domain.RoleCoordinator)

	require.NoError(t, f.fellowships.Delete(ctx, h.fellowship.ID))

	_, err := f.fellowships.Get(ctx, h.fellowship.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	user, err := f.users.Profile(ctx, coordinator.ID)
	require.NoError(t, err)
	assert.Nil(t, user.Fellowship)
	require.NotNil(t, user.Subzone)
}

func TestResolver_AmbiguousZoneName(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	coordinator := f.createUser(t, "Coord", "coord@example.org", domain.RoleCoordinator)

	var kochi []uint
	for _, name := range []string{"North", "South"} {
		region, err := f.regions.Create(ctx, &RegionInput{Name: optional.Of(name)})
		require.NoError(t, err)
		zone, err := f.zones.Create(ctx, &ZoneInput{Name: optional.Of("Kochi"), Region: optional.RefID(region.ID)})
		require.NoError(t, err)
		kochi = append(kochi, zone.ID)
	}
	_, err := f.zones.Create(ctx, &ZoneInput{Name: optional.Of("Idukki"), Region: optional.RefOf("North")})
	require.NoError(t, err)

	input := func(name string, zone optional.Ref) *SubzoneInput {
		return &SubzoneInput{
			Name:             optional.Of(name),
			Zone:             zone,
			ZonalCoordinator: optional.ZionOf(coordinator.ZionID),
			EvngCoordinator:  optional.ZionOf(coordinator.ZionID),
		}
	}

	_, err = f.subzones.Create(ctx, input("Thevara", optional.RefOf("Kochi")))
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	byID, err := f.subzones.Create(ctx, input("Thevara", optional.RefID(kochi[1])))
	require.NoError(t, err)
	require.NotNil(t, byID.Zone)
	assert.Equal(t, kochi[1], byID.Zone.ID)

	byName, err := f.subzones.Create(ctx, input("Thodupuzha", optional.RefOf("Idukki")))
	require.NoError(t, err)
	require.NotNil(t, byName.Zone)
	assert.Equal(t, "Idukki", byName.Zone.Name)
}

func TestFellowshipService_Paginate(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	coordinator := f.createUser(t, "Coord", "coord@example.org", domain.RoleCoordinator)
	h := f.createHierarchy(t, "A", coordinator)

	for i := 1; i <= 6; i++ {
		_, err := f.fellowships.Create(ctx, &FellowshipInput{
			Name:        optional.Of(fmt.Sprintf("Extra %d", i)),
			Subzone:     optional.RefID(h.subzone.ID),
			Coordinator: optional.ZionOf(coordinator.ZionID),
		})
		require.NoError(t, err)
	}

	seen := map[uint]bool{}
	for page := 1; page <= 3; page++ {
		result, err := f.fellowships.Paginate(ctx, pagination.New(page, 3, "", ""))
		require.NoError(t, err)
		assert.Equal(t, int64(7), result.Total)
		assert.Equal(t, 3, result.PageCount)
		for _, item := range result.Items {
			assert.False(t, seen[item.ID], "fellowship %d on two pages", item.ID)
			seen[item.ID] = true
		}
	}
	assert.Len(t, seen, 7)

	search, err := f.fellowships.Paginate(ctx, pagination.New(1, 10, "EXTRA", ""))
	require.NoError(t, err)
	assert.Equal(t, int64(6), search.Total)

	filtered, err := f.fellowships.Paginate(ctx, pagination.New(1, 10, "", "Fellowship A"))
	require.NoError(t, err)
	require.Len(t, filtered.Items, 1)
	assert.Equal(t, h.fellowship.ID, filtered.Items[0].ID)
}

func TestSubzoneService_PaginateFellowshipFilter(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	coordinator := f.createUser(t, "Coord", "coord@example.org", domain.RoleCoordinator)
	hA := f.createHierarchy(t, "A", coordinator)
	f.createHierarchy(t, "B", coordinator)

	result, err := f.subzones.Paginate(ctx, pagination.New(1, 10, "", "Fellowship A"))
	require.NoError(t, err)
	require.Len(t, result.Items, 1)
	assert.Equal(t, hA.subzone.ID, result.Items[0].ID)
	assert.Equal(t, int64(1), result.Total)
}

func TestHierarchy_DeleteRemovesFromListings(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	coordinator := f.createUser(t, "Coord", "coord@example.org", domain.RoleCoordinator)
	hA := f.createHierarchy(t, "A", coordinator)
	hB := f.createHierarchy(t, "B", coordinator)

	require.NoError(t, f.fellowships.Delete(ctx, hA.fellowship.ID))
	fellowships, err := f.fellowships.List(ctx)
	require.NoError(t, err)
	require.Len(t, fellowships, 1)
	assert.Equal(t, hB.fellowship.ID, fellowships[0].ID)
	fellowshipPage, err := f.fellowships.Paginate(ctx, pagination.New(1, 10, "", ""))
	require.NoError(t, err)
	assert.Equal(t, int64(1), fellowshipPage.Total)
	assert.ErrorIs(t, f.fellowships.Delete(ctx, hA.fellowship.ID), domain.ErrNotFound)

	require.NoError(t, f.subzones.Delete(ctx, hA.subzone.ID))
	subzones, err := f.subzones.List(ctx)
	require.NoError(t, err)
	require.Len(t, subzones, 1)
	assert.Equal(t, hB.subzone.ID, subzones[0].ID)
	subzonePage, err := f.subzones.Paginate(ctx, pagination.New(1, 10, "", ""))
	require.NoError(t, err)
	assert.Equal(t, int64(1), subzonePage.Total)
	assert.ErrorIs(t, f.subzones.Delete(ctx, hA.subzone.ID), domain.ErrNotFound)

	require.NoError(t, f.zones.Delete(ctx, hA.zone.ID))
	zones, err := f.zones.List(ctx, 0)
	require.NoError(t, err)
	require.Len(t, zones, 1)
	assert.Equal(t, hB.zone.ID, zones[0].ID)
	assert.ErrorIs(t, f.zones.Delete(ctx, hA.zone.ID), domain.ErrNotFound)
}
