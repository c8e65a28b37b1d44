package services

import (
	"context"
	"errors"

	"evapod/internal/adapters/persistence/models"
	"evapod/internal/adapters/persistence/repositories"
	"evapod/internal/core/domain"
	"evapod/internal/pkg/optional"

	"gorm.io/gorm"
)

// Resolver turns client references into internal ids. Users are referenced
// by zion id; hierarchy records by id or name. Every lookup fails with a
// distinct error when the referenced record does not exist.
type Resolver struct {
	users       repositories.UserRepository
	regions     repositories.RegionRepository
	zones       repositories.ZoneRepository
	subzones    repositories.SubzoneRepository
	fellowships repositories.FellowshipRepository
}

// NewResolver creates a new resolver
func NewResolver(
	users repositories.UserRepository,
	regions repositories.RegionRepository,
	zones repositories.ZoneRepository,
	subzones repositories.SubzoneRepository,
	fellowships repositories.FellowshipRepository,
) *Resolver {
	return &Resolver{
		users:       users,
		regions:     regions,
		zones:       zones,
		subzones:    subzones,
		fellowships: fellowships,
	}
}

// User resolves a zion id named by field in the payload
func (r *Resolver) User(ctx context.Context, field string, zionID int64) (*models.User, error) {
	user, err := r.users.GetByZionID(ctx, zionID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.UnknownZionID(field, zionID)
	}
	return user, err
}

// RequiredUser resolves a zion id that must be present and non-null
func (r *Resolver) RequiredUser(ctx context.Context, field string, ref optional.ZionID) (uint, error) {
	if !ref.HasValue() {
		return 0, domain.Invalid("%s is required", field)
	}
	user, err := r.User(ctx, field, ref.Value)
	if err != nil {
		return 0, err
	}
	return user.ID, nil
}

// OptionalUser applies ref to target: absent leaves it, null clears it and
// a value resolves it.
func (r *Resolver) OptionalUser(ctx context.Context, field string, ref optional.ZionID, target **uint) error {
	if !ref.Set {
		return nil
	}
	if ref.Null {
		*target = nil
		return nil
	}
	user, err := r.User(ctx, field, ref.Value)
	if err != nil {
		return err
	}
	*target = &user.ID
	return nil
}

// Users resolves a set of zion ids, failing on the first unknown one
func (r *Resolver) Users(ctx context.Context, field string, zionIDs []int64) ([]models.User, error) {
	users, err := r.users.GetByZionIDs(ctx, zionIDs)
	if err != nil {
		return nil, err
	}
	if len(users) == len(zionIDs) {
		return users, nil
	}

	found := make(map[int64]bool, len(users))
	for _, u := range users {
		found[u.ZionID] = true
	}
	for _, id := range zionIDs {
		if !found[id] {
			return nil, domain.UnknownZionID(field, id)
		}
	}
	return users, nil
}

// UserSet records the resolved set for assoc when ref is present. Null and
// empty lists clear the set.
func (r *Resolver) UserSet(ctx context.Context, field, assoc string, ref optional.ZionIDs, sets repositories.UserSets) error {
	if !ref.Set {
		return nil
	}
	if !ref.HasValue() || len(ref.Value) == 0 {
		sets[assoc] = []models.User{}
		return nil
	}
	users, err := r.Users(ctx, field, ref.Value)
	if err != nil {
		return err
	}
	sets[assoc] = users
	return nil
}

// findRef looks a record up by id when the reference is numeric, by name
// otherwise
func findRef[T any](
	ctx context.Context,
	entity string,
	ref optional.Ref,
	byID func(context.Context, uint) (*T, error),
	byName func(context.Context, string) (*T, error),
) (*T, error) {
	var (
		record *T
		err    error
	)
	if id, ok := ref.ID(); ok {
		record, err = byID(ctx, id)
	} else {
		record, err = byName(ctx, ref.Value)
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.UnknownReference(entity, ref.Value)
	}
	return record, err
}

// Region resolves a region reference
func (r *Resolver) Region(ctx context.Context, ref optional.Ref) (*models.Region, error) {
	return findRef(ctx, "region", ref, r.regions.GetByID, r.regions.GetByName)
}

// Zone resolves a zone reference. Zone names repeat across regions, so a
// name must match exactly one zone.
func (r *Resolver) Zone(ctx context.Context, ref optional.Ref) (*models.Zone, error) {
	if _, ok := ref.ID(); !ok {
		count, err := r.zones.CountByName(ctx, ref.Value)
		if err != nil {
			return nil, err
		}
		if count > 1 {
			return nil, domain.Invalid("zone name %q is ambiguous, use its id", ref.Value)
		}
	}
	return findRef(ctx, "zone", ref, r.zones.GetByID, r.zones.GetByName)
}

// Subzone resolves a subzone reference
func (r *Resolver) Subzone(ctx context.Context, ref optional.Ref) (*models.Subzone, error) {
	return findRef(ctx, "subzone", ref, r.subzones.GetByID, r.subzones.GetByName)
}

// Fellowship resolves a fellowship reference
func (r *Resolver) Fellowship(ctx context.Context, ref optional.Ref) (*models.Fellowship, error) {
	return findRef(ctx, "fellowship", ref, r.fellowships.GetByID, r.fellowships.GetByName)
}

// OptionalRegion applies a region reference to target
func (r *Resolver) OptionalRegion(ctx context.Context, ref optional.Ref, target **uint) error {
	return applyRef(ref, target, func() (uint, error) {
		region, err := r.Region(ctx, ref)
		if err != nil {
			return 0, err
		}
		return region.ID, nil
	})
}

// OptionalZone applies a zone reference to target
func (r *Resolver) OptionalZone(ctx context.Context, ref optional.Ref, target **uint) error {
	return applyRef(ref, target, func() (uint, error) {
		zone, err := r.Zone(ctx, ref)
		if err != nil {
			return 0, err
		}
		return zone.ID, nil
	})
}

// OptionalSubzone applies a subzone reference to target
func (r *Resolver) OptionalSubzone(ctx context.Context, ref optional.Ref, target **uint) error {
	return applyRef(ref, target, func() (uint, error) {
		subzone, err := r.Subzone(ctx, ref)
		if err != nil {
			return 0, err
		}
		return subzone.ID, nil
	})
}

// OptionalFellowship applies a fellowship reference to target
func (r *Resolver) OptionalFellowship(ctx context.Context, ref optional.Ref, target **uint) error {
	return applyRef(ref, target, func() (uint, error) {
		fellowship, err := r.Fellowship(ctx, ref)
		if err != nil {
			return 0, err
		}
		return fellowship.ID, nil
	})
}

func applyRef(ref optional.Ref, target **uint, resolve func() (uint, error)) error {
	if !ref.Set {
		return nil
	}
	if ref.Null {
		*target = nil
		return nil
	}
	id, err := resolve()
	if err != nil {
		return err
	}
	*target = &id
	return nil
}
