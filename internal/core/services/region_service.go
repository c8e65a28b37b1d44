package services

import (
	"context"

	"evapod/internal/adapters/persistence/models"
	"evapod/internal/adapters/persistence/repositories"
	"evapod/internal/core/domain"
	"evapod/internal/pkg/optional"
	"evapod/internal/pkg/sanitize"

	"go.uber.org/zap"
)

// RegionService handles region management
type RegionService struct {
	regions repositories.RegionRepository
	resolve *Resolver
	logger  *zap.Logger
}

// NewRegionService creates a new region service
func NewRegionService(regions repositories.RegionRepository, resolve *Resolver, logger *zap.Logger) *RegionService {
	return &RegionService{
		regions: regions,
		resolve: resolve,
		logger:  logger,
	}
}

// RegionInput is the create/update payload. Coordinators are zion ids.
type RegionInput struct {
	Name                optional.Field[string] `json:"name"`
	RegionalCoordinator optional.ZionID        `json:"regionalCoordinator" swaggertype:"integer"`
	ZonalCoordinators   optional.ZionIDs       `json:"zonalCoordinators" swaggertype:"array,integer"`
	EvngCoordinators    optional.ZionIDs       `json:"evngCoordinators" swaggertype:"array,integer"`
}

// Create creates a region
func (s *RegionService) Create(ctx context.Context, input *RegionInput) (*models.RegionResponse, error) {
	name := sanitize.Text(input.Name.Value)
	if name == "" {
		return nil, domain.Invalid("name is required")
	}
	if err := s.checkName(ctx, name, 0); err != nil {
		return nil, err
	}

	region := &models.Region{Name: name}
	sets, err := s.apply(ctx, region, input)
	if err != nil {
		return nil, err
	}

	if err := s.regions.Create(ctx, region, sets); err != nil {
		return nil, duplicate(err, "region", "name", name)
	}

	s.logger.Info("region created", zap.Uint("id", region.ID), zap.String("name", region.Name))
	return s.Get(ctx, region.ID)
}

// Get gets a region by ID
func (s *RegionService) Get(ctx context.Context, id uint) (*models.RegionResponse, error) {
	region, err := s.regions.GetByID(ctx, id)
	if err != nil {
		return nil, notFound(err, "region")
	}
	return region.ToResponse(), nil
}

// List lists all regions
func (s *RegionService) List(ctx context.Context) ([]*models.RegionResponse, error) {
	regions, err := s.regions.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]*models.RegionResponse, 0, len(regions))
	for _, region := range regions {
		out = append(out, region.ToResponse())
	}
	return out, nil
}

// Update applies the supplied fields to a region
func (s *RegionService) Update(ctx context.Context, id uint, input *RegionInput) (*models.RegionResponse, error) {
	region, err := s.regions.GetByID(ctx, id)
	if err != nil {
		return nil, notFound(err, "region")
	}

	if input.Name.Set {
		name := sanitize.Text(input.Name.Value)
		if name == "" {
			return nil, domain.Invalid("name cannot be empty")
		}
		if err := s.checkName(ctx, name, id); err != nil {
			return nil, err
		}
		region.Name = name
	}

	sets, err := s.apply(ctx, region, input)
	if err != nil {
		return nil, err
	}

	if err := s.regions.Update(ctx, region, sets); err != nil {
		return nil, duplicate(err, "region", "name", region.Name)
	}

	s.logger.Info("region updated", zap.Uint("id", region.ID))
	return s.Get(ctx, region.ID)
}

// Delete deletes a region that no zone belongs to
func (s *RegionService) Delete(ctx context.Context, id uint) error {
	if _, err := s.regions.GetByID(ctx, id); err != nil {
		return notFound(err, "region")
	}
	hasZones, err := s.regions.HasZones(ctx, id)
	if err != nil {
		return err
	}
	if hasZones {
		return domain.InUse("region", "it still has zones")
	}

	if err := s.regions.Delete(ctx, id); err != nil {
		return notFound(err, "region")
	}
	s.logger.Info("region deleted", zap.Uint("id", id))
	return nil
}

// apply resolves coordinator references onto region and returns the sets
// to replace
func (s *RegionService) apply(ctx context.Context, region *models.Region, input *RegionInput) (repositories.UserSets, error) {
	if err := s.resolve.OptionalUser(ctx, "regionalCoordinator", input.RegionalCoordinator, &region.RegionalCoordinatorID); err != nil {
		return nil, err
	}
	region.RegionalCoordinator = nil

	sets := repositories.UserSets{}
	if err := s.resolve.UserSet(ctx, "zonalCoordinators", repositories.AssocZonalCoordinators, input.ZonalCoordinators, sets); err != nil {
		return nil, err
	}
	if err := s.resolve.UserSet(ctx, "evngCoordinators", repositories.AssocEvngCoordinators, input.EvngCoordinators, sets); err != nil {
		return nil, err
	}
	return sets, nil
}

func (s *RegionService) checkName(ctx context.Context, name string, excludeID uint) error {
	taken, err := s.regions.ExistsByName(ctx, name, excludeID)
	if err != nil {
		return err
	}
	if taken {
		return domain.Duplicate("region", "name", name)
	}
	return nil
}
