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

// ZoneService handles zone management
type ZoneService struct {
	zones   repositories.ZoneRepository
	resolve *Resolver
	logger  *zap.Logger
}

// NewZoneService creates a new zone service
func NewZoneService(zones repositories.ZoneRepository, resolve *Resolver, logger *zap.Logger) *ZoneService {
	return &ZoneService{
		zones:   zones,
		resolve: resolve,
		logger:  logger,
	}
}

// ZoneInput is the create/update payload. Region is an id or a name.
type ZoneInput struct {
	Name                optional.Field[string] `json:"name"`
	Region              optional.Ref           `json:"region" swaggertype:"string"`
	RegionalCoordinator optional.ZionID        `json:"regionalCoordinator" swaggertype:"integer"`
	ZonalCoordinator    optional.ZionID        `json:"zonalCoordinator" swaggertype:"integer"`
	EvngCoordinators    optional.ZionIDs       `json:"evngCoordinators" swaggertype:"array,integer"`
}

// Create creates a zone inside a region
func (s *ZoneService) Create(ctx context.Context, input *ZoneInput) (*models.ZoneResponse, error) {
	name := sanitize.Text(input.Name.Value)
	if name == "" {
		return nil, domain.Invalid("name is required")
	}
	if !input.Region.HasValue() {
		return nil, domain.Invalid("region is required")
	}

	region, err := s.resolve.Region(ctx, input.Region)
	if err != nil {
		return nil, err
	}
	if err := s.checkName(ctx, region.ID, name, 0); err != nil {
		return nil, err
	}

	zone := &models.Zone{Name: name, RegionID: region.ID}
	sets, err := s.apply(ctx, zone, input)
	if err != nil {
		return nil, err
	}

	if err := s.zones.Create(ctx, zone, sets); err != nil {
		return nil, duplicate(err, "zone", "name", name)
	}

	s.logger.Info("zone created", zap.Uint("id", zone.ID), zap.String("name", zone.Name), zap.Uint("region_id", zone.RegionID))
	return s.Get(ctx, zone.ID)
}

// Get gets a zone by ID
func (s *ZoneService) Get(ctx context.Context, id uint) (*models.ZoneResponse, error) {
	zone, err := s.zones.GetByID(ctx, id)
	if err != nil {
		return nil, notFound(err, "zone")
	}
	return zone.ToResponse(), nil
}

// List lists zones, optionally only those of one region
func (s *ZoneService) List(ctx context.Context, regionID uint) ([]*models.ZoneResponse, error) {
	zones, err := s.zones.List(ctx, regionID)
	if err != nil {
		return nil, err
	}
	out := make([]*models.ZoneResponse, 0, len(zones))
	for _, zone := range zones {
		out = append(out, zone.ToResponse())
	}
	return out, nil
}

// Update applies the supplied fields to a zone
func (s *ZoneService) Update(ctx context.Context, id uint, input *ZoneInput) (*models.ZoneResponse, error) {
	zone, err := s.zones.GetByID(ctx, id)
	if err != nil {
		return nil, notFound(err, "zone")
	}

	if input.Name.Set {
		name := sanitize.Text(input.Name.Value)
		if name == "" {
			return nil, domain.Invalid("name cannot be empty")
		}
		zone.Name = name
	}
	if input.Region.Set {
		if input.Region.Null {
			return nil, domain.Invalid("region cannot be cleared")
		}
		region, err := s.resolve.Region(ctx, input.Region)
		if err != nil {
			return nil, err
		}
		zone.RegionID = region.ID
	}
	zone.Region = nil

	if input.Name.Set || input.Region.Set {
		if err := s.checkName(ctx, zone.RegionID, zone.Name, id); err != nil {
			return nil, err
		}
	}

	sets, err := s.apply(ctx, zone, input)
	if err != nil {
		return nil, err
	}

	if err := s.zones.Update(ctx, zone, sets); err != nil {
		return nil, duplicate(err, "zone", "name", zone.Name)
	}

	s.logger.Info("zone updated", zap.Uint("id", zone.ID))
	return s.Get(ctx, zone.ID)
}

// Delete deletes a zone
func (s *ZoneService) Delete(ctx context.Context, id uint) error {
	if err := s.zones.Delete(ctx, id); err != nil {
		return notFound(err, "zone")
	}
	s.logger.Info("zone deleted", zap.Uint("id", id))
	return nil
}

func (s *ZoneService) apply(ctx context.Context, zone *models.Zone, input *ZoneInput) (repositories.UserSets, error) {
	if err := s.resolve.OptionalUser(ctx, "regionalCoordinator", input.RegionalCoordinator, &zone.RegionalCoordinatorID); err != nil {
		return nil, err
	}
	if err := s.resolve.OptionalUser(ctx, "zonalCoordinator", input.ZonalCoordinator, &zone.ZonalCoordinatorID); err != nil {
		return nil, err
	}
	zone.RegionalCoordinator = nil
	zone.ZonalCoordinator = nil

	sets := repositories.UserSets{}
	if err := s.resolve.UserSet(ctx, "evngCoordinators", repositories.AssocEvngCoordinators, input.EvngCoordinators, sets); err != nil {
		return nil, err
	}
	return sets, nil
}

func (s *ZoneService) checkName(ctx context.Context, regionID uint, name string, excludeID uint) error {
	taken, err := s.zones.ExistsByName(ctx, regionID, name, excludeID)
	if err != nil {
		return err
	}
	if taken {
		return domain.Duplicate("zone", "name", name)
	}
	return nil
}
