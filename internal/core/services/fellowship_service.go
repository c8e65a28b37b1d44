package services

import (
	"context"

	"evapod/internal/adapters/persistence/models"
	"evapod/internal/adapters/persistence/repositories"
	"evapod/internal/core/domain"
	"evapod/internal/pkg/optional"
	"evapod/internal/pkg/pagination"
	"evapod/internal/pkg/sanitize"

	"go.uber.org/zap"
)

// FellowshipService handles fellowship management
type FellowshipService struct {
	fellowships repositories.FellowshipRepository
	resolve     *Resolver
	logger      *zap.Logger
}

// NewFellowshipService creates a new fellowship service
func NewFellowshipService(fellowships repositories.FellowshipRepository, resolve *Resolver, logger *zap.Logger) *FellowshipService {
	return &FellowshipService{
		fellowships: fellowships,
		resolve:     resolve,
		logger:      logger,
	}
}

// FellowshipInput is the create/update payload
type FellowshipInput struct {
	Name             optional.Field[string] `json:"name"`
	Zone             optional.Ref           `json:"zone" swaggertype:"string"`
	Subzone          optional.Ref           `json:"subZone" swaggertype:"string"`
	Coordinator      optional.ZionID        `json:"coordinator" swaggertype:"integer"`
	EvngCoordinator  optional.ZionID        `json:"evngCoordinator" swaggertype:"integer"`
	ZonalCoordinator optional.ZionID        `json:"zonalCoordinator" swaggertype:"integer"`
	TotalMembers     optional.Field[int]    `json:"totalMembers" swaggertype:"integer"`
	Address          optional.Field[string] `json:"address"`
}

// Create creates a fellowship. When only a subzone is given the fellowship
// takes the subzone's zone.
func (s *FellowshipService) Create(ctx context.Context, input *FellowshipInput) (*models.FellowshipResponse, error) {
	name := sanitize.Text(input.Name.Value)
	if name == "" {
		return nil, domain.Invalid("name is required")
	}

	fellowship := &models.Fellowship{Name: name}

	var err error
	if fellowship.CoordinatorID, err = s.resolve.RequiredUser(ctx, "coordinator", input.Coordinator); err != nil {
		return nil, err
	}
	if err := s.apply(ctx, fellowship, input); err != nil {
		return nil, err
	}

	if err := s.fellowships.Create(ctx, fellowship); err != nil {
		return nil, err
	}

	s.logger.Info("fellowship created", zap.Uint("id", fellowship.ID), zap.String("name", fellowship.Name))
	return s.Get(ctx, fellowship.ID)
}

// Get gets a fellowship by ID
func (s *FellowshipService) Get(ctx context.Context, id uint) (*models.FellowshipResponse, error) {
	fellowship, err := s.fellowships.GetByID(ctx, id)
	if err != nil {
		return nil, notFound(err, "fellowship")
	}
	return fellowship.ToResponse(), nil
}

// List lists all fellowships
func (s *FellowshipService) List(ctx context.Context) ([]*models.FellowshipResponse, error) {
	fellowships, err := s.fellowships.List(ctx)
	if err != nil {
		return nil, err
	}
	return fellowshipResponses(fellowships), nil
}

// Paginate lists one page of fellowships
func (s *FellowshipService) Paginate(ctx context.Context, params *pagination.Params) (*pagination.Page[*models.FellowshipResponse], error) {
	fellowships, total, err := s.fellowships.Paginate(ctx, params)
	if err != nil {
		return nil, err
	}
	return pagination.NewPage(fellowshipResponses(fellowships), params, total), nil
}

// Update applies the supplied fields to a fellowship
func (s *FellowshipService) Update(ctx context.Context, id uint, input *FellowshipInput) (*models.FellowshipResponse, error) {
	fellowship, err := s.fellowships.GetByID(ctx, id)
	if err != nil {
		return nil, notFound(err, "fellowship")
	}

	if input.Name.Set {
		name := sanitize.Text(input.Name.Value)
		if name == "" {
			return nil, domain.Invalid("name cannot be empty")
		}
		fellowship.Name = name
	}
	if input.Coordinator.Set {
		if fellowship.CoordinatorID, err = s.resolve.RequiredUser(ctx, "coordinator", input.Coordinator); err != nil {
			return nil, err
		}
	}
	if err := s.apply(ctx, fellowship, input); err != nil {
		return nil, err
	}

	if err := s.fellowships.Update(ctx, fellowship); err != nil {
		return nil, err
	}

	s.logger.Info("fellowship updated", zap.Uint("id", fellowship.ID))
	return s.Get(ctx, fellowship.ID)
}

// Delete deletes a fellowship
func (s *FellowshipService) Delete(ctx context.Context, id uint) error {
	if err := s.fellowships.Delete(ctx, id); err != nil {
		return notFound(err, "fellowship")
	}
	s.logger.Info("fellowship deleted", zap.Uint("id", id))
	return nil
}

func (s *FellowshipService) apply(ctx context.Context, fellowship *models.Fellowship, input *FellowshipInput) error {
	if err := s.resolve.OptionalZone(ctx, input.Zone, &fellowship.ZoneID); err != nil {
		return err
	}
	if input.Subzone.HasValue() {
		subzone, err := s.resolve.Subzone(ctx, input.Subzone)
		if err != nil {
			return err
		}
		fellowship.SubzoneID = &subzone.ID
		if !input.Zone.Set && subzone.ZoneID != nil {
			fellowship.ZoneID = subzone.ZoneID
		}
	} else if input.Subzone.Null {
		fellowship.SubzoneID = nil
	}

	if err := s.resolve.OptionalUser(ctx, "evngCoordinator", input.EvngCoordinator, &fellowship.EvngCoordinatorID); err != nil {
		return err
	}
	if err := s.resolve.OptionalUser(ctx, "zonalCoordinator", input.ZonalCoordinator, &fellowship.ZonalCoordinatorID); err != nil {
		return err
	}

	if input.TotalMembers.Set {
		if input.TotalMembers.Value < 0 {
			return domain.Invalid("totalMembers must be 0 or more")
		}
		fellowship.TotalMembers = input.TotalMembers.Value
	}
	if input.Address.Set {
		fellowship.Address = sanitize.Text(input.Address.Value)
	}

	fellowship.Zone = nil
	fellowship.Subzone = nil
	fellowship.Coordinator = nil
	fellowship.EvngCoordinator = nil
	fellowship.ZonalCoordinator = nil
	return nil
}

func fellowshipResponses(fellowships []*models.Fellowship) []*models.FellowshipResponse {
	out := make([]*models.FellowshipResponse, 0, len(fellowships))
	for _, fellowship := range fellowships {
		out = append(out, fellowship.ToResponse())
	}
	return out
}
