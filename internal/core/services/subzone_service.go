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

// DefaultSubzoneMembers is the member count of a new subzone when none is given
const DefaultSubzoneMembers = 1

// SubzoneService handles subzone management
type SubzoneService struct {
	subzones repositories.SubzoneRepository
	resolve  *Resolver
	logger   *zap.Logger
}

// NewSubzoneService creates a new subzone service
func NewSubzoneService(subzones repositories.SubzoneRepository, resolve *Resolver, logger *zap.Logger) *SubzoneService {
	return &SubzoneService{
		subzones: subzones,
		resolve:  resolve,
		logger:   logger,
	}
}

// SubzoneInput is the create/update payload. Zone is a zone name or id;
// coordinators and members are zion ids.
type SubzoneInput struct {
	Name             optional.Field[string] `json:"name"`
	Zone             optional.Ref           `json:"zone" swaggertype:"string"`
	ZonalCoordinator optional.ZionID        `json:"zonalCoordinator" swaggertype:"integer"`
	EvngCoordinator  optional.ZionID        `json:"evngCoordinator" swaggertype:"integer"`
	TotalMembers     optional.Field[int]    `json:"totalMembers" swaggertype:"integer"`
	AllMembers       optional.ZionIDs       `json:"allMembers" swaggertype:"array,integer"`
}

// Create creates a subzone
func (s *SubzoneService) Create(ctx context.Context, input *SubzoneInput) (*models.SubzoneResponse, error) {
	name := sanitize.Text(input.Name.Value)
	if name == "" {
		return nil, domain.Invalid("name is required")
	}
	if err := s.checkName(ctx, name, 0); err != nil {
		return nil, err
	}

	subzone := &models.Subzone{Name: name, TotalMembers: DefaultSubzoneMembers}

	var err error
	if subzone.ZonalCoordinatorID, err = s.resolve.RequiredUser(ctx, "zonalCoordinator", input.ZonalCoordinator); err != nil {
		return nil, err
	}
	if subzone.EvngCoordinatorID, err = s.resolve.RequiredUser(ctx, "evngCoordinator", input.EvngCoordinator); err != nil {
		return nil, err
	}

	sets, err := s.apply(ctx, subzone, input)
	if err != nil {
		return nil, err
	}

	if err := s.subzones.Create(ctx, subzone, sets); err != nil {
		return nil, duplicate(err, "subzone", "name", name)
	}

	s.logger.Info("subzone created", zap.Uint("id", subzone.ID), zap.String("name", subzone.Name))
	return s.Get(ctx, subzone.ID)
}

// Get gets a subzone by ID
func (s *SubzoneService) Get(ctx context.Context, id uint) (*models.SubzoneResponse, error) {
	subzone, err := s.subzones.GetByID(ctx, id)
	if err != nil {
		return nil, notFound(err, "subzone")
	}
	return subzone.ToResponse(), nil
}

// List lists all subzones
func (s *SubzoneService) List(ctx context.Context) ([]*models.SubzoneResponse, error) {
	subzones, err := s.subzones.List(ctx)
	if err != nil {
		return nil, err
	}
	return subzoneResponses(subzones), nil
}

// Paginate lists one page of subzones
func (s *SubzoneService) Paginate(ctx context.Context, params *pagination.Params) (*pagination.Page[*models.SubzoneResponse], error) {
	subzones, total, err := s.subzones.Paginate(ctx, params)
	if err != nil {
		return nil, err
	}
	return pagination.NewPage(subzoneResponses(subzones), params, total), nil
}

// Update applies the supplied fields to a subzone
func (s *SubzoneService) Update(ctx context.Context, id uint, input *SubzoneInput) (*models.SubzoneResponse, error) {
	subzone, err := s.subzones.GetByID(ctx, id)
	if err != nil {
		return nil, notFound(err, "subzone")
	}

	if input.Name.Set {
		name := sanitize.Text(input.Name.Value)
		if name == "" {
			return nil, domain.Invalid("name cannot be empty")
		}
		if err := s.checkName(ctx, name, id); err != nil {
			return nil, err
		}
		subzone.Name = name
	}
	if input.ZonalCoordinator.Set {
		if subzone.ZonalCoordinatorID, err = s.resolve.RequiredUser(ctx, "zonalCoordinator", input.ZonalCoordinator); err != nil {
			return nil, err
		}
	}
	if input.EvngCoordinator.Set {
		if subzone.EvngCoordinatorID, err = s.resolve.RequiredUser(ctx, "evngCoordinator", input.EvngCoordinator); err != nil {
			return nil, err
		}
	}

	sets, err := s.apply(ctx, subzone, input)
	if err != nil {
		return nil, err
	}

	if err := s.subzones.Update(ctx, subzone, sets); err != nil {
		return nil, duplicate(err, "subzone", "name", subzone.Name)
	}

	s.logger.Info("subzone updated", zap.Uint("id", subzone.ID))
	return s.Get(ctx, subzone.ID)
}

// Delete deletes a subzone
func (s *SubzoneService) Delete(ctx context.Context, id uint) error {
	if err := s.subzones.Delete(ctx, id); err != nil {
		return notFound(err, "subzone")
	}
	s.logger.Info("subzone deleted", zap.Uint("id", id))
	return nil
}

// apply handles the fields create and update share
func (s *SubzoneService) apply(ctx context.Context, subzone *models.Subzone, input *SubzoneInput) (repositories.UserSets, error) {
	if err := s.resolve.OptionalZone(ctx, input.Zone, &subzone.ZoneID); err != nil {
		return nil, err
	}

	if input.TotalMembers.Set {
		if input.TotalMembers.Null {
			subzone.TotalMembers = DefaultSubzoneMembers
		} else if input.TotalMembers.Value < 0 {
			return nil, domain.Invalid("totalMembers must be 0 or more")
		} else {
			subzone.TotalMembers = input.TotalMembers.Value
		}
	}

	subzone.Zone = nil
	subzone.ZonalCoordinator = nil
	subzone.EvngCoordinator = nil
	subzone.Fellowships = nil

	sets := repositories.UserSets{}
	if err := s.resolve.UserSet(ctx, "allMembers", repositories.AssocAllMembers, input.AllMembers, sets); err != nil {
		return nil, err
	}
	return sets, nil
}

func (s *SubzoneService) checkName(ctx context.Context, name string, excludeID uint) error {
	taken, err := s.subzones.ExistsByName(ctx, name, excludeID)
	if err != nil {
		return err
	}
	if taken {
		return domain.Duplicate("subzone", "name", name)
	}
	return nil
}

func subzoneResponses(subzones []*models.Subzone) []*models.SubzoneResponse {
	out := make([]*models.SubzoneResponse, 0, len(subzones))
	for _, subzone := range subzones {
		out = append(out, subzone.ToResponse())
	}
	return out
}
