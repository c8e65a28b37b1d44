package services

import (
	"context"
	"net/mail"
	"strings"

	"evapod/internal/adapters/persistence/models"
	"evapod/internal/adapters/persistence/repositories"
	"evapod/internal/core/domain"
	"evapod/internal/pkg/optional"
	"evapod/internal/pkg/pagination"
	"evapod/internal/pkg/password"
	"evapod/internal/pkg/sanitize"

	"go.uber.org/zap"
)

// FirstZionID is handed out when no user holds a zion id yet
const FirstZionID int64 = 1001

// UserService handles user management business logic
type UserService struct {
	userRepo    repositories.UserRepository
	sessionRepo repositories.SessionRepository
	resolve     *Resolver
	logger      *zap.Logger
}

// NewUserService creates a new user service
func NewUserService(
	userRepo repositories.UserRepository,
	sessionRepo repositories.SessionRepository,
	resolve *Resolver,
	logger *zap.Logger,
) *UserService {
	return &UserService{
		userRepo:    userRepo,
		sessionRepo: sessionRepo,
		resolve:     resolve,
		logger:      logger,
	}
}

// UserInput is the admin create/update payload. Hierarchy references are
// ids or names.
type UserInput struct {
	Name       optional.Field[string] `json:"name"`
	Email      optional.Field[string] `json:"email"`
	Password   optional.Field[string] `json:"password"`
	Role       optional.Field[string] `json:"role"`
	ZionID     optional.ZionID        `json:"zionId" swaggertype:"integer"`
	Fellowship optional.Ref           `json:"fellowship" swaggertype:"string"`
	Subzone    optional.Ref           `json:"subZone" swaggertype:"string"`
	Zone       optional.Ref           `json:"zone" swaggertype:"string"`
	Region     optional.Ref           `json:"region" swaggertype:"string"`
	Phone      optional.Field[string] `json:"phone"`
	Address    optional.Field[string] `json:"address"`
	Gender     optional.Field[string] `json:"gender"`
	DOB        optional.Date          `json:"dob" swaggertype:"string" example:"1990-04-21"`
	IsVerified optional.Field[bool]   `json:"isVerified" swaggertype:"boolean"`
	IsBlocked  optional.Field[bool]   `json:"isBlocked" swaggertype:"boolean"`
}

// ProfileInput is what users may change about themselves
type ProfileInput struct {
	Name       optional.Field[string] `json:"name"`
	Fellowship optional.Ref           `json:"fellowship" swaggertype:"string"`
	Phone      optional.Field[string] `json:"phone"`
	Address    optional.Field[string] `json:"address"`
	Gender     optional.Field[string] `json:"gender"`
	DOB        optional.Date          `json:"dob" swaggertype:"string" example:"1990-04-21"`
}

// ChangePasswordInput represents change password input
type ChangePasswordInput struct {
	OldPassword string `json:"oldPassword"`
	NewPassword string `json:"newPassword"`
}

// Create creates a user on behalf of an administrator. Such accounts are
// verified unless the payload says otherwise.
func (s *UserService) Create(ctx context.Context, input *UserInput) (*models.UserResponse, error) {
	user, err := s.create(ctx, input, true)
	if err != nil {
		return nil, err
	}
	return s.Profile(ctx, user.ID)
}

// create validates and stores a new user. The zion id is assigned when the
// payload leaves it out.
func (s *UserService) create(ctx context.Context, input *UserInput, verified bool) (*models.User, error) {
	name := sanitize.Text(input.Name.Value)
	if name == "" {
		return nil, domain.Invalid("name is required")
	}
	email, err := normalizeEmail(input.Email.Value)
	if err != nil {
		return nil, err
	}
	if !password.ValidatePassword(input.Password.Value) {
		return nil, domain.Invalid("password must be at least %d characters", password.MinLength)
	}
	if err := s.checkEmail(ctx, email, 0); err != nil {
		return nil, err
	}

	user := &models.User{
		Name:       name,
		Email:      email,
		Role:       string(domain.RoleUser),
		IsVerified: verified,
	}

	if input.ZionID.HasValue() {
		if err := s.checkZionID(ctx, input.ZionID.Value, 0); err != nil {
			return nil, err
		}
		user.ZionID = input.ZionID.Value
	} else if user.ZionID, err = nextZionID(ctx, s.userRepo); err != nil {
		return nil, err
	}

	if user.Password, err = password.Hash(input.Password.Value); err != nil {
		return nil, err
	}
	if err := s.apply(ctx, user, input); err != nil {
		return nil, err
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, duplicate(err, "user", "email or zionId", email)
	}

	s.logger.Info("user created", zap.Uint("id", user.ID), zap.Int64("zion_id", user.ZionID), zap.String("role", user.Role))
	return user, nil
}

// Profile gets a user by ID without a visibility check. It serves the
// caller's own account and freshly written records.
func (s *UserService) Profile(ctx context.Context, id uint) (*models.UserResponse, error) {
	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		return nil, notFound(err, "user")
	}
	return user.ToResponse(), nil
}

// Get gets a user by ID. Users outside the caller's scope read as missing.
func (s *UserService) Get(ctx context.Context, identity domain.Identity, id uint) (*models.UserResponse, error) {
	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		return nil, notFound(err, "user")
	}
	if user.ID != identity.UserID && !inScope(domain.ScopeFor(identity), user) {
		return nil, domain.NotFound("user")
	}
	return user.ToResponse(), nil
}

// List lists the users visible to the caller
func (s *UserService) List(ctx context.Context, identity domain.Identity) ([]*models.UserResponse, error) {
	users, err := s.userRepo.List(ctx, domain.ScopeFor(identity))
	if err != nil {
		return nil, err
	}
	return userResponses(users), nil
}

// Paginate lists one page of the users visible to the caller
func (s *UserService) Paginate(ctx context.Context, identity domain.Identity, params *pagination.Params) (*pagination.Page[*models.UserResponse], error) {
	users, total, err := s.userRepo.Paginate(ctx, domain.ScopeFor(identity), params)
	if err != nil {
		return nil, err
	}
	return pagination.NewPage(userResponses(users), params, total), nil
}

// Update applies the supplied fields to a user. Administrators cannot change
// their own role.
func (s *UserService) Update(ctx context.Context, actor domain.Identity, id uint, input *UserInput) (*models.UserResponse, error) {
	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		return nil, notFound(err, "user")
	}

	if input.Name.Set {
		name := sanitize.Text(input.Name.Value)
		if name == "" {
			return nil, domain.Invalid("name cannot be empty")
		}
		user.Name = name
	}
	if input.Email.Set {
		email, err := normalizeEmail(input.Email.Value)
		if err != nil {
			return nil, err
		}
		if err := s.checkEmail(ctx, email, id); err != nil {
			return nil, err
		}
		user.Email = email
	}
	if input.Password.Set {
		if !password.ValidatePassword(input.Password.Value) {
			return nil, domain.Invalid("password must be at least %d characters", password.MinLength)
		}
		if user.Password, err = password.Hash(input.Password.Value); err != nil {
			return nil, err
		}
	}
	if input.ZionID.Set {
		if input.ZionID.Null {
			return nil, domain.Invalid("zionId cannot be cleared")
		}
		if err := s.checkZionID(ctx, input.ZionID.Value, id); err != nil {
			return nil, err
		}
		user.ZionID = input.ZionID.Value
	}
	if input.Role.Set && id == actor.UserID && input.Role.Value != user.Role {
		return nil, domain.Invalid("cannot change your own role")
	}

	wasBlocked := user.IsBlocked
	if err := s.apply(ctx, user, input); err != nil {
		return nil, err
	}

	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, duplicate(err, "user", "email or zionId", user.Email)
	}

	if user.IsBlocked && !wasBlocked {
		if err := s.sessionRepo.RevokeAllByUserID(ctx, user.ID); err != nil {
			return nil, err
		}
	}

	s.logger.Info("user updated", zap.Uint("id", user.ID), zap.Uint("by", actor.UserID))
	return s.Profile(ctx, user.ID)
}

// Delete deletes a user. Callers cannot delete themselves.
func (s *UserService) Delete(ctx context.Context, actor domain.Identity, id uint) error {
	if id == actor.UserID {
		return domain.ErrCannotDeleteSelf
	}
	if _, err := s.userRepo.GetByID(ctx, id); err != nil {
		return notFound(err, "user")
	}

	required, err := s.userRepo.IsRequiredCoordinator(ctx, id)
	if err != nil {
		return err
	}
	if required {
		return domain.InUse("user", "it still coordinates a subzone or fellowship")
	}
	owns, err := s.userRepo.HasReports(ctx, id)
	if err != nil {
		return err
	}
	if owns {
		return domain.InUse("user", "it still owns reports")
	}

	if err := s.userRepo.Delete(ctx, id); err != nil {
		return notFound(err, "user")
	}
	s.logger.Info("user deleted", zap.Uint("id", id), zap.Uint("by", actor.UserID))
	return nil
}

// UpdateProfile updates the caller's own profile
func (s *UserService) UpdateProfile(ctx context.Context, userID uint, input *ProfileInput) (*models.UserResponse, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, notFound(err, "user")
	}

	if input.Name.Set {
		name := sanitize.Text(input.Name.Value)
		if name == "" {
			return nil, domain.Invalid("name cannot be empty")
		}
		user.Name = name
	}

	err = s.apply(ctx, user, &UserInput{
		Fellowship: input.Fellowship,
		Phone:      input.Phone,
		Address:    input.Address,
		Gender:     input.Gender,
		DOB:        input.DOB,
	})
	if err != nil {
		return nil, err
	}

	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}
	return s.Profile(ctx, user.ID)
}

// ChangePassword changes the caller's password and signs out their other
// sessions
func (s *UserService) ChangePassword(ctx context.Context, identity domain.Identity, input *ChangePasswordInput) error {
	user, err := s.userRepo.GetByID(ctx, identity.UserID)
	if err != nil {
		return notFound(err, "user")
	}

	if !password.Verify(input.OldPassword, user.Password) {
		return domain.ErrOldPasswordWrong
	}
	if !password.ValidatePassword(input.NewPassword) {
		return domain.Invalid("password must be at least %d characters", password.MinLength)
	}

	hashed, err := password.Hash(input.NewPassword)
	if err != nil {
		return err
	}
	if err := s.userRepo.UpdateFields(ctx, user.ID, map[string]interface{}{"password": hashed}); err != nil {
		return err
	}
	if err := s.sessionRepo.RevokeOthers(ctx, user.ID, identity.SessionID); err != nil {
		return err
	}

	s.logger.Info("password changed", zap.Uint("user_id", user.ID))
	return nil
}

// apply handles the optional fields create, update and profile share
func (s *UserService) apply(ctx context.Context, user *models.User, input *UserInput) error {
	if input.Role.Set {
		role := domain.Role(strings.TrimSpace(input.Role.Value))
		if !role.Valid() {
			return domain.Invalid("invalid role %q", input.Role.Value)
		}
		user.Role = string(role)
	}

	if err := s.applyPosition(ctx, user, input); err != nil {
		return err
	}

	if input.Phone.Set {
		user.Phone = sanitize.Text(input.Phone.Value)
	}
	if input.Address.Set {
		user.Address = sanitize.Text(input.Address.Value)
	}
	if input.Gender.Set {
		user.Gender = sanitize.Text(input.Gender.Value)
	}
	if input.DOB.Set {
		user.DOB = input.DOB.Ptr()
	}
	if input.IsVerified.Set {
		user.IsVerified = input.IsVerified.Value
	}
	if input.IsBlocked.Set {
		user.IsBlocked = input.IsBlocked.Value
	}
	return nil
}

// applyPosition resolves the hierarchy references. Levels that are not
// supplied are filled in from the level below: a fellowship implies its
// subzone and zone, a zone implies its region.
func (s *UserService) applyPosition(ctx context.Context, user *models.User, input *UserInput) error {
	if input.Fellowship.HasValue() {
		fellowship, err := s.resolve.Fellowship(ctx, input.Fellowship)
		if err != nil {
			return err
		}
		user.FellowshipID = &fellowship.ID
		if !input.Subzone.Set {
			user.SubzoneID = fellowship.SubzoneID
		}
		if !input.Zone.Set {
			user.ZoneID = fellowship.ZoneID
		}
	} else if input.Fellowship.Null {
		user.FellowshipID = nil
	}

	if err := s.resolve.OptionalSubzone(ctx, input.Subzone, &user.SubzoneID); err != nil {
		return err
	}
	if err := s.resolve.OptionalZone(ctx, input.Zone, &user.ZoneID); err != nil {
		return err
	}
	if err := s.resolve.OptionalRegion(ctx, input.Region, &user.RegionID); err != nil {
		return err
	}

	if !input.Region.Set && user.ZoneID != nil && (input.Zone.Set || input.Fellowship.Set) {
		zone, err := s.resolve.zones.GetByID(ctx, *user.ZoneID)
		if err != nil {
			return notFound(err, "zone")
		}
		user.RegionID = &zone.RegionID
	}

	user.Fellowship = nil
	user.Subzone = nil
	user.Zone = nil
	user.Region = nil
	return nil
}

func (s *UserService) checkEmail(ctx context.Context, email string, excludeID uint) error {
	taken, err := s.userRepo.ExistsByEmail(ctx, email, excludeID)
	if err != nil {
		return err
	}
	if taken {
		return domain.Duplicate("user", "email", email)
	}
	return nil
}

func (s *UserService) checkZionID(ctx context.Context, zionID int64, excludeID uint) error {
	taken, err := s.userRepo.ExistsByZionID(ctx, zionID, excludeID)
	if err != nil {
		return err
	}
	if taken {
		return domain.Duplicate("user", "zionId", zionID)
	}
	return nil
}

// nextZionID returns one more than the highest zion id in use
func nextZionID(ctx context.Context, users repositories.UserRepository) (int64, error) {
	max, err := users.MaxZionID(ctx)
	if err != nil {
		return 0, err
	}
	if max < FirstZionID {
		return FirstZionID, nil
	}
	return max + 1, nil
}

func normalizeEmail(raw string) (string, error) {
	email := strings.ToLower(strings.TrimSpace(raw))
	if email == "" {
		return "", domain.Invalid("email is required")
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return "", domain.Invalid("invalid email address %q", raw)
	}
	return email, nil
}

func userResponses(users []*models.User) []*models.UserResponse {
	out := make([]*models.UserResponse, 0, len(users))
	for _, user := range users {
		out = append(out, user.ToResponse())
	}
	return out
}
