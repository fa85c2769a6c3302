package service

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"

	"github.com/civicbridge/complaint-service/internal/auth"
	"github.com/civicbridge/complaint-service/internal/config"
	"github.com/civicbridge/complaint-service/internal/domain"
	"github.com/civicbridge/complaint-service/internal/observability"
	"github.com/civicbridge/complaint-service/internal/repository"
	apperrors "github.com/civicbridge/complaint-service/pkg/util/errorutil"
)

// AccountService coordinates the user directory: registration, login and admin edits.
type AccountService struct {
	users       repository.UserRepository
	complaints  repository.ComplaintRepository
	assignments repository.AssignmentRepository
	metrics     *observability.Metrics
	logger      *zap.Logger
	bcryptCost  int
	adminEmail  string
	adminPass   string
	districts   []string
}

// AccountDependencies encapsulates repo requirements for account service.
type AccountDependencies struct {
	UserRepo       repository.UserRepository
	ComplaintRepo  repository.ComplaintRepository
	AssignmentRepo repository.AssignmentRepository
	Metrics        *observability.Metrics
	Logger         *zap.Logger
}

// SignUpInput is the registration payload.
type SignUpInput struct {
	Name       string
	Email      string
	Password   string
	Phone      string
	UserType   string
	Department *string
	District   *string
}

// ProfileUpdate carries admin edits. Nil fields are left unchanged.
type ProfileUpdate struct {
	Name       *string
	Email      *string
	Phone      *string
	Department *string
}

// DeleteResult counts the cascade.
type DeleteResult struct {
	ComplaintsDeleted  int64
	AssignmentsDeleted int64
}

// NewAccountService builds the service.
func NewAccountService(cfg config.Config, deps AccountDependencies) *AccountService {
	districts := cfg.Districts
	if len(districts) == 0 {
		districts = config.DefaultDistricts
	}
	return &AccountService{
		users:       deps.UserRepo,
		complaints:  deps.ComplaintRepo,
		assignments: deps.AssignmentRepo,
		metrics:     deps.Metrics,
		logger:      nopIfNil(deps.Logger),
		bcryptCost:  cfg.Auth.BcryptCost,
		adminEmail:  cfg.Auth.AdminEmail,
		adminPass:   cfg.Auth.AdminPassword,
		districts:   append([]string(nil), districts...),
	}
}

// SignUp registers an Ordinary or Agent account.
func (s *AccountService) SignUp(ctx context.Context, input SignUpInput) (*domain.User, error) {
	email := strings.TrimSpace(input.Email)
	if email == "" || input.Password == "" {
		return nil, apperrors.NewValidationError("email and password are required", nil)
	}

	role := domain.Role(strings.TrimSpace(input.UserType))
	if role == "" {
		role = domain.RoleOrdinary
	}
	if !role.Valid() {
		return nil, apperrors.NewValidationError("unknown userType", map[string]any{"userType": input.UserType})
	}
	if role == domain.RoleAdmin {
		return nil, apperrors.NewValidationError("admin accounts cannot be registered", nil)
	}

	if _, err := s.users.GetByEmail(ctx, email); err == nil {
		return nil, apperrors.NewEmailExists("This email address is already registered")
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, apperrors.MapError(err)
	}

	hash, err := auth.HashPassword(input.Password, s.bcryptCost)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}

	user := &domain.User{
		Name:         strings.TrimSpace(input.Name),
		Email:        email,
		PasswordHash: hash,
		Phone:        strings.TrimSpace(input.Phone),
		Role:         role,
		Department:   trimmedOrNil(input.Department),
		District:     trimmedOrNil(input.District),
	}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, apperrors.NewEmailExists("This email address is already registered")
		}
		return nil, apperrors.MapError(err)
	}
	return user, nil
}

// Login returns the account matching the credentials. The configured admin
// credential is checked first and yields the synthetic admin record.
func (s *AccountService) Login(ctx context.Context, email, password string) (*domain.User, error) {
	if s.adminEmail != "" && auth.ConstantTimeEqual(email, s.adminEmail) && auth.ConstantTimeEqual(password, s.adminPass) {
		return &domain.User{
			ID:    domain.AdminUserID,
			Name:  "Admin",
			Email: s.adminEmail,
			Role:  domain.RoleAdmin,
		}, nil
	}

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NewUnauthorized("User doesn't exist")
		}
		return nil, apperrors.MapError(err)
	}
	if err := auth.ComparePassword(user.PasswordHash, password); err != nil {
		return nil, apperrors.NewUnauthorized("Invalid Credentials")
	}
	return user, nil
}

// EmailExists reports whether any account uses email.
func (s *AccountService) EmailExists(ctx context.Context, email string) (bool, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return false, apperrors.NewValidationError("Email is required", nil)
	}
	if _, err := s.users.GetByEmail(ctx, email); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return false, nil
		}
		return false, apperrors.MapError(err)
	}
	return true, nil
}

// UpdateProfile applies admin edits, re-checking email uniqueness against other accounts.
func (s *AccountService) UpdateProfile(ctx context.Context, userID string, update ProfileUpdate) (*domain.User, error) {
	if update.Email != nil {
		email := strings.TrimSpace(*update.Email)
		update.Email = &email
		if email == "" {
			return nil, apperrors.NewValidationError("email must not be empty", nil)
		}
		existing, err := s.users.GetByEmail(ctx, email)
		if err == nil && existing.ID != userID {
			return nil, apperrors.NewEmailExists("This email address is already registered by another user")
		}
		if err != nil && !errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.MapError(err)
		}
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, notFoundOr(err, "User", map[string]any{"userId": userID})
	}
	if update.Name != nil {
		user.Name = strings.TrimSpace(*update.Name)
	}
	if update.Email != nil {
		user.Email = *update.Email
	}
	if update.Phone != nil {
		user.Phone = strings.TrimSpace(*update.Phone)
	}
	if update.Department != nil {
		user.Department = trimmedOrNil(update.Department)
	}

	if err := s.users.Update(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, apperrors.NewEmailExists("This email address is already registered by another user")
		}
		return nil, notFoundOr(err, "User", map[string]any{"userId": userID})
	}
	return user, nil
}

// DeleteUser removes an account, then every complaint it owns and every
// assignment naming it as agent. When requiredRole is set the account must
// have that role. Cascade failures are logged; the account stays deleted.
func (s *AccountService) DeleteUser(ctx context.Context, userID string, requiredRole *domain.Role) (*DeleteResult, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, notFoundOr(err, resourceFor(requiredRole), map[string]any{"userId": userID})
	}
	if requiredRole != nil && user.Role != *requiredRole {
		return nil, apperrors.NewNotFound(resourceFor(requiredRole), map[string]any{"userId": userID})
	}

	if err := s.users.Delete(ctx, userID); err != nil {
		return nil, notFoundOr(err, resourceFor(requiredRole), map[string]any{"userId": userID})
	}

	result := &DeleteResult{}
	if result.ComplaintsDeleted, err = s.complaints.DeleteByUser(ctx, userID); err != nil {
		s.logger.Warn("delete cascade: complaints not removed", zap.String("user_id", userID), zap.Error(err))
		s.metrics.DualWritePartial("delete_user", "complaint")
	}
	if result.AssignmentsDeleted, err = s.assignments.DeleteByAgent(ctx, userID); err != nil {
		s.logger.Warn("delete cascade: assignments not removed", zap.String("user_id", userID), zap.Error(err))
		s.metrics.DualWritePartial("delete_user", "assignment")
	}

	s.logger.Info("user deleted",
		zap.String("user_id", userID),
		zap.String("role", string(user.Role)),
		zap.Int64("complaints_deleted", result.ComplaintsDeleted),
		zap.Int64("assignments_deleted", result.AssignmentsDeleted))
	return result, nil
}

// ListByRole returns accounts with role; an empty slice when none match.
func (s *AccountService) ListByRole(ctx context.Context, role domain.Role) ([]domain.User, error) {
	users, err := s.users.List(ctx, repository.UserFilter{Role: &role})
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return users, nil
}

// GetAgent returns the account only if it is an Agent.
func (s *AccountService) GetAgent(ctx context.Context, agentID string) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, agentID)
	if err != nil {
		return nil, notFoundOr(err, "User", map[string]any{"agentId": agentID})
	}
	if user.Role != domain.RoleAgent {
		return nil, apperrors.NewNotFound("User", map[string]any{"agentId": agentID})
	}
	return user, nil
}

// ListByDistrict returns accounts of every role registered to district.
func (s *AccountService) ListByDistrict(ctx context.Context, district string) ([]domain.User, error) {
	users, err := s.users.List(ctx, repository.UserFilter{District: &district})
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return users, nil
}

// Districts returns the configured district catalogue.
func (s *AccountService) Districts() []string {
	return append([]string(nil), s.districts...)
}

func resourceFor(role *domain.Role) string {
	if role != nil && *role == domain.RoleAgent {
		return "Agent"
	}
	return "User"
}

func trimmedOrNil(v *string) *string {
	if v == nil {
		return nil
	}
	t := strings.TrimSpace(*v)
	if t == "" {
		return nil
	}
	return &t
}
