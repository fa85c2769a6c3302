package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/civicbridge/complaint-service/internal/api/dto"
	"github.com/civicbridge/complaint-service/internal/domain"
	"github.com/civicbridge/complaint-service/internal/service"
	apperrors "github.com/civicbridge/complaint-service/pkg/util/errorutil"
)

// UsersHandler exposes account directory endpoints.
type UsersHandler struct {
	accounts *service.AccountService
}

// NewUsersHandler constructs handler.
func NewUsersHandler(accountService *service.AccountService) *UsersHandler {
	return &UsersHandler{accounts: accountService}
}

// SignUp handles POST /SignUp.
func (h *UsersHandler) SignUp(c *fiber.Ctx) error {
	var req dto.SignUpRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	user, err := h.accounts.SignUp(c.UserContext(), service.SignUpInput{
		Name:       req.Name,
		Email:      req.Email,
		Password:   req.Password,
		Phone:      req.Phone,
		UserType:   req.UserType,
		Department: req.Department,
		District:   req.District,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(userResponse(user))
}

// Login handles POST /Login.
func (h *UsersHandler) Login(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.Email == "" || req.Password == "" {
		return apperrors.NewValidationError("email and password required", nil)
	}

	user, err := h.accounts.Login(c.UserContext(), req.Email, req.Password)
	if err != nil {
		return err
	}
	return c.JSON(userResponse(user))
}

// CheckEmail handles POST /checkEmail.
func (h *UsersHandler) CheckEmail(c *fiber.Ctx) error {
	var req dto.CheckEmailRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	exists, err := h.accounts.EmailExists(c.UserContext(), req.Email)
	if err != nil {
		return err
	}
	return c.JSON(dto.CheckEmailResponse{Exists: exists})
}

// ListAgents handles GET /AgentUsers.
func (h *UsersHandler) ListAgents(c *fiber.Ctx) error {
	return h.listByRole(c, domain.RoleAgent)
}

// ListOrdinary handles GET /OrdinaryUsers.
func (h *UsersHandler) ListOrdinary(c *fiber.Ctx) error {
	return h.listByRole(c, domain.RoleOrdinary)
}

// GetAgent handles GET /AgentUsers/:agentId.
func (h *UsersHandler) GetAgent(c *fiber.Ctx) error {
	user, err := h.accounts.GetAgent(c.UserContext(), c.Params("agentId"))
	if err != nil {
		return err
	}
	return c.JSON(userResponse(user))
}

// UpdateProfile handles PUT /user/:_id.
func (h *UsersHandler) UpdateProfile(c *fiber.Ctx) error {
	var req dto.ProfileUpdateRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	user, err := h.accounts.UpdateProfile(c.UserContext(), c.Params("_id"), service.ProfileUpdate{
		Name:       req.Name,
		Email:      req.Email,
		Phone:      req.Phone,
		Department: req.Department,
	})
	if err != nil {
		return err
	}
	return c.JSON(userResponse(user))
}

// DeleteUser handles DELETE /user/:_id and DELETE /OrdinaryUsers/:id.
func (h *UsersHandler) DeleteUser(c *fiber.Ctx) error {
	id := c.Params("_id")
	if id == "" {
		id = c.Params("id")
	}
	if _, err := h.accounts.DeleteUser(c.UserContext(), id, nil); err != nil {
		return err
	}
	return c.JSON(dto.MessageResponse{Message: "User deleted successfully"})
}

// DeleteAgent handles DELETE /agentUsers/:id; only Agent accounts match.
func (h *UsersHandler) DeleteAgent(c *fiber.Ctx) error {
	role := domain.RoleAgent
	if _, err := h.accounts.DeleteUser(c.UserContext(), c.Params("id"), &role); err != nil {
		return err
	}
	return c.JSON(dto.MessageResponse{Message: "Agent deleted successfully"})
}

// ListByDistrict handles GET /users/district/:district.
func (h *UsersHandler) ListByDistrict(c *fiber.Ctx) error {
	users, err := h.accounts.ListByDistrict(c.UserContext(), c.Params("district"))
	if err != nil {
		return err
	}
	return c.JSON(userList(users))
}

// Districts handles GET /districts.
func (h *UsersHandler) Districts(c *fiber.Ctx) error {
	return c.JSON(h.accounts.Districts())
}

func (h *UsersHandler) listByRole(c *fiber.Ctx, role domain.Role) error {
	users, err := h.accounts.ListByRole(c.UserContext(), role)
	if err != nil {
		return err
	}
	return c.JSON(userList(users))
}

func userResponse(u *domain.User) dto.UserResponse {
	resp := dto.UserResponse{
		ID:         u.ID,
		Name:       u.Name,
		Email:      u.Email,
		Phone:      u.Phone,
		UserType:   u.Role,
		Department: u.Department,
		District:   u.District,
	}
	if !u.CreatedAt.IsZero() {
		created := u.CreatedAt
		resp.CreatedAt = &created
	}
	return resp
}

func userList(users []domain.User) []dto.UserResponse {
	items := make([]dto.UserResponse, 0, len(users))
	for i := range users {
		items = append(items, userResponse(&users[i]))
	}
	return items
}
