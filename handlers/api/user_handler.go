package api

import (
	"festgo.app/services"

	"github.com/gofiber/fiber/v2"
)

// UserHandler serves accounts.
type UserHandler struct {
	service services.IUserService
}

// NewUserHandler builds the handler with its service.
func NewUserHandler() *UserHandler {
	return &UserHandler{service: services.NewUserService()}
}

type registerUserBody struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *UserHandler) Register(c *fiber.Ctx) error {
	var body registerUserBody
	if err := c.BodyParser(&body); err != nil {
		return respondError(c, services.ErrUserInvalidInput)
	}
	user, err := h.service.CreateUser(c.UserContext(), body.Name, body.Email, body.Password, false)
	if err != nil {
		return respondError(c, err)
	}
	return respondJSON(c, fiber.StatusCreated, user)
}

func (h *UserHandler) Me(c *fiber.Ctx) error {
	user, err := h.service.GetUserByID(c.UserContext(), currentUserID(c))
	if err != nil {
		return respondError(c, err)
	}
	return respondJSON(c, fiber.StatusOK, user)
}
