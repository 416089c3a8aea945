package api

import (
	"festgo.app/services"

	"github.com/gofiber/fiber/v2"
)

// CheckInHandler serves door entry.
type CheckInHandler struct {
	service services.ICheckInService
}

// NewCheckInHandler builds the handler with its service.
func NewCheckInHandler() *CheckInHandler {
	return &CheckInHandler{service: services.NewCheckInService()}
}

func (h *CheckInHandler) CheckIn(c *fiber.Ctx) error {
	var req services.CheckInRequest
	if err := c.BodyParser(&req); err != nil {
		return respondError(c, services.ErrCheckInMissingLookup)
	}
	result, err := h.service.CheckIn(c.UserContext(), currentUserID(c), req)
	if err != nil {
		return respondError(c, err)
	}
	return respondJSON(c, fiber.StatusOK, result)
}

func (h *CheckInHandler) History(c *fiber.Ctx) error {
	attendeeID, err := parseID(c, "attendee_id")
	if err != nil {
		return err
	}
	logs, err := h.service.CheckInHistory(c.UserContext(), attendeeID, currentUserID(c))
	if err != nil {
		return respondError(c, err)
	}
	return respondJSON(c, fiber.StatusOK, logs)
}
