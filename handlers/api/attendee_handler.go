package api

import (
	"festgo.app/models"
	"festgo.app/pkg/queryparams"
	"festgo.app/services"

	"github.com/gofiber/fiber/v2"
)

// AttendeeHandler serves event registrations.
type AttendeeHandler struct {
	service services.IAttendeeService
}

// NewAttendeeHandler builds the handler with its service.
func NewAttendeeHandler() *AttendeeHandler {
	return &AttendeeHandler{service: services.NewAttendeeService()}
}

func (h *AttendeeHandler) Register(c *fiber.Ctx) error {
	eventID, err := parseID(c, "event_id")
	if err != nil {
		return err
	}
	var attendee models.Attendee
	if err := c.BodyParser(&attendee); err != nil {
		return respondError(c, services.ErrAttendeeInvalidInput)
	}
	created, err := h.service.Register(c.UserContext(), currentUserID(c), eventID, attendee)
	if err != nil {
		return respondError(c, err)
	}
	return respondJSON(c, fiber.StatusCreated, created)
}

func (h *AttendeeHandler) GetAttendee(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	attendee, err := h.service.GetAttendeeByID(c.UserContext(), id)
	if err != nil {
		return respondError(c, err)
	}
	return respondJSON(c, fiber.StatusOK, attendee)
}

func (h *AttendeeHandler) ListForEvent(c *fiber.Ctx) error {
	eventID, err := parseID(c, "event_id")
	if err != nil {
		return err
	}
	var params queryparams.ListParams
	if err := c.QueryParser(&params); err != nil {
		params = queryparams.DefaultListParams("registration_date")
	}
	result, err := h.service.GetAttendeesForEvent(c.UserContext(), eventID, currentUserID(c), params)
	if err != nil {
		return respondError(c, err)
	}
	return respondJSON(c, fiber.StatusOK, result)
}

func (h *AttendeeHandler) Confirm(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	attendee, err := h.service.ConfirmAttendee(c.UserContext(), id, currentUserID(c))
	if err != nil {
		return respondError(c, err)
	}
	return respondJSON(c, fiber.StatusOK, attendee)
}

func (h *AttendeeHandler) Cancel(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	attendee, err := h.service.CancelRegistration(c.UserContext(), id, currentUserID(c))
	if err != nil {
		return respondError(c, err)
	}
	return respondJSON(c, fiber.StatusOK, attendee)
}

func (h *AttendeeHandler) MarkNoShows(c *fiber.Ctx) error {
	eventID, err := parseID(c, "event_id")
	if err != nil {
		return err
	}
	flipped, err := h.service.MarkNoShows(c.UserContext(), eventID, currentUserID(c))
	if err != nil {
		return respondError(c, err)
	}
	return respondJSON(c, fiber.StatusOK, fiber.Map{"marked_no_show": flipped})
}

func (h *AttendeeHandler) Statistics(c *fiber.Ctx) error {
	eventID, err := parseID(c, "event_id")
	if err != nil {
		return err
	}
	stats, err := h.service.Statistics(c.UserContext(), eventID, currentUserID(c))
	if err != nil {
		return respondError(c, err)
	}
	return respondJSON(c, fiber.StatusOK, stats)
}

func (h *AttendeeHandler) ExportCSV(c *fiber.Ctx) error {
	eventID, err := parseID(c, "event_id")
	if err != nil {
		return err
	}
	data, err := h.service.ExportCSV(c.UserContext(), eventID, currentUserID(c))
	if err != nil {
		return respondError(c, err)
	}
	c.Set(fiber.HeaderContentType, "text/csv")
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="attendees.csv"`)
	return c.Send(data)
}
