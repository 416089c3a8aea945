package api

import (
	"festgo.app/models"
	"festgo.app/pkg/queryparams"
	"festgo.app/services"

	"github.com/gofiber/fiber/v2"
)

// EventHandler serves events, categories and venues.
type EventHandler struct {
	service services.IEventService
}

// NewEventHandler builds the handler with its service.
func NewEventHandler() *EventHandler {
	return &EventHandler{service: services.NewEventService()}
}

func (h *EventHandler) ListEvents(c *fiber.Ctx) error {
	var params queryparams.ListParams
	if err := c.QueryParser(&params); err != nil {
		params = queryparams.DefaultListParams("created_at")
	}
	result, err := h.service.GetEventsPaginated(c.UserContext(), params)
	if err != nil {
		return respondError(c, err)
	}
	return respondJSON(c, fiber.StatusOK, result)
}

func (h *EventHandler) ListMyEvents(c *fiber.Ctx) error {
	var params queryparams.ListParams
	if err := c.QueryParser(&params); err != nil {
		params = queryparams.DefaultListParams("created_at")
	}
	result, err := h.service.GetEventsForOrganizer(c.UserContext(), currentUserID(c), params)
	if err != nil {
		return respondError(c, err)
	}
	return respondJSON(c, fiber.StatusOK, result)
}

func (h *EventHandler) GetEvent(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	event, err := h.service.GetEventByID(c.UserContext(), id)
	if err != nil {
		return respondError(c, err)
	}
	return respondJSON(c, fiber.StatusOK, event)
}

func (h *EventHandler) GetEventBySlug(c *fiber.Ctx) error {
	event, err := h.service.GetEventBySlug(c.UserContext(), c.Params("slug"))
	if err != nil {
		return respondError(c, err)
	}
	return respondJSON(c, fiber.StatusOK, event)
}

func (h *EventHandler) CreateEvent(c *fiber.Ctx) error {
	var event models.Event
	if err := c.BodyParser(&event); err != nil {
		return respondError(c, services.ErrEventInvalidInput)
	}
	created, err := h.service.CreateEvent(c.UserContext(), currentUserID(c), event)
	if err != nil {
		return respondError(c, err)
	}
	return respondJSON(c, fiber.StatusCreated, created)
}

func (h *EventHandler) UpdateEvent(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	var event models.Event
	if err := c.BodyParser(&event); err != nil {
		return respondError(c, services.ErrEventInvalidInput)
	}
	updated, err := h.service.UpdateEvent(c.UserContext(), id, currentUserID(c), event)
	if err != nil {
		return respondError(c, err)
	}
	return respondJSON(c, fiber.StatusOK, updated)
}

func (h *EventHandler) PublishEvent(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	event, err := h.service.PublishEvent(c.UserContext(), id, currentUserID(c))
	if err != nil {
		return respondError(c, err)
	}
	return respondJSON(c, fiber.StatusOK, event)
}

func (h *EventHandler) CancelEvent(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	event, err := h.service.CancelEvent(c.UserContext(), id, currentUserID(c))
	if err != nil {
		return respondError(c, err)
	}
	return respondJSON(c, fiber.StatusOK, event)
}

func (h *EventHandler) DeleteEvent(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	if err := h.service.DeleteEvent(c.UserContext(), id, currentUserID(c)); err != nil {
		return respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (h *EventHandler) ListCategories(c *fiber.Ctx) error {
	categories, err := h.service.ListCategories(c.UserContext())
	if err != nil {
		return respondError(c, err)
	}
	return respondJSON(c, fiber.StatusOK, categories)
}

func (h *EventHandler) CreateCategory(c *fiber.Ctx) error {
	var category models.Category
	if err := c.BodyParser(&category); err != nil {
		return respondError(c, services.ErrEventInvalidInput)
	}
	created, err := h.service.CreateCategory(c.UserContext(), currentUserID(c), category)
	if err != nil {
		return respondError(c, err)
	}
	return respondJSON(c, fiber.StatusCreated, created)
}

func (h *EventHandler) ListVenues(c *fiber.Ctx) error {
	venues, err := h.service.ListVenues(c.UserContext(), c.Query("city"))
	if err != nil {
		return respondError(c, err)
	}
	return respondJSON(c, fiber.StatusOK, venues)
}

func (h *EventHandler) CreateVenue(c *fiber.Ctx) error {
	var venue models.Venue
	if err := c.BodyParser(&venue); err != nil {
		return respondError(c, services.ErrEventInvalidInput)
	}
	created, err := h.service.CreateVenue(c.UserContext(), currentUserID(c), venue)
	if err != nil {
		return respondError(c, err)
	}
	return respondJSON(c, fiber.StatusCreated, created)
}
