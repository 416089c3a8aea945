package api

import (
	"festgo.app/models"
	"festgo.app/pkg/queryparams"
	"festgo.app/services"

	"github.com/gofiber/fiber/v2"
)

// TicketHandler serves ticket types, purchases and discount codes.
type TicketHandler struct {
	service services.ITicketService
}

// NewTicketHandler builds the handler with its service.
func NewTicketHandler() *TicketHandler {
	return &TicketHandler{service: services.NewTicketService()}
}

func (h *TicketHandler) CreateTicketType(c *fiber.Ctx) error {
	var tt models.TicketType
	if err := c.BodyParser(&tt); err != nil {
		return respondError(c, services.ErrTicketInvalidInput)
	}
	created, err := h.service.CreateTicketType(c.UserContext(), currentUserID(c), tt)
	if err != nil {
		return respondError(c, err)
	}
	return respondJSON(c, fiber.StatusCreated, created)
}

func (h *TicketHandler) ListAvailableTicketTypes(c *fiber.Ctx) error {
	eventID, err := parseID(c, "event_id")
	if err != nil {
		return err
	}
	types, err := h.service.AvailableTicketTypes(c.UserContext(), eventID)
	if err != nil {
		return respondError(c, err)
	}
	return respondJSON(c, fiber.StatusOK, types)
}

func (h *TicketHandler) Purchase(c *fiber.Ctx) error {
	var req services.PurchaseRequest
	if err := c.BodyParser(&req); err != nil {
		return respondError(c, services.ErrTicketInvalidInput)
	}
	tickets, err := h.service.PurchaseTickets(c.UserContext(), currentUserID(c), req)
	if err != nil {
		return respondError(c, err)
	}
	return respondJSON(c, fiber.StatusCreated, fiber.Map{"tickets": tickets})
}

func (h *TicketHandler) ListMyTickets(c *fiber.Ctx) error {
	var params queryparams.ListParams
	if err := c.QueryParser(&params); err != nil {
		params = queryparams.DefaultListParams("purchase_date")
	}
	result, err := h.service.GetTicketsForBuyer(c.UserContext(), currentUserID(c), params)
	if err != nil {
		return respondError(c, err)
	}
	return respondJSON(c, fiber.StatusOK, result)
}

func (h *TicketHandler) CancelTicket(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	var body struct {
		Reason string `json:"reason"`
	}
	_ = c.BodyParser(&body)
	ticket, err := h.service.CancelTicket(c.UserContext(), id, currentUserID(c), body.Reason)
	if err != nil {
		return respondError(c, err)
	}
	return respondJSON(c, fiber.StatusOK, ticket)
}

func (h *TicketHandler) ValidateTicket(c *fiber.Ctx) error {
	ticket, err := h.service.ValidateTicket(c.UserContext(), c.Params("code"))
	if err != nil {
		if ticket != nil {
			return c.Status(statusFor(err)).JSON(fiber.Map{"error": err.Error(), "ticket": ticket})
		}
		return respondError(c, err)
	}
	return respondJSON(c, fiber.StatusOK, fiber.Map{"valid": true, "ticket": ticket})
}

func (h *TicketHandler) MarkTicketUsed(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	ticket, err := h.service.MarkTicketUsed(c.UserContext(), id, currentUserID(c))
	if err != nil {
		return respondError(c, err)
	}
	return respondJSON(c, fiber.StatusOK, ticket)
}

func (h *TicketHandler) AssignTicket(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	var body struct {
		AttendeeID uint `json:"attendee_id"`
	}
	if err := c.BodyParser(&body); err != nil || body.AttendeeID == 0 {
		return respondError(c, services.ErrTicketInvalidInput)
	}
	ticket, err := h.service.AssignTicket(c.UserContext(), id, body.AttendeeID, currentUserID(c))
	if err != nil {
		return respondError(c, err)
	}
	return respondJSON(c, fiber.StatusOK, ticket)
}

func (h *TicketHandler) SalesStats(c *fiber.Ctx) error {
	eventID, err := parseID(c, "event_id")
	if err != nil {
		return err
	}
	stats, err := h.service.SalesStats(c.UserContext(), eventID, currentUserID(c))
	if err != nil {
		return respondError(c, err)
	}
	return respondJSON(c, fiber.StatusOK, stats)
}

func (h *TicketHandler) CreateDiscountCode(c *fiber.Ctx) error {
	var code models.DiscountCode
	if err := c.BodyParser(&code); err != nil {
		return respondError(c, services.ErrTicketInvalidInput)
	}
	created, err := h.service.CreateDiscountCode(c.UserContext(), currentUserID(c), code)
	if err != nil {
		return respondError(c, err)
	}
	return respondJSON(c, fiber.StatusCreated, created)
}

func (h *TicketHandler) VerifyDiscount(c *fiber.Ctx) error {
	ticketTypeID, err := parseID(c, "ticket_type_id")
	if err != nil {
		return err
	}
	quote, err := h.service.VerifyDiscount(c.UserContext(), c.Params("code"), ticketTypeID)
	if err != nil {
		return respondError(c, err)
	}
	return respondJSON(c, fiber.StatusOK, quote)
}

func (h *TicketHandler) DiscountUsage(c *fiber.Ctx) error {
	discount, err := h.service.DiscountUsage(c.UserContext(), c.Params("code"), currentUserID(c))
	if err != nil {
		return respondError(c, err)
	}
	return respondJSON(c, fiber.StatusOK, fiber.Map{
		"code":           discount.Code,
		"times_used":     discount.TimesUsed,
		"max_uses":       discount.MaxUses,
		"remaining_uses": discount.RemainingUses(),
		"is_active":      discount.IsActive,
	})
}
