package api

import (
	"festgo.app/models"
	"festgo.app/pkg/queryparams"
	"festgo.app/services"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
)

// SponsorHandler serves the sponsorship ledger.
type SponsorHandler struct {
	service services.ISponsorService
}

// NewSponsorHandler builds the handler with its service.
func NewSponsorHandler() *SponsorHandler {
	return &SponsorHandler{service: services.NewSponsorService()}
}

func (h *SponsorHandler) CreateTier(c *fiber.Ctx) error {
	var tier models.SponsorTier
	if err := c.BodyParser(&tier); err != nil {
		return respondError(c, services.ErrSponsorInvalidInput)
	}
	created, err := h.service.CreateTier(c.UserContext(), currentUserID(c), tier)
	if err != nil {
		return respondError(c, err)
	}
	return respondJSON(c, fiber.StatusCreated, created)
}

func (h *SponsorHandler) ListTiers(c *fiber.Ctx) error {
	tiers, err := h.service.ListTiers(c.UserContext())
	if err != nil {
		return respondError(c, err)
	}
	return respondJSON(c, fiber.StatusOK, tiers)
}

func (h *SponsorHandler) CreateSponsor(c *fiber.Ctx) error {
	var sponsor models.Sponsor
	if err := c.BodyParser(&sponsor); err != nil {
		return respondError(c, services.ErrSponsorInvalidInput)
	}
	created, err := h.service.CreateSponsor(c.UserContext(), currentUserID(c), sponsor)
	if err != nil {
		return respondError(c, err)
	}
	return respondJSON(c, fiber.StatusCreated, created)
}

func (h *SponsorHandler) GetSponsor(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	sponsor, err := h.service.GetSponsorByID(c.UserContext(), id)
	if err != nil {
		return respondError(c, err)
	}
	return respondJSON(c, fiber.StatusOK, sponsor)
}

func (h *SponsorHandler) ListSponsors(c *fiber.Ctx) error {
	var params queryparams.ListParams
	if err := c.QueryParser(&params); err != nil {
		params = queryparams.DefaultListParams("created_at")
	}
	result, err := h.service.GetSponsorsPaginated(c.UserContext(), params)
	if err != nil {
		return respondError(c, err)
	}
	return respondJSON(c, fiber.StatusOK, result)
}

func (h *SponsorHandler) CreateSponsorship(c *fiber.Ctx) error {
	var sponsorship models.Sponsorship
	if err := c.BodyParser(&sponsorship); err != nil {
		return respondError(c, services.ErrSponsorInvalidInput)
	}
	created, err := h.service.CreateSponsorship(c.UserContext(), currentUserID(c), sponsorship)
	if err != nil {
		return respondError(c, err)
	}
	return respondJSON(c, fiber.StatusCreated, created)
}

func (h *SponsorHandler) GetSponsorship(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	sponsorship, err := h.service.GetSponsorshipByID(c.UserContext(), id)
	if err != nil {
		return respondError(c, err)
	}
	return respondJSON(c, fiber.StatusOK, sponsorship)
}

func (h *SponsorHandler) ListForEvent(c *fiber.Ctx) error {
	eventID, err := parseID(c, "event_id")
	if err != nil {
		return err
	}
	// Unauthenticated listings only see public sponsorships.
	publicOnly := currentUserID(c) == 0
	sponsorships, err := h.service.ListSponsorshipsByEvent(c.UserContext(), eventID, publicOnly)
	if err != nil {
		return respondError(c, err)
	}
	return respondJSON(c, fiber.StatusOK, sponsorships)
}

func (h *SponsorHandler) RegisterPayment(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	var body struct {
		Amount decimal.Decimal `json:"amount"`
	}
	if err := c.BodyParser(&body); err != nil {
		return respondError(c, services.ErrSponsorInvalidInput)
	}
	sponsorship, err := h.service.RegisterPayment(c.UserContext(), id, currentUserID(c), body.Amount)
	if err != nil {
		return respondError(c, err)
	}
	return respondJSON(c, fiber.StatusOK, sponsorship)
}

func (h *SponsorHandler) MarkCompleted(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	sponsorship, err := h.service.MarkCompleted(c.UserContext(), id, currentUserID(c))
	if err != nil {
		return respondError(c, err)
	}
	return respondJSON(c, fiber.StatusOK, sponsorship)
}

func (h *SponsorHandler) MarkBenefitDelivered(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	var body struct {
		Notes string `json:"notes"`
	}
	_ = c.BodyParser(&body)
	benefit, err := h.service.MarkBenefitDelivered(c.UserContext(), id, currentUserID(c), body.Notes)
	if err != nil {
		return respondError(c, err)
	}
	return respondJSON(c, fiber.StatusOK, benefit)
}

func (h *SponsorHandler) Statistics(c *fiber.Ctx) error {
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

func (h *SponsorHandler) ListPendingPayments(c *fiber.Ctx) error {
	eventID, err := parseID(c, "event_id")
	if err != nil {
		return err
	}
	pending, err := h.service.ListPendingPayments(c.UserContext(), eventID, currentUserID(c))
	if err != nil {
		return respondError(c, err)
	}
	return respondJSON(c, fiber.StatusOK, pending)
}
