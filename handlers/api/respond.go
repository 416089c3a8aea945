package api

import (
	"errors"

	"festgo.app/configs/configslog"
	"festgo.app/services"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

var notFoundErrors = []error{
	services.ErrEventNotFound,
	services.ErrCategoryNotFound,
	services.ErrVenueNotFound,
	services.ErrUserNotFound,
	services.ErrTicketNotFound,
	services.ErrTicketTypeNotFound,
	services.ErrDiscountNotFound,
	services.ErrAttendeeNotFound,
	services.ErrCheckInAttendeeNotFound,
	services.ErrCheckInTicketNotFound,
	services.ErrSponsorNotFound,
	services.ErrSponsorTierNotFound,
	services.ErrSponsorshipNotFound,
	services.ErrSponsorBenefitNotFound,
	services.ErrSurveyNotFound,
	services.ErrSurveyQuestionNotFound,
}

var forbiddenErrors = []error{
	services.ErrEventForbidden,
	services.ErrTicketForbidden,
	services.ErrAttendeeForbidden,
	services.ErrCheckInForbidden,
	services.ErrSponsorForbidden,
	services.ErrSurveyForbidden,
}

var conflictErrors = []error{
	services.ErrUserEmailTaken,
	services.ErrTicketAlreadyCancelled,
	services.ErrTicketAlreadyUsed,
	services.ErrTicketInsufficientStock,
	services.ErrAttendeeAlreadyRegistered,
	services.ErrAttendeeEventFull,
	services.ErrAttendeeInvalidTransition,
	services.ErrCheckInAlreadyCheckedIn,
	services.ErrCheckInCancelled,
	services.ErrSponsorshipDuplicate,
	services.ErrSponsorPaymentTooLarge,
	services.ErrSponsorBenefitDelivered,
	services.ErrSurveyDuplicateResponse,
}

var unprocessableErrors = []error{
	services.ErrTicketTypeNotOnSale,
	services.ErrTicketMaxPerOrder,
	services.ErrTicketNotUsable,
	services.ErrTicketEventEnded,
	services.ErrDiscountNotValid,
	services.ErrDiscountNotApplicable,
	services.ErrAttendeeRegistrationOver,
	services.ErrAttendeeEventNotOpen,
	services.ErrEventNotDraft,
	services.ErrSponsorshipBelowTierMin,
	services.ErrSponsorshipAboveTierMax,
	services.ErrSponsorshipNotPaid,
	services.ErrSurveyNotAvailable,
	services.ErrSurveyInvalidRating,
	services.ErrSurveyInvalidYesNo,
	services.ErrCheckInTicketNotAssigned,
}

func matchesAny(err error, targets []error) bool {
	for _, t := range targets {
		if errors.Is(err, t) {
			return true
		}
	}
	return false
}

// statusFor maps a service error onto an HTTP status. Unrecognized errors are
// treated as internal and logged; their text is not exposed.
func statusFor(err error) int {
	switch {
	case matchesAny(err, notFoundErrors):
		return fiber.StatusNotFound
	case matchesAny(err, forbiddenErrors):
		return fiber.StatusForbidden
	case matchesAny(err, conflictErrors):
		return fiber.StatusConflict
	case matchesAny(err, unprocessableErrors):
		return fiber.StatusUnprocessableEntity
	case errors.Is(err, services.ErrUserInvalidCredential):
		return fiber.StatusUnauthorized
	default:
		return fiber.StatusBadRequest
	}
}

var internalServiceErrors = []error{
	services.ErrEventCreationFailed,
	services.ErrEventUpdateFailed,
	services.ErrEventDeletionFailed,
	services.ErrUserCreationFailed,
	services.ErrUserHashingFailed,
	services.ErrTicketPurchaseFailed,
	services.ErrAttendeeFailed,
	services.ErrCheckInFailed,
	services.ErrSponsorshipOperationFailed,
	services.ErrSurveyOperationFailed,
}

// respondError writes the service error as a JSON body with the right status.
func respondError(c *fiber.Ctx, err error) error {
	if matchesAny(err, internalServiceErrors) {
		configslog.Log.Error("API: internal service error", zap.String("path", c.Path()), zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal error"})
	}
	return c.Status(statusFor(err)).JSON(fiber.Map{"error": err.Error()})
}

// respondJSON writes a success payload.
func respondJSON(c *fiber.Ctx, status int, payload interface{}) error {
	return c.Status(status).JSON(payload)
}

// parseID reads a positive uint path parameter.
func parseID(c *fiber.Ctx, name string) (uint, error) {
	id, err := c.ParamsInt(name)
	if err != nil || id <= 0 {
		return 0, fiber.NewError(fiber.StatusBadRequest, "invalid "+name)
	}
	return uint(id), nil
}
