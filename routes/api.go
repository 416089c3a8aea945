package routes

import (
	"festgo.app/handlers/api"

	"github.com/gofiber/fiber/v2"
)

// registerAPIRoutes mounts the JSON API under /api/v1. Public reads need no
// identity; everything that acts on behalf of a user goes through
// api.RequireUser.
func registerAPIRoutes(app *fiber.App) {
	eventHandler := api.NewEventHandler()
	ticketHandler := api.NewTicketHandler()
	attendeeHandler := api.NewAttendeeHandler()
	checkInHandler := api.NewCheckInHandler()
	sponsorHandler := api.NewSponsorHandler()
	surveyHandler := api.NewSurveyHandler()
	userHandler := api.NewUserHandler()

	v1 := app.Group("/api/v1")

	// Accounts
	v1.Post("/users", userHandler.Register)
	v1.Get("/users/me", api.RequireUser(), userHandler.Me)

	// Public catalogue
	v1.Get("/events", eventHandler.ListEvents)
	v1.Get("/events/:id", eventHandler.GetEvent)
	v1.Get("/events/slug/:slug", eventHandler.GetEventBySlug)
	v1.Get("/events/:event_id/ticket-types", ticketHandler.ListAvailableTicketTypes)
	v1.Get("/events/:event_id/sponsorships", sponsorHandler.ListForEvent)
	v1.Get("/events/:event_id/surveys", surveyHandler.ListForEvent)
	v1.Get("/categories", eventHandler.ListCategories)
	v1.Get("/venues", eventHandler.ListVenues)
	v1.Get("/tiers", sponsorHandler.ListTiers)
	v1.Get("/surveys/:id", surveyHandler.GetSurvey)

	// Everything below acts as a user.
	auth := v1.Group("", api.RequireUser())

	// Event management
	auth.Post("/events", eventHandler.CreateEvent)
	auth.Put("/events/:id", eventHandler.UpdateEvent)
	auth.Post("/events/:id/publish", eventHandler.PublishEvent)
	auth.Post("/events/:id/cancel", eventHandler.CancelEvent)
	auth.Delete("/events/:id", eventHandler.DeleteEvent)
	auth.Get("/my/events", eventHandler.ListMyEvents)
	auth.Post("/categories", eventHandler.CreateCategory)
	auth.Post("/venues", eventHandler.CreateVenue)

	// Tickets and discounts
	auth.Post("/ticket-types", ticketHandler.CreateTicketType)
	auth.Post("/tickets/purchase", ticketHandler.Purchase)
	auth.Get("/my/tickets", ticketHandler.ListMyTickets)
	auth.Post("/tickets/:id/cancel", ticketHandler.CancelTicket)
	auth.Post("/tickets/:id/use", ticketHandler.MarkTicketUsed)
	auth.Post("/tickets/:id/assign", ticketHandler.AssignTicket)
	auth.Get("/tickets/validate/:code", ticketHandler.ValidateTicket)
	auth.Get("/events/:event_id/sales-stats", ticketHandler.SalesStats)
	auth.Post("/discounts", ticketHandler.CreateDiscountCode)
	auth.Get("/discounts/:code/verify/:ticket_type_id", ticketHandler.VerifyDiscount)
	auth.Get("/discounts/:code/usage", ticketHandler.DiscountUsage)

	// Registrations and check-in
	auth.Post("/events/:event_id/attendees", attendeeHandler.Register)
	auth.Get("/events/:event_id/attendees", attendeeHandler.ListForEvent)
	auth.Get("/events/:event_id/attendees/statistics", attendeeHandler.Statistics)
	auth.Get("/events/:event_id/attendees/export", attendeeHandler.ExportCSV)
	auth.Post("/events/:event_id/attendees/mark-no-shows", attendeeHandler.MarkNoShows)
	auth.Get("/attendees/:id", attendeeHandler.GetAttendee)
	auth.Post("/attendees/:id/confirm", attendeeHandler.Confirm)
	auth.Post("/attendees/:id/cancel", attendeeHandler.Cancel)
	auth.Post("/checkin", checkInHandler.CheckIn)
	auth.Get("/attendees/:attendee_id/checkins", checkInHandler.History)

	// Sponsorship ledger
	auth.Post("/tiers", sponsorHandler.CreateTier)
	auth.Post("/sponsors", sponsorHandler.CreateSponsor)
	auth.Get("/sponsors", sponsorHandler.ListSponsors)
	auth.Get("/sponsors/:id", sponsorHandler.GetSponsor)
	auth.Post("/sponsorships", sponsorHandler.CreateSponsorship)
	auth.Get("/sponsorships/:id", sponsorHandler.GetSponsorship)
	auth.Post("/sponsorships/:id/payments", sponsorHandler.RegisterPayment)
	auth.Post("/sponsorships/:id/complete", sponsorHandler.MarkCompleted)
	auth.Post("/benefits/:id/deliver", sponsorHandler.MarkBenefitDelivered)
	auth.Get("/events/:event_id/sponsorships/statistics", sponsorHandler.Statistics)
	auth.Get("/events/:event_id/sponsorships/pending", sponsorHandler.ListPendingPayments)

	// Surveys
	auth.Post("/surveys", surveyHandler.CreateSurvey)
	auth.Post("/surveys/:id/questions", surveyHandler.AddQuestion)
	auth.Post("/surveys/:id/responses", surveyHandler.SubmitResponses)
	auth.Get("/surveys/:id/results", surveyHandler.Results)
}
