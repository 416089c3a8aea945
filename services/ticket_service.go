package services

import (
	"context"
	"fmt"
	"strings"

	"festgo.app/configs"
	"festgo.app/configs/configslog"
	"festgo.app/models"
	"festgo.app/pkg/mailer"
	"festgo.app/pkg/queryparams"
	"festgo.app/repositories"

	"github.com/jonboulle/clockwork"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// TicketServiceError is the typed error set of the ticket service.
type TicketServiceError string

func (e TicketServiceError) Error() string { return string(e) }

const (
	ErrTicketTypeNotFound      TicketServiceError = "ticket type not found"
	ErrTicketNotFound          TicketServiceError = "ticket not found"
	ErrTicketTypeNotOnSale     TicketServiceError = "ticket type is not on sale"
	ErrTicketInsufficientStock TicketServiceError = "not enough tickets remaining"
	ErrTicketMaxPerOrder       TicketServiceError = "quantity exceeds the per-order limit"
	ErrTicketInvalidQuantity   TicketServiceError = "quantity must be at least 1"
	ErrTicketPurchaseFailed    TicketServiceError = "purchase could not be completed"
	ErrTicketAlreadyCancelled  TicketServiceError = "ticket is already cancelled"
	ErrTicketAlreadyUsed       TicketServiceError = "ticket has already been used"
	ErrTicketNotUsable         TicketServiceError = "ticket is not in a usable state"
	ErrTicketEventEnded        TicketServiceError = "event has already ended"
	ErrTicketForbidden         TicketServiceError = "you are not allowed to manage this ticket"
	ErrDiscountNotFound        TicketServiceError = "discount code not found"
	ErrDiscountNotValid        TicketServiceError = "discount code is not valid"
	ErrDiscountNotApplicable   TicketServiceError = "discount code does not apply to this ticket type"
	ErrTicketInvalidInput      TicketServiceError = "invalid ticket data"
)

// PurchaseRequest is one order: n tickets of one type, optionally discounted.
type PurchaseRequest struct {
	TicketTypeID  uint   `json:"ticket_type_id"`
	Quantity      uint   `json:"quantity"`
	DiscountCode  string `json:"discount_code,omitempty"`
	PaymentMethod string `json:"payment_method,omitempty"`
}

// DiscountQuote is the evaluated price of one ticket under a discount code.
type DiscountQuote struct {
	Code            string          `json:"code"`
	OriginalPrice   decimal.Decimal `json:"original_price"`
	DiscountApplied decimal.Decimal `json:"discount_applied"`
	FinalPrice      decimal.Decimal `json:"final_price"`
}

// TicketTypeSalesStats summarizes sales of one ticket type.
type TicketTypeSalesStats struct {
	TicketTypeID      uint            `json:"ticket_type_id"`
	Name              string          `json:"name"`
	QuantityAvailable uint            `json:"quantity_available"`
	QuantitySold      uint            `json:"quantity_sold"`
	QuantityRemaining uint            `json:"quantity_remaining"`
	TicketsIssued     int             `json:"tickets_issued"`
	TicketsUsed       int             `json:"tickets_used"`
	TicketsCancelled  int             `json:"tickets_cancelled"`
	GrossRevenue      decimal.Decimal `json:"gross_revenue"`
	TotalDiscounts    decimal.Decimal `json:"total_discounts"`
}

// ITicketService is the purchase, validation and discount surface.
type ITicketService interface {
	CreateTicketType(ctx context.Context, actingUserID uint, tt models.TicketType) (*models.TicketType, error)
	AvailableTicketTypes(ctx context.Context, eventID uint) ([]models.TicketType, error)
	PurchaseTickets(ctx context.Context, buyerID uint, req PurchaseRequest) ([]models.Ticket, error)
	CancelTicket(ctx context.Context, ticketID uint, actingUserID uint, reason string) (*models.Ticket, error)
	ValidateTicket(ctx context.Context, ticketCode string) (*models.Ticket, error)
	MarkTicketUsed(ctx context.Context, ticketID uint, actingUserID uint) (*models.Ticket, error)
	AssignTicket(ctx context.Context, ticketID uint, attendeeID uint, actingUserID uint) (*models.Ticket, error)
	GetTicketsForBuyer(ctx context.Context, buyerID uint, params queryparams.ListParams) (*queryparams.PaginatedResult, error)
	SalesStats(ctx context.Context, eventID uint, actingUserID uint) ([]TicketTypeSalesStats, error)

	CreateDiscountCode(ctx context.Context, actingUserID uint, code models.DiscountCode) (*models.DiscountCode, error)
	VerifyDiscount(ctx context.Context, code string, ticketTypeID uint) (*DiscountQuote, error)
	DiscountUsage(ctx context.Context, code string, actingUserID uint) (*models.DiscountCode, error)
}

// TicketService implements ITicketService.
type TicketService struct {
	repo         repositories.ITicketRepository
	eventRepo    repositories.IEventRepository
	attendeeRepo repositories.IAttendeeRepository
	userService  IUserService
	mail         mailer.Sender
	db           *gorm.DB
	clock        clockwork.Clock
}

// NewTicketService builds the service on the shared connection.
func NewTicketService() ITicketService {
	return &TicketService{
		repo:         repositories.NewTicketRepository(),
		eventRepo:    repositories.NewEventRepository(),
		attendeeRepo: repositories.NewAttendeeRepository(),
		userService:  NewUserService(),
		mail:         mailer.New(),
		db:           configs.GetDB(),
		clock:        clockwork.NewRealClock(),
	}
}

// NewTicketServiceWith builds the service with injected dependencies.
func NewTicketServiceWith(db *gorm.DB, clock clockwork.Clock, mail mailer.Sender) ITicketService {
	return &TicketService{
		repo:         repositories.NewTicketRepositoryTx(db),
		eventRepo:    repositories.NewEventRepositoryTx(db),
		attendeeRepo: repositories.NewAttendeeRepositoryTx(db),
		userService:  NewUserServiceWith(repositories.NewUserRepositoryTx(db)),
		mail:         mail,
		db:           db,
		clock:        clock,
	}
}

func (s *TicketService) CreateTicketType(ctx context.Context, actingUserID uint, tt models.TicketType) (*models.TicketType, error) {
	event, err := s.eventRepo.FindByID(ctx, tt.EventID)
	if err != nil {
		return nil, ErrEventNotFound
	}
	user, err := s.userService.GetUserByID(ctx, actingUserID)
	if err != nil || !user.CanOperateEvent(event.OrganizerID) {
		return nil, ErrEventForbidden
	}
	tt.Name = strings.TrimSpace(tt.Name)
	if tt.Name == "" || tt.QuantityAvailable == 0 {
		return nil, fmt.Errorf("%w: name and quantity are required", ErrTicketInvalidInput)
	}
	if tt.Price.IsNegative() {
		return nil, fmt.Errorf("%w: price cannot be negative", ErrTicketInvalidInput)
	}
	if tt.SaleStart.IsZero() || tt.SaleEnd.IsZero() || !tt.SaleStart.Before(tt.SaleEnd) {
		return nil, fmt.Errorf("%w: sale window is inconsistent", ErrTicketInvalidInput)
	}
	if tt.MaxPerOrder == 0 {
		tt.MaxPerOrder = 10
	}
	tt.QuantitySold = 0
	tt.IsActive = true

	createCtx := models.ContextWithUserID(ctx, actingUserID)
	if err := s.repo.CreateTicketType(createCtx, &tt); err != nil {
		configslog.Log.Error("TicketService.CreateTicketType: DB error", zap.Uint("eventID", tt.EventID), zap.Error(err))
		return nil, ErrTicketPurchaseFailed
	}
	return &tt, nil
}

// AvailableTicketTypes lists the types currently on sale for the event.
func (s *TicketService) AvailableTicketTypes(ctx context.Context, eventID uint) ([]models.TicketType, error) {
	if _, err := s.eventRepo.FindByID(ctx, eventID); err != nil {
		return nil, ErrEventNotFound
	}
	return s.repo.ListTicketTypesOnSale(ctx, eventID, s.clock.Now().UTC())
}

// evaluateDiscount computes the per-ticket deduction of a valid, applicable
// code. Fixed discounts are clamped so the final price never goes negative.
func evaluateDiscount(code *models.DiscountCode, tt *models.TicketType) (decimal.Decimal, error) {
	if code.EventID != nil && *code.EventID != tt.EventID {
		return decimal.Zero, ErrDiscountNotApplicable
	}
	if len(code.ApplicableTicketTypes) > 0 {
		applicable := false
		for _, scoped := range code.ApplicableTicketTypes {
			if scoped.ID == tt.ID {
				applicable = true
				break
			}
		}
		if !applicable {
			return decimal.Zero, ErrDiscountNotApplicable
		}
	}

	var deduction decimal.Decimal
	switch code.DiscountType {
	case models.DiscountTypePercentage:
		deduction = tt.Price.Mul(code.DiscountValue).Div(decimal.NewFromInt(100))
	case models.DiscountTypeFixed:
		deduction = code.DiscountValue
	default:
		return decimal.Zero, ErrDiscountNotValid
	}
	if deduction.GreaterThan(tt.Price) {
		deduction = tt.Price
	}
	return deduction.Round(2), nil
}

// VerifyDiscount quotes a code against a ticket type without redeeming it.
func (s *TicketService) VerifyDiscount(ctx context.Context, code string, ticketTypeID uint) (*DiscountQuote, error) {
	discount, err := s.repo.FindDiscountByCode(ctx, code)
	if err != nil {
		return nil, ErrDiscountNotFound
	}
	if !discount.IsValid(s.clock.Now().UTC()) {
		return nil, ErrDiscountNotValid
	}
	tt, err := s.repo.FindTicketTypeByID(ctx, ticketTypeID)
	if err != nil {
		return nil, ErrTicketTypeNotFound
	}
	deduction, err := evaluateDiscount(discount, tt)
	if err != nil {
		return nil, err
	}
	return &DiscountQuote{
		Code:            discount.Code,
		OriginalPrice:   tt.Price,
		DiscountApplied: deduction,
		FinalPrice:      tt.Price.Sub(deduction),
	}, nil
}

// PurchaseTickets validates the order, then atomically decrements inventory
// and creates one ticket row per seat. All tickets of the order share the same
// price fields. The inventory row is locked for the duration, so two
// concurrent orders can never oversell.
func (s *TicketService) PurchaseTickets(ctx context.Context, buyerID uint, req PurchaseRequest) ([]models.Ticket, error) {
	if buyerID == 0 || req.TicketTypeID == 0 {
		return nil, ErrTicketInvalidInput
	}
	if req.Quantity == 0 {
		return nil, ErrTicketInvalidQuantity
	}
	buyer, err := s.userService.GetUserByID(ctx, buyerID)
	if err != nil {
		return nil, ErrUserNotFound
	}

	now := s.clock.Now().UTC()
	var created []models.Ticket

	txErr := s.db.Transaction(func(tx *gorm.DB) error {
		txCtx := repositories.ContextWithTx(models.ContextWithUserID(ctx, buyerID), tx)
		repo := repositories.NewTicketRepositoryTx(tx)

		tt, err := repo.FindTicketTypeByIDForUpdate(txCtx, req.TicketTypeID)
		if err != nil {
			return ErrTicketTypeNotFound
		}
		if !tt.IsActive || now.Before(tt.SaleStart) || now.After(tt.SaleEnd) {
			return ErrTicketTypeNotOnSale
		}
		if req.Quantity > tt.MaxPerOrder {
			return ErrTicketMaxPerOrder
		}
		if req.Quantity > tt.QuantityRemaining() {
			return ErrTicketInsufficientStock
		}

		deduction := decimal.Zero
		var discount *models.DiscountCode
		if req.DiscountCode != "" {
			discount, err = repo.FindDiscountByCodeForUpdate(txCtx, req.DiscountCode)
			if err != nil {
				return ErrDiscountNotFound
			}
			if !discount.IsValid(now) {
				return ErrDiscountNotValid
			}
			// Scope preloads are not carried by the locked read.
			scoped, err := repo.FindDiscountByID(txCtx, discount.ID)
			if err != nil {
				return ErrDiscountNotFound
			}
			scoped.TimesUsed = discount.TimesUsed
			if deduction, err = evaluateDiscount(scoped, tt); err != nil {
				return err
			}
			discount = scoped
		}

		finalPrice := tt.Price.Sub(deduction)
		for i := uint(0); i < req.Quantity; i++ {
			ticket := models.Ticket{
				TicketTypeID:    tt.ID,
				BuyerID:         buyerID,
				PurchaseDate:    now,
				PaymentMethod:   req.PaymentMethod,
				OriginalPrice:   tt.Price,
				DiscountApplied: deduction,
				FinalPrice:      finalPrice,
				Status:          models.TicketStatusPaid,
				IsActive:        true,
			}
			if err := repo.CreateTicket(txCtx, &ticket); err != nil {
				configslog.Log.Error("TicketService.PurchaseTickets: ticket create failed",
					zap.Uint("ticketTypeID", tt.ID), zap.Error(err))
				return ErrTicketPurchaseFailed
			}
			created = append(created, ticket)
		}

		tt.QuantitySold += req.Quantity
		if err := repo.UpdateTicketType(txCtx, tt); err != nil {
			return ErrTicketPurchaseFailed
		}

		// One redemption per order regardless of quantity.
		if discount != nil {
			discount.TimesUsed++
			if err := repo.UpdateDiscountCode(txCtx, discount); err != nil {
				return ErrTicketPurchaseFailed
			}
		}
		return nil
	})
	if txErr != nil {
		return nil, txErr
	}

	configslog.SLog.Infof("Purchase completed: %d ticket(s) of type %d by user %d",
		req.Quantity, req.TicketTypeID, buyerID)
	s.sendConfirmationEmail(buyer, created)
	return created, nil
}

// sendConfirmationEmail notifies the buyer. A delivery failure never fails the
// purchase; it is logged and swallowed.
func (s *TicketService) sendConfirmationEmail(buyer *models.User, tickets []models.Ticket) {
	if len(tickets) == 0 || buyer.Email == "" {
		return
	}
	var b strings.Builder
	fmt.Fprintf(&b, "Hi %s,\n\nYour purchase of %d ticket(s) is confirmed.\n\n", buyer.Name, len(tickets))
	for _, t := range tickets {
		fmt.Fprintf(&b, "  Ticket %s — %s\n", t.TicketCode, t.FinalPrice.StringFixed(2))
	}
	b.WriteString("\nSee you there!\n")

	if err := s.mail.Send(buyer.Email, "Your ticket confirmation", b.String()); err != nil {
		configslog.Log.Warn("TicketService: confirmation email failed",
			zap.String("to", buyer.Email), zap.Error(err))
	}
}

// CancelTicket cancels a paid or confirmed ticket and returns its seat to the
// inventory. Buyers can cancel their own tickets; staff can cancel any.
func (s *TicketService) CancelTicket(ctx context.Context, ticketID uint, actingUserID uint, reason string) (*models.Ticket, error) {
	user, err := s.userService.GetUserByID(ctx, actingUserID)
	if err != nil {
		return nil, ErrUserNotFound
	}

	var cancelled *models.Ticket
	txErr := s.db.Transaction(func(tx *gorm.DB) error {
		txCtx := repositories.ContextWithTx(models.ContextWithUserID(ctx, actingUserID), tx)
		repo := repositories.NewTicketRepositoryTx(tx)

		ticket, err := repo.FindTicketByIDForUpdate(txCtx, ticketID)
		if err != nil {
			return ErrTicketNotFound
		}
		if ticket.BuyerID != actingUserID && !user.IsStaff {
			return ErrTicketForbidden
		}
		switch ticket.Status {
		case models.TicketStatusCancelled, models.TicketStatusRefunded:
			return ErrTicketAlreadyCancelled
		case models.TicketStatusUsed:
			return ErrTicketAlreadyUsed
		}

		tt, err := repo.FindTicketTypeByIDForUpdate(txCtx, ticket.TicketTypeID)
		if err != nil {
			return ErrTicketTypeNotFound
		}

		now := s.clock.Now().UTC()
		ticket.Status = models.TicketStatusCancelled
		ticket.CancelledAt = &now
		ticket.CancellationReason = reason
		ticket.IsActive = false
		if err := repo.UpdateTicket(txCtx, ticket); err != nil {
			return ErrTicketPurchaseFailed
		}

		if tt.QuantitySold > 0 {
			tt.QuantitySold--
		}
		if err := repo.UpdateTicketType(txCtx, tt); err != nil {
			return ErrTicketPurchaseFailed
		}
		cancelled = ticket
		return nil
	})
	if txErr != nil {
		return nil, txErr
	}
	configslog.SLog.Infof("Ticket cancelled: %d by user %d", ticketID, actingUserID)
	return cancelled, nil
}

// ValidateTicket resolves a ticket by code and reports whether it grants
// entry, without mutating it. A ticket for an ended event is not usable even
// when its own status still is.
func (s *TicketService) ValidateTicket(ctx context.Context, ticketCode string) (*models.Ticket, error) {
	ticket, err := s.repo.FindTicketByCode(ctx, ticketCode)
	if err != nil {
		return nil, ErrTicketNotFound
	}
	switch ticket.Status {
	case models.TicketStatusPaid, models.TicketStatusConfirmed:
		if ticket.TicketType.Event.HasEnded(s.clock.Now().UTC()) {
			return ticket, ErrTicketEventEnded
		}
		return ticket, nil
	case models.TicketStatusUsed:
		return ticket, ErrTicketAlreadyUsed
	default:
		return ticket, ErrTicketNotUsable
	}
}

// AssignTicket links a ticket to an event registration so the attendee can be
// checked in by ticket code. Buyer-or-staff only; the registration must be
// for the ticket's event and not cancelled.
func (s *TicketService) AssignTicket(ctx context.Context, ticketID uint, attendeeID uint, actingUserID uint) (*models.Ticket, error) {
	user, err := s.userService.GetUserByID(ctx, actingUserID)
	if err != nil {
		return nil, ErrUserNotFound
	}
	ticket, err := s.repo.FindTicketByID(ctx, ticketID)
	if err != nil {
		return nil, ErrTicketNotFound
	}
	if ticket.BuyerID != actingUserID && !user.IsStaff {
		return nil, ErrTicketForbidden
	}
	switch ticket.Status {
	case models.TicketStatusPaid, models.TicketStatusConfirmed:
	default:
		return nil, ErrTicketNotUsable
	}
	if ticket.AttendeeID != nil && *ticket.AttendeeID != attendeeID {
		return nil, fmt.Errorf("%w: ticket is already assigned", ErrTicketInvalidInput)
	}

	attendee, err := s.attendeeRepo.FindByID(ctx, attendeeID)
	if err != nil {
		return nil, ErrAttendeeNotFound
	}
	if attendee.EventID != ticket.TicketType.EventID {
		return nil, fmt.Errorf("%w: registration belongs to a different event", ErrTicketInvalidInput)
	}
	if attendee.Status == models.AttendeeStatusCancelled {
		return nil, fmt.Errorf("%w: registration is cancelled", ErrTicketInvalidInput)
	}

	ticket.AttendeeID = &attendee.ID
	updateCtx := models.ContextWithUserID(ctx, actingUserID)
	if err := s.repo.UpdateTicket(updateCtx, ticket); err != nil {
		configslog.Log.Error("TicketService.AssignTicket: DB error", zap.Uint("ticketID", ticketID), zap.Error(err))
		return nil, ErrTicketPurchaseFailed
	}
	return ticket, nil
}

// DiscountUsage reports the redemption counters of a code for its manager.
func (s *TicketService) DiscountUsage(ctx context.Context, code string, actingUserID uint) (*models.DiscountCode, error) {
	user, err := s.userService.GetUserByID(ctx, actingUserID)
	if err != nil {
		return nil, ErrUserNotFound
	}
	discount, err := s.repo.FindDiscountByCode(ctx, code)
	if err != nil {
		return nil, ErrDiscountNotFound
	}
	if discount.EventID != nil {
		event, err := s.eventRepo.FindByID(ctx, *discount.EventID)
		if err != nil {
			return nil, ErrEventNotFound
		}
		if !user.CanOperateEvent(event.OrganizerID) {
			return nil, ErrEventForbidden
		}
	} else if !user.IsStaff {
		return nil, ErrEventForbidden
	}
	return discount, nil
}

// MarkTicketUsed stamps the ticket as consumed at the door.
func (s *TicketService) MarkTicketUsed(ctx context.Context, ticketID uint, actingUserID uint) (*models.Ticket, error) {
	user, err := s.userService.GetUserByID(ctx, actingUserID)
	if err != nil {
		return nil, ErrUserNotFound
	}

	var used *models.Ticket
	txErr := s.db.Transaction(func(tx *gorm.DB) error {
		txCtx := repositories.ContextWithTx(models.ContextWithUserID(ctx, actingUserID), tx)
		repo := repositories.NewTicketRepositoryTx(tx)

		ticket, err := repo.FindTicketByIDForUpdate(txCtx, ticketID)
		if err != nil {
			return ErrTicketNotFound
		}
		tt, err := repo.FindTicketTypeByID(txCtx, ticket.TicketTypeID)
		if err != nil {
			return ErrTicketTypeNotFound
		}
		if !user.CanOperateEvent(tt.Event.OrganizerID) {
			return ErrTicketForbidden
		}
		switch ticket.Status {
		case models.TicketStatusUsed:
			return ErrTicketAlreadyUsed
		case models.TicketStatusPaid, models.TicketStatusConfirmed:
		default:
			return ErrTicketNotUsable
		}

		now := s.clock.Now().UTC()
		ticket.Status = models.TicketStatusUsed
		ticket.UsedAt = &now
		if err := repo.UpdateTicket(txCtx, ticket); err != nil {
			return ErrTicketPurchaseFailed
		}
		used = ticket
		return nil
	})
	if txErr != nil {
		return nil, txErr
	}
	return used, nil
}

func (s *TicketService) GetTicketsForBuyer(ctx context.Context, buyerID uint, params queryparams.ListParams) (*queryparams.PaginatedResult, error) {
	if buyerID == 0 {
		return nil, ErrTicketInvalidInput
	}
	params.Validate()
	tickets, totalCount, err := s.repo.FindTicketsByBuyerPaginated(ctx, buyerID, params)
	if err != nil {
		return nil, err
	}
	return queryparams.NewPaginatedResult(tickets, totalCount, params), nil
}

// SalesStats aggregates per-type sales for the event's manager. Revenue sums
// count issued tickets (paid, confirmed, used); cancellations are listed but
// excluded from revenue.
func (s *TicketService) SalesStats(ctx context.Context, eventID uint, actingUserID uint) ([]TicketTypeSalesStats, error) {
	event, err := s.eventRepo.FindByID(ctx, eventID)
	if err != nil {
		return nil, ErrEventNotFound
	}
	user, err := s.userService.GetUserByID(ctx, actingUserID)
	if err != nil || !user.CanOperateEvent(event.OrganizerID) {
		return nil, ErrEventForbidden
	}

	types, err := s.repo.ListTicketTypesByEvent(ctx, eventID)
	if err != nil {
		return nil, err
	}

	stats := make([]TicketTypeSalesStats, 0, len(types))
	for _, tt := range types {
		tickets, err := s.repo.ListTicketsByTypeAndStatuses(ctx, tt.ID, nil)
		if err != nil {
			return nil, err
		}
		st := TicketTypeSalesStats{
			TicketTypeID:      tt.ID,
			Name:              tt.Name,
			QuantityAvailable: tt.QuantityAvailable,
			QuantitySold:      tt.QuantitySold,
			QuantityRemaining: tt.QuantityRemaining(),
			GrossRevenue:      decimal.Zero,
			TotalDiscounts:    decimal.Zero,
		}
		for _, t := range tickets {
			switch t.Status {
			case models.TicketStatusPaid, models.TicketStatusConfirmed, models.TicketStatusUsed:
				st.TicketsIssued++
				st.GrossRevenue = st.GrossRevenue.Add(t.FinalPrice)
				st.TotalDiscounts = st.TotalDiscounts.Add(t.DiscountApplied)
				if t.Status == models.TicketStatusUsed {
					st.TicketsUsed++
				}
			case models.TicketStatusCancelled, models.TicketStatusRefunded:
				st.TicketsCancelled++
			}
		}
		stats = append(stats, st)
	}
	return stats, nil
}

func (s *TicketService) CreateDiscountCode(ctx context.Context, actingUserID uint, code models.DiscountCode) (*models.DiscountCode, error) {
	user, err := s.userService.GetUserByID(ctx, actingUserID)
	if err != nil {
		return nil, ErrUserNotFound
	}
	if code.EventID != nil {
		event, err := s.eventRepo.FindByID(ctx, *code.EventID)
		if err != nil {
			return nil, ErrEventNotFound
		}
		if !user.CanOperateEvent(event.OrganizerID) {
			return nil, ErrEventForbidden
		}
	} else if !user.IsStaff {
		return nil, ErrEventForbidden
	}

	code.Code = strings.ToUpper(strings.TrimSpace(code.Code))
	if code.Code == "" || code.DiscountValue.IsNegative() || code.DiscountValue.IsZero() {
		return nil, fmt.Errorf("%w: code and a positive value are required", ErrTicketInvalidInput)
	}
	if code.DiscountType == models.DiscountTypePercentage && code.DiscountValue.GreaterThan(decimal.NewFromInt(100)) {
		return nil, fmt.Errorf("%w: percentage cannot exceed 100", ErrTicketInvalidInput)
	}
	if code.ValidFrom.IsZero() || code.ValidUntil.IsZero() || !code.ValidFrom.Before(code.ValidUntil) {
		return nil, fmt.Errorf("%w: validity window is inconsistent", ErrTicketInvalidInput)
	}
	code.TimesUsed = 0
	code.IsActive = true

	createCtx := models.ContextWithUserID(ctx, actingUserID)
	if err := s.repo.CreateDiscountCode(createCtx, &code); err != nil {
		configslog.Log.Error("TicketService.CreateDiscountCode: DB error", zap.String("code", code.Code), zap.Error(err))
		return nil, ErrTicketPurchaseFailed
	}
	return &code, nil
}

var _ ITicketService = (*TicketService)(nil)
