package repositories

import (
	"context"
	"errors"
	"strings"
	"time"

	"festgo.app/configs"
	"festgo.app/configs/configslog"
	"festgo.app/models"
	"festgo.app/pkg/queryparams"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// ITicketRepository is the persistence surface for ticket types, tickets and
// discount codes. The ForUpdate variants take a row lock and only make sense
// inside a transaction.
type ITicketRepository interface {
	CreateTicketType(ctx context.Context, tt *models.TicketType) error
	FindTicketTypeByID(ctx context.Context, id uint) (*models.TicketType, error)
	FindTicketTypeByIDForUpdate(ctx context.Context, id uint) (*models.TicketType, error)
	UpdateTicketType(ctx context.Context, tt *models.TicketType) error
	ListTicketTypesByEvent(ctx context.Context, eventID uint) ([]models.TicketType, error)
	ListTicketTypesOnSale(ctx context.Context, eventID uint, now time.Time) ([]models.TicketType, error)

	CreateTicket(ctx context.Context, ticket *models.Ticket) error
	FindTicketByID(ctx context.Context, id uint) (*models.Ticket, error)
	FindTicketByIDForUpdate(ctx context.Context, id uint) (*models.Ticket, error)
	FindTicketByCode(ctx context.Context, code string) (*models.Ticket, error)
	FindTicketByAttendeeID(ctx context.Context, attendeeID uint) (*models.Ticket, error)
	FindTicketsByBuyerPaginated(ctx context.Context, buyerID uint, params queryparams.ListParams) ([]models.Ticket, int64, error)
	ListTicketsByTypeAndStatuses(ctx context.Context, ticketTypeID uint, statuses []models.TicketStatus) ([]models.Ticket, error)
	UpdateTicket(ctx context.Context, ticket *models.Ticket) error

	CreateDiscountCode(ctx context.Context, code *models.DiscountCode) error
	FindDiscountByCode(ctx context.Context, code string) (*models.DiscountCode, error)
	FindDiscountByCodeForUpdate(ctx context.Context, code string) (*models.DiscountCode, error)
	FindDiscountByID(ctx context.Context, id uint) (*models.DiscountCode, error)
	UpdateDiscountCode(ctx context.Context, code *models.DiscountCode) error
}

// TicketRepository implements ITicketRepository.
type TicketRepository struct {
	db   *gorm.DB
	base *BaseRepository[models.Ticket]
}

// NewTicketRepository builds a TicketRepository on the shared connection.
func NewTicketRepository() ITicketRepository {
	db := configs.GetDB()
	base := NewBaseRepository[models.Ticket](db)
	base.SetAllowedSortColumns([]string{"id", "purchase_date", "final_price", "status"})
	return &TicketRepository{db: db, base: base}
}

// NewTicketRepositoryTx binds the repository to a transaction.
func NewTicketRepositoryTx(tx *gorm.DB) ITicketRepository {
	base := NewBaseRepository[models.Ticket](tx)
	base.SetAllowedSortColumns([]string{"id", "purchase_date", "final_price", "status"})
	return &TicketRepository{db: tx, base: base}
}

func (r *TicketRepository) getDB(ctx context.Context) *gorm.DB {
	return getTxDB(ctx, r.db)
}

// --- Ticket types ---

func (r *TicketRepository) CreateTicketType(ctx context.Context, tt *models.TicketType) error {
	if tt == nil || tt.EventID == 0 {
		return errors.New("a ticket type needs an event")
	}
	return r.getDB(ctx).Create(tt).Error
}

func (r *TicketRepository) FindTicketTypeByID(ctx context.Context, id uint) (*models.TicketType, error) {
	if id == 0 {
		return nil, errors.New("invalid ticket type ID")
	}
	var tt models.TicketType
	err := r.getDB(ctx).Preload("Event").First(&tt, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		configslog.Log.Error("TicketRepository.FindTicketTypeByID: DB error", zap.Uint("id", id), zap.Error(err))
		return nil, err
	}
	return &tt, nil
}

// FindTicketTypeByIDForUpdate locks the inventory row for the duration of the
// surrounding transaction. This is the serialization point that keeps
// concurrent purchases from overselling.
func (r *TicketRepository) FindTicketTypeByIDForUpdate(ctx context.Context, id uint) (*models.TicketType, error) {
	if id == 0 {
		return nil, errors.New("invalid ticket type ID")
	}
	var tt models.TicketType
	err := lockForUpdate(r.getDB(ctx)).First(&tt, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		configslog.Log.Error("TicketRepository.FindTicketTypeByIDForUpdate: DB error", zap.Uint("id", id), zap.Error(err))
		return nil, err
	}
	return &tt, nil
}

func (r *TicketRepository) UpdateTicketType(ctx context.Context, tt *models.TicketType) error {
	if tt == nil || tt.ID == 0 {
		return errors.New("ticket type to update is not valid")
	}
	return r.getDB(ctx).Save(tt).Error
}

func (r *TicketRepository) ListTicketTypesByEvent(ctx context.Context, eventID uint) ([]models.TicketType, error) {
	if eventID == 0 {
		return nil, errors.New("invalid event ID")
	}
	var types []models.TicketType
	err := r.getDB(ctx).
		Where("event_id = ? AND is_active = ?", eventID, true).
		Order("display_order asc, price asc").
		Find(&types).Error
	return types, err
}

// ListTicketTypesOnSale returns the active, in-window, not sold out types.
func (r *TicketRepository) ListTicketTypesOnSale(ctx context.Context, eventID uint, now time.Time) ([]models.TicketType, error) {
	var types []models.TicketType
	query := r.getDB(ctx).
		Where("is_active = ? AND sale_start <= ? AND sale_end >= ?", true, now, now).
		Where("quantity_sold < quantity_available")
	if eventID != 0 {
		query = query.Where("event_id = ?", eventID)
	}
	err := query.Order("display_order asc, price asc").Find(&types).Error
	return types, err
}

// --- Tickets ---

func (r *TicketRepository) CreateTicket(ctx context.Context, ticket *models.Ticket) error {
	if ticket == nil || ticket.TicketTypeID == 0 || ticket.BuyerID == 0 {
		return errors.New("a ticket needs a type and a buyer")
	}
	return r.getDB(ctx).Create(ticket).Error
}

func (r *TicketRepository) FindTicketByID(ctx context.Context, id uint) (*models.Ticket, error) {
	if id == 0 {
		return nil, errors.New("invalid ticket ID")
	}
	var ticket models.Ticket
	err := r.getDB(ctx).Preload("TicketType.Event").Preload("Buyer").Preload("Attendee").First(&ticket, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		configslog.Log.Error("TicketRepository.FindTicketByID: DB error", zap.Uint("id", id), zap.Error(err))
		return nil, err
	}
	return &ticket, nil
}

func (r *TicketRepository) FindTicketByIDForUpdate(ctx context.Context, id uint) (*models.Ticket, error) {
	if id == 0 {
		return nil, errors.New("invalid ticket ID")
	}
	var ticket models.Ticket
	err := lockForUpdate(r.getDB(ctx)).First(&ticket, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &ticket, nil
}

func (r *TicketRepository) FindTicketByCode(ctx context.Context, code string) (*models.Ticket, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return nil, ErrNotFound
	}
	var ticket models.Ticket
	err := r.getDB(ctx).Preload("TicketType.Event").Preload("Attendee").Where("ticket_code = ?", code).First(&ticket).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		configslog.Log.Error("TicketRepository.FindTicketByCode: DB error", zap.String("code", code), zap.Error(err))
		return nil, err
	}
	return &ticket, nil
}

func (r *TicketRepository) FindTicketByAttendeeID(ctx context.Context, attendeeID uint) (*models.Ticket, error) {
	if attendeeID == 0 {
		return nil, ErrNotFound
	}
	var ticket models.Ticket
	err := r.getDB(ctx).Where("attendee_id = ?", attendeeID).First(&ticket).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &ticket, nil
}

func (r *TicketRepository) FindTicketsByBuyerPaginated(ctx context.Context, buyerID uint, params queryparams.ListParams) ([]models.Ticket, int64, error) {
	if buyerID == 0 {
		return nil, 0, errors.New("invalid buyer ID")
	}
	var tickets []models.Ticket
	var totalCount int64

	query := r.getDB(ctx).Model(&models.Ticket{}).Where("tickets.buyer_id = ?", buyerID)
	if params.Status != "" {
		query = query.Where("tickets.status = ?", params.Status)
	}
	if params.EventID != 0 {
		query = query.
			Joins("JOIN ticket_types ON ticket_types.id = tickets.ticket_type_id").
			Where("ticket_types.event_id = ?", params.EventID)
	}

	orderColumn := "tickets.purchase_date"
	if r.base.AllowedSortColumn(params.SortBy) {
		orderColumn = "tickets." + params.SortBy
	}
	query = query.Order(orderColumn + " " + params.OrderBy)

	if err := query.Count(&totalCount).Error; err != nil {
		configslog.Log.Error("TicketRepository.Count (by buyer): DB error", zap.Uint("buyerID", buyerID), zap.Error(err))
		return nil, 0, err
	}
	if totalCount == 0 {
		return tickets, 0, nil
	}

	err := query.Select("tickets.*").Preload("TicketType.Event").
		Limit(params.PerPage).Offset(params.CalculateOffset()).
		Find(&tickets).Error
	if err != nil {
		configslog.Log.Error("TicketRepository.Find (by buyer): DB error", zap.Uint("buyerID", buyerID), zap.Error(err))
		return nil, totalCount, err
	}
	return tickets, totalCount, nil
}

// ListTicketsByTypeAndStatuses backs the sales statistics; revenue sums are
// computed in the service so decimal math stays out of SQL.
func (r *TicketRepository) ListTicketsByTypeAndStatuses(ctx context.Context, ticketTypeID uint, statuses []models.TicketStatus) ([]models.Ticket, error) {
	if ticketTypeID == 0 {
		return nil, errors.New("invalid ticket type ID")
	}
	var tickets []models.Ticket
	query := r.getDB(ctx).Where("ticket_type_id = ?", ticketTypeID)
	if len(statuses) > 0 {
		query = query.Where("status IN ?", statuses)
	}
	err := query.Find(&tickets).Error
	return tickets, err
}

func (r *TicketRepository) UpdateTicket(ctx context.Context, ticket *models.Ticket) error {
	if ticket == nil || ticket.ID == 0 {
		return errors.New("ticket to update is not valid")
	}
	return r.getDB(ctx).Save(ticket).Error
}

// --- Discount codes ---

func (r *TicketRepository) CreateDiscountCode(ctx context.Context, code *models.DiscountCode) error {
	if code == nil || code.Code == "" {
		return errors.New("a discount code needs a code string")
	}
	return r.getDB(ctx).Create(code).Error
}

func (r *TicketRepository) FindDiscountByCode(ctx context.Context, code string) (*models.DiscountCode, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" {
		return nil, ErrNotFound
	}
	var discount models.DiscountCode
	err := r.getDB(ctx).Preload("ApplicableTicketTypes").Where("code = ?", code).First(&discount).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		configslog.Log.Error("TicketRepository.FindDiscountByCode: DB error", zap.String("code", code), zap.Error(err))
		return nil, err
	}
	return &discount, nil
}

// FindDiscountByCodeForUpdate locks the code row so times_used increments
// serialize across concurrent orders.
func (r *TicketRepository) FindDiscountByCodeForUpdate(ctx context.Context, code string) (*models.DiscountCode, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" {
		return nil, ErrNotFound
	}
	var discount models.DiscountCode
	err := lockForUpdate(r.getDB(ctx)).Where("code = ?", code).First(&discount).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &discount, nil
}

func (r *TicketRepository) FindDiscountByID(ctx context.Context, id uint) (*models.DiscountCode, error) {
	if id == 0 {
		return nil, errors.New("invalid discount code ID")
	}
	var discount models.DiscountCode
	err := r.getDB(ctx).Preload("ApplicableTicketTypes").First(&discount, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &discount, nil
}

func (r *TicketRepository) UpdateDiscountCode(ctx context.Context, code *models.DiscountCode) error {
	if code == nil || code.ID == 0 {
		return errors.New("discount code to update is not valid")
	}
	// Save would also write the many2many scope; Updates touches only the
	// mutable columns.
	return r.getDB(ctx).Model(code).
		Updates(map[string]interface{}{"times_used": code.TimesUsed, "is_active": code.IsActive}).Error
}

var _ ITicketRepository = (*TicketRepository)(nil)
