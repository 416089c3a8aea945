package services

import (
	"context"
	"fmt"
	"strings"

	"festgo.app/configs"
	"festgo.app/configs/configslog"
	"festgo.app/models"
	"festgo.app/pkg/queryparams"
	"festgo.app/repositories"

	"github.com/jonboulle/clockwork"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// SponsorServiceError is the typed error set of the sponsorship service.
type SponsorServiceError string

func (e SponsorServiceError) Error() string { return string(e) }

const (
	ErrSponsorNotFound            SponsorServiceError = "sponsor not found"
	ErrSponsorTierNotFound        SponsorServiceError = "sponsor tier not found"
	ErrSponsorshipNotFound        SponsorServiceError = "sponsorship not found"
	ErrSponsorBenefitNotFound     SponsorServiceError = "sponsor benefit not found"
	ErrSponsorshipDuplicate       SponsorServiceError = "sponsor already has a sponsorship for this event"
	ErrSponsorshipBelowTierMin    SponsorServiceError = "contribution is below the tier minimum"
	ErrSponsorshipAboveTierMax    SponsorServiceError = "contribution is above the tier maximum"
	ErrSponsorPaymentTooLarge     SponsorServiceError = "payment exceeds the remaining balance"
	ErrSponsorPaymentNotPositive  SponsorServiceError = "payment amount must be positive"
	ErrSponsorBenefitDelivered    SponsorServiceError = "benefit is already delivered"
	ErrSponsorshipNotPaid         SponsorServiceError = "sponsorship is not fully paid"
	ErrSponsorForbidden           SponsorServiceError = "you are not allowed to manage sponsorships"
	ErrSponsorInvalidInput        SponsorServiceError = "invalid sponsorship data"
	ErrSponsorshipOperationFailed SponsorServiceError = "sponsorship operation could not be completed"
)

// TierBreakdown is the slice of the ledger under one tier.
type TierBreakdown struct {
	TierName          string          `json:"tier_name"`
	SponsorshipCount  int             `json:"sponsorship_count"`
	TotalContribution decimal.Decimal `json:"total_contribution"`
}

// SponsorshipStatistics summarizes one event's sponsorship ledger.
type SponsorshipStatistics struct {
	EventID           uint            `json:"event_id"`
	SponsorshipCount  int             `json:"sponsorship_count"`
	TotalContribution decimal.Decimal `json:"total_contribution"`
	TotalPaid         decimal.Decimal `json:"total_paid"`
	TotalOutstanding  decimal.Decimal `json:"total_outstanding"`
	FullyPaidCount    int             `json:"fully_paid_count"`
	BenefitsTotal     int             `json:"benefits_total"`
	BenefitsDelivered int             `json:"benefits_delivered"`
	ByTier            []TierBreakdown `json:"by_tier"`
}

// ISponsorService is the sponsorship ledger surface.
type ISponsorService interface {
	CreateTier(ctx context.Context, actingUserID uint, tier models.SponsorTier) (*models.SponsorTier, error)
	ListTiers(ctx context.Context) ([]models.SponsorTier, error)
	CreateSponsor(ctx context.Context, actingUserID uint, sponsor models.Sponsor) (*models.Sponsor, error)
	GetSponsorByID(ctx context.Context, id uint) (*models.Sponsor, error)
	GetSponsorsPaginated(ctx context.Context, params queryparams.ListParams) (*queryparams.PaginatedResult, error)

	CreateSponsorship(ctx context.Context, actingUserID uint, sponsorship models.Sponsorship) (*models.Sponsorship, error)
	GetSponsorshipByID(ctx context.Context, id uint) (*models.Sponsorship, error)
	ListSponsorshipsByEvent(ctx context.Context, eventID uint, publicOnly bool) ([]models.Sponsorship, error)
	RegisterPayment(ctx context.Context, sponsorshipID uint, actingUserID uint, amount decimal.Decimal) (*models.Sponsorship, error)
	MarkCompleted(ctx context.Context, sponsorshipID uint, actingUserID uint) (*models.Sponsorship, error)
	MarkBenefitDelivered(ctx context.Context, benefitID uint, actingUserID uint, notes string) (*models.SponsorBenefit, error)
	Statistics(ctx context.Context, eventID uint, actingUserID uint) (*SponsorshipStatistics, error)
	ListPendingPayments(ctx context.Context, eventID uint, actingUserID uint) ([]models.Sponsorship, error)
}

// SponsorService implements ISponsorService.
type SponsorService struct {
	repo        repositories.ISponsorRepository
	eventRepo   repositories.IEventRepository
	userService IUserService
	db          *gorm.DB
	clock       clockwork.Clock
}

// NewSponsorService builds the service on the shared connection.
func NewSponsorService() ISponsorService {
	return &SponsorService{
		repo:        repositories.NewSponsorRepository(),
		eventRepo:   repositories.NewEventRepository(),
		userService: NewUserService(),
		db:          configs.GetDB(),
		clock:       clockwork.NewRealClock(),
	}
}

// NewSponsorServiceWith builds the service with injected dependencies.
func NewSponsorServiceWith(db *gorm.DB, clock clockwork.Clock) ISponsorService {
	return &SponsorService{
		repo:        repositories.NewSponsorRepositoryTx(db),
		eventRepo:   repositories.NewEventRepositoryTx(db),
		userService: NewUserServiceWith(repositories.NewUserRepositoryTx(db)),
		db:          db,
		clock:       clock,
	}
}

func (s *SponsorService) requireStaff(ctx context.Context, actingUserID uint) error {
	user, err := s.userService.GetUserByID(ctx, actingUserID)
	if err != nil || !user.IsStaff {
		return ErrSponsorForbidden
	}
	return nil
}

func (s *SponsorService) authorizeEventManager(ctx context.Context, eventID uint, actingUserID uint) error {
	event, err := s.eventRepo.FindByID(ctx, eventID)
	if err != nil {
		return ErrEventNotFound
	}
	user, err := s.userService.GetUserByID(ctx, actingUserID)
	if err != nil || !user.CanOperateEvent(event.OrganizerID) {
		return ErrSponsorForbidden
	}
	return nil
}

func (s *SponsorService) CreateTier(ctx context.Context, actingUserID uint, tier models.SponsorTier) (*models.SponsorTier, error) {
	if err := s.requireStaff(ctx, actingUserID); err != nil {
		return nil, err
	}
	tier.Name = strings.TrimSpace(tier.Name)
	if tier.Name == "" || tier.Benefits == "" {
		return nil, fmt.Errorf("%w: name and benefits are required", ErrSponsorInvalidInput)
	}
	if tier.MinContribution.IsNegative() {
		return nil, fmt.Errorf("%w: minimum contribution cannot be negative", ErrSponsorInvalidInput)
	}
	if tier.MaxContribution != nil && tier.MaxContribution.LessThan(tier.MinContribution) {
		return nil, fmt.Errorf("%w: tier contribution range is inverted", ErrSponsorInvalidInput)
	}
	tier.IsActive = true

	createCtx := models.ContextWithUserID(ctx, actingUserID)
	if err := s.repo.CreateTier(createCtx, &tier); err != nil {
		configslog.Log.Error("SponsorService.CreateTier: DB error", zap.String("name", tier.Name), zap.Error(err))
		return nil, ErrSponsorshipOperationFailed
	}
	return &tier, nil
}

func (s *SponsorService) ListTiers(ctx context.Context) ([]models.SponsorTier, error) {
	return s.repo.ListTiers(ctx)
}

func (s *SponsorService) CreateSponsor(ctx context.Context, actingUserID uint, sponsor models.Sponsor) (*models.Sponsor, error) {
	if err := s.requireStaff(ctx, actingUserID); err != nil {
		return nil, err
	}
	sponsor.Name = strings.TrimSpace(sponsor.Name)
	sponsor.ContactEmail = strings.ToLower(strings.TrimSpace(sponsor.ContactEmail))
	if sponsor.Name == "" || sponsor.ContactPerson == "" || sponsor.ContactEmail == "" {
		return nil, fmt.Errorf("%w: name, contact person and contact email are required", ErrSponsorInvalidInput)
	}
	if sponsor.TierID != nil {
		if _, err := s.repo.FindTierByID(ctx, *sponsor.TierID); err != nil {
			return nil, ErrSponsorTierNotFound
		}
	}
	if sponsor.Status == "" {
		sponsor.Status = models.SponsorStatusProspective
	}
	sponsor.IsActive = true
	sponsor.Slug = ""

	createCtx := models.ContextWithUserID(ctx, actingUserID)
	if err := s.repo.CreateSponsor(createCtx, &sponsor); err != nil {
		configslog.Log.Error("SponsorService.CreateSponsor: DB error", zap.String("name", sponsor.Name), zap.Error(err))
		return nil, ErrSponsorshipOperationFailed
	}
	return &sponsor, nil
}

func (s *SponsorService) GetSponsorByID(ctx context.Context, id uint) (*models.Sponsor, error) {
	sponsor, err := s.repo.FindSponsorByID(ctx, id)
	if err != nil {
		return nil, ErrSponsorNotFound
	}
	return sponsor, nil
}

func (s *SponsorService) GetSponsorsPaginated(ctx context.Context, params queryparams.ListParams) (*queryparams.PaginatedResult, error) {
	params.Validate()
	sponsors, totalCount, err := s.repo.FindSponsorsPaginated(ctx, params)
	if err != nil {
		return nil, err
	}
	return queryparams.NewPaginatedResult(sponsors, totalCount, params), nil
}

// expandBenefitTemplate splits the tier's newline template into benefit names,
// dropping blank lines.
func expandBenefitTemplate(template string) []string {
	var names []string
	for _, line := range strings.Split(template, "\n") {
		if name := strings.TrimSpace(line); name != "" {
			names = append(names, name)
		}
	}
	return names
}

// CreateSponsorship validates the contribution against the tier bounds, then
// atomically creates the ledger row and one benefit row per line of the
// tier's benefit template.
func (s *SponsorService) CreateSponsorship(ctx context.Context, actingUserID uint, sponsorship models.Sponsorship) (*models.Sponsorship, error) {
	if sponsorship.SponsorID == 0 || sponsorship.EventID == 0 || sponsorship.TierID == 0 {
		return nil, fmt.Errorf("%w: sponsor, event and tier are required", ErrSponsorInvalidInput)
	}
	if err := s.authorizeEventManager(ctx, sponsorship.EventID, actingUserID); err != nil {
		return nil, err
	}
	if _, err := s.repo.FindSponsorByID(ctx, sponsorship.SponsorID); err != nil {
		return nil, ErrSponsorNotFound
	}
	tier, err := s.repo.FindTierByID(ctx, sponsorship.TierID)
	if err != nil {
		return nil, ErrSponsorTierNotFound
	}
	if sponsorship.ContributionAmount.LessThan(tier.MinContribution) {
		return nil, ErrSponsorshipBelowTierMin
	}
	if tier.MaxContribution != nil && sponsorship.ContributionAmount.GreaterThan(*tier.MaxContribution) {
		return nil, ErrSponsorshipAboveTierMax
	}
	if _, err := s.repo.FindSponsorshipBySponsorAndEvent(ctx, sponsorship.SponsorID, sponsorship.EventID); err == nil {
		return nil, ErrSponsorshipDuplicate
	}

	sponsorship.AmountPaid = decimal.Zero
	sponsorship.PaymentStatus = models.PaymentStatusPending
	sponsorship.IsActive = true

	txErr := s.db.Transaction(func(tx *gorm.DB) error {
		txCtx := repositories.ContextWithTx(models.ContextWithUserID(ctx, actingUserID), tx)
		repo := repositories.NewSponsorRepositoryTx(tx)

		if err := repo.CreateSponsorship(txCtx, &sponsorship); err != nil {
			configslog.Log.Error("SponsorService.CreateSponsorship: DB error",
				zap.Uint("sponsorID", sponsorship.SponsorID), zap.Uint("eventID", sponsorship.EventID), zap.Error(err))
			return ErrSponsorshipOperationFailed
		}
		for _, name := range expandBenefitTemplate(tier.Benefits) {
			benefit := models.SponsorBenefit{
				SponsorshipID: sponsorship.ID,
				BenefitName:   name,
			}
			if err := repo.CreateBenefit(txCtx, &benefit); err != nil {
				return ErrSponsorshipOperationFailed
			}
			sponsorship.Benefits = append(sponsorship.Benefits, benefit)
		}
		return nil
	})
	if txErr != nil {
		return nil, txErr
	}

	configslog.SLog.Infof("Sponsorship created: %d (sponsor %d, event %d, %d benefits)",
		sponsorship.ID, sponsorship.SponsorID, sponsorship.EventID, len(sponsorship.Benefits))
	return &sponsorship, nil
}

func (s *SponsorService) GetSponsorshipByID(ctx context.Context, id uint) (*models.Sponsorship, error) {
	sponsorship, err := s.repo.FindSponsorshipByID(ctx, id)
	if err != nil {
		return nil, ErrSponsorshipNotFound
	}
	return sponsorship, nil
}

func (s *SponsorService) ListSponsorshipsByEvent(ctx context.Context, eventID uint, publicOnly bool) ([]models.Sponsorship, error) {
	if _, err := s.eventRepo.FindByID(ctx, eventID); err != nil {
		return nil, ErrEventNotFound
	}
	return s.repo.ListSponsorshipsByEvent(ctx, eventID, publicOnly)
}

// derivePaymentStatus maps the paid amount onto the ledger status. A refunded
// ledger is never re-derived.
func derivePaymentStatus(sp *models.Sponsorship) models.PaymentStatus {
	if sp.PaymentStatus == models.PaymentStatusRefunded {
		return models.PaymentStatusRefunded
	}
	switch {
	case sp.AmountPaid.GreaterThanOrEqual(sp.ContributionAmount):
		return models.PaymentStatusCompleted
	case sp.AmountPaid.IsPositive():
		return models.PaymentStatusPartial
	default:
		return models.PaymentStatusPending
	}
}

// RegisterPayment adds one payment to the ledger under a row lock. A payment
// can never push the paid amount past the agreed contribution.
func (s *SponsorService) RegisterPayment(ctx context.Context, sponsorshipID uint, actingUserID uint, amount decimal.Decimal) (*models.Sponsorship, error) {
	if !amount.IsPositive() {
		return nil, ErrSponsorPaymentNotPositive
	}

	var updated *models.Sponsorship
	txErr := s.db.Transaction(func(tx *gorm.DB) error {
		txCtx := repositories.ContextWithTx(models.ContextWithUserID(ctx, actingUserID), tx)
		repo := repositories.NewSponsorRepositoryTx(tx)

		sponsorship, err := repo.FindSponsorshipByIDForUpdate(txCtx, sponsorshipID)
		if err != nil {
			return ErrSponsorshipNotFound
		}
		event, err := repositories.NewEventRepositoryTx(tx).FindByID(txCtx, sponsorship.EventID)
		if err != nil {
			return ErrEventNotFound
		}
		user, err := repositories.NewUserRepositoryTx(tx).FindByID(txCtx, actingUserID)
		if err != nil || !user.CanOperateEvent(event.OrganizerID) {
			return ErrSponsorForbidden
		}
		if amount.GreaterThan(sponsorship.RemainingBalance()) {
			return ErrSponsorPaymentTooLarge
		}

		sponsorship.AmountPaid = sponsorship.AmountPaid.Add(amount)
		sponsorship.PaymentStatus = derivePaymentStatus(sponsorship)
		if err := repo.UpdateSponsorship(txCtx, sponsorship); err != nil {
			configslog.Log.Error("SponsorService.RegisterPayment: DB error",
				zap.Uint("sponsorshipID", sponsorshipID), zap.Error(err))
			return ErrSponsorshipOperationFailed
		}
		updated = sponsorship
		return nil
	})
	if txErr != nil {
		return nil, txErr
	}

	configslog.SLog.Infof("Payment registered: %s on sponsorship %d (status %s)",
		amount.StringFixed(2), sponsorshipID, updated.PaymentStatus)
	return updated, nil
}

// MarkCompleted closes out a fully paid sponsorship by flipping its sponsor
// to completed.
func (s *SponsorService) MarkCompleted(ctx context.Context, sponsorshipID uint, actingUserID uint) (*models.Sponsorship, error) {
	sponsorship, err := s.repo.FindSponsorshipByID(ctx, sponsorshipID)
	if err != nil {
		return nil, ErrSponsorshipNotFound
	}
	if err := s.authorizeEventManager(ctx, sponsorship.EventID, actingUserID); err != nil {
		return nil, err
	}
	if sponsorship.PaymentStatus != models.PaymentStatusCompleted {
		return nil, ErrSponsorshipNotPaid
	}

	sponsor, err := s.repo.FindSponsorByID(ctx, sponsorship.SponsorID)
	if err != nil {
		return nil, ErrSponsorNotFound
	}
	sponsor.Status = models.SponsorStatusCompleted
	updateCtx := models.ContextWithUserID(ctx, actingUserID)
	if err := s.repo.UpdateSponsor(updateCtx, sponsor); err != nil {
		return nil, ErrSponsorshipOperationFailed
	}
	return sponsorship, nil
}

// MarkBenefitDelivered stamps one benefit as delivered, once.
func (s *SponsorService) MarkBenefitDelivered(ctx context.Context, benefitID uint, actingUserID uint, notes string) (*models.SponsorBenefit, error) {
	benefit, err := s.repo.FindBenefitByID(ctx, benefitID)
	if err != nil {
		return nil, ErrSponsorBenefitNotFound
	}
	sponsorship, err := s.repo.FindSponsorshipByID(ctx, benefit.SponsorshipID)
	if err != nil {
		return nil, ErrSponsorshipNotFound
	}
	if err := s.authorizeEventManager(ctx, sponsorship.EventID, actingUserID); err != nil {
		return nil, err
	}
	if benefit.IsDelivered {
		return nil, ErrSponsorBenefitDelivered
	}

	now := s.clock.Now().UTC()
	benefit.IsDelivered = true
	benefit.DeliveredDate = &now
	benefit.DeliveredByID = &actingUserID
	if notes != "" {
		benefit.Notes = notes
	}
	updateCtx := models.ContextWithUserID(ctx, actingUserID)
	if err := s.repo.UpdateBenefit(updateCtx, benefit); err != nil {
		return nil, ErrSponsorshipOperationFailed
	}
	return benefit, nil
}

// Statistics aggregates the event's sponsorship ledger in Go so decimal sums
// stay exact.
func (s *SponsorService) Statistics(ctx context.Context, eventID uint, actingUserID uint) (*SponsorshipStatistics, error) {
	if err := s.authorizeEventManager(ctx, eventID, actingUserID); err != nil {
		return nil, err
	}
	sponsorships, err := s.repo.ListSponsorshipsByEvent(ctx, eventID, false)
	if err != nil {
		return nil, err
	}

	stats := &SponsorshipStatistics{
		EventID:           eventID,
		TotalContribution: decimal.Zero,
		TotalPaid:         decimal.Zero,
		TotalOutstanding:  decimal.Zero,
	}
	tierIndex := map[string]int{}
	for _, sp := range sponsorships {
		stats.SponsorshipCount++
		stats.TotalContribution = stats.TotalContribution.Add(sp.ContributionAmount)
		stats.TotalPaid = stats.TotalPaid.Add(sp.AmountPaid)
		stats.TotalOutstanding = stats.TotalOutstanding.Add(sp.RemainingBalance())
		if sp.PaymentStatus == models.PaymentStatusCompleted {
			stats.FullyPaidCount++
		}

		idx, ok := tierIndex[sp.Tier.Name]
		if !ok {
			idx = len(stats.ByTier)
			tierIndex[sp.Tier.Name] = idx
			stats.ByTier = append(stats.ByTier, TierBreakdown{
				TierName:          sp.Tier.Name,
				TotalContribution: decimal.Zero,
			})
		}
		stats.ByTier[idx].SponsorshipCount++
		stats.ByTier[idx].TotalContribution = stats.ByTier[idx].TotalContribution.Add(sp.ContributionAmount)

		benefits, err := s.repo.ListBenefitsBySponsorship(ctx, sp.ID)
		if err != nil {
			return nil, err
		}
		stats.BenefitsTotal += len(benefits)
		for _, b := range benefits {
			if b.IsDelivered {
				stats.BenefitsDelivered++
			}
		}
	}
	return stats, nil
}

// ListPendingPayments returns the event's sponsorships still owing money.
func (s *SponsorService) ListPendingPayments(ctx context.Context, eventID uint, actingUserID uint) ([]models.Sponsorship, error) {
	if err := s.authorizeEventManager(ctx, eventID, actingUserID); err != nil {
		return nil, err
	}
	sponsorships, err := s.repo.ListSponsorshipsByEvent(ctx, eventID, false)
	if err != nil {
		return nil, err
	}
	pending := make([]models.Sponsorship, 0)
	for _, sp := range sponsorships {
		if sp.PaymentStatus == models.PaymentStatusPending || sp.PaymentStatus == models.PaymentStatusPartial {
			pending = append(pending, sp)
		}
	}
	return pending, nil
}

var _ ISponsorService = (*SponsorService)(nil)
