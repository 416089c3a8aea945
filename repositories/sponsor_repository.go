package repositories

import (
	"context"
	"errors"

	"festgo.app/configs"
	"festgo.app/configs/configslog"
	"festgo.app/models"
	"festgo.app/pkg/queryparams"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// ISponsorRepository is the persistence surface for sponsor tiers, sponsors,
// sponsorships and their benefits.
type ISponsorRepository interface {
	CreateTier(ctx context.Context, tier *models.SponsorTier) error
	FindTierByID(ctx context.Context, id uint) (*models.SponsorTier, error)
	ListTiers(ctx context.Context) ([]models.SponsorTier, error)

	CreateSponsor(ctx context.Context, sponsor *models.Sponsor) error
	FindSponsorByID(ctx context.Context, id uint) (*models.Sponsor, error)
	FindSponsorsPaginated(ctx context.Context, params queryparams.ListParams) ([]models.Sponsor, int64, error)
	UpdateSponsor(ctx context.Context, sponsor *models.Sponsor) error

	CreateSponsorship(ctx context.Context, sponsorship *models.Sponsorship) error
	FindSponsorshipByID(ctx context.Context, id uint) (*models.Sponsorship, error)
	FindSponsorshipByIDForUpdate(ctx context.Context, id uint) (*models.Sponsorship, error)
	FindSponsorshipBySponsorAndEvent(ctx context.Context, sponsorID, eventID uint) (*models.Sponsorship, error)
	ListSponsorshipsByEvent(ctx context.Context, eventID uint, publicOnly bool) ([]models.Sponsorship, error)
	UpdateSponsorship(ctx context.Context, sponsorship *models.Sponsorship) error

	CreateBenefit(ctx context.Context, benefit *models.SponsorBenefit) error
	FindBenefitByID(ctx context.Context, id uint) (*models.SponsorBenefit, error)
	ListBenefitsBySponsorship(ctx context.Context, sponsorshipID uint) ([]models.SponsorBenefit, error)
	UpdateBenefit(ctx context.Context, benefit *models.SponsorBenefit) error
}

// SponsorRepository implements ISponsorRepository.
type SponsorRepository struct {
	db   *gorm.DB
	base *BaseRepository[models.Sponsor]
}

// NewSponsorRepository builds a SponsorRepository on the shared connection.
func NewSponsorRepository() ISponsorRepository {
	db := configs.GetDB()
	base := NewBaseRepository[models.Sponsor](db)
	base.SetAllowedSortColumns([]string{"id", "created_at", "name", "status"})
	return &SponsorRepository{db: db, base: base}
}

// NewSponsorRepositoryTx binds the repository to a transaction.
func NewSponsorRepositoryTx(tx *gorm.DB) ISponsorRepository {
	base := NewBaseRepository[models.Sponsor](tx)
	base.SetAllowedSortColumns([]string{"id", "created_at", "name", "status"})
	return &SponsorRepository{db: tx, base: base}
}

func (r *SponsorRepository) getDB(ctx context.Context) *gorm.DB {
	return getTxDB(ctx, r.db)
}

// --- Tiers ---

func (r *SponsorRepository) CreateTier(ctx context.Context, tier *models.SponsorTier) error {
	if tier == nil || tier.Name == "" {
		return errors.New("a sponsor tier needs a name")
	}
	return r.getDB(ctx).Create(tier).Error
}

func (r *SponsorRepository) FindTierByID(ctx context.Context, id uint) (*models.SponsorTier, error) {
	if id == 0 {
		return nil, errors.New("invalid tier ID")
	}
	var tier models.SponsorTier
	err := r.getDB(ctx).First(&tier, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		configslog.Log.Error("SponsorRepository.FindTierByID: DB error", zap.Uint("id", id), zap.Error(err))
		return nil, err
	}
	return &tier, nil
}

func (r *SponsorRepository) ListTiers(ctx context.Context) ([]models.SponsorTier, error) {
	var tiers []models.SponsorTier
	err := r.getDB(ctx).Where("is_active = ?", true).
		Order("priority_level desc, display_order asc").Find(&tiers).Error
	return tiers, err
}

// --- Sponsors ---

func (r *SponsorRepository) CreateSponsor(ctx context.Context, sponsor *models.Sponsor) error {
	if sponsor == nil || sponsor.Name == "" || sponsor.ContactEmail == "" {
		return errors.New("a sponsor needs a name and a contact email")
	}
	return r.getDB(ctx).Create(sponsor).Error
}

func (r *SponsorRepository) FindSponsorByID(ctx context.Context, id uint) (*models.Sponsor, error) {
	if id == 0 {
		return nil, errors.New("invalid sponsor ID")
	}
	var sponsor models.Sponsor
	err := r.getDB(ctx).Preload("Tier").First(&sponsor, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		configslog.Log.Error("SponsorRepository.FindSponsorByID: DB error", zap.Uint("id", id), zap.Error(err))
		return nil, err
	}
	return &sponsor, nil
}

func (r *SponsorRepository) FindSponsorsPaginated(ctx context.Context, params queryparams.ListParams) ([]models.Sponsor, int64, error) {
	var sponsors []models.Sponsor
	var totalCount int64

	query := r.getDB(ctx).Model(&models.Sponsor{})
	if params.Name != "" {
		query = query.Where("name LIKE ?", "%"+params.Name+"%")
	}
	if params.Status != "" {
		query = query.Where("status = ?", params.Status)
	}

	orderColumn := "created_at"
	if r.base.AllowedSortColumn(params.SortBy) {
		orderColumn = params.SortBy
	}
	query = query.Order(orderColumn + " " + params.OrderBy)

	if err := query.Count(&totalCount).Error; err != nil {
		configslog.Log.Error("SponsorRepository.Count: DB error", zap.Error(err))
		return nil, 0, err
	}
	if totalCount == 0 {
		return sponsors, 0, nil
	}

	err := query.Preload("Tier").
		Limit(params.PerPage).Offset(params.CalculateOffset()).
		Find(&sponsors).Error
	if err != nil {
		configslog.Log.Error("SponsorRepository.Find (paginated): DB error", zap.Error(err))
		return nil, totalCount, err
	}
	return sponsors, totalCount, nil
}

func (r *SponsorRepository) UpdateSponsor(ctx context.Context, sponsor *models.Sponsor) error {
	if sponsor == nil || sponsor.ID == 0 {
		return errors.New("sponsor to update is not valid")
	}
	return r.getDB(ctx).Omit("Tier", "AccountManager").Save(sponsor).Error
}

// --- Sponsorships ---

func (r *SponsorRepository) CreateSponsorship(ctx context.Context, sponsorship *models.Sponsorship) error {
	if sponsorship == nil || sponsorship.SponsorID == 0 || sponsorship.EventID == 0 || sponsorship.TierID == 0 {
		return errors.New("a sponsorship needs a sponsor, an event and a tier")
	}
	return r.getDB(ctx).Omit("Sponsor", "Event", "Tier").Create(sponsorship).Error
}

func (r *SponsorRepository) FindSponsorshipByID(ctx context.Context, id uint) (*models.Sponsorship, error) {
	if id == 0 {
		return nil, errors.New("invalid sponsorship ID")
	}
	var sponsorship models.Sponsorship
	err := r.getDB(ctx).Preload("Sponsor").Preload("Tier").Preload("Benefits").First(&sponsorship, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		configslog.Log.Error("SponsorRepository.FindSponsorshipByID: DB error", zap.Uint("id", id), zap.Error(err))
		return nil, err
	}
	return &sponsorship, nil
}

// FindSponsorshipByIDForUpdate locks the ledger row so concurrent payment
// registrations serialize on it.
func (r *SponsorRepository) FindSponsorshipByIDForUpdate(ctx context.Context, id uint) (*models.Sponsorship, error) {
	if id == 0 {
		return nil, errors.New("invalid sponsorship ID")
	}
	var sponsorship models.Sponsorship
	err := lockForUpdate(r.getDB(ctx)).First(&sponsorship, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		configslog.Log.Error("SponsorRepository.FindSponsorshipByIDForUpdate: DB error", zap.Uint("id", id), zap.Error(err))
		return nil, err
	}
	return &sponsorship, nil
}

func (r *SponsorRepository) FindSponsorshipBySponsorAndEvent(ctx context.Context, sponsorID, eventID uint) (*models.Sponsorship, error) {
	if sponsorID == 0 || eventID == 0 {
		return nil, ErrNotFound
	}
	var sponsorship models.Sponsorship
	err := r.getDB(ctx).Where("sponsor_id = ? AND event_id = ?", sponsorID, eventID).First(&sponsorship).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &sponsorship, nil
}

func (r *SponsorRepository) ListSponsorshipsByEvent(ctx context.Context, eventID uint, publicOnly bool) ([]models.Sponsorship, error) {
	if eventID == 0 {
		return nil, errors.New("invalid event ID")
	}
	var sponsorships []models.Sponsorship
	query := r.getDB(ctx).Where("event_id = ? AND is_active = ?", eventID, true)
	if publicOnly {
		query = query.Where("is_public = ?", true)
	}
	err := query.Preload("Sponsor").Preload("Tier").Find(&sponsorships).Error
	return sponsorships, err
}

func (r *SponsorRepository) UpdateSponsorship(ctx context.Context, sponsorship *models.Sponsorship) error {
	if sponsorship == nil || sponsorship.ID == 0 {
		return errors.New("sponsorship to update is not valid")
	}
	return r.getDB(ctx).Omit("Sponsor", "Event", "Tier", "Benefits").Save(sponsorship).Error
}

// --- Benefits ---

func (r *SponsorRepository) CreateBenefit(ctx context.Context, benefit *models.SponsorBenefit) error {
	if benefit == nil || benefit.SponsorshipID == 0 || benefit.BenefitName == "" {
		return errors.New("a benefit needs a sponsorship and a name")
	}
	return r.getDB(ctx).Omit("Sponsorship", "DeliveredBy").Create(benefit).Error
}

func (r *SponsorRepository) FindBenefitByID(ctx context.Context, id uint) (*models.SponsorBenefit, error) {
	if id == 0 {
		return nil, errors.New("invalid benefit ID")
	}
	var benefit models.SponsorBenefit
	err := r.getDB(ctx).First(&benefit, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &benefit, nil
}

func (r *SponsorRepository) ListBenefitsBySponsorship(ctx context.Context, sponsorshipID uint) ([]models.SponsorBenefit, error) {
	if sponsorshipID == 0 {
		return nil, errors.New("invalid sponsorship ID")
	}
	var benefits []models.SponsorBenefit
	err := r.getDB(ctx).Where("sponsorship_id = ?", sponsorshipID).Order("id asc").Find(&benefits).Error
	return benefits, err
}

func (r *SponsorRepository) UpdateBenefit(ctx context.Context, benefit *models.SponsorBenefit) error {
	if benefit == nil || benefit.ID == 0 {
		return errors.New("benefit to update is not valid")
	}
	return r.getDB(ctx).Omit("Sponsorship", "DeliveredBy").Save(benefit).Error
}

var _ ISponsorRepository = (*SponsorRepository)(nil)
