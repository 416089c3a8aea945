package repositories

import (
	"context"
	"errors"

	"festgo.app/configs"
	"festgo.app/configs/configslog"
	"festgo.app/models"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// ISurveyRepository is the persistence surface for surveys, questions and
// responses.
type ISurveyRepository interface {
	CreateSurvey(ctx context.Context, survey *models.Survey) error
	FindSurveyByID(ctx context.Context, id uint) (*models.Survey, error)
	ListSurveysByEvent(ctx context.Context, eventID uint) ([]models.Survey, error)
	UpdateSurvey(ctx context.Context, survey *models.Survey) error

	CreateQuestion(ctx context.Context, question *models.SurveyQuestion) error
	FindQuestionByID(ctx context.Context, id uint) (*models.SurveyQuestion, error)
	ListQuestionsBySurvey(ctx context.Context, surveyID uint) ([]models.SurveyQuestion, error)

	CreateResponse(ctx context.Context, response *models.SurveyResponse) error
	ResponseExists(ctx context.Context, surveyID, questionID, attendeeID uint) (bool, error)
	ListResponsesByQuestion(ctx context.Context, questionID uint) ([]models.SurveyResponse, error)
	CountDistinctRespondents(ctx context.Context, surveyID uint) (int64, error)
}

// SurveyRepository implements ISurveyRepository.
type SurveyRepository struct {
	db *gorm.DB
}

// NewSurveyRepository builds a SurveyRepository on the shared connection.
func NewSurveyRepository() ISurveyRepository {
	return &SurveyRepository{db: configs.GetDB()}
}

// NewSurveyRepositoryTx binds the repository to a transaction.
func NewSurveyRepositoryTx(tx *gorm.DB) ISurveyRepository {
	return &SurveyRepository{db: tx}
}

func (r *SurveyRepository) getDB(ctx context.Context) *gorm.DB {
	return getTxDB(ctx, r.db)
}

func (r *SurveyRepository) CreateSurvey(ctx context.Context, survey *models.Survey) error {
	if survey == nil || survey.EventID == 0 {
		return errors.New("a survey needs an event")
	}
	return r.getDB(ctx).Create(survey).Error
}

func (r *SurveyRepository) FindSurveyByID(ctx context.Context, id uint) (*models.Survey, error) {
	if id == 0 {
		return nil, errors.New("invalid survey ID")
	}
	var survey models.Survey
	err := r.getDB(ctx).
		Preload("Questions", func(db *gorm.DB) *gorm.DB { return db.Order("survey_questions.\"order\" asc") }).
		First(&survey, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		configslog.Log.Error("SurveyRepository.FindSurveyByID: DB error", zap.Uint("id", id), zap.Error(err))
		return nil, err
	}
	return &survey, nil
}

func (r *SurveyRepository) ListSurveysByEvent(ctx context.Context, eventID uint) ([]models.Survey, error) {
	if eventID == 0 {
		return nil, errors.New("invalid event ID")
	}
	var surveys []models.Survey
	err := r.getDB(ctx).Where("event_id = ?", eventID).Order("created_at desc").Find(&surveys).Error
	return surveys, err
}

func (r *SurveyRepository) UpdateSurvey(ctx context.Context, survey *models.Survey) error {
	if survey == nil || survey.ID == 0 {
		return errors.New("survey to update is not valid")
	}
	return r.getDB(ctx).Omit("Questions").Save(survey).Error
}

func (r *SurveyRepository) CreateQuestion(ctx context.Context, question *models.SurveyQuestion) error {
	if question == nil || question.SurveyID == 0 {
		return errors.New("a question needs a survey")
	}
	return r.getDB(ctx).Create(question).Error
}

func (r *SurveyRepository) FindQuestionByID(ctx context.Context, id uint) (*models.SurveyQuestion, error) {
	if id == 0 {
		return nil, errors.New("invalid question ID")
	}
	var question models.SurveyQuestion
	err := r.getDB(ctx).First(&question, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		configslog.Log.Error("SurveyRepository.FindQuestionByID: DB error", zap.Uint("id", id), zap.Error(err))
		return nil, err
	}
	return &question, nil
}

func (r *SurveyRepository) ListQuestionsBySurvey(ctx context.Context, surveyID uint) ([]models.SurveyQuestion, error) {
	if surveyID == 0 {
		return nil, errors.New("invalid survey ID")
	}
	var questions []models.SurveyQuestion
	err := r.getDB(ctx).Where("survey_id = ?", surveyID).Order("\"order\" asc, id asc").Find(&questions).Error
	return questions, err
}

func (r *SurveyRepository) CreateResponse(ctx context.Context, response *models.SurveyResponse) error {
	if response == nil || response.SurveyID == 0 || response.QuestionID == 0 {
		return errors.New("a response needs a survey and a question")
	}
	return r.getDB(ctx).Create(response).Error
}

// ResponseExists reports whether the attendee already answered this question
// in this survey. Anonymous responses (nil attendee) never match.
func (r *SurveyRepository) ResponseExists(ctx context.Context, surveyID, questionID, attendeeID uint) (bool, error) {
	if attendeeID == 0 {
		return false, nil
	}
	var count int64
	err := r.getDB(ctx).Model(&models.SurveyResponse{}).
		Where("survey_id = ? AND question_id = ? AND attendee_id = ?", surveyID, questionID, attendeeID).
		Count(&count).Error
	if err != nil {
		configslog.Log.Error("SurveyRepository.ResponseExists: DB error",
			zap.Uint("surveyID", surveyID), zap.Uint("questionID", questionID), zap.Error(err))
		return false, err
	}
	return count > 0, nil
}

func (r *SurveyRepository) ListResponsesByQuestion(ctx context.Context, questionID uint) ([]models.SurveyResponse, error) {
	if questionID == 0 {
		return nil, errors.New("invalid question ID")
	}
	var responses []models.SurveyResponse
	err := r.getDB(ctx).Where("question_id = ?", questionID).Order("submitted_at asc").Find(&responses).Error
	return responses, err
}

// CountDistinctRespondents counts unique attendees who submitted anything;
// anonymous responses are excluded since they carry no attendee.
func (r *SurveyRepository) CountDistinctRespondents(ctx context.Context, surveyID uint) (int64, error) {
	if surveyID == 0 {
		return 0, errors.New("invalid survey ID")
	}
	var count int64
	err := r.getDB(ctx).Model(&models.SurveyResponse{}).
		Where("survey_id = ? AND attendee_id IS NOT NULL", surveyID).
		Distinct("attendee_id").
		Count(&count).Error
	return count, err
}

var _ ISurveyRepository = (*SurveyRepository)(nil)
