package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"festgo.app/configs"
	"festgo.app/configs/configslog"
	"festgo.app/models"
	"festgo.app/repositories"

	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// SurveyServiceError is the typed error set of the survey service.
type SurveyServiceError string

func (e SurveyServiceError) Error() string { return string(e) }

const (
	ErrSurveyNotFound          SurveyServiceError = "survey not found"
	ErrSurveyQuestionNotFound  SurveyServiceError = "survey question not found"
	ErrSurveyQuestionMismatch  SurveyServiceError = "question does not belong to this survey"
	ErrSurveyNotAvailable      SurveyServiceError = "survey is not accepting responses"
	ErrSurveyDuplicateResponse SurveyServiceError = "question has already been answered"
	ErrSurveyAnswerRequired    SurveyServiceError = "answer cannot be empty"
	ErrSurveyInvalidRating     SurveyServiceError = "rating must be a whole number between 1 and 5"
	ErrSurveyInvalidYesNo      SurveyServiceError = "answer must be yes or no"
	ErrSurveyInvalidInput      SurveyServiceError = "invalid survey data"
	ErrSurveyForbidden         SurveyServiceError = "you are not allowed to manage this survey"
	ErrSurveyOperationFailed   SurveyServiceError = "survey operation could not be completed"
)

// yesNoAnswers is the accepted yes/no vocabulary, lowercased.
var yesNoAnswers = map[string]struct{}{
	"yes": {}, "no": {}, "sí": {}, "si": {},
}

// ResponseInput is one submitted answer.
type ResponseInput struct {
	QuestionID uint   `json:"question_id"`
	Answer     string `json:"answer"`
}

// QuestionResults aggregates the responses of one question.
type QuestionResults struct {
	QuestionID    uint                `json:"question_id"`
	QuestionText  string              `json:"question_text"`
	QuestionType  models.QuestionType `json:"question_type"`
	ResponseCount int                 `json:"response_count"`
	AverageRating *float64            `json:"average_rating,omitempty"`
	AnswerCounts  map[string]int      `json:"answer_counts,omitempty"`
	TextAnswers   []string            `json:"text_answers,omitempty"`
}

// SurveyResults is the aggregated report of one survey.
type SurveyResults struct {
	SurveyID        uint              `json:"survey_id"`
	Title           string            `json:"title"`
	RespondentCount int64             `json:"respondent_count"`
	Questions       []QuestionResults `json:"questions"`
}

// ISurveyService is the feedback collection surface.
type ISurveyService interface {
	CreateSurvey(ctx context.Context, actingUserID uint, survey models.Survey) (*models.Survey, error)
	GetSurveyByID(ctx context.Context, id uint) (*models.Survey, error)
	ListSurveysByEvent(ctx context.Context, eventID uint) ([]models.Survey, error)
	AddQuestion(ctx context.Context, surveyID uint, actingUserID uint, question models.SurveyQuestion, options []string) (*models.SurveyQuestion, error)
	SubmitResponse(ctx context.Context, surveyID uint, attendeeID *uint, input ResponseInput) (*models.SurveyResponse, error)
	SubmitBatch(ctx context.Context, surveyID uint, attendeeID *uint, inputs []ResponseInput) ([]models.SurveyResponse, error)
	Results(ctx context.Context, surveyID uint, actingUserID uint) (*SurveyResults, error)
}

// SurveyService implements ISurveyService.
type SurveyService struct {
	repo         repositories.ISurveyRepository
	attendeeRepo repositories.IAttendeeRepository
	eventRepo    repositories.IEventRepository
	userService  IUserService
	db           *gorm.DB
	clock        clockwork.Clock
}

// NewSurveyService builds the service on the shared connection.
func NewSurveyService() ISurveyService {
	return &SurveyService{
		repo:         repositories.NewSurveyRepository(),
		attendeeRepo: repositories.NewAttendeeRepository(),
		eventRepo:    repositories.NewEventRepository(),
		userService:  NewUserService(),
		db:           configs.GetDB(),
		clock:        clockwork.NewRealClock(),
	}
}

// NewSurveyServiceWith builds the service with injected dependencies.
func NewSurveyServiceWith(db *gorm.DB, clock clockwork.Clock) ISurveyService {
	return &SurveyService{
		repo:         repositories.NewSurveyRepositoryTx(db),
		attendeeRepo: repositories.NewAttendeeRepositoryTx(db),
		eventRepo:    repositories.NewEventRepositoryTx(db),
		userService:  NewUserServiceWith(repositories.NewUserRepositoryTx(db)),
		db:           db,
		clock:        clock,
	}
}

func (s *SurveyService) authorizeEventManager(ctx context.Context, eventID uint, actingUserID uint) error {
	event, err := s.eventRepo.FindByID(ctx, eventID)
	if err != nil {
		return ErrEventNotFound
	}
	user, err := s.userService.GetUserByID(ctx, actingUserID)
	if err != nil || !user.CanOperateEvent(event.OrganizerID) {
		return ErrSurveyForbidden
	}
	return nil
}

func (s *SurveyService) CreateSurvey(ctx context.Context, actingUserID uint, survey models.Survey) (*models.Survey, error) {
	if survey.EventID == 0 {
		return nil, fmt.Errorf("%w: event is required", ErrSurveyInvalidInput)
	}
	if err := s.authorizeEventManager(ctx, survey.EventID, actingUserID); err != nil {
		return nil, err
	}
	survey.Title = strings.TrimSpace(survey.Title)
	if survey.Title == "" {
		return nil, fmt.Errorf("%w: title is required", ErrSurveyInvalidInput)
	}
	if survey.AvailableFrom.IsZero() || survey.AvailableUntil.IsZero() ||
		!survey.AvailableFrom.Before(survey.AvailableUntil) {
		return nil, fmt.Errorf("%w: availability window is inconsistent", ErrSurveyInvalidInput)
	}
	survey.IsActive = true

	createCtx := models.ContextWithUserID(ctx, actingUserID)
	if err := s.repo.CreateSurvey(createCtx, &survey); err != nil {
		configslog.Log.Error("SurveyService.CreateSurvey: DB error", zap.Uint("eventID", survey.EventID), zap.Error(err))
		return nil, ErrSurveyOperationFailed
	}
	return &survey, nil
}

func (s *SurveyService) GetSurveyByID(ctx context.Context, id uint) (*models.Survey, error) {
	survey, err := s.repo.FindSurveyByID(ctx, id)
	if err != nil {
		return nil, ErrSurveyNotFound
	}
	return survey, nil
}

func (s *SurveyService) ListSurveysByEvent(ctx context.Context, eventID uint) ([]models.Survey, error) {
	if _, err := s.eventRepo.FindByID(ctx, eventID); err != nil {
		return nil, ErrEventNotFound
	}
	return s.repo.ListSurveysByEvent(ctx, eventID)
}

// AddQuestion appends one question to a survey. Choice questions must carry at
// least two options, stored as a JSON array.
func (s *SurveyService) AddQuestion(ctx context.Context, surveyID uint, actingUserID uint, question models.SurveyQuestion, options []string) (*models.SurveyQuestion, error) {
	survey, err := s.repo.FindSurveyByID(ctx, surveyID)
	if err != nil {
		return nil, ErrSurveyNotFound
	}
	if err := s.authorizeEventManager(ctx, survey.EventID, actingUserID); err != nil {
		return nil, err
	}
	question.QuestionText = strings.TrimSpace(question.QuestionText)
	if question.QuestionText == "" {
		return nil, fmt.Errorf("%w: question text is required", ErrSurveyInvalidInput)
	}
	switch question.QuestionType {
	case models.QuestionTypeText, models.QuestionTypeRating, models.QuestionTypeYesNo:
		question.Options = nil
	case models.QuestionTypeMultipleChoice, models.QuestionTypeCheckbox:
		cleaned := make([]string, 0, len(options))
		for _, o := range options {
			if o = strings.TrimSpace(o); o != "" {
				cleaned = append(cleaned, o)
			}
		}
		if len(cleaned) < 2 {
			return nil, fmt.Errorf("%w: choice questions need at least two options", ErrSurveyInvalidInput)
		}
		raw, err := json.Marshal(cleaned)
		if err != nil {
			return nil, ErrSurveyOperationFailed
		}
		question.Options = datatypes.JSON(raw)
	default:
		return nil, fmt.Errorf("%w: unknown question type %q", ErrSurveyInvalidInput, question.QuestionType)
	}

	question.SurveyID = surveyID
	createCtx := models.ContextWithUserID(ctx, actingUserID)
	if err := s.repo.CreateQuestion(createCtx, &question); err != nil {
		configslog.Log.Error("SurveyService.AddQuestion: DB error", zap.Uint("surveyID", surveyID), zap.Error(err))
		return nil, ErrSurveyOperationFailed
	}
	return &question, nil
}

// validateAnswer checks the answer against the question type. Choice answers
// are accepted as-is; free-form entries under choice questions are tolerated.
func validateAnswer(question *models.SurveyQuestion, answer string) error {
	if strings.TrimSpace(answer) == "" {
		return ErrSurveyAnswerRequired
	}
	switch question.QuestionType {
	case models.QuestionTypeRating:
		rating, err := strconv.Atoi(strings.TrimSpace(answer))
		if err != nil || rating < 1 || rating > 5 {
			return ErrSurveyInvalidRating
		}
	case models.QuestionTypeYesNo:
		if _, ok := yesNoAnswers[strings.ToLower(strings.TrimSpace(answer))]; !ok {
			return ErrSurveyInvalidYesNo
		}
	}
	return nil
}

// SubmitResponse validates and stores one answer. Checks run in a fixed
// order: question membership, availability window, duplicate detection, then
// answer shape.
func (s *SurveyService) SubmitResponse(ctx context.Context, surveyID uint, attendeeID *uint, input ResponseInput) (*models.SurveyResponse, error) {
	responses, err := s.SubmitBatch(ctx, surveyID, attendeeID, []ResponseInput{input})
	if err != nil {
		return nil, err
	}
	return &responses[0], nil
}

// SubmitBatch stores several answers to one survey atomically; one bad answer
// rejects the whole batch.
func (s *SurveyService) SubmitBatch(ctx context.Context, surveyID uint, attendeeID *uint, inputs []ResponseInput) ([]models.SurveyResponse, error) {
	if len(inputs) == 0 {
		return nil, fmt.Errorf("%w: no answers submitted", ErrSurveyInvalidInput)
	}

	var created []models.SurveyResponse
	txErr := s.db.Transaction(func(tx *gorm.DB) error {
		txCtx := repositories.ContextWithTx(ctx, tx)
		repo := repositories.NewSurveyRepositoryTx(tx)

		survey, err := repo.FindSurveyByID(txCtx, surveyID)
		if err != nil {
			return ErrSurveyNotFound
		}
		now := s.clock.Now().UTC()

		effectiveAttendee := attendeeID
		if survey.IsAnonymous {
			effectiveAttendee = nil
		}

		for _, input := range inputs {
			question, err := repo.FindQuestionByID(txCtx, input.QuestionID)
			if err != nil {
				return ErrSurveyQuestionNotFound
			}
			if question.SurveyID != survey.ID {
				return ErrSurveyQuestionMismatch
			}
			if !survey.IsAvailable(now) {
				return ErrSurveyNotAvailable
			}
			if effectiveAttendee != nil && !survey.AllowMultipleResponses {
				exists, err := repo.ResponseExists(txCtx, survey.ID, question.ID, *effectiveAttendee)
				if err != nil {
					return ErrSurveyOperationFailed
				}
				if exists {
					return ErrSurveyDuplicateResponse
				}
			}
			if err := validateAnswer(question, input.Answer); err != nil {
				return err
			}

			response := models.SurveyResponse{
				SurveyID:    survey.ID,
				AttendeeID:  effectiveAttendee,
				QuestionID:  question.ID,
				Answer:      strings.TrimSpace(input.Answer),
				SubmittedAt: now,
			}
			if err := repo.CreateResponse(txCtx, &response); err != nil {
				configslog.Log.Error("SurveyService.SubmitBatch: DB error",
					zap.Uint("surveyID", surveyID), zap.Uint("questionID", question.ID), zap.Error(err))
				return ErrSurveyOperationFailed
			}
			created = append(created, response)
		}
		return nil
	})
	if txErr != nil {
		return nil, txErr
	}
	return created, nil
}

// Results aggregates every question's responses for an event manager. Ratings
// average over valid numeric answers; choice and yes/no answers are counted
// per distinct value.
func (s *SurveyService) Results(ctx context.Context, surveyID uint, actingUserID uint) (*SurveyResults, error) {
	survey, err := s.repo.FindSurveyByID(ctx, surveyID)
	if err != nil {
		return nil, ErrSurveyNotFound
	}
	if err := s.authorizeEventManager(ctx, survey.EventID, actingUserID); err != nil {
		return nil, err
	}

	respondents, err := s.repo.CountDistinctRespondents(ctx, surveyID)
	if err != nil {
		return nil, err
	}
	questions, err := s.repo.ListQuestionsBySurvey(ctx, surveyID)
	if err != nil {
		return nil, err
	}

	results := &SurveyResults{
		SurveyID:        survey.ID,
		Title:           survey.Title,
		RespondentCount: respondents,
	}
	for i := range questions {
		q := &questions[i]
		responses, err := s.repo.ListResponsesByQuestion(ctx, q.ID)
		if err != nil {
			return nil, err
		}
		qr := QuestionResults{
			QuestionID:    q.ID,
			QuestionText:  q.QuestionText,
			QuestionType:  q.QuestionType,
			ResponseCount: len(responses),
		}
		switch q.QuestionType {
		case models.QuestionTypeRating:
			sum, n := 0, 0
			qr.AnswerCounts = make(map[string]int)
			for _, r := range responses {
				if rating, err := strconv.Atoi(r.Answer); err == nil {
					sum += rating
					n++
					qr.AnswerCounts[r.Answer]++
				}
			}
			if n > 0 {
				avg := float64(sum) / float64(n)
				qr.AverageRating = &avg
			}
		case models.QuestionTypeText:
			for _, r := range responses {
				qr.TextAnswers = append(qr.TextAnswers, r.Answer)
			}
		default:
			qr.AnswerCounts = make(map[string]int)
			for _, r := range responses {
				qr.AnswerCounts[strings.ToLower(r.Answer)]++
			}
		}
		results.Questions = append(results.Questions, qr)
	}
	return results, nil
}

var _ ISurveyService = (*SurveyService)(nil)
