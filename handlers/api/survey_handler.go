package api

import (
	"festgo.app/models"
	"festgo.app/services"

	"github.com/gofiber/fiber/v2"
)

// SurveyHandler serves surveys, questions and responses.
type SurveyHandler struct {
	service services.ISurveyService
}

// NewSurveyHandler builds the handler with its service.
func NewSurveyHandler() *SurveyHandler {
	return &SurveyHandler{service: services.NewSurveyService()}
}

func (h *SurveyHandler) CreateSurvey(c *fiber.Ctx) error {
	var survey models.Survey
	if err := c.BodyParser(&survey); err != nil {
		return respondError(c, services.ErrSurveyInvalidInput)
	}
	created, err := h.service.CreateSurvey(c.UserContext(), currentUserID(c), survey)
	if err != nil {
		return respondError(c, err)
	}
	return respondJSON(c, fiber.StatusCreated, created)
}

func (h *SurveyHandler) GetSurvey(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	survey, err := h.service.GetSurveyByID(c.UserContext(), id)
	if err != nil {
		return respondError(c, err)
	}
	return respondJSON(c, fiber.StatusOK, survey)
}

func (h *SurveyHandler) ListForEvent(c *fiber.Ctx) error {
	eventID, err := parseID(c, "event_id")
	if err != nil {
		return err
	}
	surveys, err := h.service.ListSurveysByEvent(c.UserContext(), eventID)
	if err != nil {
		return respondError(c, err)
	}
	return respondJSON(c, fiber.StatusOK, surveys)
}

type addQuestionBody struct {
	QuestionText string              `json:"question_text"`
	QuestionType models.QuestionType `json:"question_type"`
	Options      []string            `json:"options"`
	IsRequired   bool                `json:"is_required"`
	Order        uint                `json:"order"`
}

func (h *SurveyHandler) AddQuestion(c *fiber.Ctx) error {
	surveyID, err := parseID(c, "id")
	if err != nil {
		return err
	}
	var body addQuestionBody
	if err := c.BodyParser(&body); err != nil {
		return respondError(c, services.ErrSurveyInvalidInput)
	}
	question := models.SurveyQuestion{
		QuestionText: body.QuestionText,
		QuestionType: body.QuestionType,
		IsRequired:   body.IsRequired,
		Order:        body.Order,
	}
	created, err := h.service.AddQuestion(c.UserContext(), surveyID, currentUserID(c), question, body.Options)
	if err != nil {
		return respondError(c, err)
	}
	return respondJSON(c, fiber.StatusCreated, created)
}

type submitResponsesBody struct {
	AttendeeID *uint                    `json:"attendee_id,omitempty"`
	Responses  []services.ResponseInput `json:"responses"`
}

func (h *SurveyHandler) SubmitResponses(c *fiber.Ctx) error {
	surveyID, err := parseID(c, "id")
	if err != nil {
		return err
	}
	var body submitResponsesBody
	if err := c.BodyParser(&body); err != nil {
		return respondError(c, services.ErrSurveyInvalidInput)
	}
	responses, err := h.service.SubmitBatch(c.UserContext(), surveyID, body.AttendeeID, body.Responses)
	if err != nil {
		return respondError(c, err)
	}
	return respondJSON(c, fiber.StatusCreated, fiber.Map{"responses": responses})
}

func (h *SurveyHandler) Results(c *fiber.Ctx) error {
	surveyID, err := parseID(c, "id")
	if err != nil {
		return err
	}
	results, err := h.service.Results(c.UserContext(), surveyID, currentUserID(c))
	if err != nil {
		return respondError(c, err)
	}
	return respondJSON(c, fiber.StatusOK, results)
}
