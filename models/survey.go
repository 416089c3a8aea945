package models

import (
	"time"

	"gorm.io/datatypes"
)

// Survey is a question set tied to one event, open inside a time window.
type Survey struct {
	BaseModel
	EventID     uint   `gorm:"not null;index" json:"event_id"`
	Title       string `gorm:"type:varchar(200);not null" json:"title"`
	Description string `gorm:"type:text" json:"description"`

	IsActive               bool `gorm:"default:true" json:"is_active"`
	IsAnonymous            bool `gorm:"default:false" json:"is_anonymous"`
	AllowMultipleResponses bool `gorm:"default:false" json:"allow_multiple_responses"`

	AvailableFrom  time.Time `gorm:"not null" json:"available_from"`
	AvailableUntil time.Time `gorm:"not null" json:"available_until"`

	Event     Event            `gorm:"foreignKey:EventID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"`
	Questions []SurveyQuestion `gorm:"foreignKey:SurveyID" json:"questions,omitempty"`
}

// IsAvailable reports whether responses are currently accepted.
func (s *Survey) IsAvailable(now time.Time) bool {
	return s.IsActive && !now.Before(s.AvailableFrom) && !now.After(s.AvailableUntil)
}

// QuestionType is the answer shape of a survey question.
type QuestionType string

const (
	QuestionTypeText           QuestionType = "text"
	QuestionTypeRating         QuestionType = "rating"
	QuestionTypeMultipleChoice QuestionType = "multiple_choice"
	QuestionTypeCheckbox       QuestionType = "checkbox"
	QuestionTypeYesNo          QuestionType = "yes_no"
)

// SurveyQuestion belongs to one survey. Choice types carry a JSON list of
// options, required to have at least two entries.
type SurveyQuestion struct {
	BaseModel
	SurveyID     uint           `gorm:"not null;index" json:"survey_id"`
	QuestionText string         `gorm:"type:text;not null" json:"question_text"`
	QuestionType QuestionType   `gorm:"type:varchar(20);not null" json:"question_type"`
	Options      datatypes.JSON `json:"options,omitempty"`
	IsRequired   bool           `gorm:"default:false" json:"is_required"`
	Order        uint           `gorm:"default:0" json:"order"`

	Survey Survey `gorm:"foreignKey:SurveyID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"`
}

// IsChoiceType reports whether the question carries an options list.
func (q *SurveyQuestion) IsChoiceType() bool {
	return q.QuestionType == QuestionTypeMultipleChoice || q.QuestionType == QuestionTypeCheckbox
}

// SurveyResponse is one answer to one question. AttendeeID is optional so
// anonymous surveys can collect unattributed answers.
type SurveyResponse struct {
	BaseModel
	SurveyID    uint      `gorm:"not null;index:idx_responses_survey_attendee" json:"survey_id"`
	AttendeeID  *uint     `gorm:"index:idx_responses_survey_attendee" json:"attendee_id,omitempty"`
	QuestionID  uint      `gorm:"not null;index" json:"question_id"`
	Answer      string    `gorm:"type:text;not null" json:"answer"`
	SubmittedAt time.Time `gorm:"not null" json:"submitted_at"`

	Survey   Survey         `gorm:"foreignKey:SurveyID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"`
	Attendee *Attendee      `gorm:"foreignKey:AttendeeID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"`
	Question SurveyQuestion `gorm:"foreignKey:QuestionID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"`
}
