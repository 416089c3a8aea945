package services

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"festgo.app/models"

	"gorm.io/gorm"
)

type surveyFixture struct {
	db        *gorm.DB
	service   ISurveyService
	organizer *models.User
	event     *models.Event
	survey    *models.Survey
	attendee  *models.Attendee
}

func newSurveyFixture(t *testing.T) *surveyFixture {
	t.Helper()
	db := newTestDB(t)
	f := &surveyFixture{
		db:      db,
		service: NewSurveyServiceWith(db, newTestClock()),
	}
	f.organizer = createUser(t, db, "organizer", false)
	f.event = createEvent(t, db, f.organizer, nil)
	guest := createUser(t, db, "guest", false)
	f.attendee = createAttendee(t, db, guest, f.event, models.AttendeeStatusCheckedIn)

	survey, err := f.service.CreateSurvey(context.Background(), f.organizer.ID, models.Survey{
		EventID:        f.event.ID,
		Title:          "Post-event feedback",
		AvailableFrom:  testNow.Add(-time.Hour),
		AvailableUntil: testNow.Add(48 * time.Hour),
	})
	if err != nil {
		t.Fatalf("create survey: %v", err)
	}
	f.survey = survey
	return f
}

func (f *surveyFixture) addQuestion(t *testing.T, kind models.QuestionType, text string, options ...string) *models.SurveyQuestion {
	t.Helper()
	q, err := f.service.AddQuestion(context.Background(), f.survey.ID, f.organizer.ID,
		models.SurveyQuestion{QuestionText: text, QuestionType: kind}, options)
	if err != nil {
		t.Fatalf("add %s question: %v", kind, err)
	}
	return q
}

func TestAddQuestion(t *testing.T) {
	ctx := context.Background()
	f := newSurveyFixture(t)

	t.Run("choice questions need at least two options", func(t *testing.T) {
		if _, err := f.service.AddQuestion(ctx, f.survey.ID, f.organizer.ID,
			models.SurveyQuestion{QuestionText: "Pick one", QuestionType: models.QuestionTypeMultipleChoice},
			[]string{"only", "  "}); !errors.Is(err, ErrSurveyInvalidInput) {
			t.Fatalf("expected ErrSurveyInvalidInput, got %v", err)
		}

		q := f.addQuestion(t, models.QuestionTypeMultipleChoice, "Pick one", "talks", "workshops", "hallway track")
		var stored []string
		if err := json.Unmarshal(q.Options, &stored); err != nil {
			t.Fatalf("options not stored as JSON array: %v", err)
		}
		if len(stored) != 3 {
			t.Errorf("stored options = %v, want 3", stored)
		}
	})

	t.Run("non-choice questions carry no options", func(t *testing.T) {
		q := f.addQuestion(t, models.QuestionTypeRating, "How was it?", "stray", "options")
		if q.Options != nil {
			t.Errorf("rating question stored options: %s", q.Options)
		}
	})

	t.Run("strangers cannot add questions", func(t *testing.T) {
		stranger := createUser(t, f.db, "stranger", false)
		if _, err := f.service.AddQuestion(ctx, f.survey.ID, stranger.ID,
			models.SurveyQuestion{QuestionText: "Hi", QuestionType: models.QuestionTypeText}, nil); !errors.Is(err, ErrSurveyForbidden) {
			t.Fatalf("expected ErrSurveyForbidden, got %v", err)
		}
	})
}

func TestSubmitResponse(t *testing.T) {
	ctx := context.Background()

	t.Run("rating answers must be whole numbers 1 to 5", func(t *testing.T) {
		f := newSurveyFixture(t)
		q := f.addQuestion(t, models.QuestionTypeRating, "Rate the venue")

		for _, bad := range []string{"0", "6", "4.5", "great"} {
			if _, err := f.service.SubmitResponse(ctx, f.survey.ID, &f.attendee.ID,
				ResponseInput{QuestionID: q.ID, Answer: bad}); !errors.Is(err, ErrSurveyInvalidRating) {
				t.Errorf("answer %q: expected ErrSurveyInvalidRating, got %v", bad, err)
			}
		}
		if _, err := f.service.SubmitResponse(ctx, f.survey.ID, &f.attendee.ID,
			ResponseInput{QuestionID: q.ID, Answer: "3"}); err != nil {
			t.Fatalf("valid rating rejected: %v", err)
		}
	})

	t.Run("yes/no accepts the Spanish affirmative", func(t *testing.T) {
		f := newSurveyFixture(t)
		q := f.addQuestion(t, models.QuestionTypeYesNo, "Would you return?")

		for i, answer := range []string{"yes", "No", "Sí", "SI"} {
			guest := createUser(t, f.db, "voter"+string(rune('a'+i)), false)
			a := createAttendee(t, f.db, guest, f.event, models.AttendeeStatusCheckedIn)
			if _, err := f.service.SubmitResponse(ctx, f.survey.ID, &a.ID,
				ResponseInput{QuestionID: q.ID, Answer: answer}); err != nil {
				t.Errorf("answer %q rejected: %v", answer, err)
			}
		}
		if _, err := f.service.SubmitResponse(ctx, f.survey.ID, &f.attendee.ID,
			ResponseInput{QuestionID: q.ID, Answer: "maybe"}); !errors.Is(err, ErrSurveyInvalidYesNo) {
			t.Fatalf("expected ErrSurveyInvalidYesNo, got %v", err)
		}
	})

	t.Run("duplicate answers are rejected unless the survey allows them", func(t *testing.T) {
		f := newSurveyFixture(t)
		q := f.addQuestion(t, models.QuestionTypeText, "Any comments?")

		if _, err := f.service.SubmitResponse(ctx, f.survey.ID, &f.attendee.ID,
			ResponseInput{QuestionID: q.ID, Answer: "great event"}); err != nil {
			t.Fatalf("first answer: %v", err)
		}
		if _, err := f.service.SubmitResponse(ctx, f.survey.ID, &f.attendee.ID,
			ResponseInput{QuestionID: q.ID, Answer: "changed my mind"}); !errors.Is(err, ErrSurveyDuplicateResponse) {
			t.Fatalf("expected ErrSurveyDuplicateResponse, got %v", err)
		}

		if err := f.db.Model(&models.Survey{}).Where("id = ?", f.survey.ID).
			Update("allow_multiple_responses", true).Error; err != nil {
			t.Fatalf("allow multiples: %v", err)
		}
		if _, err := f.service.SubmitResponse(ctx, f.survey.ID, &f.attendee.ID,
			ResponseInput{QuestionID: q.ID, Answer: "changed my mind"}); err != nil {
			t.Fatalf("multiple responses should be allowed now: %v", err)
		}
	})

	t.Run("anonymous surveys strip attribution and skip duplicate checks", func(t *testing.T) {
		f := newSurveyFixture(t)
		if err := f.db.Model(&models.Survey{}).Where("id = ?", f.survey.ID).
			Update("is_anonymous", true).Error; err != nil {
			t.Fatalf("anonymize: %v", err)
		}
		q := f.addQuestion(t, models.QuestionTypeText, "Honest thoughts?")

		for _, answer := range []string{"first", "second"} {
			resp, err := f.service.SubmitResponse(ctx, f.survey.ID, &f.attendee.ID,
				ResponseInput{QuestionID: q.ID, Answer: answer})
			if err != nil {
				t.Fatalf("anonymous answer %q: %v", answer, err)
			}
			if resp.AttendeeID != nil {
				t.Errorf("anonymous response kept attendee %d", *resp.AttendeeID)
			}
		}
	})

	t.Run("answers outside the availability window are rejected", func(t *testing.T) {
		f := newSurveyFixture(t)
		q := f.addQuestion(t, models.QuestionTypeText, "Too late?")
		clock := newTestClock()
		clock.Advance(72 * time.Hour)
		lateService := NewSurveyServiceWith(f.db, clock)

		if _, err := lateService.SubmitResponse(ctx, f.survey.ID, &f.attendee.ID,
			ResponseInput{QuestionID: q.ID, Answer: "yes"}); !errors.Is(err, ErrSurveyNotAvailable) {
			t.Fatalf("expected ErrSurveyNotAvailable, got %v", err)
		}
	})

	t.Run("questions from another survey are rejected", func(t *testing.T) {
		f := newSurveyFixture(t)
		other, err := f.service.CreateSurvey(ctx, f.organizer.ID, models.Survey{
			EventID:        f.event.ID,
			Title:          "Sibling survey",
			AvailableFrom:  testNow.Add(-time.Hour),
			AvailableUntil: testNow.Add(time.Hour),
		})
		if err != nil {
			t.Fatalf("create sibling: %v", err)
		}
		foreign, err := f.service.AddQuestion(ctx, other.ID, f.organizer.ID,
			models.SurveyQuestion{QuestionText: "Elsewhere", QuestionType: models.QuestionTypeText}, nil)
		if err != nil {
			t.Fatalf("add foreign question: %v", err)
		}

		if _, err := f.service.SubmitResponse(ctx, f.survey.ID, &f.attendee.ID,
			ResponseInput{QuestionID: foreign.ID, Answer: "hi"}); !errors.Is(err, ErrSurveyQuestionMismatch) {
			t.Fatalf("expected ErrSurveyQuestionMismatch, got %v", err)
		}
	})

	t.Run("empty answers are rejected and one bad answer rejects the batch", func(t *testing.T) {
		f := newSurveyFixture(t)
		q1 := f.addQuestion(t, models.QuestionTypeText, "First")
		q2 := f.addQuestion(t, models.QuestionTypeText, "Second")

		_, err := f.service.SubmitBatch(ctx, f.survey.ID, &f.attendee.ID, []ResponseInput{
			{QuestionID: q1.ID, Answer: "fine"},
			{QuestionID: q2.ID, Answer: "   "},
		})
		if !errors.Is(err, ErrSurveyAnswerRequired) {
			t.Fatalf("expected ErrSurveyAnswerRequired, got %v", err)
		}

		var count int64
		f.db.Model(&models.SurveyResponse{}).Where("survey_id = ?", f.survey.ID).Count(&count)
		if count != 0 {
			t.Errorf("partial batch persisted %d responses", count)
		}
	})
}

func TestSurveyResults(t *testing.T) {
	ctx := context.Background()
	f := newSurveyFixture(t)
	rating := f.addQuestion(t, models.QuestionTypeRating, "Rate the talks")
	yesNo := f.addQuestion(t, models.QuestionTypeYesNo, "Coming back?")
	text := f.addQuestion(t, models.QuestionTypeText, "Comments")

	answers := []struct {
		rating, yesNo, text string
	}{
		{"5", "yes", "loved it"},
		{"4", "Sí", "great talks"},
		{"5", "no", "too crowded"},
	}
	for i, a := range answers {
		guest := createUser(t, f.db, "respondent"+string(rune('a'+i)), false)
		attendee := createAttendee(t, f.db, guest, f.event, models.AttendeeStatusCheckedIn)
		_, err := f.service.SubmitBatch(ctx, f.survey.ID, &attendee.ID, []ResponseInput{
			{QuestionID: rating.ID, Answer: a.rating},
			{QuestionID: yesNo.ID, Answer: a.yesNo},
			{QuestionID: text.ID, Answer: a.text},
		})
		if err != nil {
			t.Fatalf("batch %d: %v", i, err)
		}
	}

	results, err := f.service.Results(ctx, f.survey.ID, f.organizer.ID)
	if err != nil {
		t.Fatalf("Results failed: %v", err)
	}
	if results.RespondentCount != 3 {
		t.Errorf("respondents = %d, want 3", results.RespondentCount)
	}
	if len(results.Questions) != 3 {
		t.Fatalf("question results = %d, want 3", len(results.Questions))
	}

	byID := map[uint]QuestionResults{}
	for _, qr := range results.Questions {
		byID[qr.QuestionID] = qr
	}

	r := byID[rating.ID]
	if r.AverageRating == nil || *r.AverageRating < 4.66 || *r.AverageRating > 4.67 {
		t.Errorf("average rating = %v, want ~4.67", r.AverageRating)
	}
	if r.AnswerCounts["5"] != 2 || r.AnswerCounts["4"] != 1 {
		t.Errorf("rating distribution = %v", r.AnswerCounts)
	}

	y := byID[yesNo.ID]
	if y.AnswerCounts["yes"] != 1 || y.AnswerCounts["sí"] != 1 || y.AnswerCounts["no"] != 1 {
		t.Errorf("yes/no distribution = %v", y.AnswerCounts)
	}

	if got := byID[text.ID]; got.ResponseCount != 3 || len(got.TextAnswers) != 3 {
		t.Errorf("text results = %+v", got)
	}

	stranger := createUser(t, f.db, "nosy", false)
	if _, err := f.service.Results(ctx, f.survey.ID, stranger.ID); !errors.Is(err, ErrSurveyForbidden) {
		t.Fatalf("expected ErrSurveyForbidden, got %v", err)
	}
}
