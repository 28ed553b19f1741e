package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

type QuestionType string

const (
	QuestionSelect      QuestionType = "select"
	QuestionMultiSelect QuestionType = "multiselect"
	QuestionText        QuestionType = "text"
)

func ParseQuestionType(s string) (QuestionType, bool) {
	switch QuestionType(s) {
	case QuestionSelect, QuestionMultiSelect, QuestionText:
		return QuestionType(s), true
	default:
		return "", false
	}
}

type Survey struct {
	ID          uuid.UUID `json:"id"`
	AuthorEmail string    `json:"author_email"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Active      bool      `json:"active"`
	CreatedAt   time.Time `json:"created_at"`
}

type SurveyQuestion struct {
	ID           uuid.UUID    `json:"id"`
	SurveyID     uuid.UUID    `json:"survey_id"`
	AuthorEmail  string       `json:"author_email"`
	QuestionType QuestionType `json:"question_type"`
	Title        string       `json:"title"`
	CreatedAt    time.Time    `json:"created_at"`
}

type SurveyResponse struct {
	ID             uuid.UUID `json:"id"`
	ResponderEmail string    `json:"responder_email"`
	QuestionID     uuid.UUID `json:"question_id"`
	SurveyID       uuid.UUID `json:"survey_id"`
	Answers        []string  `json:"answers"`
	CreatedAt      time.Time `json:"created_at"`
}

// ValidateAnswers checks the answer set against the target question's type:
// select and text take exactly one answer, multiselect takes at least one.
func ValidateAnswers(qt QuestionType, answers []string) error {
	switch qt {
	case QuestionSelect, QuestionText:
		if len(answers) != 1 {
			return fmt.Errorf("question type %q requires exactly one answer, got %d: %w", qt, len(answers), ErrInvalidArgument)
		}
	case QuestionMultiSelect:
		if len(answers) < 1 {
			return fmt.Errorf("question type %q requires at least one answer: %w", qt, ErrInvalidArgument)
		}
	default:
		return fmt.Errorf("unknown question type %q: %w", qt, ErrInvalidArgument)
	}
	return nil
}

// Request DTOs

type SurveyInput struct {
	ID          string `json:"id,omitempty"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Active      bool   `json:"active"`
}

func (in *SurveyInput) Validate() error {
	if in.Title == "" {
		return fmt.Errorf("title is required: %w", ErrInvalidArgument)
	}
	return nil
}

type QuestionInput struct {
	ID           string `json:"id,omitempty"`
	SurveyID     string `json:"survey_id,omitempty"`
	Title        string `json:"title"`
	QuestionType string `json:"question_type"`
}

func (in *QuestionInput) Validate() error {
	if in.Title == "" {
		return fmt.Errorf("title is required: %w", ErrInvalidArgument)
	}
	if _, ok := ParseQuestionType(in.QuestionType); !ok {
		return fmt.Errorf("unknown question type %q: %w", in.QuestionType, ErrInvalidArgument)
	}
	return nil
}

type ResponseInput struct {
	ID             string   `json:"id,omitempty"`
	ResponderEmail string   `json:"responder_email"`
	Answers        []string `json:"answers"`
}
