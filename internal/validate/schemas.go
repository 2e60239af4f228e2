// Package validate holds the declarative shape constraints shared by the
// edit sessions and the RPC layer. Constraint violations stay client-side:
// sessions gate forward progress on Check, and the transport answers 400
// before a malformed payload ever reaches a use case.
package validate

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"quizcamp-service/internal/domain"
)

// NewQuiz is the quiz.create input shape.
type NewQuiz struct {
	Name       string            `json:"name" validate:"min=2,max=50"`
	Visibility domain.Visibility `json:"visibility" validate:"oneof=PRIVATE PUBLIC"`
}

// AnswerDraft is a not-yet-persisted answer inside a question create payload.
type AnswerDraft struct {
	Answer    string `json:"answer" validate:"required"`
	IsCorrect bool   `json:"isCorrect"`
}

// QuestionDraft is the question.create input shape.
type QuestionDraft struct {
	Question string        `json:"question" validate:"required"`
	Answers  []AnswerDraft `json:"answers" validate:"min=2,dive"`
}

// AnswerUpsert is one answer inside a partial update. An empty ID means
// create; a non-empty ID updates the stored row (or creates it when unknown).
type AnswerUpsert struct {
	ID        string `json:"id,omitempty"`
	Answer    string `json:"answer" validate:"required"`
	IsCorrect bool   `json:"isCorrect"`
}

// QuestionPatch is the question.update input shape. Every field is optional;
// the zero value is a no-op update.
type QuestionPatch struct {
	Question        *string        `json:"question,omitempty"`
	Answers         []AnswerUpsert `json:"answers,omitempty" validate:"omitempty,dive"`
	AnswersToDelete []string       `json:"answersToDelete,omitempty"`
}

// IsEmpty reports whether the patch carries no changes at all.
func (p QuestionPatch) IsEmpty() bool {
	return p.Question == nil && len(p.Answers) == 0 && len(p.AnswersToDelete) == 0
}

var v = validator.New(validator.WithRequiredStructEnabled())

// FieldError describes a single constraint violation.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Error aggregates constraint violations for one payload.
type Error struct {
	Fields []FieldError `json:"fields"`
}

func (e *Error) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, f.Field+": "+f.Message)
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// Check validates any of the schema structs above.
func Check(s any) error {
	err := v.Struct(s)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	out := &Error{}
	for _, fe := range verrs {
		out.Fields = append(out.Fields, FieldError{
			Field:   fe.Namespace(),
			Message: message(fe),
		})
	}
	return out
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "must not be empty"
	case "min":
		if fe.Kind().String() == "slice" {
			return fmt.Sprintf("needs at least %s entries", fe.Param())
		}
		return fmt.Sprintf("too short (min %s)", fe.Param())
	case "max":
		return fmt.Sprintf("too long (max %s)", fe.Param())
	case "oneof":
		return "must be one of " + fe.Param()
	default:
		return "invalid value"
	}
}
