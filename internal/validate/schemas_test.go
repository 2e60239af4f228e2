package validate

import (
	"errors"
	"testing"

	"quizcamp-service/internal/domain"
)

func TestNewQuizBounds(t *testing.T) {
	cases := []struct {
		name  string
		input NewQuiz
		valid bool
	}{
		{"ok", NewQuiz{Name: "Sample", Visibility: domain.VisibilityPublic}, true},
		{"minimum length", NewQuiz{Name: "ab", Visibility: domain.VisibilityPrivate}, true},
		{"too short", NewQuiz{Name: "a", Visibility: domain.VisibilityPublic}, false},
		{"too long", NewQuiz{Name: string(make([]byte, 51)), Visibility: domain.VisibilityPublic}, false},
		{"bad visibility", NewQuiz{Name: "Sample", Visibility: "FRIENDS"}, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := Check(tc.input)
			if (err == nil) != tc.valid {
				t.Fatalf("valid=%v, got err=%v", tc.valid, err)
			}
		})
	}
}

func TestQuestionDraftNeedsTwoAnswers(t *testing.T) {
	draft := QuestionDraft{
		Question: "Q",
		Answers:  []AnswerDraft{{Answer: "only one"}},
	}
	if Check(draft) == nil {
		t.Fatalf("one answer must be invalid")
	}

	draft.Answers = append(draft.Answers, AnswerDraft{Answer: "second", IsCorrect: true})
	if err := Check(draft); err != nil {
		t.Fatalf("two non-empty answers should be valid: %v", err)
	}
}

func TestQuestionDraftRejectsEmptyText(t *testing.T) {
	draft := QuestionDraft{
		Question: "",
		Answers:  []AnswerDraft{{Answer: "a"}, {Answer: "b"}},
	}
	if Check(draft) == nil {
		t.Fatalf("empty question text must be invalid")
	}

	draft.Question = "Q"
	draft.Answers[1].Answer = ""
	err := Check(draft)
	if err == nil {
		t.Fatalf("empty answer text must be invalid")
	}
	var verr *Error
	if !errors.As(err, &verr) || len(verr.Fields) == 0 {
		t.Fatalf("expected field errors, got %v", err)
	}
}

func TestQuestionPatchIsPartial(t *testing.T) {
	if err := Check(QuestionPatch{}); err != nil {
		t.Fatalf("empty patch must be valid: %v", err)
	}
	if !(QuestionPatch{}).IsEmpty() {
		t.Fatalf("zero patch should report empty")
	}

	text := "new text"
	patch := QuestionPatch{Question: &text, AnswersToDelete: []string{"a1"}}
	if err := Check(patch); err != nil {
		t.Fatalf("partial patch should be valid: %v", err)
	}
	if patch.IsEmpty() {
		t.Fatalf("patch with changes must not report empty")
	}

	patch.Answers = []AnswerUpsert{{ID: "a2", Answer: ""}}
	if Check(patch) == nil {
		t.Fatalf("upsert with empty text must be invalid")
	}
}
