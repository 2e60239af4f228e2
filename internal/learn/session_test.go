package learn_test

import (
	"context"
	"testing"

	"quizcamp-service/internal/domain"
	"quizcamp-service/internal/learn"
)

type staticSource map[string][]domain.Question

func (s staticSource) Questions(_ context.Context, quizPublicID string) ([]domain.Question, error) {
	questions, ok := s[quizPublicID]
	if !ok {
		return nil, domain.ErrQuizNotFound
	}
	return questions, nil
}

func newSession(t *testing.T, questions ...domain.Question) *learn.Session {
	t.Helper()
	source := staticSource{"quiz-1": questions}
	session, err := learn.New(context.Background(), source, "quiz-1")
	if err != nil {
		t.Fatalf("open session: %v", err)
	}
	return session
}

func tallyQuestion() domain.Question {
	return domain.Question{
		ID:       "q1",
		Question: "Pick the correct ones",
		Answers: []domain.Answer{
			{ID: "a1", Answer: "first", IsCorrect: true},
			{ID: "a2", Answer: "second", IsCorrect: true},
			{ID: "a3", Answer: "third", IsCorrect: false},
		},
	}
}

func TestVerificationTally(t *testing.T) {
	session := newSession(t, tallyQuestion())

	session.Toggle(0) // correct, checked
	session.Toggle(2) // incorrect, checked

	session.Verify()
	tally := session.Tally()
	if tally.Checked != 1 || tally.Total != 2 {
		t.Fatalf("expected 1/2, got %d/%d", tally.Checked, tally.Total)
	}
	if tally.FullMatch() {
		t.Fatalf("1/2 must not be a full match")
	}
}

func TestTallyIsDeferred(t *testing.T) {
	session := newSession(t, tallyQuestion())

	session.Toggle(0)
	if st := session.State(); st.Tally != nil || st.Verified {
		t.Fatalf("toggling must not surface a tally, got %+v", st)
	}

	session.Verify()
	st := session.State()
	if st.Tally == nil || !st.Verified {
		t.Fatalf("expected tally after verify, got %+v", st)
	}
	if st.Tally.Checked != 1 || st.Tally.Total != 2 {
		t.Fatalf("expected 1/2, got %+v", st.Tally)
	}

	// Verify toggles the display off again.
	session.Verify()
	if st := session.State(); st.Tally != nil || st.Verified {
		t.Fatalf("second verify should hide the tally, got %+v", st)
	}
}

func TestFullMatch(t *testing.T) {
	session := newSession(t, tallyQuestion())

	session.Toggle(0)
	session.Toggle(1)
	session.Verify()

	st := session.State()
	if !st.FullMatch {
		t.Fatalf("expected full match, got %+v", st.Tally)
	}
}

func TestCorrectnessHiddenUntilVerified(t *testing.T) {
	session := newSession(t, tallyQuestion())

	for _, a := range session.State().Answers {
		if a.IsCorrect != nil {
			t.Fatalf("correctness must stay hidden before verification")
		}
	}
	session.Verify()
	for _, a := range session.State().Answers {
		if a.IsCorrect == nil {
			t.Fatalf("correctness should be revealed during verification")
		}
	}
}

func TestNavigationResetsCheckedState(t *testing.T) {
	second := domain.Question{
		ID:       "q2",
		Question: "Another",
		Answers: []domain.Answer{
			{ID: "b1", Answer: "yes", IsCorrect: true},
			{ID: "b2", Answer: "no", IsCorrect: false},
		},
	}
	session := newSession(t, tallyQuestion(), second)

	session.Toggle(0)
	session.Verify()

	if !session.Forward() {
		t.Fatalf("expected forward to move")
	}
	st := session.State()
	if st.Question != "Another" {
		t.Fatalf("expected second question, got %q", st.Question)
	}
	if st.Verified || st.Tally != nil {
		t.Fatalf("verification must reset on navigation")
	}
	for _, a := range st.Answers {
		if a.IsChecked {
			t.Fatalf("checked state must reset on navigation")
		}
	}

	if session.Forward() {
		t.Fatalf("no compose slot in learn mode, forward must be blocked at the end")
	}
	if !session.Backward() {
		t.Fatalf("expected backward to move")
	}
	if session.State().Question != "Pick the correct ones" {
		t.Fatalf("expected first question after backward")
	}
	if session.Backward() {
		t.Fatalf("backward must be blocked at the first question")
	}
}
