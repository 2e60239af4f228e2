// Package learn implements the read-oriented quiz-taking session: per-answer
// checked flags, deferred correctness verification, and plain forward/backward
// navigation without a compose slot. The session issues no writes.
package learn

import (
	"context"

	"quizcamp-service/internal/domain"
	"quizcamp-service/internal/paginate"
)

// QuestionSource loads the ordered question list for a quiz.
type QuestionSource interface {
	Questions(ctx context.Context, quizPublicID string) ([]domain.Question, error)
}

// Tally is the verification result for one question.
type Tally struct {
	// Checked counts answers that are correct and were checked by the learner.
	Checked int `json:"checked"`
	// Total counts all correct answers of the question.
	Total int `json:"total"`
}

// FullMatch reports whether the learner found every correct answer and
// nothing else counted against them.
func (t Tally) FullMatch() bool { return t.Total > 0 && t.Checked == t.Total }

// Session is the learn-mode state machine. Not safe for concurrent use.
type Session struct {
	questions []domain.Question
	page      *paginate.Cursor
	checked   []bool
	showTally bool
}

// New opens a learn session over the quiz's questions.
func New(ctx context.Context, source QuestionSource, quizPublicID string) (*Session, error) {
	questions, err := source.Questions(ctx, quizPublicID)
	if err != nil {
		return nil, err
	}
	s := &Session{
		questions: questions,
		page:      paginate.New(0, len(questions), false),
	}
	s.load()
	return s, nil
}

// load resets the checked flags and hides any previous verification.
func (s *Session) load() {
	n := 0
	if q, ok := s.Current(); ok {
		n = len(q.Answers)
	}
	s.checked = make([]bool, n)
	s.showTally = false
}

// Current returns the question under the cursor.
func (s *Session) Current() (domain.Question, bool) {
	if s.page.Page() >= len(s.questions) {
		return domain.Question{}, false
	}
	return s.questions[s.page.Page()], true
}

// Toggle flips one answer's checked state. The tally is not recomputed here;
// verification stays deferred until the learner asks for it.
func (s *Session) Toggle(i int) {
	if i < 0 || i >= len(s.checked) {
		return
	}
	s.checked[i] = !s.checked[i]
}

// Verify toggles the verification display. While shown, the tally compares
// the learner's checked answers against the ground-truth flags.
func (s *Session) Verify() {
	s.showTally = !s.showTally
}

// Tally computes the current question's verification result.
func (s *Session) Tally() Tally {
	q, ok := s.Current()
	if !ok {
		return Tally{}
	}
	t := Tally{}
	for i, a := range q.Answers {
		if !a.IsCorrect {
			continue
		}
		t.Total++
		if i < len(s.checked) && s.checked[i] {
			t.Checked++
		}
	}
	return t
}

// Forward moves to the next question and reports whether the cursor moved.
// At the last question the control is disabled; there is no compose slot.
func (s *Session) Forward() bool {
	if !s.page.Next() {
		return false
	}
	s.load()
	return true
}

// Backward moves to the previous question.
func (s *Session) Backward() bool {
	if !s.page.Previous() {
		return false
	}
	s.load()
	return true
}

// AnswerView is the transport-facing view of one answer in learn mode. The
// correctness flag is only revealed while verification is shown.
type AnswerView struct {
	Answer    string `json:"answer"`
	IsChecked bool   `json:"isChecked"`
	IsCorrect *bool  `json:"isCorrect,omitempty"`
}

// State is a full snapshot of the session for clients.
type State struct {
	Page        int          `json:"page"`
	PageCount   int          `json:"pageCount"`
	IsFirstPage bool         `json:"isFirstPage"`
	IsLastPage  bool         `json:"isLastPage"`
	Question    string       `json:"question"`
	Answers     []AnswerView `json:"answers"`
	Verified    bool         `json:"verified"`
	Tally       *Tally       `json:"tally,omitempty"`
	FullMatch   bool         `json:"fullMatch"`
}

// State renders the current snapshot.
func (s *Session) State() State {
	st := State{
		Page:        s.page.Page(),
		PageCount:   s.page.MaxPage(),
		IsFirstPage: s.page.IsFirstPage(),
		IsLastPage:  s.page.IsLastPage(),
		Verified:    s.showTally,
	}
	q, ok := s.Current()
	if !ok {
		return st
	}
	st.Question = q.Question
	for i, a := range q.Answers {
		view := AnswerView{Answer: a.Answer}
		if i < len(s.checked) {
			view.IsChecked = s.checked[i]
		}
		if s.showTally {
			correct := a.IsCorrect
			view.IsCorrect = &correct
		}
		st.Answers = append(st.Answers, view)
	}
	if s.showTally {
		tally := s.Tally()
		st.Tally = &tally
		st.FullMatch = tally.FullMatch()
	}
	return st
}
