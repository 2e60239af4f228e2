// Package editor implements the question edit session: a form-state container
// composed with two pagination cursors (question page, focused answer) that
// tracks per-field dirtiness and submits minimal diffs through the gateway.
package editor

import (
	"context"
	"fmt"

	"quizcamp-service/internal/domain"
	"quizcamp-service/internal/paginate"
	"quizcamp-service/internal/validate"
)

// Gateway is the asynchronous CRUD boundary the session talks to. Mutations
// are settled only once the follow-up Questions refetch has returned; the
// session never advances its cursors before settlement.
type Gateway interface {
	Questions(ctx context.Context, quizPublicID string) ([]domain.Question, error)
	CreateQuestion(ctx context.Context, p domain.Principal, quizPublicID string, draft validate.QuestionDraft) (domain.Question, error)
	UpdateQuestion(ctx context.Context, p domain.Principal, questionID string, patch validate.QuestionPatch) error
}

// TargetKind discriminates what the question-page cursor points at.
type TargetKind int

const (
	// ExistingQuestion means the cursor rests on a persisted question.
	ExistingQuestion TargetKind = iota
	// NewQuestion means the cursor rests on the one-past-the-end compose slot.
	NewQuestion
)

// Target is the resolved editing target for the current page.
type Target struct {
	Kind  TargetKind
	Index int // valid only for ExistingQuestion
}

// answerForm is the form state for a single answer row.
type answerForm struct {
	id      string // persisted id, empty for drafts
	isNew   bool   // created in this session, must be sent on save
	text    Field[string]
	correct Field[bool]
}

func (a *answerForm) dirty() bool {
	return a.isNew || a.text.Dirty() || a.correct.Dirty()
}

// Session mediates between the loaded question list and mutation intents.
// It is not safe for concurrent use; drive it from a single loop.
type Session struct {
	gateway   Gateway
	principal domain.Principal
	quizID    string

	questions []domain.Question
	page      *paginate.Cursor
	focus     *paginate.Cursor

	questionID     string // persisted id of the loaded question, empty in the compose slot
	questionText   Field[string]
	answers        []*answerForm
	pendingDeletes []string
}

// New opens an edit session for a quiz, fetching its question list. The
// cursor starts on the first question, or directly in the compose slot for an
// empty quiz.
func New(ctx context.Context, gateway Gateway, principal domain.Principal, quizPublicID string) (*Session, error) {
	s := &Session{
		gateway:   gateway,
		principal: principal,
		quizID:    quizPublicID,
	}
	questions, err := gateway.Questions(ctx, quizPublicID)
	if err != nil {
		return nil, err
	}
	s.questions = questions
	s.page = paginate.New(0, len(questions), true)
	s.load()
	return s, nil
}

// Target resolves what the current page points at.
func (s *Session) Target() Target {
	if s.page.IsOverflow() {
		return Target{Kind: NewQuestion}
	}
	return Target{Kind: ExistingQuestion, Index: s.page.Page()}
}

// load resets the form to the question under the cursor (or a blank draft in
// the compose slot), clears pending deletions and refocuses answer 0.
func (s *Session) load() {
	s.pendingDeletes = nil
	s.answers = nil

	if t := s.Target(); t.Kind == ExistingQuestion {
		q := s.questions[t.Index]
		s.questionID = q.ID
		s.questionText = NewField(q.Question)
		for _, a := range q.Answers {
			s.answers = append(s.answers, &answerForm{
				id:      a.ID,
				text:    NewField(a.Answer),
				correct: NewField(a.IsCorrect),
			})
		}
	} else {
		s.questionID = ""
		s.questionText = NewField("")
		s.answers = []*answerForm{{isNew: true, text: NewField(""), correct: NewField(false)}}
	}
	s.focus = paginate.New(0, len(s.answers), false)
}

// EditQuestionText updates the question prompt.
func (s *Session) EditQuestionText(text string) {
	s.questionText.Set(text)
}

// EditAnswerText updates one answer's text.
func (s *Session) EditAnswerText(i int, text string) error {
	if err := s.checkIndex(i); err != nil {
		return err
	}
	s.answers[i].text.Set(text)
	return nil
}

// SetAnswerCorrect flips one answer's correctness flag.
func (s *Session) SetAnswerCorrect(i int, correct bool) error {
	if err := s.checkIndex(i); err != nil {
		return err
	}
	s.answers[i].correct.Set(correct)
	return nil
}

// MoveUp swaps the answer with its predecessor; the focus follows the moved
// item. Reordering is scratch state and is not part of the saved diff.
func (s *Session) MoveUp(i int) error {
	if err := s.checkIndex(i); err != nil {
		return err
	}
	if i == 0 {
		return nil
	}
	s.answers[i-1], s.answers[i] = s.answers[i], s.answers[i-1]
	s.focus.SetPage(i - 1)
	return nil
}

// MoveDown swaps the answer with its successor; the focus follows.
func (s *Session) MoveDown(i int) error {
	if err := s.checkIndex(i); err != nil {
		return err
	}
	if i == len(s.answers)-1 {
		return nil
	}
	s.answers[i], s.answers[i+1] = s.answers[i+1], s.answers[i]
	s.focus.SetPage(i + 1)
	return nil
}

// DeleteAnswer removes the answer at i. Persisted answers join the
// pending-deletion list for the next save; the focus clamps into the
// shortened list.
func (s *Session) DeleteAnswer(i int) error {
	if err := s.checkIndex(i); err != nil {
		return err
	}
	if id := s.answers[i].id; id != "" {
		s.pendingDeletes = append(s.pendingDeletes, id)
	}
	s.answers = append(s.answers[:i], s.answers[i+1:]...)
	s.focus.SetMaxPage(len(s.answers))
	return nil
}

// AppendAnswer adds a blank incorrect answer at the end of the list.
func (s *Session) AppendAnswer() {
	s.answers = append(s.answers, &answerForm{isNew: true, text: NewField(""), correct: NewField(false)})
	s.focus.SetMaxPage(len(s.answers))
}

// InsertAnswerAfter adds a blank incorrect answer right after index i and
// focuses it.
func (s *Session) InsertAnswerAfter(i int) error {
	if err := s.checkIndex(i); err != nil {
		return err
	}
	blank := &answerForm{isNew: true, text: NewField(""), correct: NewField(false)}
	s.answers = append(s.answers[:i+1], append([]*answerForm{blank}, s.answers[i+1:]...)...)
	s.focus.SetMaxPage(len(s.answers))
	s.focus.SetPage(i + 1)
	return nil
}

// FocusAnswer moves the per-answer edit toolbar to index i (clamped).
func (s *Session) FocusAnswer(i int) {
	s.focus.SetPage(i)
}

// Validate checks the current form values against the question schema.
func (s *Session) Validate() error {
	draft := validate.QuestionDraft{Question: s.questionText.Value()}
	for _, a := range s.answers {
		draft.Answers = append(draft.Answers, validate.AnswerDraft{
			Answer:    a.text.Value(),
			IsCorrect: a.correct.Value(),
		})
	}
	return validate.Check(draft)
}

// Valid reports whether save and forward navigation are enabled.
func (s *Session) Valid() bool { return s.Validate() == nil }

// Dirty reports whether the loaded question has uncommitted edits.
func (s *Session) Dirty() bool {
	if s.questionText.Dirty() || len(s.pendingDeletes) > 0 {
		return true
	}
	for _, a := range s.answers {
		if a.dirty() {
			return true
		}
	}
	return false
}

// DirtyData computes the minimal change-set: the question text only when
// dirty, only the answers with a dirty sub-field (carrying their unchanged
// sub-fields along so the stored row stays intact), and the pending-deletion
// ids. Unmodified answers are never re-sent.
func (s *Session) DirtyData() validate.QuestionPatch {
	patch := validate.QuestionPatch{}
	if s.questionText.Dirty() {
		text := s.questionText.Value()
		patch.Question = &text
	}
	for _, a := range s.answers {
		if !a.dirty() {
			continue
		}
		patch.Answers = append(patch.Answers, validate.AnswerUpsert{
			ID:        a.id,
			Answer:    a.text.Value(),
			IsCorrect: a.correct.Value(),
		})
	}
	patch.AnswersToDelete = append(patch.AnswersToDelete, s.pendingDeletes...)
	return patch
}

// Forward navigates to the next page. In the compose slot it submits the
// draft, waits for the refetched list and lands in the next compose slot,
// ready for another question. On a dirty existing question it flushes the
// diff first. The cursor only moves after the mutation has settled.
func (s *Session) Forward(ctx context.Context) error {
	switch s.Target().Kind {
	case NewQuestion:
		if err := s.Validate(); err != nil {
			return err
		}
		draft := validate.QuestionDraft{Question: s.questionText.Value()}
		for _, a := range s.answers {
			draft.Answers = append(draft.Answers, validate.AnswerDraft{
				Answer:    a.text.Value(),
				IsCorrect: a.correct.Value(),
			})
		}
		if _, err := s.gateway.CreateQuestion(ctx, s.principal, s.quizID, draft); err != nil {
			return err
		}
		if err := s.refresh(ctx); err != nil {
			return err
		}
		s.page.SetPage(len(s.questions))
	default:
		if err := s.flush(ctx); err != nil {
			return err
		}
		s.page.Next()
	}
	s.load()
	return nil
}

// Backward navigates to the previous page, flushing uncommitted edits first.
// The refetch settles before the cursor moves so a save that changes the list
// length cannot skip a page.
func (s *Session) Backward(ctx context.Context) error {
	if err := s.flush(ctx); err != nil {
		return err
	}
	s.page.Previous()
	s.load()
	return nil
}

// flush submits the diff of a dirty existing question and refetches. Draft
// state in the compose slot is scratch and is discarded by navigation.
func (s *Session) flush(ctx context.Context) error {
	if s.Target().Kind != ExistingQuestion || !s.Dirty() {
		return nil
	}
	if err := s.Validate(); err != nil {
		return err
	}
	if err := s.gateway.UpdateQuestion(ctx, s.principal, s.questionID, s.DirtyData()); err != nil {
		return err
	}
	return s.refresh(ctx)
}

// refresh reloads the authoritative question list and realigns the cursor
// bound. The refetched list is the sole reconciliation mechanism.
func (s *Session) refresh(ctx context.Context) error {
	questions, err := s.gateway.Questions(ctx, s.quizID)
	if err != nil {
		return err
	}
	s.questions = questions
	s.page.SetMaxPage(len(questions))
	return nil
}

// Reload refetches the question list and resets the form at the current page.
func (s *Session) Reload(ctx context.Context) error {
	if err := s.refresh(ctx); err != nil {
		return err
	}
	s.load()
	return nil
}

func (s *Session) checkIndex(i int) error {
	if i < 0 || i >= len(s.answers) {
		return fmt.Errorf("answer index %d out of range [0,%d)", i, len(s.answers))
	}
	return nil
}
