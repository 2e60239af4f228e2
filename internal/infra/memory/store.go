package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"

	"quizcamp-service/internal/domain"
	"quizcamp-service/internal/validate"
)

// Store is an in-memory implementation of app.Store, used by tests and demo
// mode. All returned values are deep copies.
type Store struct {
	mu      sync.RWMutex
	quizzes map[string]*domain.Quiz // keyed by internal id
}

func NewStore() *Store {
	return &Store{quizzes: make(map[string]*domain.Quiz)}
}

func (s *Store) CreateQuiz(_ context.Context, quiz domain.Quiz) (domain.Quiz, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	quiz.ID = uuid.NewString()
	quiz.Questions = nil
	stored := quiz
	s.quizzes[quiz.ID] = &stored
	return quiz, nil
}

func (s *Store) QuizByPublicID(_ context.Context, publicID string) (domain.Quiz, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	quiz := s.findByPublicIDLocked(publicID)
	if quiz == nil {
		return domain.Quiz{}, domain.ErrQuizNotFound
	}
	return copyQuiz(quiz), nil
}

func (s *Store) QuizByQuestionID(_ context.Context, questionID string) (domain.Quiz, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, quiz := range s.quizzes {
		for i := range quiz.Questions {
			if quiz.Questions[i].ID == questionID {
				return copyQuiz(quiz), nil
			}
		}
	}
	return domain.Quiz{}, domain.ErrQuestionNotFound
}

func (s *Store) Questions(_ context.Context, quizPublicID string) ([]domain.Question, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	quiz := s.findByPublicIDLocked(quizPublicID)
	if quiz == nil {
		return nil, domain.ErrQuizNotFound
	}
	out := copyQuiz(quiz).Questions
	if out == nil {
		out = []domain.Question{}
	}
	return out, nil
}

func (s *Store) CreateQuestion(_ context.Context, quizID string, question domain.Question) (domain.Question, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	quiz, ok := s.quizzes[quizID]
	if !ok {
		return domain.Question{}, domain.ErrQuizNotFound
	}

	question.ID = uuid.NewString()
	question.QuizID = quizID
	question.SequenceNumber = nextSequence(quiz)
	for i := range question.Answers {
		question.Answers[i].ID = uuid.NewString()
		question.Answers[i].QuestionID = question.ID
		question.Answers[i].SequenceNumber = i
	}
	quiz.Questions = append(quiz.Questions, question)
	return copyQuestion(&question), nil
}

func (s *Store) UpdateQuestion(_ context.Context, questionID string, patch validate.QuestionPatch) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	question := s.findQuestionLocked(questionID)
	if question == nil {
		return domain.ErrQuestionNotFound
	}

	if patch.Question != nil {
		question.Question = *patch.Question
	}
	for _, up := range patch.Answers {
		if up.ID != "" {
			if a := findAnswer(question, up.ID); a != nil {
				a.Answer = up.Answer
				a.IsCorrect = up.IsCorrect
				continue
			}
		}
		// Unknown or empty id: create, matching the upsert contract.
		question.Answers = append(question.Answers, domain.Answer{
			ID:             uuid.NewString(),
			QuestionID:     question.ID,
			Answer:         up.Answer,
			IsCorrect:      up.IsCorrect,
			SequenceNumber: nextAnswerSequence(question),
		})
	}
	for _, id := range patch.AnswersToDelete {
		for i := range question.Answers {
			if question.Answers[i].ID == id {
				question.Answers = append(question.Answers[:i], question.Answers[i+1:]...)
				break
			}
		}
	}
	return nil
}

func (s *Store) DeleteQuestion(_ context.Context, questionID string) (domain.Question, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, quiz := range s.quizzes {
		for i := range quiz.Questions {
			if quiz.Questions[i].ID == questionID {
				deleted := copyQuestion(&quiz.Questions[i])
				quiz.Questions = append(quiz.Questions[:i], quiz.Questions[i+1:]...)
				return deleted, nil
			}
		}
	}
	return domain.Question{}, domain.ErrQuestionNotFound
}

func (s *Store) findByPublicIDLocked(publicID string) *domain.Quiz {
	for _, quiz := range s.quizzes {
		if quiz.PublicID == publicID {
			return quiz
		}
	}
	return nil
}

func (s *Store) findQuestionLocked(questionID string) *domain.Question {
	for _, quiz := range s.quizzes {
		for i := range quiz.Questions {
			if quiz.Questions[i].ID == questionID {
				return &quiz.Questions[i]
			}
		}
	}
	return nil
}

func findAnswer(q *domain.Question, id string) *domain.Answer {
	for i := range q.Answers {
		if q.Answers[i].ID == id {
			return &q.Answers[i]
		}
	}
	return nil
}

func nextSequence(quiz *domain.Quiz) int {
	next := 0
	for i := range quiz.Questions {
		if quiz.Questions[i].SequenceNumber >= next {
			next = quiz.Questions[i].SequenceNumber + 1
		}
	}
	return next
}

func nextAnswerSequence(q *domain.Question) int {
	next := 0
	for i := range q.Answers {
		if q.Answers[i].SequenceNumber >= next {
			next = q.Answers[i].SequenceNumber + 1
		}
	}
	return next
}

func copyQuiz(quiz *domain.Quiz) domain.Quiz {
	out := *quiz
	out.Questions = make([]domain.Question, 0, len(quiz.Questions))
	for i := range quiz.Questions {
		out.Questions = append(out.Questions, copyQuestion(&quiz.Questions[i]))
	}
	sort.SliceStable(out.Questions, func(i, j int) bool {
		return out.Questions[i].SequenceNumber < out.Questions[j].SequenceNumber
	})
	return out
}

func copyQuestion(q *domain.Question) domain.Question {
	out := *q
	out.Answers = append([]domain.Answer(nil), q.Answers...)
	sort.SliceStable(out.Answers, func(i, j int) bool {
		return out.Answers[i].SequenceNumber < out.Answers[j].SequenceNumber
	})
	return out
}
