package app

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"quizcamp-service/internal/domain"
	"quizcamp-service/internal/validate"
)

// Store abstracts the relational persistence layer (Postgres, in-memory).
type Store interface {
	CreateQuiz(ctx context.Context, quiz domain.Quiz) (domain.Quiz, error)
	QuizByPublicID(ctx context.Context, publicID string) (domain.Quiz, error)
	// QuizByQuestionID resolves the quiz owning a question, for authorization.
	QuizByQuestionID(ctx context.Context, questionID string) (domain.Quiz, error)
	// Questions returns the quiz's questions ordered by sequence number,
	// answers within each question ordered likewise.
	Questions(ctx context.Context, quizPublicID string) ([]domain.Question, error)
	CreateQuestion(ctx context.Context, quizID string, question domain.Question) (domain.Question, error)
	// UpdateQuestion applies a partial update: answers upsert by id (update
	// when the id exists, create otherwise), then the listed ids are deleted.
	UpdateQuestion(ctx context.Context, questionID string, patch validate.QuestionPatch) error
	DeleteQuestion(ctx context.Context, questionID string) (domain.Question, error)
}

// QuestionSource serves cached question lists and drops them after mutations.
type QuestionSource interface {
	Questions(ctx context.Context, quizPublicID string) ([]domain.Question, error)
	Invalidate(ctx context.Context, quizPublicID string)
}

// QuizService contains the quiz authoring use cases. Reads go through the
// question cache; every successful mutation invalidates the quiz's cached
// list, so the follow-up refetch observes authoritative state.
type QuizService struct {
	store     Store
	questions QuestionSource
	logger    *zap.Logger
}

func NewQuizService(store Store, questions QuestionSource, logger *zap.Logger) *QuizService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &QuizService{store: store, questions: questions, logger: logger}
}

// CreateQuiz creates a quiz owned by the caller.
func (s *QuizService) CreateQuiz(ctx context.Context, p domain.Principal, input validate.NewQuiz) (domain.Quiz, error) {
	if !p.Authenticated {
		return domain.Quiz{}, domain.ErrUnauthorized
	}
	if err := validate.Check(input); err != nil {
		return domain.Quiz{}, err
	}
	quiz, err := s.store.CreateQuiz(ctx, domain.Quiz{
		PublicID:   uuid.NewString(),
		Name:       input.Name,
		Visibility: input.Visibility,
		AuthorID:   p.UserID,
	})
	if err != nil {
		return domain.Quiz{}, err
	}
	s.logger.Info("quiz created",
		zap.String("quizId", quiz.PublicID),
		zap.String("authorId", quiz.AuthorID),
		zap.String("visibility", string(quiz.Visibility)))
	return quiz, nil
}

// QuizByID fetches a quiz by its public id. Private quizzes are readable only
// by their author.
func (s *QuizService) QuizByID(ctx context.Context, p domain.Principal, publicID string) (domain.Quiz, error) {
	quiz, err := s.store.QuizByPublicID(ctx, publicID)
	if err != nil {
		return domain.Quiz{}, err
	}
	if quiz.Visibility == domain.VisibilityPrivate && quiz.AuthorID != p.UserID {
		return domain.Quiz{}, domain.ErrUnauthorized
	}
	return quiz, nil
}

// Questions returns the ordered question list for a quiz, served through the
// cache.
func (s *QuizService) Questions(ctx context.Context, quizPublicID string) ([]domain.Question, error) {
	return s.questions.Questions(ctx, quizPublicID)
}

// CreateQuestion appends a question to the quiz. Author-only.
func (s *QuizService) CreateQuestion(ctx context.Context, p domain.Principal, quizPublicID string, draft validate.QuestionDraft) (domain.Question, error) {
	if err := validate.Check(draft); err != nil {
		return domain.Question{}, err
	}
	quiz, err := s.store.QuizByPublicID(ctx, quizPublicID)
	if err != nil {
		return domain.Question{}, err
	}
	if quiz.AuthorID != p.UserID {
		return domain.Question{}, domain.ErrUnauthorized
	}

	question := domain.Question{Question: draft.Question}
	for i, a := range draft.Answers {
		question.Answers = append(question.Answers, domain.Answer{
			Answer:         a.Answer,
			IsCorrect:      a.IsCorrect,
			SequenceNumber: i,
		})
	}
	created, err := s.store.CreateQuestion(ctx, quiz.ID, question)
	if err != nil {
		return domain.Question{}, err
	}
	s.questions.Invalidate(ctx, quizPublicID)
	s.logger.Info("question created",
		zap.String("quizId", quizPublicID),
		zap.String("questionId", created.ID),
		zap.Int("answers", len(created.Answers)))
	return created, nil
}

// UpdateQuestion applies a partial update to a question. Author-only.
func (s *QuizService) UpdateQuestion(ctx context.Context, p domain.Principal, questionID string, patch validate.QuestionPatch) error {
	if err := validate.Check(patch); err != nil {
		return err
	}
	quiz, err := s.store.QuizByQuestionID(ctx, questionID)
	if err != nil {
		return err
	}
	if quiz.AuthorID != p.UserID {
		return domain.ErrUnauthorized
	}
	if patch.IsEmpty() {
		return nil
	}
	if err := s.store.UpdateQuestion(ctx, questionID, patch); err != nil {
		return err
	}
	s.questions.Invalidate(ctx, quiz.PublicID)
	s.logger.Info("question updated",
		zap.String("quizId", quiz.PublicID),
		zap.String("questionId", questionID),
		zap.Int("upserts", len(patch.Answers)),
		zap.Int("deletes", len(patch.AnswersToDelete)))
	return nil
}

// DeleteQuestion removes a question and returns it. Author-only. A question
// whose owning quiz cannot be resolved is an internal inconsistency.
func (s *QuizService) DeleteQuestion(ctx context.Context, p domain.Principal, questionID string) (domain.Question, error) {
	quiz, err := s.store.QuizByQuestionID(ctx, questionID)
	if err != nil {
		if err == domain.ErrQuestionNotFound {
			return domain.Question{}, domain.ErrQuizUnresolved
		}
		return domain.Question{}, err
	}
	if quiz.AuthorID != p.UserID {
		return domain.Question{}, domain.ErrUnauthorized
	}
	deleted, err := s.store.DeleteQuestion(ctx, questionID)
	if err != nil {
		return domain.Question{}, err
	}
	s.questions.Invalidate(ctx, quiz.PublicID)
	s.logger.Info("question deleted",
		zap.String("quizId", quiz.PublicID),
		zap.String("questionId", questionID))
	return deleted, nil
}
