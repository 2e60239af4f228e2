package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"quizcamp-service/internal/domain"
	"quizcamp-service/internal/validate"
)

// Store is the Postgres implementation of app.Store over the
// quizzes/questions/answers tables.
type Store struct {
	pool *pgxpool.Pool
}

func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

func (s *Store) CreateQuiz(ctx context.Context, quiz domain.Quiz) (domain.Quiz, error) {
	quiz.ID = uuid.NewString()
	err := s.pool.QueryRow(ctx,
		`INSERT INTO quizzes (id, public_id, name, visibility, author_id)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING created_at`,
		quiz.ID, quiz.PublicID, quiz.Name, string(quiz.Visibility), quiz.AuthorID,
	).Scan(&quiz.CreatedAt)
	if err != nil {
		return domain.Quiz{}, fmt.Errorf("create quiz: %w", err)
	}
	return quiz, nil
}

func (s *Store) QuizByPublicID(ctx context.Context, publicID string) (domain.Quiz, error) {
	return s.quizBy(ctx,
		`SELECT id, public_id, name, visibility, author_id, created_at
		 FROM quizzes WHERE public_id=$1`, publicID)
}

func (s *Store) QuizByQuestionID(ctx context.Context, questionID string) (domain.Quiz, error) {
	quiz, err := s.quizBy(ctx,
		`SELECT z.id, z.public_id, z.name, z.visibility, z.author_id, z.created_at
		 FROM quizzes z JOIN questions q ON q.quiz_id = z.id
		 WHERE q.id=$1`, questionID)
	if err == domain.ErrQuizNotFound {
		return domain.Quiz{}, domain.ErrQuestionNotFound
	}
	return quiz, err
}

func (s *Store) quizBy(ctx context.Context, query, arg string) (domain.Quiz, error) {
	var quiz domain.Quiz
	var visibility string
	err := s.pool.QueryRow(ctx, query, arg).Scan(
		&quiz.ID, &quiz.PublicID, &quiz.Name, &visibility, &quiz.AuthorID, &quiz.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Quiz{}, domain.ErrQuizNotFound
	}
	if err != nil {
		return domain.Quiz{}, fmt.Errorf("load quiz: %w", err)
	}
	quiz.Visibility = domain.Visibility(visibility)
	return quiz, nil
}

func (s *Store) Questions(ctx context.Context, quizPublicID string) ([]domain.Question, error) {
	quiz, err := s.QuizByPublicID(ctx, quizPublicID)
	if err != nil {
		return nil, err
	}

	rows, err := s.pool.Query(ctx,
		`SELECT id, quiz_id, question, sequence_number
		 FROM questions WHERE quiz_id=$1
		 ORDER BY sequence_number ASC`, quiz.ID)
	if err != nil {
		return nil, fmt.Errorf("load questions: %w", err)
	}
	defer rows.Close()

	questions := []domain.Question{}
	index := map[string]int{}
	for rows.Next() {
		var q domain.Question
		if err := rows.Scan(&q.ID, &q.QuizID, &q.Question, &q.SequenceNumber); err != nil {
			return nil, fmt.Errorf("scan question: %w", err)
		}
		index[q.ID] = len(questions)
		questions = append(questions, q)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("load questions: %w", err)
	}

	answerRows, err := s.pool.Query(ctx,
		`SELECT a.id, a.question_id, a.answer, a.is_correct, a.sequence_number
		 FROM answers a JOIN questions q ON q.id = a.question_id
		 WHERE q.quiz_id=$1
		 ORDER BY a.sequence_number ASC`, quiz.ID)
	if err != nil {
		return nil, fmt.Errorf("load answers: %w", err)
	}
	defer answerRows.Close()

	for answerRows.Next() {
		var a domain.Answer
		if err := answerRows.Scan(&a.ID, &a.QuestionID, &a.Answer, &a.IsCorrect, &a.SequenceNumber); err != nil {
			return nil, fmt.Errorf("scan answer: %w", err)
		}
		if i, ok := index[a.QuestionID]; ok {
			questions[i].Answers = append(questions[i].Answers, a)
		}
	}
	if err := answerRows.Err(); err != nil {
		return nil, fmt.Errorf("load answers: %w", err)
	}
	return questions, nil
}

func (s *Store) CreateQuestion(ctx context.Context, quizID string, question domain.Question) (domain.Question, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return domain.Question{}, err
	}
	defer tx.Rollback(ctx)

	question.ID = uuid.NewString()
	question.QuizID = quizID
	err = tx.QueryRow(ctx,
		`INSERT INTO questions (id, quiz_id, question, sequence_number)
		 SELECT $1, $2, $3, COALESCE(MAX(sequence_number)+1, 0)
		 FROM questions WHERE quiz_id=$2
		 RETURNING sequence_number`,
		question.ID, quizID, question.Question,
	).Scan(&question.SequenceNumber)
	if err != nil {
		return domain.Question{}, fmt.Errorf("create question: %w", err)
	}

	for i := range question.Answers {
		question.Answers[i].ID = uuid.NewString()
		question.Answers[i].QuestionID = question.ID
		question.Answers[i].SequenceNumber = i
		if _, err := tx.Exec(ctx,
			`INSERT INTO answers (id, question_id, answer, is_correct, sequence_number)
			 VALUES ($1, $2, $3, $4, $5)`,
			question.Answers[i].ID, question.ID, question.Answers[i].Answer,
			question.Answers[i].IsCorrect, i,
		); err != nil {
			return domain.Question{}, fmt.Errorf("create answer: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return domain.Question{}, err
	}
	return question, nil
}

func (s *Store) UpdateQuestion(ctx context.Context, questionID string, patch validate.QuestionPatch) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if patch.Question != nil {
		tag, err := tx.Exec(ctx,
			`UPDATE questions SET question=$2 WHERE id=$1`, questionID, *patch.Question)
		if err != nil {
			return fmt.Errorf("update question text: %w", err)
		}
		if tag.RowsAffected() == 0 {
			return domain.ErrQuestionNotFound
		}
	}

	for _, up := range patch.Answers {
		if up.ID != "" {
			tag, err := tx.Exec(ctx,
				`UPDATE answers SET answer=$2, is_correct=$3 WHERE id=$1 AND question_id=$4`,
				up.ID, up.Answer, up.IsCorrect, questionID)
			if err != nil {
				return fmt.Errorf("update answer: %w", err)
			}
			if tag.RowsAffected() > 0 {
				continue
			}
		}
		// Unknown or empty id: create, matching the upsert contract.
		if _, err := tx.Exec(ctx,
			`INSERT INTO answers (id, question_id, answer, is_correct, sequence_number)
			 SELECT $1, $2, $3, $4, COALESCE(MAX(sequence_number)+1, 0)
			 FROM answers WHERE question_id=$2`,
			uuid.NewString(), questionID, up.Answer, up.IsCorrect,
		); err != nil {
			return fmt.Errorf("insert answer: %w", err)
		}
	}

	if len(patch.AnswersToDelete) > 0 {
		if _, err := tx.Exec(ctx,
			`DELETE FROM answers WHERE question_id=$1 AND id = ANY($2)`,
			questionID, patch.AnswersToDelete,
		); err != nil {
			return fmt.Errorf("delete answers: %w", err)
		}
	}

	return tx.Commit(ctx)
}

func (s *Store) DeleteQuestion(ctx context.Context, questionID string) (domain.Question, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return domain.Question{}, err
	}
	defer tx.Rollback(ctx)

	var question domain.Question
	err = tx.QueryRow(ctx,
		`SELECT id, quiz_id, question, sequence_number FROM questions WHERE id=$1`,
		questionID,
	).Scan(&question.ID, &question.QuizID, &question.Question, &question.SequenceNumber)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Question{}, domain.ErrQuestionNotFound
	}
	if err != nil {
		return domain.Question{}, fmt.Errorf("load question: %w", err)
	}

	rows, err := tx.Query(ctx,
		`SELECT id, question_id, answer, is_correct, sequence_number
		 FROM answers WHERE question_id=$1 ORDER BY sequence_number ASC`, questionID)
	if err != nil {
		return domain.Question{}, fmt.Errorf("load answers: %w", err)
	}
	for rows.Next() {
		var a domain.Answer
		if err := rows.Scan(&a.ID, &a.QuestionID, &a.Answer, &a.IsCorrect, &a.SequenceNumber); err != nil {
			rows.Close()
			return domain.Question{}, fmt.Errorf("scan answer: %w", err)
		}
		question.Answers = append(question.Answers, a)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return domain.Question{}, fmt.Errorf("load answers: %w", err)
	}

	// Answers cascade via their foreign key.
	if _, err := tx.Exec(ctx, `DELETE FROM questions WHERE id=$1`, questionID); err != nil {
		return domain.Question{}, fmt.Errorf("delete question: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return domain.Question{}, err
	}
	return question, nil
}
