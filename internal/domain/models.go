package domain

import "time"

// Visibility gates read access to a quiz for non-authors.
type Visibility string

const (
	VisibilityPrivate Visibility = "PRIVATE"
	VisibilityPublic  Visibility = "PUBLIC"
)

// Quiz is a top-level authored collection of questions.
type Quiz struct {
	ID         string     `json:"id"`
	PublicID   string     `json:"publicId"`
	Name       string     `json:"name"`
	Visibility Visibility `json:"visibility"`
	AuthorID   string     `json:"authorId"`
	CreatedAt  time.Time  `json:"createdAt"`
	Questions  []Question `json:"questions,omitempty"`
}

// Question is a prompt belonging to a quiz, with an ordered answer list.
type Question struct {
	ID             string   `json:"id"`
	QuizID         string   `json:"quizId"`
	Question       string   `json:"question"`
	SequenceNumber int      `json:"sequenceNumber"`
	Answers        []Answer `json:"answers"`
}

// Answer is a candidate response flagged correct or incorrect.
// ID is empty for draft answers that have not been persisted yet.
type Answer struct {
	ID             string `json:"id,omitempty"`
	QuestionID     string `json:"questionId,omitempty"`
	Answer         string `json:"answer"`
	IsCorrect      bool   `json:"isCorrect"`
	SequenceNumber int    `json:"sequenceNumber"`
}

// Principal identifies the caller of a use case. The zero value is anonymous.
type Principal struct {
	UserID        string
	Authenticated bool
}

// Anonymous is the principal for unauthenticated callers.
var Anonymous = Principal{}

// User builds an authenticated principal.
func User(id string) Principal {
	return Principal{UserID: id, Authenticated: true}
}
