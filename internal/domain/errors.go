package domain

import "errors"

var (
	// ErrQuizNotFound indicates the referenced quiz does not exist.
	ErrQuizNotFound = errors.New("quiz not found")
	// ErrQuestionNotFound indicates the referenced question does not exist.
	ErrQuestionNotFound = errors.New("question not found")
	// ErrUnauthorized is returned when the caller lacks author rights or the
	// quiz is private and the caller is not the author.
	ErrUnauthorized = errors.New("you don't have access to this quiz")
	// ErrQuizUnresolved signals an internal inconsistency: a question exists
	// but its owning quiz could not be resolved.
	ErrQuizUnresolved = errors.New("owning quiz could not be resolved")
)
