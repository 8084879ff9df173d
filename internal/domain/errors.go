package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is the kind shared by every lookup failure below.
	ErrNotFound = errors.New("not found")
	// ErrSessionNotFound is returned when no session matches an id or join code.
	ErrSessionNotFound = fmt.Errorf("quiz session %w", ErrNotFound)
	// ErrStudentNotFound is returned when a student acts before joining or after leaving.
	ErrStudentNotFound = fmt.Errorf("student %w", ErrNotFound)
	// ErrQuizNotFound indicates the quiz content could not be loaded.
	ErrQuizNotFound = fmt.Errorf("quiz %w", ErrNotFound)
	// ErrQuestionNotFound indicates a submitted question ID is invalid.
	ErrQuestionNotFound = fmt.Errorf("question %w", ErrNotFound)
	// ErrOptionNotFound indicates a submitted option ID is invalid.
	ErrOptionNotFound = fmt.Errorf("option %w", ErrNotFound)

	// ErrSessionClosed is returned for mutations on a completed session.
	ErrSessionClosed = errors.New("quiz session closed")
	// ErrAlreadyAnswered rejects a second answer from one student to one question.
	ErrAlreadyAnswered = errors.New("question already answered")
	// ErrQuestionNotActive rejects answers to a question that is not the current one.
	ErrQuestionNotActive = errors.New("question is not active")
	// ErrTimeUp rejects answers after the question countdown reached zero.
	ErrTimeUp = errors.New("time is up for this question")
	// ErrAnswerHidden is returned when the correct option may not be revealed yet.
	ErrAnswerHidden = errors.New("answer not revealed yet")
	// ErrCodeTaken is returned by session stores when a join code is already reserved.
	ErrCodeTaken = errors.New("join code already in use")
	// ErrCodeSpaceExhausted means no free join code was found after repeated attempts.
	ErrCodeSpaceExhausted = errors.New("could not allocate a free join code")
	// ErrValidation is the kind wrapped by every ValidationError.
	ErrValidation = errors.New("validation failed")
)

// ValidationError describes a malformed quiz definition or request field.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Reason
	}
	return e.Field + ": " + e.Reason
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

func invalid(field, format string, args ...any) error {
	return &ValidationError{Field: field, Reason: fmt.Sprintf(format, args...)}
}
