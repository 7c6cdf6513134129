package quiz

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidQuiz matches any *InvalidQuizError.
	ErrInvalidQuiz = errors.New("invalid quiz")
	// ErrInvalidSelection matches any *InvalidSelectionError.
	ErrInvalidSelection = errors.New("invalid selection")
	// ErrNotRevealed is returned by Advance before the current question was answered.
	ErrNotRevealed = errors.New("current question not answered yet")
	// ErrNotFinished is returned by Score while questions remain.
	ErrNotFinished = errors.New("quiz not finished")
)

// InvalidQuizError reports the first malformed question found by Start.
// Index is -1 when the quiz itself is empty.
type InvalidQuizError struct {
	Index  int
	Reason string
}

func (e *InvalidQuizError) Error() string {
	if e.Index < 0 {
		return "invalid quiz: " + e.Reason
	}
	return fmt.Sprintf("invalid quiz: question %d: %s", e.Index+1, e.Reason)
}

func (e *InvalidQuizError) Is(target error) bool { return target == ErrInvalidQuiz }

// InvalidSelectionError is returned when the chosen option is not offered
// by the current question.
type InvalidSelectionError struct {
	Index  int
	Option string
}

func (e *InvalidSelectionError) Error() string {
	return fmt.Sprintf("invalid selection: %q is not an option of question %d", e.Option, e.Index+1)
}

func (e *InvalidSelectionError) Is(target error) bool { return target == ErrInvalidSelection }
