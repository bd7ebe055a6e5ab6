package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrEmptyQuiz is returned when a quiz with zero questions is scored.
	// The attempt is invalid and must not be persisted.
	ErrEmptyQuiz = errors.New("quiz has no questions")
	// ErrQuizNotFound indicates the quiz content could not be loaded.
	ErrQuizNotFound = errors.New("quiz not found")
	// ErrProfileNotFound indicates no profile exists for the user.
	ErrProfileNotFound = errors.New("student profile not found")
)

// AlignmentError reports a submission whose answers do not line up with the
// quiz's questions. Callers should reject the attempt and ask for
// resubmission rather than guess the alignment.
type AlignmentError struct {
	Index      int
	WantID     string // question ID at this position
	GotID      string // question ID the answer claims
	WantLen    int
	GotLen     int
	LengthOnly bool
}

func (e *AlignmentError) Error() string {
	if e.LengthOnly {
		return fmt.Sprintf("answers misaligned: %d answers for %d questions", e.GotLen, e.WantLen)
	}
	return fmt.Sprintf("answers misaligned at position %d: question %q, answer references %q", e.Index, e.WantID, e.GotID)
}
