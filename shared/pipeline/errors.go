package pipeline

import (
	"errors"
	"fmt"

	"github.com/kacperborowieckb/schema-wizard/shared/session"
)

var (
	ErrSessionNotFound   = session.ErrNotFound
	ErrPlanNotReady      = errors.New("design plan not generated yet")
	ErrTableNotFound     = errors.New("table not found in design plan")
	ErrNoSchemasYet      = errors.New("no table schemas generated yet")
	ErrInvalidAnswers    = errors.New("invalid answers")
	ErrUnsupportedTarget = errors.New("unsupported language or framework")
	ErrInvalidInput      = errors.New("invalid input")
	ErrGenerationFailed  = errors.New("generation failed")
)

// Stage names used in errors and logs.
const (
	StageQuestions = "generate questions"
	StagePlan      = "generate plan"
	StageSchema    = "generate table schema"
	StageCode      = "generate code"
)

// StageError is a failed generation. It matches both ErrGenerationFailed and
// the underlying gateway or extraction error.
type StageError struct {
	Stage   string
	Subject string
	Err     error
}

func (e *StageError) Error() string {
	if e.Subject == "" {
		return fmt.Sprintf("%s: %v: %v", e.Stage, ErrGenerationFailed, e.Err)
	}

	return fmt.Sprintf("%s (%s): %v: %v", e.Stage, e.Subject, ErrGenerationFailed, e.Err)
}

func (e *StageError) Unwrap() []error {
	return []error{ErrGenerationFailed, e.Err}
}

func generationFailed(stage, subject string, err error) error {
	return &StageError{Stage: stage, Subject: subject, Err: err}
}
