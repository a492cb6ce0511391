package contracts

import (
	"errors"
	"fmt"
)

var (
	// ErrNoFactorData is returned when the data source has no table for a date
	ErrNoFactorData = errors.New("no factor data")

	// ErrEmptySelection marks a cycle that produced no longs/shorts
	// 치명적 오류 아님: 사이클은 빈 결과로 종료
	ErrEmptySelection = errors.New("empty selection")

	// ErrCollaborator wraps every failure of a remote collaborator
	ErrCollaborator = errors.New("collaborator failure")

	// ErrNotFound is returned by stores with nothing saved yet
	ErrNotFound = errors.New("not found")
)

// CollaboratorError records which collaborator failed in which stage
type CollaboratorError struct {
	Stage        Stage
	Collaborator string
	Err          error
}

// NewCollaboratorError wraps err for a collaborator call in stage
func NewCollaboratorError(stage Stage, collaborator string, err error) *CollaboratorError {
	return &CollaboratorError{Stage: stage, Collaborator: collaborator, Err: err}
}

func (e *CollaboratorError) Error() string {
	return fmt.Sprintf("%s: %s: %v", e.Stage.ShortName(), e.Collaborator, e.Err)
}

func (e *CollaboratorError) Unwrap() error {
	return e.Err
}

// Is makes errors.Is(err, ErrCollaborator) true for every CollaboratorError
func (e *CollaboratorError) Is(target error) bool {
	return target == ErrCollaborator
}
