package vetting

import (
	"errors"
	"fmt"
)

//Error kinds. Concrete errors returned by the engines unwrap to one of
//these so callers can branch with errors.Is without inspecting strings.
var (
	ErrValidation = errors.New("validation failed")
	ErrConflict   = errors.New("operation not valid in current state")
	ErrNotFound   = errors.New("not found")
)

//ValidationError reports malformed or out-of-domain input: an answer that
//does not match the question type, a missing required value, a cyclic
//question parent.
type ValidationError struct {
	Entity string
	ID     uint
	Reason string
}

func (e *ValidationError) Error() string {
	if e.ID != 0 {
		return fmt.Sprintf("invalid %v %v: %v", e.Entity, e.ID, e.Reason)
	}
	return fmt.Sprintf("invalid %v: %v", e.Entity, e.Reason)
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

//ConflictError reports an operation that is not legal in the entity's
//current state: a duplicate active submission, a mutation of a terminal
//submission, or a lost transition race.
type ConflictError struct {
	Entity string
	ID     uint
	State  string
	Reason string
}

func (e *ConflictError) Error() string {
	if e.State != "" {
		return fmt.Sprintf("%v %v is %v: %v", e.Entity, e.ID, e.State, e.Reason)
	}
	return fmt.Sprintf("%v %v: %v", e.Entity, e.ID, e.Reason)
}

func (e *ConflictError) Unwrap() error { return ErrConflict }

//NotFoundError reports a referenced guild, member, question or submission
//that does not exist.
type NotFoundError struct {
	Entity string
	ID     uint
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%v %v does not exist", e.Entity, e.ID)
}

func (e *NotFoundError) Unwrap() error { return ErrNotFound }
