package errors

import (
	"errors"
)

// Class tells the dispatch runners how to react to a failed operation.
type Class int

const (
	// Transient failures may succeed when retried.
	Transient Class = iota
	// Permanent failures will never succeed for the same input.
	Permanent
	// Conflict means the write collided with an existing record.
	Conflict
)

func (c Class) String() string {
	switch c {
	case Permanent:
		return "permanent"
	case Conflict:
		return "conflict"
	default:
		return "transient"
	}
}

// DeliveryError tags an error with its Class. Collaborators (transport,
// repositories) produce it so callers never inspect error text.
type DeliveryError struct {
	Class Class
	Err   error
}

func (e *DeliveryError) Error() string {
	if e.Err == nil {
		return e.Class.String() + " failure"
	}
	return e.Err.Error()
}

func (e *DeliveryError) Unwrap() error {
	return e.Err
}

func NewPermanent(err error) error {
	return &DeliveryError{Class: Permanent, Err: err}
}

func NewTransient(err error) error {
	return &DeliveryError{Class: Transient, Err: err}
}

func NewConflict(err error) error {
	return &DeliveryError{Class: Conflict, Err: err}
}

// Classify returns the class attached to err. Untagged errors are Transient.
func Classify(err error) Class {
	var de *DeliveryError
	if errors.As(err, &de) {
		return de.Class
	}
	return Transient
}

func IsPermanent(err error) bool {
	return err != nil && Classify(err) == Permanent
}

func IsConflict(err error) bool {
	return err != nil && Classify(err) == Conflict
}
