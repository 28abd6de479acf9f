package errors

import (
	"errors"
)

const (
	NotFound                = "NotFound"
	notFoundMessage         = "record not found"
	ValidationError         = "ValidationError"
	validationMessage       = "validation error"
	RepositoryError         = "RepositoryError"
	repositoryMessage       = "error in repository operation"
	NotAuthenticated        = "NotAuthenticated"
	notAuthenticatedMessage = "not Authenticated"
	NotAuthorized           = "NotAuthorized"
	notAuthorizedMessage    = "not authorized"
	UnknownError            = "UnknownError"
	unknownMessage          = "something went wrong"
)

// AppError carries an error together with the category used to pick an HTTP status.
type AppError struct {
	Err  error
	Type string
}

func NewAppError(err error, errType string) *AppError {
	return &AppError{
		Err:  err,
		Type: errType,
	}
}

func NewAppErrorWithType(errType string) *AppError {
	var err error

	switch errType {
	case NotFound:
		err = errors.New(notFoundMessage)
	case ValidationError:
		err = errors.New(validationMessage)
	case RepositoryError:
		err = errors.New(repositoryMessage)
	case NotAuthenticated:
		err = errors.New(notAuthenticatedMessage)
	case NotAuthorized:
		err = errors.New(notAuthorizedMessage)
	default:
		err = errors.New(unknownMessage)
	}

	return &AppError{
		Err:  err,
		Type: errType,
	}
}

func (appErr *AppError) Error() string {
	return appErr.Err.Error()
}

func (appErr *AppError) Unwrap() error {
	return appErr.Err
}

// IsType reports whether err is an AppError of the given type.
func IsType(err error, errType string) bool {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Type == errType
	}
	return false
}
