// Package errors contains the error taxonomy shared by the CDP clients,
// the transport and the token server.
package errors

import (
	"errors"
	"net/http"
)

// Category defines error category
type Category int

const (
	// CategoryNoError is returned for nil errors.
	CategoryNoError Category = iota
	// CategoryDataError The caller sent invalid data, either rejected locally
	// before a request was made or by the API with a 400.
	CategoryDataError
	// CategoryUnauthorized The API key or token was rejected
	CategoryUnauthorized
	// CategoryForbidden The credentials are valid but not allowed to perform the operation
	CategoryForbidden
	// CategoryResourceNotFound The client is attempting to access a resource that does not exist
	CategoryResourceNotFound
	// CategoryNotSupported The requested functionality is not supported
	CategoryNotSupported
	// CategoryDataConflict The resource already exists or the idempotency key was reused with another payload
	CategoryDataConflict
	// CategoryLocked The resource is locked
	CategoryLocked
	// CategoryRateLimited The API rejected the request because of rate limiting
	CategoryRateLimited
	// CategoryDependencyFailure A dependent service is throwing errors
	CategoryDependencyFailure
	// CategoryGeneralError The service failed in an unexpected way
	CategoryGeneralError
	// CategoryRecovering The service is failing but is expected to recover
	CategoryRecovering
	// CategoryConnectionTimeout Connection to a dependent service timing out
	CategoryConnectionTimeout
	// CategoryNetwork The request never produced an HTTP response
	CategoryNetwork
	// CategoryAuthentication Local credential handling failed (key parsing, signing, missing wallet secret)
	CategoryAuthentication
)

func (c Category) String() string {
	switch c {
	case CategoryNoError:
		return "CategoryNoError"
	case CategoryDataError:
		return "CategoryDataError"
	case CategoryUnauthorized:
		return "CategoryUnauthorized"
	case CategoryForbidden:
		return "CategoryForbidden"
	case CategoryResourceNotFound:
		return "CategoryResourceNotFound"
	case CategoryNotSupported:
		return "CategoryNotSupported"
	case CategoryDataConflict:
		return "CategoryDataConflict"
	case CategoryLocked:
		return "CategoryLocked"
	case CategoryRateLimited:
		return "CategoryRateLimited"
	case CategoryDependencyFailure:
		return "CategoryDependencyFailure"
	case CategoryRecovering:
		return "CategoryRecovering"
	case CategoryConnectionTimeout:
		return "CategoryConnectionTimeout"
	case CategoryNetwork:
		return "CategoryNetwork"
	case CategoryAuthentication:
		return "CategoryAuthentication"
	default:
		return "CategoryGeneralError"
	}
}

// CategoryFromStatus maps an HTTP status code to a Category.
func CategoryFromStatus(status int) Category {
	switch status {
	case http.StatusBadRequest, http.StatusUnprocessableEntity:
		return CategoryDataError
	case http.StatusUnauthorized:
		return CategoryUnauthorized
	case http.StatusForbidden:
		return CategoryForbidden
	case http.StatusNotFound:
		return CategoryResourceNotFound
	case http.StatusMethodNotAllowed, http.StatusNotImplemented:
		return CategoryNotSupported
	case http.StatusConflict:
		return CategoryDataConflict
	case http.StatusLocked:
		return CategoryLocked
	case http.StatusTooManyRequests:
		return CategoryRateLimited
	case http.StatusBadGateway:
		return CategoryDependencyFailure
	case http.StatusServiceUnavailable:
		return CategoryRecovering
	case http.StatusGatewayTimeout:
		return CategoryConnectionTimeout
	}
	if status >= 200 && status < 300 {
		return CategoryNoError
	}
	if status >= 400 && status < 500 {
		return CategoryDataError
	}
	return CategoryGeneralError
}

// categorized is implemented by every error type of this package.
type categorized interface {
	Category() Category
}

// ServiceError represents a categorized error with a message
// that is safe to return to callers of the token server.
type ServiceError struct {
	Cat     Category
	Message string
	Err     error
}

// Error method to comply with error interface
func (err ServiceError) Error() string {
	if err.Err != nil {
		return err.Err.Error()
	}
	return err.Message
}

// Unwrap returns the underlying error
func (err ServiceError) Unwrap() error {
	return err.Err
}

// Category returns the category of the error.
func (err ServiceError) Category() Category {
	return err.Cat
}

// Is implements the custom condition to check an error is equal to a service error
func (err ServiceError) Is(target error) bool {
	return err.Message == target.Error()
}

// CategoryOf returns the category of err, CategoryGeneralError for
// foreign errors and CategoryNoError for nil.
func CategoryOf(err error) Category {
	if err == nil {
		return CategoryNoError
	}
	var c categorized
	if errors.As(err, &c) {
		return c.Category()
	}
	return CategoryGeneralError
}

// Is checks that provided error belongs to the desired Category
func Is(err error, cat Category) bool {
	return err != nil && CategoryOf(err) == cat
}

// IsNotFound reports whether err is a 404 style error.
func IsNotFound(err error) bool {
	return Is(err, CategoryResourceNotFound)
}

// IsConflict reports whether err is a 409 style error.
func IsConflict(err error) bool {
	return Is(err, CategoryDataConflict)
}

// IsInternalError checks that provided error is a Internal system error
func IsInternalError(err error) bool {
	return CategoryOf(err) >= CategoryDependencyFailure
}

// GeneralError returns a general service error
// this error mesage sent to the user is "Internal Server Error"
// the error passed is logged in the logger
func GeneralError(err error) error {
	if err == nil {
		err = errors.New("internal server error")
	}
	return &ServiceError{
		Cat:     CategoryGeneralError,
		Message: "Internal Server Error",
		Err:     err,
	}
}

// BadRequestError returns an error with category DataError
// the error message provided is returned to the user
// the error object provided is logged in logger
func BadRequestError(err error, message string) error {
	if err == nil {
		err = errors.New("bad request:" + message)
	}
	return &ServiceError{
		Cat:     CategoryDataError,
		Message: message,
		Err:     err,
	}
}

// UnAuthorizedError returns an error with category CategoryUnauthorized
// the error message provided is returned to the user
// the error object provided is logged in logger
func UnAuthorizedError(err error, message string) error {
	if err == nil {
		err = errors.New("unauthorized")
	}
	return &ServiceError{
		Cat:     CategoryUnauthorized,
		Message: message,
		Err:     err,
	}
}

// ForbiddenError returns an error with category CategoryForbidden
// the error message provided is returned to the user
func ForbiddenError(err error, message string) error {
	if err == nil {
		err = errors.New("forbidden: " + message)
	}
	return &ServiceError{
		Cat:     CategoryForbidden,
		Message: message,
		Err:     err,
	}
}

// StatusCode returns the HTTP status code for the error category
func (err ServiceError) StatusCode() int {
	return StatusForCategory(err.Cat)
}

// StatusForCategory returns the HTTP status code a server should answer with
// for the category.
func StatusForCategory(cat Category) int {
	switch cat {
	case CategoryDataError:
		return http.StatusBadRequest
	case CategoryUnauthorized, CategoryAuthentication:
		return http.StatusUnauthorized
	case CategoryForbidden:
		return http.StatusForbidden
	case CategoryResourceNotFound:
		return http.StatusNotFound
	case CategoryNotSupported:
		return http.StatusMethodNotAllowed
	case CategoryDataConflict:
		return http.StatusConflict
	case CategoryLocked:
		return http.StatusLocked
	case CategoryRateLimited:
		return http.StatusTooManyRequests
	case CategoryDependencyFailure, CategoryNetwork:
		return http.StatusBadGateway
	case CategoryRecovering:
		return http.StatusServiceUnavailable
	case CategoryConnectionTimeout:
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}
