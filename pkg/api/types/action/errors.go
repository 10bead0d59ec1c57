package action

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	kerr "github.com/opst/vocabfab/pkg/domain/errors"
)

// Help returns the help reference of the action.
func Help(name string) string {
	return Root + "/help_show?name=" + name
}

// NewError builds an error response as *echo.HTTPError.
//
// echo's HTTPErrorHandler renders it as the envelope.
func NewError(code int, name string, e *Error, cause error) *echo.HTTPError {
	he := echo.NewHTTPError(code, Response[any]{Help: Help(name), Success: false, Error: e})
	if cause != nil {
		return he.SetInternal(cause)
	}
	return he.SetInternal(e)
}

func NotFound(name string, message string, cause error) *echo.HTTPError {
	return NewError(http.StatusNotFound, name, &Error{Type: NotFoundError, Message: message}, cause)
}

func Invalid(name string, message string, fields map[string][]string, cause error) *echo.HTTPError {
	return NewError(
		http.StatusConflict, name,
		&Error{Type: ValidationError, Message: message, Fields: fields},
		cause,
	)
}

// InUse is a Validation Error telling the field value is already taken.
func InUse(name string, field string, what string, cause error) *echo.HTTPError {
	return Invalid(
		name, "",
		map[string][]string{field: {"That " + what + " " + AlreadyInUse}},
		cause,
	)
}

func Unauthorized(name string, message string, cause error) *echo.HTTPError {
	return NewError(http.StatusForbidden, name, &Error{Type: AuthorizationError, Message: message}, cause)
}

func BadRequest(name string, message string, cause error) *echo.HTTPError {
	return NewError(http.StatusBadRequest, name, &Error{Type: BadRequestError, Message: message}, cause)
}

func InternalServerError(name string, cause error) *echo.HTTPError {
	return NewError(
		http.StatusInternalServerError, name,
		&Error{Type: InternalError, Message: "unexpected error. ask your system admin."},
		cause,
	)
}

// FromError converts an error from actions into an error response.
//
// what is the kind of entity which the action handles, used in messages (like "vocabulary").
func FromError(name string, what string, err error) *echo.HTTPError {
	switch {
	case errors.Is(err, kerr.ErrNotAuthorized):
		return Unauthorized(name, "Access denied: "+err.Error(), err)
	case errors.Is(err, kerr.ErrMissing):
		return NotFound(name, "Not found: "+err.Error(), err)
	case errors.Is(err, kerr.ErrConflict):
		return InUse(name, "name", what+" name", err)
	case errors.Is(err, kerr.ErrInvalid):
		return Invalid(name, err.Error(), nil, err)
	default:
		return InternalServerError(name, err)
	}
}
