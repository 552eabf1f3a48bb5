package errors

import (
	"errors"
	"net/http"
)

var (
	NotFound            = HttpError{http.StatusNotFound, errors.New("not found")}
	Duplicate           = HttpError{http.StatusConflict, errors.New("duplicate")}
	ConstraintViolation = HttpError{http.StatusUnprocessableEntity, errors.New("constraint violation")}
	BadRequest          = HttpError{http.StatusBadRequest, errors.New("bad request")}
	Unauthorized        = HttpError{http.StatusUnauthorized, errors.New("unauthorized")}
	Forbidden           = HttpError{http.StatusForbidden, errors.New("forbidden")}
	InternalServerError = HttpError{http.StatusInternalServerError, errors.New("internal server error")}
	BadGateway          = HttpError{http.StatusBadGateway, errors.New("bad gateway")}
	Conflict            = HttpError{http.StatusConflict, errors.New("conflict")}
)

type HttpError struct {
	Code int
	Err  error
}

func (h HttpError) Unwrap() error {
	return h.Err
}

func (h HttpError) Error() string {
	return h.Err.Error()
}

// StatusCode returns the http status of the first HttpError wrapped by err.
func StatusCode(err error) int {
	e := HttpError{}
	if errors.As(err, &e) {
		return e.Code
	}
	return http.StatusInternalServerError
}
