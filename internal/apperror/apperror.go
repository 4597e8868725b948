// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package apperror

import (
	"encoding/json"
	"errors"
	"net/http"
)

type Code string

const (
	CodeAuth            Code = "AUTH"
	CodeForbidden       Code = "FORBIDDEN"
	CodeNotFound        Code = "NOT_FOUND"
	CodeExpired         Code = "EXPIRED"
	CodeAlreadyResolved Code = "ALREADY_RESOLVED"
	CodeInvalidData     Code = "INVALID_DATA"
	CodeDatabaseFailure Code = "DATABASE_FAILURE"
	CodeProviderFailure Code = "PROVIDER_FAILURE"
)

// Sentinels usable with errors.Is, matching is done on Code only
var (
	ErrAuth            = New(CodeAuth, "not authenticated")
	ErrForbidden       = New(CodeForbidden, "permission denied")
	ErrNotFound        = New(CodeNotFound, "not found")
	ErrExpired         = New(CodeExpired, "invitation expired")
	ErrAlreadyResolved = New(CodeAlreadyResolved, "invitation already resolved")
	ErrInvalidData     = New(CodeInvalidData, "invalid data")
	ErrDatabaseFailure = New(CodeDatabaseFailure, "storage unavailable")
	ErrProviderFailure = New(CodeProviderFailure, "identity provider unavailable")
)

type Error struct {
	Code    Code
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return t.Code == e.Code
}

func New(code Code, message string) *Error {
	return &Error{Code: code, Message: message}
}

// Wrap attaches a code to an underlying error
func Wrap(code Code, message string, err error) *Error {
	return &Error{Code: code, Message: message, Err: err}
}

// CodeOf returns the code carried by err, DATABASE_FAILURE for untyped errors
func CodeOf(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return CodeDatabaseFailure
}

func HTTPStatus(code Code) int {
	switch code {
	case CodeAuth:
		return http.StatusUnauthorized
	case CodeForbidden:
		return http.StatusForbidden
	case CodeNotFound:
		return http.StatusNotFound
	case CodeExpired:
		return http.StatusGone
	case CodeAlreadyResolved:
		return http.StatusConflict
	case CodeInvalidData:
		return http.StatusBadRequest
	case CodeProviderFailure:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

type ErrorResponse struct {
	Status  int    `json:"status"`
	Message string `json:"message"`
	Code    Code   `json:"code"`
}

// WriteJSON writes err using the status derived from its code, internal details are never exposed
func WriteJSON(w http.ResponseWriter, err error) error {
	code := CodeOf(err)
	status := HTTPStatus(code)

	message := http.StatusText(status)
	var e *Error
	if errors.As(err, &e) && status < http.StatusInternalServerError {
		message = e.Message
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	return json.NewEncoder(w).Encode(ErrorResponse{
		Status:  status,
		Message: message,
		Code:    code,
	})
}

// InvalidLink is the single response used for unknown, expired and already used invitation links
func InvalidLink() *Error {
	return New(CodeNotFound, "this invitation link is not valid")
}

// IsInvalidLink reports whether err must be shown to the public as an invalid link
func IsInvalidLink(err error) bool {
	return errors.Is(err, ErrNotFound) || errors.Is(err, ErrExpired) || errors.Is(err, ErrAlreadyResolved)
}
