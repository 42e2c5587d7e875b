package leaverequesterrors

import (
	"net/http"

	"leaveflow/internal/shared/apperror"
)

var (
	ErrInvalidDateFormat = apperror.New(
		apperror.CodeInvalidInput,
		"invalid date format, expected YYYY-MM-DD",
		http.StatusBadRequest,
	)
	ErrInvalidDateRange = apperror.New(
		apperror.CodeInvalidInput,
		"start_date must be before or equal end_date",
		http.StatusBadRequest,
	)
	ErrInvalidRequestID = apperror.New(
		apperror.CodeInvalidInput,
		"invalid request id",
		http.StatusBadRequest,
	)
	ErrRequestNotFound = apperror.New(
		apperror.CodeNotFound,
		"leave request not found",
		http.StatusNotFound,
	)
	ErrInvalidTransition = apperror.New(
		apperror.CodeInvalidState,
		"command is not valid for the current request status",
		http.StatusBadRequest,
	)
	// Message deliberately does not reveal which actor would have been
	// authorized.
	ErrNotAuthorized = apperror.New(
		apperror.CodeForbidden,
		"you are not allowed to act on this request",
		http.StatusForbidden,
	)
	ErrMissingJustification = apperror.New(
		apperror.CodeInvalidInput,
		"a note is required when rejecting or denying a request",
		http.StatusBadRequest,
	)
	ErrClientNameRequired = apperror.New(
		apperror.CodeInvalidInput,
		"client_name is required when recording a client approval",
		http.StatusBadRequest,
	)
	ErrConcurrentModification = apperror.New(
		apperror.CodeConflict,
		"the request was modified by someone else, refetch and retry",
		http.StatusConflict,
	)
	ErrCorruptHistory = apperror.New(
		apperror.CodeInternalError,
		"audit history does not replay to a valid status",
		http.StatusInternalServerError,
	)
)
