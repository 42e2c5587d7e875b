package balanceerrors

import (
	"net/http"

	"leaveflow/internal/shared/apperror"
)

var (
	ErrInvalidDateRange = apperror.New(
		apperror.CodeInvalidInput,
		"start_date must be before or equal end_date",
		http.StatusBadRequest,
	)
	ErrInvalidDayPolicy = apperror.New(
		apperror.CodeInvalidInput,
		"day_policy must be calendar or business",
		http.StatusBadRequest,
	)
	ErrBalanceNotFound = apperror.New(
		apperror.CodeNotFound,
		"pto balance not found for team member",
		http.StatusNotFound,
	)
)
