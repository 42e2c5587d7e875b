package apperror

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// FieldProblem is one entry of a validation error's details.
type FieldProblem struct {
	Field   string `json:"field"`
	Problem string `json:"problem"`
}

func formatFieldName(s string) string {
	s = strings.ReplaceAll(s, "_", " ")
	caser := cases.Title(language.English)
	return caser.String(s)
}

func problemForTag(tag string) string {
	if tag == "required" {
		return "is required"
	}
	return "is invalid"
}

// MapValidationError turns gin binding errors into a single AppError.
// Every offending field is listed in Details; the message names the
// first one.
func MapValidationError(err error) error {
	errs, ok := err.(validator.ValidationErrors)
	if !ok || len(errs) == 0 {
		return New(CodeInvalidInput, "Invalid input", http.StatusBadRequest)
	}

	problems := make([]FieldProblem, 0, len(errs))
	for _, e := range errs {
		problems = append(problems, FieldProblem{
			Field:   formatFieldName(e.Field()),
			Problem: problemForTag(e.Tag()),
		})
	}

	appErr := New(
		CodeInvalidInput,
		fmt.Sprintf("%s %s", problems[0].Field, problems[0].Problem),
		http.StatusBadRequest,
	)
	appErr.Details = problems
	return appErr
}
