// Librarium - Library Circulation and Discovery Backend
// Copyright 2026 Librarium contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/librarium-app/librarium

// Package validation provides struct validation using
// go-playground/validator v10: a thread-safe singleton instance plus
// translation of field errors into the API's VALIDATION_ERROR shape.
//
// Example usage:
//
//	var req models.CreateBookRequest
//	if verr := validation.ValidateStruct(&req); verr != nil {
//	    apiErr := verr.ToAPIError()
//	    respondError(w, http.StatusBadRequest, apiErr.Code, apiErr.Message, apiErr.Details)
//	    return
//	}
package validation

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

// ValidationError is a single field validation failure.
type ValidationError struct {
	field   string
	tag     string
	param   string
	value   interface{}
	message string
}

// Field returns the struct field name that failed validation.
func (e *ValidationError) Field() string { return e.field }

// Tag returns the validation tag that failed.
func (e *ValidationError) Tag() string { return e.tag }

// Param returns the parameter for the validation tag (e.g. "200" for "max=200").
func (e *ValidationError) Param() string { return e.param }

// Value returns the value that failed validation.
func (e *ValidationError) Value() interface{} { return e.value }

// Error returns a human-readable message.
func (e *ValidationError) Error() string { return e.message }

// RequestValidationError collects the field failures for one request
// body.
type RequestValidationError struct {
	errors []ValidationError
}

// Errors returns the individual field failures.
func (ve *RequestValidationError) Errors() []ValidationError {
	return ve.errors
}

// Error implements the error interface.
func (ve *RequestValidationError) Error() string {
	if len(ve.errors) == 0 {
		return "validation failed"
	}
	var messages []string
	for _, err := range ve.errors {
		messages = append(messages, err.Error())
	}
	return strings.Join(messages, "; ")
}

// APIError mirrors models.APIError to avoid an import cycle.
type APIError struct {
	Code    string
	Message string
	Details map[string]interface{}
}

// ToAPIError converts the collected failures into the API's
// VALIDATION_ERROR payload.
func (ve *RequestValidationError) ToAPIError() *APIError {
	if len(ve.errors) == 0 {
		return &APIError{Code: "VALIDATION_ERROR", Message: "Validation failed"}
	}

	if len(ve.errors) == 1 {
		err := ve.errors[0]
		return &APIError{
			Code:    "VALIDATION_ERROR",
			Message: err.message,
			Details: map[string]interface{}{
				"field": err.field,
				"tag":   err.tag,
				"value": err.value,
			},
		}
	}

	fields := make([]map[string]interface{}, len(ve.errors))
	var messages []string
	for i, err := range ve.errors {
		fields[i] = map[string]interface{}{
			"field":   err.field,
			"tag":     err.tag,
			"message": err.message,
		}
		messages = append(messages, fmt.Sprintf("%s: %s", err.field, err.message))
	}
	return &APIError{
		Code:    "VALIDATION_ERROR",
		Message: strings.Join(messages, "; "),
		Details: map[string]interface{}{"fields": fields},
	}
}

// GetValidator returns the singleton validator instance. The built-in
// tags cover every rule the request types use (required, email, min,
// max, gt, gte, lte, omitempty).
func GetValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
	})
	return validate
}

// ValidateStruct validates a struct with the singleton validator.
// Returns nil on success, or the collected field failures.
func ValidateStruct(s interface{}) *RequestValidationError {
	err := GetValidator().Struct(s)
	if err == nil {
		return nil
	}

	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) {
		return &RequestValidationError{
			errors: []ValidationError{{field: "unknown", tag: "unknown", message: err.Error()}},
		}
	}

	fieldErrors := make([]ValidationError, len(validationErrs))
	for i, fieldErr := range validationErrs {
		fieldErrors[i] = ValidationError{
			field:   fieldErr.Field(),
			tag:     fieldErr.Tag(),
			param:   fieldErr.Param(),
			value:   fieldErr.Value(),
			message: translateError(fieldErr),
		}
	}
	return &RequestValidationError{errors: fieldErrors}
}

var errorMessageTemplates = map[string]string{
	"required": "%s is required",
	"email":    "%s must be a valid email address",
}

var errorMessageWithParam = map[string]string{
	"gte": "%s must be greater than or equal to %s",
	"lte": "%s must be less than or equal to %s",
	"gt":  "%s must be greater than %s",
	"lt":  "%s must be less than %s",
}

// translateError converts a validator.FieldError to a human-readable
// message matching the API's error style.
func translateError(fe validator.FieldError) string {
	field := fe.Field()
	tag := fe.Tag()
	param := fe.Param()

	if template, ok := errorMessageTemplates[tag]; ok {
		return fmt.Sprintf(template, field)
	}
	if template, ok := errorMessageWithParam[tag]; ok {
		return fmt.Sprintf(template, field, param)
	}
	return translateMinMax(fe, field, tag, param)
}

func translateMinMax(fe validator.FieldError, field, tag, param string) string {
	isString := fe.Kind().String() == "string"

	switch tag {
	case "min":
		if isString {
			return fmt.Sprintf("%s must be at least %s characters", field, param)
		}
		return fmt.Sprintf("%s must be at least %s", field, param)
	case "max":
		if isString {
			return fmt.Sprintf("%s must be at most %s characters", field, param)
		}
		return fmt.Sprintf("%s must be at most %s", field, param)
	default:
		return fmt.Sprintf("%s failed %s validation", field, tag)
	}
}
