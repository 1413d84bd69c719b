package model

import "errors"

var (
	ErrProductNotFound    = errors.New("product not found")
	ErrInvalidProductID   = errors.New("invalid product ID")
	ErrInvalidColor       = errors.New("invalid product color")
	ErrInvalidSize        = errors.New("invalid product size")
	ErrInvalidPrice       = errors.New("invalid product price")
	ErrDuplicateProduct   = errors.New("product already exists")
	ErrDatabaseConnection = errors.New("database connection error")
	ErrDatabaseQuery      = errors.New("database query error")
)

type ValidationError struct {
	Field   string
	Message string
	Code    string
}

type ValidationErrors struct {
	Errors []ValidationError
}

func (v *ValidationErrors) Error() string {
	if len(v.Errors) == 0 {
		return "validation failed"
	}

	return v.Errors[0].Field + ": " + v.Errors[0].Message
}

func (v *ValidationErrors) Add(field, message, code string) {
	v.Errors = append(v.Errors, ValidationError{
		Field:   field,
		Message: message,
		Code:    code,
	})
}

func (v *ValidationErrors) HasErrors() bool {
	return len(v.Errors) > 0
}

func NewValidationErrors() *ValidationErrors {
	return &ValidationErrors{
		Errors: make([]ValidationError, 0),
	}
}
