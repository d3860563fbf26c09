// Package web defines common components for a web application.
package web

import "github.com/go-playground/validator/v10"

// JSONError provides type for explicit json encoded error response.
type JSONError struct {
	Error string `json:"error"`
}

// Error wraps a given err into a json friendly struct.
func Error(err error) JSONError {
	return JSONError{Error: err.Error()}
}

// ErrorMsg wraps a given message into a json friendly struct.
func ErrorMsg(msg string) JSONError {
	return JSONError{Error: msg}
}

// GetErrorMsg returns a human readable message for a failed binding validation.
func GetErrorMsg(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return " is required"
	case "min":
		return " must be greater or equal to " + fe.Param()
	case "max":
		return " must be less or equal to " + fe.Param()
	case "currency":
		return " is not supported"
	case "oneof":
		return " must be one of: " + fe.Param()
	case "email":
		return " must be a valid email address"
	}

	return " is invalid"
}
