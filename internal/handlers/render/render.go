package render

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-playground/validator/v10"
)

var validate = newValidator()

type Struct any

// Envelope of every successful response
type SuccessResponse struct {
	StatusCode int    `json:"statusCode"`
	Data       any    `json:"data"`
	Message    string `json:"message"`
	Success    bool   `json:"success"`
}

// Envelope of every failed response
type ErrorResponse struct {
	StatusCode int         `json:"statusCode"`
	Message    string      `json:"message"`
	Errors     []ErrorItem `json:"errors"`
	Success    bool        `json:"success"`
}

type ErrorItem struct {
	Field   string `json:"field,omitempty"`
	Message string `json:"message"`
}

// Render data with status 200
func JSON(w http.ResponseWriter, data any, message string) {
	Status(w, http.StatusOK, data, message)
}

// Render data with the status
func Status(w http.ResponseWriter, code int, data any, message string) {
	response := SuccessResponse{
		StatusCode: code,
		Data:       data,
		Message:    message,
		Success:    true,
	}

	jsonWithStatus(w, response, code)
}

// Render ServiceError
func ServiceError(w http.ResponseWriter, message string, code int) {
	response := ErrorResponse{
		StatusCode: code,
		Message:    message,
		Errors:     []ErrorItem{},
		Success:    false,
	}

	jsonWithStatus(w, response, code)
}

// Render json DecodeError
func DecodeError(w http.ResponseWriter, err error) {
	response := ErrorResponse{
		StatusCode: http.StatusBadRequest,
		Message:    "Request body is invalid",
		Success:    false,
	}

	// Try to provide more specific error message based on error type
	var typeErr *json.UnmarshalTypeError
	switch {
	case errors.As(err, &typeErr):
		response.Errors = []ErrorItem{{
			Field:   typeErr.Field,
			Message: fmt.Sprintf("Invalid data type for field '%s'", typeErr.Field),
		}}
	default:
		response.Errors = []ErrorItem{{Message: fmt.Sprintf("Failed to parse JSON: %s", err.Error())}}
	}

	jsonWithStatus(w, response, http.StatusBadRequest)
}

// Render ValidationErrors
func ValidationErrors(w http.ResponseWriter, errs validator.ValidationErrors) {
	response := ErrorResponse{
		StatusCode: http.StatusBadRequest,
		Message:    "Request validation failed",
		Errors:     make([]ErrorItem, 0, len(errs)),
		Success:    false,
	}

	// Create user-friendly error messages based on validation tag
	for _, fieldError := range errs {
		var message string
		switch fieldError.Tag() {
		case "required":
			message = "This field is required"
		case "min":
			message = fmt.Sprintf("Value is too short (minimum %s)", fieldError.Param())
		case "max":
			message = fmt.Sprintf("Value is too long (maximum %s)", fieldError.Param())
		case "email":
			message = "Invalid email"
		case "oneof":
			message = fmt.Sprintf("Must be one of: %s", fieldError.Param())
		case "handle":
			message = "Only latin letters, digits, '_', '.' and '-' are allowed"
		default:
			message = "Invalid value"
		}

		response.Errors = append(response.Errors, ErrorItem{Field: fieldError.Field(), Message: message})
	}

	jsonWithStatus(w, response, http.StatusBadRequest)
}

// BindAndValidate decodes JSON request body into type T and validates it using struct tags.
// Returns the decoded value and writes appropriate error responses for decoding or validation failures.
func BindAndValidate[T Struct](w http.ResponseWriter, r *http.Request) (T, error) {
	var value T

	err := json.NewDecoder(r.Body).Decode(&value)
	if err != nil {
		DecodeError(w, err)
		return value, err
	}

	return value, Validate(w, value)
}

// Validate value using struct tags and render validation errors if any
func Validate(w http.ResponseWriter, value any) error {
	err := validate.Struct(value)
	if err != nil {
		// pretty sure cast will be ok cause expecting value is valid struct
		errs := err.(validator.ValidationErrors)
		ValidationErrors(w, errs)
		return err
	}

	return nil
}

// renderJSONWithStatus sends data as json and enforces status code
func jsonWithStatus(w http.ResponseWriter, data any, code int) {
	buf := &bytes.Buffer{}
	enc := json.NewEncoder(buf)

	if err := enc.Encode(data); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	_, _ = w.Write(buf.Bytes())
}
