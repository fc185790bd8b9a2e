package response

import (
	"encoding/json"
	"net/http"

	"github.com/onlinestore/catalog-admin/internal/errors"
)

type APIResponse struct {
	Success bool           `json:"success"`
	Data    any            `json:"data,omitempty"`
	Error   *ErrorResponse `json:"error,omitempty"`
}

type ErrorResponse struct {
	Code    string   `json:"code"`
	Message string   `json:"message"`
	Details []string `json:"details,omitempty"`
}

func WriteJson(w http.ResponseWriter, statusCode int, data any) error {

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	return json.NewEncoder(w).Encode(data)
}

func Success(w http.ResponseWriter, statusCode int, data any) {
	response := APIResponse{
		Success: true,
		Data:    data,
	}

	_ = WriteJson(w, statusCode, response)
}

// Error maps an error to the JSON envelope, using the AppError taxonomy when
// available and a generic 500 otherwise.
func Error(w http.ResponseWriter, err error) {

	if appErr, ok := errors.IsAppError(err); ok {
		response := APIResponse{
			Success: false,
			Error: &ErrorResponse{
				Code:    appErr.Code,
				Message: appErr.Message,
			},
		}

		if appErr.Detail != "" {
			response.Error.Details = []string{appErr.Detail}
		}

		_ = WriteJson(w, appErr.StatusCode, response)

		return
	}

	response := APIResponse{
		Success: false,
		Error: &ErrorResponse{
			Code:    errors.ErrCodeInternal,
			Message: "An unexpected error occurred",
		},
	}

	_ = WriteJson(w, http.StatusInternalServerError, response)
}

func GeneralError(err error) APIResponse {
	return APIResponse{
		Success: false,
		Error: &ErrorResponse{
			Code:    errors.ErrCodeBadRequest,
			Message: err.Error(),
		},
	}
}
