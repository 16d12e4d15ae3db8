package errors

import (
	"encoding/json"
	"net/http"
)

// WriteError renders err as the JSON error envelope with the AppError's
// status code. Every handler funnels through here (via pkg/http), so
// clients see one error shape regardless of which layer failed.
func WriteError(w http.ResponseWriter, err error) error {
	appErr := AsAppError(err)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(appErr.StatusCode())

	return json.NewEncoder(w).Encode(ErrorResponse{
		Error:   appErr.Message,
		Code:    appErr.Code,
		Details: appErr.Details,
	})
}
