package httpx

import (
	"encoding/json"
	"net/http"
)

type errorResponse struct {
	Success bool              `json:"success"`
	Error   errorResponseBody `json:"error"`
	Meta    map[string]string `json:"meta,omitempty"`
}

type errorResponseBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// JSONError writes the middleware layer's error envelope, tagging the
// response with the request id when one is present.
func JSONError(w http.ResponseWriter, r *http.Request, statusCode int, code string, message string) {
	var meta map[string]string
	if requestID := RequestIDFrom(r); requestID != "" {
		meta = map[string]string{"request_id": requestID}
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(errorResponse{
		Success: false,
		Error: errorResponseBody{
			Code:    code,
			Message: message,
		},
		Meta: meta,
	})
}
