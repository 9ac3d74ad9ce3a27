package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/hexrift/nft-catalog/internal/model"
)

var requestIDKey = "X-Request-ID"

func writeJson(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(payload); err != nil {
		slog.Error("Failed to write json response", "status", status, "error", err)
	}
}

// RespondSuccessJSON wraps data in the standard success envelope, echoing or
// minting a request id.
func RespondSuccessJSON[T any](w http.ResponseWriter, r *http.Request, status int, message string, data T) {
	reqID := r.Header.Get(requestIDKey)
	if reqID == "" {
		reqID = uuid.NewString()
	}
	w.Header().Set(requestIDKey, reqID)

	payload := model.APIResponse[T]{
		Status:  "success",
		Message: message,
		Metadata: model.Metadata{
			Timestamp: time.Now().UTC(),
			RequestID: reqID,
		},
		Data:  data,
		Error: nil,
	}
	writeJson(w, status, payload)
}

// RespondErrorJSON wraps an error code and message in the standard error
// envelope.
func RespondErrorJSON(w http.ResponseWriter, r *http.Request, status int, code string, message string, details []model.ErrorDetails) {
	reqID := r.Header.Get(requestIDKey)
	if reqID == "" {
		reqID = uuid.NewString()
	}
	w.Header().Set(requestIDKey, reqID)

	payload := model.APIResponse[any]{
		Status: "error",
		Metadata: model.Metadata{
			Timestamp: time.Now().UTC(),
			RequestID: reqID,
		},
		Error: &model.APIError{
			Code:    code,
			Message: message,
			Details: details,
		},
	}
	writeJson(w, status, payload)
}
