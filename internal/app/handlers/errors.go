package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	appErrors "github.com/smmboost/panel/internal/app/errors"
	"github.com/smmboost/panel/internal/app/logger"
	"go.uber.org/zap"
)

const errMsgUnableReadBody = "Unable to read body"

// ErrorResponse is the uniform error envelope. Kind tells the UI how to
// surface the failure (login prompt, inline field message, top-up prompt,
// transient toast, retryable banner); Field names the offending form field
// for validation errors.
type ErrorResponse struct {
	Message string `json:"message"`
	Code    int    `json:"code"`
	Kind    string `json:"kind,omitempty"`
	Field   string `json:"field,omitempty"`
}

func PrepareError(w http.ResponseWriter, err error) {
	var codeErr appErrors.ResponseCodeError
	logger.Log.Error("request error: ", zap.Error(err))
	if errors.As(err, &codeErr) {
		writeJSONErrorResponse(w, ErrorResponse{
			Message: codeErr.Msg(),
			Code:    codeErr.Code(),
			Kind:    string(codeErr.Kind()),
			Field:   codeErr.Field(),
		})
		return
	}
	// Default error handling
	writeJSONErrorResponse(w, ErrorResponse{
		Message: "Internal Server Error",
		Code:    http.StatusInternalServerError,
		Kind:    string(appErrors.KindInternal),
	})
}

func WriteJSONErrorResponse(w http.ResponseWriter, message string, code int) {
	writeJSONErrorResponse(w, ErrorResponse{Message: message, Code: code})
}

func writeJSONErrorResponse(w http.ResponseWriter, er ErrorResponse) {
	w.Header().Set("Content-Type", "application/json")
	raw, err := json.Marshal(er)
	if err != nil {
		logger.Log.Error("failed to marshal error response", zap.Error(err))
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	w.WriteHeader(er.Code)
	w.Write(raw)
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	raw, err := json.Marshal(payload)
	if err != nil {
		PrepareError(w, err)
		return
	}
	w.Header().Add("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(raw)
}
