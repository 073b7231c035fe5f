package handler

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/wadjakorntonsri/linkcomment/pkg/core/domain"
)

const (
	msgBadCredentials   = "bad credentials"
	msgUnableToVerify   = "unable to verify credentials"
	msgInternal         = "internal server error"
	msgCreateFailed     = "error creating link comment"
	msgListFailed       = "error reading link comments"
	msgDeleteFailed     = "error deleting link comment"
	msgInvalidBody      = "invalid request body"
	msgNotFound         = "not found"
	maxRequestBodyBytes = 1 << 20
)

type errorResponse struct {
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("write response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Message: message})
}

// authStatus maps a verification failure to its HTTP status and message.
// Key resolution failures are the server's problem, not the caller's.
func authStatus(err error) (int, string) {
	kind, _ := domain.AuthErrorKindOf(err)
	if kind == domain.AuthKeyResolutionFailed {
		return http.StatusInternalServerError, msgUnableToVerify
	}
	return http.StatusUnauthorized, msgBadCredentials
}

// serviceStatus maps a service error to a status. Store failures collapse
// into the operation's generic message so the cause never leaks.
func serviceStatus(err error, storeMessage string) (int, string) {
	if errors.Is(err, domain.ErrInvalidInput) {
		return http.StatusBadRequest, err.Error()
	}
	return http.StatusInternalServerError, storeMessage
}
