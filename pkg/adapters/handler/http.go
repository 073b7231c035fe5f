package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/wadjakorntonsri/linkcomment/pkg/ports"
)

type HTTPHandler struct {
	service  ports.LinkCommentService
	validate *validator.Validate
}

func NewHTTPHandler(service ports.LinkCommentService) *HTTPHandler {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "" || name == "-" {
			return f.Name
		}
		return name
	})
	return &HTTPHandler{service: service, validate: v}
}

// CreateLinkCommentRequest payload
type CreateLinkCommentRequest struct {
	URL     string  `json:"url" validate:"required,http_url"`
	Comment *string `json:"comment" validate:"required"`
}

// CreationResponse is returned by create and delete.
type CreationResponse struct {
	ID string `json:"id"`
}

// Healthcheck answers liveness probes.
func (h *HTTPHandler) Healthcheck(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Create Link Comment
func (h *HTTPHandler) Create(w http.ResponseWriter, r *http.Request) {
	identity, ok := IdentityFrom(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, msgBadCredentials)
		return
	}

	var req CreateLinkCommentRequest
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, msgInvalidBody)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, validationMessage(err))
		return
	}

	id, err := h.service.Create(r.Context(), identity.Subject, req.URL, *req.Comment)
	if err != nil {
		log.Printf("Create link comment for %s failed: %v", identity.Subject, err)
		status, msg := serviceStatus(err, msgCreateFailed)
		writeError(w, status, msg)
		return
	}

	writeJSON(w, http.StatusOK, CreationResponse{ID: id})
}

// List the caller's link comments
func (h *HTTPHandler) List(w http.ResponseWriter, r *http.Request) {
	identity, ok := IdentityFrom(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, msgBadCredentials)
		return
	}

	items, err := h.service.List(r.Context(), identity.Subject)
	if err != nil {
		log.Printf("List link comments for %s failed: %v", identity.Subject, err)
		status, msg := serviceStatus(err, msgListFailed)
		writeError(w, status, msg)
		return
	}

	writeJSON(w, http.StatusOK, items)
}

// Delete one of the caller's link comments
func (h *HTTPHandler) Delete(w http.ResponseWriter, r *http.Request) {
	identity, ok := IdentityFrom(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, msgBadCredentials)
		return
	}

	id, err := h.service.Delete(r.Context(), identity.Subject, r.PathValue("id"))
	if err != nil {
		log.Printf("Delete link comment for %s failed: %v", identity.Subject, err)
		status, msg := serviceStatus(err, msgDeleteFailed)
		writeError(w, status, msg)
		return
	}

	writeJSON(w, http.StatusOK, CreationResponse{ID: id})
}

// NotFound answers unmatched routes in the JSON error shape.
func NotFound(w http.ResponseWriter, r *http.Request) {
	writeError(w, http.StatusNotFound, msgNotFound)
}

func validationMessage(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return msgInvalidBody
	}

	fields := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		switch fe.Tag() {
		case "required":
			fields = append(fields, fmt.Sprintf("%s is required", fe.Field()))
		case "http_url":
			fields = append(fields, fmt.Sprintf("%s must be an absolute http(s) URL", fe.Field()))
		default:
			fields = append(fields, fmt.Sprintf("%s is invalid", fe.Field()))
		}
	}
	return strings.Join(fields, "; ")
}
