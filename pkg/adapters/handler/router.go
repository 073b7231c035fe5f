package handler

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/wadjakorntonsri/linkcomment/pkg/config"
	"github.com/wadjakorntonsri/linkcomment/pkg/ports"
)

// NewRouter creates and configures the main application router
func NewRouter(cfg *config.Config, service ports.LinkCommentService, verifier ports.TokenVerifier) http.Handler {
	h := NewHTTPHandler(service)
	mw := NewMiddleware(verifier)

	mux := http.NewServeMux()

	// Public Routes
	mux.HandleFunc("GET /healthcheck", h.Healthcheck)
	mux.Handle("GET /metrics", promhttp.Handler())

	// Protected Routes
	mux.Handle("POST /linkcomment", mw.AuthMiddleware(http.HandlerFunc(h.Create)))
	mux.Handle("GET /linkcomment", mw.AuthMiddleware(http.HandlerFunc(h.List)))
	mux.Handle("DELETE /linkcomment/{id}", mw.AuthMiddleware(http.HandlerFunc(h.Delete)))

	mux.HandleFunc("/", NotFound)

	var handler http.Handler = mux
	handler = CORS(cfg.CORSAllowedOrigins)(handler)
	handler = SecureHeaders(handler)
	handler = Logging(handler)
	handler = Recovery(handler)
	return handler
}
