package handler

import (
	"net/http"

	"github.com/wadjakorntonsri/linkcomment/pkg/adapters/auth"
	"github.com/wadjakorntonsri/linkcomment/pkg/adapters/handler"
	"github.com/wadjakorntonsri/linkcomment/pkg/adapters/repository/sqlite"
	"github.com/wadjakorntonsri/linkcomment/pkg/config"
	"github.com/wadjakorntonsri/linkcomment/pkg/core/services"
)

var mux http.Handler

func init() {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		panic(err)
	}

	// On Vercel the filesystem is ephemeral; DATABASE_URL should point at Turso.
	repo, err := sqlite.NewSQLiteRepository(cfg.DatabaseURL, cfg.DatabaseAuthToken)
	if err != nil {
		panic(err)
	}

	service := services.NewLinkCommentService(repo)
	mux = handler.NewRouter(cfg, service, auth.NewFromConfig(cfg))
}

// Handler is the entrypoint for Vercel
func Handler(w http.ResponseWriter, r *http.Request) {
	mux.ServeHTTP(w, r)
}
