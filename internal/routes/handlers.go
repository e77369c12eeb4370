package routes

import (
	"net/http"

	"github.com/just-nibble/git-digest/internal/http/handlers"
	httpSwagger "github.com/swaggo/http-swagger"
)

type Handlers struct {
	Webhook    *handlers.WebhookHandler
	Commitment *handlers.CommitmentHandler
	Feed       *handlers.FeedHandler
}

func NewRouter(h Handlers) *http.ServeMux {
	router := http.NewServeMux()
	router.HandleFunc("POST /webhook/github", h.Webhook.GitHub)

	router.HandleFunc("GET /commitments", h.Commitment.List)
	router.HandleFunc("GET /commitments/stats", h.Commitment.Stats)
	router.HandleFunc("GET /commitments/details", h.Commitment.Details)
	router.HandleFunc("GET /commitments/{commitId}", h.Commitment.Get)
	router.HandleFunc("PATCH /commitments/{commitId}", h.Commitment.Update)

	router.HandleFunc("GET /projects/{projectId}/feeds", h.Feed.ListByProject)

	router.HandleFunc("GET /healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	// Serve Swagger documentation
	router.HandleFunc("/swagger/", httpSwagger.WrapHandler)
	return router
}
