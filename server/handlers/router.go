package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/sirupsen/logrus"

	"github.com/nnnkkk7/sqlbuddy/pkg/config"
	"github.com/nnnkkk7/sqlbuddy/pkg/query"
)

// RouterConfig holds the dependencies of the HTTP API.
type RouterConfig struct {
	Runs   *query.RunManager
	Tester ConnectionTester
	Config config.Config
	Log    logrus.FieldLogger
}

// NewRouter builds the HTTP API.
func NewRouter(rc RouterConfig) http.Handler {
	if rc.Log == nil {
		rc.Log = logrus.StandardLogger()
	}

	editorHandler := NewEditorHandler()
	runHandler := NewRunHandler(rc.Runs)
	connectionHandler := NewConnectionHandler(rc.Tester, rc.Config, rc.Log)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RequestLogger(&middleware.DefaultLogFormatter{Logger: rc.Log, NoColor: true}))
	r.Use(middleware.Recoverer)

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/highlight", editorHandler.Highlight)
		r.Post("/split", editorHandler.Split)

		r.Post("/runs", runHandler.SubmitRun)
		r.Get("/runs/{handle}", runHandler.GetRun)
		r.Delete("/runs/{handle}", runHandler.DeleteRun)
		r.Post("/runs/{handle}/cancel", runHandler.CancelRun)

		r.Post("/connection/test", connectionHandler.Test)
	})

	r.Get("/health", Health)

	return r
}
