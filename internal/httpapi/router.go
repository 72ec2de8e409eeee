package httpapi

import (
	"net/http"
	"os"
	"strings"

	"github.com/go-chi/chi/v5"

	"clipforge/internal/httpapi/handlers"
	"clipforge/internal/httpkit"
	"clipforge/internal/jobstore"
	"clipforge/internal/pkg/logger"
	"clipforge/internal/pkg/middleware"
	"clipforge/internal/ports"
	"clipforge/internal/render"
	"clipforge/internal/template"
)

type Deps struct {
	Jobs       *jobstore.Store
	Supervisor *render.Supervisor
	Templates  template.Store
	SP         ports.StorageProvider
	Log        *logger.Logger
}

func NewRouter(d Deps) http.Handler {
	r := chi.NewRouter()

	log := d.Log
	if log == nil {
		log = logger.NewDefault()
	}

	r.Use(middleware.RequestID)
	r.Use(middleware.Logging(log))
	r.Use(middleware.Recovery(log))

	// ---- CORS (Swagger UI + future frontend) ----
	allowedOrigins := envCSV("CORS_ALLOWED_ORIGINS", []string{
		"http://localhost:8081",
		"http://localhost:5173",
	})
	r.Use(httpkit.CORS(httpkit.CORSOptions{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Authorization"},
		AllowCredentials: false,
		MaxAgeSeconds:    600,
	}))

	h := handlers.New(handlers.Deps{
		Jobs:       d.Jobs,
		Supervisor: d.Supervisor,
		Templates:  d.Templates,
		SP:         d.SP,
		Log:        log,
	})

	// ---- HEALTH ----
	r.Get("/health", h.Health)

	// ---- CLIPS ----
	r.Post("/clips", h.PostClip)
	r.Get("/clips/{jobId}", h.GetClip)
	r.Get("/clips/{jobId}/download", h.DownloadClip)

	// ---- TEMPLATE CLIPS ----
	r.Post("/template-clips", h.PostTemplateClip)

	// ---- TEMPLATES ----
	r.Post("/templates", h.PostTemplate)
	r.Get("/templates", h.ListTemplates)
	r.Get("/templates/{templateId}", h.GetTemplate)
	r.Delete("/templates/{templateId}", h.DeleteTemplate)

	return r
}

func envCSV(key string, def []string) []string {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return def
	}
	return out
}
