package handlers

import (
	"context"
	"net/http"
	"os"
	"time"

	"clipforge/internal/httpkit"
)

// Health performs a health check of the service.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := h.log.FromContext(ctx)

	health := map[string]any{
		"status":  "ok",
		"service": "clipforge-api",
		"version": "0.1.0",
	}

	// Check if deep health check is requested
	if r.URL.Query().Get("deep") == "true" {
		checks := h.deepHealthCheck(ctx)
		health["checks"] = checks

		// If any check failed, change status
		for _, check := range checks {
			if checkMap, ok := check.(map[string]any); ok {
				if checkMap["status"] != "ok" {
					health["status"] = "degraded"
					log.Warn("health check degraded", "checks", checks)
					break
				}
			}
		}
	}

	httpkit.WriteJSON(w, 200, health)
}

// deepHealthCheck performs detailed health checks on dependencies.
func (h *Handler) deepHealthCheck(ctx context.Context) map[string]any {
	checks := make(map[string]any)

	checks["jobs_dir"] = h.checkJobsDir()
	checks["templates"] = h.checkTemplates(ctx)
	checks["storage"] = h.checkStorage()
	checks["render"] = map[string]any{
		"status":       "ok",
		"running_jobs": h.supervisor.Running(),
	}

	return checks
}

func (h *Handler) checkJobsDir() map[string]any {
	result := map[string]any{
		"status": "ok",
	}

	// A readable root is all the store needs; job subdirectories are
	// created on submit.
	if _, err := os.Stat(h.jobs.Dir(".")); err != nil {
		result["status"] = "error"
		result["error"] = err.Error()
	}
	return result
}

func (h *Handler) checkTemplates(ctx context.Context) map[string]any {
	start := time.Now()
	result := map[string]any{
		"status": "ok",
	}

	checkCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if _, err := h.templates.List(checkCtx); err != nil {
		result["status"] = "error"
		result["error"] = err.Error()
		if httpkit.IsUndefinedTable(err) {
			result["hint"] = "templates table does not exist; apply the schema"
		}
	}

	result["latency_ms"] = time.Since(start).Milliseconds()
	return result
}

func (h *Handler) checkStorage() map[string]any {
	if h.sp == nil {
		return map[string]any{
			"status":   "ok",
			"provider": "local",
		}
	}
	return map[string]any{
		"status":   "ok",
		"provider": h.sp.Provider(),
	}
}
