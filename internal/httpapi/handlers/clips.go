package handlers

import (
	"io"
	"net/http"
	"os"
	"path"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"clipforge/internal/httpkit"
	"clipforge/internal/jobstore"
	"clipforge/internal/pkg/errors"
	"clipforge/internal/scene"
	"clipforge/internal/template"
)

// PostClip accepts a full scene, compiles it and schedules the render.
// The response is the initial processing record; the encode itself runs
// on a detached goroutine and is observed through GET /clips/{jobId}.
func (h *Handler) PostClip(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var sc scene.Scene
	if err := httpkit.DecodeJSON(r, &sc); err != nil {
		httpkit.WriteErr(w, 400, "VALIDATION_ERROR", "invalid json body", nil)
		return
	}
	if err := sc.Validate(); err != nil {
		writeCodedErr(w, err)
		return
	}

	job, err := h.supervisor.Submit(ctx, &sc)
	if err != nil {
		writeCodedErr(w, err)
		return
	}

	httpkit.WriteJSON(w, 201, job)
}

// PostTemplateClip merges partial elements against a stored template,
// builds the full scene and schedules the render like PostClip.
func (h *Handler) PostTemplateClip(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req struct {
		TemplateID string                    `json:"template_id"`
		Elements   []template.PartialElement `json:"elements"`
	}
	if err := httpkit.DecodeJSON(r, &req); err != nil {
		httpkit.WriteErr(w, 400, "VALIDATION_ERROR", "invalid json body", nil)
		return
	}
	if req.TemplateID == "" {
		httpkit.WriteErr(w, 400, "VALIDATION_ERROR", "template_id is required", map[string]any{"field": "template_id"})
		return
	}
	if len(req.Elements) == 0 {
		httpkit.WriteErr(w, 400, "VALIDATION_ERROR", "elements must not be empty", map[string]any{"field": "elements"})
		return
	}

	tpl, err := h.templates.Get(ctx, req.TemplateID)
	if err != nil {
		if errors.Is(err, template.ErrNotFound) {
			httpkit.WriteErr(w, 404, "TEMPLATE_NOT_FOUND", "template not found", map[string]any{"template_id": req.TemplateID})
			return
		}
		writeCodedErr(w, err)
		return
	}

	sc, err := template.BuildScene(tpl, req.Elements)
	if err != nil {
		writeCodedErr(w, err)
		return
	}

	job, err := h.supervisor.Submit(ctx, sc)
	if err != nil {
		writeCodedErr(w, err)
		return
	}

	httpkit.WriteJSON(w, 201, job)
}

// GetClip returns the current job record.
func (h *Handler) GetClip(w http.ResponseWriter, r *http.Request) {
	jobID := chi.URLParam(r, "jobId")

	job, err := h.jobs.Get(jobID)
	if err != nil {
		if errors.Is(err, jobstore.ErrNotFound) {
			httpkit.WriteErr(w, 404, "JOB_NOT_FOUND", "job not found", map[string]any{"job_id": jobID})
			return
		}
		writeCodedErr(w, err)
		return
	}

	httpkit.WriteJSON(w, 200, job)
}

// DownloadClip streams the rendered artifact straight from the job
// directory. Only completed jobs have one.
func (h *Handler) DownloadClip(w http.ResponseWriter, r *http.Request) {
	jobID := chi.URLParam(r, "jobId")

	job, err := h.jobs.Get(jobID)
	if err != nil {
		if errors.Is(err, jobstore.ErrNotFound) {
			httpkit.WriteErr(w, 404, "JOB_NOT_FOUND", "job not found", map[string]any{"job_id": jobID})
			return
		}
		writeCodedErr(w, err)
		return
	}
	if job.Status != jobstore.StatusCompleted {
		httpkit.WriteErr(w, 409, "JOB_NOT_COMPLETED", "job has not produced an output yet", map[string]any{
			"job_id": jobID,
			"status": job.Status,
		})
		return
	}

	outputPath, format, ok := h.findOutput(jobID)
	if !ok {
		if h.streamPublished(w, r, job) {
			return
		}
		httpkit.WriteErr(w, 404, "OUTPUT_NOT_FOUND", "rendered output file is missing", map[string]any{"job_id": jobID})
		return
	}

	w.Header().Set("Content-Type", contentTypeFor(format))
	w.Header().Set("Content-Disposition", `attachment; filename="output.`+string(format)+`"`)
	http.ServeFile(w, r, outputPath)
}

// streamPublished serves the artifact from the publishing backend when the
// job directory no longer holds it. A published job's output URL is the
// provider object key; the local fallback URL starts with "/" and is never
// a key.
func (h *Handler) streamPublished(w http.ResponseWriter, r *http.Request, job *jobstore.Job) bool {
	if h.sp == nil || job.OutputURL == nil {
		return false
	}
	key := *job.OutputURL
	if key == "" || strings.HasPrefix(key, "/") {
		return false
	}

	rc, contentType, size, err := h.sp.GetObject(r.Context(), key)
	if err != nil {
		return false
	}
	defer rc.Close()

	if contentType == "" {
		contentType = "application/octet-stream"
	}
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", `attachment; filename="`+path.Base(key)+`"`)
	if size > 0 {
		w.Header().Set("Content-Length", strconv.FormatInt(size, 10))
	}
	_, _ = io.Copy(w, rc)
	return true
}

// findOutput locates the artifact without re-reading input.json; the
// format is recovered by probing the known extensions.
func (h *Handler) findOutput(jobID string) (string, scene.Format, bool) {
	for _, f := range []scene.Format{scene.FormatMP4, scene.FormatMOV, scene.FormatAVI} {
		p := h.jobs.OutputPath(jobID, f)
		if st, err := os.Stat(p); err == nil && st.Size() > 0 {
			return p, f, true
		}
	}
	return "", "", false
}

func contentTypeFor(format scene.Format) string {
	switch format {
	case scene.FormatMP4:
		return "video/mp4"
	case scene.FormatMOV:
		return "video/quicktime"
	case scene.FormatAVI:
		return "video/x-msvideo"
	default:
		return "application/octet-stream"
	}
}

// writeCodedErr maps a coded error onto the HTTP envelope, defaulting to
// a bare 500 for anything uncoded.
func writeCodedErr(w http.ResponseWriter, err error) {
	var coded *errors.Error
	if errors.As(err, &coded) {
		httpkit.WriteErr(w, coded.HTTPStatus(), string(coded.Code), coded.Message, coded.Fields)
		return
	}
	httpkit.WriteErr(w, 500, "INTERNAL_ERROR", "internal error", nil)
}
