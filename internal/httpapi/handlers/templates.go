package handlers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"clipforge/internal/httpapi/util"
	"clipforge/internal/httpkit"
	"clipforge/internal/pkg/errors"
	"clipforge/internal/scene"
	"clipforge/internal/template"
)

type CreateTemplateRequest struct {
	Name     string                    `json:"name"`
	Output   scene.Output              `json:"output"`
	Defaults map[string]map[string]any `json:"defaults,omitempty"`
}

func (h *Handler) PostTemplate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req CreateTemplateRequest
	if err := httpkit.DecodeJSON(r, &req); err != nil {
		httpkit.WriteErr(w, 400, "VALIDATION_ERROR", "invalid json body", nil)
		return
	}

	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		httpkit.WriteErr(w, 400, "VALIDATION_ERROR", "name is required", map[string]any{"field": "name"})
		return
	}
	if err := (&scene.Scene{Output: req.Output}).Validate(); err != nil {
		writeCodedErr(w, err)
		return
	}

	tpl := &template.Template{
		ID:       util.NewID("tpl"),
		Name:     req.Name,
		Output:   req.Output,
		Defaults: req.Defaults,
	}

	if err := h.templates.Create(ctx, tpl); err != nil {
		if errors.Is(err, template.ErrNameExists) {
			httpkit.WriteErr(w, 409, "TEMPLATE_NAME_EXISTS", "template name already exists", map[string]any{"field": "name"})
			return
		}
		writeCodedErr(w, err)
		return
	}

	httpkit.WriteJSON(w, 201, map[string]any{"template": tpl})
}

func (h *Handler) ListTemplates(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	tpls, err := h.templates.List(ctx)
	if err != nil {
		writeCodedErr(w, err)
		return
	}
	if tpls == nil {
		tpls = []template.Template{}
	}

	httpkit.WriteJSON(w, 200, map[string]any{"templates": tpls})
}

func (h *Handler) GetTemplate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	templateID := chi.URLParam(r, "templateId")

	tpl, err := h.templates.Get(ctx, templateID)
	if err != nil {
		if errors.Is(err, template.ErrNotFound) {
			httpkit.WriteErr(w, 404, "TEMPLATE_NOT_FOUND", "template not found", map[string]any{"template_id": templateID})
			return
		}
		writeCodedErr(w, err)
		return
	}

	httpkit.WriteJSON(w, 200, map[string]any{"template": tpl})
}

func (h *Handler) DeleteTemplate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	templateID := chi.URLParam(r, "templateId")

	if err := h.templates.Delete(ctx, templateID); err != nil {
		if errors.Is(err, template.ErrNotFound) {
			httpkit.WriteErr(w, 404, "TEMPLATE_NOT_FOUND", "template not found", map[string]any{"template_id": templateID})
			return
		}
		writeCodedErr(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
