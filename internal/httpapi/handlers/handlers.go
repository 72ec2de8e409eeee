package handlers

import (
	"clipforge/internal/jobstore"
	"clipforge/internal/pkg/logger"
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

type Handler struct {
	jobs       *jobstore.Store
	supervisor *render.Supervisor
	templates  template.Store
	sp         ports.StorageProvider
	log        *logger.Logger
}

func New(d Deps) *Handler {
	log := d.Log
	if log == nil {
		log = logger.NewDefault()
	}
	return &Handler{
		jobs:       d.Jobs,
		supervisor: d.Supervisor,
		templates:  d.Templates,
		sp:         d.SP,
		log:        log.WithComponent("api"),
	}
}
