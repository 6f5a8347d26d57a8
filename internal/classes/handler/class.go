package handler

import (
	"net/http"

	"fitstudio/internal/classes/service"
	httputil "fitstudio/pkg/http"
	"fitstudio/pkg/logger"
	"fitstudio/pkg/model"

	"github.com/julienschmidt/httprouter"
)

type ClassHandler struct {
	service service.ClassService
	log     *logger.Logger
}

func NewClassHandler(service service.ClassService, log *logger.Logger) *ClassHandler {
	return &ClassHandler{
		service: service,
		log:     log,
	}
}

func (h *ClassHandler) Create(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var class model.FitnessClass
	if err := httputil.DecodeJSON(r, &class); err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "Create", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	if err := h.service.Create(r.Context(), &class); err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "Create", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteCreated(w, class); err != nil {
		h.log.Error("failed to write created response", "handler", "Create", "operation", "WriteCreated", "error", err)
	}
}

func (h *ClassHandler) GetByID(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	id := ps.ByName("id")

	class, err := h.service.GetByID(r.Context(), id)
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "GetByID", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteSuccess(w, class); err != nil {
		h.log.Error("failed to write success response", "handler", "GetByID", "operation", "WriteSuccess", "error", err)
	}
}

// ListUpcoming accepts class_type, instructor and RFC3339 from/to query
// parameters.
func (h *ClassHandler) ListUpcoming(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	query := r.URL.Query()
	filter := model.ClassFilter{
		ClassType:  query.Get("class_type"),
		Instructor: query.Get("instructor"),
	}

	var err error
	if filter.From, err = httputil.QueryTime(r, "from"); err == nil {
		filter.To, err = httputil.QueryTime(r, "to")
	}
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "ListUpcoming", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	classes, err := h.service.ListUpcoming(r.Context(), filter)
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "ListUpcoming", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteList(w, classes, len(classes)); err != nil {
		h.log.Error("failed to write list response", "handler", "ListUpcoming", "operation", "WriteList", "error", err)
	}
}

func (h *ClassHandler) RegisterRoutes(router *httprouter.Router) {
	router.POST("/api/v1/classes", h.Create)
	router.GET("/api/v1/classes", h.ListUpcoming)
	router.GET("/api/v1/classes/id/:id", h.GetByID)
}
