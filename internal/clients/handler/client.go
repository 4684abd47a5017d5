package handler

import (
	"encoding/json"
	"net/http"

	"github.com/ekpono/booking-platform/internal/clients/service"
	apperrors "github.com/ekpono/booking-platform/pkg/errors"
	httputil "github.com/ekpono/booking-platform/pkg/http"
	"github.com/ekpono/booking-platform/pkg/logger"
	"github.com/ekpono/booking-platform/pkg/middleware"
	"github.com/ekpono/booking-platform/pkg/model"

	"github.com/julienschmidt/httprouter"
)

type ClientHandler struct {
	service service.ClientService
	log     *logger.Logger
}

func NewClientHandler(service service.ClientService, log *logger.Logger) *ClientHandler {
	return &ClientHandler{
		service: service,
		log:     log,
	}
}

func (h *ClientHandler) Create(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var client model.Client
	if err := json.NewDecoder(r.Body).Decode(&client); err != nil {
		if writeErr := httputil.WriteJSON(w, http.StatusBadRequest, httputil.ErrorResponse{
			Error: "Invalid request body",
		}); writeErr != nil {
			h.log.Error("failed to write JSON response", "handler", "Create", "operation", "WriteJSON", "error", writeErr)
		}
		return
	}

	// Address book entries always belong to the caller.
	client.UserID = middleware.UserIDFrom(r.Context())

	created, err := h.service.Create(r.Context(), &client)
	if err != nil {
		h.writeError(w, "Create", err)
		return
	}

	if err := httputil.WriteCreated(w, created); err != nil {
		h.log.Error("failed to write created response", "handler", "Create", "operation", "WriteCreated", "error", err)
	}
}

func (h *ClientHandler) GetByID(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	id := ps.ByName("id")

	client, err := h.service.GetByID(r.Context(), id)
	if err != nil {
		h.writeError(w, "GetByID", err)
		return
	}

	if client.UserID != middleware.UserIDFrom(r.Context()) && !isAdmin(r) {
		h.writeError(w, "GetByID", apperrors.Forbidden("Cannot view another user's client"))
		return
	}

	if err := httputil.WriteSuccess(w, client); err != nil {
		h.log.Error("failed to write success response", "handler", "GetByID", "operation", "WriteSuccess", "error", err)
	}
}

func (h *ClientHandler) List(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	limit, offset, err := httputil.ExtractLimitOffset(r)
	if err != nil {
		h.writeError(w, "List", err)
		return
	}

	clients, total, err := h.service.ListByUser(r.Context(), middleware.UserIDFrom(r.Context()), limit, offset)
	if err != nil {
		h.writeError(w, "List", err)
		return
	}

	if err := httputil.WritePaginated(w, clients, total, limit, int(offset)); err != nil {
		h.log.Error("failed to write paginated response", "handler", "List", "operation", "WritePaginated", "error", err)
	}
}

func (h *ClientHandler) Update(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	id := ps.ByName("id")

	var updates model.ClientUpdate
	if err := json.NewDecoder(r.Body).Decode(&updates); err != nil {
		if writeErr := httputil.WriteJSON(w, http.StatusBadRequest, httputil.ErrorResponse{
			Error: "Invalid request body",
		}); writeErr != nil {
			h.log.Error("failed to write JSON response", "handler", "Update", "operation", "WriteJSON", "error", writeErr)
		}
		return
	}

	existing, err := h.service.GetByID(r.Context(), id)
	if err != nil {
		h.writeError(w, "Update", err)
		return
	}
	if existing.UserID != middleware.UserIDFrom(r.Context()) && !isAdmin(r) {
		h.writeError(w, "Update", apperrors.Forbidden("Cannot modify another user's client"))
		return
	}

	updated, err := h.service.Update(r.Context(), id, &updates)
	if err != nil {
		h.writeError(w, "Update", err)
		return
	}

	if err := httputil.WriteSuccess(w, updated); err != nil {
		h.log.Error("failed to write success response", "handler", "Update", "operation", "WriteSuccess", "error", err)
	}
}

func (h *ClientHandler) Delete(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	id := ps.ByName("id")

	existing, err := h.service.GetByID(r.Context(), id)
	if err != nil {
		h.writeError(w, "Delete", err)
		return
	}
	if existing.UserID != middleware.UserIDFrom(r.Context()) && !isAdmin(r) {
		h.writeError(w, "Delete", apperrors.Forbidden("Cannot delete another user's client"))
		return
	}

	if err := h.service.Delete(r.Context(), id); err != nil {
		h.writeError(w, "Delete", err)
		return
	}

	httputil.WriteNoContent(w)
}

func (h *ClientHandler) writeError(w http.ResponseWriter, handlerName string, err error) {
	if writeErr := httputil.WriteError(w, err); writeErr != nil {
		h.log.Error("failed to write error response", "handler", handlerName, "operation", "WriteError", "error", writeErr)
	}
}

func isAdmin(r *http.Request) bool {
	return middleware.RoleFrom(r.Context()) == middleware.RoleAdmin
}

func (h *ClientHandler) RegisterRoutes(router *httprouter.Router) {
	router.POST("/api/v1/clients", h.Create)
	router.GET("/api/v1/clients", h.List)
	router.GET("/api/v1/clients/id/:id", h.GetByID)
	router.PATCH("/api/v1/clients/id/:id", h.Update)
	router.DELETE("/api/v1/clients/id/:id", h.Delete)
}
