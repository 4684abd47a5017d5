package handler

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/ekpono/booking-platform/internal/bookings/service"
	apperrors "github.com/ekpono/booking-platform/pkg/errors"
	httputil "github.com/ekpono/booking-platform/pkg/http"
	"github.com/ekpono/booking-platform/pkg/logger"
	"github.com/ekpono/booking-platform/pkg/middleware"
	"github.com/ekpono/booking-platform/pkg/model"

	"github.com/julienschmidt/httprouter"
)

type BookingHandler struct {
	service service.BookingService
	log     *logger.Logger
}

func NewBookingHandler(service service.BookingService, log *logger.Logger) *BookingHandler {
	return &BookingHandler{
		service: service,
		log:     log,
	}
}

func (h *BookingHandler) Create(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var booking model.Booking
	if err := json.NewDecoder(r.Body).Decode(&booking); err != nil {
		if writeErr := httputil.WriteJSON(w, http.StatusBadRequest, httputil.ErrorResponse{
			Error: "Invalid request body",
		}); writeErr != nil {
			h.log.Error("failed to write JSON response", "handler", "Create", "operation", "WriteJSON", "error", writeErr)
		}
		return
	}

	caller := middleware.UserIDFrom(r.Context())
	if booking.UserID == "" {
		booking.UserID = caller
	}
	if booking.UserID != caller && !isAdmin(r) {
		h.writeError(w, "Create", apperrors.Forbidden("Cannot create bookings on another user's calendar"))
		return
	}

	created, err := h.service.Create(r.Context(), &booking)
	if err != nil {
		h.writeError(w, "Create", err)
		return
	}

	if err := httputil.WriteCreated(w, created); err != nil {
		h.log.Error("failed to write created response", "handler", "Create", "operation", "WriteCreated", "error", err)
	}
}

func (h *BookingHandler) GetByID(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	id := ps.ByName("id")

	booking, err := h.service.GetByID(r.Context(), id)
	if err != nil {
		h.writeError(w, "GetByID", err)
		return
	}

	if booking.UserID != middleware.UserIDFrom(r.Context()) && !isAdmin(r) {
		h.writeError(w, "GetByID", apperrors.Forbidden("Cannot view another user's booking"))
		return
	}

	if err := httputil.WriteSuccess(w, booking); err != nil {
		h.log.Error("failed to write success response", "handler", "GetByID", "operation", "WriteSuccess", "error", err)
	}
}

// List returns the caller's bookings. An optional week parameter
// narrows the listing to the Monday–Sunday bucket containing that
// date, and client_id narrows it to a single client. Admins may
// inspect another calendar via user_id.
func (h *BookingHandler) List(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	limit, offset, err := httputil.ExtractLimitOffset(r)
	if err != nil {
		h.writeError(w, "List", err)
		return
	}

	weekAnchor, err := httputil.ExtractWeekAnchor(r)
	if err != nil {
		h.writeError(w, "List", err)
		return
	}

	userID := middleware.UserIDFrom(r.Context())
	if requested := r.URL.Query().Get("user_id"); requested != "" && requested != userID {
		if !isAdmin(r) {
			h.writeError(w, "List", apperrors.Forbidden("Cannot list another user's bookings"))
			return
		}
		userID = requested
	}

	var (
		bookings []*model.Booking
		total    int64
	)
	if clientID := r.URL.Query().Get("client_id"); clientID != "" {
		bookings, total, err = h.service.ListByClient(r.Context(), userID, clientID, limit, offset)
	} else {
		bookings, total, err = h.service.ListByUser(r.Context(), userID, weekAnchor, limit, offset)
	}
	if err != nil {
		h.writeError(w, "List", err)
		return
	}

	if err := httputil.WritePaginated(w, bookings, total, limit, int(offset)); err != nil {
		h.log.Error("failed to write paginated response", "handler", "List", "operation", "WritePaginated", "error", err)
	}
}

// Calendar is the cross-user week listing. Admin only.
func (h *BookingHandler) Calendar(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	if !isAdmin(r) {
		h.writeError(w, "Calendar", apperrors.Forbidden("Calendar listing requires the admin role"))
		return
	}

	limit, offset, err := httputil.ExtractLimitOffset(r)
	if err != nil {
		h.writeError(w, "Calendar", err)
		return
	}

	weekAnchor, err := httputil.ExtractWeekAnchor(r)
	if err != nil {
		h.writeError(w, "Calendar", err)
		return
	}
	anchor := time.Now()
	if weekAnchor != nil {
		anchor = *weekAnchor
	}

	bookings, total, err := h.service.ListWindow(r.Context(), anchor, limit, offset)
	if err != nil {
		h.writeError(w, "Calendar", err)
		return
	}

	if err := httputil.WritePaginated(w, bookings, total, limit, int(offset)); err != nil {
		h.log.Error("failed to write paginated response", "handler", "Calendar", "operation", "WritePaginated", "error", err)
	}
}

func (h *BookingHandler) Update(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	id := ps.ByName("id")

	var updates model.BookingUpdate
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

	caller := middleware.UserIDFrom(r.Context())
	if existing.UserID != caller && !isAdmin(r) {
		h.writeError(w, "Update", apperrors.Forbidden("Cannot modify another user's booking"))
		return
	}
	if updates.UserID != "" && updates.UserID != caller && !isAdmin(r) {
		h.writeError(w, "Update", apperrors.Forbidden("Cannot move a booking to another user's calendar"))
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

func (h *BookingHandler) Delete(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	id := ps.ByName("id")

	existing, err := h.service.GetByID(r.Context(), id)
	if err != nil {
		h.writeError(w, "Delete", err)
		return
	}

	if existing.UserID != middleware.UserIDFrom(r.Context()) && !isAdmin(r) {
		h.writeError(w, "Delete", apperrors.Forbidden("Cannot delete another user's booking"))
		return
	}

	if err := h.service.Delete(r.Context(), id); err != nil {
		h.writeError(w, "Delete", err)
		return
	}

	httputil.WriteNoContent(w)
}

func (h *BookingHandler) writeError(w http.ResponseWriter, handlerName string, err error) {
	if writeErr := httputil.WriteError(w, err); writeErr != nil {
		h.log.Error("failed to write error response", "handler", handlerName, "operation", "WriteError", "error", writeErr)
	}
}

func isAdmin(r *http.Request) bool {
	return middleware.RoleFrom(r.Context()) == middleware.RoleAdmin
}

func (h *BookingHandler) RegisterRoutes(router *httprouter.Router) {
	router.POST("/api/v1/bookings", h.Create)
	router.GET("/api/v1/bookings", h.List)
	router.GET("/api/v1/bookings/id/:id", h.GetByID)
	router.PATCH("/api/v1/bookings/id/:id", h.Update)
	router.DELETE("/api/v1/bookings/id/:id", h.Delete)
	router.GET("/api/v1/calendar", h.Calendar)
}
