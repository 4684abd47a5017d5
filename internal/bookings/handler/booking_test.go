package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	apperrors "github.com/ekpono/booking-platform/pkg/errors"
	"github.com/ekpono/booking-platform/pkg/logger"
	"github.com/ekpono/booking-platform/pkg/middleware"
	"github.com/ekpono/booking-platform/pkg/model"

	"github.com/julienschmidt/httprouter"
)

// Mock service for testing
type mockBookingService struct {
	createFunc       func(ctx context.Context, booking *model.Booking) (*model.Booking, error)
	getByIDFunc      func(ctx context.Context, id string) (*model.Booking, error)
	listByUserFunc   func(ctx context.Context, userID string, weekAnchor *time.Time, limit int, offset int64) ([]*model.Booking, int64, error)
	listByClientFunc func(ctx context.Context, userID, clientID string, limit int, offset int64) ([]*model.Booking, int64, error)
	listWindowFunc   func(ctx context.Context, weekAnchor time.Time, limit int, offset int64) ([]*model.Booking, int64, error)
	updateFunc       func(ctx context.Context, id string, updates *model.BookingUpdate) (*model.Booking, error)
	deleteFunc       func(ctx context.Context, id string) error
}

func (m *mockBookingService) Create(ctx context.Context, booking *model.Booking) (*model.Booking, error) {
	if m.createFunc != nil {
		return m.createFunc(ctx, booking)
	}
	booking.ID = "65f1a2b3c4d5e6f7a8b9c0ff"
	return booking, nil
}

func (m *mockBookingService) GetByID(ctx context.Context, id string) (*model.Booking, error) {
	if m.getByIDFunc != nil {
		return m.getByIDFunc(ctx, id)
	}
	return nil, apperrors.NotFoundWithID("Booking", id)
}

func (m *mockBookingService) ListByUser(ctx context.Context, userID string, weekAnchor *time.Time, limit int, offset int64) ([]*model.Booking, int64, error) {
	if m.listByUserFunc != nil {
		return m.listByUserFunc(ctx, userID, weekAnchor, limit, offset)
	}
	return []*model.Booking{}, 0, nil
}

func (m *mockBookingService) ListByClient(ctx context.Context, userID, clientID string, limit int, offset int64) ([]*model.Booking, int64, error) {
	if m.listByClientFunc != nil {
		return m.listByClientFunc(ctx, userID, clientID, limit, offset)
	}
	return []*model.Booking{}, 0, nil
}

func (m *mockBookingService) ListWindow(ctx context.Context, weekAnchor time.Time, limit int, offset int64) ([]*model.Booking, int64, error) {
	if m.listWindowFunc != nil {
		return m.listWindowFunc(ctx, weekAnchor, limit, offset)
	}
	return []*model.Booking{}, 0, nil
}

func (m *mockBookingService) Update(ctx context.Context, id string, updates *model.BookingUpdate) (*model.Booking, error) {
	if m.updateFunc != nil {
		return m.updateFunc(ctx, id, updates)
	}
	return nil, apperrors.NotFoundWithID("Booking", id)
}

func (m *mockBookingService) Delete(ctx context.Context, id string) error {
	if m.deleteFunc != nil {
		return m.deleteFunc(ctx, id)
	}
	return nil
}

func testLogger() *logger.Logger {
	return logger.New(logger.Config{
		Level:   "error",
		Format:  logger.JSON,
		Service: "test",
	})
}

func newTestRouter(svc *mockBookingService) *httprouter.Router {
	router := httprouter.New()
	NewBookingHandler(svc, testLogger()).RegisterRoutes(router)
	return router
}

func identityRequest(method, target, userID, role string, body []byte) *http.Request {
	var req *http.Request
	if body != nil {
		req = httptest.NewRequest(method, target, bytes.NewReader(body))
	} else {
		req = httptest.NewRequest(method, target, nil)
	}

	ctx := context.WithValue(req.Context(), middleware.UserIDKey, userID)
	if role != "" {
		ctx = context.WithValue(ctx, middleware.UserRoleKey, role)
	}
	return req.WithContext(ctx)
}

func storedBooking(userID string) *model.Booking {
	return &model.Booking{
		ID:        "65f1a2b3c4d5e6f7a8b9c0ff",
		UserID:    userID,
		ClientID:  "65f1a2b3c4d5e6f7a8b9c0d1",
		Title:     "Strategy session",
		StartTime: time.Date(2026, 3, 4, 9, 0, 0, 0, time.UTC),
		EndTime:   time.Date(2026, 3, 4, 10, 0, 0, 0, time.UTC),
	}
}

func TestCreateReturns201(t *testing.T) {
	router := newTestRouter(&mockBookingService{})

	body, _ := json.Marshal(storedBooking("user-1"))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, identityRequest(http.MethodPost, "/api/v1/bookings", "user-1", "", body))

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestCreateOverlapReturns422WithOverlapKey(t *testing.T) {
	booking := storedBooking("user-1")
	svc := &mockBookingService{
		createFunc: func(ctx context.Context, b *model.Booking) (*model.Booking, error) {
			return nil, apperrors.Overlap(b.UserID, b.StartTime, b.EndTime)
		},
	}
	router := newTestRouter(svc)

	body, _ := json.Marshal(booking)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, identityRequest(http.MethodPost, "/api/v1/bookings", "user-1", "", body))

	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp struct {
		Message string              `json:"message"`
		Errors  map[string][]string `json:"errors"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Message != "Validation failed" {
		t.Fatalf("unexpected message: %q", resp.Message)
	}
	if len(resp.Errors["overlap"]) == 0 {
		t.Fatalf("expected errors.overlap messages, got %v", resp.Errors)
	}
}

func TestCreateForAnotherUserIsForbidden(t *testing.T) {
	router := newTestRouter(&mockBookingService{})

	body, _ := json.Marshal(storedBooking("user-2"))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, identityRequest(http.MethodPost, "/api/v1/bookings", "user-1", "", body))

	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", rec.Code)
	}
}

func TestCreateForAnotherUserAllowedForAdmin(t *testing.T) {
	router := newTestRouter(&mockBookingService{})

	body, _ := json.Marshal(storedBooking("user-2"))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, identityRequest(http.MethodPost, "/api/v1/bookings", "admin-1", middleware.RoleAdmin, body))

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestGetByIDHidesOtherUsersBookings(t *testing.T) {
	svc := &mockBookingService{
		getByIDFunc: func(ctx context.Context, id string) (*model.Booking, error) {
			return storedBooking("user-2"), nil
		},
	}
	router := newTestRouter(svc)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, identityRequest(http.MethodGet, "/api/v1/bookings/id/65f1a2b3c4d5e6f7a8b9c0ff", "user-1", "", nil))

	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, identityRequest(http.MethodGet, "/api/v1/bookings/id/65f1a2b3c4d5e6f7a8b9c0ff", "admin-1", middleware.RoleAdmin, nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("admin must see any booking, got %d", rec.Code)
	}
}

func TestGetByIDNotFoundReturns404(t *testing.T) {
	router := newTestRouter(&mockBookingService{})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, identityRequest(http.MethodGet, "/api/v1/bookings/id/missing", "user-1", "", nil))

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestListPassesWeekAnchor(t *testing.T) {
	var receivedUser string
	var receivedAnchor *time.Time
	svc := &mockBookingService{
		listByUserFunc: func(ctx context.Context, userID string, weekAnchor *time.Time, limit int, offset int64) ([]*model.Booking, int64, error) {
			receivedUser = userID
			receivedAnchor = weekAnchor
			return []*model.Booking{}, 0, nil
		},
	}
	router := newTestRouter(svc)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, identityRequest(http.MethodGet, "/api/v1/bookings?week=2026-03-04", "user-1", "", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if receivedUser != "user-1" {
		t.Fatalf("expected listing scoped to caller, got %q", receivedUser)
	}
	if receivedAnchor == nil || !receivedAnchor.Equal(time.Date(2026, 3, 4, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("unexpected week anchor: %v", receivedAnchor)
	}
}

func TestListByClientScopesToCaller(t *testing.T) {
	var receivedUser, receivedClient string
	svc := &mockBookingService{
		listByClientFunc: func(ctx context.Context, userID, clientID string, limit int, offset int64) ([]*model.Booking, int64, error) {
			receivedUser = userID
			receivedClient = clientID
			return []*model.Booking{}, 0, nil
		},
	}
	router := newTestRouter(svc)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, identityRequest(http.MethodGet, "/api/v1/bookings?client_id=65f1a2b3c4d5e6f7a8b9c0d1", "user-1", "", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if receivedUser != "user-1" {
		t.Fatalf("expected listing scoped to caller, got %q", receivedUser)
	}
	if receivedClient != "65f1a2b3c4d5e6f7a8b9c0d1" {
		t.Fatalf("unexpected client filter: %q", receivedClient)
	}
}

func TestListRejectsMalformedWeek(t *testing.T) {
	router := newTestRouter(&mockBookingService{})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, identityRequest(http.MethodGet, "/api/v1/bookings?week=not-a-date", "user-1", "", nil))

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestListOtherCalendarRequiresAdmin(t *testing.T) {
	svc := &mockBookingService{
		listByUserFunc: func(ctx context.Context, userID string, weekAnchor *time.Time, limit int, offset int64) ([]*model.Booking, int64, error) {
			return []*model.Booking{}, 0, nil
		},
	}
	router := newTestRouter(svc)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, identityRequest(http.MethodGet, "/api/v1/bookings?user_id=user-2", "user-1", "", nil))
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, identityRequest(http.MethodGet, "/api/v1/bookings?user_id=user-2", "admin-1", middleware.RoleAdmin, nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 for admin, got %d", rec.Code)
	}
}

func TestCalendarRequiresAdmin(t *testing.T) {
	router := newTestRouter(&mockBookingService{})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, identityRequest(http.MethodGet, "/api/v1/calendar?week=2026-03-04", "user-1", "", nil))
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, identityRequest(http.MethodGet, "/api/v1/calendar?week=2026-03-04", "admin-1", middleware.RoleAdmin, nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 for admin, got %d", rec.Code)
	}
}

func TestUpdateReturnsUpdatedBooking(t *testing.T) {
	svc := &mockBookingService{
		getByIDFunc: func(ctx context.Context, id string) (*model.Booking, error) {
			return storedBooking("user-1"), nil
		},
		updateFunc: func(ctx context.Context, id string, updates *model.BookingUpdate) (*model.Booking, error) {
			b := storedBooking("user-1")
			b.Title = updates.Title
			return b, nil
		},
	}
	router := newTestRouter(svc)

	body, _ := json.Marshal(map[string]string{"title": "Renamed session"})
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, identityRequest(http.MethodPatch, "/api/v1/bookings/id/65f1a2b3c4d5e6f7a8b9c0ff", "user-1", "", body))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp struct {
		Data model.Booking `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Data.Title != "Renamed session" {
		t.Fatalf("expected updated title, got %q", resp.Data.Title)
	}
}

func TestUpdateForeignBookingIsForbidden(t *testing.T) {
	svc := &mockBookingService{
		getByIDFunc: func(ctx context.Context, id string) (*model.Booking, error) {
			return storedBooking("user-2"), nil
		},
	}
	router := newTestRouter(svc)

	body, _ := json.Marshal(map[string]string{"title": "Renamed session"})
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, identityRequest(http.MethodPatch, "/api/v1/bookings/id/65f1a2b3c4d5e6f7a8b9c0ff", "user-1", "", body))

	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", rec.Code)
	}
}

func TestDeleteReturns204(t *testing.T) {
	svc := &mockBookingService{
		getByIDFunc: func(ctx context.Context, id string) (*model.Booking, error) {
			return storedBooking("user-1"), nil
		},
	}
	router := newTestRouter(svc)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, identityRequest(http.MethodDelete, "/api/v1/bookings/id/65f1a2b3c4d5e6f7a8b9c0ff", "user-1", "", nil))

	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", rec.Code)
	}
}
