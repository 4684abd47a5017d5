package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	apperrors "github.com/ekpono/booking-platform/pkg/errors"
	"github.com/ekpono/booking-platform/pkg/logger"
	"github.com/ekpono/booking-platform/pkg/middleware"
	"github.com/ekpono/booking-platform/pkg/model"

	"github.com/julienschmidt/httprouter"
)

type mockClientService struct {
	createFunc     func(ctx context.Context, client *model.Client) (*model.Client, error)
	getByIDFunc    func(ctx context.Context, id string) (*model.Client, error)
	listByUserFunc func(ctx context.Context, userID string, limit int, offset int64) ([]*model.Client, int64, error)
	updateFunc     func(ctx context.Context, id string, updates *model.ClientUpdate) (*model.Client, error)
	deleteFunc     func(ctx context.Context, id string) error
}

func (m *mockClientService) Create(ctx context.Context, client *model.Client) (*model.Client, error) {
	if m.createFunc != nil {
		return m.createFunc(ctx, client)
	}
	client.ID = "65f1a2b3c4d5e6f7a8b9c0aa"
	return client, nil
}

func (m *mockClientService) GetByID(ctx context.Context, id string) (*model.Client, error) {
	if m.getByIDFunc != nil {
		return m.getByIDFunc(ctx, id)
	}
	return nil, apperrors.NotFoundWithID("Client", id)
}

func (m *mockClientService) ListByUser(ctx context.Context, userID string, limit int, offset int64) ([]*model.Client, int64, error) {
	if m.listByUserFunc != nil {
		return m.listByUserFunc(ctx, userID, limit, offset)
	}
	return []*model.Client{}, 0, nil
}

func (m *mockClientService) Update(ctx context.Context, id string, updates *model.ClientUpdate) (*model.Client, error) {
	if m.updateFunc != nil {
		return m.updateFunc(ctx, id, updates)
	}
	return nil, apperrors.NotFoundWithID("Client", id)
}

func (m *mockClientService) Delete(ctx context.Context, id string) error {
	if m.deleteFunc != nil {
		return m.deleteFunc(ctx, id)
	}
	return nil
}

func newTestRouter(svc *mockClientService) *httprouter.Router {
	router := httprouter.New()
	log := logger.New(logger.Config{Level: "error", Format: logger.JSON, Service: "test"})
	NewClientHandler(svc, log).RegisterRoutes(router)
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

func TestCreateForcesOwnership(t *testing.T) {
	var received *model.Client
	svc := &mockClientService{
		createFunc: func(ctx context.Context, client *model.Client) (*model.Client, error) {
			received = client
			return client, nil
		},
	}
	router := newTestRouter(svc)

	body, _ := json.Marshal(model.Client{
		UserID: "someone-else",
		Name:   "Ada Lovelace",
		Email:  "ada@example.com",
	})
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, identityRequest(http.MethodPost, "/api/v1/clients", "user-1", "", body))

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	if received.UserID != "user-1" {
		t.Fatalf("client must be owned by the caller, got %q", received.UserID)
	}
}

func TestCreateDuplicateEmailReturns409(t *testing.T) {
	svc := &mockClientService{
		createFunc: func(ctx context.Context, client *model.Client) (*model.Client, error) {
			return nil, apperrors.Conflict("A client with this email already exists")
		},
	}
	router := newTestRouter(svc)

	body, _ := json.Marshal(model.Client{Name: "Ada Lovelace", Email: "ada@example.com"})
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, identityRequest(http.MethodPost, "/api/v1/clients", "user-1", "", body))

	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d", rec.Code)
	}
}

func TestGetByIDHidesForeignClients(t *testing.T) {
	svc := &mockClientService{
		getByIDFunc: func(ctx context.Context, id string) (*model.Client, error) {
			return &model.Client{ID: id, UserID: "user-2", Name: "Ada", Email: "ada@example.com"}, nil
		},
	}
	router := newTestRouter(svc)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, identityRequest(http.MethodGet, "/api/v1/clients/id/65f1a2b3c4d5e6f7a8b9c0aa", "user-1", "", nil))

	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", rec.Code)
	}
}

func TestDeleteOwnClientReturns204(t *testing.T) {
	svc := &mockClientService{
		getByIDFunc: func(ctx context.Context, id string) (*model.Client, error) {
			return &model.Client{ID: id, UserID: "user-1", Name: "Ada", Email: "ada@example.com"}, nil
		},
	}
	router := newTestRouter(svc)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, identityRequest(http.MethodDelete, "/api/v1/clients/id/65f1a2b3c4d5e6f7a8b9c0aa", "user-1", "", nil))

	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", rec.Code)
	}
}
