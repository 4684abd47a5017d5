package service

import (
	"context"
	"testing"
	"time"

	clientserrors "github.com/ekpono/booking-platform/internal/clients/errors"
	"github.com/ekpono/booking-platform/internal/clients/validator"
	"github.com/ekpono/booking-platform/pkg/config"
	apperrors "github.com/ekpono/booking-platform/pkg/errors"
	"github.com/ekpono/booking-platform/pkg/logger"
	"github.com/ekpono/booking-platform/pkg/model"
)

type mockClientRepo struct {
	createFunc      func(ctx context.Context, client *model.Client) error
	findByIDFunc    func(ctx context.Context, id string) (*model.Client, error)
	findByUserFunc  func(ctx context.Context, userID string, limit int, offset int64) ([]*model.Client, error)
	updateFunc      func(ctx context.Context, id string, client *model.Client) (*model.Client, error)
	deleteFunc      func(ctx context.Context, id string) error
	countByUserFunc func(ctx context.Context, userID string) (int64, error)
}

func (m *mockClientRepo) Create(ctx context.Context, client *model.Client) error {
	if m.createFunc != nil {
		return m.createFunc(ctx, client)
	}
	client.ID = "65f1a2b3c4d5e6f7a8b9c0aa"
	return nil
}

func (m *mockClientRepo) FindByID(ctx context.Context, id string) (*model.Client, error) {
	if m.findByIDFunc != nil {
		return m.findByIDFunc(ctx, id)
	}
	return nil, clientserrors.ErrNotFound
}

func (m *mockClientRepo) FindByUser(ctx context.Context, userID string, limit int, offset int64) ([]*model.Client, error) {
	if m.findByUserFunc != nil {
		return m.findByUserFunc(ctx, userID, limit, offset)
	}
	return []*model.Client{}, nil
}

func (m *mockClientRepo) Update(ctx context.Context, id string, client *model.Client) (*model.Client, error) {
	if m.updateFunc != nil {
		return m.updateFunc(ctx, id, client)
	}
	return nil, clientserrors.ErrNotFound
}

func (m *mockClientRepo) Delete(ctx context.Context, id string) error {
	if m.deleteFunc != nil {
		return m.deleteFunc(ctx, id)
	}
	return nil
}

func (m *mockClientRepo) CountByUser(ctx context.Context, userID string) (int64, error) {
	if m.countByUserFunc != nil {
		return m.countByUserFunc(ctx, userID)
	}
	return 0, nil
}

func newTestService(repo *mockClientRepo) ClientService {
	cfg := &config.Config{
		Log: logger.New(logger.Config{
			Level:   "error",
			Format:  logger.JSON,
			Service: "test",
		}),
	}
	return NewClientService(repo, validator.NewClientValidator(cfg.Log), cfg)
}

func validClient() *model.Client {
	return &model.Client{
		UserID: "user-1",
		Name:   "Ada Lovelace",
		Email:  "ada@example.com",
		Phone:  "+14155550123",
	}
}

func assertCode(t *testing.T, err error, code string) {
	t.Helper()
	appErr := apperrors.AsAppError(err)
	if appErr == nil {
		t.Fatalf("expected AppError with code %s, got %v", code, err)
	}
	if appErr.Code != code {
		t.Fatalf("expected code %s, got %s (%v)", code, appErr.Code, err)
	}
}

func TestCreateNormalizesEmail(t *testing.T) {
	var stored *model.Client
	repo := &mockClientRepo{
		createFunc: func(ctx context.Context, client *model.Client) error {
			stored = client
			return nil
		},
	}
	svc := newTestService(repo)

	c := validClient()
	c.Email = "  Ada@Example.COM "
	if _, err := svc.Create(context.Background(), c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if stored.Email != "ada@example.com" {
		t.Fatalf("expected normalized email, got %q", stored.Email)
	}
}

func TestCreateRejectsInvalidEmail(t *testing.T) {
	svc := newTestService(&mockClientRepo{})

	c := validClient()
	c.Email = "not-an-email"
	_, err := svc.Create(context.Background(), c)
	assertCode(t, err, apperrors.CodeValidation)
}

func TestCreateDuplicateEmailIsConflict(t *testing.T) {
	repo := &mockClientRepo{
		createFunc: func(ctx context.Context, client *model.Client) error {
			return clientserrors.ErrDuplicateEmail
		},
	}
	svc := newTestService(repo)

	_, err := svc.Create(context.Background(), validClient())
	assertCode(t, err, apperrors.CodeConflict)
}

func TestGetByIDNotFound(t *testing.T) {
	svc := newTestService(&mockClientRepo{})

	_, err := svc.GetByID(context.Background(), "missing")
	assertCode(t, err, apperrors.CodeNotFound)
}

func TestUpdateMergesPartialFields(t *testing.T) {
	existing := validClient()
	existing.ID = "65f1a2b3c4d5e6f7a8b9c0aa"
	existing.CreatedAt = time.Now()

	var merged *model.Client
	repo := &mockClientRepo{
		findByIDFunc: func(ctx context.Context, id string) (*model.Client, error) {
			found := *existing
			return &found, nil
		},
		updateFunc: func(ctx context.Context, id string, client *model.Client) (*model.Client, error) {
			merged = client
			return client, nil
		},
	}
	svc := newTestService(repo)

	_, err := svc.Update(context.Background(), existing.ID, &model.ClientUpdate{Name: "Grace Hopper"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if merged.Name != "Grace Hopper" {
		t.Fatalf("expected updated name, got %q", merged.Name)
	}
	if merged.Email != existing.Email {
		t.Fatalf("untouched fields must survive the merge, got %q", merged.Email)
	}
}

func TestDeleteNotFound(t *testing.T) {
	repo := &mockClientRepo{
		deleteFunc: func(ctx context.Context, id string) error {
			return clientserrors.ErrNotFound
		},
	}
	svc := newTestService(repo)

	err := svc.Delete(context.Background(), "65f1a2b3c4d5e6f7a8b9c0aa")
	assertCode(t, err, apperrors.CodeNotFound)
}
