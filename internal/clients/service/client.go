package service

import (
	"context"
	"errors"
	"sync"

	clientserrors "github.com/ekpono/booking-platform/internal/clients/errors"
	"github.com/ekpono/booking-platform/internal/clients/repository"
	"github.com/ekpono/booking-platform/internal/clients/validator"
	"github.com/ekpono/booking-platform/pkg/config"
	apperrors "github.com/ekpono/booking-platform/pkg/errors"
	"github.com/ekpono/booking-platform/pkg/model"
	"github.com/ekpono/booking-platform/pkg/sanitizer"
)

// ClientService manages a user's address book. Entries are scoped to
// their owning user; a duplicate email within one user's book is a
// conflict, the same email under two users is not.
type ClientService interface {
	Create(ctx context.Context, client *model.Client) (*model.Client, error)
	GetByID(ctx context.Context, id string) (*model.Client, error)
	ListByUser(ctx context.Context, userID string, limit int, offset int64) ([]*model.Client, int64, error)
	Update(ctx context.Context, id string, updates *model.ClientUpdate) (*model.Client, error)
	Delete(ctx context.Context, id string) error
}

type clientService struct {
	repo      repository.ClientRepository
	validator *validator.ClientValidator
	cfg       *config.Config
}

func NewClientService(repo repository.ClientRepository, clientValidator *validator.ClientValidator, cfg *config.Config) ClientService {
	return &clientService{
		repo:      repo,
		validator: clientValidator,
		cfg:       cfg,
	}
}

func (s *clientService) Create(ctx context.Context, client *model.Client) (*model.Client, error) {
	s.sanitize(client)
	if err := s.validator.Validate(client); err != nil {
		s.cfg.Log.Warn("Client validation failed", "error", err)
		return nil, validationError(err)
	}

	if err := s.repo.Create(ctx, client); err != nil {
		if errors.Is(err, clientserrors.ErrDuplicateEmail) {
			return nil, apperrors.Conflict("A client with this email already exists")
		}
		s.cfg.Log.Error("Failed to create client", "user_id", client.UserID, "error", err)
		return nil, apperrors.Internal("Failed to create client", err)
	}

	s.cfg.Log.Info("Client created", "id", client.ID, "user_id", client.UserID)
	return client, nil
}

func (s *clientService) GetByID(ctx context.Context, id string) (*model.Client, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Client ID cannot be empty")
	}

	client, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, s.translateLookupError(err, id)
	}

	return client, nil
}

func (s *clientService) ListByUser(ctx context.Context, userID string, limit int, offset int64) ([]*model.Client, int64, error) {
	if userID == "" {
		return nil, 0, apperrors.InvalidInput("User ID cannot be empty")
	}

	var total int64
	var clients []*model.Client
	var errCount, errFind error
	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		total, errCount = s.repo.CountByUser(ctx, userID)
	}()

	go func() {
		defer wg.Done()
		clients, errFind = s.repo.FindByUser(ctx, userID, limit, offset)
	}()

	wg.Wait()
	if errCount != nil {
		s.cfg.Log.Error("Failed to count clients", "user_id", userID, "error", errCount)
		return nil, 0, apperrors.Internal("Failed to count clients", errCount)
	}
	if errFind != nil {
		s.cfg.Log.Error("Failed to list clients", "user_id", userID, "error", errFind)
		return nil, 0, apperrors.Internal("Failed to retrieve clients", errFind)
	}

	return clients, total, nil
}

func (s *clientService) Update(ctx context.Context, id string, updates *model.ClientUpdate) (*model.Client, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Client ID cannot be empty")
	}

	existing, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, s.translateLookupError(err, id)
	}

	if err := s.validator.ValidateUpdate(updates); err != nil {
		s.cfg.Log.Warn("Client update validation failed", "id", id, "error", err)
		return nil, validationError(err)
	}

	merged := *existing
	if updates.Name != "" {
		merged.Name = updates.Name
	}
	if updates.Email != "" {
		merged.Email = updates.Email
	}
	if updates.Phone != "" {
		merged.Phone = updates.Phone
	}
	s.sanitize(&merged)

	updated, err := s.repo.Update(ctx, id, &merged)
	if err != nil {
		if errors.Is(err, clientserrors.ErrDuplicateEmail) {
			return nil, apperrors.Conflict("A client with this email already exists")
		}
		if errors.Is(err, clientserrors.ErrNotFound) {
			return nil, apperrors.NotFoundWithID("Client", id)
		}
		s.cfg.Log.Error("Failed to update client", "id", id, "error", err)
		return nil, apperrors.Internal("Failed to update client", err)
	}

	s.cfg.Log.Info("Client updated", "id", id, "user_id", updated.UserID)
	return updated, nil
}

func (s *clientService) Delete(ctx context.Context, id string) error {
	if id == "" {
		return apperrors.InvalidInput("Client ID cannot be empty")
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, clientserrors.ErrNotFound) {
			return apperrors.NotFoundWithID("Client", id)
		}
		if errors.Is(err, clientserrors.ErrInvalidID) {
			return apperrors.InvalidInput("Invalid client ID format")
		}
		s.cfg.Log.Error("Failed to delete client", "id", id, "error", err)
		return apperrors.Internal("Failed to delete client", err)
	}

	s.cfg.Log.Info("Client deleted", "id", id)
	return nil
}

func (s *clientService) sanitize(c *model.Client) {
	c.Name = sanitizer.TrimAndNormalize(c.Name)
	c.Email = sanitizer.SanitizeEmail(c.Email)
	c.Phone = sanitizer.SanitizePhone(c.Phone)
}

func (s *clientService) translateLookupError(err error, id string) error {
	if errors.Is(err, clientserrors.ErrNotFound) {
		return apperrors.NotFoundWithID("Client", id)
	}
	if errors.Is(err, clientserrors.ErrInvalidID) {
		return apperrors.InvalidInput("Invalid client ID format")
	}
	return apperrors.Internal("Failed to retrieve client", err)
}

func validationError(err error) error {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		return apperrors.Validation("Validation failed", verrs.FieldMap())
	}
	return apperrors.Validation("Validation failed", map[string]any{"error": err.Error()})
}
