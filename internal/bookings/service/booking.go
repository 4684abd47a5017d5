package service

import (
	"context"
	"errors"
	"sync"
	"time"

	bookingserrors "github.com/ekpono/booking-platform/internal/bookings/errors"
	"github.com/ekpono/booking-platform/internal/bookings/events"
	"github.com/ekpono/booking-platform/internal/bookings/repository"
	"github.com/ekpono/booking-platform/internal/bookings/validator"
	"github.com/ekpono/booking-platform/pkg/config"
	apperrors "github.com/ekpono/booking-platform/pkg/errors"
	"github.com/ekpono/booking-platform/pkg/model"
	"github.com/ekpono/booking-platform/pkg/sanitizer"
	"github.com/ekpono/booking-platform/pkg/timespan"

	"go.mongodb.org/mongo-driver/mongo"
)

// BookingService owns the conflict-checked lifecycle of bookings. The
// check-then-write of Create and Update runs inside a store
// transaction, serialized per user by an advisory lock, so two
// concurrent requests for the same calendar can never both commit
// overlapping intervals. User identity is always an explicit
// parameter; the service never consults ambient request state.
type BookingService interface {
	Create(ctx context.Context, booking *model.Booking) (*model.Booking, error)
	GetByID(ctx context.Context, id string) (*model.Booking, error)
	ListByUser(ctx context.Context, userID string, weekAnchor *time.Time, limit int, offset int64) ([]*model.Booking, int64, error)
	ListByClient(ctx context.Context, userID, clientID string, limit int, offset int64) ([]*model.Booking, int64, error)
	ListWindow(ctx context.Context, weekAnchor time.Time, limit int, offset int64) ([]*model.Booking, int64, error)
	Update(ctx context.Context, id string, updates *model.BookingUpdate) (*model.Booking, error)
	Delete(ctx context.Context, id string) error
}

type bookingService struct {
	repo      repository.BookingRepository
	lockRepo  repository.BookingLockRepository
	validator *validator.BookingValidator
	publisher events.Publisher
	cfg       *config.Config
}

func NewBookingService(
	repo repository.BookingRepository,
	lockRepo repository.BookingLockRepository,
	bookingValidator *validator.BookingValidator,
	publisher events.Publisher,
	cfg *config.Config,
) BookingService {
	return &bookingService{
		repo:      repo,
		lockRepo:  lockRepo,
		validator: bookingValidator,
		publisher: publisher,
		cfg:       cfg,
	}
}

func (s *bookingService) Create(ctx context.Context, booking *model.Booking) (*model.Booking, error) {
	s.sanitize(booking)
	if err := s.validate(booking); err != nil {
		return nil, err
	}
	if !booking.StartTime.Before(booking.EndTime) {
		return nil, apperrors.InvalidInterval(booking.StartTime, booking.EndTime)
	}

	lockID, err := s.acquireCalendarLock(ctx, booking.UserID)
	if err != nil {
		return nil, err
	}
	defer s.releaseCalendarLock(ctx, lockID)

	err = s.repo.ExecuteTransaction(ctx, func(sessCtx mongo.SessionContext) error {
		exists, err := s.repo.ExistsOverlapping(sessCtx, booking.UserID, booking.StartTime, booking.EndTime, "")
		if err != nil {
			return apperrors.Internal("Failed to check existing bookings", err)
		}
		if exists {
			return apperrors.Overlap(booking.UserID, booking.StartTime, booking.EndTime)
		}
		if err := s.repo.Create(sessCtx, booking); err != nil {
			return apperrors.Internal("Failed to create booking", err)
		}
		return nil
	})
	if err != nil {
		if !apperrors.IsOverlap(err) {
			s.cfg.Log.Error("Failed to create booking", "user_id", booking.UserID, "error", err)
		}
		return nil, err
	}

	s.cfg.Log.Info("Booking created",
		"id", booking.ID,
		"user_id", booking.UserID,
		"start_time", booking.StartTime,
		"end_time", booking.EndTime,
	)
	s.publisher.BookingCreated(ctx, booking)
	return booking, nil
}

func (s *bookingService) GetByID(ctx context.Context, id string) (*model.Booking, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Booking ID cannot be empty")
	}

	booking, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, s.translateLookupError(err, id)
	}

	return booking, nil
}

// ListByUser returns the user's bookings ordered by start time. With a
// week anchor, only the Monday–Sunday bucket containing the anchor is
// returned; any day of the week selects the same bucket.
func (s *bookingService) ListByUser(ctx context.Context, userID string, weekAnchor *time.Time, limit int, offset int64) ([]*model.Booking, int64, error) {
	if userID == "" {
		return nil, 0, apperrors.InvalidInput("User ID cannot be empty")
	}

	if weekAnchor == nil {
		return s.listConcurrently(ctx,
			func(ctx context.Context) ([]*model.Booking, error) {
				return s.repo.FindByUser(ctx, userID, limit, offset)
			},
			func(ctx context.Context) (int64, error) {
				return s.repo.CountByUser(ctx, userID)
			},
		)
	}

	weekStart, weekEnd := timespan.WeekOf(*weekAnchor)
	return s.listConcurrently(ctx,
		func(ctx context.Context) ([]*model.Booking, error) {
			return s.repo.FindByUserInWindow(ctx, userID, weekStart, weekEnd, limit, offset)
		},
		func(ctx context.Context) (int64, error) {
			return s.repo.CountByUserInWindow(ctx, userID, weekStart, weekEnd)
		},
	)
}

// ListByClient returns the bookings made for one client. A non-empty
// userID scopes the listing to that calendar; an empty userID widens
// it to every calendar.
func (s *bookingService) ListByClient(ctx context.Context, userID, clientID string, limit int, offset int64) ([]*model.Booking, int64, error) {
	if clientID == "" {
		return nil, 0, apperrors.InvalidInput("Client ID cannot be empty")
	}

	return s.listConcurrently(ctx,
		func(ctx context.Context) ([]*model.Booking, error) {
			return s.repo.FindByClient(ctx, userID, clientID, limit, offset)
		},
		func(ctx context.Context) (int64, error) {
			return s.repo.CountByClient(ctx, userID, clientID)
		},
	)
}

// ListWindow is the cross-user week listing. Authorization for it is
// the boundary's responsibility.
func (s *bookingService) ListWindow(ctx context.Context, weekAnchor time.Time, limit int, offset int64) ([]*model.Booking, int64, error) {
	weekStart, weekEnd := timespan.WeekOf(weekAnchor)
	return s.listConcurrently(ctx,
		func(ctx context.Context) ([]*model.Booking, error) {
			return s.repo.FindInWindow(ctx, weekStart, weekEnd, limit, offset)
		},
		func(ctx context.Context) (int64, error) {
			return s.repo.CountInWindow(ctx, weekStart, weekEnd)
		},
	)
}

func (s *bookingService) Update(ctx context.Context, id string, updates *model.BookingUpdate) (*model.Booking, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Booking ID cannot be empty")
	}

	existing, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, s.translateLookupError(err, id)
	}

	if err := s.validator.ValidateUpdate(updates); err != nil {
		s.cfg.Log.Warn("Booking update validation failed", "id", id, "error", err)
		return nil, validationError(err)
	}

	merged := s.mergeBookingUpdates(existing, updates)
	s.sanitize(merged)
	if err := s.validate(merged); err != nil {
		return nil, err
	}
	if !merged.StartTime.Before(merged.EndTime) {
		return nil, apperrors.InvalidInterval(merged.StartTime, merged.EndTime)
	}

	// Lock the effective owner's calendar. When the update moves the
	// booking to another user, only the target calendar gains an
	// interval; losing one can never create an overlap.
	lockID, err := s.acquireCalendarLock(ctx, merged.UserID)
	if err != nil {
		return nil, err
	}
	defer s.releaseCalendarLock(ctx, lockID)

	var updated *model.Booking
	err = s.repo.ExecuteTransaction(ctx, func(sessCtx mongo.SessionContext) error {
		exists, err := s.repo.ExistsOverlapping(sessCtx, merged.UserID, merged.StartTime, merged.EndTime, id)
		if err != nil {
			return apperrors.Internal("Failed to check existing bookings", err)
		}
		if exists {
			return apperrors.Overlap(merged.UserID, merged.StartTime, merged.EndTime)
		}
		updated, err = s.repo.Update(sessCtx, id, merged)
		if err != nil {
			if errors.Is(err, bookingserrors.ErrNotFound) {
				return apperrors.NotFoundWithID("Booking", id)
			}
			return apperrors.Internal("Failed to update booking", err)
		}
		return nil
	})
	if err != nil {
		if !apperrors.IsOverlap(err) {
			s.cfg.Log.Error("Failed to update booking", "id", id, "error", err)
		}
		return nil, err
	}

	s.cfg.Log.Info("Booking updated", "id", id, "user_id", updated.UserID)
	s.publisher.BookingUpdated(ctx, updated)
	return updated, nil
}

// Delete removes a booking without any conflict check; removing an
// interval cannot violate the no-overlap invariant.
func (s *bookingService) Delete(ctx context.Context, id string) error {
	if id == "" {
		return apperrors.InvalidInput("Booking ID cannot be empty")
	}

	existing, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return s.translateLookupError(err, id)
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, bookingserrors.ErrNotFound) {
			return apperrors.NotFoundWithID("Booking", id)
		}
		return apperrors.Internal("Failed to delete booking", err)
	}

	s.cfg.Log.Info("Booking deleted", "id", id, "user_id", existing.UserID)
	s.publisher.BookingDeleted(ctx, id, existing.UserID)
	return nil
}

// --- Helpers ---

func (s *bookingService) listConcurrently(
	ctx context.Context,
	find func(ctx context.Context) ([]*model.Booking, error),
	count func(ctx context.Context) (int64, error),
) ([]*model.Booking, int64, error) {
	var total int64
	var bookings []*model.Booking
	var errCount, errFind error
	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		total, errCount = count(ctx)
		if errCount != nil {
			s.cfg.Log.Error("Failed to count bookings", "error", errCount)
			errCount = apperrors.Internal("Failed to count bookings", errCount)
		}
	}()

	go func() {
		defer wg.Done()
		bookings, errFind = find(ctx)
		if errFind != nil {
			s.cfg.Log.Error("Failed to list bookings", "error", errFind)
			errFind = apperrors.Internal("Failed to retrieve bookings", errFind)
		}
	}()

	wg.Wait()
	if errCount != nil {
		return nil, 0, errCount
	}
	if errFind != nil {
		return nil, 0, errFind
	}

	return bookings, total, nil
}

func (s *bookingService) sanitize(b *model.Booking) {
	b.Title = sanitizer.SanitizeTitle(b.Title)
	b.Description = sanitizer.SanitizeDescription(b.Description)
}

func (s *bookingService) mergeBookingUpdates(existing *model.Booking, updates *model.BookingUpdate) *model.Booking {
	merged := *existing

	if updates.UserID != "" {
		merged.UserID = updates.UserID
	}
	if updates.ClientID != "" {
		merged.ClientID = updates.ClientID
	}
	if updates.Title != "" {
		merged.Title = updates.Title
	}
	if updates.Description != nil {
		merged.Description = *updates.Description
	}
	if updates.StartTime != nil {
		merged.StartTime = *updates.StartTime
	}
	if updates.EndTime != nil {
		merged.EndTime = *updates.EndTime
	}

	return &merged
}

func (s *bookingService) validate(booking *model.Booking) error {
	if err := s.validator.Validate(booking); err != nil {
		s.cfg.Log.Warn("Booking validation failed", "error", err)
		return validationError(err)
	}
	return nil
}

func (s *bookingService) translateLookupError(err error, id string) error {
	if errors.Is(err, bookingserrors.ErrNotFound) {
		return apperrors.NotFoundWithID("Booking", id)
	}
	if errors.Is(err, bookingserrors.ErrInvalidID) {
		return apperrors.InvalidInput("Invalid booking ID format")
	}
	return apperrors.Internal("Failed to retrieve booking", err)
}

func validationError(err error) error {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		return apperrors.Validation("Validation failed", verrs.FieldMap())
	}
	return apperrors.Validation("Validation failed", map[string]any{"error": err.Error()})
}

// acquireCalendarLock serializes conflict-checked writes for one
// user's calendar. The lock insert is atomic thanks to the unique _id;
// contention is retried briefly because the critical section is a
// single short transaction. Exhausted retries are an infrastructure
// outcome, not a scheduling conflict: the caller's interval was never
// examined.
func (s *bookingService) acquireCalendarLock(ctx context.Context, userID string) (string, error) {
	lockID := "calendar_lock_" + userID

	for attempt := 0; ; attempt++ {
		lock := &model.BookingLock{
			ID:        lockID,
			UserID:    userID,
			ExpiresAt: time.Now().Add(s.cfg.CalendarLockTTL),
		}

		_, err := s.lockRepo.Create(ctx, lock)
		if err == nil {
			return lockID, nil
		}
		if !errors.Is(err, bookingserrors.ErrLockHeld) {
			return "", apperrors.Internal("Failed to acquire calendar lock", err)
		}
		if attempt >= s.cfg.CalendarLockRetries {
			s.cfg.Log.Warn("Calendar lock contention", "user_id", userID, "attempts", attempt+1)
			return "", apperrors.Timeout("The calendar is busy processing another request. Please retry.")
		}

		select {
		case <-time.After(s.cfg.CalendarLockRetryDelay):
		case <-ctx.Done():
			return "", apperrors.Timeout("The calendar is busy processing another request. Please retry.")
		}
	}
}

func (s *bookingService) releaseCalendarLock(ctx context.Context, lockID string) {
	if err := s.lockRepo.Delete(ctx, lockID); err != nil {
		s.cfg.Log.Warn("Failed to release calendar lock", "lock_id", lockID, "error", err)
	}
}
