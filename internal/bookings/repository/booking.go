package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	bookingserrors "github.com/ekpono/booking-platform/internal/bookings/errors"
	"github.com/ekpono/booking-platform/pkg/config"
	mongotx "github.com/ekpono/booking-platform/pkg/db/mongo"
	"github.com/ekpono/booking-platform/pkg/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	CollectionName = "Bookings"
)

// BookingRepository is the persistence contract the conflict engine
// depends on. The overlap predicate is pushed into the store so the
// check runs against committed state inside the same transaction as
// the write.
type BookingRepository interface {
	Create(ctx context.Context, booking *model.Booking) error
	FindByID(ctx context.Context, id string) (*model.Booking, error)
	FindByUser(ctx context.Context, userID string, limit int, offset int64) ([]*model.Booking, error)
	FindByUserInWindow(ctx context.Context, userID string, start, end time.Time, limit int, offset int64) ([]*model.Booking, error)
	FindInWindow(ctx context.Context, start, end time.Time, limit int, offset int64) ([]*model.Booking, error)
	FindByClient(ctx context.Context, userID, clientID string, limit int, offset int64) ([]*model.Booking, error)
	ExistsOverlapping(ctx context.Context, userID string, start, end time.Time, excludeID string) (bool, error)
	Update(ctx context.Context, id string, booking *model.Booking) (*model.Booking, error)
	Delete(ctx context.Context, id string) error
	CountByUser(ctx context.Context, userID string) (int64, error)
	CountByUserInWindow(ctx context.Context, userID string, start, end time.Time) (int64, error)
	CountInWindow(ctx context.Context, start, end time.Time) (int64, error)
	CountByClient(ctx context.Context, userID, clientID string) (int64, error)
	ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error
}

type mongoBookingRepository struct {
	cfg        *config.Config
	collection *mongo.Collection
	txManager  mongotx.TransactionManager
}

func NewMongoBookingRepository(cfg *config.Config) BookingRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoBookingRepository{
		cfg:        cfg,
		collection: db.Collection(CollectionName),
		txManager:  mongotx.NewTransactionManager(cfg.Client.Mongo),
	}
}

// withTimeout wraps the context with a timeout unless we are already
// inside a transaction. A SessionContext cannot be wrapped without
// breaking transaction semantics, so it is returned unchanged with a
// no-op cancel.
func (r *mongoBookingRepository) withTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if _, ok := ctx.(mongo.SessionContext); ok {
		return ctx, func() {}
	}

	deadline, hasDeadline := ctx.Deadline()
	if !hasDeadline {
		return context.WithTimeout(ctx, timeout)
	}

	remaining := time.Until(deadline)
	if remaining < timeout {
		return context.WithTimeout(ctx, remaining)
	}

	return context.WithTimeout(ctx, timeout)
}

func (r *mongoBookingRepository) Create(ctx context.Context, booking *model.Booking) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	now := time.Now().UTC().Truncate(time.Millisecond)
	booking.CreatedAt = now
	booking.UpdatedAt = now

	result, err := r.collection.InsertOne(ctx, booking)
	if err != nil {
		return fmt.Errorf("failed to create booking: %w", err)
	}

	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		booking.ID = oid.Hex()
	}
	return nil
}

func (r *mongoBookingRepository) FindByID(ctx context.Context, id string) (*model.Booking, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", bookingserrors.ErrInvalidID, id)
	}

	var booking model.Booking
	err = r.collection.FindOne(ctx, bson.M{"_id": objectID}).Decode(&booking)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, bookingserrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find booking: %w", err)
	}

	return &booking, nil
}

func (r *mongoBookingRepository) FindByUser(ctx context.Context, userID string, limit int, offset int64) ([]*model.Booking, error) {
	return r.find(ctx, bson.M{"user_id": userID}, limit, offset)
}

func (r *mongoBookingRepository) FindByUserInWindow(ctx context.Context, userID string, start, end time.Time, limit int, offset int64) ([]*model.Booking, error) {
	return r.find(ctx, windowFilter(userID, start, end), limit, offset)
}

func (r *mongoBookingRepository) FindInWindow(ctx context.Context, start, end time.Time, limit int, offset int64) ([]*model.Booking, error) {
	return r.find(ctx, windowFilter("", start, end), limit, offset)
}

// FindByClient lists bookings made for one client, backed by the
// (client_id, start_time) index. An empty userID widens the lookup to
// all calendars.
func (r *mongoBookingRepository) FindByClient(ctx context.Context, userID, clientID string, limit int, offset int64) ([]*model.Booking, error) {
	return r.find(ctx, clientFilter(userID, clientID), limit, offset)
}

func (r *mongoBookingRepository) find(ctx context.Context, filter bson.M, limit int, offset int64) ([]*model.Booking, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	opts := options.Find().
		SetSort(bson.D{{Key: "start_time", Value: 1}}).
		SetLimit(int64(limit)).
		SetSkip(offset)

	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find bookings: %w", err)
	}
	defer cursor.Close(ctx)

	var bookings []*model.Booking
	if err = cursor.All(ctx, &bookings); err != nil {
		return nil, fmt.Errorf("failed to decode bookings: %w", err)
	}

	return bookings, nil
}

// ExistsOverlapping reports whether any booking on userID's calendar
// other than excludeID intersects the half-open interval [start, end).
// The inequality pair start_time < end AND end_time > start is the
// store-level form of the overlap predicate; touching boundaries never
// match.
func (r *mongoBookingRepository) ExistsOverlapping(ctx context.Context, userID string, start, end time.Time, excludeID string) (bool, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	filter := bson.M{
		"user_id":    userID,
		"start_time": bson.M{"$lt": end},
		"end_time":   bson.M{"$gt": start},
	}
	if excludeID != "" {
		objectID, err := primitive.ObjectIDFromHex(excludeID)
		if err != nil {
			return false, fmt.Errorf("%w: %s", bookingserrors.ErrInvalidID, excludeID)
		}
		filter["_id"] = bson.M{"$ne": objectID}
	}

	err := r.collection.FindOne(ctx, filter).Err()
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return false, nil
		}
		return false, fmt.Errorf("failed to check overlapping bookings: %w", err)
	}

	return true, nil
}

func (r *mongoBookingRepository) Update(ctx context.Context, id string, booking *model.Booking) (*model.Booking, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", bookingserrors.ErrInvalidID, id)
	}

	update := bson.M{
		"$set": bson.M{
			"user_id":     booking.UserID,
			"client_id":   booking.ClientID,
			"title":       booking.Title,
			"description": booking.Description,
			"start_time":  booking.StartTime,
			"end_time":    booking.EndTime,
			"updated_at":  time.Now().UTC().Truncate(time.Millisecond),
		},
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var updated model.Booking
	err = r.collection.FindOneAndUpdate(ctx, bson.M{"_id": objectID}, update, opts).Decode(&updated)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, bookingserrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to update booking: %w", err)
	}

	return &updated, nil
}

func (r *mongoBookingRepository) Delete(ctx context.Context, id string) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("%w: %s", bookingserrors.ErrInvalidID, id)
	}

	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": objectID})
	if err != nil {
		return fmt.Errorf("failed to delete booking: %w", err)
	}

	if result.DeletedCount == 0 {
		return bookingserrors.ErrNotFound
	}

	return nil
}

func (r *mongoBookingRepository) CountByUser(ctx context.Context, userID string) (int64, error) {
	return r.count(ctx, bson.M{"user_id": userID})
}

func (r *mongoBookingRepository) CountByUserInWindow(ctx context.Context, userID string, start, end time.Time) (int64, error) {
	return r.count(ctx, windowFilter(userID, start, end))
}

func (r *mongoBookingRepository) CountInWindow(ctx context.Context, start, end time.Time) (int64, error) {
	return r.count(ctx, windowFilter("", start, end))
}

func (r *mongoBookingRepository) CountByClient(ctx context.Context, userID, clientID string) (int64, error) {
	return r.count(ctx, clientFilter(userID, clientID))
}

func (r *mongoBookingRepository) count(ctx context.Context, filter bson.M) (int64, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	count, err := r.collection.CountDocuments(ctx, filter)
	if err != nil {
		return 0, fmt.Errorf("failed to count bookings: %w", err)
	}
	return count, nil
}

func (r *mongoBookingRepository) ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error {
	return r.txManager.ExecuteTransaction(ctx, fn)
}

// windowFilter selects bookings starting inside [start, end). A week
// listing buckets bookings by their start instant, matching the
// listing contract, not the overlap predicate.
func windowFilter(userID string, start, end time.Time) bson.M {
	filter := bson.M{
		"start_time": bson.M{"$gte": start, "$lt": end},
	}
	if userID != "" {
		filter["user_id"] = userID
	}
	return filter
}

func clientFilter(userID, clientID string) bson.M {
	filter := bson.M{"client_id": clientID}
	if userID != "" {
		filter["user_id"] = userID
	}
	return filter
}
