package repository

import (
	"context"
	"time"

	bookingserrors "github.com/ekpono/booking-platform/internal/bookings/errors"
	"github.com/ekpono/booking-platform/pkg/config"
	"github.com/ekpono/booking-platform/pkg/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

const LockCollectionName = "Booking_locks"

// BookingLockRepository provides per-user advisory locks. The unique
// _id index makes lock acquisition a single atomic insert; a TTL index
// on expires_at reaps locks left behind by crashed writers.
type BookingLockRepository interface {
	Create(ctx context.Context, lock *model.BookingLock) (*model.BookingLock, error)
	Delete(ctx context.Context, lockID string) error
}

type mongoBookingLockRepository struct {
	collection *mongo.Collection
}

func NewBookingLockRepository(cfg *config.Config) BookingLockRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoBookingLockRepository{
		collection: db.Collection(LockCollectionName),
	}
}

// Create inserts the lock document. A duplicate key error means the
// lock is already held and is reported as ErrLockHeld.
func (r *mongoBookingLockRepository) Create(ctx context.Context, lock *model.BookingLock) (*model.BookingLock, error) {
	lock.CreatedAt = time.Now()

	_, err := r.collection.InsertOne(ctx, lock)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, bookingserrors.ErrLockHeld
		}
		return nil, err
	}

	return lock, nil
}

func (r *mongoBookingLockRepository) Delete(ctx context.Context, lockID string) error {
	_, err := r.collection.DeleteOne(ctx, bson.M{"_id": lockID})
	return err
}
