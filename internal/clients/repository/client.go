package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	clientserrors "github.com/ekpono/booking-platform/internal/clients/errors"
	"github.com/ekpono/booking-platform/pkg/config"
	"github.com/ekpono/booking-platform/pkg/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const CollectionName = "Clients"

// ClientRepository persists the people bookings are made for. The
// unique (user_id, email) index keeps one address book entry per
// email within a user's calendar.
type ClientRepository interface {
	Create(ctx context.Context, client *model.Client) error
	FindByID(ctx context.Context, id string) (*model.Client, error)
	FindByUser(ctx context.Context, userID string, limit int, offset int64) ([]*model.Client, error)
	Update(ctx context.Context, id string, client *model.Client) (*model.Client, error)
	Delete(ctx context.Context, id string) error
	CountByUser(ctx context.Context, userID string) (int64, error)
}

type mongoClientRepository struct {
	cfg        *config.Config
	collection *mongo.Collection
}

func NewMongoClientRepository(cfg *config.Config) ClientRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoClientRepository{
		cfg:        cfg,
		collection: db.Collection(CollectionName),
	}
}

func (r *mongoClientRepository) withTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if _, ok := ctx.(mongo.SessionContext); ok {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, timeout)
}

func (r *mongoClientRepository) Create(ctx context.Context, client *model.Client) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	now := time.Now().UTC().Truncate(time.Millisecond)
	client.CreatedAt = now
	client.UpdatedAt = now

	result, err := r.collection.InsertOne(ctx, client)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return clientserrors.ErrDuplicateEmail
		}
		return fmt.Errorf("failed to create client: %w", err)
	}

	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		client.ID = oid.Hex()
	}
	return nil
}

func (r *mongoClientRepository) FindByID(ctx context.Context, id string) (*model.Client, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", clientserrors.ErrInvalidID, id)
	}

	var client model.Client
	err = r.collection.FindOne(ctx, bson.M{"_id": objectID}).Decode(&client)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, clientserrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find client: %w", err)
	}

	return &client, nil
}

func (r *mongoClientRepository) FindByUser(ctx context.Context, userID string, limit int, offset int64) ([]*model.Client, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	opts := options.Find().
		SetSort(bson.D{{Key: "name", Value: 1}}).
		SetLimit(int64(limit)).
		SetSkip(offset)

	cursor, err := r.collection.Find(ctx, bson.M{"user_id": userID}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find clients: %w", err)
	}
	defer cursor.Close(ctx)

	var clients []*model.Client
	if err = cursor.All(ctx, &clients); err != nil {
		return nil, fmt.Errorf("failed to decode clients: %w", err)
	}

	return clients, nil
}

func (r *mongoClientRepository) Update(ctx context.Context, id string, client *model.Client) (*model.Client, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", clientserrors.ErrInvalidID, id)
	}

	update := bson.M{"$set": bson.M{
		"name":       client.Name,
		"email":      client.Email,
		"phone":      client.Phone,
		"updated_at": time.Now().UTC().Truncate(time.Millisecond),
	}}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var updated model.Client
	err = r.collection.FindOneAndUpdate(ctx, bson.M{"_id": objectID}, update, opts).Decode(&updated)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, clientserrors.ErrNotFound
		}
		if mongo.IsDuplicateKeyError(err) {
			return nil, clientserrors.ErrDuplicateEmail
		}
		return nil, fmt.Errorf("failed to update client: %w", err)
	}

	return &updated, nil
}

func (r *mongoClientRepository) Delete(ctx context.Context, id string) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("%w: %s", clientserrors.ErrInvalidID, id)
	}

	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": objectID})
	if err != nil {
		return fmt.Errorf("failed to delete client: %w", err)
	}
	if result.DeletedCount == 0 {
		return clientserrors.ErrNotFound
	}

	return nil
}

func (r *mongoClientRepository) CountByUser(ctx context.Context, userID string) (int64, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	count, err := r.collection.CountDocuments(ctx, bson.M{"user_id": userID})
	if err != nil {
		return 0, fmt.Errorf("failed to count clients: %w", err)
	}

	return count, nil
}
