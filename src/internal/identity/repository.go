package identity

import (
	"context"
	"errors"
	"letterdesk-admin-svc/src/clients"
	"letterdesk-admin-svc/src/internal/models"
	"time"

	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

func primitiveObjectID(id string) (primitive.ObjectID, error) {
	return primitive.ObjectIDFromHex(id)
}

type Repository interface {
	GetByUsername(ctx context.Context, username string) (*AdminUser, error)
	GetByID(ctx context.Context, userID string) (*AdminUser, error)
	RecordLogin(ctx context.Context, userID string) error
}

type userRepository struct {
	collection *mongo.Collection
}

func NewUserRepository(db *clients.MongoDB, collectionName string) Repository {
	collection := db.Database.Collection(collectionName)
	return &userRepository{collection: collection}
}

func (r *userRepository) GetByUsername(ctx context.Context, username string) (*AdminUser, error) {
	var user AdminUser
	filter := bson.M{
		"username":   username,
		"deleted_at": bson.M{"$exists": false},
	}

	err := r.collection.FindOne(ctx, filter).Decode(&user)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, models.ErrUserNotFound
		}
		logrus.WithError(err).WithField("username", username).Error("Failed to look up admin user")
		return nil, models.ErrDatabaseQuery
	}

	return &user, nil
}

func (r *userRepository) GetByID(ctx context.Context, userID string) (*AdminUser, error) {
	oid, err := primitiveObjectID(userID)
	if err != nil {
		return nil, models.ErrUserNotFound
	}

	var user AdminUser
	filter := bson.M{
		"_id":        oid,
		"deleted_at": bson.M{"$exists": false},
	}

	err = r.collection.FindOne(ctx, filter).Decode(&user)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, models.ErrUserNotFound
		}
		logrus.WithError(err).WithField("user_id", userID).Error("Failed to look up admin user by id")
		return nil, models.ErrDatabaseQuery
	}

	return &user, nil
}

func (r *userRepository) RecordLogin(ctx context.Context, userID string) error {
	oid, err := primitiveObjectID(userID)
	if err != nil {
		return models.ErrUserNotFound
	}

	update := bson.M{
		"$set": bson.M{
			"last_login_at": time.Now(),
			"updated_at":    time.Now(),
		},
	}

	_, err = r.collection.UpdateOne(ctx, bson.M{"_id": oid}, update)
	if err != nil {
		logrus.WithError(err).WithField("user_id", userID).Error("Failed to record login timestamp")
		return models.ErrDatabaseUpdate
	}

	return nil
}
