package session

import (
	"context"
	"errors"
	"letterdesk-admin-svc/src/clients"
	"letterdesk-admin-svc/src/internal/models"
	"time"

	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Repository is the persistence contract for admin session rows. Every
// operation touches a single row through the indexed token hash or
// session id; rows are never physically deleted.
type Repository interface {
	Insert(ctx context.Context, session *models.AdminSession) (string, error)
	FindByHash(ctx context.Context, tokenHash string) (*models.AdminSession, error)
	Touch(ctx context.Context, sessionID string, meta models.RequestMeta) error
	Revoke(ctx context.Context, sessionID string) error
}

type repository struct {
	collection *mongo.Collection
}

func NewSessionRepository(db *clients.MongoDB, collectionName string) Repository {
	collection := db.Database.Collection(collectionName)
	return &repository{collection: collection}
}

// EnsureIndexes creates the unique index backing token hash lookups.
func EnsureIndexes(ctx context.Context, db *clients.MongoDB, collectionName string) error {
	collection := db.Database.Collection(collectionName)
	_, err := collection.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.M{"session_token_hash": 1},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys: bson.M{"session_id": 1},
		},
	})
	if err != nil {
		logrus.WithError(err).Error("Failed to create session indexes")
		return models.ErrDatabaseConnection
	}
	return nil
}

func (r *repository) Insert(ctx context.Context, session *models.AdminSession) (string, error) {
	if session.UserID == "" || session.Email == "" {
		return "", models.ErrSessionCreating
	}
	if session.TokenHash == "" {
		return "", models.ErrSessionCreating
	}

	_, err := r.collection.InsertOne(ctx, session)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			logrus.WithField("session_id", session.SessionID).Error("Token hash collision on session insert")
			return "", models.ErrDuplicateRecord
		}
		logrus.WithError(err).WithField("session_id", session.SessionID).Error("Failed to insert session")
		return "", models.ErrDatabaseInsert
	}

	return session.SessionID, nil
}

func (r *repository) FindByHash(ctx context.Context, tokenHash string) (*models.AdminSession, error) {
	var session models.AdminSession
	filter := bson.M{"session_token_hash": tokenHash}

	err := r.collection.FindOne(ctx, filter).Decode(&session)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, models.ErrSessionNotFound
		}
		logrus.WithError(err).Error("Failed to look up session by token hash")
		return nil, models.ErrDatabaseQuery
	}

	return &session, nil
}

func (r *repository) Touch(ctx context.Context, sessionID string, meta models.RequestMeta) error {
	filter := bson.M{
		"session_id": sessionID,
		"revoked_at": nil,
	}

	set := bson.M{"last_activity": time.Now()}
	if meta.IPAddress != "" {
		set["ip_address"] = meta.IPAddress
	}
	if meta.UserAgent != "" {
		set["user_agent"] = meta.UserAgent
	}

	_, err := r.collection.UpdateOne(ctx, filter, bson.M{"$set": set})
	if err != nil {
		logrus.WithError(err).WithField("session_id", sessionID).Error("Failed to update session activity")
		return models.ErrSessionUpdating
	}

	return nil
}

func (r *repository) Revoke(ctx context.Context, sessionID string) error {
	// Only the first revocation writes; repeats match nothing.
	filter := bson.M{
		"session_id": sessionID,
		"revoked_at": nil,
	}

	update := bson.M{
		"$set": bson.M{
			"revoked_at": time.Now(),
		},
	}

	_, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		logrus.WithError(err).WithField("session_id", sessionID).Error("Failed to revoke session")
		return models.ErrSessionUpdating
	}

	return nil
}
