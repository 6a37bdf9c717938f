package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/greenlibrary/catalog/internal/core/domain"
)

const attemptsCollection = "auth_attempts"

// AuditRepository implements ports.AuthAuditRepository on MongoDB.
type AuditRepository struct {
	col *mongo.Collection
}

func NewAuditRepository(db *mongo.Database) *AuditRepository {
	return &AuditRepository{col: db.Collection(attemptsCollection)}
}

type attemptDocument struct {
	Login    string    `bson:"login"`
	UserID   string    `bson:"user_id,omitempty"`
	Outcome  string    `bson:"outcome"`
	RemoteIP string    `bson:"remote_ip,omitempty"`
	At       time.Time `bson:"at"`
	StoredAt time.Time `bson:"stored_at"`
}

func (r *AuditRepository) InsertAttempt(ctx context.Context, attempt domain.AuthAttempt) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	doc := attemptDocument{
		Login:    attempt.Login,
		UserID:   attempt.UserID,
		Outcome:  string(attempt.Outcome),
		RemoteIP: attempt.RemoteIP,
		At:       attempt.At.UTC(),
		StoredAt: time.Now().UTC(),
	}
	if _, err := r.col.InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("insert auth attempt: %w: %w", domain.ErrPersistence, err)
	}
	return nil
}

// EnsureIndexes creates the lookup indexes on the attempts collection.
func (r *AuditRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "login", Value: 1}, {Key: "at", Value: -1}}},
		{Keys: bson.D{{Key: "outcome", Value: 1}}},
	}

	_, err := r.col.Indexes().CreateMany(ctx, indexes)
	return err
}

// Ping reports whether the audit database is reachable.
func (r *AuditRepository) Ping(ctx context.Context) error {
	return r.col.Database().Client().Ping(ctx, nil)
}
