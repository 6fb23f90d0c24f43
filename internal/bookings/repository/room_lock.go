package repository

import (
	"context"
	"fmt"
	"time"

	"stayhub/pkg/config"
	"stayhub/pkg/model"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

const (
	RoomLockCollectionName = "room_locks"
)

// RoomLockRepository serializes writers touching the same room. Acquire
// inserts a document keyed by room; a duplicate-key error means another
// writer is in its critical section. The TTL index on expires_at reclaims
// locks abandoned by crashed processes.
type RoomLockRepository interface {
	Acquire(ctx context.Context, roomID string) (*model.RoomLock, error)
	Release(ctx context.Context, lock *model.RoomLock) error
}

type mongoRoomLockRepository struct {
	cfg        *config.Config
	collection *mongo.Collection
}

func NewMongoRoomLockRepository(cfg *config.Config) RoomLockRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoRoomLockRepository{
		cfg:        cfg,
		collection: db.Collection(RoomLockCollectionName),
	}
}

// Acquire returns the raw mongo error on contention; callers check
// mongo.IsDuplicateKeyError to distinguish contention from outage.
func (r *mongoRoomLockRepository) Acquire(ctx context.Context, roomID string) (*model.RoomLock, error) {
	ctx, cancel := withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	now := time.Now().UTC()
	lock := &model.RoomLock{
		ID:        "room_" + roomID,
		Owner:     uuid.NewString(),
		ExpiresAt: now.Add(r.cfg.RoomLockTTL),
		CreatedAt: now,
	}

	if _, err := r.collection.InsertOne(ctx, lock); err != nil {
		return nil, err
	}

	return lock, nil
}

// Release deletes the lock only if this caller still owns it. A lock
// already reclaimed by the TTL index and re-acquired by someone else is
// left alone.
func (r *mongoRoomLockRepository) Release(ctx context.Context, lock *model.RoomLock) error {
	ctx, cancel := withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	filter := bson.M{"_id": lock.ID, "owner": lock.Owner}
	if _, err := r.collection.DeleteOne(ctx, filter); err != nil {
		return fmt.Errorf("failed to release room lock: %w", err)
	}

	return nil
}
