package model

import "time"

// RoomLock is an advisory per-room lock closing the check-then-act window
// between the availability query and the booking write. The _id is derived
// from the room, so a duplicate-key insert means another writer holds the
// room. ExpiresAt backs a TTL index that reclaims locks from crashed writers.
type RoomLock struct {
	ID        string    `bson:"_id" json:"id"`
	Owner     string    `bson:"owner" json:"owner"`
	ExpiresAt time.Time `bson:"expires_at" json:"expires_at"`
	CreatedAt time.Time `bson:"created_at" json:"created_at"`
}
