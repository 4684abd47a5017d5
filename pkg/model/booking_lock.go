package model

import "time"

// BookingLock is an advisory lock serializing conflict-checked writes
// for a single user's calendar. The lock id is derived from the user
// id, so writers for different users never contend. A unique _id plus
// a TTL index on expires_at keeps abandoned locks from wedging a
// calendar.
type BookingLock struct {
	ID        string    `bson:"_id" json:"id"`
	UserID    string    `bson:"user_id" json:"user_id"`
	ExpiresAt time.Time `bson:"expires_at" json:"expires_at"`
	CreatedAt time.Time `bson:"created_at" json:"created_at"`
}
