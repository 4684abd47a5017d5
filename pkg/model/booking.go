package model

import (
	"time"
)

type Booking struct {
	ID          string    `json:"id,omitempty" bson:"_id,omitempty" validate:"omitempty,mongodb"`
	UserID      string    `json:"user_id" bson:"user_id" validate:"required,min=1,max=64"`
	ClientID    string    `json:"client_id" bson:"client_id" validate:"required,mongodb"`
	Title       string    `json:"title" bson:"title" validate:"required,min=2,max=100"`
	Description string    `json:"description,omitempty" bson:"description,omitempty" validate:"omitempty,max=1000"`
	StartTime   time.Time `json:"start_time" bson:"start_time" validate:"required"`
	EndTime     time.Time `json:"end_time" bson:"end_time" validate:"required,gtfield=StartTime"`
	CreatedAt   time.Time `json:"created_at" bson:"created_at" validate:"omitempty"`
	UpdatedAt   time.Time `json:"updated_at" bson:"updated_at" validate:"omitempty"`
}

// BookingUpdate carries a partial update. Nil or zero fields keep the
// stored value; UserID may move the booking to another calendar, in
// which case the overlap check runs against the target user.
type BookingUpdate struct {
	UserID      string     `json:"user_id,omitempty" validate:"omitempty,min=1,max=64"`
	ClientID    string     `json:"client_id,omitempty" validate:"omitempty,mongodb"`
	Title       string     `json:"title,omitempty" validate:"omitempty,min=2,max=100"`
	Description *string    `json:"description,omitempty" validate:"omitempty,max=1000"`
	StartTime   *time.Time `json:"start_time,omitempty" validate:"omitempty"`
	EndTime     *time.Time `json:"end_time,omitempty" validate:"omitempty"`
}
