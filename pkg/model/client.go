package model

import "time"

// Client is a person a user books appointments with. Email is unique
// within a single user's address book, enforced by a compound unique
// index.
type Client struct {
	ID        string    `json:"id,omitempty" bson:"_id,omitempty" validate:"omitempty,mongodb"`
	UserID    string    `json:"user_id" bson:"user_id" validate:"required,min=1,max=64"`
	Name      string    `json:"name" bson:"name" validate:"required,min=2,max=100"`
	Email     string    `json:"email" bson:"email" validate:"required,email,max=254"`
	Phone     string    `json:"phone,omitempty" bson:"phone,omitempty" validate:"omitempty,e164"`
	CreatedAt time.Time `json:"created_at" bson:"created_at" validate:"omitempty"`
	UpdatedAt time.Time `json:"updated_at" bson:"updated_at" validate:"omitempty"`
}

type ClientUpdate struct {
	Name  string `json:"name,omitempty" validate:"omitempty,min=2,max=100"`
	Email string `json:"email,omitempty" validate:"omitempty,email,max=254"`
	Phone string `json:"phone,omitempty" validate:"omitempty,e164"`
}
