package models

import "time"

// Registration is the authoritative join between a visitor and a group.
// Exactly one document/row per (visitor_id, group_id); the stores enforce it
// with a unique index.
type Registration struct {
	ID        int64     `bson:"_id" json:"id"`
	VisitorID int64     `bson:"visitor_id" json:"visitor_id"`
	GroupID   int64     `bson:"group_id" json:"group_id"`
	Attended  bool      `bson:"attended" json:"attended"`
	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}
