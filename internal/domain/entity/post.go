package entity

import (
	"time"
)

// Post is a blog entry. CreatedBy references the authoring user and is
// immutable after creation. Tags are stored lowercase and trimmed.
type Post struct {
	ID        string
	Title     string
	Content   string
	Tags      []string
	CreatedBy string
	Author    string // username of CreatedBy, populated on reads
	CreatedAt time.Time
	UpdatedAt time.Time
}
