package store

import "time"

// Project is a collaboration project owned by a principal. Members always
// include the owner.
type Project struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	OwnerID     string    `json:"ownerId"`
	Members     []string  `json:"members"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// Comment is a comment on a project.
type Comment struct {
	ID        string    `json:"id"`
	ProjectID string    `json:"projectId"`
	AuthorID  string    `json:"authorId"`
	Body      string    `json:"body"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// ProjectUpdate is a partial project update; nil fields are left unchanged.
type ProjectUpdate struct {
	Name        *string
	Description *string
}

// UserUpdate is a partial principal update; nil fields are left unchanged.
type UserUpdate struct {
	Email *string
	Name  *string
}
