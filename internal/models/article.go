package models

import "time"

// Article review states. An article is created pending and moves exactly
// once to approved or rejected.
const (
	StatusPending  = "pending"
	StatusApproved = "approved"
	StatusRejected = "rejected"
)

// ValidDecision reports whether status is a terminal review decision.
func ValidDecision(status string) bool {
	return status == StatusApproved || status == StatusRejected
}

// Article is a user submission awaiting or past review.
type Article struct {
	ID          int64     `json:"id"`
	UserID      int64     `json:"user_id"`
	Title       string    `json:"title"`
	Slug        string    `json:"slug"`
	Description string    `json:"description"`
	ImageURL    string    `json:"image_url"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"created_at"`
}
