package model

import "time"

// Comment represents a row in the `comments` table. Comments are append
// only; the API offers no edit or delete. Email and ArtistName are joined
// from `users` for display.
type Comment struct {
	ID          uint64    `json:"comment_id"`   // comments.comment_id
	TrackID     uint64    `json:"track_id"`     // comments.track_id
	UserID      uint64    `json:"user_id"`      // comments.user_id (author)
	CommentText string    `json:"comment_text"` // comments.comment_text
	CreatedAt   time.Time `json:"created_at"`   // comments.created_at
	Email       string    `json:"email,omitempty"`       // joined from users.email
	ArtistName  *string   `json:"artist_name,omitempty"` // joined from users.artist_name
}
