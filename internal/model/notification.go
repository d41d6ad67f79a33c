package model

import "time"

// Notification types created as side effects of social interactions.
const (
	NotificationNewComment = "new_comment"
	NotificationTrackLiked = "track_liked"
)

// Notification represents a row in the `notifications` table. A
// notification is created when someone comments on or likes a track and
// the actor is not the track's owner. TrackID is nullable so rows survive
// track deletion.
type Notification struct {
	ID          uint64    `json:"notification_id"`   // notifications.notification_id
	RecipientID uint64    `json:"recipient_id"`      // notifications.recipient_id
	SenderID    uint64    `json:"sender_id"`         // notifications.sender_id
	Type        string    `json:"notification_type"` // new_comment | track_liked
	Message     string    `json:"message"`           // human readable text
	TrackID     *uint64   `json:"track_id"`          // related track (nullable)
	IsRead      bool      `json:"is_read"`           // read flag
	CreatedAt   time.Time `json:"created_at"`        // notifications.created_at
}
