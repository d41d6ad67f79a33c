package queue

// NotificationQueueName is the durable queue that carries notification
// events from the HTTP handlers to the background consumer.
const NotificationQueueName = "notification.created"

// NotificationEvent is the wire form of a notification side effect. The
// consumer turns each event into a row in the notifications table.
type NotificationEvent struct {
	RecipientID uint64  `json:"recipient_id"`
	SenderID    uint64  `json:"sender_id"`
	Type        string  `json:"notification_type"`
	Message     string  `json:"message"`
	TrackID     *uint64 `json:"track_id,omitempty"`
	CreatedAt   string  `json:"created_at"` // RFC3339, set by the publisher
}
