package model

import "time"

// Roles a user account can hold. Listeners browse, play, like, comment and
// build playlists; creators may additionally upload, edit and delete tracks.
const (
	RoleListener = "listener"
	RoleCreator  = "creator"
)

// User represents an application user record as stored in the `users`
// table. ArtistName, Bio and ProfilePictureKey are nullable columns and
// therefore pointers. The password hash is never serialized.
type User struct {
	ID                uint64    `json:"user_id"`           // users.user_id
	Email             string    `json:"email"`             // users.email (unique)
	PasswordHash      string    `json:"-"`                 // users.password_hash (bcrypt)
	Role              string    `json:"user_role"`         // users.user_role (listener | creator)
	ArtistName        *string   `json:"artist_name"`       // users.artist_name (nullable)
	Bio               *string   `json:"bio"`               // users.bio (nullable)
	ProfilePictureKey *string   `json:"profile_picture_key"` // users.profile_picture_key (nullable)
	CreatedAt         time.Time `json:"created_at"`        // users.created_at
}
