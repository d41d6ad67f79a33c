package model

import "time"

// Track represents a row in the `tracks` table. FileKey points at the audio
// object in the object store; CoverArtKey is set only when the creator
// uploaded cover art. ArtistName is not a column of `tracks`; listing
// queries join `users` and populate it so clients can render the uploader
// without a second request.
type Track struct {
	ID          uint64    `json:"track_id"`      // tracks.track_id
	Title       string    `json:"title"`         // tracks.title
	Genre       string    `json:"genre"`         // tracks.genre
	Description string    `json:"description"`   // tracks.description
	ArtistID    uint64    `json:"artist_id"`     // tracks.artist_id (owning creator)
	FileKey     string    `json:"file_key"`      // tracks.file_key (audio object key)
	CoverArtKey *string   `json:"cover_art_key"` // tracks.cover_art_key (nullable)
	CreatedAt   time.Time `json:"created_at"`    // tracks.created_at
	ArtistName  string    `json:"artist_name,omitempty"` // joined from users.artist_name
}
