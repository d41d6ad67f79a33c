package model

import "time"

// Playlist represents a row in the `playlists` table. Every playlist is
// owned by the user who created it; only the owner may read or delete it.
type Playlist struct {
	ID          uint64    `json:"playlist_id"` // playlists.playlist_id
	Name        string    `json:"name"`        // playlists.name
	Description *string   `json:"description"` // playlists.description (nullable)
	UserID      uint64    `json:"user_id"`     // playlists.user_id (owner)
	CreatedAt   time.Time `json:"created_at"`  // playlists.created_at
}

// PlaylistTrack is the membership relation between playlists and tracks.
// The composite primary key (playlist_id, track_id) makes adding the same
// track twice a no-op.
type PlaylistTrack struct {
	PlaylistID uint64    `json:"playlist_id"` // playlist_tracks.playlist_id
	TrackID    uint64    `json:"track_id"`    // playlist_tracks.track_id
	AddedAt    time.Time `json:"added_at"`    // playlist_tracks.added_at
}
