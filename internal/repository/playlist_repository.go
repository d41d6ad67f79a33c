package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/cypher-music/cypher-backend/internal/model"
)

// PlaylistRepo encapsulates all database queries related to playlists and
// their track memberships.
type PlaylistRepo struct {
	db *sql.DB
}

func NewPlaylistRepo(db *sql.DB) *PlaylistRepo {
	return &PlaylistRepo{db: db}
}

// Create inserts a new playlist and populates ID and CreatedAt.
func (r *PlaylistRepo) Create(ctx context.Context, p *model.Playlist) error {
	const qInsert = "INSERT INTO playlists (name, description, user_id) VALUES (?, ?, ?)"
	res, err := r.db.ExecContext(ctx, qInsert, p.Name, p.Description, p.UserID)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	p.ID = uint64(id)

	const qSelect = "SELECT created_at FROM playlists WHERE playlist_id = ?"
	return r.db.QueryRowContext(ctx, qSelect, p.ID).Scan(&p.CreatedAt)
}

// GetByID fetches a playlist by its ID regardless of owner. Callers that
// must enforce ownership compare UserID against the authenticated user.
func (r *PlaylistRepo) GetByID(ctx context.Context, id uint64) (*model.Playlist, error) {
	const q = "SELECT playlist_id, name, description, user_id, created_at FROM playlists WHERE playlist_id = ?"
	var p model.Playlist
	err := r.db.QueryRowContext(ctx, q, id).Scan(&p.ID, &p.Name, &p.Description, &p.UserID, &p.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrPlaylistNotFound
		}
		return nil, err
	}
	return &p, nil
}

// ListByUser returns all playlists owned by the given user, newest first.
func (r *PlaylistRepo) ListByUser(ctx context.Context, userID uint64) ([]*model.Playlist, error) {
	const q = `SELECT playlist_id, name, description, user_id, created_at
	           FROM playlists WHERE user_id = ? ORDER BY created_at DESC`
	rows, err := r.db.QueryContext(ctx, q, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []*model.Playlist{}
	for rows.Next() {
		p := new(model.Playlist)
		if err := rows.Scan(&p.ID, &p.Name, &p.Description, &p.UserID, &p.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// Delete removes a playlist and its memberships inside one transaction.
func (r *PlaylistRepo) Delete(ctx context.Context, id uint64) (err error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		} else {
			err = tx.Commit()
		}
	}()
	if _, err = tx.ExecContext(ctx, "DELETE FROM playlist_tracks WHERE playlist_id = ?", id); err != nil {
		return err
	}
	var res sql.Result
	if res, err = tx.ExecContext(ctx, "DELETE FROM playlists WHERE playlist_id = ?", id); err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		err = ErrPlaylistNotFound
		return err
	}
	return nil
}

// AddTrack adds a track to a playlist. The composite primary key on
// (playlist_id, track_id) plus INSERT IGNORE make the operation
// idempotent: the second call affects zero rows and reports added=false.
func (r *PlaylistRepo) AddTrack(ctx context.Context, playlistID, trackID uint64) (bool, error) {
	res, err := r.db.ExecContext(ctx,
		"INSERT IGNORE INTO playlist_tracks (playlist_id, track_id) VALUES (?, ?)",
		playlistID, trackID)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// RemoveTrack deletes a membership row. sql.ErrNoRows signals the track
// was not on the playlist.
func (r *PlaylistRepo) RemoveTrack(ctx context.Context, playlistID, trackID uint64) error {
	res, err := r.db.ExecContext(ctx,
		"DELETE FROM playlist_tracks WHERE playlist_id = ? AND track_id = ?",
		playlistID, trackID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// ListTracks returns the member tracks of a playlist in insertion order,
// joined with the uploader's artist name.
func (r *PlaylistRepo) ListTracks(ctx context.Context, playlistID uint64) ([]*model.Track, error) {
	const q = `SELECT t.track_id, t.title, t.genre, t.description, t.artist_id,
	                  t.file_key, t.cover_art_key, t.created_at,
	                  COALESCE(u.artist_name, u.email) AS artist_name
	           FROM playlist_tracks pt
	           JOIN tracks t ON t.track_id = pt.track_id
	           JOIN users u ON u.user_id = t.artist_id
	           WHERE pt.playlist_id = ?
	           ORDER BY pt.added_at ASC`
	rows, err := r.db.QueryContext(ctx, q, playlistID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanTracksWithArtist(rows)
}
