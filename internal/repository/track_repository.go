package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/cypher-music/cypher-backend/internal/model"
)

// TrackRepo encapsulates all database queries related to tracks. Ownership
// checks live in the middleware layer; the methods here operate on plain
// track ids.
type TrackRepo struct {
	db *sql.DB
}

func NewTrackRepo(db *sql.DB) *TrackRepo {
	return &TrackRepo{db: db}
}

// Create inserts a new track. On success the ID and CreatedAt fields are
// populated; CreatedAt comes from a follow-up SELECT because the column
// defaults to CURRENT_TIMESTAMP in the database.
func (r *TrackRepo) Create(ctx context.Context, t *model.Track) error {
	const qInsert = `INSERT INTO tracks (title, genre, description, artist_id, file_key, cover_art_key)
	                 VALUES (?, ?, ?, ?, ?, ?)`
	res, err := r.db.ExecContext(ctx, qInsert,
		t.Title, t.Genre, t.Description, t.ArtistID, t.FileKey, t.CoverArtKey)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	t.ID = uint64(id)

	const qSelect = "SELECT created_at FROM tracks WHERE track_id = ?"
	return r.db.QueryRowContext(ctx, qSelect, t.ID).Scan(&t.CreatedAt)
}

// GetByID fetches a track by its ID regardless of owner. It returns
// ErrTrackNotFound if no row is found.
func (r *TrackRepo) GetByID(ctx context.Context, id uint64) (*model.Track, error) {
	const q = `SELECT track_id, title, genre, description, artist_id, file_key, cover_art_key, created_at
	           FROM tracks WHERE track_id = ?`
	var t model.Track
	err := r.db.QueryRowContext(ctx, q, id).Scan(
		&t.ID, &t.Title, &t.Genre, &t.Description, &t.ArtistID, &t.FileKey, &t.CoverArtKey, &t.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTrackNotFound
		}
		return nil, err
	}
	return &t, nil
}

// Search returns tracks joined with their uploader's artist name, newest
// first. The free-text term matches title or artist name case
// insensitively; genre is an exact match. Both filters are optional and
// combined as a conjunction of parameterized conditions.
func (r *TrackRepo) Search(ctx context.Context, term, genre string) ([]*model.Track, error) {
	where := []string{}
	args := []any{}

	if term != "" {
		where = append(where, "(LOWER(t.title) LIKE ? OR LOWER(u.artist_name) LIKE ?)")
		pattern := "%" + strings.ToLower(term) + "%"
		args = append(args, pattern, pattern)
	}
	if genre != "" {
		where = append(where, "t.genre = ?")
		args = append(args, genre)
	}

	cond := "1=1"
	if len(where) > 0 {
		cond = strings.Join(where, " AND ")
	}

	q := `SELECT t.track_id, t.title, t.genre, t.description, t.artist_id,
	             t.file_key, t.cover_art_key, t.created_at,
	             COALESCE(u.artist_name, u.email) AS artist_name
	      FROM tracks t
	      JOIN users u ON u.user_id = t.artist_id
	      WHERE ` + cond + `
	      ORDER BY t.created_at DESC`

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanTracksWithArtist(rows)
}

// ListByArtist returns all tracks uploaded by the given user, newest first.
func (r *TrackRepo) ListByArtist(ctx context.Context, artistID uint64) ([]*model.Track, error) {
	const q = `SELECT t.track_id, t.title, t.genre, t.description, t.artist_id,
	                  t.file_key, t.cover_art_key, t.created_at,
	                  COALESCE(u.artist_name, u.email) AS artist_name
	           FROM tracks t
	           JOIN users u ON u.user_id = t.artist_id
	           WHERE t.artist_id = ?
	           ORDER BY t.created_at DESC`
	rows, err := r.db.QueryContext(ctx, q, artistID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanTracksWithArtist(rows)
}

// Update rewrites a track's editable metadata. The cover art key is only
// touched when the caller uploaded a replacement.
func (r *TrackRepo) Update(ctx context.Context, id uint64, title, genre, description string, coverArtKey *string) error {
	set := []string{"title = ?", "genre = ?", "description = ?"}
	args := []any{title, genre, description}
	if coverArtKey != nil {
		set = append(set, "cover_art_key = ?")
		args = append(args, *coverArtKey)
	}
	args = append(args, id)
	_, err := r.db.ExecContext(ctx,
		"UPDATE tracks SET "+strings.Join(set, ", ")+" WHERE track_id = ?", args...)
	return err
}

// Delete removes a track row and its dependent likes, comments and
// playlist memberships inside one transaction. Object store cleanup is the
// caller's responsibility and happens after the row is gone.
func (r *TrackRepo) Delete(ctx context.Context, id uint64) (err error) {
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
	if _, err = tx.ExecContext(ctx, "DELETE FROM likes WHERE track_id = ?", id); err != nil {
		return err
	}
	if _, err = tx.ExecContext(ctx, "DELETE FROM comments WHERE track_id = ?", id); err != nil {
		return err
	}
	if _, err = tx.ExecContext(ctx, "DELETE FROM playlist_tracks WHERE track_id = ?", id); err != nil {
		return err
	}
	var res sql.Result
	if res, err = tx.ExecContext(ctx, "DELETE FROM tracks WHERE track_id = ?", id); err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		err = ErrTrackNotFound
		return err
	}
	return nil
}

func scanTracksWithArtist(rows *sql.Rows) ([]*model.Track, error) {
	out := []*model.Track{}
	for rows.Next() {
		t := new(model.Track)
		if err := rows.Scan(&t.ID, &t.Title, &t.Genre, &t.Description, &t.ArtistID,
			&t.FileKey, &t.CoverArtKey, &t.CreatedAt, &t.ArtistName); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
