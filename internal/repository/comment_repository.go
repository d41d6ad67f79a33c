package repository

import (
	"context"
	"database/sql"

	"github.com/cypher-music/cypher-backend/internal/model"
)

// CommentRepo encapsulates all database queries for track comments.
type CommentRepo struct {
	db *sql.DB
}

func NewCommentRepo(db *sql.DB) *CommentRepo {
	return &CommentRepo{db: db}
}

// Create inserts a comment and reloads the row joined with the author's
// email and artist name so the response matches what listings return.
func (r *CommentRepo) Create(ctx context.Context, trackID, userID uint64, text string) (*model.Comment, error) {
	const qInsert = "INSERT INTO comments (track_id, user_id, comment_text) VALUES (?, ?, ?)"
	res, err := r.db.ExecContext(ctx, qInsert, trackID, userID, text)
	if err != nil {
		return nil, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}

	const qSelect = `SELECT c.comment_id, c.track_id, c.user_id, c.comment_text, c.created_at,
	                        u.email, u.artist_name
	                 FROM comments c
	                 JOIN users u ON u.user_id = c.user_id
	                 WHERE c.comment_id = ?`
	var c model.Comment
	err = r.db.QueryRowContext(ctx, qSelect, id).Scan(
		&c.ID, &c.TrackID, &c.UserID, &c.CommentText, &c.CreatedAt, &c.Email, &c.ArtistName)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// ListByTrack returns all comments on a track in posting order, each
// joined with the author's email and artist name.
func (r *CommentRepo) ListByTrack(ctx context.Context, trackID uint64) ([]*model.Comment, error) {
	const q = `SELECT c.comment_id, c.track_id, c.user_id, c.comment_text, c.created_at,
	                  u.email, u.artist_name
	           FROM comments c
	           JOIN users u ON u.user_id = c.user_id
	           WHERE c.track_id = ?
	           ORDER BY c.created_at ASC`
	rows, err := r.db.QueryContext(ctx, q, trackID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []*model.Comment{}
	for rows.Next() {
		c := new(model.Comment)
		if err := rows.Scan(&c.ID, &c.TrackID, &c.UserID, &c.CommentText, &c.CreatedAt,
			&c.Email, &c.ArtistName); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
