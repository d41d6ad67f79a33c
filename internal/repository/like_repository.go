package repository

import (
	"context"
	"database/sql"

	"github.com/cypher-music/cypher-backend/internal/model"
)

// LikeRepo encapsulates all database queries for track likes. The `likes`
// table uses a composite primary key on (user_id, track_id), so a user
// can hold at most one like per track.
type LikeRepo struct {
	db *sql.DB
}

func NewLikeRepo(db *sql.DB) *LikeRepo {
	return &LikeRepo{db: db}
}

// Toggle flips the like state for one user on one track and reports the
// resulting state. The delete runs first; when it removes nothing the
// like did not exist and is created instead. INSERT IGNORE keeps two
// concurrent togglers from failing on the primary key: at most one insert
// wins and the other observes the row as already present.
func (r *LikeRepo) Toggle(ctx context.Context, trackID, userID uint64) (liked bool, err error) {
	res, err := r.db.ExecContext(ctx,
		"DELETE FROM likes WHERE user_id = ? AND track_id = ?", userID, trackID)
	if err != nil {
		return false, err
	}
	if n, err := res.RowsAffected(); err != nil {
		return false, err
	} else if n > 0 {
		return false, nil
	}

	if _, err := r.db.ExecContext(ctx,
		"INSERT IGNORE INTO likes (user_id, track_id) VALUES (?, ?)", userID, trackID); err != nil {
		return false, err
	}
	return true, nil
}

// Status returns the total like count for a track together with whether
// the given user has liked it, both read in a single query.
func (r *LikeRepo) Status(ctx context.Context, trackID, userID uint64) (model.LikeStatus, error) {
	const q = `SELECT COUNT(*) AS like_count,
	                  COALESCE(SUM(user_id = ?), 0) AS user_liked
	           FROM likes WHERE track_id = ?`
	var s model.LikeStatus
	var userLiked int64
	if err := r.db.QueryRowContext(ctx, q, userID, trackID).Scan(&s.LikeCount, &userLiked); err != nil {
		return model.LikeStatus{}, err
	}
	s.UserLiked = userLiked > 0
	return s, nil
}
