package repository

import (
	"context"
	"database/sql"
	"strings"

	"github.com/cypher-music/cypher-backend/internal/model"
	"github.com/cypher-music/cypher-backend/internal/utils"
)

// UserRepo encapsulates all database queries for the `users` table.
type UserRepo struct{ DB *sql.DB }

func NewUserRepo(db *sql.DB) *UserRepo { return &UserRepo{DB: db} }

const userColumns = "user_id, email, password_hash, user_role, artist_name, bio, profile_picture_key, created_at"

// Create hashes the password and inserts a new user, returning its ID.
// Emails are normalized to lower case so the unique index also catches
// case variations.
func (r *UserRepo) Create(ctx context.Context, email, password, role string, artistName *string, cost int) (uint64, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	hash, err := utils.HashPassword(password, cost)
	if err != nil {
		return 0, err
	}
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO users (email, password_hash, user_role, artist_name) VALUES (?,?,?,?)",
		email, hash, role, artistName)
	if err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "1062") {
			return 0, ErrEmailExists
		}
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

// GetByEmail fetches a user by normalized email. Returns sql.ErrNoRows
// when the email is unknown.
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (model.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	return r.scanOne(ctx, "SELECT "+userColumns+" FROM users WHERE email=? LIMIT 1", email)
}

// GetByID fetches a user by id.
func (r *UserRepo) GetByID(ctx context.Context, id uint64) (model.User, error) {
	return r.scanOne(ctx, "SELECT "+userColumns+" FROM users WHERE user_id=? LIMIT 1", id)
}

func (r *UserRepo) scanOne(ctx context.Context, query string, arg any) (model.User, error) {
	var u model.User
	err := r.DB.QueryRowContext(ctx, query, arg).
		Scan(&u.ID, &u.Email, &u.PasswordHash, &u.Role, &u.ArtistName, &u.Bio, &u.ProfilePictureKey, &u.CreatedAt)
	return u, err
}

// UpdateProfile applies a partial profile update. Only non-nil fields are
// written, so clients never have to resubmit unchanged values. A call with
// neither field set is a no-op.
func (r *UserRepo) UpdateProfile(ctx context.Context, id uint64, artistName, bio *string) error {
	set := []string{}
	args := []any{}
	if artistName != nil {
		set = append(set, "artist_name = ?")
		args = append(args, *artistName)
	}
	if bio != nil {
		set = append(set, "bio = ?")
		args = append(args, *bio)
	}
	if len(set) == 0 {
		return nil
	}
	args = append(args, id)
	// MySQL reports zero affected rows when values are unchanged, so the
	// result is not inspected; the caller is always an authenticated user.
	_, err := r.DB.ExecContext(ctx,
		"UPDATE users SET "+strings.Join(set, ", ")+" WHERE user_id = ?", args...)
	return err
}

// SetProfilePicture stores the object key of a freshly uploaded profile
// picture and returns the previous key so the caller can delete the
// superseded object.
func (r *UserRepo) SetProfilePicture(ctx context.Context, id uint64, key string) (*string, error) {
	var old *string
	err := r.DB.QueryRowContext(ctx,
		"SELECT profile_picture_key FROM users WHERE user_id=? LIMIT 1", id).Scan(&old)
	if err != nil {
		return nil, err
	}
	if _, err := r.DB.ExecContext(ctx,
		"UPDATE users SET profile_picture_key = ? WHERE user_id = ?", key, id); err != nil {
		return nil, err
	}
	return old, nil
}

// UpdateRole switches a user between listener and creator. Existing tracks
// are untouched when a creator demotes themselves; the creator check only
// applies at upload time.
func (r *UserRepo) UpdateRole(ctx context.Context, id uint64, role string) error {
	_, err := r.DB.ExecContext(ctx,
		"UPDATE users SET user_role = ? WHERE user_id = ?", role, id)
	return err
}
