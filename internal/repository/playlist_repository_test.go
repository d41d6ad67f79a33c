package repository

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
)

func TestPlaylistAddTrackIdempotent(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	repo := NewPlaylistRepo(db)
	insert := regexp.QuoteMeta("INSERT IGNORE INTO playlist_tracks (playlist_id, track_id) VALUES (?, ?)")

	mock.ExpectExec(insert).
		WithArgs(uint64(1), uint64(2)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(insert).
		WithArgs(uint64(1), uint64(2)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	added, err := repo.AddTrack(context.Background(), 1, 2)
	if err != nil {
		t.Fatalf("AddTrack error: %v", err)
	}
	if !added {
		t.Fatalf("expected first add to report added=true")
	}

	added, err = repo.AddTrack(context.Background(), 1, 2)
	if err != nil {
		t.Fatalf("AddTrack (repeat) error: %v", err)
	}
	if added {
		t.Fatalf("expected repeated add to report added=false")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestPlaylistRemoveTrackMissing(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM playlist_tracks WHERE playlist_id = ? AND track_id = ?")).
		WithArgs(uint64(1), uint64(9)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err = NewPlaylistRepo(db).RemoveTrack(context.Background(), 1, 9)
	if !errors.Is(err, sql.ErrNoRows) {
		t.Fatalf("expected sql.ErrNoRows, got %v", err)
	}
}

func TestPlaylistDeleteCascades(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM playlist_tracks WHERE playlist_id = ?")).
		WithArgs(uint64(4)).
		WillReturnResult(sqlmock.NewResult(0, 3))
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM playlists WHERE playlist_id = ?")).
		WithArgs(uint64(4)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	if err := NewPlaylistRepo(db).Delete(context.Background(), 4); err != nil {
		t.Fatalf("Delete error: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestPlaylistDeleteCommitFailureSurfaces(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM playlist_tracks WHERE playlist_id = ?")).
		WithArgs(uint64(4)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM playlists WHERE playlist_id = ?")).
		WithArgs(uint64(4)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit().WillReturnError(errors.New("deadlock during commit"))

	if err := NewPlaylistRepo(db).Delete(context.Background(), 4); err == nil {
		t.Fatalf("expected commit error to surface, got nil")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestPlaylistDeleteNotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM playlist_tracks WHERE playlist_id = ?")).
		WithArgs(uint64(4)).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM playlists WHERE playlist_id = ?")).
		WithArgs(uint64(4)).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	err = NewPlaylistRepo(db).Delete(context.Background(), 4)
	if !errors.Is(err, ErrPlaylistNotFound) {
		t.Fatalf("expected ErrPlaylistNotFound, got %v", err)
	}
}
