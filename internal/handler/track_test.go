package handler

import (
	"bytes"
	"context"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/labstack/echo/v4"
	"github.com/minio/minio-go/v7"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cypher-music/cypher-backend/internal/middleware"
	"github.com/cypher-music/cypher-backend/internal/model"
	"github.com/cypher-music/cypher-backend/internal/repository"
	"github.com/cypher-music/cypher-backend/internal/storage"
)

// fakeObjectStore records gateway calls so tests can assert which
// objects were written and removed.
type fakeObjectStore struct {
	putKeys     []string
	removedKeys []string
}

func (f *fakeObjectStore) PutObject(ctx context.Context, bucket, key string, r io.Reader, size int64, opts minio.PutObjectOptions) (minio.UploadInfo, error) {
	f.putKeys = append(f.putKeys, key)
	return minio.UploadInfo{Key: key, Size: size}, nil
}

func (f *fakeObjectStore) PresignedGetObject(ctx context.Context, bucket, key string, expires time.Duration, reqParams url.Values) (*url.URL, error) {
	return url.Parse("https://store.example.com/" + bucket + "/" + key + "?signed=1")
}

func (f *fakeObjectStore) RemoveObject(ctx context.Context, bucket, key string, opts minio.RemoveObjectOptions) error {
	f.removedKeys = append(f.removedKeys, key)
	return nil
}

func trackTest(t *testing.T) (*TrackHandler, *repository.TrackRepo, sqlmock.Sqlmock, *fakeObjectStore, func()) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	fake := &fakeObjectStore{}
	tracks := repository.NewTrackRepo(db)
	h := NewTrackHandler(tracks, storage.NewWithClient(fake, "cypher", time.Hour, zerolog.Nop()), zerolog.Nop())
	return h, tracks, mock, fake, func() { db.Close() }
}

func asUserWithRole(userID uint64, role string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			c.Set("user_id", float64(userID))
			c.Set("role", role)
			return next(c)
		}
	}
}

func ownedTrackRow(trackID, artistID uint64, coverKey string) *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"track_id", "title", "genre", "description", "artist_id", "file_key", "cover_art_key", "created_at",
	}).AddRow(trackID, "Nachtfahrt", "rap", "", artistID, "track-abc-song.mp3", coverKey, time.Now())
}

func mountTrackMutations(h *TrackHandler, tracks *repository.TrackRepo, role string) *echo.Echo {
	e := echo.New()
	g := e.Group("/api/tracks",
		asUserWithRole(7, role),
		middleware.RequireRole(model.RoleCreator),
		middleware.RequireTrackOwner(tracks))
	g.PUT("/:id", h.Update)
	g.DELETE("/:id", h.Delete)
	return e
}

func TestTrackDeleteRemovesRowAndObjects(t *testing.T) {
	h, tracks, mock, fake, closeDB := trackTest(t)
	defer closeDB()

	mock.ExpectQuery("SELECT .+ FROM tracks WHERE track_id = \\?").
		WithArgs(uint64(3)).
		WillReturnRows(ownedTrackRow(3, 7, "cover-abc.png"))
	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM likes WHERE track_id = ?")).
		WithArgs(uint64(3)).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM comments WHERE track_id = ?")).
		WithArgs(uint64(3)).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM playlist_tracks WHERE track_id = ?")).
		WithArgs(uint64(3)).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM tracks WHERE track_id = ?")).
		WithArgs(uint64(3)).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	e := mountTrackMutations(h, tracks, model.RoleCreator)

	req := httptest.NewRequest(http.MethodDelete, "/api/tracks/3", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Track erfolgreich gelöscht.")
	assert.Equal(t, []string{"track-abc-song.mp3", "cover-abc.png"}, fake.removedKeys)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTrackDeleteCommitFailureKeepsObjects(t *testing.T) {
	h, tracks, mock, fake, closeDB := trackTest(t)
	defer closeDB()

	mock.ExpectQuery("SELECT .+ FROM tracks WHERE track_id = \\?").
		WithArgs(uint64(3)).
		WillReturnRows(ownedTrackRow(3, 7, "cover-abc.png"))
	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM likes WHERE track_id = ?")).
		WithArgs(uint64(3)).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM comments WHERE track_id = ?")).
		WithArgs(uint64(3)).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM playlist_tracks WHERE track_id = ?")).
		WithArgs(uint64(3)).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM tracks WHERE track_id = ?")).
		WithArgs(uint64(3)).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit().WillReturnError(errors.New("deadlock during commit"))

	e := mountTrackMutations(h, tracks, model.RoleCreator)

	req := httptest.NewRequest(http.MethodDelete, "/api/tracks/3", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	// The row survived the failed commit, so the audio and cover objects
	// must survive too and the client must see a server error.
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Empty(t, fake.removedKeys)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTrackMutationsForbiddenForListener(t *testing.T) {
	h, tracks, mock, fake, closeDB := trackTest(t)
	defer closeDB()

	// No DB expectations: the role gate rejects before the ownership load.
	e := mountTrackMutations(h, tracks, model.RoleListener)

	for _, method := range []string{http.MethodPut, http.MethodDelete} {
		req := httptest.NewRequest(method, "/api/tracks/3", nil)
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusForbidden, rec.Code, method)
		assert.Contains(t, rec.Body.String(), "Nur Creators")
	}
	assert.Empty(t, fake.removedKeys)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func multipartUpload(t *testing.T, fields map[string]string, fileField, filename, content string) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, w.WriteField(k, v))
	}
	fw, err := w.CreateFormFile(fileField, filename)
	require.NoError(t, err)
	_, err = fw.Write([]byte(content))
	require.NoError(t, err)
	require.NoError(t, w.Close())
	return &buf, w.FormDataContentType()
}

func TestUploadListenerStoresNothing(t *testing.T) {
	h, _, mock, fake, closeDB := trackTest(t)
	defer closeDB()

	e := echo.New()
	e.POST("/api/tracks/upload", h.Upload,
		asUserWithRole(7, model.RoleListener),
		middleware.RequireRole(model.RoleCreator))

	body, contentType := multipartUpload(t, map[string]string{"title": "Nachtfahrt"}, "audioFile", "song.mp3", "audio")
	req := httptest.NewRequest(http.MethodPost, "/api/tracks/upload", body)
	req.Header.Set(echo.HeaderContentType, contentType)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Empty(t, fake.putKeys)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUploadCreatorStoresObjectAndRow(t *testing.T) {
	h, _, mock, fake, closeDB := trackTest(t)
	defer closeDB()

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO tracks")).
		WillReturnResult(sqlmock.NewResult(21, 1))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT created_at FROM tracks WHERE track_id = ?")).
		WithArgs(uint64(21)).
		WillReturnRows(sqlmock.NewRows([]string{"created_at"}).AddRow(time.Now()))

	e := echo.New()
	e.POST("/api/tracks/upload", h.Upload,
		asUserWithRole(7, model.RoleCreator),
		middleware.RequireRole(model.RoleCreator))

	body, contentType := multipartUpload(t, map[string]string{"title": "Nachtfahrt", "genre": "rap"}, "audioFile", "song.mp3", "audio")
	req := httptest.NewRequest(http.MethodPost, "/api/tracks/upload", body)
	req.Header.Set(echo.HeaderContentType, contentType)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Contains(t, rec.Body.String(), "Datei erfolgreich hochgeladen und Metadaten gespeichert!")
	require.Len(t, fake.putKeys, 1)
	assert.True(t, strings.HasPrefix(fake.putKeys[0], "track-"), "got key %q", fake.putKeys[0])
	assert.Contains(t, rec.Body.String(), `"track_id":21`)
	assert.NoError(t, mock.ExpectationsWereMet())
}
