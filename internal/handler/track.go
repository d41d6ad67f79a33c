package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/cypher-music/cypher-backend/internal/middleware"
	"github.com/cypher-music/cypher-backend/internal/model"
	"github.com/cypher-music/cypher-backend/internal/repository"
	"github.com/cypher-music/cypher-backend/internal/storage"
	"github.com/cypher-music/cypher-backend/internal/utils"
)

// TrackHandler serves upload, search, metadata editing, deletion and the
// signed-URL endpoints for audio files and cover art.
type TrackHandler struct {
	Tracks *repository.TrackRepo
	Store  *storage.S3Storage
	Log    zerolog.Logger
}

func NewTrackHandler(tracks *repository.TrackRepo, store *storage.S3Storage, log zerolog.Logger) *TrackHandler {
	return &TrackHandler{Tracks: tracks, Store: store, Log: log}
}

// Upload accepts a multipart form with the audio file, optional cover art
// and the track metadata. The audio object is written to storage before
// the database row, so a failed insert leaves an orphan object rather
// than a dangling row; the orphan is deleted best effort.
func (h *TrackHandler) Upload(c echo.Context) error {
	userID, ok := middleware.UserID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"message": "Token ist ungültig oder abgelaufen."})
	}

	audio, err := c.FormFile("audioFile")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "Keine Datei zum Hochladen gefunden."})
	}
	title := c.FormValue("title")
	if title == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "Bitte gib einen Titel an."})
	}
	genre := c.FormValue("genre")
	description := c.FormValue("description")

	ctx, cancel := context.WithTimeout(c.Request().Context(), 30*time.Second)
	defer cancel()

	src, err := audio.Open()
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "Datei konnte nicht gelesen werden."})
	}
	defer src.Close()

	fileKey := utils.NewObjectKey(utils.KeyPrefixTrack, audio.Filename)
	if err := h.Store.Upload(ctx, fileKey, src, audio.Size, audio.Header.Get("Content-Type")); err != nil {
		return c.JSON(http.StatusBadGateway, echo.Map{"message": "Upload fehlgeschlagen. Bitte versuche es später erneut."})
	}

	var coverKey *string
	if cover, err := c.FormFile("coverArt"); err == nil {
		coverSrc, err := cover.Open()
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"message": "Datei konnte nicht gelesen werden."})
		}
		defer coverSrc.Close()
		key := utils.NewObjectKey(utils.KeyPrefixCover, cover.Filename)
		if err := h.Store.Upload(ctx, key, coverSrc, cover.Size, cover.Header.Get("Content-Type")); err != nil {
			return c.JSON(http.StatusBadGateway, echo.Map{"message": "Upload fehlgeschlagen. Bitte versuche es später erneut."})
		}
		coverKey = &key
	}

	track := &model.Track{
		Title:       title,
		Genre:       genre,
		Description: description,
		ArtistID:    userID,
		FileKey:     fileKey,
		CoverArtKey: coverKey,
	}
	if err := h.Tracks.Create(ctx, track); err != nil {
		h.Log.Error().Err(err).Str("file_key", fileKey).Msg("track insert failed after upload")
		if derr := h.Store.Delete(ctx, fileKey); derr != nil {
			h.Log.Warn().Err(derr).Str("key", fileKey).Msg("orphan audio cleanup failed")
		}
		if coverKey != nil {
			if derr := h.Store.Delete(ctx, *coverKey); derr != nil {
				h.Log.Warn().Err(derr).Str("key", *coverKey).Msg("orphan cover cleanup failed")
			}
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Ein Fehler ist aufgetreten. Bitte versuche es später erneut."})
	}

	return c.JSON(http.StatusCreated, echo.Map{
		"message": "Datei erfolgreich hochgeladen und Metadaten gespeichert!",
		"fileKey": fileKey,
		"track":   track,
	})
}

// List returns all tracks as a bare array, optionally filtered by the q
// and genre query parameters.
func (h *TrackHandler) List(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	tracks, err := h.Tracks.Search(ctx, c.QueryParam("q"), c.QueryParam("genre"))
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Tracks konnten nicht abgerufen werden."})
	}
	return c.JSON(http.StatusOK, tracks)
}

// Mine returns the caller's own uploads as a bare array.
func (h *TrackHandler) Mine(c echo.Context) error {
	userID, ok := middleware.UserID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"message": "Token ist ungültig oder abgelaufen."})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	tracks, err := h.Tracks.ListByArtist(ctx, userID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Tracks konnten nicht abgerufen werden."})
	}
	return c.JSON(http.StatusOK, tracks)
}

// Download mints a signed URL for a track's audio file. Any
// authenticated user may download any track.
func (h *TrackHandler) Download(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "Ungültige Track-ID."})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	track, err := h.Tracks.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrTrackNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"message": "Track nicht gefunden."})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Download-Link konnte nicht generiert werden."})
	}

	url, err := h.Store.SignedURL(ctx, track.FileKey, 0)
	if err != nil {
		return c.JSON(http.StatusBadGateway, echo.Map{"message": "Download-Link konnte nicht generiert werden."})
	}
	return c.JSON(http.StatusOK, echo.Map{"downloadUrl": url})
}

// Cover mints a signed URL for a cover art object addressed by its key.
// Keys are flat, so the path parameter arrives unmangled.
func (h *TrackHandler) Cover(c echo.Context) error {
	key := c.Param("key")
	if key == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "Ungültiger Objektschlüssel."})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	url, err := h.Store.SignedURL(ctx, key, 0)
	if err != nil {
		return c.JSON(http.StatusBadGateway, echo.Map{"message": "Link konnte nicht generiert werden."})
	}
	return c.JSON(http.StatusOK, echo.Map{"url": url})
}

// Update edits a track's metadata and optionally replaces its cover art.
// Ownership was already verified by middleware, which stashed the track.
func (h *TrackHandler) Update(c echo.Context) error {
	track, ok := middleware.TrackFromContext(c)
	if !ok {
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Ein Fehler ist aufgetreten. Bitte versuche es später erneut."})
	}

	title := c.FormValue("title")
	if title == "" {
		title = track.Title
	}
	genre := c.FormValue("genre")
	if genre == "" {
		genre = track.Genre
	}
	description := c.FormValue("description")
	if description == "" {
		description = track.Description
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 30*time.Second)
	defer cancel()

	var newCoverKey *string
	if cover, err := c.FormFile("coverArt"); err == nil {
		src, err := cover.Open()
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"message": "Datei konnte nicht gelesen werden."})
		}
		defer src.Close()
		key := utils.NewObjectKey(utils.KeyPrefixCover, cover.Filename)
		if err := h.Store.Upload(ctx, key, src, cover.Size, cover.Header.Get("Content-Type")); err != nil {
			return c.JSON(http.StatusBadGateway, echo.Map{"message": "Upload fehlgeschlagen. Bitte versuche es später erneut."})
		}
		newCoverKey = &key
	}

	if err := h.Tracks.Update(ctx, track.ID, title, genre, description, newCoverKey); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Ein Fehler ist aufgetreten. Bitte versuche es später erneut."})
	}

	if newCoverKey != nil && track.CoverArtKey != nil {
		if err := h.Store.Delete(ctx, *track.CoverArtKey); err != nil {
			h.Log.Warn().Err(err).Str("key", *track.CoverArtKey).Msg("old cover cleanup failed")
		}
	}

	updated, err := h.Tracks.GetByID(ctx, track.ID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Ein Fehler ist aufgetreten. Bitte versuche es später erneut."})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"message": "Track erfolgreich aktualisiert!",
		"track":   updated,
	})
}

// Delete removes a track. The database row and its dependents go first
// so the track disappears from the API immediately; the audio and cover
// objects are then deleted best effort, with failures logged for cleanup.
func (h *TrackHandler) Delete(c echo.Context) error {
	track, ok := middleware.TrackFromContext(c)
	if !ok {
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Ein Fehler ist aufgetreten. Bitte versuche es später erneut."})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 15*time.Second)
	defer cancel()

	if err := h.Tracks.Delete(ctx, track.ID); err != nil {
		if errors.Is(err, repository.ErrTrackNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"message": "Track nicht gefunden."})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Ein Fehler ist aufgetreten. Bitte versuche es später erneut."})
	}

	if err := h.Store.Delete(ctx, track.FileKey); err != nil {
		h.Log.Warn().Err(err).Str("key", track.FileKey).Msg("audio object cleanup failed")
	}
	if track.CoverArtKey != nil {
		if err := h.Store.Delete(ctx, *track.CoverArtKey); err != nil {
			h.Log.Warn().Err(err).Str("key", *track.CoverArtKey).Msg("cover object cleanup failed")
		}
	}

	return c.JSON(http.StatusOK, echo.Map{"message": "Track erfolgreich gelöscht."})
}
