package handler

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/cypher-music/cypher-backend/internal/middleware"
	"github.com/cypher-music/cypher-backend/internal/model"
	"github.com/cypher-music/cypher-backend/internal/repository"
)

// PlaylistHandler serves playlist CRUD and track membership. All routes
// except creation and listing run behind RequirePlaylistOwner.
type PlaylistHandler struct {
	Playlists *repository.PlaylistRepo
	Tracks    *repository.TrackRepo
}

func NewPlaylistHandler(playlists *repository.PlaylistRepo, tracks *repository.TrackRepo) *PlaylistHandler {
	return &PlaylistHandler{Playlists: playlists, Tracks: tracks}
}

type createPlaylistRequest struct {
	Name        string  `json:"name"`
	Description *string `json:"description"`
}

type addTrackRequest struct {
	TrackID uint64 `json:"trackId"`
}

// Create adds a new, empty playlist for the caller.
func (h *PlaylistHandler) Create(c echo.Context) error {
	userID, ok := middleware.UserID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"message": "Token ist ungültig oder abgelaufen."})
	}

	var req createPlaylistRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "Ungültige Anfrage."})
	}
	if req.Name == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "Bitte gib einen Namen für die Playlist an."})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	pl := &model.Playlist{Name: req.Name, Description: req.Description, UserID: userID}
	if err := h.Playlists.Create(ctx, pl); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Ein Fehler ist aufgetreten. Bitte versuche es später erneut."})
	}

	return c.JSON(http.StatusCreated, echo.Map{
		"message":  "Playlist erfolgreich erstellt!",
		"playlist": pl,
	})
}

// List returns the caller's playlists as a bare array.
func (h *PlaylistHandler) List(c echo.Context) error {
	userID, ok := middleware.UserID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"message": "Token ist ungültig oder abgelaufen."})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	playlists, err := h.Playlists.ListByUser(ctx, userID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Playlists konnten nicht abgerufen werden."})
	}
	return c.JSON(http.StatusOK, playlists)
}

// Get returns one playlist together with its member tracks.
func (h *PlaylistHandler) Get(c echo.Context) error {
	pl, ok := middleware.PlaylistFromContext(c)
	if !ok {
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Ein Fehler ist aufgetreten. Bitte versuche es später erneut."})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	tracks, err := h.Playlists.ListTracks(ctx, pl.ID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Tracks konnten nicht abgerufen werden."})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"playlist": pl,
		"tracks":   tracks,
	})
}

// Delete removes a playlist and its memberships. Tracks themselves are
// untouched.
func (h *PlaylistHandler) Delete(c echo.Context) error {
	pl, ok := middleware.PlaylistFromContext(c)
	if !ok {
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Ein Fehler ist aufgetreten. Bitte versuche es später erneut."})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Playlists.Delete(ctx, pl.ID); err != nil {
		if errors.Is(err, repository.ErrPlaylistNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"message": "Playlist nicht gefunden."})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Ein Fehler ist aufgetreten. Bitte versuche es später erneut."})
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "Playlist erfolgreich gelöscht."})
}

// AddTrack puts a track on the playlist. Adding a track that is already
// a member is a no-op and still succeeds.
func (h *PlaylistHandler) AddTrack(c echo.Context) error {
	pl, ok := middleware.PlaylistFromContext(c)
	if !ok {
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Ein Fehler ist aufgetreten. Bitte versuche es später erneut."})
	}

	var req addTrackRequest
	if err := c.Bind(&req); err != nil || req.TrackID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "Ungültige Track-ID."})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	// The track must exist; the membership insert alone would surface a
	// foreign key error only as a 500.
	if _, err := h.Tracks.GetByID(ctx, req.TrackID); err != nil {
		if errors.Is(err, repository.ErrTrackNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"message": "Track nicht gefunden."})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Ein Fehler ist aufgetreten. Bitte versuche es später erneut."})
	}

	added, err := h.Playlists.AddTrack(ctx, pl.ID, req.TrackID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Ein Fehler ist aufgetreten. Bitte versuche es später erneut."})
	}
	if !added {
		return c.JSON(http.StatusOK, echo.Map{"message": "Track ist bereits in der Playlist."})
	}
	return c.JSON(http.StatusCreated, echo.Map{"message": "Track zur Playlist hinzugefügt!"})
}

// RemoveTrack takes a track off the playlist.
func (h *PlaylistHandler) RemoveTrack(c echo.Context) error {
	pl, ok := middleware.PlaylistFromContext(c)
	if !ok {
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Ein Fehler ist aufgetreten. Bitte versuche es später erneut."})
	}

	trackID, err := strconv.ParseUint(c.Param("trackId"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "Ungültige Track-ID."})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Playlists.RemoveTrack(ctx, pl.ID, trackID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return c.JSON(http.StatusNotFound, echo.Map{"message": "Track ist nicht in der Playlist."})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Ein Fehler ist aufgetreten. Bitte versuche es später erneut."})
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "Track aus der Playlist entfernt."})
}

// ListTracks returns the playlist's member tracks as a bare array.
func (h *PlaylistHandler) ListTracks(c echo.Context) error {
	pl, ok := middleware.PlaylistFromContext(c)
	if !ok {
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Ein Fehler ist aufgetreten. Bitte versuche es später erneut."})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	tracks, err := h.Playlists.ListTracks(ctx, pl.ID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Tracks konnten nicht abgerufen werden."})
	}
	return c.JSON(http.StatusOK, tracks)
}
