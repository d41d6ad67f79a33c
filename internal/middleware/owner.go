package middleware

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/cypher-music/cypher-backend/internal/model"
	"github.com/cypher-music/cypher-backend/internal/repository"
)

// Context keys under which ownership middleware stashes the loaded
// record so handlers do not fetch it a second time.
const (
	CtxTrack    = "owned_track"
	CtxPlaylist = "owned_playlist"
)

// UserID extracts the authenticated user id that JWTAuth stored in the
// context. The claim arrives as float64 when the token was decoded from
// JSON and as uint64 when set directly in tests.
func UserID(c echo.Context) (uint64, bool) {
	switch v := c.Get("user_id").(type) {
	case float64:
		return uint64(v), true
	case uint64:
		return v, true
	case int64:
		return uint64(v), true
	case int:
		return uint64(v), true
	case string:
		n, err := strconv.ParseUint(v, 10, 64)
		return n, err == nil
	default:
		return 0, false
	}
}

// RequireTrackOwner loads the track named by the :id path parameter and
// rejects the request unless the authenticated user uploaded it. Absent
// tracks yield 404 and foreign tracks 403, so an owner probing for ids
// learns nothing beyond existence. The loaded track is stashed under
// CtxTrack.
func RequireTrackOwner(tracks *repository.TrackRepo) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			userID, ok := UserID(c)
			if !ok {
				return c.JSON(http.StatusUnauthorized, echo.Map{"message": "Token ist ungültig oder abgelaufen."})
			}
			id, err := strconv.ParseUint(c.Param("id"), 10, 64)
			if err != nil {
				return c.JSON(http.StatusBadRequest, echo.Map{"message": "Ungültige Track-ID."})
			}

			ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
			defer cancel()

			track, err := tracks.GetByID(ctx, id)
			if err != nil {
				if errors.Is(err, repository.ErrTrackNotFound) {
					return c.JSON(http.StatusNotFound, echo.Map{"message": "Track nicht gefunden."})
				}
				return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Interner Serverfehler."})
			}
			if track.ArtistID != userID {
				return c.JSON(http.StatusForbidden, echo.Map{"message": "Zugriff verweigert."})
			}
			c.Set(CtxTrack, track)
			return next(c)
		}
	}
}

// RequirePlaylistOwner is the playlist counterpart of RequireTrackOwner.
// The loaded playlist is stashed under CtxPlaylist.
func RequirePlaylistOwner(playlists *repository.PlaylistRepo) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			userID, ok := UserID(c)
			if !ok {
				return c.JSON(http.StatusUnauthorized, echo.Map{"message": "Token ist ungültig oder abgelaufen."})
			}
			id, err := strconv.ParseUint(c.Param("id"), 10, 64)
			if err != nil {
				return c.JSON(http.StatusBadRequest, echo.Map{"message": "Ungültige Playlist-ID."})
			}

			ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
			defer cancel()

			pl, err := playlists.GetByID(ctx, id)
			if err != nil {
				if errors.Is(err, repository.ErrPlaylistNotFound) {
					return c.JSON(http.StatusNotFound, echo.Map{"message": "Playlist nicht gefunden."})
				}
				return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Interner Serverfehler."})
			}
			if pl.UserID != userID {
				return c.JSON(http.StatusForbidden, echo.Map{"message": "Zugriff verweigert."})
			}
			c.Set(CtxPlaylist, pl)
			return next(c)
		}
	}
}

// TrackFromContext returns the track stashed by RequireTrackOwner.
func TrackFromContext(c echo.Context) (*model.Track, bool) {
	t, ok := c.Get(CtxTrack).(*model.Track)
	return t, ok
}

// PlaylistFromContext returns the playlist stashed by RequirePlaylistOwner.
func PlaylistFromContext(c echo.Context) (*model.Playlist, bool) {
	p, ok := c.Get(CtxPlaylist).(*model.Playlist)
	return p, ok
}
