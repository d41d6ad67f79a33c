package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/cypher-music/cypher-backend/internal/middleware"
	"github.com/cypher-music/cypher-backend/internal/model"
	"github.com/cypher-music/cypher-backend/internal/repository"
	"github.com/cypher-music/cypher-backend/internal/storage"
	"github.com/cypher-music/cypher-backend/internal/utils"
)

// ProfileHandler serves the authenticated user's own profile.
type ProfileHandler struct {
	Users     *repository.UserRepo
	Store     *storage.S3Storage
	JWTSecret string
	AccessTTL time.Duration
	Log       zerolog.Logger
}

func NewProfileHandler(users *repository.UserRepo, store *storage.S3Storage, secret string, ttl time.Duration, log zerolog.Logger) *ProfileHandler {
	return &ProfileHandler{Users: users, Store: store, JWTSecret: secret, AccessTTL: ttl, Log: log}
}

// Me returns the identity behind the presented token together with the
// current database record, so clients can detect a role change that
// happened after the token was issued.
func (h *ProfileHandler) Me(c echo.Context) error {
	userID, ok := middleware.UserID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"message": "Token ist ungültig oder abgelaufen."})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	user, err := h.Users.GetByID(ctx, userID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Ein Fehler ist aufgetreten. Bitte versuche es später erneut."})
	}

	return c.JSON(http.StatusOK, echo.Map{
		"userId":    userID,
		"tokenRole": c.Get("role"),
		"user":      user,
	})
}

// Get returns the caller's profile. When a profile picture exists the
// response also carries a signed URL for it.
func (h *ProfileHandler) Get(c echo.Context) error {
	userID, ok := middleware.UserID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"message": "Token ist ungültig oder abgelaufen."})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	user, err := h.Users.GetByID(ctx, userID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Ein Fehler ist aufgetreten. Bitte versuche es später erneut."})
	}

	var pictureURL *string
	if user.ProfilePictureKey != nil {
		if u, err := h.Store.SignedURL(ctx, *user.ProfilePictureKey, 0); err == nil {
			pictureURL = &u
		} else {
			h.Log.Warn().Err(err).Str("key", *user.ProfilePictureKey).Msg("profile picture presign failed")
		}
	}

	return c.JSON(http.StatusOK, echo.Map{
		"user":              user,
		"profilePictureUrl": pictureURL,
	})
}

// Update applies a partial profile edit. The request is multipart so a
// new profile picture can ride along with the text fields; fields absent
// from the form stay untouched. A replaced picture's old object is
// deleted best effort after the database points at the new key.
func (h *ProfileHandler) Update(c echo.Context) error {
	userID, ok := middleware.UserID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"message": "Token ist ungültig oder abgelaufen."})
	}

	var artistName, bio *string
	if v, err := formValue(c, "artistName"); err == nil {
		artistName = &v
	}
	if v, err := formValue(c, "bio"); err == nil {
		bio = &v
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 15*time.Second)
	defer cancel()

	if err := h.Users.UpdateProfile(ctx, userID, artistName, bio); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Ein Fehler ist aufgetreten. Bitte versuche es später erneut."})
	}

	if file, err := c.FormFile("profilePicture"); err == nil {
		src, err := file.Open()
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"message": "Datei konnte nicht gelesen werden."})
		}
		defer src.Close()

		key := utils.NewObjectKey(utils.KeyPrefixProfilePic, file.Filename)
		if err := h.Store.Upload(ctx, key, src, file.Size, file.Header.Get("Content-Type")); err != nil {
			return c.JSON(http.StatusBadGateway, echo.Map{"message": "Upload fehlgeschlagen. Bitte versuche es später erneut."})
		}
		oldKey, err := h.Users.SetProfilePicture(ctx, userID, key)
		if err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Ein Fehler ist aufgetreten. Bitte versuche es später erneut."})
		}
		if oldKey != nil {
			if err := h.Store.Delete(ctx, *oldKey); err != nil {
				h.Log.Warn().Err(err).Str("key", *oldKey).Msg("old profile picture cleanup failed")
			}
		}
	}

	user, err := h.Users.GetByID(ctx, userID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Ein Fehler ist aufgetreten. Bitte versuche es später erneut."})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"message": "Profil erfolgreich aktualisiert!",
		"user":    user,
	})
}

type roleRequest struct {
	NewRole string `json:"newRole"`
}

// UpdateRole switches the caller between listener and creator and issues
// a fresh token carrying the new role, since the old token's role claim
// stays valid until expiry.
func (h *ProfileHandler) UpdateRole(c echo.Context) error {
	userID, ok := middleware.UserID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"message": "Token ist ungültig oder abgelaufen."})
	}

	var req roleRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "Ungültige Anfrage."})
	}
	if req.NewRole != model.RoleListener && req.NewRole != model.RoleCreator {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "Ungültige Benutzerrolle."})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Users.UpdateRole(ctx, userID, req.NewRole); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Ein Fehler ist aufgetreten. Bitte versuche es später erneut."})
	}

	user, err := h.Users.GetByID(ctx, userID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Ein Fehler ist aufgetreten. Bitte versuche es später erneut."})
	}

	tok, err := utils.NewAccessToken(h.JWTSecret, userID, req.NewRole, h.AccessTTL)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Ein Fehler ist aufgetreten. Bitte versuche es später erneut."})
	}

	return c.JSON(http.StatusOK, echo.Map{
		"message": "Rolle erfolgreich aktualisiert!",
		"token":   tok.Token,
		"user":    user,
	})
}

// formValue distinguishes an absent form field from an empty one so
// partial updates never clobber fields the client did not send.
func formValue(c echo.Context, name string) (string, error) {
	form, err := c.MultipartForm()
	if err == nil {
		if vs, ok := form.Value[name]; ok && len(vs) > 0 {
			return vs[0], nil
		}
		return "", echo.ErrNotFound
	}
	if err := c.Request().ParseForm(); err == nil {
		if vs, ok := c.Request().Form[name]; ok && len(vs) > 0 {
			return vs[0], nil
		}
	}
	return "", echo.ErrNotFound
}
