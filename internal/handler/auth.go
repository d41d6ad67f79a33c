package handler

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/cypher-music/cypher-backend/internal/model"
	"github.com/cypher-music/cypher-backend/internal/repository"
	"github.com/cypher-music/cypher-backend/internal/utils"
)

// AuthHandler serves registration and login.
type AuthHandler struct {
	Users      *repository.UserRepo
	JWTSecret  string
	AccessTTL  time.Duration
	BcryptCost int
}

func NewAuthHandler(users *repository.UserRepo, secret string, ttl time.Duration, bcryptCost int) *AuthHandler {
	return &AuthHandler{Users: users, JWTSecret: secret, AccessTTL: ttl, BcryptCost: bcryptCost}
}

type registerRequest struct {
	Email      string `json:"email"`
	Password   string `json:"password"`
	UserRole   string `json:"userRole"`
	ArtistName string `json:"artistName"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Register creates a new account. Creators must supply an artist name;
// listeners may leave it empty.
func (h *AuthHandler) Register(c echo.Context) error {
	var req registerRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "Ungültige Anfrage."})
	}
	if req.Email == "" || req.Password == "" || req.UserRole == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "Bitte gib eine E-Mail, ein Passwort und eine Benutzerrolle an."})
	}
	if req.UserRole != model.RoleListener && req.UserRole != model.RoleCreator {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "Ungültige Benutzerrolle."})
	}
	if req.UserRole == model.RoleCreator && req.ArtistName == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "Creators müssen einen Künstlernamen angeben."})
	}

	var artistName *string
	if req.ArtistName != "" {
		artistName = &req.ArtistName
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	id, err := h.Users.Create(ctx, req.Email, req.Password, req.UserRole, artistName, h.BcryptCost)
	if err != nil {
		if errors.Is(err, repository.ErrEmailExists) {
			return c.JSON(http.StatusBadRequest, echo.Map{"message": "E-Mail oder Künstlername existiert bereits."})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Ein Fehler ist aufgetreten. Bitte versuche es später erneut."})
	}

	user, err := h.Users.GetByID(ctx, id)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Ein Fehler ist aufgetreten. Bitte versuche es später erneut."})
	}

	return c.JSON(http.StatusCreated, echo.Map{
		"message": "Benutzer erfolgreich registriert!",
		"user":    user,
	})
}

// Login verifies credentials and issues a short-lived access token. An
// unknown email and a wrong password produce the same response so the
// endpoint leaks nothing about which emails exist.
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "Ungültige Anfrage."})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	user, err := h.Users.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return c.JSON(http.StatusBadRequest, echo.Map{"message": "Ungültige E-Mail-Adresse oder Passwort."})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Ein Fehler ist aufgetreten. Bitte versuche es später erneut."})
	}
	if !utils.VerifyPassword(user.PasswordHash, req.Password) {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "Ungültige E-Mail-Adresse oder Passwort."})
	}

	tok, err := utils.NewAccessToken(h.JWTSecret, user.ID, user.Role, h.AccessTTL)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Ein Fehler ist aufgetreten. Bitte versuche es später erneut."})
	}

	return c.JSON(http.StatusOK, echo.Map{
		"message": "Anmeldung erfolgreich!",
		"token":   tok.Token,
		"user": echo.Map{
			"id":         user.ID,
			"email":      user.Email,
			"role":       user.Role,
			"artistName": user.ArtistName,
		},
	})
}
