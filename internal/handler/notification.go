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
	"github.com/cypher-music/cypher-backend/internal/repository"
)

// NotificationHandler serves the caller's notification feed.
type NotificationHandler struct {
	Notifications *repository.NotificationRepo
}

func NewNotificationHandler(notifications *repository.NotificationRepo) *NotificationHandler {
	return &NotificationHandler{Notifications: notifications}
}

// List returns the caller's notifications as a bare array, newest first.
func (h *NotificationHandler) List(c echo.Context) error {
	userID, ok := middleware.UserID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"message": "Token ist ungültig oder abgelaufen."})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	notifications, err := h.Notifications.ListByRecipient(ctx, userID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Benachrichtigungen konnten nicht abgerufen werden."})
	}
	return c.JSON(http.StatusOK, notifications)
}

// MarkRead flags one of the caller's notifications as read. Marking an
// already read notification succeeds; notifications of other users look
// like they do not exist.
func (h *NotificationHandler) MarkRead(c echo.Context) error {
	userID, ok := middleware.UserID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"message": "Token ist ungültig oder abgelaufen."})
	}
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "Ungültige Benachrichtigungs-ID."})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Notifications.MarkRead(ctx, id, userID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return c.JSON(http.StatusNotFound, echo.Map{"message": "Benachrichtigung nicht gefunden."})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Ein Fehler ist aufgetreten. Bitte versuche es später erneut."})
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "Benachrichtigung als gelesen markiert."})
}
