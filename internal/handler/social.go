package handler

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/cypher-music/cypher-backend/internal/middleware"
	"github.com/cypher-music/cypher-backend/internal/model"
	"github.com/cypher-music/cypher-backend/internal/queue"
	"github.com/cypher-music/cypher-backend/internal/repository"
	queuepublisher "github.com/cypher-music/cypher-backend/internal/service"
)

// SocialHandler serves comments and likes. Both create notifications for
// the track owner as a side effect, published to the broker and written
// directly to the database when the broker is unreachable.
type SocialHandler struct {
	Comments      *repository.CommentRepo
	Likes         *repository.LikeRepo
	Tracks        *repository.TrackRepo
	Users         *repository.UserRepo
	Notifications *repository.NotificationRepo
	AMQPURL       string
	Log           zerolog.Logger
}

func NewSocialHandler(comments *repository.CommentRepo, likes *repository.LikeRepo, tracks *repository.TrackRepo,
	users *repository.UserRepo, notifications *repository.NotificationRepo, amqpURL string, log zerolog.Logger) *SocialHandler {
	return &SocialHandler{
		Comments: comments, Likes: likes, Tracks: tracks,
		Users: users, Notifications: notifications,
		AMQPURL: amqpURL, Log: log,
	}
}

type commentRequest struct {
	CommentText string `json:"commentText"`
}

// ListComments returns a track's comments as a bare array in posting order.
func (h *SocialHandler) ListComments(c echo.Context) error {
	trackID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "Ungültige Track-ID."})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	comments, err := h.Comments.ListByTrack(ctx, trackID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Kommentare konnten nicht abgerufen werden."})
	}
	return c.JSON(http.StatusOK, comments)
}

// CreateComment posts a comment on a track and notifies the track's
// owner, unless the commenter is the owner.
func (h *SocialHandler) CreateComment(c echo.Context) error {
	userID, ok := middleware.UserID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"message": "Token ist ungültig oder abgelaufen."})
	}
	trackID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "Ungültige Track-ID."})
	}

	var req commentRequest
	if err := c.Bind(&req); err != nil || req.CommentText == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "Bitte gib einen Kommentartext an."})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	track, err := h.Tracks.GetByID(ctx, trackID)
	if err != nil {
		if errors.Is(err, repository.ErrTrackNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"message": "Track nicht gefunden."})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Ein Fehler ist aufgetreten. Bitte versuche es später erneut."})
	}

	comment, err := h.Comments.Create(ctx, trackID, userID, req.CommentText)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Ein Fehler ist aufgetreten. Bitte versuche es später erneut."})
	}

	if track.ArtistID != userID {
		msg := fmt.Sprintf("%s hat deinen Track \"%s\" kommentiert.", h.senderName(ctx, userID), track.Title)
		h.notify(ctx, track.ArtistID, userID, model.NotificationNewComment, msg, &track.ID)
	}

	return c.JSON(http.StatusCreated, echo.Map{
		"message": "Kommentar erfolgreich erstellt!",
		"comment": comment,
	})
}

// ToggleLike flips the caller's like on a track. Liking answers 201 and
// unliking 200; both carry the fresh count so clients render without a
// second request. A new like notifies the owner.
func (h *SocialHandler) ToggleLike(c echo.Context) error {
	userID, ok := middleware.UserID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"message": "Token ist ungültig oder abgelaufen."})
	}
	trackID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "Ungültige Track-ID."})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	track, err := h.Tracks.GetByID(ctx, trackID)
	if err != nil {
		if errors.Is(err, repository.ErrTrackNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"message": "Track nicht gefunden."})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Ein Fehler ist aufgetreten. Bitte versuche es später erneut."})
	}

	liked, err := h.Likes.Toggle(ctx, trackID, userID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Ein Fehler ist aufgetreten. Bitte versuche es später erneut."})
	}

	status, err := h.Likes.Status(ctx, trackID, userID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Ein Fehler ist aufgetreten. Bitte versuche es später erneut."})
	}

	if liked {
		if track.ArtistID != userID {
			msg := fmt.Sprintf("%s hat deinen Track \"%s\" geliked.", h.senderName(ctx, userID), track.Title)
			h.notify(ctx, track.ArtistID, userID, model.NotificationTrackLiked, msg, &track.ID)
		}
		return c.JSON(http.StatusCreated, echo.Map{
			"message":   "Track geliked",
			"likeCount": status.LikeCount,
			"userLiked": status.UserLiked,
		})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"message":   "Like entfernt",
		"likeCount": status.LikeCount,
		"userLiked": status.UserLiked,
	})
}

// LikeStatus returns the like count of a track and whether the caller
// has liked it.
func (h *SocialHandler) LikeStatus(c echo.Context) error {
	userID, ok := middleware.UserID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"message": "Token ist ungültig oder abgelaufen."})
	}
	trackID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "Ungültige Track-ID."})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	status, err := h.Likes.Status(ctx, trackID, userID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Ein Fehler ist aufgetreten. Bitte versuche es später erneut."})
	}
	return c.JSON(http.StatusOK, status)
}

// senderName resolves the acting user's display name for notification
// text: the artist name when set, the email otherwise.
func (h *SocialHandler) senderName(ctx context.Context, userID uint64) string {
	user, err := h.Users.GetByID(ctx, userID)
	if err != nil {
		return "Jemand"
	}
	if user.ArtistName != nil && *user.ArtistName != "" {
		return *user.ArtistName
	}
	return user.Email
}

// notify publishes a notification event, falling back to a direct insert
// when the broker is unavailable. Failure of both paths is logged but
// never fails the request that triggered the notification.
func (h *SocialHandler) notify(ctx context.Context, recipientID, senderID uint64, typ, message string, trackID *uint64) {
	ev := queue.NotificationEvent{
		RecipientID: recipientID,
		SenderID:    senderID,
		Type:        typ,
		Message:     message,
		TrackID:     trackID,
		CreatedAt:   time.Now().UTC().Format(time.RFC3339),
	}
	if err := queuepublisher.PublishNotification(ctx, h.AMQPURL, ev, h.Log); err == nil {
		return
	}

	n := &model.Notification{
		RecipientID: recipientID,
		SenderID:    senderID,
		Type:        typ,
		Message:     message,
		TrackID:     trackID,
	}
	if err := h.Notifications.Create(ctx, n); err != nil {
		h.Log.Error().Err(err).Uint64("recipient_id", recipientID).Msg("notification fallback insert failed")
	}
}
