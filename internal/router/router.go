// Package router wires handlers, middleware and route groups together.
package router

import (
	"github.com/labstack/echo/v4"

	"github.com/cypher-music/cypher-backend/internal/handler"
	"github.com/cypher-music/cypher-backend/internal/middleware"
	"github.com/cypher-music/cypher-backend/internal/model"
	"github.com/cypher-music/cypher-backend/internal/repository"
)

// Deps carries everything route registration needs.
type Deps struct {
	JWTSecret     string
	Auth          *handler.AuthHandler
	Profile       *handler.ProfileHandler
	Track         *handler.TrackHandler
	Playlist      *handler.PlaylistHandler
	Social        *handler.SocialHandler
	Notification  *handler.NotificationHandler
	TrackRepo     *repository.TrackRepo
	PlaylistRepo  *repository.PlaylistRepo
}

// Register mounts all routes. Everything lives under /api except the
// health endpoint; the public group carries registration and login, and the
// authed group everything else. Track mutation routes additionally pass
// the creator role check and the ownership check.
func Register(e *echo.Echo, d Deps) {
	e.GET("/healthz", handler.Health)

	api := e.Group("/api")

	// public
	api.POST("/register", d.Auth.Register)
	api.POST("/login", d.Auth.Login)

	// any authenticated user
	authed := api.Group("", middleware.JWTAuth(d.JWTSecret))

	authed.GET("/user/me", d.Profile.Me)
	authed.GET("/profile", d.Profile.Get)
	authed.PUT("/profile", d.Profile.Update)
	authed.PUT("/user/role", d.Profile.UpdateRole)

	authed.GET("/tracks", d.Track.List)
	authed.GET("/tracks/user", d.Track.Mine)
	authed.GET("/tracks/download/:id", d.Track.Download)
	authed.GET("/tracks/cover/:key", d.Track.Cover)

	authed.GET("/tracks/:id/comments", d.Social.ListComments)
	authed.POST("/tracks/:id/comments", d.Social.CreateComment)
	authed.POST("/tracks/:id/like", d.Social.ToggleLike)
	authed.GET("/tracks/:id/likes", d.Social.LikeStatus)

	authed.GET("/notifications", d.Notification.List)
	authed.PUT("/notifications/:id/read", d.Notification.MarkRead)

	// creators only
	creator := authed.Group("", middleware.RequireRole(model.RoleCreator))
	creator.POST("/tracks/upload", d.Track.Upload)

	// creators only, on their own tracks
	trackOwner := authed.Group("/tracks",
		middleware.RequireRole(model.RoleCreator),
		middleware.RequireTrackOwner(d.TrackRepo))
	trackOwner.PUT("/:id", d.Track.Update)
	trackOwner.DELETE("/:id", d.Track.Delete)

	// playlists
	authed.POST("/playlists", d.Playlist.Create)
	authed.GET("/playlists", d.Playlist.List)

	playlistOwner := authed.Group("/playlists", middleware.RequirePlaylistOwner(d.PlaylistRepo))
	playlistOwner.GET("/:id", d.Playlist.Get)
	playlistOwner.DELETE("/:id", d.Playlist.Delete)
	playlistOwner.GET("/:id/tracks", d.Playlist.ListTracks)
	playlistOwner.POST("/:id/tracks", d.Playlist.AddTrack)
	playlistOwner.DELETE("/:id/tracks/:trackId", d.Playlist.RemoveTrack)
}
