package utils

import (
	"strings"

	"github.com/google/uuid"
)

// Object key prefixes. Keys are flat (no slashes) so they round-trip
// through URL path parameters unescaped.
const (
	KeyPrefixTrack      = "track-"
	KeyPrefixCover      = "cover-"
	KeyPrefixProfilePic = "profile-pic-"
)

// NewObjectKey builds a unique object key from a prefix and the client's
// original filename. The random UUID makes collisions between identical
// filenames impossible.
func NewObjectKey(prefix, filename string) string {
	return prefix + uuid.NewString() + "-" + sanitizeFilename(filename)
}

// sanitizeFilename strips path separators and whitespace from a client
// supplied filename so the resulting key stays a single flat path segment.
func sanitizeFilename(name string) string {
	name = strings.TrimSpace(name)
	r := strings.NewReplacer("/", "_", "\\", "_", " ", "_", "?", "_", "#", "_", "%", "_")
	name = r.Replace(name)
	if name == "" {
		name = "file"
	}
	return name
}
