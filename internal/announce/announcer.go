// Package announce delivers new-release announcements to a chat channel.
package announce

import (
	"context"
	"errors"

	"github.com/abdulachik/releasebot/internal/track"
)

var (
	// ErrNoChannel is returned when an announcement has no target channel.
	ErrNoChannel = errors.New("no announcement channel configured")

	// ErrChannelNotFound is returned when the target channel cannot be resolved.
	ErrChannelNotFound = errors.New("announcement channel not found")
)

// Announcement is one new track to be published.
type Announcement struct {
	Track      track.Track
	ArtistURL  string
	ArtistName string
	ChannelID  string
	RoleID     string // empty means no mention
}

// Announcer publishes announcements.
type Announcer interface {
	// Announce delivers a single announcement. A non-nil error means the
	// message was not delivered.
	Announce(ctx context.Context, a Announcement) error
}
