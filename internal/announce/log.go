package announce

import (
	"context"
	"sync"

	"github.com/abdulachik/releasebot/internal/logging"
)

// LogAnnouncer logs announcements instead of sending them. It backs the
// check --dry-run mode and keeps what it saw for inspection.
type LogAnnouncer struct {
	mu   sync.Mutex
	sent []Announcement
}

// NewLogAnnouncer creates a new log announcer.
func NewLogAnnouncer() *LogAnnouncer {
	return &LogAnnouncer{}
}

// Announce logs the announcement and always succeeds.
func (l *LogAnnouncer) Announce(ctx context.Context, a Announcement) error {
	l.mu.Lock()
	l.sent = append(l.sent, a)
	l.mu.Unlock()

	logging.FromContext(ctx).Info("would announce release",
		"track", a.Track.Name,
		"url", a.Track.ID,
		"channel", a.ChannelID,
		"role", a.RoleID,
	)
	return nil
}

// Sent returns the announcements seen so far.
func (l *LogAnnouncer) Sent() []Announcement {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]Announcement, len(l.sent))
	copy(out, l.sent)
	return out
}
