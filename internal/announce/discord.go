package announce

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/bwmarrin/discordgo"

	"github.com/abdulachik/releasebot/internal/logging"
)

// Session is the part of *discordgo.Session the announcer uses.
type Session interface {
	Channel(channelID string, options ...discordgo.RequestOption) (*discordgo.Channel, error)
	ChannelMessageSendComplex(channelID string, data *discordgo.MessageSend, options ...discordgo.RequestOption) (*discordgo.Message, error)
}

// DiscordAnnouncer posts release embeds to a Discord channel.
type DiscordAnnouncer struct {
	session Session
	limiter *RateLimiter
}

// DiscordConfig holds configuration for the Discord announcer.
type DiscordConfig struct {
	Session Session

	// Limiter defaults to 0.5 sends per second with a burst of 3.
	Limiter *RateLimiter
}

// NewDiscordAnnouncer creates a new Discord announcer.
func NewDiscordAnnouncer(cfg DiscordConfig) *DiscordAnnouncer {
	limiter := cfg.Limiter
	if limiter == nil {
		limiter = NewRateLimiter(0.5, 3)
	}
	return &DiscordAnnouncer{
		session: cfg.Session,
		limiter: limiter,
	}
}

// Announce resolves the target channel and sends the release message.
func (d *DiscordAnnouncer) Announce(ctx context.Context, a Announcement) error {
	if a.ChannelID == "" {
		return ErrNoChannel
	}

	if _, err := d.session.Channel(a.ChannelID, discordgo.WithContext(ctx)); err != nil {
		if isNotFound(err) {
			return fmt.Errorf("%w: %s", ErrChannelNotFound, a.ChannelID)
		}
		return fmt.Errorf("lookup channel %s: %w", a.ChannelID, err)
	}

	if err := d.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limit: %w", err)
	}

	msg, err := d.session.ChannelMessageSendComplex(a.ChannelID, ReleaseMessage(a), discordgo.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("send announcement: %w", err)
	}

	logging.FromContext(ctx).Info("announced release",
		"track", a.Track.Name,
		"url", a.Track.ID,
		"channel", a.ChannelID,
		"message_id", msg.ID,
	)
	return nil
}

func isNotFound(err error) bool {
	var restErr *discordgo.RESTError
	if errors.As(err, &restErr) && restErr.Response != nil {
		return restErr.Response.StatusCode == http.StatusNotFound
	}
	return false
}
