package announce

import (
	"fmt"
	"time"

	"github.com/bwmarrin/discordgo"
)

const (
	// ColorBlue is the release embed color (#3498DB).
	ColorBlue = 0x3498DB

	// ColorGreen is used for command replies and /say messages (#2ECC71).
	ColorGreen = 0x2ECC71

	defaultArtistName = "bitcrush"
)

// ReleaseEmbed builds the embed for a new release.
func ReleaseEmbed(a Announcement) *discordgo.MessageEmbed {
	artist := a.ArtistName
	if artist == "" {
		artist = defaultArtistName
	}
	released := a.Track.DiscoveredAt
	if released.IsZero() {
		released = time.Now()
	}

	return &discordgo.MessageEmbed{
		Title: fmt.Sprintf("🎵 New Release by %s!", artist),
		Description: fmt.Sprintf("**[%s](%s)** is out now on Spotify!\n\n"+
			"💥 Stream it, share it, and turn it up loud.\n\n",
			a.Track.Name, a.Track.ID),
		Color: ColorBlue,
		Fields: []*discordgo.MessageEmbedField{
			{
				Name:   "🕒 Released",
				Value:  DiscordTimestamp(released),
				Inline: true,
			},
			{
				Name:   "🎶 Listen Now",
				Value:  fmt.Sprintf("[Click Here](%s)", a.Track.ID),
				Inline: true,
			},
			{
				Name:  fmt.Sprintf("🔗 Follow %s", artist),
				Value: fmt.Sprintf("[Follow %s on Spotify](%s)", artist, a.ArtistURL),
			},
		},
	}
}

// DiscordTimestamp renders t as a Discord full date/time tag.
func DiscordTimestamp(t time.Time) string {
	return fmt.Sprintf("<t:%d:f>", t.Unix())
}

// RoleMention returns the mention for a role, or "" when roleID is empty.
func RoleMention(roleID string) string {
	if roleID == "" {
		return ""
	}
	return "<@&" + roleID + ">"
}

// ReleaseMessage builds the full message for an announcement. Only the
// configured role may be pinged by it.
func ReleaseMessage(a Announcement) *discordgo.MessageSend {
	msg := &discordgo.MessageSend{
		Content: RoleMention(a.RoleID),
		Embeds:  []*discordgo.MessageEmbed{ReleaseEmbed(a)},
		AllowedMentions: &discordgo.MessageAllowedMentions{
			Parse: []discordgo.AllowedMentionType{},
		},
	}
	if a.RoleID != "" {
		msg.AllowedMentions.Roles = []string{a.RoleID}
	}
	return msg
}
