package announce

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abdulachik/releasebot/internal/track"
)

func testAnnouncement() Announcement {
	return Announcement{
		Track: track.Track{
			Name:         "Overdrive",
			ID:           "https://open.spotify.com/track/abc",
			DiscoveredAt: time.Unix(1767225600, 0),
		},
		ArtistURL:  "https://open.spotify.com/artist/xyz",
		ArtistName: "bitcrush",
		ChannelID:  "123",
	}
}

func TestReleaseEmbed(t *testing.T) {
	embed := ReleaseEmbed(testAnnouncement())

	assert.Equal(t, "🎵 New Release by bitcrush!", embed.Title)
	assert.Equal(t, "**[Overdrive](https://open.spotify.com/track/abc)** is out now on Spotify!\n\n"+
		"💥 Stream it, share it, and turn it up loud.\n\n", embed.Description)
	assert.Equal(t, ColorBlue, embed.Color)

	require.Len(t, embed.Fields, 3)
	assert.Equal(t, "🕒 Released", embed.Fields[0].Name)
	assert.Equal(t, "<t:1767225600:f>", embed.Fields[0].Value)
	assert.True(t, embed.Fields[0].Inline)

	assert.Equal(t, "🎶 Listen Now", embed.Fields[1].Name)
	assert.Equal(t, "[Click Here](https://open.spotify.com/track/abc)", embed.Fields[1].Value)
	assert.True(t, embed.Fields[1].Inline)

	assert.Equal(t, "🔗 Follow bitcrush", embed.Fields[2].Name)
	assert.Equal(t, "[Follow bitcrush on Spotify](https://open.spotify.com/artist/xyz)", embed.Fields[2].Value)
	assert.False(t, embed.Fields[2].Inline)
}

func TestReleaseEmbed_ArtistName(t *testing.T) {
	a := testAnnouncement()
	a.ArtistName = "Other Artist"
	assert.Equal(t, "🎵 New Release by Other Artist!", ReleaseEmbed(a).Title)

	a.ArtistName = ""
	assert.Equal(t, "🎵 New Release by bitcrush!", ReleaseEmbed(a).Title)
}

func TestReleaseMessage(t *testing.T) {
	t.Run("without role", func(t *testing.T) {
		msg := ReleaseMessage(testAnnouncement())
		assert.Empty(t, msg.Content)
		assert.Len(t, msg.Embeds, 1)
		assert.Empty(t, msg.AllowedMentions.Roles)
	})

	t.Run("with role", func(t *testing.T) {
		a := testAnnouncement()
		a.RoleID = "999"
		msg := ReleaseMessage(a)
		assert.Equal(t, "<@&999>", msg.Content)
		assert.Equal(t, []string{"999"}, msg.AllowedMentions.Roles)
	})
}

func TestRoleMention(t *testing.T) {
	assert.Equal(t, "", RoleMention(""))
	assert.Equal(t, "<@&42>", RoleMention("42"))
}
