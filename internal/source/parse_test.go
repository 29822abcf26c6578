package source

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const discographyPage = `<html><body>
<div data-testid="tracklist-row"><a href="/track/one?si=x"><div>One</div></a></div>
<div data-testid="tracklist-row"><a href="/artist/someone">Feat</a><a href="/track/two">  Two  </a></div>
<div data-testid="tracklist-row"><a href="/track/one">One (Album)</a></div>
<div data-testid="tracklist-row"><span>no link</span></div>
<div data-testid="tracklist-row"><a href="/track/empty"></a></div>
<div data-testid="other-row"><a href="/track/ignored">Ignored</a></div>
</body></html>`

func TestParseTrackRows(t *testing.T) {
	now := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)

	tracks, err := ParseTrackRows(strings.NewReader(discographyPage), now)
	require.NoError(t, err)
	require.Len(t, tracks, 2)

	assert.Equal(t, "One", tracks[0].Name)
	assert.Equal(t, "https://open.spotify.com/track/one", tracks[0].ID)
	assert.Equal(t, now, tracks[0].DiscoveredAt)

	assert.Equal(t, "Two", tracks[1].Name)
	assert.Equal(t, "https://open.spotify.com/track/two", tracks[1].ID)
}

func TestParseTrackRows_NoRows(t *testing.T) {
	tracks, err := ParseTrackRows(strings.NewReader("<html></html>"), time.Now())
	require.NoError(t, err)
	assert.Empty(t, tracks)
}
