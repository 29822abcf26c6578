package source

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/abdulachik/releasebot/internal/track"
)

const (
	trackRowSelector  = `div[data-testid="tracklist-row"]`
	trackLinkSelector = `a[href*="/track/"]`
)

// ParseTrackRows extracts tracks from a rendered discography page. Each
// tracklist row contributes its first track link; the name is the link
// text, or the text of its first nested div when the link text is empty.
func ParseTrackRows(r io.Reader, now time.Time) ([]track.Track, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("parse HTML: %w", err)
	}

	var tracks []track.Track
	doc.Find(trackRowSelector).Each(func(_ int, row *goquery.Selection) {
		link := row.Find(trackLinkSelector).First()
		if link.Length() == 0 {
			return
		}

		href, _ := link.Attr("href")
		id, ok := CanonicalTrackURL(href)
		if !ok {
			return
		}

		name := strings.TrimSpace(link.Text())
		if name == "" {
			name = strings.TrimSpace(link.Find("div").First().Text())
		}
		if name == "" {
			return
		}

		tracks = append(tracks, track.Track{
			Name:         name,
			ID:           id,
			DiscoveredAt: now,
		})
	})

	return track.Dedupe(tracks), nil
}
