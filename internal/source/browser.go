package source

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/chromedp/chromedp"

	"github.com/abdulachik/releasebot/internal/logging"
	"github.com/abdulachik/releasebot/internal/track"
)

const (
	defaultScrollPause = 2 * time.Second
	defaultLoadTimeout = 20 * time.Second
	maxScrolls         = 50
)

// page is the slice of browser behaviour the scraper needs.
type page interface {
	ScrollHeight(ctx context.Context) (int64, error)
	ScrollToBottom(ctx context.Context) error
	HTML(ctx context.Context) (string, error)
}

// BrowserSource renders the artist's singles discography in headless Chrome
// and parses the track rows.
type BrowserSource struct {
	execPath    string
	scrollPause time.Duration
	loadTimeout time.Duration
	now         func() time.Time
}

// BrowserConfig holds configuration for the browser source.
type BrowserConfig struct {
	ExecPath    string // Chrome binary; empty uses chromedp's lookup
	ScrollPause time.Duration
	LoadTimeout time.Duration
	Now         func() time.Time
}

// NewBrowserSource creates a new browser source.
func NewBrowserSource(cfg BrowserConfig) *BrowserSource {
	pause := cfg.ScrollPause
	if pause <= 0 {
		pause = defaultScrollPause
	}
	loadTimeout := cfg.LoadTimeout
	if loadTimeout <= 0 {
		loadTimeout = defaultLoadTimeout
	}
	now := cfg.Now
	if now == nil {
		now = time.Now
	}

	return &BrowserSource{
		execPath:    cfg.ExecPath,
		scrollPause: pause,
		loadTimeout: loadTimeout,
		now:         now,
	}
}

// Name returns the source name.
func (b *BrowserSource) Name() string {
	return StrategyBrowser
}

// Fetch starts a fresh headless browser, loads the discography page, scrolls
// until no more rows load, and parses the result. The browser is closed
// before returning.
func (b *BrowserSource) Fetch(ctx context.Context, artistURL string) ([]track.Track, error) {
	pageURL, err := discographyURL(artistURL)
	if err != nil {
		return nil, err
	}

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.DisableGPU,
		chromedp.WindowSize(1920, 1080),
	)
	if b.execPath != "" {
		opts = append(opts, chromedp.ExecPath(b.execPath))
	}

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, opts...)
	defer cancelAlloc()

	browserCtx, cancelBrowser := chromedp.NewContext(allocCtx)
	defer cancelBrowser()

	// The first Run starts the browser; it must not carry the load timeout
	// or the timeout would tear the browser down with it.
	if err := chromedp.Run(browserCtx); err != nil {
		return nil, fmt.Errorf("start browser: %w", err)
	}

	loadCtx, cancelLoad := context.WithTimeout(browserCtx, b.loadTimeout)
	err = chromedp.Run(loadCtx,
		chromedp.Navigate(pageURL),
		chromedp.WaitReady(trackRowSelector, chromedp.ByQuery),
	)
	cancelLoad()
	if err != nil {
		return nil, fmt.Errorf("load discography %s: %w", pageURL, err)
	}

	p := chromePage{ctx: browserCtx}
	scrolls, err := scrollUntilStable(ctx, p, b.scrollPause, maxScrolls)
	if err != nil {
		return nil, fmt.Errorf("scroll discography: %w", err)
	}

	html, err := p.HTML(ctx)
	if err != nil {
		return nil, fmt.Errorf("read page: %w", err)
	}

	tracks, err := ParseTrackRows(strings.NewReader(html), b.now())
	if err != nil {
		return nil, err
	}
	if len(tracks) == 0 {
		return nil, ErrNoTracks
	}

	logging.FromContext(ctx).Debug("scraped discography",
		"url", pageURL,
		"scrolls", scrolls,
		"tracks", len(tracks),
	)
	return tracks, nil
}

// discographyURL returns the singles listing for the artist. It is built from
// the artist id so share-link queries and locale prefixes are dropped.
func discographyURL(artistURL string) (string, error) {
	id, err := ArtistID(artistURL)
	if err != nil {
		return "", err
	}
	return spotifyWebBase + "/artist/" + url.PathEscape(id) + "/discography/single", nil
}

// scrollUntilStable scrolls to the bottom until two consecutive height
// readings match, which is taken to mean no more rows are lazily loading.
// It returns the number of scrolls performed.
func scrollUntilStable(ctx context.Context, p page, pause time.Duration, limit int) (int, error) {
	last, err := p.ScrollHeight(ctx)
	if err != nil {
		return 0, err
	}

	for i := 1; i <= limit; i++ {
		if err := p.ScrollToBottom(ctx); err != nil {
			return i, err
		}

		select {
		case <-ctx.Done():
			return i, ctx.Err()
		case <-time.After(pause):
		}

		height, err := p.ScrollHeight(ctx)
		if err != nil {
			return i, err
		}
		if height == last {
			return i, nil
		}
		last = height
	}

	logging.FromContext(ctx).Warn("page height never settled", "scrolls", limit)
	return limit, nil
}

// chromePage adapts a chromedp browser context to page. Calls are bound to
// the browser context; the caller's ctx only gates entry.
type chromePage struct {
	ctx context.Context
}

func (c chromePage) ScrollHeight(ctx context.Context) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	var height int64
	err := chromedp.Run(c.ctx, chromedp.Evaluate(`document.body.scrollHeight`, &height))
	return height, err
}

func (c chromePage) ScrollToBottom(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	var ignored int64
	return chromedp.Run(c.ctx, chromedp.Evaluate(
		`window.scrollTo(0, document.body.scrollHeight); document.body.scrollHeight`, &ignored))
}

func (c chromePage) HTML(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	var html string
	err := chromedp.Run(c.ctx, chromedp.OuterHTML("html", &html, chromedp.ByQuery))
	return html, err
}
