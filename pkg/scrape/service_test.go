package scrape

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/entrhq/gamescribe/pkg/browser"
	"github.com/entrhq/gamescribe/pkg/logging"
)

const gamePageHTML = `<wc-vertical-move-list>
  <div class="move">
    <span class="white node">e4</span>
    <span class="black node">e5</span>
  </div>
  <div class="move">
    <span class="white node">Nf3</span>
  </div>
</wc-vertical-move-list>`

type fakePage struct {
	html      string
	navErr    error
	contErr   error
	navigated string
	waited    string
	closed    bool
}

func (p *fakePage) Navigate(ctx context.Context, url string) error {
	p.navigated = url
	return p.navErr
}

func (p *fakePage) WaitFor(selector string) { p.waited = selector }

func (p *fakePage) Content() (string, error) { return p.html, p.contErr }

func (p *fakePage) Close() { p.closed = true }

type fakeBrowser struct {
	page       *fakePage
	newPageErr error
	opened     int
	connected  bool
}

func (b *fakeBrowser) NewPage(ctx context.Context) (browser.Page, error) {
	b.opened++
	if b.newPageErr != nil {
		return nil, b.newPageErr
	}
	return b.page, nil
}

func (b *fakeBrowser) Connected() bool { return b.connected }

func newTestService(t *testing.T, b Browser, opts Options) *Service {
	t.Helper()
	if opts.MaxPages == 0 {
		opts.MaxPages = 3
	}
	svc, err := NewService(b, opts, logging.NewWithWriter("scrape", io.Discard))
	require.NoError(t, err)
	return svc
}

func TestTranscriptSuccess(t *testing.T) {
	page := &fakePage{html: gamePageHTML}
	b := &fakeBrowser{page: page, connected: true}
	svc := newTestService(t, b, Options{})

	notation, err := svc.Transcript(context.Background(), "https://www.chess.com/game/live/123")
	require.NoError(t, err)

	assert.Equal(t, "1. e4 e5 2. Nf3", notation)
	assert.Equal(t, "https://www.chess.com/game/live/123", page.navigated)
	assert.Equal(t, "wc-vertical-move-list .move", page.waited)
	assert.True(t, page.closed)
}

func TestTranscriptRejectsMalformedURL(t *testing.T) {
	b := &fakeBrowser{page: &fakePage{html: gamePageHTML}}
	svc := newTestService(t, b, Options{})

	for _, raw := range []string{"not-a-url", "", "ftp://example.com/game", "http://"} {
		_, err := svc.Transcript(context.Background(), raw)
		assert.True(t, errors.Is(err, ErrInvalidURL), "url %q", raw)
	}
	// Validation fails before any browser work happens.
	assert.Equal(t, 0, b.opened)
}

func TestTranscriptAllowedHosts(t *testing.T) {
	page := &fakePage{html: gamePageHTML}
	b := &fakeBrowser{page: page}
	svc := newTestService(t, b, Options{AllowedHosts: []string{"*.chess.com", "lichess.org"}})

	_, err := svc.Transcript(context.Background(), "https://www.chess.com/game/1")
	require.NoError(t, err)

	_, err = svc.Transcript(context.Background(), "https://evil.example.com/game/1")
	assert.True(t, errors.Is(err, ErrInvalidURL))
}

func TestTranscriptNoMoves(t *testing.T) {
	page := &fakePage{html: "<html><body><p>nothing</p></body></html>"}
	b := &fakeBrowser{page: page}
	svc := newTestService(t, b, Options{})

	_, err := svc.Transcript(context.Background(), "https://www.chess.com/game/1")
	assert.True(t, errors.Is(err, ErrNoMoves))
	assert.True(t, page.closed)
}

func TestTranscriptNavigationFailureClosesPage(t *testing.T) {
	page := &fakePage{navErr: browser.ErrNavigate}
	b := &fakeBrowser{page: page}
	svc := newTestService(t, b, Options{})

	_, err := svc.Transcript(context.Background(), "https://www.chess.com/game/1")
	assert.True(t, errors.Is(err, browser.ErrNavigate))
	assert.True(t, page.closed)
}

func TestTranscriptConnectFailureReleasesSlot(t *testing.T) {
	b := &fakeBrowser{newPageErr: browser.ErrConnect}
	svc := newTestService(t, b, Options{MaxPages: 1})

	_, err := svc.Transcript(context.Background(), "https://www.chess.com/game/1")
	assert.True(t, errors.Is(err, browser.ErrConnect))
	assert.Equal(t, 0, svc.Status().InFlight)

	// The slot must be reusable after the failure.
	_, err = svc.Transcript(context.Background(), "https://www.chess.com/game/2")
	assert.True(t, errors.Is(err, browser.ErrConnect))
}

func TestStatus(t *testing.T) {
	b := &fakeBrowser{page: &fakePage{html: gamePageHTML}, connected: true}
	svc := newTestService(t, b, Options{})

	st := svc.Status()
	assert.True(t, st.Connected)
	assert.Equal(t, 0, st.InFlight)
}

func TestNewServiceRejectsBadHostPattern(t *testing.T) {
	_, err := NewService(&fakeBrowser{}, Options{MaxPages: 1, AllowedHosts: []string{"[unterminated"}}, logging.NewWithWriter("scrape", io.Discard))
	assert.Error(t, err)
}
