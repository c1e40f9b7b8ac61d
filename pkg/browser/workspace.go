package browser

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/playwright-community/playwright-go"

	"github.com/entrhq/gamescribe/pkg/logging"
)

// Page is the per-request view of a browsing context, as consumed by the
// scrape service. The concrete implementation is Workspace.
type Page interface {
	Navigate(ctx context.Context, url string) error
	WaitFor(selector string)
	Content() (string, error)
	Close()
}

// WorkspaceOptions configures a per-request browsing context.
type WorkspaceOptions struct {
	// UserAgent is the client identity string for the context.
	UserAgent string

	// NavTimeout is the hard deadline for one navigation attempt.
	NavTimeout time.Duration

	// SelectorTimeout bounds the best-effort WaitFor.
	SelectorTimeout time.Duration

	// SettleDelay is the fixed pause after navigation that lets
	// client-side rendering finish populating the move list.
	SettleDelay time.Duration

	// Resources filters intercepted requests; nil means the default
	// policy (block images, stylesheets, fonts, media).
	Resources ResourcePolicy
}

// Workspace is one isolated browsing context bound to the shared connection
// for its whole lifetime. It is created per request and destroyed at the
// end of that request regardless of outcome.
type Workspace struct {
	bctx playwright.BrowserContext
	page playwright.Page
	opts WorkspaceOptions
	log  *logging.Logger

	closeOnce sync.Once
}

func newWorkspace(conn *Connection, opts WorkspaceOptions, log *logging.Logger) (*Workspace, error) {
	ctxOpts := playwright.BrowserNewContextOptions{}
	if opts.UserAgent != "" {
		ctxOpts.UserAgent = playwright.String(opts.UserAgent)
	}
	bctx, err := conn.Browser.NewContext(ctxOpts)
	if err != nil {
		return nil, fmt.Errorf("create browsing context: %w", err)
	}

	page, err := bctx.NewPage()
	if err != nil {
		_ = bctx.Close()
		return nil, fmt.Errorf("create page: %w", err)
	}

	policy := opts.Resources
	if policy == nil {
		policy = DefaultResourcePolicy()
	}
	err = page.Route("**/*", func(route playwright.Route) {
		if policy.Allows(route.Request().ResourceType()) {
			_ = route.Continue()
		} else {
			_ = route.Abort()
		}
	})
	if err != nil {
		_ = page.Close()
		_ = bctx.Close()
		return nil, fmt.Errorf("install resource filter: %w", err)
	}

	return &Workspace{bctx: bctx, page: page, opts: opts, log: log}, nil
}

// Navigate loads the target URL. The first attempt waits for network idle;
// if that fails (slow third-party requests routinely keep the network busy
// past the deadline) one retry waits only for dom-content-loaded before
// surfacing ErrNavigate. After a successful load a fixed settle delay gives
// client-side rendering time to populate the move list.
func (w *Workspace) Navigate(ctx context.Context, url string) error {
	timeout := playwright.Float(float64(w.opts.NavTimeout.Milliseconds()))

	_, err := w.page.Goto(url, playwright.PageGotoOptions{
		WaitUntil: playwright.WaitUntilStateNetworkidle,
		Timeout:   timeout,
	})
	if err != nil {
		w.log.Warnf("network-idle navigation failed for %s, retrying with dom-content-loaded: %v", url, err)
		_, err = w.page.Goto(url, playwright.PageGotoOptions{
			WaitUntil: playwright.WaitUntilStateDomcontentloaded,
			Timeout:   timeout,
		})
		if err != nil {
			return fmt.Errorf("%w: %v", ErrNavigate, err)
		}
	}

	if w.opts.SettleDelay > 0 {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(w.opts.SettleDelay):
		}
	}
	return nil
}

// WaitFor waits, best effort, for the given selector to appear. A timeout
// is expected on pages without the primary markup and is only logged; the
// extraction chain has its own fallbacks.
func (w *Workspace) WaitFor(selector string) {
	if selector == "" {
		return
	}
	_, err := w.page.WaitForSelector(selector, playwright.PageWaitForSelectorOptions{
		State:   playwright.WaitForSelectorStateAttached,
		Timeout: playwright.Float(float64(w.opts.SelectorTimeout.Milliseconds())),
	})
	if err != nil {
		w.log.Debugf("selector %q did not appear: %v", selector, err)
	}
}

// Content returns the serialized HTML of the current page.
func (w *Workspace) Content() (string, error) {
	html, err := w.page.Content()
	if err != nil {
		return "", fmt.Errorf("read page content: %w", err)
	}
	return html, nil
}

// Close releases the browsing context. Idempotent; errors are logged and
// swallowed since the request outcome is already determined by close time.
func (w *Workspace) Close() {
	w.closeOnce.Do(func() {
		if err := w.page.Close(); err != nil {
			w.log.Debugf("page close: %v", err)
		}
		if err := w.bctx.Close(); err != nil {
			w.log.Debugf("browsing context close: %v", err)
		}
	})
}
