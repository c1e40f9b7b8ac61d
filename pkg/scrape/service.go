// Package scrape orchestrates a single extraction request: admission
// through the concurrency gate, a workspace on the shared browser
// connection, the extraction chain, and notation assembly.
package scrape

import (
	"context"
	"errors"
	"fmt"
	"net/url"

	"github.com/gobwas/glob"

	"github.com/entrhq/gamescribe/pkg/browser"
	"github.com/entrhq/gamescribe/pkg/extract"
	"github.com/entrhq/gamescribe/pkg/logging"
)

var (
	// ErrInvalidURL marks a malformed or disallowed target URL. Never
	// retried; reported straight back to the caller.
	ErrInvalidURL = errors.New("invalid target url")

	// ErrNoMoves means the page loaded but no strategy produced tokens.
	// A not-found outcome, distinct from a fault.
	ErrNoMoves = errors.New("no move list found")
)

// Browser opens per-request pages on the shared connection. Implemented by
// *browser.Driver; tests substitute fakes.
type Browser interface {
	NewPage(ctx context.Context) (browser.Page, error)
	Connected() bool
}

// Options configures the scrape service.
type Options struct {
	// MaxPages bounds concurrent extractions (gate capacity).
	MaxPages int

	// MaxQueueDepth bounds callers waiting for a page slot; zero means
	// unbounded waiting.
	MaxQueueDepth int

	// AllowedHosts optionally restricts targets to hosts matching any
	// of these glob patterns.
	AllowedHosts []string

	// Chain overrides the default extraction chain.
	Chain *extract.Chain
}

// Service turns a game page URL into numbered-pair notation.
type Service struct {
	browser      Browser
	gate         *browser.Gate
	chain        *extract.Chain
	allowedHosts []glob.Glob
	log          *logging.Logger
}

// NewService builds a service around the given browser.
func NewService(b Browser, opts Options, log *logging.Logger) (*Service, error) {
	chain := opts.Chain
	if chain == nil {
		chain = extract.NewChain()
	}

	var allowed []glob.Glob
	for _, pattern := range opts.AllowedHosts {
		g, err := glob.Compile(pattern)
		if err != nil {
			return nil, fmt.Errorf("invalid allowed-host pattern %q: %w", pattern, err)
		}
		allowed = append(allowed, g)
	}

	return &Service{
		browser:      b,
		gate:         browser.NewGate(opts.MaxPages, opts.MaxQueueDepth),
		chain:        chain,
		allowedHosts: allowed,
		log:          log,
	}, nil
}

// Transcript renders the page at rawURL and returns its move list as
// numbered-pair notation. Slot release and workspace teardown are deferred,
// so cleanup happens on every exit path.
func (s *Service) Transcript(ctx context.Context, rawURL string) (string, error) {
	if err := s.validate(rawURL); err != nil {
		return "", err
	}

	slot, err := s.gate.Acquire(ctx)
	if err != nil {
		return "", err
	}
	defer slot.Release()

	page, err := s.browser.NewPage(ctx)
	if err != nil {
		return "", err
	}
	defer page.Close()

	s.log.Debugf("navigating to %s", rawURL)
	if err := page.Navigate(ctx, rawURL); err != nil {
		return "", err
	}

	page.WaitFor(s.chain.WaitHint())

	html, err := page.Content()
	if err != nil {
		return "", err
	}

	tokens, err := s.chain.Moves(html)
	if err != nil {
		return "", err
	}
	if len(tokens) == 0 {
		return "", fmt.Errorf("%w: %s", ErrNoMoves, rawURL)
	}

	s.log.Debugf("extracted %d half-moves from %s", len(tokens), rawURL)
	return extract.Assemble(tokens), nil
}

func (s *Service) validate(rawURL string) error {
	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return fmt.Errorf("%w: %q", ErrInvalidURL, rawURL)
	}

	if len(s.allowedHosts) == 0 {
		return nil
	}
	host := u.Hostname()
	for _, g := range s.allowedHosts {
		if g.Match(host) {
			return nil
		}
	}
	return fmt.Errorf("%w: host %q not allowed", ErrInvalidURL, host)
}

// Status describes service health for the probe endpoint.
type Status struct {
	Connected bool `json:"connected"`
	InFlight  int  `json:"in_flight"`
}

// Status reports whether the browser connection is live and how many
// extractions are in flight.
func (s *Service) Status() Status {
	return Status{
		Connected: s.browser.Connected(),
		InFlight:  s.gate.InFlight(),
	}
}
