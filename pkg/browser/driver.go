package browser

import (
	"context"
	"fmt"
	"io"

	"github.com/playwright-community/playwright-go"

	"github.com/entrhq/gamescribe/pkg/logging"
)

// Options configures the driver: where to dial, how persistently, and how
// each per-request workspace behaves.
type Options struct {
	// Endpoint is the remote browser-control URL including credentials.
	Endpoint string

	Retry     RetryPolicy
	Workspace WorkspaceOptions
}

// Driver owns the playwright runtime and the shared connection, and opens
// per-request workspaces on it. It is the only component that talks to the
// remote control endpoint.
type Driver struct {
	log       *logging.Logger
	pw        *playwright.Playwright
	connector *Connector
	workspace WorkspaceOptions
}

// NewDriver starts the playwright runtime and prepares (but does not yet
// dial) the connection to the remote endpoint. The browsers themselves run
// remotely, so only the driver is installed locally.
func NewDriver(opts Options, log *logging.Logger) (*Driver, error) {
	runOpts := &playwright.RunOptions{
		SkipInstallBrowsers: true,
		Verbose:             false,
		Stdout:              io.Discard,
		Stderr:              io.Discard,
	}

	if err := playwright.Install(runOpts); err != nil {
		return nil, fmt.Errorf("install playwright driver: %w", err)
	}
	pw, err := playwright.Run(runOpts)
	if err != nil {
		return nil, fmt.Errorf("start playwright driver: %w", err)
	}

	dial := func(ctx context.Context) (Browser, error) {
		return pw.Chromium.ConnectOverCDP(opts.Endpoint)
	}

	return &Driver{
		log:       log,
		pw:        pw,
		connector: NewConnector(dial, opts.Retry, log),
		workspace: opts.Workspace,
	}, nil
}

// NewPage ensures the shared connection is live and opens a fresh isolated
// workspace on it.
func (d *Driver) NewPage(ctx context.Context) (Page, error) {
	conn, err := d.connector.Ensure(ctx)
	if err != nil {
		return nil, err
	}
	return newWorkspace(conn, d.workspace, d.log)
}

// Connected reports whether the shared connection is currently live.
func (d *Driver) Connected() bool {
	return d.connector.Connected()
}

// Close tears down the shared connection and stops the playwright runtime.
func (d *Driver) Close() {
	d.connector.Close()
	if err := d.pw.Stop(); err != nil {
		d.log.Debugf("playwright stop: %v", err)
	}
}
