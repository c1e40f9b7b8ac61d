package browser

import "errors"

var (
	// ErrConnect means the remote browser-control endpoint could not be
	// reached after the full retry budget.
	ErrConnect = errors.New("browser connection failed")

	// ErrNavigate means the target page failed to load under both the
	// network-idle and the looser dom-content-loaded criteria.
	ErrNavigate = errors.New("page navigation failed")

	// ErrBusy means the gate's wait queue is at capacity and the request
	// was rejected rather than queued.
	ErrBusy = errors.New("extraction queue full")
)
