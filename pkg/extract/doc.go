// Package extract pulls board-game move lists out of rendered page HTML.
//
// Extraction is a chain of selector strategies tried in order: narrow,
// site-specific selectors first, then looser fallbacks, and finally a
// generic scan for any element whose class mentions "move". The page markup
// these selectors target is not contractually stable, so the chain trades
// precision for resilience.
//
// The package is pure: it operates on a serialized HTML snapshot and never
// talks to a browser, which keeps it testable with plain string fixtures.
package extract
