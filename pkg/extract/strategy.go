package extract

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Strategy describes one way to locate move tokens in a document.
//
// Rows selects the repeated move elements. When White and Black are set,
// each row is a move pair and the two selectors pick the per-player cells
// inside it; either cell may be absent (an unfinished pair). When they are
// empty, each Rows match is itself a single half-move token.
type Strategy struct {
	Name  string
	Rows  string
	White string
	Black string
}

// DefaultStrategies returns the built-in selector chain, ordered from the
// current markup of the supported sites to older fallback variants.
func DefaultStrategies() []Strategy {
	return []Strategy{
		{Name: "vertical-move-list", Rows: "wc-vertical-move-list .move", White: ".white.node", Black: ".black.node"},
		{Name: "classic-move-list", Rows: ".vertical-move-list-component .move", White: ".white", Black: ".black"},
		{Name: "simple-move-list", Rows: "wc-simple-move-list .move", White: ".white", Black: ".black"},
		{Name: "analysis-move-list", Rows: "l4x kwdb"},
	}
}

// Chain is an ordered set of strategies with a generic last resort.
type Chain struct {
	strategies []Strategy
}

// NewChain builds a chain from the given strategies, or the defaults when
// none are given.
func NewChain(strategies ...Strategy) *Chain {
	if len(strategies) == 0 {
		strategies = DefaultStrategies()
	}
	return &Chain{strategies: strategies}
}

// WaitHint returns a selector worth waiting for before extraction: the
// primary strategy's row selector.
func (c *Chain) WaitHint() string {
	if len(c.strategies) == 0 {
		return ""
	}
	return c.strategies[0].Rows
}

// Moves extracts an ordered half-move token sequence from serialized HTML.
// Strategies are tried in order and the first one yielding at least one
// token wins; only if all of them come up empty does the generic class scan
// run. An empty (nil) result means no move list was found, which callers
// treat as not-found rather than a fault.
func (c *Chain) Moves(rawHTML string) ([]string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(rawHTML))
	if err != nil {
		return nil, fmt.Errorf("parse document: %w", err)
	}

	for _, s := range c.strategies {
		if tokens := s.apply(doc); len(tokens) > 0 {
			return tokens, nil
		}
	}

	return scanMoveClasses(rawHTML)
}

func (s Strategy) apply(doc *goquery.Document) []string {
	rows := doc.Find(s.Rows)
	if rows.Length() == 0 {
		return nil
	}

	var tokens []string
	if s.White == "" {
		rows.Each(func(_ int, sel *goquery.Selection) {
			if t := strings.TrimSpace(sel.Text()); t != "" {
				tokens = append(tokens, t)
			}
		})
		return tokens
	}

	rows.Each(func(_ int, row *goquery.Selection) {
		if t := strings.TrimSpace(row.Find(s.White).First().Text()); t != "" {
			tokens = append(tokens, t)
		}
		if t := strings.TrimSpace(row.Find(s.Black).First().Text()); t != "" {
			tokens = append(tokens, t)
		}
	})
	return tokens
}
