package extract

import (
	"fmt"
	"strings"
)

// Assemble renders an ordered list of half-move tokens as numbered-pair
// movetext. Tokens are consumed two at a time: the even-indexed token is the
// first player's move, the following token (if present) the second player's.
// Pair numbering starts at 1. An odd-length input produces a final pair with
// an empty second field.
//
// Assemble is pure and total; an empty input yields an empty string.
func Assemble(tokens []string) string {
	var b strings.Builder
	for i := 0; i < len(tokens); i += 2 {
		second := ""
		if i+1 < len(tokens) {
			second = tokens[i+1]
		}
		fmt.Fprintf(&b, "%d. %s %s ", i/2+1, tokens[i], second)
	}
	return strings.TrimSpace(b.String())
}
