// Package similarity implements the order-insensitive string similarity used
// for title matching and duplicate detection.
package similarity

import (
	"sort"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// TokenSortRatio computes a word-order-insensitive similarity ratio in
// [0, 1]. Both strings are normalized (lowercased, diacritics stripped),
// split into alphanumeric tokens, sorted, and rejoined with single spaces;
// the result is the normalized insert/delete similarity of the two joined
// strings. Two empty inputs are fully similar.
func TokenSortRatio(a, b string) float64 {
	return indelRatio(sortedTokenJoin(a), sortedTokenJoin(b))
}

func sortedTokenJoin(s string) string {
	tokens := Tokens(s)
	sort.Strings(tokens)
	return strings.Join(tokens, " ")
}

// Tokens splits s into lowercased alphanumeric runs with diacritics removed.
func Tokens(s string) []string {
	return strings.FieldsFunc(Normalize(s), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

// Normalize lowercases s and strips combining diacritical marks, so that
// provider spellings like "Muller" and "Müller" compare equal.
func Normalize(s string) string {
	decomposed := norm.NFD.String(s)
	var b strings.Builder
	b.Grow(len(decomposed))
	for _, r := range decomposed {
		if unicode.Is(unicode.Mn, r) {
			continue
		}
		b.WriteRune(unicode.ToLower(r))
	}
	return b.String()
}

// indelRatio returns (len(a)+len(b)-dist) / (len(a)+len(b)), where dist is
// the minimum number of single-rune insertions and deletions turning a into
// b.
func indelRatio(a, b string) float64 {
	ra := []rune(a)
	rb := []rune(b)
	total := len(ra) + len(rb)
	if total == 0 {
		return 1.0
	}
	dist := total - 2*lcsLength(ra, rb)
	return float64(total-dist) / float64(total)
}

// lcsLength computes the longest-common-subsequence length with a two-row
// dynamic program.
func lcsLength(a, b []rune) int {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	prev := make([]int, len(b)+1)
	curr := make([]int, len(b)+1)
	for i := 1; i <= len(a); i++ {
		for j := 1; j <= len(b); j++ {
			switch {
			case a[i-1] == b[j-1]:
				curr[j] = prev[j-1] + 1
			case prev[j] >= curr[j-1]:
				curr[j] = prev[j]
			default:
				curr[j] = curr[j-1]
			}
		}
		prev, curr = curr, prev
	}
	return prev[len(b)]
}
