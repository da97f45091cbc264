package scoring

import (
	"strings"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"

	"github.com/MikeSquared-Agency/Matchmaker/internal/profile"
)

// TokenSet is the normalised keyword bag of a profile. Membership is all that
// matters; order and multiplicity are discarded.
type TokenSet map[string]struct{}

var stopWords = map[string]struct{}{
	"and": {}, "or": {}, "the": {}, "to": {}, "of": {}, "for": {}, "with": {}, "in": {},
	"at": {}, "a": {}, "an": {}, "is": {}, "are": {}, "into": {}, "over": {}, "under": {},
}

var separators = strings.NewReplacer("/", " ", "-", " ")

// Tokens extracts the keyword set from mandate, product, thesis, focus and
// looking_for. Missing fields contribute nothing.
func Tokens(p profile.Profile) TokenSet {
	set := make(TokenSet)
	fields := make([]string, 0, 3+len(p.Focus)+len(p.LookingFor))
	fields = append(fields, p.Mandate, p.Product, p.Thesis)
	fields = append(fields, p.Focus...)
	fields = append(fields, p.LookingFor...)
	for _, f := range fields {
		addTokens(set, f)
	}
	return set
}

// addTokens folds compatibility forms (full-width letters, ligatures) with
// NFKC before lowercasing, so "ｃｕｓｔｏｄｙ" and "custody" are one token.
// Length is measured in characters, not bytes.
func addTokens(set TokenSet, text string) {
	if text == "" {
		return
	}
	text = separators.Replace(strings.ToLower(norm.NFKC.String(text)))
	for _, tok := range strings.Fields(text) {
		tok = strings.TrimRight(tok, ".,")
		if utf8.RuneCountInString(tok) <= 2 {
			continue
		}
		if _, stop := stopWords[tok]; stop {
			continue
		}
		set[tok] = struct{}{}
	}
}

// Len returns the number of distinct tokens.
func (s TokenSet) Len() int { return len(s) }

// Has reports whether tok is in the set.
func (s TokenSet) Has(tok string) bool {
	_, ok := s[tok]
	return ok
}

// Fit is the Jaccard similarity of two token sets. Either set being empty
// means there is no signal, so the fit is zero.
func Fit(a, b TokenSet) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0.0
	}
	small, large := a, b
	if len(small) > len(large) {
		small, large = large, small
	}
	shared := 0
	for tok := range small {
		if _, ok := large[tok]; ok {
			shared++
		}
	}
	union := len(a) + len(b) - shared
	return float64(shared) / float64(union)
}

// SharedTokens returns the number of tokens present in both sets.
func SharedTokens(a, b TokenSet) int {
	n := 0
	for tok := range a {
		if b.Has(tok) {
			n++
		}
	}
	return n
}
