package profanity

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

// Placeholder replaces every word character of a matched token
const Placeholder = '*'

// Result is the outcome of screening a piece of text
type Result struct {
	FilteredText string
	IsFlagged    bool
	FlaggedTerms []string
}

// Screen classifies free text against a fixed English and Hindi denylist.
// A Screen is immutable after construction and safe for concurrent use.
type Screen struct {
	terms map[string]struct{}
}

// New builds a Screen from the built-in denylist plus any extra terms
func New(extra ...string) *Screen {
	s := &Screen{terms: make(map[string]struct{}, len(englishTerms)+len(hindiTerms)+len(extra))}

	for _, list := range [][]string{englishTerms, hindiTerms, extra} {
		for _, term := range list {
			if key := normalize(term); key != "" {
				s.terms[key] = struct{}{}
			}
		}
	}

	return s
}

// Size returns the number of distinct denylisted terms
func (s *Screen) Size() int {
	return len(s.terms)
}

// Evaluate screens text token by token. Matched tokens have their word characters
// replaced with Placeholder so the result keeps the same rune count and word count.
func (s *Screen) Evaluate(text string) Result {
	result := Result{FilteredText: text, FlaggedTerms: []string{}}
	if strings.TrimSpace(text) == "" {
		return result
	}

	seen := make(map[string]struct{})
	var b strings.Builder
	b.Grow(len(text))
	last := 0

	for _, loc := range tokenBounds(text) {
		token := text[loc[0]:loc[1]]
		key := normalize(token)
		if _, bad := s.terms[key]; !bad {
			continue
		}

		b.WriteString(text[last:loc[0]])
		b.WriteString(redact(token))
		last = loc[1]

		if _, dup := seen[key]; !dup {
			seen[key] = struct{}{}
			result.FlaggedTerms = append(result.FlaggedTerms, key)
		}
	}

	if len(result.FlaggedTerms) == 0 {
		return result
	}

	b.WriteString(text[last:])
	result.FilteredText = b.String()
	result.IsFlagged = true
	return result
}

// tokenBounds returns the byte offsets of every run of non-space runes.
// Any Unicode space separates tokens, including no-break and ideographic spaces.
func tokenBounds(text string) [][2]int {
	var bounds [][2]int
	start := -1
	for i, r := range text {
		if unicode.IsSpace(r) {
			if start >= 0 {
				bounds = append(bounds, [2]int{start, i})
				start = -1
			}
			continue
		}
		if start < 0 {
			start = i
		}
	}
	if start >= 0 {
		bounds = append(bounds, [2]int{start, len(text)})
	}
	return bounds
}

func isWordRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.IsMark(r)
}

// normalize folds case, applies compatibility normalization (so full-width and
// styled letters compare equal to plain ones) and drops non-word characters.
func normalize(token string) string {
	folded := cases.Fold().String(norm.NFKC.String(token))
	return strings.Map(func(r rune) rune {
		if isWordRune(r) {
			return r
		}
		return -1
	}, folded)
}

func redact(token string) string {
	return strings.Map(func(r rune) rune {
		if isWordRune(r) {
			return Placeholder
		}
		return r
	}, token)
}
