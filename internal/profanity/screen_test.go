package profanity

import (
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScreen_Evaluate_CleanText(t *testing.T) {
	s := New()

	res := s.Evaluate("great product")

	assert.False(t, res.IsFlagged)
	assert.Equal(t, "great product", res.FilteredText)
	assert.Empty(t, res.FlaggedTerms)
}

func TestScreen_Evaluate_EmptyInput(t *testing.T) {
	s := New()

	for _, text := range []string{"", "   ", "\n\t"} {
		res := s.Evaluate(text)
		assert.False(t, res.IsFlagged)
		assert.Equal(t, text, res.FilteredText)
		assert.NotNil(t, res.FlaggedTerms)
		assert.Empty(t, res.FlaggedTerms)
	}
}

func TestScreen_Evaluate_CaseInsensitiveAndPunctuation(t *testing.T) {
	s := New()

	res := s.Evaluate("This is SHIT!! honestly")

	require.True(t, res.IsFlagged)
	assert.Equal(t, "This is ****!! honestly", res.FilteredText)
	assert.Equal(t, []string{"shit"}, res.FlaggedTerms)
}

func TestScreen_Evaluate_Obfuscations(t *testing.T) {
	s := New()

	tests := []struct {
		text string
		term string
	}{
		{"f*ck", "fck"},
		{"sh1t", "sh1t"},
		{"(b1tch)", "b1tch"},
		{"ＳＨＩＴ", "shit"},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			res := s.Evaluate(tt.text)
			assert.True(t, res.IsFlagged)
			assert.Contains(t, res.FlaggedTerms, tt.term)
		})
	}
}

func TestScreen_Evaluate_TokenBoundaries(t *testing.T) {
	s := New()

	for _, text := range []string{"a classic assessment", "Scunthorpe", "passion", "shitake-free"} {
		res := s.Evaluate(text)
		assert.False(t, res.IsFlagged, text)
		assert.Equal(t, text, res.FilteredText)
	}
}

func TestScreen_Evaluate_HindiTerms(t *testing.T) {
	s := New()

	res := s.Evaluate("bakwas product, Chutiya seller. कमीना!")

	require.True(t, res.IsFlagged)
	assert.Equal(t, []string{"chutiya", "कमीना"}, res.FlaggedTerms)
	assert.Equal(t, "bakwas product, ******* seller. *****!", res.FilteredText)
}

func TestScreen_Evaluate_DeduplicatesTerms(t *testing.T) {
	s := New()

	res := s.Evaluate("crap crap CRAP and more crap.")

	assert.Equal(t, []string{"crap"}, res.FlaggedTerms)
	assert.Equal(t, "**** **** **** and more ****.", res.FilteredText)
}

func TestScreen_Evaluate_PreservesLengthAndWhitespace(t *testing.T) {
	s := New()
	text := "  damn\tthis   bastard\nthing  "

	res := s.Evaluate(text)

	assert.Equal(t, utf8.RuneCountInString(text), utf8.RuneCountInString(res.FilteredText))
	assert.Equal(t, "  ****\tthis   *******\nthing  ", res.FilteredText)
}

func TestScreen_Evaluate_RedactionIsIdempotent(t *testing.T) {
	s := New()

	for _, text := range []string{
		"what the f*ck is this shit",
		"gandu seller, total bakwas",
		"wtf!!! a55hole",
	} {
		first := s.Evaluate(text)
		require.True(t, first.IsFlagged, text)

		second := s.Evaluate(first.FilteredText)
		assert.False(t, second.IsFlagged, first.FilteredText)
		assert.Equal(t, first.FilteredText, second.FilteredText)
	}
}

func TestScreen_New_ExtraTerms(t *testing.T) {
	base := New()
	s := New("Frak", "  ")

	assert.Equal(t, base.Size()+1, s.Size())

	res := s.Evaluate("what the frak")
	assert.True(t, res.IsFlagged)
	assert.Equal(t, []string{"frak"}, res.FlaggedTerms)
}

func TestScreen_Evaluate_UnicodeSpaceSeparators(t *testing.T) {
	s := New()

	tests := []struct {
		name string
		text string
		want string
	}{
		{"no-break space", "nice\u00a0shit", "nice\u00a0****"},
		{"em space", "nice\u2003shit", "nice\u2003****"},
		{"ideographic space", "nice\u3000shit", "nice\u3000****"},
		{"next line", "crap\u0085here", "****\u0085here"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := s.Evaluate(tt.text)
			require.True(t, res.IsFlagged)
			assert.Equal(t, tt.want, res.FilteredText)
			assert.Equal(t, utf8.RuneCountInString(tt.text), utf8.RuneCountInString(res.FilteredText))
		})
	}
}
