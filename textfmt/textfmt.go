// Package textfmt contains the text helpers used to derive talk titles,
// descriptions and hashtags.
package textfmt

import (
	"net/url"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Ellipsis is appended to text that was shortened by TextToLength.
const Ellipsis = " ..."

// StripAccents decomposes s and drops all combining marks, e.g. "Mische é"
// becomes "Mische e".
func StripAccents(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)))
	out, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return out
}

// Unique returns the items in first-seen order with exact duplicates
// removed.
func Unique(items []string) []string {
	seen := make(map[string]struct{}, len(items))
	out := make([]string, 0, len(items))
	for _, item := range items {
		if _, ok := seen[item]; ok {
			continue
		}
		seen[item] = struct{}{}
		out = append(out, item)
	}
	return out
}

// EnsureHTTPS replaces the scheme of rawURL with https. Everything else is
// left as it is. Input that cannot be parsed is returned unchanged.
func EnsureHTTPS(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return rawURL
	}
	u.Scheme = "https"
	return u.String()
}

// ToHashtag turns a label like "general track" into "#GeneralTrack". Every
// cased letter that follows an uncased character is title-cased, the rest
// lower-cased; whitespace and anything not alphanumeric is dropped. A nil
// label has no hashtag.
func ToHashtag(label *string) string {
	if label == nil {
		return ""
	}
	var b strings.Builder
	b.WriteByte('#')
	prevCased := false
	for _, r := range *label {
		cased := unicode.IsUpper(r) || unicode.IsLower(r) || unicode.IsTitle(r)
		if cased {
			if prevCased {
				r = unicode.ToLower(r)
			} else {
				r = unicode.ToTitle(r)
			}
		}
		prevCased = cased
		if unicode.IsLetter(r) || unicode.IsNumber(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// TextToLength shortens text so it can be followed by postLength characters
// of other content. Lengths are counted in characters.
//
// Text that is at most maxLength+postLength characters long is returned
// unchanged. Longer text is cut at the last space before
// maxLength-postLength-len(Ellipsis), or exactly there if it contains no
// space, and Ellipsis is appended:
//
//	TextToLength("A very long title. Which must be shortened", 25, 0)  // "A very long title. ..."
//	TextToLength("A very long title. Which must be shortened", 25, 10) // "A very ..."
func TextToLength(text string, maxLength, postLength int) string {
	chars := []rune(text)
	if len(chars) <= maxLength+postLength {
		return text
	}
	allowed := maxLength - postLength - utf8.RuneCountInString(Ellipsis)
	if allowed < 0 {
		allowed = 0
	}
	if allowed > len(chars) {
		allowed = len(chars)
	}
	cut := allowed
	for i := allowed - 1; i >= 0; i-- {
		if chars[i] == ' ' {
			cut = i
			break
		}
	}
	return string(chars[:cut]) + Ellipsis
}
