package ngram

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
	"golang.org/x/text/unicode/norm"
	"golang.org/x/text/width"
)

var (
	urlPattern  = regexp.MustCompile(`https?://[-_.?&~;+=/#0-9A-Za-z]{1,1000}`)
	mailPattern = regexp.MustCompile(`[-_.0-9A-Za-z]{1,64}@[-_0-9A-Za-z]{1,255}[-_.0-9A-Za-z]{1,255}`)
)

// StripHTML returns the text content of an HTML fragment. Script and style
// bodies are dropped and every tag becomes a space.
func StripHTML(s string) string {
	z := html.NewTokenizer(strings.NewReader(s))
	var b strings.Builder
	skip := 0
	for {
		switch z.Next() {
		case html.ErrorToken:
			return b.String()
		case html.StartTagToken:
			name, _ := z.TagName()
			if isRawTextTag(name) {
				skip++
			}
			b.WriteByte(' ')
		case html.EndTagToken:
			name, _ := z.TagName()
			if isRawTextTag(name) && skip > 0 {
				skip--
			}
			b.WriteByte(' ')
		case html.SelfClosingTagToken:
			b.WriteByte(' ')
		case html.TextToken:
			if skip == 0 {
				b.Write(z.Text())
			}
		}
	}
}

func isRawTextTag(name []byte) bool {
	switch atom.Lookup(name) {
	case atom.Script, atom.Style, atom.Noscript:
		return true
	}
	return false
}

// removeLinks blanks out URLs and e-mail addresses, which carry no language
// signal and would otherwise dominate short texts with Latin n-grams.
func removeLinks(s string) string {
	s = urlPattern.ReplaceAllString(s, " ")
	return mailPattern.ReplaceAllString(s, " ")
}

// canonicalize composes combining sequences (NFC) and folds width variants:
// full-width Latin becomes ASCII, half-width Katakana becomes full-width.
func canonicalize(s string) string {
	return width.Fold.String(norm.NFC.String(s))
}

// collapseSpaces maps every whitespace run to a single space and keeps at
// most limit runes. A limit <= 0 means no limit.
func collapseSpaces(s string, limit int) string {
	var b strings.Builder
	b.Grow(len(s))
	n := 0
	prevSpace := false
	for _, r := range s {
		if limit > 0 && n >= limit {
			break
		}
		if unicode.IsSpace(r) {
			if prevSpace {
				continue
			}
			r = ' '
			prevSpace = true
		} else {
			prevSpace = false
		}
		b.WriteRune(r)
		n++
	}
	return b.String()
}

// dropLatinIfMinor removes Latin letters when they are less than half as
// frequent as non-Latin characters, so embedded English words do not drown
// a short text in another script.
func dropLatinIfMinor(s string) string {
	latin, nonLatin := 0, 0
	for _, r := range s {
		switch {
		case isLatinLetter(r):
			latin++
		case isNonLatin(r):
			nonLatin++
		}
	}
	if latin*2 >= nonLatin {
		return s
	}

	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if !isLatinLetter(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}
