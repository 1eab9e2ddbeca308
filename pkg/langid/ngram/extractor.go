// Package ngram turns raw text into the character n-gram sequence that
// drives classification.
//
// Text passes through, in order: optional HTML stripping, URL and e-mail
// removal, NFC composition and width folding, whitespace collapsing with a
// length cap, and Latin removal when Latin is a minority script. Each rune is
// then folded (punctuation to space, script ranges to a representative) and
// a window of up to three runes slides over the result.
//
// The space is the word boundary: the window restarts after every space, so
// grams like " th" and "he " mark word edges but no gram spans two words.
// This convention must match the one the profiles were built with.
package ngram

import "unicode"

// MaxN is the longest n-gram emitted.
const MaxN = 3

// DefaultMaxTextLength caps the number of runes examined per text.
const DefaultMaxTextLength = 10000

// Extractor normalizes text and emits n-grams. It is immutable after
// construction and safe for concurrent use.
type Extractor struct {
	maxTextLength int
	stripHTML     bool
	cjk           map[rune]rune
}

// Option configures an Extractor.
type Option func(*Extractor)

// WithMaxTextLength caps the runes examined; n <= 0 disables the cap.
func WithMaxTextLength(n int) Option {
	return func(e *Extractor) {
		e.maxTextLength = n
	}
}

// WithHTML enables HTML markup stripping before normalization.
func WithHTML(enabled bool) Option {
	return func(e *Extractor) {
		e.stripHTML = enabled
	}
}

// WithCJKClasses installs ideograph classes: every rune of a class is
// folded to the class's first rune. The classes must be the ones the CJK
// profiles were built with.
func WithCJKClasses(classes [][]rune) Option {
	return func(e *Extractor) {
		e.cjk = cjkTable(classes)
	}
}

// New creates an extractor.
func New(opts ...Option) *Extractor {
	e := &Extractor{maxTextLength: DefaultMaxTextLength}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Normalize applies the text-level passes and returns the cleaned text.
func (e *Extractor) Normalize(text string) string {
	if e.stripHTML {
		text = StripHTML(text)
	}
	text = removeLinks(text)
	text = canonicalize(text)
	text = collapseSpaces(text, e.maxTextLength)
	return dropLatinIfMinor(text)
}

// Extract returns the n-grams of text in left-to-right order, with
// repetition.
func (e *Extractor) Extract(text string) []string {
	return e.Grams(e.Normalize(text))
}

// Grams slides the n-gram window over already normalized text.
func (e *Extractor) Grams(text string) []string {
	var out []string
	win := window{buf: make([]rune, 1, MaxN+1)}
	win.buf[0] = ' '

	for _, r := range text {
		if !win.add(foldRune(r, e.cjk)) {
			continue
		}
		for n := 1; n <= MaxN && n <= len(win.buf); n++ {
			gram := win.buf[len(win.buf)-n:]
			if n == 1 && gram[0] == ' ' {
				continue
			}
			out = append(out, string(gram))
		}
	}
	return out
}

// window holds the last MaxN folded runes of the current word, starting
// with the boundary space.
type window struct {
	buf     []rune
	capital bool
}

// add pushes r and reports whether grams should be emitted for this
// position. Runs of upper-case letters (acronyms) emit nothing.
func (w *window) add(r rune) bool {
	last := w.buf[len(w.buf)-1]
	if last == ' ' {
		w.buf = append(w.buf[:0], ' ')
		w.capital = false
		if r == ' ' {
			return false
		}
	} else if len(w.buf) >= MaxN {
		copy(w.buf, w.buf[1:])
		w.buf = w.buf[:len(w.buf)-1]
	}
	w.buf = append(w.buf, r)

	if unicode.IsUpper(r) {
		if unicode.IsUpper(last) {
			w.capital = true
		}
	} else {
		w.capital = false
	}
	return !w.capital
}
