package ngram

// Unicode block bounds used by the per-rune folding table.
const (
	basicLatinEnd        = 0x007F
	latin1End            = 0x00FF
	latinExtBStart       = 0x0180
	latinExtBEnd         = 0x024F
	arabicStart          = 0x0600
	arabicEnd            = 0x06FF
	latinExtAddStart     = 0x1E00
	latinExtAddEnd       = 0x1EFF
	generalPunctStart    = 0x2000
	generalPunctEnd      = 0x206F
	hiraganaStart        = 0x3040
	hiraganaEnd          = 0x309F
	katakanaStart        = 0x30A0
	katakanaEnd          = 0x30FF
	bopomofoStart        = 0x3100
	bopomofoEnd          = 0x312F
	bopomofoExtStart     = 0x31A0
	bopomofoExtEnd       = 0x31BF
	cjkStart             = 0x4E00
	cjkEnd               = 0x9FFF
	hangulSyllablesStart = 0xAC00
	hangulSyllablesEnd   = 0xD7AF
	combiningMarksStart  = 0x0300
)

// Canonical representatives for scripts whose individual characters are too
// sparse to be useful on their own.
const (
	hiraganaRep   = '\u3042'
	katakanaRep   = '\u30a2'
	bopomofoRep   = '\u3105'
	hangulRep     = '\uac00'
	vietnameseRep = '\u1ec3'
)

// foldRune maps r to the character used in profiles. Everything that is not
// a letter of interest becomes a space, which acts as the word boundary.
func foldRune(r rune, cjk map[rune]rune) rune {
	switch {
	case r <= basicLatinEnd:
		if r < 'A' || (r > 'Z' && r < 'a') || r > 'z' {
			return ' '
		}
	case r <= latin1End:
		switch r {
		case '\u00a0', '\u00ab', '\u00b0', '\u00bb':
			return ' '
		}
	case r >= latinExtBStart && r <= latinExtBEnd:
		// Romanian comma-below letters share profiles with the cedilla forms.
		switch r {
		case '\u0219':
			return '\u015f'
		case '\u021b':
			return '\u0163'
		}
	case r >= arabicStart && r <= arabicEnd:
		if r == '\u06cc' { // Farsi yeh
			return '\u064a'
		}
	case r >= latinExtAddStart && r <= latinExtAddEnd:
		if r >= '\u1ea0' {
			return vietnameseRep
		}
	case r >= generalPunctStart && r <= generalPunctEnd:
		return ' '
	case r >= hiraganaStart && r <= hiraganaEnd:
		return hiraganaRep
	case r >= katakanaStart && r <= katakanaEnd:
		return katakanaRep
	case (r >= bopomofoStart && r <= bopomofoEnd) || (r >= bopomofoExtStart && r <= bopomofoExtEnd):
		return bopomofoRep
	case r >= cjkStart && r <= cjkEnd:
		if rep, ok := cjk[r]; ok {
			return rep
		}
	case r >= hangulSyllablesStart && r <= hangulSyllablesEnd:
		return hangulRep
	}
	return r
}

// isLatinLetter uses the historical 'A'..'z' range, which also covers the
// six ASCII symbols between the two cases.
func isLatinLetter(r rune) bool {
	return r >= 'A' && r <= 'z'
}

func isNonLatin(r rune) bool {
	return r >= combiningMarksStart && !(r >= latinExtAddStart && r <= latinExtAddEnd)
}

// cjkTable turns ideograph classes into a lookup from member to the class
// representative, which is the first rune of each class.
func cjkTable(classes [][]rune) map[rune]rune {
	if len(classes) == 0 {
		return nil
	}
	table := make(map[rune]rune)
	for _, class := range classes {
		if len(class) == 0 {
			continue
		}
		rep := class[0]
		for _, r := range class {
			table[r] = rep
		}
	}
	return table
}
