// Package langdetect guesses a text's language from its script. It backs
// voice selection when a synthesis request arrives without a language
// code; it is a heuristic, not a classifier.
package langdetect

import "unicode"

// Guess holds a detection result.
type Guess struct {
	Code       string
	Confidence float64
}

// Detect scores the text's runes per script and returns the dominant
// language code. Latin-script text cannot be told apart from the base
// language here, so it resolves to "en"; empty or unscored text yields
// an empty code.
func Detect(text string) Guess {
	var kana, han, hangul, latin, total int

	for _, r := range text {
		switch {
		case unicode.In(r, unicode.Hiragana, unicode.Katakana):
			kana++
		case unicode.In(r, unicode.Han):
			han++
		case unicode.In(r, unicode.Hangul):
			hangul++
		case unicode.IsLetter(r) && r < 0x250:
			latin++
		default:
			continue
		}
		total++
	}

	if total == 0 {
		return Guess{}
	}

	// Any kana marks Japanese even when Han dominates; Japanese prose
	// mixes both scripts.
	if kana > 0 {
		return Guess{Code: "ja", Confidence: ratio(kana+han, total)}
	}
	if han > 0 && han >= latin {
		return Guess{Code: "zh", Confidence: ratio(han, total)}
	}
	if hangul > 0 && hangul >= latin {
		return Guess{Code: "ko", Confidence: ratio(hangul, total)}
	}
	if latin > 0 {
		return Guess{Code: "en", Confidence: ratio(latin, total)}
	}
	return Guess{}
}

func ratio(part, total int) float64 {
	return float64(part) / float64(total)
}
