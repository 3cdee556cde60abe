package util

import (
	"strings"
	"unicode"
)

const (
	LanguageFrench  = "french"
	LanguageEnglish = "english"
	LanguageUnknown = "unknown"
)

var stopWords = map[string][]string{
	LanguageFrench: {
		"le", "la", "les", "des", "du", "de", "et", "en", "un", "une", "est", "pour",
		"dans", "avec", "sur", "au", "aux", "par", "que", "qui", "mon", "mes", "je",
		"expérience", "compétences", "formation", "langues", "stage",
	},
	LanguageEnglish: {
		"the", "and", "of", "to", "in", "for", "with", "on", "at", "by", "is", "a",
		"an", "my", "i", "as", "from", "experience", "skills", "education",
		"languages", "internship",
	},
}

// l'expérience, d'une, qu'il
var frenchElisions = map[string]bool{
	"l": true, "d": true, "j": true, "qu": true, "n": true, "s": true, "c": true, "m": true, "t": true,
}

var stopWordIndex = func() map[string]string {
	idx := make(map[string]string)
	for lang, words := range stopWords {
		for _, w := range words {
			idx[w] = lang
		}
	}
	return idx
}()

// DetectLanguage guesses whether a CV is written in French or English by
// counting stop words. Short or undecided text is reported as unknown.
func DetectLanguage(text string) string {
	text = strings.TrimSpace(text)
	if len([]rune(text)) < 10 {
		return LanguageUnknown
	}

	votes := make(map[string]int, len(stopWords))
	words := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && r != '\''
	})
	for _, w := range words {
		if i := strings.IndexByte(w, '\''); i != -1 {
			if frenchElisions[w[:i]] {
				votes[LanguageFrench]++
			}
			w = w[i+1:]
		}
		if lang, ok := stopWordIndex[w]; ok {
			votes[lang]++
		}
	}

	fr, en := votes[LanguageFrench], votes[LanguageEnglish]
	switch {
	case fr == 0 && en == 0:
		return LanguageUnknown
	case fr > en:
		return LanguageFrench
	case en > fr:
		return LanguageEnglish
	default:
		return LanguageUnknown
	}
}
