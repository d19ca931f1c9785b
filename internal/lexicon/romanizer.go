package lexicon

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/mozillazg/go-pinyin"
)

// Romanizer turns Han text into tone-numbered syllables. Dictionary readings
// win over the per-character conversion because they resolve heteronyms
// (for example 银行 yin2 hang2 rather than yin2 xing2).
type Romanizer struct {
	dict *Dictionary
	args pinyin.Args
}

// NewRomanizer creates a romanizer; dict may be nil
func NewRomanizer(dict *Dictionary) *Romanizer {
	args := pinyin.NewArgs()
	args.Style = pinyin.Tone3
	args.Fallback = func(r rune, a pinyin.Args) []string {
		return []string{string(r)}
	}
	return &Romanizer{dict: dict, args: args}
}

// Romanize returns one syllable per character of text
func (r *Romanizer) Romanize(text string) []string {
	if e, ok := r.dict.Lookup(text); ok {
		syllables := strings.Fields(e.Pinyin)
		if len(syllables) == utf8.RuneCountInString(text) {
			return syllables
		}
	}

	syllables := pinyin.LazyPinyin(text, r.args)
	for i, s := range syllables {
		syllables[i] = markNeutral(s)
	}
	return syllables
}

// Pinyin returns the space separated reading of text
func (r *Romanizer) Pinyin(text string) string {
	return strings.Join(r.Romanize(text), " ")
}

// markNeutral appends the neutral tone digit to a letter-only syllable
func markNeutral(s string) string {
	if s == "" {
		return s
	}
	for _, c := range s {
		if !unicode.IsLetter(c) || c > unicode.MaxASCII {
			return s
		}
	}
	return s + "5"
}
