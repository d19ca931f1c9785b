package quiz

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Outcome is the verdict on a submitted answer
type Outcome int

const (
	Wrong Outcome = iota
	WrongTone
	Correct
)

func (o Outcome) String() string {
	switch o {
	case Correct:
		return "correct"
	case WrongTone:
		return "wrong_tone"
	default:
		return "wrong"
	}
}

func (o Outcome) MarshalText() ([]byte, error) {
	return []byte(o.String()), nil
}

// Romanizer converts Han text into tone-numbered pinyin syllables, one per character
type Romanizer interface {
	Romanize(text string) []string
}

var (
	punctuation = regexp.MustCompile("[.,/#!'$%^&*;:{}=\\-_`~()]")
	multiSpace  = regexp.MustCompile(` {2,}`)
	digits      = regexp.MustCompile(`[0-9]`)
)

// numeralSyllables maps the numerals a recognizer returns in place of the
// spoken syllable.
var numeralSyllables = map[string]string{
	"0":  "ling3",
	"1":  "yi1",
	"2":  "er4",
	"3":  "san1",
	"4":  "si4",
	"5":  "wu3",
	"6":  "liu4",
	"7":  "qi1",
	"8":  "ba1",
	"9":  "jiu3",
	"10": "shi2",
}

// Normalize lowercases text, strips punctuation and collapses repeated spaces
func Normalize(text string) string {
	s := strings.ToLower(text)
	s = punctuation.ReplaceAllString(s, "")
	return multiSpace.ReplaceAllString(s, " ")
}

// normalizeFor applies the category specific comparison form. Neutral tone
// markers and syllable spacing are ignored for pronunciation.
func normalizeFor(text string, c Category) string {
	s := strings.TrimSpace(Normalize(text))
	if c == Pronunciation {
		s = strings.ReplaceAll(s, " ", "")
		s = strings.ReplaceAll(s, "5", "")
	}
	return s
}

// CheckTextAnswer reports whether typed input matches the canonical answer
func CheckTextAnswer(input string, c Category, canonical Answer) bool {
	got := normalizeFor(input, c)
	for _, want := range canonical.values {
		if got == normalizeFor(want, c) {
			return true
		}
	}
	return false
}

// TextFeedback grades typed input. WrongTone is reported when a pronunciation
// answer has the right syllables with the wrong tones; it is never a pass.
func TextFeedback(input string, c Category, canonical Answer) Outcome {
	if CheckTextAnswer(input, c, canonical) {
		return Correct
	}
	if c == Pronunciation && ToneChecker(normalizeFor(input, c), normalizeFor(canonical.Value(), c)) {
		return WrongTone
	}
	return Wrong
}

// ToneChecker compares input and answer with every tone digit removed
func ToneChecker(input, answer string) bool {
	return stripDigits(input) == stripDigits(answer)
}

func stripDigits(s string) string {
	return digits.ReplaceAllString(s, "")
}

// MapSpeechTranscript rewrites a pronunciation transcript as tone-numbered
// syllables. Han characters are romanized, bare numerals 0-10 are replaced
// with their syllable, punctuation is dropped and anything else is
// lowercased. Other categories are returned unchanged.
func MapSpeechTranscript(transcript string, c Category, r Romanizer) string {
	if c != Pronunciation {
		return transcript
	}
	var syllables []string
	for _, field := range strings.Fields(transcript) {
		for _, run := range splitHanRuns(field) {
			switch {
			case isHan(run) && r != nil:
				syllables = append(syllables, r.Romanize(run)...)
			case isHan(run):
				syllables = append(syllables, run)
			default:
				run = dropPunct(run)
				if run == "" {
					continue
				}
				if syl, ok := numeralSyllables[run]; ok {
					syllables = append(syllables, syl)
				} else {
					syllables = append(syllables, strings.ToLower(run))
				}
			}
		}
	}
	return strings.Join(syllables, " ")
}

// splitHanRuns cuts s wherever it switches between Han and non-Han runes
func splitHanRuns(s string) []string {
	var runs []string
	var cur []rune
	curHan := false
	for _, r := range s {
		han := unicode.Is(unicode.Han, r)
		if len(cur) > 0 && han != curHan {
			runs = append(runs, string(cur))
			cur = cur[:0]
		}
		cur = append(cur, r)
		curHan = han
	}
	if len(cur) > 0 {
		runs = append(runs, string(cur))
	}
	return runs
}

func dropPunct(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsPunct(r) {
			return -1
		}
		return r
	}, s)
}

func isHan(s string) bool {
	r, _ := utf8.DecodeRuneInString(s)
	return unicode.Is(unicode.Han, r)
}

// CheckSpokenAnswer grades a speech transcript against the canonical answer.
// written is the word's character form in the session's script.
func CheckSpokenAnswer(transcript, written string, c Category, canonical Answer, r Romanizer) Outcome {
	raw := strings.TrimFunc(transcript, func(r rune) bool {
		return unicode.IsSpace(r) || unicode.IsPunct(r)
	})
	if raw == "" {
		return Wrong
	}
	if raw == written {
		return Correct
	}

	switch c {
	case Meaning:
		for _, syn := range canonical.values {
			if raw == syn || strings.TrimSpace(Normalize(raw)) == strings.TrimSpace(Normalize(syn)) {
				return Correct
			}
		}
	case Pronunciation:
		mapped := MapSpeechTranscript(raw, c, r)
		want := strings.Join(strings.Fields(strings.ToLower(canonical.Value())), " ")
		if mapped == want {
			return Correct
		}
		if stripDigits(mapped) == stripDigits(want) {
			return WrongTone
		}
	}
	return Wrong
}
