package quiz

import (
	"strings"
	"testing"
)

// stubRomanizer maps each Han character through a fixed table
type stubRomanizer map[rune]string

func (s stubRomanizer) Romanize(text string) []string {
	var out []string
	for _, r := range text {
		if syl, ok := s[r]; ok {
			out = append(out, syl)
		} else {
			out = append(out, string(r))
		}
	}
	return out
}

var testRomanizer = stubRomanizer{
	'你': "ni3",
	'好': "hao3",
	'妈': "ma1",
	'吗': "ma5",
	'十': "shi2",
	'八': "ba1",
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{in: "Hello", want: "hello"},
		{in: "to (go) out!", want: "to go out"},
		{in: "don't-stop", want: "dontstop"},
		{in: "a  b   c", want: "a b c"},
		{in: "a , b", want: "a b"},
		{in: "ni3 hao5", want: "ni3 hao5"},
		{in: "~`{}=;:", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := Normalize(tt.in); got != tt.want {
				t.Errorf("Normalize(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestNormalizeIdempotent(t *testing.T) {
	inputs := []string{
		"", " ", "Hello World", "a . . b", "x  ,  y", "(((  )))", "ÜBER café",
		"ni3  hao5!!", "tab\tseparated", "  leading and trailing  ", "a - - - b",
	}
	for _, in := range inputs {
		once := Normalize(in)
		if twice := Normalize(once); twice != once {
			t.Errorf("Normalize(Normalize(%q)) = %q, want %q", in, twice, once)
		}
	}
}

func TestCheckTextAnswer(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		category  Category
		canonical Answer
		want      bool
	}{
		{name: "neutral tone omitted", input: "ni3 hao", category: Pronunciation, canonical: Single("ni3 hao5"), want: true},
		{name: "wrong tone", input: "ni4 hao", category: Pronunciation, canonical: Single("ni3 hao5"), want: false},
		{name: "spacing ignored", input: "ni3hao3", category: Pronunciation, canonical: Single("ni3 hao3"), want: true},
		{name: "uppercase pinyin", input: "NI3 HAO3", category: Pronunciation, canonical: Single("ni3 hao3"), want: true},
		{name: "character exact", input: "你好", category: Character, canonical: Single("你好"), want: true},
		{name: "character differs", input: "你", category: Character, canonical: Single("你好"), want: false},
		{name: "meaning synonym", input: "Hi!", category: Meaning, canonical: MultiChoice([]string{"hello", "hi"}), want: true},
		{name: "meaning with spaces", input: " to  go ", category: Meaning, canonical: MultiChoice([]string{"to go"}), want: true},
		{name: "meaning miss", input: "bye", category: Meaning, canonical: MultiChoice([]string{"hello", "hi"}), want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CheckTextAnswer(tt.input, tt.category, tt.canonical); got != tt.want {
				t.Errorf("CheckTextAnswer(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestTextFeedback(t *testing.T) {
	canonical := Single("ni3 hao3")
	tests := []struct {
		input string
		want  Outcome
	}{
		{input: "ni3 hao3", want: Correct},
		{input: "ni2 hao4", want: WrongTone},
		{input: "ni hao", want: WrongTone},
		{input: "wo3 hao3", want: Wrong},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := TextFeedback(tt.input, Pronunciation, canonical); got != tt.want {
				t.Errorf("TextFeedback(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}

	if got := TextFeedback("hullo", Meaning, MultiChoice([]string{"hello"})); got != Wrong {
		t.Errorf("meaning feedback = %v, want wrong", got)
	}
}

func TestToneChecker(t *testing.T) {
	if !ToneChecker("ma1", "ma3") {
		t.Error("ToneChecker(ma1, ma3) = false, want true")
	}
	if ToneChecker("ma1", "mo1") {
		t.Error("ToneChecker(ma1, mo1) = true, want false")
	}
}

func TestMapSpeechTranscript(t *testing.T) {
	tests := []struct {
		name       string
		transcript string
		category   Category
		want       string
	}{
		{name: "han characters", transcript: "你好", category: Pronunciation, want: "ni3 hao3"},
		{name: "numerals", transcript: "10 8", category: Pronunciation, want: "shi2 ba1"},
		{name: "zero", transcript: "0", category: Pronunciation, want: "ling3"},
		{name: "mixed run", transcript: "妈10", category: Pronunciation, want: "ma1 shi2"},
		{name: "larger number untouched", transcript: "11", category: Pronunciation, want: "11"},
		{name: "trailing full stop", transcript: "你好。", category: Pronunciation, want: "ni3 hao3"},
		{name: "punctuation between words", transcript: "你！ 好？", category: Pronunciation, want: "ni3 hao3"},
		{name: "punctuation on latin", transcript: "ni3, hao3.", category: Pronunciation, want: "ni3 hao3"},
		{name: "latin lowercased", transcript: "Ni3 HAO3", category: Pronunciation, want: "ni3 hao3"},
		{name: "meaning unchanged", transcript: "Hello 10", category: Meaning, want: "Hello 10"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MapSpeechTranscript(tt.transcript, tt.category, testRomanizer)
			if got != tt.want {
				t.Errorf("MapSpeechTranscript(%q) = %q, want %q", tt.transcript, got, tt.want)
			}
		})
	}
}

func TestMapSpeechTranscriptWithoutRomanizer(t *testing.T) {
	got := MapSpeechTranscript("你好 1", Pronunciation, nil)
	if got != "你好 yi1" {
		t.Errorf("MapSpeechTranscript() = %q, want %q", got, "你好 yi1")
	}
}

func TestCheckSpokenAnswer(t *testing.T) {
	meanings := MultiChoice([]string{"hello", "hi"})
	tests := []struct {
		name       string
		transcript string
		written    string
		category   Category
		canonical  Answer
		want       Outcome
	}{
		{name: "written form", transcript: "你好", written: "你好", category: Meaning, canonical: meanings, want: Correct},
		{name: "literal synonym", transcript: "hi", written: "你好", category: Meaning, canonical: meanings, want: Correct},
		{name: "capitalised synonym", transcript: "Hello.", written: "你好", category: Meaning, canonical: meanings, want: Correct},
		{name: "wrong meaning", transcript: "goodbye", written: "你好", category: Meaning, canonical: meanings, want: Wrong},
		{name: "romanized pronunciation", transcript: "你好", written: "您好", category: Pronunciation, canonical: Single("ni3 hao3"), want: Correct},
		{name: "numeral quirk", transcript: "10", written: "十", category: Pronunciation, canonical: Single("shi2"), want: Correct},
		{name: "wrong tone", transcript: "妈", written: "吗", category: Pronunciation, canonical: Single("ma5"), want: WrongTone},
		{name: "wrong syllable", transcript: "八", written: "吗", category: Pronunciation, canonical: Single("ma5"), want: Wrong},
		{name: "pronunciation with full stop", transcript: "你好。", written: "您好", category: Pronunciation, canonical: Single("ni3 hao3"), want: Correct},
		{name: "wrong tone with question mark", transcript: "妈？", written: "吗", category: Pronunciation, canonical: Single("ma5"), want: WrongTone},
		{name: "written form with full stop", transcript: "你好。", written: "你好", category: Character, canonical: Single("你好"), want: Correct},
		{name: "only punctuation", transcript: "。", written: "你好", category: Pronunciation, canonical: Single("ni3 hao3"), want: Wrong},
		{name: "empty", transcript: "  ", written: "你好", category: Pronunciation, canonical: Single("ni3 hao3"), want: Wrong},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CheckSpokenAnswer(tt.transcript, tt.written, tt.category, tt.canonical, testRomanizer)
			if got != tt.want {
				t.Errorf("CheckSpokenAnswer(%q) = %v, want %v", tt.transcript, got, tt.want)
			}
		})
	}
}

func TestAnswerChoicesAreCopies(t *testing.T) {
	src := []string{"a", "b"}
	a := MultiChoice(src)
	src[0] = "changed"
	got := a.Choices()
	got[1] = "changed"
	if strings.Join(a.Choices(), ",") != "a,b" {
		t.Errorf("Choices() = %v, want [a b]", a.Choices())
	}
}
