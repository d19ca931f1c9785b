package lexicon

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"regexp"
	"strings"
	"sync"
)

// Entry is one dictionary record
type Entry struct {
	Simp     string   `json:"simp"`
	Trad     string   `json:"trad"`
	Pinyin   string   `json:"pinyin"` // space separated, tone numbered
	Meanings []string `json:"meanings"`
}

// Meaning joins the meanings in the "/" separated word-bank form
func (e Entry) Meaning() string {
	return strings.Join(e.Meanings, "/")
}

// Lexicon looks up a word by either script
type Lexicon interface {
	Lookup(word string) (Entry, bool)
}

// Dictionary is an in-memory CC-CEDICT index keyed by simplified and traditional form
type Dictionary struct {
	mu    sync.RWMutex
	index map[string]Entry
}

// cedictLine matches "TRAD SIMP [pin1 yin1] /meaning 1/meaning 2/"
var cedictLine = regexp.MustCompile(`^(\S+)\s+(\S+)\s+\[([^\]]*)\]\s+/(.*)/\s*$`)

// NewDictionary builds a dictionary from already parsed entries
func NewDictionary(entries []Entry) *Dictionary {
	d := &Dictionary{index: make(map[string]Entry, len(entries)*2)}
	for _, e := range entries {
		d.add(e)
	}
	return d
}

// LoadCEDICT reads a CC-CEDICT text file
func LoadCEDICT(path string) (*Dictionary, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	entries, err := ParseCEDICT(f)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return NewDictionary(entries), nil
}

// ParseCEDICT parses CC-CEDICT lines. Comment lines and lines that do not
// match the format are skipped.
func ParseCEDICT(r io.Reader) ([]Entry, error) {
	var entries []Entry
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		m := cedictLine.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		entries = append(entries, Entry{
			Trad:     m[1],
			Simp:     m[2],
			Pinyin:   normalizePinyin(m[3]),
			Meanings: splitMeanings(m[4]),
		})
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return entries, nil
}

// normalizePinyin lowercases the reading and writes u: as v
func normalizePinyin(p string) string {
	p = strings.ToLower(strings.TrimSpace(p))
	p = strings.ReplaceAll(p, "u:", "v")
	return strings.Join(strings.Fields(p), " ")
}

func splitMeanings(s string) []string {
	var out []string
	for _, m := range strings.Split(s, "/") {
		if m = strings.TrimSpace(m); m != "" {
			out = append(out, m)
		}
	}
	return out
}

// add keeps the first entry seen for each key; CC-CEDICT lists the most
// common reading first.
func (d *Dictionary) add(e Entry) {
	d.mu.Lock()
	defer d.mu.Unlock()
	for _, key := range []string{e.Simp, e.Trad} {
		if key == "" {
			continue
		}
		if _, exists := d.index[key]; !exists {
			d.index[key] = e
		}
	}
}

// Lookup finds word by its simplified or traditional form
func (d *Dictionary) Lookup(word string) (Entry, bool) {
	if d == nil {
		return Entry{}, false
	}
	d.mu.RLock()
	defer d.mu.RUnlock()
	e, ok := d.index[strings.TrimSpace(word)]
	return e, ok
}

// Len returns the number of indexed keys
func (d *Dictionary) Len() int {
	if d == nil {
		return 0
	}
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.index)
}
