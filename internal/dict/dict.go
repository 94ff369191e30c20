// Package dict loads read-only word/frequency dictionaries.
//
// The on-disk format is one `word frequency` pair per line with `#` comment
// lines, the same asset format the keyboard ships per language. Lines
// carrying only a word default to frequency 1, so plain word lists load too.
package dict

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/verte-zerg/gliss/internal/model"
)

// Dictionary is an immutable, language-scoped word list with frequencies,
// indexed by first letter for candidate pruning.
type Dictionary struct {
	lang    string
	entries []model.DictionaryEntry
	byFirst map[string][]model.DictionaryEntry
	maxLen  int
}

// New builds a Dictionary from entries. Words are lowercased and
// deduplicated; the first occurrence of a word wins. Empty words are
// dropped.
func New(lang string, entries []model.DictionaryEntry) *Dictionary {
	d := &Dictionary{
		lang:    lang,
		byFirst: make(map[string][]model.DictionaryEntry),
	}
	seen := make(map[string]struct{}, len(entries))
	for _, e := range entries {
		word := strings.ToLower(strings.TrimSpace(e.Word))
		if word == "" {
			continue
		}
		if _, dup := seen[word]; dup {
			continue
		}
		seen[word] = struct{}{}
		entry := model.DictionaryEntry{Word: word, Frequency: e.Frequency}
		d.entries = append(d.entries, entry)
		first, _ := utf8.DecodeRuneInString(word)
		d.byFirst[string(first)] = append(d.byFirst[string(first)], entry)
		if n := utf8.RuneCountInString(word); n > d.maxLen {
			d.maxLen = n
		}
	}
	return d
}

// Load reads a dictionary file for the given language.
func Load(path, lang string) (*Dictionary, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open dictionary: %w", err)
	}
	defer func() {
		if cerr := file.Close(); cerr != nil {
			// Best-effort close for a read-only dictionary.
			_ = cerr
		}
	}()

	var entries []model.DictionaryEntry
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		entries = append(entries, parseLine(line))
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read dictionary: %w", err)
	}
	if len(entries) == 0 {
		return nil, fmt.Errorf("dictionary %s is empty", path)
	}
	return New(lang, entries), nil
}

// parseLine splits a `word frequency` pair on the last space. A line with
// no parsable trailing frequency is a bare word with frequency 1.
func parseLine(line string) model.DictionaryEntry {
	if i := strings.LastIndexByte(line, ' '); i > 0 {
		word := strings.TrimSpace(line[:i])
		if freq, err := strconv.ParseUint(strings.TrimSpace(line[i+1:]), 10, 32); err == nil && word != "" {
			return model.DictionaryEntry{Word: word, Frequency: uint32(freq)}
		}
	}
	return model.DictionaryEntry{Word: line, Frequency: 1}
}

// Lang returns the dictionary's language code.
func (d *Dictionary) Lang() string { return d.lang }

// Len returns the number of words.
func (d *Dictionary) Len() int { return len(d.entries) }

// Entries returns all entries in load order. Callers must not mutate.
func (d *Dictionary) Entries() []model.DictionaryEntry { return d.entries }

// MaxWordLength returns the rune length of the longest word.
func (d *Dictionary) MaxWordLength() int { return d.maxLen }

// WithFirstLetter returns the entries whose words begin with the letter.
// Callers must not mutate the returned slice.
func (d *Dictionary) WithFirstLetter(letter string) []model.DictionaryEntry {
	return d.byFirst[strings.ToLower(letter)]
}
