package dict

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/verte-zerg/gliss/internal/model"
)

func TestLoadWordFrequencyFormat(t *testing.T) {
	path := filepath.Join(t.TempDir(), "en.txt")
	content := "# English Dictionary\n# Format: word frequency\n\ntest 500\nrest 10\nbareword\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write dictionary: %v", err)
	}
	d, err := Load(path, "en")
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if d.Len() != 3 {
		t.Fatalf("expected 3 entries, got %d", d.Len())
	}
	entries := d.Entries()
	if entries[0].Word != "test" || entries[0].Frequency != 500 {
		t.Fatalf("expected test/500 first, got %+v", entries[0])
	}
	if entries[2].Word != "bareword" || entries[2].Frequency != 1 {
		t.Fatalf("expected bare words to default to frequency 1, got %+v", entries[2])
	}
}

func TestLoadEmptyDictionaryFails(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.txt")
	if err := os.WriteFile(path, []byte("# only comments\n"), 0o644); err != nil {
		t.Fatalf("failed to write dictionary: %v", err)
	}
	if _, err := Load(path, "en"); err == nil {
		t.Fatalf("expected empty dictionary to fail loading")
	}
}

func TestNewDeduplicatesAndLowercases(t *testing.T) {
	d := New("en", []model.DictionaryEntry{
		{Word: "Hello", Frequency: 100},
		{Word: "hello", Frequency: 5},
		{Word: "  ", Frequency: 9},
		{Word: "world", Frequency: 50},
	})
	if d.Len() != 2 {
		t.Fatalf("expected 2 entries after dedup, got %d", d.Len())
	}
	if d.Entries()[0].Word != "hello" || d.Entries()[0].Frequency != 100 {
		t.Fatalf("expected first occurrence to win, got %+v", d.Entries()[0])
	}
}

func TestWithFirstLetter(t *testing.T) {
	d := New("en", []model.DictionaryEntry{
		{Word: "test", Frequency: 500},
		{Word: "toast", Frequency: 20},
		{Word: "rest", Frequency: 10},
	})
	ts := d.WithFirstLetter("t")
	if len(ts) != 2 {
		t.Fatalf("expected 2 words starting with t, got %d", len(ts))
	}
	if got := d.WithFirstLetter("z"); got != nil {
		t.Fatalf("expected no words starting with z, got %v", got)
	}
	if d.MaxWordLength() != 5 {
		t.Fatalf("expected max word length 5, got %d", d.MaxWordLength())
	}
}
