// Package wordfreq builds gliss dictionaries from the wordfreq dataset.
// It downloads the wordfreq PyPI wheel, decodes the per-language cBpack
// word lists inside it, and emits dictionary text files ranked by
// frequency.
package wordfreq

import (
	"archive/zip"
	"compress/gzip"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"golang.org/x/sync/errgroup"

	"github.com/verte-zerg/gliss/internal/model"
)

const pypiEndpoint = "https://pypi.org/pypi/wordfreq/json"

// Frequencies in emitted dictionaries decay linearly with rank, matching
// the byte-sized frequency scale the decoder's ranking normalizes over.
const (
	startFrequency = 255
	floorFrequency = 1
)

const (
	minWordRunes = 2
	maxWordRunes = 20
)

// Wheel describes a cached wordfreq wheel.
type Wheel struct {
	Version  string
	Path     string
	Filename string
	Cached   bool
}

// Language is one language available in a wheel.
type Language struct {
	Code  string
	Large bool
}

type pypiResponse struct {
	Info struct {
		Version string `json:"version"`
	} `json:"info"`
	URLs []struct {
		URL         string `json:"url"`
		Filename    string `json:"filename"`
		Packagetype string `json:"packagetype"`
	} `json:"urls"`
}

// DownloadLatestWheel fetches the latest wordfreq wheel into cacheDir.
// An already cached wheel of the same version is reused.
func DownloadLatestWheel(ctx context.Context, cacheDir string) (Wheel, error) {
	if cacheDir == "" {
		return Wheel{}, fmt.Errorf("cache directory is required")
	}
	if err := os.MkdirAll(cacheDir, 0o755); err != nil {
		return Wheel{}, fmt.Errorf("failed to create cache dir: %w", err)
	}

	resp, err := httpRequest(ctx, pypiEndpoint)
	if err != nil {
		return Wheel{}, err
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		return Wheel{}, fmt.Errorf("unexpected pypi status: %s", resp.Status)
	}

	var payload pypiResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return Wheel{}, fmt.Errorf("failed to decode pypi response: %w", err)
	}
	if payload.Info.Version == "" {
		return Wheel{}, fmt.Errorf("missing version in pypi response")
	}

	url, filename := pickWheelURL(payload)
	if url == "" {
		return Wheel{}, fmt.Errorf("no suitable wordfreq wheel found")
	}

	destPath := filepath.Join(cacheDir, filename)
	if _, err := os.Stat(destPath); err == nil {
		return Wheel{Version: payload.Info.Version, Path: destPath, Filename: filename, Cached: true}, nil
	} else if !errors.Is(err, os.ErrNotExist) {
		return Wheel{}, fmt.Errorf("failed to stat cached wheel: %w", err)
	}

	tmpFile, err := os.CreateTemp(cacheDir, "wordfreq-*.whl")
	if err != nil {
		return Wheel{}, fmt.Errorf("failed to create temp wheel: %w", err)
	}
	tmpPath := tmpFile.Name()
	defer func() {
		_ = tmpFile.Close()
		_ = os.Remove(tmpPath)
	}()

	wheelResp, err := httpRequest(ctx, url)
	if err != nil {
		return Wheel{}, err
	}
	defer func() {
		_ = wheelResp.Body.Close()
	}()
	if wheelResp.StatusCode != http.StatusOK {
		return Wheel{}, fmt.Errorf("unexpected wheel status: %s", wheelResp.Status)
	}

	if _, err := io.Copy(tmpFile, wheelResp.Body); err != nil {
		return Wheel{}, fmt.Errorf("failed to download wheel: %w", err)
	}
	if err := tmpFile.Close(); err != nil {
		return Wheel{}, fmt.Errorf("failed to close temp wheel: %w", err)
	}
	if err := os.Rename(tmpPath, destPath); err != nil {
		return Wheel{}, fmt.Errorf("failed to move wheel into cache: %w", err)
	}

	return Wheel{Version: payload.Info.Version, Path: destPath, Filename: filename, Cached: false}, nil
}

// Extract decodes the word list for one language and returns ranked
// dictionary entries, at most limit of them.
func Extract(wheelPath, lang string, limit int) ([]model.DictionaryEntry, error) {
	if wheelPath == "" {
		return nil, fmt.Errorf("wheel path is required")
	}
	lang = strings.ToLower(lang)
	if lang == "" {
		return nil, fmt.Errorf("language is required")
	}
	if limit <= 0 {
		return nil, fmt.Errorf("limit must be greater than 0")
	}

	words, err := readRankedWords(wheelPath, lang)
	if err != nil {
		return nil, err
	}

	keep := langFilter(lang)
	seen := make(map[string]struct{})
	ranked := make([]string, 0, limit)
	for _, word := range words {
		word = strings.ToLower(word)
		if _, dup := seen[word]; dup {
			continue
		}
		if runes := utf8.RuneCountInString(word); runes < minWordRunes || runes > maxWordRunes {
			continue
		}
		if !isLetters(word) || !keep(word) {
			continue
		}
		seen[word] = struct{}{}
		ranked = append(ranked, word)
		if len(ranked) >= limit {
			break
		}
	}
	if len(ranked) == 0 {
		return nil, fmt.Errorf("no usable words for language %s", lang)
	}

	entries := make([]model.DictionaryEntry, len(ranked))
	span := float64(startFrequency - floorFrequency)
	for i, word := range ranked {
		freq := uint32(startFrequency)
		if len(ranked) > 1 {
			freq = uint32(float64(floorFrequency) + span*float64(len(ranked)-1-i)/float64(len(ranked)-1) + 0.5)
		}
		entries[i] = model.DictionaryEntry{Word: word, Frequency: freq}
	}
	return entries, nil
}

// WriteDictionary writes entries as a dictionary text file named
// <lang>.txt under outDir.
func WriteDictionary(entries []model.DictionaryEntry, lang, outDir string) (string, error) {
	if len(entries) == 0 {
		return "", fmt.Errorf("no entries to write")
	}
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create dictionary dir: %w", err)
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "# %s dictionary generated from the wordfreq dataset\n", lang)
	fmt.Fprintf(&sb, "# generated %s, %d words\n", time.Now().UTC().Format("2006-01-02"), len(entries))
	for _, e := range entries {
		fmt.Fprintf(&sb, "%s %d\n", e.Word, e.Frequency)
	}
	path := filepath.Join(outDir, lang+".txt")
	if err := os.WriteFile(path, []byte(sb.String()), 0o644); err != nil {
		return "", fmt.Errorf("failed to write dictionary: %w", err)
	}
	return path, nil
}

// ImportLanguages extracts and writes dictionaries for several languages
// concurrently.
func ImportLanguages(ctx context.Context, wheelPath string, langs []string, limit int, outDir string, log *slog.Logger) error {
	if log == nil {
		log = slog.Default()
	}
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(4)
	for _, lang := range langs {
		lang := lang
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			entries, err := Extract(wheelPath, lang, limit)
			if err != nil {
				return fmt.Errorf("import %s: %w", lang, err)
			}
			path, err := WriteDictionary(entries, lang, outDir)
			if err != nil {
				return fmt.Errorf("import %s: %w", lang, err)
			}
			log.Info("imported dictionary", "lang", lang, "words", len(entries), "path", path)
			return nil
		})
	}
	return g.Wait()
}

// ListLanguages returns the languages available in the wheel, sorted by
// code. Large is set when the bigger list variant is present.
func ListLanguages(wheelPath string) ([]Language, error) {
	reader, err := zip.OpenReader(wheelPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open wheel: %w", err)
	}
	defer func() {
		_ = reader.Close()
	}()

	large := make(map[string]bool)
	for _, file := range reader.File {
		code, big, ok := parseDataFileName(file.Name)
		if !ok {
			continue
		}
		large[code] = large[code] || big
	}
	if len(large) == 0 {
		return nil, fmt.Errorf("no languages found in wordfreq wheel")
	}
	out := make([]Language, 0, len(large))
	for code, big := range large {
		out = append(out, Language{Code: code, Large: big})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return out, nil
}

func httpRequest(ctx context.Context, url string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	client := &http.Client{Timeout: 60 * time.Second}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	return resp, nil
}

func pickWheelURL(payload pypiResponse) (string, string) {
	for _, u := range payload.URLs {
		if u.Packagetype == "bdist_wheel" && strings.HasSuffix(u.Filename, "py3-none-any.whl") {
			return u.URL, u.Filename
		}
	}
	for _, u := range payload.URLs {
		if u.Packagetype == "bdist_wheel" {
			return u.URL, u.Filename
		}
	}
	return "", ""
}

// readRankedWords decodes the language's cBpack list from the wheel,
// preferring the large variant, and returns words most frequent first.
func readRankedWords(wheelPath, lang string) ([]string, error) {
	reader, err := zip.OpenReader(wheelPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open wheel: %w", err)
	}
	defer func() {
		_ = reader.Close()
	}()

	var small, big *zip.File
	for _, file := range reader.File {
		code, isLarge, ok := parseDataFileName(file.Name)
		if !ok || code != lang {
			continue
		}
		if isLarge {
			big = file
		} else {
			small = file
		}
	}
	dataFile := big
	if dataFile == nil {
		dataFile = small
	}
	if dataFile == nil {
		return nil, fmt.Errorf("no word list for language %s in wheel", lang)
	}

	rc, err := dataFile.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open data file: %w", err)
	}
	defer func() {
		_ = rc.Close()
	}()

	var stream io.Reader = rc
	if strings.HasSuffix(dataFile.Name, ".gz") {
		gz, err := gzip.NewReader(rc)
		if err != nil {
			return nil, fmt.Errorf("failed to open gzip stream: %w", err)
		}
		defer func() {
			_ = gz.Close()
		}()
		stream = gz
	}

	buckets, err := decodeCBpack(stream)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", dataFile.Name, err)
	}
	var words []string
	for _, bucket := range buckets {
		words = append(words, bucket...)
	}
	if len(words) == 0 {
		return nil, fmt.Errorf("word list for %s is empty", lang)
	}
	return words, nil
}

// parseDataFileName recognizes wordfreq/data/{large,small}_<lang>.msgpack
// entries, with or without gzip suffix.
func parseDataFileName(name string) (lang string, large bool, ok bool) {
	name = strings.ToLower(name)
	if !strings.HasPrefix(name, "wordfreq/data/") {
		return "", false, false
	}
	base := strings.TrimPrefix(name, "wordfreq/data/")
	base = strings.TrimSuffix(base, ".gz")
	if !strings.HasSuffix(base, ".msgpack") {
		return "", false, false
	}
	base = strings.TrimSuffix(base, ".msgpack")
	switch {
	case strings.HasPrefix(base, "large_"):
		return strings.TrimPrefix(base, "large_"), true, true
	case strings.HasPrefix(base, "small_"):
		return strings.TrimPrefix(base, "small_"), false, true
	default:
		return "", false, false
	}
}

// langFilter narrows extracted words to the alphabet the layout can
// actually swipe. English keeps bare ASCII letters so apostrophes and
// diacritics never reach the decoder.
func langFilter(lang string) func(string) bool {
	switch lang {
	case "en":
		return func(word string) bool {
			for i := 0; i < len(word); i++ {
				if word[i] < 'a' || word[i] > 'z' {
					return false
				}
			}
			return word != ""
		}
	default:
		return func(string) bool { return true }
	}
}

func isLetters(word string) bool {
	for _, r := range word {
		if !unicode.IsLetter(r) {
			return false
		}
	}
	return word != ""
}
