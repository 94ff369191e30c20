// Package main provides the CLI entrypoint for gliss.
package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/verte-zerg/gliss/internal/dict"
	"github.com/verte-zerg/gliss/internal/engine"
	"github.com/verte-zerg/gliss/internal/generator"
	"github.com/verte-zerg/gliss/internal/hitbox"
	"github.com/verte-zerg/gliss/internal/layout"
	"github.com/verte-zerg/gliss/internal/model"
	"github.com/verte-zerg/gliss/internal/rank"
	"github.com/verte-zerg/gliss/internal/record"
	"github.com/verte-zerg/gliss/internal/replay"
	"github.com/verte-zerg/gliss/internal/sequence"
	"github.com/verte-zerg/gliss/internal/stats"
	"github.com/verte-zerg/gliss/internal/store"
	"github.com/verte-zerg/gliss/internal/track"
	"github.com/verte-zerg/gliss/internal/tuning"
	"github.com/verte-zerg/gliss/internal/wordfreq"
)

const (
	defaultLang        = "en"
	defaultKeyPitch    = 80.0
	defaultTopN        = 5
	defaultDictSize    = 20000
	defaultSpeed       = 1.0
	defaultCurveWindow = 20
	defaultWeakWindow  = 50
)

var (
	verbose    bool
	tuningPath string

	decodeLang    string
	decodeDict    string
	decodeLayout  string
	decodePitch   float64
	decodeTop     int
	decodeExplain bool
	decodeSave    bool

	replayLang   string
	replayDict   string
	replayLayout string
	replayPitch  float64
	replaySpeed  float64

	importLang  string
	importSize  int
	importForce bool

	layoutName  string
	layoutPitch float64
	layoutOut   string

	statsLang        string
	statsLayout      string
	statsSince       string
	statsCurveWindow int
	statsWeakWindow  int

	synthLang     string
	synthDict     string
	synthLayout   string
	synthPitch    float64
	synthWords    int
	synthJitter   float64
	synthSpeed    float64
	synthWeakBias float64
	synthOut      string
)

func main() {
	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "gliss",
		Short:         "Swipe-typing gesture decoder",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRun: func(*cobra.Command, []string) {
			setupLogging()
		},
	}

	rootCmd.PersistentFlags().BoolVar(&verbose, "verbose", false, "enable debug logging")
	rootCmd.PersistentFlags().StringVar(&tuningPath, "tuning", "", "tuning file path (default: XDG config)")

	rootCmd.AddCommand(newDecodeCmd())
	rootCmd.AddCommand(newReplayCmd())
	rootCmd.AddCommand(newDictCmd())
	rootCmd.AddCommand(newLayoutCmd())
	rootCmd.AddCommand(newStatsCmd())
	rootCmd.AddCommand(newSynthCmd())
	rootCmd.AddCommand(newConfigCmd())

	return rootCmd
}

func setupLogging() {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
}

func loadTuning() (tuning.Tuning, error) {
	path := tuningPath
	if path == "" {
		path = tuning.DefaultTuningPath()
	}
	tun, err := tuning.Load(path)
	if err != nil {
		return tuning.Tuning{}, fmt.Errorf("failed to load tuning: %w", err)
	}
	return tun, nil
}

// resolveLayout picks the keyboard geometry: an explicit JSON file, a
// saved layout by name, or the built-in qwerty grid.
func resolveLayout(name string, pitch float64) (*layout.Layout, error) {
	if name == "" || name == "qwerty" {
		return layout.QWERTY(pitch), nil
	}
	if strings.HasSuffix(name, ".json") {
		return layout.LoadFile(name)
	}
	saved := filepath.Join(tuning.DefaultLayoutDir(), name+".json")
	if _, err := os.Stat(saved); err == nil {
		return layout.LoadFile(saved)
	}
	return nil, fmt.Errorf("unknown layout %q (expected qwerty, a .json path, or a saved layout)", name)
}

func loadDictionary(path, lang string) (*dict.Dictionary, error) {
	if path == "" {
		path = tuning.DefaultDictionaryPath(lang)
	}
	d, err := dict.Load(path, lang)
	if err != nil {
		return nil, dictionaryLoadError(lang, path, err)
	}
	return d, nil
}

func dictionaryLoadError(lang, path string, err error) error {
	lines := []string{
		fmt.Sprintf("failed to load dictionary: %v", err),
		fmt.Sprintf("expected dictionary at: %s", path),
		fmt.Sprintf("Download: gliss dict import --lang %s", lang),
		"List imported: gliss dict list",
	}
	return fmt.Errorf("%s", strings.Join(lines, "\n"))
}

func newDecodeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "decode <recording.json>",
		Short: "Decode a gesture recording into word candidates",
		Args:  cobra.ExactArgs(1),
		RunE:  runDecodeCmd,
	}
	cmd.Flags().StringVar(&decodeLang, "lang", defaultLang, "dictionary language")
	cmd.Flags().StringVar(&decodeDict, "dict", "", "dictionary file path")
	cmd.Flags().StringVar(&decodeLayout, "layout", "", "layout name or JSON path (default: recording's layout)")
	cmd.Flags().Float64Var(&decodePitch, "pitch", defaultKeyPitch, "key pitch in pixels for the built-in layout")
	cmd.Flags().IntVar(&decodeTop, "top", defaultTopN, "number of candidates to print")
	cmd.Flags().BoolVar(&decodeExplain, "explain", false, "print per-candidate score components")
	cmd.Flags().BoolVar(&decodeSave, "save", false, "record decodes into the history database")
	return cmd
}

func runDecodeCmd(cmd *cobra.Command, args []string) error {
	rec, err := record.Load(args[0])
	if err != nil {
		return err
	}
	tun, err := loadTuning()
	if err != nil {
		return err
	}
	layName := decodeLayout
	if layName == "" {
		layName = rec.Layout
	}
	lay, err := resolveLayout(layName, decodePitch)
	if err != nil {
		return err
	}
	lang := decodeLang
	if rec.Lang != "" && !cmd.Flags().Changed("lang") {
		lang = rec.Lang
	}
	d, err := loadDictionary(decodeDict, lang)
	if err != nil {
		return err
	}

	var st *store.Store
	if decodeSave {
		st, err = store.Open(tuning.DefaultDBPath())
		if err != nil {
			return fmt.Errorf("failed to open db: %w", err)
		}
		defer func() {
			if cerr := st.Close(); cerr != nil {
				logErrf("failed to close db: %v\n", cerr)
			}
		}()
	}

	eng, err := engine.New(engine.Config{
		Tuning:      tun,
		Layout:      lay,
		Dictionary:  d,
		EventBuffer: len(rec.Events) + 4,
	})
	if err != nil {
		return fmt.Errorf("failed to build engine: %w", err)
	}
	defer eng.Close()

	out := cmd.OutOrStdout()
	for i, run := range rec.Gestures() {
		for _, ev := range run {
			eng.HandleTouch(ev)
		}
		gev, err := awaitGesture(eng)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "gesture %d: %s\n", i+1, gev.Result.Kind)

		drec := model.DecodeRecord{
			At:     time.Now().UnixMilli(),
			Layout: lay.Name(),
			Lang:   lang,
			Kind:   gev.Result.Kind,
		}
		var keyStats []model.KeyStat
		if gev.Result.Kind == model.GestureSwipeType {
			cev, err := awaitCandidates(eng)
			if err != nil {
				return err
			}
			printCandidates(out, cev, decodeTop)
			if decodeExplain {
				explainGesture(out, tun, lay, d, run)
			}
			drec.RawSequence = cev.RawSequence
			drec.CandidateCnt = len(cev.Candidates)
			drec.LatencyMs = cev.Latency.Milliseconds()
			if len(cev.Candidates) > 0 {
				drec.TopWord = cev.Candidates[0].Word
				drec.Fallback = cev.Candidates[0].Fallback
			}
			keyStats = gestureKeyStats(tun, lay, run)
		}
		if st != nil {
			if _, err := st.InsertDecode(context.Background(), drec, keyStats); err != nil {
				return fmt.Errorf("failed to save decode: %w", err)
			}
		}
	}
	return nil
}

func awaitGesture(eng *engine.Engine) (engine.GestureEvent, error) {
	for ev := range eng.Events() {
		if g, ok := ev.(engine.GestureEvent); ok {
			return g, nil
		}
	}
	return engine.GestureEvent{}, fmt.Errorf("engine closed before gesture completed")
}

func awaitCandidates(eng *engine.Engine) (engine.CandidatesEvent, error) {
	for ev := range eng.Events() {
		if c, ok := ev.(engine.CandidatesEvent); ok {
			return c, nil
		}
	}
	return engine.CandidatesEvent{}, fmt.Errorf("engine closed before ranking completed")
}

func printCandidates(out io.Writer, cev engine.CandidatesEvent, top int) {
	fmt.Fprintf(out, "  raw sequence: %s (ranked in %s)\n", cev.RawSequence, cev.Latency.Round(time.Millisecond))
	if len(cev.Candidates) == 0 {
		fmt.Fprintln(out, "  no candidates")
		return
	}
	n := top
	if n > len(cev.Candidates) {
		n = len(cev.Candidates)
	}
	for i := 0; i < n; i++ {
		c := cev.Candidates[i]
		marker := ""
		if c.Fallback {
			marker = " (fallback)"
		}
		fmt.Fprintf(out, "  %d. %-16s %.3f%s\n", i+1, c.Word, c.Score, marker)
	}
}

// replayPipeline re-runs the sampling stages for one gesture so the CLI
// can inspect crossings without reaching into the engine.
func replayPipeline(tun tuning.Tuning, lay *layout.Layout, run []model.TouchEvent) (model.Path, []model.KeyCrossing) {
	tr := track.New(tun, lay.AverageKeyWidth())
	ct := hitbox.NewCrossingTracker(tun, lay, hitbox.NewEngine(tun), slog.Default())
	for _, ev := range run {
		if tr.Add(model.PathPoint{X: ev.X, Y: ev.Y, T: ev.T}) {
			kept := tr.Path()
			ct.Feed(kept[len(kept)-1], tr.Velocity())
		}
	}
	before := len(tr.Path())
	path := tr.Finish()
	if len(path) > before {
		ct.Feed(path[len(path)-1], tr.Velocity())
	}
	return path, ct.Finish()
}

func explainGesture(out io.Writer, tun tuning.Tuning, lay *layout.Layout, d *dict.Dictionary, run []model.TouchEvent) {
	path, crossings := replayPipeline(tun, lay, run)
	raw := sequence.Build(tun, crossings)
	fmt.Fprintln(out, "  crossings:")
	for _, c := range crossings {
		fmt.Fprintf(out, "    %-3s dwell=%dms confidence=%.2f\n", c.Key, c.Duration, c.Confidence)
	}
	detailed := rank.New(tun, lay, d).RankDetailed(context.Background(), raw, path, crossings)
	if len(detailed) == 0 {
		fmt.Fprintln(out, "  no dictionary candidate survived pruning")
		return
	}
	n := decodeTop
	if n > len(detailed) {
		n = len(detailed)
	}
	fmt.Fprintf(out, "  %-16s %7s %8s %5s %7s %7s\n", "word", "shape", "location", "freq", "literal", "total")
	for _, c := range detailed[:n] {
		fmt.Fprintf(out, "  %-16s %7.3f %8.3f %5.3f %7.3f %7.3f\n", c.Word, c.Shape, c.Location, c.Frequency, c.Literal, c.Total)
	}
}

// gestureKeyStats aggregates one gesture's crossings per key for the
// history store.
func gestureKeyStats(tun tuning.Tuning, lay *layout.Layout, run []model.TouchEvent) []model.KeyStat {
	_, crossings := replayPipeline(tun, lay, run)
	byKey := make(map[string]*model.KeyStat)
	for _, c := range crossings {
		ks, ok := byKey[c.Key]
		if !ok {
			ks = &model.KeyStat{Key: c.Key}
			byKey[c.Key] = ks
		}
		n := float64(ks.Crossings)
		ks.MeanDwell = (ks.MeanDwell*n + float64(c.Duration)) / (n + 1)
		ks.MeanScore = (ks.MeanScore*n + c.Confidence) / (n + 1)
		ks.Crossings++
	}
	out := make([]model.KeyStat, 0, len(byKey))
	for _, ks := range byKey {
		out = append(out, *ks)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out
}

func newReplayCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "replay <recording.json>",
		Short: "Play back a recording in the terminal",
		Args:  cobra.ExactArgs(1),
		RunE:  runReplayCmd,
	}
	cmd.Flags().StringVar(&replayLang, "lang", defaultLang, "dictionary language")
	cmd.Flags().StringVar(&replayDict, "dict", "", "dictionary file path")
	cmd.Flags().StringVar(&replayLayout, "layout", "", "layout name or JSON path (default: recording's layout)")
	cmd.Flags().Float64Var(&replayPitch, "pitch", defaultKeyPitch, "key pitch in pixels for the built-in layout")
	cmd.Flags().Float64Var(&replaySpeed, "speed", defaultSpeed, "playback speed multiplier")
	return cmd
}

func runReplayCmd(cmd *cobra.Command, args []string) error {
	rec, err := record.Load(args[0])
	if err != nil {
		return err
	}
	tun, err := loadTuning()
	if err != nil {
		return err
	}
	layName := replayLayout
	if layName == "" {
		layName = rec.Layout
	}
	lay, err := resolveLayout(layName, replayPitch)
	if err != nil {
		return err
	}
	lang := replayLang
	if rec.Lang != "" && !cmd.Flags().Changed("lang") {
		lang = rec.Lang
	}
	d, err := loadDictionary(replayDict, lang)
	if err != nil {
		return err
	}
	eng, err := engine.New(engine.Config{
		Tuning:     tun,
		Layout:     lay,
		Dictionary: d,
		ShowPath:   true,
	})
	if err != nil {
		return fmt.Errorf("failed to build engine: %w", err)
	}
	return replay.Run(rec, eng, lay, replaySpeed)
}

func newDictCmd() *cobra.Command {
	dictCmd := &cobra.Command{
		Use:   "dict",
		Short: "Manage dictionaries",
	}

	importCmd := &cobra.Command{
		Use:   "import",
		Short: "Import dictionaries from the wordfreq dataset",
		Args:  cobra.NoArgs,
		RunE:  runDictImportCmd,
	}
	importCmd.Flags().StringVar(&importLang, "lang", defaultLang, "language code, comma-separated codes, or 'all'")
	importCmd.Flags().IntVar(&importSize, "size", defaultDictSize, "number of words per dictionary")
	importCmd.Flags().BoolVar(&importForce, "force", false, "overwrite existing dictionaries")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List imported dictionaries",
		Args:  cobra.NoArgs,
		RunE:  runDictListCmd,
	}

	dictCmd.AddCommand(importCmd)
	dictCmd.AddCommand(listCmd)
	return dictCmd
}

func runDictImportCmd(_ *cobra.Command, _ []string) error {
	if importSize <= 0 {
		return fmt.Errorf("--size must be greater than 0")
	}
	ctx := context.Background()
	logErrln("Fetching wordfreq metadata...")
	wheel, err := wordfreq.DownloadLatestWheel(ctx, tuning.DefaultWordfreqCacheDir())
	if err != nil {
		return fmt.Errorf("failed to download wordfreq wheel: %w", err)
	}
	if wheel.Cached {
		logErrf("Using cached wheel %s\n", wheel.Filename)
	} else {
		logErrf("Downloaded wheel %s\n", wheel.Filename)
	}

	available, err := wordfreq.ListLanguages(wheel.Path)
	if err != nil {
		return fmt.Errorf("failed to list languages: %w", err)
	}
	langs, err := resolveImportLangs(importLang, available)
	if err != nil {
		return err
	}

	outDir := tuning.DefaultDictionaryDir()
	if !importForce {
		for _, lang := range langs {
			path := filepath.Join(outDir, lang+".txt")
			if _, err := os.Stat(path); err == nil {
				return fmt.Errorf("dictionary already exists: %s (use --force to overwrite)", path)
			} else if !os.IsNotExist(err) {
				return fmt.Errorf("failed to stat dictionary: %w", err)
			}
		}
	}
	return wordfreq.ImportLanguages(ctx, wheel.Path, langs, importSize, outDir, slog.Default())
}

func resolveImportLangs(lang string, available []wordfreq.Language) ([]string, error) {
	lang = strings.TrimSpace(strings.ToLower(lang))
	codes := make([]string, 0, len(available))
	availableSet := make(map[string]struct{}, len(available))
	for _, l := range available {
		codes = append(codes, l.Code)
		availableSet[l.Code] = struct{}{}
	}
	if lang == "all" {
		return codes, nil
	}
	var requested []string
	for _, part := range strings.Split(lang, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		if _, ok := availableSet[part]; !ok {
			return nil, fmt.Errorf("unknown language %q (available: %s)", part, strings.Join(codes, ", "))
		}
		requested = append(requested, part)
	}
	if len(requested) == 0 {
		return nil, fmt.Errorf("--lang must not be empty")
	}
	return requested, nil
}

func runDictListCmd(cmd *cobra.Command, _ []string) error {
	dir := tuning.DefaultDictionaryDir()
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			logErrln("No dictionaries found. Download with: gliss dict import --lang <code>")
			return fmt.Errorf("dictionary directory does not exist")
		}
		return fmt.Errorf("failed to read dictionary directory: %w", err)
	}
	var langs []string
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, ".txt") {
			continue
		}
		langs = append(langs, strings.TrimSuffix(name, ".txt"))
	}
	if len(langs) == 0 {
		logErrln("No dictionaries found. Download with: gliss dict import --lang <code>")
		return fmt.Errorf("no dictionaries found")
	}
	sort.Strings(langs)
	for _, lang := range langs {
		d, err := dict.Load(filepath.Join(dir, lang+".txt"), lang)
		if err != nil {
			fmt.Fprintf(cmd.OutOrStdout(), "%s (unreadable: %v)\n", lang, err)
			continue
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s (%d words)\n", lang, d.Len())
	}
	return nil
}

func newLayoutCmd() *cobra.Command {
	layoutCmd := &cobra.Command{
		Use:   "layout",
		Short: "Inspect and export keyboard layouts",
	}

	showCmd := &cobra.Command{
		Use:   "show",
		Short: "Print a layout's key grid",
		Args:  cobra.NoArgs,
		RunE:  runLayoutShowCmd,
	}
	showCmd.Flags().StringVar(&layoutName, "name", "qwerty", "layout name or JSON path")
	showCmd.Flags().Float64Var(&layoutPitch, "pitch", defaultKeyPitch, "key pitch in pixels for the built-in layout")

	exportCmd := &cobra.Command{
		Use:   "export",
		Short: "Export a layout as JSON",
		Args:  cobra.NoArgs,
		RunE:  runLayoutExportCmd,
	}
	exportCmd.Flags().StringVar(&layoutName, "name", "qwerty", "layout name or JSON path")
	exportCmd.Flags().Float64Var(&layoutPitch, "pitch", defaultKeyPitch, "key pitch in pixels for the built-in layout")
	exportCmd.Flags().StringVar(&layoutOut, "out", "", "output path (required)")
	_ = exportCmd.MarkFlagRequired("out")

	layoutCmd.AddCommand(showCmd)
	layoutCmd.AddCommand(exportCmd)
	return layoutCmd
}

func runLayoutShowCmd(cmd *cobra.Command, _ []string) error {
	lay, err := resolveLayout(layoutName, layoutPitch)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%s (%d keys, avg key width %.0f)\n", lay.Name(), len(lay.Keys()), lay.AverageKeyWidth())
	for _, key := range lay.Keys() {
		kind := "char"
		if key.Type == model.KeyControl {
			kind = "ctrl"
		}
		b := key.Bounds
		fmt.Fprintf(out, "%-10s %s x=%.0f y=%.0f w=%.0f h=%.0f\n", key.Label, kind, b.X, b.Y, b.W, b.H)
	}
	return nil
}

func runLayoutExportCmd(_ *cobra.Command, _ []string) error {
	lay, err := resolveLayout(layoutName, layoutPitch)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(layoutOut), 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	if err := layout.SaveFile(lay, layoutOut); err != nil {
		return err
	}
	logErrf("Wrote %s\n", layoutOut)
	return nil
}

func newStatsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show decode history stats",
		Args:  cobra.NoArgs,
		RunE:  runStatsCmd,
	}
	cmd.Flags().StringVar(&statsLang, "lang", "", "language filter")
	cmd.Flags().StringVar(&statsLayout, "layout", "", "layout filter")
	cmd.Flags().StringVar(&statsSince, "since", "", "start date (YYYY-MM-DD)")
	cmd.Flags().IntVar(&statsCurveWindow, "curve-window", defaultCurveWindow, "moving average window")
	cmd.Flags().IntVar(&statsWeakWindow, "weak-window", defaultWeakWindow, "number of recent decodes for per-key stats")
	return cmd
}

func runStatsCmd(cmd *cobra.Command, _ []string) error {
	var sinceTime *time.Time
	if statsSince != "" {
		parsed, err := time.ParseInLocation("2006-01-02", statsSince, time.Local)
		if err != nil {
			return fmt.Errorf("invalid --since value: %w", err)
		}
		sinceTime = &parsed
	}

	st, err := store.Open(tuning.DefaultDBPath())
	if err != nil {
		return fmt.Errorf("failed to open db: %w", err)
	}
	defer func() {
		if cerr := st.Close(); cerr != nil {
			logErrf("failed to close db: %v\n", cerr)
		}
	}()

	report, err := stats.BuildReport(context.Background(), st, store.Filter{
		Lang:   statsLang,
		Layout: statsLayout,
		Since:  sinceTime,
	}, statsWeakWindow)
	if err != nil {
		return fmt.Errorf("failed to build report: %w", err)
	}
	return report.Render(cmd.OutOrStdout(), stats.Options{
		CurveWindow: statsCurveWindow,
		UseColor:    stats.UseColor(os.Stdout),
	})
}

func newSynthCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "synth",
		Short: "Generate a synthetic swipe recording",
		Args:  cobra.NoArgs,
		RunE:  runSynthCmd,
	}
	cmd.Flags().StringVar(&synthLang, "lang", defaultLang, "dictionary language")
	cmd.Flags().StringVar(&synthDict, "dict", "", "dictionary file path")
	cmd.Flags().StringVar(&synthLayout, "layout", "qwerty", "layout name or JSON path")
	cmd.Flags().Float64Var(&synthPitch, "pitch", defaultKeyPitch, "key pitch in pixels for the built-in layout")
	cmd.Flags().IntVar(&synthWords, "words", 10, "number of words to swipe")
	cmd.Flags().Float64Var(&synthJitter, "jitter", generator.DefaultOptions().Jitter, "positional noise as a key-width fraction")
	cmd.Flags().Float64Var(&synthSpeed, "speed", generator.DefaultOptions().Speed, "swipe speed in px/s")
	cmd.Flags().Float64Var(&synthWeakBias, "weak-bias", 0, "bias word selection toward recently missed keys")
	cmd.Flags().StringVar(&synthOut, "out", "", "output recording path (required)")
	_ = cmd.MarkFlagRequired("out")
	return cmd
}

func runSynthCmd(_ *cobra.Command, _ []string) error {
	if synthWords <= 0 {
		return fmt.Errorf("--words must be greater than 0")
	}
	lay, err := resolveLayout(synthLayout, synthPitch)
	if err != nil {
		return err
	}
	d, err := loadDictionary(synthDict, synthLang)
	if err != nil {
		return err
	}

	gen := generator.New()
	var words []string
	if synthWeakBias > 0 {
		weak, err := weakLetterSet(synthLang)
		if err != nil {
			return err
		}
		words = gen.WeightedWords(d, synthWords, weak, synthWeakBias)
	} else {
		words = gen.Words(d, synthWords)
	}

	opts := generator.DefaultOptions()
	opts.Jitter = synthJitter
	opts.Speed = synthSpeed
	rec, err := gen.Recording(lay, synthLang, words, opts)
	if err != nil {
		return err
	}
	if err := record.Save(rec, synthOut); err != nil {
		return err
	}
	logErrf("Wrote %s (%d words: %s)\n", synthOut, len(words), strings.Join(words, " "))
	return nil
}

// weakLetterSet reads the history store's per-key stats and keeps the keys
// with any discarded crossings.
func weakLetterSet(lang string) (map[rune]struct{}, error) {
	st, err := store.Open(tuning.DefaultDBPath())
	if err != nil {
		return nil, fmt.Errorf("failed to open db: %w", err)
	}
	defer func() {
		if cerr := st.Close(); cerr != nil {
			logErrf("failed to close db: %v\n", cerr)
		}
	}()
	keyStats, err := st.WeakKeys(context.Background(), defaultWeakWindow, lang)
	if err != nil {
		return nil, fmt.Errorf("failed to load key stats: %w", err)
	}
	weak := make(map[rune]struct{})
	for _, ks := range keyStats {
		runes := []rune(ks.Key)
		if ks.Discarded > 0 && len(runes) == 1 {
			weak[runes[0]] = struct{}{}
		}
	}
	return weak, nil
}

func newConfigCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Create/open the tuning file",
		Args:  cobra.NoArgs,
		RunE:  runConfigCmd,
	}
}

func runConfigCmd(_ *cobra.Command, _ []string) error {
	path := tuning.DefaultTuningPath()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if _, err := os.Stat(path); err != nil {
		if !os.IsNotExist(err) {
			return fmt.Errorf("failed to stat tuning file: %w", err)
		}
		if err := os.WriteFile(path, []byte(defaultTuningTemplate()), 0o644); err != nil {
			return fmt.Errorf("failed to write tuning file: %w", err)
		}
	}

	editor := strings.TrimSpace(os.Getenv("EDITOR"))
	if editor == "" {
		editor = "vi"
	}
	parts := strings.Fields(editor)
	if len(parts) == 0 {
		return fmt.Errorf("editor command is empty")
	}
	cmd := exec.Command(parts[0], append(parts[1:], path)...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("failed to open editor: %w", err)
	}
	return nil
}

func defaultTuningTemplate() string {
	t := tuning.Default()
	return fmt.Sprintf(`# gliss tuning
# Uncomment a value to enable it. Absent keys keep their defaults.

[decoder]
# sensitivity = %.2f               # Global hit radius multiplier
# min-sample-distance-ratio = %.2f # Resampling distance as a key-width fraction
# curvature-threshold-deg = %.0f   # Turn angle that always keeps a sample
# tap-max-distance = %.0f          # Max travel for a tap, in pixels
# tap-max-duration-ms = %d         # Max duration for a tap
# swipe-min-distance = %.0f        # Min travel for swipe typing
# swipe-min-duration-ms = %d       # Min duration for swipe typing
# delete-min-distance = %.0f       # Min leftward travel for swipe delete
# cursor-min-distance = %.0f       # Min horizontal travel for cursor moves
# accept-threshold = %.2f          # Min membership to count a key crossing
# min-dwell-ms = %d                # Min time inside a key
# min-mean-confidence = %.2f       # Min mean membership per crossing
# repeat-gap-ms = %d               # Gap that splits doubled letters

[scoring]
# length-tolerance = %.2f          # Candidate length band, as a fraction
# anchor-keys = %d                 # Nearest keys anchoring the first letter
# shape-weight = %.2f
# location-weight = %.2f
# frequency-weight = %.2f
# literal-bonus-weight = %.2f
# velocity-consistency-weight = %.2f
# max-candidates = %d              # Scoring pool cap
`,
		t.Sensitivity,
		t.MinSampleDistanceRatio,
		t.CurvatureThresholdDeg,
		t.TapMaxDistance,
		t.TapMaxDurationMs,
		t.SwipeTypeMinDistance,
		t.SwipeTypeMinDuration,
		t.DeleteMinDistance,
		t.CursorMoveMinDistance,
		t.AcceptThreshold,
		t.MinDwellMs,
		t.MinMeanConfidence,
		t.RepeatGapMs,
		t.LengthTolerance,
		t.AnchorKeys,
		t.ShapeWeight,
		t.LocationWeight,
		t.FrequencyWeight,
		t.LiteralBonusWeight,
		t.VelocityConsistencyWeight,
		t.MaxCandidates,
	)
}

func logErrf(format string, args ...any) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		// Best-effort logging to stderr.
		_ = err
	}
}

func logErrln(args ...any) {
	if _, err := fmt.Fprintln(os.Stderr, args...); err != nil {
		// Best-effort logging to stderr.
		_ = err
	}
}
