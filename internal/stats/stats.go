package stats

import (
	"fmt"
	"io"
	"math"
	"sort"
	"strings"

	"github.com/verte-zerg/gliss/internal/model"
	"github.com/verte-zerg/gliss/internal/store"
)

const sparkChars = " .:-=+*#%@"

// MovingAverage computes a rolling mean over the provided window size.
func MovingAverage(values []float64, window int) []float64 {
	out := make([]float64, len(values))
	if window <= 1 {
		copy(out, values)
		return out
	}
	var sum float64
	for i, v := range values {
		sum += v
		n := i + 1
		if i >= window {
			sum -= values[i-window]
			n = window
		}
		out[i] = sum / float64(n)
	}
	return out
}

// Sparkline renders a single-line ASCII sparkline for the values.
func Sparkline(values []float64) string {
	if len(values) == 0 {
		return ""
	}
	lo, hi := values[0], values[0]
	for _, v := range values[1:] {
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	if math.Abs(hi-lo) < 1e-9 {
		return strings.Repeat(string(sparkChars[len(sparkChars)/2]), len(values))
	}
	var b strings.Builder
	for _, v := range values {
		idx := int(math.Round((v - lo) / (hi - lo) * float64(len(sparkChars)-1)))
		b.WriteByte(sparkChars[idx])
	}
	return b.String()
}

// RenderSummary prints the aggregate decode counters.
func RenderSummary(w io.Writer, sum store.Summary) error {
	if sum.Total == 0 {
		_, err := fmt.Fprintln(w, "No decodes recorded.")
		return err
	}
	fallbackRate := 0.0
	if sum.SwipeTypes > 0 {
		fallbackRate = float64(sum.Fallbacks) / float64(sum.SwipeTypes)
	}
	lines := []string{
		"Summary",
		fmt.Sprintf("Gestures: %d", sum.Total),
		fmt.Sprintf("Swipe-typed words: %d", sum.SwipeTypes),
		fmt.Sprintf("Taps: %d", sum.Taps),
		fmt.Sprintf("Cancelled: %d", sum.Cancelled),
		fmt.Sprintf("Fallback rate: %.1f%%", fallbackRate*100),
		fmt.Sprintf("Mean ranking latency: %.1f ms", sum.MeanLatencyMs),
		"",
	}
	_, err := fmt.Fprint(w, strings.Join(lines, "\n"))
	return err
}

// RenderLatencyCurve plots ranking latency per swipe decode, smoothed by
// the moving-average window.
func RenderLatencyCurve(w io.Writer, records []model.DecodeRecord, window, totalWidth, height int, useColor bool) error {
	var latencies []float64
	for _, rec := range records {
		if rec.Kind != model.GestureSwipeType {
			continue
		}
		latencies = append(latencies, float64(rec.LatencyMs))
	}
	if len(latencies) == 0 {
		return nil
	}
	width := 0
	if totalWidth > 0 {
		width = WidthFor(totalWidth)
	}
	return Plot(w, "Ranking latency (ms)", []Series{
		{Name: "latency", Values: MovingAverage(latencies, window)},
	}, width, height, useColor)
}

// RenderWeakKeys prints per-key crossing quality, worst keys first.
func RenderWeakKeys(w io.Writer, keys []model.KeyStat) error {
	if len(keys) == 0 {
		_, err := fmt.Fprintln(w, "No key stats recorded.")
		return err
	}
	if _, err := fmt.Fprintln(w, "Per-Key Crossings"); err != nil {
		return err
	}
	headers := []string{"Key", "Crossings", "Discarded", "Discard %", "Avg Dwell (ms)", "Avg Confidence"}
	rows := make([][]string, 0, len(keys))
	for _, ks := range keys {
		total := ks.Crossings + ks.Discarded
		share := 0.0
		if total > 0 {
			share = float64(ks.Discarded) / float64(total)
		}
		label := ks.Key
		if label == " " {
			label = "<space>"
		}
		rows = append(rows, []string{
			label,
			fmt.Sprintf("%d", ks.Crossings),
			fmt.Sprintf("%d", ks.Discarded),
			fmt.Sprintf("%.1f%%", share*100),
			fmt.Sprintf("%.1f", ks.MeanDwell),
			fmt.Sprintf("%.2f", ks.MeanScore),
		})
	}
	rightAlign := map[int]bool{1: true, 2: true, 3: true, 4: true, 5: true}
	for _, line := range formatTable(headers, rows, rightAlign) {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintln(w, "")
	return err
}

// TopWords returns the most frequently decoded words, at most n of them.
func TopWords(records []model.DecodeRecord, n int) []string {
	if n <= 0 {
		return nil
	}
	counts := make(map[string]int)
	for _, rec := range records {
		if rec.Kind != model.GestureSwipeType || rec.TopWord == "" {
			continue
		}
		counts[rec.TopWord]++
	}
	words := make([]string, 0, len(counts))
	for word := range counts {
		words = append(words, word)
	}
	sort.Slice(words, func(i, j int) bool {
		if counts[words[i]] == counts[words[j]] {
			return words[i] < words[j]
		}
		return counts[words[i]] > counts[words[j]]
	})
	if n > len(words) {
		n = len(words)
	}
	return words[:n]
}
