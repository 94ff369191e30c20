// Package rank scores dictionary candidates against an observed swipe path.
package rank

import (
	"context"
	"math"
	"sort"
	"unicode/utf8"

	"github.com/antzucaro/matchr"

	"github.com/verte-zerg/gliss/internal/dict"
	"github.com/verte-zerg/gliss/internal/geom"
	"github.com/verte-zerg/gliss/internal/layout"
	"github.com/verte-zerg/gliss/internal/model"
	"github.com/verte-zerg/gliss/internal/tuning"
)

// fallbackScore is the score attached to the raw-sequence candidate when no
// dictionary word survives pruning. Low on purpose: the host renders it as
// a literal token, not a recognized word.
const fallbackScore = 0.05

// Ranker scores length-tolerant dictionary candidates anchored near the
// observed start and end keys. It is read-only after construction and safe
// to share across gestures for one layout/dictionary pair.
type Ranker struct {
	tun tuning.Tuning
	lay *layout.Layout
	d   *dict.Dictionary
}

// Candidate is a scored word with its component scores, for explain-style
// output. Total is the weighted combination used for ordering.
type Candidate struct {
	Word      string
	Shape     float64
	Location  float64
	Frequency float64
	Literal   float64
	Total     float64
	freq      uint32
}

// New returns a Ranker over one layout snapshot and dictionary.
func New(tun tuning.Tuning, lay *layout.Layout, d *dict.Dictionary) *Ranker {
	return &Ranker{tun: tun, lay: lay, d: d}
}

// Rank returns candidates sorted descending by score. The context cancels
// the scan between candidates; a cancelled ranking returns nil. Given
// identical inputs the ordered result is bit-identical across calls.
//
// Failure policy: an empty dictionary or an empty pruned pool yields the
// raw sequence itself as a single low-confidence fallback candidate, never
// an empty list, as long as the raw sequence is non-empty.
func (r *Ranker) Rank(ctx context.Context, raw string, path model.Path, crossings []model.KeyCrossing) []model.WordCandidate {
	detailed := r.RankDetailed(ctx, raw, path, crossings)
	out := make([]model.WordCandidate, 0, len(detailed))
	for _, c := range detailed {
		out = append(out, model.WordCandidate{Word: c.Word, Score: c.Total})
	}
	if len(out) == 0 && raw != "" && ctx.Err() == nil {
		out = append(out, model.WordCandidate{Word: raw, Score: fallbackScore, Fallback: true})
	}
	return out
}

// RankDetailed is Rank with per-component scores, without the fallback.
func (r *Ranker) RankDetailed(ctx context.Context, raw string, path model.Path, crossings []model.KeyCrossing) []Candidate {
	if raw == "" || len(path) < 2 {
		return nil
	}
	pool := r.prune(raw, path)
	if len(pool) == 0 {
		return nil
	}

	observed := make([]geom.Point, len(path))
	for i, p := range path {
		observed[i] = p.Pos()
	}
	observed = resample(observed, r.tun.ResamplePoints)
	peaks := crossingPeaks(crossings)
	keyWidth := r.lay.AverageKeyWidth()

	var maxLogFreq float64
	for _, e := range pool {
		if lf := math.Log(float64(e.Frequency) + 1); lf > maxLogFreq {
			maxLogFreq = lf
		}
	}

	candidates := make([]Candidate, 0, len(pool))
	for _, e := range pool {
		if ctx.Err() != nil {
			return nil
		}
		ideal := r.lay.IdealPath(e.Word)
		if len(ideal) == 0 {
			continue
		}
		c := Candidate{Word: e.Word, freq: e.Frequency}
		c.Shape = r.shapeScore(observed, ideal, keyWidth)
		c.Location = r.locationScore(peaks, observed, ideal, keyWidth)
		if maxLogFreq > 0 {
			c.Frequency = math.Log(float64(e.Frequency)+1) / maxLogFreq
		}
		c.Literal = literalMatch(raw, e.Word)
		c.Total = r.tun.ShapeWeight*c.Shape +
			r.tun.LocationWeight*c.Location +
			r.tun.FrequencyWeight*c.Frequency +
			r.tun.LiteralBonusWeight*c.Literal
		if r.tun.VelocityConsistencyWeight > 0 {
			c.Total += r.tun.VelocityConsistencyWeight * velocityConsistency(path)
		}
		candidates = append(candidates, c)
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].Total != candidates[j].Total {
			return candidates[i].Total > candidates[j].Total
		}
		if candidates[i].freq != candidates[j].freq {
			return candidates[i].freq > candidates[j].freq
		}
		return candidates[i].Word < candidates[j].Word
	})
	return candidates
}

// prune selects words whose length sits inside the tolerance band around
// the raw sequence length and whose first and last letters are among the
// nearest character keys to the path's endpoints. The surviving pool is
// capped at the highest-frequency entries to hold the latency budget.
func (r *Ranker) prune(raw string, path model.Path) []model.DictionaryEntry {
	rawLen := utf8.RuneCountInString(raw)
	minLen := int(math.Floor(float64(rawLen) * (1 - r.tun.LengthTolerance)))
	maxLen := int(math.Ceil(float64(rawLen) * (1 + r.tun.LengthTolerance)))
	if minLen < 1 {
		minLen = 1
	}

	startKeys := r.lay.NearestCharacterKeys(path[0].Pos(), r.tun.AnchorKeys)
	endKeys := r.lay.NearestCharacterKeys(path[len(path)-1].Pos(), r.tun.AnchorKeys)
	endSet := make(map[string]struct{}, len(endKeys))
	for _, k := range endKeys {
		endSet[k.Label] = struct{}{}
	}

	var pool []model.DictionaryEntry
	for _, k := range startKeys {
		for _, e := range r.d.WithFirstLetter(k.Label) {
			n := utf8.RuneCountInString(e.Word)
			if n < minLen || n > maxLen {
				continue
			}
			last, _ := utf8.DecodeLastRuneInString(e.Word)
			if _, ok := endSet[string(last)]; !ok {
				continue
			}
			pool = append(pool, e)
		}
	}

	if len(pool) > r.tun.MaxCandidates {
		sort.SliceStable(pool, func(i, j int) bool {
			if pool[i].Frequency != pool[j].Frequency {
				return pool[i].Frequency > pool[j].Frequency
			}
			return pool[i].Word < pool[j].Word
		})
		pool = pool[:r.tun.MaxCandidates]
	}
	return pool
}

// shapeScore resamples the ideal path to the same point count as the
// observed one and converts mean point-to-point distance, in key widths,
// into a similarity.
func (r *Ranker) shapeScore(observed, ideal []geom.Point, keyWidth float64) float64 {
	idealR := resample(ideal, r.tun.ResamplePoints)
	dist := meanPointDistance(observed, idealR) / keyWidth
	return math.Exp(-r.tun.ShapeDecay * dist)
}

// locationScore aligns the candidate's expected letter positions against
// the observed key-probability peaks (crossing entry points). DTW absorbs
// the count mismatch between letters and peaks. When no peaks survived
// noise filtering it falls back to the resampled path.
func (r *Ranker) locationScore(peaks, observed, ideal []geom.Point, keyWidth float64) float64 {
	ref := peaks
	if len(ref) == 0 {
		ref = observed
	}
	dist := dtwDistance(ideal, ref)
	if math.IsInf(dist, 1) {
		return 0
	}
	return math.Exp(-r.tun.LocationDecay * dist / keyWidth)
}

func crossingPeaks(crossings []model.KeyCrossing) []geom.Point {
	out := make([]geom.Point, 0, len(crossings))
	for _, c := range crossings {
		out = append(out, c.EntryPoint.Pos())
	}
	return out
}

// literalMatch is the Levenshtein similarity ratio between the candidate
// and the raw key sequence.
func literalMatch(raw, word string) float64 {
	longer := utf8.RuneCountInString(raw)
	if n := utf8.RuneCountInString(word); n > longer {
		longer = n
	}
	if longer == 0 {
		return 0
	}
	d := matchr.Levenshtein(raw, word)
	sim := 1 - float64(d)/float64(longer)
	if sim < 0 {
		return 0
	}
	return sim
}

// velocityConsistency measures how steady the swipe speed was, as one
// minus the coefficient of variation of inter-sample speeds, clamped to
// [0, 1]. Experimental; weighted zero by default.
func velocityConsistency(path model.Path) float64 {
	var speeds []float64
	for i := 1; i < len(path); i++ {
		dt := path[i].T - path[i-1].T
		if dt == 0 {
			continue
		}
		speeds = append(speeds, path[i].Pos().Distance(path[i-1].Pos())/float64(dt))
	}
	if len(speeds) < 2 {
		return 0
	}
	var sum float64
	for _, s := range speeds {
		sum += s
	}
	mean := sum / float64(len(speeds))
	if mean == 0 {
		return 0
	}
	var varSum float64
	for _, s := range speeds {
		varSum += (s - mean) * (s - mean)
	}
	cv := math.Sqrt(varSum/float64(len(speeds))) / mean
	consistency := 1 - cv
	if consistency < 0 {
		return 0
	}
	if consistency > 1 {
		return 1
	}
	return consistency
}
