package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/verte-zerg/gliss/internal/model"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "history", "gliss.db"))
	if err != nil {
		t.Fatalf("failed to open store: %v", err)
	}
	t.Cleanup(func() {
		if err := s.Close(); err != nil {
			t.Errorf("failed to close store: %v", err)
		}
	})
	return s
}

func TestInsertAndListDecodes(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	recs := []model.DecodeRecord{
		{At: 1000, Layout: "qwerty", Lang: "en", Kind: model.GestureSwipeType, RawSequence: "tes", TopWord: "test", CandidateCnt: 4, LatencyMs: 12},
		{At: 2000, Layout: "qwerty", Lang: "en", Kind: model.GestureTap, TopWord: "a", CandidateCnt: 0, LatencyMs: 0},
		{At: 3000, Layout: "qwerty", Lang: "kn", Kind: model.GestureSwipeType, RawSequence: "xy", TopWord: "xy", CandidateCnt: 1, LatencyMs: 5, Fallback: true},
	}
	for _, rec := range recs {
		if _, err := s.InsertDecode(ctx, rec, nil); err != nil {
			t.Fatalf("failed to insert: %v", err)
		}
	}

	all, err := s.ListDecodes(ctx, Filter{})
	if err != nil {
		t.Fatalf("failed to list: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("expected 3 records, got %d", len(all))
	}
	if all[0].TopWord != "test" || all[0].Kind != model.GestureSwipeType {
		t.Fatalf("first record mangled: %+v", all[0])
	}
	if !all[2].Fallback {
		t.Fatalf("fallback flag lost: %+v", all[2])
	}

	en, err := s.ListDecodes(ctx, Filter{Lang: "en"})
	if err != nil {
		t.Fatalf("failed to list by lang: %v", err)
	}
	if len(en) != 2 {
		t.Fatalf("expected 2 en records, got %d", len(en))
	}

	since := time.UnixMilli(2500)
	late, err := s.ListDecodes(ctx, Filter{Since: &since})
	if err != nil {
		t.Fatalf("failed to list since: %v", err)
	}
	if len(late) != 1 || late[0].At != 3000 {
		t.Fatalf("since filter wrong: %+v", late)
	}
}

func TestSummarize(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	recs := []model.DecodeRecord{
		{At: 1, Layout: "qwerty", Lang: "en", Kind: model.GestureSwipeType, LatencyMs: 10},
		{At: 2, Layout: "qwerty", Lang: "en", Kind: model.GestureSwipeType, LatencyMs: 30, Fallback: true},
		{At: 3, Layout: "qwerty", Lang: "en", Kind: model.GestureTap},
		{At: 4, Layout: "qwerty", Lang: "en", Kind: model.GestureCancelled},
	}
	for _, rec := range recs {
		if _, err := s.InsertDecode(ctx, rec, nil); err != nil {
			t.Fatalf("failed to insert: %v", err)
		}
	}

	sum, err := s.Summarize(ctx, Filter{Lang: "en"})
	if err != nil {
		t.Fatalf("failed to summarize: %v", err)
	}
	if sum.Total != 4 || sum.SwipeTypes != 2 || sum.Taps != 1 || sum.Cancelled != 1 || sum.Fallbacks != 1 {
		t.Fatalf("wrong summary: %+v", sum)
	}
	if sum.MeanLatencyMs != 10 {
		t.Fatalf("expected mean latency 10, got %v", sum.MeanLatencyMs)
	}
}

func TestWeakKeysAggregation(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	first := []model.KeyStat{
		{Key: "e", Crossings: 2, Discarded: 1, MeanDwell: 30, MeanScore: 0.5},
		{Key: "t", Crossings: 1, Discarded: 0, MeanDwell: 40, MeanScore: 0.9},
	}
	second := []model.KeyStat{
		{Key: "e", Crossings: 2, Discarded: 0, MeanDwell: 50, MeanScore: 0.7},
	}
	if _, err := s.InsertDecode(ctx, model.DecodeRecord{At: 1, Layout: "qwerty", Lang: "en", Kind: model.GestureSwipeType}, first); err != nil {
		t.Fatalf("failed to insert: %v", err)
	}
	if _, err := s.InsertDecode(ctx, model.DecodeRecord{At: 2, Layout: "qwerty", Lang: "en", Kind: model.GestureSwipeType}, second); err != nil {
		t.Fatalf("failed to insert: %v", err)
	}

	keys, err := s.WeakKeys(ctx, 10, "en")
	if err != nil {
		t.Fatalf("failed to aggregate: %v", err)
	}
	if len(keys) != 2 {
		t.Fatalf("expected 2 keys, got %d", len(keys))
	}
	// e had a discard, so it sorts first.
	if keys[0].Key != "e" {
		t.Fatalf("expected e first, got %q", keys[0].Key)
	}
	if keys[0].Crossings != 4 || keys[0].Discarded != 1 {
		t.Fatalf("wrong e aggregate: %+v", keys[0])
	}
	if got := keys[0].MeanDwell; got != 40 {
		t.Fatalf("expected mean dwell 40, got %v", got)
	}

	none, err := s.WeakKeys(ctx, 0, "en")
	if err != nil || none != nil {
		t.Fatalf("zero window must return nothing, got %v, %v", none, err)
	}
}
