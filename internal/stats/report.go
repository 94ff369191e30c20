package stats

import (
	"context"
	"io"

	"github.com/verte-zerg/gliss/internal/model"
	"github.com/verte-zerg/gliss/internal/store"
)

// Report bundles the data one stats invocation renders.
type Report struct {
	Summary store.Summary
	Records []model.DecodeRecord
	Weak    []model.KeyStat
}

// Options controls report rendering.
type Options struct {
	CurveWindow int
	TotalWidth  int
	PlotHeight  int
	UseColor    bool
}

// BuildReport loads everything the stats report needs from the store.
// weakWindow bounds the per-key aggregation to the most recent decodes.
func BuildReport(ctx context.Context, st *store.Store, f store.Filter, weakWindow int) (Report, error) {
	summary, err := st.Summarize(ctx, f)
	if err != nil {
		return Report{}, err
	}
	records, err := st.ListDecodes(ctx, f)
	if err != nil {
		return Report{}, err
	}
	weak, err := st.WeakKeys(ctx, weakWindow, f.Lang)
	if err != nil {
		return Report{}, err
	}
	return Report{Summary: summary, Records: records, Weak: weak}, nil
}

// Render writes the full report.
func (r Report) Render(w io.Writer, opts Options) error {
	if err := RenderSummary(w, r.Summary); err != nil {
		return err
	}
	if r.Summary.Total == 0 {
		return nil
	}
	if err := RenderLatencyCurve(w, r.Records, opts.CurveWindow, opts.TotalWidth, opts.PlotHeight, opts.UseColor); err != nil {
		return err
	}
	return RenderWeakKeys(w, r.Weak)
}
