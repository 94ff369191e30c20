package hitbox

import (
	"log/slog"
	"sort"

	"github.com/verte-zerg/gliss/internal/layout"
	"github.com/verte-zerg/gliss/internal/model"
	"github.com/verte-zerg/gliss/internal/tuning"
)

// CrossingTracker converts the stream of per-sample key memberships into
// discrete key crossings in a single forward pass. Only character keys
// open crossings; control keys never decode to letters.
type CrossingTracker struct {
	tun    tuning.Tuning
	engine *Engine
	log    *slog.Logger
	chars  []model.KeyGeometry

	open      map[string]*openCrossing
	closed    []model.KeyCrossing
	discarded int
	lastTime  uint64
}

type openCrossing struct {
	key     model.KeyGeometry
	entry   model.PathPoint
	confSum float64
	samples int
}

// NewCrossingTracker returns a tracker for one gesture over one layout
// snapshot. A nil logger falls back to slog.Default().
func NewCrossingTracker(tun tuning.Tuning, lay *layout.Layout, engine *Engine, log *slog.Logger) *CrossingTracker {
	if log == nil {
		log = slog.Default()
	}
	return &CrossingTracker{
		tun:    tun,
		engine: engine,
		log:    log,
		chars:  lay.CharacterKeys(),
		open:   make(map[string]*openCrossing, 4),
	}
}

// Feed processes one kept path sample at the given instantaneous velocity.
// Keys newly above the acceptance threshold open a crossing; keys dropping
// below it close theirs.
func (c *CrossingTracker) Feed(p model.PathPoint, velocity float64) {
	c.lastTime = p.T
	pos := p.Pos()
	for _, key := range c.chars {
		conf := c.engine.Membership(pos, key, velocity)
		oc, isOpen := c.open[key.Label]
		switch {
		case c.engine.Inside(conf) && !isOpen:
			c.open[key.Label] = &openCrossing{key: key, entry: p, confSum: conf, samples: 1}
		case c.engine.Inside(conf) && isOpen:
			oc.confSum += conf
			oc.samples++
		case !c.engine.Inside(conf) && isOpen:
			c.close(oc, &p)
			delete(c.open, key.Label)
		}
	}
}

// Finish closes any still-open crossings with no exit point and returns all
// surviving crossings ordered by entry time.
func (c *CrossingTracker) Finish() []model.KeyCrossing {
	for label, oc := range c.open {
		c.close(oc, nil)
		delete(c.open, label)
	}
	sort.SliceStable(c.closed, func(i, j int) bool {
		return c.closed[i].EntryTime < c.closed[j].EntryTime
	})
	return c.closed
}

// Discarded reports how many crossings were rejected as noise.
func (c *CrossingTracker) Discarded() int { return c.discarded }

func (c *CrossingTracker) close(oc *openCrossing, exit *model.PathPoint) {
	exitTime := c.lastTime
	if exit != nil {
		exitTime = exit.T
	}
	var duration uint64
	if exitTime >= oc.entry.T {
		duration = exitTime - oc.entry.T
	} else {
		// Clock skew produced a negative interval; clamp rather than
		// propagate an error, this subsystem has no fatal states.
		c.log.Warn("clamping negative crossing duration",
			"key", oc.key.Label, "entry", oc.entry.T, "exit", exitTime)
	}
	meanConf := oc.confSum / float64(oc.samples)
	if duration < c.tun.MinDwellMs || meanConf < c.tun.MinMeanConfidence {
		c.discarded++
		return
	}
	c.closed = append(c.closed, model.KeyCrossing{
		Key:        oc.key.Label,
		EntryPoint: oc.entry,
		ExitPoint:  exit,
		EntryTime:  oc.entry.T,
		Duration:   duration,
		Confidence: meanConf,
	})
}
