// Package sequence reduces key crossings to an ordered key sequence.
package sequence

import (
	"strings"

	"github.com/verte-zerg/gliss/internal/model"
	"github.com/verte-zerg/gliss/internal/tuning"
)

// Build iterates crossings in entry-time order and produces the raw key
// sequence. A crossing's key is appended when it differs from the previous
// appended key, or when it repeats it after a deliberate time gap — that is
// what keeps doubled letters ("ll" in hello) while collapsing accidental
// lingering on one key into a single letter.
//
// The result may be empty when every crossing was filtered as noise.
func Build(tun tuning.Tuning, crossings []model.KeyCrossing) string {
	var b strings.Builder
	lastKey := ""
	var lastAppended uint64
	for _, c := range crossings {
		if c.Key == lastKey {
			if c.EntryTime < lastAppended+tun.RepeatGapMs {
				continue
			}
		}
		b.WriteString(c.Key)
		lastKey = c.Key
		lastAppended = c.EntryTime
	}
	return b.String()
}
