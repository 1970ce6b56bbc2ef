package tracking

import (
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/drixpyyy/aimcore/pkg/detect"
	"github.com/drixpyyy/aimcore/pkg/geom"
)

// Sample is one time-stamped display-space position of an identity.
type Sample struct {
	Time time.Time
	Pos  geom.Point
}

// history is a bounded, time-ordered sample sequence for one identity.
type history struct {
	samples []Sample
}

func (h *history) last() (Sample, bool) {
	if len(h.samples) == 0 {
		return Sample{}, false
	}
	return h.samples[len(h.samples)-1], true
}

// append adds a sample keeping time order non-decreasing and the length
// within cap. Out-of-order samples are dropped; equal timestamps are kept.
func (h *history) append(s Sample, cap int) {
	if last, ok := h.last(); ok && s.Time.Before(last.Time) {
		return
	}
	h.samples = append(h.samples, s)
	if cap > 0 && len(h.samples) > cap {
		h.samples = h.samples[len(h.samples)-cap:]
	}
}

// Registry holds the latest candidate snapshot and the per-identity
// position histories used for velocity estimation. The scheduler is the
// single writer; the driver reads atomically published snapshots plus
// mutex-guarded history copies, so a tick sees a history before or after
// an ingest, never mid-append.
type Registry struct {
	mu        sync.Mutex
	histories map[string]*history

	current atomic.Pointer[Snapshot]
	version atomic.Uint64
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		histories: make(map[string]*history),
	}
}

// Ingest folds raw detections into the candidate list for one cycle:
// filters by class and score, scales to video space, computes distance
// and visibility, binds identities, updates histories and publishes the
// sorted snapshot. Returns the published candidates.
func (r *Registry) Ingest(dets []detect.Detection, fc FrameContext, cfg Config, probe VisibilityProbe) []Target {
	if !fc.DetectorSize.Valid() || !fc.VideoSize.Valid() || !fc.Surface.Size().Valid() {
		return nil
	}

	sx := fc.VideoSize.W / fc.DetectorSize.W
	sy := fc.VideoSize.H / fc.DetectorSize.H

	var targets []Target
	for _, d := range detect.FilterClass(dets, cfg.Classes) {
		if d.Score < cfg.ConfidenceThreshold {
			continue
		}

		box := geom.Rect{X: d.Box.X * sx, Y: d.Box.Y * sy, W: d.Box.W * sx, H: d.Box.H * sy}
		if box.H <= 0 {
			continue
		}

		center := box.Center()
		screenCenter, ok := geom.ToDisplay(center, fc.VideoSize, fc.Surface)
		if !ok {
			continue
		}
		screenBox, _ := geom.ScaleRect(box, fc.VideoSize, fc.Surface)

		t := Target{
			Class:        d.Class,
			Score:        d.Score,
			Box:          box,
			Center:       center,
			ScreenBox:    screenBox,
			ScreenCenter: screenCenter,
			Distance:     cfg.DistanceReference / box.H,
			Visible:      probe == nil || probe.Visible(screenCenter),
			Seen:         fc.Captured,
		}

		// Only visible, in-range candidates enter the pool
		if !t.Visible || t.Distance > cfg.MaxDistance {
			continue
		}
		targets = append(targets, t)
	}

	r.mu.Lock()
	matches := r.bindIdentities(targets, cfg.MatchRadius)
	for i := range targets {
		targets[i].ID = matches[i].ID
		r.recordLocked(targets[i].ID, Sample{Time: fc.Captured, Pos: targets[i].ScreenCenter}, cfg.HistoryCap)
	}
	r.mu.Unlock()

	sortTargets(targets, cfg, fc.Surface)
	r.publish(targets, fc)
	return targets
}

// bindIdentities greedily matches candidates to existing histories by
// nearest last position within the gating radius. Each history binds at
// most once per cycle; the rest mint fresh identities. Caller holds mu.
func (r *Registry) bindIdentities(targets []Target, radius float64) []MatchResult {
	type tail struct {
		id  string
		pos geom.Point
	}
	var tails []tail
	for id, h := range r.histories {
		if last, ok := h.last(); ok {
			tails = append(tails, tail{id: id, pos: last.Pos})
		}
	}
	// Map iteration order is random; fix it so matching is deterministic
	sort.Slice(tails, func(i, j int) bool { return tails[i].id < tails[j].id })

	used := make(map[string]bool, len(tails))
	results := make([]MatchResult, len(targets))
	for i := range targets {
		bestID := ""
		bestDist := radius
		for _, tl := range tails {
			if used[tl.id] {
				continue
			}
			if d := tl.pos.Dist(targets[i].ScreenCenter); d <= bestDist {
				bestDist = d
				bestID = tl.id
			}
		}
		if bestID != "" {
			used[bestID] = true
			results[i] = MatchResult{ID: bestID}
			continue
		}
		results[i] = MatchResult{ID: uuid.NewString()[:8], New: true}
	}
	return results
}

// RecordHistory appends a position sample for the identity, creating the
// sequence on first sight.
func (r *Registry) RecordHistory(id string, t time.Time, p geom.Point) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.recordLocked(id, Sample{Time: t, Pos: p}, 0)
}

func (r *Registry) recordLocked(id string, s Sample, cap int) {
	h, ok := r.histories[id]
	if !ok {
		h = &history{}
		r.histories[id] = h
	}
	h.append(s, cap)
}

// History returns a copy of the identity's samples, oldest first.
func (r *Registry) History(id string) []Sample {
	r.mu.Lock()
	defer r.mu.Unlock()
	h, ok := r.histories[id]
	if !ok {
		return nil
	}
	out := make([]Sample, len(h.samples))
	copy(out, h.samples)
	return out
}

// PruneExpired removes identities whose newest sample is older than the
// expiry window. Returns the number removed.
func (r *Registry) PruneExpired(now time.Time, expiry time.Duration) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	removed := 0
	for id, h := range r.histories {
		last, ok := h.last()
		if !ok || now.Sub(last.Time) > expiry {
			delete(r.histories, id)
			removed++
		}
	}
	return removed
}

// Latest returns the most recently published snapshot, or nil before the
// first cycle completes.
func (r *Registry) Latest() *Snapshot {
	return r.current.Load()
}

// publish atomically replaces the current snapshot.
func (r *Registry) publish(targets []Target, fc FrameContext) {
	r.current.Store(&Snapshot{
		Version: r.version.Add(1),
		Time:    fc.Captured,
		Surface: fc.Surface,
		Targets: targets,
	})
}

// sortTargets orders candidates per the active policy. The sort is
// stable: ties keep input order.
func sortTargets(targets []Target, cfg Config, surface geom.Rect) {
	switch cfg.Policy {
	case PolicyCrosshair:
		origin := cfg.aimOrigin(surface)
		sort.SliceStable(targets, func(i, j int) bool {
			return targets[i].ScreenCenter.Dist(origin) < targets[j].ScreenCenter.Dist(origin)
		})
	default:
		sort.SliceStable(targets, func(i, j int) bool {
			return targets[i].Distance < targets[j].Distance
		})
	}
}
