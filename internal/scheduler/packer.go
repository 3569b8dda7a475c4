package scheduler

import (
	"fmt"
	"sort"

	"github.com/julianstephens/termplan/internal/models"
)

// slotPool tracks which discovered slots are still unclaimed.
type slotPool struct {
	days    [][]TimeSlot
	claimed [][]bool
}

func newSlotPool(days [][]TimeSlot) *slotPool {
	claimed := make([][]bool, len(days))
	for i, d := range days {
		claimed[i] = make([]bool, len(d))
	}
	return &slotPool{days: days, claimed: claimed}
}

// earliestRun finds the first n contiguous unclaimed slots on day. It returns
// the index of the first slot, or -1.
func (p *slotPool) earliestRun(day, n int) int {
	slots := p.days[day]
	length := 0
	for i := range slots {
		if p.claimed[day][i] {
			length = 0
			continue
		}
		if length > 0 && !slots[i].Start.Equal(slots[i-1].End) {
			length = 0
		}
		length++
		if length == n {
			return i - n + 1
		}
	}
	return -1
}

// largestRun returns the start and length of the longest unclaimed run on
// day, preferring the earliest on ties.
func (p *slotPool) largestRun(day int) (int, int) {
	slots := p.days[day]
	bestStart, bestLen := -1, 0
	start, length := 0, 0
	for i := range slots {
		if p.claimed[day][i] {
			length = 0
			continue
		}
		if length == 0 || !slots[i].Start.Equal(slots[i-1].End) {
			start, length = i, 0
		}
		length++
		if length > bestLen {
			bestStart, bestLen = start, length
		}
	}
	return bestStart, bestLen
}

func (p *slotPool) claim(day, start, n int) []TimeSlot {
	for i := start; i < start+n; i++ {
		p.claimed[day][i] = true
	}
	return p.days[day][start : start+n]
}

// piece is one same-day run chosen for a task.
type piece struct {
	day   int
	start int
	n     int
}

// Pack places scored tasks into the free slots, earliest valid run first.
// freeSlotsByDay may extend past the horizon; those days are only consulted
// to tell "horizon exceeded" apart from "insufficient contiguous slots".
// Every task receives exactly one terminal entry in log.
func Pack(scored []ScoredTask, freeSlotsByDay [][]TimeSlot, locked []models.FixedInterval, cfg Config, log *Log) ([]models.ScheduledBlock, []models.OverflowEntry, error) {
	horizon := cfg.Weights.HorizonDays
	if horizon > len(freeSlotsByDay) {
		horizon = len(freeSlotsByDay)
	}
	pool := newSlotPool(freeSlotsByDay)

	order := rankCandidates(scored, freeSlotsByDay[:horizon], cfg)

	var blocks []models.ScheduledBlock
	var overflow []models.OverflowEntry
	for _, c := range order {
		st := c.task
		energy := st.Task.Energy.Value()
		n := cfg.SlotsNeeded(st.Task.EstimatedMin)

		var pieces []piece
		for day := 0; day < horizon; day++ {
			if start := pool.earliestRun(day, n); start >= 0 {
				pieces = []piece{{day: day, start: start, n: n}}
				break
			}
		}
		if pieces == nil && cfg.Weights.AllowCrossDaySplit {
			pieces = splitAcrossDays(pool, horizon, n)
		}
		if pieces != nil && overlapsLocked(pool, pieces, locked) {
			pieces = nil
		}

		if pieces == nil {
			reason := models.ReasonInsufficientSlots
			for day := horizon; day < len(freeSlotsByDay); day++ {
				if pool.earliestRun(day, n) >= 0 {
					reason = models.ReasonHorizonExceeded
					break
				}
			}
			overflow = append(overflow, models.OverflowEntry{TaskID: st.Task.ID, Reason: reason})
			if err := log.Record(st.Task.ID, models.DecisionOverflowed, nil, c.score, string(reason)); err != nil {
				return nil, nil, err
			}
			continue
		}

		var all []TimeSlot
		var ranges []models.SlotRange
		for _, pc := range pieces {
			run := pool.claim(pc.day, pc.start, pc.n)
			all = append(all, run...)
			blocks = append(blocks, models.ScheduledBlock{
				TaskID:    st.Task.ID,
				Start:     run[0].Start,
				End:       run[len(run)-1].End,
				SlotCount: pc.n,
				Score:     PlacementScore(st.Index, meanMatch(energy, run), cfg),
			})
			ranges = append(ranges, models.SlotRange{Start: run[0].Start, End: run[len(run)-1].End})
		}

		score := PlacementScore(st.Index, meanMatch(energy, all), cfg)
		if err := log.Record(st.Task.ID, models.DecisionPlaced, ranges, score, placedReason(st, pieces)); err != nil {
			return nil, nil, err
		}
	}

	sortBlocks(blocks)
	return blocks, overflow, nil
}

type candidate struct {
	task  ScoredTask
	score float64
}

// rankCandidates orders tasks by schedule index, then placement score, due
// date, estimated minutes and creation order. Energy only enters through the
// placement score, so it can break an urgency tie but never reverse one.
func rankCandidates(scored []ScoredTask, pool [][]TimeSlot, cfg Config) []candidate {
	out := make([]candidate, len(scored))
	for i, st := range scored {
		match := bestMatch(st.Task.Energy.Value(), pool)
		out[i] = candidate{task: st, score: PlacementScore(st.Index, match, cfg)}
	}

	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.task.Index != b.task.Index {
			return a.task.Index > b.task.Index
		}
		if a.score != b.score {
			return a.score > b.score
		}
		if a.task.HasDue != b.task.HasDue {
			return a.task.HasDue
		}
		if a.task.HasDue && !a.task.Due.Equal(b.task.Due) {
			return a.task.Due.Before(b.task.Due)
		}
		if a.task.Task.EstimatedMin != b.task.Task.EstimatedMin {
			return a.task.Task.EstimatedMin > b.task.Task.EstimatedMin
		}
		if !a.task.Task.CreatedAt.Equal(b.task.Task.CreatedAt) {
			return a.task.Task.CreatedAt.Before(b.task.Task.CreatedAt)
		}
		return a.task.Order < b.task.Order
	})
	return out
}

// splitAcrossDays takes the largest unclaimed run of each successive day until
// n slots are covered. Nothing is claimed here; nil means the task cannot be
// covered inside the horizon.
func splitAcrossDays(pool *slotPool, horizon, n int) []piece {
	var pieces []piece
	remaining := n
	for day := 0; day < horizon && remaining > 0; day++ {
		start, length := pool.largestRun(day)
		if length == 0 {
			continue
		}
		if length > remaining {
			length = remaining
		}
		pieces = append(pieces, piece{day: day, start: start, n: length})
		remaining -= length
	}
	if remaining > 0 {
		return nil
	}
	return pieces
}

// overlapsLocked is the last gate before claiming: no piece may touch a
// fixed interval even if the slot pool was built without it.
func overlapsLocked(pool *slotPool, pieces []piece, locked []models.FixedInterval) bool {
	for _, pc := range pieces {
		slots := pool.days[pc.day]
		if overlapsAny(locked, slots[pc.start].Start, slots[pc.start+pc.n-1].End) {
			return true
		}
	}
	return false
}

func placedReason(st ScoredTask, pieces []piece) string {
	f := st.Factors
	reason := fmt.Sprintf("earliest free run; index %.2f (priority %.1f, due %.2f, category %.1f)",
		st.Index, f.Priority, f.Due, f.Category)
	if f.Overdue {
		reason += ", overdue"
	}
	if len(pieces) > 1 {
		reason = fmt.Sprintf("split across %d days; ", len(pieces)) + reason
	}
	return reason
}

func sortBlocks(blocks []models.ScheduledBlock) {
	sort.SliceStable(blocks, func(i, j int) bool {
		if !blocks[i].Start.Equal(blocks[j].Start) {
			return blocks[i].Start.Before(blocks[j].Start)
		}
		return blocks[i].TaskID < blocks[j].TaskID
	})
}
