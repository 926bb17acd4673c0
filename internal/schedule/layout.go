package schedule

import (
	"sort"
	"time"
)

// Positioned is an occurrence with its computed time-grid coordinates for
// one room-day. Horizontal placement is expressed in percent so the
// consumer can scale to any container width.
type Positioned struct {
	Occurrence
	Column       int     `json:"column"`
	TotalColumns int     `json:"total_columns"`
	LeftPercent  float64 `json:"left_percent"`
	WidthPercent float64 `json:"width_percent"`
	Top          float64 `json:"top"`
	Height       float64 `json:"height"`
}

// layoutColumn tracks the occupancy of one visual column during packing.
type layoutColumn struct {
	lastEnd  time.Time
	aggStart time.Time
	aggEnd   time.Time
}

// Layout packs a single room-day's occurrences into non-colliding visual
// columns using greedy interval-graph coloring:
//
//  1. Sort by start time, longer duration first on ties.
//  2. Place each occurrence into the first column whose last end is at or
//     before its start; open a new column when none fits.
//  3. Width is 100 divided by the number of columns whose occupied range
//     overlaps the occurrence; left offset is column index times width.
//
// Top and Height are derived from the grid origin and pixels-per-minute
// scale, with Height clamped to minHeightPx. Occurrences whose ranges
// intersect are guaranteed disjoint [left, left+width) bands.
func Layout(occurrences []Occurrence, gridOriginMinute int, pixelsPerMinute, minHeightPx float64) []Positioned {
	if len(occurrences) == 0 {
		return nil
	}

	sorted := make([]Occurrence, len(occurrences))
	copy(sorted, occurrences)
	sort.SliceStable(sorted, func(i, j int) bool {
		if !sorted[i].StartsAt.Equal(sorted[j].StartsAt) {
			return sorted[i].StartsAt.Before(sorted[j].StartsAt)
		}
		return sorted[i].EndsAt.Sub(sorted[i].StartsAt) > sorted[j].EndsAt.Sub(sorted[j].StartsAt)
	})

	var columns []layoutColumn
	assigned := make([]int, len(sorted))

	for i, occ := range sorted {
		placed := -1
		for ci := range columns {
			if !columns[ci].lastEnd.After(occ.StartsAt) {
				placed = ci
				break
			}
		}
		if placed == -1 {
			columns = append(columns, layoutColumn{aggStart: occ.StartsAt})
			placed = len(columns) - 1
		}

		col := &columns[placed]
		col.lastEnd = occ.EndsAt
		if occ.StartsAt.Before(col.aggStart) {
			col.aggStart = occ.StartsAt
		}
		if occ.EndsAt.After(col.aggEnd) {
			col.aggEnd = occ.EndsAt
		}
		assigned[i] = placed
	}

	out := make([]Positioned, len(sorted))
	for i, occ := range sorted {
		overlapping := 0
		for _, col := range columns {
			if col.aggStart.Before(occ.EndsAt) && occ.StartsAt.Before(col.aggEnd) {
				overlapping++
			}
		}
		if overlapping == 0 {
			overlapping = 1
		}

		width := 100.0 / float64(overlapping)
		startMinute := occ.StartsAt.Hour()*60 + occ.StartsAt.Minute()
		durationMinutes := occ.EndsAt.Sub(occ.StartsAt).Minutes()

		height := durationMinutes * pixelsPerMinute
		if height < minHeightPx {
			height = minHeightPx
		}

		out[i] = Positioned{
			Occurrence:   occ,
			Column:       assigned[i],
			TotalColumns: overlapping,
			LeftPercent:  float64(assigned[i]) * width,
			WidthPercent: width,
			Top:          float64(startMinute-gridOriginMinute) * pixelsPerMinute,
			Height:       height,
		}
	}
	return out
}
