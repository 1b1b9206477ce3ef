package domain

import (
	"cmp"
	"slices"
)

// AlertBatch is the ranked result of one evaluation pass. Detailed events get
// an individual notification each; Overflow events are only summarised.
type AlertBatch struct {
	Detailed []Event
	Overflow []Event
}

// Len returns the total number of alerts in the batch.
func (b AlertBatch) Len() int {
	return len(b.Detailed) + len(b.Overflow)
}

// OverflowSummary returns the number of overflow events and the largest
// magnitude among them. Both are zero when there is no overflow.
func (b AlertBatch) OverflowSummary() (count int, maxMagnitude float64) {
	for i, e := range b.Overflow {
		if i == 0 || e.Magnitude > maxMagnitude {
			maxMagnitude = e.Magnitude
		}
	}
	return len(b.Overflow), maxMagnitude
}

// Rank orders alerts by magnitude, strongest first, keeping feed order among
// equal magnitudes, and splits the result at limit. The input slice is not
// modified. A negative limit is treated as zero.
func Rank(alerts []Event, limit int) AlertBatch {
	sorted := slices.Clone(alerts)
	slices.SortStableFunc(sorted, func(a, b Event) int {
		return cmp.Compare(b.Magnitude, a.Magnitude)
	})

	limit = max(limit, 0)
	if len(sorted) <= limit {
		return AlertBatch{Detailed: sorted}
	}
	return AlertBatch{
		Detailed: sorted[:limit:limit],
		Overflow: sorted[limit:],
	}
}
