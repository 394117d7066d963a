package window

import (
	"errors"
	"time"
)

var (
	ErrInvalidRange = errors.New("invalid time range")
	ErrSlotDuration = errors.New("slot duration must be positive")
)

// TimeRange is a half-open interval [Start, End). Gate admission uses the
// inclusive-end check (Covers); everything else treats End as exclusive.
type TimeRange struct {
	Start time.Time
	End   time.Time
}

// Normalize swaps mixed-up bounds, converts into loc if given, and caps
// the range at maxDuration when maxDuration > 0.
func Normalize(start, end time.Time, loc *time.Location, maxDuration time.Duration) (TimeRange, error) {
	if start.IsZero() || end.IsZero() {
		return TimeRange{}, ErrInvalidRange
	}

	if end.Before(start) {
		start, end = end, start
	}

	if loc != nil {
		start = start.In(loc)
		end = end.In(loc)
	}

	if maxDuration > 0 && end.Sub(start) > maxDuration {
		end = start.Add(maxDuration)
	}

	if !end.After(start) {
		return TimeRange{}, ErrInvalidRange
	}

	return TimeRange{Start: start, End: end}, nil
}

// Covers reports whether t falls inside the range, end inclusive. This is
// the gate-scan semantics: a truck arriving exactly at the window end is
// still admitted.
func (tr TimeRange) Covers(t time.Time) bool {
	return !t.Before(tr.Start) && !t.After(tr.End)
}

// Overlaps checks two half-open ranges for intersection.
func (tr TimeRange) Overlaps(other TimeRange) bool {
	return tr.Start.Before(other.End) && other.Start.Before(tr.End)
}

// Split cuts tr into consecutive slots of slotDuration. alignMinutes > 0
// rounds the first slot start up to the next multiple of alignMinutes; a
// tail shorter than slotDuration is dropped.
func Split(tr TimeRange, slotDuration time.Duration, alignMinutes int) ([]TimeRange, error) {
	if slotDuration <= 0 {
		return nil, ErrSlotDuration
	}
	if !tr.End.After(tr.Start) {
		return []TimeRange{}, nil
	}

	start := tr.Start
	if alignMinutes > 0 {
		min := start.Minute()
		if rem := min % alignMinutes; rem != 0 {
			start = time.Date(
				start.Year(), start.Month(), start.Day(),
				start.Hour(), min+(alignMinutes-rem), 0, 0,
				start.Location(),
			)
			if !start.Before(tr.End) {
				return []TimeRange{}, nil
			}
		}
	}

	var slots []TimeRange
	for cur := start; !cur.Add(slotDuration).After(tr.End); cur = cur.Add(slotDuration) {
		slots = append(slots, TimeRange{Start: cur, End: cur.Add(slotDuration)})
	}

	return slots, nil
}
