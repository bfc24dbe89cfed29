package appointment

import "time"

// The bookable day is a fixed grid of 30-minute slots with a lunch gap.
// This is process-wide configuration: it is not persisted and does not vary
// per doctor or per sede.
const (
	SlotInterval = 30 * time.Minute

	morningStart   = "08:00"
	morningEnd     = "11:00"
	afternoonStart = "14:00"
	afternoonEnd   = "16:00"
)

const (
	dateLayout     = "2006-01-02"
	slotLayout     = "15:04"
	slotSecsLayout = "15:04:05"
)

var dailySlots = buildGrid()

func buildGrid() []string {
	grid := appendRange(nil, morningStart, morningEnd)
	return appendRange(grid, afternoonStart, afternoonEnd)
}

// appendRange adds every slot from start to end inclusive, stepping by
// SlotInterval.
func appendRange(grid []string, start, end string) []string {
	from, _ := time.Parse(slotLayout, start)
	to, _ := time.Parse(slotLayout, end)
	for t := from; !t.After(to); t = t.Add(SlotInterval) {
		grid = append(grid, t.Format(slotLayout))
	}
	return grid
}

// DailySlots returns the full ordered slot grid for any bookable day.
func DailySlots() []string {
	out := make([]string, len(dailySlots))
	copy(out, dailySlots)
	return out
}

// IsBookableSlot reports whether t (already normalized to HH:MM) is one of
// the grid values.
func IsBookableSlot(t string) bool {
	for _, s := range dailySlots {
		if s == t {
			return true
		}
	}
	return false
}

// NormalizeTime coerces HH:MM or HH:MM:SS to HH:MM, truncating any seconds.
// Stored times historically carried seconds; comparisons are always done on
// the truncated form.
func NormalizeTime(raw string) (string, error) {
	if t, err := time.Parse(slotLayout, raw); err == nil {
		return t.Format(slotLayout), nil
	}
	if t, err := time.Parse(slotSecsLayout, raw); err == nil {
		return t.Format(slotLayout), nil
	}
	return "", ErrInvalidSlot
}

// NormalizeDate coerces a date or date-like timestamp to YYYY-MM-DD.
func NormalizeDate(raw string) (string, error) {
	if d, err := time.Parse(dateLayout, raw); err == nil {
		return d.Format(dateLayout), nil
	}
	if d, err := time.Parse(time.RFC3339, raw); err == nil {
		return d.Format(dateLayout), nil
	}
	return "", ErrInvalidDate
}

// IsSunday reports whether the normalized date falls on a Sunday. Sundays
// carry no bookable slots.
func IsSunday(date string) bool {
	d, err := time.Parse(dateLayout, date)
	if err != nil {
		return false
	}
	return d.Weekday() == time.Sunday
}

// FreeSlots returns the daily grid minus the occupied times, preserving grid
// order. Occupied entries are normalized before comparison; values outside
// the grid are ignored.
func FreeSlots(occupied []string) []string {
	taken := make(map[string]struct{}, len(occupied))
	for _, t := range occupied {
		norm, err := NormalizeTime(t)
		if err != nil {
			continue
		}
		taken[norm] = struct{}{}
	}

	free := make([]string, 0, len(dailySlots))
	for _, s := range dailySlots {
		if _, ok := taken[s]; !ok {
			free = append(free, s)
		}
	}
	return free
}
