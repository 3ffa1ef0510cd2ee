package availability

import (
	"fmt"
	"time"

	"petcare/models"
)

// ResolveSlots applies disabled times, past cut-off and capacity to the generated slots.
// now must already be in the business timezone.
func ResolveSlots(
	settings models.AvailabilitySettings,
	date time.Time,
	occupancy map[string]int,
	now time.Time,
) ([]models.SlotAvailability, error) {
	slots, err := GenerateSlots(settings, date)
	if err != nil {
		return nil, err
	}
	if len(slots) == 0 {
		return []models.SlotAvailability{}, nil
	}

	disabled, err := newDisabledSet(settings)
	if err != nil {
		return nil, err
	}

	// Slots at or before this minute are in the past; -1 means none are.
	cutoff := -1
	switch day, today := dateOnly(date), dateOnly(now); {
	case day.Before(today):
		cutoff = minutesPerDay
	case day.Equal(today):
		cutoff = now.Hour()*60 + now.Minute()
	}

	out := make([]models.SlotAvailability, 0, len(slots))
	for _, s := range slots {
		start, _ := parseClock(s.StartTime)
		remaining := settings.PerSlotCapacity - occupancy[s.StartTime]
		if remaining < 0 {
			remaining = 0
		}

		reason := models.SlotReasonAvailable
		switch {
		case disabled.contains(s.StartTime, start):
			reason = models.SlotReasonDisabled
		case start <= cutoff:
			reason = models.SlotReasonPast
		case remaining == 0:
			reason = models.SlotReasonFull
		}

		out = append(out, models.SlotAvailability{
			Time:              s.StartTime,
			EndTime:           s.EndTime,
			Period:            s.Period,
			IsAvailable:       reason == models.SlotReasonAvailable,
			RemainingCapacity: remaining,
			Reason:            reason,
		})
	}
	return out, nil
}

// SelectDate returns the first date from now (inclusive) within lookAheadDays whose weekday is open.
func SelectDate(settings models.AvailabilitySettings, now time.Time, lookAheadDays int) (string, bool) {
	day := dateOnly(now)
	for i := 0; i < lookAheadDays; i++ {
		candidate := day.AddDate(0, 0, i)
		if !IsClosed(settings, candidate) {
			return candidate.Format(models.DateLayout), true
		}
	}
	return "", false
}

type disabledSet struct {
	single map[string]struct{}
	ranges [][2]int
}

func newDisabledSet(settings models.AvailabilitySettings) (*disabledSet, error) {
	d := &disabledSet{single: make(map[string]struct{}, len(settings.DisabledSingleTimes))}
	for _, t := range settings.DisabledSingleTimes {
		d.single[t] = struct{}{}
	}
	for _, r := range settings.DisabledRanges {
		from, err := parseClock(r.Start)
		if err != nil {
			return nil, fmt.Errorf("invalid disabled range start: %w", err)
		}
		to, err := parseClock(r.End)
		if err != nil {
			return nil, fmt.Errorf("invalid disabled range end: %w", err)
		}
		d.ranges = append(d.ranges, [2]int{from, to})
	}
	return d, nil
}

// contains checks exact single times first, then ranges inclusive of both ends.
func (d *disabledSet) contains(clock string, minutes int) bool {
	if _, ok := d.single[clock]; ok {
		return true
	}
	for _, r := range d.ranges {
		if minutes >= r[0] && minutes <= r[1] {
			return true
		}
	}
	return false
}

func dateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
