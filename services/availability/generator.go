package availability

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"petcare/models"
)

const minutesPerDay = 24 * 60

// GenerateSlots tiles [openTime, closeTime) with slots of exactly SlotDurationMinutes.
// A trailing interval shorter than the duration is dropped. Closed weekdays yield no slots.
func GenerateSlots(settings models.AvailabilitySettings, date time.Time) ([]models.Slot, error) {
	open, closeAt, err := operatingWindow(settings)
	if err != nil {
		return nil, err
	}
	if IsClosed(settings, date) {
		return nil, nil
	}

	duration := settings.SlotDurationMinutes
	slots := make([]models.Slot, 0, (closeAt-open)/duration)
	for start := open; start < closeAt; start += duration {
		end := start + duration
		if end > closeAt {
			break
		}
		slots = append(slots, models.Slot{
			StartTime: formatClock(start),
			EndTime:   formatClock(end),
			Period:    periodOf(start),
		})
	}
	return slots, nil
}

// IsClosed reports whether date falls on one of the configured closed weekdays.
// Both full ("Sunday") and short ("Sun") names are accepted, case-insensitively.
func IsClosed(settings models.AvailabilitySettings, date time.Time) bool {
	full := date.Weekday().String()
	short := full[:3]
	for _, d := range settings.ClosedWeekdays {
		d = strings.TrimSpace(d)
		if strings.EqualFold(d, full) || strings.EqualFold(d, short) {
			return true
		}
	}
	return false
}

func operatingWindow(settings models.AvailabilitySettings) (int, int, error) {
	if settings.SlotDurationMinutes <= 0 {
		return 0, 0, fmt.Errorf("invalid slot duration %d", settings.SlotDurationMinutes)
	}
	open, err := parseClock(settings.OpenTime)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid openTime: %w", err)
	}
	closeAt, err := parseClock(settings.CloseTime)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid closeTime: %w", err)
	}
	if closeAt <= open {
		return 0, 0, fmt.Errorf("closeTime %s is not after openTime %s", settings.CloseTime, settings.OpenTime)
	}
	return open, closeAt, nil
}

// parseClock converts "HH:MM" into minutes after midnight. "24:00" is accepted as end of day.
func parseClock(s string) (int, error) {
	parts := strings.Split(strings.TrimSpace(s), ":")
	if len(parts) != 2 || len(parts[1]) != 2 || !allDigits(parts[0]) || !allDigits(parts[1]) {
		return 0, fmt.Errorf("malformed time %q", s)
	}
	h, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, fmt.Errorf("malformed hour in %q", s)
	}
	m, err := strconv.Atoi(parts[1])
	if err != nil {
		return 0, fmt.Errorf("malformed minute in %q", s)
	}
	total := h*60 + m
	if h < 0 || m < 0 || m > 59 || total > minutesPerDay {
		return 0, fmt.Errorf("time %q out of range", s)
	}
	return total, nil
}

func allDigits(s string) bool {
	if s == "" || len(s) > 2 {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

func formatClock(minutes int) string {
	return fmt.Sprintf("%02d:%02d", minutes/60, minutes%60)
}

// periodOf buckets by start hour: [0,12) Morning, [12,17) Afternoon, [17,24) Evening.
func periodOf(startMinutes int) models.SlotPeriod {
	switch hour := startMinutes / 60; {
	case hour < 12:
		return models.PeriodMorning
	case hour < 17:
		return models.PeriodAfternoon
	default:
		return models.PeriodEvening
	}
}
