package availability

import (
	"testing"
	"time"

	"petcare/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// 2025-03-03 is a Monday.
var monday = time.Date(2025, 3, 3, 0, 0, 0, 0, time.UTC)

func TestGenerateSlots_TilesWindow(t *testing.T) {
	cases := []struct {
		name     string
		open     string
		close    string
		duration int
		want     []string
	}{
		{"exact multiple", "09:00", "11:00", 30, []string{"09:00", "09:30", "10:00", "10:30"}},
		{"partial trailing slot dropped", "09:00", "10:45", 30, []string{"09:00", "09:30", "10:00"}},
		{"single slot", "09:00", "09:20", 20, []string{"09:00"}},
		{"window shorter than duration", "09:00", "09:10", 30, []string{}},
		{"end of day", "22:00", "24:00", 60, []string{"22:00", "23:00"}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			settings := models.AvailabilitySettings{OpenTime: tc.open, CloseTime: tc.close, SlotDurationMinutes: tc.duration}
			slots, err := GenerateSlots(settings, monday)
			require.NoError(t, err)

			got := make([]string, 0, len(slots))
			for i, s := range slots {
				got = append(got, s.StartTime)
				start, _ := parseClock(s.StartTime)
				end, _ := parseClock(s.EndTime)
				assert.Equal(t, tc.duration, end-start)
				if i > 0 {
					assert.Equal(t, slots[i-1].EndTime, s.StartTime, "slots must be contiguous")
				}
			}
			assert.Equal(t, tc.want, got)
			if len(slots) > 0 {
				assert.Equal(t, tc.open, slots[0].StartTime)
				last, _ := parseClock(slots[len(slots)-1].EndTime)
				closeAt, _ := parseClock(tc.close)
				assert.LessOrEqual(t, last, closeAt)
			}
		})
	}
}

func TestGenerateSlots_ClosedWeekday(t *testing.T) {
	for _, name := range []string{"Monday", "monday", "Mon"} {
		settings := models.AvailabilitySettings{
			OpenTime: "09:00", CloseTime: "17:00", SlotDurationMinutes: 30,
			ClosedWeekdays: []string{"Sunday", name},
		}
		slots, err := GenerateSlots(settings, monday)
		require.NoError(t, err)
		assert.Empty(t, slots, name)
	}
}

func TestGenerateSlots_InvalidSettings(t *testing.T) {
	cases := map[string]models.AvailabilitySettings{
		"zero duration":      {OpenTime: "09:00", CloseTime: "10:00"},
		"close before open":  {OpenTime: "10:00", CloseTime: "09:00", SlotDurationMinutes: 15},
		"unparseable open":   {OpenTime: "9am", CloseTime: "10:00", SlotDurationMinutes: 15},
		"minute out of range": {OpenTime: "09:75", CloseTime: "10:00", SlotDurationMinutes: 15},
	}
	for name, settings := range cases {
		_, err := GenerateSlots(settings, monday)
		assert.Error(t, err, name)
	}
}

func TestPeriodBoundaries(t *testing.T) {
	settings := models.AvailabilitySettings{OpenTime: "11:00", CloseTime: "18:00", SlotDurationMinutes: 60}
	slots, err := GenerateSlots(settings, monday)
	require.NoError(t, err)

	periods := map[string]models.SlotPeriod{}
	for _, s := range slots {
		periods[s.StartTime] = s.Period
	}
	assert.Equal(t, models.PeriodMorning, periods["11:00"])
	assert.Equal(t, models.PeriodAfternoon, periods["12:00"])
	assert.Equal(t, models.PeriodAfternoon, periods["16:00"])
	assert.Equal(t, models.PeriodEvening, periods["17:00"])
}

func TestCountOccupancy(t *testing.T) {
	records := []models.BookingRecord{
		{ServiceCategory: "vet", SelectedDate: "2025-03-03", SelectedTime: "09:30", Status: models.StatusPending},
		{ServiceCategory: "vet", SelectedDate: "2025-03-03", SelectedTime: "09:30", Status: models.StatusConfirmed},
		{ServiceCategory: "vet", SelectedDate: "2025-03-03", SelectedTime: "09:30", Status: models.StatusCancelled},
		{ServiceCategory: "vet", SelectedDate: "2025-03-03", SelectedTime: "10:00", Status: models.StatusFacingError},
		{ServiceCategory: "vet", SelectedDate: "2025-03-03", SelectedTime: "10:00", Status: models.StatusRescheduled},
		{ServiceCategory: "vet", SelectedDate: "2025-03-03", SelectedTime: "10:30", Status: models.StatusCompleted},
		{ServiceCategory: "vet", SelectedDate: "2025-03-03", SelectedTime: "9:30", Status: models.StatusConfirmed},
		{ServiceCategory: "lab", SelectedDate: "2025-03-03", SelectedTime: "09:30", Status: models.StatusConfirmed},
		{ServiceCategory: "vet", SelectedDate: "2025-03-04", SelectedTime: "09:30", Status: models.StatusConfirmed},
	}

	counts := CountOccupancy(records, "vet", "2025-03-03")
	assert.Equal(t, map[string]int{"09:30": 2, "10:00": 1, "10:30": 1, "9:30": 1}, counts)
}

func TestParseClock(t *testing.T) {
	valid := map[string]int{"00:00": 0, "9:05": 545, "09:30": 570, "24:00": 1440}
	for in, want := range valid {
		got, err := parseClock(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	for _, in := range []string{"+9:00", "-1:00", "09:+5", "24:01", "09:60", "9", "09:5", "009:00", " : ", "ab:cd"} {
		_, err := parseClock(in)
		assert.Error(t, err, in)
	}
}
