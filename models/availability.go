package models

const (
	// TimeLayout is the wall-clock format shared by slots and booking records.
	TimeLayout = "15:04"
	// DateLayout is the calendar date format used for selectedDate.
	DateLayout = "2006-01-02"
)

// TimeRange is an inclusive "HH:MM" window.
type TimeRange struct {
	Start string `json:"start" bson:"start"`
	End   string `json:"end" bson:"end"`
}

// AvailabilitySettings is the per-category scheduling configuration managed by catalog admins.
type AvailabilitySettings struct {
	ServiceCategory     string      `json:"serviceCategory" bson:"serviceCategory"`
	OpenTime            string      `json:"openTime" bson:"openTime"`
	CloseTime           string      `json:"closeTime" bson:"closeTime"`
	SlotDurationMinutes int         `json:"slotDurationMinutes" bson:"slotDurationMinutes"`
	PerSlotCapacity     int         `json:"perSlotCapacity" bson:"perSlotCapacity"`
	ClosedWeekdays      []string    `json:"closedWeekdays,omitempty" bson:"closedWeekdays,omitempty"`
	DisabledSingleTimes []string    `json:"disabledSingleTimes,omitempty" bson:"disabledSingleTimes,omitempty"`
	DisabledRanges      []TimeRange `json:"disabledRanges,omitempty" bson:"disabledRanges,omitempty"`
	LookAheadDays       int         `json:"lookAheadDays,omitempty" bson:"lookAheadDays,omitempty"`
}

type SlotPeriod string

const (
	PeriodMorning   SlotPeriod = "Morning"
	PeriodAfternoon SlotPeriod = "Afternoon"
	PeriodEvening   SlotPeriod = "Evening"
)

// Slot is a derived interval; it is never persisted.
type Slot struct {
	StartTime string     `json:"startTime"`
	EndTime   string     `json:"endTime"`
	Period    SlotPeriod `json:"period"`
}

type SlotReason string

const (
	SlotReasonAvailable SlotReason = "available"
	SlotReasonDisabled  SlotReason = "disabled"
	SlotReasonPast      SlotReason = "past"
	SlotReasonFull      SlotReason = "full"
)

// SlotAvailability is what clients render for a single slot.
type SlotAvailability struct {
	Time              string     `json:"time"`
	EndTime           string     `json:"endTime"`
	Period            SlotPeriod `json:"period"`
	IsAvailable       bool       `json:"isAvailable"`
	RemainingCapacity int        `json:"remainingCapacity"`
	Reason            SlotReason `json:"reason"`
}

type DayStatus string

const (
	DayOpen DayStatus = "open"
	// DayClosed means the weekday is configured as closed.
	DayClosed DayStatus = "closed"
	// DayUnavailable means availability could not be computed; clients should retry.
	DayUnavailable DayStatus = "unavailable"
)

// DayAvailability is the resolved slot list for one category and date.
type DayAvailability struct {
	ServiceCategory string             `json:"serviceCategory"`
	Date            string             `json:"date"`
	DayStatus       DayStatus          `json:"dayStatus"`
	Slots           []SlotAvailability `json:"slots"`
}
