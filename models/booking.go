package models

import "time"

type BookingStatus string

const (
	StatusPending     BookingStatus = "Pending"
	StatusConfirmed   BookingStatus = "Confirmed"
	StatusCancelled   BookingStatus = "Cancelled"
	StatusCompleted   BookingStatus = "Completed"
	StatusRescheduled BookingStatus = "Rescheduled"
	StatusFacingError BookingStatus = "Facing Error"
)

// HoldsSlot reports whether a record in this status counts toward slot occupancy.
func (s BookingStatus) HoldsSlot() bool {
	return s != StatusCancelled && s != StatusFacingError
}

type LocationType string

const (
	LocationHome   LocationType = "home"
	LocationClinic LocationType = "clinic"
)

// BookingRecord is the persisted booking. It is mutated only by the booking service's transitions.
type BookingRecord struct {
	ID                 string        `json:"id" bson:"id"`
	SubjectRef         string        `json:"subjectRef" bson:"subjectRef"`
	ServiceRef         string        `json:"serviceRef" bson:"serviceRef"`
	ServiceCategory    string        `json:"serviceCategory" bson:"serviceCategory"`
	SelectedDate       string        `json:"selectedDate" bson:"selectedDate"`
	SelectedTime       string        `json:"selectedTime" bson:"selectedTime"`
	BookingPart        string        `json:"bookingPart,omitempty" bson:"bookingPart,omitempty"`
	Status             BookingStatus `json:"status" bson:"status"`
	Payment            PaymentRef    `json:"payment" bson:"payment"`
	TotalPayableAmount int64         `json:"totalPayableAmount" bson:"totalPayableAmount"`
	Currency           string        `json:"currency" bson:"currency"`
	CouponRef          string        `json:"couponRef,omitempty" bson:"couponRef,omitempty"`
	LocationType       LocationType  `json:"locationType" bson:"locationType"`
	Address            string        `json:"address,omitempty" bson:"address,omitempty"`
	ClinicRef          string        `json:"clinicRef,omitempty" bson:"clinicRef,omitempty"`
	ReportRef          string        `json:"reportRef,omitempty" bson:"reportRef,omitempty"`
	CancelReason       string        `json:"cancelReason,omitempty" bson:"cancelReason,omitempty"`
	ReviewRequired     bool          `json:"reviewRequired,omitempty" bson:"reviewRequired,omitempty"`
	CreatedAt          time.Time     `json:"createdAt" bson:"createdAt"`
	UpdatedAt          time.Time     `json:"updatedAt" bson:"updatedAt"`
}

// SlotKey identifies the capacity pool a booking draws from.
type SlotKey struct {
	ServiceCategory string
	Date            string
	Time            string
}

func (b *BookingRecord) SlotKey() SlotKey {
	return SlotKey{ServiceCategory: b.ServiceCategory, Date: b.SelectedDate, Time: b.SelectedTime}
}

// BookingIntent is the caller-supplied request to reserve a slot.
type BookingIntent struct {
	SubjectRef      string       `json:"subjectRef" validate:"required"`
	ServiceRef      string       `json:"serviceRef" validate:"required"`
	ServiceCategory string       `json:"serviceCategory" validate:"required"`
	SelectedDate    string       `json:"selectedDate" validate:"required,datetime=2006-01-02"`
	SelectedTime    string       `json:"selectedTime" validate:"required,datetime=15:04"`
	BookingPart     string       `json:"bookingPart"`
	CouponRef       string       `json:"couponRef"`
	LocationType    LocationType `json:"locationType" validate:"required,oneof=home clinic"`
	Address         string       `json:"address" validate:"required_if=LocationType home"`
	ClinicRef       string       `json:"clinicRef" validate:"required_if=LocationType clinic"`
}

// BookingCreated is returned to the client so it can open the payment widget.
type BookingCreated struct {
	BookingID    string        `json:"bookingId"`
	Status       BookingStatus `json:"status"`
	GatewayOrder GatewayOrder  `json:"gatewayOrder"`
}

// BookingView is the polling representation of a booking.
type BookingView struct {
	BookingID          string        `json:"bookingId"`
	Status             BookingStatus `json:"status"`
	PaymentStatus      PaymentStatus `json:"paymentStatus"`
	SelectedDate       string        `json:"selectedDate"`
	SelectedTime       string        `json:"selectedTime"`
	TotalPayableAmount int64         `json:"totalPayableAmount"`
	Currency           string        `json:"currency"`
	Message            string        `json:"message,omitempty"`
}
