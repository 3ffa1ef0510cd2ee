package models

import "time"

// Device is a push target registered for a subject (pet owner). Registration lives elsewhere.
type Device struct {
	SubjectRef string    `json:"subjectRef" bson:"subjectRef"`
	FCMToken   string    `json:"fcmToken" bson:"fcmToken"`
	Platform   string    `json:"platform,omitempty" bson:"platform,omitempty"`
	UpdatedAt  time.Time `json:"updatedAt" bson:"updatedAt"`
}

// ServicePrice is the catalog's base price for a service at a location type.
type ServicePrice struct {
	ServiceRef   string       `json:"serviceRef" bson:"serviceRef"`
	LocationType LocationType `json:"locationType" bson:"locationType"`
	Amount       int64        `json:"amount" bson:"amount"`
	Currency     string       `json:"currency" bson:"currency"`
}
