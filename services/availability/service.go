package availability

import (
	"context"
	"errors"
	"fmt"
	"time"

	"petcare/models"

	"go.uber.org/zap"
)

// ErrSlotNotOffered is returned when a requested time is not one of the generated slots.
var ErrSlotNotOffered = errors.New("requested time is not an offered slot")

// SettingsProvider is the catalog's read-only view of scheduling configuration.
type SettingsProvider interface {
	GetAvailabilitySettings(ctx context.Context, category string) (*models.AvailabilitySettings, error)
}

// BookingLister returns every booking record for a category and date, in any status.
type BookingLister interface {
	ListByCategoryDate(ctx context.Context, category, date string) ([]models.BookingRecord, error)
}

type AvailabilityService interface {
	GetAvailability(ctx context.Context, category, date string) models.DayAvailability
	DefaultDate(ctx context.Context, category string) (string, bool, error)
	CheckSlot(ctx context.Context, category, date, clock string) (*models.SlotAvailability, *models.AvailabilitySettings, error)
}

type DefaultAvailabilityService struct {
	Settings      SettingsProvider
	Bookings      BookingLister
	Location      *time.Location
	LookAheadDays int
	Now           func() time.Time
	Logger        *zap.Logger
}

func NewAvailabilityService(settings SettingsProvider, bookings BookingLister, loc *time.Location, lookAheadDays int, logger *zap.Logger) *DefaultAvailabilityService {
	if loc == nil {
		loc = time.UTC
	}
	return &DefaultAvailabilityService{
		Settings:      settings,
		Bookings:      bookings,
		Location:      loc,
		LookAheadDays: lookAheadDays,
		Now:           time.Now,
		Logger:        logger,
	}
}

// GetAvailability never fails: computation errors are logged and reported as DayUnavailable
// with an empty slot list so clients can tell them apart from a closed day.
func (s *DefaultAvailabilityService) GetAvailability(ctx context.Context, category, date string) models.DayAvailability {
	result := models.DayAvailability{ServiceCategory: category, Date: date, Slots: []models.SlotAvailability{}}

	slots, closed, _, err := s.resolve(ctx, category, date)
	switch {
	case err != nil:
		s.Logger.Error("availability: resolve failed",
			zap.String("category", category), zap.String("date", date), zap.Error(err))
		result.DayStatus = models.DayUnavailable
	case closed:
		result.DayStatus = models.DayClosed
	default:
		result.DayStatus = models.DayOpen
		result.Slots = slots
	}
	return result
}

// DefaultDate picks the first open day in the look-ahead window.
func (s *DefaultAvailabilityService) DefaultDate(ctx context.Context, category string) (string, bool, error) {
	settings, err := s.Settings.GetAvailabilitySettings(ctx, category)
	if err != nil {
		return "", false, fmt.Errorf("load settings for %s: %w", category, err)
	}
	lookAhead := settings.LookAheadDays
	if lookAhead <= 0 {
		lookAhead = s.LookAheadDays
	}
	date, ok := SelectDate(*settings, s.now(), lookAhead)
	return date, ok, nil
}

// CheckSlot resolves a single slot. The returned settings carry the capacity the caller reserves against.
func (s *DefaultAvailabilityService) CheckSlot(ctx context.Context, category, date, clock string) (*models.SlotAvailability, *models.AvailabilitySettings, error) {
	slots, _, settings, err := s.resolve(ctx, category, date)
	if err != nil {
		return nil, nil, err
	}
	for i := range slots {
		if slots[i].Time == clock {
			return &slots[i], settings, nil
		}
	}
	return nil, settings, ErrSlotNotOffered
}

func (s *DefaultAvailabilityService) resolve(ctx context.Context, category, date string) ([]models.SlotAvailability, bool, *models.AvailabilitySettings, error) {
	day, err := time.ParseInLocation(models.DateLayout, date, s.Location)
	if err != nil {
		return nil, false, nil, fmt.Errorf("invalid date %q: %w", date, err)
	}

	settings, err := s.Settings.GetAvailabilitySettings(ctx, category)
	if err != nil {
		return nil, false, nil, fmt.Errorf("load settings for %s: %w", category, err)
	}
	if IsClosed(*settings, day) {
		return nil, true, settings, nil
	}

	records, err := s.Bookings.ListByCategoryDate(ctx, category, date)
	if err != nil {
		return nil, false, settings, fmt.Errorf("load bookings: %w", err)
	}

	slots, err := ResolveSlots(*settings, day, CountOccupancy(records, category, date), s.now())
	if err != nil {
		return nil, false, settings, err
	}
	return slots, false, settings, nil
}

func (s *DefaultAvailabilityService) now() time.Time {
	return s.Now().In(s.Location)
}
