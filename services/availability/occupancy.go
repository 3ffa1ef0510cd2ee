package availability

import "petcare/models"

// CountOccupancy maps selectedTime to the number of slot-holding bookings for the
// given category and date. Records are matched by exact selectedTime string.
func CountOccupancy(records []models.BookingRecord, category, date string) map[string]int {
	counts := make(map[string]int)
	for _, r := range records {
		if r.ServiceCategory != category || r.SelectedDate != date {
			continue
		}
		if !r.Status.HoldsSlot() {
			continue
		}
		counts[r.SelectedTime]++
	}
	return counts
}
