package handlers

import (
	"net/http"

	"petcare/models"
	"petcare/services/availability"
	"petcare/services/booking"
	"petcare/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type BookingHandler struct {
	Service      booking.BookingService
	Availability availability.AvailabilityService
}

func NewBookingHandler(svc booking.BookingService, avail availability.AvailabilityService) *BookingHandler {
	return &BookingHandler{Service: svc, Availability: avail}
}

// GetAvailability returns resolved slots for a category. Without ?date the first open day is used.
func (h *BookingHandler) GetAvailability(c *gin.Context) {
	category := c.Param("category")
	date := c.Query("date")

	if date == "" {
		selected, ok, err := h.Availability.DefaultDate(c.Request.Context(), category)
		if err != nil {
			getLogger(c).Error("default date selection failed", zap.String("category", category), zap.Error(err))
			c.JSON(http.StatusOK, models.DayAvailability{
				ServiceCategory: category,
				DayStatus:       models.DayUnavailable,
				Slots:           []models.SlotAvailability{},
			})
			return
		}
		if !ok {
			c.JSON(http.StatusOK, models.DayAvailability{
				ServiceCategory: category,
				DayStatus:       models.DayClosed,
				Slots:           []models.SlotAvailability{},
			})
			return
		}
		date = selected
	}

	c.JSON(http.StatusOK, h.Availability.GetAvailability(c.Request.Context(), category, date))
}

func (h *BookingHandler) CreateBooking(c *gin.Context) {
	var intent models.BookingIntent
	if err := c.ShouldBindJSON(&intent); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "Invalid request payload", err.Error())
		return
	}

	created, err := h.Service.CreateBooking(c.Request.Context(), intent)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, created)
}

func (h *BookingHandler) VerifyPayment(c *gin.Context) {
	var req models.PaymentVerification
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "Invalid request payload", err.Error())
		return
	}

	status, err := h.Service.ConfirmPayment(c.Request.Context(), c.Param("id"), req.PaymentID, req.Signature)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"bookingId": c.Param("id"), "status": status})
}

func (h *BookingHandler) AbandonPayment(c *gin.Context) {
	status, err := h.Service.ReportPaymentAbandoned(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	body := gin.H{"bookingId": c.Param("id"), "status": status}
	if status == models.StatusPending {
		body["message"] = "processing, we'll confirm shortly"
	}
	c.JSON(http.StatusAccepted, body)
}

func (h *BookingHandler) CancelBooking(c *gin.Context) {
	var req struct {
		Reason string `json:"reason"`
	}
	// An empty body is a cancellation without a reason.
	_ = c.ShouldBindJSON(&req)

	status, err := h.Service.CancelBooking(c.Request.Context(), c.Param("id"), req.Reason)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"bookingId": c.Param("id"), "status": status})
}

func (h *BookingHandler) RescheduleBooking(c *gin.Context) {
	var req struct {
		Date string `json:"date" binding:"required"`
		Time string `json:"time" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "Invalid request payload", err.Error())
		return
	}

	status, err := h.Service.RescheduleBooking(c.Request.Context(), c.Param("id"), req.Date, req.Time)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"bookingId": c.Param("id"), "status": status})
}

func (h *BookingHandler) ReconfirmBooking(c *gin.Context) {
	status, err := h.Service.ReconfirmBooking(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"bookingId": c.Param("id"), "status": status})
}

func (h *BookingHandler) CompleteBooking(c *gin.Context) {
	var req struct {
		ReportRef string `json:"reportRef"`
	}
	_ = c.ShouldBindJSON(&req)

	status, err := h.Service.CompleteBooking(c.Request.Context(), c.Param("id"), req.ReportRef)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"bookingId": c.Param("id"), "status": status})
}

func (h *BookingHandler) GetBookingStatus(c *gin.Context) {
	view, err := h.Service.GetBookingStatus(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}
