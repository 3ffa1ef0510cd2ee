package handlers

import (
	"errors"
	"net/http"

	"petcare/services/booking"
	"petcare/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

var statusByCode = map[string]int{
	booking.CodeValidation:         http.StatusUnprocessableEntity,
	booking.CodeSlotUnavailable:    http.StatusConflict,
	booking.CodeNotFound:           http.StatusNotFound,
	booking.CodeInvalidTransition:  http.StatusConflict,
	booking.CodePaymentOutstanding: http.StatusConflict,
	booking.CodeVerificationFailed: http.StatusPaymentRequired,
	booking.CodeGateway:            http.StatusBadGateway,
	booking.CodeInternal:           http.StatusInternalServerError,
}

// respondError maps a BookingError onto an HTTP status and the standard error body.
func respondError(c *gin.Context, err error) {
	var be *booking.BookingError
	if !errors.As(err, &be) {
		getLogger(c).Error("unexpected error", zap.Error(err))
		utils.JSONError(c, http.StatusInternalServerError, "Internal Server Error", "")
		return
	}

	status, ok := statusByCode[be.Code]
	if !ok {
		status = http.StatusInternalServerError
	}
	if status >= http.StatusInternalServerError {
		getLogger(c).Error("booking request failed", zap.String("code", be.Code), zap.Error(err))
	}
	utils.JSONCodedError(c, status, be.Code, be.Message, be.Retryable)
}
