package main

import (
	"errors"
	"log"
	"net/http"

	"github.com/Vittorix99/mcp-website-sub001/src/common"
	"github.com/Vittorix99/mcp-website-sub001/src/purchase"
	"github.com/gin-gonic/gin"
)

var conflictErrors = []error{
	purchase.ErrOrderInFlight,
	purchase.ErrOrderCompleted,
	purchase.ErrNotAwaitingApproval,
	purchase.ErrUnknownOrder,
	purchase.ErrFormDisabled,
	common.ErrRequestInProgress,
	common.ErrPriceChanged,
}

var unprocessableErrors = []error{
	purchase.ErrOnRequest,
	purchase.ErrEventInactive,
	purchase.ErrNoPaymentMethods,
}

var notFoundErrors = []error{
	common.ErrEventNotFound,
	common.ErrOrderNotFound,
	common.ErrSessionNotFound,
}

func isAny(err error, targets []error) bool {
	for _, t := range targets {
		if errors.Is(err, t) {
			return true
		}
	}
	return false
}

// errorResponse maps the purchase error taxonomy to a status code and body.
func errorResponse(err error) (int, gin.H) {
	var (
		ve *purchase.ValidationError
		ee *purchase.EligibilityError
		pe *purchase.ProviderError
		oe *purchase.OrderCreationError
		ce *purchase.CaptureError
	)
	switch {
	case errors.As(err, &ve):
		return http.StatusBadRequest, gin.H{"error": ve.Error(), "errors": ve.Errors}
	case errors.As(err, &ee):
		return http.StatusUnprocessableEntity, gin.H{"error": ee.Error(), "errors": ee.Errors}
	case errors.As(err, &ce):
		return http.StatusBadGateway, gin.H{"error": ce.Message, "orderId": ce.OrderID, "status": ce.Status}
	case errors.As(err, &oe):
		body := gin.H{"error": oe.Message}
		if oe.Payload != nil {
			body["details"] = oe.Payload.Details
			body["debug_id"] = oe.Payload.DebugID
		}
		return http.StatusBadGateway, body
	case errors.As(err, &pe):
		if pe.Payload != nil {
			return http.StatusBadGateway, gin.H{"error": pe.Payload}
		}
		return http.StatusBadGateway, gin.H{"error": pe.Message()}
	case isAny(err, conflictErrors):
		return http.StatusConflict, gin.H{"error": err.Error()}
	case isAny(err, unprocessableErrors):
		return http.StatusUnprocessableEntity, gin.H{"error": err.Error()}
	case isAny(err, notFoundErrors):
		return http.StatusNotFound, gin.H{"error": err.Error()}
	}
	log.Printf("Unhandled error: %s\n", err.Error())
	return http.StatusInternalServerError, gin.H{"error": "internal server error"}
}

func respondError(ctx *gin.Context, err error) {
	status, body := errorResponse(err)
	ctx.AbortWithStatusJSON(status, body)
}
