package common

import "errors"

var (
	ErrEventNotFound     = errors.New("event not found")
	ErrOrderNotFound     = errors.New("order not found")
	ErrSessionNotFound   = errors.New("checkout session not found or expired")
	ErrRequestInProgress = errors.New("an identical request is already being processed")
	ErrPriceChanged      = errors.New("ticket price has changed, please review your order")
)
