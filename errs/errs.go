// Package errs defines the typed failures the rental core can surface.
package errs

import (
	"fmt"
	"net/http"
)

const (
	CodeInsufficientStock       = "InsufficientStock"
	CodeStockConflict           = "StockConflict"
	CodeOutOfStock              = "OutOfStock"
	CodeInvalidDateRange        = "InvalidDateRange"
	CodeNoItemsSelected         = "NoItemsSelected"
	CodeIllegalStatusTransition = "IllegalStatusTransition"
	CodePartialBookingFailure   = "PartialBookingFailure"
	CodePaymentDeclined         = "PaymentDeclined"
	CodeNetworkUnavailable      = "NetworkUnavailable"
	CodeInvalidRequest          = "InvalidRequest"
	CodeForbidden               = "Forbidden"
	CodeNotFound                = "NotFound"
	CodeInternal                = "InternalError"
)

// Error carries a stable code alongside the human-readable message
// handlers show to users.
type Error struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) HTTPStatus() int {
	switch e.Code {
	case CodeInvalidRequest, CodeInvalidDateRange, CodeNoItemsSelected:
		return http.StatusBadRequest
	case CodeForbidden:
		return http.StatusForbidden
	case CodeNotFound:
		return http.StatusNotFound
	case CodeInsufficientStock, CodeStockConflict, CodeOutOfStock, CodeIllegalStatusTransition:
		return http.StatusConflict
	case CodePaymentDeclined:
		return http.StatusPaymentRequired
	case CodeNetworkUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func New(code, message, details string) *Error {
	return &Error{Code: code, Message: message, Details: details}
}

func InsufficientStock(name string, available, requested int) *Error {
	return New(CodeInsufficientStock,
		fmt.Sprintf("Only %d unit(s) of %q available", available, name),
		fmt.Sprintf("requested %d", requested))
}

func OutOfStock(name string, available, requested int) *Error {
	return New(CodeOutOfStock,
		fmt.Sprintf("%q has only %d unit(s) left", name, available),
		fmt.Sprintf("requested %d", requested))
}

func InvalidDateRange() *Error {
	return New(CodeInvalidDateRange, "End date must be after start date", "")
}

func NoItemsSelected() *Error {
	return New(CodeNoItemsSelected, "No items selected for checkout", "")
}

func IllegalStatusTransition(from, to string) *Error {
	return New(CodeIllegalStatusTransition,
		fmt.Sprintf("Cannot move booking from %s to %s", from, to), "")
}

func PaymentDeclined(reason string) *Error {
	return New(CodePaymentDeclined, "Payment was declined", reason)
}

func Forbidden(message string) *Error {
	return New(CodeForbidden, message, "")
}

func NotFound(what string) *Error {
	return New(CodeNotFound, what+" not found", "")
}
