package services

import (
	"errors"
	"fmt"
)

type Kind string

const (
	KindInvalidDateRange           Kind = "InvalidDateRange"
	KindPastDateRequested          Kind = "PastDateRequested"
	KindPropertyNotFound           Kind = "PropertyNotFound"
	KindPropertyUnavailable        Kind = "PropertyUnavailable"
	KindReservationNotFound        Kind = "ReservationNotFound"
	KindNotOwner                   Kind = "NotOwner"
	KindAlreadyHasCompletedPayment Kind = "AlreadyHasCompletedPayment"
	KindInvalidCardFormat          Kind = "InvalidCardFormat"
	KindInvalidCvv                 Kind = "InvalidCvv"
	KindInvalidExpiry              Kind = "InvalidExpiry"
	KindCardExpired                Kind = "CardExpired"
	KindInvalidStateForTransition  Kind = "InvalidStateForTransition"
	KindOutsideCheckinWindow       Kind = "OutsideCheckinWindow"
	KindMissingRequiredPhotos      Kind = "MissingRequiredPhotos"
	KindNotConfirmedCannotCancel   Kind = "NotConfirmedCannotCancel"
	KindConcurrentModification     Kind = "ConcurrentModification"
	KindPaymentNotFound            Kind = "PaymentNotFound"
	KindInvalidPhotoKind           Kind = "InvalidPhotoKind"
	KindInvalidPhotoURL            Kind = "InvalidPhotoURL"
	KindInvalidCheckinCode         Kind = "InvalidCheckinCode"
	KindCheckinCodesDisabled       Kind = "CheckinCodesDisabled"
)

// Error is a business-rule rejection. It is returned, never panicked, and
// carries a stable Kind plus a reason fit for end users.
type Error struct {
	Kind   Kind
	Reason string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Kind, e.Reason)
}

// Is matches any *Error of the same kind, so errors.Is(err, ErrNotOwner)
// works regardless of the reason text.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Kind == e.Kind
}

func reject(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Reason: fmt.Sprintf(format, args...)}
}

var (
	ErrInvalidDateRange           = &Error{Kind: KindInvalidDateRange, Reason: "check-out must be after check-in"}
	ErrPastDateRequested          = &Error{Kind: KindPastDateRequested, Reason: "check-in date is in the past"}
	ErrPropertyNotFound           = &Error{Kind: KindPropertyNotFound, Reason: "property not found"}
	ErrPropertyUnavailable        = &Error{Kind: KindPropertyUnavailable, Reason: "property is not available for the requested dates"}
	ErrReservationNotFound        = &Error{Kind: KindReservationNotFound, Reason: "reservation not found"}
	ErrNotOwner                   = &Error{Kind: KindNotOwner, Reason: "you are not allowed to access this reservation"}
	ErrAlreadyHasCompletedPayment = &Error{Kind: KindAlreadyHasCompletedPayment, Reason: "reservation is already paid"}
	ErrInvalidCardFormat          = &Error{Kind: KindInvalidCardFormat, Reason: "card number must be 13 to 19 digits"}
	ErrInvalidCvv                 = &Error{Kind: KindInvalidCvv, Reason: "cvv must be 3 or 4 digits"}
	ErrInvalidExpiry              = &Error{Kind: KindInvalidExpiry, Reason: "invalid expiry date"}
	ErrCardExpired                = &Error{Kind: KindCardExpired, Reason: "card is expired"}
	ErrInvalidStateForTransition  = &Error{Kind: KindInvalidStateForTransition, Reason: "transition not allowed from current state"}
	ErrOutsideCheckinWindow       = &Error{Kind: KindOutsideCheckinWindow, Reason: "check-in is only possible around the check-in date"}
	ErrMissingRequiredPhotos      = &Error{Kind: KindMissingRequiredPhotos, Reason: "at least one checkout photo is required"}
	ErrNotConfirmedCannotCancel   = &Error{Kind: KindNotConfirmedCannotCancel, Reason: "only confirmed reservations can be cancelled"}
	ErrConcurrentModification     = &Error{Kind: KindConcurrentModification, Reason: "reservation was modified concurrently, retry"}
	ErrPaymentNotFound            = &Error{Kind: KindPaymentNotFound, Reason: "payment not found"}
	ErrInvalidPhotoKind           = &Error{Kind: KindInvalidPhotoKind, Reason: "photo kind must be checkin or checkout"}
	ErrInvalidPhotoURL            = &Error{Kind: KindInvalidPhotoURL, Reason: "photo url is required"}
	ErrInvalidCheckinCode         = &Error{Kind: KindInvalidCheckinCode, Reason: "check-in code does not match this reservation"}
	ErrCheckinCodesDisabled       = &Error{Kind: KindCheckinCodesDisabled, Reason: "check-in codes are not enabled"}
)

// KindOf returns the kind of a business rejection, or false for
// infrastructure failures.
func KindOf(err error) (Kind, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind, true
	}
	return "", false
}

func IsNotFound(kind Kind) bool {
	switch kind {
	case KindPropertyNotFound, KindReservationNotFound, KindPaymentNotFound:
		return true
	}
	return false
}
