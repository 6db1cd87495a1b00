package lnaddr

import (
	"errors"
	"fmt"

	"github.com/lightningnetwork/lnd/lnwire"
	"github.com/shopspring/decimal"
)

var (
	// ErrMalformedAddress is returned when the input does not parse as a
	// <username>@<domain> lightning address.
	ErrMalformedAddress = errors.New("malformed lightning address")

	// ErrEndpointUnreachable is returned when the discovery or callback
	// endpoint could not be reached at the network level.
	ErrEndpointUnreachable = errors.New("endpoint unreachable")

	// ErrInvalidServiceResponse is returned when an endpoint was reached
	// but its response is unusable.
	ErrInvalidServiceResponse = errors.New("invalid service response")

	// ErrUnsupportedServiceType is returned when the discovery response
	// does not advertise the payRequest tag.
	ErrUnsupportedServiceType = errors.New("unsupported service type")

	// ErrIdentityMismatch is returned when the invoice does not commit to
	// the metadata advertised by the discovery endpoint.
	ErrIdentityMismatch = errors.New("identity mismatch")
)

// AmountOutOfRangeError is returned when the requested amount falls outside
// the sendable range advertised by LN SERVICE. It carries the bounds so that
// the caller can prompt the user for a new amount.
type AmountOutOfRangeError struct {
	// Amount is the requested amount in millisatoshis.
	Amount lnwire.MilliSatoshi

	// Min and Max are the inclusive sendable bounds in millisatoshis.
	Min lnwire.MilliSatoshi
	Max lnwire.MilliSatoshi
}

func (e *AmountOutOfRangeError) Error() string {
	return fmt.Sprintf("amount %v outside sendable range [%v, %v]",
		e.Amount, e.Min, e.Max)
}

// MinBTC returns the lower sendable bound in BTC.
func (e *AmountOutOfRangeError) MinBTC() decimal.Decimal {
	return MsatToBtc(e.Min)
}

// MaxBTC returns the upper sendable bound in BTC.
func (e *AmountOutOfRangeError) MaxBTC() decimal.Decimal {
	return MsatToBtc(e.Max)
}

// AmountMismatchError is returned when the amount embedded in the invoice
// returned by LN SERVICE differs from the amount that was requested.
type AmountMismatchError struct {
	// Requested is the amount the invoice was requested for.
	Requested lnwire.MilliSatoshi

	// Invoice is the amount embedded in the returned invoice, zero if the
	// invoice carries no amount at all.
	Invoice lnwire.MilliSatoshi
}

func (e *AmountMismatchError) Error() string {
	return fmt.Sprintf("invoice amount %v does not match requested "+
		"amount %v", e.Invoice, e.Requested)
}
