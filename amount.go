package lnaddr

import (
	"fmt"
	"math/big"

	"github.com/lightningnetwork/lnd/lnwire"
	"github.com/shopspring/decimal"
)

// 1 BTC = 10^8 satoshi = 10^11 millisatoshi.
const msatExponent = 11

// BtcToMsat converts a BTC-denominated amount into millisatoshis. The
// conversion is exact: amounts that are not a positive whole number of
// millisatoshis are rejected rather than rounded.
func BtcToMsat(amountBTC decimal.Decimal) (lnwire.MilliSatoshi, error) {
	if amountBTC.Sign() <= 0 {
		return 0, fmt.Errorf("amount must be positive, got %s",
			amountBTC)
	}

	msat := amountBTC.Shift(msatExponent)
	if !msat.IsInteger() {
		return 0, fmt.Errorf("amount %s BTC is not expressible in "+
			"millisatoshis", amountBTC)
	}

	i := msat.BigInt()
	if !i.IsUint64() {
		return 0, fmt.Errorf("amount %s BTC overflows millisatoshis",
			amountBTC)
	}

	return lnwire.MilliSatoshi(i.Uint64()), nil
}

// MsatToBtc converts a millisatoshi amount back into its BTC-denominated
// display form.
func MsatToBtc(msat lnwire.MilliSatoshi) decimal.Decimal {
	i := new(big.Int).SetUint64(uint64(msat))
	return decimal.NewFromBigInt(i, -msatExponent)
}
