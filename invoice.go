package lnaddr

import (
	"fmt"
	"strings"

	"github.com/btcsuite/btcd/chaincfg"
	"github.com/lightningnetwork/lnd/zpay32"
)

// invoiceNetParams infers the chain parameters from the network part of an
// invoice's human-readable prefix. The regtest prefix must be checked before
// mainnet since "bcrt" also matches "bc".
func invoiceNetParams(invoice string) (*chaincfg.Params, error) {
	net := strings.ToLower(invoice)
	if !strings.HasPrefix(net, "ln") {
		return nil, fmt.Errorf("invoice is missing the 'ln' prefix")
	}
	net = net[2:]

	switch {
	case strings.HasPrefix(net, chaincfg.RegressionNetParams.Bech32HRPSegwit):
		return &chaincfg.RegressionNetParams, nil

	case strings.HasPrefix(net, chaincfg.TestNet3Params.Bech32HRPSegwit):
		return &chaincfg.TestNet3Params, nil

	case strings.HasPrefix(net, chaincfg.SimNetParams.Bech32HRPSegwit):
		return &chaincfg.SimNetParams, nil

	case strings.HasPrefix(net, chaincfg.MainNetParams.Bech32HRPSegwit):
		return &chaincfg.MainNetParams, nil
	}

	return nil, fmt.Errorf("unknown invoice network prefix")
}

// DecodeInvoice decodes a BOLT11 payment request, inferring the network from
// its human-readable prefix.
func DecodeInvoice(invoice string) (*zpay32.Invoice, error) {
	params, err := invoiceNetParams(invoice)
	if err != nil {
		return nil, err
	}

	return zpay32.Decode(invoice, params)
}
