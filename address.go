package lnaddr

import (
	"fmt"
	"regexp"
	"strings"
)

// This misses some edgecases but covers the <username>@<domain> shape:
// exactly one '@', non-empty parts, no whitespace.
var addressRegexp = regexp.MustCompile(`^[^@\s]+@[^@\s]+$`)

// LightningAddress is a `user@domain` internet identifier which allows
// senders to request lightning invoices by contacting `domain`, who issues
// invoices on behalf of the `user`.
type LightningAddress struct {
	Username string
	Domain   string
}

// String returns the user@domain format of the address.
func (a LightningAddress) String() string {
	return a.Username + "@" + a.Domain
}

// PayURL returns the HTTPS URL used for LNURL payRequest, as per LUD-16.
//
// https://github.com/lnurl/luds/blob/luds/16.md
func (a LightningAddress) PayURL() string {
	return "https://" + a.Domain + "/.well-known/lnurlp/" + a.Username
}

// ParseAddress parses a LightningAddress from a string, returning an error
// wrapping ErrMalformedAddress if the string is not a valid identifier.
func ParseAddress(address string) (LightningAddress, error) {
	if !addressRegexp.MatchString(address) {
		return LightningAddress{}, fmt.Errorf("%w: expected the "+
			"form <username>@<domain>, got %q", ErrMalformedAddress,
			address)
	}

	i := strings.Index(address, "@")
	return LightningAddress{
		Username: address[:i],
		Domain:   address[i+1:],
	}, nil
}
