package lnaddr

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"io/ioutil"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/lightningnetwork/lnd/lnwire"
	"github.com/lightningnetwork/lnd/zpay32"
	"github.com/shopspring/decimal"
)

// DefaultTimeout bounds each of the two protocol round trips when no client
// or timeout is configured so that a hung service fails the resolution
// instead of blocking the caller indefinitely.
const DefaultTimeout = 10 * time.Second

// Config holds the explicit configuration of a Resolver. The zero value is
// usable.
type Config struct {
	// Client is the HTTP client used for both protocol round trips. If
	// nil, a client bounded by Timeout is used.
	Client *http.Client

	// Timeout bounds each round trip when Client is nil. Defaults to
	// DefaultTimeout.
	Timeout time.Duration

	// UserAgent is sent with each request when non-empty.
	UserAgent string

	// AllowInsecure permits plain http discovery URLs. Useful against
	// regtest services; real services must be reached over https.
	AllowInsecure bool
}

// Resolver resolves lightning addresses into BOLT11 invoices by performing
// the two-step LNURL-pay exchange. It holds no state across resolutions, so
// a single Resolver may be shared by concurrent callers.
type Resolver struct {
	cfg    *Config
	client *http.Client
}

// NewResolver constructs a Resolver from the given config. A nil config is
// equivalent to the zero config.
func NewResolver(cfg *Config) *Resolver {
	if cfg == nil {
		cfg = &Config{}
	}

	client := cfg.Client
	if client == nil {
		timeout := cfg.Timeout
		if timeout == 0 {
			timeout = DefaultTimeout
		}
		client = &http.Client{Timeout: timeout}
	}

	return &Resolver{
		cfg:    cfg,
		client: client,
	}
}

// PayOptions customises a single Resolve call. A nil PayOptions is valid.
type PayOptions struct {
	// Comment is passed on to LN SERVICE with the invoice request if the
	// service accepts comments. It is truncated to the advertised
	// maximum length and dropped entirely if comments are not accepted.
	Comment string
}

// Resolve performs the full LNURL-pay exchange for the given lightning
// address and BTC-denominated amount, returning a BOLT11 invoice payable for
// exactly that amount.
//
// The invoice's embedded amount is checked against the requested amount, and
// its description hash, if present, is checked against the metadata
// advertised by the discovery endpoint. The raw invoice string is returned
// unchanged; paying it is up to the caller.
//
// Besides a lightning address, the address argument may also be a bech32
// LNURL string, a lightning: URI wrapping one, or an lnurlp:// URL.
func (r *Resolver) Resolve(ctx context.Context, address string,
	amountBTC decimal.Decimal, opts *PayOptions) (string, error) {

	discoveryURL, err := r.discoveryURL(address)
	if err != nil {
		return "", err
	}

	amountMsat, err := BtcToMsat(amountBTC)
	if err != nil {
		return "", err
	}

	var params PayResponse
	if err := r.get(ctx, discoveryURL, &params); err != nil {
		return "", err
	}
	if err := validatePayResponse(&params); err != nil {
		return "", err
	}

	if int64(amountMsat) < params.MinSendable ||
		int64(amountMsat) > params.MaxSendable {

		return "", &AmountOutOfRangeError{
			Amount: amountMsat,
			Min:    lnwire.MilliSatoshi(params.MinSendable),
			Max:    lnwire.MilliSatoshi(params.MaxSendable),
		}
	}

	callbackURL, err := invoiceURL(&params, amountMsat, opts)
	if err != nil {
		return "", err
	}

	var invResp InvoiceResponse
	if err := r.get(ctx, callbackURL, &invResp); err != nil {
		return "", err
	}
	if invResp.PayRequest == "" {
		return "", fmt.Errorf("%w: missing 'pr' field",
			ErrInvalidServiceResponse)
	}

	invoice, err := DecodeInvoice(invResp.PayRequest)
	if err != nil {
		return "", fmt.Errorf("%w: undecodable invoice: %v",
			ErrInvalidServiceResponse, err)
	}

	if err := checkInvoiceAmount(invoice, amountMsat); err != nil {
		return "", err
	}
	if err := checkCommitment(invoice, params.Metadata); err != nil {
		return "", err
	}

	return invResp.PayRequest, nil
}

// discoveryURL maps the supported input forms onto the discovery URL for the
// first round trip.
func (r *Resolver) discoveryURL(address string) (string, error) {
	protocol := "https"
	if r.cfg.AllowInsecure {
		protocol = "http"
	}

	var (
		discoveryURL string
		err          error
	)
	switch {
	case strings.HasPrefix(address, "lnurlp://"):
		discoveryURL = strings.Replace(address, "lnurlp", protocol, 1)

	case strings.HasPrefix(address, "lightning:"):
		discoveryURL, err = DecodeURL(
			strings.TrimPrefix(address, "lightning:"),
		)
		if err != nil {
			return "", fmt.Errorf("%w: error decoding LNURL: %v",
				ErrMalformedAddress, err)
		}

	// The bech32 charset contains no '@', so anything with one is a
	// lightning address, even if its local part starts with "lnurl".
	case strings.Contains(address, "@"):
		addr, err := ParseAddress(address)
		if err != nil {
			return "", err
		}

		discoveryURL = fmt.Sprintf("%s://%s/.well-known/lnurlp/%s",
			protocol, addr.Domain, addr.Username)

	case strings.HasPrefix(strings.ToUpper(address), "LNURL"):
		discoveryURL, err = DecodeURL(address)
		if err != nil {
			return "", fmt.Errorf("%w: error decoding LNURL: %v",
				ErrMalformedAddress, err)
		}

	default:
		return "", fmt.Errorf("%w: unsupported scheme",
			ErrMalformedAddress)
	}

	// Ensure that the url uses tls unless insecure urls are allowed.
	if !r.cfg.AllowInsecure && !strings.HasPrefix(discoveryURL, "https") {
		return "", fmt.Errorf("%w: discovery url is not https",
			ErrMalformedAddress)
	}

	return discoveryURL, nil
}

// validatePayResponse checks the discovery response for the required fields
// and invariants of an LNURL-pay service.
func validatePayResponse(params *PayResponse) error {
	if params.Tag != TypePayRequest {
		return fmt.Errorf("%w: expected tag %q, got %q",
			ErrUnsupportedServiceType, TypePayRequest, params.Tag)
	}

	if params.Callback == "" {
		return fmt.Errorf("%w: missing 'callback' field",
			ErrInvalidServiceResponse)
	}

	if params.MinSendable < 0 || params.MaxSendable < params.MinSendable {
		return fmt.Errorf("%w: invalid sendable range [%d, %d]",
			ErrInvalidServiceResponse, params.MinSendable,
			params.MaxSendable)
	}

	return nil
}

// invoiceURL builds the second round trip URL, merging the amount and
// optional comment into any query parameters the callback already carries.
func invoiceURL(params *PayResponse, amount lnwire.MilliSatoshi,
	opts *PayOptions) (string, error) {

	callback, err := url.Parse(params.Callback)
	if err != nil {
		return "", fmt.Errorf("%w: unparseable callback url: %v",
			ErrInvalidServiceResponse, err)
	}

	query := callback.Query()
	query.Set("amount", strconv.FormatUint(uint64(amount), 10))

	if opts != nil && opts.Comment != "" && params.CommentAllowed > 0 {
		comment := opts.Comment

		// Truncate by rune so that a multi-byte character is never
		// split in half.
		if runes := []rune(comment); int64(len(runes)) > params.CommentAllowed {
			comment = string(runes[:params.CommentAllowed])
		}
		query.Set("comment", comment)
	}

	callback.RawQuery = query.Encode()

	return callback.String(), nil
}

// checkInvoiceAmount ensures that the amount embedded in the invoice equals
// the amount that was requested. An invoice without an amount cannot be
// confirmed to match and is rejected too.
func checkInvoiceAmount(invoice *zpay32.Invoice,
	requested lnwire.MilliSatoshi) error {

	var embedded lnwire.MilliSatoshi
	if invoice.MilliSat != nil {
		embedded = *invoice.MilliSat
	}

	if embedded != requested {
		return &AmountMismatchError{
			Requested: requested,
			Invoice:   embedded,
		}
	}

	return nil
}

// checkCommitment cross-checks the invoice's description hash against the
// metadata advertised in the discovery response. The check is best-effort:
// it is skipped when either side is absent.
func checkCommitment(invoice *zpay32.Invoice, metadata string) error {
	if metadata == "" || invoice.DescriptionHash == nil {
		return nil
	}

	hash := sha256.Sum256([]byte(metadata))
	if !bytes.Equal(invoice.DescriptionHash[:], hash[:]) {
		return fmt.Errorf("%w: invoice description hash does not "+
			"commit to the service metadata", ErrIdentityMismatch)
	}

	return nil
}

// get issues a GET request to the given url and decodes the JSON response
// body into out. Transport-level failures are reported as
// ErrEndpointUnreachable, anything wrong with the response itself as
// ErrInvalidServiceResponse.
func (r *Resolver) get(ctx context.Context, url string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidServiceResponse, err)
	}
	if r.cfg.UserAgent != "" {
		req.Header.Set("User-Agent", r.cfg.UserAgent)
	}

	resp, err := r.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrEndpointUnreachable, err)
	}
	defer resp.Body.Close()

	body, err := ioutil.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%w: could not read response body: %v",
			ErrEndpointUnreachable, err)
	}

	// Any 2xx status counts as success.
	if resp.StatusCode/100 != 2 {
		return fmt.Errorf("%w: received status %d",
			ErrInvalidServiceResponse, resp.StatusCode)
	}

	// LN services report failures as a JSON error object, usually with a
	// 200 status.
	var svcErr Error
	if err := json.Unmarshal(body, &svcErr); err == nil &&
		svcErr.Status == StatusError {

		return fmt.Errorf("%w: service reported: %s",
			ErrInvalidServiceResponse, svcErr.Reason)
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidServiceResponse, err)
	}

	return nil
}
