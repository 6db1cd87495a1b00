package lnaddr_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/ellemouton/lnaddr"

	"github.com/lightningnetwork/lnd/lnwire"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

// payService is a minimal LNURL-pay service: a discovery endpoint handing
// out the pay request parameters and a callback endpoint handing out a
// canned invoice.
type payService struct {
	server *httptest.Server

	params     lnaddr.PayResponse
	payRequest string

	// invoiceHandler, when set, replaces the default callback handler.
	invoiceHandler http.HandlerFunc

	// callbackQuery records the query parameters of the last callback
	// request, nil if the callback was never hit.
	callbackQuery url.Values
}

func newPayService(t *testing.T) *payService {
	s := &payService{payRequest: testInvoice}

	mux := http.NewServeMux()
	mux.HandleFunc("/.well-known/lnurlp/alice", s.pay)
	mux.HandleFunc("/invoice", s.invoice)

	s.server = httptest.NewServer(mux)
	t.Cleanup(s.server.Close)

	s.params = lnaddr.PayResponse{
		Callback:    s.server.URL + "/invoice",
		MinSendable: 1_000,
		MaxSendable: 1_000_000_000,
		Metadata:    `[["text/plain","Pay to alice"]]`,
		Tag:         lnaddr.TypePayRequest,
	}

	return s
}

// address returns a lightning address whose domain part points at the test
// server.
func (s *payService) address() string {
	return "alice@" + strings.TrimPrefix(s.server.URL, "http://")
}

func (s *payService) pay(w http.ResponseWriter, r *http.Request) {
	json.NewEncoder(w).Encode(s.params)
}

func (s *payService) invoice(w http.ResponseWriter, r *http.Request) {
	s.callbackQuery = r.URL.Query()

	if s.invoiceHandler != nil {
		s.invoiceHandler(w, r)
		return
	}

	json.NewEncoder(w).Encode(lnaddr.InvoiceResponse{
		PayRequest: s.payRequest,
	})
}

func newTestResolver() *lnaddr.Resolver {
	return lnaddr.NewResolver(&lnaddr.Config{AllowInsecure: true})
}

func TestResolve(t *testing.T) {
	s := newPayService(t)
	resolver := newTestResolver()

	// 0.000003 BTC converts to the 300,000 msat embedded in the test
	// invoice.
	invoice, err := resolver.Resolve(
		context.Background(), s.address(),
		decimal.RequireFromString("0.000003"), nil,
	)
	require.NoError(t, err)

	// The invoice comes back unchanged.
	require.Equal(t, testInvoice, invoice)

	// The callback was queried with the millisatoshi amount and no
	// comment.
	require.NotNil(t, s.callbackQuery)
	require.Equal(t, "300000", s.callbackQuery.Get("amount"))
	require.Empty(t, s.callbackQuery.Get("comment"))
}

func TestResolveAmountOutOfRange(t *testing.T) {
	s := newPayService(t)
	s.params.MinSendable = 1_000
	s.params.MaxSendable = 500_000

	resolver := newTestResolver()

	// 0.00000000999 BTC converts to 999 msat, one below the minimum.
	_, err := resolver.Resolve(
		context.Background(), s.address(),
		decimal.RequireFromString("0.00000000999"), nil,
	)

	var outOfRange *lnaddr.AmountOutOfRangeError
	require.ErrorAs(t, err, &outOfRange)
	require.Equal(t, lnwire.MilliSatoshi(999), outOfRange.Amount)
	require.Equal(t, lnwire.MilliSatoshi(1_000), outOfRange.Min)
	require.Equal(t, lnwire.MilliSatoshi(500_000), outOfRange.Max)

	// The bounds are also reported in the display unit.
	require.True(t, outOfRange.MinBTC().Equal(
		decimal.RequireFromString("0.00000001"),
	))
	require.True(t, outOfRange.MaxBTC().Equal(
		decimal.RequireFromString("0.000005"),
	))

	// No invoice was requested.
	require.Nil(t, s.callbackQuery)
}

func TestResolveUnsupportedServiceType(t *testing.T) {
	s := newPayService(t)
	s.params.Tag = "withdrawRequest"

	resolver := newTestResolver()

	_, err := resolver.Resolve(
		context.Background(), s.address(),
		decimal.RequireFromString("0.000003"), nil,
	)
	require.ErrorIs(t, err, lnaddr.ErrUnsupportedServiceType)
	require.Nil(t, s.callbackQuery)
}

func TestResolveInvalidBounds(t *testing.T) {
	s := newPayService(t)
	s.params.MinSendable = 500_000
	s.params.MaxSendable = 1_000

	resolver := newTestResolver()

	_, err := resolver.Resolve(
		context.Background(), s.address(),
		decimal.RequireFromString("0.000003"), nil,
	)
	require.ErrorIs(t, err, lnaddr.ErrInvalidServiceResponse)
}

func TestResolveAmountMismatch(t *testing.T) {
	s := newPayService(t)
	resolver := newTestResolver()

	// 0.000004 BTC is within the advertised bounds, but the service
	// returns an invoice for 300,000 msat.
	_, err := resolver.Resolve(
		context.Background(), s.address(),
		decimal.RequireFromString("0.000004"), nil,
	)

	var mismatch *lnaddr.AmountMismatchError
	require.ErrorAs(t, err, &mismatch)
	require.Equal(t, lnwire.MilliSatoshi(400_000), mismatch.Requested)
	require.Equal(t, testInvoiceMsat, mismatch.Invoice)
}

func TestResolveMissingInvoice(t *testing.T) {
	s := newPayService(t)
	s.payRequest = ""

	resolver := newTestResolver()

	_, err := resolver.Resolve(
		context.Background(), s.address(),
		decimal.RequireFromString("0.000003"), nil,
	)
	require.ErrorIs(t, err, lnaddr.ErrInvalidServiceResponse)
}

func TestResolveServiceError(t *testing.T) {
	s := newPayService(t)
	s.invoiceHandler = func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(lnaddr.Error{
			Status: lnaddr.StatusError,
			Reason: "no route found",
		})
	}

	resolver := newTestResolver()

	_, err := resolver.Resolve(
		context.Background(), s.address(),
		decimal.RequireFromString("0.000003"), nil,
	)
	require.ErrorIs(t, err, lnaddr.ErrInvalidServiceResponse)
	require.Contains(t, err.Error(), "no route found")
}

func TestResolveNonStandardSuccessStatus(t *testing.T) {
	s := newPayService(t)
	s.invoiceHandler = func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(lnaddr.InvoiceResponse{
			PayRequest: s.payRequest,
		})
	}

	resolver := newTestResolver()

	// Any 2xx status is accepted, not just 200.
	invoice, err := resolver.Resolve(
		context.Background(), s.address(),
		decimal.RequireFromString("0.000003"), nil,
	)
	require.NoError(t, err)
	require.Equal(t, testInvoice, invoice)
}

func TestResolveComment(t *testing.T) {
	s := newPayService(t)
	s.params.CommentAllowed = 5

	resolver := newTestResolver()

	_, err := resolver.Resolve(
		context.Background(), s.address(),
		decimal.RequireFromString("0.000003"),
		&lnaddr.PayOptions{Comment: "hello world"},
	)
	require.NoError(t, err)
	require.Equal(t, "hello", s.callbackQuery.Get("comment"))
}

func TestResolveCallbackWithQuery(t *testing.T) {
	s := newPayService(t)
	s.params.Callback = s.server.URL + "/invoice?id=abc123"

	resolver := newTestResolver()

	_, err := resolver.Resolve(
		context.Background(), s.address(),
		decimal.RequireFromString("0.000003"), nil,
	)
	require.NoError(t, err)
	require.Equal(t, "abc123", s.callbackQuery.Get("id"))
	require.Equal(t, "300000", s.callbackQuery.Get("amount"))
}

func TestResolveDiscoveryFailure(t *testing.T) {
	s := newPayService(t)
	resolver := newTestResolver()

	// An unknown user yields a 404 from the mux: the endpoint was
	// reachable but the response is unusable.
	address := "mallory@" + strings.TrimPrefix(s.server.URL, "http://")
	_, err := resolver.Resolve(
		context.Background(), address,
		decimal.RequireFromString("0.000003"), nil,
	)
	require.ErrorIs(t, err, lnaddr.ErrInvalidServiceResponse)
}

func TestResolveEndpointUnreachable(t *testing.T) {
	s := newPayService(t)
	address := s.address()
	s.server.Close()

	resolver := newTestResolver()

	_, err := resolver.Resolve(
		context.Background(), address,
		decimal.RequireFromString("0.000003"), nil,
	)
	require.ErrorIs(t, err, lnaddr.ErrEndpointUnreachable)
}

// roundTripFunc lets a test fail the moment a request would leave the
// resolver.
type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(r *http.Request) (*http.Response, error) {
	return f(r)
}

func TestResolveMalformedAddressFailsFast(t *testing.T) {
	resolver := lnaddr.NewResolver(&lnaddr.Config{
		Client: &http.Client{
			Transport: roundTripFunc(func(r *http.Request) (
				*http.Response, error) {

				t.Fatalf("unexpected request to %s", r.URL)
				return nil, errors.New("unreachable")
			}),
		},
	})

	_, err := resolver.Resolve(
		context.Background(), "not-an-address",
		decimal.RequireFromString("0.000003"), nil,
	)
	require.ErrorIs(t, err, lnaddr.ErrMalformedAddress)
}
