package lnaddr

// PayResponse is the JSON document returned by the LN SERVICE's well-known
// LNURL-pay endpoint.
type PayResponse struct {
	// Callback is the URL from LN SERVICE which will accept the pay request
	// parameters.
	Callback string `json:"callback"`

	// MaxSendable is the max amount, in millisatoshis, LN SERVICE is
	// willing to receive.
	MaxSendable int64 `json:"maxSendable"`

	// MinSendable is the min amount, in millisatoshis, LN SERVICE is
	// willing to receive, can not be less than 1 or more than
	// `maxSendable`.
	MinSendable int64 `json:"minSendable"`

	// Metadata json which must be presented as raw string here, this is
	// required to pass signature verification at a later step.
	Metadata string `json:"metadata"`

	// CommentAllowed is the max length of a comment that LN SERVICE will
	// pass on to the invoice, zero if comments are not accepted.
	CommentAllowed int64 `json:"commentAllowed"`

	// Type of LNURL.
	Tag Type `json:"tag"`
}

// InvoiceResponse is the JSON document returned by the callback endpoint
// advertised in PayResponse.
type InvoiceResponse struct {
	// PayRequest is a bech32-serialized lightning invoice.
	PayRequest string `json:"pr"`

	// Routes an empty array.
	Routes []string `json:"routes"`

	// SuccessAction is an optional action to be taken by the wallet once
	// the invoice is paid.
	SuccessAction *SuccessAction `json:"successAction,omitempty"`
}

// SuccessAction describes what a wallet should show the user after a
// successful payment.
type SuccessAction struct {
	Tag         string `json:"tag"`
	Message     string `json:"message,omitempty"`
	Description string `json:"description,omitempty"`
	URL         string `json:"url,omitempty"`
}

type Type string

const (
	TypePayRequest = "payRequest"
)

// StatusError is the status LN SERVICE uses when reporting a failure in an
// otherwise well-formed JSON body.
const StatusError = "ERROR"

type Error struct {
	Status string `json:"status"`
	Reason string `json:"reason"`
}
