package netaxept

import (
	"net/http"
	"net/url"
	"strconv"
	"strings"
)

// Params are the operation-specific inputs to a gateway call. Amount is in
// minor currency units (øre, cents); nil means "not supplied", which is
// different from an explicit zero.
type Params struct {
	TransactionID string
	Amount        *int64
	CurrencyCode  string
	OrderNumber   string
	RedirectURL   string
	// Extra is passed through verbatim. It cannot override reserved keys.
	Extra url.Values
}

// Amount returns a pointer suitable for Params.Amount.
func Amount(minor int64) *int64 {
	return &minor
}

// Request is a fully built gateway call.
type Request struct {
	Operation Operation
	Method    string
	Endpoint  string
	Params    url.Values
}

// URL returns the endpoint with the encoded query string.
func (r *Request) URL() string {
	return r.Endpoint + "?" + r.Params.Encode()
}

// RedactedURL is URL with the token masked, for logs.
func (r *Request) RedactedURL() string {
	q := make(url.Values, len(r.Params))
	for k, v := range r.Params {
		q[k] = v
	}
	if q.Has("token") {
		q.Set("token", "REDACTED")
	}
	return r.Endpoint + "?" + q.Encode()
}

// reservedParams are the keys Build always owns. The gateway reads query keys
// case-insensitively, so they are stored and compared lowercased.
var reservedParams = map[string]bool{
	"merchantid":        true,
	"token":             true,
	"transactionid":     true,
	"operation":         true,
	"transactionamount": true,
	"amount":            true,
}

// isReserved reports whether an Extra key would collide with a parameter the
// builder sets for op.
func isReserved(key string, op Operation, p Params) bool {
	k := strings.ToLower(key)
	if reservedParams[k] {
		return true
	}
	if op != OpRegister {
		return false
	}
	switch k {
	case "currencycode", "ordernumber":
		return true
	case "redirecturl":
		return p.RedirectURL != ""
	}
	return false
}

type RequestBuilder struct {
	creds Credentials
}

func NewRequestBuilder(creds Credentials) *RequestBuilder {
	return &RequestBuilder{creds: creds}
}

func (b *RequestBuilder) Build(op Operation, p Params) (*Request, error) {
	if !op.Valid() {
		return nil, &InvalidOperationError{Operation: op}
	}
	if op.RequiresTransactionID() && p.TransactionID == "" {
		return nil, &MissingParameterError{Operation: op, Parameter: "transactionId"}
	}
	if op.RequiresAmount() && p.Amount == nil {
		return nil, &MissingParameterError{Operation: op, Parameter: "amount"}
	}
	if op == OpRegister {
		if p.CurrencyCode == "" {
			return nil, &MissingParameterError{Operation: op, Parameter: "currencyCode"}
		}
		if p.OrderNumber == "" {
			return nil, &MissingParameterError{Operation: op, Parameter: "orderNumber"}
		}
	}

	q := url.Values{}
	for k, vs := range p.Extra {
		if isReserved(k, op, p) {
			continue
		}
		for _, v := range vs {
			q.Add(k, v)
		}
	}

	q.Set("merchantId", b.creds.merchantID)
	q.Set("token", b.creds.token)

	switch op {
	case OpRegister:
		q.Set("amount", strconv.FormatInt(*p.Amount, 10))
		q.Set("currencyCode", p.CurrencyCode)
		q.Set("orderNumber", p.OrderNumber)
		if p.RedirectURL != "" {
			q.Set("redirectUrl", p.RedirectURL)
		}
	case OpQuery:
		q.Set("transactionId", p.TransactionID)
	default:
		q.Set("transactionId", p.TransactionID)
		q.Set("operation", op.wireName())
		if op.RequiresAmount() {
			q.Set("transactionAmount", strconv.FormatInt(*p.Amount, 10))
		}
	}

	return &Request{
		Operation: op,
		Method:    http.MethodGet,
		Endpoint:  b.creds.baseURL + op.path(),
		Params:    q,
	}, nil
}

// TerminalURL points the cardholder at the hosted payment page.
func (b *RequestBuilder) TerminalURL(transactionID string) string {
	q := url.Values{}
	q.Set("merchantId", b.creds.merchantID)
	q.Set("transactionId", transactionID)
	return b.creds.baseURL + terminalPath + "?" + q.Encode()
}
