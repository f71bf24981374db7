package netaxept

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"strconv"
	"strings"
)

const (
	exceptionRoot   = "Exception"
	gatewaySource   = "Netaxept"
	maxBodyInErrors = 512
)

// Response is the outcome of one gateway call. A Response with Successful set
// never carries an Error; one without always carries a fully populated Error.
type Response struct {
	Successful    bool
	Operation     Operation
	TransactionID string
	Error         *Error

	// ResponseCode and AuthorizationID are set on successful process calls.
	ResponseCode    string
	AuthorizationID string

	// Payment is set on query responses.
	Payment *PaymentInfo
}

// Error describes a business-level rejection.
type Error struct {
	Operation      string
	ResponseCode   string
	ResponseText   string
	ResponseSource string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s failed: %s %s (source %s)", e.Operation, e.ResponseCode, e.ResponseText, e.ResponseSource)
}

// PaymentInfo is the read model returned by Query.
type PaymentInfo struct {
	TransactionID string
	OrderNumber   string
	Amount        int64
	Currency      string
	Summary       Summary
}

type Summary struct {
	AmountCaptured  int64
	AmountCredited  int64
	Authorized      bool
	Annulled        bool
	AuthorizationID string
}

// State derives the lifecycle state from the gateway summary. A sale and an
// auth followed by capture both report as Captured.
func (p *PaymentInfo) State() State {
	s := p.Summary
	switch {
	case s.Annulled:
		return StateAnnulled
	case s.AmountCredited > 0:
		return StateCredited
	case s.AmountCaptured > 0:
		return StateCaptured
	case s.Authorized:
		return StateAuthorized
	default:
		return StateRegistered
	}
}

type wireEnvelope struct {
	XMLName          xml.Name
	TransactionID    string       `xml:"TransactionId"`
	ResponseCode     string       `xml:"ResponseCode"`
	AuthorizationID  string       `xml:"AuthorizationId"`
	Error            *wireError   `xml:"Error"`
	OrderInformation *wireOrder   `xml:"OrderInformation"`
	Summary          *wireSummary `xml:"Summary"`
}

type wireError struct {
	Type           string      `xml:"type,attr"`
	Message        string      `xml:"Message"`
	Operation      string      `xml:"Operation"`
	ResponseCode   string      `xml:"ResponseCode"`
	ResponseText   string      `xml:"ResponseText"`
	ResponseSource string      `xml:"ResponseSource"`
	Result         *wireResult `xml:"Result"`
}

type wireResult struct {
	Operation      string `xml:"Operation"`
	ResponseCode   string `xml:"ResponseCode"`
	ResponseText   string `xml:"ResponseText"`
	ResponseSource string `xml:"ResponseSource"`
}

type wireOrder struct {
	Amount      string `xml:"Amount"`
	Currency    string `xml:"Currency"`
	OrderNumber string `xml:"OrderNumber"`
}

type wireSummary struct {
	AmountCaptured  string `xml:"AmountCaptured"`
	AmountCredited  string `xml:"AmountCredited"`
	Authorized      string `xml:"Authorized"`
	Annulled        string `xml:"Annulled"`
	AuthorizationID string `xml:"AuthorizationId"`
}

// ParseResponse decodes a gateway body for the given operation.
func ParseResponse(body []byte, op Operation) (*Response, error) {
	if !op.Valid() {
		return nil, &InvalidOperationError{Operation: op}
	}
	if len(bytes.TrimSpace(body)) == 0 {
		return nil, &MalformedResponseError{Operation: op, Reason: "empty body"}
	}

	var env wireEnvelope
	if err := xml.Unmarshal(body, &env); err != nil {
		return nil, &MalformedResponseError{Operation: op, Reason: "invalid xml", Body: truncate(body), Err: err}
	}

	root := env.XMLName.Local
	if root != op.rootElement() && root != exceptionRoot {
		return nil, &MalformedResponseError{
			Operation: op,
			Reason:    fmt.Sprintf("unexpected root element <%s>, want <%s>", root, op.rootElement()),
			Body:      truncate(body),
		}
	}

	resp := &Response{Operation: op}

	if env.Error != nil {
		resp.Error = env.Error.normalize(op)
		if op == OpQuery && root != exceptionRoot {
			resp.Payment = env.paymentInfo()
		}
		return resp, nil
	}
	if root == exceptionRoot {
		return nil, &MalformedResponseError{Operation: op, Reason: "exception without <Error>", Body: truncate(body)}
	}

	resp.Successful = true
	switch {
	case op == OpRegister:
		resp.TransactionID = strings.TrimSpace(env.TransactionID)
		if resp.TransactionID == "" {
			return nil, &MalformedResponseError{Operation: op, Reason: "missing <TransactionId>", Body: truncate(body)}
		}
	case op == OpQuery:
		resp.Payment = env.paymentInfo()
	default:
		resp.ResponseCode = strings.TrimSpace(env.ResponseCode)
		resp.AuthorizationID = strings.TrimSpace(env.AuthorizationID)
	}

	return resp, nil
}

// normalize fills every field so that callers can rely on a complete
// descriptor. Exception payloads nest the details under <Result> and may
// carry only a <Message>.
func (w *wireError) normalize(op Operation) *Error {
	e := &Error{
		Operation:      w.Operation,
		ResponseCode:   w.ResponseCode,
		ResponseText:   w.ResponseText,
		ResponseSource: w.ResponseSource,
	}
	if r := w.Result; r != nil {
		e.Operation = firstNonEmpty(e.Operation, r.Operation)
		e.ResponseCode = firstNonEmpty(e.ResponseCode, r.ResponseCode)
		e.ResponseText = firstNonEmpty(e.ResponseText, r.ResponseText)
		e.ResponseSource = firstNonEmpty(e.ResponseSource, r.ResponseSource)
	}

	e.Operation = firstNonEmpty(e.Operation, string(op))
	e.ResponseCode = firstNonEmpty(e.ResponseCode, w.Type, exceptionRoot)
	e.ResponseText = firstNonEmpty(e.ResponseText, w.Message, e.ResponseCode)
	e.ResponseSource = firstNonEmpty(e.ResponseSource, gatewaySource)
	return e
}

func (env *wireEnvelope) paymentInfo() *PaymentInfo {
	info := &PaymentInfo{TransactionID: strings.TrimSpace(env.TransactionID)}
	if o := env.OrderInformation; o != nil {
		info.Amount = parseInt(o.Amount)
		info.Currency = strings.TrimSpace(o.Currency)
		info.OrderNumber = strings.TrimSpace(o.OrderNumber)
	}
	if s := env.Summary; s != nil {
		info.Summary = Summary{
			AmountCaptured:  parseInt(s.AmountCaptured),
			AmountCredited:  parseInt(s.AmountCredited),
			Authorized:      parseBool(s.Authorized),
			Annulled:        parseBool(s.Annulled),
			AuthorizationID: strings.TrimSpace(s.AuthorizationID),
		}
	}
	return info
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

func parseInt(s string) int64 {
	n, _ := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	return n
}

func parseBool(s string) bool {
	b, _ := strconv.ParseBool(strings.TrimSpace(s))
	return b
}

func truncate(body []byte) string {
	if len(body) > maxBodyInErrors {
		return string(body[:maxBodyInErrors]) + "..."
	}
	return string(body)
}
