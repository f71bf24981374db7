// Package netaxept is a client for the Netaxept card-payment gateway.
//
// Each Client method performs exactly one HTTP round trip and returns a
// *Response. Business rejections (declined cards, zero amounts, illegal
// lifecycle steps) come back as a Response with Successful == false and a
// populated Error; the returned error is reserved for usage mistakes, transport
// failures and protocol violations. Nothing is retried.
//
// Amounts are always integer minor units. Use MinorUnits to convert.
package netaxept

import (
	"context"
	"net/http"
	"net/url"
	"time"

	"github.com/rs/zerolog"
)

// Client is immutable after construction and safe for concurrent use.
type Client struct {
	creds     Credentials
	builder   *RequestBuilder
	transport Transport
	logger    zerolog.Logger
}

type Option func(*Client)

func WithTransport(t Transport) Option {
	return func(c *Client) { c.transport = t }
}

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.transport = NewHTTPTransport(hc) }
}

func WithLogger(l zerolog.Logger) Option {
	return func(c *Client) { c.logger = l }
}

func NewClient(creds Credentials, opts ...Option) *Client {
	c := &Client{
		creds:  creds,
		logger: zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.transport == nil {
		c.transport = NewHTTPTransport(nil)
	}
	c.builder = NewRequestBuilder(creds)
	c.logger = c.logger.With().Str("component", "netaxept").Str("merchant_id", creds.merchantID).Logger()
	return c
}

// RegisterOptions carries the optional register inputs.
type RegisterOptions struct {
	CurrencyCode string
	RedirectURL  string
	Extra        url.Values
}

// Register creates a transaction. The gateway rejects amounts <= 0 with a
// business error; the client does not pre-validate them.
func (c *Client) Register(ctx context.Context, amount int64, orderNumber string, opts RegisterOptions) (*Response, error) {
	return c.Do(ctx, OpRegister, Params{
		Amount:       Amount(amount),
		OrderNumber:  orderNumber,
		CurrencyCode: opts.CurrencyCode,
		RedirectURL:  opts.RedirectURL,
		Extra:        opts.Extra,
	})
}

// Auth reserves the amount on the card entered at the terminal.
func (c *Client) Auth(ctx context.Context, transactionID string, amount int64) (*Response, error) {
	return c.Do(ctx, OpAuth, Params{TransactionID: transactionID, Amount: Amount(amount)})
}

// Sale is auth and capture in one step.
func (c *Client) Sale(ctx context.Context, transactionID string, amount int64) (*Response, error) {
	return c.Do(ctx, OpSale, Params{TransactionID: transactionID, Amount: Amount(amount)})
}

func (c *Client) Capture(ctx context.Context, transactionID string, amount int64) (*Response, error) {
	return c.Do(ctx, OpCapture, Params{TransactionID: transactionID, Amount: Amount(amount)})
}

// Credit refunds a sold or captured payment.
func (c *Client) Credit(ctx context.Context, transactionID string, amount int64) (*Response, error) {
	return c.Do(ctx, OpCredit, Params{TransactionID: transactionID, Amount: Amount(amount)})
}

// Annul cancels a transaction before settlement.
func (c *Client) Annul(ctx context.Context, transactionID string) (*Response, error) {
	return c.Do(ctx, OpAnnul, Params{TransactionID: transactionID})
}

// Query reads the current status of a transaction, including the last error
// the gateway recorded against it.
func (c *Client) Query(ctx context.Context, transactionID string) (*Response, error) {
	return c.Do(ctx, OpQuery, Params{TransactionID: transactionID})
}

// TerminalURL is where the cardholder enters card data. No network call.
func (c *Client) TerminalURL(transactionID string) string {
	return c.builder.TerminalURL(transactionID)
}

func (c *Client) Credentials() Credentials {
	return c.creds
}

// Do builds, sends and parses one operation.
func (c *Client) Do(ctx context.Context, op Operation, p Params) (*Response, error) {
	req, err := c.builder.Build(op, p)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	raw, err := c.transport.Do(ctx, req)
	latency := time.Since(start)
	if err != nil {
		c.logger.Warn().Err(err).
			Str("operation", op.String()).
			Str("transaction_id", p.TransactionID).
			Dur("latency", latency).
			Msg("gateway call failed")
		return nil, &TransportError{Operation: op, Err: err}
	}

	resp, err := ParseResponse(raw.Body, op)
	if err != nil {
		if raw.StatusCode/100 != 2 {
			return nil, &TransportError{
				Operation: op,
				Err:       &StatusError{StatusCode: raw.StatusCode, Body: truncate(raw.Body)},
			}
		}
		c.logger.Error().Err(err).
			Str("operation", op.String()).
			Str("transaction_id", p.TransactionID).
			Int("status", raw.StatusCode).
			Msg("malformed gateway response")
		return nil, err
	}

	event := c.logger.Debug()
	if !resp.Successful {
		event = c.logger.Info().
			Str("response_code", resp.Error.ResponseCode).
			Str("response_source", resp.Error.ResponseSource)
	}
	event.
		Str("operation", op.String()).
		Str("transaction_id", firstNonEmpty(p.TransactionID, resp.TransactionID)).
		Int("status", raw.StatusCode).
		Dur("latency", latency).
		Bool("successful", resp.Successful).
		Msg("gateway call")

	return resp, nil
}
