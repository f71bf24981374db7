package service

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/anyulbade/netaxept-gateway/internal/dto"
	"github.com/anyulbade/netaxept-gateway/internal/model"
	"github.com/anyulbade/netaxept-gateway/internal/netaxept"
)

// ErrJournalDisabled is returned by Operations when no journal is configured.
var ErrJournalDisabled = errors.New("operation journal is disabled")

// MaxStatusBatch caps the number of ids accepted by Statuses.
const MaxStatusBatch = 50

// Journal stores one record per lifecycle call. It is an audit trail only and
// is never read back to decide what the gateway will accept.
type Journal interface {
	Insert(ctx context.Context, rec *model.OperationRecord) error
	CountByTransaction(ctx context.Context, transactionID string) (int, error)
	ListByTransaction(ctx context.Context, transactionID string, limit, offset int) ([]model.OperationRecord, error)
}

type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

type PaymentService struct {
	client      *netaxept.Client
	journal     Journal
	currency    string
	concurrency int
}

// NewPaymentService wires the gateway client. journal may be nil.
func NewPaymentService(client *netaxept.Client, journal Journal, defaultCurrency string, statusConcurrency int) *PaymentService {
	if statusConcurrency < 1 {
		statusConcurrency = 1
	}
	return &PaymentService{
		client:      client,
		journal:     journal,
		currency:    strings.ToUpper(defaultCurrency),
		concurrency: statusConcurrency,
	}
}

func (s *PaymentService) Register(ctx context.Context, req *dto.RegisterRequest) (*netaxept.Response, error) {
	currency := s.currencyOrDefault(req.Currency)
	amount, err := minorUnits(req.Amount, currency)
	if err != nil {
		return nil, err
	}

	orderNumber := req.OrderNumber
	if orderNumber == "" {
		orderNumber = strings.ReplaceAll(uuid.NewString(), "-", "")
	}

	extra := url.Values{}
	if req.OrderDescription != "" {
		extra.Set("orderDescription", req.OrderDescription)
	}
	if req.Language != "" {
		extra.Set("language", req.Language)
	}

	resp, err := s.client.Register(ctx, amount, orderNumber, netaxept.RegisterOptions{
		CurrencyCode: currency,
		RedirectURL:  req.RedirectURL,
		Extra:        extra,
	})
	if err != nil {
		return nil, err
	}

	s.record(ctx, resp.TransactionID, resp, &amount, currency, orderNumber)
	return resp, nil
}

// Process runs auth, sale, capture or credit.
func (s *PaymentService) Process(ctx context.Context, op netaxept.Operation, transactionID string, req *dto.ProcessRequest) (*netaxept.Response, error) {
	if !op.IsProcess() || !op.RequiresAmount() {
		return nil, &netaxept.InvalidOperationError{Operation: op}
	}
	if err := checkHint(req.ExpectedState, op); err != nil {
		return nil, err
	}

	currency := s.currencyOrDefault(req.Currency)
	amount, err := minorUnits(req.Amount, currency)
	if err != nil {
		return nil, err
	}

	resp, err := s.client.Do(ctx, op, netaxept.Params{
		TransactionID: transactionID,
		Amount:        netaxept.Amount(amount),
	})
	if err != nil {
		return nil, err
	}

	s.record(ctx, transactionID, resp, &amount, currency, "")
	return resp, nil
}

func (s *PaymentService) Annul(ctx context.Context, transactionID string, req *dto.AnnulRequest) (*netaxept.Response, error) {
	if err := checkHint(req.ExpectedState, netaxept.OpAnnul); err != nil {
		return nil, err
	}

	resp, err := s.client.Annul(ctx, transactionID)
	if err != nil {
		return nil, err
	}

	s.record(ctx, transactionID, resp, nil, "", "")
	return resp, nil
}

func (s *PaymentService) Query(ctx context.Context, transactionID string) (*netaxept.Response, error) {
	return s.client.Query(ctx, transactionID)
}

// Statuses queries several transactions concurrently. The first transport or
// protocol failure cancels the rest.
func (s *PaymentService) Statuses(ctx context.Context, transactionIDs []string) ([]*netaxept.Response, error) {
	if len(transactionIDs) == 0 {
		return nil, &ValidationError{Field: "ids", Message: "at least one transaction id is required"}
	}
	if len(transactionIDs) > MaxStatusBatch {
		return nil, &ValidationError{Field: "ids", Message: fmt.Sprintf("at most %d transaction ids per request", MaxStatusBatch)}
	}

	results := make([]*netaxept.Response, len(transactionIDs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)

	for i, id := range transactionIDs {
		i, id := i, id
		g.Go(func() error {
			resp, err := s.client.Query(gctx, id)
			if err != nil {
				return fmt.Errorf("query %s: %w", id, err)
			}
			results[i] = resp
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

func (s *PaymentService) TerminalURL(transactionID string) string {
	return s.client.TerminalURL(transactionID)
}

func (s *PaymentService) Operations(ctx context.Context, transactionID string, limit, offset int) ([]model.OperationRecord, int, error) {
	if s.journal == nil {
		return nil, 0, ErrJournalDisabled
	}

	total, err := s.journal.CountByTransaction(ctx, transactionID)
	if err != nil {
		return nil, 0, fmt.Errorf("count operations: %w", err)
	}
	records, err := s.journal.ListByTransaction(ctx, transactionID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	return records, total, nil
}

// record never fails the call: the gateway has already acted. A rejected
// registration has no transaction id to list it under, so it is only logged.
func (s *PaymentService) record(ctx context.Context, transactionID string, resp *netaxept.Response, amount *int64, currency, orderNumber string) {
	if s.journal == nil {
		return
	}
	if transactionID == "" {
		log.Warn().
			Str("operation", resp.Operation.String()).
			Str("order_number", orderNumber).
			Msg("gateway returned no transaction id, not journaled")
		return
	}

	rec := &model.OperationRecord{
		TransactionID: transactionID,
		Operation:     resp.Operation.String(),
		Amount:        amount,
		Currency:      currency,
		OrderNumber:   orderNumber,
		Successful:    resp.Successful,
	}
	if resp.Error != nil {
		rec.ResponseCode = resp.Error.ResponseCode
		rec.ResponseText = resp.Error.ResponseText
		rec.ResponseSource = resp.Error.ResponseSource
	} else {
		rec.ResponseCode = resp.ResponseCode
	}

	if err := s.journal.Insert(context.WithoutCancel(ctx), rec); err != nil {
		log.Error().Err(err).
			Str("transaction_id", transactionID).
			Str("operation", rec.Operation).
			Msg("failed to journal gateway operation")
	}
}

func (s *PaymentService) currencyOrDefault(currency string) string {
	if currency == "" {
		return s.currency
	}
	return strings.ToUpper(currency)
}

func checkHint(expectedState string, op netaxept.Operation) error {
	if expectedState == "" {
		return nil
	}
	state, err := netaxept.ParseState(expectedState)
	if err != nil {
		return &ValidationError{Field: "expected_state", Message: err.Error()}
	}
	return netaxept.CheckTransition(state, op)
}

func minorUnits(amount *decimal.Decimal, currency string) (int64, error) {
	if amount == nil {
		return 0, &ValidationError{Field: "amount", Message: "amount is required"}
	}
	minor, err := netaxept.MinorUnits(*amount, currency)
	if err != nil {
		return 0, &ValidationError{Field: "amount", Message: err.Error()}
	}
	return minor, nil
}
