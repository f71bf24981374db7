// Package netaxepttest runs an in-process imitation of the Netaxept REST
// endpoints for tests. It keeps a small amount of per-transaction state so
// that lifecycle rejections look like the real gateway's.
package netaxepttest

import (
	"context"
	"encoding/xml"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"sync"

	"github.com/google/uuid"
)

// Test card numbers understood by the fake.
const (
	ValidCard       = "4925000000000004"
	FailingAuthCard = "4925000000000087"
)

const (
	MerchantID = "12002835"
	Token      = "test-token"
)

type transaction struct {
	amount      int64
	currency    string
	orderNumber string
	card        string
	authorized  bool
	captured    int64
	credited    int64
	annulled    bool
	authID      string
	lastError   *wireLastError
}

// Gateway is an httptest.Server speaking the gateway's wire format.
type Gateway struct {
	*httptest.Server

	mu    sync.Mutex
	txns  map[string]*transaction
	calls map[string]int
}

func NewGateway() *Gateway {
	g := &Gateway{
		txns:  make(map[string]*transaction),
		calls: make(map[string]int),
	}
	mux := http.NewServeMux()
	mux.HandleFunc("/Netaxept/Register.aspx", g.register)
	mux.HandleFunc("/Netaxept/Process.aspx", g.process)
	mux.HandleFunc("/Netaxept/Query.aspx", g.query)
	mux.HandleFunc("/Terminal/default.aspx", g.terminal)
	g.Server = httptest.NewServer(mux)
	return g
}

// Calls returns how many requests hit the given path.
func (g *Gateway) Calls(path string) int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.calls[path]
}

// CardSubmitter enters card data on the hosted terminal page, standing in for
// a cardholder's browser.
type CardSubmitter interface {
	SubmitCardData(ctx context.Context, terminalURL, cardNumber string, expiryMonth, expiryYear int, securityCode string) error
}

// SubmitCardData posts the terminal form the way a browser would.
func (g *Gateway) SubmitCardData(ctx context.Context, terminalURL, cardNumber string, expiryMonth, expiryYear int, securityCode string) error {
	form := url.Values{}
	form.Set("cardNo", cardNumber)
	form.Set("month", fmt.Sprintf("%02d", expiryMonth))
	form.Set("year", strconv.Itoa(expiryYear))
	form.Set("securityCode", securityCode)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, terminalURL, strings.NewReader(form.Encode()))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := g.Client().Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("terminal returned %d", resp.StatusCode)
	}
	return nil
}

func (g *Gateway) authenticate(w http.ResponseWriter, q url.Values) bool {
	if q.Get("merchantId") == MerchantID && q.Get("token") == Token {
		return true
	}
	writeException(w, "AuthenticationException", "Authentication failed", nil)
	return false
}

func (g *Gateway) register(w http.ResponseWriter, r *http.Request) {
	q := g.track(r)
	if !g.authenticate(w, q) {
		return
	}

	amount, _ := strconv.ParseInt(q.Get("amount"), 10, 64)
	if amount <= 0 {
		writeException(w, "ValidationException", "Transaction amount must be greater than zero.", nil)
		return
	}
	if q.Get("currencyCode") == "" {
		writeException(w, "ValidationException", "Missing parameter: 'Currency Code'", nil)
		return
	}

	id := strings.ReplaceAll(uuid.NewString(), "-", "")
	g.mu.Lock()
	g.txns[id] = &transaction{amount: amount, currency: q.Get("currencyCode"), orderNumber: q.Get("orderNumber")}
	g.mu.Unlock()

	writeXML(w, registerResponse{TransactionID: id})
}

func (g *Gateway) terminal(w http.ResponseWriter, r *http.Request) {
	g.track(r)
	if err := r.ParseForm(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if r.URL.Query().Get("merchantId") != MerchantID {
		http.Error(w, "unknown merchant", http.StatusBadRequest)
		return
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	txn, ok := g.txns[r.URL.Query().Get("transactionId")]
	if !ok {
		http.Error(w, "unknown transaction", http.StatusNotFound)
		return
	}
	if r.Method == http.MethodPost {
		txn.card = r.PostForm.Get("cardNo")
	}
	w.Header().Set("Content-Type", "text/html")
	fmt.Fprint(w, `<html><body><form id="form1"></form></body></html>`)
}

func (g *Gateway) process(w http.ResponseWriter, r *http.Request) {
	q := g.track(r)
	if !g.authenticate(w, q) {
		return
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	txn, ok := g.txns[q.Get("transactionId")]
	if !ok {
		writeException(w, "NotFoundException", "Unable to find transaction", nil)
		return
	}

	operation := q.Get("operation")
	amount, _ := strconv.ParseInt(q.Get("transactionAmount"), 10, 64)

	var reject *wireLastError
	switch operation {
	case "AUTH", "SALE":
		name := "Auth"
		if operation == "SALE" {
			name = "Sale"
		}
		switch {
		case txn.annulled || txn.authorized:
			reject = bbsError(name, "98", "Transaction already processed")
		case txn.card == "":
			reject = bbsError(name, "99", "Auth Reg Comp Failure (card data missing)")
		case txn.card == FailingAuthCard:
			reject = bbsError(name, "99", "Auth Reg Comp Failure (4925000000000087)")
		default:
			txn.authorized = true
			txn.authID = strconv.Itoa(100000 + len(g.txns))
			if operation == "SALE" {
				txn.captured = amount
			}
		}
	case "CAPTURE":
		switch {
		case !txn.authorized || txn.annulled:
			reject = bbsError("Capture", "25", "Transaction not authorized")
		case txn.captured > 0:
			reject = bbsError("Capture", "98", "Transaction already captured")
		default:
			txn.captured = amount
		}
	case "CREDIT":
		switch {
		case txn.captured == 0 || txn.annulled:
			reject = bbsError("Credit", "25", "Transaction not captured")
		case txn.credited+amount > txn.captured:
			reject = bbsError("Credit", "17", "Credit amount exceeds captured amount")
		default:
			txn.credited += amount
		}
	case "ANNUL":
		switch {
		case txn.annulled:
			reject = bbsError("Annul", "98", "Transaction already annulled")
		case txn.captured > 0:
			reject = bbsError("Annul", "25", "Transaction already captured")
		default:
			txn.annulled = true
		}
	default:
		writeException(w, "ValidationException", "Invalid operation: "+operation, nil)
		return
	}

	if reject != nil {
		txn.lastError = reject
		writeException(w, "BBSException", reject.ResponseText, &wireResultOut{
			ResponseCode:   reject.ResponseCode,
			ResponseText:   reject.ResponseText,
			ResponseSource: reject.ResponseSource,
		})
		return
	}

	writeXML(w, processResponse{
		Operation:       operation,
		ResponseCode:    "OK",
		TransactionID:   q.Get("transactionId"),
		MerchantID:      MerchantID,
		AuthorizationID: txn.authID,
	})
}

func (g *Gateway) query(w http.ResponseWriter, r *http.Request) {
	q := g.track(r)
	if !g.authenticate(w, q) {
		return
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	id := q.Get("transactionId")
	txn, ok := g.txns[id]
	if !ok {
		writeException(w, "QueryException", "Unable to find transaction", nil)
		return
	}

	writeXML(w, paymentInfo{
		MerchantID:    MerchantID,
		TransactionID: id,
		OrderInformation: orderInformation{
			Amount:      txn.amount,
			Currency:    txn.currency,
			OrderNumber: txn.orderNumber,
		},
		Summary: summary{
			AmountCaptured:  txn.captured,
			AmountCredited:  txn.credited,
			Annulled:        txn.annulled,
			Authorized:      txn.authorized,
			AuthorizationID: txn.authID,
		},
		Error: txn.lastError,
	})
}

func (g *Gateway) track(r *http.Request) url.Values {
	g.mu.Lock()
	g.calls[r.URL.Path]++
	g.mu.Unlock()
	return r.URL.Query()
}

func bbsError(operation, code, text string) *wireLastError {
	return &wireLastError{Operation: operation, ResponseCode: code, ResponseText: text, ResponseSource: "Netaxept"}
}

type registerResponse struct {
	XMLName       xml.Name `xml:"RegisterResponse"`
	TransactionID string   `xml:"TransactionId"`
}

type processResponse struct {
	XMLName         xml.Name `xml:"ProcessResponse"`
	Operation       string   `xml:"Operation"`
	ResponseCode    string   `xml:"ResponseCode"`
	TransactionID   string   `xml:"TransactionId"`
	MerchantID      string   `xml:"MerchantId"`
	AuthorizationID string   `xml:"AuthorizationId,omitempty"`
}

type paymentInfo struct {
	XMLName          xml.Name         `xml:"PaymentInfo"`
	MerchantID       string           `xml:"MerchantId"`
	TransactionID    string           `xml:"TransactionId"`
	OrderInformation orderInformation `xml:"OrderInformation"`
	Summary          summary          `xml:"Summary"`
	Error            *wireLastError   `xml:"Error,omitempty"`
}

type orderInformation struct {
	Amount      int64  `xml:"Amount"`
	Currency    string `xml:"Currency"`
	OrderNumber string `xml:"OrderNumber"`
}

type summary struct {
	AmountCaptured  int64  `xml:"AmountCaptured"`
	AmountCredited  int64  `xml:"AmountCredited"`
	Annulled        bool   `xml:"Annulled"`
	Authorized      bool   `xml:"Authorized"`
	AuthorizationID string `xml:"AuthorizationId,omitempty"`
}

type wireLastError struct {
	Operation      string `xml:"Operation"`
	ResponseCode   string `xml:"ResponseCode"`
	ResponseSource string `xml:"ResponseSource"`
	ResponseText   string `xml:"ResponseText"`
}

type exception struct {
	XMLName xml.Name          `xml:"Exception"`
	Error   exceptionErrorOut `xml:"Error"`
}

type exceptionErrorOut struct {
	Type    string         `xml:"xsi:type,attr"`
	XSI     string         `xml:"xmlns:xsi,attr"`
	Message string         `xml:"Message"`
	Result  *wireResultOut `xml:"Result,omitempty"`
}

type wireResultOut struct {
	ResponseCode   string `xml:"ResponseCode"`
	ResponseSource string `xml:"ResponseSource"`
	ResponseText   string `xml:"ResponseText"`
}

func writeException(w http.ResponseWriter, kind, message string, result *wireResultOut) {
	writeXML(w, exception{Error: exceptionErrorOut{
		Type:    kind,
		XSI:     "http://www.w3.org/2001/XMLSchema-instance",
		Message: message,
		Result:  result,
	}})
}

func writeXML(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/xml; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(xml.Header))
	_ = xml.NewEncoder(w).Encode(v)
}
