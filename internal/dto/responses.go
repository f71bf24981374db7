package dto

import (
	"github.com/shopspring/decimal"

	"github.com/anyulbade/netaxept-gateway/internal/model"
)

type GatewayError struct {
	Operation      string `json:"operation" yaml:"operation"`
	ResponseCode   string `json:"response_code" yaml:"response_code"`
	ResponseText   string `json:"response_text" yaml:"response_text"`
	ResponseSource string `json:"response_source" yaml:"response_source"`
}

type OperationResponse struct {
	Successful      bool          `json:"successful" yaml:"successful"`
	Operation       string        `json:"operation" yaml:"operation"`
	TransactionID   string        `json:"transaction_id,omitempty" yaml:"transaction_id,omitempty"`
	TerminalURL     string        `json:"terminal_url,omitempty" yaml:"terminal_url,omitempty"`
	AuthorizationID string        `json:"authorization_id,omitempty" yaml:"authorization_id,omitempty"`
	Error           *GatewayError `json:"error,omitempty" yaml:"error,omitempty"`
}

type PaymentSummary struct {
	AmountCaptured  decimal.Decimal `json:"amount_captured" yaml:"amount_captured"`
	AmountCredited  decimal.Decimal `json:"amount_credited" yaml:"amount_credited"`
	Authorized      bool            `json:"authorized" yaml:"authorized"`
	Annulled        bool            `json:"annulled" yaml:"annulled"`
	AuthorizationID string          `json:"authorization_id,omitempty" yaml:"authorization_id,omitempty"`
}

type QueryResponse struct {
	Successful     bool            `json:"successful" yaml:"successful"`
	TransactionID  string          `json:"transaction_id" yaml:"transaction_id"`
	State          string          `json:"state,omitempty" yaml:"state,omitempty"`
	NextOperations []string        `json:"next_operations,omitempty" yaml:"next_operations,omitempty"`
	OrderNumber    string          `json:"order_number,omitempty" yaml:"order_number,omitempty"`
	Amount         decimal.Decimal `json:"amount" yaml:"amount"`
	Currency       string          `json:"currency,omitempty" yaml:"currency,omitempty"`
	Summary        *PaymentSummary `json:"summary,omitempty" yaml:"summary,omitempty"`
	Error          *GatewayError   `json:"error,omitempty" yaml:"error,omitempty"`
}

type TerminalResponse struct {
	TransactionID string `json:"transaction_id" yaml:"transaction_id"`
	TerminalURL   string `json:"terminal_url" yaml:"terminal_url"`
}

type StatusListResponse struct {
	Data []QueryResponse `json:"data" yaml:"data"`
}

type OperationListResponse struct {
	Data       []model.OperationRecord `json:"data" yaml:"data"`
	Pagination Pagination              `json:"pagination" yaml:"pagination"`
}

type Pagination struct {
	Page       int `json:"page" yaml:"page"`
	PageSize   int `json:"page_size" yaml:"page_size"`
	TotalItems int `json:"total_items" yaml:"total_items"`
	TotalPages int `json:"total_pages" yaml:"total_pages"`
}
