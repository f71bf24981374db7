package model

import (
	"time"
)

// OperationRecord is one journal line: a gateway call and what it returned.
type OperationRecord struct {
	ID             string    `json:"id"`
	TransactionID  string    `json:"transaction_id"`
	Operation      string    `json:"operation"`
	Amount         *int64    `json:"amount,omitempty"`
	Currency       string    `json:"currency,omitempty"`
	OrderNumber    string    `json:"order_number,omitempty"`
	Successful     bool      `json:"successful"`
	ResponseCode   string    `json:"response_code,omitempty"`
	ResponseText   string    `json:"response_text,omitempty"`
	ResponseSource string    `json:"response_source,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
}
