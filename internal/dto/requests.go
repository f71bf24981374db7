package dto

import "github.com/shopspring/decimal"

// RegisterRequest amounts are in major units ("201.00"); the service converts
// them to minor units for the gateway.
type RegisterRequest struct {
	Amount           *decimal.Decimal `json:"amount" binding:"required"`
	Currency         string           `json:"currency" binding:"omitempty,len=3,alpha"`
	OrderNumber      string           `json:"order_number" binding:"omitempty,max=32"`
	RedirectURL      string           `json:"redirect_url" binding:"required,url"`
	OrderDescription string           `json:"order_description" binding:"omitempty,max=1500"`
	Language         string           `json:"language" binding:"omitempty,oneof=no_NO sv_SE da_DK fi_FI en_GB de_DE fr_FR ru_RU pl_PL nl_NL es_ES it_IT pt_PT et_EE lv_LV lt_LT"`
}

// ProcessRequest drives auth, sale, capture and credit. ExpectedState is an
// optional lifecycle hint checked locally before the gateway is called.
type ProcessRequest struct {
	Amount        *decimal.Decimal `json:"amount" binding:"required"`
	Currency      string           `json:"currency" binding:"omitempty,len=3,alpha"`
	ExpectedState string           `json:"expected_state" binding:"omitempty"`
}

type AnnulRequest struct {
	ExpectedState string `json:"expected_state" binding:"omitempty"`
}
