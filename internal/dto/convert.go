package dto

import "github.com/anyulbade/netaxept-gateway/internal/netaxept"

func NewOperationResponse(resp *netaxept.Response) OperationResponse {
	return OperationResponse{
		Successful:      resp.Successful,
		Operation:       resp.Operation.String(),
		TransactionID:   resp.TransactionID,
		AuthorizationID: resp.AuthorizationID,
		Error:           newGatewayError(resp.Error),
	}
}

// NewQueryResponse renders a query result in major units. id is used when the
// gateway returned no payment information.
func NewQueryResponse(id string, resp *netaxept.Response) QueryResponse {
	out := QueryResponse{
		Successful:    resp.Successful,
		TransactionID: id,
		Error:         newGatewayError(resp.Error),
	}

	p := resp.Payment
	if p == nil {
		return out
	}

	if p.TransactionID != "" {
		out.TransactionID = p.TransactionID
	}
	state := p.State()
	out.State = state.String()
	for _, op := range netaxept.AllowedOperations(state) {
		out.NextOperations = append(out.NextOperations, op.String())
	}
	out.OrderNumber = p.OrderNumber
	out.Currency = p.Currency
	out.Amount = netaxept.MajorUnits(p.Amount, p.Currency)
	out.Summary = &PaymentSummary{
		AmountCaptured:  netaxept.MajorUnits(p.Summary.AmountCaptured, p.Currency),
		AmountCredited:  netaxept.MajorUnits(p.Summary.AmountCredited, p.Currency),
		Authorized:      p.Summary.Authorized,
		Annulled:        p.Summary.Annulled,
		AuthorizationID: p.Summary.AuthorizationID,
	}
	return out
}

func newGatewayError(e *netaxept.Error) *GatewayError {
	if e == nil {
		return nil
	}
	return &GatewayError{
		Operation:      e.Operation,
		ResponseCode:   e.ResponseCode,
		ResponseText:   e.ResponseText,
		ResponseSource: e.ResponseSource,
	}
}
