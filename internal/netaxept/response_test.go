package netaxept

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseResponse_Success(t *testing.T) {
	t.Run("register yields a transaction id", func(t *testing.T) {
		body := `<?xml version="1.0" encoding="utf-8"?>
<RegisterResponse xmlns:xsi="http://www.w3.org/2001/XMLSchema-instance" xmlns:xsd="http://www.w3.org/2001/XMLSchema">
  <TransactionId>b127f98b77f741fca6bb49981ee6e846</TransactionId>
</RegisterResponse>`
		resp, err := ParseResponse([]byte(body), OpRegister)
		require.NoError(t, err)
		assert.True(t, resp.Successful)
		assert.Nil(t, resp.Error)
		assert.Equal(t, "b127f98b77f741fca6bb49981ee6e846", resp.TransactionID)
		assert.Equal(t, OpRegister, resp.Operation)
	})

	t.Run("process success carries no transaction id", func(t *testing.T) {
		body := `<ProcessResponse>
  <Operation>SALE</Operation>
  <ResponseCode>OK</ResponseCode>
  <TransactionId>abc</TransactionId>
  <AuthorizationId>064392</AuthorizationId>
</ProcessResponse>`
		resp, err := ParseResponse([]byte(body), OpSale)
		require.NoError(t, err)
		assert.True(t, resp.Successful)
		assert.Nil(t, resp.Error)
		assert.Empty(t, resp.TransactionID)
		assert.Equal(t, "OK", resp.ResponseCode)
		assert.Equal(t, "064392", resp.AuthorizationID)
	})

	t.Run("query exposes payment info and derived state", func(t *testing.T) {
		body := `<PaymentInfo>
  <TransactionId>abc</TransactionId>
  <OrderInformation><Amount>20100</Amount><Currency>NOK</Currency><OrderNumber>12</OrderNumber></OrderInformation>
  <Summary>
    <AmountCaptured>0</AmountCaptured>
    <AmountCredited>0</AmountCredited>
    <Annulled>false</Annulled>
    <Authorized>true</Authorized>
    <AuthorizationId>064392</AuthorizationId>
  </Summary>
</PaymentInfo>`
		resp, err := ParseResponse([]byte(body), OpQuery)
		require.NoError(t, err)
		assert.True(t, resp.Successful)
		require.NotNil(t, resp.Payment)
		assert.Equal(t, int64(20100), resp.Payment.Amount)
		assert.Equal(t, "NOK", resp.Payment.Currency)
		assert.Equal(t, "12", resp.Payment.OrderNumber)
		assert.True(t, resp.Payment.Summary.Authorized)
		assert.Equal(t, StateAuthorized, resp.Payment.State())
	})
}

func TestParseResponse_BusinessErrors(t *testing.T) {
	t.Run("validation exception with only a message", func(t *testing.T) {
		body := `<?xml version="1.0" encoding="utf-8"?>
<Exception xmlns:xsi="http://www.w3.org/2001/XMLSchema-instance">
  <Error xsi:type="ValidationException">
    <Message>Transaction amount must be greater than zero.</Message>
  </Error>
</Exception>`
		resp, err := ParseResponse([]byte(body), OpRegister)
		require.NoError(t, err)
		assert.False(t, resp.Successful)
		assert.Empty(t, resp.TransactionID)
		require.NotNil(t, resp.Error)
		assert.Contains(t, resp.Error.ResponseText, "Transaction amount must be greater than zero.")
		assert.Equal(t, "Register", resp.Error.Operation)
		assert.Equal(t, "ValidationException", resp.Error.ResponseCode)
		assert.Equal(t, "Netaxept", resp.Error.ResponseSource)
	})

	t.Run("bbs exception with nested result", func(t *testing.T) {
		body := `<Exception xmlns:xsi="http://www.w3.org/2001/XMLSchema-instance">
  <Error xsi:type="BBSException">
    <Message>Auth Reg Comp Failure (4925000000000087)</Message>
    <Result>
      <ResponseCode>99</ResponseCode>
      <ResponseSource>Netaxept</ResponseSource>
      <ResponseText><![CDATA[Auth Reg Comp Failure (4925000000000087)]]></ResponseText>
    </Result>
  </Error>
</Exception>`
		resp, err := ParseResponse([]byte(body), OpSale)
		require.NoError(t, err)
		assert.False(t, resp.Successful)
		require.NotNil(t, resp.Error)
		assert.Equal(t, "Sale", resp.Error.Operation)
		assert.Equal(t, "99", resp.Error.ResponseCode)
		assert.Equal(t, "Auth Reg Comp Failure (4925000000000087)", resp.Error.ResponseText)
		assert.Equal(t, "Netaxept", resp.Error.ResponseSource)
	})

	t.Run("query reports the last recorded error", func(t *testing.T) {
		body := `<PaymentInfo>
  <TransactionId>abc</TransactionId>
  <Summary><AmountCaptured>0</AmountCaptured><Authorized>false</Authorized><Annulled>false</Annulled></Summary>
  <Error>
    <Operation>Sale</Operation>
    <ResponseCode>99</ResponseCode>
    <ResponseSource>Netaxept</ResponseSource>
    <ResponseText>Auth Reg Comp Failure</ResponseText>
  </Error>
</PaymentInfo>`
		resp, err := ParseResponse([]byte(body), OpQuery)
		require.NoError(t, err)
		assert.False(t, resp.Successful)
		require.NotNil(t, resp.Error)
		assert.Equal(t, "Sale", resp.Error.Operation)
		assert.Equal(t, "99", resp.Error.ResponseCode)
		assert.Contains(t, resp.Error.ResponseText, "Auth Reg Comp Failure")
		assert.Equal(t, "Netaxept", resp.Error.ResponseSource)
		require.NotNil(t, resp.Payment)
		assert.Equal(t, StateRegistered, resp.Payment.State())
	})

	t.Run("issuer source is kept", func(t *testing.T) {
		body := `<Exception><Error><Result><ResponseCode>05</ResponseCode><ResponseText>Do not honour</ResponseText><ResponseSource>Issuer</ResponseSource></Result></Error></Exception>`
		resp, err := ParseResponse([]byte(body), OpAuth)
		require.NoError(t, err)
		assert.Equal(t, "Issuer", resp.Error.ResponseSource)
		assert.Equal(t, "Auth", resp.Error.Operation)
	})

	t.Run("empty error element still yields a complete descriptor", func(t *testing.T) {
		resp, err := ParseResponse([]byte(`<Exception><Error/></Exception>`), OpCapture)
		require.NoError(t, err)
		assert.False(t, resp.Successful)
		assert.NotEmpty(t, resp.Error.Operation)
		assert.NotEmpty(t, resp.Error.ResponseCode)
		assert.NotEmpty(t, resp.Error.ResponseText)
		assert.NotEmpty(t, resp.Error.ResponseSource)
	})
}

func TestParseResponse_Malformed(t *testing.T) {
	tests := []struct {
		name string
		body string
		op   Operation
	}{
		{"empty body", "", OpSale},
		{"whitespace body", "  \n", OpQuery},
		{"html error page", "<html><body>Service Unavailable", OpAuth},
		{"not xml", "OK", OpCapture},
		{"wrong root for register", "<ProcessResponse><ResponseCode>OK</ResponseCode></ProcessResponse>", OpRegister},
		{"wrong root for process", "<PaymentInfo/>", OpSale},
		{"register without transaction id", "<RegisterResponse/>", OpRegister},
		{"exception without error", "<Exception/>", OpAnnul},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := ParseResponse([]byte(tt.body), tt.op)
			assert.Nil(t, resp)
			var malformed *MalformedResponseError
			require.True(t, errors.As(err, &malformed), "got %v", err)
			assert.Equal(t, tt.op, malformed.Operation)
			assert.False(t, IsUsageError(err))
		})
	}
}

func TestResponse_SuccessErrorExclusive(t *testing.T) {
	bodies := map[Operation][]string{
		OpRegister: {
			`<RegisterResponse><TransactionId>x</TransactionId></RegisterResponse>`,
			`<Exception><Error><Message>Transaction amount must be greater than zero.</Message></Error></Exception>`,
		},
		OpCredit: {
			`<ProcessResponse><ResponseCode>OK</ResponseCode></ProcessResponse>`,
			`<Exception><Error><Result><ResponseCode>25</ResponseCode></Result></Error></Exception>`,
		},
		OpQuery: {
			`<PaymentInfo><Summary/></PaymentInfo>`,
			`<PaymentInfo><Error><ResponseText>late failure</ResponseText></Error></PaymentInfo>`,
		},
	}
	for op, list := range bodies {
		for _, body := range list {
			resp, err := ParseResponse([]byte(body), op)
			require.NoError(t, err, body)
			if resp.Successful {
				assert.Nil(t, resp.Error, body)
				continue
			}
			require.NotNil(t, resp.Error, body)
			assert.NotEmpty(t, resp.Error.Operation, body)
			assert.NotEmpty(t, resp.Error.ResponseCode, body)
			assert.NotEmpty(t, resp.Error.ResponseText, body)
			assert.NotEmpty(t, resp.Error.ResponseSource, body)
		}
	}
}
