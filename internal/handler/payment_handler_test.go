package handler

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anyulbade/netaxept-gateway/internal/dto"
	"github.com/anyulbade/netaxept-gateway/internal/middleware"
	"github.com/anyulbade/netaxept-gateway/internal/netaxept/netaxepttest"
)

func doRequest(router *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	var req *http.Request
	if body == "" {
		req, _ = http.NewRequest(method, path, nil)
	} else {
		req, _ = http.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	router.ServeHTTP(w, req)
	return w
}

// registerAndPay registers 201.00 NOK and enters the given card on the
// terminal page.
func registerAndPay(t *testing.T, env *testEnv, card string) string {
	t.Helper()

	w := doRequest(env.router, "POST", "/api/v1/transactions",
		`{"amount":"201.00","redirect_url":"http://localhost:3000/orders/1/return"}`)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var resp dto.OperationResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.True(t, resp.Successful)
	require.NoError(t, env.gateway.SubmitCardData(context.Background(), resp.TerminalURL, card, 6, 2031, "123"))
	return resp.TransactionID
}

func TestPaymentHandler_Register(t *testing.T) {
	env := setupPaymentRouter(t, nil)

	t.Run("happy: returns transaction id and terminal url", func(t *testing.T) {
		w := doRequest(env.router, "POST", "/api/v1/transactions",
			`{"amount":"201.00","currency":"nok","order_number":"A-1001","redirect_url":"http://localhost:3000/return","language":"en_GB"}`)

		assert.Equal(t, http.StatusCreated, w.Code)

		var resp dto.OperationResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.True(t, resp.Successful)
		assert.Equal(t, "Register", resp.Operation)
		assert.NotEmpty(t, resp.TransactionID)
		assert.Contains(t, resp.TerminalURL, "/Terminal/default.aspx")
		assert.Contains(t, resp.TerminalURL, "merchantId="+netaxepttest.MerchantID)
		assert.Contains(t, resp.TerminalURL, "transactionId="+resp.TransactionID)
		assert.Nil(t, resp.Error)
	})

	t.Run("business: zero amount is a gateway rejection, not an HTTP error", func(t *testing.T) {
		w := doRequest(env.router, "POST", "/api/v1/transactions",
			`{"amount":"0","redirect_url":"http://localhost:3000/return"}`)

		assert.Equal(t, http.StatusOK, w.Code)

		var resp dto.OperationResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.False(t, resp.Successful)
		assert.Empty(t, resp.TerminalURL)
		require.NotNil(t, resp.Error)
		assert.Equal(t, "Transaction amount must be greater than zero.", resp.Error.ResponseText)
		assert.Equal(t, "Netaxept", resp.Error.ResponseSource)
	})

	t.Run("bad: validation failures", func(t *testing.T) {
		cases := map[string]string{
			"missing redirect":  `{"amount":"10"}`,
			"missing amount":    `{"redirect_url":"http://localhost/return"}`,
			"not a number":      `{"amount":"ten","redirect_url":"http://localhost/return"}`,
			"too precise":       `{"amount":"10.001","redirect_url":"http://localhost/return"}`,
			"negative":          `{"amount":"-5","redirect_url":"http://localhost/return"}`,
			"bad currency":      `{"amount":"10","currency":"KRONER","redirect_url":"http://localhost/return"}`,
			"bad language":      `{"amount":"10","language":"xx_XX","redirect_url":"http://localhost/return"}`,
			"order number long": `{"amount":"10","order_number":"` + strings.Repeat("9", 33) + `","redirect_url":"http://localhost/return"}`,
			"malformed json":    `{"amount":`,
		}
		for name, body := range cases {
			t.Run(name, func(t *testing.T) {
				w := doRequest(env.router, "POST", "/api/v1/transactions", body)
				assert.Equal(t, http.StatusBadRequest, w.Code, w.Body.String())

				var resp middleware.ErrorResponse
				require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
				assert.Equal(t, "validation failed", resp.Error)
			})
		}
	})
}

func TestPaymentHandler_AuthCaptureCreditFlow(t *testing.T) {
	journal := &memoryJournal{}
	env := setupPaymentRouter(t, journal)
	id := registerAndPay(t, env, netaxepttest.ValidCard)
	base := "/api/v1/transactions/" + id

	w := doRequest(env.router, "POST", base+"/auth", `{"amount":"201.00","expected_state":"registered"}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var op dto.OperationResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &op))
	assert.True(t, op.Successful)
	assert.Equal(t, "Auth", op.Operation)
	assert.Equal(t, id, op.TransactionID)
	assert.NotEmpty(t, op.AuthorizationID)

	w = doRequest(env.router, "GET", base, "")
	require.Equal(t, http.StatusOK, w.Code)
	var q dto.QueryResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &q))
	assert.True(t, q.Successful)
	assert.Equal(t, "authorized", q.State)
	assert.Contains(t, q.NextOperations, "Capture")
	assert.Contains(t, q.NextOperations, "Annul")
	assert.True(t, q.Amount.Equal(decimal.RequireFromString("201")))
	assert.Equal(t, "NOK", q.Currency)

	w = doRequest(env.router, "POST", base+"/capture", `{"amount":"201.00","expected_state":"authorized"}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = doRequest(env.router, "POST", base+"/credit", `{"amount":"50.50"}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	op = dto.OperationResponse{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &op))
	assert.True(t, op.Successful)

	w = doRequest(env.router, "GET", base, "")
	q = dto.QueryResponse{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &q))
	assert.Equal(t, "credited", q.State)
	require.NotNil(t, q.Summary)
	assert.True(t, q.Summary.AmountCaptured.Equal(decimal.RequireFromString("201")))
	assert.True(t, q.Summary.AmountCredited.Equal(decimal.RequireFromString("50.5")))

	t.Run("journal lists lifecycle calls only", func(t *testing.T) {
		w := doRequest(env.router, "GET", base+"/operations?page=1&page_size=2", "")
		require.Equal(t, http.StatusOK, w.Code)

		var list dto.OperationListResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
		assert.Equal(t, 4, list.Pagination.TotalItems)
		assert.Equal(t, 2, list.Pagination.TotalPages)
		require.Len(t, list.Data, 2)
		assert.Equal(t, "Register", list.Data[0].Operation)
		assert.Equal(t, "Auth", list.Data[1].Operation)
	})
}

func TestPaymentHandler_Rejections(t *testing.T) {
	env := setupPaymentRouter(t, nil)

	t.Run("business: failing card keeps HTTP 200", func(t *testing.T) {
		id := registerAndPay(t, env, netaxepttest.FailingAuthCard)

		w := doRequest(env.router, "POST", "/api/v1/transactions/"+id+"/sale", `{"amount":"201"}`)
		require.Equal(t, http.StatusOK, w.Code)

		var op dto.OperationResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &op))
		assert.False(t, op.Successful)
		require.NotNil(t, op.Error)
		assert.Equal(t, "99", op.Error.ResponseCode)
		assert.Contains(t, op.Error.ResponseText, "Auth Reg Comp Failure")

		w = doRequest(env.router, "GET", "/api/v1/transactions/"+id, "")
		var q dto.QueryResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &q))
		assert.False(t, q.Successful)
		assert.Equal(t, "registered", q.State)
		require.NotNil(t, q.Error)
		assert.Equal(t, "99", q.Error.ResponseCode)
	})

	t.Run("hint: capture from registered is refused locally", func(t *testing.T) {
		id := registerAndPay(t, env, netaxepttest.ValidCard)
		before := env.gateway.Calls("/Netaxept/Process.aspx")

		w := doRequest(env.router, "POST", "/api/v1/transactions/"+id+"/capture", `{"amount":"201","expected_state":"registered"}`)
		assert.Equal(t, http.StatusConflict, w.Code)
		assert.Equal(t, before, env.gateway.Calls("/Netaxept/Process.aspx"))
	})

	t.Run("hint: unknown state", func(t *testing.T) {
		w := doRequest(env.router, "POST", "/api/v1/transactions/abc/capture", `{"amount":"1","expected_state":"settled"}`)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("annul without a body", func(t *testing.T) {
		id := registerAndPay(t, env, netaxepttest.ValidCard)
		w := doRequest(env.router, "POST", "/api/v1/transactions/"+id+"/auth", `{"amount":"201"}`)
		require.Equal(t, http.StatusOK, w.Code)

		w = doRequest(env.router, "POST", "/api/v1/transactions/"+id+"/annul", "")
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())

		var op dto.OperationResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &op))
		assert.True(t, op.Successful)
		assert.Equal(t, "Annul", op.Operation)
	})

	t.Run("annul reads a chunked body", func(t *testing.T) {
		annulChunked := func(id, body string) *httptest.ResponseRecorder {
			req := httptest.NewRequest("POST", "/api/v1/transactions/"+id+"/annul", io.NopCloser(strings.NewReader(body)))
			req.ContentLength = -1
			req.Header.Set("Content-Type", "application/json")
			w := httptest.NewRecorder()
			env.router.ServeHTTP(w, req)
			return w
		}

		before := env.gateway.Calls("/Netaxept/Process.aspx")
		w := annulChunked("abc", `{"expected_state":"captured"}`)
		assert.Equal(t, http.StatusConflict, w.Code, w.Body.String())
		assert.Equal(t, before, env.gateway.Calls("/Netaxept/Process.aspx"))

		id := registerAndPay(t, env, netaxepttest.ValidCard)
		w = annulChunked(id, "")
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())

		w = annulChunked(id, `{"expected_state":`)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("unknown transaction is reported as data", func(t *testing.T) {
		w := doRequest(env.router, "GET", "/api/v1/transactions/does-not-exist", "")
		require.Equal(t, http.StatusOK, w.Code)

		var q dto.QueryResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &q))
		assert.False(t, q.Successful)
		assert.Equal(t, "does-not-exist", q.TransactionID)
		assert.Empty(t, q.State)
		require.NotNil(t, q.Error)
		assert.Equal(t, "Query", q.Error.Operation)
	})

	t.Run("operations without a journal", func(t *testing.T) {
		w := doRequest(env.router, "GET", "/api/v1/transactions/abc/operations", "")
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestPaymentHandler_Statuses(t *testing.T) {
	env := setupPaymentRouter(t, nil)
	first := registerAndPay(t, env, netaxepttest.ValidCard)
	second := registerAndPay(t, env, netaxepttest.ValidCard)

	w := doRequest(env.router, "POST", "/api/v1/transactions/"+second+"/sale", `{"amount":"201"}`)
	require.Equal(t, http.StatusOK, w.Code)

	t.Run("happy: comma separated and repeated ids", func(t *testing.T) {
		w := doRequest(env.router, "GET", "/api/v1/transactions?ids="+first+","+second+"&ids=missing", "")
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())

		var resp dto.StatusListResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		require.Len(t, resp.Data, 3)
		assert.Equal(t, "registered", resp.Data[0].State)
		assert.Equal(t, "captured", resp.Data[1].State)
		assert.Equal(t, "missing", resp.Data[2].TransactionID)
		assert.False(t, resp.Data[2].Successful)
	})

	t.Run("bad: no ids", func(t *testing.T) {
		w := doRequest(env.router, "GET", "/api/v1/transactions?ids=,,", "")
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestPaymentHandler_Terminal(t *testing.T) {
	env := setupPaymentRouter(t, nil)

	w := doRequest(env.router, "GET", "/api/v1/transactions/abc123/terminal", "")
	require.Equal(t, http.StatusOK, w.Code)

	var resp dto.TerminalResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "abc123", resp.TransactionID)
	assert.Equal(t, env.gateway.URL+"/Terminal/default.aspx?merchantId="+netaxepttest.MerchantID+"&transactionId=abc123", resp.TerminalURL)
}

func TestPaymentHandler_GatewayDown(t *testing.T) {
	env := setupPaymentRouter(t, nil)
	env.gateway.Close()

	w := doRequest(env.router, "GET", "/api/v1/transactions/abc", "")
	assert.Equal(t, http.StatusBadGateway, w.Code)

	var resp middleware.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "gateway unavailable", resp.Error)
}
