package billing_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/aquaris-labs/backend-aquaris/internal/billing"
)

type quoteResponse struct {
	Data billing.Quote `json:"data"`
}

type billResponse struct {
	Data billing.Bill `json:"data"`
}

type errorResponse struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func newHandler(q billing.Querier) *billing.Handler {
	return &billing.Handler{Svc: newService(q)}
}

func TestQuoteEndpointPercentScenario(t *testing.T) {
	handler := newHandler(newFakeQueries())
	body := `{"quantities":{"P1":3,"P2":1},"offerCode":"SAVE10"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/billing/quote", strings.NewReader(body))
	rec := httptest.NewRecorder()
	handler.Quote(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp quoteResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Equal(t, int64(5500), resp.Data.Subtotal)
	require.Equal(t, int64(550), resp.Data.Discount)
	require.Equal(t, int64(4950), resp.Data.FinalAmount)
	require.Equal(t, "INR", resp.Data.Currency)
}

func TestQuoteEndpointEmptyCart(t *testing.T) {
	handler := newHandler(newFakeQueries())
	body := `{"quantities":{"P1":0}}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/billing/quote", strings.NewReader(body))
	rec := httptest.NewRecorder()
	handler.Quote(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp quoteResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.True(t, resp.Data.Empty)
}

func TestQuoteEndpointRejectsNegativeQuantity(t *testing.T) {
	handler := newHandler(newFakeQueries())
	body := `{"quantities":{"P1":-2}}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/billing/quote", strings.NewReader(body))
	rec := httptest.NewRecorder()
	handler.Quote(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	var resp errorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Equal(t, "BAD_REQUEST", resp.Error.Code)
}

func TestQuoteEndpointUnknownOffer(t *testing.T) {
	handler := newHandler(newFakeQueries())
	body := `{"quantities":{"P1":1},"offerCode":"MISSING"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/billing/quote", strings.NewReader(body))
	rec := httptest.NewRecorder()
	handler.Quote(rec, req)

	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	var resp errorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Equal(t, "OFFER_NOT_FOUND", resp.Error.Code)
}

func TestGenerateBillEndpoint(t *testing.T) {
	queries := newFakeQueries()
	handler := newHandler(queries)
	body := `{"quantities":{"P1":3,"P2":1},"offerCode":"FLAT20"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/billing/bills", strings.NewReader(body))
	rec := httptest.NewRecorder()
	handler.GenerateBill(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)
	var resp billResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.Data.SaleID)
	require.Equal(t, "2024-01-15", resp.Data.BillDate)
	require.Equal(t, int64(3500), resp.Data.FinalAmount)
	require.Len(t, queries.inserted, 1)
}

func TestGenerateBillEndpointEmptyCart(t *testing.T) {
	queries := newFakeQueries()
	handler := newHandler(queries)
	body := `{"quantities":{}}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/billing/bills", strings.NewReader(body))
	rec := httptest.NewRecorder()
	handler.GenerateBill(rec, req)

	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	var resp errorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Equal(t, "EMPTY_CART", resp.Error.Code)
	require.Empty(t, queries.inserted)
}
