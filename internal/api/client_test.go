package api

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alimurrofid/petualangan-cuan/internal/core"
)

type staticToken string

func (s staticToken) Token() string { return string(s) }

func TestClient_BearerTokenAndRequestID(t *testing.T) {
	var gotAuth, gotRequestID string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotRequestID = r.Header.Get("X-Request-ID")
		assert.Equal(t, "/api/wallets", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[{"id":1,"name":"BCA","type":"Bank","balance":100000}]`))
	}))
	defer srv.Close()

	c := New(srv.URL+"/api/", WithTokenSource(staticToken("tok-123")))
	wallets, err := c.ListWallets(context.Background())

	require.NoError(t, err)
	require.Len(t, wallets, 1)
	assert.Equal(t, "100000", wallets[0].Balance.String())
	assert.Equal(t, "Bearer tok-123", gotAuth)
	assert.NotEmpty(t, gotRequestID)
}

func TestClient_LoginIsPublic(t *testing.T) {
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		_, _ = w.Write([]byte(`{"token":"new-token","user":{"id":7,"name":"Ani","email":"ani@example.com"}}`))
	}))
	defer srv.Close()

	c := New(srv.URL, WithTokenSource(staticToken("stale")))
	resp, err := c.Login(context.Background(), core.Credentials{Email: "ani@example.com", Password: "secret"})

	require.NoError(t, err)
	assert.Empty(t, gotAuth)
	assert.Equal(t, "new-token", resp.Token)
	assert.Equal(t, int64(7), resp.User.ID)
}

func TestClient_ErrorNormalisation(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		message string
	}{
		{"error field", http.StatusBadRequest, `{"error":"Insufficient balance"}`, "Insufficient balance"},
		{"message field", http.StatusInternalServerError, `{"status":"error","message":"Failed to fetch transactions"}`, "Failed to fetch transactions"},
		{"no body", http.StatusNotFound, ``, "Not Found"},
		{"not json", http.StatusBadGateway, `<html>bad gateway</html>`, "Bad Gateway"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			err := New(srv.URL).DeleteWallet(context.Background(), 1)

			var apiErr *Error
			require.True(t, errors.As(err, &apiErr))
			assert.Equal(t, tt.status, apiErr.StatusCode)
			assert.Equal(t, tt.message, apiErr.Message)
			assert.Equal(t, tt.message, Message(err, "fallback"))
		})
	}
}

func TestClient_TransportErrorUsesFallback(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	addr := srv.URL
	srv.Close()

	_, err := New(addr).ListWallets(context.Background())

	require.Error(t, err)
	var apiErr *Error
	assert.False(t, errors.As(err, &apiErr))
	assert.Equal(t, "Failed to fetch wallets", Message(err, "Failed to fetch wallets"))
}

func TestClient_InvalidPayloadIsNotSent(t *testing.T) {
	called := false
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))
	defer srv.Close()

	_, err := New(srv.URL).CreateTransaction(context.Background(), core.TransactionInput{WalletID: 1})

	var verrs validator.ValidationErrors
	assert.True(t, errors.As(err, &verrs))
	assert.False(t, called)
}

func TestClient_EnvelopesAndQuery(t *testing.T) {
	var gotQuery url.Values
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query()
		switch r.URL.Path {
		case "/transactions":
			_, _ = w.Write([]byte(`{"status":"success","data":[{"id":4,"amount":20000,"type":"expense"}],"meta":{"total":31,"page":2,"limit":10}}`))
		case "/transactions/calendar":
			_, _ = w.Write([]byte(`{"status":"success","data":[{"date":"2026-10-01","income":0,"expense":20000}]}`))
		case "/debts":
			_, _ = w.Write([]byte(`{"data":[{"id":1,"amount":500000,"remaining":300000,"type":"debt","is_paid":false}]}`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()
	c := New(srv.URL)
	ctx := context.Background()

	page, err := c.ListTransactions(ctx, url.Values{"wallet_id": {"3"}})
	require.NoError(t, err)
	assert.Equal(t, "3", gotQuery.Get("wallet_id"))
	require.Len(t, page.Data, 1)
	assert.Equal(t, core.PageMeta{Total: 31, Page: 2, Limit: 10}, page.Meta)

	days, err := c.Calendar(ctx, url.Values{"start_date": {"2026-10-01"}, "end_date": {"2026-10-31"}})
	require.NoError(t, err)
	require.Len(t, days, 1)
	assert.Equal(t, "20000", days[0].Expense.String())

	debts, err := c.ListDebts(ctx, core.DebtPayable)
	require.NoError(t, err)
	assert.Equal(t, "debt", gotQuery.Get("type"))
	require.Len(t, debts, 1)
	assert.Equal(t, "300000", debts[0].Remaining.String())
}

func TestIsNotFound(t *testing.T) {
	assert.True(t, IsNotFound(&Error{StatusCode: 404}))
	assert.False(t, IsNotFound(errors.New("boom")))
	assert.True(t, IsUnauthorized(&Error{StatusCode: 401}))
}
