package sheets

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"

	"github.com/alimurrofid/petualangan-cuan/internal/core"
)

func TestYearPrefixedName(t *testing.T) {
	tests := []struct {
		base string
		year int
		want string
	}{
		{"Transaksi", 2025, "2025 Transaksi"},
		{"  Transaksi ", 2025, "2025 Transaksi"},
		{"2024 Transaksi", 2025, "2024 Transaksi"},
		{"1800 Transaksi", 2025, "2025 1800 Transaksi"},
		{"", 2025, ""},
	}

	for _, tt := range tests {
		t.Run(tt.base, func(t *testing.T) {
			assert.Equal(t, tt.want, yearPrefixedName(tt.base, tt.year))
		})
	}
}

func sampleTransaction() core.Transaction {
	return core.Transaction{
		ID:          42,
		Amount:      decimal.NewFromInt(25000),
		Type:        core.Expense,
		Description: "Nasi goreng",
		Date:        time.Date(2025, 3, 9, 12, 0, 0, 0, time.UTC),
		Wallet:      &core.WalletSummary{ID: 1, Name: "BCA"},
		Category:    &core.CategorySummary{ID: 2, Name: "Makan"},
	}
}

func TestRow(t *testing.T) {
	row := Row(sampleTransaction())
	assert.Equal(t, []any{"2025-03-09", "expense", "Makan", "BCA", "Nasi goreng [tx:42]", "25000.00"}, row)

	bare := sampleTransaction()
	bare.Wallet, bare.Category, bare.Description = nil, nil, ""
	row = Row(bare)
	assert.Equal(t, "", row[2])
	assert.Equal(t, "", row[3])
	assert.Equal(t, "[tx:42]", row[4])
}

type fakeSheets struct {
	mu       sync.Mutex
	existing [][]any
	gets     []string
	updates  map[string][][]any
}

func (f *fakeSheets) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	idx := strings.Index(r.URL.Path, "/values/")
	if idx < 0 {
		http.NotFound(w, r)
		return
	}
	rng := r.URL.Path[idx+len("/values/"):]

	switch r.Method {
	case http.MethodGet:
		f.gets = append(f.gets, rng)
		_ = json.NewEncoder(w).Encode(gsheet.ValueRange{Range: rng, Values: f.existing})
	case http.MethodPut:
		var vr gsheet.ValueRange
		if err := json.NewDecoder(r.Body).Decode(&vr); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		f.updates[rng] = vr.Values
		_ = json.NewEncoder(w).Encode(gsheet.UpdateValuesResponse{UpdatedRange: rng})
	default:
		http.Error(w, "unexpected method", http.StatusMethodNotAllowed)
	}
}

func newTestClient(t *testing.T, fake *fakeSheets) *Client {
	t.Helper()
	srv := httptest.NewServer(fake)
	t.Cleanup(srv.Close)

	c, err := New(context.Background(), Options{
		SpreadsheetID: "sheet-1",
		SheetName:     "Transaksi",
		ClientOptions: []goption.ClientOption{
			goption.WithEndpoint(srv.URL + "/"),
			goption.WithoutAuthentication(),
			goption.WithHTTPClient(srv.Client()),
		},
	}, nil)
	require.NoError(t, err)
	return c
}

func TestClient_Append(t *testing.T) {
	t.Run("appends after existing rows", func(t *testing.T) {
		fake := &fakeSheets{
			existing: [][]any{{"Tanggal"}, {"2025-03-01"}},
			updates:  map[string][][]any{},
		}
		c := newTestClient(t, fake)

		ref, err := c.Append(context.Background(), sampleTransaction())
		require.NoError(t, err)
		assert.Equal(t, "2025 Transaksi!A3:F3", ref)

		require.Len(t, fake.gets, 1)
		assert.Equal(t, "2025 Transaksi!A:A", fake.gets[0])
		rows := fake.updates["2025 Transaksi!A3:F3"]
		require.Len(t, rows, 1)
		assert.Equal(t, "Nasi goreng [tx:42]", rows[0][4])
	})

	t.Run("writes header on an empty tab", func(t *testing.T) {
		fake := &fakeSheets{updates: map[string][][]any{}}
		c := newTestClient(t, fake)

		ref, err := c.Append(context.Background(), sampleTransaction())
		require.NoError(t, err)
		assert.Equal(t, "2025 Transaksi!A2:F2", ref)

		rows := fake.updates["2025 Transaksi!A1:F2"]
		require.Len(t, rows, 2)
		assert.Equal(t, "Tanggal", rows[0][0])
	})

	t.Run("rejects undated transactions", func(t *testing.T) {
		c := &Client{svc: &gsheet.Service{}}
		_, err := c.Append(context.Background(), core.Transaction{ID: 1})
		require.Error(t, err)
	})
}

func TestNew_Errors(t *testing.T) {
	t.Setenv("GOOGLE_APPLICATION_CREDENTIALS", "")

	_, err := New(context.Background(), Options{}, nil)
	assert.EqualError(t, err, "missing spreadsheet id")

	_, err = New(context.Background(), Options{SpreadsheetID: "x"}, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing service account credentials")

	_, err = New(context.Background(), Options{SpreadsheetID: "x", CredentialsFile: "/nonexistent/sa.json"}, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "read service account file")
}
