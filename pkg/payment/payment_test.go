package payment

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func gateway(t *testing.T, status int, body string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer sk_test", r.Header.Get("Authorization"))
		assert.Equal(t, "/transaction/verify/ref-123", r.URL.Path)
		w.WriteHeader(status)
		w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestVerify(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		amount  string
		wantErr error
	}{
		{
			name:   "success",
			status: http.StatusOK,
			body:   `{"status":true,"data":{"status":"success","reference":"ref-123","amount":125050}}`,
			amount: "1250.50",
		},
		{
			name:    "amount mismatch",
			status:  http.StatusOK,
			body:    `{"status":true,"data":{"status":"success","reference":"ref-123","amount":100}}`,
			amount:  "2.00",
			wantErr: ErrAmountMismatch,
		},
		{
			name:    "failed charge",
			status:  http.StatusOK,
			body:    `{"status":true,"data":{"status":"failed","reference":"ref-123","amount":200}}`,
			amount:  "2.00",
			wantErr: ErrNotSuccessful,
		},
		{
			name:    "unknown reference",
			status:  http.StatusNotFound,
			body:    `{"status":false,"message":"Transaction reference not found"}`,
			amount:  "2.00",
			wantErr: ErrNotSuccessful,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := gateway(t, tt.status, tt.body)
			client := NewClient(srv.URL+"/", "sk_test")

			v, err := client.Verify("ref-123", decimal.RequireFromString(tt.amount))
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "ref-123", v.Reference)
			assert.Equal(t, "1250.50", v.Amount.StringFixed(2))
		})
	}
}
