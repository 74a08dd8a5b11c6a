package gateway

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"order_trade_core/pkg/errs"

	"github.com/stretchr/testify/assert"
)

func TestHTTPGatewayConfirm(t *testing.T) {
	t.Run("Successful confirm parses response", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodPost, r.Method)
			assert.Equal(t, "/confirm", r.URL.Path)
			assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

			expected := "Basic " + base64.StdEncoding.EncodeToString([]byte("test_sk_123:"))
			assert.Equal(t, expected, r.Header.Get("Authorization"))

			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`{"status":"DONE","method":"CARD","totalAmount":95000,"approvedAt":"2026-01-02T15:04:05+09:00"}`))
		}))
		defer server.Close()

		gw := NewHTTPGatewayWith(server.URL, "test_sk_123", 5*time.Second)
		resp, err := gw.Confirm(context.Background(), ConfirmRequest{
			PaymentKey: "pk-1", OrderID: "trade-1", Amount: 95000,
		})

		assert.NoError(t, err)
		assert.Equal(t, "DONE", resp.Status)
		assert.Equal(t, "CARD", resp.Method)
		assert.Equal(t, int64(95000), resp.TotalAmount)
	})

	t.Run("Client error carries gateway message", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadRequest)
			w.Write([]byte(`{"code":"REJECT_CARD_PAYMENT","message":"card declined"}`))
		}))
		defer server.Close()

		gw := NewHTTPGatewayWith(server.URL, "test_sk_123", 5*time.Second)
		_, err := gw.Confirm(context.Background(), ConfirmRequest{PaymentKey: "pk-1"})

		assert.Error(t, err)
		assert.Equal(t, errs.KindValidation, errs.KindOf(err))
		assert.Contains(t, err.Error(), "card declined")
		assert.False(t, errs.IsRetryable(err))
	})

	t.Run("Server error is retryable", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		}))
		defer server.Close()

		gw := NewHTTPGatewayWith(server.URL, "test_sk_123", 5*time.Second)
		_, err := gw.Confirm(context.Background(), ConfirmRequest{PaymentKey: "pk-1"})

		assert.True(t, errs.IsRetryable(err))
	})

	t.Run("Rate limit is retryable", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusTooManyRequests)
		}))
		defer server.Close()

		gw := NewHTTPGatewayWith(server.URL, "test_sk_123", 5*time.Second)
		_, err := gw.Confirm(context.Background(), ConfirmRequest{PaymentKey: "pk-1"})

		assert.True(t, errs.IsRetryable(err))
	})

	t.Run("Timeout is retryable", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			time.Sleep(200 * time.Millisecond)
		}))
		defer server.Close()

		gw := NewHTTPGatewayWith(server.URL, "test_sk_123", 50*time.Millisecond)
		_, err := gw.Confirm(context.Background(), ConfirmRequest{PaymentKey: "pk-1"})

		assert.True(t, errs.IsRetryable(err))
	})

	t.Run("Malformed success body is an internal error", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`not json`))
		}))
		defer server.Close()

		gw := NewHTTPGatewayWith(server.URL, "test_sk_123", 5*time.Second)
		_, err := gw.Confirm(context.Background(), ConfirmRequest{PaymentKey: "pk-1"})

		assert.Equal(t, errs.KindInternal, errs.KindOf(err))
	})
}

func TestHTTPGatewayCancel(t *testing.T) {
	t.Run("Cancel posts payment key in the body", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodPost, r.Method)
			assert.Equal(t, "/cancel", r.URL.Path)

			var body map[string]interface{}
			assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			assert.Equal(t, "pk-1", body["paymentKey"])
			assert.Equal(t, "customer request", body["cancelReason"])
			assert.Equal(t, float64(95000), body["cancelAmount"])

			w.Write([]byte(`{"status":"CANCELED"}`))
		}))
		defer server.Close()

		gw := NewHTTPGatewayWith(server.URL, "test_sk_123", 5*time.Second)
		resp, err := gw.Cancel(context.Background(), CancelRequest{
			PaymentKey: "pk-1", CancelReason: "customer request", CancelAmount: 95000,
		})

		assert.NoError(t, err)
		assert.Equal(t, "CANCELED", resp.Status)
	})
}
