package payment

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"fanstream/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(serverURL string) *Client {
	return NewClient(&config.CryptoBotConfig{
		BaseURL:  serverURL,
		APIToken: "test-api-token",
	})
}

func TestCreateInvoice(t *testing.T) {
	var gotBody map[string]interface{}
	var gotToken string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/createInvoice", r.URL.Path)
		gotToken = r.Header.Get("Crypto-Pay-API-Token")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))

		json.NewEncoder(w).Encode(map[string]interface{}{
			"ok": true,
			"result": map[string]interface{}{
				"invoice_id": 12345,
				"status":     "active",
				"pay_url":    "https://t.me/CryptoBot?start=IVabc",
			},
		})
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	invoice, err := client.CreateInvoice(context.Background(), 1050, "购买 105.00 代币")
	require.NoError(t, err)

	assert.Equal(t, int64(12345), invoice.InvoiceID)
	assert.Equal(t, InvoiceStatusActive, invoice.Status)
	assert.Equal(t, "https://t.me/CryptoBot?start=IVabc", invoice.PayURL)

	// 请求体按服务商的法币发票契约组织
	assert.Equal(t, "test-api-token", gotToken)
	assert.Equal(t, "10.50", gotBody["amount"])
	assert.Equal(t, "fiat", gotBody["currency_type"])
	assert.Equal(t, "USD", gotBody["fiat"])
	assert.Equal(t, "购买 105.00 代币", gotBody["description"])
}

func TestCreateInvoice_APIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{
			"ok":    false,
			"error": map[string]interface{}{"name": "AMOUNT_TOO_SMALL"},
		})
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	_, err := client.CreateInvoice(context.Background(), 1, "x")
	assert.ErrorContains(t, err, "AMOUNT_TOO_SMALL")
}

func TestGetInvoice(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/getInvoices", r.URL.Path)
		require.Equal(t, "12345", r.URL.Query().Get("invoice_ids"))

		json.NewEncoder(w).Encode(map[string]interface{}{
			"ok": true,
			"result": map[string]interface{}{
				"items": []map[string]interface{}{
					{"invoice_id": 12345, "status": "paid", "pay_url": "https://t.me/x"},
				},
			},
		})
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	invoice, err := client.GetInvoice(context.Background(), "12345")
	require.NoError(t, err)
	assert.Equal(t, InvoiceStatusPaid, invoice.Status)
}

func TestGetInvoice_NotFound(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{
			"ok":     true,
			"result": map[string]interface{}{"items": []interface{}{}},
		})
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	_, err := client.GetInvoice(context.Background(), "99999")
	assert.ErrorIs(t, err, ErrInvoiceNotFound)
}

func TestVerifyWebhookSignature(t *testing.T) {
	client := newTestClient("https://example.invalid")
	body := []byte(`{"update_type":"invoice_paid","payload":{"invoice_id":12345,"status":"paid"}}`)

	// 按服务商的算法算出合法签名：HMAC-SHA256(body)，密钥 = SHA256(api_token)
	secret := sha256.Sum256([]byte("test-api-token"))
	mac := hmac.New(sha256.New, secret[:])
	mac.Write(body)
	validSignature := hex.EncodeToString(mac.Sum(nil))

	assert.True(t, client.VerifyWebhookSignature(body, validSignature))
	assert.False(t, client.VerifyWebhookSignature(body, "deadbeef"))
	assert.False(t, client.VerifyWebhookSignature([]byte("tampered"), validSignature))
}
