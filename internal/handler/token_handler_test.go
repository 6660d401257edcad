package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"fanstream/internal/config"
	"fanstream/internal/infrastructure/payment"
	"fanstream/internal/realtime"
	"fanstream/internal/repository"
	"fanstream/internal/service"
	"fanstream/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeProvider struct {
	signatureOK bool
}

func (p *fakeProvider) CreateInvoice(ctx context.Context, amountCents int64, description string) (*payment.Invoice, error) {
	return nil, nil
}

func (p *fakeProvider) GetInvoice(ctx context.Context, invoiceID string) (*payment.Invoice, error) {
	return nil, payment.ErrInvoiceNotFound
}

func (p *fakeProvider) VerifyWebhookSignature(body []byte, signature string) bool {
	return p.signatureOK
}

func newWebhookHandler(provider service.InvoiceProvider) *Handler {
	businessCfg := &config.BusinessConfig{TokensPerUSD: 10, MinPurchaseCents: 10, MaxPurchaseCents: 100000}
	kafkaCfg := &config.KafkaConfig{Topic: config.KafkaTopicConfig{TokenEvent: "fanstream.token_event"}}
	svc := service.NewPurchaseService(
		nil,
		repository.NewPurchaseRepository(nil),
		repository.NewProfileRepository(nil),
		repository.NewOutboxRepository(nil),
		provider,
		realtime.NewHub(),
		businessCfg,
		kafkaCfg,
	)
	return &Handler{purchaseService: svc}
}

func TestPaymentWebhook_BadSignature(t *testing.T) {
	gin.SetMode(gin.TestMode)
	h := newWebhookHandler(&fakeProvider{signatureOK: false})

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/webhook/cryptobot",
		bytes.NewBufferString(`{"update_type":"invoice_paid"}`))
	c.Request.Header.Set("Crypto-Pay-Api-Signature", "bogus")

	h.PaymentWebhook(c)

	assert.Equal(t, http.StatusUnauthorized, w.Code)

	var resp response.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, response.CodeUnauthorized, resp.Code)
}

func TestPaymentWebhook_IgnoredUpdateType(t *testing.T) {
	gin.SetMode(gin.TestMode)
	h := newWebhookHandler(&fakeProvider{signatureOK: true})

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/webhook/cryptobot",
		bytes.NewBufferString(`{"update_type":"invoice_expired"}`))

	h.PaymentWebhook(c)

	// 不处理的事件类型也回 200，避免服务商反复重推
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestSpendTokens_BadRequest(t *testing.T) {
	gin.SetMode(gin.TestMode)
	h := &Handler{}

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/api/v1/tokens/spend",
		bytes.NewBufferString(`{not-json`))

	h.SpendTokens(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}
