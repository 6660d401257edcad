package service

import (
	"context"
	"regexp"
	"testing"

	"fanstream/internal/config"
	"fanstream/internal/infrastructure/payment"
	"fanstream/internal/model"
	"fanstream/internal/realtime"
	"fanstream/internal/repository"
	"fanstream/pkg/idgen"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()

	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	db, err := gorm.Open(mysql.New(mysql.Config{
		Conn:                      sqlDB,
		SkipInitializeWithVersion: true,
	}), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)

	return db, mock
}

// stubProvider 可编程的支付服务商替身
type stubProvider struct {
	createCalls     int
	lastDescription string
	invoice         *payment.Invoice
	getInvoice      *payment.Invoice
	err             error
}

func (p *stubProvider) CreateInvoice(ctx context.Context, amountCents int64, description string) (*payment.Invoice, error) {
	p.createCalls++
	p.lastDescription = description
	return p.invoice, p.err
}

func (p *stubProvider) GetInvoice(ctx context.Context, invoiceID string) (*payment.Invoice, error) {
	return p.getInvoice, p.err
}

func (p *stubProvider) VerifyWebhookSignature(body []byte, signature string) bool {
	return true
}

func testBusinessConfig() *config.BusinessConfig {
	return &config.BusinessConfig{
		TokensPerUSD:          10,
		MinPurchaseCents:      10,
		MaxPurchaseCents:      100000,
		SettleIntervalSeconds: 5,
		PurchaseExpireMinutes: 30,
		SpendLockSeconds:      30,
		MaxRetryCount:         5,
	}
}

func testKafkaConfig() *config.KafkaConfig {
	return &config.KafkaConfig{
		Topic: config.KafkaTopicConfig{
			Notification: "fanstream.notification",
			TokenEvent:   "fanstream.token_event",
		},
	}
}

func newPurchaseService(db *gorm.DB, provider InvoiceProvider) *PurchaseService {
	return NewPurchaseService(
		db,
		repository.NewPurchaseRepository(db),
		repository.NewProfileRepository(db),
		repository.NewOutboxRepository(db),
		provider,
		realtime.NewHub(),
		testBusinessConfig(),
		testKafkaConfig(),
	)
}

func TestTokensForCents(t *testing.T) {
	// 1 美元 = 10 代币，1 美分 = 10 个最小单位，整数运算必须精确
	tests := []struct {
		cents int64
		want  int64
	}{
		{1, 10},
		{10, 100},         // $0.10 -> 1.00 代币
		{100, 1000},       // $1.00 -> 10.00 代币
		{123, 1230},       // $1.23 -> 12.30 代币
		{999, 9990},       // $9.99 -> 99.90 代币
		{100000, 1000000}, // $1000 -> 10000.00 代币
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, TokensForCents(tt.cents, 10))
	}
}

func TestFormatTokens(t *testing.T) {
	assert.Equal(t, "0.05", FormatTokens(5))
	assert.Equal(t, "2.50", FormatTokens(250))
	assert.Equal(t, "10.00", FormatTokens(1000))
	assert.Equal(t, "123.45", FormatTokens(12345))
}

func TestCreateInvoice_AmountBounds(t *testing.T) {
	db, _ := newMockDB(t)
	provider := &stubProvider{}
	svc := newPurchaseService(db, provider)

	_, err := svc.CreateInvoice(context.Background(), 1, 9)
	assert.ErrorIs(t, err, ErrAmountTooSmall)

	_, err = svc.CreateInvoice(context.Background(), 1, 100001)
	assert.ErrorIs(t, err, ErrAmountTooLarge)

	// 参数校验不通过时不应该去开票
	assert.Equal(t, 0, provider.createCalls)
}

func TestCreateInvoice_Success(t *testing.T) {
	require.NoError(t, idgen.Init(1))

	db, mock := newMockDB(t)
	provider := &stubProvider{
		invoice: &payment.Invoice{
			InvoiceID: 777,
			Status:    payment.InvoiceStatusActive,
			PayURL:    "https://t.me/CryptoBot?start=IVxyz",
		},
	}
	svc := newPurchaseService(db, provider)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO `token_purchases`").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	result, err := svc.CreateInvoice(context.Background(), 42, 100)
	require.NoError(t, err)

	assert.Equal(t, "777", result.PaymentID)
	assert.Equal(t, "https://t.me/CryptoBot?start=IVxyz", result.PayURL)
	assert.Equal(t, int64(100), result.AmountCents)
	assert.Equal(t, int64(1000), result.TokensAmount)
	assert.Equal(t, "购买 10.00 代币", provider.lastDescription)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSettle_CreditsExactlyOnce(t *testing.T) {
	db, mock := newMockDB(t)
	svc := newPurchaseService(db, &stubProvider{})

	purchase := &model.TokenPurchase{
		ID:           1,
		PurchaseNo:   "TPU175600000000000001",
		UserID:       42,
		AmountCents:  100,
		TokensAmount: 1000,
		PaymentID:    "777",
		Status:       model.PurchaseStatusPending,
	}

	// 第一次结算：状态流转 + 入账 + 发件箱，一个事务
	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("UPDATE `token_purchases`")).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE `profiles`")).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO `outbox_message`").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	require.NoError(t, svc.Settle(context.Background(), purchase))

	// 第二次结算：条件更新不命中，整个事务回滚，不再入账
	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("UPDATE `token_purchases`")).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	require.NoError(t, svc.Settle(context.Background(), purchase))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSettle_CreditFailureRollsBack(t *testing.T) {
	db, mock := newMockDB(t)
	svc := newPurchaseService(db, &stubProvider{})

	purchase := &model.TokenPurchase{
		ID:           2,
		PurchaseNo:   "TPU175600000000000002",
		UserID:       43,
		TokensAmount: 500,
		Status:       model.PurchaseStatusPending,
	}

	// 入账没命中任何行（资料丢失），整个事务必须回滚
	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("UPDATE `token_purchases`")).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE `profiles`")).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	err := svc.Settle(context.Background(), purchase)
	assert.ErrorIs(t, err, repository.ErrProfileNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}
