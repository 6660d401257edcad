package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strconv"

	"fanstream/internal/config"
	"fanstream/internal/infrastructure/payment"
	"fanstream/internal/model"
	"fanstream/internal/realtime"
	"fanstream/internal/repository"
	"fanstream/pkg/idgen"

	"gorm.io/gorm"
)

var (
	ErrAmountTooSmall  = errors.New("充值金额低于下限")
	ErrAmountTooLarge  = errors.New("充值金额超过上限")
	ErrWebhookBadSign  = errors.New("webhook 签名校验失败")
	ErrWebhookIgnored  = errors.New("webhook 事件类型不处理")
	ErrPurchaseNotMine = errors.New("充值订单不属于当前用户")
)

// InvoiceProvider 外部支付服务商接口
type InvoiceProvider interface {
	CreateInvoice(ctx context.Context, amountCents int64, description string) (*payment.Invoice, error)
	GetInvoice(ctx context.Context, invoiceID string) (*payment.Invoice, error)
	VerifyWebhookSignature(body []byte, signature string) bool
}

// PurchaseService 代币充值
//
// 充值流程：
//  1. CreateInvoice 在服务商处开发票，本地记 PENDING 订单（幂等键 = 发票号）
//  2. 结算有两条路：webhook 推送（优先）和 CheckPayment / 后台轮询（兜底）
//  3. 结算用条件更新 PENDING -> COMPLETED，并发到账也只入账一次
type PurchaseService struct {
	db           *gorm.DB
	purchaseRepo *repository.PurchaseRepository
	profileRepo  *repository.ProfileRepository
	outboxRepo   *repository.OutboxRepository
	provider     InvoiceProvider
	hub          *realtime.Hub
	businessCfg  *config.BusinessConfig
	kafkaCfg     *config.KafkaConfig
}

func NewPurchaseService(
	db *gorm.DB,
	purchaseRepo *repository.PurchaseRepository,
	profileRepo *repository.ProfileRepository,
	outboxRepo *repository.OutboxRepository,
	provider InvoiceProvider,
	hub *realtime.Hub,
	businessCfg *config.BusinessConfig,
	kafkaCfg *config.KafkaConfig,
) *PurchaseService {
	return &PurchaseService{
		db:           db,
		purchaseRepo: purchaseRepo,
		profileRepo:  profileRepo,
		outboxRepo:   outboxRepo,
		provider:     provider,
		hub:          hub,
		businessCfg:  businessCfg,
		kafkaCfg:     kafkaCfg,
	}
}

// TokensForCents 美分换算代币数量（百分之一代币）
// 1 美元 = TokensPerUSD 代币，整数运算没有精度损失
func TokensForCents(amountCents, tokensPerUSD int64) int64 {
	return amountCents * tokensPerUSD
}

// FormatTokens 把百分之一代币格式化成 "X.XX"
func FormatTokens(tokens int64) string {
	return fmt.Sprintf("%d.%02d", tokens/100, tokens%100)
}

// CreateInvoiceResult 开票返回
type CreateInvoiceResult struct {
	PurchaseNo   string `json:"purchase_no"`
	PaymentID    string `json:"payment_id"`
	PayURL       string `json:"pay_url"`
	AmountCents  int64  `json:"amount_cents"`
	TokensAmount int64  `json:"tokens_amount"`
}

// CreateInvoice 创建充值发票
func (s *PurchaseService) CreateInvoice(ctx context.Context, userID int64, amountCents int64) (*CreateInvoiceResult, error) {
	if amountCents < s.businessCfg.MinPurchaseCents {
		return nil, ErrAmountTooSmall
	}
	if amountCents > s.businessCfg.MaxPurchaseCents {
		return nil, ErrAmountTooLarge
	}

	tokens := TokensForCents(amountCents, s.businessCfg.TokensPerUSD)
	description := fmt.Sprintf("购买 %s 代币", FormatTokens(tokens))

	// 先开票再落库，开票失败时本地不留脏数据
	invoice, err := s.provider.CreateInvoice(ctx, amountCents, description)
	if err != nil {
		return nil, err
	}

	purchase := &model.TokenPurchase{
		PurchaseNo:   idgen.GeneratePurchaseNo(),
		UserID:       userID,
		AmountCents:  amountCents,
		TokensAmount: tokens,
		PaymentID:    strconv.FormatInt(invoice.InvoiceID, 10),
		Status:       model.PurchaseStatusPending,
	}
	if err := s.purchaseRepo.Create(ctx, purchase); err != nil {
		return nil, err
	}

	return &CreateInvoiceResult{
		PurchaseNo:   purchase.PurchaseNo,
		PaymentID:    purchase.PaymentID,
		PayURL:       invoice.PayURL,
		AmountCents:  amountCents,
		TokensAmount: tokens,
	}, nil
}

// CheckPaymentResult 查单返回
type CheckPaymentResult struct {
	Status       string `json:"status"`
	TokensAmount int64  `json:"tokens_amount,omitempty"`
	Balance      int64  `json:"balance,omitempty"`
}

// CheckPayment 前端轮询查单
// 服务商侧已支付且本地还是 PENDING 时，当场结算入账
func (s *PurchaseService) CheckPayment(ctx context.Context, userID int64, paymentID string) (*CheckPaymentResult, error) {
	purchase, err := s.purchaseRepo.GetByPaymentID(ctx, paymentID)
	if err != nil {
		return nil, err
	}
	if purchase.UserID != userID {
		return nil, ErrPurchaseNotMine
	}

	if purchase.Status == model.PurchaseStatusPending {
		invoice, err := s.provider.GetInvoice(ctx, paymentID)
		if err != nil {
			return nil, err
		}
		switch invoice.Status {
		case payment.InvoiceStatusPaid:
			if err := s.Settle(ctx, purchase); err != nil {
				return nil, err
			}
			purchase.Status = model.PurchaseStatusCompleted
		case payment.InvoiceStatusExpired:
			if err := s.purchaseRepo.MarkExpired(ctx, purchase.ID); err != nil &&
				!errors.Is(err, repository.ErrPurchaseSettled) {
				return nil, err
			}
			purchase.Status = model.PurchaseStatusExpired
		}
	}

	result := &CheckPaymentResult{Status: purchase.Status}
	if purchase.Status == model.PurchaseStatusCompleted {
		result.TokensAmount = purchase.TokensAmount
		if profile, err := s.profileRepo.GetByUserID(ctx, purchase.UserID); err == nil {
			result.Balance = profile.TokensBalance
		}
	}
	return result, nil
}

// Settle 结算已支付的订单：标记完成 + 余额入账 + 发件箱事件
//
// 【关键点】三件事在同一个数据库事务里；
// MarkCompleted 的条件更新保证重复结算（webhook 和轮询赛跑）只入账一次
func (s *PurchaseService) Settle(ctx context.Context, purchase *model.TokenPurchase) error {
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := s.purchaseRepo.MarkCompleted(ctx, tx, purchase.ID); err != nil {
			return err
		}
		if err := s.profileRepo.Credit(ctx, tx, purchase.UserID, purchase.TokensAmount); err != nil {
			return err
		}

		payload, err := json.Marshal(map[string]interface{}{
			"event":         "token_purchase_completed",
			"purchase_no":   purchase.PurchaseNo,
			"user_id":       purchase.UserID,
			"tokens_amount": purchase.TokensAmount,
			"amount_cents":  purchase.AmountCents,
		})
		if err != nil {
			return err
		}
		return s.outboxRepo.Create(ctx, tx, &model.OutboxMessage{
			MessageKey: purchase.PurchaseNo,
			Topic:      s.kafkaCfg.Topic.TokenEvent,
			Payload:    string(payload),
			Status:     model.OutboxStatusPending,
		})
	})
	if err != nil {
		if errors.Is(err, repository.ErrPurchaseSettled) {
			// 另一条结算路径已经处理过，幂等返回
			return nil
		}
		return err
	}

	log.Printf("充值订单结算完成: purchase_no=%s user_id=%d tokens=%d",
		purchase.PurchaseNo, purchase.UserID, purchase.TokensAmount)

	// 推实时到账事件，失败不影响结算结果
	s.hub.PublishToUser(purchase.UserID, "token_credited", map[string]interface{}{
		"purchase_no":   purchase.PurchaseNo,
		"tokens_amount": purchase.TokensAmount,
	})

	return nil
}

// webhookUpdate 服务商 webhook 报文
type webhookUpdate struct {
	UpdateType string `json:"update_type"`
	Payload    struct {
		InvoiceID int64  `json:"invoice_id"`
		Status    string `json:"status"`
	} `json:"payload"`
}

// HandleWebhook 处理服务商支付回调
// 回调只是加速结算，丢了也没关系，轮询任务会兜底
func (s *PurchaseService) HandleWebhook(ctx context.Context, body []byte, signature string) error {
	if !s.provider.VerifyWebhookSignature(body, signature) {
		return ErrWebhookBadSign
	}

	var update webhookUpdate
	if err := json.Unmarshal(body, &update); err != nil {
		return fmt.Errorf("解析 webhook 报文失败: %w", err)
	}
	if update.UpdateType != "invoice_paid" {
		return ErrWebhookIgnored
	}

	purchase, err := s.purchaseRepo.GetByPaymentID(ctx, strconv.FormatInt(update.Payload.InvoiceID, 10))
	if err != nil {
		if errors.Is(err, repository.ErrPurchaseNotFound) {
			// 不认识的发票号，可能是别的环境开的票
			return nil
		}
		return err
	}

	return s.Settle(ctx, purchase)
}

// ListPurchases 充值历史
func (s *PurchaseService) ListPurchases(ctx context.Context, userID int64, page, pageSize int) ([]*model.TokenPurchase, error) {
	return s.purchaseRepo.ListByUserID(ctx, userID, page, pageSize)
}
