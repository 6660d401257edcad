package job

import (
	"context"
	"errors"
	"log"
	"time"

	"fanstream/internal/config"
	"fanstream/internal/infrastructure/payment"
	"fanstream/internal/repository"
	"fanstream/internal/service"
)

// PurchaseSettler 充值订单结算任务
//
// webhook 是结算的主路径，这里是兜底：
//   - 定期把 PENDING 订单拿出来去服务商查一遍状态
//   - 已支付的当场结算入账
//   - 超过有效期还没支付的置为 EXPIRED
type PurchaseSettler struct {
	purchaseRepo    *repository.PurchaseRepository
	purchaseService *service.PurchaseService
	provider        service.InvoiceProvider
	businessCfg     *config.BusinessConfig
	batchSize       int
	stopCh          chan struct{}
}

func NewPurchaseSettler(
	purchaseRepo *repository.PurchaseRepository,
	purchaseService *service.PurchaseService,
	provider service.InvoiceProvider,
	businessCfg *config.BusinessConfig,
) *PurchaseSettler {
	return &PurchaseSettler{
		purchaseRepo:    purchaseRepo,
		purchaseService: purchaseService,
		provider:        provider,
		businessCfg:     businessCfg,
		batchSize:       50,
		stopCh:          make(chan struct{}),
	}
}

func (s *PurchaseSettler) Start() {
	go s.run()
	log.Println("充值结算任务已启动")
}

func (s *PurchaseSettler) Stop() {
	close(s.stopCh)
}

func (s *PurchaseSettler) run() {
	interval := time.Duration(s.businessCfg.SettleIntervalSeconds) * time.Second
	if interval <= 0 {
		interval = 5 * time.Second
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.processBatch()
		case <-s.stopCh:
			log.Println("充值结算任务已停止")
			return
		}
	}
}

func (s *PurchaseSettler) processBatch() {
	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	purchases, err := s.purchaseRepo.GetPendingList(ctx, s.batchSize)
	if err != nil {
		log.Printf("查询待结算订单失败: %v", err)
		return
	}

	expireBefore := time.Now().Add(-time.Duration(s.businessCfg.PurchaseExpireMinutes) * time.Minute)

	for _, purchase := range purchases {
		invoice, err := s.provider.GetInvoice(ctx, purchase.PaymentID)
		if err != nil {
			if errors.Is(err, payment.ErrInvoiceNotFound) {
				// 服务商那边查不到的发票，超期后一并过期处理
				if purchase.CreatedAt.Before(expireBefore) {
					s.expire(ctx, purchase.ID)
				}
				continue
			}
			log.Printf("查询发票状态失败: payment_id=%s err=%v", purchase.PaymentID, err)
			continue
		}

		switch invoice.Status {
		case payment.InvoiceStatusPaid:
			if err := s.purchaseService.Settle(ctx, purchase); err != nil {
				log.Printf("订单结算失败: purchase_no=%s err=%v", purchase.PurchaseNo, err)
			}
		case payment.InvoiceStatusExpired:
			s.expire(ctx, purchase.ID)
		default:
			// 还在等支付，本地超时先行过期
			if purchase.CreatedAt.Before(expireBefore) {
				s.expire(ctx, purchase.ID)
			}
		}
	}
}

func (s *PurchaseSettler) expire(ctx context.Context, purchaseID int64) {
	if err := s.purchaseRepo.MarkExpired(ctx, purchaseID); err != nil &&
		!errors.Is(err, repository.ErrPurchaseSettled) {
		log.Printf("订单过期处理失败: id=%d err=%v", purchaseID, err)
	}
}
