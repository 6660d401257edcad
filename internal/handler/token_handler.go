package handler

import (
	"errors"
	"io"
	"log"

	"fanstream/internal/repository"
	"fanstream/internal/service"
	"fanstream/pkg/response"

	"github.com/gin-gonic/gin"
)

type createInvoiceRequest struct {
	AmountCents int64 `json:"amount_cents" binding:"required"`
}

// CreateInvoice 创建充值发票
func (h *Handler) CreateInvoice(c *gin.Context) {
	var req createInvoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, "参数错误: "+err.Error())
		return
	}

	result, err := h.purchaseService.CreateInvoice(c.Request.Context(), currentUserID(c), req.AmountCents)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrAmountTooSmall), errors.Is(err, service.ErrAmountTooLarge):
			response.ParamError(c, err.Error())
		default:
			log.Printf("创建发票失败: %v", err)
			response.UpstreamError(c, "创建发票失败，请稍后重试")
		}
		return
	}
	response.Success(c, result)
}

// CheckPayment 前端轮询查单
func (h *Handler) CheckPayment(c *gin.Context) {
	paymentID := c.Param("payment_id")
	if paymentID == "" {
		response.ParamError(c, "缺少 payment_id")
		return
	}

	result, err := h.purchaseService.CheckPayment(c.Request.Context(), currentUserID(c), paymentID)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrPurchaseNotFound):
			response.NotFound(c, "充值订单不存在")
		case errors.Is(err, service.ErrPurchaseNotMine):
			response.Forbidden(c, err.Error())
		default:
			log.Printf("查单失败: payment_id=%s err=%v", paymentID, err)
			response.UpstreamError(c, "查询支付状态失败，请稍后重试")
		}
		return
	}
	response.Success(c, result)
}

type spendRequest struct {
	PostID  *int64 `json:"post_id"`
	MediaID *int64 `json:"media_id"`
}

// SpendTokens 花代币解锁内容
func (h *Handler) SpendTokens(c *gin.Context) {
	var req spendRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, "参数错误: "+err.Error())
		return
	}

	result, err := h.spendService.Spend(c.Request.Context(), currentUserID(c), req.PostID, req.MediaID)
	if err != nil {
		var balanceErr *service.InsufficientBalanceError
		switch {
		case errors.As(err, &balanceErr):
			response.BalanceShort(c, balanceErr.Error(), gin.H{
				"required": balanceErr.Required,
				"balance":  balanceErr.Balance,
			})
		case errors.Is(err, service.ErrSpendBadTarget),
			errors.Is(err, service.ErrContentFree),
			errors.Is(err, service.ErrSpendOwnContent):
			response.ParamError(c, err.Error())
		case errors.Is(err, service.ErrSpendBusy):
			response.ParamError(c, err.Error())
		case errors.Is(err, repository.ErrPostNotFound), errors.Is(err, repository.ErrMediaNotFound):
			response.NotFound(c, err.Error())
		default:
			log.Printf("解锁失败: user_id=%d err=%v", currentUserID(c), err)
			response.ServerError(c, "解锁失败，请稍后重试")
		}
		return
	}
	response.Success(c, result)
}

// GetBalance 查代币余额
func (h *Handler) GetBalance(c *gin.Context) {
	balance, err := h.profileService.GetBalance(c.Request.Context(), currentUserID(c))
	if err != nil {
		response.ServerError(c, "查询失败")
		return
	}
	response.Success(c, gin.H{"balance": balance})
}

// ListPurchases 充值历史
func (h *Handler) ListPurchases(c *gin.Context) {
	page, pageSize := parsePage(c)
	purchases, err := h.purchaseService.ListPurchases(c.Request.Context(), currentUserID(c), page, pageSize)
	if err != nil {
		response.ServerError(c, "查询失败")
		return
	}
	response.Success(c, purchases)
}

// ListTransactions 消费历史
func (h *Handler) ListTransactions(c *gin.Context) {
	page, pageSize := parsePage(c)
	transactions, err := h.spendService.ListTransactions(c.Request.Context(), currentUserID(c), page, pageSize)
	if err != nil {
		response.ServerError(c, "查询失败")
		return
	}
	response.Success(c, transactions)
}

// PaymentWebhook 支付服务商回调
// 这是结算的推送路径，轮询任务是兜底
func (h *Handler) PaymentWebhook(c *gin.Context) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		response.ParamError(c, "读取请求体失败")
		return
	}

	signature := c.GetHeader("Crypto-Pay-Api-Signature")
	err = h.purchaseService.HandleWebhook(c.Request.Context(), body, signature)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrWebhookBadSign):
			response.Unauthorized(c, "签名校验失败")
		case errors.Is(err, service.ErrWebhookIgnored):
			response.Success(c, nil)
		default:
			log.Printf("webhook 处理失败: %v", err)
			response.ServerError(c, "处理失败")
		}
		return
	}
	response.Success(c, nil)
}
