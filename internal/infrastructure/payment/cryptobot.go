package payment

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"fanstream/internal/config"
)

// ============================================================================
// CryptoBot 支付客户端
// ============================================================================
//
// 外部接口只有两个：
//   createInvoice  创建发票，返回托管收银台 URL 和发票号
//   getInvoices    按发票号查状态（active / paid / expired）
//
// 鉴权走静态 Crypto-Pay-API-Token 请求头。
// webhook 回调用 HMAC-SHA256 签名，密钥是 API token 的 SHA256。
// ============================================================================

// 发票状态（服务商侧）
const (
	InvoiceStatusActive  = "active"
	InvoiceStatusPaid    = "paid"
	InvoiceStatusExpired = "expired"
)

var (
	ErrInvoiceNotFound = errors.New("发票不存在")
)

// Client 调用外部支付服务商的客户端
type Client struct {
	baseURL    string
	apiToken   string
	httpClient *http.Client
}

// Invoice 服务商返回的发票
type Invoice struct {
	InvoiceID int64  `json:"invoice_id"`
	Status    string `json:"status"`
	PayURL    string `json:"pay_url"`
}

func NewClient(cfg *config.CryptoBotConfig) *Client {
	return &Client{
		baseURL:  strings.TrimRight(cfg.BaseURL, "/"),
		apiToken: cfg.APIToken,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

type apiError struct {
	Name string `json:"name"`
}

type createInvoiceResponse struct {
	OK     bool      `json:"ok"`
	Result *Invoice  `json:"result"`
	Error  *apiError `json:"error"`
}

type getInvoicesResponse struct {
	OK     bool `json:"ok"`
	Result struct {
		Items []Invoice `json:"items"`
	} `json:"result"`
	Error *apiError `json:"error"`
}

// CreateInvoice 创建法币发票
// amountCents 为美分，description 会显示在收银台页面上
func (c *Client) CreateInvoice(ctx context.Context, amountCents int64, description string) (*Invoice, error) {
	payload := map[string]interface{}{
		"amount":        fmt.Sprintf("%d.%02d", amountCents/100, amountCents%100),
		"currency_type": "fiat",
		"fiat":          "USD",
		"description":   description,
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/createInvoice", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Crypto-Pay-API-Token", c.apiToken)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("调用支付服务商失败: %w", err)
	}
	defer resp.Body.Close()

	var out createInvoiceResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("解析支付服务商响应失败: %w", err)
	}
	if !out.OK || out.Result == nil {
		if out.Error != nil {
			return nil, fmt.Errorf("创建发票失败: %s", out.Error.Name)
		}
		return nil, errors.New("创建发票失败")
	}
	return out.Result, nil
}

// GetInvoice 按发票号查询状态
func (c *Client) GetInvoice(ctx context.Context, invoiceID string) (*Invoice, error) {
	url := fmt.Sprintf("%s/getInvoices?invoice_ids=%s", c.baseURL, invoiceID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Crypto-Pay-API-Token", c.apiToken)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("调用支付服务商失败: %w", err)
	}
	defer resp.Body.Close()

	var out getInvoicesResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("解析支付服务商响应失败: %w", err)
	}
	if !out.OK || len(out.Result.Items) == 0 {
		return nil, ErrInvoiceNotFound
	}
	return &out.Result.Items[0], nil
}

// VerifyWebhookSignature 校验 webhook 回调签名
// 签名算法：HMAC-SHA256(body)，密钥为 SHA256(api_token)
func (c *Client) VerifyWebhookSignature(body []byte, signature string) bool {
	secret := sha256.Sum256([]byte(c.apiToken))
	mac := hmac.New(sha256.New, secret[:])
	mac.Write(body)
	expected := hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(signature))
}
