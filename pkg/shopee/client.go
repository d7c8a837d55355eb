package shopee

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/go-resty/resty/v2"
)

// 常用接口路径
const (
	PathAuthPartner    = "/api/v2/shop/auth_partner"
	PathGetToken       = "/api/v2/auth/token/get"
	PathRefreshToken   = "/api/v2/auth/access_token/get"
	PathGetShopInfo    = "/api/v2/shop/get_shop_info"
	PathGetItemList    = "/api/v2/product/get_item_list"
	PathGetItemBase    = "/api/v2/product/get_item_base_info"
	PathGetModelList   = "/api/v2/product/get_model_list"
	PathGetOrderList   = "/api/v2/order/get_order_list"
	PathGetOrderDetail = "/api/v2/order/get_order_detail"
	PathGetEscrowList  = "/api/v2/payment/get_escrow_list"
)

// DefaultTimeout 单次远程调用的固定超时
const DefaultTimeout = 15 * time.Second

// Config 开放平台接入配置
type Config struct {
	PartnerID   int64
	PartnerKey  string
	BaseURL     string // 生产: https://partner.shopeemobile.com
	RedirectURL string // 授权回调地址，须与平台后台配置一致

	// Timeout 为 0 时使用 DefaultTimeout
	Timeout time.Duration
}

// Client Shopee OpenAPI 签名客户端
// 无状态：只负责拼签名参数、发请求、还原信封；token 的选取由调用方负责
type Client struct {
	cfg  *Config
	http *resty.Client
}

// NewClient 创建签名客户端 (全系统统一的网络请求入口)
func NewClient(cfg *Config) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	httpClient := resty.New().
		SetBaseURL(cfg.BaseURL).
		SetTimeout(timeout).
		SetHeader("Content-Type", "application/json").
		SetHeader("User-Agent", "Shopee-Sync-Go/2.0")

	return &Client{cfg: cfg, http: httpClient}
}

// PartnerID 返回配置的 partner_id
func (c *Client) PartnerID() int64 {
	return c.cfg.PartnerID
}

// AuthURL 生成店铺授权跳转链接 (public 签名)
func (c *Client) AuthURL() string {
	ts := time.Now().Unix()
	sign := SignPublic(c.cfg.PartnerKey, c.cfg.PartnerID, PathAuthPartner, ts)
	return fmt.Sprintf("%s%s?partner_id=%d&timestamp=%d&sign=%s&redirect=%s",
		c.cfg.BaseURL, PathAuthPartner, c.cfg.PartnerID, ts, sign, c.cfg.RedirectURL)
}

// Call 调用签名接口
// path: 接口路径 (以 /api/v2 开头)
// params: GET 时追加到 query，POST/PUT 时作为 JSON body
// shopID / accessToken: 店铺维度接口必传；public 接口传 0 / ""
//
// 签名基串固定为 partner_id + path + timestamp + access_token + shop_id，
// public 调用时后两段为空串，与 public 签名自然重合。
//
// 超时不抛错，而是返回 {error:"timeout"} 信封，调用方与平台自身的
// 错误信封走同一个分支；其余传输层错误以 error 形式返回。
func (c *Client) Call(ctx context.Context, path string, params map[string]interface{}, shopID int64, accessToken string, method string) (*Envelope, error) {
	ts := time.Now().Unix()

	shopStr := ""
	if shopID > 0 {
		shopStr = strconv.FormatInt(shopID, 10)
	}
	sign := Sign(c.cfg.PartnerKey, c.cfg.PartnerID, path, ts, accessToken, shopStr)

	req := c.http.R().SetContext(ctx).
		SetQueryParam("partner_id", strconv.FormatInt(c.cfg.PartnerID, 10)).
		SetQueryParam("timestamp", strconv.FormatInt(ts, 10)).
		SetQueryParam("sign", sign)
	if accessToken != "" {
		req.SetQueryParam("access_token", accessToken)
	}
	if shopStr != "" {
		req.SetQueryParam("shop_id", shopStr)
	}

	switch method {
	case http.MethodGet:
		for k, v := range params {
			req.SetQueryParam(k, fmt.Sprint(v))
		}
	case http.MethodPost, http.MethodPut:
		if params == nil {
			params = map[string]interface{}{}
		}
		req.SetBody(params)
	default:
		return nil, fmt.Errorf("unsupported method: %s", method)
	}

	resp, err := req.Execute(method, path)
	if err != nil {
		if isTimeout(err) {
			return &Envelope{Error: "timeout", Message: "Request timed out"}, nil
		}
		return nil, fmt.Errorf("shopee api request failed: %w", err)
	}

	body := resp.Body()
	var env Envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, fmt.Errorf("shopee api invalid response [%d]: %w", resp.StatusCode(), err)
	}
	env.Raw = body
	return &env, nil
}

// Get GET 便捷方法
func (c *Client) Get(ctx context.Context, path string, params map[string]interface{}, shopID int64, accessToken string) (*Envelope, error) {
	return c.Call(ctx, path, params, shopID, accessToken, http.MethodGet)
}

// Post POST 便捷方法
func (c *Client) Post(ctx context.Context, path string, params map[string]interface{}, shopID int64, accessToken string) (*Envelope, error) {
	return c.Call(ctx, path, params, shopID, accessToken, http.MethodPost)
}

// isTimeout 判断传输错误是否为超时
func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var ne net.Error
	return errors.As(err, &ne) && ne.Timeout()
}
