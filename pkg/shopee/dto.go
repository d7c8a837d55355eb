package shopee

import "encoding/json"

// ==================== 通用响应信封 ====================

// Envelope Shopee OpenAPI 统一响应信封
// 所有接口都返回 {error, message, request_id, response} 结构；
// 超时哨兵同样以该结构返回 (Error="timeout")，调用方统一按信封分支处理
type Envelope struct {
	RequestID string          `json:"request_id"`
	Error     string          `json:"error"`
	Message   string          `json:"message"`
	Response  json.RawMessage `json:"response"`

	// Raw 完整响应体
	// auth/token 和 shop 类接口把业务字段放在信封顶层而不是 response 里
	Raw []byte `json:"-"`
}

// OK error 字段为空即视为业务成功
func (e *Envelope) OK() bool {
	return e.Error == ""
}

// ==================== auth ====================

// TokenResp token 换取/刷新响应 (字段在信封顶层)
type TokenResp struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpireIn     int64  `json:"expire_in"` // 有效期，秒
	Error        string `json:"error"`
	Message      string `json:"message"`
}

// ==================== product ====================

// ItemListResp get_item_list 响应
type ItemListResp struct {
	Item        []ItemListEntry `json:"item"`
	TotalCount  int             `json:"total_count"`
	HasNextPage bool            `json:"has_next_page"`
	NextOffset  int             `json:"next_offset"`
}

type ItemListEntry struct {
	ItemID     int64  `json:"item_id"`
	ItemStatus string `json:"item_status"`
	UpdateTime int64  `json:"update_time"`
}

// ItemBaseInfoResp get_item_base_info 响应
type ItemBaseInfoResp struct {
	ItemList []ItemBaseInfo `json:"item_list"`
}

type ItemBaseInfo struct {
	ItemID      int64        `json:"item_id"`
	ItemName    string       `json:"item_name"`
	ItemSKU     string       `json:"item_sku"`
	ItemStatus  string       `json:"item_status"`
	HasModel    bool         `json:"has_model"`
	PriceInfo   []PriceInfo  `json:"price_info"`
	StockInfoV2 *StockInfoV2 `json:"stock_info_v2"`
	StockInfo   []StockInfo  `json:"stock_info"`
}

// PriceInfo 价格信息 (原价/现价)
// 指针字段：回退链需要区分“字段缺失”和“值为 0”
type PriceInfo struct {
	Currency      string   `json:"currency"`
	OriginalPrice *float64 `json:"original_price"`
	CurrentPrice  *float64 `json:"current_price"`
}

// StockInfoV2 v2 库存汇总
type StockInfoV2 struct {
	SummaryInfo *StockSummaryInfo `json:"summary_info"`
}

type StockSummaryInfo struct {
	TotalReservedStock  int  `json:"total_reserved_stock"`
	TotalAvailableStock *int `json:"total_available_stock"`
}

// StockInfo v1 库存 (旧字段，作为 v2 缺失时的回退)
type StockInfo struct {
	StockType    int `json:"stock_type"`
	CurrentStock int `json:"current_stock"`
}

// ModelListResp get_model_list 响应
type ModelListResp struct {
	Model []ItemModel `json:"model"`
}

type ItemModel struct {
	ModelID     int64        `json:"model_id"`
	ModelName   string       `json:"model_name"`
	ModelSKU    string       `json:"model_sku"`
	PriceInfo   []PriceInfo  `json:"price_info"`
	StockInfoV2 *StockInfoV2 `json:"stock_info_v2"`
	StockInfo   []StockInfo  `json:"stock_info"`
}

// ==================== order ====================

// OrderListResp get_order_list 响应
type OrderListResp struct {
	OrderList  []OrderListEntry `json:"order_list"`
	More       bool             `json:"more"`
	NextCursor string           `json:"next_cursor"`
}

type OrderListEntry struct {
	OrderSN     string `json:"order_sn"`
	OrderStatus string `json:"order_status"`
}

// OrderDetailResp get_order_detail 响应
// 每个订单保留原始 JSON：入库时 raw payload 需要与本地下划线注记合并后原样存储
type OrderDetailResp struct {
	OrderList []json.RawMessage `json:"order_list"`
}

// OrderDetail 订单详情中本系统关心的字段
type OrderDetail struct {
	OrderSN       string  `json:"order_sn"`
	OrderStatus   string  `json:"order_status"`
	BuyerUserID   int64   `json:"buyer_user_id"`
	BuyerUsername string  `json:"buyer_username"`
	TotalAmount   float64 `json:"total_amount"`
	CreateTime    int64   `json:"create_time"`
	ItemList      []struct {
		ItemID   int64  `json:"item_id"`
		ItemName string `json:"item_name"`
		ItemSKU  string `json:"item_sku"`
	} `json:"item_list"`
}

// ==================== payment ====================

// EscrowListResp get_escrow_list 响应
type EscrowListResp struct {
	EscrowList []EscrowEntry `json:"escrow_list"`
	More       bool          `json:"more"`
}

type EscrowEntry struct {
	OrderSN           string  `json:"order_sn"`
	PayoutAmount      float64 `json:"payout_amount"`
	EscrowReleaseTime int64   `json:"escrow_release_time"`
}

// ==================== shop ====================

// ShopInfoResp get_shop_info 响应 (字段在信封顶层)
type ShopInfoResp struct {
	ShopName    string `json:"shop_name"`
	Region      string `json:"region"`
	Status      string `json:"status"`
	IsSip       bool   `json:"is_sip"`
	IsCB        bool   `json:"is_cb"`
	AuthTime    int64  `json:"auth_time"`
	ExpireTime  int64  `json:"expire_time"`
	Error       string `json:"error"`
	Message     string `json:"message"`
	RequestID   string `json:"request_id"`
	ShopCBSC    string `json:"shop_cbsc,omitempty"`
	Description string `json:"description,omitempty"`
}
