package dto

// ==================== 手动同步 ====================

// SyncOrdersRequest 订单同步请求
// order_sn_list 为空时同步近 7 天的订单
type SyncOrdersRequest struct {
	OrderSNList []string `json:"order_sn_list,omitempty" binding:"omitempty,max=50"`
}

// SyncProductsResponse 商品同步响应
type SyncProductsResponse struct {
	Synced  int `json:"synced"`
	Deleted int `json:"deleted"`
}

// SyncOrdersResponse 订单同步响应
type SyncOrdersResponse struct {
	Synced int `json:"synced"`
}

// SyncWalletResponse 钱包同步响应
type SyncWalletResponse struct {
	Processed     int     `json:"processed"`
	TotalEarnings float64 `json:"total_earnings"`
}
