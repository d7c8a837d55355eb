package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strconv"
	"strings"
	"time"

	"gorm.io/datatypes"

	"shopee_sync_v2_202508/internal/model"
	"shopee_sync_v2_202508/internal/repository"
	"shopee_sync_v2_202508/pkg/shopee"
)

// 业务常量
const (
	orderListPageSize = 50                 // get_order_list 单页上限
	orderListWindow   = 7 * 24 * time.Hour // 按创建时间回看窗口

	// 详情接口需要显式声明可选字段，否则平台只返回骨架
	orderDetailOptionalFields = "buyer_user_id,buyer_username,item_list,total_amount,order_status,create_time,recipient_address,package_list"
)

// ==================== OrderSyncService 订单同步 ====================

// OrderSyncService 订单增量同步
// 拉取近期订单详情并与本地注记合并入库。订单行只增改不删，
// 本地补录的下划线注记 (如手工运单号) 在重新同步时原样保留
type OrderSyncService struct {
	orderRepo repository.OrderRepository
	tokenSvc  *TokenService
	client    *shopee.Client
}

// NewOrderSyncService 创建订单同步服务
func NewOrderSyncService(
	orderRepo repository.OrderRepository,
	tokenSvc *TokenService,
	client *shopee.Client,
) *OrderSyncService {
	return &OrderSyncService{
		orderRepo: orderRepo,
		tokenSvc:  tokenSvc,
		client:    client,
	}
}

// OrderSyncResult 订单同步结果
type OrderSyncResult struct {
	Synced int           `json:"synced"`
	Orders []model.Order `json:"orders,omitempty"`
}

// SyncOrders 执行一轮订单同步
// orderSNs 非空时只同步指定订单；为空时拉取近 7 天的订单列表
func (s *OrderSyncService) SyncOrders(ctx context.Context, orderSNs []string) (*OrderSyncResult, error) {
	cred, err := s.tokenSvc.GetValidCredential(ctx)
	if err != nil {
		return nil, fmt.Errorf("订单同步中止: %w", err)
	}

	if len(orderSNs) == 0 {
		orderSNs, err = s.listRecentOrderSNs(ctx, cred)
		if err != nil {
			return nil, err
		}
	}
	if len(orderSNs) == 0 {
		log.Printf("[OrderSync] 店铺 %d 近期无订单，本轮跳过", cred.ShopID)
		return &OrderSyncResult{}, nil
	}

	details, err := s.fetchOrderDetails(ctx, cred, orderSNs)
	if err != nil {
		return nil, err
	}

	// 预读本地已有订单，合并时要保留其中的下划线注记
	existing, err := s.orderRepo.ListBySNs(ctx, orderSNs)
	if err != nil {
		return nil, fmt.Errorf("查询本地订单失败: %w", err)
	}
	local := make(map[string]*model.Order, len(existing))
	for i := range existing {
		local[existing[i].OrderSN] = &existing[i]
	}

	result := &OrderSyncResult{}
	for _, raw := range details {
		order, err := s.buildOrder(cred.ShopID, raw, local)
		if err != nil {
			log.Printf("[OrderSync] 订单详情处理失败，跳过: %v", err)
			continue
		}
		if err := s.orderRepo.Upsert(ctx, order); err != nil {
			return nil, fmt.Errorf("订单 %s 入库失败: %w", order.OrderSN, err)
		}
		result.Orders = append(result.Orders, *order)
		result.Synced++
	}

	log.Printf("[OrderSync] 店铺 %d 同步完成: 更新 %d 笔订单", cred.ShopID, result.Synced)
	return result, nil
}

// listRecentOrderSNs 按创建时间拉取近 7 天的订单号
// 列表接口失败会让整轮可见地失败，而不是静默同步 0 笔
func (s *OrderSyncService) listRecentOrderSNs(ctx context.Context, cred *model.ShopCredential) ([]string, error) {
	now := time.Now()
	env, err := s.client.Get(ctx, shopee.PathGetOrderList, map[string]interface{}{
		"time_range_field": "create_time",
		"time_from":        now.Add(-orderListWindow).Unix(),
		"time_to":          now.Unix(),
		"page_size":        orderListPageSize,
	}, cred.ShopID, cred.AccessToken)
	if err != nil {
		return nil, fmt.Errorf("订单列表请求失败: %w", err)
	}
	if !env.OK() {
		return nil, fmt.Errorf("订单列表被拒绝: %s (%s)", env.Error, env.Message)
	}

	var list shopee.OrderListResp
	if err := json.Unmarshal(env.Response, &list); err != nil {
		return nil, fmt.Errorf("订单列表解析失败: %w", err)
	}
	// order_list 缺失和空列表是两回事：缺失视为响应异常
	if list.OrderList == nil {
		return nil, fmt.Errorf("订单列表响应缺少 order_list 字段")
	}

	sns := make([]string, 0, len(list.OrderList))
	for _, entry := range list.OrderList {
		sns = append(sns, entry.OrderSN)
	}
	return sns, nil
}

// fetchOrderDetails 批量拉取订单详情 (保留每笔订单的原始 JSON)
func (s *OrderSyncService) fetchOrderDetails(ctx context.Context, cred *model.ShopCredential, orderSNs []string) ([]json.RawMessage, error) {
	env, err := s.client.Get(ctx, shopee.PathGetOrderDetail, map[string]interface{}{
		"order_sn_list":                strings.Join(orderSNs, ","),
		"response_optional_fields":     orderDetailOptionalFields,
		"request_order_status_pending": false,
	}, cred.ShopID, cred.AccessToken)
	if err != nil {
		return nil, fmt.Errorf("订单详情请求失败: %w", err)
	}
	if !env.OK() {
		return nil, fmt.Errorf("订单详情被拒绝: %s (%s)", env.Error, env.Message)
	}

	var detail shopee.OrderDetailResp
	if err := json.Unmarshal(env.Response, &detail); err != nil {
		return nil, fmt.Errorf("订单详情解析失败: %w", err)
	}
	return detail.OrderList, nil
}

// buildOrder 把远端详情与本地注记合并为入库行
// 合并规则：远端字段为准；本地下划线注记只在远端缺少同名键时保留。
// READY_TO_SHIP + 已录运单号 → 本地派生状态 PROCESSED
func (s *OrderSyncService) buildOrder(shopID int64, raw json.RawMessage, local map[string]*model.Order) (*model.Order, error) {
	var detail shopee.OrderDetail
	if err := json.Unmarshal(raw, &detail); err != nil {
		return nil, fmt.Errorf("订单结构解析失败: %w", err)
	}
	if detail.OrderSN == "" {
		return nil, fmt.Errorf("订单详情缺少 order_sn")
	}

	// 同一份 JSON 再展开成 map 作为 raw payload
	payload := make(map[string]interface{})
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil, fmt.Errorf("订单 payload 解析失败: %w", err)
	}

	// 叠加本地注记：只补远端没有的键，平台字段永远以远端为准
	if prev, ok := local[detail.OrderSN]; ok {
		for k, v := range prev.LocalAnnotations() {
			if _, exists := payload[k]; !exists {
				payload[k] = v
			}
		}
	}

	status := detail.OrderStatus
	if status == model.OrderStatusReadyToShip {
		if tracking, ok := payload[model.TrackingAnnotationKey].(string); ok && tracking != "" {
			status = model.OrderStatusProcessed
		}
	}

	order := &model.Order{
		OrderSN:         detail.OrderSN,
		ShopID:          shopID,
		BuyerName:       resolveBuyerName(&detail),
		ItemNames:       resolveItemNames(&detail),
		TotalAmount:     detail.TotalAmount,
		Status:          status,
		OrderCreateTime: time.Unix(detail.CreateTime, 0),
		RawData:         datatypes.JSONMap(payload),
	}
	return order, nil
}

// resolveBuyerName 买家名回退链：用户名 → 用户 ID → "Unknown"
func resolveBuyerName(detail *shopee.OrderDetail) string {
	if detail.BuyerUsername != "" {
		return detail.BuyerUsername
	}
	if detail.BuyerUserID > 0 {
		return strconv.FormatInt(detail.BuyerUserID, 10)
	}
	return "Unknown"
}

// resolveItemNames 拼接商品名，无商品时给占位文案
func resolveItemNames(detail *shopee.OrderDetail) string {
	if len(detail.ItemList) == 0 {
		return "No items"
	}
	names := make([]string, 0, len(detail.ItemList))
	for _, item := range detail.ItemList {
		names = append(names, item.ItemName)
	}
	return strings.Join(names, ", ")
}
