package service

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"gorm.io/datatypes"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"shopee_sync_v2_202508/internal/model"
	"shopee_sync_v2_202508/internal/repository"
	"shopee_sync_v2_202508/pkg/shopee"
)

// ==================== 测试辅助 ====================

func setupOrderTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("连接测试数据库失败: %v", err)
	}
	if err := db.AutoMigrate(&model.ShopCredential{}, &model.Order{}); err != nil {
		t.Fatalf("自动建表失败: %v", err)
	}
	return db
}

// fakeOrderPlatform 订单接口假服务
// listResponse 原样作为 get_order_list 的 response 返回，
// details 作为 get_order_detail 的 order_list 返回
type fakeOrderPlatform struct {
	listResponse map[string]interface{}
	details      []map[string]interface{}
}

func (f *fakeOrderPlatform) handler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case shopee.PathGetOrderList:
			writeEnvelope(w, f.listResponse)
		case shopee.PathGetOrderDetail:
			writeEnvelope(w, map[string]interface{}{"order_list": f.details})
		default:
			w.Write([]byte(`{"error":"error_not_found","message":"unknown path"}`))
		}
	}
}

func newOrderSyncForTest(t *testing.T, db *gorm.DB, baseURL string) *OrderSyncService {
	t.Helper()
	client := shopee.NewClient(&shopee.Config{
		PartnerID:  1001,
		PartnerKey: "test_partner_key",
		BaseURL:    baseURL,
		Timeout:    2 * time.Second,
	})
	credRepo := repository.NewCredentialRepository(db)
	return NewOrderSyncService(
		repository.NewOrderRepository(db),
		NewTokenService(credRepo, client),
		client,
	)
}

// ==================== 单元测试 ====================

// 重新同步时本地下划线注记原样保留，且已录运单号的订单派生为 PROCESSED
func TestOrderSync_PreservesLocalAnnotations(t *testing.T) {
	platform := &fakeOrderPlatform{
		details: []map[string]interface{}{{
			"order_sn":       "A1",
			"order_status":   model.OrderStatusReadyToShip,
			"buyer_username": "buyer_a",
			"total_amount":   99.9,
			"create_time":    int64(1700000000),
			"item_list":      []map[string]interface{}{{"item_id": int64(1), "item_name": "商品一"}},
		}},
	}
	srv := httptest.NewServer(platform.handler())
	defer srv.Close()

	db := setupOrderTestDB(t)
	seedOrderCredential(t, db)
	db.Create(&model.Order{
		OrderSN: "A1",
		ShopID:  2002,
		Status:  model.OrderStatusReadyToShip,
		RawData: datatypes.JSONMap{
			"order_status":              model.OrderStatusReadyToShip,
			model.TrackingAnnotationKey: "SF1234567890",
		},
	})

	svc := newOrderSyncForTest(t, db, srv.URL)
	result, err := svc.SyncOrders(context.Background(), []string{"A1"})
	if err != nil {
		t.Fatalf("同步失败: %v", err)
	}
	if result.Synced != 1 {
		t.Errorf("synced = %d, want 1", result.Synced)
	}

	order, err := repository.NewOrderRepository(db).GetBySN(context.Background(), "A1")
	if err != nil {
		t.Fatalf("查询订单失败: %v", err)
	}
	if order.TrackingNumber() != "SF1234567890" {
		t.Errorf("tracking = %q, want SF1234567890", order.TrackingNumber())
	}
	if order.Status != model.OrderStatusProcessed {
		t.Errorf("status = %s, want PROCESSED", order.Status)
	}
	// 平台字段以远端为准
	if order.BuyerName != "buyer_a" {
		t.Errorf("buyer = %s, want buyer_a", order.BuyerName)
	}
	if order.ItemNames != "商品一" {
		t.Errorf("item_names = %s, want 商品一", order.ItemNames)
	}
}

// 未录运单号的 READY_TO_SHIP 订单保持原状态
func TestOrderSync_NoAnnotationKeepsStatus(t *testing.T) {
	platform := &fakeOrderPlatform{
		details: []map[string]interface{}{{
			"order_sn":     "B1",
			"order_status": model.OrderStatusReadyToShip,
			"create_time":  int64(1700000000),
		}},
	}
	srv := httptest.NewServer(platform.handler())
	defer srv.Close()

	db := setupOrderTestDB(t)
	seedOrderCredential(t, db)

	svc := newOrderSyncForTest(t, db, srv.URL)
	if _, err := svc.SyncOrders(context.Background(), []string{"B1"}); err != nil {
		t.Fatalf("同步失败: %v", err)
	}

	order, err := repository.NewOrderRepository(db).GetBySN(context.Background(), "B1")
	if err != nil {
		t.Fatalf("查询订单失败: %v", err)
	}
	if order.Status != model.OrderStatusReadyToShip {
		t.Errorf("status = %s, want READY_TO_SHIP", order.Status)
	}
}

// 买家名和商品名的回退链
func TestOrderSync_BuyerAndItemFallbacks(t *testing.T) {
	platform := &fakeOrderPlatform{
		details: []map[string]interface{}{
			{
				"order_sn":      "C1",
				"order_status":  model.OrderStatusCompleted,
				"buyer_user_id": int64(12345),
				"create_time":   int64(1700000000),
			},
			{
				"order_sn":     "C2",
				"order_status": model.OrderStatusCompleted,
				"create_time":  int64(1700000000),
			},
			{
				"order_sn":       "C3",
				"order_status":   model.OrderStatusCompleted,
				"buyer_username": "real_buyer",
				"create_time":    int64(1700000000),
				"item_list": []map[string]interface{}{
					{"item_name": "商品一"},
					{"item_name": "商品二"},
				},
			},
		},
	}
	srv := httptest.NewServer(platform.handler())
	defer srv.Close()

	db := setupOrderTestDB(t)
	seedOrderCredential(t, db)

	svc := newOrderSyncForTest(t, db, srv.URL)
	if _, err := svc.SyncOrders(context.Background(), []string{"C1", "C2", "C3"}); err != nil {
		t.Fatalf("同步失败: %v", err)
	}

	repo := repository.NewOrderRepository(db)
	cases := []struct {
		sn        string
		buyer     string
		itemNames string
	}{
		{"C1", "12345", "No items"},    // 用户名缺失回退用户 ID
		{"C2", "Unknown", "No items"},  // 两者都缺失
		{"C3", "real_buyer", "商品一, 商品二"}, // 正常拼接
	}
	for _, tc := range cases {
		order, err := repo.GetBySN(context.Background(), tc.sn)
		if err != nil {
			t.Fatalf("查询订单 %s 失败: %v", tc.sn, err)
		}
		if order.BuyerName != tc.buyer {
			t.Errorf("%s buyer = %s, want %s", tc.sn, order.BuyerName, tc.buyer)
		}
		if order.ItemNames != tc.itemNames {
			t.Errorf("%s item_names = %s, want %s", tc.sn, order.ItemNames, tc.itemNames)
		}
	}
}

// 列表响应缺少 order_list 字段视为异常，整轮可见地失败
func TestOrderSync_MissingOrderListField(t *testing.T) {
	platform := &fakeOrderPlatform{
		listResponse: map[string]interface{}{"more": false},
	}
	srv := httptest.NewServer(platform.handler())
	defer srv.Close()

	db := setupOrderTestDB(t)
	seedOrderCredential(t, db)

	svc := newOrderSyncForTest(t, db, srv.URL)
	if _, err := svc.SyncOrders(context.Background(), nil); err == nil {
		t.Error("order_list 缺失应返回错误")
	}
}

// 空订单列表是正常结果，不是错误
func TestOrderSync_EmptyOrderList(t *testing.T) {
	platform := &fakeOrderPlatform{
		listResponse: map[string]interface{}{"order_list": []interface{}{}, "more": false},
	}
	srv := httptest.NewServer(platform.handler())
	defer srv.Close()

	db := setupOrderTestDB(t)
	seedOrderCredential(t, db)

	svc := newOrderSyncForTest(t, db, srv.URL)
	result, err := svc.SyncOrders(context.Background(), nil)
	if err != nil {
		t.Fatalf("空列表不应报错: %v", err)
	}
	if result.Synced != 0 {
		t.Errorf("synced = %d, want 0", result.Synced)
	}
}

func seedOrderCredential(t *testing.T, db *gorm.DB) {
	t.Helper()
	err := db.Create(&model.ShopCredential{
		ShopID:      2002,
		AccessToken: "valid_token",
		ExpireAt:    time.Now().Add(time.Hour),
	}).Error
	if err != nil {
		t.Fatalf("写入测试凭证失败: %v", err)
	}
}
