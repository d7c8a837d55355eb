package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strconv"
	"strings"

	"shopee_sync_v2_202508/internal/model"
	"shopee_sync_v2_202508/internal/repository"
	"shopee_sync_v2_202508/pkg/shopee"
)

// 业务常量
const (
	itemListPageSize    = 100 // get_item_list 单页上限
	itemDetailBatchSize = 50  // get_item_base_info 单次批量上限
)

// ==================== ProductSyncService 商品同步 ====================

// ProductSyncService 商品全量对账
// 扫描四个状态分区收集 item_id，分块拉取详情入库，
// 最后删除本轮未观察到的本地行 (全量对账而非增量)
type ProductSyncService struct {
	productRepo repository.ProductRepository
	tokenSvc    *TokenService
	client      *shopee.Client
}

// NewProductSyncService 创建商品同步服务
func NewProductSyncService(
	productRepo repository.ProductRepository,
	tokenSvc *TokenService,
	client *shopee.Client,
) *ProductSyncService {
	return &ProductSyncService{
		productRepo: productRepo,
		tokenSvc:    tokenSvc,
		client:      client,
	}
}

// ProductSyncResult 商品同步结果
type ProductSyncResult struct {
	Synced  int `json:"synced"`
	Deleted int `json:"deleted"`
}

// SyncProducts 执行一轮商品同步
// 所有远程调用严格串行，一次只有一个在途请求 (平滑 QPS)
func (s *ProductSyncService) SyncProducts(ctx context.Context) (*ProductSyncResult, error) {
	cred, err := s.tokenSvc.GetValidCredential(ctx)
	if err != nil {
		return nil, fmt.Errorf("商品同步中止: %w", err)
	}

	// 1. 扫描状态分区，收集 item_id
	itemIDs := s.collectItemIDs(ctx, cred)
	if len(itemIDs) == 0 {
		log.Printf("[ProductSync] 店铺 %d 远端无商品，本轮跳过", cred.ShopID)
		return &ProductSyncResult{}, nil
	}

	// 2. 分块拉取详情并入库
	result := &ProductSyncResult{}
	seen := make([]int64, 0, len(itemIDs))

	for start := 0; start < len(itemIDs); start += itemDetailBatchSize {
		end := start + itemDetailBatchSize
		if end > len(itemIDs) {
			end = len(itemIDs)
		}
		chunk := itemIDs[start:end]

		synced, chunkSeen, err := s.syncChunk(ctx, cred, chunk)
		if err != nil {
			// 存储层故障中止整轮；远端错误已在 syncChunk 内降级为跳过
			return nil, err
		}
		result.Synced += synced
		seen = append(seen, chunkSeen...)
	}

	// 3. 清理：删除本轮未观察到的本地行
	// 失败分块内的商品不在 seen 集合里，会被一并删除
	deleted, err := s.productRepo.DeleteMissing(ctx, cred.ShopID, seen)
	if err != nil {
		return nil, fmt.Errorf("清理过期商品失败: %w", err)
	}
	result.Deleted = int(deleted)

	log.Printf("[ProductSync] 店铺 %d 同步完成: 更新 %d, 删除 %d", cred.ShopID, result.Synced, result.Deleted)
	return result, nil
}

// collectItemIDs 逐个状态分区拉取商品列表
// 某个分区失败只记日志并跳过该分区
func (s *ProductSyncService) collectItemIDs(ctx context.Context, cred *model.ShopCredential) []int64 {
	var itemIDs []int64

	for _, status := range model.ItemStatusPartitions {
		env, err := s.client.Get(ctx, shopee.PathGetItemList, map[string]interface{}{
			"offset":      0,
			"page_size":   itemListPageSize,
			"item_status": status,
		}, cred.ShopID, cred.AccessToken)
		if err != nil {
			log.Printf("[ProductSync] 分区 %s 列表拉取失败: %v", status, err)
			continue
		}
		if !env.OK() {
			log.Printf("[ProductSync] 分区 %s 列表拉取失败: %s (%s)", status, env.Error, env.Message)
			continue
		}

		var list shopee.ItemListResp
		if err := json.Unmarshal(env.Response, &list); err != nil {
			log.Printf("[ProductSync] 分区 %s 列表解析失败: %v", status, err)
			continue
		}
		// TODO: has_next_page 时按 next_offset 翻页，当前每个分区只取一页
		for _, entry := range list.Item {
			itemIDs = append(itemIDs, entry.ItemID)
		}
	}

	return itemIDs
}

// syncChunk 拉取一个分块的商品详情并入库
// 远端错误信封 → 整块跳过 (返回 synced=0)；存储层错误 → 上抛
func (s *ProductSyncService) syncChunk(ctx context.Context, cred *model.ShopCredential, chunk []int64) (int, []int64, error) {
	env, err := s.client.Get(ctx, shopee.PathGetItemBase, map[string]interface{}{
		"item_id_list": joinIDs(chunk),
	}, cred.ShopID, cred.AccessToken)
	if err != nil {
		log.Printf("[ProductSync] 分块详情请求失败，跳过 %d 个商品: %v", len(chunk), err)
		return 0, nil, nil
	}
	if !env.OK() {
		log.Printf("[ProductSync] 分块详情被拒绝，跳过 %d 个商品: %s (%s)", len(chunk), env.Error, env.Message)
		return 0, nil, nil
	}

	var base shopee.ItemBaseInfoResp
	if err := json.Unmarshal(env.Response, &base); err != nil {
		log.Printf("[ProductSync] 分块详情解析失败，跳过 %d 个商品: %v", len(chunk), err)
		return 0, nil, nil
	}

	synced := 0
	seen := make([]int64, 0, len(base.ItemList))
	for i := range base.ItemList {
		item := &base.ItemList[i]

		product, variants, err := s.buildProduct(ctx, cred, item)
		if err != nil {
			log.Printf("[ProductSync] 商品 %d 处理失败，跳过: %v", item.ItemID, err)
			continue
		}

		if err := s.productRepo.Upsert(ctx, product); err != nil {
			return synced, seen, fmt.Errorf("商品 %d 入库失败: %w", item.ItemID, err)
		}
		if err := s.productRepo.ReplaceVariants(ctx, item.ItemID, variants); err != nil {
			return synced, seen, fmt.Errorf("商品 %d 变体入库失败: %w", item.ItemID, err)
		}

		seen = append(seen, item.ItemID)
		synced++
	}

	return synced, seen, nil
}

// buildProduct 把远端详情转换为本地商品行
// 有变体：逐个变体套用回退链，聚合库存 = 变体库存之和，聚合价格 = 首个变体价格
// 无变体：直接对商品自身字段套用回退链
func (s *ProductSyncService) buildProduct(ctx context.Context, cred *model.ShopCredential, item *shopee.ItemBaseInfo) (*model.Product, []model.ProductVariant, error) {
	product := &model.Product{
		ItemID:     item.ItemID,
		ShopID:     cred.ShopID,
		Name:       item.ItemName,
		SKU:        item.ItemSKU,
		ItemStatus: item.ItemStatus,
	}

	if !item.HasModel {
		product.Price = resolvePrice(item.PriceInfo)
		product.Stock = resolveStock(item.StockInfoV2, item.StockInfo)
		return product, nil, nil
	}

	env, err := s.client.Get(ctx, shopee.PathGetModelList, map[string]interface{}{
		"item_id": item.ItemID,
	}, cred.ShopID, cred.AccessToken)
	if err != nil {
		return nil, nil, fmt.Errorf("变体列表请求失败: %w", err)
	}
	if !env.OK() {
		return nil, nil, fmt.Errorf("变体列表被拒绝: %s (%s)", env.Error, env.Message)
	}

	var modelList shopee.ModelListResp
	if err := json.Unmarshal(env.Response, &modelList); err != nil {
		return nil, nil, fmt.Errorf("变体列表解析失败: %w", err)
	}

	variants := make([]model.ProductVariant, 0, len(modelList.Model))
	totalStock := 0
	for _, m := range modelList.Model {
		v := model.ProductVariant{
			ItemID:  item.ItemID,
			ModelID: m.ModelID,
			Name:    m.ModelName,
			SKU:     m.ModelSKU,
			Price:   resolvePrice(m.PriceInfo),
			Stock:   resolveStock(m.StockInfoV2, m.StockInfo),
		}
		totalStock += v.Stock
		variants = append(variants, v)
	}

	product.Stock = totalStock
	if len(variants) > 0 {
		product.Price = variants[0].Price
	}
	return product, variants, nil
}

// ==================== 回退链 ====================

// resolvePrice 价格回退链：原价 → 现价 → 0
func resolvePrice(info []shopee.PriceInfo) float64 {
	if len(info) == 0 {
		return 0
	}
	if info[0].OriginalPrice != nil {
		return *info[0].OriginalPrice
	}
	if info[0].CurrentPrice != nil {
		return *info[0].CurrentPrice
	}
	return 0
}

// resolveStock 库存回退链：v2 可售汇总 → v1 当前库存 → 0
func resolveStock(v2 *shopee.StockInfoV2, v1 []shopee.StockInfo) int {
	if v2 != nil && v2.SummaryInfo != nil && v2.SummaryInfo.TotalAvailableStock != nil {
		return *v2.SummaryInfo.TotalAvailableStock
	}
	if len(v1) > 0 {
		return v1[0].CurrentStock
	}
	return 0
}

// joinIDs 逗号拼接 id 列表
func joinIDs(ids []int64) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = strconv.FormatInt(id, 10)
	}
	return strings.Join(parts, ",")
}
