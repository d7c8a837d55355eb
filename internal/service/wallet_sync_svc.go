package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"shopee_sync_v2_202508/internal/model"
	"shopee_sync_v2_202508/internal/repository"
	"shopee_sync_v2_202508/pkg/shopee"
)

// 业务常量
const (
	escrowListPageSize = 40                  // get_escrow_list 单页上限
	escrowLookback     = 30 * 24 * time.Hour // 结算放款回看窗口
)

// ==================== WalletSyncService 钱包同步 ====================

// WalletSyncService 钱包流水同步
// 优先拉取平台结算放款记录；沙箱或无放款数据时退化为按本地
// 已完成订单合成流水，保证收益汇总始终可算
type WalletSyncService struct {
	walletRepo  repository.WalletRepository
	profileRepo repository.ProfileRepository
	orderRepo   repository.OrderRepository
	tokenSvc    *TokenService
	client      *shopee.Client
}

// NewWalletSyncService 创建钱包同步服务
func NewWalletSyncService(
	walletRepo repository.WalletRepository,
	profileRepo repository.ProfileRepository,
	orderRepo repository.OrderRepository,
	tokenSvc *TokenService,
	client *shopee.Client,
) *WalletSyncService {
	return &WalletSyncService{
		walletRepo:  walletRepo,
		profileRepo: profileRepo,
		orderRepo:   orderRepo,
		tokenSvc:    tokenSvc,
		client:      client,
	}
}

// WalletSyncResult 钱包同步结果
type WalletSyncResult struct {
	Processed     int     `json:"processed"`
	TotalEarnings float64 `json:"total_earnings"`
}

// SyncWallet 执行一轮钱包同步
// 结算接口失败不算致命，但也不触发合成：记日志后本轮直接返回零结果，
// 合成分支只在结算调用成功且确实没有放款记录时才走
func (s *WalletSyncService) SyncWallet(ctx context.Context) (*WalletSyncResult, error) {
	cred, err := s.tokenSvc.GetValidCredential(ctx)
	if err != nil {
		return nil, fmt.Errorf("钱包同步中止: %w", err)
	}

	entries, err := s.fetchEscrowEntries(ctx, cred)
	if err != nil {
		log.Printf("[WalletSync] 结算列表拉取失败，本轮返回零结果: %v", err)
		return &WalletSyncResult{}, nil
	}

	result := &WalletSyncResult{}
	if len(entries) > 0 {
		for _, entry := range entries {
			tx := &model.WalletTransaction{
				RefID:  entry.OrderSN,
				Amount: entry.PayoutAmount,
				Date:   time.Unix(entry.EscrowReleaseTime, 0),
				Status: model.TxStatusCompleted,
				Type:   model.TxTypeRelease,
				Source: model.TxSourceShopee,
			}
			if entry.EscrowReleaseTime <= 0 {
				tx.Date = time.Now()
			}
			if err := s.walletRepo.Upsert(ctx, tx); err != nil {
				return nil, fmt.Errorf("流水 %s 入库失败: %w", tx.RefID, err)
			}
			result.Processed++
		}
	} else {
		// 合成分支：把本地已完成/待确认收货订单当作放款流水
		synthesized, err := s.synthesizeFromOrders(ctx)
		if err != nil {
			return nil, err
		}
		result.Processed = synthesized
	}

	// 收益汇总：每轮重算所有 Completed 流水之和
	total, err := s.walletRepo.SumByStatus(ctx, model.TxStatusCompleted)
	if err != nil {
		return nil, fmt.Errorf("汇总流水失败: %w", err)
	}
	if err := s.profileRepo.UpsertEarnings(ctx, model.ProfileDefaultKey, total); err != nil {
		return nil, fmt.Errorf("收益汇总入库失败: %w", err)
	}
	result.TotalEarnings = total

	log.Printf("[WalletSync] 同步完成: 处理 %d 笔流水，累计收益 %.2f", result.Processed, total)
	return result, nil
}

// fetchEscrowEntries 拉取近 30 天的结算放款记录
// 失败 (超时信封、错误信封、解析失败) 原样上抛，由调用方决定零结果：
// 失败和“成功但确实没有放款”必须区分，否则瞬时故障会误触发合成
func (s *WalletSyncService) fetchEscrowEntries(ctx context.Context, cred *model.ShopCredential) ([]shopee.EscrowEntry, error) {
	now := time.Now()
	env, err := s.client.Post(ctx, shopee.PathGetEscrowList, map[string]interface{}{
		"release_time_from": now.Add(-escrowLookback).Unix(),
		"release_time_to":   now.Unix(),
		"page_size":         escrowListPageSize,
	}, cred.ShopID, cred.AccessToken)
	if err != nil {
		return nil, fmt.Errorf("结算列表请求失败: %w", err)
	}
	if !env.OK() {
		return nil, fmt.Errorf("结算列表被拒绝: %s (%s)", env.Error, env.Message)
	}

	var list shopee.EscrowListResp
	if err := json.Unmarshal(env.Response, &list); err != nil {
		return nil, fmt.Errorf("结算列表解析失败: %w", err)
	}
	return list.EscrowList, nil
}

// synthesizeFromOrders 无结算数据时按本地订单合成流水
// RefID 用订单号，upsert 幂等：真实放款记录出现后会覆盖同号合成行
func (s *WalletSyncService) synthesizeFromOrders(ctx context.Context) (int, error) {
	orders, err := s.orderRepo.ListByStatuses(ctx, []string{
		model.OrderStatusCompleted,
		model.OrderStatusToConfirmReceive,
	})
	if err != nil {
		return 0, fmt.Errorf("查询可合成订单失败: %w", err)
	}

	count := 0
	for i := range orders {
		order := &orders[i]
		tx := &model.WalletTransaction{
			RefID:  order.OrderSN,
			Amount: order.TotalAmount,
			Date:   order.OrderCreateTime,
			Status: model.TxStatusCompleted,
			Type:   model.TxTypeRelease,
			Source: model.TxSourceLocal,
		}
		if err := s.walletRepo.Upsert(ctx, tx); err != nil {
			return count, fmt.Errorf("合成流水 %s 入库失败: %w", tx.RefID, err)
		}
		count++
	}

	if count > 0 {
		log.Printf("[WalletSync] 无结算数据，已按 %d 笔本地订单合成流水", count)
	}
	return count, nil
}
