package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"gorm.io/gorm"

	"shopee_sync_v2_202508/internal/model"
	"shopee_sync_v2_202508/internal/repository"
	"shopee_sync_v2_202508/pkg/shopee"
)

// ErrNoCredential 无可用授权凭证
// 这是业务上的正常分支而不是故障：凭证从未授权、或刷新被平台拒绝。
// 调用方必须用 errors.Is 区分它和真正的错误，并引导重新授权
var ErrNoCredential = errors.New("无可用授权凭证，请重新授权")

// TokenService Token 生命周期管理
// 对外只暴露 GetValidCredential：读取最近更新的凭证，过期则自动刷新并落库
type TokenService struct {
	credRepo repository.CredentialRepository
	client   *shopee.Client

	// 按 shop_id 互斥，避免并发任务对同一店铺重复刷新
	// (refresh_token 换取后即轮换，重复刷新第二次必然失败)
	refreshMu sync.Map
}

// NewTokenService 创建 Token 服务
func NewTokenService(credRepo repository.CredentialRepository, client *shopee.Client) *TokenService {
	return &TokenService{
		credRepo: credRepo,
		client:   client,
	}
}

// GetValidCredential 获取当前有效的授权凭证
// 凭证不存在或刷新失败返回 ErrNoCredential；存储层故障原样上抛
func (s *TokenService) GetValidCredential(ctx context.Context) (*model.ShopCredential, error) {
	cred, err := s.credRepo.GetMostRecent(ctx)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNoCredential
	}
	if err != nil {
		return nil, fmt.Errorf("查询授权凭证失败: %w", err)
	}

	if !cred.Expired() {
		return cred, nil
	}

	return s.refreshWithLock(ctx, cred.ShopID)
}

// refreshWithLock 串行化同一店铺的刷新
func (s *TokenService) refreshWithLock(ctx context.Context, shopID int64) (*model.ShopCredential, error) {
	muVal, _ := s.refreshMu.LoadOrStore(shopID, &sync.Mutex{})
	mu := muVal.(*sync.Mutex)
	mu.Lock()
	defer mu.Unlock()

	// 拿锁后重读：并发方可能已经完成刷新
	cred, err := s.credRepo.GetByShopID(ctx, shopID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNoCredential
	}
	if err != nil {
		return nil, fmt.Errorf("查询授权凭证失败: %w", err)
	}
	if !cred.Expired() {
		return cred, nil
	}

	return s.refresh(ctx, cred)
}

// refresh 调用 token 刷新接口并持久化新凭证
// 刷新接口按 public 维度签名 (签名基串不含 access_token / shop_id)
func (s *TokenService) refresh(ctx context.Context, cred *model.ShopCredential) (*model.ShopCredential, error) {
	params := map[string]interface{}{
		"refresh_token": cred.RefreshToken,
		"partner_id":    s.client.PartnerID(),
		"shop_id":       cred.ShopID,
	}

	env, err := s.client.Post(ctx, shopee.PathRefreshToken, params, 0, "")
	if err != nil {
		log.Printf("[TokenService] 店铺 %d Token 刷新请求失败: %v", cred.ShopID, err)
		return nil, ErrNoCredential
	}
	if !env.OK() {
		log.Printf("[TokenService] 店铺 %d Token 刷新被拒绝: %s (%s)", cred.ShopID, env.Error, env.Message)
		return nil, ErrNoCredential
	}

	// 业务字段在信封顶层
	var tokenResp shopee.TokenResp
	if err := json.Unmarshal(env.Raw, &tokenResp); err != nil {
		log.Printf("[TokenService] 店铺 %d Token 响应解析失败: %v", cred.ShopID, err)
		return nil, ErrNoCredential
	}
	if tokenResp.AccessToken == "" {
		log.Printf("[TokenService] 店铺 %d Token 响应缺少 access_token", cred.ShopID)
		return nil, ErrNoCredential
	}

	cred.AccessToken = tokenResp.AccessToken
	cred.RefreshToken = tokenResp.RefreshToken
	cred.ExpireAt = time.Now().Add(time.Duration(tokenResp.ExpireIn) * time.Second)

	if err := s.credRepo.Save(ctx, cred); err != nil {
		return nil, fmt.Errorf("刷新后的凭证入库失败: %w", err)
	}

	log.Printf("[TokenService] 店铺 %d Token 已刷新，有效期至 %s", cred.ShopID, cred.ExpireAt.Format(time.RFC3339))
	return cred, nil
}
