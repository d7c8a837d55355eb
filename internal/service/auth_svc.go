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

// ==================== AuthService 店铺授权 ====================

// AuthService 店铺授权流程
// 生成授权跳转链接，并在回调时用临时 code 换取 token 落库
type AuthService struct {
	credRepo repository.CredentialRepository
	client   *shopee.Client
}

// NewAuthService 创建授权服务
func NewAuthService(credRepo repository.CredentialRepository, client *shopee.Client) *AuthService {
	return &AuthService{credRepo: credRepo, client: client}
}

// GenerateAuthURL 生成店铺授权跳转链接
func (s *AuthService) GenerateAuthURL() string {
	return s.client.AuthURL()
}

// HandleCallback 处理授权回调：code 换 token 并持久化凭证
// code 有效期很短 (约 10 分钟)，回调后应立即兑换
func (s *AuthService) HandleCallback(ctx context.Context, code string, shopID int64) (*model.ShopCredential, error) {
	if code == "" || shopID <= 0 {
		return nil, fmt.Errorf("授权回调参数不完整: code=%q shop_id=%d", code, shopID)
	}

	params := map[string]interface{}{
		"code":       code,
		"shop_id":    shopID,
		"partner_id": s.client.PartnerID(),
	}
	env, err := s.client.Post(ctx, shopee.PathGetToken, params, 0, "")
	if err != nil {
		return nil, fmt.Errorf("token 换取请求失败: %w", err)
	}
	if !env.OK() {
		return nil, fmt.Errorf("token 换取被拒绝: %s (%s)", env.Error, env.Message)
	}

	// 业务字段在信封顶层
	var tokenResp shopee.TokenResp
	if err := json.Unmarshal(env.Raw, &tokenResp); err != nil {
		return nil, fmt.Errorf("token 响应解析失败: %w", err)
	}
	if tokenResp.AccessToken == "" {
		return nil, fmt.Errorf("token 响应缺少 access_token")
	}

	cred := &model.ShopCredential{
		ShopID:       shopID,
		AccessToken:  tokenResp.AccessToken,
		RefreshToken: tokenResp.RefreshToken,
		ExpireAt:     time.Now().Add(time.Duration(tokenResp.ExpireIn) * time.Second),
	}
	if err := s.credRepo.Save(ctx, cred); err != nil {
		return nil, fmt.Errorf("授权凭证入库失败: %w", err)
	}

	log.Printf("[AuthService] 店铺 %d 授权成功，有效期至 %s", shopID, cred.ExpireAt.Format(time.RFC3339))
	return cred, nil
}
