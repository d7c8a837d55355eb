package service

import (
	"context"
	"encoding/json"
	"fmt"

	"shopee_sync_v2_202508/pkg/shopee"
)

// ShopService 店铺信息查询
type ShopService struct {
	tokenSvc *TokenService
	client   *shopee.Client
}

// NewShopService 创建店铺服务
func NewShopService(tokenSvc *TokenService, client *shopee.Client) *ShopService {
	return &ShopService{tokenSvc: tokenSvc, client: client}
}

// GetShopInfo 查询当前授权店铺的基础信息
func (s *ShopService) GetShopInfo(ctx context.Context) (*shopee.ShopInfoResp, error) {
	cred, err := s.tokenSvc.GetValidCredential(ctx)
	if err != nil {
		return nil, err
	}

	env, err := s.client.Get(ctx, shopee.PathGetShopInfo, nil, cred.ShopID, cred.AccessToken)
	if err != nil {
		return nil, fmt.Errorf("店铺信息请求失败: %w", err)
	}
	if !env.OK() {
		return nil, fmt.Errorf("店铺信息被拒绝: %s (%s)", env.Error, env.Message)
	}

	// 业务字段在信封顶层
	var info shopee.ShopInfoResp
	if err := json.Unmarshal(env.Raw, &info); err != nil {
		return nil, fmt.Errorf("店铺信息解析失败: %w", err)
	}
	return &info, nil
}
