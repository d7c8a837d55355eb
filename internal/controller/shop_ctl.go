package controller

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"shopee_sync_v2_202508/internal/service"
)

type ShopController struct {
	shopService *service.ShopService
}

func NewShopController(s *service.ShopService) *ShopController {
	return &ShopController{shopService: s}
}

// GetShopInfo 查询当前授权店铺信息
func (ctrl *ShopController) GetShopInfo(c *gin.Context) {
	info, err := ctrl.shopService.GetShopInfo(c.Request.Context())
	if err != nil {
		if errors.Is(err, service.ErrNoCredential) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "未授权或授权已失效，请重新授权"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "查询店铺信息失败", "detail": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"shop_name":   info.ShopName,
		"region":      info.Region,
		"status":      info.Status,
		"auth_time":   info.AuthTime,
		"expire_time": info.ExpireTime,
	})
}
