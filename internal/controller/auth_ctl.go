package controller

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"shopee_sync_v2_202508/internal/service"
)

type AuthController struct {
	authService *service.AuthService
}

func NewAuthController(s *service.AuthService) *AuthController {
	return &AuthController{authService: s}
}

// Login 获取店铺授权链接
// 由于网络限制，前端只能生成链接不能重定向，实际使用时手动复制链接跳转
func (ctrl *AuthController) Login(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"message":  "获取成功",
		"auth_url": ctrl.authService.GenerateAuthURL(),
	})
}

// Callback 授权回调
// 接收平台返回的 code 和 shop_id，换取 Token 并入库
func (ctrl *AuthController) Callback(c *gin.Context) {
	code := c.Query("code")
	shopIDStr := c.Query("shop_id")
	if code == "" || shopIDStr == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "缺少必要参数 code 或 shop_id"})
		return
	}

	shopID, err := strconv.ParseInt(shopIDStr, 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "shop_id 必须是数字"})
		return
	}

	cred, err := ctrl.authService.HandleCallback(c.Request.Context(), code, shopID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":  "授权失败",
			"detail": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":   "店铺绑定成功",
		"shop_id":   cred.ShopID,
		"expire_at": cred.ExpireAt,
	})
}
