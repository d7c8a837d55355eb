package controller

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"shopee_sync_v2_202508/internal/api/dto"
	"shopee_sync_v2_202508/internal/service"
)

// SyncController 手动同步入口
// 与定时任务共用同一套 service，这里只做参数解析和错误映射
type SyncController struct {
	productSync *service.ProductSyncService
	orderSync   *service.OrderSyncService
	walletSync  *service.WalletSyncService
}

// NewSyncController 创建同步控制器
func NewSyncController(
	productSync *service.ProductSyncService,
	orderSync *service.OrderSyncService,
	walletSync *service.WalletSyncService,
) *SyncController {
	return &SyncController{
		productSync: productSync,
		orderSync:   orderSync,
		walletSync:  walletSync,
	}
}

// SyncProducts 手动触发商品同步
func (ctrl *SyncController) SyncProducts(c *gin.Context) {
	result, err := ctrl.productSync.SyncProducts(c.Request.Context())
	if err != nil {
		respondSyncError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message": "商品同步完成",
		"data":    dto.SyncProductsResponse{Synced: result.Synced, Deleted: result.Deleted},
	})
}

// SyncOrders 手动触发订单同步
// body 可选：{"order_sn_list": [...]} 只同步指定订单
func (ctrl *SyncController) SyncOrders(c *gin.Context) {
	var req dto.SyncOrdersRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "参数错误", "detail": err.Error()})
			return
		}
	}

	result, err := ctrl.orderSync.SyncOrders(c.Request.Context(), req.OrderSNList)
	if err != nil {
		respondSyncError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message": "订单同步完成",
		"data":    dto.SyncOrdersResponse{Synced: result.Synced},
	})
}

// SyncWallet 手动触发钱包同步
func (ctrl *SyncController) SyncWallet(c *gin.Context) {
	result, err := ctrl.walletSync.SyncWallet(c.Request.Context())
	if err != nil {
		respondSyncError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message": "钱包同步完成",
		"data": dto.SyncWalletResponse{
			Processed:     result.Processed,
			TotalEarnings: result.TotalEarnings,
		},
	})
}

// respondSyncError 同步错误统一映射
// 无凭证是可预期分支，引导重新授权而不是报 500
func respondSyncError(c *gin.Context, err error) {
	if errors.Is(err, service.ErrNoCredential) {
		c.JSON(http.StatusUnauthorized, gin.H{
			"error":  "未授权或授权已失效，请重新授权",
			"detail": err.Error(),
		})
		return
	}
	c.JSON(http.StatusInternalServerError, gin.H{
		"error":  "同步失败",
		"detail": err.Error(),
	})
}
