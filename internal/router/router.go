package router

import (
	"github.com/gin-gonic/gin"

	"shopee_sync_v2_202508/internal/controller"
)

// InitRoutes 注册所有路由
func InitRoutes(r *gin.Engine,
	authCtrl *controller.AuthController,
	shopCtl *controller.ShopController,
	syncCtl *controller.SyncController) {
	api := r.Group("/api")
	{
		// auth 鉴权组
		auth := api.Group("/auth")
		{
			// GET /api/auth/login
			auth.GET("/login", authCtrl.Login)

			// GET /api/auth/callback
			auth.GET("/callback", authCtrl.Callback)
		}
		// shop 店铺信息
		shop := api.Group("/shop")
		{
			shop.GET("/info", shopCtl.GetShopInfo)
		}
		// sync 手动同步组 (与定时任务共用 service)
		sync := api.Group("/sync")
		{
			// POST /api/sync/products
			sync.POST("/products", syncCtl.SyncProducts)
			sync.POST("/orders", syncCtl.SyncOrders)
			sync.POST("/wallet", syncCtl.SyncWallet)
		}
	}
}
