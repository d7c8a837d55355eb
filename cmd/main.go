package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"gorm.io/gorm"

	"shopee_sync_v2_202508/internal/controller"
	"shopee_sync_v2_202508/internal/model"
	"shopee_sync_v2_202508/internal/repository"
	"shopee_sync_v2_202508/internal/router"
	"shopee_sync_v2_202508/internal/service"
	"shopee_sync_v2_202508/internal/task"
	"shopee_sync_v2_202508/pkg/database"
	"shopee_sync_v2_202508/pkg/shopee"
)

func main() {
	// 0. 本地开发用 .env，容器环境直接注入环境变量
	if err := godotenv.Load(); err != nil {
		log.Println("未找到 .env 文件，使用环境变量")
	}

	// 1. 初始化数据库
	db := initDatabase()

	// 2. 初始化依赖
	deps := initDependencies(db)

	// 3. 启动定时任务
	tasks := initTasks(deps)

	// 4. 初始化路由
	r := gin.Default()
	router.InitRoutes(r, deps.Controllers.Auth, deps.Controllers.Shop, deps.Controllers.Sync)

	// 5. 启动服务
	startServer(r, tasks)
}

// ==================== 依赖容器 ====================

// Dependencies 依赖容器
type Dependencies struct {
	DB          *gorm.DB
	Client      *shopee.Client
	Repos       *Repositories
	Services    *Services
	Controllers *Controllers
}

// Repositories 仓库集合
type Repositories struct {
	Credential repository.CredentialRepository
	Product    repository.ProductRepository
	Order      repository.OrderRepository
	Wallet     repository.WalletRepository
	Profile    repository.ProfileRepository
}

// Services 服务集合
type Services struct {
	Token       *service.TokenService
	Auth        *service.AuthService
	Shop        *service.ShopService
	ProductSync *service.ProductSyncService
	OrderSync   *service.OrderSyncService
	WalletSync  *service.WalletSyncService
}

// Controllers 控制器集合
type Controllers struct {
	Auth *controller.AuthController
	Shop *controller.ShopController
	Sync *controller.SyncController
}

// Tasks 定时任务集合
type Tasks struct {
	Token *task.TokenTask
	Sync  *task.SyncTask
}

// ==================== 初始化函数 ====================

// initDatabase 初始化数据库
func initDatabase() *gorm.DB {
	dsn := getEnv("DATABASE_DSN",
		"host=localhost user=postgres password=postgres dbname=shopee_sync port=5432 sslmode=disable")

	return database.InitDB(dsn,
		// Auth
		&model.ShopCredential{},
		// Product
		&model.Product{}, &model.ProductVariant{},
		// Order
		&model.Order{},
		// Wallet
		&model.WalletTransaction{}, &model.UserProfile{},
	)
}

// initDependencies 初始化所有依赖
func initDependencies(db *gorm.DB) *Dependencies {
	// -------- 平台客户端 --------
	client := shopee.NewClient(&shopee.Config{
		PartnerID:   getEnvInt64("SHOPEE_PARTNER_ID", 0),
		PartnerKey:  getEnv("SHOPEE_PARTNER_KEY", ""),
		BaseURL:     getEnv("SHOPEE_API_BASE", "https://partner.shopeemobile.com"),
		RedirectURL: getEnv("SHOPEE_REDIRECT_URL", "http://localhost:8080/api/auth/callback"),
	})

	// -------- Repo 层 --------
	repos := &Repositories{
		Credential: repository.NewCredentialRepository(db),
		Product:    repository.NewProductRepository(db),
		Order:      repository.NewOrderRepository(db),
		Wallet:     repository.NewWalletRepository(db),
		Profile:    repository.NewProfileRepository(db),
	}

	// -------- 业务服务 --------
	tokenSvc := service.NewTokenService(repos.Credential, client)
	services := &Services{
		Token:       tokenSvc,
		Auth:        service.NewAuthService(repos.Credential, client),
		Shop:        service.NewShopService(tokenSvc, client),
		ProductSync: service.NewProductSyncService(repos.Product, tokenSvc, client),
		OrderSync:   service.NewOrderSyncService(repos.Order, tokenSvc, client),
		WalletSync:  service.NewWalletSyncService(repos.Wallet, repos.Profile, repos.Order, tokenSvc, client),
	}

	// -------- Controller 层 --------
	controllers := &Controllers{
		Auth: controller.NewAuthController(services.Auth),
		Shop: controller.NewShopController(services.Shop),
		Sync: controller.NewSyncController(services.ProductSync, services.OrderSync, services.WalletSync),
	}

	return &Dependencies{
		DB:          db,
		Client:      client,
		Repos:       repos,
		Services:    services,
		Controllers: controllers,
	}
}

// ==================== 定时任务 ====================

// initTasks 初始化定时任务
func initTasks(deps *Dependencies) *Tasks {
	tokenTask := task.NewTokenTask(deps.Services.Token)
	tokenTask.Start()

	syncTask := task.NewSyncTask(
		deps.Services.ProductSync,
		deps.Services.OrderSync,
		deps.Services.WalletSync,
	)
	syncTask.Start()

	log.Println("定时任务已启动")
	return &Tasks{Token: tokenTask, Sync: syncTask}
}

// ==================== 服务启动 ====================

// startServer 启动服务
func startServer(r *gin.Engine, tasks *Tasks) {
	port := getEnv("SERVER_PORT", "8080")

	srv := &http.Server{
		Addr:    ":" + port,
		Handler: r,
	}

	// 异步启动服务
	go func() {
		log.Printf("服务启动在 :%s", port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("服务启动失败: %v", err)
		}
	}()

	// 等待退出信号
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("正在关闭服务...")

	// 先停定时任务，等在途同步收尾
	tasks.Sync.Stop()
	tasks.Token.Stop()

	// 优雅关闭，最多等待 30 秒
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("服务强制关闭: %v", err)
	}

	log.Println("服务已退出")
}

// ==================== 工具函数 ====================

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt64(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.ParseInt(value, 10, 64); err == nil {
			return n
		}
	}
	return defaultValue
}
