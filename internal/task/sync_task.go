package task

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/robfig/cron/v3"

	"shopee_sync_v2_202508/internal/service"
)

// ==================== SyncTask 业务同步任务 ====================

// SyncTask 统一管理三条同步作业
// 商品每 30 分钟、订单每 10 分钟、钱包每小时。
// 单店铺场景下作业内部严格串行，不做协程扇出
type SyncTask struct {
	ProductSync *service.ProductSyncService
	OrderSync   *service.OrderSyncService
	WalletSync  *service.WalletSyncService
	Cron        *cron.Cron

	jobTimeout time.Duration
}

func NewSyncTask(
	productSync *service.ProductSyncService,
	orderSync *service.OrderSyncService,
	walletSync *service.WalletSyncService,
) *SyncTask {
	return &SyncTask{
		ProductSync: productSync,
		OrderSync:   orderSync,
		WalletSync:  walletSync,
		Cron:        cron.New(cron.WithSeconds()), // 支持秒级控制
		jobTimeout:  10 * time.Minute,
	}
}

// Start 启动定时任务
func (t *SyncTask) Start() {
	// 首次执行：启动后先跑一轮订单同步，商品/钱包等周期触发
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), t.jobTimeout)
		defer cancel()
		log.Println("[Task] 服务启动，正在执行首次订单同步...")
		t.orderJob(ctx)
	}()

	schedules := []struct {
		spec string
		name string
		job  func(context.Context)
	}{
		{"0 0/30 * * * *", "商品同步 (每30分钟)", t.productJob},
		{"0 0/10 * * * *", "订单同步 (每10分钟)", t.orderJob},
		{"0 0 * * * *", "钱包同步 (每小时)", t.walletJob},
	}

	for _, s := range schedules {
		job := s.job
		_, err := t.Cron.AddFunc(s.spec, func() {
			ctx, cancel := context.WithTimeout(context.Background(), t.jobTimeout)
			defer cancel()
			job(ctx)
		})
		if err != nil {
			log.Fatalf("无法启动定时任务 [%s]: %v", s.name, err)
		}
		log.Printf("定时任务已注册: %s", s.name)
	}

	t.Cron.Start()
	log.Println("[Task] 业务同步任务已全部启动")
}

// Stop 停止定时任务并等待在途作业结束
func (t *SyncTask) Stop() {
	ctx := t.Cron.Stop()
	<-ctx.Done()
	log.Println("[Task] 业务同步任务已全部停止")
}

// ==================== 作业实现 ====================

func (t *SyncTask) productJob(ctx context.Context) {
	result, err := t.ProductSync.SyncProducts(ctx)
	if err != nil {
		logJobError("商品同步", err)
		return
	}
	log.Printf("[Cron] 商品同步完成: 更新 %d, 删除 %d", result.Synced, result.Deleted)
}

func (t *SyncTask) orderJob(ctx context.Context) {
	result, err := t.OrderSync.SyncOrders(ctx, nil)
	if err != nil {
		logJobError("订单同步", err)
		return
	}
	log.Printf("[Cron] 订单同步完成: 更新 %d 笔", result.Synced)
}

func (t *SyncTask) walletJob(ctx context.Context) {
	result, err := t.WalletSync.SyncWallet(ctx)
	if err != nil {
		logJobError("钱包同步", err)
		return
	}
	log.Printf("[Cron] 钱包同步完成: 处理 %d 笔，累计收益 %.2f", result.Processed, result.TotalEarnings)
}

// logJobError 未授权降噪，其余照常记错误
func logJobError(name string, err error) {
	if errors.Is(err, service.ErrNoCredential) {
		log.Printf("[Cron] %s跳过: 暂无授权凭证", name)
		return
	}
	log.Printf("[Cron] %s失败: %v", name, err)
}
