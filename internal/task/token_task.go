package task

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/robfig/cron/v3"

	"shopee_sync_v2_202508/internal/service"
)

// TokenTask Token 保活任务
// 周期性调用 GetValidCredential：过期凭证会被顺带刷新落库，
// 保证定时同步任务拿到的始终是可用 token
type TokenTask struct {
	TokenService *service.TokenService
	Cron         *cron.Cron
}

func NewTokenTask(tokenService *service.TokenService) *TokenTask {
	return &TokenTask{
		TokenService: tokenService,
		Cron:         cron.New(cron.WithSeconds()), // 支持秒级控制
	}
}

// Start 启动定时任务
func (t *TokenTask) Start() {
	// 首次执行
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		defer cancel()
		log.Println("[Task] 服务启动，正在执行首次 Token 检查...")
		t.keepAliveJob(ctx)
	}()

	// 定时策略
	_, err := t.Cron.AddFunc("0 0/40 * * * *", func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		defer cancel()

		t.keepAliveJob(ctx)
	})

	if err != nil {
		log.Fatalf("无法启动 Token 定时任务: %v", err)
	}

	t.Cron.Start()
	log.Println("Token 保活任务已启动 (每40分钟检查一次)")
}

// Stop 停止定时任务并等待在途作业结束
func (t *TokenTask) Stop() {
	ctx := t.Cron.Stop()
	<-ctx.Done()
	log.Println("[Task] Token 保活任务已停止")
}

// keepAliveJob 保活逻辑
func (t *TokenTask) keepAliveJob(ctx context.Context) {
	_, err := t.TokenService.GetValidCredential(ctx)
	if errors.Is(err, service.ErrNoCredential) {
		// 未授权是正常状态，等用户走授权流程
		log.Println("[Cron] 暂无授权凭证，跳过本轮 Token 保活")
		return
	}
	if err != nil {
		log.Printf("[Cron] Token 保活检查失败: %v", err)
		return
	}
	log.Println("[Cron] 本轮 Token 保活检查完成")
}
