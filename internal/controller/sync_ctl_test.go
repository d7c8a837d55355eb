package controller

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"shopee_sync_v2_202508/internal/service"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// ==================== 请求构造辅助 ====================

func performRequest(r http.Handler, method, path string) *httptest.ResponseRecorder {
	req, _ := http.NewRequest(method, path, nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

// ==================== 错误映射测试 ====================

// 无凭证映射为 401 引导重新授权，其余错误映射为 500
func TestRespondSyncError_Mapping(t *testing.T) {
	router := gin.New()
	router.POST("/no-cred", func(c *gin.Context) {
		respondSyncError(c, service.ErrNoCredential)
	})
	router.POST("/wrapped", func(c *gin.Context) {
		respondSyncError(c, errors.Join(errors.New("同步中止"), service.ErrNoCredential))
	})
	router.POST("/other", func(c *gin.Context) {
		respondSyncError(c, errors.New("db down"))
	})

	w := performRequest(router, "POST", "/no-cred")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	// 包装过的 ErrNoCredential 同样命中 401 分支
	w = performRequest(router, "POST", "/wrapped")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = performRequest(router, "POST", "/other")
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

// ==================== 参数验证测试 ====================

func TestAuthCallback_MissingParams(t *testing.T) {
	router := gin.New()
	ctrl := NewAuthController(nil)
	router.GET("/api/auth/callback", ctrl.Callback)

	tests := []struct {
		name       string
		query      string
		wantStatus int
	}{
		{"缺少全部参数", "", http.StatusBadRequest},
		{"缺少 shop_id", "?code=abc", http.StatusBadRequest},
		{"shop_id 非数字", "?code=abc&shop_id=xyz", http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := performRequest(router, "GET", "/api/auth/callback"+tt.query)
			assert.Equal(t, tt.wantStatus, w.Code)
		})
	}
}
