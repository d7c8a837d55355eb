package service

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"shopee_sync_v2_202508/internal/repository"
	"shopee_sync_v2_202508/pkg/shopee"
)

func TestAuthService_HandleCallback(t *testing.T) {
	var gotBody map[string]interface{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != shopee.PathGetToken {
			w.Write([]byte(`{"error":"error_not_found","message":"unknown path"}`))
			return
		}
		json.NewDecoder(r.Body).Decode(&gotBody)
		w.Write([]byte(`{"request_id":"r","error":"","access_token":"at_new","refresh_token":"rt_new","expire_in":14400}`))
	}))
	defer srv.Close()

	db := setupTokenTestDB(t)
	repo := repository.NewCredentialRepository(db)
	client := newTokenTestClient(srv.URL)

	svc := NewAuthService(repo, client)
	cred, err := svc.HandleCallback(context.Background(), "auth_code_123", 2002)
	if err != nil {
		t.Fatalf("回调处理失败: %v", err)
	}
	if cred.AccessToken != "at_new" {
		t.Errorf("access_token = %s, want at_new", cred.AccessToken)
	}
	if !cred.ExpireAt.After(time.Now()) {
		t.Error("过期时间应在未来")
	}
	if gotBody["code"] != "auth_code_123" {
		t.Errorf("body code = %v, want auth_code_123", gotBody["code"])
	}

	// 凭证已落库，token 服务立即可用
	stored, err := repo.GetByShopID(context.Background(), 2002)
	if err != nil {
		t.Fatalf("读取落库凭证失败: %v", err)
	}
	if stored.RefreshToken != "rt_new" {
		t.Errorf("refresh_token = %s, want rt_new", stored.RefreshToken)
	}
}

func TestAuthService_HandleCallback_Rejected(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"error":"error_auth","message":"invalid code"}`))
	}))
	defer srv.Close()

	db := setupTokenTestDB(t)
	svc := NewAuthService(repository.NewCredentialRepository(db), newTokenTestClient(srv.URL))

	if _, err := svc.HandleCallback(context.Background(), "bad_code", 2002); err == nil {
		t.Error("授权码被拒应返回错误")
	}
}

func TestAuthService_HandleCallback_MissingParams(t *testing.T) {
	db := setupTokenTestDB(t)
	svc := NewAuthService(repository.NewCredentialRepository(db), newTokenTestClient("http://127.0.0.1:0"))

	if _, err := svc.HandleCallback(context.Background(), "", 2002); err == nil {
		t.Error("缺少 code 应返回错误")
	}
	if _, err := svc.HandleCallback(context.Background(), "code", 0); err == nil {
		t.Error("缺少 shop_id 应返回错误")
	}
}

func TestAuthService_GenerateAuthURL(t *testing.T) {
	db := setupTokenTestDB(t)
	client := shopee.NewClient(&shopee.Config{
		PartnerID:   1001,
		PartnerKey:  "test_partner_key",
		BaseURL:     "https://partner.test",
		RedirectURL: "http://localhost:8080/api/auth/callback",
	})
	svc := NewAuthService(repository.NewCredentialRepository(db), client)

	url := svc.GenerateAuthURL()
	if url == "" {
		t.Fatal("授权链接不应为空")
	}
	for _, part := range []string{"partner_id=1001", "sign=", "timestamp=", shopee.PathAuthPartner} {
		if !strings.Contains(url, part) {
			t.Errorf("授权链接缺少 %s: %s", part, url)
		}
	}
}
