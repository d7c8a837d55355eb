package shopee

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// Sign 计算 Shopee OpenAPI v2 签名
// 算法：HMAC-SHA256(partner_key, 各字段按顺序直接拼接，无分隔符)，输出小写 hex
// 字段内容由调用方决定，本函数不关心传入的是 public 还是 shop 维度
func Sign(partnerKey string, fields ...interface{}) string {
	mac := hmac.New(sha256.New, []byte(partnerKey))
	for _, f := range fields {
		fmt.Fprint(mac, f)
	}
	return hex.EncodeToString(mac.Sum(nil))
}

// SignPublic public 接口签名 (token 换取/刷新、授权跳转)
// 基串：partner_id + path + timestamp
func SignPublic(partnerKey string, partnerID int64, path string, timestamp int64) string {
	return Sign(partnerKey, partnerID, path, timestamp)
}

// SignShop shop 接口签名 (商品/订单/钱包等店铺维度接口)
// 基串：partner_id + path + timestamp + access_token + shop_id
func SignShop(partnerKey string, partnerID int64, path string, timestamp int64, accessToken string, shopID int64) string {
	return Sign(partnerKey, partnerID, path, timestamp, accessToken, shopID)
}
