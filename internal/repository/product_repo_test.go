package repository

import (
	"context"
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"shopee_sync_v2_202508/internal/model"
)

func setupProductRepoTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("连接测试数据库失败: %v", err)
	}
	if err := db.AutoMigrate(&model.Product{}, &model.ProductVariant{}); err != nil {
		t.Fatalf("自动建表失败: %v", err)
	}
	return db
}

// 商品按 (shop_id, item_id) 唯一：不同店铺的同号商品互不冲突，
// 同店铺重复 upsert 原地覆盖
func TestProductRepository_UpsertPerShop(t *testing.T) {
	db := setupProductRepoTestDB(t)
	repo := NewProductRepository(db)
	ctx := context.Background()

	// 两个店铺出现同一个 item_id
	if err := repo.Upsert(ctx, &model.Product{ItemID: 100, ShopID: 1001, Name: "店铺A商品"}); err != nil {
		t.Fatalf("店铺A保存失败: %v", err)
	}
	if err := repo.Upsert(ctx, &model.Product{ItemID: 100, ShopID: 2002, Name: "店铺B商品"}); err != nil {
		t.Fatalf("店铺B保存失败: %v", err)
	}

	countA, _ := repo.CountByShop(ctx, 1001)
	countB, _ := repo.CountByShop(ctx, 2002)
	if countA != 1 || countB != 1 {
		t.Errorf("商品数 = (%d, %d), want (1, 1)", countA, countB)
	}

	// 同店铺同号 upsert 覆盖而不是新增
	if err := repo.Upsert(ctx, &model.Product{ItemID: 100, ShopID: 2002, Name: "店铺B商品改", Stock: 9}); err != nil {
		t.Fatalf("二次保存失败: %v", err)
	}

	products, err := repo.ListByShop(ctx, 2002)
	if err != nil {
		t.Fatalf("查询商品失败: %v", err)
	}
	if len(products) != 1 {
		t.Fatalf("店铺B商品数 = %d, want 1", len(products))
	}
	if products[0].Name != "店铺B商品改" || products[0].Stock != 9 {
		t.Errorf("覆盖后 name = %s stock = %d, want 店铺B商品改 / 9", products[0].Name, products[0].Stock)
	}

	// 另一店铺不受影响
	productsA, _ := repo.ListByShop(ctx, 1001)
	if len(productsA) != 1 || productsA[0].Name != "店铺A商品" {
		t.Errorf("店铺A数据被波及: %+v", productsA)
	}
}

// DeleteMissing 只清理指定店铺中不在保留集合内的商品
func TestProductRepository_DeleteMissingScopedToShop(t *testing.T) {
	db := setupProductRepoTestDB(t)
	repo := NewProductRepository(db)
	ctx := context.Background()

	for _, p := range []model.Product{
		{ItemID: 1, ShopID: 2002},
		{ItemID: 2, ShopID: 2002},
		{ItemID: 1, ShopID: 1001},
	} {
		prod := p
		if err := repo.Upsert(ctx, &prod); err != nil {
			t.Fatalf("保存失败: %v", err)
		}
	}

	deleted, err := repo.DeleteMissing(ctx, 2002, []int64{1})
	if err != nil {
		t.Fatalf("清理失败: %v", err)
	}
	if deleted != 1 {
		t.Errorf("deleted = %d, want 1", deleted)
	}

	countB, _ := repo.CountByShop(ctx, 2002)
	countA, _ := repo.CountByShop(ctx, 1001)
	if countB != 1 {
		t.Errorf("店铺B商品数 = %d, want 1", countB)
	}
	if countA != 1 {
		t.Errorf("店铺A商品数 = %d, want 1 (不应被其他店铺的清理波及)", countA)
	}
}
