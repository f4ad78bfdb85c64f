package database

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"pricewatch/models"
	"pricewatch/pricing"
)

// newTestDB opens a private in-memory SQLite database with the production
// schema.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", name)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		TranslateError: true,
		Logger:         gormlogger.Discard,
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("sql.DB: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	if err := db.AutoMigrate(&models.Brand{}, &models.Mobile{}, &models.MobilePrice{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func TestToSnapshot(t *testing.T) {
	at := time.Date(2024, time.March, 5, 10, 0, 0, 0, time.UTC)
	brands := []models.Brand{{ID: 1, Name: "Samsung"}}
	mobiles := []models.Mobile{{
		ID:      10,
		BrandID: 1,
		Model:   "Galaxy A15",
		Specs: models.Specs{
			DisplaySize:     "6.5 inch",
			RAM:             "6GB",
			Storage:         "128GB",
			Camera:          "50MP",
			Battery:         "5000mAh",
			Processor:       "Helio G99",
			OperatingSystem: "Android 14",
		},
		ImageURL: "https://img.example/a15.png",
	}}
	prices := []models.MobilePrice{
		{ID: 100, MobileID: 10, Price: 52999, Retailer: "Daraz", City: "Lahore", CreatedAt: at},
	}

	got := toSnapshot(brands, mobiles, prices)
	want := &pricing.Snapshot{
		Brands: []pricing.Brand{{ID: 1, Name: "Samsung"}},
		Models: []pricing.Model{{
			ID:      10,
			BrandID: 1,
			Name:    "Galaxy A15",
			Specs: pricing.Specs{
				DisplaySize: "6.5 inch",
				RAM:         "6GB",
				Storage:     "128GB",
				Camera:      "50MP",
				Battery:     "5000mAh",
				Processor:   "Helio G99",
				OS:          "Android 14",
			},
			ImageURL: "https://img.example/a15.png",
		}},
		Observations: []pricing.Observation{
			{ModelID: 10, Retailer: "Daraz", City: "Lahore", Price: 52999, ObservedAt: at},
		},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("toSnapshot() mismatch (-want +got):\n%s", diff)
	}
}

func TestToSnapshot_Empty(t *testing.T) {
	got := toSnapshot(nil, nil, nil)
	if len(got.Brands) != 0 || len(got.Models) != 0 || len(got.Observations) != 0 {
		t.Errorf("toSnapshot(nil) = %+v, want empty", got)
	}
	if got.Brands == nil || got.Models == nil || got.Observations == nil {
		t.Error("toSnapshot(nil) returned nil slices")
	}
}

func TestStore_CreateBrand(t *testing.T) {
	store := NewStore(newTestDB(t))
	ctx := context.Background()

	brand, err := store.CreateBrand(ctx, "  Samsung ")
	if err != nil {
		t.Fatalf("CreateBrand() error = %v", err)
	}
	if brand.ID == 0 || brand.Name != "Samsung" {
		t.Errorf("brand = %+v, want trimmed name and an id", brand)
	}

	for _, name := range []string{"Samsung", "samsung", "SAMSUNG"} {
		t.Run(name, func(t *testing.T) {
			_, err := store.CreateBrand(ctx, name)
			if !errors.Is(err, ErrBrandExists) {
				t.Errorf("CreateBrand(%q) error = %v, want ErrBrandExists", name, err)
			}
		})
	}

	var count int64
	store.db.Model(&models.Brand{}).Count(&count)
	if count != 1 {
		t.Errorf("brands stored = %d, want 1", count)
	}
}

func TestStore_CreateBrand_ConcurrentInsertIsConflict(t *testing.T) {
	db := newTestDB(t)
	// Insert the same name between the existence check and the insert, as a
	// concurrent request would.
	err := db.Callback().Create().Before("gorm:create").Register("test:concurrent_brand", func(tx *gorm.DB) {
		if tx.Statement.Table != "mobile_brands" {
			return
		}
		tx.Session(&gorm.Session{NewDB: true}).
			Exec("INSERT INTO mobile_brands (name, created_at) VALUES (?, ?)", "Xiaomi", time.Now())
	})
	if err != nil {
		t.Fatalf("register callback: %v", err)
	}

	_, err = NewStore(db).CreateBrand(context.Background(), "Xiaomi")
	if !errors.Is(err, ErrBrandExists) {
		t.Errorf("CreateBrand() error = %v, want ErrBrandExists", err)
	}
}

func TestStore_CreateMobile(t *testing.T) {
	store := NewStore(newTestDB(t))
	ctx := context.Background()
	brand, err := store.CreateBrand(ctx, "Apple")
	if err != nil {
		t.Fatalf("CreateBrand() error = %v", err)
	}

	missing := &models.Mobile{BrandID: brand.ID + 100, Model: "Ghost"}
	if err := store.CreateMobile(ctx, missing); !errors.Is(err, ErrBrandNotFound) {
		t.Errorf("CreateMobile(unknown brand) error = %v, want ErrBrandNotFound", err)
	}

	mobile := &models.Mobile{
		BrandID: brand.ID,
		Model:   "iPhone 15",
		Specs:   models.Specs{RAM: "6GB", Storage: "128GB"},
	}
	if err := store.CreateMobile(ctx, mobile); err != nil {
		t.Fatalf("CreateMobile() error = %v", err)
	}
	if mobile.ID == 0 || mobile.Brand == nil || mobile.Brand.Name != "Apple" {
		t.Errorf("mobile = %+v, want id and brand", mobile)
	}

	var stored models.Mobile
	if err := store.db.First(&stored, mobile.ID).Error; err != nil {
		t.Fatalf("reload mobile: %v", err)
	}
	if stored.Specs.RAM != "6GB" || stored.Specs.Storage != "128GB" {
		t.Errorf("stored specs = %+v", stored.Specs)
	}
}

func TestStore_AppendPrice(t *testing.T) {
	store := NewStore(newTestDB(t))
	ctx := context.Background()
	brand, _ := store.CreateBrand(ctx, "Samsung")
	mobile := &models.Mobile{BrandID: brand.ID, Model: "Galaxy A15"}
	if err := store.CreateMobile(ctx, mobile); err != nil {
		t.Fatalf("CreateMobile() error = %v", err)
	}

	orphan := &models.MobilePrice{MobileID: mobile.ID + 100, Price: 1000, Retailer: "Daraz", City: "Lahore"}
	if err := store.AppendPrice(ctx, orphan); !errors.Is(err, ErrMobileNotFound) {
		t.Errorf("AppendPrice(unknown mobile) error = %v, want ErrMobileNotFound", err)
	}

	for _, p := range []float64{52999, 52999} {
		price := &models.MobilePrice{MobileID: mobile.ID, Price: p, Retailer: "Daraz", City: "Lahore"}
		if err := store.AppendPrice(ctx, price); err != nil {
			t.Fatalf("AppendPrice() error = %v", err)
		}
	}
	var count int64
	store.db.Model(&models.MobilePrice{}).Count(&count)
	if count != 2 {
		t.Errorf("prices stored = %d, want 2 (repeats are new rows)", count)
	}
}

func TestStore_Snapshot(t *testing.T) {
	db := newTestDB(t)
	store := NewStore(db)
	ctx := context.Background()

	samsung, _ := store.CreateBrand(ctx, "Samsung")
	apple, _ := store.CreateBrand(ctx, "Apple")
	a15 := &models.Mobile{BrandID: samsung.ID, Model: "Galaxy A15"}
	ip15 := &models.Mobile{BrandID: apple.ID, Model: "iPhone 15"}
	for _, m := range []*models.Mobile{a15, ip15} {
		if err := store.CreateMobile(ctx, m); err != nil {
			t.Fatalf("CreateMobile() error = %v", err)
		}
	}

	jan5 := time.Date(2024, time.January, 5, 10, 0, 0, 0, time.UTC)
	jan10 := time.Date(2024, time.January, 10, 10, 0, 0, 0, time.UTC)
	feb3 := time.Date(2024, time.February, 3, 10, 0, 0, 0, time.UTC)
	rows := []models.MobilePrice{
		{MobileID: a15.ID, Price: 51999, Retailer: "Daraz", City: "Lahore", CreatedAt: feb3},
		{MobileID: a15.ID, Price: 49999, Retailer: "PriceOye", City: "Karachi", CreatedAt: jan10},
		{MobileID: ip15.ID, Price: 289999, Retailer: "iShop", City: "Karachi", CreatedAt: jan10},
		{MobileID: a15.ID, Price: 52999, Retailer: "Daraz", City: "Lahore", CreatedAt: jan5},
	}
	for i := range rows {
		if err := store.AppendPrice(ctx, &rows[i]); err != nil {
			t.Fatalf("AppendPrice() error = %v", err)
		}
	}

	snap, err := store.Snapshot(ctx)
	if err != nil {
		t.Fatalf("Snapshot() error = %v", err)
	}

	if got := []string{snap.Brands[0].Name, snap.Brands[1].Name}; got[0] != "Samsung" || got[1] != "Apple" {
		t.Errorf("brands = %v, want id order", got)
	}
	if len(snap.Models) != 2 || snap.Models[0].ID != a15.ID || snap.Models[0].BrandID != samsung.ID {
		t.Errorf("models = %+v", snap.Models)
	}

	want := []pricing.Observation{
		{ModelID: a15.ID, Retailer: "Daraz", City: "Lahore", Price: 52999, ObservedAt: jan5},
		{ModelID: a15.ID, Retailer: "PriceOye", City: "Karachi", Price: 49999, ObservedAt: jan10},
		{ModelID: ip15.ID, Retailer: "iShop", City: "Karachi", Price: 289999, ObservedAt: jan10},
		{ModelID: a15.ID, Retailer: "Daraz", City: "Lahore", Price: 51999, ObservedAt: feb3},
	}
	if diff := cmp.Diff(want, snap.Observations); diff != "" {
		t.Errorf("observations not in created_at, id order (-want +got):\n%s", diff)
	}

	view := pricing.NewEngine().Analyze(snap)
	if got := view.LowestPrice(a15.ID); !got.Equal(pricing.PriceOf(49999)) {
		t.Errorf("LowestPrice(a15) = %v, want 49999", got)
	}
}

func TestStore_SnapshotTxOptions(t *testing.T) {
	if opts := NewStore(newTestDB(t)).snapshotTxOptions(); opts != nil {
		t.Errorf("sqlite snapshotTxOptions() = %v, want none", opts)
	}
}
