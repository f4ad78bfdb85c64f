package database

import (
	"context"
	"database/sql"
	"strings"

	"github.com/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"pricewatch/models"
	"pricewatch/pricing"
)

var (
	ErrBrandExists    = errors.New("brand already exists")
	ErrBrandNotFound  = errors.New("brand not found")
	ErrMobileNotFound = errors.New("mobile not found")
)

// Store reads price snapshots from and appends rows to MySQL.
type Store struct {
	db *gorm.DB
}

func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

// Snapshot reads brands, mobiles and prices in one read-only transaction so
// the three tables are seen at the same point in time.
func (s *Store) Snapshot(ctx context.Context) (*pricing.Snapshot, error) {
	var (
		brands  []models.Brand
		mobiles []models.Mobile
		prices  []models.MobilePrice
	)
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Order("id").Find(&brands).Error; err != nil {
			return errors.Wrap(err, "load brands")
		}
		if err := tx.Order("id").Find(&mobiles).Error; err != nil {
			return errors.Wrap(err, "load mobiles")
		}
		if err := tx.Order("created_at, id").Find(&prices).Error; err != nil {
			return errors.Wrap(err, "load prices")
		}
		return nil
	}, s.snapshotTxOptions()...)
	if err != nil {
		return nil, err
	}
	return toSnapshot(brands, mobiles, prices), nil
}

// snapshotTxOptions asks MySQL for a consistent read-only view. SQLite
// transactions are already serializable and take no per-transaction options.
func (s *Store) snapshotTxOptions() []*sql.TxOptions {
	if s.db.Dialector.Name() == "sqlite" {
		return nil
	}
	return []*sql.TxOptions{{Isolation: sql.LevelRepeatableRead, ReadOnly: true}}
}

func toSnapshot(brands []models.Brand, mobiles []models.Mobile, prices []models.MobilePrice) *pricing.Snapshot {
	snap := &pricing.Snapshot{
		Brands:       make([]pricing.Brand, 0, len(brands)),
		Models:       make([]pricing.Model, 0, len(mobiles)),
		Observations: make([]pricing.Observation, 0, len(prices)),
	}
	for _, b := range brands {
		snap.Brands = append(snap.Brands, pricing.Brand{ID: b.ID, Name: b.Name})
	}
	for _, m := range mobiles {
		snap.Models = append(snap.Models, pricing.Model{
			ID:      m.ID,
			BrandID: m.BrandID,
			Name:    m.Model,
			Specs: pricing.Specs{
				DisplaySize: m.Specs.DisplaySize,
				RAM:         m.Specs.RAM,
				Storage:     m.Specs.Storage,
				Camera:      m.Specs.Camera,
				Battery:     m.Specs.Battery,
				Processor:   m.Specs.Processor,
				OS:          m.Specs.OperatingSystem,
			},
			ImageURL: m.ImageURL,
		})
	}
	for _, p := range prices {
		snap.Observations = append(snap.Observations, pricing.Observation{
			ModelID:    p.MobileID,
			Retailer:   p.Retailer,
			City:       p.City,
			Price:      p.Price,
			ObservedAt: p.CreatedAt,
		})
	}
	return snap
}

// CreateBrand inserts a brand unless one with the same name, ignoring case,
// already exists.
func (s *Store) CreateBrand(ctx context.Context, name string) (*models.Brand, error) {
	name = strings.TrimSpace(name)
	brand := &models.Brand{Name: name}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing models.Brand
		err := tx.Where("LOWER(name) = LOWER(?)", name).First(&existing).Error
		switch {
		case err == nil:
			return ErrBrandExists
		case !errors.Is(err, gorm.ErrRecordNotFound):
			return errors.Wrap(err, "check existing brand")
		}
		if err := tx.Create(brand).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return ErrBrandExists
			}
			return errors.Wrap(err, "create brand")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return brand, nil
}

// CreateMobile inserts a catalog entry for an existing brand.
func (s *Store) CreateMobile(ctx context.Context, mobile *models.Mobile) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var brand models.Brand
		if err := tx.First(&brand, mobile.BrandID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrBrandNotFound
			}
			return errors.Wrap(err, "find brand")
		}
		if err := tx.Omit(clause.Associations).Create(mobile).Error; err != nil {
			return errors.Wrap(err, "create mobile")
		}
		mobile.Brand = &brand
		return nil
	})
}

// AppendPrice records a new observation. Existing prices are never updated.
func (s *Store) AppendPrice(ctx context.Context, price *models.MobilePrice) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var mobile models.Mobile
		if err := tx.Select("id").First(&mobile, price.MobileID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrMobileNotFound
			}
			return errors.Wrap(err, "find mobile")
		}
		if err := tx.Omit(clause.Associations).Create(price).Error; err != nil {
			return errors.Wrap(err, "append price")
		}
		return nil
	})
}
