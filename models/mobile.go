package models

import (
	"time"
)

type Specs struct {
	DisplaySize     string `json:"display_size" gorm:"column:display_size;type:varchar(50)"`
	RAM             string `json:"ram" gorm:"column:ram;type:varchar(50)"`
	Storage         string `json:"storage" gorm:"column:storage;type:varchar(50)"`
	Camera          string `json:"camera" gorm:"column:camera;type:varchar(100)"`
	Battery         string `json:"battery" gorm:"column:battery;type:varchar(50)"`
	Processor       string `json:"processor" gorm:"column:processor;type:varchar(100)"`
	OperatingSystem string `json:"operating_system" gorm:"column:operating_system;type:varchar(50)"`
}

// Mobile is one phone model in the catalog.
type Mobile struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	BrandID   uint      `json:"brand_id" gorm:"not null;index"`
	Brand     *Brand    `json:"brand,omitempty" gorm:"foreignKey:BrandID"`
	Model     string    `json:"model" gorm:"type:varchar(150);not null"`
	Specs     Specs     `json:"specs" gorm:"embedded"`
	ImageURL  string    `json:"image_url"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Mobile) TableName() string {
	return "mobiles"
}
