package models

import (
	"time"
)

// MobilePrice is one price a retailer listed for a mobile in one city. Rows
// are only ever inserted; a new price is a new row.
type MobilePrice struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	MobileID  uint      `json:"mobile_id" gorm:"not null;index:idx_mobile_prices_mobile_created"`
	Mobile    *Mobile   `json:"mobile,omitempty" gorm:"foreignKey:MobileID;constraint:OnDelete:CASCADE"`
	Price     float64   `json:"price" gorm:"not null"`
	Retailer  string    `json:"retailer" gorm:"type:varchar(100);not null"`
	City      string    `json:"city" gorm:"type:varchar(100);not null"`
	CreatedAt time.Time `json:"created_at" gorm:"index:idx_mobile_prices_mobile_created"`
}

func (MobilePrice) TableName() string {
	return "mobile_prices"
}
