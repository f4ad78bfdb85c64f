package models

import (
	"time"
)

// Brand is a phone manufacturer. Names are unique ignoring case.
type Brand struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	Name      string    `json:"name" gorm:"type:varchar(100);not null;uniqueIndex:idx_mobile_brands_name"`
	CreatedAt time.Time `json:"created_at"`
	Mobiles   []Mobile  `json:"mobiles,omitempty" gorm:"foreignKey:BrandID"`
}

func (Brand) TableName() string {
	return "mobile_brands"
}
